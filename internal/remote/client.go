package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrUnreachable marks failures where the request never got an HTTP answer.
// Callers treat it as "offline" rather than as a rejection.
var ErrUnreachable = errors.New("workout service unreachable")

// StatusError is returned when the service answers with a 4xx/5xx status.
type StatusError struct {
	Path string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("api %s returned status %d", e.Path, e.Code)
}

// IsUnreachable reports whether err is a transport-level failure.
func IsUnreachable(err error) bool {
	return errors.Is(err, ErrUnreachable)
}

// WorkoutSaver durably stores a completed workout and returns its id.
type WorkoutSaver interface {
	PersistWorkout(ctx context.Context, w Workout) (string, error)
}

// Pinger checks whether the service is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

var (
	_ WorkoutSaver = (*Client)(nil)
	_ Pinger       = (*Client)(nil)
)

// Client talks to the workout service HTTP API.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
}

const (
	defaultAPIURL    = "http://127.0.0.1:8080"
	defaultUserAgent = "spotter/0.1"
	requestTimeout   = 10 * time.Second
)

// NewClient builds a Client for the given base URL.
func NewClient(apiURL string) (*Client, error) {
	base, err := parseBaseURL(apiURL)
	if err != nil {
		return nil, err
	}
	return &Client{
		baseURL: base,
		http: &http.Client{
			Timeout: requestTimeout,
		},
		userAgent: defaultUserAgent,
	}, nil
}

// PersistWorkout stores a completed workout.
func (c *Client) PersistWorkout(ctx context.Context, w Workout) (string, error) {
	if c == nil {
		return "", fmt.Errorf("client is nil")
	}
	body, err := json.Marshal(w)
	if err != nil {
		return "", fmt.Errorf("encode workout: %w", err)
	}
	var payload persistResponse
	if err := c.do(ctx, http.MethodPost, "/api/workouts", bytes.NewReader(body), &payload); err != nil {
		return "", err
	}
	if strings.TrimSpace(payload.ID) == "" {
		return "", fmt.Errorf("persist workout: response missing id")
	}
	return payload.ID, nil
}

// Ping probes the health endpoint.
func (c *Client) Ping(ctx context.Context) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	return c.do(ctx, http.MethodGet, "/api/health", nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, dest any) error {
	rel := &url.URL{Path: path}
	reqURL := c.baseURL.ResolveReference(rel)
	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w: %w", ErrUnreachable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return &StatusError{Path: rel.String(), Code: resp.StatusCode}
	}
	if dest == nil {
		return nil
	}
	decoder := json.NewDecoder(resp.Body)
	if err := decoder.Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func parseBaseURL(apiURL string) (*url.URL, error) {
	trimmed := strings.TrimSpace(apiURL)
	if trimmed == "" {
		trimmed = defaultAPIURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse api_url %q: %w", apiURL, err)
	}
	u.Path = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
