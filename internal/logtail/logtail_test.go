package logtail

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestRead(t *testing.T) {
	// Create a temporary log file
	tmpDir := t.TempDir()
	logPath := filepath.Join(tmpDir, "test.log")

	// Write 10 lines of content
	var content strings.Builder
	var expectedAll []string
	for i := 1; i <= 10; i++ {
		line := fmt.Sprintf("Line %d", i)
		content.WriteString(line + "\n")
		expectedAll = append(expectedAll, line)
	}

	if err := os.WriteFile(logPath, []byte(content.String()), 0644); err != nil {
		t.Fatalf("failed to create test log file: %v", err)
	}

	tests := []struct {
		name     string
		maxLines int
		expected []string
	}{
		{
			name:     "read all (0)",
			maxLines: 0,
			expected: expectedAll,
		},
		{
			name:     "read all (negative)",
			maxLines: -1,
			expected: expectedAll,
		},
		{
			name:     "read partial (5)",
			maxLines: 5,
			expected: expectedAll[5:],
		},
		{
			name:     "read exactly all (10)",
			maxLines: 10,
			expected: expectedAll,
		},
		{
			name:     "read more than exists (20)",
			maxLines: 20,
			expected: expectedAll,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Read(logPath, tt.maxLines)
			if err != nil {
				t.Fatalf("Read() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Read() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestRead_MissingFile(t *testing.T) {
	got, err := Read(filepath.Join(t.TempDir(), "nope.log"), 10)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if got != nil {
		t.Fatalf("Read() = %v, want nil", got)
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		ok       bool
		expected string
	}{
		{
			name:  "empty line",
			input: "",
		},
		{
			name:  "plain text",
			input: "goroutine 1 [running]:",
		},
		{
			name:  "broken json",
			input: `{"level":"info"`,
		},
		{
			name:     "info without fields",
			input:    `{"level":"info","ts":"2026-10-15T18:30:00.000Z","msg":"drain pass finished","pid":42}`,
			ok:       true,
			expected: "2026-10-15T18:30:00.000Z INFO drain pass finished",
		},
		{
			name:     "warn with sorted fields",
			input:    `{"level":"warn","ts":"2026-10-15T18:30:02.114Z","caller":"syncer/coordinator.go:120","msg":"replay failed, keeping mutation","type":"persist_workout","mutation_id":"abc","retry_count":2}`,
			ok:       true,
			expected: "2026-10-15T18:30:02.114Z WARN replay failed, keeping mutation mutation_id=abc retry_count=2 type=persist_workout",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, ok := Parse(tt.input)
			if ok != tt.ok {
				t.Fatalf("Parse() ok = %v, want %v", ok, tt.ok)
			}
			if !ok {
				return
			}
			if got := e.String(); got != tt.expected {
				t.Errorf("String() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestFormat(t *testing.T) {
	input := []string{
		`{"level":"info","ts":"2026-10-15T18:30:00.000Z","msg":"rest timer started","seconds":90}`,
		"panic: boom",
	}

	expected := []string{
		"2026-10-15T18:30:00.000Z INFO rest timer started seconds=90",
		"panic: boom",
	}

	result := Format(input)
	if !reflect.DeepEqual(result, expected) {
		t.Errorf("Format() = %q, want %q", result, expected)
	}
}
