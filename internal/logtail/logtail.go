package logtail

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
)

// Read returns at most maxLines from the end of the file at path. A
// non-positive maxLines returns every line.
func Read(path string, maxLines int) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	if maxLines <= 0 {
		var lines []string
		for scanner.Scan() {
			lines = append(lines, scanner.Text())
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("read log: %w", err)
		}
		return lines, nil
	}

	ring := make([]string, maxLines)
	count := 0
	idx := 0
	for scanner.Scan() {
		ring[idx] = scanner.Text()
		idx = (idx + 1) % maxLines
		if count < maxLines {
			count++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}

	lines := make([]string, count)
	if count == maxLines {
		for i := 0; i < count; i++ {
			lines[i] = ring[(idx+i)%maxLines]
		}
	} else {
		copy(lines, ring[:count])
	}
	return lines, nil
}

// Entry is one decoded JSON log record.
type Entry struct {
	Time    string
	Level   string
	Message string
	Fields  map[string]any
}

var reservedKeys = map[string]bool{
	"ts": true, "level": true, "msg": true, "caller": true, "stacktrace": true, "pid": true,
}

// Parse decodes a zap JSON line. ok is false for lines that are not JSON
// objects, such as a panic trace appended to the file.
func Parse(line string) (Entry, bool) {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "{") {
		return Entry{}, false
	}
	var raw map[string]any
	if err := json.Unmarshal([]byte(trimmed), &raw); err != nil {
		return Entry{}, false
	}
	e := Entry{Fields: map[string]any{}}
	e.Time, _ = raw["ts"].(string)
	e.Level, _ = raw["level"].(string)
	e.Message, _ = raw["msg"].(string)
	for k, v := range raw {
		if !reservedKeys[k] {
			e.Fields[k] = v
		}
	}
	return e, true
}

// String renders the entry as "time LEVEL message key=value ...", with
// fields sorted by key.
func (e Entry) String() string {
	var b strings.Builder
	if e.Time != "" {
		b.WriteString(e.Time)
		b.WriteByte(' ')
	}
	b.WriteString(strings.ToUpper(e.Level))
	b.WriteByte(' ')
	b.WriteString(e.Message)

	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, e.Fields[k])
	}
	return b.String()
}

// Format renders each line through Parse, passing non-JSON lines through
// unchanged.
func Format(lines []string) []string {
	out := make([]string, len(lines))
	for i, line := range lines {
		if e, ok := Parse(line); ok {
			out[i] = e.String()
		} else {
			out[i] = line
		}
	}
	return out
}
