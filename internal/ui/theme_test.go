package ui

import "testing"

func TestThemeNames(t *testing.T) {
	names := ThemeNames()
	if len(names) != 3 {
		t.Fatalf("ThemeNames() returned %d names, want 3", len(names))
	}
	if names[0] != "Nightfox" || names[1] != "Kanagawa" || names[2] != "Slate" {
		t.Fatalf("ThemeNames() = %v, want [Nightfox Kanagawa Slate]", names)
	}
}

func TestNextTheme(t *testing.T) {
	if got := NextTheme("Nightfox"); got != "Kanagawa" {
		t.Fatalf("NextTheme(Nightfox) = %q, want Kanagawa", got)
	}
	if got := NextTheme("Slate"); got != "Nightfox" {
		t.Fatalf("NextTheme(Slate) = %q, want Nightfox", got)
	}
	if got := NextTheme("unknown"); got != "Nightfox" {
		t.Fatalf("NextTheme(unknown) = %q, want Nightfox", got)
	}
}

func TestGetTheme_FallsBack(t *testing.T) {
	if got := GetTheme("Dracula").Name; got != "Nightfox" {
		t.Fatalf("GetTheme(Dracula).Name = %q, want Nightfox", got)
	}
}

func TestThemes_DefineEveryStatus(t *testing.T) {
	statuses := []string{"idle", "draft", "active", "resting", "online", "offline", "queued"}
	for _, name := range ThemeNames() {
		th := GetTheme(name)
		for _, s := range statuses {
			if th.StatusColors[s] == "" {
				t.Errorf("theme %s has no color for %q", name, s)
			}
		}
	}
}

func TestFormatClock(t *testing.T) {
	tests := []struct {
		in   int
		want string
	}{
		{-3, "0:00"},
		{0, "0:00"},
		{65, "1:05"},
		{3599, "59:59"},
		{3661, "1:01:01"},
	}
	for _, tt := range tests {
		if got := formatClock(tt.in); got != tt.want {
			t.Errorf("formatClock(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
