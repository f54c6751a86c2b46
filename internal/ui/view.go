package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/spotter/internal/remote"
	"github.com/five82/spotter/internal/resttimer"
)

// renderMain stacks the header, workout, rest timer, toast and footer.
func (m Model) renderMain() string {
	parts := []string{
		m.renderHeader(),
		m.renderWorkout(),
		m.renderRest(),
		m.renderToast(),
		m.renderFooter(),
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) renderHeader() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)
	sep := bg.Spaces(2)

	status := "idle"
	switch {
	case m.sessionSnap.Active():
		status = string(m.sessionSnap.ActiveWorkoutID)
	case m.hasDraft:
		status = "draft"
	}

	parts := []string{
		bg.Render("spotter", styles.Logo),
		styles.StatusStyle(status).Render(strings.ToUpper(status)),
	}
	if m.sessionSnap.Active() {
		parts = append(parts, bg.Render(formatClock(m.sessionSnap.ElapsedSeconds), styles.Text.Bold(true)))
	}

	conn := "online"
	if m.connSnap.IsOffline() {
		conn = "offline"
	}
	parts = append(parts, styles.StatusStyle(conn).Render(strings.ToUpper(conn)))
	if m.queued > 0 {
		parts = append(parts, styles.StatusStyle("queued").Render(fmt.Sprintf("%d QUEUED", m.queued)))
	}
	if m.syncing {
		parts = append(parts, bg.Render("syncing...", styles.MutedText))
	}

	return m.theme.Styles().Header.Width(m.width).Render(bg.Join(parts, sep))
}

func (m Model) renderWorkout() string {
	styles := m.theme.Styles()
	width := max(20, m.width-2)

	if !m.hasDraft {
		body := styles.MutedText.Render("No workout in progress. Start one with `spotter run --template <file>`.")
		return styles.Panel.Width(width).Render(body)
	}

	var b strings.Builder
	name := m.draft.Name
	if name == "" {
		name = "Untitled workout"
	}
	done, total := m.draft.SetCounts()
	b.WriteString(styles.Text.Bold(true).Render(name))
	b.WriteString(styles.MutedText.Render(fmt.Sprintf("  %d/%d sets", done, total)))

	next := true
	for _, block := range m.draft.Blocks {
		b.WriteString("\n")
		if block.Name != "" {
			b.WriteString(styles.AccentText.Render(block.Name))
			b.WriteString("\n")
		}
		for _, ex := range block.Exercises {
			b.WriteString("  ")
			b.WriteString(styles.Text.Render(ex.Name))
			for _, set := range ex.Sets {
				b.WriteString(" ")
				switch {
				case set.Completed:
					b.WriteString(styles.SuccessText.Render("✓" + formatSet(set)))
				case next:
					b.WriteString(styles.WarningText.Bold(true).Render("›" + formatSet(set)))
					next = false
				default:
					b.WriteString(styles.FaintText.Render("·" + formatSet(set)))
				}
			}
			b.WriteString("\n")
		}
	}
	return styles.Panel.Width(width).Render(strings.TrimRight(b.String(), "\n"))
}

func (m Model) renderRest() string {
	styles := m.theme.Styles()
	width := max(20, m.width-2)

	if m.rest.State != resttimer.Running {
		return styles.Panel.Width(width).Render(styles.MutedText.Render("Rest  --:--   r to rest, 1-5 for presets"))
	}
	left := styles.StatusStyle("resting").Render("REST") + " " +
		styles.Text.Bold(true).Render(formatClock(m.rest.TimeLeft))
	return styles.Panel.Width(width).Render(left + "  " + m.bar.ViewAs(m.rest.Progress()))
}

func (m Model) renderToast() string {
	if m.toast == "" {
		return ""
	}
	styles := m.theme.Styles()
	style := styles.AccentText
	switch m.toastLevel {
	case toastSuccess:
		style = styles.SuccessText
	case toastWarn:
		style = styles.WarningText
	case toastError:
		style = styles.DangerText
	}
	return " " + style.Render(m.toast)
}

func (m Model) renderFooter() string {
	styles := m.theme.Styles()
	if m.confirmDiscard {
		return styles.Footer.Width(m.width).Render(
			styles.DangerText.Render("Discard this workout? It cannot be undone.") + "  y to confirm, any key to cancel")
	}
	var items []string
	for _, kb := range m.keys.ShortHelp() {
		h := kb.Help()
		items = append(items, h.Key+" "+strings.ToLower(h.Desc))
	}
	footer := strings.Join(items, "  ·  ")
	if last := m.connSnap.LastSyncMessage; last != "" {
		footer += "  |  last sync: " + last
	}
	return styles.Footer.Width(m.width).Render(footer)
}

// formatClock renders seconds as m:ss, or h:mm:ss past an hour.
func formatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	h, rem := seconds/3600, seconds%3600
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, rem/60, rem%60)
	}
	return fmt.Sprintf("%d:%02d", rem/60, rem%60)
}

func formatSet(s remote.Set) string {
	weight := strconv.FormatFloat(s.Weight, 'f', -1, 64)
	out := fmt.Sprintf("%s×%d", weight, s.Reps)
	if s.RPE > 0 {
		out += "@" + strconv.FormatFloat(s.RPE, 'f', -1, 64)
	}
	return out
}
