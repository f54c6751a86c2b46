package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines all keyboard bindings for the workout screen.
type keyMap struct {
	// Global
	Quit       key.Binding
	Help       key.Binding
	CycleTheme key.Binding

	// Workout
	CompleteSet key.Binding
	Finish      key.Binding
	Discard     key.Binding

	// Rest timer
	Rest     key.Binding
	Presets  key.Binding
	AddTime  key.Binding
	Subtract key.Binding
	StopRest key.Binding

	// Sync and notifications
	SyncNow       key.Binding
	Notifications key.Binding

	// Confirmation
	Confirm key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() keyMap {
	return keyMap{
		// Global
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "e"),
			key.WithHelp("e", "Quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("h", "?"),
			key.WithHelp("h/?", "Toggle help"),
		),
		CycleTheme: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "Cycle theme"),
		),

		// Workout
		CompleteSet: key.NewBinding(
			key.WithKeys("c", "enter"),
			key.WithHelp("c", "Complete next set"),
		),
		Finish: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "Finish workout"),
		),
		Discard: key.NewBinding(
			key.WithKeys("D"),
			key.WithHelp("D", "Discard workout"),
		),

		// Rest timer
		Rest: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "Start default rest"),
		),
		Presets: key.NewBinding(
			key.WithKeys("1", "2", "3", "4", "5"),
			key.WithHelp("1-5", "Rest 30/60/90/120/180s"),
		),
		AddTime: key.NewBinding(
			key.WithKeys("+", "="),
			key.WithHelp("+", "Add 15s"),
		),
		Subtract: key.NewBinding(
			key.WithKeys("-", "_"),
			key.WithHelp("-", "Remove 15s"),
		),
		StopRest: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "Stop rest"),
		),

		// Sync and notifications
		SyncNow: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "Sync now"),
		),
		Notifications: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "Enable notifications"),
		),

		Confirm: key.NewBinding(
			key.WithKeys("y", "Y"),
			key.WithHelp("y", "Confirm"),
		),
	}
}

// ShortHelp returns key bindings for the short help view.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.CompleteSet, k.Rest, k.Finish, k.Help, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.CompleteSet, k.Finish, k.Discard},
		{k.Rest, k.Presets, k.AddTime, k.Subtract, k.StopRest},
		{k.SyncNow, k.Notifications},
		{k.CycleTheme, k.Help, k.Quit},
	}
}
