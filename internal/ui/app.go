package ui

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/spotter/internal/platform"
	"github.com/five82/spotter/internal/queue"
	"github.com/five82/spotter/internal/remote"
	"github.com/five82/spotter/internal/resttimer"
	"github.com/five82/spotter/internal/session"
	"github.com/five82/spotter/internal/state"
	"github.com/five82/spotter/internal/syncer"
	"github.com/five82/spotter/internal/workout"
)

const (
	defaultRefresh = 250 * time.Millisecond
	hiddenRefresh  = time.Second
	toastTTL       = 5 * time.Second
	adjustSeconds  = 15

	restCompleteTitle = "Rest complete"
)

// Options configures the UI.
type Options struct {
	Context      context.Context
	Workout      *workout.Coordinator
	Session      *session.Manager
	Timer        *resttimer.Engine
	Queue        *queue.Queue
	Syncer       *syncer.Coordinator
	Reachability *state.Store
	Inbox        *platform.Inbox
	Refresh      time.Duration
	ThemeName    string
	// OnTheme persists a theme change.
	OnTheme func(name string)
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Dependencies
	ctx     context.Context
	workout *workout.Coordinator
	session *session.Manager
	timer   *resttimer.Engine
	queue   *queue.Queue
	syncer  *syncer.Coordinator
	conn    *state.Store
	inbox   *platform.Inbox
	onTheme func(string)
	refresh time.Duration

	// UI state
	keys           keyMap
	theme          Theme
	bar            progress.Model
	width          int
	height         int
	ready          bool
	showHelp       bool
	confirmDiscard bool
	hidden         bool
	finishing      bool
	syncing        bool

	// Data state
	sessionSnap session.Snapshot
	draft       remote.Workout
	hasDraft    bool
	rest        resttimer.Snapshot
	connSnap    state.Snapshot
	queued      int
	toast       string
	toastLevel  toastLevel
	toastAt     time.Time
	now         func() time.Time
}

type toastLevel int

const (
	toastInfo toastLevel = iota
	toastSuccess
	toastWarn
	toastError
)

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	refresh := opts.Refresh
	if refresh <= 0 {
		refresh = defaultRefresh
	}
	theme := GetTheme(opts.ThemeName)

	m := Model{
		ctx:     ctx,
		workout: opts.Workout,
		session: opts.Session,
		timer:   opts.Timer,
		queue:   opts.Queue,
		syncer:  opts.Syncer,
		conn:    opts.Reachability,
		inbox:   opts.Inbox,
		onTheme: opts.OnTheme,
		refresh: refresh,
		keys:    DefaultKeyMap(),
		theme:   theme,
		bar:     newBar(theme),
		now:     time.Now,
	}
	m.pull()
	return m
}

func newBar(t Theme) progress.Model {
	return progress.New(
		progress.WithSolidFill(t.Accent),
		progress.WithoutPercentage(),
	)
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tickCmd(m.refresh)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.bar.Width = max(10, msg.Width-20)
		m.ready = true
		return m, nil

	case tea.FocusMsg:
		// Regaining focus is the terminal's "page visible" signal.
		m.hidden = false
		m.workout.OnVisible()
		m.pull()
		return m, nil

	case tea.BlurMsg:
		m.hidden = true
		return m, nil

	case tickMsg:
		m.pull()
		if m.hidden {
			return m, tickCmd(hiddenRefresh)
		}
		return m, tickCmd(m.refresh)

	case finishedMsg:
		m.finishing = false
		if msg.err != nil {
			if errors.Is(msg.err, workout.ErrNoSession) {
				m.setToast("No workout in progress", toastWarn)
			} else {
				m.setToast("Save failed: "+msg.err.Error(), toastError)
			}
		} else if msg.res.Outcome == workout.Queued {
			m.setToast(msg.res.Message(), toastWarn)
		} else {
			m.setToast(msg.res.Message(), toastSuccess)
		}
		m.pull()
		return m, nil

	case syncedMsg:
		m.syncing = false
		sum := syncer.Summary(msg)
		if sum.Skipped {
			m.setToast("Sync already running", toastInfo)
		} else if sum.Attempted == 0 {
			m.setToast(sum.Message(), toastInfo)
		}
		// Non-empty passes report through the inbox.
		m.pull()
		return m, nil
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}
	return m.renderMain()
}

// handleKey processes keyboard input. Every key press is a user gesture, so
// audio is unlocked before anything else happens.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.timer.UnlockAudio()

	if m.showHelp {
		// Any key closes help
		m.showHelp = false
		return m, nil
	}

	if m.confirmDiscard {
		m.confirmDiscard = false
		if key.Matches(msg, m.keys.Confirm) {
			m.workout.Discard()
			m.setToast("Workout discarded", toastInfo)
		} else {
			m.setToast("Discard cancelled", toastInfo)
		}
		m.pull()
		return m, nil
	}

	var cmd tea.Cmd
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.bar = newBar(m.theme)
		m.bar.Width = max(10, m.width-20)
		if m.onTheme != nil {
			m.onTheme(m.theme.Name)
		}

	case key.Matches(msg, m.keys.CompleteSet):
		set, err := m.workout.CompleteNextSet()
		switch {
		case errors.Is(err, workout.ErrNoSession):
			m.setToast("No workout in progress", toastWarn)
		case errors.Is(err, workout.ErrNoPendingSet):
			m.setToast("All sets done, press f to finish", toastSuccess)
		case err != nil:
			m.setToast(err.Error(), toastError)
		default:
			m.setToast(fmt.Sprintf("Set logged: %s", formatSet(set)), toastSuccess)
		}

	case key.Matches(msg, m.keys.Finish):
		if !m.finishing {
			m.finishing = true
			cmd = finishCmd(m.ctx, m.workout)
		}

	case key.Matches(msg, m.keys.Discard):
		if m.sessionSnap.Active() || m.hasDraft {
			m.confirmDiscard = true
		} else {
			m.setToast("No workout in progress", toastWarn)
		}

	case key.Matches(msg, m.keys.Rest):
		m.timer.Start(m.workout.RestSeconds())

	case key.Matches(msg, m.keys.Presets):
		if idx := int(msg.String()[0] - '1'); idx >= 0 && idx < len(resttimer.Presets) {
			m.timer.Start(resttimer.Presets[idx])
		}

	case key.Matches(msg, m.keys.AddTime):
		m.timer.AddTime(adjustSeconds)

	case key.Matches(msg, m.keys.Subtract):
		m.timer.AddTime(-adjustSeconds)

	case key.Matches(msg, m.keys.StopRest):
		m.timer.Stop()

	case key.Matches(msg, m.keys.SyncNow):
		if !m.syncing {
			m.syncing = true
			cmd = syncCmd(m.ctx, m.syncer)
		}

	case key.Matches(msg, m.keys.Notifications):
		switch m.inbox.RequestPermission() {
		case platform.PermissionGranted:
			m.setToast("Rest notifications enabled", toastSuccess)
		default:
			m.setToast("Notifications are blocked in prefs", toastWarn)
		}
	}

	m.pull()
	return m, cmd
}

// pull refreshes every snapshot and picks up pending notifications.
func (m *Model) pull() {
	m.sessionSnap = m.session.Snapshot()
	m.draft, m.hasDraft = m.session.Draft()
	m.rest = m.timer.Snapshot()
	if m.conn != nil {
		m.connSnap = m.conn.Snapshot()
	}
	if m.queue != nil {
		m.queued = m.queue.Len()
	}
	if m.inbox != nil {
		if pending := m.inbox.Drain(); len(pending) > 0 {
			m.showNotifications(pending)
		}
	}
	if m.toast != "" && m.now().Sub(m.toastAt) > toastTTL {
		m.toast = ""
	}
}

// showNotifications toasts the most important pending notification. A rest
// alert wins over anything else; otherwise the newest one is shown.
func (m *Model) showNotifications(pending []platform.Notification) {
	pick := pending[len(pending)-1]
	level := toastInfo
	for _, n := range pending {
		if n.Title == restCompleteTitle {
			pick = n
			level = toastSuccess
			break
		}
	}
	text := pick.Title + ": " + pick.Body
	if extra := len(pending) - 1; extra > 0 {
		text += fmt.Sprintf(" (+%d more)", extra)
	}
	m.setToast(text, level)
}

func (m *Model) setToast(text string, level toastLevel) {
	m.toast = text
	m.toastLevel = level
	m.toastAt = m.now()
}

// Messages

type tickMsg time.Time

type finishedMsg struct {
	res workout.Result
	err error
}

type syncedMsg syncer.Summary

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func finishCmd(ctx context.Context, w *workout.Coordinator) tea.Cmd {
	return func() tea.Msg {
		res, err := w.Finish(ctx)
		return finishedMsg{res: res, err: err}
	}
}

func syncCmd(ctx context.Context, s *syncer.Coordinator) tea.Cmd {
	return func() tea.Msg {
		return syncedMsg(s.Drain(ctx))
	}
}

// Run starts the Bubble Tea program and blocks until the user quits or ctx
// is cancelled.
func Run(opts Options) error {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	p := tea.NewProgram(New(opts),
		tea.WithAltScreen(),
		tea.WithReportFocus(),
		tea.WithContext(ctx),
	)
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
