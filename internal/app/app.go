package app

import (
	"context"
	"os"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/zhubert/parley/internal/backend"
	"github.com/zhubert/parley/internal/chat"
	"github.com/zhubert/parley/internal/clipboard"
	"github.com/zhubert/parley/internal/config"
	"github.com/zhubert/parley/internal/logger"
	"github.com/zhubert/parley/internal/notification"
	"github.com/zhubert/parley/internal/session"
	"github.com/zhubert/parley/internal/store"
	"github.com/zhubert/parley/internal/ui"
)

// Focus represents which panel is focused
type Focus int

const (
	FocusSidebar Focus = iota
	FocusChat
)

func (f Focus) String() string {
	if f == FocusSidebar {
		return "sidebar"
	}
	return "chat"
}

// Model is the main Bubble Tea model. It renders store snapshots and turns
// key presses into calls on the session controllers, which run as commands
// off the UI goroutine.
type Model struct {
	config  *config.Config
	version string

	store      *store.Store
	lifecycle  *session.Lifecycle
	dispatcher *session.Dispatcher

	ctx    context.Context
	cancel context.CancelFunc

	header  *ui.Header
	footer  *ui.Footer
	sidebar *ui.Sidebar
	chat    *ui.Chat
	modal   *ui.Modal

	width  int
	height int
	focus  Focus

	// lastNotified is the timestamp of the last reply a notification went out for.
	lastNotified string

	// Side effects, replaced in tests.
	now        func() time.Time
	readFile   func(path string) ([]byte, error)
	copyText   func(text string) error
	pasteImage func(now time.Time) (*chat.Attachment, error)
	notify     func(assistantName, reply string) error
}

// StoreChangedMsg is sent whenever the session store has been mutated.
type StoreChangedMsg struct{}

// InitializedMsg is sent when the startup sequence has finished.
type InitializedMsg struct {
	SessionID string
	Err       error
}

// SessionOpenedMsg is sent when a user-triggered create or load has finished.
type SessionOpenedMsg struct {
	SessionID string
	Created   bool
	Err       error
}

// ReplyMsg is sent when a send has finished. Reply is the line appended to the
// transcript, which may describe a failure.
type ReplyMsg struct {
	Reply *chat.Message
	Err   error
}

// HistoryRefreshedMsg is sent after a manual history refresh.
type HistoryRefreshedMsg struct {
	Count int
}

// CopyResultMsg is sent after the last reply was copied to the clipboard.
type CopyResultMsg struct {
	Err error
}

// New creates a new app model talking to gw.
func New(cfg *config.Config, gw backend.Gateway, version string) *Model {
	// Load saved theme from config, or use default
	if savedTheme := cfg.GetTheme(); savedTheme != "" {
		ui.SetThemeByName(savedTheme)
	}

	st := store.New(cfg.GetMode(), cfg.GetLanguage())
	lifecycle := session.NewLifecycle(gw, st)
	ctx, cancel := context.WithCancel(context.Background())

	m := &Model{
		config:     cfg,
		version:    version,
		store:      st,
		lifecycle:  lifecycle,
		dispatcher: session.NewDispatcher(lifecycle),
		ctx:        ctx,
		cancel:     cancel,
		header:     ui.NewHeader(cfg.GetAssistantName()),
		footer:     ui.NewFooter(),
		sidebar:    ui.NewSidebar(),
		chat:       ui.NewChat(cfg.GetAssistantName()),
		modal:      ui.NewModal(),
		focus:      FocusChat,
		now:        time.Now,
		readFile:   os.ReadFile,
		copyText:   clipboard.WriteText,
		pasteImage: clipboard.ReadImage,
		notify:     notification.ReplyReceived,
	}

	m.chat.SetFocused(true)
	m.header.SetPreferences(st.Mode(), st.Language())
	m.sidebar.SetLanguage(st.Language())
	m.chat.SetLanguage(st.Language())

	return m
}

// Store returns the store the model renders.
func (m *Model) Store() *store.Store {
	return m.store
}

// Close cancels in-flight requests. The program calls it after Run returns.
func (m *Model) Close() {
	m.cancel()
}

// Init starts the session lifecycle and the store listener.
func (m *Model) Init() tea.Cmd {
	logger.WithComponent("app").Info("starting", "version", m.version, "server", m.config.GetServerURL())
	return tea.Batch(
		m.initializeCmd(),
		m.listenForStoreChanges(),
		m.sidebar.SetLoading(true),
	)
}

// isBusy reports whether the controllers would reject a user-triggered operation.
func (m *Model) isBusy() bool {
	st := m.store.Snapshot()
	return st.IsLoadingResponse || st.IsModuleInitializing
}

// setFocus moves focus between the sidebar and the chat input.
func (m *Model) setFocus(f Focus) tea.Cmd {
	if f == FocusSidebar && !ui.GetViewContext().SidebarVisible {
		f = FocusChat
	}
	m.focus = f
	m.sidebar.SetFocused(f == FocusSidebar)
	return m.chat.SetFocused(f == FocusChat)
}

func (m *Model) toggleFocus() tea.Cmd {
	if m.focus == FocusSidebar {
		return m.setFocus(FocusChat)
	}
	return m.setFocus(FocusSidebar)
}

// toggleSidebar shows or hides the sidebar. Hiding it moves focus to the chat.
func (m *Model) toggleSidebar() tea.Cmd {
	ctx := ui.GetViewContext()
	ctx.SetSidebarVisible(!ctx.SidebarVisible)
	m.updateSizes()
	if !ctx.SidebarVisible && m.focus == FocusSidebar {
		return m.setFocus(FocusChat)
	}
	return nil
}
