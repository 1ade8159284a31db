package ui

import (
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
)

// FlashDuration is how long a flash message stays in the footer
const FlashDuration = 4 * time.Second

// FlashType selects the color of a flash message
type FlashType int

const (
	FlashInfo FlashType = iota
	FlashSuccess
	FlashWarning
	FlashError
)

// FlashTickMsg is sent to check whether the flash message has expired
type FlashTickMsg time.Time

// FlashTick returns a command that fires once the flash duration has passed
func FlashTick() tea.Cmd {
	return tea.Tick(FlashDuration, func(t time.Time) tea.Msg {
		return FlashTickMsg(t)
	})
}

// KeyBinding represents a keyboard shortcut
type KeyBinding struct {
	Key  string
	Desc string
}

// Footer represents the bottom footer bar with keybindings
type Footer struct {
	width          int
	sidebarFocused bool
	hasSession     bool
	loading        bool
	modalOpen      bool

	flashText    string
	flashType    FlashType
	flashExpires time.Time
	now          func() time.Time
}

// NewFooter creates a new footer
func NewFooter() *Footer {
	return &Footer{now: time.Now}
}

// SetWidth sets the footer width
func (f *Footer) SetWidth(width int) {
	f.width = width
}

// SetContext updates the footer's context for conditional bindings
func (f *Footer) SetContext(sidebarFocused, hasSession, loading, modalOpen bool) {
	f.sidebarFocused = sidebarFocused
	f.hasSession = hasSession
	f.loading = loading
	f.modalOpen = modalOpen
}

// SetFlash shows text in place of the key hints until FlashDuration passes
func (f *Footer) SetFlash(text string, flashType FlashType) {
	f.flashText = text
	f.flashType = flashType
	f.flashExpires = f.now().Add(FlashDuration)
}

// ClearFlash removes the flash message
func (f *Footer) ClearFlash() {
	f.flashText = ""
}

// HasFlash reports whether a flash message is showing
func (f *Footer) HasFlash() bool {
	return f.flashText != ""
}

// Update clears an expired flash message
func (f *Footer) Update(msg tea.Msg) (*Footer, tea.Cmd) {
	if _, ok := msg.(FlashTickMsg); ok && f.flashText != "" {
		if !f.now().Before(f.flashExpires) {
			f.ClearFlash()
		}
	}
	return f, nil
}

// Bindings returns the key hints for the current context
func (f *Footer) Bindings() []KeyBinding {
	switch {
	case f.modalOpen:
		return []KeyBinding{
			{Key: "enter/esc", Desc: "dismiss"},
		}
	case f.sidebarFocused:
		return []KeyBinding{
			{Key: "↑/↓", Desc: "select"},
			{Key: "enter", Desc: "open chat"},
			{Key: "/", Desc: "filter"},
			{Key: "ctrl+n", Desc: "new chat"},
			{Key: "ctrl+r", Desc: "refresh"},
			{Key: "tab", Desc: "chat"},
			{Key: "ctrl+c", Desc: "quit"},
		}
	case f.loading:
		return []KeyBinding{
			{Key: "pgup/dn", Desc: "scroll"},
			{Key: "tab", Desc: "history"},
			{Key: "ctrl+c", Desc: "quit"},
		}
	default:
		bindings := []KeyBinding{
			{Key: "enter", Desc: "send"},
			{Key: "ctrl+t", Desc: "mode"},
			{Key: "ctrl+l", Desc: "language"},
			{Key: "ctrl+n", Desc: "new chat"},
		}
		if f.hasSession {
			bindings = append(bindings, KeyBinding{Key: "ctrl+y", Desc: "copy reply"})
		}
		return append(bindings,
			KeyBinding{Key: "ctrl+b", Desc: "sidebar"},
			KeyBinding{Key: "tab", Desc: "history"},
			KeyBinding{Key: "/help", Desc: "commands"},
		)
	}
}

// View renders the footer
func (f *Footer) View() string {
	if f.flashText != "" {
		return FooterStyle.Width(f.width).Render(f.flashStyle().Render(f.flashText))
	}

	var parts []string
	for _, b := range f.Bindings() {
		key := FooterKeyStyle.Render(b.Key)
		desc := FooterDescStyle.Render(": " + b.Desc)
		parts = append(parts, key+desc)
	}

	content := strings.Join(parts, "  "+lipgloss.NewStyle().Foreground(ColorBorder).Render("|")+"  ")
	return FooterStyle.Width(f.width).Render(content)
}

func (f *Footer) flashStyle() lipgloss.Style {
	switch f.flashType {
	case FlashError:
		return FooterFlashStyle.Foreground(ColorError)
	case FlashWarning:
		return FooterFlashStyle.Foreground(ColorWarning)
	case FlashSuccess:
		return FooterFlashStyle.Foreground(ColorSuccess)
	default:
		return FooterFlashStyle.Foreground(ColorSecondary)
	}
}
