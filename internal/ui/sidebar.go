package ui

import (
	"strings"
	"time"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"

	"github.com/zhubert/parley/internal/chat"
	"github.com/zhubert/parley/internal/keys"
)

// sidebarSpinnerFrames uses the same shimmering spinner as the chat panel
var sidebarSpinnerFrames = []string{"·", "✺", "✹", "✸", "✷", "✶", "✵", "✴", "✳", "✲", "✱", "✧", "✦", "·"}

// SidebarTickMsg is sent to advance the spinner animation
type SidebarTickMsg time.Time

// SidebarTick returns a command that sends a tick message after a delay
func SidebarTick() tea.Cmd {
	return tea.Tick(300*time.Millisecond, func(t time.Time) tea.Msg {
		return SidebarTickMsg(t)
	})
}

// Sidebar represents the left panel with the chat history
type Sidebar struct {
	entries      []chat.HistoryEntry
	filtered     []chat.HistoryEntry // nil when no filter is applied
	activeID     string
	language     string
	loading      bool
	selectedIdx  int
	scrollOffset int
	width        int
	height       int
	focused      bool
	spinnerFrame int

	searchMode  bool
	searchInput textinput.Model
}

// NewSidebar creates a new sidebar
func NewSidebar() *Sidebar {
	ti := textinput.New()
	ti.Placeholder = "filter..."
	ti.CharLimit = SidebarSearchCharLimit

	return &Sidebar{
		language:    chat.DefaultLanguage,
		searchInput: ti,
	}
}

// SetSize sets the sidebar dimensions
func (s *Sidebar) SetSize(width, height int) {
	s.width = width
	s.height = height
}

// Width returns the sidebar width
func (s *Sidebar) Width() int {
	return s.width
}

// SetFocused sets the focus state
func (s *Sidebar) SetFocused(focused bool) {
	s.focused = focused
	if !focused && s.searchMode {
		s.searchMode = false
		s.searchInput.Blur()
	}
}

// IsFocused returns the focus state
func (s *Sidebar) IsFocused() bool {
	return s.focused
}

// SetHistory replaces the listed entries, keeping the selection on the same
// session when it is still present.
func (s *Sidebar) SetHistory(entries []chat.HistoryEntry) {
	var selectedID string
	if e, ok := s.SelectedEntry(); ok {
		selectedID = e.ID
	}

	s.entries = entries
	if s.filtered != nil {
		s.applyFilter(s.searchInput.Value())
	}

	if selectedID == "" || !s.selectByID(selectedID) {
		s.clampSelection()
	}
}

// SetActive marks the active session
func (s *Sidebar) SetActive(id string) {
	if s.activeID == id {
		return
	}
	s.activeID = id
	if id != "" {
		s.selectByID(id)
	}
}

// ActiveID returns the session marked active
func (s *Sidebar) ActiveID() string {
	return s.activeID
}

// SetLanguage sets the language shown under the title
func (s *Sidebar) SetLanguage(language string) {
	s.language = language
}

// SetLoading shows the loading state while history is not yet known.
// It returns a tick command when the spinner needs to start.
func (s *Sidebar) SetLoading(loading bool) tea.Cmd {
	was := s.loading
	s.loading = loading
	if loading && !was {
		return SidebarTick()
	}
	return nil
}

// IsLoading reports whether the loading state is shown
func (s *Sidebar) IsLoading() bool {
	return s.loading
}

// SelectedEntry returns the entry under the cursor
func (s *Sidebar) SelectedEntry() (chat.HistoryEntry, bool) {
	display := s.displayEntries()
	if s.selectedIdx < 0 || s.selectedIdx >= len(display) {
		return chat.HistoryEntry{}, false
	}
	return display[s.selectedIdx], true
}

func (s *Sidebar) selectByID(id string) bool {
	for i, e := range s.displayEntries() {
		if e.ID == id {
			s.selectedIdx = i
			return true
		}
	}
	return false
}

func (s *Sidebar) clampSelection() {
	n := len(s.displayEntries())
	if s.selectedIdx >= n {
		s.selectedIdx = n - 1
	}
	if s.selectedIdx < 0 {
		s.selectedIdx = 0
	}
}

// EnterSearchMode activates the history filter
func (s *Sidebar) EnterSearchMode() tea.Cmd {
	s.searchMode = true
	s.searchInput.SetValue("")
	s.applyFilter("")
	return s.searchInput.Focus()
}

// ExitSearchMode deactivates search mode and clears the filter
func (s *Sidebar) ExitSearchMode() {
	s.searchMode = false
	s.searchInput.Blur()
	s.searchInput.SetValue("")
	s.filtered = nil
	if !s.selectByID(s.activeID) {
		s.clampSelection()
	}
}

// IsSearchMode returns whether search mode is active
func (s *Sidebar) IsSearchMode() bool {
	return s.searchMode
}

// applyFilter keeps the entries whose display title contains query
func (s *Sidebar) applyFilter(query string) {
	if query == "" {
		s.filtered = nil
		s.clampSelection()
		return
	}

	query = strings.ToLower(query)
	s.filtered = []chat.HistoryEntry{}
	for _, e := range s.entries {
		if strings.Contains(strings.ToLower(e.DisplayTitle()), query) {
			s.filtered = append(s.filtered, e)
		}
	}
	s.selectedIdx = 0
	s.scrollOffset = 0
}

// displayEntries returns the entries to display (filtered or all)
func (s *Sidebar) displayEntries() []chat.HistoryEntry {
	if s.filtered != nil {
		return s.filtered
	}
	return s.entries
}

// Update handles messages
func (s *Sidebar) Update(msg tea.Msg) (*Sidebar, tea.Cmd) {
	switch msg := msg.(type) {
	case SidebarTickMsg:
		if !s.loading {
			return s, nil
		}
		s.spinnerFrame = (s.spinnerFrame + 1) % len(sidebarSpinnerFrames)
		return s, SidebarTick()

	case tea.KeyPressMsg:
		if !s.focused {
			return s, nil
		}

		if s.searchMode {
			switch msg.String() {
			case keys.Escape:
				s.ExitSearchMode()
				return s, nil
			case keys.Enter:
				// Keep the filter applied; the app opens the selection
				s.searchMode = false
				s.searchInput.Blur()
				return s, nil
			case keys.Up, keys.CtrlP:
				if s.selectedIdx > 0 {
					s.selectedIdx--
				}
				return s, nil
			case keys.Down, keys.CtrlN:
				if s.selectedIdx < len(s.displayEntries())-1 {
					s.selectedIdx++
				}
				return s, nil
			default:
				var cmd tea.Cmd
				s.searchInput, cmd = s.searchInput.Update(msg)
				s.applyFilter(s.searchInput.Value())
				return s, cmd
			}
		}

		switch msg.String() {
		case keys.Up, "k":
			if s.selectedIdx > 0 {
				s.selectedIdx--
			}
		case keys.Down, "j":
			if s.selectedIdx < len(s.displayEntries())-1 {
				s.selectedIdx++
			}
		case keys.Home, "g":
			s.selectedIdx = 0
		case keys.End, "G":
			s.clampSelectionToEnd()
		case "/":
			return s, s.EnterSearchMode()
		case keys.Escape:
			if s.filtered != nil {
				s.ExitSearchMode()
			}
		}
	}

	return s, nil
}

func (s *Sidebar) clampSelectionToEnd() {
	s.selectedIdx = len(s.displayEntries()) - 1
	s.clampSelection()
}

// View renders the sidebar
func (s *Sidebar) View() string {
	ctx := GetViewContext()

	style := PanelStyle
	if s.focused {
		style = PanelFocusedStyle
	}

	innerWidth := ctx.InnerWidth(s.width)
	innerHeight := ctx.InnerHeight(s.height)

	lines := []string{
		PanelTitleStyle.Render("Chats"),
		SidebarLanguageStyle.Render(ansi.Truncate(chat.LanguageName(s.language), innerWidth, "…")),
	}

	if s.searchMode || s.filtered != nil {
		s.searchInput.SetWidth(innerWidth - 3)
		searchLine := lipgloss.NewStyle().Foreground(ColorSecondary).Bold(true).Render("/") + " " + s.searchInput.View()
		lines = append(lines, searchLine)
	}
	lines = append(lines, "")

	available := innerHeight - len(lines)
	if available < 1 {
		available = 1
	}

	display := s.displayEntries()
	switch {
	case s.loading:
		spinner := lipgloss.NewStyle().Foreground(ColorUser).Bold(true).Render(sidebarSpinnerFrames[s.spinnerFrame])
		lines = append(lines, spinner+" "+StatusLoadingStyle.Render("Loading history..."))
	case len(display) == 0:
		empty := "No chats yet."
		if s.filtered != nil {
			empty = "No matches."
		}
		lines = append(lines, lipgloss.NewStyle().Foreground(ColorTextMuted).Italic(true).Render(empty))
	default:
		s.adjustScroll(available, len(display))
		end := s.scrollOffset + available
		if end > len(display) {
			end = len(display)
		}
		for i := s.scrollOffset; i < end; i++ {
			lines = append(lines, s.renderEntry(display[i], i == s.selectedIdx, innerWidth))
		}
	}

	return style.Width(s.width).Height(s.height).Render(strings.Join(lines, "\n"))
}

// adjustScroll keeps the selected entry inside the visible window
func (s *Sidebar) adjustScroll(visible, total int) {
	if s.selectedIdx < s.scrollOffset {
		s.scrollOffset = s.selectedIdx
	} else if s.selectedIdx >= s.scrollOffset+visible {
		s.scrollOffset = s.selectedIdx - visible + 1
	}
	maxScroll := total - visible
	if maxScroll < 0 {
		maxScroll = 0
	}
	if s.scrollOffset > maxScroll {
		s.scrollOffset = maxScroll
	}
	if s.scrollOffset < 0 {
		s.scrollOffset = 0
	}
}

// renderEntry renders one history line, truncated to the panel width
func (s *Sidebar) renderEntry(e chat.HistoryEntry, selected bool, width int) string {
	marker := "  "
	if e.ID == s.activeID {
		marker = SidebarActiveStyle.Render(ActiveMarker) + " "
	}

	// Item styles pad one cell on each side
	title := ansi.Truncate(e.DisplayTitle(), width-4, "…")

	itemStyle := SidebarItemStyle
	if selected && s.focused {
		itemStyle = SidebarSelectedStyle
	}
	return itemStyle.Width(width).Render(marker + title)
}
