package ui

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/zhubert/parley/internal/keys"
)

// ModalState is a discriminated union interface for modal-specific state.
// Each modal type implements this interface with its own state struct.
type ModalState interface {
	modalState() // marker method to restrict implementations
	Title() string
	Help() string
	Render() string
	Update(msg tea.Msg) (ModalState, tea.Cmd)
}

// Modal represents a popup dialog. State is nil when no modal is visible.
type Modal struct {
	State ModalState
}

// NewModal creates a new modal
func NewModal() *Modal {
	return &Modal{}
}

// Show displays a modal with the given state
func (m *Modal) Show(state ModalState) {
	m.State = state
}

// Hide hides the modal
func (m *Modal) Hide() {
	m.State = nil
}

// IsVisible returns whether the modal is visible
func (m *Modal) IsVisible() bool {
	return m.State != nil
}

// Update handles messages by delegating to the current state
func (m *Modal) Update(msg tea.Msg) (*Modal, tea.Cmd) {
	if m.State == nil {
		return m, nil
	}
	var cmd tea.Cmd
	m.State, cmd = m.State.Update(msg)
	return m, cmd
}

// View renders the modal centered on the screen
func (m *Modal) View(screenWidth, screenHeight int) string {
	if m.State == nil {
		return ""
	}

	style := ModalStyle
	if _, ok := m.State.(*AlertState); ok {
		style = AlertModalStyle
	}

	return lipgloss.Place(
		screenWidth, screenHeight,
		lipgloss.Center, lipgloss.Center,
		style.Render(m.State.Render()),
	)
}

// =============================================================================
// AlertState - blocking error that must be acknowledged
// =============================================================================

// AlertState is a blocking error notice. It stays up until dismissed.
type AlertState struct {
	Heading string
	Message string
}

func (*AlertState) modalState() {}

func (s *AlertState) Title() string { return s.Heading }

func (s *AlertState) Help() string {
	return "Press Enter or Esc to dismiss"
}

func (s *AlertState) Render() string {
	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorError).
		MarginBottom(1).
		Render("⚠ " + s.Title())

	body := lipgloss.NewStyle().
		Foreground(ColorText).
		Width(ModalWidth - 6).
		Render(s.Message)

	return lipgloss.JoinVertical(lipgloss.Left, title, body, ModalHelpStyle.Render(s.Help()))
}

func (s *AlertState) Update(msg tea.Msg) (ModalState, tea.Cmd) {
	return s, nil
}

// NewAlertState creates a new AlertState
func NewAlertState(heading, message string) *AlertState {
	return &AlertState{Heading: heading, Message: message}
}

// =============================================================================
// HelpState - key bindings and slash commands
// =============================================================================

// HelpSection is a titled group of help rows
type HelpSection struct {
	Title string
	Rows  []KeyBinding
}

// HelpState lists key bindings and slash commands
type HelpState struct {
	Sections []HelpSection
}

func (*HelpState) modalState() {}

func (s *HelpState) Title() string { return "Help" }

func (s *HelpState) Help() string {
	return "Press Enter or Esc to close"
}

func (s *HelpState) Render() string {
	keyStyle := lipgloss.NewStyle().Foreground(ColorSecondary).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(ColorText)
	sectionStyle := lipgloss.NewStyle().Foreground(ColorTextMuted).MarginTop(1)

	keyWidth := 0
	for _, section := range s.Sections {
		for _, row := range section.Rows {
			keyWidth = max(keyWidth, lipgloss.Width(row.Key))
		}
	}

	parts := []string{ModalTitleStyle.Render(s.Title())}
	for _, section := range s.Sections {
		parts = append(parts, sectionStyle.Render(section.Title))
		var rows []string
		for _, row := range section.Rows {
			pad := strings.Repeat(" ", keyWidth-lipgloss.Width(row.Key))
			rows = append(rows, "  "+keyStyle.Render(row.Key)+pad+"  "+descStyle.Render(row.Desc))
		}
		parts = append(parts, strings.Join(rows, "\n"))
	}
	parts = append(parts, ModalHelpStyle.Render(s.Help()))

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (s *HelpState) Update(msg tea.Msg) (ModalState, tea.Cmd) {
	return s, nil
}

// NewHelpState creates a new HelpState
func NewHelpState(sections ...HelpSection) *HelpState {
	return &HelpState{Sections: sections}
}

// =============================================================================
// ThemeState - theme picker
// =============================================================================

// ThemeState lets the user pick a theme
type ThemeState struct {
	Themes        []ThemeName
	SelectedIndex int
	CurrentTheme  ThemeName
}

func (*ThemeState) modalState() {}

func (s *ThemeState) Title() string { return "Select Theme" }

func (s *ThemeState) Help() string {
	return "↑/↓ to select, Enter to apply, Esc to cancel"
}

func (s *ThemeState) Render() string {
	title := ModalTitleStyle.Render(s.Title())

	var content strings.Builder
	for i, themeName := range s.Themes {
		theme := GetTheme(themeName)
		style := SidebarItemStyle
		prefix := "  "
		suffix := ""

		if i == s.SelectedIndex {
			style = SidebarSelectedStyle
			prefix = "> "
		}
		if themeName == s.CurrentTheme {
			suffix = " (current)"
		}

		content.WriteString(style.Render(prefix + theme.Name + suffix))
		content.WriteString("\n")
	}

	return lipgloss.JoinVertical(lipgloss.Left, title, content.String(), ModalHelpStyle.Render(s.Help()))
}

func (s *ThemeState) Update(msg tea.Msg) (ModalState, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyPressMsg); ok {
		switch keyMsg.String() {
		case keys.Up, "k":
			if s.SelectedIndex > 0 {
				s.SelectedIndex--
			}
		case keys.Down, "j":
			if s.SelectedIndex < len(s.Themes)-1 {
				s.SelectedIndex++
			}
		}
	}
	return s, nil
}

// GetSelectedTheme returns the selected theme name
func (s *ThemeState) GetSelectedTheme() ThemeName {
	if len(s.Themes) == 0 || s.SelectedIndex >= len(s.Themes) {
		return DefaultTheme
	}
	return s.Themes[s.SelectedIndex]
}

// NewThemeState creates a new ThemeState with the current theme preselected
func NewThemeState(currentTheme ThemeName) *ThemeState {
	themes := ThemeNames()

	selectedIndex := 0
	for i, t := range themes {
		if t == currentTheme {
			selectedIndex = i
			break
		}
	}

	return &ThemeState{
		Themes:        themes,
		SelectedIndex: selectedIndex,
		CurrentTheme:  currentTheme,
	}
}
