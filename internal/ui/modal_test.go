package ui

import (
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"
)

func TestModal_ShowHide(t *testing.T) {
	m := NewModal()
	if m.IsVisible() {
		t.Error("new modal should be hidden")
	}
	if m.View(80, 24) != "" {
		t.Error("hidden modal should render nothing")
	}

	m.Show(NewAlertState("Chat unavailable", "Error starting new chat. Please try again."))
	if !m.IsVisible() {
		t.Fatal("modal should be visible after Show")
	}

	view := stripANSI(m.View(100, 30))
	for _, want := range []string{"Chat unavailable", "Error starting new chat.", "Press Enter or Esc"} {
		if !strings.Contains(view, want) {
			t.Errorf("alert view missing %q", want)
		}
	}

	m.Hide()
	if m.IsVisible() {
		t.Error("modal should be hidden after Hide")
	}
}

func TestHelpState_Render(t *testing.T) {
	s := NewHelpState(
		HelpSection{Title: "Keys", Rows: []KeyBinding{{Key: "ctrl+n", Desc: "new chat"}}},
		HelpSection{Title: "Commands", Rows: []KeyBinding{{Key: "/file <path>", Desc: "send a file"}}},
	)

	view := stripANSI(s.Render())
	for _, want := range []string{"Help", "Keys", "ctrl+n", "new chat", "Commands", "/file <path>", "send a file"} {
		if !strings.Contains(view, want) {
			t.Errorf("help view missing %q", want)
		}
	}
}

func TestThemeState(t *testing.T) {
	s := NewThemeState(ThemeNord)

	if got := s.GetSelectedTheme(); got != ThemeNord {
		t.Errorf("preselected theme = %q, want nord", got)
	}

	var state ModalState = s
	state, _ = state.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	if got := state.(*ThemeState).GetSelectedTheme(); got != ThemeDracula {
		t.Errorf("after down = %q, want dracula", got)
	}

	for i := 0; i < 10; i++ {
		state, _ = state.Update(tea.KeyPressMsg{Code: tea.KeyUp})
	}
	if got := state.(*ThemeState).GetSelectedTheme(); got != ThemeDarkPurple {
		t.Errorf("up past the top = %q, want dark-purple", got)
	}

	view := stripANSI(state.Render())
	if !strings.Contains(view, "Nord (current)") {
		t.Errorf("current theme not marked:\n%s", view)
	}
}

func TestSetTheme(t *testing.T) {
	defer SetTheme(DefaultTheme)

	SetThemeByName("dracula")
	if CurrentThemeName() != ThemeDracula {
		t.Errorf("CurrentThemeName() = %q", CurrentThemeName())
	}
	if CurrentTheme().Name != "Dracula" {
		t.Errorf("CurrentTheme().Name = %q", CurrentTheme().Name)
	}

	SetThemeByName("no-such-theme")
	if CurrentThemeName() != DefaultTheme {
		t.Errorf("unknown theme should fall back to the default, got %q", CurrentThemeName())
	}
}

func TestBuiltinThemesComplete(t *testing.T) {
	for _, name := range ThemeNames() {
		theme, ok := BuiltinThemes[name]
		if !ok {
			t.Errorf("ThemeNames() lists %q but it is not built in", name)
			continue
		}
		for field, v := range map[string]string{
			"Primary": theme.Primary, "Bg": theme.Bg, "Text": theme.Text,
			"User": theme.User, "Bot": theme.Bot, "System": theme.System, "Error": theme.Error,
		} {
			if r, g, b := parseHexColor(v); v != "#000000" && r == 0 && g == 0 && b == 0 {
				t.Errorf("theme %q field %s = %q is not a hex color", name, field, v)
			}
		}
	}
	if len(ThemeNames()) != len(BuiltinThemes) {
		t.Errorf("ThemeNames() has %d entries, BuiltinThemes has %d", len(ThemeNames()), len(BuiltinThemes))
	}
}
