package ui

import (
	"strings"
	"testing"
	"time"
)

func bindingKeys(bindings []KeyBinding) []string {
	keys := make([]string, len(bindings))
	for i, b := range bindings {
		keys[i] = b.Key
	}
	return keys
}

func TestFooter_Bindings(t *testing.T) {
	tests := []struct {
		name           string
		sidebarFocused bool
		hasSession     bool
		loading        bool
		modalOpen      bool
		want           []string
		notWant        []string
	}{
		{
			name:       "chat focused with session",
			hasSession: true,
			want:       []string{"enter", "ctrl+t", "ctrl+l", "ctrl+y"},
		},
		{
			name:    "chat focused without session",
			want:    []string{"enter", "ctrl+n"},
			notWant: []string{"ctrl+y"},
		},
		{
			name:           "sidebar focused",
			sidebarFocused: true,
			hasSession:     true,
			want:           []string{"enter", "/", "ctrl+r"},
			notWant:        []string{"ctrl+t"},
		},
		{
			name:       "waiting for reply",
			hasSession: true,
			loading:    true,
			want:       []string{"pgup/dn"},
			notWant:    []string{"enter"},
		},
		{
			name:       "modal open",
			hasSession: true,
			modalOpen:  true,
			want:       []string{"enter/esc"},
			notWant:    []string{"ctrl+n"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewFooter()
			f.SetContext(tt.sidebarFocused, tt.hasSession, tt.loading, tt.modalOpen)
			got := strings.Join(bindingKeys(f.Bindings()), ",")

			for _, k := range tt.want {
				if !strings.Contains(","+got+",", ","+k+",") {
					t.Errorf("bindings %q missing %q", got, k)
				}
			}
			for _, k := range tt.notWant {
				if strings.Contains(","+got+",", ","+k+",") {
					t.Errorf("bindings %q should not contain %q", got, k)
				}
			}
		})
	}
}

func TestFooter_View(t *testing.T) {
	f := NewFooter()
	f.SetWidth(200)
	f.SetContext(false, true, false, false)

	view := stripANSI(f.View())
	if !strings.Contains(view, "enter: send") {
		t.Errorf("footer = %q, want send hint", view)
	}
	if !strings.Contains(view, "|") {
		t.Errorf("footer = %q, want separators", view)
	}
}

func TestFooter_Flash(t *testing.T) {
	now := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	f := NewFooter()
	f.now = func() time.Time { return now }
	f.SetWidth(120)

	f.SetFlash("Please wait for the current request to finish.", FlashWarning)
	if !f.HasFlash() {
		t.Fatal("HasFlash() = false after SetFlash")
	}
	view := stripANSI(f.View())
	if !strings.Contains(view, "Please wait") || strings.Contains(view, "send") {
		t.Errorf("flash should replace the key hints: %q", view)
	}

	// A tick before expiry keeps the flash
	f.Update(FlashTickMsg(now))
	if !f.HasFlash() {
		t.Error("flash cleared before it expired")
	}

	now = now.Add(FlashDuration)
	f.Update(FlashTickMsg(now))
	if f.HasFlash() {
		t.Error("flash should clear once expired")
	}
}

func TestFooter_NewerFlashOutlivesOldTick(t *testing.T) {
	now := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	f := NewFooter()
	f.now = func() time.Time { return now }

	f.SetFlash("first", FlashInfo)
	now = now.Add(FlashDuration - time.Second)
	f.SetFlash("second", FlashError)

	// The first flash's tick arrives; the second one has not expired yet
	now = now.Add(time.Second)
	f.Update(FlashTickMsg(now))
	if !f.HasFlash() {
		t.Error("second flash cleared by the first flash's tick")
	}
}
