package chat

import (
	"testing"
	"time"
)

func TestHistoryEntry_DisplayTitle(t *testing.T) {
	tests := []struct {
		name  string
		entry HistoryEntry
		want  string
	}{
		{"titled", HistoryEntry{ID: "abcdef123", Title: "TV won't turn on"}, "TV won't turn on"},
		{"untitled uses id suffix", HistoryEntry{ID: "abcdef12345"}, "Session 12345"},
		{"short id", HistoryEntry{ID: "ab"}, "Session ab"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.entry.DisplayTitle(); got != tt.want {
				t.Errorf("DisplayTitle() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestHistoryEntry_HasPlaceholderTitle(t *testing.T) {
	tests := []struct {
		title string
		want  bool
	}{
		{"", true},
		{"New Chat", true},
		{"New Chat 3", true},
		{"Chat 1a2b3c4d", true},
		{"Session 12345", true},
		{"Chatting about remotes", false},
		{"TV: QLED55 - no sound", false},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			h := HistoryEntry{ID: "x", Title: tt.title}
			if got := h.HasPlaceholderTitle(); got != tt.want {
				t.Errorf("HasPlaceholderTitle(%q) = %v, want %v", tt.title, got, tt.want)
			}
		})
	}
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"Chatbot", ModeChatbot, false},
		{"chatbot", ModeChatbot, false},
		{"Interactive Assistant", ModeInteractiveAssistant, false},
		{"assistant", ModeInteractiveAssistant, false},
		{" ASSISTANT ", ModeInteractiveAssistant, false},
		{"voice", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMode(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseMode(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseMode(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestMode_Next(t *testing.T) {
	if got := ModeChatbot.Next(); got != ModeInteractiveAssistant {
		t.Errorf("Chatbot.Next() = %q", got)
	}
	if got := ModeInteractiveAssistant.Next(); got != ModeChatbot {
		t.Errorf("InteractiveAssistant.Next() = %q", got)
	}
}

func TestNextLanguage(t *testing.T) {
	tests := map[string]string{
		"en": "fr",
		"fr": "ar",
		"ar": "en",
		"de": "en",
	}
	for in, want := range tests {
		if got := NextLanguage(in); got != want {
			t.Errorf("NextLanguage(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestOutgoing_Validate(t *testing.T) {
	tests := []struct {
		name    string
		out     Outgoing
		wantErr bool
	}{
		{"text", TextMessage("hello"), false},
		{"blank text", TextMessage("   "), true},
		{"text with file", Outgoing{Type: TypeText, Text: "hi", File: &Attachment{Name: "a.png"}}, true},
		{"file", FileMessage(&Attachment{Name: "photo.png", Data: []byte{1}}), false},
		{"file without attachment", FileMessage(nil), true},
		{"file without name", FileMessage(&Attachment{Data: []byte{1}}), true},
		{"unknown type", Outgoing{Type: "audio", Text: "x"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.out.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestOutgoing_DisplayText(t *testing.T) {
	if got := FileMessage(&Attachment{Name: "photo.png"}).DisplayText(); got != "File: photo.png" {
		t.Errorf("file DisplayText() = %q", got)
	}
	if got := TextMessage("hello").DisplayText(); got != "hello" {
		t.Errorf("text DisplayText() = %q", got)
	}
}

func TestNewMessage(t *testing.T) {
	now := time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC)
	msg := NewMessage(SenderSystem, "hi", now)

	if msg.Timestamp != "2026-10-18T09:30:00Z" {
		t.Errorf("Timestamp = %q", msg.Timestamp)
	}
	if msg.Type != TypeText {
		t.Errorf("Type = %q, want text", msg.Type)
	}
	if msg.IsConversational() {
		t.Error("system message should not be conversational")
	}
}
