package ui

import (
	"strings"
	"testing"
	"time"

	"github.com/zhubert/parley/internal/chat"
)

var chatTestNow = time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)

func newTestChat() *Chat {
	c := NewChat("Bomare Assistant")
	c.now = func() time.Time { return chatTestNow }
	c.SetSize(80, 30)
	return c
}

func TestChat_InitializingScreen(t *testing.T) {
	c := newTestChat()

	content := stripANSI(c.renderContent())
	if !strings.Contains(content, "Connecting to Bomare Assistant...") {
		t.Errorf("initializing content = %q", content)
	}
}

func TestChat_WelcomeScreen(t *testing.T) {
	c := newTestChat()
	c.SetState(nil, true, false)

	content := stripANSI(c.renderContent())
	if !strings.Contains(content, "Welcome to Bomare Assistant") {
		t.Errorf("welcome content = %q", content)
	}
	if !strings.Contains(content, "/file <path>") {
		t.Errorf("welcome should mention /file: %q", content)
	}
}

func TestChat_RendersMessagesBySender(t *testing.T) {
	c := newTestChat()
	c.SetState([]chat.Message{
		chat.NewMessage(chat.SenderSystem, "Context: Mode - Chatbot, Language - EN.", chatTestNow),
		chat.NewMessage(chat.SenderUser, "hello", chatTestNow),
		{Sender: chat.SenderUser, Text: "File: photo.png", Type: chat.TypeFile},
		chat.NewMessage(chat.SenderBot, "**Hi** there", chatTestNow),
	}, true, false)

	content := stripANSI(c.renderContent())
	for _, want := range []string{
		"Chatbot · EN",
		"You:\nhello",
		"📎 File: photo.png",
		"Bomare Assistant:\nHi there",
	} {
		if !strings.Contains(content, want) {
			t.Errorf("content missing %q:\n%s", want, content)
		}
	}
	if strings.Contains(content, "**") {
		t.Error("bot markdown should be rendered, not shown raw")
	}
	if strings.Contains(content, "Context: Mode") {
		t.Error("context banner should render as a divider")
	}
	if strings.Contains(content, noSessionHint) {
		t.Error("no-session hint shown while a session is active")
	}
}

func TestChat_NoSessionHint(t *testing.T) {
	c := newTestChat()
	c.SetState([]chat.Message{
		chat.NewMessage(chat.SenderSystem, "Error starting new chat. Please try again.", chatTestNow),
	}, false, false)

	content := stripANSI(c.renderContent())
	if !strings.Contains(content, noSessionHint) {
		t.Errorf("content should end with the no-session hint:\n%s", content)
	}
}

func TestChat_Waiting(t *testing.T) {
	c := newTestChat()
	c.SetState([]chat.Message{chat.NewMessage(chat.SenderUser, "hello", chatTestNow)}, true, false)

	if cmd := c.SetWaiting(true); cmd == nil {
		t.Fatal("SetWaiting(true) should start the stopwatch")
	}
	if cmd := c.SetWaiting(true); cmd != nil {
		t.Error("SetWaiting(true) twice should not start a second stopwatch")
	}
	if !c.IsWaiting() {
		t.Fatal("IsWaiting() = false")
	}

	chatTestNow = chatTestNow.Add(5 * time.Second)
	defer func() { chatTestNow = chatTestNow.Add(-5 * time.Second) }()

	content := stripANSI(c.renderContent())
	if !strings.Contains(content, c.waitingVerb+"...") || !strings.Contains(content, "(5s)") {
		t.Errorf("waiting indicator missing:\n%s", content)
	}

	_, cmd := c.Update(StopwatchTickMsg{})
	if cmd == nil {
		t.Error("tick while waiting should schedule another")
	}

	c.SetWaiting(false)
	_, cmd = c.Update(StopwatchTickMsg{})
	if cmd != nil {
		t.Error("tick after waiting should stop")
	}
}

func TestChat_LastBotReply(t *testing.T) {
	c := newTestChat()

	if _, ok := c.LastBotReply(); ok {
		t.Error("empty transcript has no bot reply")
	}

	c.SetState([]chat.Message{
		chat.NewMessage(chat.SenderBot, "first", chatTestNow),
		chat.NewMessage(chat.SenderUser, "again", chatTestNow),
		chat.NewMessage(chat.SenderBot, "second", chatTestNow),
		chat.NewMessage(chat.SenderSystem, "Switched to Chatbot mode.", chatTestNow),
	}, true, false)

	got, ok := c.LastBotReply()
	if !ok || got != "second" {
		t.Errorf("LastBotReply() = %q, %v", got, ok)
	}
}

func TestChat_Input(t *testing.T) {
	c := newTestChat()

	c.SetInput("  hello world  ")
	if got := c.GetInput(); got != "hello world" {
		t.Errorf("GetInput() = %q", got)
	}
	c.ClearInput()
	if got := c.GetInput(); got != "" {
		t.Errorf("GetInput() after clear = %q", got)
	}
}

func TestChat_Focus(t *testing.T) {
	c := newTestChat()

	c.SetFocused(true)
	if !c.IsFocused() {
		t.Error("IsFocused() = false after SetFocused(true)")
	}
	c.SetFocused(false)
	if c.IsFocused() {
		t.Error("IsFocused() = true after SetFocused(false)")
	}
}

func TestFormatElapsed(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "0s"},
		{1500 * time.Millisecond, "1s"},
		{59 * time.Second, "59s"},
		{60 * time.Second, "1m00s"},
		{95 * time.Second, "1m35s"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := formatElapsed(tt.d); got != tt.want {
				t.Errorf("formatElapsed(%v) = %q, want %q", tt.d, got, tt.want)
			}
		})
	}
}
