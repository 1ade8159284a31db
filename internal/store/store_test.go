package store

import (
	"sync"
	"testing"
	"time"

	"github.com/zhubert/parley/internal/chat"
)

var testNow = time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)

func msg(sender chat.Sender, text string) chat.Message {
	return chat.NewMessage(sender, text, testNow)
}

func TestNew_Defaults(t *testing.T) {
	s := New("", "")
	st := s.Snapshot()

	if !st.IsModuleInitializing {
		t.Error("new store should start initializing")
	}
	if st.IsLoadingResponse {
		t.Error("new store should not be loading")
	}
	if st.Mode != chat.ModeChatbot {
		t.Errorf("Mode = %q, want Chatbot", st.Mode)
	}
	if st.Language != "en" {
		t.Errorf("Language = %q, want en", st.Language)
	}
	if st.Messages == nil || st.History == nil {
		t.Error("slices should be initialized, not nil")
	}
}

func TestSnapshot_IsDeepCopy(t *testing.T) {
	s := New(chat.ModeChatbot, "en")
	s.ActivateSession("s1", []chat.Message{msg(chat.SenderUser, "hello")})
	s.SetHistory([]chat.HistoryEntry{{ID: "s1", Title: "t"}})

	st := s.Snapshot()
	st.Messages[0].Text = "mutated"
	st.History[0].Title = "mutated"

	again := s.Snapshot()
	if again.Messages[0].Text != "hello" {
		t.Error("mutating a snapshot changed the store's messages")
	}
	if again.History[0].Title != "t" {
		t.Error("mutating a snapshot changed the store's history")
	}
}

func TestActivateSession_CopiesInput(t *testing.T) {
	s := New(chat.ModeChatbot, "en")
	in := []chat.Message{msg(chat.SenderBot, "hi")}
	s.ActivateSession("s1", in)
	in[0].Text = "changed"

	if got := s.Messages()[0].Text; got != "hi" {
		t.Errorf("store kept a reference to caller slice: %q", got)
	}
	if got := s.ActiveSessionID(); got != "s1" {
		t.Errorf("ActiveSessionID() = %q", got)
	}
}

func TestClearSession(t *testing.T) {
	s := New(chat.ModeChatbot, "en")
	s.ActivateSession("s1", nil)
	s.ClearSession([]chat.Message{msg(chat.SenderSystem, "Error")})

	st := s.Snapshot()
	if st.HasActiveSession() {
		t.Error("session should be cleared")
	}
	if len(st.Messages) != 1 || st.Messages[0].Text != "Error" {
		t.Errorf("Messages = %+v", st.Messages)
	}
}

func TestAppend_Concurrent(t *testing.T) {
	s := New(chat.ModeChatbot, "en")

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Append(msg(chat.SenderSystem, "notice"))
		}()
	}
	wg.Wait()

	if got := len(s.Messages()); got != 50 {
		t.Errorf("len(Messages) = %d, want 50", got)
	}
}

func TestRewriteMessages(t *testing.T) {
	s := New(chat.ModeChatbot, "en")
	s.ActivateSession("s1", []chat.Message{msg(chat.SenderSystem, "a"), msg(chat.SenderUser, "b")})

	got := s.RewriteMessages(func(current []chat.Message) []chat.Message {
		current[0].Text = "scribbled"
		return append(current[1:], msg(chat.SenderBot, "c"))
	})

	if len(got) != 2 || got[0].Text != "b" || got[1].Text != "c" {
		t.Errorf("RewriteMessages() = %+v", got)
	}
	if stored := s.Messages(); len(stored) != 2 || stored[0].Text != "b" {
		t.Errorf("Messages() = %+v", stored)
	}
}

func TestStoreHistoryEntry(t *testing.T) {
	s := New(chat.ModeChatbot, "en")
	s.SetHistory([]chat.HistoryEntry{{ID: "s1", Title: "New Chat"}})

	if h, ok := s.HistoryEntry("s1"); !ok || h.Title != "New Chat" {
		t.Errorf("HistoryEntry(s1) = %+v, %v", h, ok)
	}
	if _, ok := s.HistoryEntry("s2"); ok {
		t.Error("HistoryEntry(s2) should not be found")
	}
}

func TestSetLanguageAndMode_ReportChange(t *testing.T) {
	s := New(chat.ModeChatbot, "en")

	if s.SetLanguage("en") {
		t.Error("SetLanguage to same value should report no change")
	}
	if !s.SetLanguage("fr") {
		t.Error("SetLanguage to new value should report change")
	}
	if s.SetMode(chat.ModeChatbot) {
		t.Error("SetMode to same value should report no change")
	}
	if !s.SetMode(chat.ModeInteractiveAssistant) {
		t.Error("SetMode to new value should report change")
	}
}

func TestIsChatActive(t *testing.T) {
	tests := []struct {
		name  string
		state State
		want  bool
	}{
		{"empty", State{}, false},
		{"only system", State{Messages: []chat.Message{msg(chat.SenderSystem, "x")}}, false},
		{"user message", State{Messages: []chat.Message{msg(chat.SenderUser, "x")}}, true},
		{"loading", State{IsLoadingResponse: true}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.state.IsChatActive(); got != tt.want {
				t.Errorf("IsChatActive() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestChanges_Coalesced(t *testing.T) {
	s := New(chat.ModeChatbot, "en")

	s.SetLoadingResponse(true)
	s.SetLoadingResponse(false)
	s.SetModuleInitializing(false)

	select {
	case <-s.Changes():
	default:
		t.Fatal("expected a pending change signal")
	}
	select {
	case <-s.Changes():
		t.Fatal("signals should be coalesced into one")
	default:
	}
}

func TestHistoryEntryLookup(t *testing.T) {
	st := State{History: []chat.HistoryEntry{{ID: "a", Title: "A"}, {ID: "b"}}}

	if h, ok := st.HistoryEntry("a"); !ok || h.Title != "A" {
		t.Errorf("HistoryEntry(a) = %+v, %v", h, ok)
	}
	if _, ok := st.HistoryEntry("zzz"); ok {
		t.Error("HistoryEntry(zzz) should not be found")
	}
}
