// Package store holds the client's interaction state: the active session, its
// transcript, the history index and the loading flags.
//
// Every mutation replaces a whole value (or appends under the lock), so readers
// never observe a half-updated transcript.
package store

import (
	"slices"
	"sync"

	"github.com/zhubert/parley/internal/chat"
)

// State is a point-in-time copy of everything the presentation layer renders.
type State struct {
	ActiveSessionID      string
	Messages             []chat.Message
	History              []chat.HistoryEntry
	IsLoadingResponse    bool
	IsModuleInitializing bool
	Mode                 chat.Mode
	Language             string
}

// HasActiveSession reports whether a session id is set.
func (s State) HasActiveSession() bool {
	return s.ActiveSessionID != ""
}

// IsChatActive reports whether a conversation is under way: a user or bot
// message exists, or a response is in flight.
func (s State) IsChatActive() bool {
	return s.IsLoadingResponse || slices.ContainsFunc(s.Messages, chat.Message.IsConversational)
}

// HistoryEntry returns the history entry for id.
func (s State) HistoryEntry(id string) (chat.HistoryEntry, bool) {
	for _, h := range s.History {
		if h.ID == id {
			return h, true
		}
	}
	return chat.HistoryEntry{}, false
}

// Store is the mutex-guarded owner of State. Only the session controllers
// mutate it; the UI reads snapshots.
type Store struct {
	mu    sync.RWMutex
	state State

	changes chan struct{}
}

// New creates a store in the "module initializing" state.
func New(mode chat.Mode, language string) *Store {
	if mode == "" {
		mode = chat.ModeChatbot
	}
	if language == "" {
		language = chat.DefaultLanguage
	}
	return &Store{
		state: State{
			Messages:             []chat.Message{},
			History:              []chat.HistoryEntry{},
			IsModuleInitializing: true,
			Mode:                 mode,
			Language:             language,
		},
		changes: make(chan struct{}, 1),
	}
}

// Changes returns a channel that receives a value after mutations. Signals are
// coalesced: a reader that falls behind sees one pending signal, not many.
func (s *Store) Changes() <-chan struct{} {
	return s.changes
}

// notify must be called after releasing mu.
func (s *Store) notify() {
	select {
	case s.changes <- struct{}{}:
	default:
	}
}

// update runs fn under the write lock and signals a change afterwards.
func (s *Store) update(fn func(st *State)) {
	s.mu.Lock()
	fn(&s.state)
	s.mu.Unlock()
	s.notify()
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := s.state
	st.Messages = slices.Clone(s.state.Messages)
	st.History = slices.Clone(s.state.History)
	return st
}

// ActiveSessionID returns the active session id, or "".
func (s *Store) ActiveSessionID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.ActiveSessionID
}

// Messages returns a copy of the transcript.
func (s *Store) Messages() []chat.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.state.Messages)
}

// History returns a copy of the history index.
func (s *Store) History() []chat.HistoryEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.state.History)
}

// Language returns the current language code.
func (s *Store) Language() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Language
}

// Mode returns the selected interaction mode.
func (s *Store) Mode() chat.Mode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Mode
}

// IsLoadingResponse reports whether a send, create or load is in flight.
func (s *Store) IsLoadingResponse() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.IsLoadingResponse
}

// IsModuleInitializing reports whether startup has not finished yet.
func (s *Store) IsModuleInitializing() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.IsModuleInitializing
}

// ActivateSession replaces the active session and its transcript in one step.
func (s *Store) ActivateSession(id string, messages []chat.Message) {
	msgs := slices.Clone(messages)
	if msgs == nil {
		msgs = []chat.Message{}
	}
	s.update(func(st *State) {
		st.ActiveSessionID = id
		st.Messages = msgs
	})
}

// ClearSession unsets the active session and replaces the transcript.
func (s *Store) ClearSession(messages []chat.Message) {
	s.ActivateSession("", messages)
}

// Append adds messages to the end of the current transcript. It reads and
// writes under one lock so concurrent notices are not lost.
func (s *Store) Append(messages ...chat.Message) {
	if len(messages) == 0 {
		return
	}
	s.update(func(st *State) {
		next := make([]chat.Message, 0, len(st.Messages)+len(messages))
		next = append(next, st.Messages...)
		next = append(next, messages...)
		st.Messages = next
	})
}

// RewriteMessages replaces the transcript with fn's result. fn sees a copy of
// the current transcript and runs under the write lock, so it must not call
// back into the store.
func (s *Store) RewriteMessages(fn func(current []chat.Message) []chat.Message) []chat.Message {
	var result []chat.Message
	s.update(func(st *State) {
		next := fn(slices.Clone(st.Messages))
		if next == nil {
			next = []chat.Message{}
		}
		st.Messages = next
		result = slices.Clone(next)
	})
	return result
}

// HistoryEntry looks up id in the history index.
func (s *Store) HistoryEntry(id string) (chat.HistoryEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.HistoryEntry(id)
}

// SetHistory replaces the history index.
func (s *Store) SetHistory(history []chat.HistoryEntry) {
	h := slices.Clone(history)
	if h == nil {
		h = []chat.HistoryEntry{}
	}
	s.update(func(st *State) {
		st.History = h
	})
}

// SetLanguage sets the language and reports whether it changed.
func (s *Store) SetLanguage(language string) bool {
	changed := false
	s.update(func(st *State) {
		changed = st.Language != language
		st.Language = language
	})
	return changed
}

// SetMode sets the mode and reports whether it changed.
func (s *Store) SetMode(mode chat.Mode) bool {
	changed := false
	s.update(func(st *State) {
		changed = st.Mode != mode
		st.Mode = mode
	})
	return changed
}

// SetLoadingResponse sets the in-flight flag.
func (s *Store) SetLoadingResponse(loading bool) {
	s.update(func(st *State) {
		st.IsLoadingResponse = loading
	})
}

// SetModuleInitializing sets the startup flag.
func (s *Store) SetModuleInitializing(initializing bool) {
	s.update(func(st *State) {
		st.IsModuleInitializing = initializing
	})
}
