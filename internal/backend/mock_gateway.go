package backend

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/zhubert/parley/internal/chat"
	perrors "github.com/zhubert/parley/internal/errors"
)

// MockGateway is an in-memory Gateway for tests and offline demos. It records
// every call, hands out sequential session ids and lets tests inject failures.
//
// NOTE: This file is used by tests in internal/session and internal/app.
type MockGateway struct {
	mu sync.Mutex

	calls    []string
	requests []SendRequest

	nextID   int
	sessions map[string]*SessionPayload
	history  []chat.HistoryEntry

	historyErr error
	createErr  error
	fetchErr   error
	sendErr    error

	// createPayload overrides the generated session when set.
	createPayload *SessionPayload
	replyFunc     func(SendRequest) (*SendReply, error)

	sendStarted chan struct{}
	sendRelease chan struct{}

	// OnSend is called with each send request before a reply is produced.
	OnSend func(req SendRequest)
	// OnCreate is called at the start of each CreateSession.
	OnCreate func()
}

// NewMockGateway creates a gateway that echoes every message back.
func NewMockGateway() *MockGateway {
	return &MockGateway{
		sessions: make(map[string]*SessionPayload),
		history:  []chat.HistoryEntry{},
	}
}

// SetHistory replaces the history returned by ListHistory.
func (m *MockGateway) SetHistory(entries ...chat.HistoryEntry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.history = slices.Clone(entries)
}

// SetHistoryError makes ListHistory fail with err.
func (m *MockGateway) SetHistoryError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.historyErr = err
}

// AddSession registers a session FetchSession can load.
func (m *MockGateway) AddSession(p SessionPayload) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[p.SessionID] = &p
}

// SetCreateError makes CreateSession fail with err.
func (m *MockGateway) SetCreateError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.createErr = err
}

// SetCreatePayload makes CreateSession return p instead of a generated session.
func (m *MockGateway) SetCreatePayload(p SessionPayload) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.createPayload = &p
}

// SetFetchError makes FetchSession fail with err for every id.
func (m *MockGateway) SetFetchError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fetchErr = err
}

// SetSendError makes SendMessage fail with err.
func (m *MockGateway) SetSendError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sendErr = err
}

// SetReply makes SendMessage answer every request with text.
func (m *MockGateway) SetReply(text, languageCode string) {
	m.SetReplyFunc(func(SendRequest) (*SendReply, error) {
		return &SendReply{Reply: text, LanguageCode: languageCode}, nil
	})
}

// SetReplyFunc installs a custom reply generator.
func (m *MockGateway) SetReplyFunc(fn func(SendRequest) (*SendReply, error)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.replyFunc = fn
}

// BlockSends makes SendMessage wait until release is called. started receives
// once per send that has entered the gateway.
func (m *MockGateway) BlockSends() (started <-chan struct{}, release func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sendStarted = make(chan struct{}, 16)
	m.sendRelease = make(chan struct{})
	ch := m.sendRelease
	var once sync.Once
	return m.sendStarted, func() { once.Do(func() { close(ch) }) }
}

// Calls returns the names of the gateway methods invoked, in order.
func (m *MockGateway) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.calls)
}

// CallCount returns how many times method was invoked.
func (m *MockGateway) CallCount(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.calls {
		if c == method {
			n++
		}
	}
	return n
}

// ResetCalls forgets recorded calls and requests.
func (m *MockGateway) ResetCalls() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = nil
	m.requests = nil
}

// SendRequests returns every request passed to SendMessage.
func (m *MockGateway) SendRequests() []SendRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.requests)
}

func (m *MockGateway) record(method string) {
	m.calls = append(m.calls, method)
}

// ListHistory implements Gateway.
func (m *MockGateway) ListHistory(ctx context.Context) ([]chat.HistoryEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("ListHistory")

	if err := ctx.Err(); err != nil {
		return nil, perrors.NetworkUnreachable(opListHistory, err)
	}
	if m.historyErr != nil {
		return nil, m.historyErr
	}
	return slices.Clone(m.history), nil
}

// CreateSession implements Gateway.
func (m *MockGateway) CreateSession(ctx context.Context) (*SessionPayload, error) {
	m.mu.Lock()
	onCreate := m.OnCreate
	m.mu.Unlock()
	if onCreate != nil {
		onCreate()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("CreateSession")

	if err := ctx.Err(); err != nil {
		return nil, perrors.NetworkUnreachable(opCreateSession, err)
	}
	if m.createErr != nil {
		return nil, m.createErr
	}
	if m.createPayload != nil {
		p := *m.createPayload
		if p.SessionID == "" {
			return nil, perrors.MalformedResponse(opCreateSession, "response has no sessionId")
		}
		m.sessions[p.SessionID] = &p
		return &p, nil
	}

	m.nextID++
	p := &SessionPayload{
		SessionID:    fmt.Sprintf("session-%d", m.nextID),
		Messages:     []chat.Message{},
		LanguageCode: chat.DefaultLanguage,
	}
	m.sessions[p.SessionID] = p
	cp := *p
	return &cp, nil
}

// FetchSession implements Gateway.
func (m *MockGateway) FetchSession(ctx context.Context, id string) (*SessionPayload, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("FetchSession")

	if err := ctx.Err(); err != nil {
		return nil, perrors.NetworkUnreachable(opFetchSession, err)
	}
	if m.fetchErr != nil {
		return nil, m.fetchErr
	}
	p, ok := m.sessions[id]
	if !ok {
		return nil, perrors.SessionNotFound(opFetchSession, id, nil)
	}
	cp := *p
	cp.Messages = slices.Clone(p.Messages)
	return &cp, nil
}

// SendMessage implements Gateway. Without a reply func it echoes the message
// and, like the real service, titles the session after its first message.
func (m *MockGateway) SendMessage(ctx context.Context, req SendRequest) (*SendReply, error) {
	m.mu.Lock()
	m.record("SendMessage")
	m.requests = append(m.requests, req)
	started, release := m.sendStarted, m.sendRelease
	onSend := m.OnSend
	m.mu.Unlock()

	if started != nil {
		started <- struct{}{}
		select {
		case <-release:
		case <-ctx.Done():
			return nil, perrors.NetworkUnreachable(opSendMessage, ctx.Err())
		}
	}
	if onSend != nil {
		onSend(req)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.sendErr != nil {
		return nil, m.sendErr
	}
	if m.replyFunc != nil {
		return m.replyFunc(req)
	}

	m.titleSession(req)
	return &SendReply{Reply: "echo: " + req.Message, LanguageCode: req.Language}, nil
}

// titleSession must be called with mu held.
func (m *MockGateway) titleSession(req SendRequest) {
	title := req.Message
	if req.File != nil {
		title = "File: " + req.File.Name
	}
	if len(title) > 30 {
		title = title[:30]
	}
	for i, h := range m.history {
		if h.ID == req.SessionID {
			if h.HasPlaceholderTitle() {
				m.history[i].Title = title
			}
			return
		}
	}
	m.history = append([]chat.HistoryEntry{{ID: req.SessionID, Title: title}}, m.history...)
}
