package session

import (
	"context"
	"slices"
	"sync/atomic"
	"time"

	"github.com/zhubert/parley/internal/backend"
	"github.com/zhubert/parley/internal/chat"
	perrors "github.com/zhubert/parley/internal/errors"
	"github.com/zhubert/parley/internal/logger"
	"github.com/zhubert/parley/internal/store"
)

const (
	opCreate perrors.Op = "session.Create"
	opLoad   perrors.Op = "session.Load"
)

// Transcript lines written by the lifecycle controller.
const (
	NoticeSessionNotFound = "Chat session not found. Starting a new chat."
	NoticeLoadFailed      = "Error loading chat session. Please try again."
	NoticeMissingID       = "Error: Could not start a new chat session (missing ID)."
	NoticeCreateFailed    = "Error starting new chat. Please try again."
)

// Lifecycle establishes the active session at startup and switches sessions
// on request.
type Lifecycle struct {
	gateway backend.Gateway
	store   *store.Store
	gate    *gate

	initialized atomic.Bool
	now         func() time.Time
}

// NewLifecycle creates a lifecycle controller writing to st.
func NewLifecycle(gw backend.Gateway, st *store.Store) *Lifecycle {
	return &Lifecycle{
		gateway: gw,
		store:   st,
		gate:    newGate(st),
		now:     time.Now,
	}
}

// Store returns the store the controller writes to.
func (l *Lifecycle) Store() *store.Store {
	return l.store
}

// Initialize runs the startup sequence once per process: list history, load
// the most recent session, and fall back to creating one. Later calls return
// the current session id without touching the network.
//
// IsModuleInitializing is cleared on every path. When no session could be
// established the transcript explains why and the error is returned.
func (l *Lifecycle) Initialize(ctx context.Context) (string, error) {
	if !l.initialized.CompareAndSwap(false, true) {
		logger.WithComponent("session").Debug("initialize skipped, already ran")
		return l.store.ActiveSessionID(), nil
	}
	defer l.store.SetModuleInitializing(false)

	log := logger.WithComponent("session")
	log.Info("initializing")

	history := l.RefreshHistory(ctx)
	candidate := ""
	if len(history) > 0 {
		candidate = history[0].ID
	}

	id, err := l.ensureActiveSession(ctx, candidate, true)
	if err != nil {
		log.Error("no session after startup", "error", err, "kind", perrors.GetKind(err).String())
		return "", err
	}
	log.Info("initialized", "sessionID", id, "historyLen", len(history))
	return id, nil
}

// CreateSession starts a new chat. It is rejected with KindBusy while the
// module is initializing or another operation is in flight.
func (l *Lifecycle) CreateSession(ctx context.Context) (string, error) {
	if err := l.enter(opCreate); err != nil {
		return "", err
	}
	defer l.gate.leave()

	return l.ensureActiveSession(ctx, "", false)
}

// LoadSession switches to an existing chat. The same rejection rule as
// CreateSession applies. A session the backend no longer knows is replaced
// by a new one.
func (l *Lifecycle) LoadSession(ctx context.Context, id string) (string, error) {
	if id == "" {
		return "", perrors.E(opLoad, perrors.KindInvalid, "session id is required")
	}
	if err := l.enter(opLoad); err != nil {
		return "", err
	}
	defer l.gate.leave()

	return l.ensureActiveSession(ctx, id, false)
}

// RefreshHistory re-fetches the history index. Failures leave an empty index
// and are only logged.
func (l *Lifecycle) RefreshHistory(ctx context.Context) []chat.HistoryEntry {
	history, err := l.gateway.ListHistory(ctx)
	if err != nil {
		logger.WithComponent("session").Warn("history unavailable", "error", err, "kind", perrors.GetKind(err).String())
		history = []chat.HistoryEntry{}
	}
	l.store.SetHistory(history)
	return history
}

// enter rejects user-triggered operations during startup or while the gate is held.
func (l *Lifecycle) enter(op perrors.Op) error {
	if l.store.IsModuleInitializing() {
		return perrors.Busy(op)
	}
	if !l.gate.tryEnter() {
		return perrors.Busy(op)
	}
	return nil
}

// ensureActiveSession is the one fallback chain every entry point uses. The
// caller holds the gate unless initializing.
func (l *Lifecycle) ensureActiveSession(ctx context.Context, candidateID string, initializing bool) (string, error) {
	var preface []chat.Message

	if candidateID != "" {
		id, err := l.load(ctx, candidateID)
		switch {
		case err == nil:
			return id, nil
		case perrors.Is(err, perrors.KindNotFound):
			preface = append(preface, l.system(NoticeSessionNotFound))
			l.store.ClearSession(preface)
		case perrors.Is(err, perrors.KindMalformed):
			// treated like a missing session, without telling the user
			l.store.ClearSession(nil)
		case !initializing:
			l.store.ClearSession([]chat.Message{l.system(NoticeLoadFailed)})
			return "", perrors.SessionLoadFailed(candidateID, err)
		default:
			preface = append(preface, l.system(NoticeLoadFailed))
			l.store.ClearSession(preface)
		}
	}

	return l.create(ctx, preface, initializing)
}

func (l *Lifecycle) load(ctx context.Context, id string) (string, error) {
	log := logger.WithSession(id)

	payload, err := l.gateway.FetchSession(ctx, id)
	if err != nil {
		log.Warn("load failed", "error", err, "kind", perrors.GetKind(err).String())
		return "", err
	}

	s := payload.Session()
	l.store.ActivateSession(s.ID, s.Messages)
	if s.LanguageCode != "" && l.store.SetLanguage(s.LanguageCode) {
		log.Info("language adopted from session", "language", s.LanguageCode)
	}
	log.Info("session loaded", "messages", len(s.Messages))
	return s.ID, nil
}

// create requests a new session. preface holds notices from an earlier step of
// the fallback chain and is kept ahead of the server's messages.
func (l *Lifecycle) create(ctx context.Context, preface []chat.Message, initializing bool) (string, error) {
	log := logger.WithComponent("session")

	payload, err := l.gateway.CreateSession(ctx)
	if err != nil {
		text := NoticeCreateFailed
		if perrors.Is(err, perrors.KindMalformed) {
			text = NoticeMissingID
		}
		l.store.ClearSession(append(slices.Clone(preface), l.system(text)))
		log.Error("create failed", "error", err, "kind", perrors.GetKind(err).String())
		return "", perrors.SessionCreateFailed(err)
	}

	s := payload.Session()
	lang := s.LanguageCode
	if lang == "" {
		lang = chat.DefaultLanguage
	}
	l.store.ActivateSession(s.ID, append(slices.Clone(preface), s.Messages...))
	l.store.SetLanguage(lang)
	log.Info("session created", "sessionID", s.ID, "language", lang)

	if !initializing || len(l.store.History()) == 0 {
		l.RefreshHistory(ctx)
	}
	return s.ID, nil
}

func (l *Lifecycle) system(text string) chat.Message {
	return chat.NewMessage(chat.SenderSystem, text, l.now())
}
