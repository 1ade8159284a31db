package session

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/zhubert/parley/internal/backend"
	"github.com/zhubert/parley/internal/chat"
	perrors "github.com/zhubert/parley/internal/errors"
	"github.com/zhubert/parley/internal/logger"
)

const opSend perrors.Op = "session.Send"

// contextPrefix marks the one-per-session banner describing mode and language.
const contextPrefix = "Context:"

// Bot lines written by the dispatcher when no real reply is available.
const (
	ReplyMalformed      = "Received an unexpected or malformed response from the server."
	ReplyGenericFailure = "Sorry, I couldn't process your message at this time. Please try again."
	ReplyNoResponse     = "No response from the server. Please check your internet connection and try again."
	ReplyRequestFailed  = "An error occurred while sending your message. Please try again."
)

// Dispatcher sends user messages and applies preference changes. It shares
// the lifecycle controller's store, gateway and gate.
type Dispatcher struct {
	lifecycle *Lifecycle
}

// NewDispatcher creates a dispatcher bound to l.
func NewDispatcher(l *Lifecycle) *Dispatcher {
	return &Dispatcher{lifecycle: l}
}

// ContextBanner returns the system line inserted before a session's first message.
func ContextBanner(mode chat.Mode, language string) string {
	return fmt.Sprintf("%s Mode - %s, Language - %s.", contextPrefix, mode, strings.ToUpper(language))
}

// Send delivers one user action and appends the outcome to the transcript.
//
// Invalid input yields KindInvalid and touches nothing. A send during startup
// or while another operation is in flight yields KindBusy. When no session
// exists and none can be created, the error is KindSessionUnavailable and
// the caller should alert the user.
//
// Every other outcome, including backend and network failures, is appended
// as exactly one bot message and returned with a nil error.
func (d *Dispatcher) Send(ctx context.Context, out chat.Outgoing) (*chat.Message, error) {
	if err := out.Validate(); err != nil {
		return nil, perrors.InvalidRequest(err.Error())
	}

	l := d.lifecycle
	if err := l.enter(opSend); err != nil {
		return nil, err
	}
	defer l.gate.leave()

	sessionID := l.store.ActiveSessionID()
	if sessionID == "" {
		// The id returned here is used for this send even if the store changes.
		id, err := l.ensureActiveSession(ctx, "", false)
		if err != nil {
			return nil, perrors.NoActiveSession(err)
		}
		sessionID = id
	}
	log := logger.WithSession(sessionID)

	mode, language := l.store.Mode(), l.store.Language()
	now := l.now()

	user := chat.NewMessage(chat.SenderUser, out.DisplayText(), now)
	user.Type = out.Type
	if out.Type == chat.TypeFile {
		user.OriginalContent = out.File
	}

	updated := l.store.RewriteMessages(func(current []chat.Message) []chat.Message {
		next := make([]chat.Message, 0, len(current)+2)
		for _, m := range current {
			if m.Sender == chat.SenderSystem && strings.HasPrefix(m.Text, contextPrefix) {
				continue
			}
			next = append(next, m)
		}
		if !slices.ContainsFunc(current, chat.Message.IsConversational) {
			next = append(next, chat.NewMessage(chat.SenderSystem, ContextBanner(mode, language), now))
		}
		return append(next, user)
	})

	req := backend.SendRequest{
		SessionID: sessionID,
		Language:  language,
		Mode:      mode,
		Message:   out.DisplayText(),
		File:      out.File,
	}
	log.Debug("sending", "type", string(out.Type), "mode", string(mode), "language", language)

	reply, err := l.gateway.SendMessage(ctx, req)
	if err != nil && !perrors.Is(err, perrors.KindMalformed) {
		log.Warn("send failed", "error", err, "kind", perrors.GetKind(err).String())
		msg := d.appendBot(failureReply(err))
		return &msg, nil
	}

	var msg chat.Message
	if err != nil {
		log.Warn("malformed reply", "error", err)
		msg = d.appendBot(ReplyMalformed)
	} else {
		msg = d.appendBot(reply.Reply)
		// Compared with the language the request went out in, so a change the
		// user made while waiting survives the server echoing the old one.
		if reply.LanguageCode != "" && reply.LanguageCode != language && l.store.SetLanguage(reply.LanguageCode) {
			log.Info("language changed by server", "from", language, "to", reply.LanguageCode)
		}
	}

	d.maintainTitle(ctx, sessionID, updated)
	return &msg, nil
}

func (d *Dispatcher) appendBot(text string) chat.Message {
	msg := chat.NewMessage(chat.SenderBot, text, d.lifecycle.now())
	d.lifecycle.store.Append(msg)
	return msg
}

// maintainTitle refreshes the history once when the session still lacks a
// backend-assigned title. A session missing from the index counts as untitled.
func (d *Dispatcher) maintainTitle(ctx context.Context, sessionID string, log []chat.Message) {
	hasUser := slices.ContainsFunc(log, func(m chat.Message) bool {
		return m.Sender == chat.SenderUser
	})
	if !hasUser {
		return
	}
	if entry, ok := d.lifecycle.store.HistoryEntry(sessionID); ok && !entry.HasPlaceholderTitle() {
		return
	}
	d.lifecycle.RefreshHistory(ctx)
}

// failureReply turns a send error into the line shown to the user.
func failureReply(err error) string {
	var respErr *backend.ResponseError
	if errors.As(err, &respErr) {
		if msg := respErr.UserMessage(); msg != "" {
			return msg
		}
		return ReplyGenericFailure
	}

	switch perrors.GetKind(err) {
	case perrors.KindBackend:
		return ReplyGenericFailure
	case perrors.KindNetwork:
		return ReplyNoResponse
	}
	return ReplyRequestFailed
}
