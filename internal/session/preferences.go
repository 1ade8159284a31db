package session

import (
	"fmt"
	"slices"
	"strings"

	"github.com/zhubert/parley/internal/chat"
	perrors "github.com/zhubert/parley/internal/errors"
	"github.com/zhubert/parley/internal/logger"
)

const opPreferences perrors.Op = "session.Preferences"

// ChangeMode switches the interaction mode. The backend learns about it on
// the next send. A notice is added only to a conversation already under way.
func (d *Dispatcher) ChangeMode(mode chat.Mode) error {
	if !slices.Contains(chat.Modes, mode) {
		return perrors.E(opPreferences, perrors.KindInvalid, fmt.Sprintf("unknown mode %q", mode))
	}
	if !d.lifecycle.store.SetMode(mode) {
		return nil
	}
	logger.WithComponent("session").Info("mode changed", "mode", string(mode))
	d.noticeIfActive(fmt.Sprintf("Switched to %s mode.", mode))
	return nil
}

// ChangeLanguage switches the current language code.
func (d *Dispatcher) ChangeLanguage(language string) error {
	language = strings.ToLower(strings.TrimSpace(language))
	if language == "" {
		return perrors.E(opPreferences, perrors.KindInvalid, "language code is required")
	}
	if !d.lifecycle.store.SetLanguage(language) {
		return nil
	}
	logger.WithComponent("session").Info("language changed", "language", language)
	d.noticeIfActive(fmt.Sprintf("Language changed to %s.", strings.ToUpper(language)))
	return nil
}

func (d *Dispatcher) noticeIfActive(text string) {
	st := d.lifecycle.store.Snapshot()
	if !st.IsChatActive() {
		return
	}
	hasNonSystem := slices.ContainsFunc(st.Messages, func(m chat.Message) bool {
		return m.Sender != chat.SenderSystem
	})
	if !hasNonSystem {
		return
	}
	d.lifecycle.store.Append(chat.NewMessage(chat.SenderSystem, text, d.lifecycle.now()))
}
