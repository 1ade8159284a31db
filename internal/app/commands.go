package app

import (
	tea "charm.land/bubbletea/v2"

	"github.com/zhubert/parley/internal/chat"
	perrors "github.com/zhubert/parley/internal/errors"
	"github.com/zhubert/parley/internal/logger"
	"github.com/zhubert/parley/internal/ui"
)

// Text of the alert shown when a send finds no session and cannot start one.
const (
	alertNoSessionTitle   = "Critical Error"
	alertNoSessionMessage = "No active chat session and a new one could not be started.\nCheck the server and press ctrl+n to try again."
)

// listenForStoreChanges waits for the next store mutation. The handler for
// StoreChangedMsg re-arms it.
func (m *Model) listenForStoreChanges() tea.Cmd {
	ch := m.store.Changes()
	ctx := m.ctx
	return func() tea.Msg {
		select {
		case <-ch:
			return StoreChangedMsg{}
		case <-ctx.Done():
			return nil
		}
	}
}

func (m *Model) initializeCmd() tea.Cmd {
	lifecycle, ctx := m.lifecycle, m.ctx
	return func() tea.Msg {
		id, err := lifecycle.Initialize(ctx)
		return InitializedMsg{SessionID: id, Err: err}
	}
}

func (m *Model) createSessionCmd() tea.Cmd {
	lifecycle, ctx := m.lifecycle, m.ctx
	return func() tea.Msg {
		id, err := lifecycle.CreateSession(ctx)
		return SessionOpenedMsg{SessionID: id, Created: true, Err: err}
	}
}

func (m *Model) loadSessionCmd(id string) tea.Cmd {
	lifecycle, ctx := m.lifecycle, m.ctx
	return func() tea.Msg {
		got, err := lifecycle.LoadSession(ctx, id)
		return SessionOpenedMsg{SessionID: got, Err: err}
	}
}

func (m *Model) sendCmd(out chat.Outgoing) tea.Cmd {
	dispatcher, ctx := m.dispatcher, m.ctx
	return func() tea.Msg {
		reply, err := dispatcher.Send(ctx, out)
		return ReplyMsg{Reply: reply, Err: err}
	}
}

func (m *Model) refreshHistoryCmd() tea.Cmd {
	lifecycle, ctx := m.lifecycle, m.ctx
	return func() tea.Msg {
		return HistoryRefreshedMsg{Count: len(lifecycle.RefreshHistory(ctx))}
	}
}

func (m *Model) copyCmd(text string) tea.Cmd {
	copyText := m.copyText
	return func() tea.Msg {
		return CopyResultMsg{Err: copyText(text)}
	}
}

func (m *Model) notifyCmd(reply string) tea.Cmd {
	notify, name := m.notify, m.config.GetAssistantName()
	return func() tea.Msg {
		if err := notify(name, reply); err != nil {
			logger.WithComponent("app").Debug("notification not delivered", "error", err)
		}
		return nil
	}
}

// handleOperationError turns a rejected user operation into a flash or, when
// no session could be obtained for a send, a blocking alert.
func (m *Model) handleOperationError(err error) tea.Cmd {
	log := logger.WithComponent("app")
	switch perrors.GetKind(err) {
	case perrors.KindSessionUnavailable:
		log.Error("send without a session", "error", err)
		m.modal.Show(ui.NewAlertState(alertNoSessionTitle, alertNoSessionMessage))
		return nil
	case perrors.KindBusy:
		return m.ShowFlashWarning("Please wait for the current request to finish.")
	case perrors.KindInvalid:
		return m.ShowFlashWarning(err.Error())
	}
	log.Warn("operation failed", "error", err, "kind", perrors.GetKind(err).String())
	return m.ShowFlashError("Could not open the chat. See the transcript for details.")
}
