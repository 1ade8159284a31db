package app

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/zhubert/parley/internal/chat"
	"github.com/zhubert/parley/internal/keys"
	"github.com/zhubert/parley/internal/logger"
	"github.com/zhubert/parley/internal/ui"
)

// Update handles messages
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateSizes()

	case tea.KeyPressMsg:
		return m.handleKey(msg)

	case StoreChangedMsg:
		cmds = append(cmds, m.syncFromStore(), m.listenForStoreChanges())

	case InitializedMsg:
		if msg.Err != nil {
			logger.WithComponent("app").Warn("started without a session", "error", msg.Err)
		}
		cmds = append(cmds, m.syncFromStore())

	case SessionOpenedMsg:
		if msg.Err != nil {
			cmds = append(cmds, m.handleOperationError(msg.Err))
		} else {
			cmds = append(cmds, m.setFocus(FocusChat))
			if msg.Created {
				cmds = append(cmds, m.ShowFlashSuccess("Started a new chat."))
			}
		}
		cmds = append(cmds, m.syncFromStore())

	case ReplyMsg:
		if msg.Err != nil {
			cmds = append(cmds, m.handleOperationError(msg.Err))
		} else if msg.Reply != nil && m.config.GetNotificationsEnabled() && msg.Reply.Timestamp != m.lastNotified {
			m.lastNotified = msg.Reply.Timestamp
			cmds = append(cmds, m.notifyCmd(msg.Reply.Text))
		}
		cmds = append(cmds, m.syncFromStore())

	case HistoryRefreshedMsg:
		cmds = append(cmds, m.syncFromStore(), m.ShowFlashInfo(historyCountText(msg.Count)))

	case CopyResultMsg:
		if msg.Err != nil {
			logger.WithComponent("app").Warn("copy failed", "error", msg.Err)
			cmds = append(cmds, m.ShowFlashError("Could not copy to the clipboard."))
		} else {
			cmds = append(cmds, m.ShowFlashSuccess("Copied the last reply."))
		}

	case ui.FlashTickMsg:
		var cmd tea.Cmd
		m.footer, cmd = m.footer.Update(msg)
		cmds = append(cmds, cmd)

	case ui.SidebarTickMsg:
		var cmd tea.Cmd
		m.sidebar, cmd = m.sidebar.Update(msg)
		cmds = append(cmds, cmd)

	default:
		// Stopwatch ticks and mouse wheel events belong to the chat pane
		var cmd tea.Cmd
		m.chat, cmd = m.chat.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// handleKey routes a key press: quit, the modal, global intents, then the
// focused panel.
func (m *Model) handleKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if key == keys.Quit {
		m.cancel()
		return m, tea.Quit
	}

	if m.modal.IsVisible() {
		return m.handleModalKey(msg)
	}

	// Typing a filter owns every other key
	if m.focus == FocusSidebar && m.sidebar.IsSearchMode() {
		var cmd tea.Cmd
		m.sidebar, cmd = m.sidebar.Update(msg)
		return m, cmd
	}

	switch key {
	case keys.SwitchFocus:
		return m, m.toggleFocus()
	case keys.ToggleSidebar:
		return m, m.toggleSidebar()
	case keys.NewChat:
		return m, m.newChat()
	case keys.ToggleMode:
		return m, m.changeMode(m.store.Mode().Next())
	case keys.CycleLanguage:
		return m, m.changeLanguage(chat.NextLanguage(m.store.Language()))
	case keys.RefreshHistory:
		return m, m.refreshHistoryCmd()
	case keys.CopyReply:
		return m, m.copyLastReply()
	case keys.PickTheme:
		m.modal.Show(ui.NewThemeState(ui.CurrentThemeName()))
		return m, nil
	}

	if m.focus == FocusSidebar {
		if key == keys.Enter {
			return m, m.openSelected()
		}
		var cmd tea.Cmd
		m.sidebar, cmd = m.sidebar.Update(msg)
		return m, cmd
	}

	if key == keys.Enter {
		return m, m.submitInput()
	}

	var cmd tea.Cmd
	m.chat, cmd = m.chat.Update(msg)
	return m, cmd
}

// handleModalKey dismisses alerts and help, and applies a theme choice.
func (m *Model) handleModalKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case keys.Escape:
		m.modal.Hide()
		return m, nil
	case keys.Enter:
		if state, ok := m.modal.State.(*ui.ThemeState); ok {
			m.modal.Hide()
			return m, m.applyTheme(state.GetSelectedTheme())
		}
		m.modal.Hide()
		return m, nil
	}

	var cmd tea.Cmd
	m.modal, cmd = m.modal.Update(msg)
	return m, cmd
}

// newChat starts a new session unless another operation is in flight.
func (m *Model) newChat() tea.Cmd {
	if m.isBusy() {
		return m.ShowFlashWarning("Please wait for the current request to finish.")
	}
	return m.createSessionCmd()
}

// openSelected loads the sidebar selection. Selecting the active chat only
// moves focus to the input.
func (m *Model) openSelected() tea.Cmd {
	entry, ok := m.sidebar.SelectedEntry()
	if !ok {
		return nil
	}
	if entry.ID == m.store.ActiveSessionID() {
		return m.setFocus(FocusChat)
	}
	if m.isBusy() {
		return m.ShowFlashWarning("Please wait for the current request to finish.")
	}
	return m.loadSessionCmd(entry.ID)
}

// submitInput sends the input as a text message or runs it as a slash command.
// The input is kept when the send is refused so nothing the user typed is lost.
func (m *Model) submitInput() tea.Cmd {
	input := m.chat.GetInput()
	if input == "" {
		return nil
	}

	if strings.HasPrefix(input, "/") {
		result := m.handleSlashCommand(input)
		if result.Handled {
			m.chat.ClearInput()
			return result.Cmd
		}
	}

	if m.isBusy() {
		return m.ShowFlashWarning("Please wait for the current request to finish.")
	}
	m.chat.ClearInput()
	return m.sendCmd(chat.TextMessage(input))
}

// sendAttachment sends a file message.
func (m *Model) sendAttachment(file *chat.Attachment) tea.Cmd {
	if m.isBusy() {
		return m.ShowFlashWarning("Please wait for the current request to finish.")
	}
	return tea.Batch(m.ShowFlashInfo(describeAttachment(file)), m.sendCmd(chat.FileMessage(file)))
}

func (m *Model) changeMode(mode chat.Mode) tea.Cmd {
	if err := m.dispatcher.ChangeMode(mode); err != nil {
		return m.handleOperationError(err)
	}
	return tea.Batch(m.syncFromStore(), m.ShowFlashInfo("Mode: "+mode.String()))
}

func (m *Model) changeLanguage(language string) tea.Cmd {
	if err := m.dispatcher.ChangeLanguage(language); err != nil {
		return m.handleOperationError(err)
	}
	return tea.Batch(m.syncFromStore(), m.ShowFlashInfo("Language: "+chat.LanguageName(m.store.Language())))
}

func (m *Model) copyLastReply() tea.Cmd {
	reply, ok := m.chat.LastBotReply()
	if !ok {
		return m.ShowFlashWarning("No reply to copy yet.")
	}
	return m.copyCmd(reply)
}

// applyTheme switches the theme and saves the choice.
func (m *Model) applyTheme(name ui.ThemeName) tea.Cmd {
	ui.SetTheme(name)
	m.config.SetTheme(string(name))
	if err := m.config.Save(); err != nil {
		logger.WithComponent("app").Warn("failed to save theme", "error", err)
		return m.ShowFlashWarning("Theme applied but not saved.")
	}
	return m.ShowFlashSuccess("Theme: " + ui.CurrentTheme().Name)
}

func historyCountText(n int) string {
	switch n {
	case 0:
		return "History refreshed: no chats."
	case 1:
		return "History refreshed: 1 chat."
	}
	return fmt.Sprintf("History refreshed: %d chats.", n)
}
