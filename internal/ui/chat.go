package ui

import (
	"strings"
	"time"

	"charm.land/bubbles/v2/textarea"
	"charm.land/bubbles/v2/viewport"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/zhubert/parley/internal/chat"
	"github.com/zhubert/parley/internal/keys"
)

// noSessionHint follows the transcript when creating or loading a session failed
const noSessionHint = "No active chat. Press ctrl+n to start a new one."

// Chat represents the right panel with the conversation view and input
type Chat struct {
	viewport      viewport.Model
	input         textarea.Model
	width         int
	height        int
	focused       bool
	assistantName string
	language      string

	messages     []chat.Message
	hasSession   bool
	initializing bool

	waiting       bool      // Waiting for the backend
	waitStartTime time.Time // When waiting started (for stopwatch)
	waitingVerb   string
	spinnerFrame  int
	now           func() time.Time
}

// NewChat creates a new chat panel
func NewChat(assistantName string) *Chat {
	ti := textarea.New()
	ti.Placeholder = "Type your message... (/help for commands)"
	ti.CharLimit = 0
	ti.SetHeight(TextareaHeight)
	ti.ShowLineNumbers = false
	ti.Prompt = ""

	vp := viewport.New()
	vp.MouseWheelEnabled = true
	vp.MouseWheelDelta = 3

	c := &Chat{
		viewport:      vp,
		input:         ti,
		assistantName: assistantName,
		initializing:  true,
		now:           time.Now,
	}
	c.updateContent()
	return c
}

// SetSize sets the chat panel dimensions
func (c *Chat) SetSize(width, height int) {
	c.width = width
	c.height = height

	ctx := GetViewContext()

	chatPanelHeight := height - InputTotalHeight
	viewportHeight := ctx.InnerHeight(chatPanelHeight)
	if viewportHeight < 1 {
		viewportHeight = 1
	}

	c.viewport.SetWidth(ctx.InnerWidth(width))
	c.viewport.SetHeight(viewportHeight)

	// Input width accounts for its own border AND padding
	c.input.SetWidth(ctx.InnerWidth(width) - InputPaddingWidth)

	ctx.Log("Chat.SetSize", "width", width, "height", height, "viewportHeight", viewportHeight)
	c.updateContent()
}

// SetFocused sets the focus state
func (c *Chat) SetFocused(focused bool) tea.Cmd {
	c.focused = focused
	if focused {
		return c.input.Focus()
	}
	c.input.Blur()
	return nil
}

// IsFocused returns the focus state
func (c *Chat) IsFocused() bool {
	return c.focused
}

// SetState replaces the rendered transcript. messages is owned by the caller's
// snapshot and is not modified.
func (c *Chat) SetState(messages []chat.Message, hasSession, initializing bool) {
	c.messages = messages
	c.hasSession = hasSession
	c.initializing = initializing
	c.updateContent()
}

// SetLanguage sets the language replies are rendered for
func (c *Chat) SetLanguage(code string) {
	if c.language == code {
		return
	}
	c.language = code
	c.updateContent()
}

// Messages returns the rendered transcript
func (c *Chat) Messages() []chat.Message {
	return c.messages
}

// LastBotReply returns the text of the most recent bot message
func (c *Chat) LastBotReply() (string, bool) {
	for i := len(c.messages) - 1; i >= 0; i-- {
		if c.messages[i].Sender == chat.SenderBot {
			return c.messages[i].Text, true
		}
	}
	return "", false
}

// SetWaiting shows or hides the waiting indicator. Starting it returns the
// first stopwatch tick.
func (c *Chat) SetWaiting(waiting bool) tea.Cmd {
	if waiting == c.waiting {
		return nil
	}
	c.waiting = waiting
	var cmd tea.Cmd
	if waiting {
		c.waitStartTime = c.now()
		c.waitingVerb = randomThinkingVerb()
		c.spinnerFrame = 0
		cmd = StopwatchTick()
	}
	c.updateContent()
	return cmd
}

// IsWaiting returns whether we're waiting for a response
func (c *Chat) IsWaiting() bool {
	return c.waiting
}

// GetInput returns the current input text
func (c *Chat) GetInput() string {
	return strings.TrimSpace(c.input.Value())
}

// ClearInput clears the input field
func (c *Chat) ClearInput() {
	c.input.Reset()
}

// SetInput sets the input field value
func (c *Chat) SetInput(value string) {
	c.input.SetValue(value)
}

// renderWelcome renders the placeholder shown when there is nothing to display
func (c *Chat) renderWelcome() string {
	msgStyle := lipgloss.NewStyle().Foreground(ColorTextMuted)
	keyStyle := lipgloss.NewStyle().Foreground(ColorPrimary).Bold(true)

	var sb strings.Builder
	sb.WriteString(PanelTitleStyle.Render("Welcome to " + c.assistantName))
	sb.WriteString("\n\n")
	sb.WriteString(msgStyle.Render("Ask a question below, or:"))
	sb.WriteString("\n")
	sb.WriteString(msgStyle.Render("  • "))
	sb.WriteString(keyStyle.Render("/file <path>"))
	sb.WriteString(msgStyle.Render(" to send a document"))
	sb.WriteString("\n")
	sb.WriteString(msgStyle.Render("  • "))
	sb.WriteString(keyStyle.Render("ctrl+t"))
	sb.WriteString(msgStyle.Render(" to switch between Chatbot and Interactive Assistant"))
	sb.WriteString("\n")
	sb.WriteString(msgStyle.Render("  • "))
	sb.WriteString(keyStyle.Render("ctrl+l"))
	sb.WriteString(msgStyle.Render(" to change the language"))
	return sb.String()
}

func (c *Chat) updateContent() {
	c.viewport.SetContent(c.renderContent())
	c.viewport.GotoBottom()
}

// renderContent renders the whole viewport body
func (c *Chat) renderContent() string {
	wrapWidth := c.viewport.Width()
	if wrapWidth <= 0 {
		wrapWidth = DefaultWrapWidth
	}

	var sb strings.Builder
	switch {
	case c.initializing:
		sb.WriteString(StatusLoadingStyle.Render("Connecting to " + c.assistantName + "..."))
	case len(c.messages) == 0 && !c.waiting:
		sb.WriteString(c.renderWelcome())
	default:
		for i, msg := range c.messages {
			if i > 0 {
				sb.WriteString("\n\n")
			}
			sb.WriteString(c.renderMessage(msg, wrapWidth))
		}
		if c.waiting {
			if len(c.messages) > 0 {
				sb.WriteString("\n\n")
			}
			sb.WriteString(renderSpinner(c.waitingVerb, c.spinnerFrame, c.now().Sub(c.waitStartTime)))
		} else if !c.hasSession {
			sb.WriteString("\n\n")
			sb.WriteString(lipgloss.NewStyle().Foreground(ColorTextMuted).Italic(true).Render(noSessionHint))
		}
	}
	return sb.String()
}

// Update handles messages
func (c *Chat) Update(msg tea.Msg) (*Chat, tea.Cmd) {
	var cmds []tea.Cmd

	if _, ok := msg.(StopwatchTickMsg); ok {
		if !c.waiting {
			return c, nil
		}
		c.spinnerFrame++
		c.updateContent()
		return c, StopwatchTick()
	}

	if c.focused {
		if keyMsg, isKey := msg.(tea.KeyPressMsg); isKey {
			switch keyMsg.String() {
			case keys.PgUp, keys.PgDown, keys.CtrlUp, keys.CtrlDown, keys.CtrlU, keys.CtrlD:
				var cmd tea.Cmd
				c.viewport, cmd = c.viewport.Update(msg)
				return c, cmd
			}

			var cmd tea.Cmd
			c.input, cmd = c.input.Update(msg)
			return c, cmd
		}
	}

	// Non-key events (mouse wheel) scroll the viewport
	var cmd tea.Cmd
	c.viewport, cmd = c.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return c, tea.Batch(cmds...)
}

// View renders the chat panel
func (c *Chat) View() string {
	panelStyle := PanelStyle
	if c.focused {
		panelStyle = PanelFocusedStyle
	}

	chatPanelHeight := c.height - InputTotalHeight
	chatPanel := panelStyle.Width(c.width).Height(chatPanelHeight).Render(c.viewport.View())

	inputStyle := ChatInputStyle
	if c.focused {
		inputStyle = ChatInputFocusedStyle
	}
	inputArea := inputStyle.Width(c.width).Render(c.input.View())

	return lipgloss.JoinVertical(lipgloss.Left, chatPanel, inputArea)
}
