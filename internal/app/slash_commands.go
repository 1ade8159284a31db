package app

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/zhubert/parley/internal/chat"
	"github.com/zhubert/parley/internal/logger"
	"github.com/zhubert/parley/internal/ui"
)

// SlashCommandResult represents the result of handling a slash command.
type SlashCommandResult struct {
	Handled bool    // Whether the command was recognized and handled
	Cmd     tea.Cmd // Follow-up work, such as a send or a flash
}

// slashCommandDef defines a slash command with its help text.
type slashCommandDef struct {
	name        string
	usage       string
	description string
}

// getSlashCommands returns the registry of available slash commands.
// Using a function instead of a var avoids initialization cycles.
func getSlashCommands() []slashCommandDef {
	return []slashCommandDef{
		{name: "file", usage: "/file <path>", description: "send a file"},
		{name: "paste", usage: "/paste", description: "send the clipboard image"},
		{name: "mode", usage: "/mode [chatbot|assistant]", description: "set or toggle the mode"},
		{name: "lang", usage: "/lang [code]", description: "set or cycle the language"},
		{name: "new", usage: "/new", description: "start a new chat"},
		{name: "refresh", usage: "/refresh", description: "reload the chat history"},
		{name: "theme", usage: "/theme", description: "pick a color theme"},
		{name: "help", usage: "/help", description: "show keys and commands"},
	}
}

// handleSlashCommand checks if the input is a slash command and handles it.
// Unknown commands are not handled and go to the assistant as text.
func (m *Model) handleSlashCommand(input string) SlashCommandResult {
	if !strings.HasPrefix(input, "/") {
		return SlashCommandResult{Handled: false}
	}

	// Parse command and arguments
	parts := strings.SplitN(strings.TrimPrefix(input, "/"), " ", 2)
	cmdName := strings.ToLower(parts[0])
	args := ""
	if len(parts) > 1 {
		args = strings.TrimSpace(parts[1])
	}

	logger.WithComponent("app").Debug("slash command detected", "command", cmdName, "args", args)

	switch cmdName {
	case "file":
		return handleFileCommand(m, args)
	case "paste":
		return handlePasteCommand(m, args)
	case "mode":
		return handleModeCommand(m, args)
	case "lang", "language":
		return handleLangCommand(m, args)
	case "new":
		return SlashCommandResult{Handled: true, Cmd: m.newChat()}
	case "refresh":
		return SlashCommandResult{Handled: true, Cmd: m.refreshHistoryCmd()}
	case "theme":
		m.modal.Show(ui.NewThemeState(ui.CurrentThemeName()))
		return SlashCommandResult{Handled: true}
	case "help":
		return handleHelpCommand(m, args)
	default:
		logger.WithComponent("app").Debug("unknown slash command, sending as text", "command", cmdName)
		return SlashCommandResult{Handled: false}
	}
}

// handleFileCommand reads a file from disk and sends it as an attachment.
func handleFileCommand(m *Model, args string) SlashCommandResult {
	if args == "" {
		return SlashCommandResult{Handled: true, Cmd: m.ShowFlashWarning("Usage: /file <path>")}
	}
	file, err := m.loadAttachment(args)
	if err != nil {
		logger.WithComponent("app").Warn("attachment rejected", "path", args, "error", err)
		return SlashCommandResult{Handled: true, Cmd: m.ShowFlashError(err.Error())}
	}
	return SlashCommandResult{Handled: true, Cmd: m.sendAttachment(file)}
}

// handlePasteCommand sends the image on the clipboard as an attachment.
func handlePasteCommand(m *Model, _ string) SlashCommandResult {
	file, err := m.pasteImage(m.now())
	if err != nil {
		logger.WithComponent("app").Warn("clipboard image unavailable", "error", err)
		return SlashCommandResult{Handled: true, Cmd: m.ShowFlashError("Could not read the clipboard image.")}
	}
	if file == nil {
		return SlashCommandResult{Handled: true, Cmd: m.ShowFlashWarning("The clipboard holds no image.")}
	}
	return SlashCommandResult{Handled: true, Cmd: m.sendAttachment(file)}
}

// handleModeCommand sets the mode, or toggles it without an argument.
func handleModeCommand(m *Model, args string) SlashCommandResult {
	if args == "" {
		return SlashCommandResult{Handled: true, Cmd: m.changeMode(m.store.Mode().Next())}
	}
	mode, err := chat.ParseMode(args)
	if err != nil {
		return SlashCommandResult{Handled: true, Cmd: m.ShowFlashWarning(err.Error())}
	}
	return SlashCommandResult{Handled: true, Cmd: m.changeMode(mode)}
}

// handleLangCommand sets the language, or cycles it without an argument.
func handleLangCommand(m *Model, args string) SlashCommandResult {
	if args == "" {
		return SlashCommandResult{Handled: true, Cmd: m.changeLanguage(chat.NextLanguage(m.store.Language()))}
	}
	return SlashCommandResult{Handled: true, Cmd: m.changeLanguage(args)}
}

// handleHelpCommand shows key bindings and slash commands in a modal.
func handleHelpCommand(m *Model, _ string) SlashCommandResult {
	var commands []ui.KeyBinding
	for _, c := range getSlashCommands() {
		commands = append(commands, ui.KeyBinding{Key: c.usage, Desc: c.description})
	}

	m.modal.Show(ui.NewHelpState(
		ui.HelpSection{Title: "Keys", Rows: helpKeyBindings()},
		ui.HelpSection{Title: "Commands", Rows: commands},
		ui.HelpSection{Title: "Session", Rows: []ui.KeyBinding{
			{Key: "server", Desc: m.config.GetServerURL()},
			{Key: "version", Desc: m.version},
		}},
	))
	return SlashCommandResult{Handled: true}
}

func helpKeyBindings() []ui.KeyBinding {
	return []ui.KeyBinding{
		{Key: "enter", Desc: "send, or open the selected chat"},
		{Key: "tab", Desc: "switch between history and input"},
		{Key: "ctrl+n", Desc: "new chat"},
		{Key: "ctrl+t", Desc: "toggle mode"},
		{Key: "ctrl+l", Desc: "cycle language"},
		{Key: "ctrl+b", Desc: "show or hide history"},
		{Key: "ctrl+r", Desc: "refresh history"},
		{Key: "ctrl+y", Desc: "copy the last reply"},
		{Key: "ctrl+o", Desc: "pick a theme"},
		{Key: "pgup/pgdown", Desc: "scroll the transcript"},
		{Key: "ctrl+c", Desc: "quit"},
	}
}

// describeAttachment is the flash shown while a file is on its way.
func describeAttachment(file *chat.Attachment) string {
	return fmt.Sprintf("Sending %s (%s)", file.Name, humanSize(len(file.Data)))
}
