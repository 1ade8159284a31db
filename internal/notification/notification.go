// Package notification provides cross-platform desktop notifications.
// It uses the beeep library to send notifications on macOS, Linux, and Windows.
package notification

import (
	"strings"

	"github.com/gen2brain/beeep"

	"github.com/zhubert/parley/internal/logger"
)

// maxBodyLen keeps reply previews to a single notification line.
const maxBodyLen = 120

// notifier is swapped out in tests so nothing reaches the desktop.
var notifier = func(title, message string) error {
	return beeep.Notify(title, message, "")
}

// SetNotifier replaces the function used to deliver notifications.
func SetNotifier(fn func(title, message string) error) {
	notifier = fn
}

// ResetNotifier restores the beeep-backed notifier.
func ResetNotifier() {
	notifier = func(title, message string) error {
		return beeep.Notify(title, message, "")
	}
}

// Send sends a desktop notification with the given title and message.
// On macOS, it uses terminal-notifier or AppleScript.
// On Linux, it uses D-Bus or notify-send.
// On Windows, it uses the Windows Runtime COM API.
func Send(title, message string) error {
	log := logger.WithComponent("notification")
	log.Debug("sending", "title", title, "length", len(message))
	err := notifier(title, message)
	if err != nil {
		log.Warn("failed to send notification", "error", err)
	}
	return err
}

// ReplyReceived announces a reply from the assistant. The body is the first
// line of the reply, shortened when needed.
func ReplyReceived(assistantName, reply string) error {
	return Send(assistantName, Preview(reply))
}

// Preview returns the first non-empty line of text, cut to maxBodyLen runes.
func Preview(text string) string {
	line := ""
	for l := range strings.Lines(text) {
		if l = strings.TrimSpace(l); l != "" {
			line = l
			break
		}
	}
	r := []rune(line)
	if len(r) > maxBodyLen {
		return string(r[:maxBodyLen-1]) + "…"
	}
	return line
}
