// Package chat defines the values exchanged between the session controllers,
// the backend gateway and the presentation layer.
package chat

import (
	"fmt"
	"strings"
	"time"
)

// Sender identifies who authored a message.
type Sender string

const (
	SenderUser   Sender = "user"
	SenderBot    Sender = "bot"
	SenderSystem Sender = "system"
)

// MessageType is the kind of payload a message carries.
type MessageType string

const (
	TypeText MessageType = "text"
	TypeFile MessageType = "file"
)

// Attachment is a file the user sends in place of text.
type Attachment struct {
	Name        string
	ContentType string
	Data        []byte
}

// Message is one line of a chat transcript. Messages are never mutated once
// they are part of a log; controllers build new slices instead.
type Message struct {
	Sender    Sender      `json:"sender"`
	Text      string      `json:"text"`
	Timestamp string      `json:"timestamp"`
	Type      MessageType `json:"type,omitempty"`

	// OriginalContent is only set for TypeFile and never leaves the process.
	OriginalContent *Attachment `json:"-"`
}

// IsConversational reports whether the message was written by the user or the bot.
func (m Message) IsConversational() bool {
	return m.Sender == SenderUser || m.Sender == SenderBot
}

// Session is a chat session as returned by the backend.
type Session struct {
	ID           string
	Title        string
	LanguageCode string
	Messages     []Message
}

// HistoryEntry is the sidebar projection of a session.
type HistoryEntry struct {
	ID    string `json:"id"`
	Title string `json:"title,omitempty"`
}

// DisplayTitle returns the title, or a short id-based fallback when the
// backend has not assigned one yet.
func (h HistoryEntry) DisplayTitle() string {
	if h.Title != "" {
		return h.Title
	}
	id := h.ID
	if len(id) > 5 {
		id = id[len(id)-5:]
	}
	return "Session " + id
}

// placeholderTitlePrefixes are titles the backend uses before it has seen a user message.
var placeholderTitlePrefixes = []string{"New Chat", "Chat ", "Session"}

// HasPlaceholderTitle reports whether the entry still needs a backend-assigned title.
func (h HistoryEntry) HasPlaceholderTitle() bool {
	if h.Title == "" {
		return true
	}
	for _, prefix := range placeholderTitlePrefixes {
		if strings.HasPrefix(h.Title, prefix) {
			return true
		}
	}
	return false
}

// Mode selects how the assistant should interact with the user.
type Mode string

const (
	ModeChatbot              Mode = "Chatbot"
	ModeInteractiveAssistant Mode = "Interactive Assistant"
)

// Modes lists the modes in the order the UI cycles through them.
var Modes = []Mode{ModeChatbot, ModeInteractiveAssistant}

func (m Mode) String() string {
	return string(m)
}

// Next returns the mode after m, wrapping around.
func (m Mode) Next() Mode {
	if m == ModeChatbot {
		return ModeInteractiveAssistant
	}
	return ModeChatbot
}

// ParseMode accepts the wire values and the short aliases used on the command line.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "chatbot", "chat", "bot":
		return ModeChatbot, nil
	case "interactive assistant", "interactive", "assistant":
		return ModeInteractiveAssistant, nil
	}
	return "", fmt.Errorf("unknown mode %q (want chatbot or assistant)", s)
}

// DefaultLanguage is used until the backend reports otherwise.
const DefaultLanguage = "en"

// SupportedLanguages are the languages the UI offers, in cycle order.
var SupportedLanguages = []string{"en", "fr", "ar"}

// LanguageName returns a human-readable name for a language code.
func LanguageName(code string) string {
	switch code {
	case "en":
		return "English"
	case "fr":
		return "Français"
	case "ar":
		return "العربية"
	}
	return strings.ToUpper(code)
}

// NextLanguage returns the supported language after code, wrapping around.
// Unknown codes restart the cycle.
func NextLanguage(code string) string {
	for i, lang := range SupportedLanguages {
		if lang == code {
			return SupportedLanguages[(i+1)%len(SupportedLanguages)]
		}
	}
	return SupportedLanguages[0]
}

// Outgoing is a single user action handed to the dispatcher.
type Outgoing struct {
	Type MessageType
	Text string
	File *Attachment
}

// TextMessage builds an outgoing text action.
func TextMessage(text string) Outgoing {
	return Outgoing{Type: TypeText, Text: text}
}

// FileMessage builds an outgoing file action.
func FileMessage(file *Attachment) Outgoing {
	return Outgoing{Type: TypeFile, File: file}
}

// Validate checks that exactly one request shape applies.
func (o Outgoing) Validate() error {
	switch o.Type {
	case TypeText:
		if strings.TrimSpace(o.Text) == "" {
			return fmt.Errorf("text message is empty")
		}
		if o.File != nil {
			return fmt.Errorf("text message must not carry a file")
		}
	case TypeFile:
		if o.File == nil {
			return fmt.Errorf("file message has no attachment")
		}
		if o.File.Name == "" {
			return fmt.Errorf("file attachment has no name")
		}
	default:
		return fmt.Errorf("unsupported message type %q", o.Type)
	}
	return nil
}

// DisplayText is the transcript text for the action.
func (o Outgoing) DisplayText() string {
	if o.Type == TypeFile && o.File != nil {
		return "File: " + o.File.Name
	}
	return o.Text
}

// Timestamp formats t the way the backend does.
func Timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// NewMessage builds a text message stamped with now.
func NewMessage(sender Sender, text string, now time.Time) Message {
	return Message{Sender: sender, Text: text, Timestamp: Timestamp(now), Type: TypeText}
}
