package ui

import (
	"regexp"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/dustin/go-humanize"

	"github.com/zhubert/parley/internal/chat"
)

// contextDividerWidth caps the banner divider so it stays short on wide terminals
const contextDividerWidth = 48

var contextBannerPattern = regexp.MustCompile(`^Context: Mode - (.+), Language - ([A-Za-z-]+)\.$`)

// parseContextBanner extracts mode and language from a session's context line.
func parseContextBanner(text string) (mode, language string, ok bool) {
	m := contextBannerPattern.FindStringSubmatch(strings.TrimSpace(text))
	if m == nil {
		return "", "", false
	}
	return m[1], m[2], true
}

// renderContextDivider draws the banner as a rule with the preferences centred in it.
func renderContextDivider(mode, language string, width int) string {
	label := " " + mode + " · " + language + " "
	side := (min(width, contextDividerWidth) - lipgloss.Width(label)) / 2
	if side < 2 {
		side = 2
	}
	rule := strings.Repeat("─", side)
	return lipgloss.NewStyle().Foreground(ColorTextMuted).Render(rule + label + rule)
}

// isErrorNotice reports whether a system line describes a failure.
func isErrorNotice(text string) bool {
	return strings.HasPrefix(text, "Error")
}

func renderNotice(text string, width int) string {
	glyph, style := "›", ChatSystemStyle
	if isErrorNotice(text) {
		glyph, style = "✗", lipgloss.NewStyle().Foreground(ColorError)
	}
	return style.Render(glyph + " " + indentContinuation(wrapText(text, width-2), 2))
}

// fileSummary describes an attachment by name, type and size. Messages
// restored from history carry only their text.
func fileSummary(msg chat.Message) string {
	a := msg.OriginalContent
	if a == nil {
		return msg.Text
	}
	parts := []string{a.Name}
	if a.ContentType != "" {
		parts = append(parts, a.ContentType)
	}
	parts = append(parts, humanize.IBytes(uint64(len(a.Data))))
	return strings.Join(parts, " · ")
}

// isRightToLeft reports whether replies in language should be right aligned.
func isRightToLeft(language string) bool {
	return strings.EqualFold(language, "ar")
}

// renderMessage renders one transcript line according to its sender
func (c *Chat) renderMessage(msg chat.Message, wrapWidth int) string {
	switch msg.Sender {
	case chat.SenderSystem:
		if mode, lang, ok := parseContextBanner(msg.Text); ok {
			return renderContextDivider(mode, lang, wrapWidth)
		}
		return renderNotice(msg.Text, wrapWidth)
	case chat.SenderUser:
		label := ChatUserStyle.Render("You:")
		if msg.Type == chat.TypeFile {
			body := indentContinuation(wrapText(fileSummary(msg), wrapWidth-3), 3)
			return label + "\n" + lipgloss.NewStyle().Foreground(ColorText).Render("📎 "+body)
		}
		return label + "\n" + wrapText(msg.Text, wrapWidth)
	default:
		out := ChatBotStyle.Render(c.assistantName+":") + "\n" + renderMarkdown(strings.TrimSpace(msg.Text), wrapWidth)
		if isRightToLeft(c.language) {
			return lipgloss.NewStyle().Width(wrapWidth).Align(lipgloss.Right).Render(out)
		}
		return out
	}
}
