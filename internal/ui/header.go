package ui

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/mattn/go-runewidth"

	"github.com/zhubert/parley/internal/chat"
)

// Header represents the top header bar
type Header struct {
	width         int
	assistantName string
	sessionTitle  string
	mode          chat.Mode
	language      string
}

// NewHeader creates a new header
func NewHeader(assistantName string) *Header {
	return &Header{
		assistantName: assistantName,
		mode:          chat.ModeChatbot,
		language:      chat.DefaultLanguage,
	}
}

// SetWidth sets the header width
func (h *Header) SetWidth(width int) {
	h.width = width
}

// SetSessionTitle sets the active session's title; empty hides it
func (h *Header) SetSessionTitle(title string) {
	h.sessionTitle = title
}

// SetPreferences sets the mode and language shown on the right
func (h *Header) SetPreferences(mode chat.Mode, language string) {
	h.mode = mode
	h.language = language
}

// rightText is the status portion: session title, mode and language.
func (h *Header) rightText(withTitle bool) string {
	parts := make([]string, 0, 3)
	if withTitle && h.sessionTitle != "" {
		parts = append(parts, h.sessionTitle)
	}
	parts = append(parts, h.mode.String(), strings.ToUpper(h.language))
	return strings.Join(parts, " · ") + " "
}

// View renders the header
func (h *Header) View() string {
	titleText := " " + h.assistantName
	rightText := h.rightText(true)

	paddingLen := h.width - runewidth.StringWidth(titleText) - runewidth.StringWidth(rightText)
	if paddingLen < 1 {
		// Drop the session title before letting the line overflow
		rightText = h.rightText(false)
		paddingLen = h.width - runewidth.StringWidth(titleText) - runewidth.StringWidth(rightText)
		if paddingLen < 0 {
			paddingLen = 0
		}
	}

	fullContent := titleText + strings.Repeat(" ", paddingLen) + rightText
	return h.renderGradient(fullContent, runewidth.StringWidth(titleText))
}

// parseHexColor parses a hex color string (e.g., "#7C3AED") into RGB components
func parseHexColor(hex string) (r, g, b int) {
	if len(hex) == 7 && hex[0] == '#' {
		fmt.Sscanf(hex[1:], "%02x%02x%02x", &r, &g, &b)
	}
	return
}

// renderGradient renders the content with a theme-aware gradient background.
// The first boldWidth cells (the assistant name) are bold.
func (h *Header) renderGradient(content string, boldWidth int) string {
	if len(content) == 0 {
		return ""
	}

	theme := CurrentTheme()
	startR, startG, startB := parseHexColor(theme.Primary)
	endR, endG, endB := parseHexColor(theme.Bg)
	textColor := lipgloss.Color(theme.Text)

	runes := []rune(content)
	width := len(runes)
	var result strings.Builder

	cell := 0
	for i, r := range runes {
		t := float64(i) / float64(width)

		cr := int(float64(startR)*(1-t) + float64(endR)*t)
		cg := int(float64(startG)*(1-t) + float64(endG)*t)
		cb := int(float64(startB)*(1-t) + float64(endB)*t)

		style := lipgloss.NewStyle().
			Background(lipgloss.Color(fmt.Sprintf("#%02X%02X%02X", cr, cg, cb))).
			Foreground(textColor).
			Bold(cell < boldWidth)

		result.WriteString(style.Render(string(r)))
		cell += runewidth.RuneWidth(r)
	}

	return result.String()
}
