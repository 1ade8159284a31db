package ui

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/x/ansi"
)

// inlineRule rewrites every match of pattern. m is the submatch slice.
type inlineRule struct {
	pattern *regexp.Regexp
	render  func(m []string) string
}

var inlineCodePattern = regexp.MustCompile("`([^`]+)`")

// inlineRules run in order. Images come before links since an image is a
// link with a leading bang.
var inlineRules = []inlineRule{
	{
		pattern: regexp.MustCompile(`\*\*([^*]+)\*\*`),
		render:  func(m []string) string { return MarkdownBoldStyle.Render(m[1]) },
	},
	{
		// Word boundaries only, so identifiers like foo_bar_baz survive
		pattern: regexp.MustCompile(`(^|[^a-zA-Z0-9_])_([^_]+)_([^a-zA-Z0-9_]|$)`),
		render:  func(m []string) string { return m[1] + MarkdownItalicStyle.Render(m[2]) + m[3] },
	},
	{
		pattern: regexp.MustCompile(`!\[([^\]]*)\]\(([^)\s]+)[^)]*\)`),
		render: func(m []string) string {
			alt := m[1]
			if alt == "" {
				alt = "image"
			}
			return MarkdownLinkStyle.Render("[image: "+alt+"]") + " " + MarkdownLinkStyle.Render(m[2])
		},
	},
	{
		pattern: regexp.MustCompile(`\[([^\]]+)\]\(([^)]+)\)`),
		render: func(m []string) string {
			return MarkdownLinkStyle.Render(m[1]) + " (" + MarkdownLinkStyle.Render(m[2]) + ")"
		},
	},
}

var numberedPattern = regexp.MustCompile(`^(\d{1,2})\. (.*)$`)

// highlightCode applies syntax highlighting to code using chroma
func highlightCode(code, language string) string {
	lexer := lexers.Get(language)
	if lexer == nil {
		lexer = lexers.Analyse(code)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	style := styles.Get("monokai")
	if style == nil {
		style = styles.Fallback
	}

	formatter := formatters.Get("terminal256")
	if formatter == nil {
		formatter = formatters.Fallback
	}

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return code
	}

	var buf bytes.Buffer
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return code
	}

	return buf.String()
}

// renderInlineMarkdown applies the inline rules to one line. Code spans are
// parked behind placeholders first so nothing inside them is rewritten.
func renderInlineMarkdown(line string) string {
	var spans []string
	line = inlineCodePattern.ReplaceAllStringFunc(line, func(match string) string {
		spans = append(spans, MarkdownInlineCodeStyle.Render(inlineCodePattern.FindStringSubmatch(match)[1]))
		return fmt.Sprintf("\x00%d\x00", len(spans)-1)
	})

	for _, rule := range inlineRules {
		line = rule.pattern.ReplaceAllStringFunc(line, func(match string) string {
			return rule.render(rule.pattern.FindStringSubmatch(match))
		})
	}

	for i, span := range spans {
		line = strings.Replace(line, fmt.Sprintf("\x00%d\x00", i), span, 1)
	}
	return line
}

// wrapText wraps text to the specified width, handling ANSI escape codes
func wrapText(text string, width int) string {
	if width <= 0 {
		return text
	}
	return ansi.Wordwrap(text, width, "")
}

// indentContinuation indents every line after the first by n spaces
func indentContinuation(text string, n int) string {
	lines := strings.Split(text, "\n")
	if len(lines) < 2 {
		return text
	}
	pad := strings.Repeat(" ", n)
	for i := 1; i < len(lines); i++ {
		lines[i] = pad + lines[i]
	}
	return strings.Join(lines, "\n")
}

// listItem renders a bullet or number marker with a hanging indent.
func listItem(marker, body string, width int) string {
	wrapped := wrapText(renderInlineMarkdown(body), width-lipgloss.Width(marker)-3)
	return "  " + MarkdownListBulletStyle.Render(marker) + " " + indentContinuation(wrapped, lipgloss.Width(marker)+3)
}

// renderMarkdownLine renders a single prose line
func renderMarkdownLine(line string, width int) string {
	trimmed := strings.TrimSpace(line)

	switch {
	case strings.HasPrefix(trimmed, "### "):
		return MarkdownH3Style.Render(trimmed[4:])
	case strings.HasPrefix(trimmed, "## "):
		return MarkdownH2Style.Render(trimmed[3:])
	case strings.HasPrefix(trimmed, "# "):
		return MarkdownH1Style.Render(trimmed[2:])
	case trimmed == "---" || trimmed == "***" || trimmed == "___":
		return MarkdownHRStyle.Render(strings.Repeat("─", min(width, 32)))
	case strings.HasPrefix(trimmed, "> "):
		return MarkdownBlockquoteStyle.Render(wrapText(renderInlineMarkdown(trimmed[2:]), width-4))
	case strings.HasPrefix(trimmed, "- ") || strings.HasPrefix(trimmed, "* "):
		return listItem("•", trimmed[2:], width)
	}

	if m := numberedPattern.FindStringSubmatch(trimmed); m != nil {
		return listItem(m[1]+".", m[2], width)
	}
	return wrapText(renderInlineMarkdown(line), width)
}

// markdownBlock is a run of prose lines or one fenced code block.
type markdownBlock struct {
	code  bool
	lang  string
	lines []string
}

// splitMarkdownBlocks groups content into prose and fenced code. An
// unterminated fence runs to the end of the content.
func splitMarkdownBlocks(content string) []markdownBlock {
	var blocks []markdownBlock
	cur := markdownBlock{}
	flush := func() {
		if cur.code || len(cur.lines) > 0 {
			blocks = append(blocks, cur)
		}
		cur = markdownBlock{}
	}

	for _, line := range strings.Split(content, "\n") {
		fence, isFence := strings.CutPrefix(strings.TrimSpace(line), "```")
		switch {
		case isFence && cur.code:
			flush()
		case isFence:
			flush()
			cur = markdownBlock{code: true, lang: strings.TrimSpace(fence)}
		default:
			cur.lines = append(cur.lines, line)
		}
	}
	flush()
	return blocks
}

// renderCodeBlock highlights a fenced block behind a muted gutter, with the
// fence language as a caption.
func renderCodeBlock(b markdownBlock) string {
	gutter := lipgloss.NewStyle().Foreground(ColorTextMuted).Render("│ ")
	highlighted := strings.TrimRight(highlightCode(strings.Join(b.lines, "\n"), b.lang), "\n")

	var sb strings.Builder
	if b.lang != "" {
		sb.WriteString(lipgloss.NewStyle().Foreground(ColorTextMuted).Italic(true).Render(b.lang))
		sb.WriteString("\n")
	}
	for i, line := range strings.Split(highlighted, "\n") {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(gutter + line)
	}
	return sb.String()
}

// renderMarkdown renders a bot reply
func renderMarkdown(content string, width int) string {
	if width <= 0 {
		width = DefaultWrapWidth
	}

	var out []string
	for _, b := range splitMarkdownBlocks(content) {
		if b.code {
			out = append(out, renderCodeBlock(b))
			continue
		}
		for _, line := range b.lines {
			out = append(out, renderMarkdownLine(line, width))
		}
	}
	return strings.TrimRight(strings.Join(out, "\n"), "\n")
}
