package ui

import (
	"sync"

	"github.com/zhubert/parley/internal/logger"
)

// ViewContext holds centralized layout calculations and provides debug logging.
// All size calculations should go through this to avoid duplication.
type ViewContext struct {
	// Terminal dimensions
	TerminalWidth  int
	TerminalHeight int

	// Calculated dimensions
	HeaderHeight  int
	FooterHeight  int
	ContentHeight int
	SidebarWidth  int
	ChatWidth     int

	// SidebarVisible is toggled by the user; a hidden sidebar gives the chat the full width.
	SidebarVisible bool

	mu sync.Mutex
}

// Global view context instance
var ctx *ViewContext
var ctxOnce sync.Once

// GetViewContext returns the singleton ViewContext instance
func GetViewContext() *ViewContext {
	ctxOnce.Do(func() {
		ctx = &ViewContext{
			HeaderHeight:   HeaderHeight,
			FooterHeight:   FooterHeight,
			SidebarVisible: true,
		}
		logger.WithComponent("ui").Debug("ViewContext initialized")
	})
	return ctx
}

// Log writes a debug message with key-value pairs to the log file.
func (v *ViewContext) Log(msg string, args ...any) {
	logger.WithComponent("ui").Debug(msg, args...)
}

// UpdateTerminalSize recalculates all dimensions when terminal size changes.
// It is called from the Bubble Tea event loop on every resize.
func (v *ViewContext) UpdateTerminalSize(width, height int) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if width < MinTerminalWidth {
		width = MinTerminalWidth
	}
	if height < MinTerminalHeight {
		height = MinTerminalHeight
	}

	v.TerminalWidth = width
	v.TerminalHeight = height
	v.HeaderHeight = HeaderHeight
	v.FooterHeight = FooterHeight
	v.ContentHeight = height - v.HeaderHeight - v.FooterHeight
	v.recalculateWidths()

	logger.WithComponent("ui").Debug("Terminal size updated",
		"width", width,
		"height", height,
		"contentHeight", v.ContentHeight,
		"sidebarWidth", v.SidebarWidth,
		"chatWidth", v.ChatWidth,
	)
}

// SetSidebarVisible shows or hides the sidebar and recomputes the split.
func (v *ViewContext) SetSidebarVisible(visible bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.SidebarVisible = visible
	v.recalculateWidths()
}

// recalculateWidths must be called with mu held.
func (v *ViewContext) recalculateWidths() {
	if !v.SidebarVisible {
		v.SidebarWidth = 0
		v.ChatWidth = v.TerminalWidth
		return
	}
	v.SidebarWidth = v.TerminalWidth / SidebarWidthRatio
	if v.SidebarWidth < MinSidebarWidth {
		v.SidebarWidth = MinSidebarWidth
	}
	v.ChatWidth = v.TerminalWidth - v.SidebarWidth
}

// InnerWidth returns the usable width inside a panel with borders
func (v *ViewContext) InnerWidth(panelWidth int) int {
	return panelWidth - BorderSize
}

// InnerHeight returns the usable height inside a panel with borders
func (v *ViewContext) InnerHeight(panelHeight int) int {
	return panelHeight - BorderSize
}
