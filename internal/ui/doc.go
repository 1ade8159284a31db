// Package ui provides the terminal components of the parley chat client.
//
// # Overview
//
// The components follow Bubble Tea's Model-Update-View pattern and are styled
// with Lipgloss. They only render state handed to them by the app package;
// none of them talks to the backend or mutates the session store.
//
// # Layout System
//
//	┌─────────────────────────────────────────────────────┐
//	│ Header (1 line)                                     │
//	├────────────┬────────────────────────────────────────┤
//	│            │                                        │
//	│  Sidebar   │         Chat Panel                     │
//	│ (1/4 width)│         (rest)                         │
//	│            ├────────────────────────────────────────┤
//	│            │         Input                          │
//	├────────────┴────────────────────────────────────────┤
//	│ Footer (1 line)                                     │
//	└─────────────────────────────────────────────────────┘
//
// The sidebar can be hidden, in which case the chat panel takes the full width.
//
// # Components
//
// ViewContext: Singleton that manages centralized layout calculations.
//
// Header: Assistant name on the left; session title, mode and language on the
// right, over a gradient derived from the theme.
//
// Footer: Context-aware key hints, replaced by a flash message when one is set.
//
// Sidebar: The chat history with the active session marked. Supports j/k
// navigation and a "/" filter on titles.
//
// Chat: Transcript viewport and input textarea. Bot replies are rendered as
// markdown with chroma-highlighted code blocks; system notices are italic.
//
// Modal: Alert (blocking error), Help and Theme dialogs.
package ui
