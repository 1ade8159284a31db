package app

import (
	tea "charm.land/bubbletea/v2"
)

// untitledChat is the header title of a session the history does not list yet.
const untitledChat = "New chat"

// syncFromStore copies a store snapshot into the components. It is safe to
// call repeatedly; animations only start on a state change.
func (m *Model) syncFromStore() tea.Cmd {
	st := m.store.Snapshot()

	m.chat.SetLanguage(st.Language)
	m.chat.SetState(st.Messages, st.HasActiveSession(), st.IsModuleInitializing)
	waitCmd := m.chat.SetWaiting(st.IsLoadingResponse)

	m.sidebar.SetHistory(st.History)
	m.sidebar.SetActive(st.ActiveSessionID)
	m.sidebar.SetLanguage(st.Language)
	loadCmd := m.sidebar.SetLoading(st.IsModuleInitializing)

	m.header.SetPreferences(st.Mode, st.Language)
	title := ""
	if entry, ok := st.HistoryEntry(st.ActiveSessionID); ok {
		title = entry.DisplayTitle()
	} else if st.HasActiveSession() {
		title = untitledChat
	}
	m.header.SetSessionTitle(title)

	return tea.Batch(waitCmd, loadCmd)
}
