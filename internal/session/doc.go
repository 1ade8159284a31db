// Package session decides which chat session is active and runs the
// request/response cycle for a single user message.
//
// # Overview
//
// Two controllers share one store, one gateway and one loading gate:
//
//   - Lifecycle establishes a session at startup and handles the user's
//     "new chat" and "open chat" intents.
//   - Dispatcher sends one user message, applies the reply and handles
//     mode and language changes.
//
// Both are the only writers of the store. The presentation layer reads
// snapshots and hands user intents back through these methods.
//
// # Loading gate
//
// At most one send, create or load is in flight. A second attempt is rejected
// with errors.KindBusy rather than queued. Holding the gate sets the store's
// IsLoadingResponse flag, and releasing it (always deferred) clears it.
// Initialize does not take the gate; IsModuleInitializing covers that window
// and user-triggered operations are rejected until it clears.
//
// # Fallback chain
//
// Initialize, CreateSession, LoadSession and the dispatcher's "no session yet"
// repair all go through ensureActiveSession:
//
//  1. With a candidate id, fetch it. On success the session becomes active.
//  2. Not found: note "Chat session not found. Starting a new chat." and create.
//  3. Malformed reply: create without a note.
//  4. Other failure: user-triggered loads stop with an error line; startup
//     carries the error line forward and creates.
//  5. Create. On failure the active session stays unset and the log
//     explains why.
//
// Failures never escape as raw errors to the transcript. Each one becomes a
// readable system line (lifecycle) or bot line (dispatch).
package session
