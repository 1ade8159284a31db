// Package backend is the client side of the assistant service: the Gateway
// contract the session controllers depend on, an HTTP implementation, and a
// scriptable test double.
package backend

import (
	"context"
	"fmt"

	"github.com/zhubert/parley/internal/chat"
)

// Gateway is the set of remote operations the session controllers need.
type Gateway interface {
	// ListHistory returns past sessions, most recent first.
	ListHistory(ctx context.Context) ([]chat.HistoryEntry, error)
	// CreateSession starts a new session. A reply without a session id is a
	// KindMalformed error even when the transport succeeded.
	CreateSession(ctx context.Context) (*SessionPayload, error)
	// FetchSession loads an existing session. Unknown ids yield KindNotFound.
	FetchSession(ctx context.Context, id string) (*SessionPayload, error)
	// SendMessage posts one user message. Replies without a string "reply"
	// yield KindMalformed.
	SendMessage(ctx context.Context, req SendRequest) (*SendReply, error)
}

// SessionPayload is the body returned by the create and fetch endpoints.
type SessionPayload struct {
	SessionID    string         `json:"sessionId"`
	Messages     []chat.Message `json:"messages"`
	LanguageCode string         `json:"languageCode,omitempty"`
	LanguageName string         `json:"languageName,omitempty"`
}

// Session converts the payload to a domain session.
func (p *SessionPayload) Session() chat.Session {
	msgs := p.Messages
	if msgs == nil {
		msgs = []chat.Message{}
	}
	return chat.Session{
		ID:           p.SessionID,
		LanguageCode: p.LanguageCode,
		Messages:     msgs,
	}
}

// SendRequest carries the fields common to both request shapes. File is set
// only for file messages, which are sent as multipart form data.
type SendRequest struct {
	SessionID string
	Language  string
	Mode      chat.Mode
	Message   string
	File      *chat.Attachment
}

// IsMultipart reports whether the request must be encoded as a form upload.
func (r SendRequest) IsMultipart() bool {
	return r.File != nil
}

// SendReply is a validated reply from the send endpoint.
type SendReply struct {
	Reply        string
	LanguageCode string
}

// ResponseError is a non-2xx response. Reply and Message hold the body's
// "reply" and "error" fields when the server sent them.
type ResponseError struct {
	Status  int
	Reply   string
	Message string
}

func (e *ResponseError) Error() string {
	switch {
	case e.Message != "":
		return fmt.Sprintf("status %d: %s", e.Status, e.Message)
	case e.Reply != "":
		return fmt.Sprintf("status %d: %s", e.Status, e.Reply)
	}
	return fmt.Sprintf("status %d", e.Status)
}

// UserMessage returns the text the server meant for the user, preferring
// "reply" over "error". It is empty when the body had neither.
func (e *ResponseError) UserMessage() string {
	if e.Reply != "" {
		return e.Reply
	}
	return e.Message
}
