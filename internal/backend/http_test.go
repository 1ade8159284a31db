package backend

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/zhubert/parley/internal/chat"
	perrors "github.com/zhubert/parley/internal/errors"
	"github.com/zhubert/parley/internal/logger"
)

func TestMain(m *testing.M) {
	logger.Reset()
	logger.Init(os.DevNull)
	os.Exit(m.Run())
}

// newTestGateway serves handler and returns a gateway pointed at it.
func newTestGateway(t *testing.T, handler http.HandlerFunc) *HTTPGateway {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewHTTPGateway(srv.URL+"/api/", 5*time.Second)
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	io.WriteString(w, body)
}

func TestNewHTTPGateway_TrimsSlash(t *testing.T) {
	g := NewHTTPGateway("http://localhost:5000/api/", 0)
	if g.BaseURL() != "http://localhost:5000/api" {
		t.Errorf("BaseURL() = %q", g.BaseURL())
	}
}

func TestListHistory(t *testing.T) {
	g := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/api/chat_history" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get(RequestIDHeader) == "" {
			t.Error("request id header missing")
		}
		writeJSON(w, 200, `[{"id":"s2","title":"Remote pairing"},{"id":"s1","activeTVModel":"QLED"}]`)
	})

	entries, err := g.ListHistory(context.Background())
	if err != nil {
		t.Fatalf("ListHistory() error = %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("len(entries) = %d, want 2", len(entries))
	}
	if entries[0].ID != "s2" || entries[0].Title != "Remote pairing" {
		t.Errorf("entries[0] = %+v", entries[0])
	}
	if entries[1].Title != "" {
		t.Errorf("entries[1].Title = %q, want empty", entries[1].Title)
	}
}

func TestListHistory_NullBody(t *testing.T) {
	g := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 200, `null`)
	})

	entries, err := g.ListHistory(context.Background())
	if err != nil {
		t.Fatalf("ListHistory() error = %v", err)
	}
	if entries == nil || len(entries) != 0 {
		t.Errorf("entries = %#v, want empty non-nil slice", entries)
	}
}

func TestCreateSession(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantID   string
		wantKind perrors.Kind
	}{
		{
			name:   "ok",
			status: 200,
			body:   `{"sessionId":"abc","messages":[{"sender":"bot","text":"Welcome","timestamp":"t"}],"languageCode":"fr"}`,
			wantID: "abc",
		},
		{name: "missing id", status: 200, body: `{"messages":[]}`, wantKind: perrors.KindMalformed},
		{name: "not json", status: 200, body: `<html>`, wantKind: perrors.KindMalformed},
		{name: "server error", status: 500, body: `{"error":"db down"}`, wantKind: perrors.KindBackend},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost || r.URL.Path != "/api/new_chat" {
					t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
				}
				writeJSON(w, tt.status, tt.body)
			})

			p, err := g.CreateSession(context.Background())
			if tt.wantKind != perrors.KindUnknown {
				if !perrors.Is(err, tt.wantKind) {
					t.Fatalf("CreateSession() error = %v, want kind %v", err, tt.wantKind)
				}
				return
			}
			if err != nil {
				t.Fatalf("CreateSession() error = %v", err)
			}
			if p.SessionID != tt.wantID {
				t.Errorf("SessionID = %q, want %q", p.SessionID, tt.wantID)
			}
			s := p.Session()
			if len(s.Messages) != 1 || s.Messages[0].Sender != chat.SenderBot {
				t.Errorf("Messages = %+v", s.Messages)
			}
			if s.LanguageCode != "fr" {
				t.Errorf("LanguageCode = %q", s.LanguageCode)
			}
		})
	}
}

func TestFetchSession(t *testing.T) {
	g := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/chat_session/known":
			writeJSON(w, 200, `{"sessionId":"known","messages":[{"sender":"user","text":"hi","timestamp":"t"}]}`)
		case "/api/chat_session/gone":
			writeJSON(w, 404, `{"error":"Session not found"}`)
		default:
			writeJSON(w, 503, `{}`)
		}
	})

	p, err := g.FetchSession(context.Background(), "known")
	if err != nil {
		t.Fatalf("FetchSession(known) error = %v", err)
	}
	if p.SessionID != "known" || len(p.Messages) != 1 {
		t.Errorf("payload = %+v", p)
	}

	_, err = g.FetchSession(context.Background(), "gone")
	if !perrors.Is(err, perrors.KindNotFound) {
		t.Errorf("FetchSession(gone) error = %v, want KindNotFound", err)
	}
	var respErr *ResponseError
	if !errors.As(err, &respErr) || respErr.Status != http.StatusNotFound {
		t.Errorf("FetchSession(gone) error = %v, want it to wrap the 404 response", err)
	}
	if !strings.Contains(err.Error(), "session gone not found") {
		t.Errorf("FetchSession(gone) error = %q", err.Error())
	}

	_, err = g.FetchSession(context.Background(), "other")
	if !perrors.Is(err, perrors.KindBackend) {
		t.Errorf("FetchSession(other) error = %v, want KindBackend", err)
	}
}

func TestFetchSession_EscapesID(t *testing.T) {
	g := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.EscapedPath() != "/api/chat_session/a%2Fb" {
			t.Errorf("EscapedPath() = %q", r.URL.EscapedPath())
		}
		writeJSON(w, 200, `{"sessionId":"a/b"}`)
	})

	if _, err := g.FetchSession(context.Background(), "a/b"); err != nil {
		t.Fatalf("FetchSession() error = %v", err)
	}
}

func TestSendMessage_Text(t *testing.T) {
	g := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q", ct)
		}
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		want := map[string]string{"sessionId": "s1", "language": "en", "mode": "Chatbot", "message": "hello"}
		for k, v := range want {
			if body[k] != v {
				t.Errorf("body[%q] = %q, want %q", k, body[k], v)
			}
		}
		writeJSON(w, 200, `{"reply":"hi there","languageCode":"en"}`)
	})

	reply, err := g.SendMessage(context.Background(), SendRequest{
		SessionID: "s1", Language: "en", Mode: chat.ModeChatbot, Message: "hello",
	})
	if err != nil {
		t.Fatalf("SendMessage() error = %v", err)
	}
	if reply.Reply != "hi there" || reply.LanguageCode != "en" {
		t.Errorf("reply = %+v", reply)
	}
}

func TestSendMessage_Multipart(t *testing.T) {
	g := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
			t.Errorf("Content-Type = %q", r.Header.Get("Content-Type"))
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("ParseMultipartForm: %v", err)
		}
		f, hdr, err := r.FormFile("file")
		if err != nil {
			t.Fatalf("FormFile: %v", err)
		}
		defer f.Close()
		data, _ := io.ReadAll(f)

		if hdr.Filename != "photo.png" {
			t.Errorf("filename = %q", hdr.Filename)
		}
		if hdr.Header.Get("Content-Type") != "image/png" {
			t.Errorf("part Content-Type = %q", hdr.Header.Get("Content-Type"))
		}
		if string(data) != "PNG" {
			t.Errorf("data = %q", data)
		}
		for k, v := range map[string]string{
			"sessionId": "s1",
			"language":  "fr",
			"mode":      "Interactive Assistant",
			"message":   "File: photo.png",
		} {
			if got := r.FormValue(k); got != v {
				t.Errorf("field %q = %q, want %q", k, got, v)
			}
		}
		writeJSON(w, 200, `{"reply":"Nice photo"}`)
	})

	reply, err := g.SendMessage(context.Background(), SendRequest{
		SessionID: "s1",
		Language:  "fr",
		Mode:      chat.ModeInteractiveAssistant,
		Message:   "File: photo.png",
		File:      &chat.Attachment{Name: "photo.png", ContentType: "image/png", Data: []byte("PNG")},
	})
	if err != nil {
		t.Fatalf("SendMessage() error = %v", err)
	}
	if reply.Reply != "Nice photo" {
		t.Errorf("Reply = %q", reply.Reply)
	}
}

func TestSendMessage_MultipartFilenames(t *testing.T) {
	names := []string{
		"résumé.pdf",
		"申请表.docx",
		`say "hi".txt`,
		`back\slash.txt`,
	}

	for _, name := range names {
		t.Run(name, func(t *testing.T) {
			g := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
				if err := r.ParseMultipartForm(1 << 20); err != nil {
					t.Fatalf("ParseMultipartForm: %v", err)
				}
				_, hdr, err := r.FormFile("file")
				if err != nil {
					t.Fatalf("FormFile: %v", err)
				}
				if hdr.Filename != name {
					t.Errorf("filename = %q, want %q", hdr.Filename, name)
				}
				if cd := hdr.Header.Get("Content-Disposition"); strings.Contains(cd, `\u`) {
					t.Errorf("Content-Disposition has Go escapes: %s", cd)
				}
				writeJSON(w, 200, `{"reply":"ok"}`)
			})

			_, err := g.SendMessage(context.Background(), SendRequest{
				SessionID: "s1",
				Message:   "File: " + name,
				File:      &chat.Attachment{Name: name, ContentType: "application/pdf", Data: []byte("x")},
			})
			if err != nil {
				t.Fatalf("SendMessage() error = %v", err)
			}
		})
	}
}

func TestSendMessage_ReplyValidation(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantKind perrors.Kind
		want     string
	}{
		{name: "string reply", body: `{"reply":"ok"}`, want: "ok"},
		{name: "empty string reply", body: `{"reply":""}`, want: ""},
		{name: "missing reply", body: `{"languageCode":"en"}`, wantKind: perrors.KindMalformed},
		{name: "null reply", body: `{"reply":null}`, wantKind: perrors.KindMalformed},
		{name: "numeric reply", body: `{"reply":42}`, wantKind: perrors.KindMalformed},
		{name: "object reply", body: `{"reply":{"text":"x"}}`, wantKind: perrors.KindMalformed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, 200, tt.body)
			})

			reply, err := g.SendMessage(context.Background(), SendRequest{SessionID: "s1", Message: "x"})
			if tt.wantKind != perrors.KindUnknown {
				if !perrors.Is(err, tt.wantKind) {
					t.Fatalf("error = %v, want kind %v", err, tt.wantKind)
				}
				return
			}
			if err != nil {
				t.Fatalf("SendMessage() error = %v", err)
			}
			if reply.Reply != tt.want {
				t.Errorf("Reply = %q, want %q", reply.Reply, tt.want)
			}
		})
	}
}

func TestSendMessage_ErrorBody(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantMsg string
	}{
		{"reply preferred", `{"error":"boom","reply":"Please rephrase."}`, "Please rephrase."},
		{"error only", `{"error":"Message too long"}`, "Message too long"},
		{"empty body", ``, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, 400, tt.body)
			})

			_, err := g.SendMessage(context.Background(), SendRequest{SessionID: "s1", Message: "x"})
			if !perrors.Is(err, perrors.KindBackend) {
				t.Fatalf("error = %v, want KindBackend", err)
			}
			var respErr *ResponseError
			if !errors.As(err, &respErr) {
				t.Fatalf("error %v does not wrap *ResponseError", err)
			}
			if respErr.Status != 400 {
				t.Errorf("Status = %d", respErr.Status)
			}
			if got := respErr.UserMessage(); got != tt.wantMsg {
				t.Errorf("UserMessage() = %q, want %q", got, tt.wantMsg)
			}
		})
	}
}

func TestSendMessage_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	g := NewHTTPGateway(url, time.Second)
	_, err := g.SendMessage(context.Background(), SendRequest{SessionID: "s1", Message: "x"})
	if !perrors.Is(err, perrors.KindNetwork) {
		t.Errorf("error = %v, want KindNetwork", err)
	}
}

func TestSendMessage_ContextCanceled(t *testing.T) {
	release := make(chan struct{})
	g := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		io.Copy(io.Discard, r.Body)
		select {
		case <-r.Context().Done():
		case <-release:
		}
	})
	// Registered after the server so it runs before srv.Close
	t.Cleanup(func() { close(release) })

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := g.SendMessage(ctx, SendRequest{SessionID: "s1", Message: "x"})
	if !perrors.Is(err, perrors.KindNetwork) {
		t.Errorf("error = %v, want KindNetwork", err)
	}
}

func TestSendMessage_BadBaseURL(t *testing.T) {
	g := NewHTTPGateway("http://[::1", time.Second)
	_, err := g.SendMessage(context.Background(), SendRequest{SessionID: "s1", Message: "x"})
	if !perrors.Is(err, perrors.KindInvalid) {
		t.Errorf("error = %v, want KindInvalid", err)
	}
}

// recordingTransport captures outgoing requests and answers them itself.
type recordingTransport struct {
	requests []*http.Request
}

func (rt *recordingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	rt.requests = append(rt.requests, req)
	return &http.Response{
		StatusCode: http.StatusOK,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(`[{"id":"s1","title":"Hello"}]`)),
		Request:    req,
	}, nil
}

func TestSetHTTPClient(t *testing.T) {
	rt := &recordingTransport{}
	g := NewHTTPGateway("http://assistant.test/api", time.Second)
	g.SetHTTPClient(&http.Client{Transport: rt})

	for range 2 {
		entries, err := g.ListHistory(context.Background())
		if err != nil {
			t.Fatalf("ListHistory() error = %v", err)
		}
		if len(entries) != 1 || entries[0].ID != "s1" {
			t.Errorf("entries = %+v", entries)
		}
	}

	if len(rt.requests) != 2 {
		t.Fatalf("transport saw %d requests, want 2", len(rt.requests))
	}
	first := rt.requests[0].Header.Get(RequestIDHeader)
	second := rt.requests[1].Header.Get(RequestIDHeader)
	if first == "" || first == second {
		t.Errorf("request ids = %q, %q; want distinct non-empty ids", first, second)
	}
	if got := rt.requests[0].URL.String(); got != "http://assistant.test/api/chat_history" {
		t.Errorf("URL = %q", got)
	}
	if got := rt.requests[0].Header.Get("Accept"); got != "application/json" {
		t.Errorf("Accept = %q", got)
	}
}
