package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/zhubert/parley/internal/chat"
	perrors "github.com/zhubert/parley/internal/errors"
	"github.com/zhubert/parley/internal/logger"
)

const (
	opListHistory   perrors.Op = "backend.ListHistory"
	opCreateSession perrors.Op = "backend.CreateSession"
	opFetchSession  perrors.Op = "backend.FetchSession"
	opSendMessage   perrors.Op = "backend.SendMessage"
)

// maxResponseBytes caps how much of a response body is read.
const maxResponseBytes = 10 << 20

// RequestIDHeader carries the per-request id that is also written to the log.
const RequestIDHeader = "X-Request-ID"

// HTTPGateway talks to the assistant service's JSON API.
type HTTPGateway struct {
	baseURL string
	client  *http.Client
}

// NewHTTPGateway creates a gateway for baseURL (e.g. "http://localhost:5000/api").
// A zero timeout leaves requests bounded only by their context.
func NewHTTPGateway(baseURL string, timeout time.Duration) *HTTPGateway {
	return &HTTPGateway{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// SetHTTPClient replaces the underlying client (for testing).
func (g *HTTPGateway) SetHTTPClient(c *http.Client) {
	g.client = c
}

// BaseURL returns the API root the gateway talks to.
func (g *HTTPGateway) BaseURL() string {
	return g.baseURL
}

// ListHistory implements Gateway.
func (g *HTTPGateway) ListHistory(ctx context.Context) ([]chat.HistoryEntry, error) {
	req, err := g.newRequest(ctx, opListHistory, http.MethodGet, "/chat_history", nil)
	if err != nil {
		return nil, err
	}

	var entries []chat.HistoryEntry
	if err := g.do(req, opListHistory, &entries); err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []chat.HistoryEntry{}
	}
	return entries, nil
}

// CreateSession implements Gateway.
func (g *HTTPGateway) CreateSession(ctx context.Context) (*SessionPayload, error) {
	req, err := g.newRequest(ctx, opCreateSession, http.MethodPost, "/new_chat", nil)
	if err != nil {
		return nil, err
	}

	var payload SessionPayload
	if err := g.do(req, opCreateSession, &payload); err != nil {
		return nil, err
	}
	if payload.SessionID == "" {
		return nil, perrors.MalformedResponse(opCreateSession, "response has no sessionId")
	}
	return &payload, nil
}

// FetchSession implements Gateway.
func (g *HTTPGateway) FetchSession(ctx context.Context, id string) (*SessionPayload, error) {
	req, err := g.newRequest(ctx, opFetchSession, http.MethodGet, "/chat_session/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}

	var payload SessionPayload
	if err := g.do(req, opFetchSession, &payload); err != nil {
		var respErr *ResponseError
		if errors.As(err, &respErr) && respErr.Status == http.StatusNotFound {
			return nil, perrors.SessionNotFound(opFetchSession, id, err)
		}
		return nil, err
	}
	if payload.SessionID == "" {
		return nil, perrors.MalformedResponse(opFetchSession, "response has no sessionId")
	}
	return &payload, nil
}

// sendResponse keeps "reply" raw so a missing or non-string value can be
// told apart from an empty string.
type sendResponse struct {
	Reply        json.RawMessage `json:"reply"`
	LanguageCode string          `json:"languageCode"`
}

// SendMessage implements Gateway.
func (g *HTTPGateway) SendMessage(ctx context.Context, sr SendRequest) (*SendReply, error) {
	body, contentType, err := encodeSendRequest(sr)
	if err != nil {
		return nil, perrors.E(opSendMessage, perrors.KindInvalid, "failed to build request", err)
	}

	req, err := g.newRequest(ctx, opSendMessage, http.MethodPost, "/chat", body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentType)

	var resp sendResponse
	if err := g.do(req, opSendMessage, &resp); err != nil {
		return nil, err
	}

	reply, ok := decodeReply(resp.Reply)
	if !ok {
		return nil, perrors.MalformedResponse(opSendMessage, "response has no string reply")
	}
	return &SendReply{Reply: reply, LanguageCode: resp.LanguageCode}, nil
}

func decodeReply(raw json.RawMessage) (string, bool) {
	if len(raw) == 0 {
		return "", false
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return "", false
	}
	// null decodes to nil, numbers and objects to other types
	s, ok := v.(string)
	return s, ok
}

// quoteEscaper escapes a form-data parameter the way mime/multipart does.
var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// encodeSendRequest picks the wire shape: JSON for text, multipart for files.
func encodeSendRequest(sr SendRequest) (io.Reader, string, error) {
	if !sr.IsMultipart() {
		data, err := json.Marshal(map[string]string{
			"sessionId": sr.SessionID,
			"language":  sr.Language,
			"mode":      string(sr.Mode),
			"message":   sr.Message,
		})
		if err != nil {
			return nil, "", err
		}
		return bytes.NewReader(data), "application/json", nil
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	contentType := sr.File.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, quoteEscaper.Replace(sr.File.Name)))
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(sr.File.Data); err != nil {
		return nil, "", err
	}

	fields := [][2]string{
		{"sessionId", sr.SessionID},
		{"language", sr.Language},
		{"mode", string(sr.Mode)},
		{"message", sr.Message},
	}
	for _, f := range fields {
		if err := w.WriteField(f[0], f[1]); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

func (g *HTTPGateway) newRequest(ctx context.Context, op perrors.Op, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, body)
	if err != nil {
		return nil, perrors.E(op, perrors.KindInvalid, "failed to build request", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, uuid.NewString())
	return req, nil
}

// errorBody is the shape the service uses for failures.
type errorBody struct {
	Error string `json:"error"`
	Reply string `json:"reply"`
}

// do sends req and decodes a 2xx JSON body into out. Transport failures are
// KindNetwork, non-2xx statuses KindBackend (wrapping *ResponseError) and
// undecodable bodies KindMalformed.
func (g *HTTPGateway) do(req *http.Request, op perrors.Op, out any) error {
	log := logger.WithComponent("gateway").With(
		"op", string(op),
		"requestID", req.Header.Get(RequestIDHeader),
	)
	start := time.Now()
	log.Debug("request", "method", req.Method, "url", req.URL.String())

	resp, err := g.client.Do(req)
	if err != nil {
		log.Warn("no response", "error", err, "elapsed", time.Since(start))
		return perrors.NetworkUnreachable(op, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		log.Warn("response body read failed", "status", resp.StatusCode, "error", err)
		return perrors.NetworkUnreachable(op, err)
	}

	log.Debug("response", "status", resp.StatusCode, "bytes", len(data), "elapsed", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respErr := &ResponseError{Status: resp.StatusCode}
		var body errorBody
		if json.Unmarshal(data, &body) == nil {
			respErr.Reply = body.Reply
			respErr.Message = body.Error
		}
		log.Warn("request rejected", "status", resp.StatusCode, "error", respErr.Message)
		return perrors.BackendRejected(op, resp.StatusCode, respErr)
	}

	if err := json.Unmarshal(data, out); err != nil {
		log.Warn("undecodable response", "error", err)
		return perrors.E(op, perrors.KindMalformed, "failed to decode response", err)
	}
	return nil
}
