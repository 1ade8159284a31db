package app

import (
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/zhubert/parley/internal/chat"
)

// MaxAttachmentSize is the largest file /file will send.
const MaxAttachmentSize = 25 << 20

// documentTypes covers extensions the platform mime tables often lack.
var documentTypes = map[string]string{
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".txt":  "text/plain",
	".md":   "text/plain",
}

// allowedDocumentTypes are the non-media content types the assistant accepts.
var allowedDocumentTypes = map[string]bool{
	"application/pdf":    true,
	"application/msword": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
	"text/plain": true,
}

// LoadAttachment reads path from disk into an attachment after checking its
// size and type.
func LoadAttachment(path string) (*chat.Attachment, error) {
	return readAttachment(path, os.ReadFile)
}

func (m *Model) loadAttachment(path string) (*chat.Attachment, error) {
	return readAttachment(path, m.readFile)
}

func readAttachment(path string, readFile func(string) ([]byte, error)) (*chat.Attachment, error) {
	path = expandHome(strings.Trim(path, `"'`))

	data, err := readFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("file not found: %s", path)
		}
		return nil, fmt.Errorf("cannot read %s: %v", filepath.Base(path), err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%s is empty", filepath.Base(path))
	}
	if len(data) > MaxAttachmentSize {
		return nil, fmt.Errorf("%s is too large (%s, max %s)", filepath.Base(path), humanSize(len(data)), humanSize(MaxAttachmentSize))
	}

	contentType := detectContentType(path, data)
	if !isAllowedContentType(contentType) {
		return nil, fmt.Errorf("unsupported file type %s", contentType)
	}

	return &chat.Attachment{
		Name:        filepath.Base(path),
		ContentType: contentType,
		Data:        data,
	}, nil
}

// detectContentType prefers the extension and falls back to sniffing.
func detectContentType(path string, data []byte) string {
	ext := strings.ToLower(filepath.Ext(path))
	if ct, ok := documentTypes[ext]; ok {
		return ct
	}
	if ct := mime.TypeByExtension(ext); ct != "" {
		if mediaType, _, err := mime.ParseMediaType(ct); err == nil {
			return mediaType
		}
	}
	mediaType, _, err := mime.ParseMediaType(http.DetectContentType(data))
	if err != nil {
		return "application/octet-stream"
	}
	return mediaType
}

func isAllowedContentType(ct string) bool {
	for _, prefix := range []string{"image/", "audio/", "video/"} {
		if strings.HasPrefix(ct, prefix) {
			return true
		}
	}
	return allowedDocumentTypes[ct]
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}

func humanSize(n int) string {
	return humanize.IBytes(uint64(n))
}
