// Package clipboard copies replies to, and pastes images from, the system clipboard.
package clipboard

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"sync"
	"time"

	"golang.design/x/clipboard"

	"github.com/zhubert/parley/internal/chat"
	"github.com/zhubert/parley/internal/logger"
)

// MaxImageSize is the largest pasted image accepted as an attachment.
const MaxImageSize = 10 << 20

// backend is the subset of golang.design/x/clipboard the package uses.
type backend interface {
	Init() error
	Read(clipboard.Format) []byte
	Write(clipboard.Format, []byte)
}

type systemClipboard struct{}

func (systemClipboard) Init() error                        { return clipboard.Init() }
func (systemClipboard) Read(f clipboard.Format) []byte     { return clipboard.Read(f) }
func (systemClipboard) Write(f clipboard.Format, b []byte) { clipboard.Write(f, b) }

var (
	mu          sync.Mutex
	impl        backend = systemClipboard{}
	initialized bool
)

// Init initializes the clipboard. It is safe to call multiple times.
func Init() error {
	mu.Lock()
	defer mu.Unlock()
	return initLocked()
}

func initLocked() error {
	if initialized {
		return nil
	}
	if err := impl.Init(); err != nil {
		logger.WithComponent("clipboard").Warn("failed to initialize", "error", err)
		return fmt.Errorf("failed to initialize clipboard: %w", err)
	}
	initialized = true
	return nil
}

// WriteText writes text to the clipboard.
func WriteText(text string) error {
	mu.Lock()
	defer mu.Unlock()
	if err := initLocked(); err != nil {
		return err
	}
	impl.Write(clipboard.FmtText, []byte(text))
	logger.WithComponent("clipboard").Debug("wrote text", "bytes", len(text))
	return nil
}

// ReadImage returns the clipboard image as a PNG attachment, or nil when the
// clipboard holds no image.
func ReadImage(now time.Time) (*chat.Attachment, error) {
	mu.Lock()
	defer mu.Unlock()
	if err := initLocked(); err != nil {
		return nil, err
	}

	log := logger.WithComponent("clipboard")
	raw := impl.Read(clipboard.FmtImage)
	if len(raw) == 0 {
		log.Debug("no image data found")
		return nil, nil
	}

	img, format, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to decode clipboard image: %w", err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode image as PNG: %w", err)
	}
	if buf.Len() > MaxImageSize {
		return nil, fmt.Errorf("image too large: %d bytes (max %d)", buf.Len(), MaxImageSize)
	}

	b := img.Bounds()
	log.Debug("read image", "format", format, "width", b.Dx(), "height", b.Dy(), "bytes", buf.Len())

	return &chat.Attachment{
		Name:        "clipboard-" + now.Format("20060102-150405") + ".png",
		ContentType: "image/png",
		Data:        buf.Bytes(),
	}, nil
}
