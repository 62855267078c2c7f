package voice

import (
	"bytes"
	"context"
	"sync"

	"github.com/mockmate/mockmate/pkg/core"
)

// Transcriber is the external speech recognition capability.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error)
}

// BufferCapturer implements Capturer by buffering audio in memory and handing
// the complete recording to a Transcriber when the capture stops.
type BufferCapturer struct {
	transcriber Transcriber
	mimeType    string
	maxBytes    int64
	permission  func(ctx context.Context) error
}

// NewBufferCapturer creates a capturer. requestPermission may be nil when the
// surface has no permission prompt of its own.
func NewBufferCapturer(transcriber Transcriber, mimeType string, maxBytes int64, requestPermission func(ctx context.Context) error) *BufferCapturer {
	return &BufferCapturer{
		transcriber: transcriber,
		mimeType:    mimeType,
		maxBytes:    maxBytes,
		permission:  requestPermission,
	}
}

var _ Capturer = (*BufferCapturer)(nil)

func (c *BufferCapturer) RequestPermission(ctx context.Context) error {
	if c.permission == nil {
		return nil
	}
	return c.permission(ctx)
}

func (c *BufferCapturer) Start(ctx context.Context) (Handle, error) {
	return &bufferHandle{
		transcriber: c.transcriber,
		mimeType:    c.mimeType,
		maxBytes:    c.maxBytes,
	}, nil
}

type bufferHandle struct {
	transcriber Transcriber
	mimeType    string
	maxBytes    int64

	mu     sync.Mutex
	buf    bytes.Buffer
	closed bool
}

func (h *bufferHandle) Write(p []byte) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return core.NewInvalidRequestError("capture is closed")
	}
	if h.maxBytes > 0 && int64(h.buf.Len())+int64(len(p)) > h.maxBytes {
		return core.NewInvalidRequestError("recording exceeds the audio size limit")
	}
	_, err := h.buf.Write(p)
	return err
}

func (h *bufferHandle) Transcript(ctx context.Context) (string, error) {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return "", core.NewInvalidRequestError("capture is closed")
	}
	h.closed = true
	audio := append([]byte(nil), h.buf.Bytes()...)
	h.buf.Reset()
	h.mu.Unlock()

	return h.transcriber.Transcribe(ctx, audio, h.mimeType)
}

func (h *bufferHandle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	h.buf.Reset()
	return nil
}
