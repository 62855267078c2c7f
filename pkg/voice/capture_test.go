package voice

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/mockmate/mockmate/pkg/core"
)

// fakeCapturer records calls and hands out fakeHandles. enterStart and gate,
// when set, let tests hold a Start call open mid-acquisition.
type fakeCapturer struct {
	permissionCalls int
	startCalls      int
	startErr        error
	handle          *fakeHandle

	enterStart chan struct{}
	gate       chan struct{}
}

func (c *fakeCapturer) RequestPermission(ctx context.Context) error {
	c.permissionCalls++
	return nil
}

func (c *fakeCapturer) Start(ctx context.Context) (Handle, error) {
	if c.enterStart != nil {
		c.enterStart <- struct{}{}
	}
	if c.gate != nil {
		<-c.gate
	}
	c.startCalls++
	if c.startErr != nil {
		return nil, c.startErr
	}
	c.handle = &fakeHandle{transcript: "hello world"}
	return c.handle, nil
}

type fakeHandle struct {
	buf           bytes.Buffer
	transcript    string
	transcriptErr error
	closed        bool
}

func (h *fakeHandle) Write(p []byte) error {
	_, err := h.buf.Write(p)
	return err
}

func (h *fakeHandle) Transcript(ctx context.Context) (string, error) {
	if h.transcriptErr != nil {
		return "", h.transcriptErr
	}
	return h.transcript, nil
}

func (h *fakeHandle) Close() error {
	h.closed = true
	return nil
}

func grantedRecorder(t *testing.T, cap *fakeCapturer) *Recorder {
	t.Helper()
	r := NewRecorder(cap)
	if err := r.Start(context.Background()); !errors.Is(err, ErrPermissionRequired) {
		t.Fatalf("first Start = %v, want ErrPermissionRequired", err)
	}
	if err := r.SetPermission(true); err != nil {
		t.Fatalf("SetPermission(true): %v", err)
	}
	return r
}

func TestStartRequiresPermissionOnce(t *testing.T) {
	t.Parallel()
	cap := &fakeCapturer{}
	r := grantedRecorder(t, cap)

	if cap.permissionCalls != 1 {
		t.Fatalf("permission requested %d times, want 1", cap.permissionCalls)
	}
	if got := r.Phase(); got != PhaseIdle {
		t.Fatalf("phase after grant = %q, want idle", got)
	}

	if err := r.Start(context.Background()); err != nil {
		t.Fatalf("Start after grant: %v", err)
	}
	if got := r.Phase(); got != PhaseRecording {
		t.Fatalf("phase = %q, want recording", got)
	}
	if cap.permissionCalls != 1 {
		t.Fatalf("grant was not remembered, %d permission calls", cap.permissionCalls)
	}
}

func TestConcurrentStartAcquiresOneCapture(t *testing.T) {
	t.Parallel()
	cap := &fakeCapturer{gate: make(chan struct{})}
	r := grantedRecorder(t, cap)

	errs := make(chan error, 2)
	for i := 0; i < 2; i++ {
		go func() { errs <- r.Start(context.Background()) }()
	}

	// One caller is held open inside the capturer; the other must be
	// rejected without acquiring a second handle.
	if err := <-errs; !errors.Is(err, ErrCaptureActive) {
		t.Fatalf("concurrent Start = %v, want ErrCaptureActive", err)
	}
	close(cap.gate)
	if err := <-errs; err != nil {
		t.Fatalf("winning Start: %v", err)
	}

	if cap.startCalls != 1 {
		t.Fatalf("capturer.Start called %d times, want 1", cap.startCalls)
	}
	if got := r.Phase(); got != PhaseRecording {
		t.Fatalf("phase = %q, want recording", got)
	}

	if err := r.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !cap.handle.closed {
		t.Fatalf("capture handle not released by Close")
	}
}

func TestCloseDuringStartReleasesHandle(t *testing.T) {
	t.Parallel()
	cap := &fakeCapturer{
		enterStart: make(chan struct{}),
		gate:       make(chan struct{}),
	}
	r := grantedRecorder(t, cap)

	done := make(chan error, 1)
	go func() { done <- r.Start(context.Background()) }()

	<-cap.enterStart
	if err := r.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	close(cap.gate)

	if err := <-done; err == nil {
		t.Fatalf("Start against a closed surface succeeded")
	}
	if !cap.handle.closed {
		t.Fatalf("late handle not released after Close")
	}
}

func TestStartWhileActive(t *testing.T) {
	t.Parallel()
	r := grantedRecorder(t, &fakeCapturer{})
	if err := r.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := r.Start(context.Background()); !errors.Is(err, ErrCaptureActive) {
		t.Fatalf("Start while recording = %v, want ErrCaptureActive", err)
	}
}

func TestStartWhilePermissionPending(t *testing.T) {
	t.Parallel()
	r := NewRecorder(&fakeCapturer{})
	if err := r.Start(context.Background()); !errors.Is(err, ErrPermissionRequired) {
		t.Fatalf("Start = %v, want ErrPermissionRequired", err)
	}
	if err := r.Start(context.Background()); !errors.Is(err, ErrPermissionPending) {
		t.Fatalf("Start while pending = %v, want ErrPermissionPending", err)
	}
}

func TestPermissionDenied(t *testing.T) {
	t.Parallel()
	cap := &fakeCapturer{}
	r := NewRecorder(cap)
	_ = r.Start(context.Background())

	if err := r.SetPermission(false); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("SetPermission(false) = %v, want ErrPermissionDenied", err)
	}
	if got := r.Phase(); got != PhaseIdle {
		t.Fatalf("phase after denial = %q, want idle", got)
	}

	// A later grant still works.
	_ = r.Start(context.Background())
	if err := r.SetPermission(true); err != nil {
		t.Fatalf("SetPermission(true): %v", err)
	}
	if err := r.Start(context.Background()); err != nil {
		t.Fatalf("Start after grant: %v", err)
	}
}

func TestStopProducesTranscript(t *testing.T) {
	t.Parallel()
	cap := &fakeCapturer{}
	r := grantedRecorder(t, cap)
	if err := r.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := r.Write([]byte("audio")); err != nil {
		t.Fatalf("Write: %v", err)
	}

	transcript, err := r.Stop(context.Background())
	if err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if transcript != "hello world" {
		t.Fatalf("transcript = %q", transcript)
	}
	if got := r.Phase(); got != PhaseIdle {
		t.Fatalf("phase after stop = %q, want idle", got)
	}
	if r.LastTranscript() != "hello world" {
		t.Fatalf("LastTranscript = %q", r.LastTranscript())
	}
}

func TestStopIsIdempotentWhenIdle(t *testing.T) {
	t.Parallel()
	r := NewRecorder(&fakeCapturer{})
	for i := 0; i < 2; i++ {
		transcript, err := r.Stop(context.Background())
		if err != nil || transcript != "" {
			t.Fatalf("Stop while idle = (%q, %v), want empty success", transcript, err)
		}
	}
}

func TestStopCancelsPendingPermission(t *testing.T) {
	t.Parallel()
	r := NewRecorder(&fakeCapturer{})
	_ = r.Start(context.Background())

	transcript, err := r.Stop(context.Background())
	if err != nil || transcript != "" {
		t.Fatalf("Stop while awaiting permission = (%q, %v)", transcript, err)
	}
	if got := r.Phase(); got != PhaseIdle {
		t.Fatalf("phase = %q, want idle", got)
	}
}

func TestStopTranscriptionFailureReleasesResources(t *testing.T) {
	t.Parallel()
	cap := &fakeCapturer{}
	r := grantedRecorder(t, cap)
	if err := r.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	cap.handle.transcriptErr = errors.New("recognizer offline")

	_, err := r.Stop(context.Background())
	var coreErr *core.Error
	if !errors.As(err, &coreErr) || coreErr.Type != core.ErrGeneration {
		t.Fatalf("Stop error = %v, want generation error", err)
	}
	if !cap.handle.closed {
		t.Fatalf("handle not released after transcription failure")
	}
	if got := r.Phase(); got != PhaseIdle {
		t.Fatalf("phase = %q, want idle", got)
	}

	// The surface stays usable.
	if err := r.Start(context.Background()); err != nil {
		t.Fatalf("Start after failure: %v", err)
	}
}

func TestWriteOutsideRecording(t *testing.T) {
	t.Parallel()
	r := NewRecorder(&fakeCapturer{})
	if err := r.Write([]byte("audio")); err == nil {
		t.Fatalf("Write while idle should fail")
	}
}

func TestCloseReleasesActiveCapture(t *testing.T) {
	t.Parallel()
	cap := &fakeCapturer{}
	r := grantedRecorder(t, cap)
	if err := r.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	if err := r.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !cap.handle.closed {
		t.Fatalf("handle not released on Close")
	}
	if err := r.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	if err := r.Start(context.Background()); err == nil {
		t.Fatalf("Start on a closed surface should fail")
	}
}
