// Package voice implements the voice capture state machine that turns a
// recorded answer into text for the interview engine. The machine coordinates
// microphone permission, recording, and transcription as mutually exclusive
// phases; the actual audio and recognition primitives are behind the Capturer
// collaborator.
package voice

import (
	"context"
	"sync"
	"time"

	"github.com/mockmate/mockmate/pkg/core"
)

// Phase is the capture machine's current state.
type Phase string

const (
	PhaseIdle               Phase = "idle"
	PhaseAwaitingPermission Phase = "awaiting_permission"
	PhaseRecording          Phase = "recording"
	PhaseTranscribing       Phase = "transcribing"
)

// Capturer is the external speech capture collaborator.
type Capturer interface {
	// RequestPermission initiates the permission prompt. The grant or denial
	// is delivered back through Recorder.SetPermission.
	RequestPermission(ctx context.Context) error

	// Start acquires the recording and recognition resources together.
	Start(ctx context.Context) (Handle, error)
}

// Handle is one active capture. The recording resource and the transcription
// resource are acquired together and must always be released together, on
// every exit path.
type Handle interface {
	// Write feeds captured audio.
	Write(p []byte) error

	// Transcript stops the capture and returns the recognized text. It
	// releases the underlying resources.
	Transcript(ctx context.Context) (string, error)

	// Close releases the underlying resources without producing a transcript.
	Close() error
}

var (
	// ErrPermissionRequired reports that Start moved the machine to the
	// awaiting-permission phase instead of recording. Granting permission
	// does not auto-start recording; the caller starts again.
	ErrPermissionRequired = core.NewInvalidRequestError("microphone permission required")

	// ErrCaptureActive reports a Start while already recording. Only one
	// capture may be active per surface.
	ErrCaptureActive = core.NewInvalidRequestError("capture already active")

	// ErrPermissionPending reports a Start while a permission prompt is
	// outstanding.
	ErrPermissionPending = core.NewInvalidRequestError("permission request pending")

	// ErrTranscribing reports a call that cannot proceed while a transcript
	// is being produced.
	ErrTranscribing = core.NewInvalidRequestError("transcription in progress")

	// ErrPermissionDenied reports a denied microphone permission.
	ErrPermissionDenied = core.NewInvalidRequestError("microphone permission denied")
)

// Recorder is the voice capture state machine. One instance serves one
// capture surface; it is not persisted and does not belong to a session.
type Recorder struct {
	capturer Capturer

	mu         sync.Mutex
	phase      Phase
	granted    bool
	starting   bool
	handle     Handle
	startedAt  time.Time
	elapsed    time.Duration
	transcript string
	closed     bool
}

// NewRecorder creates an idle recorder over the given capture collaborator.
func NewRecorder(capturer Capturer) *Recorder {
	return &Recorder{
		capturer: capturer,
		phase:    PhaseIdle,
	}
}

// Phase returns the current phase.
func (r *Recorder) Phase() Phase {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.phase
}

// Elapsed returns how long the current or most recent recording ran.
func (r *Recorder) Elapsed() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.phase == PhaseRecording {
		return time.Since(r.startedAt)
	}
	return r.elapsed
}

// LastTranscript returns the most recent transcript, or empty.
func (r *Recorder) LastTranscript() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.transcript
}

// Start begins recording. Without permission it moves to awaiting-permission,
// kicks off the permission request, and returns ErrPermissionRequired; after
// the grant arrives the caller must call Start again.
func (r *Recorder) Start(ctx context.Context) error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return core.NewInvalidRequestError("capture surface is closed")
	}
	switch r.phase {
	case PhaseRecording:
		r.mu.Unlock()
		return ErrCaptureActive
	case PhaseAwaitingPermission:
		r.mu.Unlock()
		return ErrPermissionPending
	case PhaseTranscribing:
		r.mu.Unlock()
		return ErrTranscribing
	}
	if r.starting {
		r.mu.Unlock()
		return ErrCaptureActive
	}

	if !r.granted {
		r.phase = PhaseAwaitingPermission
		r.mu.Unlock()
		if err := r.capturer.RequestPermission(ctx); err != nil {
			r.mu.Lock()
			r.phase = PhaseIdle
			r.mu.Unlock()
			return err
		}
		return ErrPermissionRequired
	}

	// Claim the transition before releasing the lock so a concurrent Start
	// cannot acquire a second capture handle.
	r.starting = true
	r.mu.Unlock()

	handle, err := r.capturer.Start(ctx)

	r.mu.Lock()
	r.starting = false
	if err != nil {
		r.mu.Unlock()
		return err
	}
	if r.closed {
		r.mu.Unlock()
		_ = handle.Close()
		return core.NewInvalidRequestError("capture surface is closed")
	}
	r.handle = handle
	r.phase = PhaseRecording
	r.startedAt = time.Now()
	r.transcript = ""
	r.mu.Unlock()
	return nil
}

// SetPermission records the outcome of the permission prompt and returns the
// machine to idle. It reports ErrPermissionDenied when granted is false.
func (r *Recorder) SetPermission(granted bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.phase == PhaseAwaitingPermission {
		r.phase = PhaseIdle
	}
	r.granted = granted
	if !granted {
		return ErrPermissionDenied
	}
	return nil
}

// Write feeds audio into the active capture.
func (r *Recorder) Write(p []byte) error {
	r.mu.Lock()
	if r.phase != PhaseRecording {
		r.mu.Unlock()
		return core.NewInvalidRequestError("not recording")
	}
	handle := r.handle
	r.mu.Unlock()
	return handle.Write(p)
}

// Stop ends the capture and returns the transcript. Idempotent when idle; a
// stop while awaiting permission cancels the prompt. A capability error
// releases the resources, returns the machine to idle, and surfaces a
// recoverable error with no transcript.
func (r *Recorder) Stop(ctx context.Context) (string, error) {
	r.mu.Lock()
	switch r.phase {
	case PhaseIdle:
		r.mu.Unlock()
		return "", nil
	case PhaseAwaitingPermission:
		r.phase = PhaseIdle
		r.mu.Unlock()
		return "", nil
	case PhaseTranscribing:
		r.mu.Unlock()
		return "", ErrTranscribing
	}

	handle := r.handle
	r.handle = nil
	r.elapsed = time.Since(r.startedAt)
	r.phase = PhaseTranscribing
	r.mu.Unlock()

	transcript, err := handle.Transcript(ctx)

	r.mu.Lock()
	r.phase = PhaseIdle
	if err == nil {
		r.transcript = transcript
	}
	r.mu.Unlock()

	if err != nil {
		_ = handle.Close()
		return "", core.NewGenerationError("transcription failed", err)
	}
	return transcript, nil
}

// Close tears down the surface, releasing the capture resources whatever the
// current phase. Safe to call more than once.
func (r *Recorder) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	handle := r.handle
	r.handle = nil
	r.phase = PhaseIdle
	r.mu.Unlock()

	if handle != nil {
		return handle.Close()
	}
	return nil
}
