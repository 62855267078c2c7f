package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mockmate/mockmate/pkg/core"
	"github.com/mockmate/mockmate/pkg/gateway/auth"
	"github.com/mockmate/mockmate/pkg/gateway/config"
	"github.com/mockmate/mockmate/pkg/gateway/mw"
	"github.com/mockmate/mockmate/pkg/interview"
	"github.com/mockmate/mockmate/pkg/voice"
)

// VoiceHandler upgrades GET /v1/interviews/{id}/voice to a websocket that
// drives one voice capture machine per connection. Binary frames carry audio
// while recording; text frames carry JSON control messages. A submit feeds
// the last transcript into the interview engine and returns the next
// question over the socket.
type VoiceHandler struct {
	Engine      *interview.Engine
	Transcriber voice.Transcriber
	Config      config.Config
	Logger      *slog.Logger
}

type voiceClientMessage struct {
	Type    string `json:"type"`
	Granted bool   `json:"granted,omitempty"`
	Text    string `json:"text,omitempty"`
}

type voiceServerMessage struct {
	Type      string `json:"type"`
	Phase     string `json:"phase,omitempty"`
	Text      string `json:"text,omitempty"`
	MessageID string `json:"message_id,omitempty"`
	Closing   bool   `json:"closing,omitempty"`
	Error     string `json:"error,omitempty"`
}

func (h VoiceHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	reqID, _ := mw.RequestIDFrom(r.Context())
	if r.Method != http.MethodGet {
		writeError(w, reqID, core.NewInvalidRequestError("method not allowed"), http.StatusMethodNotAllowed)
		return
	}
	owner := auth.OwnerFrom(r.Context())
	if owner == "" {
		writeErrorFrom(w, reqID, core.NewAuthenticationError("missing identity"))
		return
	}
	if h.Transcriber == nil {
		writeErrorFrom(w, reqID, core.NewInvalidRequestError("voice capture is not configured"))
		return
	}

	interviewID := r.PathValue("id")
	if _, err := h.Engine.GetSession(r.Context(), owner, interviewID); err != nil {
		writeErrorFrom(w, reqID, err)
		return
	}

	upgrader := websocket.Upgrader{
		CheckOrigin: func(req *http.Request) bool { return h.originAllowed(req) },
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	if h.Config.VoiceMaxFrameBytes > 0 {
		conn.SetReadLimit(h.Config.VoiceMaxFrameBytes)
	}

	recorder := voice.NewRecorder(voice.NewBufferCapturer(
		h.Transcriber, "audio/webm", h.Config.VoiceMaxAudioBytes, nil,
	))
	defer recorder.Close()

	for {
		messageType, data, err := conn.ReadMessage()
		if err != nil {
			return
		}

		switch messageType {
		case websocket.BinaryMessage:
			if err := recorder.Write(data); err != nil {
				h.send(conn, voiceServerMessage{Type: "error", Error: errorText(err)})
			}
		case websocket.TextMessage:
			var msg voiceClientMessage
			if err := json.Unmarshal(data, &msg); err != nil {
				h.send(conn, voiceServerMessage{Type: "error", Error: "invalid control frame"})
				continue
			}
			if done := h.handleControl(r.Context(), conn, recorder, owner, interviewID, msg); done {
				return
			}
		}
	}
}

// handleControl processes one control frame. It returns true when the
// connection should close.
func (h VoiceHandler) handleControl(ctx context.Context, conn *websocket.Conn, recorder *voice.Recorder, owner, interviewID string, msg voiceClientMessage) bool {
	switch msg.Type {
	case "start":
		err := recorder.Start(ctx)
		switch {
		case err == nil:
		case errors.Is(err, voice.ErrPermissionRequired):
		default:
			h.send(conn, voiceServerMessage{Type: "error", Error: errorText(err)})
			return false
		}
		h.sendPhase(conn, recorder)

	case "permission":
		if err := recorder.SetPermission(msg.Granted); err != nil {
			h.send(conn, voiceServerMessage{Type: "error", Error: errorText(err)})
		}
		h.sendPhase(conn, recorder)

	case "stop":
		transcript, err := recorder.Stop(ctx)
		if err != nil {
			h.send(conn, voiceServerMessage{Type: "error", Error: errorText(err)})
			h.sendPhase(conn, recorder)
			return false
		}
		h.send(conn, voiceServerMessage{Type: "transcript", Text: transcript})
		h.sendPhase(conn, recorder)

	case "submit":
		answer := strings.TrimSpace(msg.Text)
		if answer == "" {
			answer = recorder.LastTranscript()
		}
		question, err := h.Engine.SubmitAnswer(ctx, owner, interviewID, answer)
		if err != nil {
			h.send(conn, voiceServerMessage{Type: "error", Error: errorText(err)})
			return false
		}
		h.send(conn, voiceServerMessage{
			Type:      "question",
			MessageID: question.ID,
			Text:      question.Content,
			Closing:   question.Content == interview.ClosingRemark,
		})

	case "close":
		return true

	default:
		h.send(conn, voiceServerMessage{Type: "error", Error: "unknown control frame"})
	}
	return false
}

func (h VoiceHandler) sendPhase(conn *websocket.Conn, recorder *voice.Recorder) {
	h.send(conn, voiceServerMessage{Type: "state", Phase: string(recorder.Phase())})
}

func (h VoiceHandler) send(conn *websocket.Conn, msg voiceServerMessage) {
	if h.Config.VoiceWriteTimeout > 0 {
		_ = conn.SetWriteDeadline(time.Now().Add(h.Config.VoiceWriteTimeout))
	}
	if err := conn.WriteJSON(msg); err != nil && h.Logger != nil {
		h.Logger.Warn("voice write failed", "error", err)
	}
}

func (h VoiceHandler) originAllowed(r *http.Request) bool {
	origin := strings.TrimSpace(r.Header.Get("Origin"))
	if origin == "" {
		return true
	}
	if len(h.Config.CORSAllowedOrigins) == 0 {
		return false
	}
	_, ok := h.Config.CORSAllowedOrigins[origin]
	return ok
}

func errorText(err error) string {
	var coreErr *core.Error
	if errors.As(err, &coreErr) {
		return coreErr.Message
	}
	return "internal error"
}
