package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/mockmate/mockmate/pkg/core"
	"github.com/mockmate/mockmate/pkg/gateway/auth"
	"github.com/mockmate/mockmate/pkg/gateway/mw"
	"github.com/mockmate/mockmate/pkg/interview"
)

// InterviewHandler handles POST /v1/interview: an empty body creates a new
// interview; a body carrying interviewId submits an answer.
type InterviewHandler struct {
	Engine       *interview.Engine
	Logger       *slog.Logger
	MaxBodyBytes int64
}

type interviewRequest struct {
	InterviewID string `json:"interviewId"`
	Answer      string `json:"answer"`
}

type createResponse struct {
	InterviewID string              `json:"interviewId"`
	Messages    []interview.Message `json:"messages"`
}

type submitResponse struct {
	MessageID string `json:"messageId"`
	Question  string `json:"question"`
	Closing   bool   `json:"closing"`
}

func (h InterviewHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	reqID, _ := mw.RequestIDFrom(r.Context())
	if r.Method != http.MethodPost {
		writeError(w, reqID, core.NewInvalidRequestError("method not allowed"), http.StatusMethodNotAllowed)
		return
	}
	owner := auth.OwnerFrom(r.Context())
	if owner == "" {
		writeErrorFrom(w, reqID, core.NewAuthenticationError("missing identity"))
		return
	}

	var req interviewRequest
	body := io.LimitReader(r.Body, h.maxBody())
	if err := json.NewDecoder(body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeErrorFrom(w, reqID, core.NewInvalidRequestError("invalid json body"))
		return
	}

	if strings.TrimSpace(req.InterviewID) == "" {
		h.create(w, r, reqID, owner)
		return
	}
	h.submit(w, r, reqID, owner, req)
}

func (h InterviewHandler) create(w http.ResponseWriter, r *http.Request, reqID, owner string) {
	session, err := h.Engine.CreateSession(r.Context(), owner)
	if err != nil {
		writeErrorFrom(w, reqID, err)
		return
	}
	writeJSON(w, http.StatusOK, createResponse{
		InterviewID: session.ID,
		Messages:    session.Messages,
	})
}

func (h InterviewHandler) submit(w http.ResponseWriter, r *http.Request, reqID, owner string, req interviewRequest) {
	question, err := h.Engine.SubmitAnswer(r.Context(), owner, req.InterviewID, req.Answer)
	if err != nil {
		writeErrorFrom(w, reqID, err)
		return
	}
	writeJSON(w, http.StatusOK, submitResponse{
		MessageID: question.ID,
		Question:  question.Content,
		Closing:   question.Content == interview.ClosingRemark,
	})
}

func (h InterviewHandler) maxBody() int64 {
	if h.MaxBodyBytes > 0 {
		return h.MaxBodyBytes
	}
	return 1 << 20
}

// ListHandler handles GET /v1/interviews.
type ListHandler struct {
	Engine *interview.Engine
}

func (h ListHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
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

	sessions, err := h.Engine.ListSessions(r.Context(), owner)
	if err != nil {
		writeErrorFrom(w, reqID, err)
		return
	}
	if sessions == nil {
		sessions = []*interview.Session{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"interviews": sessions})
}

// GetHandler handles GET /v1/interviews/{id}.
type GetHandler struct {
	Engine *interview.Engine
}

func (h GetHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
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
	id := r.PathValue("id")
	if strings.TrimSpace(id) == "" {
		writeErrorFrom(w, reqID, core.NewNotFoundError("interview not found"))
		return
	}

	session, err := h.Engine.GetSession(r.Context(), owner, id)
	if err != nil {
		writeErrorFrom(w, reqID, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"interview": session})
}
