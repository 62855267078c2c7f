package server

import (
	"log/slog"
	"net/http"

	"github.com/mockmate/mockmate/pkg/gateway/config"
	"github.com/mockmate/mockmate/pkg/gateway/handlers"
	"github.com/mockmate/mockmate/pkg/gateway/mw"
	"github.com/mockmate/mockmate/pkg/interview"
	"github.com/mockmate/mockmate/pkg/voice"
)

// Server is the interview gateway. It owns the route table and the
// middleware chain; the engine and the optional voice transcriber are
// injected by the caller.
type Server struct {
	cfg    config.Config
	logger *slog.Logger
	mux    *http.ServeMux

	engine      *interview.Engine
	transcriber voice.Transcriber
	checkStore  func() error
}

// Options carries the collaborators the server routes to. Transcriber and
// CheckStore may be nil.
type Options struct {
	Engine      *interview.Engine
	Transcriber voice.Transcriber
	CheckStore  func() error
}

func New(cfg config.Config, logger *slog.Logger, opts Options) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		cfg:         cfg,
		logger:      logger,
		mux:         http.NewServeMux(),
		engine:      opts.Engine,
		transcriber: opts.Transcriber,
		checkStore:  opts.CheckStore,
	}

	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.Handle("/healthz", handlers.HealthHandler{})
	s.mux.Handle("/readyz", handlers.ReadyHandler{CheckStore: s.checkStore})

	s.mux.Handle("/v1/interview", handlers.InterviewHandler{
		Engine:       s.engine,
		Logger:       s.logger,
		MaxBodyBytes: s.cfg.MaxBodyBytes,
	})
	s.mux.Handle("/v1/interviews", handlers.ListHandler{Engine: s.engine})
	s.mux.Handle("/v1/interviews/{id}", handlers.GetHandler{Engine: s.engine})
	s.mux.Handle("/v1/interviews/{id}/voice", handlers.VoiceHandler{
		Engine:      s.engine,
		Transcriber: s.transcriber,
		Config:      s.cfg,
		Logger:      s.logger,
	})
}

func (s *Server) Handler() http.Handler {
	var h http.Handler = s.mux
	h = mw.Auth(s.cfg, h)
	h = mw.CORS(s.cfg, h)
	h = mw.Recover(s.logger, h)
	h = mw.AccessLog(s.logger, h)
	h = mw.RequestID(h)
	return h
}
