package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mockmate/mockmate/internal/dotenv"
	"github.com/mockmate/mockmate/pkg/gateway/config"
	gatewayserver "github.com/mockmate/mockmate/pkg/gateway/server"
	"github.com/mockmate/mockmate/pkg/generation/gemini"
	"github.com/mockmate/mockmate/pkg/interview"
	"github.com/mockmate/mockmate/pkg/storage/memory"
	"github.com/mockmate/mockmate/pkg/storage/postgres"
	"github.com/mockmate/mockmate/pkg/voice"
)

// storeHandle bundles a Store with its readiness check and teardown so the
// run loop does not care which backend is in use.
type storeHandle struct {
	store interview.Store
	check func() error
	close func()
}

type gatewayDeps struct {
	loadConfig   func() (config.Config, error)
	openStore    func(ctx context.Context, cfg config.Config, logger *slog.Logger) (storeHandle, error)
	newGemini    func(ctx context.Context, apiKey, model string) (*gemini.Client, error)
	signalNotify func(chan<- os.Signal, ...os.Signal)
	signalStop   func(chan<- os.Signal)
}

func defaultGatewayDeps() gatewayDeps {
	return gatewayDeps{
		loadConfig: config.LoadFromEnv,
		openStore:  openStore,
		newGemini:  gemini.New,
		signalNotify: func(c chan<- os.Signal, sig ...os.Signal) {
			signal.Notify(c, sig...)
		},
		signalStop: signal.Stop,
	}
}

func openStore(ctx context.Context, cfg config.Config, logger *slog.Logger) (storeHandle, error) {
	if cfg.DatabaseURL == "" {
		logger.Info("using in-memory store")
		return storeHandle{
			store: memory.New(),
			check: func() error { return nil },
			close: func() {},
		}, nil
	}

	pg, err := postgres.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return storeHandle{}, fmt.Errorf("open postgres store: %w", err)
	}
	logger.Info("using postgres store")
	return storeHandle{
		store: pg,
		check: func() error {
			pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()
			return pg.Ping(pingCtx)
		},
		close: pg.Close,
	}, nil
}

func buildHTTPServer(cfg config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		ReadTimeout:       cfg.ReadTimeout,
	}
}

func runGateway(ctx context.Context, logger *slog.Logger, deps gatewayDeps) error {
	if deps.loadConfig == nil {
		return errors.New("missing loadConfig dependency")
	}
	if deps.openStore == nil {
		return errors.New("missing openStore dependency")
	}
	if deps.signalNotify == nil || deps.signalStop == nil {
		return errors.New("missing signal dependency")
	}
	if logger == nil {
		logger = slog.Default()
	}

	cfg, err := deps.loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	handle, err := deps.openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer handle.close()

	var capability interview.Capability
	var transcriber voice.Transcriber
	if cfg.GeminiAPIKey != "" && deps.newGemini != nil {
		client, err := deps.newGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return fmt.Errorf("gemini client: %w", err)
		}
		capability = client
		transcriber = client
		logger.Info("question generation enabled", "model", cfg.GeminiModel)
	} else {
		logger.Info("question generation disabled, fallback bank only")
	}

	generator := interview.NewGenerator(capability, interview.NewSelector(), cfg.GenerationTimeout, logger)
	engine := interview.NewEngine(handle.store, generator, logger)

	gw := gatewayserver.New(cfg, logger, gatewayserver.Options{
		Engine:      engine,
		Transcriber: transcriber,
		CheckStore:  handle.check,
	})
	httpSrv := buildHTTPServer(cfg, gw.Handler())

	logger.Info("starting gateway", "addr", cfg.Addr, "auth_mode", cfg.AuthMode)

	listenErrCh := make(chan error, 1)
	go func() {
		err := httpSrv.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			listenErrCh <- err
			return
		}
		listenErrCh <- nil
	}()

	sigCh := make(chan os.Signal, 1)
	deps.signalNotify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer deps.signalStop(sigCh)

	select {
	case err := <-listenErrCh:
		if err != nil {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case sig := <-sigCh:
		logger.Info("shutdown signal received", "signal", sig.String())
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownGracePeriod)
	defer shutdownCancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}

	if err := <-listenErrCh; err != nil {
		return fmt.Errorf("serve: %w", err)
	}

	logger.Info("gateway stopped")
	return nil
}

func runMain(ctx context.Context, stderr io.Writer, deps gatewayDeps) int {
	if stderr == nil {
		stderr = os.Stderr
	}
	logger := slog.New(slog.NewTextHandler(stderr, nil))

	if err := dotenv.LoadFile(".env"); err != nil {
		fmt.Fprintf(stderr, "mockmate: %v\n", err)
		return 1
	}

	if err := runGateway(ctx, logger, deps); err != nil {
		fmt.Fprintf(stderr, "mockmate: %v\n", err)
		return 1
	}
	return 0
}

func main() {
	os.Exit(runMain(context.Background(), os.Stderr, defaultGatewayDeps()))
}
