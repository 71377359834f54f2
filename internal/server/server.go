// Package server exposes the engine over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/spigell/match-advisor/internal/ai"
	"github.com/spigell/match-advisor/internal/jeevansathi"
)

const (
	DefaultListen  = ":5000"
	DefaultPrefix  = "/api"
	DefaultTimeout = 30 * time.Second

	shutdownTimeout = 10 * time.Second
)

// Config holds the HTTP settings. Timeout bounds upstream source fetches and
// AITimeout bounds generator calls.
type Config struct {
	Listen        string
	Prefix        string
	Timeout       time.Duration
	AITimeout     time.Duration
	AllowedOrigin string
}

// Deps are the collaborators the handlers call into.
type Deps struct {
	Analyzer    *ai.Analyzer
	Source      jeevansathi.Source
	ExcludeFile string
	Logger      *zap.Logger
	Now         func() time.Time
}

type Server struct {
	cfg         Config
	analyzer    *ai.Analyzer
	source      jeevansathi.Source
	excludeFile string
	logger      *zap.Logger
	now         func() time.Time
	handler     http.Handler
}

func New(cfg Config, deps Deps) *Server {
	if cfg.Listen == "" {
		cfg.Listen = DefaultListen
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.AITimeout <= 0 {
		cfg.AITimeout = DefaultTimeout
	}
	if cfg.AllowedOrigin == "" {
		cfg.AllowedOrigin = "*"
	}
	cfg.Prefix = "/" + strings.Trim(strings.TrimSpace(cfg.Prefix), "/")

	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}

	s := &Server{
		cfg:         cfg,
		analyzer:    deps.Analyzer,
		source:      deps.Source,
		excludeFile: deps.ExcludeFile,
		logger:      deps.Logger,
		now:         deps.Now,
	}

	s.handler = cors(cfg.AllowedOrigin, s.routes())

	return s
}

// Handler returns the fully wired HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) routes() *mux.Router {
	router := mux.NewRouter()

	router.HandleFunc("/health", s.health).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	api := router
	if s.cfg.Prefix != "/" {
		api = router.PathPrefix(s.cfg.Prefix).Subrouter()
	}

	api.HandleFunc("/ai/analyze-profile", s.analyzeProfile).Methods(http.MethodPost)
	api.HandleFunc("/ai/recommend-matches", s.recommendMatches).Methods(http.MethodPost)
	api.HandleFunc("/ai/set-requirements", s.setRequirements).Methods(http.MethodPost)

	api.HandleFunc("/profiles/profiles", s.listProfiles).Methods(http.MethodGet)
	api.HandleFunc("/profiles/compatibility", s.compatibility).Methods(http.MethodPost)
	api.HandleFunc("/profiles/transform", s.transform).Methods(http.MethodPost)
	api.HandleFunc("/profiles/evaluate", s.evaluate).Methods(http.MethodPost)

	router.Use(s.requestID, s.requestLogging)

	return router
}

// Run serves until ctx is cancelled and then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              s.cfg.Listen,
		Handler:           s.handler,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      max(s.cfg.Timeout, s.cfg.AITimeout) + 15*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting http server",
			zap.String("listen", s.cfg.Listen),
			zap.String("prefix", s.cfg.Prefix),
		)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("serve http: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down http server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}

	return nil
}
