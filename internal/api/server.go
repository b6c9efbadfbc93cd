package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"runtime/debug"
	"strconv"
	"time"

	"signalbot/internal/config"
	"signalbot/internal/metrics"
	"signalbot/internal/models"

	chi "github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// PostbackHandler обработчик событий партнёрской сети.
type PostbackHandler interface {
	Handle(ctx context.Context, params map[string]string) (*models.PostbackResult, error)
}

// Server принимает postback от партнёров и отдаёт health/metrics.
type Server struct {
	cfg      config.PostbackConfig
	postback PostbackHandler
	logger   *zerolog.Logger
	router   chi.Router
	server   *http.Server
	now      func() time.Time
}

func NewServer(cfg config.PostbackConfig, postback PostbackHandler, logger *zerolog.Logger) *Server {
	s := &Server{
		cfg:      cfg,
		postback: postback,
		logger:   logger,
		now:      time.Now,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(s.recoverer)

	r.Get("/health", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	limiter := newRateLimiter(cfg.RateLimit)
	r.Group(func(r chi.Router) {
		r.Use(limiter.Middleware)

		r.Get("/postback/pocketoption", s.handlePocketOption)
		r.Post("/postback/pocketoption", s.handlePocketOption)
		r.Get("/postback/toplink", s.handleTopLink)
		r.Post("/postback/toplink", s.handleTopLink)
		r.Get("/postback/{partner}", s.handleGenericPostback)
		r.Post("/postback/{partner}", s.handleGenericPostback)
	})

	notFound := func(w http.ResponseWriter, r *http.Request) {
		zerolog.Ctx(r.Context()).Warn().Str("method", r.Method).Str("path", r.URL.Path).Msg("Endpoint not found")
		writeError(w, http.StatusNotFound, "Endpoint not found")
	}
	r.NotFound(notFound)
	r.MethodNotAllowed(notFound)

	s.router = r
	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
	}

	return s
}

// Handler корневой http.Handler, удобен для httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Start() error {
	if s.server == nil {
		return fmt.Errorf("http server is not initialized")
	}
	s.logger.Info().Str("addr", s.server.Addr).Msg("Postback server listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// requestLogger кладёт логгер с request_id в контекст и пишет итог запроса.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		reqLogger := s.logger.With().Str("request_id", middleware.GetReqID(r.Context())).Logger()
		r = r.WithContext(reqLogger.WithContext(r.Context()))

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		endpoint := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			endpoint = rctx.RoutePattern()
		}
		metrics.IncHTTP(endpoint, strconv.Itoa(status))

		reqLogger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("remote", r.RemoteAddr).
			Int("status", status).
			Dur("duration", time.Since(start)).
			Msg("http request")
	})
}

func (s *Server) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rvr := recover(); rvr != nil {
				if rvr == http.ErrAbortHandler {
					panic(rvr)
				}
				zerolog.Ctx(r.Context()).Error().
					Interface("panic", rvr).
					Bytes("stack", debug.Stack()).
					Msg("Panic in http handler")
				writeError(w, http.StatusInternalServerError, "Internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}
