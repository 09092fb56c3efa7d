// Package api exposes the HTTP interface for the directory service.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/linkboard/linkboard/internal/directory"
	"github.com/linkboard/linkboard/internal/metrics"
)

// Server wires HTTP handlers to the directory service.
type Server struct {
	router    chi.Router
	svc       *directory.Service
	extractor directory.Extractor
	authn     directory.Authenticator
	logger    *zap.Logger
}

// NewServer constructs a Server with middleware and routes.
func NewServer(
	svc *directory.Service,
	extractor directory.Extractor,
	authn directory.Authenticator,
	logger *zap.Logger,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	metrics.Init()

	s := &Server{
		svc:       svc,
		extractor: extractor,
		authn:     authn,
		logger:    logger,
	}

	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoverMiddleware)
	r.Use(timeoutMiddleware(60 * time.Second))
	r.Use(metrics.Middleware)
	r.Use(s.identityMiddleware)

	r.Get("/healthz", s.healthz)
	r.Get("/readyz", s.readyz)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Post("/metadata", s.previewMetadata)
		r.Get("/stats", s.stats)
		r.Route("/links", func(r chi.Router) {
			r.Post("/", s.submitLink)
			r.Get("/", s.listLinks)
			r.Get("/featured", s.featuredLinks)
			r.Route("/{link_id}", func(r chi.Router) {
				r.Patch("/status", s.transitionLink)
				r.Delete("/", s.deleteLink)
				r.Post("/view", s.recordView)
				r.Post("/click", s.recordClick)
			})
		})
		r.Route("/categories", func(r chi.Router) {
			r.Get("/", s.listCategories)
			r.Post("/", s.createCategory)
			r.Route("/{category_id}", func(r chi.Router) {
				r.Put("/", s.updateCategory)
				r.Delete("/", s.deleteCategory)
			})
		})
	})

	s.router = r
	return s
}

// Handler returns the router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) readyz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

type identityKey struct{}

// identityMiddleware resolves the bearer token, when present, into a caller
// identity. Requests without identity proceed anonymously; handlers that
// need a caller check for one themselves.
func (s *Server) identityMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}
		user, err := s.authn.Identify(r.Context(), token)
		if err != nil {
			if errors.Is(err, directory.ErrNoIdentity) {
				writeError(w, http.StatusUnauthorized, "invalid token")
				return
			}
			writeError(w, http.StatusInternalServerError, "identity lookup failed")
			return
		}
		ctx := context.WithValue(r.Context(), identityKey{}, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// caller returns the identified user, or a zero User for anonymous requests.
func caller(r *http.Request) (directory.User, bool) {
	user, ok := r.Context().Value(identityKey{}).(directory.User)
	return user, ok
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if after, found := strings.CutPrefix(header, "Bearer "); found {
		return after
	}
	return r.Header.Get("X-API-Token")
}

type requestIDKey struct{}

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := uuid.NewString()
		ctx := context.WithValue(r.Context(), requestIDKey{}, reqID)
		w.Header().Set("X-Request-ID", reqID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(ww, r)
		s.logger.Info("request completed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.status),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
	})
}

func (s *Server) recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Error("panic recovered", zap.Any("error", rec))
				writeError(w, http.StatusInternalServerError, "internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func timeoutMiddleware(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, d, "request timed out")
	}
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

// statusForError maps the typed error taxonomy onto transport status codes.
// This is the single place that mapping lives; error message contents are
// never inspected.
func statusForError(err error) int {
	var validation *directory.ValidationError
	var fetch *directory.FetchError
	switch {
	case errors.As(err, &validation):
		return http.StatusBadRequest
	case errors.Is(err, directory.ErrNoIdentity):
		return http.StatusUnauthorized
	case errors.Is(err, directory.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, directory.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, directory.ErrCategoryInUse):
		return http.StatusConflict
	case errors.As(err, &fetch):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// userMessage strips wrapping context from domain errors so clients see the
// taxonomy message, not internal call chains.
func userMessage(err error) string {
	var validation *directory.ValidationError
	if errors.As(err, &validation) {
		return validation.Error()
	}
	var fetch *directory.FetchError
	if errors.As(err, &fetch) {
		return fetch.Error()
	}
	for _, sentinel := range []error{
		directory.ErrNoIdentity,
		directory.ErrUnauthorized,
		directory.ErrNotFound,
		directory.ErrCategoryInUse,
	} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return "internal server error"
}

func (s *Server) writeDomainError(w http.ResponseWriter, err error) {
	status := statusForError(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", zap.Error(err))
	}
	writeError(w, status, userMessage(err))
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		zap.L().Error("write JSON failed", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
