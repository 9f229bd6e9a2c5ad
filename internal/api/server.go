// Package api exposes quiz sessions over HTTP. Every route except /healthz
// requires a bearer token whose subject names the learner.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/abhisek/vocabquiz/internal/bank"
	"github.com/abhisek/vocabquiz/internal/mastery"
	"github.com/abhisek/vocabquiz/internal/session"
	"github.com/abhisek/vocabquiz/internal/store"
)

// Deps are the collaborators behind the HTTP surface.
type Deps struct {
	Bank       *bank.Bank
	Attempts   store.AttemptRepo
	Mastery    *mastery.Service
	Auth       *Authenticator
	NewMachine func(owner string) *session.Machine
	Logger     *zap.Logger
}

// Options tune the router.
type Options struct {
	CORSOrigins    []string
	RequestTimeout time.Duration
}

// Server is the HTTP handler for the quiz API.
type Server struct {
	router   chi.Router
	bank     *bank.Bank
	attempts store.AttemptRepo
	mastery  *mastery.Service
	sessions *Registry
	log      *zap.Logger
}

// NewServer wires routes and middleware.
func NewServer(deps Deps, opts Options) *Server {
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{
		bank:     deps.Bank,
		attempts: deps.Attempts,
		mastery:  deps.Mastery,
		sessions: NewRegistry(deps.NewMachine),
		log:      log,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, requestLogger(log), middleware.Recoverer)
	if opts.RequestTimeout > 0 {
		r.Use(middleware.Timeout(opts.RequestTimeout))
	}
	if len(opts.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   opts.CORSOrigins,
			AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Authorization", "Content-Type"},
			ExposedHeaders:   []string{"Content-Length"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Group(func(pr chi.Router) {
		pr.Use(deps.Auth.Middleware)

		pr.Get("/lessons", s.handleLessons)

		pr.Route("/session", func(sr chi.Router) {
			sr.Get("/", s.handleSession)
			sr.Post("/start", s.handleStart)
			sr.Post("/resume/{attemptID}", s.handleResume)
			sr.Post("/answer", s.handleAnswer)
			sr.Post("/advance", s.handleAdvance)
			sr.Post("/draft", s.handleDraft)
			sr.Post("/restart", s.handleRestart)
			sr.Post("/abandon", s.handleAbandon)
			sr.Post("/retry", s.handleRetry)
		})

		pr.Route("/attempts", func(ar chi.Router) {
			ar.Get("/", s.handleListAttempts)
			ar.Delete("/{attemptID}", s.handleDeleteAttempt)
		})
	})

	s.router = r
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// requestLogger logs one line per request with zap.
func requestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				log.Info("http request",
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Int("status", ww.Status()),
					zap.Int("bytes", ww.BytesWritten()),
					zap.Duration("duration", time.Since(start)),
					zap.String("request_id", middleware.GetReqID(r.Context())))
			}()
			next.ServeHTTP(ww, r)
		})
	}
}
