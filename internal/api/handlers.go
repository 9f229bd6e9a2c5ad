package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/abhisek/vocabquiz/internal/mastery"
	"github.com/abhisek/vocabquiz/internal/session"
	"github.com/abhisek/vocabquiz/internal/store"
)

type startRequest struct {
	Lessons []string `json:"lessons"`
}

type answerRequest struct {
	Choice string `json:"choice"`
}

func (s *Server) learner(w http.ResponseWriter, r *http.Request) (string, bool) {
	l, ok := LearnerFrom(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "no learner")
	}
	return l, ok
}

// act runs op against the learner's machine and responds with the
// resulting session view.
func (s *Server) act(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, m *session.Machine) error) {
	learner, ok := s.learner(w, r)
	if !ok {
		return
	}

	var view sessionView
	err := s.sessions.With(learner, func(m *session.Machine) error {
		if err := op(r.Context(), m); err != nil {
			return err
		}
		view = newSessionView(m.Snapshot())
		return nil
	})
	if err != nil {
		s.writeErr(w, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

func (s *Server) writeErr(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.log.Warn("request failed", zap.Int("status", status), zap.Error(err))
	}
	respondError(w, status, err.Error())
}

func (s *Server) handleLessons(w http.ResponseWriter, r *http.Request) {
	learner, ok := s.learner(w, r)
	if !ok {
		return
	}
	statuses, err := s.mastery.Available(r.Context(), learner, s.bank)
	if err != nil {
		s.writeErr(w, &session.StoreError{Op: "list lessons", Err: err})
		return
	}
	respondJSON(w, http.StatusOK, lo.Map(statuses, func(st mastery.LessonStatus, _ int) lessonView {
		return newLessonView(st)
	}))
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	s.act(w, r, func(context.Context, *session.Machine) error { return nil })
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "bad json")
		return
	}
	learner, ok := s.learner(w, r)
	if !ok {
		return
	}

	// Lesson gating is enforced here, at the lesson-selection boundary.
	statuses, err := s.mastery.Available(r.Context(), learner, s.bank)
	if err != nil {
		s.writeErr(w, &session.StoreError{Op: "start quiz", Err: err})
		return
	}
	selectable := mastery.SelectableIDs(statuses)
	if locked, _ := lo.Difference(req.Lessons, selectable); len(locked) > 0 {
		known := lo.Filter(locked, func(id string, _ int) bool {
			_, ok := s.bank.Lesson(id)
			return ok
		})
		if len(known) > 0 {
			respondError(w, http.StatusForbidden, "lesson locked: "+known[0])
			return
		}
	}

	s.act(w, r, func(ctx context.Context, m *session.Machine) error {
		return m.StartQuiz(ctx, req.Lessons)
	})
}

func (s *Server) handleResume(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "attemptID")
	s.act(w, r, func(ctx context.Context, m *session.Machine) error {
		return m.Resume(ctx, id)
	})
}

func (s *Server) handleAnswer(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "bad json")
		return
	}
	s.act(w, r, func(_ context.Context, m *session.Machine) error {
		return m.SubmitAnswer(req.Choice)
	})
}

func (s *Server) handleAdvance(w http.ResponseWriter, r *http.Request) {
	s.act(w, r, func(ctx context.Context, m *session.Machine) error {
		return m.Advance(ctx)
	})
}

func (s *Server) handleDraft(w http.ResponseWriter, r *http.Request) {
	s.act(w, r, func(ctx context.Context, m *session.Machine) error {
		return m.SaveDraft(ctx)
	})
}

func (s *Server) handleRestart(w http.ResponseWriter, r *http.Request) {
	s.act(w, r, func(_ context.Context, m *session.Machine) error {
		return m.Restart()
	})
}

func (s *Server) handleAbandon(w http.ResponseWriter, r *http.Request) {
	s.act(w, r, func(_ context.Context, m *session.Machine) error {
		return m.Abandon()
	})
}

func (s *Server) handleRetry(w http.ResponseWriter, r *http.Request) {
	s.act(w, r, func(ctx context.Context, m *session.Machine) error {
		return m.RetryMissed(ctx)
	})
}

func (s *Server) handleListAttempts(w http.ResponseWriter, r *http.Request) {
	learner, ok := s.learner(w, r)
	if !ok {
		return
	}
	status := store.Status(r.URL.Query().Get("status"))
	if status != "" && !status.Valid() {
		respondError(w, http.StatusBadRequest, "unknown status")
		return
	}

	attempts, err := s.attempts.ListForOwner(r.Context(), learner, store.ListOpts{Status: status})
	if err != nil {
		s.writeErr(w, &session.StoreError{Op: "list attempts", Err: err})
		return
	}
	respondJSON(w, http.StatusOK, lo.Map(attempts, func(a store.Attempt, _ int) attemptView {
		return newAttemptView(a)
	}))
}

var errNotDraft = errors.New("only drafts can be deleted")

func (s *Server) handleDeleteAttempt(w http.ResponseWriter, r *http.Request) {
	learner, ok := s.learner(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "attemptID")

	err := s.sessions.With(learner, func(m *session.Machine) error {
		if a := m.Attempt(); a != nil && a.ID == id {
			return errNotDraft
		}
		a, err := s.attempts.Get(r.Context(), id)
		if err != nil {
			return err
		}
		if a.Owner != learner {
			return store.ErrNotFound
		}
		if a.Status != store.StatusDraft {
			return errNotDraft
		}
		return s.attempts.Delete(r.Context(), id)
	})
	switch {
	case err == nil:
		w.WriteHeader(http.StatusNoContent)
	case errors.Is(err, errNotDraft):
		respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, store.ErrNotFound):
		respondError(w, http.StatusNotFound, "attempt not found")
	default:
		s.writeErr(w, &session.StoreError{Op: "delete attempt", Err: err})
	}
}
