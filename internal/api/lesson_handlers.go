package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/mio/bunpo/internal/apperr"
	"github.com/mio/bunpo/internal/logger"
)

func (s *Server) handleLessons(w http.ResponseWriter, r *http.Request) {
	lessons, err := s.Progress.Lessons(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, map[string]any{"lessons": lessons})
}

func (s *Server) handleCompleteLesson(w http.ResponseWriter, r *http.Request) {
	lessonID, err := lessonIDParam(r)
	if err != nil {
		handleError(w, r, err)
		return
	}
	if err := s.Progress.CompleteLesson(r.Context(), lessonID); err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, map[string]any{"completed": lessonID})
}

func (s *Server) handleStartLessonAssessment(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	lessonID, err := lessonIDParam(r)
	if err != nil {
		handleError(w, r, err)
		return
	}

	var req struct {
		Count int `json:"count"`
	}
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, apperr.NewBadRequest("invalid request body"))
		return
	}

	view, err := s.Assessments.StartLessonSession(r.Context(), lessonID, req.Count)
	if err != nil {
		handleError(w, r, err)
		return
	}
	log.Info("lesson %d assessment started: session %s", lessonID, view.SessionID)
	respondJSON(w, r, http.StatusCreated, view)
}

func (s *Server) handleStartMixedPractice(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Count   int   `json:"count"`
		Lessons []int `json:"lessons"`
	}
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, apperr.NewBadRequest("invalid request body"))
		return
	}

	view, err := s.Assessments.StartMixedSession(r.Context(), req.Count, req.Lessons)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusCreated, view)
}

func lessonIDParam(r *http.Request) (int, error) {
	idStr := chi.URLParam(r, "id")
	id, err := strconv.Atoi(idStr)
	if err != nil {
		return 0, apperr.NewBadRequest("invalid lesson id: " + idStr)
	}
	return id, nil
}
