package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mio/bunpo/internal/apperr"
	"github.com/mio/bunpo/internal/logger"
)

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	view, err := s.Assessments.Session(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, view)
}

func (s *Server) handleAnswer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ItemID string `json:"item_id"`
		Choice string `json:"choice"`
	}
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, apperr.NewBadRequest("invalid request body"))
		return
	}
	if req.ItemID == "" {
		handleError(w, r, apperr.NewValidation("item_id", "must not be empty"))
		return
	}

	if err := s.Assessments.Answer(r.Context(), chi.URLParam(r, "id"), req.ItemID, req.Choice); err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, map[string]any{"answered": req.ItemID})
}

func (s *Server) handleGoTo(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Index int `json:"index"`
	}
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, apperr.NewBadRequest("invalid request body"))
		return
	}

	view, err := s.Assessments.GoTo(r.Context(), chi.URLParam(r, "id"), req.Index)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, view)
}

func (s *Server) handleNext(w http.ResponseWriter, r *http.Request) {
	view, err := s.Assessments.Next(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, view)
}

func (s *Server) handlePrevious(w http.ResponseWriter, r *http.Request) {
	view, err := s.Assessments.Previous(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, view)
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	result, err := s.Assessments.Submit(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	log.Debug("session %s result: %d/%d", result.SessionID, result.Correct, result.Total)
	respondJSON(w, r, http.StatusOK, result)
}
