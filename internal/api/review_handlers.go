package api

import (
	"net/http"

	"github.com/mio/bunpo/internal/apperr"
)

func (s *Server) handleDueReviews(w http.ResponseWriter, r *http.Request) {
	due, err := s.Reviews.DueReviews(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, map[string]any{"due": due})
}

func (s *Server) handleRecordReview(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SkillID string `json:"skill_id"`
		Correct bool   `json:"correct"`
	}
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, apperr.NewBadRequest("invalid request body"))
		return
	}
	if req.SkillID == "" {
		handleError(w, r, apperr.NewValidation("skill_id", "must not be empty"))
		return
	}

	rec, err := s.Reviews.RecordReview(r.Context(), req.SkillID, req.Correct)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, map[string]any{"mastery": rec})
}

func (s *Server) handleStartReviewSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Count int `json:"count"`
	}
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, apperr.NewBadRequest("invalid request body"))
		return
	}

	view, err := s.Assessments.StartReviewSession(r.Context(), req.Count)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusCreated, view)
}
