package api

import (
	"net/http"

	"github.com/mio/bunpo/internal/apperr"
)

func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	overview, err := s.Progress.Overview(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, overview)
}

func (s *Server) handleRecordStudy(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Seconds int64 `json:"seconds"`
	}
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, apperr.NewBadRequest("invalid request body"))
		return
	}

	if err := s.Progress.RecordStudy(r.Context(), req.Seconds); err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, map[string]any{"recorded": req.Seconds})
}

func (s *Server) handleMistakes(w http.ResponseWriter, r *http.Request) {
	groups, err := s.Mistakes.UnresolvedBySkill(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, map[string]any{"mistakes": groups})
}
