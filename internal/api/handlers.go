package api

import (
	"encoding/json"
	"net/http"

	"github.com/mio/bunpo/internal/db"
	"github.com/mio/bunpo/internal/jobs"
	"github.com/mio/bunpo/internal/logger"
	"github.com/mio/bunpo/internal/services"
)

type Server struct {
	DB          *db.DB
	Assessments services.AssessmentService
	Reviews     services.ReviewService
	Mistakes    services.MistakeService
	Progress    services.ProgressService
	Queue       jobs.JobQueue
}

func respondJSON(w http.ResponseWriter, r *http.Request, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.FromContext(r.Context()).Error("failed to encode response: %v", err)
	}
}

func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}
