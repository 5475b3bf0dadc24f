package api

import (
	"net/http"

	"github.com/mio/bunpo/internal/apperr"
	"github.com/mio/bunpo/internal/logger"
)

// handleImport queues a catalog import. With force=true the import runs
// even when the catalog is already populated; inserts stay idempotent.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	force := r.URL.Query().Get("force") == "true"
	if err := s.Queue.EnqueueCatalogImport(force); err != nil {
		log.Warn("import rejected: %v", err)
		handleError(w, r, &apperr.Error{
			Code:    apperr.CodeInternal,
			Message: "import queue is busy",
			Status:  http.StatusServiceUnavailable,
			Err:     err,
		})
		return
	}

	log.Info("catalog import queued (force=%t)", force)
	respondJSON(w, r, http.StatusAccepted, map[string]any{"queued": true})
}
