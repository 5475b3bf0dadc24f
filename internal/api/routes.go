package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(recoveryMiddleware)
	r.Use(loggingMiddleware)
	r.Use(securityHeadersMiddleware)

	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)

	r.Route("/api", func(r chi.Router) {
		r.Get("/lessons", s.handleLessons)
		r.Post("/lessons/{id}/complete", s.handleCompleteLesson)
		r.Post("/lessons/{id}/assessment", s.handleStartLessonAssessment)

		r.Post("/practice", s.handleStartMixedPractice)

		r.Get("/reviews/due", s.handleDueReviews)
		r.Post("/reviews", s.handleRecordReview)
		r.Post("/reviews/session", s.handleStartReviewSession)

		r.Route("/sessions/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetSession)
			r.Post("/answers", s.handleAnswer)
			r.Post("/goto", s.handleGoTo)
			r.Post("/next", s.handleNext)
			r.Post("/previous", s.handlePrevious)
			r.Post("/submit", s.handleSubmit)
		})

		r.Get("/mistakes", s.handleMistakes)
		r.Get("/progress", s.handleProgress)
		r.Post("/study", s.handleRecordStudy)
		r.Post("/import", s.handleImport)
	})

	return r
}
