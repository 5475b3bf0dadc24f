package services

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/mio/bunpo/internal/apperr"
	"github.com/mio/bunpo/internal/assessment"
	"github.com/mio/bunpo/internal/logger"
	"github.com/mio/bunpo/internal/models"
	"github.com/mio/bunpo/internal/repository"
)

// SessionView is a read-only snapshot of a session for transport layers.
type SessionView struct {
	SessionID string                  `json:"session_id"`
	State     string                  `json:"state"`
	Index     int                     `json:"index"`
	Total     int                     `json:"total"`
	Elapsed   int                     `json:"elapsed_seconds"`
	Items     []models.AssessmentItem `json:"items"`
}

// AssessmentService runs answer sessions end to end: item generation,
// answering, navigation and submission, including folding results back
// into mastery, mistake and progress state.
type AssessmentService interface {
	StartLessonSession(ctx context.Context, lessonID, count int) (*SessionView, error)
	StartMixedSession(ctx context.Context, count int, lessonIDs []int) (*SessionView, error)
	// StartReviewSession builds a session over the due skills, most
	// overdue first.
	StartReviewSession(ctx context.Context, count int) (*SessionView, error)
	Answer(ctx context.Context, sessionID, itemID, choice string) error
	GoTo(ctx context.Context, sessionID string, index int) (*SessionView, error)
	Next(ctx context.Context, sessionID string) (*SessionView, error)
	Previous(ctx context.Context, sessionID string) (*SessionView, error)
	// Submit scores the session and folds the outcome into mastery,
	// mistake and study state. Submitting twice returns the first result
	// without repeating the side effects.
	Submit(ctx context.Context, sessionID string) (*models.SessionResult, error)
	Session(ctx context.Context, sessionID string) (*SessionView, error)
}

// maxCompletedSessions bounds how many submitted sessions stay around so
// that re-submitting an old session keeps returning its stored result
// without the map growing forever.
const maxCompletedSessions = 128

type assessmentService struct {
	generator *assessment.Generator
	reviews   ReviewService
	mistakes  MistakeService
	progress  repository.ProgressRepository
	study     ProgressService
	now       func() time.Time

	mu           sync.Mutex
	sessions     map[string]*assessment.Session
	completed    []string // submission order, oldest first
	maxCompleted int
}

// NewAssessmentService creates a new AssessmentService.
func NewAssessmentService(
	catalog repository.CatalogRepository,
	progress repository.ProgressRepository,
	reviews ReviewService,
	mistakes MistakeService,
	study ProgressService,
	rng *rand.Rand,
) AssessmentService {
	return &assessmentService{
		generator:    assessment.NewGenerator(catalog, rng),
		reviews:      reviews,
		mistakes:     mistakes,
		progress:     progress,
		study:        study,
		now:          time.Now,
		sessions:     make(map[string]*assessment.Session),
		maxCompleted: maxCompletedSessions,
	}
}

func (s *assessmentService) StartLessonSession(ctx context.Context, lessonID, count int) (*SessionView, error) {
	if count <= 0 {
		return nil, apperr.NewValidation("count", "must be positive")
	}
	items, err := s.generator.GenerateLessonAssessment(ctx, lessonID, count)
	if err != nil {
		return nil, apperr.NewInternal(err)
	}
	return s.startSession(ctx, items), nil
}

func (s *assessmentService) StartMixedSession(ctx context.Context, count int, lessonIDs []int) (*SessionView, error) {
	log := logger.FromContext(ctx)
	if count <= 0 {
		return nil, apperr.NewValidation("count", "must be positive")
	}

	// An empty scope means "everything I've finished so far".
	if len(lessonIDs) == 0 {
		progress, err := s.progress.GetProgress(ctx)
		if err != nil {
			log.Error("failed to load progress: %v", err)
			return nil, apperr.NewInternal(err)
		}
		lessonIDs = progress.CompletedLessons
	}

	items, err := s.generator.GenerateMixedPractice(ctx, count, lessonIDs)
	if err != nil {
		return nil, apperr.NewInternal(err)
	}
	return s.startSession(ctx, items), nil
}

func (s *assessmentService) StartReviewSession(ctx context.Context, count int) (*SessionView, error) {
	if count <= 0 {
		return nil, apperr.NewValidation("count", "must be positive")
	}

	due, err := s.reviews.DueReviews(ctx)
	if err != nil {
		return nil, err
	}
	skillIDs := make([]string, 0, len(due))
	for _, rec := range due {
		skillIDs = append(skillIDs, rec.SkillID)
	}

	items, err := s.generator.GenerateItems(ctx, skillIDs, count)
	if err != nil {
		return nil, apperr.NewInternal(err)
	}
	return s.startSession(ctx, items), nil
}

func (s *assessmentService) Answer(ctx context.Context, sessionID, itemID, choice string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[sessionID]
	if !ok {
		return apperr.NewNotFound("session", sessionID)
	}
	return session.Answer(itemID, choice)
}

func (s *assessmentService) GoTo(ctx context.Context, sessionID string, index int) (*SessionView, error) {
	return s.navigate(sessionID, func(session *assessment.Session) { session.GoTo(index) })
}

func (s *assessmentService) Next(ctx context.Context, sessionID string) (*SessionView, error) {
	return s.navigate(sessionID, func(session *assessment.Session) { session.Next() })
}

func (s *assessmentService) Previous(ctx context.Context, sessionID string) (*SessionView, error) {
	return s.navigate(sessionID, func(session *assessment.Session) { session.Previous() })
}

func (s *assessmentService) Submit(ctx context.Context, sessionID string) (*models.SessionResult, error) {
	log := logger.FromContext(ctx)

	s.mu.Lock()
	session, ok := s.sessions[sessionID]
	if !ok {
		s.mu.Unlock()
		return nil, apperr.NewNotFound("session", sessionID)
	}
	first := session.State() == assessment.StateActive
	result := session.Submit(s.now())
	if first {
		s.completed = append(s.completed, session.ID)
		for len(s.completed) > s.maxCompleted {
			oldest := s.completed[0]
			s.completed = s.completed[1:]
			delete(s.sessions, oldest)
		}
	}
	s.mu.Unlock()

	// Side effects run once, at the first submission. Repeat submissions
	// just return the stored result.
	if first {
		s.fold(ctx, session, result)
		log.Info("session %s submitted: %d/%d correct in %ds",
			result.SessionID, result.Correct, result.Total, result.ElapsedSeconds)
	}
	return &result, nil
}

func (s *assessmentService) Session(ctx context.Context, sessionID string) (*SessionView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[sessionID]
	if !ok {
		return nil, apperr.NewNotFound("session", sessionID)
	}
	return s.view(session), nil
}

func (s *assessmentService) startSession(ctx context.Context, items []models.AssessmentItem) *SessionView {
	log := logger.FromContext(ctx)

	session := assessment.NewSession(items, s.now())
	s.mu.Lock()
	s.sessions[session.ID] = session
	view := s.view(session)
	s.mu.Unlock()

	log.Info("session %s started with %d items", session.ID, len(items))
	return view
}

func (s *assessmentService) navigate(sessionID string, move func(*assessment.Session)) (*SessionView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[sessionID]
	if !ok {
		return nil, apperr.NewNotFound("session", sessionID)
	}
	move(session)
	return s.view(session), nil
}

// view is called with s.mu held.
func (s *assessmentService) view(session *assessment.Session) *SessionView {
	state := "active"
	if session.State() == assessment.StateCompleted {
		state = "completed"
	}
	return &SessionView{
		SessionID: session.ID,
		State:     state,
		Index:     session.Index(),
		Total:     len(session.Items()),
		Elapsed:   session.Elapsed(s.now()),
		Items:     session.Items(),
	}
}

// fold applies one submitted session to the learner's long-lived state.
// A failed fold step is logged and skipped; the scored result has already
// been committed and must not be lost to a storage hiccup.
func (s *assessmentService) fold(ctx context.Context, session *assessment.Session, result models.SessionResult) {
	log := logger.FromContext(ctx)

	for _, item := range result.Items {
		if _, err := s.reviews.RecordReview(ctx, item.SkillID, item.Correct); err != nil {
			log.Warn("failed to record review for skill %q: %v", item.SkillID, err)
		}
		if err := s.mistakes.RecordOutcome(ctx, item.SentenceID, item.SkillID, item.Correct); err != nil {
			log.Warn("failed to record mistake outcome for sentence %q: %v", item.SentenceID, err)
		}
		if item.Correct {
			if err := s.progress.MarkSentenceLearned(ctx, item.SentenceID); err != nil {
				log.Warn("failed to mark sentence %q learned: %v", item.SentenceID, err)
			}
		}
	}
	if err := s.study.RecordStudy(ctx, int64(result.ElapsedSeconds)); err != nil {
		log.Warn("failed to record study time: %v", err)
	}
}
