package services

import (
	"context"
	"time"

	"github.com/mio/bunpo/internal/apperr"
	"github.com/mio/bunpo/internal/logger"
	"github.com/mio/bunpo/internal/models"
	"github.com/mio/bunpo/internal/repository"
	"github.com/mio/bunpo/internal/scheduler"
)

// ProgressService exposes the learner's aggregate progress and lesson
// state.
type ProgressService interface {
	Overview(ctx context.Context) (*models.UserProgress, error)
	// Lessons returns the catalog lessons with learner-derived flags:
	// unlocked, completed and completion percentage.
	Lessons(ctx context.Context) ([]models.Lesson, error)
	CompleteLesson(ctx context.Context, lessonID int) error
	// RecordStudy adds study time and maintains the consecutive-day
	// streak.
	RecordStudy(ctx context.Context, seconds int64) error
}

type progressService struct {
	catalog  repository.CatalogRepository
	progress repository.ProgressRepository
	now      func() time.Time
}

// NewProgressService creates a new ProgressService.
func NewProgressService(catalog repository.CatalogRepository, progress repository.ProgressRepository) ProgressService {
	return &progressService{
		catalog:  catalog,
		progress: progress,
		now:      time.Now,
	}
}

func (s *progressService) Overview(ctx context.Context) (*models.UserProgress, error) {
	progress, err := s.progress.GetProgress(ctx)
	if err != nil {
		return nil, apperr.NewInternal(err)
	}
	return progress, nil
}

func (s *progressService) Lessons(ctx context.Context) ([]models.Lesson, error) {
	log := logger.FromContext(ctx)

	lessons, err := s.catalog.ListLessons(ctx)
	if err != nil {
		log.Error("failed to list lessons: %v", err)
		return nil, apperr.NewInternal(err)
	}
	progress, err := s.progress.GetProgress(ctx)
	if err != nil {
		log.Error("failed to load progress: %v", err)
		return nil, apperr.NewInternal(err)
	}

	learned := make(map[string]bool, len(progress.LearnedSentences))
	for _, id := range progress.LearnedSentences {
		learned[id] = true
	}

	previousCompleted := true // the first lesson is always unlocked
	for i := range lessons {
		lesson := &lessons[i]
		lesson.Completed = progress.CompletedLesson(lesson.ID)
		lesson.Unlocked = previousCompleted
		previousCompleted = lesson.Completed

		sentences, err := s.catalog.GetSentencesByLesson(ctx, lesson.ID)
		if err != nil {
			log.Error("failed to load sentences for lesson %d: %v", lesson.ID, err)
			return nil, apperr.NewInternal(err)
		}
		count := 0
		for _, sentence := range sentences {
			if learned[sentence.ID] {
				count++
			}
		}
		// Zero-guard: a lesson without sentences reports 0, never NaN.
		if len(sentences) > 0 {
			lesson.CompletionRate = float64(count) / float64(len(sentences))
		}
	}
	return lessons, nil
}

func (s *progressService) CompleteLesson(ctx context.Context, lessonID int) error {
	log := logger.FromContext(ctx)

	skills, err := s.catalog.GetSkillsByLesson(ctx, lessonID)
	if err != nil {
		log.Error("failed to look up lesson %d: %v", lessonID, err)
		return apperr.NewInternal(err)
	}
	if len(skills) == 0 {
		return apperr.NewNotFound("lesson", lessonID)
	}
	if err := s.progress.MarkLessonCompleted(ctx, lessonID); err != nil {
		return apperr.NewInternal(err)
	}
	log.Info("lesson %d completed", lessonID)
	return nil
}

func (s *progressService) RecordStudy(ctx context.Context, seconds int64) error {
	log := logger.FromContext(ctx)
	if seconds < 0 {
		return apperr.NewValidation("seconds", "must not be negative")
	}

	progress, err := s.progress.GetProgress(ctx)
	if err != nil {
		return apperr.NewInternal(err)
	}

	now := s.now()
	streak := 1
	if progress.LastStudyAt != nil {
		// Timestamps scanned back from storage carry their own location;
		// compare calendar days in the local clock's frame.
		switch scheduler.DaysBetween(progress.LastStudyAt.In(now.Location()), now) {
		case 0:
			streak = progress.StreakDays
		case 1:
			streak = progress.StreakDays + 1
		}
	}

	if err := s.progress.UpdateStudy(ctx, seconds, streak, now); err != nil {
		return apperr.NewInternal(err)
	}
	log.Debug("study recorded: %ds, streak %d days", seconds, streak)
	return nil
}
