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

// ReviewService applies review outcomes to per-skill mastery state and
// serves the due-review queue.
type ReviewService interface {
	// RecordReview folds one answer outcome into the skill's mastery
	// record. A correct answer for a skill with no record is the first
	// learning event and creates the record at the lowest level; an
	// incorrect answer for an unknown skill changes nothing and returns
	// nil.
	RecordReview(ctx context.Context, skillID string, correct bool) (*models.MasteryRecord, error)
	// DueReviews returns the due mastery records, most overdue first.
	DueReviews(ctx context.Context) ([]models.MasteryRecord, error)
}

type reviewService struct {
	catalog  repository.CatalogRepository
	progress repository.ProgressRepository
	locks    *keyedMutex
	now      func() time.Time
}

// NewReviewService creates a new ReviewService.
func NewReviewService(catalog repository.CatalogRepository, progress repository.ProgressRepository) ReviewService {
	return &reviewService{
		catalog:  catalog,
		progress: progress,
		locks:    newKeyedMutex(),
		now:      time.Now,
	}
}

func (s *reviewService) RecordReview(ctx context.Context, skillID string, correct bool) (*models.MasteryRecord, error) {
	log := logger.FromContext(ctx)
	log.Debug("recording review: skill=%q correct=%t", skillID, correct)

	// One in-flight update per skill; the whole read-modify-write cycle
	// is a single critical section.
	unlock := s.locks.lock(skillID)
	defer unlock()

	rec, err := s.progress.GetMasteryRecord(ctx, skillID)
	if err != nil {
		log.Error("failed to load mastery record: %v", err)
		return nil, apperr.NewInternal(err)
	}

	now := s.now()
	if rec == nil {
		if !correct {
			// Only a successful answer creates a mastery record.
			log.Debug("skill %q has no mastery record, incorrect answer ignored", skillID)
			return nil, nil
		}
		skill, err := s.catalog.GetSkill(ctx, skillID)
		if err != nil {
			log.Error("failed to look up skill %q: %v", skillID, err)
			return nil, apperr.NewInternal(err)
		}
		if skill == nil {
			return nil, apperr.NewNotFound("skill", skillID)
		}
		created := models.MasteryRecord{
			SkillID:   skillID,
			LearnedAt: now,
			DueAt:     scheduler.Midnight(now).AddDate(0, 0, scheduler.Intervals[scheduler.MinLevel]),
			Level:     scheduler.MinLevel,
		}
		if err := s.progress.UpsertMasteryRecord(ctx, created); err != nil {
			log.Error("failed to create mastery record: %v", err)
			return nil, apperr.NewInternal(err)
		}
		log.Info("skill learned: %q, next review %s", skillID, created.DueAt.Format("2006-01-02"))
		return &created, nil
	}

	review := scheduler.ComputeNextReview(rec.Level, correct, now)
	rec.Level = review.Level
	rec.DueAt = review.DueAt
	rec.ReviewCount++
	rec.LastReviewedAt = &now

	if err := s.progress.UpsertMasteryRecord(ctx, *rec); err != nil {
		log.Error("failed to update mastery record: %v", err)
		return nil, apperr.NewInternal(err)
	}
	log.Debug("skill %q now level %d, due %s", skillID, rec.Level, rec.DueAt.Format("2006-01-02"))
	return rec, nil
}

func (s *reviewService) DueReviews(ctx context.Context) ([]models.MasteryRecord, error) {
	log := logger.FromContext(ctx)

	progress, err := s.progress.GetProgress(ctx)
	if err != nil {
		log.Error("failed to load progress: %v", err)
		return nil, apperr.NewInternal(err)
	}

	due := scheduler.RankDue(progress.Mastery, s.now())
	log.Debug("%d of %d skills due for review", len(due), len(progress.Mastery))
	return due, nil
}
