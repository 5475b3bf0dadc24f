package services

import (
	"context"
	"time"

	"github.com/mio/bunpo/internal/apperr"
	"github.com/mio/bunpo/internal/logger"
	"github.com/mio/bunpo/internal/mistakes"
	"github.com/mio/bunpo/internal/repository"
)

// MistakeService tracks recurring mistakes per sentence until resolved.
type MistakeService interface {
	RecordOutcome(ctx context.Context, sentenceID, skillID string, correct bool) error
	UnresolvedBySkill(ctx context.Context) ([]mistakes.SkillMistakes, error)
}

type mistakeService struct {
	repo  repository.MistakeRepository
	locks *keyedMutex
	now   func() time.Time
}

// NewMistakeService creates a new MistakeService.
func NewMistakeService(repo repository.MistakeRepository) MistakeService {
	return &mistakeService{
		repo:  repo,
		locks: newKeyedMutex(),
		now:   time.Now,
	}
}

func (s *mistakeService) RecordOutcome(ctx context.Context, sentenceID, skillID string, correct bool) error {
	log := logger.FromContext(ctx)

	unlock := s.locks.lock(sentenceID)
	defer unlock()

	prev, err := s.repo.Get(ctx, sentenceID)
	if err != nil {
		log.Error("failed to load mistake record: %v", err)
		return apperr.NewInternal(err)
	}

	rec, keep := mistakes.Apply(prev, sentenceID, skillID, correct, s.now())
	if !keep {
		return nil
	}
	if err := s.repo.Upsert(ctx, rec); err != nil {
		log.Error("failed to store mistake record: %v", err)
		return apperr.NewInternal(err)
	}
	if rec.Resolved && (prev == nil || !prev.Resolved) {
		log.Info("mistake resolved: sentence=%q skill=%q", sentenceID, skillID)
	}
	return nil
}

func (s *mistakeService) UnresolvedBySkill(ctx context.Context) ([]mistakes.SkillMistakes, error) {
	log := logger.FromContext(ctx)

	records, err := s.repo.ListUnresolved(ctx)
	if err != nil {
		log.Error("failed to list unresolved mistakes: %v", err)
		return nil, apperr.NewInternal(err)
	}
	return mistakes.GroupUnresolved(records), nil
}
