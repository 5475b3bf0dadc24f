package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/mio/bunpo/internal/models"
)

// MockProgressRepository is a mock implementation of repository.ProgressRepository
type MockProgressRepository struct {
	mock.Mock
}

func (m *MockProgressRepository) GetProgress(ctx context.Context) (*models.UserProgress, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserProgress), args.Error(1)
}

func (m *MockProgressRepository) GetMasteryRecord(ctx context.Context, skillID string) (*models.MasteryRecord, error) {
	args := m.Called(ctx, skillID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MasteryRecord), args.Error(1)
}

func (m *MockProgressRepository) UpsertMasteryRecord(ctx context.Context, rec models.MasteryRecord) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func (m *MockProgressRepository) MarkSentenceLearned(ctx context.Context, sentenceID string) error {
	args := m.Called(ctx, sentenceID)
	return args.Error(0)
}

func (m *MockProgressRepository) MarkLessonCompleted(ctx context.Context, lessonID int) error {
	args := m.Called(ctx, lessonID)
	return args.Error(0)
}

func (m *MockProgressRepository) UpdateStudy(ctx context.Context, seconds int64, streakDays int, studiedAt time.Time) error {
	args := m.Called(ctx, seconds, streakDays, studiedAt)
	return args.Error(0)
}
