package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/mio/bunpo/internal/models"
)

// MockMistakeRepository is a mock implementation of repository.MistakeRepository
type MockMistakeRepository struct {
	mock.Mock
}

func (m *MockMistakeRepository) Get(ctx context.Context, sentenceID string) (*models.MistakeRecord, error) {
	args := m.Called(ctx, sentenceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MistakeRecord), args.Error(1)
}

func (m *MockMistakeRepository) Upsert(ctx context.Context, rec models.MistakeRecord) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func (m *MockMistakeRepository) ListUnresolved(ctx context.Context) ([]models.MistakeRecord, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.MistakeRecord), args.Error(1)
}
