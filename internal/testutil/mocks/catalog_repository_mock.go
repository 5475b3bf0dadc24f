package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/mio/bunpo/internal/models"
)

// MockCatalogRepository is a mock implementation of repository.CatalogRepository
type MockCatalogRepository struct {
	mock.Mock
}

func (m *MockCatalogRepository) GetSkill(ctx context.Context, skillID string) (*models.GrammarPoint, error) {
	args := m.Called(ctx, skillID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GrammarPoint), args.Error(1)
}

func (m *MockCatalogRepository) GetSkillsByLesson(ctx context.Context, lessonID int) ([]models.GrammarPoint, error) {
	args := m.Called(ctx, lessonID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.GrammarPoint), args.Error(1)
}

func (m *MockCatalogRepository) GetSentence(ctx context.Context, sentenceID string) (*models.Sentence, error) {
	args := m.Called(ctx, sentenceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Sentence), args.Error(1)
}

func (m *MockCatalogRepository) GetSentencesBySkill(ctx context.Context, skillID string) ([]models.Sentence, error) {
	args := m.Called(ctx, skillID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Sentence), args.Error(1)
}

func (m *MockCatalogRepository) GetSentencesByLesson(ctx context.Context, lessonID int) ([]models.Sentence, error) {
	args := m.Called(ctx, lessonID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Sentence), args.Error(1)
}

func (m *MockCatalogRepository) ListLessons(ctx context.Context) ([]models.Lesson, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Lesson), args.Error(1)
}

func (m *MockCatalogRepository) CountSentences(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}
