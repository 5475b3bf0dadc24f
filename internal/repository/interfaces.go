package repository

import (
	"context"
	"time"

	"github.com/mio/bunpo/internal/models"
)

// CatalogRepository is the read-only view of the imported content catalog.
// All listing methods return stably ordered results so that shuffling, not
// source order, is the only source of randomness downstream.
type CatalogRepository interface {
	GetSkill(ctx context.Context, skillID string) (*models.GrammarPoint, error)
	GetSkillsByLesson(ctx context.Context, lessonID int) ([]models.GrammarPoint, error)
	GetSentence(ctx context.Context, sentenceID string) (*models.Sentence, error)
	GetSentencesBySkill(ctx context.Context, skillID string) ([]models.Sentence, error)
	GetSentencesByLesson(ctx context.Context, lessonID int) ([]models.Sentence, error)
	ListLessons(ctx context.Context) ([]models.Lesson, error)
	CountSentences(ctx context.Context) (int, error)
}

// ProgressRepository stores the learner's singleton progress aggregate.
// Each write is a single atomic statement; callers serialize read-modify-
// write cycles per record.
type ProgressRepository interface {
	GetProgress(ctx context.Context) (*models.UserProgress, error)
	GetMasteryRecord(ctx context.Context, skillID string) (*models.MasteryRecord, error)
	UpsertMasteryRecord(ctx context.Context, rec models.MasteryRecord) error
	MarkSentenceLearned(ctx context.Context, sentenceID string) error
	MarkLessonCompleted(ctx context.Context, lessonID int) error
	UpdateStudy(ctx context.Context, seconds int64, streakDays int, studiedAt time.Time) error
}

// MistakeRepository stores per-sentence mistake records.
type MistakeRepository interface {
	Get(ctx context.Context, sentenceID string) (*models.MistakeRecord, error)
	Upsert(ctx context.Context, rec models.MistakeRecord) error
	ListUnresolved(ctx context.Context) ([]models.MistakeRecord, error)
}

// CatalogWriter is the import-time write side of the catalog. The engine
// itself never writes catalog data.
type CatalogWriter interface {
	InsertLesson(ctx context.Context, lesson models.Lesson) error
	InsertSkill(ctx context.Context, skill models.GrammarPoint) error
	InsertSentence(ctx context.Context, sentence models.Sentence) error
}
