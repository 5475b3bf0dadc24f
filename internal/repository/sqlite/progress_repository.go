package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/mio/bunpo/internal/logger"
	"github.com/mio/bunpo/internal/models"
	"github.com/mio/bunpo/internal/repository"
)

type progressRepository struct {
	db *sql.DB
}

// NewProgressRepository creates a new ProgressRepository implementation.
func NewProgressRepository(db *sql.DB) repository.ProgressRepository {
	return &progressRepository{db: db}
}

func (r *progressRepository) GetProgress(ctx context.Context) (*models.UserProgress, error) {
	log := logger.FromContext(ctx).WithPrefix("progress_repo")

	var progress models.UserProgress
	var lastStudy sql.NullTime
	err := r.db.QueryRowContext(ctx, `
SELECT study_seconds, streak_days, last_study_at FROM user_progress WHERE id = 1
`).Scan(&progress.StudySeconds, &progress.StreakDays, &lastStudy)
	if err != nil {
		log.Error("failed to load progress row: %v", err)
		return nil, err
	}
	if lastStudy.Valid {
		progress.LastStudyAt = &lastStudy.Time
	}

	rows, err := r.db.QueryContext(ctx, `SELECT sentence_id FROM learned_sentences ORDER BY sentence_id`)
	if err != nil {
		log.Error("failed to load learned sentences: %v", err)
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		progress.LearnedSentences = append(progress.LearnedSentences, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	masteryRows, err := r.db.QueryContext(ctx, `
SELECT skill_id, learned_at, last_reviewed_at, due_at, review_count, level
FROM mastery_records ORDER BY skill_id
`)
	if err != nil {
		log.Error("failed to load mastery records: %v", err)
		return nil, err
	}
	defer masteryRows.Close()
	for masteryRows.Next() {
		rec, err := scanMastery(masteryRows)
		if err != nil {
			log.Error("failed to scan mastery row: %v", err)
			return nil, err
		}
		progress.Mastery = append(progress.Mastery, rec)
	}
	if err := masteryRows.Err(); err != nil {
		return nil, err
	}

	lessonRows, err := r.db.QueryContext(ctx, `SELECT lesson_id FROM completed_lessons ORDER BY lesson_id`)
	if err != nil {
		log.Error("failed to load completed lessons: %v", err)
		return nil, err
	}
	defer lessonRows.Close()
	for lessonRows.Next() {
		var id int
		if err := lessonRows.Scan(&id); err != nil {
			return nil, err
		}
		progress.CompletedLessons = append(progress.CompletedLessons, id)
	}
	return &progress, lessonRows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMastery(row rowScanner) (models.MasteryRecord, error) {
	var rec models.MasteryRecord
	var lastReviewed sql.NullTime
	err := row.Scan(&rec.SkillID, &rec.LearnedAt, &lastReviewed, &rec.DueAt, &rec.ReviewCount, &rec.Level)
	if err != nil {
		return rec, err
	}
	if lastReviewed.Valid {
		rec.LastReviewedAt = &lastReviewed.Time
	}
	return rec, nil
}

func (r *progressRepository) GetMasteryRecord(ctx context.Context, skillID string) (*models.MasteryRecord, error) {
	log := logger.FromContext(ctx).WithPrefix("progress_repo")

	row := r.db.QueryRowContext(ctx, `
SELECT skill_id, learned_at, last_reviewed_at, due_at, review_count, level
FROM mastery_records WHERE skill_id = ?
`, skillID)
	rec, err := scanMastery(row)
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("no mastery record for %q", skillID)
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get mastery record for %q: %v", skillID, err)
		return nil, err
	}
	return &rec, nil
}

func (r *progressRepository) UpsertMasteryRecord(ctx context.Context, rec models.MasteryRecord) error {
	log := logger.FromContext(ctx).WithPrefix("progress_repo")
	log.Debug("upserting mastery record: skill=%q level=%d due=%s", rec.SkillID, rec.Level, rec.DueAt.Format("2006-01-02"))

	var lastReviewed sql.NullTime
	if rec.LastReviewedAt != nil {
		lastReviewed = sql.NullTime{Time: *rec.LastReviewedAt, Valid: true}
	}
	_, err := r.db.ExecContext(ctx, `
INSERT INTO mastery_records (skill_id, learned_at, last_reviewed_at, due_at, review_count, level)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(skill_id) DO UPDATE SET
    last_reviewed_at = excluded.last_reviewed_at,
    due_at = excluded.due_at,
    review_count = excluded.review_count,
    level = excluded.level
`, rec.SkillID, rec.LearnedAt, lastReviewed, rec.DueAt, rec.ReviewCount, rec.Level)
	if err != nil {
		log.Error("failed to upsert mastery record for %q: %v", rec.SkillID, err)
	}
	return err
}

func (r *progressRepository) MarkSentenceLearned(ctx context.Context, sentenceID string) error {
	log := logger.FromContext(ctx).WithPrefix("progress_repo")

	_, err := r.db.ExecContext(ctx, `
INSERT OR IGNORE INTO learned_sentences (sentence_id) VALUES (?)
`, sentenceID)
	if err != nil {
		log.Error("failed to mark sentence learned %q: %v", sentenceID, err)
	}
	return err
}

func (r *progressRepository) MarkLessonCompleted(ctx context.Context, lessonID int) error {
	log := logger.FromContext(ctx).WithPrefix("progress_repo")
	log.Debug("marking lesson completed: %d", lessonID)

	_, err := r.db.ExecContext(ctx, `
INSERT OR IGNORE INTO completed_lessons (lesson_id) VALUES (?)
`, lessonID)
	if err != nil {
		log.Error("failed to mark lesson completed %d: %v", lessonID, err)
	}
	return err
}

func (r *progressRepository) UpdateStudy(ctx context.Context, seconds int64, streakDays int, studiedAt time.Time) error {
	log := logger.FromContext(ctx).WithPrefix("progress_repo")
	log.Debug("recording study: seconds=%d streak=%d", seconds, streakDays)

	_, err := r.db.ExecContext(ctx, `
UPDATE user_progress
SET study_seconds = study_seconds + ?, streak_days = ?, last_study_at = ?
WHERE id = 1
`, seconds, streakDays, studiedAt)
	if err != nil {
		log.Error("failed to record study time: %v", err)
	}
	return err
}
