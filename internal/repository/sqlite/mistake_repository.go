package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Masterminds/squirrel"

	"github.com/mio/bunpo/internal/logger"
	"github.com/mio/bunpo/internal/models"
	"github.com/mio/bunpo/internal/repository"
)

type mistakeRepository struct {
	db *sql.DB
}

// NewMistakeRepository creates a new MistakeRepository implementation.
func NewMistakeRepository(db *sql.DB) repository.MistakeRepository {
	return &mistakeRepository{db: db}
}

func (r *mistakeRepository) Get(ctx context.Context, sentenceID string) (*models.MistakeRecord, error) {
	log := logger.FromContext(ctx).WithPrefix("mistake_repo")

	var rec models.MistakeRecord
	err := r.db.QueryRowContext(ctx, `
SELECT sentence_id, skill_id, wrong_count, last_wrong_at, correct_streak, resolved
FROM mistake_records WHERE sentence_id = ?
`, sentenceID).Scan(&rec.SentenceID, &rec.SkillID, &rec.WrongCount, &rec.LastWrongAt, &rec.CorrectStreak, &rec.Resolved)
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("no mistake record for sentence %q", sentenceID)
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get mistake record for %q: %v", sentenceID, err)
		return nil, err
	}
	return &rec, nil
}

func (r *mistakeRepository) Upsert(ctx context.Context, rec models.MistakeRecord) error {
	log := logger.FromContext(ctx).WithPrefix("mistake_repo")
	log.Debug("upserting mistake record: sentence=%q wrong=%d streak=%d resolved=%t",
		rec.SentenceID, rec.WrongCount, rec.CorrectStreak, rec.Resolved)

	_, err := r.db.ExecContext(ctx, `
INSERT INTO mistake_records (sentence_id, skill_id, wrong_count, last_wrong_at, correct_streak, resolved)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(sentence_id) DO UPDATE SET
    wrong_count = excluded.wrong_count,
    last_wrong_at = excluded.last_wrong_at,
    correct_streak = excluded.correct_streak,
    resolved = excluded.resolved
`, rec.SentenceID, rec.SkillID, rec.WrongCount, rec.LastWrongAt, rec.CorrectStreak, rec.Resolved)
	if err != nil {
		log.Error("failed to upsert mistake record for %q: %v", rec.SentenceID, err)
	}
	return err
}

func (r *mistakeRepository) ListUnresolved(ctx context.Context) ([]models.MistakeRecord, error) {
	log := logger.FromContext(ctx).WithPrefix("mistake_repo")

	query := sqlBuilder.Select("sentence_id", "skill_id", "wrong_count", "last_wrong_at", "correct_streak", "resolved").
		From("mistake_records").
		Where(squirrel.Eq{"resolved": false}).
		OrderBy("wrong_count DESC", "sentence_id")

	sqlStr, args, err := query.ToSql()
	if err != nil {
		log.Error("failed to build unresolved query: %v", err)
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		log.Error("failed to list unresolved mistakes: %v", err)
		return nil, err
	}
	defer rows.Close()

	var records []models.MistakeRecord
	for rows.Next() {
		var rec models.MistakeRecord
		if err := rows.Scan(&rec.SentenceID, &rec.SkillID, &rec.WrongCount, &rec.LastWrongAt, &rec.CorrectStreak, &rec.Resolved); err != nil {
			log.Error("failed to scan mistake row: %v", err)
			return nil, err
		}
		records = append(records, rec)
	}
	log.Debug("found %d unresolved mistakes", len(records))
	return records, rows.Err()
}
