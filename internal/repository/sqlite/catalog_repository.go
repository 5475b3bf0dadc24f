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

var sqlBuilder = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question)

type catalogRepository struct {
	db *sql.DB
}

// NewCatalogRepository creates the read side of the catalog.
func NewCatalogRepository(db *sql.DB) repository.CatalogRepository {
	return &catalogRepository{db: db}
}

// NewCatalogWriter creates the import-time write side of the catalog.
func NewCatalogWriter(db *sql.DB) repository.CatalogWriter {
	return &catalogRepository{db: db}
}

func (r *catalogRepository) GetSkill(ctx context.Context, skillID string) (*models.GrammarPoint, error) {
	log := logger.FromContext(ctx).WithPrefix("catalog_repo")

	var skill models.GrammarPoint
	err := r.db.QueryRowContext(ctx, `
SELECT id, lesson, explanation FROM grammar_points WHERE id = ?
`, skillID).Scan(&skill.ID, &skill.Lesson, &skill.Explanation)
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("skill not found: %q", skillID)
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get skill %q: %v", skillID, err)
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, `
SELECT id FROM sentences WHERE skill_id = ? ORDER BY id
`, skillID)
	if err != nil {
		log.Error("failed to load sentence ids for %q: %v", skillID, err)
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		skill.SentenceIDs = append(skill.SentenceIDs, id)
	}
	return &skill, rows.Err()
}

func (r *catalogRepository) GetSkillsByLesson(ctx context.Context, lessonID int) ([]models.GrammarPoint, error) {
	log := logger.FromContext(ctx).WithPrefix("catalog_repo")

	rows, err := r.db.QueryContext(ctx, `
SELECT id, lesson, explanation FROM grammar_points WHERE lesson = ? ORDER BY id
`, lessonID)
	if err != nil {
		log.Error("failed to list skills for lesson %d: %v", lessonID, err)
		return nil, err
	}
	defer rows.Close()

	var skills []models.GrammarPoint
	for rows.Next() {
		var s models.GrammarPoint
		if err := rows.Scan(&s.ID, &s.Lesson, &s.Explanation); err != nil {
			log.Error("failed to scan skill row: %v", err)
			return nil, err
		}
		skills = append(skills, s)
	}
	return skills, rows.Err()
}

func (r *catalogRepository) GetSentence(ctx context.Context, sentenceID string) (*models.Sentence, error) {
	log := logger.FromContext(ctx).WithPrefix("catalog_repo")

	var s models.Sentence
	err := r.db.QueryRowContext(ctx, `
SELECT id, lesson, skill_id, text, translation, note FROM sentences WHERE id = ?
`, sentenceID).Scan(&s.ID, &s.Lesson, &s.SkillID, &s.Text, &s.Translation, &s.Note)
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("sentence not found: %q", sentenceID)
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get sentence %q: %v", sentenceID, err)
		return nil, err
	}
	return &s, nil
}

type sentenceFilter struct {
	skillID string
	lesson  int
}

// listSentences builds the filtered query dynamically. Results are ordered
// by id so callers see a stable pool; only downstream shuffles introduce
// randomness.
func (r *catalogRepository) listSentences(ctx context.Context, filter sentenceFilter) ([]models.Sentence, error) {
	log := logger.FromContext(ctx).WithPrefix("catalog_repo")

	query := sqlBuilder.Select("id", "lesson", "skill_id", "text", "translation", "note").
		From("sentences").
		OrderBy("id")
	if filter.skillID != "" {
		query = query.Where(squirrel.Eq{"skill_id": filter.skillID})
	}
	if filter.lesson != 0 {
		query = query.Where(squirrel.Eq{"lesson": filter.lesson})
	}

	sqlStr, args, err := query.ToSql()
	if err != nil {
		log.Error("failed to build sentence query: %v", err)
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		log.Error("failed to list sentences: %v", err)
		return nil, err
	}
	defer rows.Close()

	var sentences []models.Sentence
	for rows.Next() {
		var s models.Sentence
		if err := rows.Scan(&s.ID, &s.Lesson, &s.SkillID, &s.Text, &s.Translation, &s.Note); err != nil {
			log.Error("failed to scan sentence row: %v", err)
			return nil, err
		}
		sentences = append(sentences, s)
	}
	return sentences, rows.Err()
}

func (r *catalogRepository) GetSentencesBySkill(ctx context.Context, skillID string) ([]models.Sentence, error) {
	return r.listSentences(ctx, sentenceFilter{skillID: skillID})
}

func (r *catalogRepository) GetSentencesByLesson(ctx context.Context, lessonID int) ([]models.Sentence, error) {
	return r.listSentences(ctx, sentenceFilter{lesson: lessonID})
}

func (r *catalogRepository) ListLessons(ctx context.Context) ([]models.Lesson, error) {
	log := logger.FromContext(ctx).WithPrefix("catalog_repo")

	rows, err := r.db.QueryContext(ctx, `SELECT id, title FROM lessons ORDER BY id`)
	if err != nil {
		log.Error("failed to list lessons: %v", err)
		return nil, err
	}
	defer rows.Close()

	var lessons []models.Lesson
	index := make(map[int]int)
	for rows.Next() {
		var l models.Lesson
		if err := rows.Scan(&l.ID, &l.Title); err != nil {
			log.Error("failed to scan lesson row: %v", err)
			return nil, err
		}
		index[l.ID] = len(lessons)
		lessons = append(lessons, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	skillRows, err := r.db.QueryContext(ctx, `SELECT id, lesson FROM grammar_points ORDER BY lesson, id`)
	if err != nil {
		log.Error("failed to list skills: %v", err)
		return nil, err
	}
	defer skillRows.Close()
	for skillRows.Next() {
		var skillID string
		var lesson int
		if err := skillRows.Scan(&skillID, &lesson); err != nil {
			return nil, err
		}
		if i, ok := index[lesson]; ok {
			lessons[i].SkillIDs = append(lessons[i].SkillIDs, skillID)
		}
	}
	return lessons, skillRows.Err()
}

func (r *catalogRepository) CountSentences(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sentences`).Scan(&n)
	return n, err
}

func (r *catalogRepository) InsertLesson(ctx context.Context, lesson models.Lesson) error {
	log := logger.FromContext(ctx).WithPrefix("catalog_repo")
	log.Debug("inserting lesson: id=%d", lesson.ID)

	_, err := r.db.ExecContext(ctx, `
INSERT OR IGNORE INTO lessons (id, title) VALUES (?, ?)
`, lesson.ID, lesson.Title)
	if err != nil {
		log.Error("failed to insert lesson %d: %v", lesson.ID, err)
	}
	return err
}

func (r *catalogRepository) InsertSkill(ctx context.Context, skill models.GrammarPoint) error {
	log := logger.FromContext(ctx).WithPrefix("catalog_repo")
	log.Debug("inserting skill: id=%q lesson=%d", skill.ID, skill.Lesson)

	_, err := r.db.ExecContext(ctx, `
INSERT OR IGNORE INTO grammar_points (id, lesson, explanation) VALUES (?, ?, ?)
`, skill.ID, skill.Lesson, skill.Explanation)
	if err != nil {
		log.Error("failed to insert skill %q: %v", skill.ID, err)
	}
	return err
}

func (r *catalogRepository) InsertSentence(ctx context.Context, sentence models.Sentence) error {
	log := logger.FromContext(ctx).WithPrefix("catalog_repo")
	log.Debug("inserting sentence: id=%q skill=%q", sentence.ID, sentence.SkillID)

	_, err := r.db.ExecContext(ctx, `
INSERT OR IGNORE INTO sentences (id, lesson, skill_id, text, translation, note) VALUES (?, ?, ?, ?, ?, ?)
`, sentence.ID, sentence.Lesson, sentence.SkillID, sentence.Text, sentence.Translation, sentence.Note)
	if err != nil {
		log.Error("failed to insert sentence %q: %v", sentence.ID, err)
	}
	return err
}
