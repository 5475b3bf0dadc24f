package importer

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/mio/bunpo/internal/logger"
	"github.com/mio/bunpo/internal/models"
	"github.com/mio/bunpo/internal/repository"
)

// File names expected inside the content directory.
const (
	lessonsFile   = "lessons.csv"
	skillsFile    = "skills.csv"
	sentencesFile = "sentences.csv"
)

// Importer seeds the catalog from CSV content files. Inserts are
// idempotent, so re-running an import against a populated catalog is
// harmless.
type Importer struct {
	writer  repository.CatalogWriter
	catalog repository.CatalogRepository
	dir     string
}

func New(writer repository.CatalogWriter, catalog repository.CatalogRepository, dir string) *Importer {
	return &Importer{writer: writer, catalog: catalog, dir: dir}
}

// Needed reports whether the catalog is still empty.
func (i *Importer) Needed(ctx context.Context) (bool, error) {
	count, err := i.catalog.CountSentences(ctx)
	if err != nil {
		return false, err
	}
	return count == 0, nil
}

// Run loads lessons, skills and sentences, in that order so that foreign
// keys hold.
func (i *Importer) Run(ctx context.Context) error {
	log := logger.FromContext(ctx).WithPrefix("importer")

	lessons, err := i.loadLessons()
	if err != nil {
		return fmt.Errorf("loading %s: %w", lessonsFile, err)
	}
	skills, err := i.loadSkills()
	if err != nil {
		return fmt.Errorf("loading %s: %w", skillsFile, err)
	}
	sentences, err := i.loadSentences()
	if err != nil {
		return fmt.Errorf("loading %s: %w", sentencesFile, err)
	}

	for _, lesson := range lessons {
		if err := i.writer.InsertLesson(ctx, lesson); err != nil {
			return fmt.Errorf("inserting lesson %d: %w", lesson.ID, err)
		}
	}
	for _, skill := range skills {
		if err := i.writer.InsertSkill(ctx, skill); err != nil {
			return fmt.Errorf("inserting skill %q: %w", skill.ID, err)
		}
	}
	for _, sentence := range sentences {
		if err := i.writer.InsertSentence(ctx, sentence); err != nil {
			return fmt.Errorf("inserting sentence %q: %w", sentence.ID, err)
		}
	}

	log.Info("catalog import done: %d lessons, %d skills, %d sentences",
		len(lessons), len(skills), len(sentences))
	return nil
}

// loadLessons parses lessons.csv: id,title
func (i *Importer) loadLessons() ([]models.Lesson, error) {
	rows, err := i.readCSV(lessonsFile, 2)
	if err != nil {
		return nil, err
	}
	lessons := make([]models.Lesson, 0, len(rows))
	for n, row := range rows {
		id, err := strconv.Atoi(row[0])
		if err != nil {
			return nil, fmt.Errorf("row %d: bad lesson id %q", n+2, row[0])
		}
		lessons = append(lessons, models.Lesson{ID: id, Title: row[1]})
	}
	return lessons, nil
}

// loadSkills parses skills.csv: id,lesson,explanation
func (i *Importer) loadSkills() ([]models.GrammarPoint, error) {
	rows, err := i.readCSV(skillsFile, 3)
	if err != nil {
		return nil, err
	}
	skills := make([]models.GrammarPoint, 0, len(rows))
	for n, row := range rows {
		lesson, err := strconv.Atoi(row[1])
		if err != nil {
			return nil, fmt.Errorf("row %d: bad lesson %q for skill %q", n+2, row[1], row[0])
		}
		skills = append(skills, models.GrammarPoint{
			ID:          row[0],
			Lesson:      lesson,
			Explanation: row[2],
		})
	}
	return skills, nil
}

// loadSentences parses sentences.csv: id,lesson,skill_id,text,translation,note
func (i *Importer) loadSentences() ([]models.Sentence, error) {
	rows, err := i.readCSV(sentencesFile, 6)
	if err != nil {
		return nil, err
	}
	sentences := make([]models.Sentence, 0, len(rows))
	for n, row := range rows {
		lesson, err := strconv.Atoi(row[1])
		if err != nil {
			return nil, fmt.Errorf("row %d: bad lesson %q for sentence %q", n+2, row[1], row[0])
		}
		sentences = append(sentences, models.Sentence{
			ID:          row[0],
			Lesson:      lesson,
			SkillID:     row[2],
			Text:        row[3],
			Translation: row[4],
			Note:        row[5],
		})
	}
	return sentences, nil
}

// readCSV reads a content file, skipping the header row and checking the
// column count.
func (i *Importer) readCSV(name string, fields int) ([][]string, error) {
	f, err := os.Open(filepath.Join(i.dir, name))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = fields

	// header
	if _, err := r.Read(); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, err
	}

	var rows [][]string
	for {
		row, err := r.Read()
		if err == io.EOF {
			return rows, nil
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
}
