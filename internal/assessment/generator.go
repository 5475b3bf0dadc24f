package assessment

import (
	"context"
	"math/rand"
	"strings"

	"github.com/google/uuid"

	"github.com/mio/bunpo/internal/logger"
	"github.com/mio/bunpo/internal/models"
	"github.com/mio/bunpo/internal/repository"
)

// Blank is the marker substituted for the grammar pattern in prompts.
const Blank = "____"

// distractorWindow is the lesson distance (in both directions) searched
// for plausible wrong options.
const distractorWindow = 2

// maxDistractors caps the wrong options per item; the full option set is
// therefore at most maxDistractors+1.
const maxDistractors = 3

// Generator builds assessment items from catalog sentences. It is not
// safe for concurrent use; the engine serializes calls through a single
// logical thread of control.
type Generator struct {
	catalog repository.CatalogRepository
	rng     *rand.Rand
}

// NewGenerator creates a Generator drawing randomness from rng. Tests
// pass a seeded source for reproducible output.
func NewGenerator(catalog repository.CatalogRepository, rng *rand.Rand) *Generator {
	return &Generator{catalog: catalog, rng: rng}
}

// GenerateItems builds up to count items for the given skills, sampling
// sentences without replacement. Fewer sentences than count yields fewer
// items; an empty pool yields an empty slice, never an error.
func (g *Generator) GenerateItems(ctx context.Context, skillIDs []string, count int) ([]models.AssessmentItem, error) {
	log := logger.FromContext(ctx).WithPrefix("generator")

	var pool []models.Sentence
	for _, skillID := range skillIDs {
		sentences, err := g.catalog.GetSentencesBySkill(ctx, skillID)
		if err != nil {
			log.Error("failed to load sentences for skill %q: %v", skillID, err)
			return nil, err
		}
		pool = append(pool, sentences...)
	}
	if len(pool) == 0 {
		log.Debug("no sentences for skills %v", skillIDs)
		return []models.AssessmentItem{}, nil
	}

	picked := g.sample(pool, count)
	items := make([]models.AssessmentItem, 0, len(picked))
	for _, sentence := range picked {
		item, ok, err := g.buildItem(ctx, sentence)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		items = append(items, item)
	}
	log.Debug("generated %d items for %d skills", len(items), len(skillIDs))
	return items, nil
}

// GenerateLessonAssessment builds an assessment covering every skill in
// the lesson. Items are allocated evenly across skills, topped up from the
// lesson's remaining sentences when some skills run short, then shuffled
// and truncated to count.
func (g *Generator) GenerateLessonAssessment(ctx context.Context, lessonID, count int) ([]models.AssessmentItem, error) {
	log := logger.FromContext(ctx).WithPrefix("generator")

	skills, err := g.catalog.GetSkillsByLesson(ctx, lessonID)
	if err != nil {
		log.Error("failed to load skills for lesson %d: %v", lessonID, err)
		return nil, err
	}
	if len(skills) == 0 {
		log.Debug("lesson %d has no skills", lessonID)
		return []models.AssessmentItem{}, nil
	}

	perSkill := (count + len(skills) - 1) / len(skills)
	var items []models.AssessmentItem
	used := make(map[string]bool)
	for _, skill := range skills {
		skillItems, err := g.GenerateItems(ctx, []string{skill.ID}, perSkill)
		if err != nil {
			return nil, err
		}
		for _, item := range skillItems {
			used[item.SentenceID] = true
		}
		items = append(items, skillItems...)
	}

	// Some skills may not have enough examples; top up from the rest of
	// the lesson before truncating.
	if len(items) < count {
		rest, err := g.catalog.GetSentencesByLesson(ctx, lessonID)
		if err != nil {
			log.Error("failed to load sentences for lesson %d: %v", lessonID, err)
			return nil, err
		}
		var spare []models.Sentence
		for _, s := range rest {
			if !used[s.ID] {
				spare = append(spare, s)
			}
		}
		for _, sentence := range g.sample(spare, count-len(items)) {
			item, ok, err := g.buildItem(ctx, sentence)
			if err != nil {
				return nil, err
			}
			if !ok {
				continue
			}
			items = append(items, item)
		}
	}

	g.rng.Shuffle(len(items), func(i, j int) {
		items[i], items[j] = items[j], items[i]
	})
	if len(items) > count {
		items = items[:count]
	}
	log.Debug("lesson %d assessment: %d items across %d skills", lessonID, len(items), len(skills))
	return items, nil
}

// GenerateMixedPractice samples count sentences uniformly across the given
// lessons and builds one item per sentence. Callers resolve an empty scope
// (e.g. to the learner's completed lessons) before calling.
func (g *Generator) GenerateMixedPractice(ctx context.Context, count int, lessonIDs []int) ([]models.AssessmentItem, error) {
	log := logger.FromContext(ctx).WithPrefix("generator")

	var pool []models.Sentence
	for _, lessonID := range lessonIDs {
		sentences, err := g.catalog.GetSentencesByLesson(ctx, lessonID)
		if err != nil {
			log.Error("failed to load sentences for lesson %d: %v", lessonID, err)
			return nil, err
		}
		pool = append(pool, sentences...)
	}
	if len(pool) == 0 {
		log.Debug("no sentences in scope %v", lessonIDs)
		return []models.AssessmentItem{}, nil
	}

	items := make([]models.AssessmentItem, 0, count)
	for _, sentence := range g.sample(pool, count) {
		item, ok, err := g.buildItem(ctx, sentence)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		items = append(items, item)
	}
	log.Debug("mixed practice: %d items from %d lessons", len(items), len(lessonIDs))
	return items, nil
}

// sample returns up to n elements drawn without replacement via a
// Fisher-Yates shuffle of a copy of pool.
func (g *Generator) sample(pool []models.Sentence, n int) []models.Sentence {
	shuffled := make([]models.Sentence, len(pool))
	copy(shuffled, pool)
	g.rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	if n < len(shuffled) {
		shuffled = shuffled[:n]
	}
	return shuffled
}

// buildItem turns a sentence into an item. A sentence whose skill id is
// missing from the catalog cannot be keyed or blanked; it is skipped
// (ok=false) rather than failing the whole generation.
func (g *Generator) buildItem(ctx context.Context, sentence models.Sentence) (models.AssessmentItem, bool, error) {
	skill, err := g.catalog.GetSkill(ctx, sentence.SkillID)
	if err != nil {
		return models.AssessmentItem{}, false, err
	}
	if skill == nil {
		logger.FromContext(ctx).WithPrefix("generator").
			Warn("sentence %q references unknown skill %q, skipping", sentence.ID, sentence.SkillID)
		return models.AssessmentItem{}, false, nil
	}

	distractors, err := g.pickDistractors(ctx, skill)
	if err != nil {
		return models.AssessmentItem{}, false, err
	}
	options := append([]string{skill.ID}, distractors...)
	g.rng.Shuffle(len(options), func(i, j int) {
		options[i], options[j] = options[j], options[i]
	})

	// Exact, case-sensitive substring blanking. Inflected occurrences of
	// the pattern are intentionally left alone.
	prompt := strings.ReplaceAll(sentence.Text, skill.ID, Blank)

	return models.AssessmentItem{
		ID:            uuid.NewString(),
		SentenceID:    sentence.ID,
		Lesson:        sentence.Lesson,
		Prompt:        prompt,
		Translation:   sentence.Translation,
		CorrectAnswer: skill.ID,
		Options:       options,
		Explanation:   skill.Explanation,
	}, true, nil
}

// pickDistractors samples up to maxDistractors distinct skills from the
// lessons surrounding the target skill's lesson. A small candidate pool
// simply yields fewer options.
func (g *Generator) pickDistractors(ctx context.Context, target *models.GrammarPoint) ([]string, error) {
	log := logger.FromContext(ctx).WithPrefix("generator")

	var candidates []string
	seen := map[string]bool{target.ID: true}
	for lesson := target.Lesson - distractorWindow; lesson <= target.Lesson+distractorWindow; lesson++ {
		skills, err := g.catalog.GetSkillsByLesson(ctx, lesson)
		if err != nil {
			return nil, err
		}
		for _, s := range skills {
			if !seen[s.ID] {
				seen[s.ID] = true
				candidates = append(candidates, s.ID)
			}
		}
	}

	g.rng.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})
	if len(candidates) > maxDistractors {
		candidates = candidates[:maxDistractors]
	}
	if len(candidates) < maxDistractors {
		log.Debug("only %d distractors near lesson %d for %q", len(candidates), target.Lesson, target.ID)
	}
	return candidates, nil
}
