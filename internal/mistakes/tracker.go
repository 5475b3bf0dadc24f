// Package mistakes holds the pure transition logic for per-sentence
// mistake records. Persistence and per-record serialization live in the
// services layer.
package mistakes

import (
	"sort"
	"time"

	"github.com/mio/bunpo/internal/models"
)

// ResolveStreak is the number of consecutive correct answers that marks a
// previously wrong sentence as resolved.
const ResolveStreak = 3

// Apply folds one answer outcome into the sentence's mistake record. prev
// is nil when no record exists yet. The returned bool is false when no
// record should be stored: a correct answer to a sentence that was never
// wrong does not open a record.
func Apply(prev *models.MistakeRecord, sentenceID, skillID string, correct bool, now time.Time) (models.MistakeRecord, bool) {
	if prev == nil {
		if correct {
			return models.MistakeRecord{}, false
		}
		return models.MistakeRecord{
			SentenceID:  sentenceID,
			SkillID:     skillID,
			WrongCount:  1,
			LastWrongAt: now,
		}, true
	}

	rec := *prev
	if correct {
		rec.CorrectStreak++
		if rec.CorrectStreak >= ResolveStreak {
			rec.Resolved = true
		}
	} else {
		rec.WrongCount++
		rec.LastWrongAt = now
		rec.CorrectStreak = 0
		rec.Resolved = false
	}
	return rec, true
}

// SkillMistakes groups a skill's unresolved records.
type SkillMistakes struct {
	SkillID    string                 `json:"skill_id"`
	WrongCount int                    `json:"wrong_count"`
	Records    []models.MistakeRecord `json:"records"`
}

// GroupUnresolved groups unresolved records by skill, most-missed skills
// first. Resolved records are skipped; records inside a group are ordered
// by descending wrong count with sentence-id tie-breaks.
func GroupUnresolved(records []models.MistakeRecord) []SkillMistakes {
	bySkill := make(map[string]*SkillMistakes)
	var order []string
	for _, rec := range records {
		if rec.Resolved {
			continue
		}
		group, ok := bySkill[rec.SkillID]
		if !ok {
			group = &SkillMistakes{SkillID: rec.SkillID}
			bySkill[rec.SkillID] = group
			order = append(order, rec.SkillID)
		}
		group.WrongCount += rec.WrongCount
		group.Records = append(group.Records, rec)
	}

	groups := make([]SkillMistakes, 0, len(order))
	for _, skillID := range order {
		group := bySkill[skillID]
		sort.SliceStable(group.Records, func(i, j int) bool {
			if group.Records[i].WrongCount != group.Records[j].WrongCount {
				return group.Records[i].WrongCount > group.Records[j].WrongCount
			}
			return group.Records[i].SentenceID < group.Records[j].SentenceID
		})
		groups = append(groups, *group)
	}
	sort.SliceStable(groups, func(i, j int) bool {
		if groups[i].WrongCount != groups[j].WrongCount {
			return groups[i].WrongCount > groups[j].WrongCount
		}
		return groups[i].SkillID < groups[j].SkillID
	})
	return groups
}
