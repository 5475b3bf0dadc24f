package models

import "time"

// MasteryRecord tracks retention strength for a single skill. One record
// per skill; created on the first successful learning event, updated on
// every review outcome, never deleted. Absence of a record means the skill
// has never been learned.
type MasteryRecord struct {
	SkillID        string     `json:"skill_id"`
	LearnedAt      time.Time  `json:"learned_at"`
	LastReviewedAt *time.Time `json:"last_reviewed_at"`
	DueAt          time.Time  `json:"due_at"`
	ReviewCount    int        `json:"review_count"`
	Level          int        `json:"level"` // 1..5
}

// UserProgress is the singleton aggregate for the learner.
type UserProgress struct {
	LearnedSentences []string        `json:"learned_sentences"`
	Mastery          []MasteryRecord `json:"mastery"`
	CompletedLessons []int           `json:"completed_lessons"`
	StudySeconds     int64           `json:"study_seconds"`
	StreakDays       int             `json:"streak_days"`
	LastStudyAt      *time.Time      `json:"last_study_at"`
}

// CompletedLesson reports whether the lesson id is in the completed set.
func (p *UserProgress) CompletedLesson(id int) bool {
	for _, l := range p.CompletedLessons {
		if l == id {
			return true
		}
	}
	return false
}
