package models

import "time"

// MistakeRecord tracks recurring mistakes for a single sentence. A record
// is opened on the first wrong answer and kept for history after it is
// resolved by three consecutive correct answers.
type MistakeRecord struct {
	SentenceID    string    `json:"sentence_id"`
	SkillID       string    `json:"skill_id"`
	WrongCount    int       `json:"wrong_count"`
	LastWrongAt   time.Time `json:"last_wrong_at"`
	CorrectStreak int       `json:"correct_streak"`
	Resolved      bool      `json:"resolved"`
}
