package models

// AssessmentItem is a generated fill-in-the-blank question. Items are
// session-scoped and never persisted.
type AssessmentItem struct {
	ID            string   `json:"id"`
	SentenceID    string   `json:"sentence_id"`
	Lesson        int      `json:"lesson"`
	Prompt        string   `json:"prompt"`
	Translation   string   `json:"translation"`
	CorrectAnswer string   `json:"correct_answer"`
	Options       []string `json:"options"`
	Explanation   string   `json:"explanation"`
}

// ItemResult is the scored outcome of a single item.
type ItemResult struct {
	ItemID        string `json:"item_id"`
	SentenceID    string `json:"sentence_id"`
	SkillID       string `json:"skill_id"`
	Correct       bool   `json:"correct"`
	Answer        string `json:"answer"`
	CorrectAnswer string `json:"correct_answer"`
}

// SessionResult is the scored outcome of a full assessment session.
type SessionResult struct {
	SessionID      string       `json:"session_id"`
	Total          int          `json:"total"`
	Correct        int          `json:"correct"`
	Accuracy       float64      `json:"accuracy"`
	ElapsedSeconds int          `json:"elapsed_seconds"`
	Items          []ItemResult `json:"items"`
}
