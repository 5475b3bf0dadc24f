package models

// Sentence is an example sentence from the content catalog. Catalog data
// is immutable once imported.
type Sentence struct {
	ID          string `json:"id"`
	Lesson      int    `json:"lesson"`
	SkillID     string `json:"skill_id"`
	Text        string `json:"text"`
	Translation string `json:"translation"`
	Note        string `json:"note"`
}

// GrammarPoint is a learnable skill. The ID doubles as the surface text of
// the grammar pattern (e.g. "〜ばかりだ") and must be unique.
type GrammarPoint struct {
	ID          string   `json:"id"`
	Lesson      int      `json:"lesson"`
	Explanation string   `json:"explanation"`
	SentenceIDs []string `json:"sentence_ids,omitempty"`
}

// Lesson groups grammar points presented together. Unlocked, Completed and
// CompletionRate are derived from learner progress, not stored catalog data.
type Lesson struct {
	ID             int      `json:"id"`
	Title          string   `json:"title"`
	SkillIDs       []string `json:"skill_ids"`
	Unlocked       bool     `json:"unlocked"`
	Completed      bool     `json:"completed"`
	CompletionRate float64  `json:"completion_rate"`
}
