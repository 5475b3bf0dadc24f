package assessment

import (
	"time"

	"github.com/google/uuid"

	"github.com/mio/bunpo/internal/apperr"
	"github.com/mio/bunpo/internal/models"
)

// State is the lifecycle state of a session.
type State int

const (
	// StateActive accepts answers and navigation.
	StateActive State = iota
	// StateCompleted holds an immutable result. The only way forward is a
	// brand-new session.
	StateCompleted
)

// Session is a single-learner answer session over a fixed item list. It is
// not internally synchronized; callers serialize access.
type Session struct {
	ID        string
	StartedAt time.Time

	items   []models.AssessmentItem
	index   int
	answers map[string]string
	state   State
	result  *models.SessionResult
}

// NewSession starts a session over items at index 0 with an empty answer
// map. The wall-clock start is captured immediately.
func NewSession(items []models.AssessmentItem, now time.Time) *Session {
	return &Session{
		ID:        uuid.NewString(),
		StartedAt: now,
		items:     items,
		answers:   make(map[string]string, len(items)),
		state:     StateActive,
	}
}

// Items returns the session's item list.
func (s *Session) Items() []models.AssessmentItem { return s.items }

// Index returns the current item index.
func (s *Session) Index() int { return s.index }

// State returns the lifecycle state.
func (s *Session) State() State { return s.state }

// Answer records choice for itemID. Re-answering before submission
// replaces the prior choice; the index does not advance. Answers are
// rejected once the session is completed.
func (s *Session) Answer(itemID, choice string) error {
	if s.state == StateCompleted {
		return apperr.NewValidation("session", "session is already submitted")
	}
	if !s.hasItem(itemID) {
		return apperr.NewNotFound("item", itemID)
	}
	s.answers[itemID] = choice
	return nil
}

// GoTo moves the cursor to index, clamped to the item range. Navigation
// never touches recorded answers.
func (s *Session) GoTo(index int) int {
	if index < 0 {
		index = 0
	}
	if max := len(s.items) - 1; index > max {
		index = max
	}
	if index < 0 {
		index = 0 // empty session
	}
	s.index = index
	return s.index
}

// Next advances the cursor by one, clamped.
func (s *Session) Next() int { return s.GoTo(s.index + 1) }

// Previous moves the cursor back by one, clamped.
func (s *Session) Previous() int { return s.GoTo(s.index - 1) }

// Elapsed reports whole seconds since the session started. This feeds the
// advisory UI tick only; scoring uses the instant of the first Submit.
func (s *Session) Elapsed(now time.Time) int {
	return int(now.Sub(s.StartedAt).Seconds())
}

// Submit scores every item, treating unanswered ones as incorrect with an
// empty answer, and transitions to Completed. Submit is idempotent:
// subsequent calls return the stored result without recomputing.
func (s *Session) Submit(now time.Time) models.SessionResult {
	if s.result != nil {
		return *s.result
	}

	result := models.SessionResult{
		SessionID:      s.ID,
		Total:          len(s.items),
		ElapsedSeconds: s.Elapsed(now),
		Items:          make([]models.ItemResult, 0, len(s.items)),
	}
	for _, item := range s.items {
		answer := s.answers[item.ID]
		correct := answer == item.CorrectAnswer
		if correct {
			result.Correct++
		}
		result.Items = append(result.Items, models.ItemResult{
			ItemID:        item.ID,
			SentenceID:    item.SentenceID,
			SkillID:       item.CorrectAnswer,
			Correct:       correct,
			Answer:        answer,
			CorrectAnswer: item.CorrectAnswer,
		})
	}
	if result.Total > 0 {
		result.Accuracy = float64(result.Correct) / float64(result.Total)
	}

	s.state = StateCompleted
	s.result = &result
	return result
}

// Result returns the stored result, or nil while the session is active.
func (s *Session) Result() *models.SessionResult { return s.result }

func (s *Session) hasItem(itemID string) bool {
	for _, item := range s.items {
		if item.ID == itemID {
			return true
		}
	}
	return false
}
