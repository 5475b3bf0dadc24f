package assessment_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mio/bunpo/internal/assessment"
	"github.com/mio/bunpo/internal/models"
)

var sessionStart = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

func makeItems(n int) []models.AssessmentItem {
	items := make([]models.AssessmentItem, n)
	for i := range items {
		items[i] = models.AssessmentItem{
			ID:            fmt.Sprintf("item-%d", i),
			SentenceID:    fmt.Sprintf("s-%d", i),
			CorrectAnswer: fmt.Sprintf("skill-%d", i),
			Options:       []string{fmt.Sprintf("skill-%d", i), "other"},
		}
	}
	return items
}

func TestSession_StartState(t *testing.T) {
	s := assessment.NewSession(makeItems(3), sessionStart)

	assert.NotEmpty(t, s.ID)
	assert.Equal(t, 0, s.Index())
	assert.Equal(t, assessment.StateActive, s.State())
	assert.Nil(t, s.Result())
}

func TestSession_AnswerOverwrites(t *testing.T) {
	items := makeItems(2)
	s := assessment.NewSession(items, sessionStart)

	require.NoError(t, s.Answer(items[0].ID, "wrong"))
	require.NoError(t, s.Answer(items[0].ID, "skill-0"))
	assert.Equal(t, 0, s.Index(), "answering never advances the index")

	result := s.Submit(sessionStart.Add(30 * time.Second))
	assert.True(t, result.Items[0].Correct, "last write wins")
}

func TestSession_AnswerUnknownItem(t *testing.T) {
	s := assessment.NewSession(makeItems(1), sessionStart)
	assert.Error(t, s.Answer("nope", "choice"))
}

func TestSession_NavigationClamps(t *testing.T) {
	s := assessment.NewSession(makeItems(3), sessionStart)

	assert.Equal(t, 0, s.Previous())
	assert.Equal(t, 1, s.Next())
	assert.Equal(t, 2, s.Next())
	assert.Equal(t, 2, s.Next(), "next clamps at the last item")
	assert.Equal(t, 2, s.GoTo(50))
	assert.Equal(t, 0, s.GoTo(-3))
}

func TestSession_NavigationKeepsAnswers(t *testing.T) {
	items := makeItems(3)
	s := assessment.NewSession(items, sessionStart)

	require.NoError(t, s.Answer(items[1].ID, "skill-1"))
	s.GoTo(2)
	s.GoTo(0)

	result := s.Submit(sessionStart.Add(time.Minute))
	assert.True(t, result.Items[1].Correct)
}

func TestSession_SubmitScoresUnanswered(t *testing.T) {
	items := makeItems(10)
	s := assessment.NewSession(items, sessionStart)

	// Seven correct answers, three left unanswered.
	for i := 0; i < 7; i++ {
		require.NoError(t, s.Answer(items[i].ID, fmt.Sprintf("skill-%d", i)))
	}

	result := s.Submit(sessionStart.Add(95 * time.Second))

	assert.Equal(t, 10, result.Total)
	assert.Equal(t, 7, result.Correct)
	assert.InDelta(t, 0.7, result.Accuracy, 1e-9)
	assert.Equal(t, 95, result.ElapsedSeconds)
	for _, r := range result.Items[7:] {
		assert.False(t, r.Correct)
		assert.Empty(t, r.Answer, "unanswered items score as incorrect with an empty answer")
	}
	assert.Equal(t, assessment.StateCompleted, s.State())
}

func TestSession_SubmitIdempotent(t *testing.T) {
	items := makeItems(2)
	s := assessment.NewSession(items, sessionStart)
	require.NoError(t, s.Answer(items[0].ID, "skill-0"))

	first := s.Submit(sessionStart.Add(10 * time.Second))
	second := s.Submit(sessionStart.Add(5 * time.Minute))

	assert.Equal(t, first, second, "resubmission must not recompute the result")
	assert.Equal(t, 10, second.ElapsedSeconds)
}

func TestSession_AnswerAfterSubmitRejected(t *testing.T) {
	items := makeItems(1)
	s := assessment.NewSession(items, sessionStart)
	s.Submit(sessionStart.Add(time.Second))

	err := s.Answer(items[0].ID, "skill-0")
	assert.Error(t, err, "results are immutable after submission")
}

func TestSession_EmptySession(t *testing.T) {
	s := assessment.NewSession(nil, sessionStart)

	assert.Equal(t, 0, s.GoTo(3), "navigation on an empty session stays at 0")

	result := s.Submit(sessionStart.Add(2 * time.Second))
	assert.Equal(t, 0, result.Total)
	assert.Equal(t, 0, result.Correct)
	assert.Zero(t, result.Accuracy, "empty-denominator accuracy is 0, not NaN")
}

func TestSession_ElapsedIsAdvisory(t *testing.T) {
	s := assessment.NewSession(makeItems(1), sessionStart)

	assert.Equal(t, 3, s.Elapsed(sessionStart.Add(3*time.Second)))
	assert.Equal(t, 4, s.Elapsed(sessionStart.Add(4*time.Second)))

	result := s.Submit(sessionStart.Add(9 * time.Second))
	assert.Equal(t, 9, result.ElapsedSeconds, "scoring uses the instant of submit")
}
