package services

import (
	"context"
	"math/rand"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/mio/bunpo/internal/apperr"
	"github.com/mio/bunpo/internal/assessment"
	"github.com/mio/bunpo/internal/mistakes"
	"github.com/mio/bunpo/internal/models"
	"github.com/mio/bunpo/internal/testutil/mocks"
)

// fakeCatalog is a deterministic in-memory catalog for generator-backed
// service tests. Results come back in id order.
type fakeCatalog struct {
	skills    map[string]models.GrammarPoint
	sentences []models.Sentence
}

func (f *fakeCatalog) GetSkill(_ context.Context, skillID string) (*models.GrammarPoint, error) {
	if skill, ok := f.skills[skillID]; ok {
		return &skill, nil
	}
	return nil, nil
}

func (f *fakeCatalog) GetSkillsByLesson(_ context.Context, lessonID int) ([]models.GrammarPoint, error) {
	ids := make([]string, 0, len(f.skills))
	for id, skill := range f.skills {
		if skill.Lesson == lessonID {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	out := make([]models.GrammarPoint, 0, len(ids))
	for _, id := range ids {
		out = append(out, f.skills[id])
	}
	return out, nil
}

func (f *fakeCatalog) GetSentence(_ context.Context, sentenceID string) (*models.Sentence, error) {
	for _, s := range f.sentences {
		if s.ID == sentenceID {
			return &s, nil
		}
	}
	return nil, nil
}

func (f *fakeCatalog) GetSentencesBySkill(_ context.Context, skillID string) ([]models.Sentence, error) {
	var out []models.Sentence
	for _, s := range f.sentences {
		if s.SkillID == skillID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeCatalog) GetSentencesByLesson(_ context.Context, lessonID int) ([]models.Sentence, error) {
	var out []models.Sentence
	for _, s := range f.sentences {
		if s.Lesson == lessonID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeCatalog) ListLessons(_ context.Context) ([]models.Lesson, error) {
	return nil, nil
}

func (f *fakeCatalog) CountSentences(_ context.Context) (int, error) {
	return len(f.sentences), nil
}

type reviewCall struct {
	skillID string
	correct bool
}

type stubReviewService struct {
	due   []models.MasteryRecord
	calls []reviewCall
}

func (s *stubReviewService) RecordReview(_ context.Context, skillID string, correct bool) (*models.MasteryRecord, error) {
	s.calls = append(s.calls, reviewCall{skillID: skillID, correct: correct})
	return nil, nil
}

func (s *stubReviewService) DueReviews(_ context.Context) ([]models.MasteryRecord, error) {
	return s.due, nil
}

type stubMistakeService struct {
	calls []reviewCall
}

func (s *stubMistakeService) RecordOutcome(_ context.Context, _, skillID string, correct bool) error {
	s.calls = append(s.calls, reviewCall{skillID: skillID, correct: correct})
	return nil
}

func (s *stubMistakeService) UnresolvedBySkill(_ context.Context) ([]mistakes.SkillMistakes, error) {
	return nil, nil
}

type stubProgressService struct {
	studySeconds []int64
}

func (s *stubProgressService) Overview(_ context.Context) (*models.UserProgress, error) { return nil, nil }
func (s *stubProgressService) Lessons(_ context.Context) ([]models.Lesson, error)       { return nil, nil }
func (s *stubProgressService) CompleteLesson(_ context.Context, _ int) error            { return nil }
func (s *stubProgressService) RecordStudy(_ context.Context, seconds int64) error {
	s.studySeconds = append(s.studySeconds, seconds)
	return nil
}

type AssessmentServiceSuite struct {
	suite.Suite
	catalog      *fakeCatalog
	progressRepo *mocks.MockProgressRepository
	reviews      *stubReviewService
	mistakes     *stubMistakeService
	study        *stubProgressService
	svc          *assessmentService
	now          time.Time
}

func (s *AssessmentServiceSuite) SetupTest() {
	s.catalog = &fakeCatalog{
		skills: map[string]models.GrammarPoint{
			"〜ばかりだ": {ID: "〜ばかりだ", Lesson: 1, Explanation: "keeps on"},
			"〜うちに":  {ID: "〜うちに", Lesson: 1, Explanation: "while"},
			"〜てしまう": {ID: "〜てしまう", Lesson: 2, Explanation: "regrettably"},
		},
		sentences: []models.Sentence{
			{ID: "s1", Lesson: 1, SkillID: "〜ばかりだ", Text: "寒くなる〜ばかりだ。"},
			{ID: "s2", Lesson: 1, SkillID: "〜ばかりだ", Text: "増える〜ばかりだ。"},
			{ID: "s3", Lesson: 1, SkillID: "〜うちに", Text: "明るい〜うちに帰る。"},
			{ID: "s4", Lesson: 2, SkillID: "〜てしまう", Text: "食べ〜てしまう。"},
		},
	}
	s.progressRepo = new(mocks.MockProgressRepository)
	s.reviews = &stubReviewService{}
	s.mistakes = &stubMistakeService{}
	s.study = &stubProgressService{}
	s.now = time.Date(2026, 4, 2, 15, 30, 0, 0, time.UTC)
	s.svc = &assessmentService{
		generator:    assessment.NewGenerator(s.catalog, rand.New(rand.NewSource(7))),
		reviews:      s.reviews,
		mistakes:     s.mistakes,
		progress:     s.progressRepo,
		study:        s.study,
		now:          func() time.Time { return s.now },
		sessions:     make(map[string]*assessment.Session),
		maxCompleted: maxCompletedSessions,
	}
}

func (s *AssessmentServiceSuite) TestStartLessonSession() {
	ctx := context.Background()
	view, err := s.svc.StartLessonSession(ctx, 1, 3)
	s.Require().NoError(err)
	s.Require().NotNil(view)
	s.Assert().Equal("active", view.State)
	s.Assert().Equal(0, view.Index)
	s.Assert().Equal(3, view.Total)
	s.Require().Len(view.Items, 3)

	got, err := s.svc.Session(ctx, view.SessionID)
	s.Require().NoError(err)
	s.Assert().Equal(view.SessionID, got.SessionID)
}

func (s *AssessmentServiceSuite) TestStartLessonSession_InvalidCount() {
	_, err := s.svc.StartLessonSession(context.Background(), 1, 0)
	var appErr *apperr.Error
	s.Require().ErrorAs(err, &appErr)
	s.Assert().Equal(apperr.CodeValidation, appErr.Code)
}

func (s *AssessmentServiceSuite) TestAnswer_UnknownSession() {
	err := s.svc.Answer(context.Background(), "nope", "item", "choice")
	var appErr *apperr.Error
	s.Require().ErrorAs(err, &appErr)
	s.Assert().Equal(apperr.CodeNotFound, appErr.Code)
}

func (s *AssessmentServiceSuite) TestNavigationClamps() {
	ctx := context.Background()
	view, err := s.svc.StartLessonSession(ctx, 1, 3)
	s.Require().NoError(err)

	view, err = s.svc.GoTo(ctx, view.SessionID, 99)
	s.Require().NoError(err)
	s.Assert().Equal(2, view.Index)

	view, err = s.svc.Next(ctx, view.SessionID)
	s.Require().NoError(err)
	s.Assert().Equal(2, view.Index, "next at the last item stays put")

	view, err = s.svc.Previous(ctx, view.SessionID)
	s.Require().NoError(err)
	s.Assert().Equal(1, view.Index)
}

func (s *AssessmentServiceSuite) TestSubmit_FoldsOutcomesOnce() {
	ctx := context.Background()
	view, err := s.svc.StartLessonSession(ctx, 1, 3)
	s.Require().NoError(err)

	s.progressRepo.On("MarkSentenceLearned", ctx, mock.AnythingOfType("string")).Return(nil)

	// Two right, one wrong.
	for i, item := range view.Items {
		answer := item.CorrectAnswer
		if i == 2 {
			answer = "〜てしまう"
			if answer == item.CorrectAnswer {
				answer = "〜うちに"
			}
		}
		s.Require().NoError(s.svc.Answer(ctx, view.SessionID, item.ID, answer))
	}

	s.now = s.now.Add(95 * time.Second)
	result, err := s.svc.Submit(ctx, view.SessionID)
	s.Require().NoError(err)
	s.Assert().Equal(3, result.Total)
	s.Assert().Equal(2, result.Correct)
	s.Assert().Equal(95, result.ElapsedSeconds)

	s.Assert().Len(s.reviews.calls, 3, "every item feeds the scheduler")
	s.Assert().Len(s.mistakes.calls, 3, "every item feeds the mistake tracker")
	s.Assert().Equal([]int64{95}, s.study.studySeconds)

	learned := 0
	for _, call := range s.progressRepo.Calls {
		if call.Method == "MarkSentenceLearned" {
			learned++
		}
	}
	s.Assert().Equal(2, learned, "only correct answers mark sentences learned")
}

func (s *AssessmentServiceSuite) TestSubmit_SecondCallReturnsStoredResult() {
	ctx := context.Background()
	view, err := s.svc.StartLessonSession(ctx, 1, 2)
	s.Require().NoError(err)

	first, err := s.svc.Submit(ctx, view.SessionID)
	s.Require().NoError(err)
	foldCalls := len(s.reviews.calls)

	s.now = s.now.Add(30 * time.Second)
	second, err := s.svc.Submit(ctx, view.SessionID)
	s.Require().NoError(err)
	s.Assert().Equal(first.ElapsedSeconds, second.ElapsedSeconds)
	s.Assert().Equal(first, second)
	s.Assert().Len(s.reviews.calls, foldCalls, "side effects run only on the first submit")
	s.Assert().Equal([]int64{int64(first.ElapsedSeconds)}, s.study.studySeconds)
}

func (s *AssessmentServiceSuite) TestSubmit_RejectsLateAnswers() {
	ctx := context.Background()
	view, err := s.svc.StartLessonSession(ctx, 1, 2)
	s.Require().NoError(err)

	_, err = s.svc.Submit(ctx, view.SessionID)
	s.Require().NoError(err)

	err = s.svc.Answer(ctx, view.SessionID, view.Items[0].ID, "〜うちに")
	var appErr *apperr.Error
	s.Require().ErrorAs(err, &appErr)
	s.Assert().Equal(apperr.CodeValidation, appErr.Code)
}

func (s *AssessmentServiceSuite) TestSubmit_EvictsOldestCompletedSessionBeyondCap() {
	ctx := context.Background()
	s.svc.maxCompleted = 2
	s.progressRepo.On("MarkSentenceLearned", ctx, mock.AnythingOfType("string")).Return(nil)

	var ids []string
	for i := 0; i < 3; i++ {
		view, err := s.svc.StartLessonSession(ctx, 1, 2)
		s.Require().NoError(err)
		ids = append(ids, view.SessionID)
		_, err = s.svc.Submit(ctx, view.SessionID)
		s.Require().NoError(err)
	}

	_, err := s.svc.Session(ctx, ids[0])
	var appErr *apperr.Error
	s.Require().ErrorAs(err, &appErr)
	s.Assert().Equal(apperr.CodeNotFound, appErr.Code, "the oldest completed session is evicted")

	// The retained ones still answer idempotently.
	foldCalls := len(s.reviews.calls)
	result, err := s.svc.Submit(ctx, ids[2])
	s.Require().NoError(err)
	s.Assert().Equal(ids[2], result.SessionID)
	s.Assert().Len(s.reviews.calls, foldCalls, "re-submit of a retained session has no side effects")
}

func (s *AssessmentServiceSuite) TestStartMixedSession_EmptyScopeUsesCompletedLessons() {
	ctx := context.Background()
	s.progressRepo.On("GetProgress", ctx).Return(&models.UserProgress{
		CompletedLessons: []int{1},
	}, nil)

	view, err := s.svc.StartMixedSession(ctx, 10, nil)
	s.Require().NoError(err)
	s.Require().Len(view.Items, 3, "scope resolves to lesson 1's three sentences")
	for _, item := range view.Items {
		s.Assert().Equal(1, item.Lesson)
	}
}

func (s *AssessmentServiceSuite) TestStartReviewSession_UsesDueSkills() {
	ctx := context.Background()
	s.reviews.due = []models.MasteryRecord{
		{SkillID: "〜てしまう", Level: 2},
	}

	view, err := s.svc.StartReviewSession(ctx, 5)
	s.Require().NoError(err)
	s.Require().Len(view.Items, 1)
	s.Assert().Equal("〜てしまう", view.Items[0].CorrectAnswer)
}

func TestAssessmentServiceSuite(t *testing.T) {
	suite.Run(t, new(AssessmentServiceSuite))
}
