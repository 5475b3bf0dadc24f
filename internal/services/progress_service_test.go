package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/mio/bunpo/internal/apperr"
	"github.com/mio/bunpo/internal/models"
	"github.com/mio/bunpo/internal/repository/sqlite"
	"github.com/mio/bunpo/internal/testutil"
	"github.com/mio/bunpo/internal/testutil/mocks"
)

type ProgressServiceSuite struct {
	suite.Suite
	catalog  *mocks.MockCatalogRepository
	progress *mocks.MockProgressRepository
	svc      *progressService
	now      time.Time
}

func (s *ProgressServiceSuite) SetupTest() {
	s.catalog = new(mocks.MockCatalogRepository)
	s.progress = new(mocks.MockProgressRepository)
	s.now = time.Date(2026, 4, 2, 15, 30, 0, 0, time.UTC)
	s.svc = &progressService{
		catalog:  s.catalog,
		progress: s.progress,
		now:      func() time.Time { return s.now },
	}
}

func (s *ProgressServiceSuite) TestLessons_UnlockChainAndCompletionRate() {
	ctx := context.Background()
	s.catalog.On("ListLessons", ctx).Return([]models.Lesson{
		{ID: 1, Title: "はじめまして"},
		{ID: 2, Title: "買い物"},
		{ID: 3, Title: "旅行"},
	}, nil)
	s.progress.On("GetProgress", ctx).Return(&models.UserProgress{
		LearnedSentences: []string{"s1", "s3"},
		CompletedLessons: []int{1},
	}, nil)
	s.catalog.On("GetSentencesByLesson", ctx, 1).Return([]models.Sentence{
		{ID: "s1", Lesson: 1}, {ID: "s2", Lesson: 1},
	}, nil)
	s.catalog.On("GetSentencesByLesson", ctx, 2).Return([]models.Sentence{
		{ID: "s3", Lesson: 2}, {ID: "s4", Lesson: 2}, {ID: "s5", Lesson: 2}, {ID: "s6", Lesson: 2},
	}, nil)
	s.catalog.On("GetSentencesByLesson", ctx, 3).Return([]models.Sentence{}, nil)

	lessons, err := s.svc.Lessons(ctx)
	s.Require().NoError(err)
	s.Require().Len(lessons, 3)

	s.Assert().True(lessons[0].Unlocked)
	s.Assert().True(lessons[0].Completed)
	s.Assert().InDelta(0.5, lessons[0].CompletionRate, 1e-9)

	s.Assert().True(lessons[1].Unlocked, "completing lesson 1 unlocks lesson 2")
	s.Assert().False(lessons[1].Completed)
	s.Assert().InDelta(0.25, lessons[1].CompletionRate, 1e-9)

	s.Assert().False(lessons[2].Unlocked)
	s.Assert().Zero(lessons[2].CompletionRate, "empty lesson never divides by zero")
}

func (s *ProgressServiceSuite) TestCompleteLesson_UnknownLesson() {
	ctx := context.Background()
	s.catalog.On("GetSkillsByLesson", ctx, 42).Return([]models.GrammarPoint{}, nil)

	err := s.svc.CompleteLesson(ctx, 42)
	var appErr *apperr.Error
	s.Require().ErrorAs(err, &appErr)
	s.Assert().Equal(apperr.CodeNotFound, appErr.Code)
	s.progress.AssertNotCalled(s.T(), "MarkLessonCompleted", mock.Anything, mock.Anything)
}

func (s *ProgressServiceSuite) TestCompleteLesson() {
	ctx := context.Background()
	s.catalog.On("GetSkillsByLesson", ctx, 2).Return([]models.GrammarPoint{{ID: "〜うちに", Lesson: 2}}, nil)
	s.progress.On("MarkLessonCompleted", ctx, 2).Return(nil)

	s.Require().NoError(s.svc.CompleteLesson(ctx, 2))
	s.progress.AssertExpectations(s.T())
}

func (s *ProgressServiceSuite) TestRecordStudy_FirstEverStudyStartsStreak() {
	ctx := context.Background()
	s.progress.On("GetProgress", ctx).Return(&models.UserProgress{}, nil)
	s.progress.On("UpdateStudy", ctx, int64(120), 1, s.now).Return(nil)

	s.Require().NoError(s.svc.RecordStudy(ctx, 120))
	s.progress.AssertExpectations(s.T())
}

func (s *ProgressServiceSuite) TestRecordStudy_SameDayKeepsStreak() {
	ctx := context.Background()
	earlier := s.now.Add(-3 * time.Hour)
	s.progress.On("GetProgress", ctx).Return(&models.UserProgress{
		StreakDays:  4,
		LastStudyAt: &earlier,
	}, nil)
	s.progress.On("UpdateStudy", ctx, int64(60), 4, s.now).Return(nil)

	s.Require().NoError(s.svc.RecordStudy(ctx, 60))
	s.progress.AssertExpectations(s.T())
}

func (s *ProgressServiceSuite) TestRecordStudy_YesterdayExtendsStreak() {
	ctx := context.Background()
	yesterday := s.now.AddDate(0, 0, -1)
	s.progress.On("GetProgress", ctx).Return(&models.UserProgress{
		StreakDays:  4,
		LastStudyAt: &yesterday,
	}, nil)
	s.progress.On("UpdateStudy", ctx, int64(60), 5, s.now).Return(nil)

	s.Require().NoError(s.svc.RecordStudy(ctx, 60))
	s.progress.AssertExpectations(s.T())
}

func (s *ProgressServiceSuite) TestRecordStudy_GapResetsStreak() {
	ctx := context.Background()
	lastWeek := s.now.AddDate(0, 0, -6)
	s.progress.On("GetProgress", ctx).Return(&models.UserProgress{
		StreakDays:  12,
		LastStudyAt: &lastWeek,
	}, nil)
	s.progress.On("UpdateStudy", ctx, int64(60), 1, s.now).Return(nil)

	s.Require().NoError(s.svc.RecordStudy(ctx, 60))
	s.progress.AssertExpectations(s.T())
}

func (s *ProgressServiceSuite) TestRecordStudy_StreakSurvivesStorageRoundTrip() {
	// Timestamps come back from sqlite in a different location than the
	// local clock; the streak must still see "yesterday" and "today".
	db := testutil.NewTestDB(s.T())
	defer testutil.MustClose(s.T(), db)
	repo := sqlite.NewProgressRepository(db)

	loc := time.FixedZone("UTC-4", -4*60*60)
	now := time.Date(2026, 8, 30, 15, 30, 0, 0, loc)
	svc := &progressService{
		catalog:  s.catalog,
		progress: repo,
		now:      func() time.Time { return now },
	}

	ctx := context.Background()
	s.Require().NoError(repo.UpdateStudy(ctx, 60, 3, now.AddDate(0, 0, -1)))

	s.Require().NoError(svc.RecordStudy(ctx, 120))

	progress, err := repo.GetProgress(ctx)
	s.Require().NoError(err)
	s.Assert().Equal(4, progress.StreakDays, "studying the day after extends the stored streak")
	s.Assert().Equal(int64(180), progress.StudySeconds)

	// Same day again: streak holds.
	s.Require().NoError(svc.RecordStudy(ctx, 30))
	progress, err = repo.GetProgress(ctx)
	s.Require().NoError(err)
	s.Assert().Equal(4, progress.StreakDays)
}

func (s *ProgressServiceSuite) TestRecordStudy_NegativeSeconds() {
	err := s.svc.RecordStudy(context.Background(), -5)
	var appErr *apperr.Error
	s.Require().ErrorAs(err, &appErr)
	s.Assert().Equal(apperr.CodeValidation, appErr.Code)
}

func TestProgressServiceSuite(t *testing.T) {
	suite.Run(t, new(ProgressServiceSuite))
}
