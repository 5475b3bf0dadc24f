package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/mio/bunpo/internal/models"
	"github.com/mio/bunpo/internal/testutil/mocks"
)

type MistakeServiceSuite struct {
	suite.Suite
	repo *mocks.MockMistakeRepository
	svc  *mistakeService
	now  time.Time
}

func (s *MistakeServiceSuite) SetupTest() {
	s.repo = new(mocks.MockMistakeRepository)
	s.now = time.Date(2026, 4, 2, 15, 30, 0, 0, time.UTC)
	s.svc = &mistakeService{
		repo:  s.repo,
		locks: newKeyedMutex(),
		now:   func() time.Time { return s.now },
	}
}

func (s *MistakeServiceSuite) TestRecordOutcome_WrongOpensRecord() {
	ctx := context.Background()
	s.repo.On("Get", ctx, "s1").Return(nil, nil)
	s.repo.On("Upsert", ctx, mock.MatchedBy(func(rec models.MistakeRecord) bool {
		return rec.SentenceID == "s1" && rec.WrongCount == 1 && !rec.Resolved
	})).Return(nil)

	err := s.svc.RecordOutcome(ctx, "s1", "〜ばかりだ", false)
	s.Require().NoError(err)
	s.repo.AssertExpectations(s.T())
}

func (s *MistakeServiceSuite) TestRecordOutcome_CorrectWithoutRecordIsNoop() {
	ctx := context.Background()
	s.repo.On("Get", ctx, "s1").Return(nil, nil)

	err := s.svc.RecordOutcome(ctx, "s1", "〜ばかりだ", true)
	s.Require().NoError(err)
	s.repo.AssertNotCalled(s.T(), "Upsert", mock.Anything, mock.Anything)
}

func (s *MistakeServiceSuite) TestRecordOutcome_ThirdCorrectResolves() {
	ctx := context.Background()
	prev := &models.MistakeRecord{
		SentenceID:    "s1",
		SkillID:       "〜ばかりだ",
		WrongCount:    2,
		LastWrongAt:   s.now.AddDate(0, 0, -1),
		CorrectStreak: 2,
	}
	s.repo.On("Get", ctx, "s1").Return(prev, nil)
	s.repo.On("Upsert", ctx, mock.MatchedBy(func(rec models.MistakeRecord) bool {
		return rec.CorrectStreak == 3 && rec.Resolved
	})).Return(nil)

	err := s.svc.RecordOutcome(ctx, "s1", "〜ばかりだ", true)
	s.Require().NoError(err)
	s.repo.AssertExpectations(s.T())
}

func (s *MistakeServiceSuite) TestRecordOutcome_WrongResetsStreak() {
	ctx := context.Background()
	prev := &models.MistakeRecord{
		SentenceID:    "s1",
		SkillID:       "〜ばかりだ",
		WrongCount:    1,
		LastWrongAt:   s.now.AddDate(0, 0, -2),
		CorrectStreak: 2,
	}
	s.repo.On("Get", ctx, "s1").Return(prev, nil)
	s.repo.On("Upsert", ctx, mock.MatchedBy(func(rec models.MistakeRecord) bool {
		return rec.WrongCount == 2 && rec.CorrectStreak == 0 && !rec.Resolved
	})).Return(nil)

	err := s.svc.RecordOutcome(ctx, "s1", "〜ばかりだ", false)
	s.Require().NoError(err)
	s.repo.AssertExpectations(s.T())
}

func (s *MistakeServiceSuite) TestUnresolvedBySkill_GroupsByTotalWrong() {
	ctx := context.Background()
	s.repo.On("ListUnresolved", ctx).Return([]models.MistakeRecord{
		{SentenceID: "s1", SkillID: "〜ばかりだ", WrongCount: 2, LastWrongAt: s.now},
		{SentenceID: "s2", SkillID: "〜うちに", WrongCount: 5, LastWrongAt: s.now},
		{SentenceID: "s3", SkillID: "〜ばかりだ", WrongCount: 1, LastWrongAt: s.now},
	}, nil)

	groups, err := s.svc.UnresolvedBySkill(ctx)
	s.Require().NoError(err)
	s.Require().Len(groups, 2)
	s.Assert().Equal("〜うちに", groups[0].SkillID)
	s.Assert().Equal(5, groups[0].WrongCount)
	s.Assert().Equal("〜ばかりだ", groups[1].SkillID)
	s.Assert().Equal(3, groups[1].WrongCount)
	s.Assert().Equal("s1", groups[1].Records[0].SentenceID)
}

func TestMistakeServiceSuite(t *testing.T) {
	suite.Run(t, new(MistakeServiceSuite))
}
