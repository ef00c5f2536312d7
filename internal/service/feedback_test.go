package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/playsignal/feedback-api/internal/api/dto"
	"github.com/playsignal/feedback-api/internal/domain"
	"github.com/playsignal/feedback-api/internal/repository"
	"github.com/playsignal/feedback-api/internal/repository/memory"
)

type recordingBroadcaster struct {
	received []*domain.Feedback
}

func (b *recordingBroadcaster) BroadcastFeedback(feedback *domain.Feedback) {
	b.received = append(b.received, feedback)
}

type FeedbackServiceTestSuite struct {
	suite.Suite
	repo    repository.Repository
	service *FeedbackService
}

func (s *FeedbackServiceTestSuite) SetupTest() {
	s.repo = memory.NewMemoryRepository()
	s.service = NewFeedbackService(s.repo)
}

func TestFeedbackService(t *testing.T) {
	suite.Run(t, new(FeedbackServiceTestSuite))
}

func (s *FeedbackServiceTestSuite) submit(gameID string, req dto.CreateFeedbackRequest) *domain.Feedback {
	feedback, err := s.service.Create(context.Background(), gameID, req)
	s.Require().NoError(err)
	return feedback
}

func (s *FeedbackServiceTestSuite) TestCreateAppliesDefaults() {
	severity := "high"
	feedback := s.submit("game1", dto.CreateFeedbackRequest{
		Type:           domain.FeedbackTypeBugReport,
		IdentityOption: domain.IdentityOptionUserID,
		Body:           "The boss fight crashes on phase two",
		Severity:       &severity,
		Identity:       &dto.FeedbackIdentity{UserID: "player-42"},
	})

	s.NotEmpty(feedback.ID)
	s.Equal(domain.FeedbackStatusNew, feedback.Status)
	s.Equal([]string{}, feedback.Tags)
	s.JSONEq(`{"userId":"player-42"}`, string(feedback.Identity))
}

func (s *FeedbackServiceTestSuite) TestCreateNotifiesBroadcaster() {
	broadcaster := &recordingBroadcaster{}
	s.service.SetBroadcaster(broadcaster)

	feedback := s.submit("game1", dto.CreateFeedbackRequest{
		Type:           domain.FeedbackTypeGeneral,
		IdentityOption: domain.IdentityOptionAnonymous,
		Body:           "love the soundtrack",
	})

	s.Require().Len(broadcaster.received, 1)
	s.Equal(feedback.ID, broadcaster.received[0].ID)
}

func (s *FeedbackServiceTestSuite) TestListFiltersAndNeverReturnsNil() {
	empty, err := s.service.List(context.Background(), domain.FeedbackFilter{GameID: "game1"})
	s.NoError(err)
	s.NotNil(empty)
	s.Empty(empty)

	s.submit("game1", dto.CreateFeedbackRequest{
		Type:           domain.FeedbackTypeBugReport,
		IdentityOption: domain.IdentityOptionAnonymous,
		Body:           "crash on load",
	})
	s.submit("game1", dto.CreateFeedbackRequest{
		Type:           domain.FeedbackTypeFeatureRequest,
		IdentityOption: domain.IdentityOptionAnonymous,
		Body:           "add a photo mode",
	})
	s.submit("game2", dto.CreateFeedbackRequest{
		Type:           domain.FeedbackTypeBugReport,
		IdentityOption: domain.IdentityOptionAnonymous,
		Body:           "other game's bug",
	})

	bugs, err := s.service.List(context.Background(), domain.FeedbackFilter{
		GameID: "game1",
		Type:   domain.FeedbackTypeBugReport,
	})
	s.NoError(err)
	s.Require().Len(bugs, 1)
	s.Equal("crash on load", bugs[0].Body)
}

func (s *FeedbackServiceTestSuite) TestUpdateTriageAndNotesClearing() {
	ctx := context.Background()
	feedback := s.submit("game1", dto.CreateFeedbackRequest{
		Type:           domain.FeedbackTypeBugReport,
		IdentityOption: domain.IdentityOptionAnonymous,
		Body:           "crash on load",
	})

	status := domain.FeedbackStatusTriaged
	notes := "repro confirmed on 1.4.2"
	updated, err := s.service.Update(ctx, feedback.ID, "game1", domain.FeedbackUpdate{
		Status:            &status,
		DeveloperNotes:    &notes,
		DeveloperNotesSet: true,
	})
	s.NoError(err)
	s.Equal(domain.FeedbackStatusTriaged, updated.Status)
	s.Require().NotNil(updated.DeveloperNotes)
	s.Equal(notes, *updated.DeveloperNotes)

	// Explicit null clears the notes without touching the status.
	cleared, err := s.service.Update(ctx, feedback.ID, "game1", domain.FeedbackUpdate{
		DeveloperNotesSet: true,
	})
	s.NoError(err)
	s.Equal(domain.FeedbackStatusTriaged, cleared.Status)
	s.Nil(cleared.DeveloperNotes)
}

func (s *FeedbackServiceTestSuite) TestUpdateUnknownOrForeignFeedbackNotFound() {
	ctx := context.Background()
	feedback := s.submit("game1", dto.CreateFeedbackRequest{
		Type:           domain.FeedbackTypeBugReport,
		IdentityOption: domain.IdentityOptionAnonymous,
		Body:           "crash on load",
	})

	status := domain.FeedbackStatusResolved
	_, err := s.service.Update(ctx, "nope", "game1", domain.FeedbackUpdate{Status: &status})
	s.ErrorIs(err, ErrFeedbackNotFound)

	// Scoping by the wrong game behaves like a missing record.
	_, err = s.service.Update(ctx, feedback.ID, "game2", domain.FeedbackUpdate{Status: &status})
	s.ErrorIs(err, ErrFeedbackNotFound)
}

func (s *FeedbackServiceTestSuite) TestDeleteAndBulkDelete() {
	ctx := context.Background()
	first := s.submit("game1", dto.CreateFeedbackRequest{
		Type:           domain.FeedbackTypeBugReport,
		IdentityOption: domain.IdentityOptionAnonymous,
		Body:           "a",
	})
	second := s.submit("game1", dto.CreateFeedbackRequest{
		Type:           domain.FeedbackTypeGeneral,
		IdentityOption: domain.IdentityOptionAnonymous,
		Body:           "b",
	})
	foreign := s.submit("game2", dto.CreateFeedbackRequest{
		Type:           domain.FeedbackTypeGeneral,
		IdentityOption: domain.IdentityOptionAnonymous,
		Body:           "c",
	})

	s.NoError(s.service.Delete(ctx, first.ID, "game1"))
	s.ErrorIs(s.service.Delete(ctx, first.ID, "game1"), ErrFeedbackNotFound)

	// IDs from other games do not count toward the deleted total.
	deleted, err := s.service.BulkDelete(ctx, "game1", []string{second.ID, foreign.ID, "nope"})
	s.NoError(err)
	s.Equal(int64(1), deleted)

	remaining, err := s.service.List(ctx, domain.FeedbackFilter{GameID: "game2"})
	s.NoError(err)
	s.Len(remaining, 1)
}

func (s *FeedbackServiceTestSuite) TestStatsAggregation() {
	ctx := context.Background()
	severity := "critical"
	for i := 0; i < 3; i++ {
		s.submit("game1", dto.CreateFeedbackRequest{
			Type:           domain.FeedbackTypeBugReport,
			IdentityOption: domain.IdentityOptionAnonymous,
			Body:           "crash",
			Severity:       &severity,
		})
	}
	general := s.submit("game1", dto.CreateFeedbackRequest{
		Type:           domain.FeedbackTypeGeneral,
		IdentityOption: domain.IdentityOptionAnonymous,
		Body:           "nice",
	})

	status := domain.FeedbackStatusResolved
	_, err := s.service.Update(ctx, general.ID, "game1", domain.FeedbackUpdate{Status: &status})
	s.Require().NoError(err)

	stats, err := s.service.GetStats(ctx, "game1")
	s.NoError(err)
	s.Equal(int64(4), stats.Total)
	s.Equal(int64(3), stats.OpenCount)
	s.Equal(int64(1), stats.ResolvedCount)
	s.Equal(int64(75), stats.BugPct)
	s.Equal(int64(3), stats.ByType[domain.FeedbackTypeBugReport])
	s.Equal(int64(1), stats.ByStatus[domain.FeedbackStatusResolved])

	s.Require().Len(stats.Last7Days, 7)
	today := time.Now().Format("2006-01-02")
	s.Equal(today, stats.Last7Days[6].Date)
	s.Equal(int64(4), stats.Last7Days[6].Count)
}
