package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/playsignal/feedback-api/internal/repository"
	"github.com/playsignal/feedback-api/internal/repository/memory"
)

type GameServiceTestSuite struct {
	suite.Suite
	repo    repository.Repository
	service *GameService
}

func (s *GameServiceTestSuite) SetupTest() {
	s.repo = memory.NewMemoryRepository()
	s.service = NewGameService(s.repo)
}

func TestGameService(t *testing.T) {
	suite.Run(t, new(GameServiceTestSuite))
}

func (s *GameServiceTestSuite) TestCreateMintsKeyShownOnce() {
	ctx := context.Background()

	game, apiKey, err := s.service.Create(ctx, "acct1", "Starfall Arena")
	s.NoError(err)
	s.True(strings.HasPrefix(apiKey, "fb_"))
	s.Equal("acct1", game.AccountID)
	s.Equal("Starfall Arena", game.Name)
	s.NotEmpty(game.ID)
}

func (s *GameServiceTestSuite) TestStoredCredentialIsIrreversible() {
	ctx := context.Background()

	game, apiKey, err := s.service.Create(ctx, "acct1", "Starfall Arena")
	s.NoError(err)

	// The plaintext used as a literal lookup key finds nothing.
	byPlaintext, err := s.repo.Game().GetByAPIKeyHash(ctx, apiKey)
	s.NoError(err)
	s.Nil(byPlaintext)

	// Its digest finds the game.
	byHash, err := s.repo.Game().GetByAPIKeyHash(ctx, HashAPIKey(apiKey))
	s.NoError(err)
	s.NotNil(byHash)
	s.Equal(game.ID, byHash.ID)
}

func (s *GameServiceTestSuite) TestGetByAPIKeyResolvesGame() {
	ctx := context.Background()

	game, apiKey, err := s.service.Create(ctx, "acct1", "Starfall Arena")
	s.NoError(err)

	resolved, err := s.service.GetByAPIKey(ctx, apiKey)
	s.NoError(err)
	s.NotNil(resolved)
	s.Equal(game.ID, resolved.ID)

	unknown, err := s.service.GetByAPIKey(ctx, "fb_doesnotexist")
	s.NoError(err)
	s.Nil(unknown)

	empty, err := s.service.GetByAPIKey(ctx, "")
	s.NoError(err)
	s.Nil(empty)
}

func (s *GameServiceTestSuite) TestDevBypassOnlyWhenWired() {
	ctx := context.Background()

	dev := NewGameServiceWithDevBypass(memory.NewMemoryRepository(), "fb_devkey", "dev-game")
	game, err := dev.GetByAPIKey(ctx, "fb_devkey")
	s.NoError(err)
	s.NotNil(game)
	s.Equal("dev-game", game.ID)

	// Without the bypass the same key is just an unknown credential.
	plain := NewGameService(memory.NewMemoryRepository())
	game, err = plain.GetByAPIKey(ctx, "fb_devkey")
	s.NoError(err)
	s.Nil(game)
}

func (s *GameServiceTestSuite) TestOwnershipScopedLookup() {
	ctx := context.Background()

	game, _, err := s.service.Create(ctx, "acct1", "Starfall Arena")
	s.NoError(err)

	owned, err := s.service.GetByIDAndAccount(ctx, game.ID, "acct1")
	s.NoError(err)
	s.NotNil(owned)

	foreign, err := s.service.GetByIDAndAccount(ctx, game.ID, "acct2")
	s.NoError(err)
	s.Nil(foreign)
}
