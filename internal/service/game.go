package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/google/uuid"

	"github.com/playsignal/feedback-api/internal/domain"
	"github.com/playsignal/feedback-api/internal/repository"
)

const apiKeyPrefix = "fb_"

// HashAPIKey returns the SHA-256 hex digest stored in place of the
// plaintext credential.
func HashAPIKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}

type GameService struct {
	repo repository.Repository

	// devAPIKey/devGameID are only set when the service runs without
	// persistent storage. They must stay empty otherwise.
	devAPIKey string
	devGameID string
}

func NewGameService(repo repository.Repository) *GameService {
	return &GameService{repo: repo}
}

// NewGameServiceWithDevBypass wires the fixed dev credential used in the
// no-database posture.
func NewGameServiceWithDevBypass(repo repository.Repository, devAPIKey, devGameID string) *GameService {
	return &GameService{repo: repo, devAPIKey: devAPIKey, devGameID: devGameID}
}

// GetByAPIKey resolves a raw credential to its game by hash equality.
// A missing or revoked key yields (nil, nil); the caller maps both to the
// same external error shape.
func (s *GameService) GetByAPIKey(ctx context.Context, apiKey string) (*domain.Game, error) {
	if apiKey == "" {
		return nil, nil
	}

	game, err := s.repo.Game().GetByAPIKeyHash(ctx, HashAPIKey(apiKey))
	if err != nil {
		return nil, err
	}
	if game != nil {
		return game, nil
	}

	if s.devAPIKey != "" && s.devGameID != "" && apiKey == s.devAPIKey {
		return &domain.Game{
			ID:   s.devGameID,
			Name: "Development Game",
		}, nil
	}

	return nil, nil
}

// Create registers a game and mints its API credential. The plaintext key is
// returned exactly once; only its hash is persisted.
func (s *GameService) Create(ctx context.Context, accountID, name string) (*domain.Game, string, error) {
	apiKey := apiKeyPrefix + strings.ReplaceAll(uuid.NewString(), "-", "")

	game := &domain.Game{
		ID:        uuid.NewString(),
		AccountID: accountID,
		Name:      name,
		Settings:  domain.GameSettings{},
	}

	if err := s.repo.Game().Create(ctx, game, HashAPIKey(apiKey)); err != nil {
		return nil, "", err
	}
	return game, apiKey, nil
}

func (s *GameService) GetByIDAndAccount(ctx context.Context, gameID, accountID string) (*domain.Game, error) {
	return s.repo.Game().GetByIDAndAccount(ctx, gameID, accountID)
}

func (s *GameService) ListByAccount(ctx context.Context, accountID string) ([]domain.Game, error) {
	return s.repo.Game().ListByAccount(ctx, accountID)
}
