package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/playsignal/feedback-api/internal/domain"
	"github.com/playsignal/feedback-api/internal/repository"
)

const (
	betaKeyPrefix    = "beta_"
	betaKeyBytes     = 16
	betaKeyMinLength = 20

	// betaKeyDisplayLength covers the prefix plus eight hex characters,
	// enough for an admin to tell keys apart without storing the secret.
	betaKeyDisplayLength = len(betaKeyPrefix) + 8
)

// BetaAccessService gates game creation on consumable invitation keys.
// Validation and consumption are separate calls; consumption delegates the
// check-and-increment to the storage layer so two racing callers can never
// spend the same last use twice. Storage failures always read as "invalid"
// to the caller; the gate never fails open.
type BetaAccessService struct {
	repo repository.Repository

	now func() time.Time
}

func NewBetaAccessService(repo repository.Repository) *BetaAccessService {
	return &BetaAccessService{repo: repo, now: time.Now}
}

// Validate checks the raw key without consuming a use. It returns the key's
// opaque identifier when the key is recognized, unexpired and has uses left,
// and "" otherwise. Malformed keys are rejected before any hashing or
// storage round trip.
func (s *BetaAccessService) Validate(ctx context.Context, rawKey string) (string, error) {
	if rawKey == "" || !strings.HasPrefix(rawKey, betaKeyPrefix) || len(rawKey) < betaKeyMinLength {
		return "", nil
	}

	sum := sha256.Sum256([]byte(rawKey))
	key, err := s.repo.BetaKey().FindValidByHash(ctx, hex.EncodeToString(sum[:]), s.now())
	if err != nil {
		return "", err
	}
	if key == nil || key.UsesCount >= key.MaxUses {
		return "", nil
	}
	return key.ID, nil
}

// Consume spends one use of the key. It reports false when a concurrent
// caller exhausted the key between Validate and Consume.
func (s *BetaAccessService) Consume(ctx context.Context, keyID string) (bool, error) {
	return s.repo.BetaKey().ConsumeUse(ctx, keyID)
}

// Create mints a new key and returns the plaintext once; only the hash and
// a short display prefix are stored.
func (s *BetaAccessService) Create(ctx context.Context, maxUses int, expiresAt time.Time) (string, *domain.BetaAccessKey, error) {
	raw := make([]byte, betaKeyBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", nil, fmt.Errorf("failed to generate beta key material: %w", err)
	}
	plaintext := betaKeyPrefix + hex.EncodeToString(raw)

	sum := sha256.Sum256([]byte(plaintext))
	key := &domain.BetaAccessKey{
		ID:        uuid.NewString(),
		KeyHash:   hex.EncodeToString(sum[:]),
		KeyPrefix: plaintext[:betaKeyDisplayLength],
		MaxUses:   maxUses,
		UsesCount: 0,
		ExpiresAt: expiresAt,
		CreatedAt: s.now(),
	}

	if err := s.repo.BetaKey().Create(ctx, key); err != nil {
		return "", nil, err
	}
	return plaintext, key, nil
}
