package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/playsignal/feedback-api/internal/domain"
	"github.com/playsignal/feedback-api/internal/repository"
	"github.com/playsignal/feedback-api/internal/repository/memory"
)

var errStoreDown = errors.New("store down")

// brokenBetaKeyStore fails every call, standing in for an unreachable
// database.
type brokenBetaKeyStore struct{}

func (brokenBetaKeyStore) Create(ctx context.Context, key *domain.BetaAccessKey) error {
	return errStoreDown
}

func (brokenBetaKeyStore) FindValidByHash(ctx context.Context, keyHash string, now time.Time) (*domain.BetaAccessKey, error) {
	return nil, errStoreDown
}

func (brokenBetaKeyStore) ConsumeUse(ctx context.Context, id string) (bool, error) {
	return false, errStoreDown
}

type brokenBetaKeyRepo struct {
	repository.Repository
}

func (brokenBetaKeyRepo) BetaKey() repository.BetaKeyRepository {
	return brokenBetaKeyStore{}
}

type BetaAccessServiceTestSuite struct {
	suite.Suite
	service *BetaAccessService
	now     time.Time
}

func (s *BetaAccessServiceTestSuite) SetupTest() {
	s.now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s.service = NewBetaAccessService(memory.NewMemoryRepository())
	s.service.now = func() time.Time { return s.now }
}

func TestBetaAccessService(t *testing.T) {
	suite.Run(t, new(BetaAccessServiceTestSuite))
}

func (s *BetaAccessServiceTestSuite) TestCreateReturnsPlaintextOnce() {
	ctx := context.Background()

	plaintext, key, err := s.service.Create(ctx, 3, s.now.Add(24*time.Hour))
	s.NoError(err)
	s.True(strings.HasPrefix(plaintext, "beta_"))
	s.GreaterOrEqual(len(plaintext), betaKeyMinLength)
	s.Equal(plaintext[:betaKeyDisplayLength], key.KeyPrefix)
	s.NotContains(key.KeyHash, plaintext)
	s.NotEqual(plaintext, key.KeyHash)

	keyID, err := s.service.Validate(ctx, plaintext)
	s.NoError(err)
	s.Equal(key.ID, keyID)
}

func (s *BetaAccessServiceTestSuite) TestValidateRejectsMalformedKeysCheaply() {
	ctx := context.Background()

	for _, raw := range []string{"", "fb_notbeta", "beta_short"} {
		keyID, err := s.service.Validate(ctx, raw)
		s.NoError(err)
		s.Empty(keyID)
	}
}

func (s *BetaAccessServiceTestSuite) TestValidateRejectsUnknownKey() {
	ctx := context.Background()

	keyID, err := s.service.Validate(ctx, "beta_00000000000000000000000000000000")
	s.NoError(err)
	s.Empty(keyID)
}

func (s *BetaAccessServiceTestSuite) TestExhaustionAfterMaxUses() {
	ctx := context.Background()

	plaintext, key, err := s.service.Create(ctx, 2, s.now.Add(24*time.Hour))
	s.NoError(err)

	for i := 0; i < 2; i++ {
		keyID, err := s.service.Validate(ctx, plaintext)
		s.NoError(err)
		s.Equal(key.ID, keyID)

		consumed, err := s.service.Consume(ctx, keyID)
		s.NoError(err)
		s.True(consumed)
	}

	// Third consumption fails and the count stays put.
	consumed, err := s.service.Consume(ctx, key.ID)
	s.NoError(err)
	s.False(consumed)

	keyID, err := s.service.Validate(ctx, plaintext)
	s.NoError(err)
	s.Empty(keyID)
}

func (s *BetaAccessServiceTestSuite) TestExpiredKeyFailsValidateDespiteRemainingUses() {
	ctx := context.Background()

	plaintext, _, err := s.service.Create(ctx, 5, s.now.Add(time.Hour))
	s.NoError(err)

	s.now = s.now.Add(2 * time.Hour)

	keyID, err := s.service.Validate(ctx, plaintext)
	s.NoError(err)
	s.Empty(keyID)
}

func (s *BetaAccessServiceTestSuite) TestStorageErrorNeverAdmits() {
	ctx := context.Background()
	broken := NewBetaAccessService(brokenBetaKeyRepo{memory.NewMemoryRepository()})

	keyID, err := broken.Validate(ctx, "beta_00000000000000000000000000000000")
	s.ErrorIs(err, errStoreDown)
	s.Empty(keyID)

	consumed, err := broken.Consume(ctx, "some-key-id")
	s.ErrorIs(err, errStoreDown)
	s.False(consumed)
}

func (s *BetaAccessServiceTestSuite) TestConcurrentConsumeNeverDoubleSpends() {
	ctx := context.Background()

	_, key, err := s.service.Create(ctx, 1, s.now.Add(24*time.Hour))
	s.NoError(err)

	const attempts = 16
	results := make(chan bool, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			consumed, err := s.service.Consume(ctx, key.ID)
			s.NoError(err)
			results <- consumed
		}()
	}
	wg.Wait()
	close(results)

	successes := 0
	for consumed := range results {
		if consumed {
			successes++
		}
	}
	s.Equal(1, successes)
}
