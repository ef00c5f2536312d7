package utils

import (
	"context"
	"errors"

	"github.com/playsignal/feedback-api/internal/domain"
)

type ContextKey string

const (
	GameKey      ContextKey = "game"
	AccountIDKey ContextKey = "account_id"
)

var (
	ErrNoGameInContext      = errors.New("no game found in context")
	ErrInvalidGameType      = errors.New("game must be a *domain.Game")
	ErrNoAccountIDInContext = errors.New("no account id found in context")
	ErrInvalidAccountIDType = errors.New("account id must be a string")
)

func GetGameFromContext(c context.Context) (*domain.Game, error) {
	value := c.Value(GameKey)
	if value == nil {
		return nil, ErrNoGameInContext
	}

	game, ok := value.(*domain.Game)
	if !ok {
		return nil, ErrInvalidGameType
	}

	return game, nil
}

func GetAccountIDFromContext(c context.Context) (string, error) {
	value := c.Value(AccountIDKey)
	if value == nil {
		return "", ErrNoAccountIDInContext
	}

	accountID, ok := value.(string)
	if !ok {
		return "", ErrInvalidAccountIDType
	}

	return accountID, nil
}
