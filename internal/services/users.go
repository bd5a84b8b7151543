package services

import (
	"context"
	"github.com/maxaizer/realjobs/internal/entities"
	"github.com/pkg/errors"
)

type telegramUsers interface {
	EnsureByTelegramID(ctx context.Context, telegramID int64, username string) (*entities.User, error)
}

type userByID interface {
	GetByID(ctx context.Context, id string) (*entities.User, error)
}

type Users struct {
	telegram telegramUsers
	byID     userByID
}

func NewUsers(telegram telegramUsers, byID userByID) *Users {
	return &Users{telegram: telegram, byID: byID}
}

// EnsureTelegramUser returns the profile of a chat account, creating it on first contact.
func (s *Users) EnsureTelegramUser(ctx context.Context, telegramID int64, username string) (entities.User, error) {
	user, err := s.telegram.EnsureByTelegramID(ctx, telegramID, username)
	if err != nil {
		return entities.User{}, err
	}
	if user == nil {
		return entities.User{}, errors.Errorf("user for telegram id %d was not created", telegramID)
	}
	return *user, nil
}

func (s *Users) Get(ctx context.Context, id string) (entities.User, error) {
	user, err := s.byID.GetByID(ctx, id)
	if err != nil {
		return entities.User{}, err
	}
	if user == nil {
		return entities.User{}, errors.Wrapf(ErrNotFound, "user %s", id)
	}
	return *user, nil
}
