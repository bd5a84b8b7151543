package repositories

import (
	"context"
	"github.com/maxaizer/realjobs/internal/entities"
	gocache "github.com/patrickmn/go-cache"
	"strconv"
	"time"
)

type userRepository interface {
	EnsureByTelegramID(ctx context.Context, telegramID int64, username string) (*entities.User, error)
}

// CachedUsers memoizes the telegram id to user mapping, which never changes
// once created.
type CachedUsers struct {
	repo  userRepository
	cache *gocache.Cache
}

func NewCachedUsers(repo userRepository) *CachedUsers {
	return &CachedUsers{repo: repo, cache: gocache.New(10*time.Minute, 20*time.Minute)}
}

func (c CachedUsers) EnsureByTelegramID(ctx context.Context, telegramID int64, username string) (*entities.User, error) {
	key := strconv.FormatInt(telegramID, 10)
	if value, found := c.cache.Get(key); found {
		user := value.(entities.User)
		return &user, nil
	}

	user, err := c.repo.EnsureByTelegramID(ctx, telegramID, username)
	if err != nil {
		return nil, err
	}
	if user != nil {
		c.cache.Set(key, *user, gocache.DefaultExpiration)
	}

	return user, nil
}
