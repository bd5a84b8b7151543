package repositories

import (
	"context"
	"github.com/maxaizer/realjobs/internal/entities"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Users struct {
	db *gorm.DB
}

func NewUsersRepository(db *gorm.DB) *Users {
	return &Users{db: db}
}

// EnsureByTelegramID returns the user bound to the telegram account, creating
// it on first contact.
func (repo *Users) EnsureByTelegramID(ctx context.Context, telegramID int64, username string) (*entities.User, error) {

	user := entities.User{ID: newID(), TelegramID: telegramID, Username: username}
	if err := repo.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "telegram_id"}},
		DoNothing: true,
	}).Create(&user).Error; err != nil {
		return nil, errors.Wrap(err, "failed to save user")
	}

	return repo.GetByTelegramID(ctx, telegramID)
}

func (repo *Users) GetByTelegramID(ctx context.Context, telegramID int64) (*entities.User, error) {

	var users []entities.User
	if err := repo.db.WithContext(ctx).Limit(1).Find(&users, "telegram_id = ?", telegramID).Error; err != nil {
		return nil, errors.Wrap(err, "failed to get user")
	}
	if len(users) == 0 {
		return nil, nil
	}
	return &users[0], nil
}

func (repo *Users) GetByIDs(ctx context.Context, ids []string) ([]entities.User, error) {

	var users []entities.User
	if len(ids) == 0 {
		return users, nil
	}
	if err := repo.db.WithContext(ctx).Find(&users, "id IN ?", ids).Error; err != nil {
		return nil, errors.Wrap(err, "failed to get users")
	}
	return users, nil
}

func (repo *Users) GetByID(ctx context.Context, id string) (*entities.User, error) {

	var users []entities.User
	if err := repo.db.WithContext(ctx).Limit(1).Find(&users, "id = ?", id).Error; err != nil {
		return nil, errors.Wrap(err, "failed to get user")
	}
	if len(users) == 0 {
		return nil, nil
	}
	return &users[0], nil
}
