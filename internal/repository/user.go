package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"streamaccts/internal/model"
)

type UserRepository interface {
	FindByID(ctx context.Context, userID string) (*model.User, error)
	Create(ctx context.Context, user *model.User) error
	UpdateDisplayName(ctx context.Context, userID string, displayName string) error
	SetAdmin(ctx context.Context, userID string, isAdmin bool) error
}

type userRepoImpl struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepoImpl{
		db: db,
	}
}

func (r *userRepoImpl) FindByID(ctx context.Context, userID string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).
		Where("id = ?", userID).
		First(&user).Error

	if err != nil {
		return nil, translate(err)
	}

	return &user, nil
}

// Create keeps an existing document untouched, the first verify wins.
func (r *userRepoImpl) Create(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(user).Error
}

func (r *userRepoImpl) UpdateDisplayName(ctx context.Context, userID string, displayName string) error {
	return r.update(ctx, userID, map[string]interface{}{
		"display_name": displayName,
	})
}

func (r *userRepoImpl) SetAdmin(ctx context.Context, userID string, isAdmin bool) error {
	return r.update(ctx, userID, map[string]interface{}{
		"is_admin": isAdmin,
	})
}

func (r *userRepoImpl) update(ctx context.Context, userID string, fields map[string]interface{}) error {
	fields["updated_at"] = time.Now()

	result := r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("id = ?", userID).
		Updates(fields)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}
