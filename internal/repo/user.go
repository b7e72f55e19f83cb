package repo

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/zapper13/Major-Mern-Stack-Project/internal/models"
)

var ErrEmailTaken = errors.New("email already registered")

func (r *GormRepo) CreateUser(ctx context.Context, u *models.User) error {
	if err := r.DB.WithContext(ctx).Create(u).Error; err != nil {
		if isDuplicate(err) {
			return ErrEmailTaken
		}
		return err
	}
	return nil
}

func (r *GormRepo) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *GormRepo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// EmailTaken reports whether email belongs to a user other than except.
func (r *GormRepo) EmailTaken(ctx context.Context, email string, except uuid.UUID) (bool, error) {
	var n int64
	if err := r.DB.WithContext(ctx).Model(&models.User{}).
		Where("email = ? AND id <> ?", email, except).
		Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *GormRepo) ListUsers(ctx context.Context) ([]models.User, error) {
	users := []models.User{}
	if err := r.DB.WithContext(ctx).Order("created_at ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *GormRepo) SaveUser(ctx context.Context, u *models.User) error {
	if err := r.DB.WithContext(ctx).Save(u).Error; err != nil {
		if isDuplicate(err) {
			return ErrEmailTaken
		}
		return err
	}
	return nil
}

func (r *GormRepo) DeleteUser(ctx context.Context, id uuid.UUID) error {
	res := r.DB.WithContext(ctx).Where("id = ?", id).Delete(&models.User{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
