package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/siddeshwardm/chat-application/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrUserNotFound is returned by lookups that match no row.
var ErrUserNotFound = errors.New("user not found")

type UserRepo struct {
	db *gorm.DB
}

func NewUserRepo(db *gorm.DB) *UserRepo {
	return &UserRepo{db: db}
}

// NormalizeEmail lowercases and trims an address before it is stored or compared.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (r *UserRepo) Create(ctx context.Context, u *models.User) error {
	u.Email = NormalizeEmail(u.Email)
	return r.db.WithContext(ctx).Create(u).Error
}

func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("email = ?", NormalizeEmail(email)).First(&user).Error
	return notFound(&user, err)
}

func (r *UserRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	return notFound(&user, err)
}

// ListExcept returns every user other than id, without password hashes loaded.
func (r *UserRepo) ListExcept(ctx context.Context, id uuid.UUID) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).
		Select("id", "email", "full_name", "profile_pic", "created_at", "updated_at").
		Where("id <> ?", id).
		Order("full_name ASC").
		Find(&users).Error
	return users, err
}

// ListAll returns every user. Used by maintenance tooling only.
func (r *UserRepo) ListAll(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).Order("created_at ASC").Find(&users).Error
	return users, err
}

func (r *UserRepo) UpdateProfilePic(ctx context.Context, id uuid.UUID, pic string) (*models.User, error) {
	res := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Update("profile_pic", pic)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrUserNotFound
	}
	return r.FindByID(ctx, id)
}

// DeleteWithMessages removes the given users and all of their messages in
// one transaction and reports how many of each were deleted.
func (r *UserRepo) DeleteWithMessages(ctx context.Context, ids []uuid.UUID) (users, messages int64, err error) {
	if len(ids) == 0 {
		return 0, 0, nil
	}
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var txErr error
		messages, txErr = NewMessageRepo(tx).DeleteForUsers(ctx, ids)
		if txErr != nil {
			return txErr
		}
		res := tx.Where("id IN ?", ids).Delete(&models.User{})
		users = res.RowsAffected
		return res.Error
	})
	if err != nil {
		return 0, 0, err
	}
	return users, messages, nil
}

func notFound(u *models.User, err error) (*models.User, error) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}
