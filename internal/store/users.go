package store

import (
	"context"

	"github.com/pinobite/storefront/internal/models"
)

func (s *Store) GetUser(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Preload("Profile").First(&user, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

func (s *Store) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findUser(ctx, "email = ?", email)
}

func (s *Store) FindUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.findUser(ctx, "username = ?", username)
}

// UserTaken reports whether the username or email is already registered.
func (s *Store) UserTaken(ctx context.Context, username, email string) (usernameTaken, emailTaken bool, err error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return false, false, err
	}
	usernameTaken = count > 0

	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return false, false, err
	}
	emailTaken = count > 0

	return usernameTaken, emailTaken, nil
}

func (s *Store) ListUsers(ctx context.Context, limit, offset int) ([]models.User, error) {
	return NewRepo[models.User](s).List(ctx, ListOptions{Limit: limit, Offset: offset, Preload: []string{"Profile"}})
}

// UsersWithoutProfile returns the users that have no profile row.
func (s *Store) UsersWithoutProfile(ctx context.Context) ([]models.User, error) {
	users := []models.User{}
	err := s.db.WithContext(ctx).
		Where("NOT EXISTS (SELECT 1 FROM user_profiles p WHERE p.user_id = users.id)").
		Order("id").
		Find(&users).Error
	return users, err
}

func (s *Store) SetPasswordHash(ctx context.Context, userID int64, hash string) error {
	result := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Update("password", hash)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) findUser(ctx context.Context, query string, arg any) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Preload("Profile").Where(query, arg).First(&user).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}
