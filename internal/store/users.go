package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"fleet-service-backend/internal/auth"
	"fleet-service-backend/internal/model"
)

func (s *gormStore) UserByUsername(ctx context.Context, username string) (*model.User, error) {
	var u model.User
	err := s.db.WithContext(ctx).Where("username = ?", username).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up user %q: %w", username, err)
	}
	return &u, nil
}

func (s *gormStore) UserByID(ctx context.Context, id int64) (*model.User, error) {
	var u model.User
	err := s.db.WithContext(ctx).First(&u, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up user %d: %w", id, err)
	}
	return &u, nil
}

func (s *gormStore) ListUsers(ctx context.Context) ([]model.User, error) {
	var users []model.User
	if err := s.db.WithContext(ctx).Order("id ASC").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// CreateUser hashes the password and stores the user.
func (s *gormStore) CreateUser(ctx context.Context, u *model.User, password string) error {
	verr := newValidationError()
	if u.Username == "" {
		verr.add("username", "required")
	}
	if password == "" {
		verr.add("password", "required")
	}
	if err := verr.orNil(); err != nil {
		return err
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&model.User{}).
		Where("username = ?", u.Username).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check username uniqueness: %w", err)
	}
	if count > 0 {
		verr.add("username", "already taken")
		return verr
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	u.PasswordHash = hash
	u.IsActive = true

	if err := s.db.WithContext(ctx).Create(u).Error; err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// EnsureAdminUser creates the bootstrap superuser if no account with the
// given username exists yet. A blank username disables bootstrapping.
func (s *gormStore) EnsureAdminUser(ctx context.Context, username, password string) error {
	if username == "" {
		return nil
	}
	_, err := s.UserByUsername(ctx, username)
	if err == nil {
		return nil
	}
	if !errors.Is(err, ErrNotFound) {
		return err
	}
	admin := model.User{Username: username, IsSuperuser: true, IsStaff: true}
	return s.CreateUser(ctx, &admin, password)
}

// HasPermission checks a capability grant. Superusers hold every grant
// implicitly. Grants never affect row-level scoping.
func (s *gormStore) HasPermission(ctx context.Context, u *model.User, codename string) (bool, error) {
	if u == nil || !u.IsActive {
		return false, nil
	}
	if u.IsSuperuser {
		return true, nil
	}
	var count int64
	err := s.db.WithContext(ctx).Model(&model.Permission{}).
		Where("user_id = ? AND codename = ?", u.ID, codename).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check permission %q: %w", codename, err)
	}
	return count > 0, nil
}

func (s *gormStore) GrantPermission(ctx context.Context, userID int64, codename string) error {
	grant := model.Permission{UserID: userID, Codename: codename}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&grant).Error
	if err != nil {
		return fmt.Errorf("failed to grant %q to user %d: %w", codename, userID, err)
	}
	return nil
}
