package userrepo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"memi-server/internal/domain/user"
	"memi-server/internal/infrastructure/database/entities"
	"memi-server/internal/utils/platformerrors"
)

// Repository persists user accounts.
type Repository struct {
	db *gorm.DB
}

var _ user.Repository = (*Repository)(nil)

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a user. Username uniqueness is enforced by the database.
func (r *Repository) Create(ctx context.Context, u *user.User) error {
	entity := entities.User{Username: u.Username, Password: u.Password}
	if err := r.db.WithContext(ctx).Create(&entity).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeConflict,
				"username already exists", err, "4a7d2e8c-0f53-4b96-81a4-6c9e3b5d7f20")
		}
		return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError,
			"failed to insert user", err, "c5f1a8d3-2e67-4b09-94c5-7a0d8e4f2b61")
	}
	u.ID = entity.ID
	return nil
}

// FindByUsername looks a user up by exact username. A missing user is
// reported as not found, never as a database failure.
func (r *Repository) FindByUsername(ctx context.Context, username string) (*user.User, error) {
	var entity entities.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&entity).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeNotFound,
				"user not found", err, "8d3b6f1e-5a24-4c70-b9d8-1f6c4a9e0257")
		}
		return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError,
			"failed to load user", err, "0f6e3a9c-8b41-4d25-a7f0-3d8b5c1e6942")
	}
	return &user.User{ID: entity.ID, Username: entity.Username, Password: entity.Password}, nil
}

// FindByID loads a user by primary key. Used by the auth middleware to verify
// that a token's subject still exists.
func (r *Repository) FindByID(ctx context.Context, id uint) (*user.User, error) {
	var entity entities.User
	if err := r.db.WithContext(ctx).First(&entity, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeNotFound,
				"user not found", err, "e2c8f5b0-7d13-4a68-92e2-5b9f0d3a7c14")
		}
		return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError,
			"failed to load user", err, "6b0d4f2a-9c57-4e81-b6b0-8e2a5c7f3d09")
	}
	return &user.User{ID: entity.ID, Username: entity.Username, Password: entity.Password}, nil
}
