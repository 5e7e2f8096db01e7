package database

import (
	"context"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"memi-server/internal/infrastructure/database/entities"
)

// AutoMigrate applies database schema changes.
func AutoMigrate(ctx context.Context, db *gorm.DB, log zerolog.Logger) error {
	if err := db.WithContext(ctx).AutoMigrate(
		&entities.User{},
		&entities.Tag{},
		&entities.Image{},
		&entities.ImageTag{},
	); err != nil {
		return err
	}
	log.Info().Msg("applied image service migrations")
	return nil
}
