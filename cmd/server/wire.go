//go:build wireinject

package main

import (
	"context"

	"github.com/google/wire"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"memi-server/internal/config"
	image "memi-server/internal/domain/image"
	"memi-server/internal/domain/tag"
	"memi-server/internal/domain/user"
	"memi-server/internal/infrastructure/auth"
	"memi-server/internal/infrastructure/database"
	"memi-server/internal/infrastructure/logger"
	"memi-server/internal/infrastructure/reconciler"
	"memi-server/internal/infrastructure/repository/imagerepo"
	"memi-server/internal/infrastructure/repository/tagrepo"
	"memi-server/internal/infrastructure/repository/userrepo"
	"memi-server/internal/infrastructure/transcode"
	"memi-server/internal/interfaces/httpserver"
)

var imageSet = wire.NewSet(
	imagerepo.NewRepository,
	wire.Bind(new(image.Repository), new(*imagerepo.Repository)),
	provideStorage,
	provideTranscoder,
	image.NewService,
)

var tagSet = wire.NewSet(
	tagrepo.NewRepository,
	wire.Bind(new(tag.Repository), new(*tagrepo.Repository)),
	tag.NewService,
)

var userSet = wire.NewSet(
	userrepo.NewRepository,
	wire.Bind(new(user.Repository), new(*userrepo.Repository)),
	user.NewService,
	auth.NewTokenIssuer,
	auth.NewMiddleware,
)

// BuildApplication assembles the image API with Wire.
func BuildApplication(ctx context.Context) (*Application, error) {
	wire.Build(
		config.Load,
		logger.New,
		newDatabaseConfig,
		newGormDB,
		imageSet,
		tagSet,
		userSet,
		reconciler.NewReconciler,
		httpserver.New,
		NewApplication,
	)
	return nil, nil
}

func newDatabaseConfig(cfg *config.Config) database.Config {
	return database.Config{
		DSN:             cfg.DatabaseURL,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		ConnMaxLifetime: cfg.DBConnLifetime,
		LogLevel:        gormlogger.Warn,
	}
}

func newGormDB(ctx context.Context, cfg database.Config, log zerolog.Logger) (*gorm.DB, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, err
	}
	if err := database.AutoMigrate(ctx, db, log); err != nil {
		return nil, err
	}
	return db, nil
}

func provideTranscoder() image.Transcoder {
	return transcode.New()
}
