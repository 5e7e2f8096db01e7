package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	gormlogger "gorm.io/gorm/logger"

	"memi-server/internal/config"
	image "memi-server/internal/domain/image"
	"memi-server/internal/domain/tag"
	"memi-server/internal/domain/user"
	"memi-server/internal/infrastructure/auth"
	"memi-server/internal/infrastructure/database"
	"memi-server/internal/infrastructure/logger"
	"memi-server/internal/infrastructure/observability"
	"memi-server/internal/infrastructure/reconciler"
	"memi-server/internal/infrastructure/repository/imagerepo"
	"memi-server/internal/infrastructure/repository/tagrepo"
	"memi-server/internal/infrastructure/repository/userrepo"
	"memi-server/internal/infrastructure/storage"
	"memi-server/internal/infrastructure/transcode"
	"memi-server/internal/interfaces/httpserver"
)

type Application struct {
	httpServer *httpserver.HttpServer
	reconciler *reconciler.Reconciler
	log        zerolog.Logger
}

func NewApplication(httpServer *httpserver.HttpServer, rec *reconciler.Reconciler, log zerolog.Logger) *Application {
	return &Application{
		httpServer: httpServer,
		reconciler: rec,
		log:        log,
	}
}

// Start runs the HTTP server and the orphan reconciler until the context is
// cancelled or either of them fails.
func (a *Application) Start(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return a.httpServer.Run(gctx)
	})
	g.Go(func() error {
		return a.reconciler.Run(gctx)
	})
	return g.Wait()
}

func main() {
	loadEnvFiles()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.New(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := observability.Setup(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize observability")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := shutdownTelemetry(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("shutdown telemetry")
		}
	}()

	db, err := database.Connect(database.Config{
		DSN:             cfg.DatabaseURL,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		ConnMaxLifetime: cfg.DBConnLifetime,
		LogLevel:        gormlogger.Warn,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("connect database")
	}

	if err := database.AutoMigrate(ctx, db, log); err != nil {
		log.Fatal().Err(err).Msg("migrate database")
	}

	storageClient, err := provideStorage(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize storage")
	}

	imageRepository := imagerepo.NewRepository(db)
	tagRepository := tagrepo.NewRepository(db)
	userRepository := userrepo.NewRepository(db)

	imageService := image.NewService(cfg, imageRepository, storageClient, transcode.New(), log)
	tagService := tag.NewService(tagRepository, log)
	userService := user.NewService(userRepository, log)

	tokenIssuer := auth.NewTokenIssuer(cfg)
	authMiddleware := auth.NewMiddleware(tokenIssuer, userRepository)

	httpServer := httpserver.New(cfg, log, imageService, tagService, userService, tokenIssuer, authMiddleware)
	rec := reconciler.NewReconciler(cfg, imageRepository, storageClient, log)
	app := NewApplication(httpServer, rec, log)

	if err := app.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("application stopped with error")
	}

	log.Info().Msg("application exited cleanly")
}

// provideStorage creates the appropriate storage backend based on configuration.
func provideStorage(ctx context.Context, cfg *config.Config, log zerolog.Logger) (image.Storage, error) {
	if cfg.IsLocalStorage() {
		return storage.NewLocalStorage(cfg, log)
	}
	return storage.NewS3Storage(ctx, cfg, log)
}

func loadEnvFiles() {
	paths := []string{".env", "../.env"}
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Overload(path); err != nil {
				fmt.Fprintf(os.Stderr, "warning: failed to load %s: %v\n", path, err)
			}
		}
	}
}
