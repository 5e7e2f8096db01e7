package reconciler

import (
	"context"
	"fmt"
	"time"

	"github.com/mileusna/crontab"
	"github.com/rs/zerolog"

	"memi-server/internal/config"
	domain "memi-server/internal/domain/image"
	"memi-server/internal/infrastructure/metrics"
	"memi-server/internal/utils/imagekey"
	"memi-server/internal/utils/platformerrors"
)

const sweepTimeout = 10 * time.Minute

// Reconciler sweeps the object store for orphans: objects whose upload put
// them in storage but whose metadata insert failed. Objects younger than the
// grace window are skipped because their upload may still be in flight.
type Reconciler struct {
	cfg     *config.Config
	repo    domain.Repository
	storage domain.Storage
	ctab    *crontab.Crontab
	log     zerolog.Logger
}

func NewReconciler(cfg *config.Config, repo domain.Repository, storage domain.Storage, log zerolog.Logger) *Reconciler {
	return &Reconciler{
		cfg:     cfg,
		repo:    repo,
		storage: storage,
		ctab:    crontab.New(),
		log:     log.With().Str("component", "reconciler").Logger(),
	}
}

// Run sweeps once at startup, then on the configured interval until the
// context is cancelled.
func (r *Reconciler) Run(ctx context.Context) error {
	if !r.cfg.ReconcilerEnabled {
		r.log.Info().Msg("orphan reconciliation is disabled")
		<-ctx.Done()
		return nil
	}

	r.sweepWithTimeout()

	interval := r.cfg.ReconcilerInterval
	if interval <= 0 {
		interval = 15
	}
	cronExpr := fmt.Sprintf("*/%d * * * *", interval)
	if err := r.ctab.AddJob(cronExpr, r.sweepWithTimeout); err != nil {
		return platformerrors.AsError(ctx, platformerrors.LayerInfrastructure, err, "schedule orphan sweep")
	}
	r.log.Info().Int("interval_minutes", interval).Msg("orphan sweep scheduled")

	<-ctx.Done()
	r.ctab.Shutdown()
	return nil
}

func (r *Reconciler) sweepWithTimeout() {
	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()
	if err := r.Sweep(ctx); err != nil {
		r.log.Error().Err(err).Msg("orphan sweep failed")
	}
}

// Sweep lists every stored object under the upload prefix and deletes those
// past the grace window that have no metadata row.
func (r *Reconciler) Sweep(ctx context.Context) error {
	objects, err := r.storage.List(ctx, imagekey.Prefix)
	if err != nil {
		return fmt.Errorf("list stored objects: %w", err)
	}

	cutoff := time.Now().Add(-r.cfg.ReconcilerGrace)
	var swept int
	for _, obj := range objects {
		if obj.LastModified.After(cutoff) {
			continue
		}
		key := imagekey.KeyFromObjectPath(obj.Key)
		if key == "" {
			continue
		}
		exists, err := r.repo.ExistsByKey(ctx, key)
		if err != nil {
			r.log.Error().Err(err).Str("object", obj.Key).Msg("orphan check failed")
			continue
		}
		if exists {
			continue
		}
		if err := r.storage.Delete(ctx, obj.Key); err != nil {
			r.log.Error().Err(err).Str("object", obj.Key).Msg("orphan delete failed")
			continue
		}
		metrics.RecordOrphanSwept()
		swept++
		r.log.Info().Str("object", obj.Key).Msg("orphaned object removed")
	}

	if swept > 0 {
		r.log.Info().Int("swept", swept).Int("scanned", len(objects)).Msg("orphan sweep finished")
	}
	return nil
}
