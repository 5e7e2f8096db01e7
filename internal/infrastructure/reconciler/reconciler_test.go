package reconciler

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"memi-server/internal/config"
	domain "memi-server/internal/domain/image"
)

type fakeStorage struct {
	objects []domain.StoredObject
	deleted []string
}

func (f *fakeStorage) Upload(ctx context.Context, key string, body io.Reader, size int64, contentType string) error {
	return nil
}

func (f *fakeStorage) PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error) {
	return "https://example.test/" + key, nil
}

func (f *fakeStorage) List(ctx context.Context, prefix string) ([]domain.StoredObject, error) {
	return f.objects, nil
}

func (f *fakeStorage) Delete(ctx context.Context, key string) error {
	f.deleted = append(f.deleted, key)
	return nil
}

type fakeRepo struct {
	domain.Repository
	knownKeys map[string]bool
}

func (f *fakeRepo) ExistsByKey(ctx context.Context, key string) (bool, error) {
	return f.knownKeys[key], nil
}

func TestSweepDeletesOnlyAgedOrphans(t *testing.T) {
	now := time.Now()
	storage := &fakeStorage{objects: []domain.StoredObject{
		// Aged object with a metadata row: keep.
		{Key: "image-uploads/alice/known.jpg", LastModified: now.Add(-2 * time.Hour)},
		// Aged object without a row: orphan, delete.
		{Key: "image-uploads/alice/orphan.jpg", LastModified: now.Add(-2 * time.Hour)},
		// Recent object without a row: inside the grace window, keep.
		{Key: "image-uploads/alice/fresh.jpg", LastModified: now.Add(-time.Minute)},
	}}
	repo := &fakeRepo{knownKeys: map[string]bool{"known.jpg": true}}

	r := NewReconciler(&config.Config{ReconcilerGrace: time.Hour}, repo, storage, zerolog.Nop())
	require.NoError(t, r.Sweep(context.Background()))

	assert.Equal(t, []string{"image-uploads/alice/orphan.jpg"}, storage.deleted)
}

func TestSweepSkipsForeignPaths(t *testing.T) {
	storage := &fakeStorage{objects: []domain.StoredObject{
		{Key: "backups/dump.sql", LastModified: time.Now().Add(-48 * time.Hour)},
	}}
	repo := &fakeRepo{knownKeys: map[string]bool{}}

	r := NewReconciler(&config.Config{ReconcilerGrace: time.Hour}, repo, storage, zerolog.Nop())
	require.NoError(t, r.Sweep(context.Background()))

	assert.Empty(t, storage.deleted)
}
