package imagerepo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	domain "memi-server/internal/domain/image"
	"memi-server/internal/infrastructure/database/entities"
	"memi-server/internal/utils/platformerrors"
)

// Repository persists image metadata and tag links, and runs the dynamic
// listing queries built in query_builder.go.
type Repository struct {
	db *gorm.DB
}

var _ domain.Repository = (*Repository)(nil)

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ResolveTags returns the subset of the given tag ids that exist, in id order.
// Unknown ids are silently dropped; the caller decides whether an empty
// resolution is an error.
func (r *Repository) ResolveTags(ctx context.Context, ids []uint) ([]domain.TagRef, error) {
	var tags []entities.Tag
	if err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Order("id").
		Find(&tags).Error; err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerRepository, err, "resolve tags")
	}

	refs := make([]domain.TagRef, len(tags))
	for i, tag := range tags {
		refs[i] = domain.TagRef{ID: tag.ID, TagName: tag.TagName}
	}
	return refs, nil
}

func (r *Repository) TagExists(ctx context.Context, id uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&entities.Tag{}).
		Where("id = ?", id).
		Count(&count).Error; err != nil {
		return false, platformerrors.AsError(ctx, platformerrors.LayerRepository, err, "check tag existence")
	}
	return count > 0, nil
}

// Create inserts the metadata row and writes the generated id and timestamp
// back into the domain image.
func (r *Repository) Create(ctx context.Context, img *domain.Image) error {
	entity := entities.Image{
		Title:    img.Title,
		Key:      img.Key,
		MimeType: img.MimeType,
		Width:    img.Width,
		Height:   img.Height,
		FileSize: img.FileSize,
		UserID:   img.UserID,
	}
	if err := r.db.WithContext(ctx).Create(&entity).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeConflict,
				"an image with this key already exists", err, "d0b2f8a5-4c17-4e6b-93a2-7f5e1c8d3b60")
		}
		return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError,
			"failed to insert image metadata", err, "3f8c1d7b-6a52-4e09-b4f8-2d9e7a0c5136")
	}
	img.ID = entity.ID
	img.UploadAt = entity.UploadAt
	return nil
}

// LinkTags writes the image/tag association rows in one batch insert.
func (r *Repository) LinkTags(ctx context.Context, imageID uint, tagIDs []uint) error {
	if len(tagIDs) == 0 {
		return nil
	}
	links := make([]entities.ImageTag, len(tagIDs))
	for i, tagID := range tagIDs {
		links[i] = entities.ImageTag{ImageID: imageID, TagID: tagID}
	}
	if err := r.db.WithContext(ctx).Create(&links).Error; err != nil {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError,
			"failed to link image tags", err, "9b4e2c6f-1d80-4a53-87c9-5e3f0a7d2b18")
	}
	return nil
}

// CountImages returns the total row count for the query's filters, ignoring
// pagination.
func (r *Repository) CountImages(ctx context.Context, q domain.ListQuery) (int64, error) {
	built := buildCountQuery(q)
	var count int64
	if err := r.db.WithContext(ctx).Raw(built.SQL, built.Args...).Scan(&count).Error; err != nil {
		return 0, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError,
			"failed to count images", err, "6c1f9d3a-8e25-4b70-a6c1-0d4b8f2e7359")
	}
	return count, nil
}

// listedRow is the raw scan target for the listing query. AllTags arrives as
// the json_agg payload and is decoded per row.
type listedRow struct {
	ID       uint
	Title    string
	Key      string
	MimeType string
	Width    int
	Height   int
	FileSize int64
	UserID   uint
	UploadAt time.Time
	AllTags  []byte
}

// ListImages runs the paginated listing query and decodes the aggregated tag
// payload of each row.
func (r *Repository) ListImages(ctx context.Context, q domain.ListQuery) ([]domain.ListedImage, error) {
	built := buildListQuery(q)
	var rows []listedRow
	if err := r.db.WithContext(ctx).Raw(built.SQL, built.Args...).Scan(&rows).Error; err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError,
			"failed to list images", err, "e7a3c5f0-2b94-4d18-86e3-9f1d6b0a4c72")
	}

	images := make([]domain.ListedImage, len(rows))
	for i, row := range rows {
		var tags []domain.TagRef
		if len(row.AllTags) > 0 {
			if err := json.Unmarshal(row.AllTags, &tags); err != nil {
				return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError,
					fmt.Sprintf("failed to decode tags for image %d", row.ID), err, "1e6b8d4f-7c30-4a59-b2e6-8a5f3c9d0417")
			}
		}
		images[i] = domain.ListedImage{
			Image: domain.Image{
				ID:       row.ID,
				Title:    row.Title,
				Key:      row.Key,
				MimeType: row.MimeType,
				Width:    row.Width,
				Height:   row.Height,
				FileSize: row.FileSize,
				UserID:   row.UserID,
				UploadAt: row.UploadAt,
			},
			AllTags: tags,
		}
	}
	return images, nil
}

// ExistsByKey reports whether a metadata row exists for the given object key.
// Used by the reconciler to tell live objects from orphans.
func (r *Repository) ExistsByKey(ctx context.Context, key string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&entities.Image{}).
		Where("key = ?", key).
		Count(&count).Error; err != nil {
		return false, platformerrors.AsError(ctx, platformerrors.LayerRepository, err, "check image key")
	}
	return count > 0, nil
}
