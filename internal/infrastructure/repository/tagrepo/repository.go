package tagrepo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"memi-server/internal/domain/tag"
	"memi-server/internal/infrastructure/database/entities"
	"memi-server/internal/utils/platformerrors"
)

// Repository persists tags.
type Repository struct {
	db *gorm.DB
}

var _ tag.Repository = (*Repository)(nil)

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a tag. Name uniqueness is enforced by the database; a
// duplicate surfaces as a conflict.
func (r *Repository) Create(ctx context.Context, t *tag.Tag) error {
	entity := entities.Tag{TagName: t.TagName}
	if err := r.db.WithContext(ctx).Create(&entity).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeConflict,
				"tag already exists", err, "5d2a8f1c-9b64-4e37-a0d5-3c7f6e9b2148")
		}
		return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError,
			"failed to insert tag", err, "b8e4c2d7-6f09-4a51-93b8-0e5a7d3f1c26")
	}
	t.ID = entity.ID
	return nil
}

// List returns one page of tags with an optional case-insensitive substring
// filter, plus the unpaginated total for the same filter.
func (r *Repository) List(ctx context.Context, name string, page, pageSize int) ([]tag.Tag, int64, error) {
	query := r.db.WithContext(ctx).Model(&entities.Tag{})
	if name != "" {
		query = query.Where("tag_name ILIKE ?", "%"+name+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError,
			"failed to count tags", err, "7c3f9e5a-1d82-4b06-8a7c-4e0b6d2f9513")
	}

	var rows []entities.Tag
	if err := query.
		Order("tag_name ASC").
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Find(&rows).Error; err != nil {
		return nil, 0, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError,
			"failed to list tags", err, "2e8b4d0f-7a35-4c19-96e2-8d1c5f3a7064")
	}

	tags := make([]tag.Tag, len(rows))
	for i, row := range rows {
		tags[i] = tag.Tag{ID: row.ID, TagName: row.TagName}
	}
	return tags, total, nil
}
