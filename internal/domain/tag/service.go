package tag

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"memi-server/internal/utils/platformerrors"
)

const (
	minNameLen = 3
	maxNameLen = 25

	defaultPage     = 1
	defaultPageSize = 10
)

// Service manages the shared tag vocabulary.
type Service struct {
	repo Repository
	log  zerolog.Logger
}

func NewService(repo Repository, log zerolog.Logger) *Service {
	return &Service{
		repo: repo,
		log:  log.With().Str("component", "tag-service").Logger(),
	}
}

// Create normalizes and stores a new tag name. Names are lowercased before
// the uniqueness check so "Nature" and "nature" are the same tag.
func (s *Service) Create(ctx context.Context, name string) (*Tag, error) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	if len(normalized) < minNameLen || len(normalized) > maxNameLen {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			"tag name must be between 3 and 25 characters", nil, "f4c9a2e7-1b58-4d03-86f4-9d2e7b5c0381")
	}

	t := &Tag{TagName: normalized}
	if err := s.repo.Create(ctx, t); err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "create tag")
	}

	s.log.Info().Uint("tag_id", t.ID).Str("tag_name", t.TagName).Msg("tag created")
	return t, nil
}

// List returns a page of tags, optionally filtered by a case-insensitive
// name substring. Page and pageSize default rather than error when absent.
func (s *Service) List(ctx context.Context, name string, page, pageSize int) (*Page, error) {
	if page < 1 {
		page = defaultPage
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}

	tags, total, err := s.repo.List(ctx, strings.TrimSpace(name), page, pageSize)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "list tags")
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	if tags == nil {
		tags = []Tag{}
	}
	return &Page{
		CurrentPage: page,
		TotalPages:  totalPages,
		PageSize:    pageSize,
		TotalTags:   total,
		Tags:        tags,
	}, nil
}
