package image

import (
	"bytes"
	"context"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"memi-server/internal/config"
	"memi-server/internal/domain"
	"memi-server/internal/utils/imagekey"
	"memi-server/internal/utils/platformerrors"
)

var allowedMIMEs = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
}

const (
	// OutputMimeType is the fixed mime type of every stored image.
	OutputMimeType = "image/jpeg"

	minTagCount = 1
	maxTagCount = 5

	minTitleLen = 3
	maxTitleLen = 60

	// presignConcurrency bounds the signed-URL fan-out over a result page.
	presignConcurrency = 8
)

// Service orchestrates image ingestion and the tag-filtered listing query.
type Service struct {
	cfg        *config.Config
	repo       Repository
	storage    Storage
	transcoder Transcoder
	log        zerolog.Logger
}

func NewService(cfg *config.Config, repo Repository, storage Storage, transcoder Transcoder, log zerolog.Logger) *Service {
	return &Service{
		cfg:        cfg,
		repo:       repo,
		storage:    storage,
		transcoder: transcoder,
		log:        log.With().Str("component", "image-service").Logger(),
	}
}

// Ingest validates, transcodes, stores and persists one uploaded image, links
// its tags and returns the record with a freshly signed URL.
//
// The object write and the metadata insert are two independently failing
// operations. Metadata is only written after the object write succeeded, so an
// object may exist without a row (collected later by the reconciler) but a row
// never points at a missing object.
func (s *Service) Ingest(ctx context.Context, principal domain.Principal, req UploadRequest) (*ImageWithTags, error) {
	// Fail-fast validation: nothing below touches the transcoder, the store or
	// the database until all of it passed.
	if len(req.Data) == 0 {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			"please provide an image file for upload (jpg or png)", nil, "c4f6f0d2-9b5e-4e65-9a71-0d2f4f6f43a8")
	}
	if _, ok := allowedMIMEs[req.DeclaredMimeType]; !ok {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			"invalid file type. please upload an image (jpg or png)", nil, "5b1c2a8e-7d3f-4b09-8c56-e1a9d0b7c3f2")
	}
	if int64(len(req.Data)) > s.cfg.MaxUploadBytes {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			"file size exceeds the limit of 2 MB", nil, "8e0d4c7a-2f61-4f3b-b0d9-6c5a1e8f2b47")
	}
	if detected := mimetype.Detect(req.Data).String(); detected != req.DeclaredMimeType {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			"file content does not match its declared type", nil, "1f7b9c3d-6a24-4d80-9e15-b2c8f4a0d671")
	}

	title := strings.TrimSpace(req.Title)
	if len(title) < minTitleLen || len(title) > maxTitleLen {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			"title must be between 3 and 60 characters", nil, "7a2e5d91-4c08-4f6b-a3d7-9e1b6c0f8254")
	}

	tagIDs, err := validateTagIDs(ctx, req.TagIDs)
	if err != nil {
		return nil, err
	}

	resolved, err := s.repo.ResolveTags(ctx, tagIDs)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "resolve tags")
	}
	if len(resolved) == 0 {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			"invalid tag ids", nil, "3d9f1b6e-8a47-4c25-b0e3-f2d7c5a19086")
	}

	rendition, err := s.transcoder.Transcode(req.Data)
	if err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeInternal,
			"failed to process image", err, "b6c3e8f1-0d52-4a79-8b14-7e9a2c6d0f35")
	}

	key := imagekey.New()
	objectPath := imagekey.ObjectPath(principal.Username, key)

	if err := s.storage.Upload(ctx, objectPath, bytes.NewReader(rendition.Data), int64(len(rendition.Data)), OutputMimeType); err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeExternal,
			"failed to store image", err, "e2a7d4b9-5f18-4c63-90ab-1c8e6f3d2b50")
	}

	img := &Image{
		Title:    title,
		Key:      key,
		MimeType: OutputMimeType,
		Width:    rendition.Width,
		Height:   rendition.Height,
		FileSize: int64(len(rendition.Data)),
		UserID:   principal.ID,
	}
	if err := s.repo.Create(ctx, img); err != nil {
		// The stored object is now orphaned. Left in place for the reconciler
		// rather than compensated here.
		s.log.Error().Err(err).Str("object", objectPath).Msg("metadata insert failed after object write")
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "persist image metadata")
	}

	url, err := s.storage.PresignGet(ctx, objectPath, s.cfg.PresignTTL)
	if err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeExternal,
			"failed to sign image url", err, "9c5b2e7f-3a80-4d16-bf49-6d0e8a1c7342")
	}

	resolvedIDs := make([]uint, len(resolved))
	for i, tag := range resolved {
		resolvedIDs[i] = tag.ID
	}
	if err := s.repo.LinkTags(ctx, img.ID, resolvedIDs); err != nil {
		// Partial tag association is not retried; the image itself persists.
		s.log.Error().Err(err).Uint("image_id", img.ID).Msg("tag association failed")
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "link image tags")
	}

	return &ImageWithTags{Image: *img, URL: url, Tags: resolved}, nil
}

// List runs the tag/title-filtered, sorted, paginated query for the
// principal's images and attaches a signed URL to every row.
func (s *Service) List(ctx context.Context, principal domain.Principal, params ListParams) (*Page, error) {
	if err := validateListParams(ctx, params); err != nil {
		return nil, err
	}

	if params.TagID != 0 {
		exists, err := s.repo.TagExists(ctx, params.TagID)
		if err != nil {
			return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "check tag id")
		}
		if !exists {
			return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
				"invalid tag id", nil, "4e8a1f5c-7b29-4d03-a6e8-2f9c5d0b7163")
		}
	}

	q := ListQuery{
		UserID:   principal.ID,
		Title:    strings.TrimSpace(params.Title),
		TagID:    params.TagID,
		SortBy:   params.SortBy,
		Order:    params.Order,
		Page:     params.Page,
		PageSize: params.PageSize,
	}

	totalImages, err := s.repo.CountImages(ctx, q)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "count images")
	}

	if totalImages == 0 {
		// An empty result set is a success, not an error.
		return &Page{CurrentPage: 1, TotalPages: 0, PageSize: params.PageSize, TotalImages: 0, Images: []ListedImage{}}, nil
	}

	totalPages := int((totalImages + int64(params.PageSize) - 1) / int64(params.PageSize))
	if params.Page > totalPages {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeOutOfRange,
			"page number exceeds total pages", nil, "a1d6c9e4-2b73-4f58-80c1-5e7f3a9d2b06")
	}

	rows, err := s.repo.ListImages(ctx, q)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "list images")
	}

	if err := s.attachURLs(ctx, principal.Username, rows); err != nil {
		return nil, err
	}

	return &Page{
		CurrentPage: params.Page,
		TotalPages:  totalPages,
		PageSize:    params.PageSize,
		TotalImages: totalImages,
		Images:      rows,
	}, nil
}

// attachURLs signs a read URL for every row. Generations are independent, so
// they fan out concurrently; rows are written back by index, which keeps the
// original order regardless of completion order.
func (s *Service) attachURLs(ctx context.Context, username string, rows []ListedImage) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(presignConcurrency)
	for i := range rows {
		i := i
		g.Go(func() error {
			url, err := s.storage.PresignGet(gctx, imagekey.ObjectPath(username, rows[i].Key), s.cfg.PresignTTL)
			if err != nil {
				return err
			}
			rows[i].URL = url
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeExternal,
			"failed to sign image urls", err, "f3b8d2a6-9e41-4c07-b5d8-0a6c2e9f7154")
	}
	return nil
}

func validateTagIDs(ctx context.Context, ids []uint) ([]uint, error) {
	if len(ids) < minTagCount || len(ids) > maxTagCount {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			"between 1 and 5 tag ids are required", nil, "0d4f7a2c-6e93-4b58-a1c0-8b5d3e7f9261")
	}
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if id == 0 {
			return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
				"tag ids must be positive integers", nil, "6a9c3f81-0b54-4e27-9d6a-4f2e8c1b5073")
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out, nil
}

func validateListParams(ctx context.Context, params ListParams) error {
	if params.Page < 1 || params.PageSize < 1 {
		return platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			"page and pageSize must be at least 1", nil, "2c7e9b4d-5a18-4f36-b0e7-9d3a6c8f1520")
	}
	switch params.SortBy {
	case "", SortByDate, SortByTitle:
	default:
		return platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			"sortBy must be one of: date, title", nil, "8f2a6d1c-3e95-4b70-8c24-1b7e5d9a0346")
	}
	switch params.Order {
	case "", OrderAsc, OrderDesc:
	default:
		return platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			"order must be one of: asc, desc", nil, "d5e1c8f3-7a06-4b92-a4d1-6c0f9e2b8357")
	}
	// sortBy and order travel together.
	if (params.SortBy == "") != (params.Order == "") {
		return platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			"sortBy and order must be supplied together", nil, "b9d4f7e2-1c68-4a35-90b7-3e8a5d2c6104")
	}
	return nil
}
