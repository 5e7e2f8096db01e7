package image

import (
	"bytes"
	"context"
	"fmt"
	stdimage "image"
	"image/png"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"memi-server/internal/config"
	"memi-server/internal/domain"
	"memi-server/internal/utils/platformerrors"
)

type mockRepo struct {
	resolved    []TagRef
	tagExists   bool
	countResult int64
	listResult  []ListedImage

	created     *Image
	linkedImage uint
	linkedTags  []uint
	calls       []string
}

func (m *mockRepo) ResolveTags(ctx context.Context, ids []uint) ([]TagRef, error) {
	m.calls = append(m.calls, "ResolveTags")
	return m.resolved, nil
}

func (m *mockRepo) TagExists(ctx context.Context, id uint) (bool, error) {
	m.calls = append(m.calls, "TagExists")
	return m.tagExists, nil
}

func (m *mockRepo) Create(ctx context.Context, img *Image) error {
	m.calls = append(m.calls, "Create")
	img.ID = 101
	img.UploadAt = time.Now()
	m.created = img
	return nil
}

func (m *mockRepo) LinkTags(ctx context.Context, imageID uint, tagIDs []uint) error {
	m.calls = append(m.calls, "LinkTags")
	m.linkedImage = imageID
	m.linkedTags = tagIDs
	return nil
}

func (m *mockRepo) CountImages(ctx context.Context, q ListQuery) (int64, error) {
	m.calls = append(m.calls, "CountImages")
	return m.countResult, nil
}

func (m *mockRepo) ListImages(ctx context.Context, q ListQuery) ([]ListedImage, error) {
	m.calls = append(m.calls, "ListImages")
	return m.listResult, nil
}

func (m *mockRepo) ExistsByKey(ctx context.Context, key string) (bool, error) {
	return m.created != nil && m.created.Key == key, nil
}

type mockStorage struct {
	mu       sync.Mutex
	uploaded map[string][]byte
}

func (m *mockStorage) Upload(ctx context.Context, key string, body io.Reader, size int64, contentType string) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.uploaded == nil {
		m.uploaded = map[string][]byte{}
	}
	m.uploaded[key] = data
	return nil
}

func (m *mockStorage) PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error) {
	return fmt.Sprintf("https://signed.test/%s?ttl=%d", key, int(ttl.Seconds())), nil
}

func (m *mockStorage) List(ctx context.Context, prefix string) ([]StoredObject, error) {
	return nil, nil
}

func (m *mockStorage) Delete(ctx context.Context, key string) error {
	return nil
}

type mockTranscoder struct {
	called bool
}

func (m *mockTranscoder) Transcode(data []byte) (*Rendition, error) {
	m.called = true
	return &Rendition{Data: []byte("transcoded"), Width: 800, Height: 600}, nil
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, stdimage.NewRGBA(stdimage.Rect(0, 0, 8, 8))))
	return buf.Bytes()
}

func newTestService(repo *mockRepo, storage *mockStorage, tr *mockTranscoder) *Service {
	cfg := &config.Config{
		MaxUploadBytes: 2 * 1024 * 1024,
		PresignTTL:     15 * time.Minute,
	}
	return NewService(cfg, repo, storage, tr, zerolog.Nop())
}

func validUpload(t *testing.T) UploadRequest {
	return UploadRequest{
		Data:             pngBytes(t),
		DeclaredMimeType: "image/png",
		Title:            "Holiday sunset",
		TagIDs:           []uint{1, 2},
	}
}

var testPrincipal = domain.Principal{ID: 7, Username: "alice"}

func TestIngestSuccess(t *testing.T) {
	repo := &mockRepo{resolved: []TagRef{{ID: 1, TagName: "nature"}, {ID: 2, TagName: "sky"}}}
	storage := &mockStorage{}
	tr := &mockTranscoder{}
	svc := newTestService(repo, storage, tr)

	result, err := svc.Ingest(context.Background(), testPrincipal, validUpload(t))
	require.NoError(t, err)

	// Persisted dimensions and size describe the transcoded output.
	assert.Equal(t, 800, repo.created.Width)
	assert.Equal(t, 600, repo.created.Height)
	assert.Equal(t, int64(len("transcoded")), repo.created.FileSize)
	assert.Equal(t, "image/jpeg", repo.created.MimeType)
	assert.Equal(t, testPrincipal.ID, repo.created.UserID)

	// The object lands under the uploader's prefix and matches the rendition.
	require.Len(t, storage.uploaded, 1)
	for key, data := range storage.uploaded {
		assert.Contains(t, key, "image-uploads/alice/")
		assert.Equal(t, []byte("transcoded"), data)
	}

	assert.Equal(t, uint(101), repo.linkedImage)
	assert.Equal(t, []uint{1, 2}, repo.linkedTags)
	assert.Equal(t, []TagRef{{ID: 1, TagName: "nature"}, {ID: 2, TagName: "sky"}}, result.Tags)
	assert.NotEmpty(t, result.URL)
}

func TestIngestFailFastTouchesNothing(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(t *testing.T, req *UploadRequest)
	}{
		{"empty file", func(t *testing.T, req *UploadRequest) { req.Data = nil }},
		{"bad declared type", func(t *testing.T, req *UploadRequest) { req.DeclaredMimeType = "image/gif" }},
		{"type mismatch", func(t *testing.T, req *UploadRequest) { req.DeclaredMimeType = "image/jpeg" }},
		{"short title", func(t *testing.T, req *UploadRequest) { req.Title = "ab" }},
		{"long title", func(t *testing.T, req *UploadRequest) { req.Title = string(bytes.Repeat([]byte("x"), 61)) }},
		{"no tags", func(t *testing.T, req *UploadRequest) { req.TagIDs = nil }},
		{"too many tags", func(t *testing.T, req *UploadRequest) { req.TagIDs = []uint{1, 2, 3, 4, 5, 6} }},
		{"zero tag id", func(t *testing.T, req *UploadRequest) { req.TagIDs = []uint{0} }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := &mockRepo{resolved: []TagRef{{ID: 1, TagName: "nature"}}}
			storage := &mockStorage{}
			tr := &mockTranscoder{}
			svc := newTestService(repo, storage, tr)

			req := validUpload(t)
			tc.mutate(t, &req)

			_, err := svc.Ingest(context.Background(), testPrincipal, req)
			require.Error(t, err)
			assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeValidation))

			// Validation failures must leave no side effects behind.
			assert.False(t, tr.called)
			assert.Empty(t, storage.uploaded)
			assert.Nil(t, repo.created)
		})
	}
}

func TestIngestRejectsOversizedUpload(t *testing.T) {
	repo := &mockRepo{}
	storage := &mockStorage{}
	svc := newTestService(repo, storage, &mockTranscoder{})

	req := validUpload(t)
	req.Data = append(req.Data, bytes.Repeat([]byte{0}, 2*1024*1024)...)

	_, err := svc.Ingest(context.Background(), testPrincipal, req)
	require.Error(t, err)
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeValidation))
	assert.Empty(t, storage.uploaded)
}

func TestIngestRejectsWhenNoTagResolves(t *testing.T) {
	repo := &mockRepo{resolved: nil}
	storage := &mockStorage{}
	tr := &mockTranscoder{}
	svc := newTestService(repo, storage, tr)

	_, err := svc.Ingest(context.Background(), testPrincipal, validUpload(t))
	require.Error(t, err)
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeValidation))

	// Resolution happens before any expensive work.
	assert.False(t, tr.called)
	assert.Empty(t, storage.uploaded)
}

func TestIngestLinksOnlyResolvedTags(t *testing.T) {
	// Three ids requested, one unknown: the image links to the two that exist.
	repo := &mockRepo{resolved: []TagRef{{ID: 1, TagName: "nature"}, {ID: 3, TagName: "sea"}}}
	svc := newTestService(repo, &mockStorage{}, &mockTranscoder{})

	req := validUpload(t)
	req.TagIDs = []uint{1, 3, 99}

	result, err := svc.Ingest(context.Background(), testPrincipal, req)
	require.NoError(t, err)
	assert.Equal(t, []uint{1, 3}, repo.linkedTags)
	assert.Len(t, result.Tags, 2)
}

func TestListEmptyResultIsSuccess(t *testing.T) {
	repo := &mockRepo{countResult: 0}
	svc := newTestService(repo, &mockStorage{}, &mockTranscoder{})

	page, err := svc.List(context.Background(), testPrincipal, ListParams{Page: 1, PageSize: 10})
	require.NoError(t, err)

	assert.Equal(t, 1, page.CurrentPage)
	assert.Equal(t, 0, page.TotalPages)
	assert.Equal(t, int64(0), page.TotalImages)
	assert.NotNil(t, page.Images)
	assert.Empty(t, page.Images)

	// No row query runs when the count is zero.
	assert.NotContains(t, repo.calls, "ListImages")
}

func TestListPagePastEndIsError(t *testing.T) {
	repo := &mockRepo{countResult: 15}
	svc := newTestService(repo, &mockStorage{}, &mockTranscoder{})

	_, err := svc.List(context.Background(), testPrincipal, ListParams{Page: 3, PageSize: 10})
	require.Error(t, err)
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeOutOfRange))
}

func TestListRejectsUnknownTag(t *testing.T) {
	repo := &mockRepo{tagExists: false}
	svc := newTestService(repo, &mockStorage{}, &mockTranscoder{})

	_, err := svc.List(context.Background(), testPrincipal, ListParams{Page: 1, PageSize: 10, TagID: 42})
	require.Error(t, err)
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeValidation))
	assert.NotContains(t, repo.calls, "CountImages")
}

func TestListValidation(t *testing.T) {
	svc := newTestService(&mockRepo{}, &mockStorage{}, &mockTranscoder{})
	ctx := context.Background()

	cases := []ListParams{
		{Page: 0, PageSize: 10},
		{Page: 1, PageSize: 0},
		{Page: 1, PageSize: 10, SortBy: "size", Order: OrderAsc},
		{Page: 1, PageSize: 10, SortBy: SortByDate, Order: "sideways"},
		// sortBy and order must travel together.
		{Page: 1, PageSize: 10, SortBy: SortByDate},
		{Page: 1, PageSize: 10, Order: OrderAsc},
	}
	for _, params := range cases {
		_, err := svc.List(ctx, testPrincipal, params)
		require.Error(t, err, "%+v", params)
		assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeValidation))
	}
}

func TestListAttachesURLsInRowOrder(t *testing.T) {
	rows := make([]ListedImage, 20)
	for i := range rows {
		rows[i] = ListedImage{Image: Image{ID: uint(i + 1), Key: fmt.Sprintf("k%02d.jpg", i)}}
	}
	repo := &mockRepo{countResult: 20, listResult: rows}
	svc := newTestService(repo, &mockStorage{}, &mockTranscoder{})

	page, err := svc.List(context.Background(), testPrincipal, ListParams{Page: 1, PageSize: 20})
	require.NoError(t, err)
	require.Len(t, page.Images, 20)

	// Concurrent signing must not reorder rows or cross-wire URLs.
	for i, img := range page.Images {
		assert.Equal(t, uint(i+1), img.ID)
		assert.Contains(t, img.URL, fmt.Sprintf("k%02d.jpg", i))
	}
}
