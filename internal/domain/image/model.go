package image

import (
	"context"
	"io"
	"time"
)

// Image is the persisted metadata for one stored image. Width, Height and
// FileSize describe the transcoded object, never the original upload.
type Image struct {
	ID       uint      `json:"id"`
	Title    string    `json:"title"`
	Key      string    `json:"key"`
	MimeType string    `json:"mimeType"`
	Width    int       `json:"width"`
	Height   int       `json:"height"`
	FileSize int64     `json:"fileSize"`
	UserID   uint      `json:"userId"`
	UploadAt time.Time `json:"uploadAt"`
}

// TagRef is a tag as attached to an image.
type TagRef struct {
	ID      uint   `json:"id"`
	TagName string `json:"tagName"`
}

// ImageWithTags is the full upload result: metadata, a freshly signed URL and
// the tags that were resolved and linked.
type ImageWithTags struct {
	Image
	URL  string   `json:"url"`
	Tags []TagRef `json:"tags"`
}

// ListedImage is one row of a listing page, with every tag attached to the
// image aggregated into AllTags.
type ListedImage struct {
	Image
	URL     string   `json:"url"`
	AllTags []TagRef `json:"allTags"`
}

// Page is the listing envelope.
type Page struct {
	CurrentPage int           `json:"currentPage"`
	TotalPages  int           `json:"totalPages"`
	PageSize    int           `json:"pageSize"`
	TotalImages int64         `json:"totalImages"`
	Images      []ListedImage `json:"images"`
}

// SortField is a listing sort key. Only the two declared values are accepted;
// anything else is rejected before query construction.
type SortField string

const (
	SortByDate  SortField = "date"
	SortByTitle SortField = "title"
)

// SortOrder is a listing sort direction.
type SortOrder string

const (
	OrderAsc  SortOrder = "asc"
	OrderDesc SortOrder = "desc"
)

// ListParams are the validated listing inputs from the HTTP layer.
type ListParams struct {
	Page     int
	PageSize int
	Title    string    // case-insensitive substring filter; empty = no filter
	TagID    uint      // tag containment filter; 0 = no filter
	SortBy   SortField // empty = default (date)
	Order    SortOrder // empty = default (desc)
}

// ListQuery is a ListParams scoped to the owning user, as handed to the
// repository. Both the count query and the result query are built from it so
// their filter predicates cannot diverge.
type ListQuery struct {
	UserID   uint
	Title    string
	TagID    uint
	SortBy   SortField
	Order    SortOrder
	Page     int
	PageSize int
}

// UploadRequest carries the raw upload fields after HTTP parsing.
type UploadRequest struct {
	Data             []byte
	DeclaredMimeType string
	Title            string
	TagIDs           []uint
}

// Repository defines persistence operations needed by the service.
type Repository interface {
	ResolveTags(ctx context.Context, ids []uint) ([]TagRef, error)
	TagExists(ctx context.Context, id uint) (bool, error)
	Create(ctx context.Context, img *Image) error
	LinkTags(ctx context.Context, imageID uint, tagIDs []uint) error
	CountImages(ctx context.Context, q ListQuery) (int64, error)
	ListImages(ctx context.Context, q ListQuery) ([]ListedImage, error)
	ExistsByKey(ctx context.Context, key string) (bool, error)
}

// StoredObject describes one object found in the store, as reported by List.
type StoredObject struct {
	Key          string
	LastModified time.Time
}

// Storage defines object store operations.
type Storage interface {
	Upload(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
	List(ctx context.Context, prefix string) ([]StoredObject, error)
	Delete(ctx context.Context, key string) error
}

// Rendition is the output of transcoding one upload to the fixed profile.
type Rendition struct {
	Data   []byte
	Width  int
	Height int
}

// Transcoder normalizes an arbitrary accepted input image into the fixed
// output profile.
type Transcoder interface {
	Transcode(data []byte) (*Rendition, error)
}
