package tag

import "context"

// Tag is a lowercase label that images can be linked to. Names are unique
// across the whole system, not per user.
type Tag struct {
	ID      uint   `json:"id"`
	TagName string `json:"tagName"`
}

// Page is the tag listing envelope.
type Page struct {
	CurrentPage int   `json:"currentPage"`
	TotalPages  int   `json:"totalPages"`
	PageSize    int   `json:"pageSize"`
	TotalTags   int64 `json:"totalTags"`
	Tags        []Tag `json:"tags"`
}

// Repository defines tag persistence.
type Repository interface {
	Create(ctx context.Context, t *Tag) error
	List(ctx context.Context, name string, page, pageSize int) ([]Tag, int64, error)
}
