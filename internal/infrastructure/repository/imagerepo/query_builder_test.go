package imagerepo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "memi-server/internal/domain/image"
)

func TestBuildCountQueryBase(t *testing.T) {
	built := buildCountQuery(domain.ListQuery{UserID: 7, Page: 1, PageSize: 10})

	assert.Equal(t, "SELECT count(*) FROM images WHERE images.user_id = ?", built.SQL)
	assert.Equal(t, []any{uint(7)}, built.Args)
}

func TestBuildCountQueryWithTagFilter(t *testing.T) {
	built := buildCountQuery(domain.ListQuery{UserID: 7, TagID: 3, Page: 1, PageSize: 10})

	assert.Equal(t,
		"SELECT count(*) FROM images"+
			" INNER JOIN image_tags ON images.id = image_tags.image_id"+
			" WHERE images.user_id = ? AND image_tags.tag_id = ?",
		built.SQL)
	assert.Equal(t, []any{uint(7), uint(3)}, built.Args)
}

func TestBuildCountQueryWithTitleFilter(t *testing.T) {
	built := buildCountQuery(domain.ListQuery{UserID: 7, Title: "sunset", Page: 1, PageSize: 10})

	assert.Contains(t, built.SQL, "AND images.title ILIKE ?")
	assert.Equal(t, []any{uint(7), "%sunset%"}, built.Args)
}

func TestBuildListQueryDefaults(t *testing.T) {
	built := buildListQuery(domain.ListQuery{UserID: 7, Page: 2, PageSize: 10})

	assert.Contains(t, built.SQL, "json_agg(json_build_object('id', tags.id, 'tagName', tags.tag_name)) AS all_tags")
	assert.Contains(t, built.SQL, "INNER JOIN image_tags ON images.id = image_tags.image_id")
	assert.Contains(t, built.SQL, "INNER JOIN tags ON image_tags.tag_id = tags.id")
	assert.Contains(t, built.SQL, "GROUP BY images.id")
	assert.NotContains(t, built.SQL, "HAVING")
	assert.Contains(t, built.SQL, "ORDER BY images.upload_at DESC")
	assert.Contains(t, built.SQL, "LIMIT ? OFFSET ?")

	// Page 2 with size 10 skips the first 10 rows.
	require.Len(t, built.Args, 3)
	assert.Equal(t, uint(7), built.Args[0])
	assert.Equal(t, 10, built.Args[1])
	assert.Equal(t, 10, built.Args[2])
}

func TestBuildListQueryTagContainment(t *testing.T) {
	built := buildListQuery(domain.ListQuery{UserID: 7, TagID: 3, Page: 1, PageSize: 10})

	assert.Contains(t, built.SQL, "HAVING array_agg(tags.id) @> ?")
	// The tag filter must not leak into WHERE; it applies after aggregation.
	assert.NotContains(t, built.SQL, "image_tags.tag_id = ?")
	require.Len(t, built.Args, 4)
}

func TestBuildListQuerySortWhitelist(t *testing.T) {
	built := buildListQuery(domain.ListQuery{
		UserID: 7, SortBy: domain.SortByTitle, Order: domain.OrderAsc, Page: 1, PageSize: 10,
	})
	assert.Contains(t, built.SQL, "ORDER BY images.title ASC")

	// Anything outside the whitelist falls back to the default column and
	// direction instead of reaching the SQL text.
	built = buildListQuery(domain.ListQuery{
		UserID: 7, SortBy: SortFieldInjection, Order: "ASC; DROP TABLE images", Page: 1, PageSize: 10,
	})
	assert.Contains(t, built.SQL, "ORDER BY images.upload_at DESC")
	assert.NotContains(t, built.SQL, "DROP TABLE")
}

// SortFieldInjection is a deliberately hostile sort key for the whitelist test.
const SortFieldInjection domain.SortField = "upload_at; DROP TABLE images"

func TestCountAndListShareFilterPredicates(t *testing.T) {
	q := domain.ListQuery{UserID: 7, Title: "cat", Page: 1, PageSize: 10}

	count := buildCountQuery(q)
	list := buildListQuery(q)

	// Both sides must bind the same title pattern so totals match the rows.
	assert.Contains(t, count.Args, "%cat%")
	assert.Contains(t, list.Args, "%cat%")
}
