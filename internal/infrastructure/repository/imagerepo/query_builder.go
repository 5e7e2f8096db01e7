package imagerepo

import (
	"strings"

	"github.com/lib/pq"

	domain "memi-server/internal/domain/image"
)

// builtQuery is one executable statement: SQL text plus its bind arguments.
// Every variable piece of the query shape is bound, never interpolated; the
// only text that varies is chosen from fixed fragments below.
type builtQuery struct {
	SQL  string
	Args []any
}

const listSelect = `SELECT images.id AS id, images.title AS title, images.key AS key, ` +
	`images.mime_type AS mime_type, images.width AS width, images.height AS height, ` +
	`images.file_size AS file_size, images.user_id AS user_id, images.upload_at AS upload_at, ` +
	`json_agg(json_build_object('id', tags.id, 'tagName', tags.tag_name)) AS all_tags ` +
	`FROM images ` +
	`INNER JOIN image_tags ON images.id = image_tags.image_id ` +
	`INNER JOIN tags ON image_tags.tag_id = tags.id`

// buildCountQuery produces the unaggregated total for a listing. It applies
// the same filter predicates as buildListQuery so the reported page math
// always matches what the result query can produce.
func buildCountQuery(q domain.ListQuery) builtQuery {
	var sb strings.Builder
	var args []any

	sb.WriteString("SELECT count(*) FROM images")
	if q.TagID != 0 {
		// Membership via the join is exact here: (image_id, tag_id) is the
		// primary key of image_tags, so each image matches at most once.
		sb.WriteString(" INNER JOIN image_tags ON images.id = image_tags.image_id")
		sb.WriteString(" WHERE images.user_id = ? AND image_tags.tag_id = ?")
		args = append(args, q.UserID, q.TagID)
	} else {
		sb.WriteString(" WHERE images.user_id = ?")
		args = append(args, q.UserID)
	}
	if q.Title != "" {
		sb.WriteString(" AND images.title ILIKE ?")
		args = append(args, "%"+q.Title+"%")
	}

	return builtQuery{SQL: sb.String(), Args: args}
}

// buildListQuery produces the page of rows. The join fans out to one row per
// (image, tag); grouping by image id collapses it back while json_agg keeps
// the full tag fan-out. The tag filter is applied after grouping as a
// containment test over the aggregated tag ids, so a multi-tagged image
// neither duplicates nor loses rows.
func buildListQuery(q domain.ListQuery) builtQuery {
	var sb strings.Builder
	var args []any

	sb.WriteString(listSelect)
	sb.WriteString(" WHERE images.user_id = ?")
	args = append(args, q.UserID)

	if q.Title != "" {
		sb.WriteString(" AND images.title ILIKE ?")
		args = append(args, "%"+q.Title+"%")
	}

	sb.WriteString(" GROUP BY images.id")

	if q.TagID != 0 {
		sb.WriteString(" HAVING array_agg(tags.id) @> ?")
		args = append(args, pq.Array([]int64{int64(q.TagID)}))
	}

	sb.WriteString(" ORDER BY ")
	sb.WriteString(sortColumn(q.SortBy))
	sb.WriteString(" ")
	sb.WriteString(sortDirection(q.Order))

	sb.WriteString(" LIMIT ? OFFSET ?")
	args = append(args, q.PageSize, (q.Page-1)*q.PageSize)

	return builtQuery{SQL: sb.String(), Args: args}
}

// sortColumn maps the validated sort key to a fixed column fragment. Unknown
// keys were rejected upstream; anything that slips through gets the default,
// never the raw input.
func sortColumn(field domain.SortField) string {
	if field == domain.SortByTitle {
		return "images.title"
	}
	return "images.upload_at"
}

func sortDirection(order domain.SortOrder) string {
	if order == domain.OrderAsc {
		return "ASC"
	}
	return "DESC"
}
