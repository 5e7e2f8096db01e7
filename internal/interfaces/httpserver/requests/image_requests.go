package requests

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	domain "memi-server/internal/domain/image"
)

const (
	uploadFileField = "image"

	defaultPage     = 1
	defaultPageSize = 8
)

// ParseUpload reads the multipart upload form: the image file plus the title
// and tags fields. Only transport-level problems are rejected here; content
// rules (size, type, title length, tag count) belong to the domain layer.
func ParseUpload(c *gin.Context, maxBytes int64) (*domain.UploadRequest, error) {
	file, header, err := c.Request.FormFile(uploadFileField)
	if err != nil {
		return nil, fmt.Errorf("image file is required")
	}
	defer file.Close()

	// Read one byte past the cap so the domain layer can distinguish "at the
	// limit" from "over it" without buffering an arbitrarily large body.
	data, err := io.ReadAll(io.LimitReader(file, maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read image file")
	}

	tagIDs, err := parseTagIDs(c.Request.FormValue("tags"))
	if err != nil {
		return nil, err
	}

	return &domain.UploadRequest{
		Data:             data,
		DeclaredMimeType: header.Header.Get("Content-Type"),
		Title:            c.Request.FormValue("title"),
		TagIDs:           tagIDs,
	}, nil
}

// parseTagIDs accepts the tags field either as a JSON array ("[1,2,3]") or as
// a comma separated list ("1,2,3").
func parseTagIDs(raw string) ([]uint, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	if strings.HasPrefix(raw, "[") {
		var ids []uint
		if err := json.Unmarshal([]byte(raw), &ids); err != nil {
			return nil, fmt.Errorf("tags must be an array of tag ids")
		}
		return ids, nil
	}

	parts := strings.Split(raw, ",")
	ids := make([]uint, 0, len(parts))
	for _, part := range parts {
		id, err := strconv.ParseUint(strings.TrimSpace(part), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("tags must be an array of tag ids")
		}
		ids = append(ids, uint(id))
	}
	return ids, nil
}

// ParseListParams reads the listing query string. Pagination defaults apply
// here; sort and filter validation happens in the domain layer.
func ParseListParams(c *gin.Context) (domain.ListParams, error) {
	params := domain.ListParams{
		Page:     defaultPage,
		PageSize: defaultPageSize,
		Title:    c.Query("title"),
		SortBy:   domain.SortField(c.Query("sortBy")),
		Order:    domain.SortOrder(c.Query("order")),
	}

	if raw := c.Query("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil {
			return params, fmt.Errorf("page must be an integer")
		}
		params.Page = page
	}
	if raw := c.Query("pageSize"); raw != "" {
		pageSize, err := strconv.Atoi(raw)
		if err != nil {
			return params, fmt.Errorf("pageSize must be an integer")
		}
		params.PageSize = pageSize
	}
	if raw := c.Query("tagId"); raw != "" {
		tagID, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || tagID == 0 {
			return params, fmt.Errorf("tagId must be a positive integer")
		}
		params.TagID = uint(tagID)
	}

	return params, nil
}
