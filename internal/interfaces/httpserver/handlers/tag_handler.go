package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"memi-server/internal/domain/tag"
	"memi-server/internal/interfaces/httpserver/responses"
	"memi-server/internal/utils/platformerrors"
)

// TagHandler exposes the shared tag vocabulary.
type TagHandler struct {
	service *tag.Service
	log     zerolog.Logger
}

func NewTagHandler(service *tag.Service, log zerolog.Logger) *TagHandler {
	return &TagHandler{
		service: service,
		log:     log.With().Str("component", "tag-handler").Logger(),
	}
}

type createTagRequest struct {
	TagName string `json:"tagName" binding:"required"`
}

// Create adds a new tag to the shared vocabulary.
func (h *TagHandler) Create(c *gin.Context) {
	var req createTagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation,
			"tagName is required", "e0a4c8f2-5b71-4d36-8ee0-3f9d6b2a5c18")
		return
	}

	created, err := h.service.Create(c.Request.Context(), req.TagName)
	if err != nil {
		responses.HandleError(c, err, "failed to create tag")
		return
	}

	c.JSON(http.StatusCreated, created)
}

// List returns a page of tags, optionally filtered by name substring.
func (h *TagHandler) List(c *gin.Context) {
	page, err := queryInt(c, "page", 0)
	if err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation,
			"page must be an integer", "7f2b5d9c-4a08-4e63-b7f2-0c6e9a3d5b84")
		return
	}
	pageSize, err := queryInt(c, "pageSize", 0)
	if err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation,
			"pageSize must be an integer", "4d8f1c6a-9e35-4b70-84d8-5b2a7e0f3c96")
		return
	}

	result, err := h.service.List(c.Request.Context(), c.Query("name"), page, pageSize)
	if err != nil {
		responses.HandleError(c, err, "failed to list tags")
		return
	}

	c.JSON(http.StatusOK, result)
}

func queryInt(c *gin.Context, name string, fallback int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}
