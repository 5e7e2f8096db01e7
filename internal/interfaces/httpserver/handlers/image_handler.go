package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"memi-server/internal/config"
	domain "memi-server/internal/domain/image"
	"memi-server/internal/infrastructure/auth"
	"memi-server/internal/infrastructure/metrics"
	"memi-server/internal/interfaces/httpserver/requests"
	"memi-server/internal/interfaces/httpserver/responses"
	"memi-server/internal/utils/platformerrors"
)

// ImageHandler exposes the upload and listing endpoints.
type ImageHandler struct {
	cfg     *config.Config
	service *domain.Service
	log     zerolog.Logger
}

func NewImageHandler(cfg *config.Config, service *domain.Service, log zerolog.Logger) *ImageHandler {
	return &ImageHandler{
		cfg:     cfg,
		service: service,
		log:     log.With().Str("component", "image-handler").Logger(),
	}
}

// Upload accepts a multipart image upload with a title and tag ids, runs the
// ingestion pipeline and returns the stored record with a signed URL.
func (h *ImageHandler) Upload(c *gin.Context) {
	principal, ok := auth.PrincipalFrom(c)
	if !ok {
		responses.HandleNewError(c, platformerrors.ErrorTypeUnauthorized,
			"authentication required", "f8d2b5a0-3c67-4e19-98f8-2a5d7c0e4b31")
		return
	}

	req, err := requests.ParseUpload(c, h.cfg.MaxUploadBytes)
	if err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation,
			err.Error(), "6e9c2f7d-0a48-4b53-86e9-1d3f8b5a2c70")
		return
	}

	result, err := h.service.Ingest(c.Request.Context(), principal, *req)
	if err != nil {
		metrics.RecordUpload("error", 0)
		h.log.Error().Err(err).Str("username", principal.Username).Msg("upload failed")
		responses.HandleError(c, err, "failed to upload image")
		return
	}

	metrics.RecordUpload("success", result.FileSize)
	c.JSON(http.StatusCreated, gin.H{"image": result})
}

// List returns one page of the caller's images, filtered and sorted per the
// query string, each with a signed read URL.
func (h *ImageHandler) List(c *gin.Context) {
	principal, ok := auth.PrincipalFrom(c)
	if !ok {
		responses.HandleNewError(c, platformerrors.ErrorTypeUnauthorized,
			"authentication required", "1c5e8a3f-7d20-4b96-a1c5-9f4b2d6e0873")
		return
	}

	params, err := requests.ParseListParams(c)
	if err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation,
			err.Error(), "b3f7d0c5-2e84-4a16-9bb3-6c1e8f5a2d49")
		return
	}

	page, err := h.service.List(c.Request.Context(), principal, params)
	if err != nil {
		responses.HandleError(c, err, "failed to list images")
		return
	}

	c.JSON(http.StatusOK, page)
}
