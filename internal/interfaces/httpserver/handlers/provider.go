package handlers

import (
	"github.com/rs/zerolog"

	"memi-server/internal/config"
	image "memi-server/internal/domain/image"
	"memi-server/internal/domain/tag"
	"memi-server/internal/domain/user"
	"memi-server/internal/infrastructure/auth"
)

// Provider wires HTTP handlers.
type Provider struct {
	Image *ImageHandler
	Tag   *TagHandler
	User  *UserHandler
}

func NewProvider(
	cfg *config.Config,
	imageService *image.Service,
	tagService *tag.Service,
	userService *user.Service,
	issuer *auth.TokenIssuer,
	log zerolog.Logger,
) *Provider {
	return &Provider{
		Image: NewImageHandler(cfg, imageService, log),
		Tag:   NewTagHandler(tagService, log),
		User:  NewUserHandler(cfg, userService, issuer, log),
	}
}
