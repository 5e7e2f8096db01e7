package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"memi-server/internal/config"
	"memi-server/internal/domain/user"
	"memi-server/internal/infrastructure/auth"
	"memi-server/internal/interfaces/httpserver/responses"
	"memi-server/internal/utils/platformerrors"
)

// UserHandler exposes signup and login.
type UserHandler struct {
	cfg     *config.Config
	service *user.Service
	issuer  *auth.TokenIssuer
	log     zerolog.Logger
}

func NewUserHandler(cfg *config.Config, service *user.Service, issuer *auth.TokenIssuer, log zerolog.Logger) *UserHandler {
	return &UserHandler{
		cfg:     cfg,
		service: service,
		issuer:  issuer,
		log:     log.With().Str("component", "user-handler").Logger(),
	}
}

type credentialsRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Signup creates a new account and issues its first token.
func (h *UserHandler) Signup(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation,
			"username and password are required", "a6e3c0f8-1d54-4b27-9aa6-8f2c5e7d0b43")
		return
	}

	created, err := h.service.Signup(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		responses.HandleError(c, err, "failed to sign up")
		return
	}

	h.respondWithToken(c, http.StatusCreated, created)
}

// Login verifies credentials and issues an access token.
func (h *UserHandler) Login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation,
			"username and password are required", "0b7d4e9a-6c32-4f85-80b7-3a1f5c8e2d69")
		return
	}

	account, err := h.service.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		responses.HandleError(c, err, "failed to log in")
		return
	}

	h.respondWithToken(c, http.StatusOK, account)
}

func (h *UserHandler) respondWithToken(c *gin.Context, status int, account *user.User) {
	token, err := h.issuer.Issue(account.ID)
	if err != nil {
		h.log.Error().Err(err).Uint("user_id", account.ID).Msg("token issue failed")
		responses.HandleNewError(c, platformerrors.ErrorTypeInternal,
			"failed to issue token", "5c1a8f4d-2b70-4e36-95c1-7e9b0d3f6a28")
		return
	}

	c.JSON(status, responses.AuthResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int(h.cfg.AccessTokenTTL.Seconds()),
		User:        responses.NewUserResponse(account),
	})
}
