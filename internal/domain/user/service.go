package user

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"memi-server/internal/utils/platformerrors"
)

const (
	minUsernameLen = 3
	maxUsernameLen = 30
	minPasswordLen = 8

	// bcryptCost trades hash strength against signup/login latency.
	bcryptCost = 8
)

// Service manages account signup and credential checks.
type Service struct {
	repo Repository
	log  zerolog.Logger
}

func NewService(repo Repository, log zerolog.Logger) *Service {
	return &Service{
		repo: repo,
		log:  log.With().Str("component", "user-service").Logger(),
	}
}

// Signup validates the credentials, hashes the password and stores the
// account. The username doubles as the object path segment for the user's
// uploads, which is why it is restricted to alphanumerics.
func (s *Service) Signup(ctx context.Context, username, password string) (*User, error) {
	username = strings.TrimSpace(username)
	if len(username) < minUsernameLen || len(username) > maxUsernameLen || !isAlphanumeric(username) {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			"username must be 3 to 30 alphanumeric characters", nil, "a8f2d5c1-6e09-4b73-92a8-0c4f7e1d3b56")
	}
	if len(password) < minPasswordLen {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			"password must be at least 8 characters", nil, "3c7e0b4f-9d25-4a81-b3c7-5f8a2d6e9014")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeInternal,
			"failed to hash password", err, "d1b6f3a8-4c70-4e52-86d1-2e9c5b0f7a43")
	}

	u := &User{Username: username, Password: string(hash)}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "create user")
	}

	s.log.Info().Uint("user_id", u.ID).Str("username", u.Username).Msg("user signed up")
	return u, nil
}

// Login verifies the credentials and returns the account. Unknown usernames
// and wrong passwords produce the same response so the two cannot be told
// apart from outside.
func (s *Service) Login(ctx context.Context, username, password string) (*User, error) {
	u, err := s.repo.FindByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if platformerrors.IsErrorType(err, platformerrors.ErrorTypeNotFound) {
			return nil, invalidCredentials(ctx)
		}
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "load user")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)); err != nil {
		return nil, invalidCredentials(ctx)
	}
	return u, nil
}

func invalidCredentials(ctx context.Context) error {
	return platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeUnauthorized,
		"invalid credentials", nil, "7e4a9c2d-0b68-4f35-a7e4-8c1d5b3f6920")
}

func isAlphanumeric(s string) bool {
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}
