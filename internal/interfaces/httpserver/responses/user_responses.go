package responses

import "memi-server/internal/domain/user"

// UserResponse is the public shape of an account.
type UserResponse struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
}

// AuthResponse carries the bearer token for subsequent requests. Both signup
// and login reply with it, so a fresh account can upload immediately.
type AuthResponse struct {
	AccessToken string       `json:"accessToken"`
	TokenType   string       `json:"tokenType"`
	ExpiresIn   int          `json:"expiresIn"`
	User        UserResponse `json:"user"`
}

// NewUserResponse maps an account to its public shape.
func NewUserResponse(u *user.User) UserResponse {
	return UserResponse{ID: u.ID, Username: u.Username}
}
