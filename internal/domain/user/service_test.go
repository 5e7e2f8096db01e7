package user

import (
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"memi-server/internal/utils/platformerrors"
)

type mockRepo struct {
	byUsername map[string]*User
	nextID     uint
}

func (m *mockRepo) Create(ctx context.Context, u *User) error {
	if m.byUsername == nil {
		m.byUsername = map[string]*User{}
	}
	if _, ok := m.byUsername[u.Username]; ok {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeConflict,
			"username already exists", nil, "4a7d2e8c-0f53-4b96-81a4-6c9e3b5d7f20")
	}
	m.nextID++
	u.ID = m.nextID
	m.byUsername[u.Username] = u
	return nil
}

func (m *mockRepo) FindByUsername(ctx context.Context, username string) (*User, error) {
	if u, ok := m.byUsername[username]; ok {
		return u, nil
	}
	return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeNotFound,
		"user not found", nil, "8d3b6f1e-5a24-4c70-b9d8-1f6c4a9e0257")
}

func (m *mockRepo) FindByID(ctx context.Context, id uint) (*User, error) {
	for _, u := range m.byUsername {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeNotFound,
		"user not found", nil, "e2c8f5b0-7d13-4a68-92e2-5b9f0d3a7c14")
}

func newTestService() (*Service, *mockRepo) {
	repo := &mockRepo{}
	return NewService(repo, zerolog.Nop()), repo
}

func TestSignupHashesPassword(t *testing.T) {
	svc, repo := newTestService()

	created, err := svc.Signup(context.Background(), "alice", "supersecret")
	require.NoError(t, err)

	stored := repo.byUsername["alice"]
	require.NotNil(t, stored)
	assert.NotEqual(t, "supersecret", stored.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte("supersecret")))
	assert.NotZero(t, created.ID)
}

func TestSignupValidation(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	cases := []struct {
		username, password string
	}{
		{"ab", "supersecret"},               // username too short
		{"user name", "supersecret"},        // non-alphanumeric
		{"alice!", "supersecret"},           // punctuation
		{"alice", "short"},                  // password too short
		{strings.Repeat("a", 31), "supersecret"}, // username too long
	}
	for _, tc := range cases {
		_, err := svc.Signup(ctx, tc.username, tc.password)
		require.Error(t, err, tc.username)
		assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeValidation))
	}
}

func TestSignupDuplicateUsername(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Signup(ctx, "alice", "supersecret")
	require.NoError(t, err)

	_, err = svc.Signup(ctx, "alice", "othersecret")
	require.Error(t, err)
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeConflict))
}

func TestLoginSuccess(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	created, err := svc.Signup(ctx, "alice", "supersecret")
	require.NoError(t, err)

	account, err := svc.Login(ctx, "alice", "supersecret")
	require.NoError(t, err)
	assert.Equal(t, created.ID, account.ID)
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Signup(ctx, "alice", "supersecret")
	require.NoError(t, err)

	wrongPassword := mustLoginError(t, svc, ctx, "alice", "wrongpass")
	unknownUser := mustLoginError(t, svc, ctx, "nobody", "supersecret")

	// Same type and message either way.
	assert.Equal(t, wrongPassword.Message, unknownUser.Message)
	assert.Equal(t, wrongPassword.Type, unknownUser.Type)
	assert.Equal(t, platformerrors.ErrorTypeUnauthorized, wrongPassword.Type)
}

func mustLoginError(t *testing.T, svc *Service, ctx context.Context, username, password string) *platformerrors.PlatformError {
	t.Helper()
	_, err := svc.Login(ctx, username, password)
	require.Error(t, err)
	var platformErr *platformerrors.PlatformError
	require.ErrorAs(t, err, &platformErr)
	return platformErr
}
