package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/celiacapp/celiac-tracker-service/internal/domain"
)

// fakeUserRepo is an in-memory UserRepository
type fakeUserRepo struct {
	byEmail map[string]*domain.User
	nextID  int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byEmail: map[string]*domain.User{}}
}

func (f *fakeUserRepo) CreateUser(_ context.Context, user *domain.User) error {
	f.nextID++
	user.ID = fmt.Sprintf("u%d", f.nextID)
	c := *user
	f.byEmail[user.Email] = &c
	return nil
}

func (f *fakeUserRepo) GetUserByID(_ context.Context, userID string) (*domain.User, error) {
	for _, u := range f.byEmail {
		if u.ID == userID {
			c := *u
			return &c, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeUserRepo) GetUserByEmail(_ context.Context, email string) (*domain.User, error) {
	u, ok := f.byEmail[email]
	if !ok {
		return nil, domain.ErrNotFound
	}
	c := *u
	return &c, nil
}

func newTestAuthService(repo *fakeUserRepo) AuthService {
	return NewAuthService(AuthServiceConfig{
		UserRepo:             repo,
		JWTSecret:            "test-secret",
		JWTAccessExpiration:  time.Hour,
		JWTRefreshExpiration: 24 * time.Hour,
	})
}

func TestRegisterAndLogin(t *testing.T) {
	svc := newTestAuthService(newFakeUserRepo())
	ctx := context.Background()

	resp, err := svc.Register(ctx, "Anna@Example.com", "hunter2hunter2", "Anna")
	require.NoError(t, err)
	assert.Equal(t, "anna@example.com", resp.User.Email, "email is normalized")
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)

	// password hash never equals the plaintext and is hidden from JSON
	assert.NotEqual(t, "hunter2hunter2", resp.User.PasswordHash)

	login, err := svc.Login(ctx, "anna@example.com", "hunter2hunter2")
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, login.User.ID)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc := newTestAuthService(newFakeUserRepo())
	ctx := context.Background()

	_, err := svc.Register(ctx, "anna@example.com", "hunter2hunter2", "Anna")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "anna@example.com", "differentpass", "Anna Again")
	assert.ErrorIs(t, err, ErrUserAlreadyExists)
}

func TestRegisterValidation(t *testing.T) {
	svc := newTestAuthService(newFakeUserRepo())
	ctx := context.Background()

	_, err := svc.Register(ctx, "not-an-email", "hunter2hunter2", "x")
	assert.True(t, domain.IsValidation(err))

	_, err = svc.Register(ctx, "a@b.com", "short", "x")
	assert.True(t, domain.IsValidation(err))
}

func TestLoginWrongPassword(t *testing.T) {
	svc := newTestAuthService(newFakeUserRepo())
	ctx := context.Background()

	_, err := svc.Register(ctx, "anna@example.com", "hunter2hunter2", "Anna")
	require.NoError(t, err)

	_, err = svc.Login(ctx, "anna@example.com", "wrongpassword")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, "nobody@example.com", "hunter2hunter2")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestValidateAccessToken(t *testing.T) {
	svc := newTestAuthService(newFakeUserRepo())
	ctx := context.Background()

	resp, err := svc.Register(ctx, "anna@example.com", "hunter2hunter2", "Anna")
	require.NoError(t, err)

	claims, err := svc.ValidateAccessToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, claims.UserID)
	assert.Equal(t, "anna@example.com", claims.Email)

	_, err = svc.ValidateAccessToken("garbage.token.here")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRefreshAccessToken(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestAuthService(repo)
	ctx := context.Background()

	resp, err := svc.Register(ctx, "anna@example.com", "hunter2hunter2", "Anna")
	require.NoError(t, err)

	tokens, err := svc.RefreshAccessToken(ctx, resp.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, tokens.AccessToken)

	// a token for a user that no longer exists is rejected
	delete(repo.byEmail, "anna@example.com")
	_, err = svc.RefreshAccessToken(ctx, resp.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
