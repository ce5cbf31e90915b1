package service

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JulianGiraldo97/pagadiario-sub000/internal/config"
	"github.com/JulianGiraldo97/pagadiario-sub000/internal/domain"
	"github.com/JulianGiraldo97/pagadiario-sub000/internal/repository"
)

type fakeUserStore struct {
	byEmail map[string]*domain.User
	byID    map[uuid.UUID]*domain.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{byEmail: map[string]*domain.User{}, byID: map[uuid.UUID]*domain.User{}}
}

func (f *fakeUserStore) Create(_ context.Context, p repository.CreateUserParams) (*domain.User, error) {
	if _, ok := f.byEmail[p.Email]; ok {
		return nil, repository.ErrDuplicate
	}
	u := &domain.User{
		ID:           uuid.New(),
		Name:         p.Name,
		Email:        p.Email,
		Phone:        p.Phone,
		Role:         p.Role,
		PasswordHash: p.PasswordHash,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	f.byEmail[u.Email] = u
	f.byID[u.ID] = u
	return u, nil
}

func (f *fakeUserStore) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	u, ok := f.byEmail[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return u, nil
}

func (f *fakeUserStore) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return u, nil
}

func (f *fakeUserStore) SetPasswordHash(_ context.Context, id uuid.UUID, hash string) error {
	u, ok := f.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.PasswordHash = &hash
	return nil
}

func newAuthService(env string) (AuthService, *fakeUserStore) {
	users := newFakeUserStore()
	return AuthService{
		Config: config.Config{
			Env:             env,
			JWTSecret:       "test-secret",
			AccessTokenTTL:  time.Hour,
			RefreshTokenTTL: 24 * time.Hour,
		},
		Users: users,
	}, users
}

func tokenRole(t *testing.T, tokenStr string) string {
	t.Helper()
	token, err := jwt.Parse(tokenStr, func(*jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	require.NoError(t, err)
	claims, ok := token.Claims.(jwt.MapClaims)
	require.True(t, ok)
	role, _ := claims["role"].(string)
	return role
}

func TestRegister_RequestedAdminRoleIsIgnored(t *testing.T) {
	svc, _ := newAuthService("production")

	res, err := svc.Register(context.Background(), RegisterInput{
		Name:     "Mallory",
		Email:    "mallory@example.com",
		Password: "secret-pass",
		Role:     domain.RoleAdmin,
	})
	require.NoError(t, err)

	assert.Equal(t, domain.RoleCollector, res.User.Role)
	assert.Equal(t, string(domain.RoleCollector), tokenRole(t, res.AccessToken))
}

func TestRegister_AdminRoleAllowedInDevelopment(t *testing.T) {
	svc, _ := newAuthService("development")

	res, err := svc.Register(context.Background(), RegisterInput{
		Name:     "Dev Admin",
		Email:    "dev@example.com",
		Password: "secret-pass",
		Role:     domain.RoleAdmin,
	})
	require.NoError(t, err)

	assert.Equal(t, domain.RoleAdmin, res.User.Role)
	assert.Equal(t, string(domain.RoleAdmin), tokenRole(t, res.AccessToken))
}

func TestRegister_DefaultsToCollector(t *testing.T) {
	svc, _ := newAuthService("production")

	res, err := svc.Register(context.Background(), RegisterInput{
		Name:     "Ana",
		Email:    "ana@example.com",
		Password: "secret-pass",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleCollector, res.User.Role)
}

func TestRegister_RejectsUnknownRole(t *testing.T) {
	svc, _ := newAuthService("development")

	_, err := svc.Register(context.Background(), RegisterInput{
		Name:     "X",
		Email:    "x@example.com",
		Password: "secret-pass",
		Role:     domain.Role("owner"),
	})
	require.Error(t, err)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, _ := newAuthService("production")

	_, err := svc.Register(context.Background(), RegisterInput{
		Name: "A", Email: "dup@example.com", Password: "secret-pass",
	})
	require.NoError(t, err)
	_, err = svc.Register(context.Background(), RegisterInput{
		Name: "B", Email: "dup@example.com", Password: "secret-pass",
	})
	require.Error(t, err)
}

func TestLoginAndChangePassword(t *testing.T) {
	svc, _ := newAuthService("production")

	reg, err := svc.Register(context.Background(), RegisterInput{
		Name: "Ana", Email: "ana@example.com", Password: "first-pass",
	})
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), LoginInput{Email: "ana@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	res, err := svc.Login(context.Background(), LoginInput{Email: "ana@example.com", Password: "first-pass"})
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, res.User.ID)

	err = svc.ChangePassword(context.Background(), reg.User.ID, "wrong", "second-pass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	require.NoError(t, svc.ChangePassword(context.Background(), reg.User.ID, "first-pass", "second-pass"))
	_, err = svc.Login(context.Background(), LoginInput{Email: "ana@example.com", Password: "second-pass"})
	require.NoError(t, err)
}
