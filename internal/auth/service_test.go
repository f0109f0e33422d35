package auth

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/rebootmart/rebootmart-backend/internal/users"
	authpkg "github.com/rebootmart/rebootmart-backend/pkg/auth"
	"github.com/rebootmart/rebootmart-backend/pkg/auth/session"
	"github.com/rebootmart/rebootmart-backend/pkg/config"
	"github.com/rebootmart/rebootmart-backend/pkg/db/models"
	"github.com/rebootmart/rebootmart-backend/pkg/enums"
	pkgerrors "github.com/rebootmart/rebootmart-backend/pkg/errors"
	"github.com/rebootmart/rebootmart-backend/pkg/logger"
	"github.com/rebootmart/rebootmart-backend/pkg/pagination"
	"github.com/rebootmart/rebootmart-backend/pkg/security"
)

type stubUserRepo struct {
	byEmail    map[string]*models.User
	byID       map[uuid.UUID]*models.User
	lastLogins map[uuid.UUID]time.Time
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{
		byEmail:    map[string]*models.User{},
		byID:       map[uuid.UUID]*models.User{},
		lastLogins: map[uuid.UUID]time.Time{},
	}
}

func (s *stubUserRepo) add(user *models.User) {
	s.byEmail[user.Email] = user
	s.byID[user.ID] = user
}

func (s *stubUserRepo) WithTx(_ *gorm.DB) users.Repository { return s }

func (s *stubUserRepo) Create(_ context.Context, user *models.User) (*models.User, error) {
	if _, ok := s.byEmail[user.Email]; ok {
		return nil, &mockUniqueViolation{}
	}
	user.ID = uuid.New()
	s.add(user)
	return user, nil
}

func (s *stubUserRepo) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	u, ok := s.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return u, nil
}

func (s *stubUserRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	u, ok := s.byEmail[email]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return u, nil
}

func (s *stubUserRepo) List(_ context.Context, _ users.ListFilters, _ pagination.Params) ([]models.User, string, error) {
	return nil, "", nil
}

func (s *stubUserRepo) UpdateLastLogin(_ context.Context, id uuid.UUID, at time.Time) error {
	s.lastLogins[id] = at
	return nil
}

func (s *stubUserRepo) AddTags(_ context.Context, ids []uuid.UUID, _ []string) (int64, error) {
	return int64(len(ids)), nil
}

func (s *stubUserRepo) RemoveTags(_ context.Context, ids []uuid.UUID, _ []string) (int64, error) {
	return int64(len(ids)), nil
}

type mockUniqueViolation struct{}

func (m *mockUniqueViolation) Error() string { return "duplicate key value violates unique constraint" }

type stubSessions struct {
	generated map[string]string
	rotateErr error
	revoked   []string
}

func newStubSessions() *stubSessions {
	return &stubSessions{generated: map[string]string{}}
}

func (s *stubSessions) Generate(_ context.Context, accessID string) (string, error) {
	token := "refresh-" + accessID
	s.generated[accessID] = token
	return token, nil
}

func (s *stubSessions) Rotate(_ context.Context, oldAccessID, provided string) (string, string, error) {
	if s.rotateErr != nil {
		return "", "", s.rotateErr
	}
	stored, ok := s.generated[oldAccessID]
	if !ok || stored != provided {
		return "", "", session.ErrInvalidRefreshToken
	}
	delete(s.generated, oldAccessID)
	newID := session.NewAccessID()
	token := "refresh-" + newID
	s.generated[newID] = token
	return newID, token, nil
}

func (s *stubSessions) Revoke(_ context.Context, accessID string) error {
	s.revoked = append(s.revoked, accessID)
	delete(s.generated, accessID)
	return nil
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "test-secret-please-rotate",
		Issuer:            "rebootmart-test",
		ExpirationMinutes: 15,
	}
}

func testPasswordConfig() config.PasswordConfig {
	return config.PasswordConfig{
		ArgonMemoryKB:    8 * 1024,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	}
}

func newTestService(t *testing.T, repo users.Repository, sessions sessionManager) Service {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "auth-test", Level: zerolog.ErrorLevel, Output: io.Discard})
	svc, err := NewService(repo, sessions, testJWTConfig(), testPasswordConfig(), logg)
	require.NoError(t, err)
	return svc
}

func registerInput() RegisterInput {
	return RegisterInput{
		Email:     "asha@example.com",
		Password:  "correct horse battery",
		FirstName: "Asha",
		LastName:  "Rao",
	}
}

func TestRegisterAndLogin(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestService(t, repo, newStubSessions())

	result, err := svc.Register(context.Background(), registerInput())
	require.NoError(t, err)
	require.Equal(t, "asha@example.com", result.User.Email)
	require.Equal(t, string(enums.MemberRoleBuyer), result.User.Role)
	require.NotEmpty(t, result.Tokens.AccessToken)
	require.NotEmpty(t, result.Tokens.RefreshToken)

	claims, err := authpkg.ParseAccessToken(testJWTConfig(), result.Tokens.AccessToken)
	require.NoError(t, err)
	require.Equal(t, result.User.ID, claims.UserID)

	login, err := svc.Login(context.Background(), LoginInput{
		Email:    "asha@example.com",
		Password: "correct horse battery",
	})
	require.NoError(t, err)
	require.NotEmpty(t, login.Tokens.AccessToken)
	require.Contains(t, repo.lastLogins, result.User.ID)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc := newTestService(t, newStubUserRepo(), newStubSessions())

	_, err := svc.Register(context.Background(), registerInput())
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), registerInput())
	require.Equal(t, pkgerrors.CodeConflict, pkgerrors.As(err).Code())
}

func TestRegisterValidation(t *testing.T) {
	svc := newTestService(t, newStubUserRepo(), newStubSessions())

	bad := registerInput()
	bad.Email = "not-an-email"
	_, err := svc.Register(context.Background(), bad)
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())

	short := registerInput()
	short.Password = "short"
	_, err = svc.Register(context.Background(), short)
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestLoginWrongPassword(t *testing.T) {
	repo := newStubUserRepo()
	hash, err := security.HashPassword("right password", testPasswordConfig())
	require.NoError(t, err)
	repo.add(&models.User{
		ID:           uuid.New(),
		Email:        "asha@example.com",
		PasswordHash: hash,
		Role:         enums.MemberRoleBuyer,
		IsActive:     true,
	})
	svc := newTestService(t, repo, newStubSessions())

	_, err = svc.Login(context.Background(), LoginInput{Email: "asha@example.com", Password: "wrong"})
	require.Equal(t, pkgerrors.CodeUnauthorized, pkgerrors.As(err).Code())
}

func TestLoginInactiveAccount(t *testing.T) {
	repo := newStubUserRepo()
	hash, err := security.HashPassword("right password", testPasswordConfig())
	require.NoError(t, err)
	repo.add(&models.User{
		ID:           uuid.New(),
		Email:        "asha@example.com",
		PasswordHash: hash,
		Role:         enums.MemberRoleBuyer,
		IsActive:     false,
	})
	svc := newTestService(t, repo, newStubSessions())

	_, err = svc.Login(context.Background(), LoginInput{Email: "asha@example.com", Password: "right password"})
	require.Equal(t, pkgerrors.CodeUnauthorized, pkgerrors.As(err).Code())
}

func TestRefreshRotatesSession(t *testing.T) {
	repo := newStubUserRepo()
	sessions := newStubSessions()
	svc := newTestService(t, repo, sessions)

	registered, err := svc.Register(context.Background(), registerInput())
	require.NoError(t, err)

	claims, err := authpkg.ParseAccessToken(testJWTConfig(), registered.Tokens.AccessToken)
	require.NoError(t, err)

	refreshed, err := svc.Refresh(context.Background(), RefreshInput{
		AccessID:     claims.ID,
		UserID:       claims.UserID,
		RefreshToken: registered.Tokens.RefreshToken,
	})
	require.NoError(t, err)
	require.NotEqual(t, registered.Tokens.RefreshToken, refreshed.Tokens.RefreshToken)

	// the old pair is now dead
	_, err = svc.Refresh(context.Background(), RefreshInput{
		AccessID:     claims.ID,
		UserID:       claims.UserID,
		RefreshToken: registered.Tokens.RefreshToken,
	})
	require.Equal(t, pkgerrors.CodeUnauthorized, pkgerrors.As(err).Code())
}

func TestLogoutRevokesSession(t *testing.T) {
	sessions := newStubSessions()
	svc := newTestService(t, newStubUserRepo(), sessions)

	require.NoError(t, svc.Logout(context.Background(), "access-1"))
	require.Equal(t, []string{"access-1"}, sessions.revoked)
}
