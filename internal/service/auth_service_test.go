package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/campuskit/faculty-admin-api/internal/models"
	appErrors "github.com/campuskit/faculty-admin-api/pkg/errors"
)

type mockUserRepo struct {
	userByEmail      *models.User
	userByID         *models.User
	findByEmailErr   error
	findByIDErr      error
	refreshTokens    map[string]*models.RefreshToken
	lastLoginUpdated bool
	passwordUpdated  bool
	allRevoked       bool
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.findByEmailErr != nil {
		return nil, m.findByEmailErr
	}
	return m.userByEmail, nil
}

func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	if m.findByIDErr != nil {
		return nil, m.findByIDErr
	}
	if m.userByID != nil {
		return m.userByID, nil
	}
	return m.userByEmail, nil
}

func (m *mockUserRepo) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error {
	m.lastLoginUpdated = true
	return nil
}

func (m *mockUserRepo) UpdatePassword(ctx context.Context, id, passwordHash string, updatedAt time.Time) error {
	m.passwordUpdated = true
	if m.userByEmail != nil && m.userByEmail.ID == id {
		m.userByEmail.PasswordHash = passwordHash
	}
	return nil
}

func (m *mockUserRepo) CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	if m.refreshTokens == nil {
		m.refreshTokens = make(map[string]*models.RefreshToken)
	}
	m.refreshTokens[token.Token] = token
	return nil
}

func (m *mockUserRepo) FindRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	rt, ok := m.refreshTokens[token]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return rt, nil
}

func (m *mockUserRepo) RevokeRefreshToken(ctx context.Context, id string, revokedAt time.Time) error {
	for _, token := range m.refreshTokens {
		if token.ID == id {
			token.Revoked = true
			token.RevokedAt = &revokedAt
		}
	}
	return nil
}

func (m *mockUserRepo) RevokeUserRefreshTokens(ctx context.Context, userID string) error {
	m.allRevoked = true
	return nil
}

type mockFacultyLookup struct {
	profile *models.FacultyProfile
}

func (m *mockFacultyLookup) FindByUserID(ctx context.Context, userID string) (*models.FacultyProfile, error) {
	if m.profile == nil {
		return nil, sql.ErrNoRows
	}
	return m.profile, nil
}

func newAuthService(repo *mockUserRepo, faculties *mockFacultyLookup) *AuthService {
	if faculties == nil {
		faculties = &mockFacultyLookup{}
	}
	return NewAuthService(repo, faculties, validator.New(), zap.NewNop(), AuthConfig{
		AccessTokenSecret:  "test-secret",
		AccessTokenExpiry:  15 * time.Minute,
		RefreshTokenExpiry: 24 * time.Hour,
		Issuer:             "faculty-admin-api",
	})
}

func testUser(t *testing.T, role models.UserRole) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	require.NoError(t, err)
	return &models.User{
		ID:           "user-1",
		Email:        "rao@campus.edu",
		PasswordHash: string(hash),
		Name:         "Dr. Rao",
		Role:         role,
		Active:       true,
	}
}

func TestAuthServiceLoginSuccess(t *testing.T) {
	repo := &mockUserRepo{userByEmail: testUser(t, models.RoleAdmin)}
	svc := newAuthService(repo, nil)

	resp, err := svc.Login(context.Background(), models.LoginRequest{Email: "rao@campus.edu", Password: "secret123"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, "Dr. Rao", resp.User.Name)
	assert.True(t, repo.lastLoginUpdated)

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, models.RoleAdmin, claims.Role)
	assert.Empty(t, claims.FacultyID)
}

func TestAuthServiceLoginEmbedsFacultyID(t *testing.T) {
	repo := &mockUserRepo{userByEmail: testUser(t, models.RoleFaculty)}
	faculties := &mockFacultyLookup{profile: &models.FacultyProfile{Faculty: models.Faculty{ID: "fac-1", UserID: "user-1"}}}
	svc := newAuthService(repo, faculties)

	resp, err := svc.Login(context.Background(), models.LoginRequest{Email: "rao@campus.edu", Password: "secret123"})
	require.NoError(t, err)

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "fac-1", claims.FacultyID)
}

func TestAuthServiceLoginWrongPassword(t *testing.T) {
	repo := &mockUserRepo{userByEmail: testUser(t, models.RoleAdmin)}
	svc := newAuthService(repo, nil)

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "rao@campus.edu", Password: "wrong"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErr.Code)
}

func TestAuthServiceLoginUnknownEmail(t *testing.T) {
	repo := &mockUserRepo{findByEmailErr: sql.ErrNoRows}
	svc := newAuthService(repo, nil)

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "ghost@campus.edu", Password: "secret123"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErr.Code)
}

func TestAuthServiceLoginInactiveAccount(t *testing.T) {
	user := testUser(t, models.RoleAdmin)
	user.Active = false
	svc := newAuthService(&mockUserRepo{userByEmail: user}, nil)

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "rao@campus.edu", Password: "secret123"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrInactiveAccount.Code, appErr.Code)
}

func TestAuthServiceRefreshRotatesToken(t *testing.T) {
	repo := &mockUserRepo{userByEmail: testUser(t, models.RoleAdmin)}
	svc := newAuthService(repo, nil)

	login, err := svc.Login(context.Background(), models.LoginRequest{Email: "rao@campus.edu", Password: "secret123"})
	require.NoError(t, err)

	refreshed, err := svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: login.RefreshToken})
	require.NoError(t, err)
	assert.NotEqual(t, login.RefreshToken, refreshed.RefreshToken)

	// the consumed token is single-use
	_, err = svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: login.RefreshToken})
	require.Error(t, err)
}

func TestAuthServiceRefreshExpiredToken(t *testing.T) {
	repo := &mockUserRepo{
		userByEmail: testUser(t, models.RoleAdmin),
		refreshTokens: map[string]*models.RefreshToken{
			"stale": {ID: "rt-1", UserID: "user-1", Token: "stale", ExpiresAt: time.Now().UTC().Add(-time.Hour)},
		},
	}
	svc := newAuthService(repo, nil)

	_, err := svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: "stale"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErr.Code)
}

func TestAuthServiceChangePassword(t *testing.T) {
	repo := &mockUserRepo{userByEmail: testUser(t, models.RoleAdmin)}
	svc := newAuthService(repo, nil)

	err := svc.ChangePassword(context.Background(), "user-1", models.ChangePasswordRequest{
		OldPassword: "secret123",
		NewPassword: "betterSecret456",
	})
	require.NoError(t, err)
	assert.True(t, repo.passwordUpdated)
	assert.True(t, repo.allRevoked)

	err = svc.ChangePassword(context.Background(), "user-1", models.ChangePasswordRequest{
		OldPassword: "secret123",
		NewPassword: "anotherOne789",
	})
	require.Error(t, err, "old password no longer matches after change")
}

func TestAuthServiceValidateTokenRejectsGarbage(t *testing.T) {
	svc := newAuthService(&mockUserRepo{}, nil)
	_, err := svc.ValidateToken("not.a.jwt")
	require.Error(t, err)
}
