package service

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stellaredu/consult-api/internal/models"
	"github.com/stellaredu/consult-api/pkg/config"
)

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		SessionSecret:      strings.Repeat("s", 32),
		JWTSecret:          strings.Repeat("j", 32),
		AccessTokenExpiry:  24 * time.Hour,
		RefreshTokenExpiry: 7 * 24 * time.Hour,
		Issuer:             "stellaredu-consult-api",
		Audience:           []string{"consult-api"},
	}
}

func testUser() *models.User {
	return &models.User{
		ID:       "usr-1",
		Email:    "ana@example.com",
		FullName: "Ana",
		Role:     models.RoleStudent,
		Verified: true,
		Active:   true,
	}
}

func TestNewTokenServiceRejectsShortSecrets(t *testing.T) {
	cfg := testAuthConfig()
	cfg.SessionSecret = "short"
	_, err := NewTokenService(cfg)
	assert.Error(t, err)

	cfg = testAuthConfig()
	cfg.JWTSecret = "short"
	_, err = NewTokenService(cfg)
	assert.Error(t, err)
}

func TestAccessTokenRoundTrip(t *testing.T) {
	svc, err := NewTokenService(testAuthConfig())
	require.NoError(t, err)

	user := testUser()
	token, expiresAt, err := svc.IssueAccessToken(user)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), expiresAt, time.Minute)

	claims, err := svc.VerifyAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, user.Email, claims.Email)
	assert.Equal(t, user.Role, claims.Role)
	assert.Equal(t, "stellaredu-consult-api", claims.Issuer)
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	svc, err := NewTokenService(testAuthConfig())
	require.NoError(t, err)

	user := testUser()
	token, expiresAt, err := svc.IssueRefreshToken(user)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), expiresAt, time.Minute)

	claims, err := svc.VerifyRefreshToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
}

func TestAccessAndRefreshTokensAreNotInterchangeable(t *testing.T) {
	svc, err := NewTokenService(testAuthConfig())
	require.NoError(t, err)

	access, _, err := svc.IssueAccessToken(testUser())
	require.NoError(t, err)
	refresh, _, err := svc.IssueRefreshToken(testUser())
	require.NoError(t, err)

	// Same secret, different type claim: a 7-day refresh token must not pass
	// as a bearer credential.
	_, err = svc.VerifyAccessToken(refresh)
	assert.Error(t, err)
	_, err = svc.VerifyRefreshToken(access)
	assert.Error(t, err)
}

func TestSessionTokenRoundTrip(t *testing.T) {
	svc, err := NewTokenService(testAuthConfig())
	require.NoError(t, err)

	token, _, err := svc.IssueSessionToken(testUser())
	require.NoError(t, err)

	claims, err := svc.VerifySessionToken(token)
	require.NoError(t, err)
	assert.Equal(t, "usr-1", claims.UserID)
}

func TestTokenFamiliesAreNotInterchangeable(t *testing.T) {
	svc, err := NewTokenService(testAuthConfig())
	require.NoError(t, err)

	access, _, err := svc.IssueAccessToken(testUser())
	require.NoError(t, err)
	session, _, err := svc.IssueSessionToken(testUser())
	require.NoError(t, err)

	_, err = svc.VerifySessionToken(access)
	assert.Error(t, err)
	_, err = svc.VerifyAccessToken(session)
	assert.Error(t, err)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	svc, err := NewTokenService(testAuthConfig())
	require.NoError(t, err)

	other := testAuthConfig()
	other.JWTSecret = strings.Repeat("x", 32)
	otherSvc, err := NewTokenService(other)
	require.NoError(t, err)

	token, _, err := otherSvc.IssueAccessToken(testUser())
	require.NoError(t, err)

	_, err = svc.VerifyAccessToken(token)
	assert.Error(t, err)
}

func TestVerifyRejectsTamperedToken(t *testing.T) {
	svc, err := NewTokenService(testAuthConfig())
	require.NoError(t, err)

	token, _, err := svc.IssueAccessToken(testUser())
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	tampered := parts[0] + "." + parts[1] + "x." + parts[2]

	_, err = svc.VerifyAccessToken(tampered)
	assert.Error(t, err)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	cfg := testAuthConfig()
	svc, err := NewTokenService(cfg)
	require.NoError(t, err)

	claims := &models.JWTClaims{
		UserID: "usr-1",
		Email:  "ana@example.com",
		Role:   models.RoleStudent,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    cfg.Issuer,
			Audience:  cfg.Audience,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	}
	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.JWTSecret))
	require.NoError(t, err)

	_, err = svc.VerifyAccessToken(expired)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestVerifyRejectsTokenAtExactExpiryInstant(t *testing.T) {
	svc, err := NewTokenService(testAuthConfig())
	require.NoError(t, err)

	issuedAt := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return issuedAt }

	token, expiresAt, err := svc.IssueAccessToken(testUser())
	require.NoError(t, err)

	svc.now = func() time.Time { return expiresAt.Add(-time.Second) }
	_, err = svc.VerifyAccessToken(token)
	require.NoError(t, err)

	// Expiry is exclusive: the token is already invalid at the instant itself.
	svc.now = func() time.Time { return expiresAt }
	_, err = svc.VerifyAccessToken(token)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestVerifyRejectsUnsignedToken(t *testing.T) {
	cfg := testAuthConfig()
	svc, err := NewTokenService(cfg)
	require.NoError(t, err)

	claims := &models.JWTClaims{
		UserID: "usr-1",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    cfg.Issuer,
			Audience:  cfg.Audience,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = svc.VerifyAccessToken(unsigned)
	assert.Error(t, err)
}

func TestVerifyRejectsMissingExpiry(t *testing.T) {
	cfg := testAuthConfig()
	svc, err := NewTokenService(cfg)
	require.NoError(t, err)

	claims := &models.JWTClaims{
		UserID: "usr-1",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:   cfg.Issuer,
			Audience: cfg.Audience,
			IssuedAt: jwt.NewNumericDate(time.Now()),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.JWTSecret))
	require.NoError(t, err)

	_, err = svc.VerifyAccessToken(token)
	assert.Error(t, err)
}

func TestOpaqueTokenHashIsDeterministic(t *testing.T) {
	svc, err := NewTokenService(testAuthConfig())
	require.NoError(t, err)

	token, err := svc.NewOpaqueToken()
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	other, err := svc.NewOpaqueToken()
	require.NoError(t, err)
	assert.NotEqual(t, token, other)

	assert.Equal(t, HashOpaqueToken(token), HashOpaqueToken(token))
	assert.NotEqual(t, token, HashOpaqueToken(token))
}
