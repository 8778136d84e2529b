package service

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/stellaredu/consult-api/internal/models"
	"github.com/stellaredu/consult-api/pkg/config"
)

// minSecretLength mirrors the config-level floor so the service refuses weak
// secrets even when constructed outside config.Load.
const minSecretLength = 32

// Token type claim values within the custom family.
const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
	tokenTypeSession = "session"
)

// TokenService issues and verifies both token families: the framework-session
// cookie token and the custom access/refresh pair. Each family has its own
// secret; both are pinned to HS256 so there is no algorithm negotiation.
type TokenService struct {
	cfg config.AuthConfig
	now func() time.Time
}

// NewTokenService validates the signing secrets and returns the issuer.
func NewTokenService(cfg config.AuthConfig) (*TokenService, error) {
	if len(cfg.SessionSecret) < minSecretLength {
		return nil, fmt.Errorf("session secret must be at least %d characters", minSecretLength)
	}
	if len(cfg.JWTSecret) < minSecretLength {
		return nil, fmt.Errorf("jwt secret must be at least %d characters", minSecretLength)
	}
	if cfg.AccessTokenExpiry <= 0 {
		cfg.AccessTokenExpiry = 24 * time.Hour
	}
	if cfg.RefreshTokenExpiry <= 0 {
		cfg.RefreshTokenExpiry = 7 * 24 * time.Hour
	}
	return &TokenService{cfg: cfg, now: time.Now}, nil
}

// AccessTokenExpiry exposes the configured access token lifetime.
func (s *TokenService) AccessTokenExpiry() time.Duration {
	return s.cfg.AccessTokenExpiry
}

// RefreshTokenExpiry exposes the configured refresh token lifetime.
func (s *TokenService) RefreshTokenExpiry() time.Duration {
	return s.cfg.RefreshTokenExpiry
}

// IssueAccessToken signs an access token from the custom family.
func (s *TokenService) IssueAccessToken(user *models.User) (string, time.Time, error) {
	return s.sign(user, []byte(s.cfg.JWTSecret), s.cfg.AccessTokenExpiry, tokenTypeAccess)
}

// IssueRefreshToken signs a refresh token from the custom family. The token
// itself is what grants the exchange; the session row written alongside it is
// only a revocation log.
func (s *TokenService) IssueRefreshToken(user *models.User) (string, time.Time, error) {
	return s.sign(user, []byte(s.cfg.JWTSecret), s.cfg.RefreshTokenExpiry, tokenTypeRefresh)
}

// IssueSessionToken signs a token from the session family. The web frontend
// carries it in the session-token cookie.
func (s *TokenService) IssueSessionToken(user *models.User) (string, time.Time, error) {
	return s.sign(user, []byte(s.cfg.SessionSecret), s.cfg.RefreshTokenExpiry, tokenTypeSession)
}

// VerifyAccessToken validates a custom-family access token and returns its
// claims. Refresh tokens are rejected even though they share the secret.
func (s *TokenService) VerifyAccessToken(tokenString string) (*models.JWTClaims, error) {
	return s.verify(tokenString, []byte(s.cfg.JWTSecret), tokenTypeAccess)
}

// VerifyRefreshToken validates a custom-family refresh token and returns its
// claims.
func (s *TokenService) VerifyRefreshToken(tokenString string) (*models.JWTClaims, error) {
	return s.verify(tokenString, []byte(s.cfg.JWTSecret), tokenTypeRefresh)
}

// VerifySessionToken validates a session-family token and returns its claims.
func (s *TokenService) VerifySessionToken(tokenString string) (*models.JWTClaims, error) {
	return s.verify(tokenString, []byte(s.cfg.SessionSecret), tokenTypeSession)
}

// NewOpaqueToken returns a url-safe random value used for password-reset
// tokens.
func (s *TokenService) NewOpaqueToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// HashOpaqueToken returns the at-rest form of an opaque token.
func HashOpaqueToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

func (s *TokenService) sign(user *models.User, secret []byte, ttl time.Duration, tokenType string) (string, time.Time, error) {
	issuedAt := s.now().UTC()
	expiresAt := issuedAt.Add(ttl)
	claims := &models.JWTClaims{
		UserID:    user.ID,
		Email:     user.Email,
		Role:      user.Role,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.cfg.Issuer,
			Subject:   user.ID,
			Audience:  s.cfg.Audience,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

func (s *TokenService) verify(tokenString string, secret []byte, wantType string) (*models.JWTClaims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	}
	if s.cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.cfg.Issuer))
	}
	if len(s.cfg.Audience) > 0 {
		opts = append(opts, jwt.WithAudience(s.cfg.Audience[0]))
	}

	token, err := jwt.ParseWithClaims(tokenString, &models.JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	}, opts...)
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*models.JWTClaims)
	if !ok || !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	if claims.TokenType != wantType {
		return nil, fmt.Errorf("%w: unexpected token type %q", jwt.ErrTokenInvalidClaims, claims.TokenType)
	}
	return claims, nil
}
