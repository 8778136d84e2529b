package service

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/stellaredu/consult-api/internal/models"
	appErrors "github.com/stellaredu/consult-api/pkg/errors"
)

// Cookie names shared between issuance and resolution.
const (
	SessionCookieName = "session-token"
	AuthCookieName    = "auth-token"
)

type resolverUserRepository interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

// tokenSource is one strategy in the resolution chain: how to pull a raw
// token off the request and which family verifies it.
type tokenSource struct {
	name    models.TokenSource
	extract func(r *http.Request) string
	verify  func(token string) (*models.JWTClaims, error)
}

// ResolverService resolves an inbound request to a user through an ordered
// chain of token sources: session cookie first, then bearer header, then the
// custom auth cookie. The first source that yields a verifiable token wins;
// every failure mode collapses to the same unauthenticated outcome.
type ResolverService struct {
	users   resolverUserRepository
	tokens  *TokenService
	metrics *MetricsService
	logger  *zap.Logger
	chain   []tokenSource
}

// NewResolverService constructs the resolver with its fixed source order.
func NewResolverService(users resolverUserRepository, tokens *TokenService, metrics *MetricsService, logger *zap.Logger) *ResolverService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &ResolverService{users: users, tokens: tokens, metrics: metrics, logger: logger}
	s.chain = []tokenSource{
		{
			name: models.SourceSessionCookie,
			extract: func(r *http.Request) string {
				if c, err := r.Cookie(SessionCookieName); err == nil {
					return c.Value
				}
				return ""
			},
			verify: tokens.VerifySessionToken,
		},
		{
			name: models.SourceBearerHeader,
			extract: func(r *http.Request) string {
				header := r.Header.Get("Authorization")
				if header == "" {
					return ""
				}
				parts := strings.SplitN(header, " ", 2)
				if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
					return ""
				}
				return parts[1]
			},
			verify: tokens.VerifyAccessToken,
		},
		{
			name: models.SourceAuthCookie,
			extract: func(r *http.Request) string {
				if c, err := r.Cookie(AuthCookieName); err == nil {
					return c.Value
				}
				return ""
			},
			verify: tokens.VerifyAccessToken,
		},
	}
	return s
}

// Resolve walks the chain and returns the user plus the claims and source
// that produced it. A nil user means unauthenticated; callers get no further
// detail and diagnostics go to the debug log only.
func (s *ResolverService) Resolve(ctx context.Context, r *http.Request) (*models.User, *models.JWTClaims, models.TokenSource) {
	for _, source := range s.chain {
		raw := source.extract(r)
		if raw == "" {
			continue
		}

		claims, err := source.verify(raw)
		if err != nil {
			s.metrics.RecordTokenResolution(source.name, false)
			s.logger.Debug("token rejected",
				zap.String("source", string(source.name)),
				zap.Error(err),
			)
			continue
		}

		user, err := s.users.FindByID(ctx, claims.UserID)
		if err != nil {
			s.metrics.RecordTokenResolution(source.name, false)
			s.logger.Debug("token subject not found",
				zap.String("source", string(source.name)),
				zap.String("user_id", claims.UserID),
			)
			continue
		}
		if !user.Active {
			s.metrics.RecordTokenResolution(source.name, false)
			continue
		}

		s.metrics.RecordTokenResolution(source.name, true)
		return user, claims, source.name
	}

	s.metrics.RecordTokenResolution(models.SourceNone, false)
	return nil, nil, models.SourceNone
}

// RequireAuth is the authorization gate: it resolves the request and, when a
// non-empty role set is given, enforces membership. It is read-only and
// transport-agnostic; callers translate the typed errors to 401/403.
func (s *ResolverService) RequireAuth(ctx context.Context, r *http.Request, allowedRoles ...models.UserRole) (*models.User, error) {
	user, _, _ := s.Resolve(ctx, r)
	if user == nil {
		return nil, appErrors.ErrUnauthorized
	}

	if len(allowedRoles) == 0 {
		return user, nil
	}
	for _, role := range allowedRoles {
		if user.Role == role {
			return user, nil
		}
	}
	return nil, appErrors.ErrForbidden
}
