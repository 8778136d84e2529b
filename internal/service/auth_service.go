package service

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"database/sql"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/stellaredu/consult-api/internal/models"
	"github.com/stellaredu/consult-api/pkg/config"
	appErrors "github.com/stellaredu/consult-api/pkg/errors"
	"github.com/stellaredu/consult-api/pkg/jobs"
	"github.com/stellaredu/consult-api/pkg/mailer"
)

const (
	otpLength          = 6
	maxLoginAttempts   = 10
	loginAttemptWindow = 15 * time.Minute
)

type authUserRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	UpdatePassword(ctx context.Context, id, passwordHash string, updatedAt time.Time) error
	SetOTP(ctx context.Context, id, otpHash string, expiresAt time.Time) error
	MarkVerified(ctx context.Context, id string) error
	SetResetToken(ctx context.Context, id, tokenHash string, expiresAt time.Time) error
	FindByResetToken(ctx context.Context, tokenHash string) (*models.User, error)
	ClearResetToken(ctx context.Context, id string) error
}

type authSessionRepository interface {
	FindByToken(ctx context.Context, token string) (*models.Session, error)
	Revoke(ctx context.Context, id string, revokedAt time.Time) error
	RevokeForUser(ctx context.Context, userID string) error
}

type authThrottle interface {
	AcquireCooldown(ctx context.Context, key string, ttl time.Duration) (bool, error)
	IncrementAttempts(ctx context.Context, key string, window time.Duration) (int64, error)
	ResetAttempts(ctx context.Context, key string) error
}

type enqueuer interface {
	Enqueue(job jobs.Job) error
}

// AuthService provides the authentication use cases: login, token refresh,
// registration, OTP verification, and the password flows. Bookkeeping writes
// (session rows, last-login, audit entries) and outbound mail go through the
// background queue and never block the capability grant.
type AuthService struct {
	users     authUserRepository
	sessions  authSessionRepository
	throttle  authThrottle
	tokens    *TokenService
	queue     enqueuer
	validator *validator.Validate
	logger    *zap.Logger
	metrics   *MetricsService
	cfg       config.AuthConfig
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(
	users authUserRepository,
	sessions authSessionRepository,
	throttle authThrottle,
	tokens *TokenService,
	queue enqueuer,
	validate *validator.Validate,
	logger *zap.Logger,
	metrics *MetricsService,
	cfg config.AuthConfig,
) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &AuthService{
		users:     users,
		sessions:  sessions,
		throttle:  throttle,
		tokens:    tokens,
		queue:     queue,
		validator: validate,
		logger:    logger,
		metrics:   metrics,
		cfg:       cfg,
	}
}

// Register creates an unverified student account and emails the verification
// code.
func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest) (*models.UserInfo, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid registration payload")
	}

	email := strings.ToLower(req.Email)
	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "email already registered")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check email")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	otp, err := generateOTP()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to generate otp")
	}
	otpHash := HashOpaqueToken(otp)
	otpExpiry := time.Now().UTC().Add(s.cfg.OTPExpiry)

	user := &models.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		FullName:     req.FullName,
		Role:         models.RoleStudent,
		Active:       true,
		Verified:     false,
		OTPHash:      &otpHash,
		OTPExpiresAt: &otpExpiry,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create user")
	}

	s.metrics.RecordOTPSend()
	s.enqueueMail(mailer.Message{
		To:      user.Email,
		Subject: "Verify your StellarEdu account",
		Body:    fmt.Sprintf("Welcome to StellarEdu!\n\nYour verification code is %s. It expires in %s.", otp, s.cfg.OTPExpiry),
	})
	s.enqueueAudit(&models.AuditLog{
		UserID:     &user.ID,
		Action:     models.AuditActionRegister,
		Resource:   "auth",
		ResourceID: &user.ID,
		NewValues:  []byte(`{"status":"registered"}`),
	})

	return &models.UserInfo{
		ID:       user.ID,
		Email:    user.Email,
		FullName: user.FullName,
		Role:     user.Role,
		Verified: user.Verified,
	}, nil
}

// Login authenticates a user and returns issued tokens. The session row,
// last-login update, and audit entry are enqueued fire-and-forget: the JWT is
// authoritative for access, the bookkeeping may lag.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid login payload")
	}

	email := strings.ToLower(req.Email)
	attemptKey := "auth:login:" + email
	if attempts, err := s.throttle.IncrementAttempts(ctx, attemptKey, loginAttemptWindow); err != nil {
		s.logger.Warn("login throttle unavailable", zap.Error(err))
	} else if attempts > maxLoginAttempts {
		s.metrics.RecordLogin("throttled")
		return nil, appErrors.Clone(appErrors.ErrTooManyRequests, "too many login attempts, try again later")
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.metrics.RecordLogin("invalid_credentials")
			return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "invalid email or password")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch user")
	}

	if !user.Active {
		s.metrics.RecordLogin("inactive")
		return nil, appErrors.Clone(appErrors.ErrInactiveAccount, "account is deactivated")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		s.metrics.RecordLogin("invalid_credentials")
		return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "invalid email or password")
	}

	// Unverified accounts get a distinct signal so clients can route to the
	// OTP screen instead of showing a wrong-password error. Back-office roles
	// are exempt because they are provisioned, not self-registered.
	if !user.Verified && user.Role != models.RoleAdmin && user.Role != models.RoleSuperAdmin {
		s.metrics.RecordLogin("unverified")
		return nil, appErrors.Clone(appErrors.ErrVerificationRequired, "account verification required")
	}

	accessToken, _, err := s.tokens.IssueAccessToken(user)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create access token")
	}

	sessionToken, _, err := s.tokens.IssueSessionToken(user)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create session token")
	}

	refreshTokenValue, refreshExpiresAt, err := s.tokens.IssueRefreshToken(user)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create refresh token")
	}

	now := time.Now().UTC()
	s.enqueueSession(&models.Session{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		Token:     refreshTokenValue,
		ExpiresAt: refreshExpiresAt,
		CreatedAt: now,
		IPAddress: req.IP,
		UserAgent: req.UserAgent,
	})
	s.enqueueLastLogin(user.ID, now)
	s.enqueueAudit(&models.AuditLog{
		UserID:     &user.ID,
		Action:     models.AuditActionLogin,
		Resource:   "auth",
		ResourceID: &user.ID,
		NewValues:  []byte(`{"status":"success"}`),
		IPAddress:  req.IP,
		UserAgent:  req.UserAgent,
	})

	if err := s.throttle.ResetAttempts(ctx, attemptKey); err != nil {
		s.logger.Warn("failed to reset login attempts", zap.Error(err))
	}

	s.metrics.RecordLogin("success")
	return &models.LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshTokenValue,
		SessionToken: sessionToken,
		ExpiresIn:    int64(s.cfg.AccessTokenExpiry.Seconds()),
		IssuedAt:     now,
		User: models.UserInfo{
			ID:       user.ID,
			Email:    user.Email,
			FullName: user.FullName,
			Role:     user.Role,
			Verified: user.Verified,
		},
	}, nil
}

// RefreshToken exchanges a refresh token for a new access token pair. The
// signed token is authoritative: the session row is consulted only as a
// revocation log, so an exchange succeeds even while the persist job for the
// row is still in flight.
func (s *AuthService) RefreshToken(ctx context.Context, req models.RefreshTokenRequest) (*models.RefreshTokenResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid refresh payload")
	}

	claims, err := s.tokens.VerifyRefreshToken(req.RefreshToken)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid refresh token")
	}

	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrUnauthorized, "associated user no longer exists")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}

	if !user.Active {
		return nil, appErrors.Clone(appErrors.ErrInactiveAccount, "account is deactivated")
	}

	session, err := s.sessions.FindByToken(ctx, req.RefreshToken)
	switch {
	case err == nil:
		if session.Revoked {
			return nil, appErrors.Clone(appErrors.ErrUnauthorized, "refresh token is revoked")
		}
		// Rotation: the old token's row is retired with it.
		if err := s.sessions.Revoke(ctx, session.ID, time.Now().UTC()); err != nil {
			s.logger.Warn("failed to revoke used refresh token", zap.Error(err))
		}
	case errors.Is(err, sql.ErrNoRows):
		// The persist job has not landed yet. The token carries its own
		// validity, so the missing row does not block the exchange.
	default:
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch session")
	}

	accessToken, _, err := s.tokens.IssueAccessToken(user)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to generate access token")
	}

	refreshTokenValue, refreshExpiresAt, err := s.tokens.IssueRefreshToken(user)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create refresh token")
	}

	now := time.Now().UTC()
	s.enqueueSession(&models.Session{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		Token:     refreshTokenValue,
		ExpiresAt: refreshExpiresAt,
		CreatedAt: now,
		IPAddress: req.IP,
		UserAgent: req.UserAgent,
	})

	return &models.RefreshTokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshTokenValue,
		ExpiresIn:    int64(s.cfg.AccessTokenExpiry.Seconds()),
		IssuedAt:     now,
	}, nil
}

// Logout revokes the provided refresh token session. A missing refresh token
// is not an error: cookie-only clients log out by having the cookies cleared
// at the transport layer.
func (s *AuthService) Logout(ctx context.Context, userID, refreshToken, ip, userAgent string) error {
	if refreshToken != "" {
		session, err := s.sessions.FindByToken(ctx, refreshToken)
		if err != nil {
			if !errors.Is(err, sql.ErrNoRows) {
				return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load session")
			}
		} else {
			if session.UserID != userID {
				return appErrors.Clone(appErrors.ErrForbidden, "token does not belong to user")
			}
			if err := s.sessions.Revoke(ctx, session.ID, time.Now().UTC()); err != nil {
				return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to revoke session")
			}
		}
	}

	s.enqueueAudit(&models.AuditLog{
		UserID:     &userID,
		Action:     models.AuditActionLogout,
		Resource:   "auth",
		ResourceID: &userID,
		NewValues:  []byte(`{"status":"logout"}`),
		IPAddress:  ip,
		UserAgent:  userAgent,
	})
	return nil
}

// VerifyOTP confirms account ownership. Verification is idempotent: an
// already-verified account succeeds without consuming anything.
func (s *AuthService) VerifyOTP(ctx context.Context, req models.VerifyOTPRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid otp payload")
	}

	user, err := s.users.FindByEmail(ctx, strings.ToLower(req.Email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrValidation, "invalid or expired code")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch user")
	}

	if user.Verified {
		return nil
	}

	if user.OTPHash == nil || user.OTPExpiresAt == nil {
		return appErrors.Clone(appErrors.ErrValidation, "invalid or expired code")
	}
	if !time.Now().UTC().Before(*user.OTPExpiresAt) {
		return appErrors.Clone(appErrors.ErrValidation, "invalid or expired code")
	}
	if subtle.ConstantTimeCompare([]byte(*user.OTPHash), []byte(HashOpaqueToken(req.OTP))) != 1 {
		return appErrors.Clone(appErrors.ErrValidation, "invalid or expired code")
	}

	if err := s.users.MarkVerified(ctx, user.ID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to mark verified")
	}

	s.enqueueAudit(&models.AuditLog{
		UserID:     &user.ID,
		Action:     models.AuditActionVerify,
		Resource:   "auth",
		ResourceID: &user.ID,
		NewValues:  []byte(`{"status":"verified"}`),
	})
	return nil
}

// ResendOTP re-issues the verification code with a cooldown. Unknown emails
// succeed silently to avoid account enumeration.
func (s *AuthService) ResendOTP(ctx context.Context, req models.ResendOTPRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid resend payload")
	}

	email := strings.ToLower(req.Email)
	ok, err := s.throttle.AcquireCooldown(ctx, "auth:otp:resend:"+email, s.cfg.OTPResendCooldown)
	if err != nil {
		s.logger.Warn("otp cooldown unavailable", zap.Error(err))
	} else if !ok {
		return appErrors.Clone(appErrors.ErrTooManyRequests, "verification code was sent recently")
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch user")
	}
	if user.Verified {
		return nil
	}

	otp, err := generateOTP()
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to generate otp")
	}
	if err := s.users.SetOTP(ctx, user.ID, HashOpaqueToken(otp), time.Now().UTC().Add(s.cfg.OTPExpiry)); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store otp")
	}

	s.metrics.RecordOTPSend()
	s.enqueueMail(mailer.Message{
		To:      user.Email,
		Subject: "Your StellarEdu verification code",
		Body:    fmt.Sprintf("Your verification code is %s. It expires in %s.", otp, s.cfg.OTPExpiry),
	})
	return nil
}

// ForgotPassword initiates the reset flow. The response never reveals whether
// the email exists.
func (s *AuthService) ForgotPassword(ctx context.Context, req models.ForgotPasswordRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid forgot password payload")
	}

	user, err := s.users.FindByEmail(ctx, strings.ToLower(req.Email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch user")
	}

	token, err := s.tokens.NewOpaqueToken()
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to generate reset token")
	}
	if err := s.users.SetResetToken(ctx, user.ID, HashOpaqueToken(token), time.Now().UTC().Add(s.cfg.ResetTokenExpiry)); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store reset token")
	}

	s.enqueueMail(mailer.Message{
		To:      user.Email,
		Subject: "Reset your StellarEdu password",
		Body:    fmt.Sprintf("Use this token to reset your password: %s\n\nIt expires in %s. If you did not request a reset, ignore this email.", token, s.cfg.ResetTokenExpiry),
	})
	return nil
}

// ResetPassword completes the reset flow and revokes all live sessions.
func (s *AuthService) ResetPassword(ctx context.Context, req models.ResetPasswordRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid reset payload")
	}

	user, err := s.users.FindByResetToken(ctx, HashOpaqueToken(req.Token))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrValidation, "invalid or expired reset token")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch user")
	}

	if user.ResetExpiresAt == nil || !time.Now().UTC().Before(*user.ResetExpiresAt) {
		return appErrors.Clone(appErrors.ErrValidation, "invalid or expired reset token")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	now := time.Now().UTC()
	if err := s.users.UpdatePassword(ctx, user.ID, string(hash), now); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update password")
	}
	if err := s.users.ClearResetToken(ctx, user.ID); err != nil {
		s.logger.Warn("failed to clear reset token", zap.Error(err))
	}
	if err := s.sessions.RevokeForUser(ctx, user.ID); err != nil {
		s.logger.Warn("failed to revoke sessions after reset", zap.Error(err))
	}

	s.metrics.RecordPasswordReset()
	s.enqueueAudit(&models.AuditLog{
		UserID:     &user.ID,
		Action:     models.AuditActionPasswordReset,
		Resource:   "auth",
		ResourceID: &user.ID,
		NewValues:  []byte(`{"status":"reset"}`),
	})
	return nil
}

// ChangePassword changes the password for the given user ID.
func (s *AuthService) ChangePassword(ctx context.Context, userID string, req models.ChangePasswordRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid change password payload")
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.OldPassword)); err != nil {
		return appErrors.Clone(appErrors.ErrForbidden, "old password does not match")
	}

	newHash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	if err := s.users.UpdatePassword(ctx, userID, string(newHash), time.Now().UTC()); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update password")
	}

	if err := s.sessions.RevokeForUser(ctx, userID); err != nil {
		s.logger.Warn("failed to revoke sessions after password change", zap.Error(err))
	}

	s.enqueueAudit(&models.AuditLog{
		UserID:     &userID,
		Action:     models.AuditActionPasswordChange,
		Resource:   "auth",
		ResourceID: &userID,
		NewValues:  []byte(`{"status":"changed"}`),
	})
	return nil
}

func (s *AuthService) enqueueSession(session *models.Session) {
	s.enqueue(jobTypeSessionPersist, session)
}

func (s *AuthService) enqueueLastLogin(userID string, at time.Time) {
	s.enqueue(jobTypeLastLogin, lastLoginUpdate{UserID: userID, At: at})
}

func (s *AuthService) enqueueAudit(log *models.AuditLog) {
	s.enqueue(jobTypeAuditRecord, log)
}

func (s *AuthService) enqueueMail(msg mailer.Message) {
	s.enqueue(jobTypeMailDeliver, msg)
}

func (s *AuthService) enqueue(jobType string, payload interface{}) {
	if s.queue == nil {
		return
	}
	err := s.queue.Enqueue(jobs.Job{
		ID:      uuid.NewString(),
		Type:    jobType,
		Payload: payload,
	})
	if err != nil {
		s.logger.Warn("failed to enqueue side effect", zap.String("type", jobType), zap.Error(err))
	}
}

func generateOTP() (string, error) {
	max := big.NewInt(1)
	for i := 0; i < otpLength; i++ {
		max.Mul(max, big.NewInt(10))
	}
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", otpLength, n), nil
}
