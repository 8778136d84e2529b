package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/stellaredu/consult-api/internal/models"
	appErrors "github.com/stellaredu/consult-api/pkg/errors"
	"github.com/stellaredu/consult-api/pkg/export"
	"github.com/stellaredu/consult-api/pkg/jobs"
)

type userStoreRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	Deactivate(ctx context.Context, id string) error
	List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error)
}

// CreateUserRequest provisions an account from the back office. Accounts
// created here are verified immediately; only self-registrations go through
// the OTP flow.
type CreateUserRequest struct {
	Email    string          `json:"email" validate:"required,email"`
	Password string          `json:"password" validate:"required,min=8"`
	FullName string          `json:"full_name" validate:"required"`
	Role     models.UserRole `json:"role" validate:"required"`
}

// UpdateUserRequest mutates profile fields.
type UpdateUserRequest struct {
	FullName *string          `json:"full_name,omitempty"`
	Role     *models.UserRole `json:"role,omitempty"`
	Active   *bool            `json:"active,omitempty"`
}

// UserService provides the admin user-management use cases.
type UserService struct {
	repo      userStoreRepository
	queue     enqueuer
	validator *validator.Validate
	logger    *zap.Logger
	csv       *export.CSVExporter
	pdf       *export.PDFExporter
}

// NewUserService constructs a UserService instance.
func NewUserService(repo userStoreRepository, queue enqueuer, validate *validator.Validate, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &UserService{
		repo:      repo,
		queue:     queue,
		validator: validate,
		logger:    logger,
		csv:       export.NewCSVExporter(),
		pdf:       export.NewPDFExporter(),
	}
}

// List returns users matching the filter plus pagination metadata.
func (s *UserService) List(ctx context.Context, filter models.UserFilter) ([]models.User, *models.Pagination, error) {
	users, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list users")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}

	return users, &models.Pagination{Page: page, PageSize: pageSize, TotalCount: total}, nil
}

// Get returns a single user.
func (s *UserService) Get(ctx context.Context, id string) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}
	return user, nil
}

// Create provisions a new account. Creating back-office roles requires a
// SUPER_ADMIN actor.
func (s *UserService) Create(ctx context.Context, actor *models.JWTClaims, req CreateUserRequest) (*models.User, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid user payload")
	}
	if !req.Role.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown role")
	}
	if (req.Role == models.RoleAdmin || req.Role == models.RoleSuperAdmin) && actor.Role != models.RoleSuperAdmin {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only a super admin can create admin accounts")
	}

	email := strings.ToLower(req.Email)
	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "email already registered")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check email")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		FullName:     req.FullName,
		Role:         req.Role,
		Active:       true,
		Verified:     true,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create user")
	}

	s.audit(actor, models.AuditActionUserCreate, user.ID)
	return user, nil
}

// Update mutates profile fields of an existing user.
func (s *UserService) Update(ctx context.Context, actor *models.JWTClaims, id string, req UpdateUserRequest) (*models.User, error) {
	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Role != nil {
		if !req.Role.Valid() {
			return nil, appErrors.Clone(appErrors.ErrValidation, "unknown role")
		}
		if (*req.Role == models.RoleAdmin || *req.Role == models.RoleSuperAdmin) && actor.Role != models.RoleSuperAdmin {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "only a super admin can grant admin roles")
		}
		user.Role = *req.Role
	}
	if req.FullName != nil {
		user.FullName = *req.FullName
	}
	if req.Active != nil {
		user.Active = *req.Active
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update user")
	}

	s.audit(actor, models.AuditActionUserUpdate, user.ID)
	return user, nil
}

// Deactivate soft-deletes a user. Actors cannot deactivate themselves.
func (s *UserService) Deactivate(ctx context.Context, actor *models.JWTClaims, id string) error {
	if actor.UserID == id {
		return appErrors.Clone(appErrors.ErrValidation, "cannot deactivate your own account")
	}
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Deactivate(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to deactivate user")
	}

	s.audit(actor, models.AuditActionUserDeactivate, id)
	return nil
}

// Export renders the filtered user roster as CSV or PDF bytes.
func (s *UserService) Export(ctx context.Context, filter models.UserFilter, format string) ([]byte, string, error) {
	filter.PageSize = 100
	filter.Page = 1

	var users []models.User
	for {
		batch, total, err := s.repo.List(ctx, filter)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list users for export")
		}
		users = append(users, batch...)
		if len(batch) < filter.PageSize || len(users) >= total {
			break
		}
		filter.Page++
	}

	dataset := export.Dataset{
		Headers: []string{"Email", "Full Name", "Role", "Active", "Verified", "Last Login"},
	}
	for _, u := range users {
		lastLogin := ""
		if u.LastLogin != nil {
			lastLogin = u.LastLogin.UTC().Format(time.RFC3339)
		}
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Email":      u.Email,
			"Full Name":  u.FullName,
			"Role":       string(u.Role),
			"Active":     boolLabel(u.Active),
			"Verified":   boolLabel(u.Verified),
			"Last Login": lastLogin,
		})
	}

	switch strings.ToLower(format) {
	case "", "csv":
		data, err := s.csv.Render(dataset)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return data, "text/csv", nil
	case "pdf":
		data, err := s.pdf.Render(dataset, "User Roster")
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return data, "application/pdf", nil
	default:
		return nil, "", appErrors.Clone(appErrors.ErrValidation, "unsupported export format")
	}
}

func (s *UserService) audit(actor *models.JWTClaims, action, resourceID string) {
	if s.queue == nil {
		return
	}
	log := &models.AuditLog{
		UserID:     &actor.UserID,
		Action:     action,
		Resource:   "users",
		ResourceID: &resourceID,
	}
	err := s.queue.Enqueue(jobs.Job{ID: uuid.NewString(), Type: jobTypeAuditRecord, Payload: log})
	if err != nil {
		s.logger.Warn("failed to enqueue audit log", zap.Error(err))
	}
}

func boolLabel(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
