package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stellaredu/consult-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	sqlxDB := sqlx.NewDb(db, "postgres")
	return sqlxDB, mock, func() {
		sqlxDB.Close()
		db.Close()
	}
}

func userRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "email", "password_hash", "full_name", "role", "active", "verified",
		"otp_hash", "otp_expires_at", "reset_token_hash", "reset_expires_at",
		"last_login", "created_at", "updated_at",
	})
}

func TestUserRepositoryFindByEmailFoldsCase(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewUserRepository(db)
	rows := userRows().AddRow(
		"usr-1", "ana@example.com", "hash", "Ana", "STUDENT", true, true,
		nil, nil, nil, nil, nil, time.Now(), time.Now(),
	)
	mock.ExpectQuery("SELECT id, email").
		WithArgs("ana@example.com").
		WillReturnRows(rows)

	user, err := repo.FindByEmail(context.Background(), "Ana@Example.COM")
	require.NoError(t, err)
	assert.Equal(t, "usr-1", user.ID)
	assert.Equal(t, models.RoleStudent, user.Role)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryFindByEmailNotFound(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewUserRepository(db)
	mock.ExpectQuery("SELECT id, email").
		WithArgs("ghost@example.com").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByEmail(context.Background(), "ghost@example.com")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestUserRepositoryFindByID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewUserRepository(db)
	rows := userRows().AddRow(
		"usr-1", "ana@example.com", "hash", "Ana", "ADMIN", true, true,
		nil, nil, nil, nil, nil, time.Now(), time.Now(),
	)
	mock.ExpectQuery("SELECT id, email").
		WithArgs("usr-1").
		WillReturnRows(rows)

	user, err := repo.FindByID(context.Background(), "usr-1")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, user.Role)
}

func TestUserRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewUserRepository(db)
	mock.ExpectExec("INSERT INTO users").
		WillReturnResult(sqlmock.NewResult(1, 1))

	user := &models.User{
		Email:        "Mixed@Example.com",
		PasswordHash: "hash",
		FullName:     "Mixed Case",
		Role:         models.RoleStudent,
		Active:       true,
	}
	require.NoError(t, repo.Create(context.Background(), user))
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "mixed@example.com", user.Email)
	assert.False(t, user.CreatedAt.IsZero())
}

func TestUserRepositoryUpdatePassword(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewUserRepository(db)
	now := time.Now().UTC()
	mock.ExpectExec("UPDATE users SET password_hash").
		WithArgs("usr-1", "new-hash", now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdatePassword(context.Background(), "usr-1", "new-hash", now))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositorySetOTP(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewUserRepository(db)
	expiry := time.Now().UTC().Add(15 * time.Minute)
	mock.ExpectExec("UPDATE users SET otp_hash").
		WithArgs("usr-1", "otp-hash", expiry, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.SetOTP(context.Background(), "usr-1", "otp-hash", expiry))
}

func TestUserRepositoryMarkVerified(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewUserRepository(db)
	mock.ExpectExec("UPDATE users SET verified = TRUE").
		WithArgs("usr-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.MarkVerified(context.Background(), "usr-1"))
}

func TestUserRepositoryFindByResetToken(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewUserRepository(db)
	expiry := time.Now().UTC().Add(30 * time.Minute)
	rows := userRows().AddRow(
		"usr-1", "ana@example.com", "hash", "Ana", "STUDENT", true, true,
		nil, nil, "token-hash", expiry, nil, time.Now(), time.Now(),
	)
	mock.ExpectQuery("SELECT id, email").
		WithArgs("token-hash").
		WillReturnRows(rows)

	user, err := repo.FindByResetToken(context.Background(), "token-hash")
	require.NoError(t, err)
	require.NotNil(t, user.ResetTokenHash)
	assert.Equal(t, "token-hash", *user.ResetTokenHash)
}

func TestUserRepositoryDeactivate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewUserRepository(db)
	mock.ExpectExec("UPDATE users SET active = FALSE").
		WithArgs("usr-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Deactivate(context.Background(), "usr-1"))
}

func TestUserRepositoryListWithFilters(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewUserRepository(db)
	rows := userRows().AddRow(
		"usr-1", "ana@example.com", "hash", "Ana", "STUDENT", true, true,
		nil, nil, nil, nil, nil, time.Now(), time.Now(),
	)
	role := models.RoleStudent
	active := true

	mock.ExpectQuery("SELECT id, email").
		WithArgs(role, active, "%ana%").
		WillReturnRows(rows)
	mock.ExpectQuery(`SELECT COUNT\(\*\)`).
		WithArgs(role, active, "%ana%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	users, total, err := repo.List(context.Background(), models.UserFilter{
		Role:   &role,
		Active: &active,
		Search: "Ana",
	})
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, 1, total)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryListRejectsUnknownSortColumn(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewUserRepository(db)
	// An unknown sort column falls back to created_at instead of reaching SQL.
	mock.ExpectQuery("ORDER BY created_at DESC").
		WillReturnRows(userRows())
	mock.ExpectQuery(`SELECT COUNT\(\*\)`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	_, _, err := repo.List(context.Background(), models.UserFilter{SortBy: "password_hash; DROP TABLE users"})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
