package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stellaredu/consult-api/internal/models"
)

func TestSessionRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewSessionRepository(db)
	mock.ExpectExec("INSERT INTO sessions").
		WillReturnResult(sqlmock.NewResult(1, 1))

	session := &models.Session{
		UserID:    "usr-1",
		Token:     "refresh-token",
		ExpiresAt: time.Now().UTC().Add(7 * 24 * time.Hour),
	}
	require.NoError(t, repo.Create(context.Background(), session))
	assert.NotEmpty(t, session.ID)
	assert.False(t, session.CreatedAt.IsZero())
}

func TestSessionRepositoryFindByToken(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewSessionRepository(db)
	rows := sqlmock.NewRows([]string{
		"id", "user_id", "token", "expires_at", "created_at", "revoked", "revoked_at", "ip_address", "user_agent",
	}).AddRow("sess-1", "usr-1", "refresh-token", time.Now().Add(time.Hour), time.Now(), false, nil, "203.0.113.7", "test-agent")

	mock.ExpectQuery("SELECT id, user_id, token").
		WithArgs("refresh-token").
		WillReturnRows(rows)

	session, err := repo.FindByToken(context.Background(), "refresh-token")
	require.NoError(t, err)
	assert.Equal(t, "sess-1", session.ID)
	assert.False(t, session.Revoked)
}

func TestSessionRepositoryFindByTokenNotFound(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewSessionRepository(db)
	mock.ExpectQuery("SELECT id, user_id, token").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByToken(context.Background(), "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestSessionRepositoryRevoke(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewSessionRepository(db)
	revokedAt := time.Now().UTC()
	mock.ExpectExec("UPDATE sessions SET revoked = TRUE").
		WithArgs("sess-1", revokedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Revoke(context.Background(), "sess-1", revokedAt))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepositoryRevokeForUser(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewSessionRepository(db)
	mock.ExpectExec("UPDATE sessions SET revoked = TRUE").
		WithArgs("usr-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 3))

	require.NoError(t, repo.RevokeForUser(context.Background(), "usr-1"))
}
