package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/stellaredu/consult-api/internal/models"
	"github.com/stellaredu/consult-api/pkg/jobs"
	"github.com/stellaredu/consult-api/pkg/mailer"
)

// Job types handled by the auth side-effect worker.
const (
	jobTypeSessionPersist = "session.persist"
	jobTypeLastLogin      = "user.last_login"
	jobTypeAuditRecord    = "audit.record"
	jobTypeMailDeliver    = "mail.deliver"
)

type lastLoginUpdate struct {
	UserID string
	At     time.Time
}

type workerSessionRepository interface {
	Create(ctx context.Context, session *models.Session) error
}

type workerUserRepository interface {
	UpdateLastLogin(ctx context.Context, id string, ts time.Time) error
}

type workerAuditRepository interface {
	Create(ctx context.Context, log *models.AuditLog) error
}

// NewAuthWorker returns the job handler for auth side effects. Each job type
// maps to one bookkeeping write or one mail delivery; failures bubble up so
// the queue's retry policy applies.
func NewAuthWorker(
	sessions workerSessionRepository,
	users workerUserRepository,
	audits workerAuditRepository,
	mail mailer.Mailer,
	logger *zap.Logger,
) jobs.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(ctx context.Context, job jobs.Job) error {
		switch job.Type {
		case jobTypeSessionPersist:
			session, ok := job.Payload.(*models.Session)
			if !ok {
				logger.Error("invalid session payload", zap.String("job_id", job.ID))
				return nil
			}
			return sessions.Create(ctx, session)

		case jobTypeLastLogin:
			update, ok := job.Payload.(lastLoginUpdate)
			if !ok {
				logger.Error("invalid last-login payload", zap.String("job_id", job.ID))
				return nil
			}
			return users.UpdateLastLogin(ctx, update.UserID, update.At)

		case jobTypeAuditRecord:
			log, ok := job.Payload.(*models.AuditLog)
			if !ok {
				logger.Error("invalid audit payload", zap.String("job_id", job.ID))
				return nil
			}
			return audits.Create(ctx, log)

		case jobTypeMailDeliver:
			msg, ok := job.Payload.(mailer.Message)
			if !ok {
				logger.Error("invalid mail payload", zap.String("job_id", job.ID))
				return nil
			}
			return mail.Send(msg)

		default:
			return fmt.Errorf("unknown job type %q", job.Type)
		}
	}
}
