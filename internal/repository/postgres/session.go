// ==============================================================================
// SESSION REPOSITORY - internal/repository/postgres/session.go
// ==============================================================================
package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/munashechidyiwa/merchant-portfolios/internal/domain"
	"github.com/munashechidyiwa/merchant-portfolios/pkg/errors"
)

type SessionRepository struct {
	db *sqlx.DB
}

func NewSessionRepository(db *sqlx.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) Create(ctx context.Context, s *domain.UserSession) error {
	query := `
		INSERT INTO user_sessions (id, user_email, ip_address, user_agent, login_time, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.ExecContext(ctx, query,
		s.ID, s.UserEmail, s.IPAddress, s.UserAgent, s.LoginTime, s.CreatedAt,
	)

	return errors.Wrap(err, "failed to create session")
}

// Close stamps a session's logout time.
func (r *SessionRepository) Close(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE user_sessions SET logout_time = $2 WHERE id = $1 AND logout_time IS NULL`

	result, err := r.db.ExecContext(ctx, query, id, time.Now())
	if err != nil {
		return errors.Wrap(err, "failed to close session")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "failed to read update result")
	}
	if rows == 0 {
		return errors.ErrSessionNotFound
	}
	return nil
}

// FindRecent lists the latest sessions for the admin activity view.
func (r *SessionRepository) FindRecent(ctx context.Context, limit int) ([]*domain.UserSession, error) {
	if limit <= 0 {
		limit = 50
	}

	var sessions []*domain.UserSession
	query := `SELECT * FROM user_sessions ORDER BY login_time DESC LIMIT $1`

	err := r.db.SelectContext(ctx, &sessions, query, limit)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list sessions")
	}

	return sessions, nil
}
