// ==============================================================================
// ALERT REPOSITORY - internal/repository/postgres/alert.go
// ==============================================================================
package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/munashechidyiwa/merchant-portfolios/internal/domain"
	"github.com/munashechidyiwa/merchant-portfolios/pkg/errors"
)

type AlertRepository struct {
	db *sqlx.DB
}

func NewAlertRepository(db *sqlx.DB) *AlertRepository {
	return &AlertRepository{db: db}
}

func (r *AlertRepository) Create(ctx context.Context, a *domain.Alert) error {
	query := `
		INSERT INTO alerts (
			id, type, severity, message, merchant, officer, terminal_id,
			status, action_required, due_date, auto_generated, timestamp,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	_, err := r.db.ExecContext(ctx, query,
		a.ID, a.Type, a.Severity, a.Message, a.Merchant, a.Officer, a.TerminalID,
		a.Status, a.ActionRequired, a.DueDate, a.AutoGenerated, a.Timestamp,
		a.CreatedAt, a.UpdatedAt,
	)

	return errors.Wrap(err, "failed to create alert")
}

// UpdateStatus transitions an alert between open, acknowledged and resolved.
func (r *AlertRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	query := `UPDATE alerts SET status = $2, updated_at = $3 WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, status, time.Now())
	if err != nil {
		return errors.Wrap(err, "failed to update alert status")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "failed to read update result")
	}
	if rows == 0 {
		return errors.ErrAlertNotFound
	}
	return nil
}

func (r *AlertRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM alerts WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "failed to delete alert")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "failed to read delete result")
	}
	if rows == 0 {
		return errors.ErrAlertNotFound
	}
	return nil
}

func (r *AlertRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Alert, error) {
	var a domain.Alert
	err := r.db.GetContext(ctx, &a, `SELECT * FROM alerts WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return nil, errors.ErrAlertNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get alert")
	}
	return &a, nil
}

func (r *AlertRepository) FindAll(ctx context.Context) ([]*domain.Alert, error) {
	var alerts []*domain.Alert
	query := `SELECT * FROM alerts ORDER BY timestamp DESC`

	err := r.db.SelectContext(ctx, &alerts, query)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list alerts")
	}

	return alerts, nil
}

// FindOpenByTerminal is used by the auto-alert pass to avoid raising a
// second alert for a terminal that already has one outstanding.
func (r *AlertRepository) FindOpenByTerminal(ctx context.Context, terminalID string) (*domain.Alert, error) {
	var a domain.Alert
	query := `
		SELECT * FROM alerts
		WHERE terminal_id = $1 AND status = 'Open'
		ORDER BY timestamp DESC
		LIMIT 1
	`

	err := r.db.GetContext(ctx, &a, query, terminalID)
	if err == sql.ErrNoRows {
		return nil, errors.ErrAlertNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get open alert")
	}
	return &a, nil
}
