// ==============================================================================
// TERMINAL REPOSITORY - internal/repository/postgres/terminal.go
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

type TerminalRepository struct {
	db *sqlx.DB
}

func NewTerminalRepository(db *sqlx.DB) *TerminalRepository {
	return &TerminalRepository{db: db}
}

// Upsert inserts or refreshes a terminal keyed by terminal_id.
func (r *TerminalRepository) Upsert(ctx context.Context, t *domain.Terminal) error {
	query := `
		INSERT INTO terminals (
			id, terminal_id, serial_number, merchant_name, merchant_id,
			model, location, officer, status, last_transaction,
			installation_date, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (terminal_id) DO UPDATE SET
			serial_number = EXCLUDED.serial_number,
			merchant_name = EXCLUDED.merchant_name,
			merchant_id = EXCLUDED.merchant_id,
			model = EXCLUDED.model,
			location = EXCLUDED.location,
			officer = EXCLUDED.officer,
			status = EXCLUDED.status,
			last_transaction = EXCLUDED.last_transaction,
			installation_date = EXCLUDED.installation_date,
			updated_at = EXCLUDED.updated_at
	`

	_, err := r.db.ExecContext(ctx, query,
		t.ID, t.TerminalID, t.SerialNumber, t.MerchantName, t.MerchantID,
		t.Model, t.Location, t.Officer, t.Status, t.LastTransaction,
		t.InstallationDate, t.CreatedAt, t.UpdatedAt,
	)

	return errors.Wrap(err, "failed to upsert terminal")
}

// UpdateStatus writes back a derived status and effective last transaction.
func (r *TerminalRepository) UpdateStatus(ctx context.Context, terminalID string, status domain.RecordStatus, lastTransaction *time.Time) error {
	query := `
		UPDATE terminals
		SET status = $2, last_transaction = $3, updated_at = $4
		WHERE terminal_id = $1
	`

	result, err := r.db.ExecContext(ctx, query, terminalID, status, lastTransaction, time.Now())
	if err != nil {
		return errors.Wrap(err, "failed to update terminal status")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "failed to read update result")
	}
	if rows == 0 {
		return errors.ErrTerminalNotFound
	}
	return nil
}

func (r *TerminalRepository) FindAll(ctx context.Context) ([]*domain.Terminal, error) {
	var terminals []*domain.Terminal
	query := `SELECT * FROM terminals ORDER BY created_at`

	err := r.db.SelectContext(ctx, &terminals, query)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list terminals")
	}

	return terminals, nil
}

func (r *TerminalRepository) FindByTerminalID(ctx context.Context, terminalID string) (*domain.Terminal, error) {
	var t domain.Terminal
	query := `SELECT * FROM terminals WHERE terminal_id = $1`

	err := r.db.GetContext(ctx, &t, query, terminalID)
	if err == sql.ErrNoRows {
		return nil, errors.ErrTerminalNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get terminal")
	}

	return &t, nil
}

func (r *TerminalRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM terminals WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "failed to delete terminal")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "failed to read delete result")
	}
	if rows == 0 {
		return errors.ErrTerminalNotFound
	}
	return nil
}

func (r *TerminalRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM terminals`)
	if err != nil {
		return 0, errors.Wrap(err, "failed to count terminals")
	}
	return count, nil
}
