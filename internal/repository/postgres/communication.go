// ==============================================================================
// COMMUNICATION REPOSITORY - internal/repository/postgres/communication.go
// ==============================================================================
package postgres

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/munashechidyiwa/merchant-portfolios/internal/domain"
	"github.com/munashechidyiwa/merchant-portfolios/pkg/errors"
)

type CommunicationRepository struct {
	db *sqlx.DB
}

func NewCommunicationRepository(db *sqlx.DB) *CommunicationRepository {
	return &CommunicationRepository{db: db}
}

func (r *CommunicationRepository) Create(ctx context.Context, c *domain.Communication) error {
	query := `
		INSERT INTO communications (
			id, merchant_id, merchant_name, terminal_id, officer, officer_email,
			type, subject, notes, priority, status, inactive_days, date,
			follow_up_date, auto_generated, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`

	_, err := r.db.ExecContext(ctx, query,
		c.ID, c.MerchantID, c.MerchantName, c.TerminalID, c.Officer, c.OfficerEmail,
		c.Type, c.Subject, c.Notes, c.Priority, c.Status, c.InactiveDays, c.Date,
		c.FollowUpDate, c.AutoGenerated, c.CreatedAt, c.UpdatedAt,
	)

	return errors.Wrap(err, "failed to create communication")
}

func (r *CommunicationRepository) Update(ctx context.Context, c *domain.Communication) error {
	query := `
		UPDATE communications SET
			merchant_id = $2, merchant_name = $3, terminal_id = $4,
			officer = $5, officer_email = $6, type = $7, subject = $8,
			notes = $9, priority = $10, status = $11, inactive_days = $12,
			date = $13, follow_up_date = $14, updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query,
		c.ID, c.MerchantID, c.MerchantName, c.TerminalID,
		c.Officer, c.OfficerEmail, c.Type, c.Subject,
		c.Notes, c.Priority, c.Status, c.InactiveDays,
		c.Date, c.FollowUpDate,
	)
	if err != nil {
		return errors.Wrap(err, "failed to update communication")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "failed to read update result")
	}
	if rows == 0 {
		return errors.ErrCommunicationNotFound
	}
	return nil
}

func (r *CommunicationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM communications WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "failed to delete communication")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "failed to read delete result")
	}
	if rows == 0 {
		return errors.ErrCommunicationNotFound
	}
	return nil
}

func (r *CommunicationRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Communication, error) {
	var c domain.Communication
	err := r.db.GetContext(ctx, &c, `SELECT * FROM communications WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return nil, errors.ErrCommunicationNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get communication")
	}
	return &c, nil
}

func (r *CommunicationRepository) FindAll(ctx context.Context) ([]*domain.Communication, error) {
	var comms []*domain.Communication
	query := `SELECT * FROM communications ORDER BY created_at DESC`

	err := r.db.SelectContext(ctx, &comms, query)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list communications")
	}

	return comms, nil
}
