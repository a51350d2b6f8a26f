// ==============================================================================
// EXCHANGE RATE REPOSITORY - internal/repository/postgres/rates.go
// ==============================================================================
package postgres

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"

	"github.com/munashechidyiwa/merchant-portfolios/internal/domain"
	"github.com/munashechidyiwa/merchant-portfolios/pkg/errors"
)

type RateRepository struct {
	db *sqlx.DB
}

func NewRateRepository(db *sqlx.DB) *RateRepository {
	return &RateRepository{db: db}
}

func (r *RateRepository) CreateRate(ctx context.Context, rate *domain.RateRecord) error {
	query := `
		INSERT INTO exchange_rates (id, base_currency, target_currency, rate, source, valid_from, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.ExecContext(ctx, query,
		rate.ID, rate.BaseCurrency, rate.TargetCurrency, rate.Rate,
		rate.Source, rate.ValidFrom, rate.CreatedAt,
	)

	return errors.Wrap(err, "failed to create exchange rate")
}

// GetLatestRate returns the most recently effective rate for a pair.
func (r *RateRepository) GetLatestRate(ctx context.Context, base, target domain.Currency) (*domain.RateRecord, error) {
	var rate domain.RateRecord
	query := `
		SELECT * FROM exchange_rates
		WHERE base_currency = $1 AND target_currency = $2
		ORDER BY valid_from DESC
		LIMIT 1
	`

	err := r.db.GetContext(ctx, &rate, query, base, target)
	if err == sql.ErrNoRows {
		return nil, errors.ErrRateNotAvailable
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get latest exchange rate")
	}

	return &rate, nil
}

func (r *RateRepository) GetRateHistory(ctx context.Context, base, target domain.Currency, limit int) ([]*domain.RateRecord, error) {
	if limit <= 0 {
		limit = 30
	}

	var rates []*domain.RateRecord
	query := `
		SELECT * FROM exchange_rates
		WHERE base_currency = $1 AND target_currency = $2
		ORDER BY valid_from DESC
		LIMIT $3
	`

	err := r.db.SelectContext(ctx, &rates, query, base, target, limit)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list exchange rates")
	}

	return rates, nil
}
