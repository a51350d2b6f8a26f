// ==============================================================================
// MERCHANT REPOSITORY - internal/repository/postgres/merchant.go
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

type MerchantRepository struct {
	db *sqlx.DB
}

func NewMerchantRepository(db *sqlx.DB) *MerchantRepository {
	return &MerchantRepository{db: db}
}

func (r *MerchantRepository) Create(ctx context.Context, m *domain.Merchant) error {
	query := `
		INSERT INTO merchants (
			id, terminal_id, account_cif, merchant_name, support_officer,
			category, sector, business_unit, branch_code, location, status,
			zwg_sales, usd_sales, consolidated_usd, contribution_percentage,
			month_to_date_total, last_activity, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
	`

	_, err := r.db.ExecContext(ctx, query,
		m.ID, m.TerminalID, m.AccountCIF, m.MerchantName, m.SupportOfficer,
		m.Category, m.Sector, m.BusinessUnit, m.BranchCode, m.Location, m.Status,
		m.ZWGSales, m.USDSales, m.ConsolidatedUSD, m.ContributionPercentage,
		m.MonthToDateTotal, m.LastActivity, m.CreatedAt, m.UpdatedAt,
	)

	return errors.Wrap(err, "failed to create merchant")
}

// Upsert inserts or refreshes a merchant keyed by (terminal_id, account_cif),
// so re-uploading the same report never duplicates records or doubles
// revenue.
func (r *MerchantRepository) Upsert(ctx context.Context, m *domain.Merchant) error {
	query := `
		INSERT INTO merchants (
			id, terminal_id, account_cif, merchant_name, support_officer,
			category, sector, business_unit, branch_code, location, status,
			zwg_sales, usd_sales, consolidated_usd, contribution_percentage,
			month_to_date_total, last_activity, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
		ON CONFLICT (terminal_id, account_cif) DO UPDATE SET
			merchant_name = EXCLUDED.merchant_name,
			support_officer = EXCLUDED.support_officer,
			category = EXCLUDED.category,
			sector = EXCLUDED.sector,
			business_unit = EXCLUDED.business_unit,
			branch_code = EXCLUDED.branch_code,
			location = EXCLUDED.location,
			status = EXCLUDED.status,
			zwg_sales = EXCLUDED.zwg_sales,
			usd_sales = EXCLUDED.usd_sales,
			consolidated_usd = EXCLUDED.consolidated_usd,
			month_to_date_total = EXCLUDED.month_to_date_total,
			last_activity = EXCLUDED.last_activity,
			updated_at = EXCLUDED.updated_at
	`

	_, err := r.db.ExecContext(ctx, query,
		m.ID, m.TerminalID, m.AccountCIF, m.MerchantName, m.SupportOfficer,
		m.Category, m.Sector, m.BusinessUnit, m.BranchCode, m.Location, m.Status,
		m.ZWGSales, m.USDSales, m.ConsolidatedUSD, m.ContributionPercentage,
		m.MonthToDateTotal, m.LastActivity, m.CreatedAt, m.UpdatedAt,
	)

	return errors.Wrap(err, "failed to upsert merchant")
}

func (r *MerchantRepository) Update(ctx context.Context, m *domain.Merchant) error {
	query := `
		UPDATE merchants SET
			terminal_id = $2, account_cif = $3, merchant_name = $4,
			support_officer = $5, category = $6, sector = $7,
			business_unit = $8, branch_code = $9, location = $10,
			status = $11, zwg_sales = $12, usd_sales = $13,
			consolidated_usd = $14, contribution_percentage = $15,
			month_to_date_total = $16, last_activity = $17, updated_at = $18
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query,
		m.ID, m.TerminalID, m.AccountCIF, m.MerchantName,
		m.SupportOfficer, m.Category, m.Sector,
		m.BusinessUnit, m.BranchCode, m.Location,
		m.Status, m.ZWGSales, m.USDSales,
		m.ConsolidatedUSD, m.ContributionPercentage,
		m.MonthToDateTotal, m.LastActivity, time.Now(),
	)
	if err != nil {
		return errors.Wrap(err, "failed to update merchant")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "failed to read update result")
	}
	if rows == 0 {
		return errors.ErrMerchantNotFound
	}
	return nil
}

func (r *MerchantRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM merchants WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "failed to delete merchant")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "failed to read delete result")
	}
	if rows == 0 {
		return errors.ErrMerchantNotFound
	}
	return nil
}

func (r *MerchantRepository) FindAll(ctx context.Context) ([]*domain.Merchant, error) {
	var merchants []*domain.Merchant
	query := `SELECT * FROM merchants ORDER BY created_at`

	err := r.db.SelectContext(ctx, &merchants, query)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list merchants")
	}

	return merchants, nil
}

func (r *MerchantRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Merchant, error) {
	var m domain.Merchant
	query := `SELECT * FROM merchants WHERE id = $1`

	err := r.db.GetContext(ctx, &m, query, id)
	if err == sql.ErrNoRows {
		return nil, errors.ErrMerchantNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get merchant")
	}

	return &m, nil
}

func (r *MerchantRepository) FindByTerminalAndCIF(ctx context.Context, terminalID, accountCIF string) (*domain.Merchant, error) {
	var m domain.Merchant
	query := `SELECT * FROM merchants WHERE terminal_id = $1 AND account_cif = $2`

	err := r.db.GetContext(ctx, &m, query, terminalID, accountCIF)
	if err == sql.ErrNoRows {
		return nil, errors.ErrMerchantNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get merchant")
	}

	return &m, nil
}

func (r *MerchantRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM merchants`)
	if err != nil {
		return 0, errors.Wrap(err, "failed to count merchants")
	}
	return count, nil
}
