// ==============================================================================
// SETTINGS REPOSITORY - internal/repository/postgres/settings.go
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

type SettingsRepository struct {
	db *sqlx.DB
}

func NewSettingsRepository(db *sqlx.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

func (r *SettingsRepository) ListAlertSettings(ctx context.Context) ([]*domain.AlertSetting, error) {
	var settings []*domain.AlertSetting
	query := `SELECT * FROM alert_settings ORDER BY name`

	err := r.db.SelectContext(ctx, &settings, query)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list alert settings")
	}

	return settings, nil
}

// UpsertAlertSetting inserts or refreshes an alerting rule keyed by name.
func (r *SettingsRepository) UpsertAlertSetting(ctx context.Context, s *domain.AlertSetting) error {
	query := `
		INSERT INTO alert_settings (
			id, name, description, enabled, priority, threshold_value,
			email_notification, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (name) DO UPDATE SET
			description = EXCLUDED.description,
			enabled = EXCLUDED.enabled,
			priority = EXCLUDED.priority,
			threshold_value = EXCLUDED.threshold_value,
			email_notification = EXCLUDED.email_notification,
			updated_at = EXCLUDED.updated_at
	`

	_, err := r.db.ExecContext(ctx, query,
		s.ID, s.Name, s.Description, s.Enabled, s.Priority, s.ThresholdValue,
		s.EmailNotification, s.CreatedAt, s.UpdatedAt,
	)

	return errors.Wrap(err, "failed to upsert alert setting")
}

func (r *SettingsRepository) ToggleAlertSetting(ctx context.Context, id uuid.UUID, enabled bool) error {
	query := `UPDATE alert_settings SET enabled = $2, updated_at = $3 WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, enabled, time.Now())
	if err != nil {
		return errors.Wrap(err, "failed to toggle alert setting")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "failed to read update result")
	}
	if rows == 0 {
		return errors.ErrSettingNotFound
	}
	return nil
}

func (r *SettingsRepository) ListSystemSettings(ctx context.Context, category string) ([]*domain.SystemSetting, error) {
	var settings []*domain.SystemSetting

	if category == "" {
		err := r.db.SelectContext(ctx, &settings, `SELECT * FROM system_settings ORDER BY category, setting_key`)
		if err != nil {
			return nil, errors.Wrap(err, "failed to list system settings")
		}
		return settings, nil
	}

	query := `SELECT * FROM system_settings WHERE category = $1 ORDER BY setting_key`
	err := r.db.SelectContext(ctx, &settings, query, category)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list system settings")
	}

	return settings, nil
}

func (r *SettingsRepository) GetSystemSetting(ctx context.Context, category, key string) (*domain.SystemSetting, error) {
	var s domain.SystemSetting
	query := `SELECT * FROM system_settings WHERE category = $1 AND setting_key = $2`

	err := r.db.GetContext(ctx, &s, query, category, key)
	if err == sql.ErrNoRows {
		return nil, errors.ErrSettingNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get system setting")
	}

	return &s, nil
}

// UpsertSystemSetting inserts or refreshes a setting keyed by
// (category, setting_key).
func (r *SettingsRepository) UpsertSystemSetting(ctx context.Context, s *domain.SystemSetting) error {
	query := `
		INSERT INTO system_settings (
			id, category, setting_key, setting_value, description, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (category, setting_key) DO UPDATE SET
			setting_value = EXCLUDED.setting_value,
			description = EXCLUDED.description,
			updated_at = EXCLUDED.updated_at
	`

	_, err := r.db.ExecContext(ctx, query,
		s.ID, s.Category, s.SettingKey, s.SettingValue, s.Description,
		s.CreatedAt, s.UpdatedAt,
	)

	return errors.Wrap(err, "failed to upsert system setting")
}
