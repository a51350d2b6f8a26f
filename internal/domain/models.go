// Package domain defines the records tracked by the portfolio dashboard.
package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Currency represents a reporting currency for merchant sales figures.
type Currency string

const (
	USD Currency = "USD"
	ZWG Currency = "ZWG"
)

// Valid reports whether the currency is one the dashboard consolidates.
func (c Currency) Valid() bool {
	return c == USD || c == ZWG
}

// RecordStatus classifies a merchant or terminal by transaction recency.
type RecordStatus string

const (
	StatusActive   RecordStatus = "Active"
	StatusInactive RecordStatus = "Inactive"
)

// ReportKind identifies which table an uploaded spreadsheet feeds.
type ReportKind string

const (
	KindMerchants ReportKind = "merchants"
	KindTerminals ReportKind = "terminals"
)

// RawRow is a single parsed spreadsheet row, keyed by column header.
type RawRow map[string]string

// Merchant represents a merchant account in an officer's portfolio.
type Merchant struct {
	ID                     uuid.UUID       `json:"id" db:"id"`
	TerminalID             string          `json:"terminal_id" db:"terminal_id"`
	AccountCIF             string          `json:"account_cif" db:"account_cif"`
	MerchantName           string          `json:"merchant_name" db:"merchant_name"`
	SupportOfficer         string          `json:"support_officer" db:"support_officer"`
	Category               string          `json:"category" db:"category"`
	Sector                 string          `json:"sector" db:"sector"`
	BusinessUnit           string          `json:"business_unit" db:"business_unit"`
	BranchCode             string          `json:"branch_code" db:"branch_code"`
	Location               string          `json:"location" db:"location"`
	Status                 RecordStatus    `json:"status" db:"status"`
	ZWGSales               decimal.Decimal `json:"zwg_sales" db:"zwg_sales"`
	USDSales               decimal.Decimal `json:"usd_sales" db:"usd_sales"`
	ConsolidatedUSD        decimal.Decimal `json:"consolidated_usd" db:"consolidated_usd"`
	ContributionPercentage decimal.Decimal `json:"contribution_percentage" db:"contribution_percentage"`
	MonthToDateTotal       decimal.Decimal `json:"month_to_date_total" db:"month_to_date_total"`
	LastActivity           *time.Time      `json:"last_activity,omitempty" db:"last_activity"`
	CreatedAt              time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt              time.Time       `json:"updated_at" db:"updated_at"`
}

// Terminal represents a POS device deployed at a merchant site.
// Status is derived from transaction recency, never set directly by uploads.
type Terminal struct {
	ID               uuid.UUID    `json:"id" db:"id"`
	TerminalID       string       `json:"terminal_id" db:"terminal_id"`
	SerialNumber     string       `json:"serial_number" db:"serial_number"`
	MerchantName     string       `json:"merchant_name" db:"merchant_name"`
	MerchantID       string       `json:"merchant_id" db:"merchant_id"`
	Model            string       `json:"model" db:"model"`
	Location         string       `json:"location" db:"location"`
	Officer          string       `json:"officer" db:"officer"`
	Status           RecordStatus `json:"status" db:"status"`
	LastTransaction  *time.Time   `json:"last_transaction,omitempty" db:"last_transaction"`
	InstallationDate *time.Time   `json:"installation_date,omitempty" db:"installation_date"`
	CreatedAt        time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time    `json:"updated_at" db:"updated_at"`
}

// Communication is a logged interaction between an officer and a merchant.
type Communication struct {
	ID            uuid.UUID  `json:"id" db:"id"`
	MerchantID    *string    `json:"merchant_id,omitempty" db:"merchant_id"`
	MerchantName  string     `json:"merchant_name" db:"merchant_name"`
	TerminalID    *string    `json:"terminal_id,omitempty" db:"terminal_id"`
	Officer       string     `json:"officer" db:"officer"`
	OfficerEmail  *string    `json:"officer_email,omitempty" db:"officer_email"`
	Type          string     `json:"type" db:"type"`
	Subject       string     `json:"subject" db:"subject"`
	Notes         string     `json:"notes" db:"notes"`
	Priority      string     `json:"priority" db:"priority"`
	Status        string     `json:"status" db:"status"`
	InactiveDays  *int       `json:"inactive_days,omitempty" db:"inactive_days"`
	Date          *time.Time `json:"date,omitempty" db:"date"`
	FollowUpDate  *time.Time `json:"follow_up_date,omitempty" db:"follow_up_date"`
	AutoGenerated bool       `json:"auto_generated" db:"auto_generated"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at" db:"updated_at"`
}

// Alert flags a portfolio condition requiring officer attention.
type Alert struct {
	ID             uuid.UUID  `json:"id" db:"id"`
	Type           string     `json:"type" db:"type"`
	Severity       string     `json:"severity" db:"severity"`
	Message        string     `json:"message" db:"message"`
	Merchant       string     `json:"merchant" db:"merchant"`
	Officer        string     `json:"officer" db:"officer"`
	TerminalID     *string    `json:"terminal_id,omitempty" db:"terminal_id"`
	Status         string     `json:"status" db:"status"`
	ActionRequired *string    `json:"action_required,omitempty" db:"action_required"`
	DueDate        *time.Time `json:"due_date,omitempty" db:"due_date"`
	AutoGenerated  bool       `json:"auto_generated" db:"auto_generated"`
	Timestamp      time.Time  `json:"timestamp" db:"timestamp"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at" db:"updated_at"`
}

// Alert severities.
const (
	SeverityHigh   = "High"
	SeverityMedium = "Medium"
	SeverityLow    = "Low"
)

// AlertSetting is a configurable alerting rule.
type AlertSetting struct {
	ID                uuid.UUID `json:"id" db:"id"`
	Name              string    `json:"name" db:"name"`
	Description       string    `json:"description" db:"description"`
	Enabled           bool      `json:"enabled" db:"enabled"`
	Priority          string    `json:"priority" db:"priority"`
	ThresholdValue    string    `json:"threshold_value" db:"threshold_value"`
	EmailNotification bool      `json:"email_notification" db:"email_notification"`
	CreatedAt         time.Time `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time `json:"updated_at" db:"updated_at"`
}

// SystemSetting is a category-scoped configuration entry.
type SystemSetting struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Category     string    `json:"category" db:"category"`
	SettingKey   string    `json:"setting_key" db:"setting_key"`
	SettingValue Metadata  `json:"setting_value" db:"setting_value"`
	Description  string    `json:"description" db:"description"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// UserSession records a dashboard login for the admin activity view.
type UserSession struct {
	ID         uuid.UUID  `json:"id" db:"id"`
	UserEmail  string     `json:"user_email" db:"user_email"`
	IPAddress  string     `json:"ip_address" db:"ip_address"`
	UserAgent  string     `json:"user_agent" db:"user_agent"`
	LoginTime  time.Time  `json:"login_time" db:"login_time"`
	LogoutTime *time.Time `json:"logout_time,omitempty" db:"logout_time"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
}

// RateRecord is one historical ZWG-per-USD exchange rate entry.
type RateRecord struct {
	ID             uuid.UUID       `json:"id" db:"id"`
	BaseCurrency   Currency        `json:"base_currency" db:"base_currency"`
	TargetCurrency Currency        `json:"target_currency" db:"target_currency"`
	Rate           decimal.Decimal `json:"rate" db:"rate"`
	Source         string          `json:"source" db:"source"`
	ValidFrom      time.Time       `json:"valid_from" db:"valid_from"`
	CreatedAt      time.Time       `json:"created_at" db:"created_at"`
}

// Snapshot is the aggregate dashboard view over the current record
// collections. It is recomputed on demand and never persisted as source
// of truth.
type Snapshot struct {
	TotalUSDRevenue        decimal.Decimal `json:"total_usd_revenue"`
	TotalZWGRevenue        decimal.Decimal `json:"total_zwg_revenue"`
	ConsolidatedUSDRevenue decimal.Decimal `json:"consolidated_usd_revenue"`
	ExchangeRate           decimal.Decimal `json:"exchange_rate"`
	TotalMerchants         int             `json:"total_merchants"`
	ActiveMerchants        int             `json:"active_merchants"`
	TotalTerminals         int             `json:"total_terminals"`
	ActiveTerminals        int             `json:"active_terminals"`
	ActivityRatio          decimal.Decimal `json:"activity_ratio"`
	GeneratedAt            time.Time       `json:"generated_at"`
}

// Metadata is a JSON-compatible map
type Metadata map[string]interface{}

func (m Metadata) Value() (driver.Value, error) {
	return json.Marshal(m)
}

func (m *Metadata) Scan(value interface{}) error {
	b, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	return json.Unmarshal(b, &m)
}
