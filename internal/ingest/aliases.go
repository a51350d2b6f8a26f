package ingest

import (
	"fmt"
	"strings"

	"github.com/munashechidyiwa/merchant-portfolios/internal/domain"
	"github.com/munashechidyiwa/merchant-portfolios/pkg/errors"
)

// Canonical field names used by the normalizers.
const (
	fieldTerminalID       = "terminal_id"
	fieldAccountCIF       = "account_cif"
	fieldMerchantName     = "merchant_name"
	fieldOfficer          = "officer"
	fieldCategory         = "category"
	fieldSector           = "sector"
	fieldBusinessUnit     = "business_unit"
	fieldBranchCode       = "branch_code"
	fieldLocation         = "location"
	fieldSalesAmount      = "sales_amount"
	fieldLastTransaction  = "last_transaction"
	fieldSerialNumber     = "serial_number"
	fieldModel            = "model"
	fieldMerchantID       = "merchant_id"
	fieldInstallationDate = "installation_date"
)

// fieldAliases maps each canonical field to the header spellings seen in
// officer-produced spreadsheets. Kept as data so new bank report formats are
// a one-line change, not new branching.
var fieldAliases = map[string][]string{
	fieldTerminalID:       {"Terminal ID", "TerminalID", "terminal_id", "Terminal"},
	fieldAccountCIF:       {"Account CIF", "AccountCIF", "account_cif", "CIF"},
	fieldMerchantName:     {"Merchant Name", "MerchantName", "merchant_name", "Merchant"},
	fieldOfficer:          {"Support Officer", "Officer", "support_officer", "officer", "Assigned Officer"},
	fieldCategory:         {"Category", "category"},
	fieldSector:           {"Sector", "sector"},
	fieldBusinessUnit:     {"Business Unit", "BusinessUnit", "business_unit"},
	fieldBranchCode:       {"Branch Code", "BranchCode", "branch_code", "Branch"},
	fieldLocation:         {"Location", "location", "Address"},
	fieldSalesAmount:      {"Month To Date Total", "MTD Total", "month_to_date_total", "Sales", "Sales Amount", "Amount"},
	fieldLastTransaction:  {"Last Transaction Date", "Last Transaction", "Last Activity", "last_transaction", "last_activity"},
	fieldSerialNumber:     {"Serial Number", "SerialNumber", "serial_number", "Serial"},
	fieldModel:            {"Model", "model", "Device Model"},
	fieldMerchantID:       {"Merchant ID", "MerchantID", "merchant_id"},
	fieldInstallationDate: {"Installation Date", "installation_date", "Installed"},
}

// requiredColumns lists the canonical fields an upload must carry per kind.
// Identity fields are defaulted when blank in a row, but the columns
// themselves must exist for the file to be recognized as the right report.
var requiredColumns = map[domain.ReportKind][]string{
	domain.KindMerchants: {fieldTerminalID, fieldMerchantName, fieldSalesAmount},
	domain.KindTerminals: {fieldTerminalID, fieldMerchantName},
}

// lookup returns the row value for a canonical field, trying each accepted
// header spelling in order.
func lookup(row domain.RawRow, field string) string {
	for _, alias := range fieldAliases[field] {
		if v, ok := row[alias]; ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// ValidateColumns checks that every required canonical field is reachable
// through some alias in the uploaded header set.
func ValidateColumns(headers []string, kind domain.ReportKind) error {
	required, ok := requiredColumns[kind]
	if !ok {
		return errors.ErrUnsupportedKind
	}

	present := make(map[string]bool, len(headers))
	for _, h := range headers {
		present[strings.TrimSpace(h)] = true
	}

	var missing []string
	for _, field := range required {
		found := false
		for _, alias := range fieldAliases[field] {
			if present[alias] {
				found = true
				break
			}
		}
		if !found {
			missing = append(missing, field)
		}
	}

	if len(missing) > 0 {
		return errors.Wrap(errors.ErrMissingColumns, fmt.Sprintf("missing: %s", strings.Join(missing, ", ")))
	}
	return nil
}
