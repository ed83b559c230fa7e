package dto

import "time"

// Canonical field names used by the extractor, validator and report sink.
const (
	FieldAccountNumber  = "account_number"
	FieldServiceAddress = "service_address"
	FieldTotalUsage     = "total_usage"
	FieldTotalCost      = "total_cost"
	FieldBillingPeriod  = "billing_period"
	FieldDueDate        = "due_date"
	FieldEnergyCharge   = "energy_charge"
	FieldTaxes          = "taxes"
	FieldFees           = "fees"
)

// Recognized usage units. Any other token found next to the usage figure is
// kept verbatim on the record rather than rejected.
const (
	UnitKWh = "kWh"
	UnitCCF = "CCF"
)

// BillRecord is one extracted utility bill. Fields that could not be located
// or coerced are nil ("absent"), never zero-valued. A record is immutable
// after extraction except for the derived fields, which are recomputed every
// time the owning collection changes.
type BillRecord struct {
	AccountNumber  string `json:"account_number,omitempty"`
	ServiceAddress string `json:"service_address,omitempty"`

	TotalUsage *float64 `json:"total_usage,omitempty"`
	UsageUnit  string   `json:"usage_unit,omitempty"`
	TotalCost  *float64 `json:"total_cost,omitempty"`

	BillingPeriodStart *time.Time `json:"billing_period_start,omitempty"`
	BillingPeriodEnd   *time.Time `json:"billing_period_end,omitempty"`
	// Raw billing-period string as it appeared in the bill, retained for
	// display even when the range could not be parsed into dates.
	BillingPeriodRaw string     `json:"billing_period_raw,omitempty"`
	BillingDays      *int       `json:"billing_days,omitempty"`
	DueDate          *time.Time `json:"due_date,omitempty"`
	DueDateRaw       string     `json:"due_date_raw,omitempty"`

	// Cost breakdown by category (energy charge, taxes, fees). Missing
	// categories are nil entries.
	CostBreakdown map[string]*float64 `json:"cost_breakdown,omitempty"`

	// Derived fields, owned by the aggregation pass.
	BlendedRate *float64 `json:"blended_rate,omitempty"`
	IsAnomaly   bool     `json:"is_anomaly"`

	// Data-quality notes, e.g. billing period end before start.
	Warnings []string `json:"warnings,omitempty"`
}

// ValidationResult is the verdict for a single extracted record.
type ValidationResult struct {
	OK bool `json:"ok"`
	// Mandatory fields (total_usage, total_cost) that are absent.
	MissingFields []string `json:"missing_fields,omitempty"`
	// Optional fields that are absent; informational only.
	IncompleteFields []string `json:"incomplete_fields,omitempty"`
	Message          string   `json:"message"`
}

// SummaryStats are cross-record statistics over a bill collection. A
// statistic is nil when no record in the collection contributes a sample
// to it.
type SummaryStats struct {
	RecordCount     int         `json:"record_count"`
	TotalUsage      *float64    `json:"total_usage,omitempty"`
	TotalCost       *float64    `json:"total_cost,omitempty"`
	MeanBlendedRate *float64    `json:"mean_blended_rate,omitempty"`
	AvgDailyUsage   *float64    `json:"avg_daily_usage,omitempty"`
	PeakUsage       *BillRecord `json:"peak_usage,omitempty"`
	PeakCost        *BillRecord `json:"peak_cost,omitempty"`
}

// RowWarning reports a pasted row that was skipped.
type RowWarning struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

// DocumentResult is the per-document outcome of an analyze request. Either
// Error is set, or Record and Validation are.
type DocumentResult struct {
	Filename   string            `json:"filename"`
	Error      string            `json:"error,omitempty"`
	Record     *BillRecord       `json:"record,omitempty"`
	Validation *ValidationResult `json:"validation,omitempty"`
}
