package utils

import (
	"strings"

	"github.com/skohli21/utility-bill-analyzer/dto"
)

// ValidateRecord checks a coerced record for the mandatory fields and lists
// which optional ones are missing as incomplete-data context. It never
// mutates the record.
func ValidateRecord(rec dto.BillRecord) dto.ValidationResult {
	var missing []string
	if rec.TotalUsage == nil {
		missing = append(missing, dto.FieldTotalUsage)
	}
	if rec.TotalCost == nil {
		missing = append(missing, dto.FieldTotalCost)
	}

	var incomplete []string
	if rec.AccountNumber == "" {
		incomplete = append(incomplete, dto.FieldAccountNumber)
	}
	if rec.ServiceAddress == "" {
		incomplete = append(incomplete, dto.FieldServiceAddress)
	}
	if rec.BillingPeriodEnd == nil && rec.BillingPeriodRaw == "" {
		incomplete = append(incomplete, dto.FieldBillingPeriod)
	}
	if rec.DueDate == nil && rec.DueDateRaw == "" {
		incomplete = append(incomplete, dto.FieldDueDate)
	}

	if len(missing) > 0 {
		return dto.ValidationResult{
			MissingFields:    missing,
			IncompleteFields: incomplete,
			Message:          "Warning: Missing " + strings.Join(missing, ", ") + ".",
		}
	}
	return dto.ValidationResult{
		OK:               true,
		IncompleteFields: incomplete,
		Message:          "Extraction successful.",
	}
}
