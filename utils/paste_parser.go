package utils

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/skohli21/utility-bill-analyzer/dto"
)

// Pasted tabular input: one row per line, tab or comma separated, fixed
// column order (startDate, endDate, days, usage, cost, blendedRate).

var columnSepRe = regexp.MustCompile(`[\t,]`)

const pastedColumns = 6

// PasteResult carries the rows that parsed plus a warning per skipped row.
type PasteResult struct {
	Records  []dto.BillRecord
	Warnings []dto.RowWarning
}

// ParsePastedRows parses pasted tabular data. A malformed row is skipped
// with a warning naming its 1-based line number; only a batch where no row
// parses at all is an error.
func ParsePastedRows(input string) (PasteResult, error) {
	var res PasteResult

	for i, line := range strings.Split(input, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		cols := columnSepRe.Split(line, -1)
		if len(cols) < pastedColumns {
			res.Warnings = append(res.Warnings, dto.RowWarning{
				Row:    i + 1,
				Reason: fmt.Sprintf("expected %d columns, got %d", pastedColumns, len(cols)),
			})
			continue
		}
		res.Records = append(res.Records, pastedRowToRecord(cols))
	}

	if len(res.Records) == 0 {
		return res, dto.ErrNoUsableRows
	}
	return res, nil
}

func pastedRowToRecord(cols []string) dto.BillRecord {
	rec := dto.BillRecord{
		BillingPeriodStart: parseDate(cols[0]),
		BillingPeriodEnd:   parseDate(cols[1]),
		BillingDays:        parseDays(cols[2]),
		TotalUsage:         parseDecimal(cols[3]),
		TotalCost:          parseDecimal(cols[4]),
		// The pasted rate is kept as an initial value; aggregation
		// recomputes it from usage and cost.
		BlendedRate: parseDecimal(cols[5]),
	}

	rec.BillingPeriodRaw = strings.TrimSpace(cols[0]) + " - " + strings.TrimSpace(cols[1])

	if rec.BillingPeriodStart != nil && rec.BillingPeriodEnd != nil &&
		rec.BillingPeriodEnd.Before(*rec.BillingPeriodStart) {
		rec.Warnings = append(rec.Warnings, "billing period end precedes start")
	}
	return rec
}

func parseDays(s string) *int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return nil
	}
	return &n
}
