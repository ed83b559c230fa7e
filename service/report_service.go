package service

import (
	"fmt"
	"net/smtp"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jordan-wright/email"
	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"

	"github.com/skohli21/utility-bill-analyzer/config"
	"github.com/skohli21/utility-bill-analyzer/dto"
)

// AbsentLabel is the display sentinel for absent values. It exists only at
// the report boundary; the internal model always uses nil for absence.
const AbsentLabel = "Data not available"

// reportFields fixes the field order for report artifacts.
var reportFields = []struct {
	name  string
	title string
}{
	{dto.FieldAccountNumber, "Account Number"},
	{dto.FieldServiceAddress, "Service Address"},
	{dto.FieldBillingPeriod, "Billing Period"},
	{dto.FieldDueDate, "Due Date"},
	{dto.FieldTotalUsage, "Total Usage"},
	{dto.FieldTotalCost, "Total Cost"},
	{"blended_rate", "Blended Rate"},
	{dto.FieldEnergyCharge, "Energy Charge"},
	{dto.FieldTaxes, "Taxes"},
	{dto.FieldFees, "Fees"},
}

// DisplayMap flattens a record into field-name -> display-ready string for
// the report sink, substituting the absent sentinel for nil values.
func DisplayMap(rec dto.BillRecord) map[string]string {
	m := map[string]string{
		dto.FieldAccountNumber:  orAbsent(rec.AccountNumber),
		dto.FieldServiceAddress: orAbsent(rec.ServiceAddress),
		dto.FieldBillingPeriod:  orAbsent(rec.BillingPeriodRaw),
		dto.FieldDueDate:        displayDueDate(rec),
		dto.FieldTotalUsage:     displayUsage(rec),
		dto.FieldTotalCost:      displayDollars(rec.TotalCost, 2),
		"blended_rate":          displayDollars(rec.BlendedRate, 4),
	}
	for _, f := range []string{dto.FieldEnergyCharge, dto.FieldTaxes, dto.FieldFees} {
		m[f] = displayDollars(rec.CostBreakdown[f], 2)
	}
	return m
}

func orAbsent(s string) string {
	if strings.TrimSpace(s) == "" {
		return AbsentLabel
	}
	return s
}

func displayDueDate(rec dto.BillRecord) string {
	if rec.DueDate != nil {
		return rec.DueDate.Format("01/02/2006")
	}
	return orAbsent(rec.DueDateRaw)
}

func displayUsage(rec dto.BillRecord) string {
	if rec.TotalUsage == nil {
		return AbsentLabel
	}
	out := humanize.CommafWithDigits(*rec.TotalUsage, 1)
	if rec.UsageUnit != "" {
		out += " " + rec.UsageUnit
	}
	return out
}

func displayDollars(v *float64, digits int) string {
	if v == nil {
		return AbsentLabel
	}
	return "$" + humanize.CommafWithDigits(*v, digits)
}

// ReportService produces downloadable and emailed summaries of a bill
// collection.
type ReportService struct {
	cfg    *config.Config
	logger *logrus.Logger
}

func NewReportService(cfg *config.Config, logger *logrus.Logger) *ReportService {
	return &ReportService{cfg: cfg, logger: logger}
}

// BuildWorkbook renders the collection into an XLSX workbook: one row per
// bill in billing-period order, followed by a summary block.
func (s *ReportService) BuildWorkbook(records []dto.BillRecord, summary dto.SummaryStats) ([]byte, error) {
	f := excelize.NewFile()
	const sheet = "Bills"

	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(index)
	_ = f.DeleteSheet("Sheet1")

	write := func(col, row int, v any) {
		cell, _ := excelize.CoordinatesToCellName(col, row)
		_ = f.SetCellValue(sheet, cell, v)
	}

	for i, field := range reportFields {
		write(i+1, 1, field.title)
	}
	write(len(reportFields)+1, 1, "Anomaly")

	row := 2
	for _, rec := range records {
		display := DisplayMap(rec)
		for i, field := range reportFields {
			write(i+1, row, display[field.name])
		}
		if rec.IsAnomaly {
			write(len(reportFields)+1, row, "yes")
		}
		row++
	}

	row++
	write(1, row, "Bills")
	write(2, row, summary.RecordCount)
	row++
	write(1, row, "Total Usage")
	write(2, row, displayFloat(summary.TotalUsage, 1))
	row++
	write(1, row, "Total Cost")
	write(2, row, displayDollars(summary.TotalCost, 2))
	row++
	write(1, row, "Mean Blended Rate")
	write(2, row, displayDollars(summary.MeanBlendedRate, 4))
	row++
	write(1, row, "Avg Daily Usage")
	write(2, row, displayFloat(summary.AvgDailyUsage, 1))
	row++
	write(1, row, "Peak Usage")
	write(2, row, peakUsageCell(summary.PeakUsage))
	row++
	write(1, row, "Peak Cost")
	write(2, row, peakCostCell(summary.PeakCost))

	_ = f.SetColWidth(sheet, "A", "B", 18)
	_ = f.SetColWidth(sheet, "C", "D", 22)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Infof("Built workbook with %d bill rows", len(records))
	return buf.Bytes(), nil
}

func displayFloat(v *float64, digits int) string {
	if v == nil {
		return AbsentLabel
	}
	return humanize.CommafWithDigits(*v, digits)
}

func peakUsageCell(rec *dto.BillRecord) string {
	if rec == nil {
		return AbsentLabel
	}
	return fmt.Sprintf("%s (%s)", displayUsage(*rec), orAbsent(rec.BillingPeriodRaw))
}

func peakCostCell(rec *dto.BillRecord) string {
	if rec == nil {
		return AbsentLabel
	}
	return fmt.Sprintf("%s (%s)", displayDollars(rec.TotalCost, 2), orAbsent(rec.BillingPeriodRaw))
}

// EmailSummary sends a plain-text summary of the collection. Sending
// requires SMTP configuration; without it the error is immediate.
func (s *ReportService) EmailSummary(to string, records []dto.BillRecord, summary dto.SummaryStats) error {
	if s.cfg.SMTPHost == "" {
		return fmt.Errorf("email sending is not configured")
	}

	e := email.NewEmail()
	e.From = s.cfg.SenderEmail
	e.To = []string{to}
	e.Subject = "Utility Bill Analysis Summary"

	var body strings.Builder
	body.WriteString(fmt.Sprintf("Utility bill summary as of %s\n\n", time.Now().Format("2006-01-02")))
	body.WriteString(fmt.Sprintf("Bills analyzed: %d\n", summary.RecordCount))
	body.WriteString(fmt.Sprintf("Total usage: %s\n", displayFloat(summary.TotalUsage, 1)))
	body.WriteString(fmt.Sprintf("Total cost: %s\n", displayDollars(summary.TotalCost, 2)))
	body.WriteString(fmt.Sprintf("Mean blended rate: %s\n\n", displayDollars(summary.MeanBlendedRate, 4)))

	for _, rec := range records {
		display := DisplayMap(rec)
		body.WriteString(fmt.Sprintf("%s | usage %s | cost %s | rate %s",
			display[dto.FieldBillingPeriod],
			display[dto.FieldTotalUsage],
			display[dto.FieldTotalCost],
			display["blended_rate"],
		))
		if rec.IsAnomaly {
			body.WriteString(" | usage anomaly")
		}
		body.WriteString("\n")
	}
	e.Text = []byte(body.String())

	addr := fmt.Sprintf("%s:%s", s.cfg.SMTPHost, s.cfg.SMTPPort)
	auth := smtp.PlainAuth("", s.cfg.SMTPUser, s.cfg.SMTPPass, s.cfg.SMTPHost)
	if err := e.Send(addr, auth); err != nil {
		s.logger.Errorf("Failed to send summary to %s: %v", to, err)
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Infof("Emailed summary to %s", to)
	return nil
}
