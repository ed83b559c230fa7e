package service

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/skohli21/utility-bill-analyzer/dto"
)

func TestDisplayMapSubstitutesAbsentSentinel(t *testing.T) {
	display := DisplayMap(dto.BillRecord{})

	assert.Equal(t, AbsentLabel, display[dto.FieldAccountNumber])
	assert.Equal(t, AbsentLabel, display[dto.FieldTotalUsage])
	assert.Equal(t, AbsentLabel, display[dto.FieldTotalCost])
	assert.Equal(t, AbsentLabel, display[dto.FieldBillingPeriod])
	assert.Equal(t, AbsentLabel, display[dto.FieldDueDate])
	assert.Equal(t, AbsentLabel, display["blended_rate"])
	assert.Equal(t, AbsentLabel, display[dto.FieldEnergyCharge])
}

func TestDisplayMapFormatsValues(t *testing.T) {
	usage := 1234.5
	cost := 156.78
	rate := 0.127
	due := time.Date(2023, time.May, 25, 0, 0, 0, 0, time.UTC)

	display := DisplayMap(dto.BillRecord{
		AccountNumber:    "ACCT-1",
		TotalUsage:       &usage,
		UsageUnit:        dto.UnitKWh,
		TotalCost:        &cost,
		BlendedRate:      &rate,
		DueDate:          &due,
		BillingPeriodRaw: "04/10/2023 - 05/09/2023",
	})

	assert.Equal(t, "ACCT-1", display[dto.FieldAccountNumber])
	assert.Equal(t, "1,234.5 kWh", display[dto.FieldTotalUsage])
	assert.Equal(t, "$156.78", display[dto.FieldTotalCost])
	assert.Equal(t, "$0.127", display["blended_rate"])
	assert.Equal(t, "05/25/2023", display[dto.FieldDueDate])
	assert.Equal(t, "04/10/2023 - 05/09/2023", display[dto.FieldBillingPeriod])
}

func TestBuildWorkbook(t *testing.T) {
	usage := 500.0
	cost := 100.0
	rec := dto.BillRecord{TotalUsage: &usage, UsageUnit: dto.UnitKWh, TotalCost: &cost}

	c := dto.SummaryStats{RecordCount: 1, TotalUsage: &usage, TotalCost: &cost}
	svc := NewReportService(testConfig(), testLogger())

	data, err := svc.BuildWorkbook([]dto.BillRecord{rec}, c)
	require.NoError(t, err)
	require.NotEmpty(t, data)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	header, err := f.GetCellValue("Bills", "A1")
	require.NoError(t, err)
	assert.Equal(t, "Account Number", header)

	firstCell, err := f.GetCellValue("Bills", "A2")
	require.NoError(t, err)
	assert.Equal(t, AbsentLabel, firstCell)
}

func TestEmailSummaryRequiresConfiguration(t *testing.T) {
	svc := NewReportService(testConfig(), testLogger())

	err := svc.EmailSummary("user@example.com", nil, dto.SummaryStats{})
	assert.Error(t, err)
}
