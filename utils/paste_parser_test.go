package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skohli21/utility-bill-analyzer/dto"
)

func TestParsePastedRow(t *testing.T) {
	res, err := ParsePastedRows("4/10/2023,5/9/2023,29,672490,134973,0.2007")
	require.NoError(t, err)
	require.Len(t, res.Records, 1)
	assert.Empty(t, res.Warnings)

	rec := res.Records[0]
	require.NotNil(t, rec.BillingPeriodStart)
	assert.Equal(t, time.Date(2023, time.April, 10, 0, 0, 0, 0, time.UTC), *rec.BillingPeriodStart)
	require.NotNil(t, rec.BillingPeriodEnd)
	assert.Equal(t, time.Date(2023, time.May, 9, 0, 0, 0, 0, time.UTC), *rec.BillingPeriodEnd)
	require.NotNil(t, rec.BillingDays)
	assert.Equal(t, 29, *rec.BillingDays)
	require.NotNil(t, rec.TotalUsage)
	assert.Equal(t, 672490.0, *rec.TotalUsage)
	require.NotNil(t, rec.TotalCost)
	assert.Equal(t, 134973.0, *rec.TotalCost)

	// Aggregation recomputes the rate from usage and cost.
	c := NewBillCollection()
	c.Insert(rec)
	got := c.Records()[0]
	require.NotNil(t, got.BlendedRate)
	assert.InDelta(t, 0.2007, *got.BlendedRate, 0.0001)
}

func TestParsePastedRowsTabSeparated(t *testing.T) {
	input := "4/10/2023\t5/9/2023\t29\t672490\t134973\t0.2007\n" +
		"5/10/2023\t6/8/2023\t30\t701222\t140100\t0.1998"

	res, err := ParsePastedRows(input)
	require.NoError(t, err)
	assert.Len(t, res.Records, 2)
	assert.Empty(t, res.Warnings)
}

func TestParsePastedShortRowSkippedWithWarning(t *testing.T) {
	input := "4/10/2023,5/9/2023,29,672490,134973,0.2007\n" +
		"5/10/2023,6/8/2023,30,701222\n" +
		"6/9/2023,7/8/2023,30,688000,139500,0.2028"

	res, err := ParsePastedRows(input)
	require.NoError(t, err)
	assert.Len(t, res.Records, 2)

	require.Len(t, res.Warnings, 1)
	assert.Equal(t, 2, res.Warnings[0].Row)
	assert.Contains(t, res.Warnings[0].Reason, "expected 6 columns")
}

func TestParsePastedBlankLinesIgnored(t *testing.T) {
	input := "\n4/10/2023,5/9/2023,29,672490,134973,0.2007\n\n"

	res, err := ParsePastedRows(input)
	require.NoError(t, err)
	assert.Len(t, res.Records, 1)
	assert.Empty(t, res.Warnings)
}

func TestParsePastedNoUsableRows(t *testing.T) {
	_, err := ParsePastedRows("just,three,columns\nand,two\n")
	assert.ErrorIs(t, err, dto.ErrNoUsableRows)

	_, err = ParsePastedRows("")
	assert.ErrorIs(t, err, dto.ErrNoUsableRows)
}

func TestParsePastedMalformedFieldsBecomeAbsent(t *testing.T) {
	res, err := ParsePastedRows("nodate,5/9/2023,xx,672490,-5,0.2")
	require.NoError(t, err)
	require.Len(t, res.Records, 1)

	rec := res.Records[0]
	assert.Nil(t, rec.BillingPeriodStart)
	require.NotNil(t, rec.BillingPeriodEnd)
	assert.Nil(t, rec.BillingDays)
	require.NotNil(t, rec.TotalUsage)
	assert.Nil(t, rec.TotalCost)
}
