package utils

import (
	"math"
	"sort"

	"github.com/skohli21/utility-bill-analyzer/dto"
)

// BillCollection accumulates the bills of one session, ordered by billing
// period end ascending. Insertion order is irrelevant: the order and all
// derived fields (blended rate, anomaly flags) are recomputed on every
// mutation. The collection is owned by its caller and is not safe for
// concurrent writers.
type BillCollection struct {
	records []dto.BillRecord
}

func NewBillCollection() *BillCollection {
	return &BillCollection{}
}

func (c *BillCollection) Len() int {
	return len(c.records)
}

// Insert adds a single record and re-aggregates.
func (c *BillCollection) Insert(rec dto.BillRecord) {
	c.records = append(c.records, rec)
	c.recompute()
}

// InsertAll adds a batch of records in one atomic aggregation pass, so
// derived fields are never computed against a partially merged collection.
func (c *BillCollection) InsertAll(recs []dto.BillRecord) {
	if len(recs) == 0 {
		return
	}
	c.records = append(c.records, recs...)
	c.recompute()
}

// Records returns the collection in sorted order. The slice is a copy;
// mutating it does not affect the collection.
func (c *BillCollection) Records() []dto.BillRecord {
	out := make([]dto.BillRecord, len(c.records))
	copy(out, c.records)
	return out
}

func (c *BillCollection) recompute() {
	// Stable, so records without an end date keep their relative order at
	// the tail.
	sort.SliceStable(c.records, func(i, j int) bool {
		ei, ej := c.records[i].BillingPeriodEnd, c.records[j].BillingPeriodEnd
		if ei == nil {
			return false
		}
		if ej == nil {
			return true
		}
		return ei.Before(*ej)
	})

	for i := range c.records {
		c.records[i].BlendedRate = BlendedRate(c.records[i])
	}

	c.flagAnomalies()
}

// BlendedRate returns cost per usage unit for one record, or nil when usage
// is absent or zero. Division by zero can never escape here.
func BlendedRate(rec dto.BillRecord) *float64 {
	if rec.TotalUsage == nil || rec.TotalCost == nil || *rec.TotalUsage <= 0 {
		return nil
	}
	r := *rec.TotalCost / *rec.TotalUsage
	return &r
}

// flagAnomalies marks records whose usage deviates from the mean of the
// remaining records by more than two population standard deviations. The
// record under test is excluded from its own baseline: with it included the
// attainable deviation is capped at sqrt(n-1) standard deviations, so small
// collections could never flag anything. At least two peer records with
// usage are required; below that every flag is false.
func (c *BillCollection) flagAnomalies() {
	for i := range c.records {
		c.records[i].IsAnomaly = false
	}

	var withUsage []int
	for i := range c.records {
		if c.records[i].TotalUsage != nil {
			withUsage = append(withUsage, i)
		}
	}
	if len(withUsage) < 3 {
		return
	}

	for _, i := range withUsage {
		u := *c.records[i].TotalUsage

		var sum float64
		for _, j := range withUsage {
			if j != i {
				sum += *c.records[j].TotalUsage
			}
		}
		n := float64(len(withUsage) - 1)
		mean := sum / n

		var varsum float64
		for _, j := range withUsage {
			if j != i {
				d := *c.records[j].TotalUsage - mean
				varsum += d * d
			}
		}
		stddev := math.Sqrt(varsum / n)

		c.records[i].IsAnomaly = math.Abs(u-mean) > 2*stddev
	}
}

// Summary computes cross-record statistics. A record missing a field is
// excluded from that statistic's sample only; it never poisons the whole
// aggregate. Peaks break ties toward the earliest billing period end.
func (c *BillCollection) Summary() dto.SummaryStats {
	s := dto.SummaryStats{RecordCount: len(c.records)}

	var usageSum, costSum, rateSum float64
	var usageN, costN, rateN int
	var dailyUsageSum float64
	var daySum int

	for _, r := range c.records {
		if r.TotalUsage != nil {
			usageSum += *r.TotalUsage
			usageN++
		}
		if r.TotalCost != nil {
			costSum += *r.TotalCost
			costN++
		}
		if br := BlendedRate(r); br != nil {
			rateSum += *br
			rateN++
		}
		if r.TotalUsage != nil && r.BillingDays != nil && *r.BillingDays > 0 {
			dailyUsageSum += *r.TotalUsage
			daySum += *r.BillingDays
		}
	}

	if usageN > 0 {
		s.TotalUsage = &usageSum
	}
	if costN > 0 {
		s.TotalCost = &costSum
	}
	if rateN > 0 {
		mean := rateSum / float64(rateN)
		s.MeanBlendedRate = &mean
	}
	if daySum > 0 {
		avg := dailyUsageSum / float64(daySum)
		s.AvgDailyUsage = &avg
	}

	// The records are already sorted ascending by end date with absent
	// ends last, so a strict comparison keeps the earliest tie.
	for _, r := range c.records {
		if r.TotalUsage != nil && (s.PeakUsage == nil || *r.TotalUsage > *s.PeakUsage.TotalUsage) {
			cp := r
			s.PeakUsage = &cp
		}
		if r.TotalCost != nil && (s.PeakCost == nil || *r.TotalCost > *s.PeakCost.TotalCost) {
			cp := r
			s.PeakCost = &cp
		}
	}

	return s
}
