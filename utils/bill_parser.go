package utils

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/skohli21/utility-bill-analyzer/config"
	"github.com/skohli21/utility-bill-analyzer/dto"
)

// BillParser turns normalized bill text into a BillRecord using the pattern
// table of one bill-format profile. Extraction is a pure function of the
// input text, so one parser can serve concurrent documents.
type BillParser struct {
	profile string
	rules   []compiledRule
}

type compiledRule struct {
	field    string
	patterns []*regexp.Regexp
}

type rawCapture struct {
	value string
	unit  string
}

// NewBillParser compiles the profile's pattern table.
func NewBillParser(profile config.BillProfile) (*BillParser, error) {
	p := &BillParser{profile: profile.Name}
	for _, rule := range profile.Rules {
		cr := compiledRule{field: rule.Field}
		for _, pattern := range rule.Patterns {
			re, err := regexp.Compile(pattern)
			if err != nil {
				return nil, fmt.Errorf("profile %q, field %q: %w", profile.Name, rule.Field, err)
			}
			cr.patterns = append(cr.patterns, re)
		}
		p.rules = append(p.rules, cr)
	}
	return p, nil
}

// Profile returns the name of the profile this parser was built from.
func (p *BillParser) Profile() string {
	return p.profile
}

// Parse extracts and coerces all profile fields from raw bill text. Fields
// whose pattern does not match, or whose capture fails coercion, come back
// absent; Parse itself never fails.
func (p *BillParser) Parse(text string) dto.BillRecord {
	text = NormalizeText(text)
	captures := p.extract(text)

	rec := dto.BillRecord{
		CostBreakdown: make(map[string]*float64),
	}

	for _, rule := range p.rules {
		capture, ok := captures[rule.field]
		if !ok {
			continue
		}
		switch rule.field {
		case dto.FieldAccountNumber:
			rec.AccountNumber = strings.TrimSpace(capture.value)
		case dto.FieldServiceAddress:
			rec.ServiceAddress = strings.TrimSpace(capture.value)
		case dto.FieldTotalUsage:
			if v := parseDecimal(capture.value); v != nil {
				rec.TotalUsage = v
				rec.UsageUnit = canonicalUnit(capture.unit)
			}
		case dto.FieldTotalCost:
			rec.TotalCost = parseDecimal(capture.value)
		case dto.FieldBillingPeriod:
			coercePeriod(&rec, capture.value)
		case dto.FieldDueDate:
			rec.DueDateRaw = strings.TrimSpace(capture.value)
			rec.DueDate = parseDateToken(rec.DueDateRaw)
		default:
			// Any remaining rule is a cost-breakdown category.
			rec.CostBreakdown[rule.field] = parseDecimal(capture.value)
		}
	}

	return rec
}

// extract applies the pattern table, first-match-wins per field.
func (p *BillParser) extract(text string) map[string]rawCapture {
	captures := make(map[string]rawCapture)
	for _, rule := range p.rules {
		for _, re := range rule.patterns {
			m := re.FindStringSubmatch(text)
			if m == nil {
				continue
			}
			var capture rawCapture
			for i, name := range re.SubexpNames() {
				if i >= len(m) {
					break
				}
				switch name {
				case "value":
					capture.value = m[i]
				case "unit":
					capture.unit = m[i]
				}
			}
			if capture.value != "" {
				captures[rule.field] = capture
				break
			}
		}
	}
	return captures
}

var (
	dateTokenRe = regexp.MustCompile(`\d{1,2}/\d{1,2}/\d{4}`)
	dateLayouts = []string{"01/02/2006", "1/2/2006"}
)

// parseDecimal coerces a numeric capture, stripping a leading dollar sign
// and thousands separators first. Negative or unparseable values come back
// absent rather than zero.
func parseDecimal(s string) *float64 {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSuffix(s, ".")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 {
		return nil
	}
	return &v
}

// parseDate coerces an exact MM/DD/YYYY (or M/D/YYYY) string.
func parseDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

// parseDateToken finds the first MM/DD/YYYY token inside free text, e.g.
// a due date written as "Please pay by 05/15/2023".
func parseDateToken(s string) *time.Time {
	tok := dateTokenRe.FindString(s)
	if tok == "" {
		return nil
	}
	return parseDate(tok)
}

// coercePeriod fills the billing-period fields from the raw range capture.
// The raw string is always retained for display. If either end of the range
// fails to parse the derived dates stay absent. Billing days are counted
// with the end date inclusive.
func coercePeriod(rec *dto.BillRecord, raw string) {
	rec.BillingPeriodRaw = strings.TrimSpace(raw)

	left, right, ok := splitPeriod(rec.BillingPeriodRaw)
	if !ok {
		return
	}
	start := parseDate(left)
	end := parseDate(right)
	if start == nil || end == nil {
		return
	}
	rec.BillingPeriodStart = start
	rec.BillingPeriodEnd = end

	if end.Before(*start) {
		rec.Warnings = append(rec.Warnings, "billing period end precedes start")
		return
	}
	days := int(end.Sub(*start).Hours()/24) + 1
	rec.BillingDays = &days
}

// splitPeriod splits a billing-period string into its two date sides. Two
// explicit date tokens win outright, which also resolves ranges written as
// "MM/DD/YYYY-MM/DD/YYYY" where the joining dash sits between digits.
// Otherwise the first textual separator is used.
func splitPeriod(raw string) (string, string, bool) {
	if toks := dateTokenRe.FindAllString(raw, 2); len(toks) == 2 {
		return toks[0], toks[1], true
	}

	lower := strings.ToLower(raw)
	for _, sep := range []string{" - ", " to ", " through "} {
		if i := strings.Index(lower, sep); i >= 0 {
			return strings.TrimSpace(raw[:i]), strings.TrimSpace(raw[i+len(sep):]), true
		}
	}

	// Last resort: the first dash not sandwiched between digits.
	for i := 0; i < len(raw); i++ {
		if raw[i] != '-' {
			continue
		}
		prevDigit := i > 0 && raw[i-1] >= '0' && raw[i-1] <= '9'
		nextDigit := i+1 < len(raw) && raw[i+1] >= '0' && raw[i+1] <= '9'
		if prevDigit && nextDigit {
			continue
		}
		return strings.TrimSpace(raw[:i]), strings.TrimSpace(raw[i+1:]), true
	}
	return "", "", false
}

// canonicalUnit maps unit tokens onto their canonical casing. Unrecognized
// tokens pass through verbatim.
func canonicalUnit(u string) string {
	switch strings.ToLower(strings.TrimSpace(u)) {
	case "kwh":
		return dto.UnitKWh
	case "ccf":
		return dto.UnitCCF
	default:
		return strings.TrimSpace(u)
	}
}
