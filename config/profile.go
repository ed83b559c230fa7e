package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// FieldRule maps one field name to an ordered list of extraction patterns.
// Patterns capture the raw value via the named group `value` and, for usage
// figures, the unit token via the named group `unit`. Within a field the
// first pattern that matches wins; within a pattern only the first
// occurrence in the text is taken.
type FieldRule struct {
	Field    string   `yaml:"field"`
	Patterns []string `yaml:"patterns"`
}

// BillProfile is the declarative pattern table for one bill format. Electric
// and gas profiles ship built in; more can be loaded from a YAML file so a
// new format never requires touching extractor control flow.
type BillProfile struct {
	Name  string      `yaml:"name"`
	Rules []FieldRule `yaml:"rules"`
}

type profileFile struct {
	Profiles []BillProfile `yaml:"profiles"`
}

const (
	decimal     = `[\d,]+(?:\.\d+)?`
	labelBridge = `\s*[:\-]?\s*`
)

// DefaultProfiles returns the built-in electric and gas pattern tables.
func DefaultProfiles() []BillProfile {
	electric := BillProfile{
		Name: "electric",
		Rules: []FieldRule{
			{
				Field: "account_number",
				Patterns: []string{
					`(?i)account\s*(?:number|no\.?|#)` + labelBridge + `(?P<value>[A-Za-z0-9][A-Za-z0-9\-]*)`,
				},
			},
			{
				Field: "service_address",
				Patterns: []string{
					`(?i)(?:service\s*address|address)` + labelBridge + `(?P<value>[A-Za-z0-9][^\n]*?)(?:\s{2,}|\r?\n|$)`,
				},
			},
			{
				Field: "total_usage",
				Patterns: []string{
					`(?i)total\s*(?:usage|consumption|quantity)` + labelBridge + `(?P<value>` + decimal + `)\s*(?P<unit>[A-Za-z]+)`,
					`(?i)billed\s*(?P<unit>kWh)` + labelBridge + `(?P<value>` + decimal + `)`,
				},
			},
			{
				Field: "total_cost",
				Patterns: []string{
					`(?i)total\s*(?:amount\s*due|amount|cost|due)` + labelBridge + `\$?\s*(?P<value>` + decimal + `)`,
				},
			},
			{
				Field: "billing_period",
				Patterns: []string{
					`(?i)(?:billing\s*period|period)` + labelBridge + `(?P<value>[0-9A-Za-z][0-9A-Za-z /,\-]*)`,
				},
			},
			{
				Field: "due_date",
				Patterns: []string{
					`(?i)(?:due\s*date|payment\s*due)` + labelBridge + `(?P<value>[0-9A-Za-z][0-9A-Za-z /,]*)`,
				},
			},
			{
				Field: "energy_charge",
				Patterns: []string{
					`(?i)energy\s*charge` + labelBridge + `\$?\s*(?P<value>` + decimal + `)`,
				},
			},
			{
				Field: "taxes",
				Patterns: []string{
					`(?i)tax(?:es)?` + labelBridge + `\$?\s*(?P<value>` + decimal + `)`,
				},
			},
			{
				Field: "fees",
				Patterns: []string{
					`(?i)fees?` + labelBridge + `\$?\s*(?P<value>` + decimal + `)`,
				},
			},
		},
	}

	gas := BillProfile{
		Name: "gas",
		Rules: []FieldRule{
			{
				Field: "account_number",
				Patterns: []string{
					`(?i)account\s*(?:number|no\.?|#)` + labelBridge + `(?P<value>[A-Za-z0-9][A-Za-z0-9\-]*)`,
				},
			},
			{
				Field: "service_address",
				Patterns: []string{
					`(?i)(?:service\s*address|address)` + labelBridge + `(?P<value>[A-Za-z0-9][^\n]*?)(?:\s{2,}|\r?\n|$)`,
				},
			},
			{
				Field: "total_usage",
				Patterns: []string{
					`(?i)total\s*(?:gas\s*)?(?:usage|consumption|quantity)` + labelBridge + `(?P<value>` + decimal + `)\s*(?P<unit>[A-Za-z]+)`,
					`(?i)billed\s*(?P<unit>CCF)` + labelBridge + `(?P<value>` + decimal + `)`,
				},
			},
			{
				Field: "total_cost",
				Patterns: []string{
					`(?i)total\s*(?:amount\s*due|amount|cost|due)` + labelBridge + `\$?\s*(?P<value>` + decimal + `)`,
				},
			},
			{
				Field: "billing_period",
				Patterns: []string{
					`(?i)(?:billing\s*period|period)` + labelBridge + `(?P<value>[0-9A-Za-z][0-9A-Za-z /,\-]*)`,
				},
			},
			{
				Field: "due_date",
				Patterns: []string{
					`(?i)(?:due\s*date|payment\s*due)` + labelBridge + `(?P<value>[0-9A-Za-z][0-9A-Za-z /,]*)`,
				},
			},
			{
				Field: "energy_charge",
				Patterns: []string{
					`(?i)(?:gas\s*supply|delivery|energy)\s*charge` + labelBridge + `\$?\s*(?P<value>` + decimal + `)`,
				},
			},
			{
				Field: "taxes",
				Patterns: []string{
					`(?i)tax(?:es)?` + labelBridge + `\$?\s*(?P<value>` + decimal + `)`,
				},
			},
			{
				Field: "fees",
				Patterns: []string{
					`(?i)fees?` + labelBridge + `\$?\s*(?P<value>` + decimal + `)`,
				},
			},
		},
	}

	return []BillProfile{electric, gas}
}

// LoadProfiles returns the built-in profiles merged with any defined in the
// YAML file at path. A missing file is not an error; a file-defined profile
// with the same name overrides the built-in one.
func LoadProfiles(path string) ([]BillProfile, error) {
	profiles := DefaultProfiles()
	if path == "" {
		return profiles, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return profiles, nil
		}
		return nil, fmt.Errorf("reading profile file: %w", err)
	}

	var pf profileFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return nil, fmt.Errorf("parsing profile file: %w", err)
	}

	for _, p := range pf.Profiles {
		replaced := false
		for i := range profiles {
			if profiles[i].Name == p.Name {
				profiles[i] = p
				replaced = true
				break
			}
		}
		if !replaced {
			profiles = append(profiles, p)
		}
	}
	return profiles, nil
}

// FindProfile looks up a profile by name.
func FindProfile(profiles []BillProfile, name string) (BillProfile, bool) {
	for _, p := range profiles {
		if p.Name == name {
			return p, true
		}
	}
	return BillProfile{}, false
}
