package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultProfiles(t *testing.T) {
	profiles := DefaultProfiles()

	electric, ok := FindProfile(profiles, "electric")
	require.True(t, ok)
	assert.NotEmpty(t, electric.Rules)

	_, ok = FindProfile(profiles, "gas")
	assert.True(t, ok)

	_, ok = FindProfile(profiles, "water")
	assert.False(t, ok)
}

func TestLoadProfilesMissingFileFallsBack(t *testing.T) {
	profiles, err := LoadProfiles(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Len(t, profiles, len(DefaultProfiles()))
}

func TestLoadProfilesMergesAndOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profiles.yaml")
	data := `profiles:
  - name: electric
    rules:
      - field: total_cost
        patterns:
          - '(?i)amount\s*payable\s*\$?(?P<value>[\d,.]+)'
  - name: water
    rules:
      - field: total_usage
        patterns:
          - '(?i)gallons\s*used\s*(?P<value>[\d,.]+)\s*(?P<unit>gal)'
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0600))

	profiles, err := LoadProfiles(path)
	require.NoError(t, err)

	electric, ok := FindProfile(profiles, "electric")
	require.True(t, ok)
	require.Len(t, electric.Rules, 1)
	assert.Equal(t, "total_cost", electric.Rules[0].Field)

	_, ok = FindProfile(profiles, "water")
	assert.True(t, ok)
}
