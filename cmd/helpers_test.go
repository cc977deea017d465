package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yanggf8/travel-2026/internal/config"
	"github.com/yanggf8/travel-2026/internal/schema"
)

func TestParseExtras(t *testing.T) {
	extras, err := parseExtras([]string{"date=2026-03-15", "pax=2"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"date": "2026-03-15", "pax": "2"}, extras)

	extras, err = parseExtras(nil)
	require.NoError(t, err)
	assert.Nil(t, extras)

	_, err = parseExtras([]string{"no-equals"})
	assert.Error(t, err)

	_, err = parseExtras([]string{"=value"})
	assert.Error(t, err)
}

func TestReadURLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "urls.txt")
	content := `
# Tokyo packages
https://www.besttour.com.tw/e_web/eyJourney.aspx?prod=TYO05

https://travel.liontravel.com/detail?NormGroupID=abc
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	urls, err := readURLFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"https://www.besttour.com.tw/e_web/eyJourney.aspx?prod=TYO05",
		"https://travel.liontravel.com/detail?NormGroupID=abc",
	}, urls)

	_, err = readURLFile(filepath.Join(dir, "missing.txt"))
	assert.Error(t, err)
}

func TestAttachValidation(t *testing.T) {
	prev := cfg
	defer func() { cfg = prev }()
	cfg = &config.Config{}
	cfg.Validation.MinPerPerson = 10000
	cfg.Validation.MinDatePrice = 1000

	result := schema.NewResult("besttour", "https://www.besttour.com.tw/x")
	result.Warnings = append(result.Warnings, "transport tab not found")
	result.Price.PerPerson = schema.Int(8800)

	attachValidation(result)

	// Earlier scrape warnings survive; validation appends after them.
	assert.Equal(t, "transport tab not found", result.Warnings[0])
	assert.Contains(t, result.Warnings, "Price suspiciously low: 8800")
	assert.Contains(t, result.Warnings, "No flight data extracted")
	assert.Contains(t, result.Warnings, "No hotel data extracted")
	assert.Contains(t, result.Warnings, "Missing page title")
}
