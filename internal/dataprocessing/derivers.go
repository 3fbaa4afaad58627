package dataprocessing

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"nabii/internal/config"
	"nabii/pkg/contracts/domain"
)

var (
	numeralPattern = regexp.MustCompile(`\d+(?:\.\d+)?|\.\d+`)
	sdgPattern     = regexp.MustCompile(`SDG\s*(\d+)`)
)

// ParseTicketSize extracts the first decimal numeral of a ticket text as USD
// millions. Units are not converted. It reports false for empty text, a
// disclosure placeholder or text without a numeral.
func ParseTicketSize(text string) (float64, bool) {
	if strings.TrimSpace(text) == "" || config.IsDisclosurePlaceholder(text) {
		return 0, false
	}

	match := numeralPattern.FindString(text)
	if match == "" {
		return 0, false
	}

	value, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0, false
	}
	return value, true
}

// IsDisclosed reports whether a ticket text carries an amount. Empty text and
// disclosure placeholders do not.
func IsDisclosed(text string) bool {
	return strings.TrimSpace(text) != "" && !config.IsDisclosurePlaceholder(text)
}

// ExtractSDGs returns every goal number tagged as "SDG <n>" in order of
// appearance, duplicates included. The result is never nil.
func ExtractSDGs(text string) []int {
	tags := []int{}
	for _, m := range sdgPattern.FindAllStringSubmatch(text, -1) {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		tags = append(tags, n)
	}
	return tags
}

// ClassifyCapitalSource compares the investor country with the home country.
// The match is exact: "Zambia " is not "Zambia".
func ClassifyCapitalSource(country, homeCountry string) domain.CapitalSource {
	switch {
	case country == "":
		return domain.CapitalSourceUnknown
	case country == homeCountry:
		return domain.CapitalSourceDomestic
	default:
		return domain.CapitalSourceInternational
	}
}

// NormalizeSector keeps a mapped sector, otherwise derives one from the raw
// sector through the fixed mapping, falling back to the catch-all category.
func NormalizeSector(mapped, raw string) string {
	if mapped = strings.TrimSpace(mapped); mapped != "" {
		return mapped
	}
	if sector, ok := config.MapSector(strings.TrimSpace(raw)); ok {
		return sector
	}
	return config.CatchAllSector
}

// parseAmount reads a plain numeric cell, tolerating thousands separators
func parseAmount(text string) (float64, bool) {
	text = strings.ReplaceAll(strings.TrimSpace(text), ",", "")
	if text == "" {
		return 0, false
	}
	value, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsInf(value, 0) || math.IsNaN(value) {
		return 0, false
	}
	return value, true
}

// parseFlag reads a boolean cell. Anything unrecognised is false.
func parseFlag(text string) bool {
	text = strings.TrimSpace(text)
	if b, err := strconv.ParseBool(text); err == nil {
		return b
	}
	switch strings.ToLower(text) {
	case "yes", "y":
		return true
	}
	return false
}

// parseYear reads a year cell, returning 0 when it is empty or not numeric
func parseYear(text string) int {
	value, ok := parseAmount(text)
	if !ok || value <= 0 {
		return 0
	}
	return int(value)
}
