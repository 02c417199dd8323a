// Package jsonutil provides lenient JSON decoding for ingestion payloads.
// Exports scraped from the BASE portal are inconsistent: contract values
// arrive as numbers, plain numeric strings, or formatted money strings.
package jsonutil

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// FlexibleFloat converts a json.RawMessage to a float64, accepting a JSON
// number, a numeric string, or a money string such as "1.234,56 €".
// Returns 0 for null/empty.
func FlexibleFloat(raw json.RawMessage) (float64, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, nil
	}

	// Try number first
	var numVal float64
	if err := json.Unmarshal(raw, &numVal); err == nil {
		return numVal, nil
	}

	// Fall back to string forms
	var strVal string
	if err := json.Unmarshal(raw, &strVal); err != nil {
		return 0, fmt.Errorf("value is neither number nor string: %s", string(raw))
	}

	return ParseMoney(strVal)
}

// ParseMoney parses a money string in either plain ("1234.56") or
// Portuguese ("1.234,56 €") notation. Returns 0 for empty input.
func ParseMoney(s string) (float64, error) {
	cleaned := strings.TrimSpace(s)
	cleaned = strings.TrimSuffix(cleaned, "€")
	cleaned = strings.TrimSuffix(cleaned, "EUR")
	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" {
		return 0, nil
	}

	// "1.234,56" uses dot as thousands separator and comma as decimal mark.
	if strings.Contains(cleaned, ",") {
		cleaned = strings.ReplaceAll(cleaned, ".", "")
		cleaned = strings.ReplaceAll(cleaned, ",", ".")
	}

	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse money value %q: %w", s, err)
	}
	return v, nil
}

// FlexibleString converts a json.RawMessage to a string, handling payloads
// where a field arrives as a number or boolean instead of a string.
// Returns empty string for null/empty.
func FlexibleString(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}

	var strVal string
	if err := json.Unmarshal(raw, &strVal); err == nil {
		return strVal
	}

	var numVal float64
	if err := json.Unmarshal(raw, &numVal); err == nil {
		if numVal == float64(int64(numVal)) {
			return fmt.Sprintf("%d", int64(numVal))
		}
		return fmt.Sprintf("%g", numVal)
	}

	var boolVal bool
	if err := json.Unmarshal(raw, &boolVal); err == nil {
		return fmt.Sprintf("%t", boolVal)
	}

	return string(raw)
}
