// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GoCMIS Contributors

package cmis

import (
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateTimeLayout is the wire layout of datetime values: seconds resolution
// with an explicit zone offset.
const DateTimeLayout = time.RFC3339

// FormatValue renders v as the canonical literal of property type t.
// Datetimes are truncated to whole seconds.
func FormatValue(t PropertyType, v any) (string, error) {
	if !ValueMatchesType(t, v) {
		return "", fmt.Errorf("value of type %T is not a %s", v, t)
	}
	switch tv := v.(type) {
	case bool:
		if tv {
			return "true", nil
		}
		return "false", nil
	case string:
		return tv, nil
	case *big.Int:
		if tv == nil {
			return "", fmt.Errorf("nil integer")
		}
		return tv.String(), nil
	case decimal.Decimal:
		return tv.String(), nil
	case time.Time:
		return FormatDateTime(tv), nil
	}
	return "", fmt.Errorf("unsupported value type %T", v)
}

// ParseValue parses a literal of property type t.
func ParseValue(t PropertyType, s string) (any, error) {
	switch t {
	case PropertyTypeBoolean:
		return ParseBoolean(s)
	case PropertyTypeID, PropertyTypeString, PropertyTypeHTML, PropertyTypeURI:
		return s, nil
	case PropertyTypeInteger:
		return ParseInteger(s)
	case PropertyTypeDecimal:
		d, err := decimal.NewFromString(strings.TrimSpace(s))
		if err != nil {
			return nil, fmt.Errorf("invalid decimal %q", s)
		}
		return d, nil
	case PropertyTypeDateTime:
		return ParseDateTime(s)
	}
	return nil, fmt.Errorf("unknown property type %q", t)
}

// ParseBoolean accepts the xsd:boolean literals.
func ParseBoolean(s string) (bool, error) {
	switch strings.TrimSpace(s) {
	case "true", "1":
		return true, nil
	case "false", "0":
		return false, nil
	}
	return false, fmt.Errorf("invalid boolean %q", s)
}

// ParseInteger parses an arbitrary-precision decimal integer.
func ParseInteger(s string) (*big.Int, error) {
	v, ok := new(big.Int).SetString(strings.TrimSpace(s), 10)
	if !ok {
		return nil, fmt.Errorf("invalid integer %q", s)
	}
	return v, nil
}

// FormatDateTime renders t with second resolution and its zone offset.
func FormatDateTime(t time.Time) string {
	return TruncateDateTime(t).Format(DateTimeLayout)
}

// ParseDateTime parses an xsd:dateTime literal. Fractional seconds are
// dropped; a literal without zone is taken as UTC.
func ParseDateTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999999"} {
		if t, err := time.Parse(layout, s); err == nil {
			return TruncateDateTime(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid datetime %q", s)
}
