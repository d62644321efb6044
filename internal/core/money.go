// Package core provides the bookkeeping domain types and money handling.
//
// Amounts are held as int64 paise so that ledger sums stay exact; conversion
// to a two-decimal display string happens only at the presentation edge.
package core

import (
	"strconv"
	"strings"
	"unicode"
)

// ParseDecimalToPaise converts a decimal string to paise with half-up
// rounding on the third decimal place. Both dot (12.34) and comma (12,34)
// separators are accepted. Zero is a valid amount; negatives are not.
//
// Examples:
//
//	ParseDecimalToPaise("12.34")  -> 1234, nil
//	ParseDecimalToPaise("12,34")  -> 1234, nil
//	ParseDecimalToPaise("12.346") -> 1235, nil (rounds up)
//	ParseDecimalToPaise("0")      -> 0, nil
func ParseDecimalToPaise(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	// Normalize decimal comma to dot, drop grouping commas first
	if strings.Count(s, ",") == 1 && !strings.Contains(s, ".") {
		s = strings.ReplaceAll(s, ",", ".")
	} else {
		s = strings.ReplaceAll(s, ",", "")
	}
	if strings.HasPrefix(s, "-") {
		return 0, ErrNegativeAmount
	}
	s = strings.TrimPrefix(s, "+")
	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return 0, ErrInvalidAmount
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" {
		intPart = "0"
	}
	for _, r := range intPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}
	for _, r := range fracPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}
	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	const maxSafeInt64 = (1<<63 - 1) / 100
	if iv > maxSafeInt64 {
		return 0, ErrInvalidAmount
	}
	// First two fractional digits, half-up on the third
	var fracPaise int64
	if len(fracPart) > 0 {
		fracPaise = int64(fracPart[0]-'0') * 10
		if len(fracPart) > 1 {
			fracPaise += int64(fracPart[1] - '0')
			if len(fracPart) > 2 && fracPart[2] >= '5' {
				fracPaise++
			}
		}
	}
	return iv*100 + fracPaise, nil
}

// CoercePaise parses a stored amount field leniently: anything that fails to
// parse, including negatives, coerces to 0 paise. Used only when loading rows
// from the record store, never at the input boundary.
func CoercePaise(s string) int64 {
	v, err := ParseDecimalToPaise(s)
	if err != nil {
		return 0
	}
	return v
}

// Plain formats the amount as a plain two-decimal string with no grouping,
// suitable for CSV export and store rows.
func (m Money) Plain() string {
	paise := m.Paise
	neg := paise < 0
	if neg {
		paise = -paise
	}
	s := strconv.FormatInt(paise/100, 10) + "." + pad2(paise%100)
	if neg {
		return "-" + s
	}
	return s
}

// Display formats the amount with comma thousands grouping and two decimals,
// e.g. 150000 paise -> "1,500.00". Used on documents and UI.
func (m Money) Display() string {
	paise := m.Paise
	neg := paise < 0
	if neg {
		paise = -paise
	}
	whole := strconv.FormatInt(paise/100, 10)
	var grouped []byte
	for i, c := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			grouped = append(grouped, ',')
		}
		grouped = append(grouped, byte(c))
	}
	s := string(grouped) + "." + pad2(paise%100)
	if neg {
		return "-" + s
	}
	return s
}

func pad2(n int64) string {
	if n < 10 {
		return "0" + strconv.FormatInt(n, 10)
	}
	return strconv.FormatInt(n, 10)
}

// Add returns the sum of two amounts.
func (m Money) Add(o Money) Money {
	return Money{Paise: m.Paise + o.Paise}
}

// Sub returns the difference of two amounts.
func (m Money) Sub(o Money) Money {
	return Money{Paise: m.Paise - o.Paise}
}
