// Package core holds the domain types shared by the question analyzer and
// the ledger client, plus money and text canonicalization helpers.
package core

import (
	"fmt"
	"strconv"
	"strings"
)

// CentsFromDecimal converts a decimal amount (as the ledger API returns it)
// to centavos with half-up rounding.
func CentsFromDecimal(v float64) int64 {
	if v < 0 {
		return -int64(-v*100.0 + 0.5)
	}
	return int64(v*100.0 + 0.5)
}

// FormatBRL renders the amount as Brazilian currency with a thousands
// separator and two decimals, e.g. "R$ 1.234,56".
func (m Money) FormatBRL() string {
	cents := m.Cents
	neg := cents < 0
	if neg {
		cents = -cents
	}
	whole := strconv.FormatInt(cents/100, 10)

	var b strings.Builder
	lead := len(whole) % 3
	if lead > 0 {
		b.WriteString(whole[:lead])
	}
	for i := lead; i < len(whole); i += 3 {
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(whole[i : i+3])
	}

	s := fmt.Sprintf("R$ %s,%02d", b.String(), cents%100)
	if neg {
		return "-" + s
	}
	return s
}
