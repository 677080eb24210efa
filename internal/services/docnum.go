package services

import (
	"fmt"
	"strconv"
	"strings"
)

// Document numbers are generated, never parsed back for business meaning.
// Purchases use SF<yyyymmdd><nnn>, sales ST<yyyymmdd><nnn>, dispatch notes
// IR-<yyyy>-<nnnn>. The sequence restarts whenever the prefix changes.

// movementDocPrefix builds the date-scoped prefix for purchase/sale numbers
// from an ISO date, e.g. ("SF", "2026-08-31") -> "SF20260831".
func movementDocPrefix(kind, isoDate string) string {
	return kind + strings.ReplaceAll(isoDate, "-", "")
}

// dispatchDocPrefix builds the year-scoped dispatch prefix, e.g. "IR-2026-".
func dispatchDocPrefix(year int) string {
	return fmt.Sprintf("IR-%04d-", year)
}

// nextInSequence increments the numeric tail of the last generated number.
// A last value that is empty or does not carry the prefix restarts at 1.
func nextInSequence(prefix, last string, width int) string {
	seq := 1
	if strings.HasPrefix(last, prefix) {
		if n, err := strconv.Atoi(last[len(prefix):]); err == nil {
			seq = n + 1
		}
	}
	return fmt.Sprintf("%s%0*d", prefix, width, seq)
}
