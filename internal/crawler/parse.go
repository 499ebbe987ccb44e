package crawler

import (
	"regexp"
	"strconv"
	"strings"
)

// The court API serves every numeric and date field as a string. These
// helpers fail closed: bad input yields the default instead of an error
// propagating into the reconciliation logic.

var areaPattern = regexp.MustCompile(`(\d+\.\d+)`)

// atoiOr parses s as an integer, returning def on any failure.
func atoiOr(s string, def int) int {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return def
	}
	return v
}

// extractArea pulls the first decimal number (e.g. "84.98") out of the
// free-text building description. Empty when no decimal appears.
func extractArea(buildingDetail string) string {
	return areaPattern.FindString(buildingDetail)
}

// dottedDate converts a compact YYYYMMDD date to the dotted YYYY.MM.DD
// form the records store. Inputs of unexpected length pass through
// unchanged rather than being mangled.
func dottedDate(compact string) string {
	if len(compact) != 8 {
		return compact
	}
	return compact[:4] + "." + compact[4:6] + "." + compact[6:]
}
