package weldimport

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// NormalizeKey produces the canonical form used for reference-data joins:
// trim, collapse internal whitespace runs to single spaces, uppercase. The
// same function must be applied to both sides of a lookup or joins silently
// miss.
func NormalizeKey(v string) string {
	return strings.ToUpper(whitespaceRun.ReplaceAllString(strings.TrimSpace(v), " "))
}

// ParsePercent accepts "N%", "N", or a decimal fraction; fractions in (0,1]
// scale to percentages ("0.05" means 5%). Values landing outside [0,100] are
// treated as absent, never clamped.
func ParsePercent(v string) (float64, bool) {
	v = strings.TrimSpace(v)
	explicit := strings.HasSuffix(v, "%")
	v = strings.TrimSpace(strings.TrimSuffix(v, "%"))
	if v == "" {
		return 0, false
	}
	n, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false
	}
	if !explicit && n > 0 && n <= 1 {
		n *= 100
	}
	if n < 0 || n > 100 {
		return 0, false
	}
	return n, true
}

// ValidDate reports whether v is a strict YYYY-MM-DD date.
func ValidDate(v string) bool {
	v = strings.TrimSpace(v)
	if len(v) != len("2006-01-02") {
		return false
	}
	_, err := time.Parse("2006-01-02", v)
	return err == nil
}
