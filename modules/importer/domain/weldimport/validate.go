package weldimport

import (
	"fmt"
	"sort"
	"strings"
)

// ValidateRow enforces per-row structural and business rules. It returns
// every independent failure for the row; callers must check the slice
// length, not a boolean.
func ValidateRow(row Row) []RowError {
	var errs []RowError

	required := []struct {
		column string
		value  string
	}{
		{ColumnWeldID, row.WeldID},
		{ColumnDrawingNumber, row.DrawingNumber},
		{ColumnWeldType, row.WeldType},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			errs = append(errs, RowError{
				Row:     row.Number,
				Column:  f.column,
				Message: fmt.Sprintf("%s is required", f.column),
			})
		}
	}

	if v := strings.TrimSpace(row.WeldType); v != "" {
		if _, ok := allowedSet(AllowedWeldTypes)[strings.ToUpper(v)]; !ok {
			errs = append(errs, RowError{
				Row:     row.Number,
				Column:  ColumnWeldType,
				Message: fmt.Sprintf("invalid weld type %q (allowed: %s)", v, allowedList(AllowedWeldTypes)),
			})
		}
	}
	if v := strings.TrimSpace(row.NDEResult); v != "" {
		if _, ok := allowedSet(AllowedNDEResults)[strings.ToUpper(v)]; !ok {
			errs = append(errs, RowError{
				Row:     row.Number,
				Column:  ColumnNDEResult,
				Message: fmt.Sprintf("invalid NDE result %q (allowed: %s)", v, allowedList(AllowedNDEResults)),
			})
		}
	}
	if v := strings.TrimSpace(row.DateWelded); v != "" && !ValidDate(v) {
		errs = append(errs, RowError{
			Row:     row.Number,
			Column:  ColumnDateWelded,
			Message: fmt.Sprintf("invalid date %q (expected YYYY-MM-DD)", v),
		})
	}

	return errs
}

// ValidateUniqueness detects duplicate weld ids across the whole batch in
// one grouping pass. Every offending row gets its own error whose message
// cross-references the other rows carrying the same id.
func ValidateUniqueness(rows []Row) []RowError {
	byKey := make(map[string][]int, len(rows))
	for _, row := range rows {
		key := NormalizeKey(row.WeldID)
		if key == "" {
			continue
		}
		byKey[key] = append(byKey[key], row.Number)
	}

	keys := make([]string, 0, len(byKey))
	for key, numbers := range byKey {
		if len(numbers) > 1 {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	var errs []RowError
	for _, key := range keys {
		numbers := byKey[key]
		for _, n := range numbers {
			errs = append(errs, RowError{
				Row:     n,
				Column:  ColumnWeldID,
				Message: fmt.Sprintf("duplicate weld id %q also appears on rows %s", key, otherRows(numbers, n)),
			})
		}
	}
	return errs
}

func otherRows(numbers []int, self int) string {
	out := make([]string, 0, len(numbers)-1)
	skipped := false
	for _, n := range numbers {
		if n == self && !skipped {
			skipped = true
			continue
		}
		out = append(out, fmt.Sprintf("%d", n))
	}
	return strings.Join(out, ", ")
}
