package weldimport

import (
	"fmt"
	"sort"
	"strings"
)

// Row is one parsed weld record. Recognized columns map onto the fixed
// fields; anything else survives in Extra so callers can round-trip columns
// this pipeline does not interpret.
type Row struct {
	Number        int
	WeldID        string
	DrawingNumber string
	WeldType      string
	Size          string
	Schedule      string
	SpecCode      string
	WelderStencil string
	DateWelded    string
	NDEResult     string
	XRayPercent   string
	Comments      string
	Extra         map[string]string
}

// RowError reports one validation or commit failure. Row numbers are
// 1-indexed and offset past the header row, matching what a user sees in a
// spreadsheet. File-level errors carry Row 0 and no column.
type RowError struct {
	Row     int    `json:"row"`
	Column  string `json:"column,omitempty"`
	Message string `json:"message"`
}

func (e RowError) Error() string {
	if e.Row == 0 {
		return e.Message
	}
	if e.Column == "" {
		return fmt.Sprintf("row %d: %s", e.Row, e.Message)
	}
	return fmt.Sprintf("row %d, %s: %s", e.Row, e.Column, e.Message)
}

type Result struct {
	SuccessCount int        `json:"success_count"`
	ErrorCount   int        `json:"error_count"`
	Errors       []RowError `json:"errors"`
}

// Column names as they appear in the CSV header, after trimming.
const (
	ColumnWeldID        = "Weld ID"
	ColumnDrawingNumber = "Drawing"
	ColumnWeldType      = "Weld Type"
	ColumnSize          = "Size"
	ColumnSchedule      = "Schedule"
	ColumnSpecCode      = "Spec"
	ColumnWelderStencil = "Welder Stencil"
	ColumnDateWelded    = "Date Welded"
	ColumnNDEResult     = "NDE Result"
	ColumnXRayPercent   = "X-Ray Percent"
	ColumnComments      = "Comments"
)

var requiredColumns = []string{ColumnWeldID, ColumnDrawingNumber, ColumnWeldType}

// AllowedWeldTypes and AllowedNDEResults are compared after uppercasing.
var (
	AllowedWeldTypes  = []string{"BW", "SW", "FW", "TW"}
	AllowedNDEResults = []string{"ACCEPT", "REJECT", "REPAIR", "PENDING"}
)

// NDEResultAccept marks a weld as having passed inspection; it drives the
// larger derived milestone set during import.
const NDEResultAccept = "ACCEPT"

func allowedSet(values []string) map[string]struct{} {
	out := make(map[string]struct{}, len(values))
	for _, v := range values {
		out[v] = struct{}{}
	}
	return out
}

func allowedList(values []string) string {
	sorted := make([]string, len(values))
	copy(sorted, values)
	sort.Strings(sorted)
	return strings.Join(sorted, ", ")
}
