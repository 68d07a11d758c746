package weldimport

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func validRow(n int) Row {
	return Row{
		Number:        n,
		WeldID:        "W-001",
		DrawingNumber: "P-35F11",
		WeldType:      "BW",
		Size:          `2"`,
		SpecCode:      "CS150",
		WelderStencil: "JD-7",
		DateWelded:    "2026-03-14",
		NDEResult:     "Accept",
		XRayPercent:   "5%",
	}
}

func TestValidateRow_Valid(t *testing.T) {
	require.Empty(t, ValidateRow(validRow(2)))
}

func TestValidateRow_MissingWeldType(t *testing.T) {
	row := validRow(2)
	row.WeldType = ""
	errs := ValidateRow(row)
	require.Len(t, errs, 1)
	require.Equal(t, 2, errs[0].Row)
	require.Equal(t, ColumnWeldType, errs[0].Column)
	require.Contains(t, errs[0].Message, "Weld Type")
}

func TestValidateRow_CollectsIndependentErrors(t *testing.T) {
	row := Row{Number: 5, WeldType: "XX", DateWelded: "03/14/2026"}
	errs := ValidateRow(row)
	// Missing weld id, missing drawing, bad type, bad date.
	require.Len(t, errs, 4)
	columns := make([]string, 0, len(errs))
	for _, e := range errs {
		require.Equal(t, 5, e.Row)
		columns = append(columns, e.Column)
	}
	require.ElementsMatch(t, []string{ColumnWeldID, ColumnDrawingNumber, ColumnWeldType, ColumnDateWelded}, columns)
}

func TestValidateRow_EnumsCaseNormalized(t *testing.T) {
	row := validRow(2)
	row.WeldType = "bw"
	row.NDEResult = "accept"
	require.Empty(t, ValidateRow(row))

	row.NDEResult = "MAYBE"
	errs := ValidateRow(row)
	require.Len(t, errs, 1)
	require.Contains(t, errs[0].Message, `"MAYBE"`)
	require.Contains(t, errs[0].Message, "ACCEPT")
}

func TestValidateUniqueness(t *testing.T) {
	rows := []Row{
		{Number: 2, WeldID: "W-1"},
		{Number: 3, WeldID: "w-1 "},
		{Number: 4, WeldID: "W-2"},
		{Number: 5, WeldID: "W-1"},
	}
	errs := ValidateUniqueness(rows)
	require.Len(t, errs, 3)
	for _, e := range errs {
		require.Equal(t, ColumnWeldID, e.Column)
		require.Contains(t, e.Message, `"W-1"`)
	}
	require.Contains(t, errs[0].Message, "3, 5")
	require.Contains(t, errs[1].Message, "2, 5")
	require.Contains(t, errs[2].Message, "2, 3")
}

func TestValidateUniqueness_NoDuplicates(t *testing.T) {
	rows := []Row{
		{Number: 2, WeldID: "W-1"},
		{Number: 3, WeldID: "W-2"},
		{Number: 4, WeldID: ""},
		{Number: 5, WeldID: ""},
	}
	require.Empty(t, ValidateUniqueness(rows))
}

func TestNormalizeKey(t *testing.T) {
	require.Equal(t, "P-35F11", NormalizeKey("  p-35f11 "))
	require.Equal(t, "ISO 001 A", NormalizeKey("iso   001\ta"))
	require.Equal(t, "", NormalizeKey("   "))
}

func TestParsePercent(t *testing.T) {
	cases := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"5%", 5, true},
		{"5", 5, true},
		{"0.05", 5, true},
		{"1", 100, true},
		{"100", 100, true},
		{"0", 0, true},
		{"0.5%", 0.5, true},
		{"101", 0, false},
		{"-3", 0, false},
		// Above the fraction range but inside [0,100], so taken literally.
		{"1.5", 1.5, true},
		{"", 0, false},
		{"n/a", 0, false},
	}
	for _, tc := range cases {
		got, ok := ParsePercent(tc.in)
		require.Equal(t, tc.ok, ok, "input %q", tc.in)
		if tc.ok {
			require.InDelta(t, tc.want, got, 1e-9, "input %q", tc.in)
		}
	}
}

func TestReadCSV_HeaderDriven(t *testing.T) {
	input := strings.Join([]string{
		"Weld ID,Drawing,Weld Type,Welder Stencil,Area,Date Welded",
		"W-001,P-35F11,BW,JD-7,North Rack,2026-03-14",
		"W-002,P-35F12,SW,,,",
	}, "\n")

	rows, err := ReadCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	require.Equal(t, 2, rows[0].Number)
	require.Equal(t, "W-001", rows[0].WeldID)
	require.Equal(t, "P-35F11", rows[0].DrawingNumber)
	require.Equal(t, "2026-03-14", rows[0].DateWelded)
	require.Equal(t, map[string]string{"Area": "North Rack"}, rows[0].Extra)

	require.Equal(t, 3, rows[1].Number)
	require.Nil(t, rows[1].Extra)
}

func TestReadCSV_MissingRequiredHeader(t *testing.T) {
	input := "Weld ID,Welder Stencil\nW-001,JD-7\n"
	_, err := ReadCSV(strings.NewReader(input))
	require.ErrorIs(t, err, ErrMissingHeaders)
	require.Contains(t, err.Error(), ColumnDrawingNumber)
	require.Contains(t, err.Error(), ColumnWeldType)
}

func TestReadCSV_Empty(t *testing.T) {
	_, err := ReadCSV(strings.NewReader(""))
	require.ErrorIs(t, err, ErrMissingHeaders)
}
