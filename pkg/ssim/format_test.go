package ssim

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatTime(t *testing.T) {
	cases := []struct {
		name string
		in   Value
		want string
	}{
		{"hour minute text", Text("17:30"), "1730"},
		{"single digit hour", Text("7:05"), "0705"},
		{"with seconds", Text("17:30:00"), "1730"},
		{"date time text", Text("2025-09-01 06:15:00"), "0615"},
		{"bare minutes", Number(45), "0045"},
		{"bare hhmm", Number(1730), "1730"},
		{"float rendered text", Text("1730.0"), "1730"},
		{"excel day fraction", Number(0.75), "1800"},
		{"excel date time serial", Number(45901.75), "1800"},
		{"excel date serial at midnight", Number(45901), "0000"},
		{"time value", Date(time.Date(1899, 12, 30, 23, 5, 0, 0, time.UTC)), "2305"},
		{"missing", Missing(), "0000"},
		{"garbled", Text("garbled"), "0000"},
		{"hour out of range", Number(2400), "0000"},
		{"minutes out of range", Number(1275), "0000"},
		{"negative", Number(-5), "0000"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := FormatTime(tc.in)
			assert.Equal(t, tc.want, got)
			assert.Len(t, got, 4)
		})
	}
}

func TestFormatUTCOffset(t *testing.T) {
	cases := []struct {
		in   Value
		want string
	}{
		{Number(5.5), "+0530"},
		{Number(-8.0), "-0800"},
		{Number(0), "+0000"},
		{Number(5.75), "+0545"},
		{Number(-3.5), "-0330"},
		{Text("invalid"), "+0000"},
		{Text("+05:30"), "+0530"},
		{Text("-0330"), "-0330"},
		{Text("0530"), "+0530"},
		{Text("UTC+2"), "+0200"},
		{Text("UTC"), "+0000"},
		{Text("9.5"), "+0930"},
		{Number(20), "+0000"},
		{Missing(), "+0000"},
	}
	for _, tc := range cases {
		got := FormatUTCOffset(tc.in)
		assert.Equal(t, tc.want, got, "input %v", tc.in)
		assert.Len(t, got, 5)
	}
}

func TestFormatDate(t *testing.T) {
	want := "01SEP25"
	assert.Equal(t, want, FormatDate(Date(time.Date(2025, 9, 1, 14, 0, 0, 0, time.UTC))))
	assert.Equal(t, want, FormatDate(Text("2025-09-01")))
	assert.Equal(t, want, FormatDate(Text("01Sep25")))
	assert.Equal(t, want, FormatDate(Text("01-Sep-2025")))
	assert.Equal(t, want, FormatDate(Text("20250901")))
	assert.Equal(t, want, FormatDate(Number(45901)))
	assert.Equal(t, want, FormatDate(Text("45901")))

	// Unparseable input falls back to the current date.
	before := formatDate(time.Now())
	got := FormatDate(Text("not a date"))
	after := formatDate(time.Now())
	assert.Len(t, got, 7)
	assert.Contains(t, []string{before, after}, got)
}

func TestParseDate_RejectsImplausibleSerials(t *testing.T) {
	_, ok := ParseDate(Number(1730))
	assert.False(t, ok)
	_, ok = ParseDate(Number(20250901))
	assert.False(t, ok)
	_, ok = ParseDate(Missing())
	assert.False(t, ok)
}

func TestFormatWeekdayMask(t *testing.T) {
	assert.Equal(t, "1      ", FormatWeekdayMask(1))
	assert.Equal(t, "  3    ", FormatWeekdayMask(3))
	assert.Equal(t, "      7", FormatWeekdayMask(7))
	assert.Equal(t, "       ", FormatWeekdayMask(0))
	assert.Equal(t, "       ", FormatWeekdayMask(8))
}

func TestNormalizeDaysOfOperation(t *testing.T) {
	assert.Equal(t, "1234567", NormalizeDaysOfOperation("1234567"))
	assert.Equal(t, "1 3  6 ", NormalizeDaysOfOperation("1.3..6."))
	assert.Equal(t, " 2 4   ", NormalizeDaysOfOperation("-2-4___"))
	assert.Equal(t, "1 3 5  ", NormalizeDaysOfOperation("135"))
	assert.Equal(t, "       ", NormalizeDaysOfOperation("0000000"))
}

func TestParseDaysOfOperation(t *testing.T) {
	days, ok := ParseDaysOfOperation(Text("1.3..6."))
	assert.True(t, ok)
	assert.True(t, days.Has(1))
	assert.True(t, days.Has(3))
	assert.True(t, days.Has(6))
	assert.False(t, days.Has(2))

	days, ok = ParseDaysOfOperation(Number(5))
	assert.True(t, ok)
	assert.Equal(t, "    5  ", formatDays(days))

	_, ok = ParseDaysOfOperation(Missing())
	assert.False(t, ok)
	_, ok = ParseDaysOfOperation(Text("......."))
	assert.False(t, ok)
}

func TestFormatAircraftType(t *testing.T) {
	table := map[string]string{"DH8D": "dh4", "BLANK": " "}
	cases := []struct {
		in   string
		want string
	}{
		{"DH8D", "DH4"},
		{"A320", "320"},
		{"b77w", "77W"},
		{"ATR72", "AT7"},
		{"XYZ-900", "900"},
		{"ABCD", "ABC"},
		{"AB", DefaultAircraftType},
		{"", DefaultAircraftType},
		{"n/a", DefaultAircraftType},
		{"BLANK", "BLA"},
	}
	for _, tc := range cases {
		got := FormatAircraftType(tc.in, table)
		assert.Equal(t, tc.want, got, "code %q", tc.in)
		assert.Len(t, got, 3)
	}
}

func TestPadLine(t *testing.T) {
	assert.Len(t, PadLine(""), LineWidth)
	assert.Len(t, PadLine("3 TS"), LineWidth)
	assert.True(t, strings.HasPrefix(PadLine("3 TS"), "3 TS "))

	long := strings.Repeat("x", 250)
	assert.Equal(t, long[:LineWidth], PadLine(long))
}

func TestValue(t *testing.T) {
	assert.True(t, Text("  ").IsMissing())
	assert.True(t, Text("NaN").IsMissing())
	assert.True(t, Text(`\N`).IsMissing())
	assert.True(t, Date(time.Time{}).IsMissing())
	assert.Equal(t, KindText, Text("TS").Kind())

	assert.Equal(t, "122", Number(122).String())
	assert.Equal(t, "5.5", Number(5.5).String())

	f, ok := Text("5,5").AsNumber()
	assert.True(t, ok)
	assert.Equal(t, 5.5, f)
}
