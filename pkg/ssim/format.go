package ssim

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"ssim-converter-service/internal/domain/entity"
)

const (
	// LineWidth is the fixed width of every SSIM record
	LineWidth = 200

	// DefaultAircraftType is used when an equipment code cannot be mapped
	DefaultAircraftType = "320"

	dateLayout = "02Jan06"
)

// Excel stores dates as days since 1899-12-30.
var excelEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

var dateLayouts = []string{
	"02Jan06",
	"02Jan2006",
	"20060102",
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"02-Jan-2006",
	"02-Jan-06",
	"02 Jan 2006",
	"2006/01/02",
	"1/2/2006",
	"1/2/06",
	"02.01.2006",
}

var (
	digitRun    = regexp.MustCompile(`\d{3}`)
	offsetColon = regexp.MustCompile(`^([+-]?)(\d{1,2}):(\d{2})$`)
	offsetHHMM  = regexp.MustCompile(`^([+-]?)(\d{2})(\d{2})$`)
)

// builtinAircraft covers common vendor and ICAO equipment spellings.
// Entries from the reference table take precedence.
var builtinAircraft = map[string]string{
	"A319": "319", "A320": "320", "A321": "321", "A330": "330", "A340": "340",
	"A350": "350", "A380": "380", "A20N": "32N", "A21N": "32Q",
	"B737": "737", "B738": "738", "B739": "739", "B38M": "7M8", "B747": "747",
	"B757": "757", "B767": "767", "B777": "777", "B77W": "77W", "B787": "787",
	"B788": "788", "B789": "789", "B717": "717",
	"E170": "E70", "E175": "E75", "E190": "E90", "E195": "E95",
	"ATR72": "AT7", "AT76": "AT7", "ATR42": "AT4", "AT45": "AT4",
	"CRJ900": "CR9", "CRJ9": "CR9", "CRJ700": "CR7", "CRJ7": "CR7",
}

// ParseDate interprets a cell as a calendar date
func ParseDate(v Value) (time.Time, bool) {
	switch v.Kind() {
	case KindDate:
		d, _ := v.AsDate()
		return truncateDay(d), true
	case KindNumber:
		f, _ := v.AsNumber()
		if !isDateSerial(f) {
			return time.Time{}, false
		}
		return excelEpoch.AddDate(0, 0, int(f)), true
	case KindText:
		s := strings.TrimSpace(v.String())
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return truncateDay(t), true
			}
		}
		if f, ok := v.AsNumber(); ok {
			return ParseDate(Number(f))
		}
	}
	return time.Time{}, false
}

// FormatDate renders a date as DDMONYY, falling back to today's date
func FormatDate(v Value) string {
	if d, ok := ParseDate(v); ok {
		return formatDate(d)
	}
	return formatDate(time.Now())
}

func formatDate(t time.Time) string {
	return strings.ToUpper(t.Format(dateLayout))
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseTime interprets a cell as a local clock time
func ParseTime(v Value) (entity.LocalTime, bool) {
	switch v.Kind() {
	case KindDate:
		d, _ := v.AsDate()
		return entity.LocalTime{Hour: d.Hour(), Minute: d.Minute()}, true
	case KindNumber:
		f, _ := v.AsNumber()
		return clockFromNumber(f)
	case KindText:
		s := strings.TrimSpace(v.String())
		s = strings.TrimSuffix(s, ".0")
		if strings.Contains(s, ":") {
			return clockFromText(s)
		}
		if f, ok := v.AsNumber(); ok {
			return clockFromNumber(f)
		}
	}
	return entity.LocalTime{}, false
}

// isDateSerial reports whether f is a plausible Excel date serial (1954..2119)
func isDateSerial(f float64) bool {
	return f >= 20000 && f <= 80000
}

// clockFromNumber handles HHMM integers (45, 1730), Excel day fractions and
// full date-time serials, whose fraction carries the clock.
func clockFromNumber(f float64) (entity.LocalTime, bool) {
	if f < 0 {
		return entity.LocalTime{}, false
	}
	if isDateSerial(f) {
		f -= math.Trunc(f)
		if f == 0 {
			return entity.LocalTime{}, true
		}
	}
	if f < 1 && f != 0 {
		minutes := int(math.Round(f * 24 * 60))
		if minutes >= 24*60 {
			minutes = 0
		}
		return entity.LocalTime{Hour: minutes / 60, Minute: minutes % 60}, true
	}
	if f != math.Trunc(f) || f >= 2400 {
		return entity.LocalTime{}, false
	}
	n := int(f)
	if n%100 >= 60 {
		return entity.LocalTime{}, false
	}
	return entity.LocalTime{Hour: n / 100, Minute: n % 100}, true
}

func clockFromText(s string) (entity.LocalTime, bool) {
	// Date-time strings carry the clock after the space or "T".
	if i := strings.LastIndexAny(s, " T"); i >= 0 {
		s = s[i+1:]
	}
	parts := strings.Split(s, ":")
	if len(parts) < 2 {
		return entity.LocalTime{}, false
	}
	h, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return entity.LocalTime{}, false
	}
	m, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return entity.LocalTime{}, false
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return entity.LocalTime{}, false
	}
	return entity.LocalTime{Hour: h, Minute: m}, true
}

// FormatTime renders a clock time as HHMM, falling back to 0000
func FormatTime(v Value) string {
	t, _ := ParseTime(v)
	return formatClock(t)
}

func formatClock(t entity.LocalTime) string {
	return fmt.Sprintf("%02d%02d", t.Hour, t.Minute)
}

// ParseUTCOffset interprets a cell as a UTC offset. Numbers are hours
// (5.5 = +05:30); text may be "+05:30", "-0330", "UTC+2" or "5.75".
func ParseUTCOffset(v Value) (entity.UTCOffset, bool) {
	var offset entity.UTCOffset
	switch v.Kind() {
	case KindNumber:
		f, _ := v.AsNumber()
		offset = entity.OffsetFromHours(f)
	case KindText:
		s := strings.ToUpper(strings.TrimSpace(v.String()))
		s = strings.TrimPrefix(strings.TrimPrefix(s, "UTC"), "GMT")
		if s == "" {
			return 0, true
		}
		if m := offsetColon.FindStringSubmatch(s); m != nil {
			offset = signedOffset(m[1], m[2], m[3])
		} else if m := offsetHHMM.FindStringSubmatch(s); m != nil {
			offset = signedOffset(m[1], m[2], m[3])
		} else {
			f, err := strconv.ParseFloat(strings.TrimPrefix(s, "+"), 64)
			if err != nil {
				return 0, false
			}
			offset = entity.OffsetFromHours(f)
		}
	default:
		return 0, false
	}
	if offset > 14*60 || offset < -14*60 {
		return 0, false
	}
	return offset, true
}

func signedOffset(sign, hours, minutes string) entity.UTCOffset {
	h, _ := strconv.Atoi(hours)
	m, _ := strconv.Atoi(minutes)
	total := entity.UTCOffset(h*60 + m)
	if sign == "-" {
		return -total
	}
	return total
}

// FormatUTCOffset renders an offset as ±HHMM, falling back to +0000
func FormatUTCOffset(v Value) string {
	o, _ := ParseUTCOffset(v)
	return formatOffset(o)
}

func formatOffset(o entity.UTCOffset) string {
	sign := "+"
	if o < 0 {
		sign = "-"
		o = -o
	}
	return fmt.Sprintf("%s%02d%02d", sign, int(o)/60, int(o)%60)
}

// FormatWeekdayMask renders a single operating weekday (1..7) as a 7 character
// mask; the weekday position holds its digit, every other position a space
func FormatWeekdayMask(weekday int) string {
	return formatDays(entity.SingleDay(weekday))
}

func formatDays(d entity.DaySet) string {
	var b strings.Builder
	for day := 1; day <= 7; day++ {
		if d.Has(day) {
			b.WriteByte(byte('0' + day))
		} else {
			b.WriteByte(' ')
		}
	}
	return b.String()
}

// NormalizeDaysOfOperation passes a 7 character days string through with
// placeholder characters turned into spaces. A position keeps its character
// only when it holds its own weekday digit.
func NormalizeDaysOfOperation(s string) string {
	if len(s) != 7 {
		return formatDays(parseDayDigits(s))
	}
	b := []byte(s)
	for i, c := range b {
		if c != byte('1'+i) {
			b[i] = ' '
		}
	}
	return string(b)
}

// ParseDaysOfOperation reads "1234567", "1.3..6.", "135" or a weekday number
func ParseDaysOfOperation(v Value) (entity.DaySet, bool) {
	if v.IsMissing() {
		return 0, false
	}
	days := parseDayDigits(v.String())
	return days, days != 0
}

func parseDayDigits(s string) entity.DaySet {
	var d entity.DaySet
	for _, c := range s {
		if c >= '1' && c <= '7' {
			d = d.Add(int(c - '0'))
		}
	}
	return d
}

// FormatAircraftType maps an equipment code to its 3 character SSIM code.
// The lookup table is consulted first, then the built-in aliases, then the
// first run of three digits, then the first three characters.
func FormatAircraftType(code string, table map[string]string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	switch code {
	case "", "N/A", "NAN", "NONE":
		return DefaultAircraftType
	}
	if mapped, ok := table[code]; ok && strings.TrimSpace(mapped) != "" {
		return fit(strings.ToUpper(strings.TrimSpace(mapped)), 3)
	}
	if mapped, ok := builtinAircraft[code]; ok {
		return mapped
	}
	if m := digitRun.FindString(code); m != "" {
		return m
	}
	if len(code) >= 3 {
		return code[:3]
	}
	return DefaultAircraftType
}

// PadLine left-justifies line in exactly LineWidth characters
func PadLine(line string) string {
	return fit(line, LineWidth)
}

// fit left-justifies s in width columns, truncating when longer
func fit(s string, width int) string {
	if len(s) >= width {
		return s[:width]
	}
	return s + strings.Repeat(" ", width-len(s))
}
