package ssim

import (
	"bytes"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ssim-converter-service/internal/domain/entity"
)

var issueDate = time.Date(2025, 8, 20, 9, 0, 0, 0, time.UTC)

func testEncoder() *Encoder {
	e := NewEncoder("SSIM Converter", false)
	e.Now = func() time.Time { return issueDate }
	return e
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func sampleRecord() entity.FlightRecord {
	return entity.FlightRecord{
		Carrier:              "TS",
		FlightNumber:         122,
		ServiceType:          entity.ServicePassenger,
		Origin:               "YYZ",
		Destination:          "LGW",
		DepartureTime:        entity.LocalTime{Hour: 21, Minute: 30},
		ArrivalTime:          entity.LocalTime{Hour: 9, Minute: 45},
		EffectiveDate:        day(2025, 9, 1),
		DiscontinueDate:      day(2025, 9, 2),
		OperatingDays:        entity.SingleDay(1),
		AircraftType:         "332",
		OriginUTCOffset:      -4 * 60,
		DestinationUTCOffset: 60,
	}
}

func TestEncodeFlight_FieldPositions(t *testing.T) {
	rec := sampleRecord()
	rec.OnwardFlight = 123

	line := testEncoder().EncodeFlight(&rec, 1, 11)
	require.Len(t, line, LineWidth)

	assert.Equal(t, "3 ", field(line, 1, 2))
	assert.Equal(t, "TS ", field(line, 3, 5))
	assert.Equal(t, "01220101", field(line, 6, 13))
	assert.Equal(t, "J", field(line, 14, 14))
	assert.Equal(t, "01SEP25", field(line, 15, 21))
	assert.Equal(t, "02SEP25", field(line, 22, 28))
	assert.Equal(t, "1      ", field(line, 29, 35))
	assert.Equal(t, " ", field(line, 36, 36))
	assert.Equal(t, "YYZ", field(line, 37, 39))
	assert.Equal(t, "2130", field(line, 40, 43))
	assert.Equal(t, "2130", field(line, 44, 47))
	assert.Equal(t, "-0400", field(line, 48, 52))
	assert.Equal(t, "  ", field(line, 53, 54))
	assert.Equal(t, "LGW", field(line, 55, 57))
	assert.Equal(t, "0945", field(line, 58, 61))
	assert.Equal(t, "0945", field(line, 62, 65))
	assert.Equal(t, "+0100", field(line, 66, 70))
	assert.Equal(t, "  ", field(line, 71, 72))
	assert.Equal(t, "332", field(line, 73, 75))
	assert.Equal(t, strings.Repeat(" ", 53), field(line, 76, 128))
	assert.Equal(t, "TS", field(line, 129, 130))
	assert.Equal(t, strings.Repeat(" ", 7), field(line, 131, 137))
	assert.Equal(t, "TS", field(line, 138, 139))
	assert.Equal(t, "  122", field(line, 140, 144))
	assert.Equal(t, strings.Repeat(" ", 28), field(line, 145, 172))
	assert.Equal(t, "TS123 ", field(line, 173, 178))
	assert.Equal(t, strings.Repeat(" ", 14), field(line, 179, 192))
	assert.Equal(t, "00000011", field(line, 193, 200))
}

func TestEncodeFlight_CargoAndBlankOnward(t *testing.T) {
	rec := sampleRecord()
	rec.ServiceType = entity.ServiceCargo
	rec.FlightNumber = 7
	rec.OnwardFlight = 7

	line := testEncoder().EncodeFlight(&rec, 123, 5)
	assert.Equal(t, "F", field(line, 14, 14))
	assert.Equal(t, "00072301", field(line, 6, 13))
	assert.Equal(t, "    7", field(line, 140, 144))
	assert.Equal(t, "      ", field(line, 173, 178))
}

func TestEncodeFlight_AlwaysFullWidth(t *testing.T) {
	recs := []entity.FlightRecord{
		{},
		{Carrier: "toolong", Origin: "ABCDEF", Destination: "é", AircraftType: "74747", FlightNumber: 9999, OnwardFlight: 9998},
		sampleRecord(),
	}
	e := testEncoder()
	for i := range recs {
		line := e.EncodeFlight(&recs[i], 150, 99999999)
		assert.Len(t, line, LineWidth)
	}
}

func atoi(t *testing.T, s string) int {
	t.Helper()
	n, err := strconv.Atoi(s)
	require.NoError(t, err)
	return n
}

func buildFile(t *testing.T, records []entity.FlightRecord, carriers ...string) *ScheduleFile {
	t.Helper()
	f, err := testEncoder().Build(FileRequest{Carriers: carriers, Records: records})
	require.NoError(t, err)
	return f
}

func TestBuild_Structure(t *testing.T) {
	records := make([]entity.FlightRecord, 0, 5)
	for i := 0; i < 5; i++ {
		rec := sampleRecord()
		rec.FlightNumber = 100 + i
		records = append(records, rec)
	}
	f := buildFile(t, records, "TS")

	require.Len(t, f.Lines, 1+4+1+4+5+4+1)
	var headers, carriers, flights, footers int
	for i, line := range f.Lines {
		assert.Len(t, line, LineWidth, "line %d", i+1)
		switch {
		case strings.HasPrefix(line, "1"):
			headers++
		case strings.HasPrefix(line, "2U"):
			carriers++
		case strings.HasPrefix(line, "3 "):
			flights++
		case strings.HasPrefix(line, "5 "):
			footers++
		default:
			assert.Equal(t, strings.Repeat("0", LineWidth), line)
		}
	}
	assert.Equal(t, 1, headers)
	assert.Equal(t, 1, carriers)
	assert.Equal(t, 5, flights)
	assert.Equal(t, 1, footers)
	assert.Equal(t, 5, f.FlightCount)

	assert.True(t, strings.HasPrefix(f.Lines[0], "1AIRLINE STANDARD SCHEDULE DATA SET "))
	assert.Equal(t, "00000001", field(f.Lines[0], 193, 200))

	carrier := f.Lines[5]
	assert.True(t, strings.HasPrefix(carrier, "2UTS  0008    01SEP2502SEP2520AUG25Created by SSIM Converter"))
	assert.Equal(t, "P", field(carrier, 72, 72))
	assert.Equal(t, " EN0800000006", field(carrier, 188, 200))

	footer := f.Lines[len(f.Lines)-1]
	assert.True(t, strings.HasPrefix(footer, "5 TS 20AUG25 "))
	assert.Equal(t, "000019E000020", field(footer, 188, 200))
}

func TestBuild_SequenceNumbersIncreaseByOne(t *testing.T) {
	records := []entity.FlightRecord{sampleRecord(), sampleRecord(), sampleRecord()}
	f := buildFile(t, records)

	for i, line := range f.Lines {
		want := i + 1
		switch {
		case strings.HasPrefix(line, "5 "):
			assert.Equal(t, want, atoi(t, field(line, 195, 200)))
		case strings.HasPrefix(line, "0"):
			continue
		default:
			assert.Equal(t, want, atoi(t, field(line, 193, 200)), "line %d", want)
		}
	}

	// Same flight three times: occurrences 01, 02, 03.
	assert.Equal(t, "01220101", field(f.Lines[10], 6, 13))
	assert.Equal(t, "01220201", field(f.Lines[11], 6, 13))
	assert.Equal(t, "01220301", field(f.Lines[12], 6, 13))
}

func TestBuild_BidirectionalPair(t *testing.T) {
	out := sampleRecord()
	out.OnwardRaw = "TS123"
	back := sampleRecord()
	back.FlightNumber = 123
	back.Origin, back.Destination = "LGW", "YYZ"
	back.OnwardRaw = "TS122"

	records := []entity.FlightRecord{out, back}
	res := Resolver{Validate: true}.Resolve(records)
	assert.Equal(t, 2, res.Resolved)
	assert.Equal(t, 1, res.Report.BidirectionalPairs)

	f := buildFile(t, records, "TS")
	var onward []string
	for _, line := range f.Lines {
		if strings.HasPrefix(line, "3 ") {
			onward = append(onward, strings.TrimSpace(field(line, 173, 178)))
		}
	}
	assert.Equal(t, []string{"TS123", "TS122"}, onward)
}

func TestBuild_GarbledDepartureTime(t *testing.T) {
	rec := sampleRecord()
	dep, ok := ParseTime(Text("garbled"))
	assert.False(t, ok)
	rec.DepartureTime = dep

	f := buildFile(t, []entity.FlightRecord{rec})
	line := f.Lines[10]
	assert.Len(t, line, LineWidth)
	assert.Equal(t, "0000", field(line, 40, 43))
	assert.Equal(t, "0000", field(line, 44, 47))
}

func TestBuild_MultiCarrierAndFilters(t *testing.T) {
	ts := sampleRecord()
	ac := sampleRecord()
	ac.Carrier = "AC"
	ac.FlightNumber = 122
	late := sampleRecord()
	late.EffectiveDate = day(2025, 12, 1)
	late.DiscontinueDate = day(2025, 12, 1)

	e := testEncoder()
	f, err := e.Build(FileRequest{Records: []entity.FlightRecord{ts, ac, late}})
	require.NoError(t, err)
	assert.Equal(t, "MIX", f.CarrierCode)
	assert.True(t, strings.HasPrefix(f.Lines[5], "2UMIX 0008    01SEP2501DEC25"))
	// Occurrences are counted per operator.
	assert.Equal(t, "01220101", field(f.Lines[10], 6, 13))
	assert.Equal(t, "01220101", field(f.Lines[11], 6, 13))
	assert.Equal(t, "01220201", field(f.Lines[12], 6, 13))

	f, err = e.Build(FileRequest{
		Carriers:    []string{"ts"},
		PeriodStart: day(2025, 9, 1),
		PeriodEnd:   day(2025, 9, 30),
		Records:     []entity.FlightRecord{ts, ac, late},
	})
	require.NoError(t, err)
	assert.Equal(t, "TS", f.CarrierCode)
	assert.Equal(t, 1, f.FlightCount)
	assert.Equal(t, "TS_20250820_01SEP25-30SEP25.ssim", f.FileName())

	_, err = e.Build(FileRequest{Carriers: []string{"XX"}, Records: []entity.FlightRecord{ts}})
	assert.ErrorIs(t, err, ErrNoFlights)
}

func TestBuild_SortByFlight(t *testing.T) {
	a := sampleRecord()
	a.FlightNumber = 300
	b := sampleRecord()
	b.FlightNumber = 100
	b.EffectiveDate = day(2025, 9, 8)
	c := sampleRecord()
	c.FlightNumber = 100

	e := testEncoder()
	e.SortByFlight = true
	f, err := e.Build(FileRequest{Records: []entity.FlightRecord{a, b, c}})
	require.NoError(t, err)
	assert.Equal(t, "01000101", field(f.Lines[10], 6, 13))
	assert.Equal(t, "01SEP25", field(f.Lines[10], 15, 21))
	assert.Equal(t, "01000201", field(f.Lines[11], 6, 13))
	assert.Equal(t, "08SEP25", field(f.Lines[11], 15, 21))
	assert.Equal(t, "03000101", field(f.Lines[12], 6, 13))
}

func TestBuild_MultiCarrierGroupsOperators(t *testing.T) {
	first := sampleRecord()
	first.FlightNumber = 101
	ac := sampleRecord()
	ac.Carrier = "AC"
	ac.FlightNumber = 200
	second := sampleRecord()
	second.FlightNumber = 100

	f, err := testEncoder().Build(FileRequest{Records: []entity.FlightRecord{first, ac, second}})
	require.NoError(t, err)
	require.Equal(t, 3, f.FlightCount)

	var got []string
	for _, line := range f.Lines[10:13] {
		got = append(got, field(line, 3, 5)+field(line, 6, 9))
	}
	assert.Equal(t, []string{"AC 0200", "TS 0101", "TS 0100"}, got)
}

func TestScheduleFile_WriteTo(t *testing.T) {
	f := buildFile(t, []entity.FlightRecord{sampleRecord()})

	var buf bytes.Buffer
	n, err := f.WriteTo(&buf)
	require.NoError(t, err)
	assert.Equal(t, int64(len(f.Lines)*(LineWidth+1)), n)
	assert.Equal(t, f.String(), buf.String())

	report, err := ValidateReader(&buf)
	require.NoError(t, err)
	assert.True(t, report.Conformant, report.Issues)
}
