package ssim

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ssim-converter-service/internal/domain/entity"
)

func TestValidate_ConformantFile(t *testing.T) {
	f := buildFile(t, []entity.FlightRecord{sampleRecord(), sampleRecord()})

	report := f.Validate()
	assert.True(t, report.Conformant, report.Issues)
	assert.Empty(t, report.Issues)
	assert.Equal(t, 17, report.Lines)
	assert.Equal(t, 1, report.Headers)
	assert.Equal(t, 1, report.Carriers)
	assert.Equal(t, 2, report.Flights)
	assert.Equal(t, 12, report.Fillers)
	assert.Equal(t, 1, report.Footers)
}

func TestValidate_ReportsShortLine(t *testing.T) {
	f := buildFile(t, []entity.FlightRecord{sampleRecord()})
	lines := append([]string(nil), f.Lines...)
	lines[10] = lines[10][:150]

	report := Validate(lines)
	assert.False(t, report.Conformant)
	require.NotEmpty(t, report.Issues)
	assert.Contains(t, report.Issues[0], "line 11: length")
}

func TestValidate_ReportsMissingRecords(t *testing.T) {
	f := buildFile(t, []entity.FlightRecord{sampleRecord()})
	var noFlights []string
	for _, line := range f.Lines {
		if !strings.HasPrefix(line, "3 ") {
			noFlights = append(noFlights, line)
		}
	}

	report := Validate(noFlights)
	assert.False(t, report.Conformant)
	assert.Contains(t, report.Issues, "no flight records")

	report = Validate(f.Lines[:len(f.Lines)-1])
	assert.False(t, report.Conformant)
	assert.Contains(t, report.Issues, "missing footer record")
}

func TestValidate_ReportsSequenceGaps(t *testing.T) {
	f := buildFile(t, []entity.FlightRecord{sampleRecord()})
	lines := append([]string(nil), f.Lines...)
	lines = append(lines[:2], lines[3:]...)

	report := Validate(lines)
	assert.False(t, report.Conformant)
	assert.NotEmpty(t, report.Issues)
}

func TestValidate_ReportsNonPrintable(t *testing.T) {
	f := buildFile(t, []entity.FlightRecord{sampleRecord()})
	lines := append([]string(nil), f.Lines...)
	lines[10] = lines[10][:100] + "\t" + lines[10][101:]

	report := Validate(lines)
	assert.False(t, report.Conformant)
	assert.Contains(t, report.Issues, "line 11: non-printable byte 0x09 at column 101")
}

func TestValidateReader_TrimsCarriageReturns(t *testing.T) {
	f := buildFile(t, []entity.FlightRecord{sampleRecord()})
	text := strings.ReplaceAll(f.String(), "\n", "\r\n")

	report, err := ValidateReader(strings.NewReader(text))
	require.NoError(t, err)
	assert.True(t, report.Conformant, report.Issues)
}

func TestValidate_BlankLines(t *testing.T) {
	f := buildFile(t, []entity.FlightRecord{sampleRecord()})

	report := Validate(append([]string{""}, f.Lines...))
	assert.False(t, report.Conformant)
	assert.Contains(t, report.Issues, "line 1: empty record")
	assert.Contains(t, report.Issues, `first record is "", want header`)
	assert.Equal(t, 12, report.Fillers)

	lines := append([]string(nil), f.Lines...)
	lines[1] = ""
	report = Validate(lines)
	assert.Contains(t, report.Issues, "line 2: empty record")
	assert.Equal(t, 11, report.Fillers)
}
