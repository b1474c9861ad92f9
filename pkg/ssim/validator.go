package ssim

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Report is the outcome of structural validation. A non-conformant file
// is still emitted; the report travels with it.
type Report struct {
	Conformant bool
	Lines      int
	Headers    int
	Carriers   int
	Flights    int
	Fillers    int
	Footers    int
	Issues     []string
}

const maxIssues = 50

type validator struct {
	Report
	first string
	last  string
}

func newValidator() *validator {
	return &validator{Report: Report{Conformant: true}}
}

func (r *Report) addf(format string, args ...interface{}) {
	r.Conformant = false
	if len(r.Issues) < maxIssues {
		r.Issues = append(r.Issues, fmt.Sprintf(format, args...))
	}
}

// Validate checks line width, character set, record markers and the
// sequence numbering of an assembled file.
func Validate(lines []string) Report {
	v := newValidator()
	for i, raw := range lines {
		v.checkLine(i+1, raw)
	}
	v.checkStructure()
	return v.Report
}

// ValidateReader validates a file read from r
func ValidateReader(rd io.Reader) (Report, error) {
	v := newValidator()
	sc := bufio.NewScanner(rd)
	sc.Buffer(make([]byte, 0, LineWidth+2), 1024*1024)
	n := 0
	for sc.Scan() {
		n++
		v.checkLine(n, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return v.Report, err
	}
	v.checkStructure()
	return v.Report, nil
}

func (r *validator) checkLine(n int, raw string) {
	line := strings.TrimRight(raw, "\r\n")
	r.Lines++
	kind := prefix(line, 1)
	if r.Lines == 1 {
		r.first = kind
	}
	r.last = kind
	if len(line) != LineWidth {
		r.addf("line %d: length %d, want %d", n, len(line), LineWidth)
	}
	for i := 0; i < len(line); i++ {
		if line[i] < 0x20 || line[i] > 0x7e {
			r.addf("line %d: non-printable byte 0x%02x at column %d", n, line[i], i+1)
			break
		}
	}

	switch {
	case strings.HasPrefix(line, "1"):
		r.Headers++
		r.checkSequence(n, line, sequenceStart, LineWidth)
	case strings.HasPrefix(line, "2U"):
		r.Carriers++
		r.checkSequence(n, line, sequenceStart, LineWidth)
	case strings.HasPrefix(line, "3 "):
		r.Flights++
		r.checkSequence(n, line, sequenceStart, LineWidth)
		r.checkFlight(n, line)
	case strings.HasPrefix(line, "5 "):
		r.Footers++
		r.checkSequence(n, line, LineWidth-5, LineWidth)
	case line == "":
		r.addf("line %d: empty record", n)
	case strings.Trim(line, "0") == "":
		r.Fillers++
	default:
		r.addf("line %d: unknown record type %q", n, prefix(line, 2))
	}
}

// checkSequence compares the serial at [start, end] with the physical line number
func (r *Report) checkSequence(n int, line string, start, end int) {
	if len(line) < end {
		return
	}
	seq, err := strconv.Atoi(line[start-1 : end])
	if err != nil {
		r.addf("line %d: sequence field %q is not numeric", n, line[start-1:end])
		return
	}
	if seq != n {
		r.addf("line %d: sequence number %d out of order", n, seq)
	}
}

func (r *Report) checkFlight(n int, line string) {
	if len(line) < LineWidth {
		return
	}
	fl, err := DecodeFlightLine(line)
	if err != nil {
		r.addf("line %d: %v", n, err)
		return
	}
	if fl.OnwardFlight != 0 && fl.OnwardFlight == fl.FlightNumber {
		r.addf("line %d: onward flight references itself", n)
	}
}

func (r *validator) checkStructure() {
	if r.Lines > 0 && r.first != "1" {
		r.addf("first record is %q, want header", r.first)
	}
	if r.Lines > 0 && r.last != "5" {
		r.addf("last record is %q, want footer", r.last)
	}
	if r.Headers == 0 {
		r.addf("missing header record")
	}
	if r.Carriers == 0 {
		r.addf("missing carrier record")
	}
	if r.Flights == 0 {
		r.addf("no flight records")
	}
	if r.Footers == 0 {
		r.addf("missing footer record")
	}
}

func prefix(s string, n int) string {
	if len(s) < n {
		return s
	}
	return s[:n]
}
