package ssim

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"ssim-converter-service/internal/domain/entity"
)

const (
	headerTitle   = "1AIRLINE STANDARD SCHEDULE DATA SET"
	fillerCount   = 4
	legCode       = "01"
	multiCarrier  = "MIX"
	carrierPPos   = 72
	sequenceStart = 193
)

// ErrNoFlights is returned when a file would contain no flight records
var ErrNoFlights = errors.New("ssim: no flight records to encode")

// lineBuf is one fixed-width record addressed by 1-based inclusive positions.
type lineBuf struct {
	data []byte
}

func newLineBuf() *lineBuf {
	d := make([]byte, LineWidth)
	for i := range d {
		d[i] = ' '
	}
	return &lineBuf{data: d}
}

// put places s left-aligned at positions [start, end], truncating
func (b *lineBuf) put(start, end int, s string) {
	width := end - start + 1
	if len(s) > width {
		s = s[:width]
	}
	copy(b.data[start-1:end], s)
}

// putRight places s right-aligned at positions [start, end]
func (b *lineBuf) putRight(start, end int, s string) {
	width := end - start + 1
	if len(s) > width {
		s = s[len(s)-width:]
	}
	copy(b.data[end-len(s):end], s)
}

func (b *lineBuf) String() string { return string(b.data) }

// FileRequest selects what goes into one schedule file
type FileRequest struct {
	// Carriers restricts the file to these operators; empty keeps all.
	Carriers []string
	// PeriodStart and PeriodEnd bound the schedule period. When zero the
	// period is derived from the records' effective and discontinue dates.
	PeriodStart time.Time
	PeriodEnd   time.Time
	Records     []entity.FlightRecord
}

// Encoder assembles schedule files
type Encoder struct {
	// Producer is written after "Created by" in the carrier record.
	Producer string
	// SortByFlight orders flight records by flight number then effective date.
	SortByFlight bool
	// Now supplies the issue date; defaults to time.Now.
	Now func() time.Time
}

// NewEncoder creates an encoder for the given producer name
func NewEncoder(producer string, sortByFlight bool) *Encoder {
	return &Encoder{
		Producer:     producer,
		SortByFlight: sortByFlight,
		Now:          time.Now,
	}
}

// Build assembles the complete file: header, fillers, carrier record,
// fillers, one flight record per input record, fillers and footer. Every
// physical line takes the next sequence number, starting at 1.
func (e *Encoder) Build(req FileRequest) (*ScheduleFile, error) {
	records := selectRecords(req)
	if len(records) == 0 {
		return nil, ErrNoFlights
	}
	if e.SortByFlight {
		sortRecords(records)
	} else if len(operators(records)) > 1 {
		groupByOperator(records)
	}

	start, end := req.PeriodStart, req.PeriodEnd
	if start.IsZero() || end.IsZero() {
		minEff, maxDisc := period(records)
		if start.IsZero() {
			start = minEff
		}
		if end.IsZero() {
			end = maxDisc
		}
	}

	now := time.Now
	if e.Now != nil {
		now = e.Now
	}
	issued := now()
	code := carrierCode(req.Carriers, records)

	f := &ScheduleFile{
		CarrierCode: code,
		PeriodStart: start,
		PeriodEnd:   end,
		IssuedAt:    issued,
	}
	w := &fileWriter{file: f}

	w.emit(e.headerLine(w.next()))
	w.fillers()
	w.emit(e.carrierLine(code, start, end, issued, w.next()))
	w.fillers()

	counter := NewOccurrenceCounter()
	for i := range records {
		rec := &records[i]
		occurrence := counter.Next(rec.OperatorCode(), rec.FlightNumber)
		w.emit(e.EncodeFlight(rec, occurrence, w.next()))
		f.FlightCount++
	}

	w.fillers()
	footerSeq := w.next()
	w.emit(e.footerLine(code, issued, footerSeq-1, footerSeq))
	return f, nil
}

// EncodeFlight renders one flight record (record type 3)
func (e *Encoder) EncodeFlight(rec *entity.FlightRecord, occurrence, seq int) string {
	carrier := code(rec.Carrier, 2)
	b := newLineBuf()
	b.put(1, 2, "3 ")
	b.put(3, 5, carrier)
	b.put(6, 13, fmt.Sprintf("%04d%02d%s", rec.FlightNumber%10000, occurrence%100, legCode))
	b.put(14, 14, rec.ServiceType.Code())
	b.put(15, 21, formatDate(rec.EffectiveDate))
	b.put(22, 28, formatDate(rec.DiscontinueDate))
	b.put(29, 35, formatDays(rec.OperatingDays))
	b.put(37, 39, code(rec.Origin, 3))
	b.put(40, 43, formatClock(rec.DepartureTime))
	b.put(44, 47, formatClock(rec.DepartureTime))
	b.put(48, 52, formatOffset(rec.OriginUTCOffset))
	b.put(55, 57, code(rec.Destination, 3))
	b.put(58, 61, formatClock(rec.ArrivalTime))
	b.put(62, 65, formatClock(rec.ArrivalTime))
	b.put(66, 70, formatOffset(rec.DestinationUTCOffset))
	b.put(73, 75, code(rec.AircraftType, 3))
	b.put(129, 130, carrier)
	b.put(138, 139, carrier)
	b.putRight(140, 144, fmt.Sprintf("%d", rec.FlightNumber))
	if rec.HasOnward() {
		b.put(173, 178, fmt.Sprintf("%s%d", carrier, rec.OnwardFlight))
	}
	b.put(sequenceStart, LineWidth, fmt.Sprintf("%08d", seq))
	return b.String()
}

func (e *Encoder) headerLine(seq int) string {
	b := newLineBuf()
	b.put(1, len(headerTitle), headerTitle)
	b.put(sequenceStart, LineWidth, fmt.Sprintf("%08d", seq))
	return b.String()
}

func (e *Encoder) carrierLine(carrier string, start, end, issued time.Time, seq int) string {
	content := fmt.Sprintf("2U%-3s 0008    %s%s%sCreated by %s",
		carrier, formatDate(start), formatDate(end), formatDate(issued), e.Producer)
	b := newLineBuf()
	b.put(1, carrierPPos-1, content)
	b.put(carrierPPos, carrierPPos, "P")
	b.put(LineWidth-12, LineWidth, fmt.Sprintf(" EN08%08d", seq))
	return b.String()
}

func (e *Encoder) footerLine(carrier string, issued time.Time, prevSeq, seq int) string {
	b := newLineBuf()
	b.put(1, LineWidth, fmt.Sprintf("5 %s %s", carrier, formatDate(issued)))
	b.put(LineWidth-12, LineWidth, fmt.Sprintf("%06dE%06d", prevSeq, seq))
	return b.String()
}

// fileWriter hands out sequence numbers and collects lines
type fileWriter struct {
	file *ScheduleFile
	seq  int
}

func (w *fileWriter) next() int {
	w.seq++
	return w.seq
}

func (w *fileWriter) emit(line string) {
	w.file.Lines = append(w.file.Lines, PadLine(line))
}

func (w *fileWriter) fillers() {
	for i := 0; i < fillerCount; i++ {
		w.next()
		w.emit(strings.Repeat("0", LineWidth))
	}
}

// selectRecords copies the records matching the carrier selection and
// overlapping the requested period
func selectRecords(req FileRequest) []entity.FlightRecord {
	wanted := make(map[string]bool, len(req.Carriers))
	for _, c := range req.Carriers {
		wanted[strings.ToUpper(strings.TrimSpace(c))] = true
	}
	out := make([]entity.FlightRecord, 0, len(req.Records))
	for _, rec := range req.Records {
		if len(wanted) > 0 && !wanted[rec.OperatorCode()] {
			continue
		}
		if !req.PeriodStart.IsZero() && rec.DiscontinueDate.Before(req.PeriodStart) {
			continue
		}
		if !req.PeriodEnd.IsZero() && rec.EffectiveDate.After(req.PeriodEnd) {
			continue
		}
		out = append(out, rec)
	}
	return out
}

func sortRecords(records []entity.FlightRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := &records[i], &records[j]
		if a.OperatorCode() != b.OperatorCode() {
			return a.OperatorCode() < b.OperatorCode()
		}
		if a.FlightNumber != b.FlightNumber {
			return a.FlightNumber < b.FlightNumber
		}
		return a.EffectiveDate.Before(b.EffectiveDate)
	})
}

// groupByOperator writes operators one after another in code order and
// keeps input order within each operator
func groupByOperator(records []entity.FlightRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].OperatorCode() < records[j].OperatorCode()
	})
}

func period(records []entity.FlightRecord) (time.Time, time.Time) {
	minEff, maxDisc := records[0].EffectiveDate, records[0].DiscontinueDate
	for i := range records[1:] {
		rec := &records[i+1]
		if rec.EffectiveDate.Before(minEff) {
			minEff = rec.EffectiveDate
		}
		if rec.DiscontinueDate.After(maxDisc) {
			maxDisc = rec.DiscontinueDate
		}
	}
	return minEff, maxDisc
}

// carrierCode is the single selected operator, or MIX for several
func carrierCode(selected []string, records []entity.FlightRecord) string {
	ops := selected
	if len(ops) == 0 {
		ops = operators(records)
	}
	if len(ops) == 1 {
		return code(ops[0], 3)
	}
	return multiCarrier
}

// code upper-cases a designator and keeps it to printable ASCII within width
func code(s string, width int) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	out := make([]byte, 0, width)
	for i := 0; i < len(s) && len(out) < width; i++ {
		if s[i] >= 0x20 && s[i] < 0x7f {
			out = append(out, s[i])
		}
	}
	return string(out)
}
