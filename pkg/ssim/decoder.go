package ssim

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"ssim-converter-service/internal/domain/entity"
)

// FlightLine is a decoded flight record (record type 3)
type FlightLine struct {
	entity.FlightRecord
	Occurrence int
	Leg        string
	Sequence   int
}

func field(line string, start, end int) string {
	return line[start-1 : end]
}

// DecodeFlightLine reverses EncodeFlight for lines this package produced
func DecodeFlightLine(line string) (FlightLine, error) {
	var fl FlightLine
	line = strings.TrimRight(line, "\r\n")
	if len(line) != LineWidth {
		return fl, fmt.Errorf("ssim: flight line has %d characters, want %d", len(line), LineWidth)
	}
	if !strings.HasPrefix(line, "3 ") {
		return fl, fmt.Errorf("ssim: not a flight record: %q", field(line, 1, 2))
	}

	rec := &fl.FlightRecord
	rec.Carrier = strings.TrimSpace(field(line, 3, 5))
	rec.Operator = strings.TrimSpace(field(line, 129, 130))

	var err error
	if rec.FlightNumber, err = strconv.Atoi(field(line, 6, 9)); err != nil {
		return fl, fmt.Errorf("ssim: flight number %q: %w", field(line, 6, 9), err)
	}
	if fl.Occurrence, err = strconv.Atoi(field(line, 10, 11)); err != nil {
		return fl, fmt.Errorf("ssim: occurrence %q: %w", field(line, 10, 11), err)
	}
	fl.Leg = field(line, 12, 13)

	switch field(line, 14, 14) {
	case "J":
		rec.ServiceType = entity.ServicePassenger
	case "F":
		rec.ServiceType = entity.ServiceCargo
	default:
		return fl, fmt.Errorf("ssim: unknown service type %q", field(line, 14, 14))
	}

	if rec.EffectiveDate, err = decodeDate(field(line, 15, 21)); err != nil {
		return fl, err
	}
	if rec.DiscontinueDate, err = decodeDate(field(line, 22, 28)); err != nil {
		return fl, err
	}
	rec.OperatingDays = parseDayDigits(field(line, 29, 35))

	rec.Origin = strings.TrimSpace(field(line, 37, 39))
	if rec.DepartureTime, err = decodeClock(field(line, 40, 43)); err != nil {
		return fl, err
	}
	if rec.OriginUTCOffset, err = decodeOffset(field(line, 48, 52)); err != nil {
		return fl, err
	}
	rec.Destination = strings.TrimSpace(field(line, 55, 57))
	if rec.ArrivalTime, err = decodeClock(field(line, 58, 61)); err != nil {
		return fl, err
	}
	if rec.DestinationUTCOffset, err = decodeOffset(field(line, 66, 70)); err != nil {
		return fl, err
	}
	rec.AircraftType = strings.TrimSpace(field(line, 73, 75))

	if onward := strings.TrimSpace(field(line, 173, 178)); onward != "" {
		rec.OnwardRaw = onward
		if n, ok := ParseOnwardFlight(onward, rec.Carrier); ok {
			rec.OnwardFlight = n
		}
	}
	if fl.Sequence, err = strconv.Atoi(field(line, sequenceStart, LineWidth)); err != nil {
		return fl, fmt.Errorf("ssim: sequence %q: %w", field(line, sequenceStart, LineWidth), err)
	}
	return fl, nil
}

// DecodeFile reads every flight record of a file, skipping the other record types
func DecodeFile(r io.Reader) ([]FlightLine, error) {
	var out []FlightLine
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, LineWidth+2), 1024*1024)
	n := 0
	for sc.Scan() {
		n++
		line := sc.Text()
		if !strings.HasPrefix(line, "3 ") {
			continue
		}
		fl, err := DecodeFlightLine(line)
		if err != nil {
			return out, fmt.Errorf("line %d: %w", n, err)
		}
		out = append(out, fl)
	}
	return out, sc.Err()
}

func decodeDate(s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("ssim: date %q: %w", s, err)
	}
	return t, nil
}

func decodeClock(s string) (entity.LocalTime, error) {
	t, ok := clockFromText(s[:2] + ":" + s[2:])
	if !ok {
		return t, fmt.Errorf("ssim: time %q out of range", s)
	}
	return t, nil
}

func decodeOffset(s string) (entity.UTCOffset, error) {
	m := offsetHHMM.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("ssim: utc offset %q", s)
	}
	return signedOffset(m[1], m[2], m[3]), nil
}
