package ssim

import (
	"fmt"
	"strconv"
	"strings"

	"ssim-converter-service/internal/domain/entity"
)

// MaxFlightNumber is the largest flight number that fits the 4 digit field
const MaxFlightNumber = 9999

// ParseOnwardFlight extracts the flight number from a raw onward-flight cell.
// "TS123" and "123" give 123; "TS840/1" gives 840. When carrier is set, a
// link prefixed with another airline's designator ("AC123" on TS) is not a
// flight of this operator and does not parse. Without a carrier any leading
// designator is stripped.
func ParseOnwardFlight(raw, carrier string) (int, bool) {
	s := strings.ToUpper(strings.TrimSpace(raw))
	carrier = strings.ToUpper(strings.TrimSpace(carrier))
	if carrier != "" {
		s = strings.TrimPrefix(s, carrier)
	}
	s = strings.TrimLeft(s, " -")
	if carrier != "" && s != "" && s[0] >= 'A' && s[0] <= 'Z' {
		return 0, false
	}
	s = strings.TrimLeftFunc(s, func(r rune) bool {
		return (r >= 'A' && r <= 'Z') || r == ' ' || r == '-'
	})
	if i := strings.IndexByte(s, '/'); i >= 0 {
		s = s[:i]
	}
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	// A trailing ".0" is a float rendering of a numeric cell.
	rest := s[end:]
	if end == 0 || (rest != "" && rest != ".0") {
		return 0, false
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil || n <= 0 || n > MaxFlightNumber {
		return 0, false
	}
	return n, true
}

// ResolveOnward parses the raw link and applies the self-reference guard.
// selfRef is true when the link pointed back at the record's own flight.
func ResolveOnward(raw, carrier string, own int) (onward int, selfRef bool) {
	n, ok := ParseOnwardFlight(raw, carrier)
	if !ok {
		return 0, false
	}
	if n == own {
		return 0, true
	}
	return n, false
}

// Resolution summarises one resolver pass
type Resolution struct {
	Links          int
	Resolved       int
	SelfReferences int
	Unparseable    int
	Report         *ConnectionReport
}

// Resolver attaches onward flights to records, operator by operator
type Resolver struct {
	// Validate checks that targets exist and that airports chain up.
	Validate bool
}

// Resolve sets OnwardFlight on every record in place
func (r Resolver) Resolve(records []entity.FlightRecord) Resolution {
	var res Resolution
	for _, op := range operators(records) {
		for i := range records {
			rec := &records[i]
			if rec.OperatorCode() != op {
				continue
			}
			rec.OnwardFlight = 0
			if strings.TrimSpace(rec.OnwardRaw) == "" {
				continue
			}
			res.Links++
			onward, selfRef := ResolveOnward(rec.OnwardRaw, rec.Carrier, rec.FlightNumber)
			switch {
			case selfRef:
				res.SelfReferences++
			case onward == 0:
				res.Unparseable++
			default:
				rec.OnwardFlight = onward
				res.Resolved++
			}
		}
	}
	if r.Validate {
		report := AnalyzeConnections(records)
		res.Report = &report
	}
	return res
}

// operators returns the distinct operators in first-seen order
func operators(records []entity.FlightRecord) []string {
	seen := make(map[string]bool)
	var out []string
	for i := range records {
		op := records[i].OperatorCode()
		if !seen[op] {
			seen[op] = true
			out = append(out, op)
		}
	}
	return out
}

// ConnectionIssue is a data-quality warning about one onward link
type ConnectionIssue struct {
	Operator    string
	Flight      int
	Onward      int
	Destination string
	NextOrigin  string
	Reason      string
}

func (i ConnectionIssue) String() string {
	if i.NextOrigin != "" {
		return fmt.Sprintf("%s%d -> %s%d: %s (%s != %s)", i.Operator, i.Flight, i.Operator, i.Onward, i.Reason, i.Destination, i.NextOrigin)
	}
	return fmt.Sprintf("%s%d -> %s%d: %s", i.Operator, i.Flight, i.Operator, i.Onward, i.Reason)
}

// ConnectionReport is the outcome of validating resolved onward links
type ConnectionReport struct {
	Links             int
	Valid             int
	MissingTargets    []ConnectionIssue
	AirportMismatches []ConnectionIssue
	// BidirectionalPairs counts flight pairs linking to each other (A->B and B->A).
	BidirectionalPairs int
	BidirectionalRate  float64
}

// Warnings renders every issue as text
func (r ConnectionReport) Warnings() []string {
	out := make([]string, 0, len(r.MissingTargets)+len(r.AirportMismatches))
	for _, i := range r.MissingTargets {
		out = append(out, i.String())
	}
	for _, i := range r.AirportMismatches {
		out = append(out, i.String())
	}
	return out
}

type flightKey struct {
	operator string
	flight   int
}

// AnalyzeConnections validates the OnwardFlight links of already resolved
// records. A link is valid when the target flight exists for the same
// operator and one of its legs departs from the current destination.
func AnalyzeConnections(records []entity.FlightRecord) ConnectionReport {
	origins := make(map[flightKey][]string)
	for i := range records {
		k := flightKey{records[i].OperatorCode(), records[i].FlightNumber}
		origins[k] = append(origins[k], records[i].Origin)
	}

	var report ConnectionReport
	links := make(map[[2]flightKey]bool)
	checked := make(map[string]bool)
	for i := range records {
		rec := &records[i]
		if !rec.HasOnward() {
			continue
		}
		from := flightKey{rec.OperatorCode(), rec.FlightNumber}
		to := flightKey{rec.OperatorCode(), rec.OnwardFlight}
		links[[2]flightKey{from, to}] = true

		// One verdict per distinct (flight, onward, destination).
		sig := fmt.Sprintf("%s|%d|%d|%s", from.operator, from.flight, to.flight, rec.Destination)
		if checked[sig] {
			continue
		}
		checked[sig] = true
		report.Links++

		next, ok := origins[to]
		if !ok {
			report.MissingTargets = append(report.MissingTargets, ConnectionIssue{
				Operator: from.operator, Flight: from.flight, Onward: to.flight,
				Destination: rec.Destination, Reason: "onward flight not in schedule",
			})
			continue
		}
		if !contains(next, rec.Destination) {
			report.AirportMismatches = append(report.AirportMismatches, ConnectionIssue{
				Operator: from.operator, Flight: from.flight, Onward: to.flight,
				Destination: rec.Destination, NextOrigin: next[0], Reason: "onward flight departs elsewhere",
			})
			continue
		}
		report.Valid++
	}

	for l := range links {
		if l[0].flight < l[1].flight && links[[2]flightKey{l[1], l[0]}] {
			report.BidirectionalPairs++
		}
	}
	if len(links) > 0 {
		report.BidirectionalRate = float64(2*report.BidirectionalPairs) / float64(len(links))
	}
	return report
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
