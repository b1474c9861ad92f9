package utils

import (
	"math"
	"regexp"
	"strings"

	"ssim-converter-service/pkg/ssim"
)

var (
	airportCode = regexp.MustCompile(`^[A-Z0-9]{3}$`)
	carrierCode = regexp.MustCompile(`^[A-Z0-9]{2}$`)
	routeSplit  = regexp.MustCompile(`\s*[/\-]\s*`)
	headerSpace = regexp.MustCompile(`[\s_\-]+`)
)

// normalizeHeader makes "Flight-Number", "flight number" and "FLIGHT_NUMBER" equal
func normalizeHeader(h string) string {
	return headerSpace.ReplaceAllString(strings.ToLower(strings.TrimSpace(h)), " ")
}

// ParseRoute splits "YYZ / LGW" (or "YYZ-LGW") into origin and destination
func ParseRoute(route string) (string, string, bool) {
	parts := routeSplit.Split(strings.ToUpper(strings.TrimSpace(route)), -1)
	if len(parts) != 2 {
		return "", "", false
	}
	orig, dest := strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
	if !IsAirportCode(orig) || !IsAirportCode(dest) {
		return "", "", false
	}
	return orig, dest, true
}

// IsAirportCode reports whether s is a 3 character location code
func IsAirportCode(s string) bool {
	return airportCode.MatchString(s)
}

// IsCarrierCode reports whether s is a 2 character airline designator
func IsCarrierCode(s string) bool {
	return carrierCode.MatchString(s)
}

// ParseFlightNumber reads a flight number cell: 122, "122", "0122", "122.0" or "TS122"
func ParseFlightNumber(v ssim.Value, carrier string) (int, bool) {
	if f, ok := v.AsNumber(); ok {
		if f != math.Trunc(f) || f < 1 || f > ssim.MaxFlightNumber {
			return 0, false
		}
		return int(f), true
	}
	if v.IsMissing() {
		return 0, false
	}
	return ssim.ParseOnwardFlight(v.String(), carrier)
}

// ParseSeats returns the seat count of a cell, if numeric
func ParseSeats(v ssim.Value) (int, bool) {
	f, ok := v.AsNumber()
	if !ok || f < 0 {
		return 0, false
	}
	return int(f), true
}
