// internal/domain/entity/flight_record.go
package entity

import (
	"time"
)

// ServiceType distinguishes passenger from cargo services
type ServiceType int

const (
	ServicePassenger ServiceType = iota
	ServiceCargo
)

// Code returns the SSIM service type letter
func (s ServiceType) Code() string {
	if s == ServiceCargo {
		return "F"
	}
	return "J"
}

func (s ServiceType) String() string {
	if s == ServiceCargo {
		return "cargo"
	}
	return "passenger"
}

// LocalTime is a local clock time with minute precision
type LocalTime struct {
	Hour   int
	Minute int
}

// Minutes returns the number of minutes since midnight
func (t LocalTime) Minutes() int {
	return t.Hour*60 + t.Minute
}

// Before reports whether t is earlier in the day than other
func (t LocalTime) Before(other LocalTime) bool {
	return t.Minutes() < other.Minutes()
}

// UTCOffset is a signed offset from UTC in minutes
type UTCOffset int

// OffsetFromHours converts fractional hours (5.5, -3.75) to an offset
func OffsetFromHours(hours float64) UTCOffset {
	minutes := hours * 60
	if minutes < 0 {
		return UTCOffset(-int(-minutes + 0.5))
	}
	return UTCOffset(int(minutes + 0.5))
}

// DaySet is the set of weekdays (1 = Monday .. 7 = Sunday) a flight operates
type DaySet uint8

// AllDays has every weekday set
const AllDays DaySet = 0x7f

// SingleDay returns a set with only the given weekday, or an empty set if out of range
func SingleDay(weekday int) DaySet {
	if weekday < 1 || weekday > 7 {
		return 0
	}
	return DaySet(1 << (weekday - 1))
}

// Has reports whether weekday is in the set
func (d DaySet) Has(weekday int) bool {
	if weekday < 1 || weekday > 7 {
		return false
	}
	return d&(1<<(weekday-1)) != 0
}

// Add returns the set with weekday included
func (d DaySet) Add(weekday int) DaySet {
	return d | SingleDay(weekday)
}

// FlightRecord is one operated flight leg on one effective-date range
type FlightRecord struct {
	Carrier              string
	Operator             string
	FlightNumber         int
	ServiceType          ServiceType
	Origin               string
	Destination          string
	DepartureTime        LocalTime
	ArrivalTime          LocalTime
	EffectiveDate        time.Time
	DiscontinueDate      time.Time
	OperatingDays        DaySet
	AircraftType         string
	OriginUTCOffset      UTCOffset
	DestinationUTCOffset UTCOffset
	OnwardRaw            string
	OnwardFlight         int // 0 when the flight has no onward leg
	SourceRow            int
}

// HasOnward reports whether an onward flight has been resolved
func (r *FlightRecord) HasOnward() bool {
	return r.OnwardFlight > 0 && r.OnwardFlight != r.FlightNumber
}

// OperatorCode returns the operator, falling back to the carrier code
func (r *FlightRecord) OperatorCode() string {
	if r.Operator != "" {
		return r.Operator
	}
	return r.Carrier
}
