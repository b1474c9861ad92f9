// Package ssim encodes flight records into IATA SSIM style fixed-width
// schedule files and provides the connection resolver, line validator and
// decoder used by the converter.
package ssim

import (
	"strconv"
	"strings"
	"time"
)

// Kind is the source representation of a spreadsheet cell
type Kind int

const (
	KindMissing Kind = iota
	KindNumber
	KindText
	KindDate
)

// Value is a loosely typed cell as read from a spreadsheet export. It is
// normalised into an entity.FlightRecord by the source adapters and never
// reaches the encoder.
type Value struct {
	kind Kind
	num  float64
	text string
	date time.Time
}

// Missing returns an empty cell
func Missing() Value {
	return Value{kind: KindMissing}
}

// Number returns a numeric cell
func Number(f float64) Value {
	return Value{kind: KindNumber, num: f}
}

// Text returns a text cell. Blank text and the usual null markers are Missing.
func Text(s string) Value {
	s = strings.TrimSpace(s)
	switch strings.ToUpper(s) {
	case "", "NAN", "NULL", "NONE", `\N`, "N/A", "NAT":
		return Missing()
	}
	return Value{kind: KindText, text: s}
}

// Date returns a date or date-time cell
func Date(t time.Time) Value {
	if t.IsZero() {
		return Missing()
	}
	return Value{kind: KindDate, date: t}
}

func (v Value) Kind() Kind { return v.kind }

func (v Value) IsMissing() bool { return v.kind == KindMissing }

// AsNumber returns the numeric value, converting numeric text
func (v Value) AsNumber() (float64, bool) {
	switch v.kind {
	case KindNumber:
		return v.num, true
	case KindText:
		f, err := strconv.ParseFloat(strings.ReplaceAll(v.text, ",", "."), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

// AsDate returns the date value of a Date cell
func (v Value) AsDate() (time.Time, bool) {
	if v.kind != KindDate {
		return time.Time{}, false
	}
	return v.date, true
}

// String renders the value as text. Whole numbers lose their ".0".
func (v Value) String() string {
	switch v.kind {
	case KindNumber:
		if v.num == float64(int64(v.num)) {
			return strconv.FormatInt(int64(v.num), 10)
		}
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindText:
		return v.text
	case KindDate:
		return v.date.Format("2006-01-02 15:04:05")
	}
	return ""
}
