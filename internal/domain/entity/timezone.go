package entity

import (
	"strconv"
	"strings"
	"time"
)

// Timezone represents timezone information for airports
type Timezone struct {
	AirportCode string
	AirportName string
	CityCode    string
	CityName    string
	GmtTz       string
	TzName      string
}

// OffsetHours returns the standard UTC offset in hours. GmtTz holds values
// like "7", "+5.5" or "-3.75"; when it is empty the IANA zone name is used.
func (t *Timezone) OffsetHours() (float64, bool) {
	raw := strings.TrimSpace(t.GmtTz)
	if raw != "" && raw != `\N` {
		if v, err := strconv.ParseFloat(strings.TrimPrefix(raw, "+"), 64); err == nil {
			return v, true
		}
	}
	if t.TzName == "" {
		return 0, false
	}
	loc, err := time.LoadLocation(t.TzName)
	if err != nil {
		return 0, false
	}
	// January avoids northern-hemisphere DST; SSIM carries standard time.
	_, secs := time.Date(time.Now().Year(), time.January, 15, 12, 0, 0, 0, loc).Zone()
	return float64(secs) / 3600, true
}
