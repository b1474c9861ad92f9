package repository

import (
	"context"
)

// AircraftRepository maps equipment codes (ICAO or vendor spellings) to
// 3 character SSIM aircraft types
type AircraftRepository interface {
	ListMappings(ctx context.Context) (map[string]string, error)
}
