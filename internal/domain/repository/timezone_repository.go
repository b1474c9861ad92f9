package repository

import (
	"context"

	"ssim-converter-service/internal/domain/entity"
)

// TimezoneRepository defines the interface for airport timezone lookups
type TimezoneRepository interface {
	// ListOffsets returns the standard UTC offset of every known airport
	ListOffsets(ctx context.Context) (map[string]entity.UTCOffset, error)
}
