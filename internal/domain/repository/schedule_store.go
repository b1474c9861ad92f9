package repository

import (
	"context"
	"io"
)

// ScheduleStore persists generated SSIM files
type ScheduleStore interface {
	// Save writes the file under name atomically and returns where it landed
	Save(ctx context.Context, name string, w io.WriterTo) (string, error)
}
