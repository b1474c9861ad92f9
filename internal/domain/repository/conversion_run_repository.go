package repository

import (
	"context"

	"ssim-converter-service/internal/domain/entity"
)

// ConversionRunRepository stores the history of file generations
type ConversionRunRepository interface {
	Save(ctx context.Context, run *entity.ConversionRun) error
	FindByID(ctx context.Context, id string) (*entity.ConversionRun, error)
	FindRecent(ctx context.Context, limit int) ([]*entity.ConversionRun, error)
}
