package repository

import (
	"context"
	"time"

	"ssim-converter-service/internal/domain/entity"
)

// EmailRepository defines the interface for inbox storage operations
type EmailRepository interface {
	Save(ctx context.Context, email *entity.Email) error
	FindByEmailID(ctx context.Context, emailID string) (*entity.Email, error)
	FindByEmailIDs(ctx context.Context, emailIDs []string) (map[string]*entity.Email, error)
	FindByStatus(ctx context.Context, status string, limit int) ([]*entity.Email, error)
	GetLastEmail(ctx context.Context) (*entity.Email, error)
	UpdateStatusByEmailID(ctx context.Context, emailID string, status string, startedAt time.Time) error
	MarkAsProcessedByEmailID(ctx context.Context, emailID, status, errorDetail string, runIDs []string) error
	ResetProcessingEmails(ctx context.Context, staleAfter time.Duration) (int64, error)
}
