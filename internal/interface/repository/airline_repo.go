package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"ssim-converter-service/internal/domain/entity"
	"ssim-converter-service/internal/domain/repository"

	"gorm.io/gorm"
)

// GormAirlineRepository reads carriers from m_airlines
type GormAirlineRepository struct {
	db *gorm.DB
}

// NewGormAirlineRepository creates a new GORM airline repository
func NewGormAirlineRepository(db *gorm.DB) repository.AirlineRepository {
	return &GormAirlineRepository{db: db}
}

// Airlines GORM model for database mapping
type Airlines struct {
	ID        uint           `gorm:"primaryKey"`
	Code      string         `gorm:"column:code;unique"`
	Name      string         `gorm:"column:name;unique"`
	DeletedAt gorm.DeletedAt `gorm:"index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName overrides the default table name
func (Airlines) TableName() string {
	return "m_airlines"
}

// GetByCode finds an airline by its two character designator. Soft-deleted
// rows are returned with Retired set.
func (r *GormAirlineRepository) GetByCode(ctx context.Context, code string) (*entity.Airline, error) {
	var row Airlines
	err := r.db.WithContext(ctx).Unscoped().
		Where("code = ?", strings.ToUpper(strings.TrimSpace(code))).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("airline %s: %w", code, repository.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("airline %s: %w", code, err)
	}

	return &entity.Airline{
		Code:    row.Code,
		Name:    row.Name,
		Retired: row.DeletedAt.Valid,
	}, nil
}
