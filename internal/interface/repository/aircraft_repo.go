package repository

import (
	"context"
	"strings"
	"time"

	"ssim-converter-service/internal/domain/repository"

	"gorm.io/gorm"
)

// GormAircraftRepository implements the AircraftRepository interface
type GormAircraftRepository struct {
	db *gorm.DB
}

// NewGormAircraftRepository creates a new GORM aircraft type repository
func NewGormAircraftRepository(db *gorm.DB) repository.AircraftRepository {
	return &GormAircraftRepository{
		db: db,
	}
}

// AircraftTypes GORM model for database mapping
type AircraftTypes struct {
	ID        uint           `gorm:"primaryKey"`
	ICAO      string         `gorm:"column:icao;unique"`
	IATA      string         `gorm:"column:iata"`
	Name      string         `gorm:"column:name"`
	DeletedAt gorm.DeletedAt `gorm:"index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName overrides the default table name
func (AircraftTypes) TableName() string {
	return "m_aircraft_types"
}

// ListMappings returns ICAO code -> IATA type for every active row
func (r *GormAircraftRepository) ListMappings(ctx context.Context) (map[string]string, error) {
	var rows []AircraftTypes
	result := r.db.WithContext(ctx).Select("icao", "iata").Find(&rows)
	if result.Error != nil {
		return nil, result.Error
	}

	mappings := make(map[string]string, len(rows))
	for _, row := range rows {
		icao := strings.ToUpper(strings.TrimSpace(row.ICAO))
		iata := strings.TrimSpace(row.IATA)
		if icao == "" || iata == "" {
			continue
		}
		mappings[icao] = iata
	}
	return mappings, nil
}
