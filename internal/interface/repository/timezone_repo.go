package repository

import (
	"context"
	"strings"
	"time"

	"ssim-converter-service/internal/domain/entity"
	"ssim-converter-service/internal/domain/repository"

	"gorm.io/gorm"
)

// GormTimezoneRepository implements the TimezoneRepository interface
type GormTimezoneRepository struct {
	db *gorm.DB
}

// NewGormTimezoneRepository creates a new GORM timezone repository
func NewGormTimezoneRepository(db *gorm.DB) repository.TimezoneRepository {
	return &GormTimezoneRepository{
		db: db,
	}
}

// Timezonelist GORM model for database mapping
type Timezonelist struct {
	ID          uint           `gorm:"primaryKey"`
	AirportCode string         `gorm:"column:airportcode;unique"`
	AirportName string         `gorm:"column:airport_name"`
	CityCode    string         `gorm:"column:citycode"`
	CityName    string         `gorm:"column:cityname"`
	GmtTz       string         `gorm:"column:gmttz"`
	TzName      string         `gorm:"column:tzname"`
	DeletedAt   gorm.DeletedAt `gorm:"index"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName overrides the default table name
func (Timezonelist) TableName() string {
	return "m_timezone_list"
}

func (t *Timezonelist) toEntity() *entity.Timezone {
	return &entity.Timezone{
		AirportCode: strings.ToUpper(strings.TrimSpace(t.AirportCode)),
		AirportName: t.AirportName,
		CityCode:    t.CityCode,
		CityName:    t.CityName,
		GmtTz:       t.GmtTz,
		TzName:      t.TzName,
	}
}

// ListOffsets loads the whole table into an airport -> offset map, soft
// deleted airports included. Rows without a usable offset are left out so
// lookups fall back to +0000.
func (r *GormTimezoneRepository) ListOffsets(ctx context.Context) (map[string]entity.UTCOffset, error) {
	var rows []Timezonelist
	result := r.db.WithContext(ctx).
		Unscoped().
		Select("airportcode", "gmttz", "tzname").
		Find(&rows)
	if result.Error != nil {
		return nil, result.Error
	}

	offsets := make(map[string]entity.UTCOffset, len(rows))
	for i := range rows {
		tz := rows[i].toEntity()
		if hours, ok := tz.OffsetHours(); ok {
			offsets[tz.AirportCode] = entity.OffsetFromHours(hours)
		}
	}
	return offsets, nil
}
