package repository

import (
	"context"
	"time"

	"ssim-converter-service/internal/domain/entity"
	"ssim-converter-service/internal/domain/repository"
	"ssim-converter-service/pkg/logger"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoConversionRunRepository implements ConversionRunRepository
type MongoConversionRunRepository struct {
	collection *mongo.Collection
}

// NewMongoConversionRunRepository creates a new conversion run repository
func NewMongoConversionRunRepository(db *mongo.Database, logger logger.Logger) repository.ConversionRunRepository {
	collection := db.Collection(ConversionRunCollection)
	if err := ensureIndexes(collection, conversionRunIndexes()); err != nil {
		logger.Warn("Failed to create conversion run indexes", "error", err)
	}

	return &MongoConversionRunRepository{
		collection: collection,
	}
}

// Save inserts a run, assigning its ID and creation time when unset
func (r *MongoConversionRunRepository) Save(ctx context.Context, run *entity.ConversionRun) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}

	_, err := r.collection.InsertOne(ctx, run)
	return err
}

// FindByID finds a run by ID; a missing run returns nil, nil
func (r *MongoConversionRunRepository) FindByID(ctx context.Context, id string) (*entity.ConversionRun, error) {
	return findOne[entity.ConversionRun](ctx, r.collection, bson.M{"_id": id})
}

// FindRecent returns the newest runs first
func (r *MongoConversionRunRepository) FindRecent(ctx context.Context, limit int) ([]*entity.ConversionRun, error) {
	return findLimited[entity.ConversionRun](ctx, r.collection,
		bson.M{},
		bson.D{{Key: "createdAt", Value: -1}},
		limit)
}
