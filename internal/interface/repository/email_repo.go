// internal/interface/repository/email_repo.go
package repository

import (
	"context"
	"fmt"
	"time"

	"ssim-converter-service/internal/domain/entity"
	"ssim-converter-service/internal/domain/repository"
	"ssim-converter-service/pkg/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoEmailRepository implements the EmailRepository interface
type MongoEmailRepository struct {
	collection *mongo.Collection
	logger     logger.Logger
}

// NewMongoEmailRepository creates a new MongoDB email repository
func NewMongoEmailRepository(db *mongo.Database, logger logger.Logger) repository.EmailRepository {
	collection := db.Collection(EmailCollection)
	if err := ensureIndexes(collection, emailIndexes()); err != nil {
		logger.Warn("Failed to create email indexes", "error", err)
	}

	return &MongoEmailRepository{
		collection: collection,
		logger:     logger,
	}
}

// Save stores an email; a duplicate Gmail message id is not an error
func (r *MongoEmailRepository) Save(ctx context.Context, email *entity.Email) error {
	if email.ProcessStatus == "" {
		email.ProcessStatus = entity.StatusPending
	}

	_, err := r.collection.InsertOne(ctx, email)
	if mongo.IsDuplicateKeyError(err) {
		r.logger.Debug("Email already stored", "emailId", email.EmailID)
		return nil
	}
	return err
}

// FindByEmailID finds an email by Gmail message ID
func (r *MongoEmailRepository) FindByEmailID(ctx context.Context, emailID string) (*entity.Email, error) {
	return findOne[entity.Email](ctx, r.collection, bson.M{"emailId": emailID})
}

// FindByEmailIDs finds multiple emails by Gmail message IDs (batch operation)
func (r *MongoEmailRepository) FindByEmailIDs(ctx context.Context, emailIDs []string) (map[string]*entity.Email, error) {
	result := make(map[string]*entity.Email)
	if len(emailIDs) == 0 {
		return result, nil
	}

	// Attachment payloads are not needed to check existence.
	opts := options.Find().SetProjection(bson.M{"attachments": 0})
	cursor, err := r.collection.Find(ctx, bson.M{"emailId": bson.M{"$in": emailIDs}}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var email entity.Email
		if err := cursor.Decode(&email); err != nil {
			r.logger.Warn("Failed to decode email", "error", err)
			continue
		}
		result[email.EmailID] = &email
	}

	if err := cursor.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

// FindByStatus finds emails by status, oldest first
func (r *MongoEmailRepository) FindByStatus(ctx context.Context, status string, limit int) ([]*entity.Email, error) {
	return findLimited[entity.Email](ctx, r.collection,
		bson.M{"processStatus": status},
		bson.D{{Key: "receivedAt", Value: 1}},
		limit)
}

// GetLastEmail gets the most recently received email
func (r *MongoEmailRepository) GetLastEmail(ctx context.Context) (*entity.Email, error) {
	opts := options.FindOne().
		SetSort(bson.D{{Key: "receivedAt", Value: -1}}).
		SetProjection(bson.M{"attachments": 0})
	return findOne[entity.Email](ctx, r.collection, bson.M{}, opts)
}

// UpdateStatusByEmailID updates the status, stamping the start time when processing begins
func (r *MongoEmailRepository) UpdateStatusByEmailID(ctx context.Context, emailID string, status string, startedAt time.Time) error {
	set := bson.M{
		"processStatus": status,
	}
	if status == entity.StatusProcessing && !startedAt.IsZero() {
		set["processStartedAt"] = startedAt
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"emailId": emailID}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to update status: %w", err)
	}

	if result.MatchedCount == 0 {
		return fmt.Errorf("no document found with emailID: %s", emailID)
	}

	return nil
}

// MarkAsProcessedByEmailID records the outcome and the runs produced
func (r *MongoEmailRepository) MarkAsProcessedByEmailID(ctx context.Context, emailID, status, errorDetail string, runIDs []string) error {
	set := bson.M{
		"processedAt":   time.Now(),
		"processStatus": status,
		"errorDetail":   errorDetail,
	}
	if len(runIDs) > 0 {
		set["runIds"] = runIDs
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"emailId": emailID}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to mark as processed: %w", err)
	}

	if result.MatchedCount == 0 {
		return fmt.Errorf("no document found with emailID: %s", emailID)
	}

	return nil
}

// ResetProcessingEmails resets emails stuck in PROCESSING back to PENDING
func (r *MongoEmailRepository) ResetProcessingEmails(ctx context.Context, staleAfter time.Duration) (int64, error) {
	staleTime := time.Now().Add(-staleAfter)

	filter := bson.M{
		"processStatus": entity.StatusProcessing,
		"$or": []bson.M{
			{"processStartedAt": bson.M{"$lt": staleTime}},
			{"processStartedAt": bson.M{"$exists": false}},
		},
	}

	update := bson.M{
		"$set": bson.M{
			"processStatus": entity.StatusPending,
			"errorDetail":   "Reset from stale PROCESSING state",
		},
	}

	result, err := r.collection.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, err
	}

	if result.ModifiedCount > 0 {
		r.logger.Info("Reset stale processing emails", "count", result.ModifiedCount)
	}

	return result.ModifiedCount, nil
}
