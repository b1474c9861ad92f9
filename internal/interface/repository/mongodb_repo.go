package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names
const (
	EmailCollection         = "scheduleEmails"
	ConversionRunCollection = "conversionRuns"
)

const indexTimeout = 10 * time.Second

// ensureIndexes creates the indexes of a collection. Failures are returned
// but callers treat them as non-fatal: the repository still works without them.
func ensureIndexes(coll *mongo.Collection, models []mongo.IndexModel) error {
	ctx, cancel := context.WithTimeout(context.Background(), indexTimeout)
	defer cancel()
	_, err := coll.Indexes().CreateMany(ctx, models)
	return err
}

func emailIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.M{"emailId": 1},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.M{"receivedAt": -1},
		},
		// Pending inbox scan, oldest first
		{
			Keys: bson.D{
				{Key: "processStatus", Value: 1},
				{Key: "receivedAt", Value: 1},
			},
		},
	}
}

func conversionRunIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys: bson.M{"createdAt": -1},
		},
		{
			Keys: bson.M{"emailId": 1},
		},
	}
}

// findLimited runs a sorted, limited query and decodes every document
func findLimited[T any](ctx context.Context, coll *mongo.Collection, filter interface{}, sort bson.D, limit int) ([]*T, error) {
	opts := options.Find().SetSort(sort)
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	cursor, err := coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var out []*T
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// findOne decodes a single document, returning nil without error when absent
func findOne[T any](ctx context.Context, coll *mongo.Collection, filter interface{}, opts ...*options.FindOneOptions) (*T, error) {
	var doc T
	err := coll.FindOne(ctx, filter, opts...).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &doc, nil
}
