package repositories

import (
	"context"
	"time"

	"lifeline/models"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// AccidentRepository archives confirmed accidents for downstream triage.
// The shared store stays the system of record for the live flow; this is
// the durable copy dispatch tooling queries.
type AccidentRepository struct {
	database           *mongo.Database
	accidentCollection *mongo.Collection
}

func NewAccidentRepository(database *mongo.Database) *AccidentRepository {
	return &AccidentRepository{
		database:           database,
		accidentCollection: database.Collection("accidents"),
	}
}

// Create archives a confirmed accident. Re-archiving the same accident id
// upserts rather than duplicating.
func (ar *AccidentRepository) Create(ctx context.Context, event models.AccidentEvent) error {
	record := models.AccidentRecord{
		ID:            primitive.NewObjectID(),
		AccidentEvent: event,
		ArchivedAt:    time.Now(),
	}

	filter := bson.M{"accidentId": event.ID}
	update := bson.M{"$setOnInsert": record}
	opts := options.Update().SetUpsert(true)

	_, err := ar.accidentCollection.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		logrus.Errorf("Failed to archive accident %s: %v", event.ID, err)
		return err
	}
	return nil
}

// List returns archived accidents, newest first.
func (ar *AccidentRepository) List(ctx context.Context, limit int64) ([]models.AccidentRecord, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "archivedAt", Value: -1}}).
		SetLimit(limit)

	cursor, err := ar.accidentCollection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var records []models.AccidentRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// GetByAccidentID returns a single archived accident.
func (ar *AccidentRepository) GetByAccidentID(ctx context.Context, accidentID string) (*models.AccidentRecord, error) {
	var record models.AccidentRecord
	err := ar.accidentCollection.FindOne(ctx, bson.M{"accidentId": accidentID}).Decode(&record)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}
