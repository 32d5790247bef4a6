package ledger

import (
	"context"
	"errors"
	"koppeltaal-service/internal/app/contracts"
	"koppeltaal-service/internal/app/models"
	"koppeltaal-service/internal/pkg/constvars"
	"koppeltaal-service/internal/pkg/exceptions"
	"koppeltaal-service/internal/pkg/utils"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// MongoClaimLedger keeps one document per header, keyed by header id.
type MongoClaimLedger struct {
	Collection *mongo.Collection
	Log        *zap.Logger
}

var _ contracts.ClaimLedger = (*MongoClaimLedger)(nil)

func NewMongoClaimLedger(db *mongo.Client, dbName, collection string, logger *zap.Logger) *MongoClaimLedger {
	if collection == "" {
		collection = constvars.MongoCollectionClaims
	}
	return &MongoClaimLedger{
		Collection: db.Database(dbName).Collection(collection),
		Log:        logger,
	}
}

// recordUpdate reopens a claim: a reclaimed header drops its earlier outcome.
func recordUpdate(record models.ClaimRecord) bson.M {
	return bson.M{
		"$set": bson.M{
			"headerRef": record.HeaderRef,
			"version":   record.Version,
			"messageId": record.MessageID,
			"event":     record.Event,
			"patient":   record.Patient,
			"claimedAt": record.ClaimedAt.UTC(),
		},
		"$unset": bson.M{"completedAt": "", "outcome": "", "detail": ""},
	}
}

func completeUpdate(outcome models.ProcessingStatus, detail string, at time.Time) bson.M {
	return bson.M{"$set": bson.M{
		"completedAt": at.UTC(),
		"outcome":     outcome,
		"detail":      detail,
	}}
}

func openOlderThanFilter(cutoff time.Time) bson.M {
	return bson.M{
		"completedAt": bson.M{"$exists": false},
		"claimedAt":   bson.M{"$lte": cutoff.UTC()},
	}
}

func openOlderThanOptions(limit int) *options.FindOptions {
	opts := options.Find().SetSort(bson.D{{Key: "claimedAt", Value: 1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	return opts
}

func (l *MongoClaimLedger) Record(ctx context.Context, record models.ClaimRecord) error {
	filter := bson.M{"_id": record.HeaderID}
	_, err := l.Collection.UpdateOne(ctx, filter, recordUpdate(record), options.Update().SetUpsert(true))
	if err != nil {
		l.Log.Error("mongoClaimLedger.Record error upserting claim",
			zap.String(constvars.LoggingRequestIDKey, utils.GetRequestID(ctx)),
			zap.String(constvars.LoggingHeaderRefKey, record.HeaderRef),
			zap.Error(err),
		)
		return exceptions.ErrMongoDBUpsertDocument(err)
	}
	return nil
}

func (l *MongoClaimLedger) Complete(ctx context.Context, headerID string, outcome models.ProcessingStatus, detail string, at time.Time) error {
	filter := bson.M{"_id": headerID}
	_, err := l.Collection.UpdateOne(ctx, filter, completeUpdate(outcome, detail, at), options.Update().SetUpsert(true))
	if err != nil {
		l.Log.Error("mongoClaimLedger.Complete error updating claim",
			zap.String(constvars.LoggingRequestIDKey, utils.GetRequestID(ctx)),
			zap.Error(err),
		)
		return exceptions.ErrMongoDBUpsertDocument(err)
	}
	return nil
}

func (l *MongoClaimLedger) Get(ctx context.Context, headerID string) (*models.ClaimRecord, error) {
	var record models.ClaimRecord
	err := l.Collection.FindOne(ctx, bson.M{"_id": headerID}).Decode(&record)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, exceptions.ErrMongoDBFindDocument(err)
	}
	return &record, nil
}

func (l *MongoClaimLedger) ListOpenOlderThan(ctx context.Context, cutoff time.Time, limit int) ([]models.ClaimRecord, error) {
	cursor, err := l.Collection.Find(ctx, openOlderThanFilter(cutoff), openOlderThanOptions(limit))
	if err != nil {
		return nil, exceptions.ErrMongoDBFindDocument(err)
	}
	defer cursor.Close(ctx)

	var records []models.ClaimRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, exceptions.ErrMongoDBIterateDocuments(err)
	}
	return records, nil
}
