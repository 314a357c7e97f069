package repository

import (
	"context"
	"errors"
	"fmt"

	"dataroom-service/internal/models"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type AccessRequestRepository struct {
	collection *mongo.Collection
}

func NewAccessRequestRepository(db *mongo.Database) *AccessRequestRepository {
	return &AccessRequestRepository{
		collection: db.Collection("access_requests"),
	}
}

func (r *AccessRequestRepository) UpsertPending(ctx context.Context, req *models.AccessRequest) (*models.AccessRequest, bool, error) {
	filter := bson.M{
		"userId":     req.UserID,
		"documentId": req.DocumentID,
	}
	update := bson.M{"$setOnInsert": req}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.Before)

	var existing models.AccessRequest
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&existing)
	switch {
	case err == nil:
		return &existing, false, nil
	case errors.Is(err, mongo.ErrNoDocuments):
		// No document before the write: this call inserted req.
		return req, true, nil
	case mongo.IsDuplicateKeyError(err):
		// A concurrent upsert for the same pair won the insert.
		found, findErr := r.FindByUserAndDocument(ctx, req.UserID, req.DocumentID)
		if findErr != nil {
			return nil, false, fmt.Errorf("failed to load concurrent access request: %w", findErr)
		}
		return found, false, nil
	}
	return nil, false, fmt.Errorf("failed to upsert access request: %w", err)
}

func (r *AccessRequestRepository) TransitionStatus(ctx context.Context, id string, from []models.AccessStatus, target models.AccessStatus, now int64) (*models.AccessRequest, error) {
	filter := bson.M{
		"_id":         id,
		"status":      bson.M{"$in": from},
		"ndaSignedAt": bson.M{"$gt": 0},
	}
	update := bson.M{
		"$set": bson.M{
			"status":    target,
			"updatedAt": now,
		},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.Before)

	var before models.AccessRequest
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&before)
	if err == nil {
		return &before, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("failed to update access request status: %w", err)
	}

	if _, findErr := r.FindByID(ctx, id); findErr != nil {
		return nil, findErr
	}
	return nil, ErrConditionNotMet
}

func (r *AccessRequestRepository) FindByID(ctx context.Context, id string) (*models.AccessRequest, error) {
	var req models.AccessRequest
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&req); err != nil {
		return nil, translateError(err)
	}
	return &req, nil
}

func (r *AccessRequestRepository) FindByUserAndDocument(ctx context.Context, userID, documentID string) (*models.AccessRequest, error) {
	var req models.AccessRequest
	filter := bson.M{"userId": userID, "documentId": documentID}
	if err := r.collection.FindOne(ctx, filter).Decode(&req); err != nil {
		return nil, translateError(err)
	}
	return &req, nil
}

func (r *AccessRequestRepository) FindByUser(ctx context.Context, userID string) ([]*models.AccessRequest, error) {
	return r.find(ctx, bson.M{"userId": userID})
}

func (r *AccessRequestRepository) List(ctx context.Context, status models.AccessStatus) ([]*models.AccessRequest, error) {
	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}
	return r.find(ctx, filter)
}

func (r *AccessRequestRepository) find(ctx context.Context, filter bson.M) ([]*models.AccessRequest, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find access requests: %w", err)
	}
	defer cursor.Close(ctx)

	var requests []*models.AccessRequest
	if err = cursor.All(ctx, &requests); err != nil {
		return nil, fmt.Errorf("failed to decode access requests: %w", err)
	}
	return requests, nil
}

func (r *AccessRequestRepository) DeleteByDocument(ctx context.Context, documentID string) error {
	if _, err := r.collection.DeleteMany(ctx, bson.M{"documentId": documentID}); err != nil {
		return fmt.Errorf("failed to delete access requests: %w", err)
	}
	return nil
}

func (r *AccessRequestRepository) CreateIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "userId", Value: 1},
				{Key: "documentId", Value: 1},
			},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "documentId", Value: 1}},
		},
		{
			Keys: bson.D{
				{Key: "status", Value: 1},
				{Key: "createdAt", Value: -1},
			},
		},
	}

	if _, err := r.collection.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("failed to create access request indexes: %w", err)
	}
	return nil
}
