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

type InviteRepository struct {
	collection *mongo.Collection
}

func NewInviteRepository(db *mongo.Database) *InviteRepository {
	return &InviteRepository{
		collection: db.Collection("document_invites"),
	}
}

func (r *InviteRepository) Create(ctx context.Context, invite *models.Invite) error {
	if _, err := r.collection.InsertOne(ctx, invite); err != nil {
		return fmt.Errorf("failed to insert invite: %w", translateError(err))
	}
	return nil
}

func (r *InviteRepository) FindByToken(ctx context.Context, token string) (*models.Invite, error) {
	var invite models.Invite
	if err := r.collection.FindOne(ctx, bson.M{"_id": token}).Decode(&invite); err != nil {
		return nil, translateError(err)
	}
	return &invite, nil
}

func (r *InviteRepository) Claim(ctx context.Context, token, userID string, now int64) (*models.Invite, error) {
	filter := bson.M{
		"_id":       token,
		"claimed":   false,
		"expiresAt": bson.M{"$gte": now},
	}
	update := bson.M{
		"$set": bson.M{
			"claimed":   true,
			"claimedBy": userID,
		},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var claimed models.Invite
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&claimed)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrConditionNotMet
	}
	if err != nil {
		return nil, fmt.Errorf("failed to claim invite: %w", err)
	}
	return &claimed, nil
}

func (r *InviteRepository) DeleteByDocument(ctx context.Context, documentID string) error {
	if _, err := r.collection.DeleteMany(ctx, bson.M{"documentId": documentID}); err != nil {
		return fmt.Errorf("failed to delete invites: %w", err)
	}
	return nil
}

func (r *InviteRepository) CreateIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "documentId", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "email", Value: 1}},
		},
	}

	if _, err := r.collection.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("failed to create invite indexes: %w", err)
	}
	return nil
}
