package repository

import (
	"context"
	"fmt"
	"time"

	"dataroom-service/internal/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type DocumentRepository struct {
	collection *mongo.Collection
}

func NewDocumentRepository(db *mongo.Database) *DocumentRepository {
	return &DocumentRepository{
		collection: db.Collection("documents"),
	}
}

func (r *DocumentRepository) Create(ctx context.Context, doc *models.Document) (*models.Document, error) {
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	currentTime := time.Now().Unix()
	if doc.CreatedAt == 0 {
		doc.CreatedAt = currentTime
	}
	doc.UpdatedAt = currentTime

	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("failed to insert document: %w", translateError(err))
	}
	return doc, nil
}

func (r *DocumentRepository) UpsertBySlug(ctx context.Context, doc *models.Document) (*models.Document, error) {
	currentTime := time.Now().Unix()
	id := doc.ID
	if id == "" {
		id = uuid.NewString()
	}

	update := bson.M{
		"$set": bson.M{
			"title":       doc.Title,
			"description": doc.Description,
			"tier":        doc.Tier,
			"visibility":  doc.Visibility,
			"content":     doc.Content,
			"contentRef":  doc.ContentRef,
			"icon":        doc.Icon,
			"updatedAt":   currentTime,
		},
		"$setOnInsert": bson.M{
			"_id":       id,
			"createdAt": currentTime,
		},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var stored models.Document
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"slug": doc.Slug}, update, opts).Decode(&stored)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert document %s: %w", doc.Slug, translateError(err))
	}
	return &stored, nil
}

func (r *DocumentRepository) FindByID(ctx context.Context, id string) (*models.Document, error) {
	var doc models.Document
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		return nil, translateError(err)
	}
	return &doc, nil
}

func (r *DocumentRepository) FindBySlug(ctx context.Context, slug string) (*models.Document, error) {
	var doc models.Document
	if err := r.collection.FindOne(ctx, bson.M{"slug": slug}).Decode(&doc); err != nil {
		return nil, translateError(err)
	}
	return &doc, nil
}

func (r *DocumentRepository) FindAll(ctx context.Context) ([]*models.Document, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []*models.Document
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode documents: %w", err)
	}
	return docs, nil
}

// Update rewrites every mutable field of doc. The slug is never part of the update.
func (r *DocumentRepository) Update(ctx context.Context, doc *models.Document) (*models.Document, error) {
	doc.UpdatedAt = time.Now().Unix()

	update := bson.M{
		"$set": bson.M{
			"title":       doc.Title,
			"description": doc.Description,
			"tier":        doc.Tier,
			"visibility":  doc.Visibility,
			"content":     doc.Content,
			"contentRef":  doc.ContentRef,
			"icon":        doc.Icon,
			"updatedAt":   doc.UpdatedAt,
		},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated models.Document
	if err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": doc.ID}, update, opts).Decode(&updated); err != nil {
		return nil, fmt.Errorf("failed to update document: %w", translateError(err))
	}
	return &updated, nil
}

func (r *DocumentRepository) Delete(ctx context.Context, id string) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *DocumentRepository) CreateIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "slug", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "createdAt", Value: -1}},
		},
	}

	if _, err := r.collection.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("failed to create document indexes: %w", err)
	}
	return nil
}
