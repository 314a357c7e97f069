package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.uber.org/zap"
)

type indexer interface {
	CreateIndexes(ctx context.Context) error
}

// NewMongoRepositories builds every store on db and ensures their indexes.
// The unique indexes are what enforce one access request per (user, document)
// and one document per slug, so a failure here is returned.
func NewMongoRepositories(ctx context.Context, db *mongo.Database, logger *zap.Logger) (*Repositories, error) {
	documents := NewDocumentRepository(db)
	requests := NewAccessRequestRepository(db)
	invites := NewInviteRepository(db)
	notifications := NewNotificationRepository(db)

	for _, repo := range []indexer{documents, requests, invites, notifications} {
		if err := repo.CreateIndexes(ctx); err != nil {
			return nil, err
		}
	}
	logger.Info("MongoDB indexes ensured", zap.String("database", db.Name()))

	return &Repositories{
		Documents:     documents,
		Requests:      requests,
		Invites:       invites,
		Notifications: notifications,
	}, nil
}
