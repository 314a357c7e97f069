package repository

import (
	"context"
	"errors"

	"dataroom-service/internal/models"
)

var (
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateKey is returned when a unique index rejects a write.
	ErrDuplicateKey = errors.New("duplicate key")
	// ErrConditionNotMet is returned when a conditional write matched no record.
	ErrConditionNotMet = errors.New("write condition not met")
)

type DocumentStore interface {
	Create(ctx context.Context, doc *models.Document) (*models.Document, error)
	// UpsertBySlug inserts doc or replaces the mutable fields of the document
	// holding the same slug.
	UpsertBySlug(ctx context.Context, doc *models.Document) (*models.Document, error)
	FindByID(ctx context.Context, id string) (*models.Document, error)
	FindBySlug(ctx context.Context, slug string) (*models.Document, error)
	FindAll(ctx context.Context) ([]*models.Document, error)
	Update(ctx context.Context, doc *models.Document) (*models.Document, error)
	Delete(ctx context.Context, id string) error
}

type AccessRequestStore interface {
	// UpsertPending atomically inserts req unless a record for the same
	// (user, document) pair exists. It returns the stored record and whether
	// it was created by this call.
	UpsertPending(ctx context.Context, req *models.AccessRequest) (*models.AccessRequest, bool, error)
	// TransitionStatus sets the status of request id to target only if its
	// current status is one of from and its NDA is signed. It returns the
	// record as it was before the write.
	TransitionStatus(ctx context.Context, id string, from []models.AccessStatus, target models.AccessStatus, now int64) (*models.AccessRequest, error)
	FindByID(ctx context.Context, id string) (*models.AccessRequest, error)
	FindByUserAndDocument(ctx context.Context, userID, documentID string) (*models.AccessRequest, error)
	FindByUser(ctx context.Context, userID string) ([]*models.AccessRequest, error)
	// List returns requests newest first, filtered by status when it is not empty.
	List(ctx context.Context, status models.AccessStatus) ([]*models.AccessRequest, error)
	DeleteByDocument(ctx context.Context, documentID string) error
}

type InviteStore interface {
	Create(ctx context.Context, invite *models.Invite) error
	FindByToken(ctx context.Context, token string) (*models.Invite, error)
	// Claim marks the invite claimed by userID if it is unclaimed and not
	// expired at now, in a single conditional write.
	Claim(ctx context.Context, token, userID string, now int64) (*models.Invite, error)
	DeleteByDocument(ctx context.Context, documentID string) error
}

type NotificationStore interface {
	Create(ctx context.Context, n *models.Notification) error
	FindByUser(ctx context.Context, userID string, limit int, unreadOnly bool) ([]*models.Notification, error)
	CountUnread(ctx context.Context, userID string) (int64, error)
	MarkRead(ctx context.Context, userID, id string) error
	MarkAllRead(ctx context.Context, userID string) (int64, error)
}

// Repositories groups the stores the service layer is built on.
type Repositories struct {
	Documents     DocumentStore
	Requests      AccessRequestStore
	Invites       InviteStore
	Notifications NotificationStore
}
