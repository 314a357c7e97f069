package events

import (
	"encoding/json"
	"time"

	"dataroom-service/internal/models"

	"github.com/google/uuid"
)

type EventType string

const (
	AccessRequested EventType = "access.requested"
	AccessApproved  EventType = "access.approved"
	AccessRevoked   EventType = "access.revoked"

	InviteCreated EventType = "invite.created"
	InviteClaimed EventType = "invite.claimed"

	DocumentCreated EventType = "document.created"
	DocumentUpdated EventType = "document.updated"
	DocumentDeleted EventType = "document.deleted"
)

type BaseEvent struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Timestamp int64     `json:"timestamp"`
	Version   string    `json:"version"`
}

func newBaseEvent(eventType EventType) BaseEvent {
	return BaseEvent{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now().Unix(),
		Version:   "1.0",
	}
}

// AccessEvent is emitted after every write to an access request.
type AccessEvent struct {
	BaseEvent
	RequestID      string              `json:"request_id"`
	UserID         string              `json:"user_id"`
	DocumentID     string              `json:"document_id"`
	DocumentTitle  string              `json:"document_title,omitempty"`
	Status         models.AccessStatus `json:"status"`
	PreviousStatus models.AccessStatus `json:"previous_status"`
	ActorID        string              `json:"actor_id"`
}

func NewAccessEvent(req *models.AccessRequest, previous models.AccessStatus, actorID string) *AccessEvent {
	eventType := AccessRequested
	switch req.Status {
	case models.AccessStatusApproved:
		eventType = AccessApproved
	case models.AccessStatusRevoked:
		eventType = AccessRevoked
	}
	return &AccessEvent{
		BaseEvent:      newBaseEvent(eventType),
		RequestID:      req.ID,
		UserID:         req.UserID,
		DocumentID:     req.DocumentID,
		Status:         req.Status,
		PreviousStatus: previous,
		ActorID:        actorID,
	}
}

func (e *AccessEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

type InviteEvent struct {
	BaseEvent
	DocumentID string `json:"document_id"`
	Email      string `json:"email"`
	ActorID    string `json:"actor_id"`
}

func NewInviteEvent(eventType EventType, invite *models.Invite, actorID string) *InviteEvent {
	return &InviteEvent{
		BaseEvent:  newBaseEvent(eventType),
		DocumentID: invite.DocumentID,
		Email:      invite.Email,
		ActorID:    actorID,
	}
}

type DocumentEvent struct {
	BaseEvent
	DocumentID string      `json:"document_id"`
	Slug       string      `json:"slug"`
	Tier       models.Tier `json:"tier"`
	ActorID    string      `json:"actor_id"`
}

func NewDocumentEvent(eventType EventType, doc *models.Document, actorID string) *DocumentEvent {
	return &DocumentEvent{
		BaseEvent:  newBaseEvent(eventType),
		DocumentID: doc.ID,
		Slug:       doc.Slug,
		Tier:       doc.Tier,
		ActorID:    actorID,
	}
}
