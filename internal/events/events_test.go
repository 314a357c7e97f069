package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"dataroom-service/internal/models"

	"go.uber.org/zap"
)

type recordingPubSub struct {
	channel string
	payload []byte
	err     error
}

func (r *recordingPubSub) Publish(ctx context.Context, channel string, payload []byte) error {
	r.channel = channel
	r.payload = payload
	return r.err
}

type recordingHandler struct {
	events []*AccessEvent
}

func (h *recordingHandler) HandleAccessEvent(ctx context.Context, event *AccessEvent) error {
	h.events = append(h.events, event)
	return nil
}

func TestNewAccessEventRoutingKey(t *testing.T) {
	testCases := []struct {
		status   models.AccessStatus
		expected EventType
	}{
		{models.AccessStatusPending, AccessRequested},
		{models.AccessStatusApproved, AccessApproved},
		{models.AccessStatusRevoked, AccessRevoked},
	}

	for _, tc := range testCases {
		t.Run(string(tc.status), func(t *testing.T) {
			req := &models.AccessRequest{ID: "r1", UserID: "u1", DocumentID: "d1", Status: tc.status}
			event := NewAccessEvent(req, models.AccessStatusPending, "admin")
			if event.Type != tc.expected {
				t.Errorf("Expected %s, got %s", tc.expected, event.Type)
			}
			if event.ID == "" || event.Timestamp == 0 {
				t.Error("Expected event id and timestamp to be set")
			}
		})
	}
}

func TestPubSubRelayPublishesToUserChannel(t *testing.T) {
	pubsub := &recordingPubSub{}
	relay := NewPubSubRelay(pubsub)
	event := NewAccessEvent(&models.AccessRequest{ID: "r1", UserID: "bob", DocumentID: "d1", Status: models.AccessStatusApproved}, models.AccessStatusPending, "owner")

	if err := relay.NotifyAccessChange(context.Background(), event); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if pubsub.channel != "dataroom:access:bob" {
		t.Errorf("Expected user channel, got %s", pubsub.channel)
	}

	var decoded AccessEvent
	if err := json.Unmarshal(pubsub.payload, &decoded); err != nil {
		t.Fatalf("Payload is not JSON: %v", err)
	}
	if decoded.Status != models.AccessStatusApproved || decoded.RequestID != "r1" {
		t.Errorf("Unexpected payload: %+v", decoded)
	}
}

func TestPubSubRelayWrapsError(t *testing.T) {
	relay := NewPubSubRelay(&recordingPubSub{err: errors.New("connection refused")})
	event := NewAccessEvent(&models.AccessRequest{UserID: "bob", Status: models.AccessStatusPending}, models.AccessStatusNone, "bob")

	if err := relay.NotifyAccessChange(context.Background(), event); err == nil {
		t.Error("Expected publish error to be returned")
	}
}

func TestDisabledPublisherDropsEvents(t *testing.T) {
	publisher, err := NewEventPublisher("", "dataroom.events", zap.NewNop())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	event := NewAccessEvent(&models.AccessRequest{UserID: "bob", Status: models.AccessStatusPending}, models.AccessStatusNone, "bob")

	if err := publisher.PublishAccessEvent(context.Background(), event); err != nil {
		t.Errorf("Expected disabled publisher to succeed, got %v", err)
	}
	if err := publisher.Close(); err != nil {
		t.Errorf("Unexpected close error: %v", err)
	}
}

func TestConsumerProcessMessage(t *testing.T) {
	handler := &recordingHandler{}
	consumer := &NotificationConsumer{handler: handler, logger: zap.NewNop()}

	body, _ := json.Marshal(NewAccessEvent(&models.AccessRequest{ID: "r1", UserID: "bob", Status: models.AccessStatusRevoked}, models.AccessStatusApproved, "owner"))

	if err := consumer.processMessage("access.revoked", body); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if err := consumer.processMessage("document.created", []byte("{}")); err != nil {
		t.Fatalf("Unexpected error for ignored key: %v", err)
	}
	if err := consumer.processMessage("access.approved", []byte("not json")); err == nil {
		t.Error("Expected malformed body to fail")
	}

	if len(handler.events) != 1 || handler.events[0].UserID != "bob" {
		t.Fatalf("Expected one event for bob, got %+v", handler.events)
	}
}
