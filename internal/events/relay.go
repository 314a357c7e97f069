package events

import (
	"context"
	"fmt"
)

// Relay pushes access changes to the realtime change feed that connected
// clients subscribe to. Delivery is the relay's concern; callers only publish.
type Relay interface {
	NotifyAccessChange(ctx context.Context, event *AccessEvent) error
}

// ChannelPublisher is the pub/sub primitive a relay is built on.
type ChannelPublisher interface {
	Publish(ctx context.Context, channel string, payload []byte) error
}

// UserChannel is the pub/sub channel carrying a user's access changes.
func UserChannel(userID string) string {
	return "dataroom:access:" + userID
}

type PubSubRelay struct {
	pubsub ChannelPublisher
}

func NewPubSubRelay(pubsub ChannelPublisher) *PubSubRelay {
	return &PubSubRelay{pubsub: pubsub}
}

func (r *PubSubRelay) NotifyAccessChange(ctx context.Context, event *AccessEvent) error {
	payload, err := event.ToJSON()
	if err != nil {
		return err
	}
	if err := r.pubsub.Publish(ctx, UserChannel(event.UserID), payload); err != nil {
		return fmt.Errorf("failed to publish access change for user %s: %w", event.UserID, err)
	}
	return nil
}
