package memory

import (
	"context"
	"sync"

	"dataroom-service/internal/models"
	"dataroom-service/internal/repository"
)

type NotificationRepository struct {
	mu    sync.Mutex
	items map[string]*models.Notification
}

func NewNotificationRepository() *NotificationRepository {
	return &NotificationRepository{items: make(map[string]*models.Notification)}
}

func (r *NotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[n.ID]; exists {
		return repository.ErrDuplicateKey
	}
	stored := *n
	r.items[n.ID] = &stored
	return nil
}

func (r *NotificationRepository) FindByUser(ctx context.Context, userID string, limit int, unreadOnly bool) ([]*models.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*models.Notification
	for _, n := range r.items {
		if n.UserID != userID || (unreadOnly && n.Read) {
			continue
		}
		cp := *n
		out = append(out, &cp)
	}
	newestFirst(out, func(n *models.Notification) int64 { return n.CreatedAt })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *NotificationRepository) CountUnread(ctx context.Context, userID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var count int64
	for _, n := range r.items {
		if n.UserID == userID && !n.Read {
			count++
		}
	}
	return count, nil
}

func (r *NotificationRepository) MarkRead(ctx context.Context, userID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	n, ok := r.items[id]
	if !ok || n.UserID != userID {
		return repository.ErrNotFound
	}
	n.Read = true
	return nil
}

func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var modified int64
	for _, n := range r.items {
		if n.UserID == userID && !n.Read {
			n.Read = true
			modified++
		}
	}
	return modified, nil
}
