// Package memory implements the repository stores in process memory. It backs
// STORE_DRIVER=memory and the service tests, and enforces the same uniqueness
// and conditional-write rules as the MongoDB indexes under a mutex.
package memory

import (
	"cmp"
	"slices"

	"dataroom-service/internal/repository"
)

func NewRepositories() *repository.Repositories {
	return &repository.Repositories{
		Documents:     NewDocumentRepository(),
		Requests:      NewAccessRequestRepository(),
		Invites:       NewInviteRepository(),
		Notifications: NewNotificationRepository(),
	}
}

func newestFirst[T any](items []*T, createdAt func(*T) int64) {
	slices.SortStableFunc(items, func(a, b *T) int {
		return cmp.Compare(createdAt(b), createdAt(a))
	})
}
