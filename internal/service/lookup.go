package service

import (
	"context"
	"errors"
	"fmt"

	"dataroom-service/internal/access"
	"dataroom-service/internal/models"
	"dataroom-service/internal/repository"
)

// requestFor loads the caller's access request for doc. It skips the store
// when the policy already grants access, and returns nil when no record exists.
func requestFor(ctx context.Context, store repository.AccessRequestStore, policy *access.Policy, identity *models.Identity, doc *models.Document) (*models.AccessRequest, error) {
	if identity == nil || identity.UserID == "" || policy.Bypass(identity, doc) {
		return nil, nil
	}
	req, err := store.FindByUserAndDocument(ctx, identity.UserID, doc.ID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load access request: %w", err)
	}
	return req, nil
}

// notFound turns a store miss into the domain error and wraps anything else.
func notFound(err error, what string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%s %w", what, access.ErrNotFound)
	}
	return fmt.Errorf("failed to load %s: %w", what, err)
}
