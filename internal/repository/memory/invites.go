package memory

import (
	"context"
	"sync"

	"dataroom-service/internal/models"
	"dataroom-service/internal/repository"
)

type InviteRepository struct {
	mu      sync.Mutex
	byToken map[string]*models.Invite
}

func NewInviteRepository() *InviteRepository {
	return &InviteRepository{byToken: make(map[string]*models.Invite)}
}

func (r *InviteRepository) Create(ctx context.Context, invite *models.Invite) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byToken[invite.Token]; exists {
		return repository.ErrDuplicateKey
	}
	stored := *invite
	r.byToken[invite.Token] = &stored
	return nil
}

func (r *InviteRepository) FindByToken(ctx context.Context, token string) (*models.Invite, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	invite, ok := r.byToken[token]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *invite
	return &cp, nil
}

func (r *InviteRepository) Claim(ctx context.Context, token, userID string, now int64) (*models.Invite, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	invite, ok := r.byToken[token]
	if !ok || !invite.IsUsable(now) {
		return nil, repository.ErrConditionNotMet
	}
	invite.Claimed = true
	invite.ClaimedBy = userID
	cp := *invite
	return &cp, nil
}

func (r *InviteRepository) DeleteByDocument(ctx context.Context, documentID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for token, invite := range r.byToken {
		if invite.DocumentID == documentID {
			delete(r.byToken, token)
		}
	}
	return nil
}
