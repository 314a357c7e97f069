package memory

import (
	"context"
	"slices"
	"sync"

	"dataroom-service/internal/models"
	"dataroom-service/internal/repository"
)

type pairKey struct {
	userID     string
	documentID string
}

type AccessRequestRepository struct {
	mu     sync.RWMutex
	byID   map[string]*models.AccessRequest
	byPair map[pairKey]string
}

func NewAccessRequestRepository() *AccessRequestRepository {
	return &AccessRequestRepository{
		byID:   make(map[string]*models.AccessRequest),
		byPair: make(map[pairKey]string),
	}
}

func (r *AccessRequestRepository) UpsertPending(ctx context.Context, req *models.AccessRequest) (*models.AccessRequest, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := pairKey{req.UserID, req.DocumentID}
	if id, ok := r.byPair[key]; ok {
		existing := *r.byID[id]
		return &existing, false, nil
	}
	if _, exists := r.byID[req.ID]; exists {
		return nil, false, repository.ErrDuplicateKey
	}

	stored := *req
	r.byID[stored.ID] = &stored
	r.byPair[key] = stored.ID
	created := stored
	return &created, true, nil
}

func (r *AccessRequestRepository) TransitionStatus(ctx context.Context, id string, from []models.AccessStatus, target models.AccessStatus, now int64) (*models.AccessRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if !slices.Contains(from, stored.Status) || stored.NDASignedAt <= 0 {
		return nil, repository.ErrConditionNotMet
	}

	before := *stored
	stored.Status = target
	stored.UpdatedAt = now
	return &before, nil
}

func (r *AccessRequestRepository) FindByID(ctx context.Context, id string) (*models.AccessRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *stored
	return &cp, nil
}

func (r *AccessRequestRepository) FindByUserAndDocument(ctx context.Context, userID, documentID string) (*models.AccessRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byPair[pairKey{userID, documentID}]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *r.byID[id]
	return &cp, nil
}

func (r *AccessRequestRepository) FindByUser(ctx context.Context, userID string) ([]*models.AccessRequest, error) {
	return r.filter(func(req *models.AccessRequest) bool { return req.UserID == userID }), nil
}

func (r *AccessRequestRepository) List(ctx context.Context, status models.AccessStatus) ([]*models.AccessRequest, error) {
	return r.filter(func(req *models.AccessRequest) bool { return status == "" || req.Status == status }), nil
}

func (r *AccessRequestRepository) DeleteByDocument(ctx context.Context, documentID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, req := range r.byID {
		if req.DocumentID == documentID {
			delete(r.byPair, pairKey{req.UserID, req.DocumentID})
			delete(r.byID, id)
		}
	}
	return nil
}

// Count returns the number of stored requests.
func (r *AccessRequestRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}

func (r *AccessRequestRepository) filter(keep func(*models.AccessRequest) bool) []*models.AccessRequest {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*models.AccessRequest
	for _, req := range r.byID {
		if keep(req) {
			cp := *req
			out = append(out, &cp)
		}
	}
	newestFirst(out, func(r *models.AccessRequest) int64 { return r.CreatedAt })
	return out
}
