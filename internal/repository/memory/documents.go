package memory

import (
	"context"
	"sync"
	"time"

	"dataroom-service/internal/models"
	"dataroom-service/internal/repository"

	"github.com/google/uuid"
)

type DocumentRepository struct {
	mu   sync.RWMutex
	byID map[string]*models.Document
}

func NewDocumentRepository() *DocumentRepository {
	return &DocumentRepository{byID: make(map[string]*models.Document)}
}

func (r *DocumentRepository) Create(ctx context.Context, doc *models.Document) (*models.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.slugTaken(doc.Slug, "") {
		return nil, repository.ErrDuplicateKey
	}
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	if _, exists := r.byID[doc.ID]; exists {
		return nil, repository.ErrDuplicateKey
	}
	currentTime := time.Now().Unix()
	if doc.CreatedAt == 0 {
		doc.CreatedAt = currentTime
	}
	doc.UpdatedAt = currentTime

	stored := *doc
	r.byID[doc.ID] = &stored
	return copyDocument(&stored), nil
}

func (r *DocumentRepository) UpsertBySlug(ctx context.Context, doc *models.Document) (*models.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	currentTime := time.Now().Unix()
	for _, existing := range r.byID {
		if existing.Slug == doc.Slug {
			applyMutable(existing, doc)
			existing.UpdatedAt = currentTime
			return copyDocument(existing), nil
		}
	}

	stored := *doc
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}
	stored.CreatedAt = currentTime
	stored.UpdatedAt = currentTime
	r.byID[stored.ID] = &stored
	return copyDocument(&stored), nil
}

func (r *DocumentRepository) FindByID(ctx context.Context, id string) (*models.Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	doc, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return copyDocument(doc), nil
}

func (r *DocumentRepository) FindBySlug(ctx context.Context, slug string) (*models.Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, doc := range r.byID {
		if doc.Slug == slug {
			return copyDocument(doc), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *DocumentRepository) FindAll(ctx context.Context) ([]*models.Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	docs := make([]*models.Document, 0, len(r.byID))
	for _, doc := range r.byID {
		docs = append(docs, copyDocument(doc))
	}
	newestFirst(docs, func(d *models.Document) int64 { return d.CreatedAt })
	return docs, nil
}

func (r *DocumentRepository) Update(ctx context.Context, doc *models.Document) (*models.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.byID[doc.ID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	applyMutable(existing, doc)
	existing.UpdatedAt = time.Now().Unix()
	return copyDocument(existing), nil
}

func (r *DocumentRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *DocumentRepository) slugTaken(slug, exceptID string) bool {
	for id, doc := range r.byID {
		if doc.Slug == slug && id != exceptID {
			return true
		}
	}
	return false
}

func applyMutable(dst, src *models.Document) {
	dst.Title = src.Title
	dst.Description = src.Description
	dst.Tier = src.Tier
	dst.Visibility = append([]string(nil), src.Visibility...)
	dst.Content = src.Content
	dst.ContentRef = src.ContentRef
	dst.Icon = src.Icon
}

func copyDocument(doc *models.Document) *models.Document {
	cp := *doc
	cp.Visibility = append([]string(nil), doc.Visibility...)
	return &cp
}
