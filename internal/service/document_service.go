package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"

	"dataroom-service/internal/access"
	"dataroom-service/internal/events"
	"dataroom-service/internal/models"
	"dataroom-service/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

const maxSlugLength = 100

// DocumentCache keeps documents by slug in front of the document store.
type DocumentCache interface {
	Get(ctx context.Context, slug string) (*models.Document, error)
	Set(ctx context.Context, doc *models.Document) error
	Invalidate(ctx context.Context, slug string) error
}

// ContentStore fetches document bodies kept outside the document record.
type ContentStore interface {
	Fetch(ctx context.Context, ref string) (string, error)
}

type DocumentService struct {
	documents repository.DocumentStore
	requests  repository.AccessRequestStore
	invites   repository.InviteStore
	policy    *access.Policy
	publisher events.Publisher
	cache     DocumentCache
	content   ContentStore
	logger    *zap.Logger
}

// NewDocumentService builds the document registry service. cache and content
// are optional and may be nil.
func NewDocumentService(repos *repository.Repositories, policy *access.Policy, publisher events.Publisher, cache DocumentCache, content ContentStore, logger *zap.Logger) *DocumentService {
	return &DocumentService{
		documents: repos.Documents,
		requests:  repos.Requests,
		invites:   repos.Invites,
		policy:    policy,
		publisher: publisher,
		cache:     cache,
		content:   content,
		logger:    logger,
	}
}

// Admin operations

func (s *DocumentService) Create(ctx context.Context, admin *models.Identity, req *models.CreateDocumentRequest) (*models.Document, error) {
	if err := s.policy.RequireAdministrator(admin); err != nil {
		return nil, err
	}

	doc, err := newDocument(req)
	if err != nil {
		return nil, err
	}

	created, err := s.documents.Create(ctx, doc)
	if errors.Is(err, repository.ErrDuplicateKey) {
		return nil, fmt.Errorf("%w: slug %q is already in use", access.ErrConflict, doc.Slug)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create document: %w", err)
	}

	s.logger.Info("Document created", zap.String("slug", created.Slug), zap.String("admin_id", admin.UserID))
	s.publish(ctx, events.DocumentCreated, created, admin.UserID)
	return created, nil
}

// Update applies a partial update. The slug is immutable once created.
func (s *DocumentService) Update(ctx context.Context, admin *models.Identity, req *models.UpdateDocumentRequest) (*models.Document, error) {
	if err := s.policy.RequireAdministrator(admin); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.ID) == "" {
		return nil, fmt.Errorf("%w: id is required", access.ErrValidation)
	}

	doc, err := s.documents.FindByID(ctx, req.ID)
	if err != nil {
		return nil, notFound(err, "document")
	}

	if req.Slug != nil && *req.Slug != doc.Slug {
		return nil, fmt.Errorf("%w: slug cannot be changed", access.ErrValidation)
	}
	if req.Title != nil {
		doc.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		doc.Description = *req.Description
	}
	if req.Tier != nil {
		doc.Tier = *req.Tier
	}
	if req.Visibility != nil {
		doc.Visibility = normalizeVisibility(*req.Visibility)
	}
	if req.Content != nil {
		doc.Content = *req.Content
	}
	if req.ContentRef != nil {
		doc.ContentRef = strings.TrimSpace(*req.ContentRef)
	}
	if req.Icon != nil {
		doc.Icon = *req.Icon
	}
	if err := validateDocument(doc); err != nil {
		return nil, err
	}

	updated, err := s.documents.Update(ctx, doc)
	if err != nil {
		return nil, notFound(err, "document")
	}

	s.invalidate(ctx, updated.Slug)
	s.publish(ctx, events.DocumentUpdated, updated, admin.UserID)
	return updated, nil
}

// Delete removes a document together with its access requests and invites.
func (s *DocumentService) Delete(ctx context.Context, admin *models.Identity, id string) error {
	if err := s.policy.RequireAdministrator(admin); err != nil {
		return err
	}

	doc, err := s.documents.FindByID(ctx, id)
	if err != nil {
		return notFound(err, "document")
	}

	if err := s.requests.DeleteByDocument(ctx, doc.ID); err != nil {
		return fmt.Errorf("failed to delete access requests: %w", err)
	}
	if err := s.invites.DeleteByDocument(ctx, doc.ID); err != nil {
		return fmt.Errorf("failed to delete invites: %w", err)
	}
	if err := s.documents.Delete(ctx, doc.ID); err != nil {
		return notFound(err, "document")
	}

	s.logger.Info("Document deleted", zap.String("slug", doc.Slug), zap.String("admin_id", admin.UserID))
	s.invalidate(ctx, doc.Slug)
	s.publish(ctx, events.DocumentDeleted, doc, admin.UserID)
	return nil
}

// AdminList returns every document including content.
func (s *DocumentService) AdminList(ctx context.Context, admin *models.Identity) ([]*models.Document, error) {
	if err := s.policy.RequireAdministrator(admin); err != nil {
		return nil, err
	}
	docs, err := s.documents.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	return docs, nil
}

// Seed upserts documents by slug. It runs at startup, outside any request.
func (s *DocumentService) Seed(ctx context.Context, reqs []*models.CreateDocumentRequest) (int, error) {
	count := 0
	for i, req := range reqs {
		doc, err := newDocument(req)
		if err != nil {
			return count, fmt.Errorf("seed document %d: %w", i, err)
		}
		stored, err := s.documents.UpsertBySlug(ctx, doc)
		if err != nil {
			return count, fmt.Errorf("failed to seed document %s: %w", doc.Slug, err)
		}
		s.invalidate(ctx, stored.Slug)
		count++
	}
	return count, nil
}

// Caller operations

// List returns the documents the caller may see, with content stripped and
// the caller's effective status attached.
func (s *DocumentService) List(ctx context.Context, identity *models.Identity) ([]*models.DocumentView, error) {
	docs, err := s.documents.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}

	own := make(map[string]*models.AccessRequest)
	if identity != nil && identity.UserID != "" && !s.policy.IsAdministrator(identity) {
		requests, err := s.requests.FindByUser(ctx, identity.UserID)
		if err != nil {
			return nil, fmt.Errorf("failed to load access requests: %w", err)
		}
		for _, req := range requests {
			own[req.DocumentID] = req
		}
	}

	views := make([]*models.DocumentView, 0, len(docs))
	for _, doc := range docs {
		req := own[doc.ID]
		if !s.policy.CanList(identity, doc, req) {
			continue
		}
		views = append(views, &models.DocumentView{
			Document:     doc.Redacted(),
			AccessStatus: s.policy.Resolve(identity, doc, req),
		})
	}
	return views, nil
}

// Get returns a document's metadata. Documents the caller may not list are
// reported as missing.
func (s *DocumentService) Get(ctx context.Context, identity *models.Identity, slug string) (*models.DocumentView, error) {
	doc, err := s.findBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	req, err := requestFor(ctx, s.requests, s.policy, identity, doc)
	if err != nil {
		return nil, err
	}
	if !s.policy.CanList(identity, doc, req) {
		return nil, fmt.Errorf("document %w", access.ErrNotFound)
	}
	return &models.DocumentView{
		Document:     doc.Redacted(),
		AccessStatus: s.policy.Resolve(identity, doc, req),
	}, nil
}

// Content serves a document body only when the caller's effective status is approved.
func (s *DocumentService) Content(ctx context.Context, identity *models.Identity, slug string) (*models.DocumentContent, error) {
	doc, err := s.findBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	req, err := requestFor(ctx, s.requests, s.policy, identity, doc)
	if err != nil {
		return nil, err
	}

	if err := access.AuthorizeContent(identity, s.policy.Resolve(identity, doc, req)); err != nil {
		contentReads.WithLabelValues("denied").Inc()
		return nil, err
	}

	body := doc.Content
	if doc.ContentRef != "" {
		if s.content == nil {
			return nil, fmt.Errorf("document %s references external content but no content store is configured", doc.Slug)
		}
		body, err = s.content.Fetch(ctx, doc.ContentRef)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch content for %s: %w", doc.Slug, err)
		}
	}

	contentReads.WithLabelValues("served").Inc()
	return &models.DocumentContent{Slug: doc.Slug, Title: doc.Title, Content: body}, nil
}

func (s *DocumentService) findBySlug(ctx context.Context, slug string) (*models.Document, error) {
	if s.cache != nil {
		doc, err := s.cache.Get(ctx, slug)
		if err == nil {
			return doc, nil
		}
		if !errors.Is(err, repository.ErrNotFound) {
			s.logger.Warn("Document cache read failed", zap.String("slug", slug), zap.Error(err))
		}
	}

	doc, err := s.documents.FindBySlug(ctx, slug)
	if err != nil {
		return nil, notFound(err, "document")
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, doc); err != nil {
			s.logger.Warn("Document cache write failed", zap.String("slug", slug), zap.Error(err))
		}
	}
	return doc, nil
}

func (s *DocumentService) invalidate(ctx context.Context, slug string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, slug); err != nil {
		s.logger.Warn("Document cache invalidation failed", zap.String("slug", slug), zap.Error(err))
	}
}

func (s *DocumentService) publish(ctx context.Context, eventType events.EventType, doc *models.Document, actorID string) {
	if err := s.publisher.PublishDocumentEvent(ctx, events.NewDocumentEvent(eventType, doc, actorID)); err != nil {
		s.logger.Warn("Failed to publish document event", zap.String("slug", doc.Slug), zap.Error(err))
	}
}

func newDocument(req *models.CreateDocumentRequest) (*models.Document, error) {
	doc := &models.Document{
		ID:          uuid.NewString(),
		Slug:        strings.TrimSpace(req.Slug),
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Tier:        req.Tier,
		Visibility:  normalizeVisibility(req.Visibility),
		Content:     req.Content,
		ContentRef:  strings.TrimSpace(req.ContentRef),
		Icon:        req.Icon,
	}
	if doc.Tier == "" {
		doc.Tier = models.TierConfidential
	}
	if len(doc.Visibility) == 0 {
		doc.Visibility = []string{access.AdminRole}
	}
	if err := ValidateSlug(doc.Slug); err != nil {
		return nil, err
	}
	if err := validateDocument(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// ValidateSlug accepts lowercase letters, digits and single hyphens.
func ValidateSlug(slug string) error {
	if slug == "" || len(slug) > maxSlugLength || !slugPattern.MatchString(slug) {
		return fmt.Errorf("%w: slug must be 1-%d lowercase letters, digits or single hyphens", access.ErrValidation, maxSlugLength)
	}
	return nil
}

func validateDocument(doc *models.Document) error {
	if doc.Title == "" {
		return fmt.Errorf("%w: title is required", access.ErrValidation)
	}
	if !doc.Tier.IsValid() {
		return fmt.Errorf("%w: tier must be one of: public, confidential, restricted", access.ErrValidation)
	}
	return nil
}

func normalizeVisibility(roles []string) []string {
	out := make([]string, 0, len(roles))
	for _, role := range roles {
		role = strings.ToLower(strings.TrimSpace(role))
		if role != "" && !slices.Contains(out, role) {
			out = append(out, role)
		}
	}
	return out
}
