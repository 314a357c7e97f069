package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"dataroom-service/internal/access"
	"dataroom-service/internal/events"
	"dataroom-service/internal/models"
	"dataroom-service/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type AccessService struct {
	documents repository.DocumentStore
	requests  repository.AccessRequestStore
	policy    *access.Policy
	publisher events.Publisher
	relay     events.Relay
	logger    *zap.Logger
	now       func() time.Time
}

// NewAccessService wires the access lifecycle. relay may be nil when no
// realtime feed is configured.
func NewAccessService(repos *repository.Repositories, policy *access.Policy, publisher events.Publisher, relay events.Relay, logger *zap.Logger) *AccessService {
	return &AccessService{
		documents: repos.Documents,
		requests:  repos.Requests,
		policy:    policy,
		publisher: publisher,
		relay:     relay,
		logger:    logger,
		now:       time.Now,
	}
}

// RequestAccess records the caller's NDA signature for a document, moving the
// pair from none to pending. Signing again returns the existing status.
func (s *AccessService) RequestAccess(ctx context.Context, identity *models.Identity, body *models.AccessRequestBody) (*models.AccessStatusView, error) {
	if identity == nil || identity.UserID == "" {
		return nil, access.ErrUnauthenticated
	}
	documentID := strings.TrimSpace(body.DocumentID)
	if documentID == "" {
		return nil, fmt.Errorf("%w: document_id is required", access.ErrValidation)
	}

	doc, err := s.documents.FindByID(ctx, documentID)
	if err != nil {
		return nil, notFound(err, "document")
	}

	return s.signNDA(ctx, identity, doc, body.NDASignature)
}

func (s *AccessService) signNDA(ctx context.Context, identity *models.Identity, doc *models.Document, sig models.NDASignature) (*models.AccessStatusView, error) {
	if s.policy.Bypass(identity, doc) {
		accessRequests.WithLabelValues("bypass").Inc()
		return &models.AccessStatusView{DocumentID: doc.ID, Status: models.AccessStatusApproved}, nil
	}

	sig.SignerName = strings.TrimSpace(sig.SignerName)
	sig.SignerEntity = strings.TrimSpace(sig.SignerEntity)
	sig.SignerTitle = strings.TrimSpace(sig.SignerTitle)
	if sig.SignerName == "" {
		sig.SignerName = identity.Email
	}

	pending := access.NewPendingRequest(uuid.NewString(), identity, doc.ID, sig, s.now().Unix())
	stored, created, err := s.requests.UpsertPending(ctx, pending)
	if err != nil {
		return nil, fmt.Errorf("failed to record NDA signature: %w", err)
	}

	if !created {
		accessRequests.WithLabelValues("existing").Inc()
		return statusView(stored), nil
	}

	accessRequests.WithLabelValues("created").Inc()
	s.logger.Info("Access requested",
		zap.String("request_id", stored.ID),
		zap.String("user_id", stored.UserID),
		zap.String("document", doc.Slug),
	)
	s.announce(ctx, stored, doc, models.AccessStatusNone, identity.UserID)
	return statusView(stored), nil
}

// Status resolves the caller's effective status for a document. Anonymous
// callers are allowed and see approved only for public documents.
func (s *AccessService) Status(ctx context.Context, identity *models.Identity, documentID string) (*models.AccessStatusView, error) {
	doc, err := s.documents.FindByID(ctx, documentID)
	if err != nil {
		return nil, notFound(err, "document")
	}

	req, err := requestFor(ctx, s.requests, s.policy, identity, doc)
	if err != nil {
		return nil, err
	}

	view := &models.AccessStatusView{
		DocumentID: doc.ID,
		Status:     s.policy.Resolve(identity, doc, req),
	}
	if req != nil {
		view.NDASignedAt = req.NDASignedAt
	}
	return view, nil
}

// UpdateStatus applies an administrator transition to approved or revoked.
// Re-applying the current status succeeds without emitting an event.
func (s *AccessService) UpdateStatus(ctx context.Context, admin *models.Identity, body *models.UpdateAccessBody) (*models.AccessRequest, error) {
	if err := s.policy.RequireAdministrator(admin); err != nil {
		return nil, err
	}
	if strings.TrimSpace(body.RequestID) == "" {
		return nil, fmt.Errorf("%w: requestId is required", access.ErrValidation)
	}
	if !access.IsAdminTarget(body.Status) {
		return nil, access.ErrInvalidStatus
	}

	currentTime := s.now().Unix()
	before, err := s.requests.TransitionStatus(ctx, body.RequestID, access.SourcesFor(body.Status), body.Status, currentTime)
	switch {
	case errors.Is(err, repository.ErrConditionNotMet):
		current, findErr := s.requests.FindByID(ctx, body.RequestID)
		if findErr != nil {
			return nil, notFound(findErr, "access request")
		}
		if vErr := access.ValidateAdminTransition(current, body.Status); vErr != nil {
			return nil, vErr
		}
		return nil, fmt.Errorf("%w: access request changed concurrently", access.ErrConflict)
	case err != nil:
		return nil, notFound(err, "access request")
	}

	after := *before
	after.Status = body.Status
	after.UpdatedAt = currentTime

	if before.Status == after.Status {
		return &after, nil
	}

	accessTransitions.WithLabelValues(string(before.Status), string(after.Status)).Inc()
	s.logger.Info("Access status changed",
		zap.String("request_id", after.ID),
		zap.String("user_id", after.UserID),
		zap.String("from", string(before.Status)),
		zap.String("to", string(after.Status)),
		zap.String("admin_id", admin.UserID),
	)

	var doc *models.Document
	if found, err := s.documents.FindByID(ctx, after.DocumentID); err == nil {
		doc = found
	}
	s.announce(ctx, &after, doc, before.Status, admin.UserID)
	return &after, nil
}

// ListRequests returns every access request newest first, joined with its
// document. status filters the list when it is not empty.
func (s *AccessService) ListRequests(ctx context.Context, admin *models.Identity, status models.AccessStatus) ([]*models.AccessRequestView, error) {
	if err := s.policy.RequireAdministrator(admin); err != nil {
		return nil, err
	}
	switch status {
	case "", models.AccessStatusPending, models.AccessStatusApproved, models.AccessStatusRevoked:
	default:
		return nil, fmt.Errorf("%w: unknown status filter %q", access.ErrValidation, status)
	}

	requests, err := s.requests.List(ctx, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list access requests: %w", err)
	}
	docs, err := s.documents.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}

	byID := make(map[string]*models.Document, len(docs))
	for _, doc := range docs {
		byID[doc.ID] = doc
	}

	views := make([]*models.AccessRequestView, 0, len(requests))
	for _, req := range requests {
		view := &models.AccessRequestView{AccessRequest: req}
		if doc, ok := byID[req.DocumentID]; ok {
			view.Document = doc.Summary()
		}
		views = append(views, view)
	}
	return views, nil
}

// announce publishes an access change to the event bus and the realtime feed.
// Both are best effort: the write has already happened.
func (s *AccessService) announce(ctx context.Context, req *models.AccessRequest, doc *models.Document, previous models.AccessStatus, actorID string) {
	event := events.NewAccessEvent(req, previous, actorID)
	if doc != nil {
		event.DocumentTitle = doc.Title
	}

	if err := s.publisher.PublishAccessEvent(ctx, event); err != nil {
		s.logger.Warn("Failed to publish access event", zap.String("request_id", req.ID), zap.Error(err))
	}
	if s.relay != nil {
		if err := s.relay.NotifyAccessChange(ctx, event); err != nil {
			s.logger.Warn("Failed to relay access change", zap.String("user_id", req.UserID), zap.Error(err))
		}
	}
}

func statusView(req *models.AccessRequest) *models.AccessStatusView {
	return &models.AccessStatusView{
		DocumentID:  req.DocumentID,
		Status:      req.Status,
		NDASignedAt: req.NDASignedAt,
	}
}
