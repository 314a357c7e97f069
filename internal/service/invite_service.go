package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"dataroom-service/internal/access"
	"dataroom-service/internal/events"
	"dataroom-service/internal/models"
	"dataroom-service/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const DefaultInviteTTL = 7 * 24 * time.Hour

type InviteConfig struct {
	TTL           time.Duration
	PublicBaseURL string
}

type InviteService struct {
	documents repository.DocumentStore
	invites   repository.InviteStore
	access    *AccessService
	policy    *access.Policy
	publisher events.Publisher
	cfg       InviteConfig
	logger    *zap.Logger
	now       func() time.Time
}

func NewInviteService(repos *repository.Repositories, accessService *AccessService, policy *access.Policy, publisher events.Publisher, cfg InviteConfig, logger *zap.Logger) *InviteService {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultInviteTTL
	}
	cfg.PublicBaseURL = strings.TrimRight(cfg.PublicBaseURL, "/")

	return &InviteService{
		documents: repos.Documents,
		invites:   repos.Invites,
		access:    accessService,
		policy:    policy,
		publisher: publisher,
		cfg:       cfg,
		logger:    logger,
		now:       time.Now,
	}
}

// CreateInvite issues a single-use invite link for email to request access to
// a document.
func (s *InviteService) CreateInvite(ctx context.Context, admin *models.Identity, body *models.CreateInviteBody) (*models.CreatedInvite, error) {
	if err := s.policy.RequireAdministrator(admin); err != nil {
		return nil, err
	}

	email, err := normalizeInviteEmail(body.Email)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(body.DocumentID) == "" {
		return nil, fmt.Errorf("%w: document_id is required", access.ErrValidation)
	}

	doc, err := s.documents.FindByID(ctx, strings.TrimSpace(body.DocumentID))
	if err != nil {
		return nil, notFound(err, "document")
	}

	currentTime := s.now()
	invite := &models.Invite{
		Token:      uuid.NewString(),
		Email:      email,
		DocumentID: doc.ID,
		CreatedBy:  admin.UserID,
		ExpiresAt:  currentTime.Add(s.cfg.TTL).Unix(),
		CreatedAt:  currentTime.Unix(),
	}
	if err := s.invites.Create(ctx, invite); err != nil {
		return nil, fmt.Errorf("failed to create invite: %w", err)
	}

	invites.WithLabelValues("created").Inc()
	s.logger.Info("Invite created",
		zap.String("document", doc.Slug),
		zap.String("email", email),
		zap.String("admin_id", admin.UserID),
	)
	if err := s.publisher.PublishInviteEvent(ctx, events.NewInviteEvent(events.InviteCreated, invite, admin.UserID)); err != nil {
		s.logger.Warn("Failed to publish invite event", zap.Error(err))
	}

	return &models.CreatedInvite{
		InviteURL: s.cfg.PublicBaseURL + "/invite/" + invite.Token,
		Token:     invite.Token,
		ExpiresAt: invite.ExpiresAt,
	}, nil
}

// ResolveInvite looks up an invite for display. Claimed and expired invites
// are reported the same way.
func (s *InviteService) ResolveInvite(ctx context.Context, token string) (*models.InviteView, error) {
	invite, doc, err := s.usableInvite(ctx, token)
	if err != nil {
		return nil, err
	}
	return &models.InviteView{Invite: invite, Document: doc.Summary()}, nil
}

// ClaimInvite signs the NDA for the invite's document on behalf of the caller
// and then consumes the invite. Of two concurrent claims only one consumes it;
// the other gets ErrInvalidOrExpired.
func (s *InviteService) ClaimInvite(ctx context.Context, identity *models.Identity, token string, sig models.NDASignature) (*models.ClaimResult, error) {
	if identity == nil || identity.UserID == "" {
		return nil, access.ErrUnauthenticated
	}

	invite, doc, err := s.usableInvite(ctx, token)
	if err != nil {
		return nil, err
	}

	status, err := s.access.signNDA(ctx, identity, doc, sig)
	if err != nil {
		return nil, err
	}

	claimed, err := s.invites.Claim(ctx, invite.Token, identity.UserID, s.now().Unix())
	if errors.Is(err, repository.ErrConditionNotMet) {
		invites.WithLabelValues("rejected").Inc()
		return nil, access.ErrInvalidOrExpired
	}
	if err != nil {
		return nil, fmt.Errorf("failed to claim invite: %w", err)
	}

	invites.WithLabelValues("claimed").Inc()
	s.logger.Info("Invite claimed",
		zap.String("document", doc.Slug),
		zap.String("user_id", identity.UserID),
		zap.String("status", string(status.Status)),
	)
	if err := s.publisher.PublishInviteEvent(ctx, events.NewInviteEvent(events.InviteClaimed, claimed, identity.UserID)); err != nil {
		s.logger.Warn("Failed to publish invite event", zap.Error(err))
	}

	return &models.ClaimResult{Status: status.Status, Document: doc.Summary()}, nil
}

func (s *InviteService) usableInvite(ctx context.Context, token string) (*models.Invite, *models.Document, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, nil, fmt.Errorf("invite %w", access.ErrNotFound)
	}

	invite, err := s.invites.FindByToken(ctx, token)
	if err != nil {
		return nil, nil, notFound(err, "invite")
	}
	if !invite.IsUsable(s.now().Unix()) {
		invites.WithLabelValues("rejected").Inc()
		return nil, nil, access.ErrInvalidOrExpired
	}

	doc, err := s.documents.FindByID(ctx, invite.DocumentID)
	if err != nil {
		return nil, nil, notFound(err, "document")
	}
	return invite, doc, nil
}

func normalizeInviteEmail(raw string) (string, error) {
	email := access.NormalizeEmail(raw)
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || !strings.Contains(email[strings.LastIndex(email, "@")+1:], ".") {
		return "", fmt.Errorf("%w: a valid email is required", access.ErrValidation)
	}
	return email, nil
}
