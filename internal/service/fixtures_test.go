package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"dataroom-service/internal/access"
	"dataroom-service/internal/events"
	"dataroom-service/internal/models"
	"dataroom-service/internal/repository"
	"dataroom-service/internal/repository/memory"

	"go.uber.org/zap"
)

var (
	owner = &models.Identity{UserID: "owner", Email: "owner@example.com"}
	bob   = &models.Identity{UserID: "bob", Email: "bob@x.com", Role: "investor"}
	eve   = &models.Identity{UserID: "eve", Email: "eve@x.com"}
)

type recordingPublisher struct {
	mu     sync.Mutex
	access []*events.AccessEvent
	invite []*events.InviteEvent
	docs   []*events.DocumentEvent
}

func (p *recordingPublisher) PublishAccessEvent(ctx context.Context, event *events.AccessEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.access = append(p.access, event)
	return nil
}

func (p *recordingPublisher) PublishInviteEvent(ctx context.Context, event *events.InviteEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.invite = append(p.invite, event)
	return nil
}

func (p *recordingPublisher) PublishDocumentEvent(ctx context.Context, event *events.DocumentEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.docs = append(p.docs, event)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) accessTypes() []events.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []events.EventType
	for _, e := range p.access {
		out = append(out, e.Type)
	}
	return out
}

type recordingRelay struct {
	mu      sync.Mutex
	changes []*events.AccessEvent
}

func (r *recordingRelay) NotifyAccessChange(ctx context.Context, event *events.AccessEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.changes = append(r.changes, event)
	return nil
}

type fixture struct {
	repos         *repository.Repositories
	publisher     *recordingPublisher
	relay         *recordingRelay
	access        *AccessService
	documents     *DocumentService
	invites       *InviteService
	notifications *NotificationService
	clock         time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	repos := memory.NewRepositories()
	policy := access.NewPolicy([]string{owner.Email})
	publisher := &recordingPublisher{}
	relay := &recordingRelay{}
	logger := zap.NewNop()

	f := &fixture{
		repos:     repos,
		publisher: publisher,
		relay:     relay,
		clock:     time.Unix(1700000000, 0),
	}
	f.access = NewAccessService(repos, policy, publisher, relay, logger)
	f.documents = NewDocumentService(repos, policy, publisher, nil, nil, logger)
	f.invites = NewInviteService(repos, f.access, policy, publisher, InviteConfig{PublicBaseURL: "https://room.example.com/"}, logger)
	f.notifications = NewNotificationService(repos, logger)

	now := func() time.Time { return f.clock }
	f.access.now = now
	f.invites.now = now
	f.notifications.now = now
	return f
}

func (f *fixture) createDocument(t *testing.T, slug string, tier models.Tier) *models.Document {
	t.Helper()
	doc, err := f.documents.Create(context.Background(), owner, &models.CreateDocumentRequest{
		Slug:    slug,
		Title:   "Doc " + slug,
		Tier:    tier,
		Content: "secret body of " + slug,
	})
	if err != nil {
		t.Fatalf("Failed to create document %s: %v", slug, err)
	}
	return doc
}

func (f *fixture) signNDA(t *testing.T, identity *models.Identity, doc *models.Document) *models.AccessStatusView {
	t.Helper()
	view, err := f.access.RequestAccess(context.Background(), identity, &models.AccessRequestBody{
		DocumentID:   doc.ID,
		NDASignature: models.NDASignature{SignerName: "Signer", SignerEntity: "X Corp"},
	})
	if err != nil {
		t.Fatalf("Failed to sign NDA: %v", err)
	}
	return view
}

func (f *fixture) requestOf(t *testing.T, identity *models.Identity, doc *models.Document) *models.AccessRequest {
	t.Helper()
	req, err := f.repos.Requests.FindByUserAndDocument(context.Background(), identity.UserID, doc.ID)
	if err != nil {
		t.Fatalf("Expected access request for %s: %v", identity.UserID, err)
	}
	return req
}
