package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"dataroom-service/internal/access"
	"dataroom-service/internal/models"
	"dataroom-service/internal/repository"

	"go.uber.org/zap"
)

type mapCache struct {
	docs          map[string]*models.Document
	invalidations []string
}

func newMapCache() *mapCache {
	return &mapCache{docs: make(map[string]*models.Document)}
}

func (c *mapCache) Get(ctx context.Context, slug string) (*models.Document, error) {
	doc, ok := c.docs[slug]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *doc
	return &cp, nil
}

func (c *mapCache) Set(ctx context.Context, doc *models.Document) error {
	cp := *doc
	c.docs[doc.Slug] = &cp
	return nil
}

func (c *mapCache) Invalidate(ctx context.Context, slug string) error {
	delete(c.docs, slug)
	c.invalidations = append(c.invalidations, slug)
	return nil
}

type staticContent map[string]string

func (s staticContent) Fetch(ctx context.Context, ref string) (string, error) {
	body, ok := s[ref]
	if !ok {
		return "", errors.New("object not found")
	}
	return body, nil
}

func TestValidateSlug(t *testing.T) {
	testCases := []struct {
		slug  string
		valid bool
	}{
		{"term-sheet", true},
		{"q3-2024", true},
		{"a", true},
		{strings.Repeat("a", 100), true},
		{strings.Repeat("a", 101), false},
		{"", false},
		{"Term-Sheet", false},
		{"double--hyphen", false},
		{"-leading", false},
		{"trailing-", false},
		{"under_score", false},
		{"white space", false},
	}

	for _, tc := range testCases {
		t.Run(tc.slug, func(t *testing.T) {
			err := ValidateSlug(tc.slug)
			if tc.valid && err != nil {
				t.Errorf("Expected %q to be valid, got %v", tc.slug, err)
			}
			if !tc.valid && !errors.Is(err, access.ErrValidation) {
				t.Errorf("Expected %q to be rejected, got %v", tc.slug, err)
			}
		})
	}
}

func TestCreateDocument(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.documents.Create(ctx, bob, &models.CreateDocumentRequest{Slug: "x", Title: "X"}); !errors.Is(err, access.ErrForbidden) {
		t.Fatalf("Expected ErrForbidden, got %v", err)
	}
	if _, err := f.documents.Create(ctx, owner, &models.CreateDocumentRequest{Slug: "x"}); !errors.Is(err, access.ErrValidation) {
		t.Fatalf("Expected missing title to be rejected, got %v", err)
	}
	if _, err := f.documents.Create(ctx, owner, &models.CreateDocumentRequest{Slug: "x", Title: "X", Tier: "top-secret"}); !errors.Is(err, access.ErrValidation) {
		t.Fatalf("Expected unknown tier to be rejected, got %v", err)
	}

	doc, err := f.documents.Create(ctx, owner, &models.CreateDocumentRequest{Slug: "overview", Title: " Overview ", Visibility: []string{" Investor", "investor", ""}})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if doc.Tier != models.TierConfidential {
		t.Errorf("Expected default tier confidential, got %s", doc.Tier)
	}
	if doc.Title != "Overview" {
		t.Errorf("Expected trimmed title, got %q", doc.Title)
	}
	if len(doc.Visibility) != 1 || doc.Visibility[0] != "investor" {
		t.Errorf("Expected normalized visibility, got %v", doc.Visibility)
	}

	plain, err := f.documents.Create(ctx, owner, &models.CreateDocumentRequest{Slug: "plain", Title: "Plain"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(plain.Visibility) != 1 || plain.Visibility[0] != access.AdminRole {
		t.Errorf("Expected default visibility [admin], got %v", plain.Visibility)
	}

	if _, err := f.documents.Create(ctx, owner, &models.CreateDocumentRequest{Slug: "overview", Title: "Again"}); !errors.Is(err, access.ErrConflict) {
		t.Errorf("Expected duplicate slug to conflict, got %v", err)
	}
	if len(f.publisher.docs) != 2 {
		t.Errorf("Expected two document events, got %d", len(f.publisher.docs))
	}
}

func TestUpdateDocumentKeepsSlug(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	doc := f.createDocument(t, "immutable", models.TierConfidential)

	newSlug := "renamed"
	if _, err := f.documents.Update(ctx, owner, &models.UpdateDocumentRequest{ID: doc.ID, Slug: &newSlug}); !errors.Is(err, access.ErrValidation) {
		t.Fatalf("Expected slug change to be rejected, got %v", err)
	}

	sameSlug := doc.Slug
	title := "New title"
	tier := models.TierPublic
	updated, err := f.documents.Update(ctx, owner, &models.UpdateDocumentRequest{ID: doc.ID, Slug: &sameSlug, Title: &title, Tier: &tier})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if updated.Slug != "immutable" || updated.Title != title || updated.Tier != models.TierPublic {
		t.Errorf("Unexpected update result %+v", updated)
	}
	if updated.Content != doc.Content {
		t.Error("Expected untouched fields to be preserved")
	}

	if _, err := f.documents.Update(ctx, owner, &models.UpdateDocumentRequest{ID: "missing", Title: &title}); !errors.Is(err, access.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
	if _, err := f.documents.Update(ctx, eve, &models.UpdateDocumentRequest{ID: doc.ID, Title: &title}); !errors.Is(err, access.ErrForbidden) {
		t.Errorf("Expected ErrForbidden, got %v", err)
	}
}

func TestDeleteDocumentCascades(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	doc := f.createDocument(t, "doomed", models.TierConfidential)
	keep := f.createDocument(t, "kept", models.TierConfidential)
	f.signNDA(t, bob, doc)
	f.signNDA(t, bob, keep)
	created, _ := f.invites.CreateInvite(ctx, owner, &models.CreateInviteBody{Email: "eve@x.com", DocumentID: doc.ID})

	if err := f.documents.Delete(ctx, owner, doc.ID); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if _, err := f.repos.Documents.FindByID(ctx, doc.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("Expected document to be gone, got %v", err)
	}
	if _, err := f.repos.Requests.FindByUserAndDocument(ctx, bob.UserID, doc.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("Expected access request to be deleted, got %v", err)
	}
	if _, err := f.repos.Invites.FindByToken(ctx, created.Token); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("Expected invite to be deleted, got %v", err)
	}
	f.requestOf(t, bob, keep)

	if err := f.documents.Delete(ctx, owner, doc.ID); !errors.Is(err, access.ErrNotFound) {
		t.Errorf("Expected second delete to report ErrNotFound, got %v", err)
	}
}

func TestListDocuments(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	public := f.createDocument(t, "intro", models.TierPublic)
	hidden := f.createDocument(t, "hidden", models.TierRestricted)
	requested := f.createDocument(t, "requested", models.TierConfidential)
	shared, err := f.documents.Create(ctx, owner, &models.CreateDocumentRequest{Slug: "shared", Title: "Shared", Visibility: []string{"investor"}, Content: "body"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	f.signNDA(t, bob, requested)

	statuses := func(identity *models.Identity) map[string]models.AccessStatus {
		views, err := f.documents.List(ctx, identity)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		out := make(map[string]models.AccessStatus)
		for _, v := range views {
			if v.Content != "" || v.ContentRef != "" {
				t.Errorf("Expected content to be stripped from listing of %s", v.Slug)
			}
			out[v.Slug] = v.AccessStatus
		}
		return out
	}

	anon := statuses(nil)
	if len(anon) != 1 || anon[public.Slug] != models.AccessStatusApproved {
		t.Errorf("Expected anonymous caller to see only the public document, got %v", anon)
	}

	forBob := statuses(bob)
	if _, ok := forBob[hidden.Slug]; ok {
		t.Error("Expected restricted document to be hidden from bob")
	}
	if forBob[requested.Slug] != models.AccessStatusPending {
		t.Errorf("Expected pending for requested document, got %s", forBob[requested.Slug])
	}
	if forBob[shared.Slug] != models.AccessStatusNone {
		t.Errorf("Expected none for role-visible document, got %s", forBob[shared.Slug])
	}

	forOwner := statuses(owner)
	if len(forOwner) != 4 {
		t.Errorf("Expected administrator to see all documents, got %v", forOwner)
	}
	for slug, status := range forOwner {
		if status != models.AccessStatusApproved {
			t.Errorf("Expected approved for administrator on %s, got %s", slug, status)
		}
	}
}

func TestGetDocument(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	doc := f.createDocument(t, "memo", models.TierConfidential)

	if _, err := f.documents.Get(ctx, bob, doc.Slug); !errors.Is(err, access.ErrNotFound) {
		t.Fatalf("Expected unlisted document to be reported missing, got %v", err)
	}

	f.signNDA(t, bob, doc)
	view, err := f.documents.Get(ctx, bob, doc.Slug)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if view.AccessStatus != models.AccessStatusPending || view.Content != "" {
		t.Errorf("Unexpected view %+v", view)
	}
}

func TestContentGate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	public := f.createDocument(t, "public-info", models.TierPublic)
	secret := f.createDocument(t, "secret-info", models.TierConfidential)

	testCases := []struct {
		name     string
		identity *models.Identity
		slug     string
		wantErr  error
	}{
		{"public anonymous", nil, public.Slug, nil},
		{"confidential anonymous", nil, secret.Slug, access.ErrUnauthenticated},
		{"confidential no record", bob, secret.Slug, access.ErrAccessDenied},
		{"confidential admin", owner, secret.Slug, nil},
		{"unknown slug", bob, "nope", access.ErrNotFound},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			content, err := f.documents.Content(ctx, tc.identity, tc.slug)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("Expected %v, got %v", tc.wantErr, err)
				}
				if content != nil {
					t.Error("Expected no content alongside an error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if content.Content == "" {
				t.Error("Expected content to be served")
			}
		})
	}
}

func TestContentFromStoreAndCache(t *testing.T) {
	repos := newFixture(t).repos
	policy := access.NewPolicy([]string{owner.Email})
	cache := newMapCache()
	store := staticContent{"minio://docs/deck.md": "# Deck"}
	svc := NewDocumentService(repos, policy, &recordingPublisher{}, cache, store, zap.NewNop())
	ctx := context.Background()

	doc, err := svc.Create(ctx, owner, &models.CreateDocumentRequest{Slug: "deck", Title: "Deck", ContentRef: "minio://docs/deck.md"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	content, err := svc.Content(ctx, owner, doc.Slug)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if content.Content != "# Deck" {
		t.Errorf("Expected content from the store, got %q", content.Content)
	}
	if _, ok := cache.docs[doc.Slug]; !ok {
		t.Error("Expected document to be cached after lookup")
	}

	title := "Deck v2"
	if _, err := svc.Update(ctx, owner, &models.UpdateDocumentRequest{ID: doc.ID, Title: &title}); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if _, ok := cache.docs[doc.Slug]; ok {
		t.Error("Expected cache entry to be invalidated on update")
	}

	content, err = svc.Content(ctx, owner, doc.Slug)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if content.Title != title {
		t.Errorf("Expected fresh title after invalidation, got %q", content.Title)
	}
}

func TestSeedUpsertsBySlug(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	seed := []*models.CreateDocumentRequest{
		{Slug: "welcome", Title: "Welcome", Tier: models.TierPublic},
		{Slug: "nda", Title: "NDA"},
	}
	if n, err := f.documents.Seed(ctx, seed); err != nil || n != 2 {
		t.Fatalf("Expected 2 seeded documents, got %d, %v", n, err)
	}

	seed[1].Title = "Mutual NDA"
	if _, err := f.documents.Seed(ctx, seed); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	docs, _ := f.repos.Documents.FindAll(ctx)
	if len(docs) != 2 {
		t.Fatalf("Expected reseeding not to duplicate documents, got %d", len(docs))
	}
	nda, err := f.repos.Documents.FindBySlug(ctx, "nda")
	if err != nil || nda.Title != "Mutual NDA" {
		t.Errorf("Expected reseed to update title, got %+v, %v", nda, err)
	}

	if _, err := f.documents.Seed(ctx, []*models.CreateDocumentRequest{{Slug: "Bad Slug", Title: "x"}}); !errors.Is(err, access.ErrValidation) {
		t.Errorf("Expected invalid seed to be rejected, got %v", err)
	}
}
