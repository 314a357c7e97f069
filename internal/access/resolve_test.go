package access

import (
	"errors"
	"testing"

	"dataroom-service/internal/models"
)

func TestResolve(t *testing.T) {
	policy := NewPolicy([]string{"owner@example.com"})
	publicDoc := &models.Document{ID: "d0", Tier: models.TierPublic}
	secretDoc := &models.Document{ID: "d1", Tier: models.TierConfidential, Visibility: []string{"investor"}}
	bob := &models.Identity{UserID: "bob", Email: "bob@x.com"}
	admin := &models.Identity{UserID: "owner", Email: "owner@example.com"}

	testCases := []struct {
		name     string
		identity *models.Identity
		doc      *models.Document
		req      *models.AccessRequest
		expected models.AccessStatus
	}{
		{"public anonymous", nil, publicDoc, nil, models.AccessStatusApproved},
		{"public with revoked row", bob, publicDoc, &models.AccessRequest{UserID: "bob", Status: models.AccessStatusRevoked}, models.AccessStatusApproved},
		{"admin without row", admin, secretDoc, nil, models.AccessStatusApproved},
		{"admin with revoked row", admin, secretDoc, &models.AccessRequest{UserID: "owner", Status: models.AccessStatusRevoked}, models.AccessStatusApproved},
		{"anonymous confidential", nil, secretDoc, nil, models.AccessStatusNone},
		{"no row", bob, secretDoc, nil, models.AccessStatusNone},
		{"pending", bob, secretDoc, &models.AccessRequest{UserID: "bob", Status: models.AccessStatusPending}, models.AccessStatusPending},
		{"approved", bob, secretDoc, &models.AccessRequest{UserID: "bob", Status: models.AccessStatusApproved}, models.AccessStatusApproved},
		{"revoked", bob, secretDoc, &models.AccessRequest{UserID: "bob", Status: models.AccessStatusRevoked}, models.AccessStatusRevoked},
		{"someone else's row", bob, secretDoc, &models.AccessRequest{UserID: "eve", Status: models.AccessStatusApproved}, models.AccessStatusNone},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := policy.Resolve(tc.identity, tc.doc, tc.req); got != tc.expected {
				t.Errorf("Expected %s, got %s", tc.expected, got)
			}
		})
	}
}

func TestAuthorizeContent(t *testing.T) {
	bob := &models.Identity{UserID: "bob"}

	if err := AuthorizeContent(nil, models.AccessStatusApproved); err != nil {
		t.Errorf("Expected approved status to pass, got %v", err)
	}
	if err := AuthorizeContent(nil, models.AccessStatusNone); !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("Expected ErrUnauthenticated, got %v", err)
	}
	for _, status := range []models.AccessStatus{models.AccessStatusNone, models.AccessStatusPending, models.AccessStatusRevoked} {
		if err := AuthorizeContent(bob, status); !errors.Is(err, ErrAccessDenied) {
			t.Errorf("Expected ErrAccessDenied for %s, got %v", status, err)
		}
	}
}

func TestCanList(t *testing.T) {
	policy := NewPolicy(nil)
	doc := &models.Document{ID: "d1", Tier: models.TierRestricted, Visibility: []string{"admin", "investor"}}

	if policy.CanList(nil, doc, nil) {
		t.Error("Expected anonymous caller not to see a restricted document")
	}
	if !policy.CanList(&models.Identity{UserID: "u1", Role: "Investor"}, doc, nil) {
		t.Error("Expected visibility role to list the document")
	}
	if policy.CanList(&models.Identity{UserID: "u2", Role: "partner"}, doc, nil) {
		t.Error("Expected unrelated role not to list the document")
	}
	if !policy.CanList(&models.Identity{UserID: "u2"}, doc, &models.AccessRequest{UserID: "u2", Status: models.AccessStatusRevoked}) {
		t.Error("Expected a caller with an access request to list the document")
	}
}
