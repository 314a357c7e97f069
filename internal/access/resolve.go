package access

import (
	"slices"
	"strings"

	"dataroom-service/internal/models"
)

// Bypass reports whether the effective status is approved without consulting
// the access request store: the document is public, or the caller is an administrator.
func (p *Policy) Bypass(identity *models.Identity, doc *models.Document) bool {
	if doc != nil && doc.Tier == models.TierPublic {
		return true
	}
	return p.IsAdministrator(identity)
}

// Resolve computes the effective access status of identity for doc given the
// caller's access request, which may be nil.
func (p *Policy) Resolve(identity *models.Identity, doc *models.Document, req *models.AccessRequest) models.AccessStatus {
	if p.Bypass(identity, doc) {
		return models.AccessStatusApproved
	}
	if identity == nil || req == nil || req.UserID != identity.UserID {
		return models.AccessStatusNone
	}
	switch req.Status {
	case models.AccessStatusPending, models.AccessStatusApproved, models.AccessStatusRevoked:
		return req.Status
	}
	return models.AccessStatusNone
}

// AuthorizeContent returns nil when content may be served for the given
// effective status.
func AuthorizeContent(identity *models.Identity, status models.AccessStatus) error {
	if status == models.AccessStatusApproved {
		return nil
	}
	if identity == nil || identity.UserID == "" {
		return ErrUnauthenticated
	}
	return ErrAccessDenied
}

// CanList reports whether a document's metadata appears in the caller's
// listing. Content stays gated by Resolve.
func (p *Policy) CanList(identity *models.Identity, doc *models.Document, req *models.AccessRequest) bool {
	if p.Bypass(identity, doc) {
		return true
	}
	if identity == nil {
		return false
	}
	if req != nil && req.UserID == identity.UserID {
		return true
	}
	return identity.Role != "" && slices.ContainsFunc(doc.Visibility, func(role string) bool {
		return strings.EqualFold(role, identity.Role)
	})
}
