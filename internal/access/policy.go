package access

import (
	"strings"

	"dataroom-service/internal/models"
)

const (
	AdminRole       = "admin"
	AdminPermission = "admin"
)

// Policy holds the statically configured administrator allow-list.
type Policy struct {
	adminEmails map[string]struct{}
}

func NewPolicy(adminEmails []string) *Policy {
	p := &Policy{adminEmails: make(map[string]struct{}, len(adminEmails))}
	for _, email := range adminEmails {
		email = NormalizeEmail(email)
		if email != "" {
			p.adminEmails[email] = struct{}{}
		}
	}
	return p
}

// IsAdministrator is the single administrator predicate: a stored role or
// permission flag OR membership in the allow-list.
func (p *Policy) IsAdministrator(identity *models.Identity) bool {
	if identity == nil || identity.UserID == "" {
		return false
	}
	if strings.EqualFold(identity.Role, AdminRole) {
		return true
	}
	for _, perm := range identity.Permissions {
		if strings.HasPrefix(strings.TrimSpace(perm), AdminPermission) {
			return true
		}
	}
	if p == nil || identity.Email == "" {
		return false
	}
	_, ok := p.adminEmails[NormalizeEmail(identity.Email)]
	return ok
}

// RequireAdministrator returns ErrUnauthenticated for anonymous callers and
// ErrForbidden for authenticated non-administrators.
func (p *Policy) RequireAdministrator(identity *models.Identity) error {
	if identity == nil || identity.UserID == "" {
		return ErrUnauthenticated
	}
	if !p.IsAdministrator(identity) {
		return ErrForbidden
	}
	return nil
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
