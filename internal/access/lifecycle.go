package access

import (
	"fmt"

	"dataroom-service/internal/models"
)

// adminTargets lists, for every status an administrator may set, the statuses
// a request may currently hold. Re-applying the current status is allowed and
// is a no-op apart from the updated timestamp.
var adminTargets = map[models.AccessStatus][]models.AccessStatus{
	models.AccessStatusApproved: {models.AccessStatusPending, models.AccessStatusApproved, models.AccessStatusRevoked},
	models.AccessStatusRevoked:  {models.AccessStatusPending, models.AccessStatusApproved, models.AccessStatusRevoked},
}

// IsAdminTarget reports whether status may be set by an administrator.
func IsAdminTarget(status models.AccessStatus) bool {
	_, ok := adminTargets[status]
	return ok
}

// SourcesFor returns the statuses from which an administrator may move a request to target.
func SourcesFor(target models.AccessStatus) []models.AccessStatus {
	return adminTargets[target]
}

// ValidateAdminTransition checks an administrator transition of req to target.
// NONE has no record to transition, and a request without an NDA signature can
// never be approved or revoked.
func ValidateAdminTransition(req *models.AccessRequest, target models.AccessStatus) error {
	if !IsAdminTarget(target) {
		return ErrInvalidStatus
	}
	if req == nil || req.Status == models.AccessStatusNone || req.Status == "" {
		return fmt.Errorf("%w: no access request to update", ErrInvalidTransition)
	}
	if !req.HasSignedNDA() {
		return fmt.Errorf("%w: NDA has not been signed", ErrInvalidTransition)
	}
	for _, from := range adminTargets[target] {
		if from == req.Status {
			return nil
		}
	}
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, req.Status, target)
}

// NewPendingRequest builds the record created by the NONE -> PENDING transition.
func NewPendingRequest(id string, identity *models.Identity, documentID string, sig models.NDASignature, now int64) *models.AccessRequest {
	return &models.AccessRequest{
		ID:           id,
		UserID:       identity.UserID,
		UserEmail:    identity.Email,
		DocumentID:   documentID,
		Status:       models.AccessStatusPending,
		NDASignedAt:  now,
		SignerName:   sig.SignerName,
		SignerEntity: sig.SignerEntity,
		SignerTitle:  sig.SignerTitle,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}
