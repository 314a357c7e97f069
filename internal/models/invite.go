package models

type Invite struct {
	Token      string `bson:"_id" json:"token"`
	Email      string `bson:"email" json:"email"`
	DocumentID string `bson:"documentId" json:"document_id"`
	Claimed    bool   `bson:"claimed" json:"claimed"`
	ClaimedBy  string `bson:"claimedBy,omitempty" json:"claimed_by,omitempty"`
	CreatedBy  string `bson:"createdBy,omitempty" json:"created_by,omitempty"`
	ExpiresAt  int64  `bson:"expiresAt" json:"expires_at"`
	CreatedAt  int64  `bson:"createdAt" json:"created_at"`
}

// IsUsable reports whether the invite can still be claimed at unix time now.
func (i *Invite) IsUsable(now int64) bool {
	return !i.Claimed && now <= i.ExpiresAt
}

type CreateInviteBody struct {
	Email      string `json:"email"`
	DocumentID string `json:"document_id"`
}

type CreatedInvite struct {
	InviteURL string `json:"invite_url"`
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expires_at"`
}

type InviteView struct {
	Invite   *Invite          `json:"invite"`
	Document *DocumentSummary `json:"document"`
}

type ClaimResult struct {
	Status   AccessStatus     `json:"status"`
	Document *DocumentSummary `json:"document"`
}
