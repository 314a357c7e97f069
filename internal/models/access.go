package models

type AccessStatus string

const (
	AccessStatusNone     AccessStatus = "none"
	AccessStatusPending  AccessStatus = "pending"
	AccessStatusApproved AccessStatus = "approved"
	AccessStatusRevoked  AccessStatus = "revoked"
)

type AccessRequest struct {
	ID           string       `bson:"_id" json:"id"`
	UserID       string       `bson:"userId" json:"user_id"`
	UserEmail    string       `bson:"userEmail,omitempty" json:"user_email,omitempty"`
	DocumentID   string       `bson:"documentId" json:"document_id"`
	Status       AccessStatus `bson:"status" json:"status"`
	NDASignedAt  int64        `bson:"ndaSignedAt,omitempty" json:"nda_signed_at,omitempty"`
	SignerName   string       `bson:"signerName,omitempty" json:"signer_name,omitempty"`
	SignerEntity string       `bson:"signerEntity,omitempty" json:"signer_entity,omitempty"`
	SignerTitle  string       `bson:"signerTitle,omitempty" json:"signer_title,omitempty"`
	CreatedAt    int64        `bson:"createdAt" json:"created_at"`
	UpdatedAt    int64        `bson:"updatedAt" json:"updated_at"`
}

func (r *AccessRequest) HasSignedNDA() bool {
	return r != nil && r.NDASignedAt > 0
}

// NDASignature is what a user submits when signing the NDA for a document.
type NDASignature struct {
	SignerName   string `json:"signer_name"`
	SignerEntity string `json:"signer_entity"`
	SignerTitle  string `json:"signer_title"`
}

type AccessRequestBody struct {
	DocumentID string `json:"document_id"`
	NDASignature
}

type UpdateAccessBody struct {
	RequestID string       `json:"requestId"`
	Status    AccessStatus `json:"status"`
}

// AccessRequestView is an access request joined with its document, as listed to administrators.
type AccessRequestView struct {
	*AccessRequest
	Document *DocumentSummary `json:"document,omitempty"`
}

type AccessStatusView struct {
	DocumentID  string       `json:"document_id"`
	Status      AccessStatus `json:"status"`
	NDASignedAt int64        `json:"nda_signed_at,omitempty"`
}
