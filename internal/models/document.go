package models

type Tier string

const (
	TierPublic       Tier = "public"
	TierConfidential Tier = "confidential"
	TierRestricted   Tier = "restricted"
)

func (t Tier) IsValid() bool {
	switch t {
	case TierPublic, TierConfidential, TierRestricted:
		return true
	}
	return false
}

type Document struct {
	ID          string   `bson:"_id" json:"id"`
	Slug        string   `bson:"slug" json:"slug"`
	Title       string   `bson:"title" json:"title"`
	Description string   `bson:"description,omitempty" json:"description"`
	Tier        Tier     `bson:"tier" json:"tier"`
	Visibility  []string `bson:"visibility" json:"visibility"`
	Content     string   `bson:"content,omitempty" json:"content,omitempty"`
	ContentRef  string   `bson:"contentRef,omitempty" json:"content_ref,omitempty"`
	Icon        string   `bson:"icon,omitempty" json:"icon,omitempty"`
	CreatedAt   int64    `bson:"createdAt" json:"created_at"`
	UpdatedAt   int64    `bson:"updatedAt" json:"updated_at"`
}

// DocumentSummary is the metadata embedded in access request and invite payloads.
type DocumentSummary struct {
	ID    string `json:"id"`
	Slug  string `json:"slug"`
	Title string `json:"title"`
	Tier  Tier   `json:"tier"`
}

func (d *Document) Summary() *DocumentSummary {
	return &DocumentSummary{ID: d.ID, Slug: d.Slug, Title: d.Title, Tier: d.Tier}
}

// Redacted returns a copy without content, safe to show to any caller.
func (d *Document) Redacted() *Document {
	cp := *d
	cp.Content = ""
	cp.ContentRef = ""
	cp.Visibility = append([]string(nil), d.Visibility...)
	return &cp
}

// DocumentView is a document as seen by a particular caller.
type DocumentView struct {
	*Document
	AccessStatus AccessStatus `json:"access_status"`
}

type CreateDocumentRequest struct {
	Slug        string   `json:"slug" yaml:"slug"`
	Title       string   `json:"title" yaml:"title"`
	Description string   `json:"description" yaml:"description"`
	Tier        Tier     `json:"tier" yaml:"tier"`
	Visibility  []string `json:"visibility" yaml:"visibility"`
	Content     string   `json:"content" yaml:"content"`
	ContentRef  string   `json:"content_ref" yaml:"content_ref"`
	Icon        string   `json:"icon" yaml:"icon"`
}

// UpdateDocumentRequest carries a partial update; nil fields are left untouched.
// Slug is accepted only so that an attempt to change it can be rejected.
type UpdateDocumentRequest struct {
	ID          string    `json:"id"`
	Slug        *string   `json:"slug,omitempty"`
	Title       *string   `json:"title,omitempty"`
	Description *string   `json:"description,omitempty"`
	Tier        *Tier     `json:"tier,omitempty"`
	Visibility  *[]string `json:"visibility,omitempty"`
	Content     *string   `json:"content,omitempty"`
	ContentRef  *string   `json:"content_ref,omitempty"`
	Icon        *string   `json:"icon,omitempty"`
}

// DocumentContent is the payload of the gated content endpoint.
type DocumentContent struct {
	Slug    string `json:"slug"`
	Title   string `json:"title"`
	Content string `json:"content"`
}
