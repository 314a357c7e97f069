package seed

import (
	"os"
	"path/filepath"
	"testing"

	"dataroom-service/internal/models"
)

const sample = `
documents:
  - slug: overview
    title: Company overview
    tier: public
    content: |
      # Overview
  - slug: financials
    title: Financial model
    tier: restricted
    visibility: [admin, investor]
    content_ref: minio://dataroom-documents/financials.md
`

func TestParse(t *testing.T) {
	docs, err := Parse([]byte(sample))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("Expected 2 documents, got %d", len(docs))
	}
	if docs[0].Tier != models.TierPublic || docs[0].Content != "# Overview\n" {
		t.Errorf("Unexpected first document %+v", docs[0])
	}
	if docs[1].ContentRef != "minio://dataroom-documents/financials.md" || len(docs[1].Visibility) != 2 {
		t.Errorf("Unexpected second document %+v", docs[1])
	}
}

func TestParseRejectsMissingSlug(t *testing.T) {
	if _, err := Parse([]byte("documents:\n  - title: No slug\n")); err == nil {
		t.Error("Expected document without slug to be rejected")
	}
	if _, err := Parse([]byte("documents: [")); err == nil {
		t.Error("Expected malformed YAML to be rejected")
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yaml")
	if err := os.WriteFile(path, []byte(sample), 0644); err != nil {
		t.Fatalf("Failed to write seed file: %v", err)
	}
	docs, err := Load(path)
	if err != nil || len(docs) != 2 {
		t.Fatalf("Expected 2 documents, got %d, %v", len(docs), err)
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Expected missing file to fail")
	}
}
