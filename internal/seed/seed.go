// Package seed loads the documents registered at startup from a YAML file.
package seed

import (
	"fmt"
	"os"

	"dataroom-service/internal/models"

	"gopkg.in/yaml.v3"
)

type File struct {
	Documents []*models.CreateDocumentRequest `yaml:"documents"`
}

func Load(path string) ([]*models.CreateDocumentRequest, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}
	return Parse(raw)
}

func Parse(raw []byte) ([]*models.CreateDocumentRequest, error) {
	var file File
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}
	for i, doc := range file.Documents {
		if doc == nil || doc.Slug == "" {
			return nil, fmt.Errorf("seed document %d has no slug", i)
		}
	}
	return file.Documents, nil
}
