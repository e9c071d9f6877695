// Package source fetches raw menu documents for tenants. Documents are read
// fresh on every call and never cached.
package source

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/akshaykn0797/menudex/internal/domain"
)

// FileSource reads per-venue menu documents from a directory of
// <tenant>.json files.
type FileSource struct {
	dataDir string
}

// NewFileSource creates a file-backed document source.
func NewFileSource(dataDir string) *FileSource {
	return &FileSource{dataDir: dataDir}
}

// Fetch reads and decodes a tenant's menu document.
func (s *FileSource) Fetch(_ context.Context, tenant string) (domain.MenuDocument, error) {
	if err := validateTenantName(tenant); err != nil {
		return domain.MenuDocument{}, err
	}

	path := filepath.Join(s.dataDir, tenant+".json")
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if os.IsNotExist(err) {
			return domain.MenuDocument{}, fmt.Errorf(
				"no menu document for tenant %q: %w", tenant, domain.ErrMalformedDocument)
		}
		return domain.MenuDocument{}, fmt.Errorf("read menu document %s: %w", path, err)
	}

	var doc domain.MenuDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return domain.MenuDocument{}, fmt.Errorf(
			"decode menu document %s: %w: %w", path, domain.ErrMalformedDocument, err)
	}

	if err := doc.Validate(); err != nil {
		return domain.MenuDocument{}, err
	}

	return doc, nil
}

// validateTenantName rejects names that could escape the data directory.
func validateTenantName(tenant string) error {
	if tenant == "" {
		return fmt.Errorf("tenant name is empty: %w", domain.ErrValidation)
	}
	if strings.ContainsAny(tenant, `/\`) || strings.Contains(tenant, "..") {
		return fmt.Errorf("invalid tenant name %q: %w", tenant, domain.ErrValidation)
	}
	return nil
}
