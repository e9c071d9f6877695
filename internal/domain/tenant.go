package domain

import (
	"fmt"
	"regexp"
)

// tenantNamePattern keeps tenant names safe to embed in store keys and scan
// patterns: lowercase alphanumerics with inner hyphens/underscores.
var tenantNamePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)

// metaNamespace is the key segment collection metadata lives under; a tenant
// with this name would place its records on top of every metadata hash.
const metaNamespace = "collection"

// ValidateTenantName rejects names that cannot safely address a collection.
func ValidateTenantName(name string) error {
	if name == "" {
		return fmt.Errorf("tenant name is empty: %w", ErrValidation)
	}
	if !tenantNamePattern.MatchString(name) {
		return fmt.Errorf("tenant name %q has unsupported characters: %w", name, ErrValidation)
	}
	if name == metaNamespace {
		return fmt.Errorf("tenant name %q is reserved: %w", name, ErrValidation)
	}
	return nil
}
