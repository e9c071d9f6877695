// Package menu serves full menus straight from the source of truth,
// bypassing the vector index.
package menu

import (
	"context"
	"fmt"

	"github.com/akshaykn0797/menudex/internal/domain"
)

// Service returns tenant menus as flat item lists.
type Service struct {
	source Source
}

// New creates a menu service.
func New(source Source) *Service {
	return &Service{source: source}
}

// FullMenu fetches the tenant's document and flattens all sections into one
// item list. Reads the source fresh on every call.
func (s *Service) FullMenu(ctx context.Context, tenant string) ([]domain.MenuItem, error) {
	doc, err := s.source.Fetch(ctx, tenant)
	if err != nil {
		return nil, fmt.Errorf("fetch menu for %s: %w", tenant, err)
	}
	return doc.FlatItems(), nil
}
