package menu

import (
	"context"

	"github.com/akshaykn0797/menudex/internal/domain"
)

// Source fetches the current menu document for a tenant.
type Source interface {
	Fetch(ctx context.Context, tenant string) (domain.MenuDocument, error)
}
