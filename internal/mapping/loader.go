package mapping

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ledgerline/reportsync/internal/core/storage"
)

// Loader builds a tenant's resolver from a mapping store.
type Loader struct {
	store storage.MappingStore
}

func NewLoader(store storage.MappingStore) *Loader {
	return &Loader{store: store}
}

// Load reads the tenant's active mappings once. The resolver is meant to live for one aggregation run.
func (l *Loader) Load(ctx context.Context, tenantID string) (*Resolver, error) {
	mappings, err := l.store.ActiveMappings(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to load category mappings for tenant %s: %w", tenantID, err)
	}

	for i := range mappings {
		if err := mappings[i].Validate(); err != nil {
			slog.Warn("[Mapping] Ignoring invalid mapping",
				"tenant_id", tenantID,
				"mapping_id", mappings[i].ID,
				"error", err)
			mappings[i].IsActive = false
		}
	}

	resolver := NewResolver(mappings)
	slog.Debug("[Mapping] Resolver loaded",
		"tenant_id", tenantID,
		"active_mappings", resolver.Len())
	return resolver, nil
}
