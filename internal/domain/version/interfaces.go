package version

import "context"

// Repository provides access to the version store.
type Repository interface {
	Create(ctx context.Context, tenantID string, v *Version) error
	// FindLatest returns the highest revision for the page-scoped change
	// group, or repository.ErrNotFound.
	FindLatest(ctx context.Context, tenantID, pageID, changeGroupID string) (*Version, error)
	// FindByPageChangeGroups returns every version matching any of the
	// page-scoped pairs in a single round trip.
	FindByPageChangeGroups(ctx context.Context, tenantID string, pairs []PageChangeGroup) ([]Version, error)
}
