package storage

import (
	"context"

	"printdesk/internal/pricing"
)

// Store is the read/write surface over the pricing reference data. The
// engine itself only ever consumes LoadSnapshot; the remaining methods
// back the admin CRUD endpoints. Implementations: Postgres for the
// service, Memory for tests.
type Store interface {
	// LoadSnapshot assembles the immutable per-request view of all
	// reference data.
	LoadSnapshot(ctx context.Context) (*pricing.Snapshot, error)

	ListServices(ctx context.Context, includeInactive bool) ([]pricing.Service, error)
	GetService(ctx context.Context, id int64) (*pricing.Service, error)
	CreateService(ctx context.Context, svc pricing.Service) (*pricing.Service, error)
	UpdateService(ctx context.Context, svc pricing.Service) (*pricing.Service, error)
	// DeactivateService soft-deletes: reference data is never hard-deleted.
	DeactivateService(ctx context.Context, id int64) error

	ListTiers(ctx context.Context, serviceID int64, variantID string) ([]pricing.VolumeTier, error)
	CreateTier(ctx context.Context, tier pricing.VolumeTier) (*pricing.VolumeTier, error)

	ListProductOperations(ctx context.Context, productKey string) ([]pricing.ProductOperationLink, error)

	ListPrintSheets(ctx context.Context) ([]pricing.PrintPriceSheet, error)
	GetPrintSheet(ctx context.Context, id int64) (*pricing.PrintPriceSheet, error)
}
