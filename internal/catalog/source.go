package catalog

import "context"

// Source lists known entities from the externally-owned catalog store. The
// pipeline only ever reads; creation of new entities is the persistence
// layer's job.
type Source interface {
	ListCategories(ctx context.Context) ([]Category, error)
	ListSuppliers(ctx context.Context) ([]Supplier, error)
	ListProducts(ctx context.Context, query string, limit int) ([]Product, error)
	ListCustomers(ctx context.Context, limit int) ([]Customer, error)
	ListVehicles(ctx context.Context, limit int) ([]Vehicle, error)
}
