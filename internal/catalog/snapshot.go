package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// Snapshot is a point-in-time read cache of known entities, indexed by
// identifier, normalized display name, and (suppliers) normalized document
// number. A snapshot is immutable once built; concurrent resolvers share it
// freely.
type Snapshot struct {
	builtAt time.Time

	categoriesByID   map[string]Category
	categoriesByName map[string]Category

	suppliersByID       map[string]Supplier
	suppliersByName     map[string]Supplier
	suppliersByDocument map[string]Supplier

	productsByID   map[string]Product
	productsByName map[string]Product
	productsByCode map[string]Product

	customersByID map[string]Customer
	customers     []Customer
	vehiclesByID  map[string]Vehicle
	vehicles      []Vehicle

	categories []Category
	suppliers  []Supplier
	products   []Product
}

// BuildSnapshot indexes entity lists into a snapshot. Name keys are
// normalized; on collisions the first entry wins so index contents stay
// stable across rebuilds of an unchanged catalog.
func BuildSnapshot(categories []Category, suppliers []Supplier, products []Product, customers []Customer, vehicles []Vehicle) *Snapshot {
	s := &Snapshot{
		builtAt:             time.Now(),
		categoriesByID:      make(map[string]Category, len(categories)),
		categoriesByName:    make(map[string]Category, len(categories)),
		suppliersByID:       make(map[string]Supplier, len(suppliers)),
		suppliersByName:     make(map[string]Supplier, len(suppliers)),
		suppliersByDocument: make(map[string]Supplier, len(suppliers)),
		productsByID:        make(map[string]Product, len(products)),
		productsByName:      make(map[string]Product, len(products)),
		productsByCode:      make(map[string]Product, len(products)),
		customersByID:       make(map[string]Customer, len(customers)),
		customers:           customers,
		vehiclesByID:        make(map[string]Vehicle, len(vehicles)),
		vehicles:            vehicles,
		categories:          categories,
		suppliers:           suppliers,
		products:            products,
	}
	for _, c := range categories {
		s.categoriesByID[c.ID] = c
		if k := NormalizeName(c.Name); k != "" {
			if _, ok := s.categoriesByName[k]; !ok {
				s.categoriesByName[k] = c
			}
		}
	}
	for _, sp := range suppliers {
		s.suppliersByID[sp.ID] = sp
		if k := NormalizeName(sp.Name); k != "" {
			if _, ok := s.suppliersByName[k]; !ok {
				s.suppliersByName[k] = sp
			}
		}
		if k := NormalizeDocument(sp.Document); k != "" {
			if _, ok := s.suppliersByDocument[k]; !ok {
				s.suppliersByDocument[k] = sp
			}
		}
	}
	for _, p := range products {
		s.productsByID[p.ID] = p
		if k := NormalizeName(p.Name); k != "" {
			if _, ok := s.productsByName[k]; !ok {
				s.productsByName[k] = p
			}
		}
		if k := NormalizeDocument(p.Code); k != "" {
			if _, ok := s.productsByCode[k]; !ok {
				s.productsByCode[k] = p
			}
		}
	}
	for _, c := range customers {
		s.customersByID[c.ID] = c
	}
	for _, v := range vehicles {
		s.vehiclesByID[v.ID] = v
	}
	return s
}

// BuiltAt returns when the snapshot was assembled.
func (s *Snapshot) BuiltAt() time.Time { return s.builtAt }

// Customers returns the customer list for context matching.
func (s *Snapshot) Customers() []Customer { return s.customers }

// Vehicles returns the vehicle list for context matching.
func (s *Snapshot) Vehicles() []Vehicle { return s.vehicles }

// Counts returns entity totals for logging and inspection.
func (s *Snapshot) Counts() (categories, suppliers, products, customers, vehicles int) {
	return len(s.categories), len(s.suppliers), len(s.products), len(s.customers), len(s.vehicles)
}

// CategoryNames returns up to limit category display names in catalog order.
func (s *Snapshot) CategoryNames(limit int) []string {
	names := make([]string, 0, min(len(s.categories), limit))
	for _, c := range s.categories {
		if len(names) == limit {
			break
		}
		names = append(names, c.Name)
	}
	return names
}

// SupplierNames returns up to limit supplier display names in catalog order.
func (s *Snapshot) SupplierNames(limit int) []string {
	names := make([]string, 0, min(len(s.suppliers), limit))
	for _, sp := range s.suppliers {
		if len(names) == limit {
			break
		}
		names = append(names, sp.Name)
	}
	return names
}

// ProductNames returns up to limit product display names in catalog order.
func (s *Snapshot) ProductNames(limit int) []string {
	names := make([]string, 0, min(len(s.products), limit))
	for _, p := range s.products {
		if len(names) == limit {
			break
		}
		names = append(names, p.Name)
	}
	return names
}

// Cache hands out the current snapshot, rebuilding it when it ages past the
// TTL or when a caller forces a refresh. The swap is atomic: readers keep
// the old snapshot until the new one is fully populated, so nobody ever
// observes a partially-built catalog.
type Cache struct {
	source       Source
	ttl          time.Duration
	productLimit int
	logger       *slog.Logger

	mu      sync.Mutex // serializes rebuilds, not reads
	current atomic.Pointer[Snapshot]
}

func NewCache(source Source, ttl time.Duration, productLimit int, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	if ttl <= 0 {
		ttl = 60 * time.Second
	}
	if productLimit <= 0 {
		productLimit = 500
	}
	return &Cache{source: source, ttl: ttl, productLimit: productLimit, logger: logger}
}

// Get returns a snapshot no older than the TTL, rebuilding if needed. If a
// rebuild fails but an older snapshot exists, the stale snapshot is returned
// with a warning: a slightly stale catalog beats failing the extraction.
func (c *Cache) Get(ctx context.Context) (*Snapshot, error) {
	if snap := c.current.Load(); snap != nil && time.Since(snap.builtAt) < c.ttl {
		return snap, nil
	}
	snap, err := c.Refresh(ctx)
	if err != nil {
		if stale := c.current.Load(); stale != nil {
			c.logger.Warn("catalog.refresh_failed_serving_stale",
				"error", err, "age", time.Since(stale.builtAt).String())
			return stale, nil
		}
		return nil, err
	}
	return snap, nil
}

// Refresh rebuilds the snapshot unconditionally and swaps it in.
func (c *Cache) Refresh(ctx context.Context) (*Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	start := time.Now()
	categories, err := c.source.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	suppliers, err := c.source.ListSuppliers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list suppliers: %w", err)
	}
	products, err := c.source.ListProducts(ctx, "", c.productLimit)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	customers, err := c.source.ListCustomers(ctx, c.productLimit)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	vehicles, err := c.source.ListVehicles(ctx, c.productLimit)
	if err != nil {
		return nil, fmt.Errorf("list vehicles: %w", err)
	}

	snap := BuildSnapshot(categories, suppliers, products, customers, vehicles)
	c.current.Store(snap)

	c.logger.Info("catalog.snapshot.rebuilt",
		"categories", len(categories),
		"suppliers", len(suppliers),
		"products", len(products),
		"customers", len(customers),
		"vehicles", len(vehicles),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return snap, nil
}
