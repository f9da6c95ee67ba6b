package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tallerhub/docpipe/internal/common"
)

// PostgresSource reads the catalog from the workshop's Postgres database.
type PostgresSource struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// OpenPostgres creates a pgx pool against the catalog database.
func OpenPostgres(ctx context.Context, cfg common.CatalogConfig, logger *slog.Logger) (*PostgresSource, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("catalog.postgres.connecting")
	pc, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse catalog dsn: %w", err)
	}
	pc.MaxConns = cfg.MaxConns
	pc.ConnConfig.RuntimeParams["application_name"] = "docpipe"

	dialCtx := ctx
	if cfg.DialTimeout > 0 {
		var cancel context.CancelFunc
		dialCtx, cancel = context.WithTimeout(ctx, cfg.DialTimeout)
		defer cancel()
	}
	pool, err := pgxpool.NewWithConfig(dialCtx, pc)
	if err != nil {
		return nil, fmt.Errorf("connect catalog db: %w", err)
	}
	logger.Info("catalog.postgres.connected")
	return &PostgresSource{pool: pool, logger: logger}, nil
}

// Close releases the pool.
func (s *PostgresSource) Close() { s.pool.Close() }

// HealthCheck pings the pool to catch DSN issues early.
func (s *PostgresSource) HealthCheck(ctx context.Context, timeout time.Duration) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return s.pool.Ping(ctx)
}

func (s *PostgresSource) ListCategories(ctx context.Context) ([]Category, error) {
	rows, err := s.pool.Query(ctx, `SELECT id::text, nombre FROM categorias ORDER BY nombre`)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	var out []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *PostgresSource) ListSuppliers(ctx context.Context) ([]Supplier, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id::text, nombre, COALESCE(identificacion, '') FROM proveedores ORDER BY nombre`)
	if err != nil {
		return nil, fmt.Errorf("query suppliers: %w", err)
	}
	defer rows.Close()

	var out []Supplier
	for rows.Next() {
		var sp Supplier
		if err := rows.Scan(&sp.ID, &sp.Name, &sp.Document); err != nil {
			return nil, fmt.Errorf("scan supplier: %w", err)
		}
		out = append(out, sp)
	}
	return out, rows.Err()
}

func (s *PostgresSource) ListProducts(ctx context.Context, query string, limit int) ([]Product, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id::text, nombre, COALESCE(codigo, ''), COALESCE(precio_compra, 0),
		       COALESCE(categoria_id::text, ''), COALESCE(proveedor_id::text, '')
		FROM productos
		WHERE ($1 = '' OR nombre ILIKE '%' || $1 || '%' OR codigo ILIKE '%' || $1 || '%')
		ORDER BY nombre
		LIMIT $2`, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Code, &p.Price, &p.CategoryID, &p.SupplierID); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *PostgresSource) ListCustomers(ctx context.Context, limit int) ([]Customer, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id::text, nombre, COALESCE(cedula, ''), COALESCE(telefono, '')
		FROM clientes ORDER BY actualizado_en DESC NULLS LAST LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query customers: %w", err)
	}
	defer rows.Close()

	var out []Customer
	for rows.Next() {
		var c Customer
		if err := rows.Scan(&c.ID, &c.Name, &c.NationalID, &c.Phone); err != nil {
			return nil, fmt.Errorf("scan customer: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *PostgresSource) ListVehicles(ctx context.Context, limit int) ([]Vehicle, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT v.id::text, v.marca, v.modelo, COALESCE(v.placa, ''),
		       COALESCE(v.cliente_id::text, ''), COALESCE(c.nombre, '')
		FROM vehiculos v
		LEFT JOIN clientes c ON c.id = v.cliente_id
		ORDER BY v.actualizado_en DESC NULLS LAST LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query vehicles: %w", err)
	}
	defer rows.Close()

	var out []Vehicle
	for rows.Next() {
		var v Vehicle
		if err := rows.Scan(&v.ID, &v.Make, &v.Model, &v.Plate, &v.CustomerID, &v.CustomerName); err != nil {
			return nil, fmt.Errorf("scan vehicle: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}
