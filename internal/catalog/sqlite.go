package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "modernc.org/sqlite"
)

// SQLiteSource reads the catalog from a local SQLite file. It mirrors the
// Postgres schema so either backend can serve the same snapshot.
type SQLiteSource struct {
	db     *sql.DB
	logger *slog.Logger
}

// OpenSQLite opens (or creates) the catalog database at path.
func OpenSQLite(path string, logger *slog.Logger) (*SQLiteSource, error) {
	if logger == nil {
		logger = slog.Default()
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open catalog db: %w", err)
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA foreign_keys=ON;",
		"PRAGMA busy_timeout=5000;",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply pragma: %w", err)
		}
	}
	logger.Info("catalog.sqlite.opened", "path", path)
	return &SQLiteSource{db: db, logger: logger}, nil
}

// Close closes the underlying database handle.
func (s *SQLiteSource) Close() error { return s.db.Close() }

func (s *SQLiteSource) ListCategories(ctx context.Context) ([]Category, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT CAST(id AS TEXT), nombre FROM categorias ORDER BY nombre`)
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

func (s *SQLiteSource) ListSuppliers(ctx context.Context) ([]Supplier, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT CAST(id AS TEXT), nombre, COALESCE(identificacion, '') FROM proveedores ORDER BY nombre`)
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

func (s *SQLiteSource) ListProducts(ctx context.Context, query string, limit int) ([]Product, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT CAST(id AS TEXT), nombre, COALESCE(codigo, ''), COALESCE(precio_compra, 0),
		       COALESCE(CAST(categoria_id AS TEXT), ''), COALESCE(CAST(proveedor_id AS TEXT), '')
		FROM productos
		WHERE (? = '' OR nombre LIKE '%' || ? || '%' OR codigo LIKE '%' || ? || '%')
		ORDER BY nombre
		LIMIT ?`, query, query, query, limit)
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

func (s *SQLiteSource) ListCustomers(ctx context.Context, limit int) ([]Customer, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT CAST(id AS TEXT), nombre, COALESCE(cedula, ''), COALESCE(telefono, '')
		FROM clientes ORDER BY rowid DESC LIMIT ?`, limit)
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

func (s *SQLiteSource) ListVehicles(ctx context.Context, limit int) ([]Vehicle, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT CAST(v.id AS TEXT), v.marca, v.modelo, COALESCE(v.placa, ''),
		       COALESCE(CAST(v.cliente_id AS TEXT), ''), COALESCE(c.nombre, '')
		FROM vehiculos v
		LEFT JOIN clientes c ON c.id = v.cliente_id
		ORDER BY v.rowid DESC LIMIT ?`, limit)
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
