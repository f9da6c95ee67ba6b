package catalog

import "github.com/shopspring/decimal"

// Category is a known product category.
type Category struct {
	ID   string
	Name string
}

// Supplier is a known supplier. Document is the tax/company identification
// number as stored, before normalization.
type Supplier struct {
	ID       string
	Name     string
	Document string
}

// Product is a known catalog product.
type Product struct {
	ID         string
	Name       string
	Code       string
	Price      decimal.Decimal
	CategoryID string
	SupplierID string
}

// Customer is a known workshop customer (appointment variant).
type Customer struct {
	ID         string
	Name       string
	NationalID string
	Phone      string
}

// Vehicle is a known customer vehicle (appointment variant).
type Vehicle struct {
	ID           string
	Make         string
	Model        string
	Plate        string
	CustomerID   string
	CustomerName string
}
