package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tallerhub/docpipe/internal/document"
)

func testSnapshot() *Snapshot {
	return BuildSnapshot(
		[]Category{
			{ID: "c1", Name: "Lubricantes"},
			{ID: "c2", Name: "Frenos"},
		},
		[]Supplier{
			{ID: "s1", Name: "Repuestos El Motor", Document: "J-12345678-9"},
			{ID: "s2", Name: "Lubricantes Nacionales", Document: "J-98765432-1"},
		},
		[]Product{
			{ID: "p1", Name: "Filtro Aceite", Code: "FA-100"},
			{ID: "p2", Name: "Pastillas Freno Delanteras", Code: "PF-220"},
		},
		[]Customer{
			{ID: "cu1", Name: "María Pérez", NationalID: "V-11222333"},
			{ID: "cu2", Name: "Pedro Rodríguez"},
		},
		[]Vehicle{
			{ID: "v1", Make: "Toyota", Model: "Corolla", Plate: "ABC-123", CustomerID: "cu1"},
			{ID: "v2", Make: "Ford", Model: "Fiesta", Plate: "XYZ-789", CustomerID: "cu2"},
		},
	)
}

func TestResolveSupplierByID(t *testing.T) {
	snap := testSnapshot()

	ref := snap.ResolveSupplier(document.Hint{ID: "s1", Name: "Rep. El Motor"})
	require.NotNil(t, ref.ID)
	assert.Equal(t, "s1", *ref.ID)
	// The document's own spelling survives for the review screen.
	assert.Equal(t, "Rep. El Motor", ref.Name)
}

func TestResolveSupplierByDocumentOutranksName(t *testing.T) {
	snap := testSnapshot()

	// Name points at one supplier, document at another; document wins.
	ref := snap.ResolveSupplier(document.Hint{Name: "Lubricantes Nacionales", Document: "J123456789"})
	require.NotNil(t, ref.ID)
	assert.Equal(t, "s1", *ref.ID)
}

func TestResolveSupplierByExactName(t *testing.T) {
	snap := testSnapshot()

	ref := snap.ResolveSupplier(document.Hint{Name: "repuestos  el  motor"})
	require.NotNil(t, ref.ID)
	assert.Equal(t, "s1", *ref.ID)
}

func TestResolveSupplierBySimilarity(t *testing.T) {
	snap := testSnapshot()

	ref := snap.ResolveSupplier(document.Hint{Name: "Repuestos El Motr"})
	require.NotNil(t, ref.ID)
	assert.Equal(t, "s1", *ref.ID)
}

func TestResolveSupplierUnresolved(t *testing.T) {
	snap := testSnapshot()

	ref := snap.ResolveSupplier(document.Hint{Name: "Acme Corp", Document: "999"})
	assert.Nil(t, ref.ID)
	assert.Equal(t, "Acme Corp", ref.Name)
	assert.Equal(t, "999", ref.Document)
	assert.True(t, ref.Unresolved())
}

func TestResolveSupplierUnknownIDFallsThrough(t *testing.T) {
	snap := testSnapshot()

	// An invented id must not resolve; the name still can.
	ref := snap.ResolveSupplier(document.Hint{ID: "s99", Name: "Frenos del Este"})
	assert.Nil(t, ref.ID)
	assert.Equal(t, "Frenos del Este", ref.Name)
}

func TestResolveCategory(t *testing.T) {
	snap := testSnapshot()

	ref := snap.ResolveCategory(document.Hint{Name: "lubricantes"})
	require.NotNil(t, ref.ID)
	assert.Equal(t, "c1", *ref.ID)

	ref = snap.ResolveCategory(document.Hint{Name: "Suspensión"})
	assert.True(t, ref.Unresolved())
}

func TestResolveProduct(t *testing.T) {
	snap := testSnapshot()

	// Code outranks name.
	ref := snap.ResolveProduct("something else entirely", "fa100")
	require.NotNil(t, ref.ID)
	assert.Equal(t, "p1", *ref.ID)

	ref = snap.ResolveProduct("filtro aceite", "")
	require.NotNil(t, ref.ID)
	assert.Equal(t, "p1", *ref.ID)

	ref = snap.ResolveProduct("Bujía NGK", "")
	assert.True(t, ref.Unresolved())
	assert.Equal(t, "Bujía NGK", ref.Name)
}

func TestResolveEmptyHintStaysUnresolved(t *testing.T) {
	snap := testSnapshot()

	ref := snap.ResolveSupplier(document.Hint{})
	assert.True(t, ref.Unresolved())
	assert.Empty(t, ref.Name)
}

func TestMatchCustomer(t *testing.T) {
	snap := testSnapshot()

	got := MatchCustomer("maria perez", snap.Customers())
	require.NotNil(t, got)
	assert.Equal(t, "cu1", got.ID)

	// Containment: first name only.
	got = MatchCustomer("Pedro", snap.Customers())
	require.NotNil(t, got)
	assert.Equal(t, "cu2", got.ID)

	assert.Nil(t, MatchCustomer("Juan Gómez", snap.Customers()))
	assert.Nil(t, MatchCustomer("", snap.Customers()))
}

func TestMatchVehicle(t *testing.T) {
	snap := testSnapshot()

	got := MatchVehicle(document.VehicleInfo{Plate: "abc123"}, snap.Vehicles())
	require.NotNil(t, got)
	assert.Equal(t, "v1", got.ID)

	got = MatchVehicle(document.VehicleInfo{Make: "ford", Model: "fiesta"}, snap.Vehicles())
	require.NotNil(t, got)
	assert.Equal(t, "v2", got.ID)

	// Plate outranks a conflicting make/model.
	got = MatchVehicle(document.VehicleInfo{Make: "Ford", Model: "Fiesta", Plate: "ABC-123"}, snap.Vehicles())
	require.NotNil(t, got)
	assert.Equal(t, "v1", got.ID)

	assert.Nil(t, MatchVehicle(document.VehicleInfo{Make: "Honda", Model: "Civic"}, snap.Vehicles()))
	assert.Nil(t, MatchVehicle(document.VehicleInfo{}, snap.Vehicles()))
}
