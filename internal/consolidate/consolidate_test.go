package consolidate

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tallerhub/docpipe/internal/document"
)

func line(name string, qty, price, discount float64) document.ResolvedLineItem {
	return document.ResolvedLineItem{
		LineItem: document.LineItem{
			Name:      name,
			Quantity:  document.AmountFromFloat(qty),
			UnitPrice: document.AmountFromFloat(price),
			Discount:  document.AmountFromFloat(discount),
			Subtotal:  document.AmountFromFloat(qty*price - discount),
		},
	}
}

func TestConsolidateMergesNormalizedDuplicates(t *testing.T) {
	groups, findings := Consolidate([]document.ResolvedLineItem{
		line("Filtro Aceite", 2, 10, 0),
		line("filtro   aceite", 3, 10, 5),
	})

	require.Len(t, groups, 1)
	g := groups[0]
	assert.Equal(t, 2, g.Members)
	assert.Equal(t, []string{"Filtro Aceite", "filtro   aceite"}, g.MergedNames)
	assert.True(t, g.Line.Quantity.Equal(decimal.NewFromInt(5)))
	assert.True(t, g.Line.Discount.Equal(decimal.NewFromInt(5)))
	// 5 * 10 - 5
	assert.True(t, g.Line.Subtotal.Equal(decimal.NewFromInt(45)))
	// First line's descriptive fields win.
	assert.Equal(t, "Filtro Aceite", g.Line.Name)

	require.Len(t, findings, 1)
	assert.Equal(t, document.SeverityWarning, findings[0].Severity)
	assert.Contains(t, findings[0].Message, "Filtro Aceite")
}

func TestConsolidateLeavesDistinctNamesAlone(t *testing.T) {
	groups, findings := Consolidate([]document.ResolvedLineItem{
		line("Filtro Aceite", 1, 10, 0),
		line("Filtro de Aceite", 1, 12, 0),
	})

	assert.Len(t, groups, 2)
	assert.Empty(t, findings, "near matches must not merge")
}

func TestConsolidateConservesTotalValue(t *testing.T) {
	lines := []document.ResolvedLineItem{
		line("Bujía NGK", 4, 3.5, 0),
		line("bujia ngk", 2, 3.5, 1),
		line("bujia   NGK", 1, 4.2, 0),
		line("Aceite 10W40", 1, 25, 0),
	}
	before := decimal.Zero
	for _, l := range lines {
		before = before.Add(l.Quantity.Mul(l.UnitPrice.Decimal).Sub(l.Discount.Decimal))
	}

	groups, _ := Consolidate(lines)
	after := decimal.Zero
	for _, g := range groups {
		after = after.Add(g.Line.Subtotal.Decimal)
	}
	assert.True(t, before.Equal(after), "merging must not change the invoice value: %s != %s", before, after)
}

func TestConsolidateConservesValueAcrossDifferingPrices(t *testing.T) {
	// Same product billed twice at different unit prices, as happens when
	// one line is a reorder at a newer price.
	groups, _ := Consolidate([]document.ResolvedLineItem{
		line("Filtro Aceite", 1, 5, 0),
		line("filtro aceite", 1, 10, 0),
	})

	require.Len(t, groups, 1)
	g := groups[0]
	assert.True(t, g.Line.Quantity.Equal(decimal.NewFromInt(2)))
	// The first price is only representative; the subtotal is the summed
	// value of the members, 1*5 + 1*10.
	assert.True(t, g.Line.UnitPrice.Equal(decimal.NewFromInt(5)))
	assert.True(t, g.Line.Subtotal.Equal(decimal.NewFromInt(15)),
		"merged subtotal %s must conserve value 15", g.Line.Subtotal)
}

func TestConsolidateSingletonKeepsClaimedSubtotal(t *testing.T) {
	l := line("Correa tiempo", 1, 30, 0)
	// A claimed subtotal that disagrees with qty*price must survive so the
	// reconciliation pass can flag it.
	l.Subtotal = document.AmountFromFloat(99)

	groups, findings := Consolidate([]document.ResolvedLineItem{l})
	require.Len(t, groups, 1)
	assert.Empty(t, findings)
	assert.True(t, groups[0].Line.Subtotal.Equal(decimal.NewFromInt(99)))
}

func TestConsolidateFillsMissingFieldsFromLaterLines(t *testing.T) {
	a := line("Filtro Aire", 1, 8, 0)
	b := line("FILTRO AIRE", 1, 8, 0)
	b.Code = "FA-200"
	b.Unit = "und"

	groups, _ := Consolidate([]document.ResolvedLineItem{a, b})
	require.Len(t, groups, 1)
	assert.Equal(t, "FA-200", groups[0].Line.Code)
	assert.Equal(t, "und", groups[0].Line.Unit)
}

func TestConsolidateBlankNamesNeverMerge(t *testing.T) {
	groups, _ := Consolidate([]document.ResolvedLineItem{
		line("", 1, 5, 0),
		line("   ", 1, 7, 0),
	})
	assert.Len(t, groups, 2)
}

func TestConsolidateEmptyInput(t *testing.T) {
	groups, findings := Consolidate(nil)
	assert.Empty(t, groups)
	assert.Empty(t, findings)
}
