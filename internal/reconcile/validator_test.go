package reconcile

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tallerhub/docpipe/internal/document"
)

func group(name string, qty, price, discount float64) document.ConsolidationGroup {
	return document.ConsolidationGroup{
		Key: name,
		Line: document.ResolvedLineItem{
			LineItem: document.LineItem{
				Name:      name,
				Quantity:  document.AmountFromFloat(qty),
				UnitPrice: document.AmountFromFloat(price),
				Discount:  document.AmountFromFloat(discount),
				Subtotal:  document.AmountFromFloat(qty*price - discount),
			},
		},
		Members: 1,
	}
}

func header() document.Header {
	return document.Header{Number: "F-001", IssueDate: "2026-03-10", Currency: "USD"}
}

var (
	supplierParty = document.Party{Name: "Repuestos Andinos SA"}
	buyerParty    = document.Party{Name: "Taller El Norte"}
)

func totals(subtotal, tax, total float64) document.Totals {
	return document.Totals{
		Subtotal: document.AmountFromFloat(subtotal),
		Tax:      document.AmountFromFloat(tax),
		Total:    document.AmountFromFloat(total),
	}
}

func TestValidateCleanInvoice(t *testing.T) {
	groups := []document.ConsolidationGroup{
		group("Filtro Aceite", 2, 10, 0),
		group("Aceite 10W40", 1, 80, 0),
	}
	res := Validate(groups, header(), supplierParty, buyerParty, totals(100, 12, 112))

	assert.True(t, res.Report.IsValid)
	assert.Equal(t, 100, res.Report.Confidence)
	assert.Equal(t, document.TierHigh, res.Report.Tier())
	require.Len(t, res.Report.Findings, 1)
	assert.Equal(t, document.SeverityInfo, res.Report.Findings[0].Severity)
	assert.True(t, res.Computed.Subtotal.Equal(decimal.NewFromInt(100)))
	assert.True(t, res.Computed.Total.Equal(decimal.NewFromInt(112)))
}

func TestValidateTotalMismatchIsError(t *testing.T) {
	groups := []document.ConsolidationGroup{group("Repuesto", 1, 100, 0)}
	// Claimed total ignores the claimed tax: 100 + 12 != 100.
	res := Validate(groups, header(), supplierParty, buyerParty, totals(100, 12, 100))

	assert.False(t, res.Report.IsValid)
	assert.LessOrEqual(t, res.Report.Confidence, 70)
	assert.True(t, res.Report.HasErrors())

	found := false
	for _, f := range res.Report.Findings {
		if f.Severity == document.SeverityError {
			found = true
			assert.Contains(t, f.Amounts, "claimed")
			assert.Contains(t, f.Amounts, "computed")
		}
	}
	assert.True(t, found, "expected an error finding for the total mismatch")
}

func TestValidateToleratesRoundingOnTotals(t *testing.T) {
	groups := []document.ConsolidationGroup{group("Repuesto", 3, 33.33, 0)}
	// 99.99 computed vs 100.50 claimed subtotal: within the 1.0 band.
	res := Validate(groups, header(), supplierParty, buyerParty, totals(100.50, 0, 100.50))

	assert.True(t, res.Report.IsValid)
	for _, f := range res.Report.Findings {
		assert.NotEqual(t, document.SeverityError, f.Severity)
	}
}

func TestValidateLineDriftIsWarning(t *testing.T) {
	g := group("Repuesto", 2, 10, 0)
	g.Line.Subtotal = document.AmountFromFloat(25) // claimed, should be 20
	res := Validate([]document.ConsolidationGroup{g}, header(), supplierParty, buyerParty, document.Totals{})

	assert.True(t, res.Report.IsValid, "line drift alone never invalidates")
	assert.Equal(t, 95, res.Report.Confidence)
	require.NotEmpty(t, res.Report.Findings)
	assert.Equal(t, document.SeverityWarning, res.Report.Findings[0].Severity)
}

func TestValidateMergedGroupConservesValue(t *testing.T) {
	// A merged duplicate group carries members priced 1*5 and 1*10; its
	// consolidated subtotal 15 is the document's value even though quantity
	// times the representative price says 10, and the divergence is a merge
	// artifact, not a line arithmetic error.
	g := group("Filtro Aceite", 2, 5, 0)
	g.Members = 2
	g.Line.Subtotal = document.AmountFromFloat(15)
	res := Validate([]document.ConsolidationGroup{g}, header(), supplierParty, buyerParty, totals(15, 0, 15))

	assert.True(t, res.Report.IsValid)
	assert.Equal(t, 100, res.Report.Confidence)
	assert.True(t, res.Computed.Subtotal.Equal(decimal.NewFromInt(15)),
		"computed %s, want the consolidated 15", res.Computed.Subtotal)
	assert.True(t, res.Computed.Total.Equal(decimal.NewFromInt(15)))
}

func TestValidateSubtotalDriftIsWarning(t *testing.T) {
	groups := []document.ConsolidationGroup{group("Repuesto", 1, 100, 0)}
	res := Validate(groups, header(), supplierParty, buyerParty, document.Totals{
		Subtotal: document.AmountFromFloat(150),
	})

	assert.True(t, res.Report.IsValid)
	assert.Equal(t, 90, res.Report.Confidence)
}

func TestValidateImplausibleTaxRate(t *testing.T) {
	groups := []document.ConsolidationGroup{group("Repuesto", 1, 100, 0)}
	// 40% tax is outside the 5-25% band; total still reconciles.
	res := Validate(groups, header(), supplierParty, buyerParty, totals(100, 40, 140))

	assert.True(t, res.Report.IsValid)
	assert.Equal(t, 95, res.Report.Confidence)

	// 12% is plausible.
	res = Validate(groups, header(), supplierParty, buyerParty, totals(100, 12, 112))
	assert.Equal(t, 100, res.Report.Confidence)
}

func TestValidateZeroTaxSkipsPlausibility(t *testing.T) {
	groups := []document.ConsolidationGroup{group("Repuesto", 1, 100, 0)}
	res := Validate(groups, header(), supplierParty, buyerParty, totals(100, 0, 100))
	assert.Equal(t, 100, res.Report.Confidence)
}

func TestValidateMissingHeaderFields(t *testing.T) {
	groups := []document.ConsolidationGroup{group("Repuesto", 1, 100, 0)}
	res := Validate(groups, document.Header{}, supplierParty, buyerParty, totals(100, 0, 100))

	assert.True(t, res.Report.IsValid)
	// invoice_number and issue_date: 2 warnings at 3 points each.
	assert.Equal(t, 94, res.Report.Confidence)
	assert.Len(t, res.Report.Findings, 2)
}

func TestValidateMissingParties(t *testing.T) {
	groups := []document.ConsolidationGroup{group("Repuesto", 1, 100, 0)}
	res := Validate(groups, header(), document.Party{}, document.Party{}, totals(100, 0, 100))

	assert.True(t, res.Report.IsValid)
	assert.Equal(t, 94, res.Report.Confidence)

	// A legal name alone satisfies the supplier check.
	res = Validate(groups, header(), document.Party{LegalName: "Repuestos Andinos SA de CV"},
		buyerParty, totals(100, 0, 100))
	assert.Equal(t, 100, res.Report.Confidence)
}

func TestValidateNoLinesIsError(t *testing.T) {
	res := Validate(nil, header(), supplierParty, buyerParty, document.Totals{})

	assert.False(t, res.Report.IsValid)
	assert.Equal(t, 70, res.Report.Confidence)
	assert.True(t, res.Report.HasErrors())
}

func TestValidateConfidenceClampsAtZero(t *testing.T) {
	var groups []document.ConsolidationGroup
	for i := 0; i < 15; i++ {
		g := group("Repuesto", 2, 10, 0)
		g.Key = g.Key + string(rune('a'+i))
		g.Line.Subtotal = document.AmountFromFloat(99)
		groups = append(groups, g)
	}
	// Fifteen drifting lines plus a broken total and missing header drive
	// the raw score negative.
	res := Validate(groups, document.Header{}, supplierParty, buyerParty, totals(500, 0, 900))

	assert.GreaterOrEqual(t, res.Report.Confidence, 0)
	assert.Equal(t, 0, res.Report.Confidence)
	assert.Equal(t, document.TierLow, res.Report.Tier())
}

func TestValidateRetentionsEnterTotalFormula(t *testing.T) {
	groups := []document.ConsolidationGroup{group("Servicio", 1, 1000, 0)}
	claimed := document.Totals{
		Subtotal:    document.AmountFromFloat(1000),
		Tax:         document.AmountFromFloat(160),
		WithheldVAT: document.AmountFromFloat(120),
		Total:       document.AmountFromFloat(1040), // 1000 + 160 - 120
	}
	res := Validate(groups, header(), supplierParty, buyerParty, claimed)

	assert.True(t, res.Report.IsValid)
	assert.True(t, res.Computed.Total.Equal(decimal.NewFromInt(1040)),
		"computed %s", res.Computed.Total)
}

func TestValidateDiscountAndOtherChargesEnterTotalFormula(t *testing.T) {
	groups := []document.ConsolidationGroup{group("Servicio", 1, 200, 0)}
	claimed := document.Totals{
		Subtotal:     document.AmountFromFloat(200),
		Discount:     document.AmountFromFloat(20),
		Tax:          document.AmountFromFloat(28.8), // 16% of 180
		OtherCharges: document.AmountFromFloat(5),
		Total:        document.AmountFromFloat(213.8),
	}
	res := Validate(groups, header(), supplierParty, buyerParty, claimed)

	assert.True(t, res.Report.IsValid)
	for _, f := range res.Report.Findings {
		assert.NotEqual(t, document.SeverityError, f.Severity, f.Message)
	}
}
