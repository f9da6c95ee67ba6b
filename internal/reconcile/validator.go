// Package reconcile cross-checks an invoice's claimed totals against
// amounts recomputed from its consolidated lines and produces a scored
// report. The model's own arithmetic is never trusted.
package reconcile

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/tallerhub/docpipe/internal/document"
)

var (
	lineTolerance  = decimal.NewFromFloat(0.01)
	totalTolerance = decimal.NewFromFloat(1.0)

	taxRateFloor   = decimal.NewFromFloat(0.05)
	taxRateCeiling = decimal.NewFromFloat(0.25)
)

// Penalty weights applied to the starting confidence of 100.
const (
	penaltyLineDrift      = 5
	penaltySubtotalDrift  = 10
	penaltyTotalMismatch  = 30
	penaltyTaxImplausible = 5
	penaltyMissingHeader  = 3
	penaltyNoLines        = 30
)

// Result carries the recomputed totals next to the report so callers can
// persist both sides of the comparison.
type Result struct {
	Computed document.Totals
	Report   document.Report
}

// Validate recomputes subtotal and total from the consolidated groups and
// scores the document against its claimed totals. It always returns a
// report; findings degrade confidence, errors additionally mark the
// document invalid.
func Validate(groups []document.ConsolidationGroup, header document.Header, supplier, buyer document.Party, claimed document.Totals) Result {
	confidence := 100
	valid := true
	var findings []document.Finding

	addFinding := func(sev document.Severity, penalty int, msg string, amounts map[string]decimal.Decimal) {
		findings = append(findings, document.Finding{Severity: sev, Message: msg, Amounts: amounts})
		confidence -= penalty
		if sev == document.SeverityError {
			valid = false
		}
	}

	if len(groups) == 0 {
		addFinding(document.SeverityError, penaltyNoLines, "no line items extracted", nil)
	}

	computedSubtotal := decimal.Zero
	for _, g := range groups {
		line := g.Line
		if g.Members > 1 {
			// The consolidator recomputed this subtotal from the member
			// lines; quantity times the representative unit price is not
			// meaningful for a merged group, so the recorded value is the
			// one that conserves the document's total.
			computedSubtotal = computedSubtotal.Add(line.Subtotal.Decimal)
			continue
		}
		expected := line.Quantity.Mul(line.UnitPrice.Decimal).Sub(line.Discount.Decimal)
		computedSubtotal = computedSubtotal.Add(expected)

		drift := line.Subtotal.Sub(expected).Abs()
		if drift.GreaterThan(lineTolerance) {
			addFinding(document.SeverityWarning, penaltyLineDrift,
				fmt.Sprintf("line %q: claimed subtotal %s differs from %s x %s - %s",
					line.Name, line.Subtotal, line.Quantity, line.UnitPrice, line.Discount),
				map[string]decimal.Decimal{
					"claimed":  line.Subtotal.Decimal,
					"expected": expected,
					"drift":    drift,
				})
		}
	}

	if !claimed.Subtotal.IsZero() {
		drift := claimed.Subtotal.Sub(computedSubtotal).Abs()
		if drift.GreaterThan(totalTolerance) {
			addFinding(document.SeverityWarning, penaltySubtotalDrift,
				fmt.Sprintf("claimed subtotal %s differs from sum of lines %s",
					claimed.Subtotal, computedSubtotal),
				map[string]decimal.Decimal{
					"claimed":  claimed.Subtotal.Decimal,
					"computed": computedSubtotal,
					"drift":    drift,
				})
		}
	}

	retentions := claimed.Retentions()
	computedTotal := computedSubtotal.
		Sub(claimed.Discount.Decimal).
		Add(claimed.Tax.Decimal).
		Add(claimed.OtherCharges.Decimal).
		Sub(retentions)

	if !claimed.Total.IsZero() {
		drift := claimed.Total.Sub(computedTotal).Abs()
		if drift.GreaterThan(totalTolerance) {
			addFinding(document.SeverityError, penaltyTotalMismatch,
				fmt.Sprintf("claimed total %s does not reconcile: computed %s from subtotal %s - discount %s + tax %s + other %s - retentions %s",
					claimed.Total, computedTotal, computedSubtotal,
					claimed.Discount, claimed.Tax, claimed.OtherCharges, retentions),
				map[string]decimal.Decimal{
					"claimed":  claimed.Total.Decimal,
					"computed": computedTotal,
					"drift":    drift,
				})
		}
	}

	if !claimed.Tax.IsZero() && computedSubtotal.IsPositive() {
		rate := claimed.Tax.Div(computedSubtotal)
		if rate.LessThan(taxRateFloor) || rate.GreaterThan(taxRateCeiling) {
			addFinding(document.SeverityWarning, penaltyTaxImplausible,
				fmt.Sprintf("tax %s is %s%% of subtotal %s, outside the plausible 5%%-25%% band",
					claimed.Tax, rate.Mul(decimal.NewFromInt(100)).Round(1), computedSubtotal),
				map[string]decimal.Decimal{
					"tax":      claimed.Tax.Decimal,
					"subtotal": computedSubtotal,
					"rate":     rate,
				})
		}
	}

	for _, missing := range missingHeaderFields(header, supplier, buyer) {
		addFinding(document.SeverityWarning, penaltyMissingHeader,
			fmt.Sprintf("missing header field %q", missing), nil)
	}

	if confidence < 0 {
		confidence = 0
	}
	if confidence > 100 {
		confidence = 100
	}
	if len(findings) == 0 {
		findings = append(findings, document.Finding{
			Severity: document.SeverityInfo,
			Message:  "all totals reconcile",
		})
	}

	computed := document.Totals{
		Subtotal:       document.Amount{Decimal: computedSubtotal},
		Tax:            claimed.Tax,
		Discount:       claimed.Discount,
		OtherCharges:   claimed.OtherCharges,
		WithheldVAT:    claimed.WithheldVAT,
		WithheldIncome: claimed.WithheldIncome,
		Total:          document.Amount{Decimal: computedTotal},
	}
	return Result{
		Computed: computed,
		Report: document.Report{
			Findings:   findings,
			Confidence: confidence,
			IsValid:    valid,
		},
	}
}

func missingHeaderFields(h document.Header, supplier, buyer document.Party) []string {
	var missing []string
	if supplier.Name == "" && supplier.LegalName == "" {
		missing = append(missing, "supplier_name")
	}
	if buyer.Name == "" && buyer.LegalName == "" {
		missing = append(missing, "buyer_name")
	}
	if h.Number == "" {
		missing = append(missing, "invoice_number")
	}
	if h.IssueDate == "" {
		missing = append(missing, "issue_date")
	}
	return missing
}
