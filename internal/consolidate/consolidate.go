// Package consolidate merges duplicate invoice lines that name the same
// product. Grouping is by exact normalized name only; near matches are
// left alone so distinct products are never collapsed by accident.
package consolidate

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/tallerhub/docpipe/internal/catalog"
	"github.com/tallerhub/docpipe/internal/document"
)

// Consolidate groups resolved lines by normalized product name. Quantities
// and discounts are summed per group, the first line's descriptive fields
// and unit price win, and the group subtotal is recomputed as the sum of
// quantity times unit price over the merged members so no value is lost
// when duplicates carry different prices. A warning finding is emitted
// per merged group.
func Consolidate(lines []document.ResolvedLineItem) ([]document.ConsolidationGroup, []document.Finding) {
	groups := make([]document.ConsolidationGroup, 0, len(lines))
	index := make(map[string]int, len(lines))
	values := make([]decimal.Decimal, 0, len(lines))
	var findings []document.Finding

	for _, line := range lines {
		key := catalog.ConsolidationKey(line.Name)
		if key == "" {
			key = fmt.Sprintf("__blank_%d", len(groups))
		}
		value := line.Quantity.Mul(line.UnitPrice.Decimal)
		at, seen := index[key]
		if !seen {
			index[key] = len(groups)
			groups = append(groups, document.ConsolidationGroup{
				Key:         key,
				Line:        line,
				Members:     1,
				MergedNames: []string{line.Name},
			})
			values = append(values, value)
			continue
		}

		g := &groups[at]
		g.Members++
		g.MergedNames = append(g.MergedNames, line.Name)
		g.Line.Quantity = document.Amount{Decimal: g.Line.Quantity.Add(line.Quantity.Decimal)}
		g.Line.Discount = document.Amount{Decimal: g.Line.Discount.Add(line.Discount.Decimal)}
		values[at] = values[at].Add(value)
		if g.Line.Code == "" {
			g.Line.Code = line.Code
		}
		if g.Line.Unit == "" {
			g.Line.Unit = line.Unit
		}
	}

	for i := range groups {
		g := &groups[i]
		if g.Members > 1 {
			// Merged groups get a recomputed subtotal; untouched lines keep
			// the claimed one so downstream drift checks still see it.
			g.Line.Subtotal = document.Amount{
				Decimal: values[i].Sub(g.Line.Discount.Decimal),
			}
			findings = append(findings, document.Finding{
				Severity: document.SeverityWarning,
				Message: fmt.Sprintf("merged %d duplicate lines for %q: %s",
					g.Members, g.Line.Name, strings.Join(g.MergedNames, "; ")),
				Amounts: map[string]decimal.Decimal{
					"merged_quantity": g.Line.Quantity.Decimal,
				},
			})
		}
	}
	return groups, findings
}
