package pipeline

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/tallerhub/docpipe/constants"
	"github.com/tallerhub/docpipe/internal/common"
	"github.com/tallerhub/docpipe/internal/consolidate"
	"github.com/tallerhub/docpipe/internal/document"
	"github.com/tallerhub/docpipe/internal/reconcile"
)

// invoiceStage turns a salvaged payload into a reconciled invoice:
// decode, schema gate, entity resolution, duplicate consolidation, and
// arithmetic reconciliation, in that order.
type invoiceStage struct {
	logger *slog.Logger
}

func (st *invoiceStage) run(rid string, raw json.RawMessage, snap snapshotView) (*document.ReconciledDocument, error) {
	draft, err := document.DecodeDraftInvoice(raw)
	if err != nil {
		return nil, common.NewAppError("INVALID_OUTPUT", "provider output is not a draft invoice", err)
	}
	if draft.StructurallyEmpty() {
		return nil, common.NewAppError("EMPTY_OUTPUT", "provider returned a structurally empty invoice", nil)
	}

	var schemaFindings []document.Finding
	if err := document.ValidateAgainstSchema(document.BuildInvoiceJSONSchema(), raw); err != nil {
		// Schema violations degrade the report instead of killing the
		// extraction; operators fix the draft on the review screen.
		st.logger.Warn("pipeline.invoice.schema_violation", "req_id", rid, "error", err)
		schemaFindings = append(schemaFindings, document.Finding{
			Severity: document.SeverityWarning,
			Message:  fmt.Sprintf("output deviates from expected shape: %v", err),
		})
	}

	resolved := resolveInvoice(draft, snap)
	groups, dupFindings := consolidate.Consolidate(resolved.Lines)
	result := reconcile.Validate(groups, resolved.Header, resolved.Supplier, resolved.Buyer, resolved.Claimed)

	report := result.Report
	report.Findings = append(schemaFindings, append(dupFindings, report.Findings...)...)

	st.logger.Info("pipeline.invoice.reconciled",
		"req_id", rid,
		"lines", len(groups),
		"findings", len(report.Findings),
		"confidence", report.Confidence,
		"valid", report.IsValid,
	)

	return &document.ReconciledDocument{
		Type:        constants.DocumentInvoice,
		Supplier:    resolved.Supplier,
		SupplierRef: resolved.SupplierRef,
		Buyer:       resolved.Buyer,
		Header:      resolved.Header,
		Lines:       groups,
		Claimed:     resolved.Claimed,
		Computed:    result.Computed,
		Report:      report,
		RawOutput:   raw,
	}, nil
}

// rereconcile rebuilds the report for an already-resolved invoice, as
// used after operator corrections. Resolution is not repeated: the
// corrected refs are taken as authoritative.
func (st *invoiceStage) rereconcile(rid string, inv *document.ResolvedInvoice) *document.ReconciledDocument {
	groups, dupFindings := consolidate.Consolidate(inv.Lines)
	result := reconcile.Validate(groups, inv.Header, inv.Supplier, inv.Buyer, inv.Claimed)

	report := result.Report
	report.Findings = append(dupFindings, report.Findings...)

	st.logger.Info("pipeline.invoice.rereconciled",
		"req_id", rid,
		"lines", len(groups),
		"confidence", report.Confidence,
		"valid", report.IsValid,
	)

	return &document.ReconciledDocument{
		Type:        constants.DocumentInvoice,
		Supplier:    inv.Supplier,
		SupplierRef: inv.SupplierRef,
		Buyer:       inv.Buyer,
		Header:      inv.Header,
		Lines:       groups,
		Claimed:     inv.Claimed,
		Computed:    result.Computed,
		Report:      report,
	}
}

// snapshotView is the slice of the catalog snapshot the stages need.
// Narrowing it here keeps the stages testable with a handful of entities.
type snapshotView interface {
	ResolveCategory(hint document.Hint) document.EntityRef
	ResolveSupplier(hint document.Hint) document.EntityRef
	ResolveProduct(name, code string) document.EntityRef
}

func resolveInvoice(draft *document.DraftInvoice, snap snapshotView) *document.ResolvedInvoice {
	out := &document.ResolvedInvoice{
		Supplier: draft.Supplier,
		Buyer:    draft.Buyer,
		Header:   draft.Header,
		Claimed:  draft.Claimed,
		Lines:    make([]document.ResolvedLineItem, 0, len(draft.Lines)),
	}
	out.SupplierRef = snap.ResolveSupplier(document.Hint{
		Name:     draft.Supplier.Name,
		Document: draft.Supplier.TaxID,
	})
	for _, line := range draft.Lines {
		out.Lines = append(out.Lines, document.ResolvedLineItem{
			LineItem: line,
			Category: snap.ResolveCategory(line.CategoryHint),
			Supplier: snap.ResolveSupplier(line.SupplierHint),
			Product:  snap.ResolveProduct(line.Name, line.Code),
		})
	}
	return out
}
