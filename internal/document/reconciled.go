package document

import (
	"encoding/json"
	"time"

	"github.com/tallerhub/docpipe/constants"
)

// ConsolidationGroup is one or more resolved line items merged under a
// shared normalized-name key. Members counts the merged inputs; MergedNames
// lists the original spellings when more than one line was folded in.
type ConsolidationGroup struct {
	Key         string           `json:"key"`
	Line        ResolvedLineItem `json:"line"`
	Members     int              `json:"members"`
	MergedNames []string         `json:"merged_names,omitempty"`
}

// ReconciledDocument is the immutable result of one extraction request.
// Operator corrections run a new reconciliation pass producing a new value;
// the report always describes exactly the data next to it.
type ReconciledDocument struct {
	Type constants.DocumentType `json:"type"`

	// Invoice variant.
	Supplier    Party                `json:"supplier,omitempty"`
	SupplierRef EntityRef            `json:"supplier_ref,omitzero"`
	Buyer       Party                `json:"buyer,omitempty"`
	Header      Header               `json:"invoice,omitempty"`
	Lines       []ConsolidationGroup `json:"lines,omitempty"`
	Claimed     Totals               `json:"claimed_totals,omitzero"`
	Computed    Totals               `json:"computed_totals,omitzero"`

	// Appointment variant.
	Appointment *Appointment `json:"appointment,omitempty"`

	Report      Report          `json:"report"`
	RawOutput   json.RawMessage `json:"raw_output,omitempty"`
	ExtractedAt time.Time       `json:"extracted_at"`
	RequestID   string          `json:"request_id,omitempty"`
}
