package document

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Party is one side of an invoice (supplier or buyer) as extracted.
type Party struct {
	Name      string `json:"name,omitempty"`
	LegalName string `json:"legal_name,omitempty"`
	TaxID     string `json:"tax_id,omitempty"`
	Address   string `json:"address,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Email     string `json:"email,omitempty"`
}

// Header carries invoice-level identification fields.
type Header struct {
	Number    string `json:"number,omitempty"`
	IssueDate string `json:"issue_date,omitempty"` // YYYY-MM-DD
	DueDate   string `json:"due_date,omitempty"`
	Currency  string `json:"currency,omitempty"`
}

// Totals are the document-level figures, either as claimed by the provider
// or as recomputed by the reconciliation validator.
type Totals struct {
	Subtotal       Amount `json:"subtotal"`
	Tax            Amount `json:"tax"`
	Discount       Amount `json:"discount"`
	OtherCharges   Amount `json:"other_charges"`
	WithheldVAT    Amount `json:"withheld_vat"`
	WithheldIncome Amount `json:"withheld_income"`
	Total          Amount `json:"total"`
}

// Retentions is the sum of withheld tax amounts.
func (t Totals) Retentions() decimal.Decimal {
	return t.WithheldVAT.Add(t.WithheldIncome.Decimal)
}

// LineItem is a draft invoice line before entity resolution. Category and
// supplier hints ride along untouched until the resolver consumes them.
type LineItem struct {
	Name      string `json:"name"`
	Code      string `json:"code,omitempty"`
	Unit      string `json:"unit,omitempty"`
	Quantity  Amount `json:"quantity"`
	UnitPrice Amount `json:"unit_price"`
	Discount  Amount `json:"discount,omitempty"`
	TaxRate   Amount `json:"tax_rate,omitempty"`
	Subtotal  Amount `json:"subtotal"`

	CategoryHint Hint `json:"category,omitempty"`
	SupplierHint Hint `json:"supplier,omitempty"`
}

// ResolvedLineItem is a line item whose category, supplier, and product
// references have been checked against the catalog snapshot.
type ResolvedLineItem struct {
	LineItem
	Category EntityRef `json:"category_ref"`
	Supplier EntityRef `json:"supplier_ref"`
	Product  EntityRef `json:"product_ref"`
}

// DraftInvoice is the structured payload salvaged from provider output.
// Nothing about it is trusted yet: fields may be missing and references may
// be invented.
type DraftInvoice struct {
	Supplier Party      `json:"supplier"`
	Buyer    Party      `json:"buyer"`
	Header   Header     `json:"invoice"`
	Lines    []LineItem `json:"lines"`
	Claimed  Totals     `json:"totals"`
}

// DecodeDraftInvoice unmarshals a salvaged payload into the draft stage.
func DecodeDraftInvoice(raw json.RawMessage) (*DraftInvoice, error) {
	var d DraftInvoice
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("decode draft invoice: %w", err)
	}
	return &d, nil
}

// StructurallyEmpty reports whether the draft carries no entity data at all:
// no line items, no counterparty, and no total. Such output cannot seed a
// review screen and the caller should refuse to open one.
func (d *DraftInvoice) StructurallyEmpty() bool {
	if len(d.Lines) > 0 {
		return false
	}
	if strings.TrimSpace(d.Supplier.Name) != "" || strings.TrimSpace(d.Supplier.LegalName) != "" {
		return false
	}
	return d.Claimed.Total.IsZero()
}

// ResolvedInvoice is the draft after entity resolution. Transitioning to
// this stage never drops data: unresolved hints survive inside EntityRefs.
type ResolvedInvoice struct {
	Supplier    Party
	SupplierRef EntityRef
	Buyer       Party
	Header      Header
	Lines       []ResolvedLineItem
	Claimed     Totals
}
