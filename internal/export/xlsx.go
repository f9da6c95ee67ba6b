// Package export renders reconciled documents into spreadsheets for the
// workshop's accounting workflow.
package export

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/tallerhub/docpipe/internal/document"
)

// Service produces XLSX bytes for reconciled invoices.
type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

// InvoiceXLSX returns a workbook with one sheet of line items followed by
// the claimed-vs-computed totals and the reconciliation findings.
func (s *Service) InvoiceXLSX(doc *document.ReconciledDocument) ([]byte, error) {
	start := time.Now()

	f := excelize.NewFile()
	const sheet = "Invoice"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)

	write := func(col, row int, v any) {
		cell, _ := excelize.CoordinatesToCellName(col, row)
		_ = f.SetCellValue(sheet, cell, v)
	}

	write(1, 1, "Supplier")
	write(2, 1, doc.Supplier.Name)
	write(3, 1, doc.Supplier.TaxID)
	write(1, 2, "Invoice")
	write(2, 2, doc.Header.Number)
	write(3, 2, doc.Header.IssueDate)
	write(4, 2, doc.Header.Currency)

	headers := []string{"Item", "Code", "Category", "Qty", "Unit Price", "Discount", "Subtotal", "Merged"}
	for i, h := range headers {
		write(i+1, 4, h)
	}

	row := 5
	for _, g := range doc.Lines {
		line := g.Line
		write(1, row, line.Name)
		write(2, row, line.Code)
		write(3, row, g.Line.Category.Name)
		write(4, row, line.Quantity.String())
		write(5, row, line.UnitPrice.String())
		write(6, row, line.Discount.String())
		write(7, row, line.Subtotal.String())
		if g.Members > 1 {
			write(8, row, fmt.Sprintf("%d lines", g.Members))
		}
		row++
	}

	row++
	totals := []struct {
		label    string
		claimed  string
		computed string
	}{
		{"Subtotal", doc.Claimed.Subtotal.String(), doc.Computed.Subtotal.String()},
		{"Discount", doc.Claimed.Discount.String(), doc.Computed.Discount.String()},
		{"Tax", doc.Claimed.Tax.String(), doc.Computed.Tax.String()},
		{"Other Charges", doc.Claimed.OtherCharges.String(), doc.Computed.OtherCharges.String()},
		{"Retentions", doc.Claimed.Retentions().String(), doc.Computed.Retentions().String()},
		{"Total", doc.Claimed.Total.String(), doc.Computed.Total.String()},
	}
	write(1, row, "Totals")
	write(2, row, "Claimed")
	write(3, row, "Computed")
	row++
	for _, t := range totals {
		write(1, row, t.label)
		write(2, row, t.claimed)
		write(3, row, t.computed)
		row++
	}

	row++
	write(1, row, "Confidence")
	write(2, row, doc.Report.Confidence)
	write(3, row, string(doc.Report.Tier()))
	row++
	for _, finding := range doc.Report.Findings {
		write(1, row, string(finding.Severity))
		write(2, row, truncate(finding.Message, 140))
		row++
	}

	_ = f.SetColWidth(sheet, "A", "A", 32)
	_ = f.SetColWidth(sheet, "B", "B", 40)
	_ = f.SetColWidth(sheet, "C", "C", 22)
	_ = f.SetColWidth(sheet, "D", "G", 14)
	_ = f.SetColWidth(sheet, "H", "H", 12)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"request_id", doc.RequestID,
		"lines", len(doc.Lines),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	if n <= 1 {
		return s[:n]
	}
	return s[:n-1] + "…"
}
