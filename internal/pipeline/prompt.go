package pipeline

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/tallerhub/docpipe/internal/catalog"
)

// maxCatalogNames bounds how many catalog entries are inlined into a
// prompt so a large catalog cannot blow the context window.
const maxCatalogNames = 60

// BusinessContext is free-form information about the workshop that the
// prompts weave in so the model grounds names and currency correctly.
type BusinessContext struct {
	Name            string
	DefaultCurrency string
	Timezone        string
}

func buildInvoiceSystemPrompt(bc BusinessContext, snap *catalog.Snapshot, schema map[string]any) string {
	cur := strings.TrimSpace(bc.DefaultCurrency)
	if cur == "" {
		cur = "USD"
	}

	parts := []string{
		"You are an invoice extraction assistant for an auto repair workshop. Return ONLY JSON that matches the provided JSON Schema.",
		"Use ISO-8601 dates (YYYY-MM-DD).",
		"Currency must be a 3-letter ISO 4217 code; default to " + cur + " if uncertain.",
		"Copy amounts exactly as printed. Never invent totals and never compute sums yourself.",
		"For each line item, include a category and supplier hint. Reference a known id ONLY when the printed name matches a known entity; otherwise set id to null and keep the printed name.",
		"Never output markdown fences or prose around the JSON.",
	}
	if bc.Name != "" {
		parts = append(parts, "Business context: "+bc.Name+".")
	}
	if known := knownNamesSection(snap); known != "" {
		parts = append(parts, known)
	}
	parts = append(parts, "JSON Schema:\n"+mustJSON(schema))
	return strings.Join(parts, "\n")
}

func buildInvoiceUserPrompt(text string) string {
	return "Extract the invoice from the following document text:\n\n" + text +
		"\n\nReturn ONLY JSON that matches the provided schema."
}

func buildAppointmentSystemPrompt(bc BusinessContext, snap *catalog.Snapshot, schema map[string]any, now time.Time) string {
	parts := []string{
		"You are a scheduling assistant for an auto repair workshop. Return ONLY JSON that matches the provided JSON Schema.",
		"Today is " + now.Format("2006-01-02") + " (" + now.Weekday().String() + ").",
		"Resolve relative dates like 'tomorrow' or weekday names to concrete YYYY-MM-DD dates.",
		"Times are 24h HH:MM. If the customer gave no time, leave it empty and list 'time' in missing_fields.",
		"Classify service_type as one of: mantenimiento, reparacion, diagnostico, revision_frenos, alineacion. Use your best judgment from the described problem.",
		"List every field you could not determine in missing_fields and ask ONE follow_up_question covering the most important gap.",
		"Never output markdown fences or prose around the JSON.",
	}
	if bc.Name != "" {
		parts = append(parts, "Business context: "+bc.Name+".")
	}
	if snap != nil {
		if s := recentCustomersSection(snap.Customers()); s != "" {
			parts = append(parts, s)
		}
		if s := recentVehiclesSection(snap.Vehicles()); s != "" {
			parts = append(parts, s)
		}
	}
	parts = append(parts, "JSON Schema:\n"+mustJSON(schema))
	return strings.Join(parts, "\n")
}

func buildAppointmentUserPrompt(text string) string {
	return "Extract the appointment request from the following message:\n\n" + text +
		"\n\nReturn ONLY JSON that matches the provided schema."
}

func knownNamesSection(snap *catalog.Snapshot) string {
	if snap == nil {
		return ""
	}
	var b strings.Builder
	if cats := snap.CategoryNames(maxCatalogNames); len(cats) > 0 {
		b.WriteString("Known categories: " + strings.Join(cats, ", ") + ".\n")
	}
	if sups := snap.SupplierNames(maxCatalogNames); len(sups) > 0 {
		b.WriteString("Known suppliers: " + strings.Join(sups, ", ") + ".\n")
	}
	if prods := snap.ProductNames(maxCatalogNames); len(prods) > 0 {
		b.WriteString("Known products: " + strings.Join(prods, ", ") + ".")
	}
	return strings.TrimRight(b.String(), "\n")
}

func recentCustomersSection(customers []catalog.Customer) string {
	if len(customers) == 0 {
		return ""
	}
	names := make([]string, 0, min(len(customers), maxCatalogNames))
	for _, c := range customers {
		if len(names) == maxCatalogNames {
			break
		}
		names = append(names, c.Name)
	}
	return "Recent customers: " + strings.Join(names, ", ") + "."
}

func recentVehiclesSection(vehicles []catalog.Vehicle) string {
	if len(vehicles) == 0 {
		return ""
	}
	descs := make([]string, 0, min(len(vehicles), maxCatalogNames))
	for _, v := range vehicles {
		if len(descs) == maxCatalogNames {
			break
		}
		d := strings.TrimSpace(v.Make + " " + v.Model)
		if v.Plate != "" {
			d = fmt.Sprintf("%s (%s)", d, v.Plate)
		}
		descs = append(descs, d)
	}
	return "Recent vehicles: " + strings.Join(descs, ", ") + "."
}

func mustJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "{}"
	}
	return string(b)
}
