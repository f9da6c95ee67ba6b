package catalog

import (
	"strings"

	"github.com/tallerhub/docpipe/internal/document"
)

// Resolution is pure: these methods read the snapshot and never mutate it.
// Every path terminates in either a catalog match or an explicit unresolved
// marker carrying the original hint — never an error. The provider
// frequently invents plausible names that do not exist yet; those must flow
// through as creation candidates instead of sinking the whole document.

// ResolveCategory maps a category hint onto a catalog entry.
func (s *Snapshot) ResolveCategory(hint document.Hint) document.EntityRef {
	if hint.ID != "" {
		if c, ok := s.categoriesByID[hint.ID]; ok {
			return document.ResolvedRef(c.ID, preferName(hint.Name, c.Name), "")
		}
	}
	if hint.Name != "" {
		if c, ok := s.categoriesByName[NormalizeName(hint.Name)]; ok {
			return document.ResolvedRef(c.ID, c.Name, "")
		}
		if c, ok := bestByName(s.categoriesByName, hint.Name); ok {
			return document.ResolvedRef(c.ID, c.Name, "")
		}
	}
	return document.UnresolvedRef(strings.TrimSpace(hint.Name), "")
}

// ResolveSupplier maps a supplier hint onto a catalog entry. The normalized
// document number outranks the display name: tax ids are assigned, names
// are typed.
func (s *Snapshot) ResolveSupplier(hint document.Hint) document.EntityRef {
	if hint.ID != "" {
		if sp, ok := s.suppliersByID[hint.ID]; ok {
			return document.ResolvedRef(sp.ID, preferName(hint.Name, sp.Name), sp.Document)
		}
	}
	if hint.Document != "" {
		if sp, ok := s.suppliersByDocument[NormalizeDocument(hint.Document)]; ok {
			return document.ResolvedRef(sp.ID, preferName(hint.Name, sp.Name), sp.Document)
		}
	}
	if hint.Name != "" {
		if sp, ok := s.suppliersByName[NormalizeName(hint.Name)]; ok {
			return document.ResolvedRef(sp.ID, sp.Name, sp.Document)
		}
		if sp, ok := bestByName(s.suppliersByName, hint.Name); ok {
			return document.ResolvedRef(sp.ID, sp.Name, sp.Document)
		}
	}
	return document.UnresolvedRef(strings.TrimSpace(hint.Name), strings.TrimSpace(hint.Document))
}

// ResolveProduct maps a line item's code/name onto a catalog product.
func (s *Snapshot) ResolveProduct(name, code string) document.EntityRef {
	if code != "" {
		if p, ok := s.productsByCode[NormalizeDocument(code)]; ok {
			return document.ResolvedRef(p.ID, preferName(name, p.Name), p.Code)
		}
	}
	if name != "" {
		if p, ok := s.productsByName[NormalizeName(name)]; ok {
			return document.ResolvedRef(p.ID, p.Name, p.Code)
		}
		if p, ok := bestByName(s.productsByName, name); ok {
			return document.ResolvedRef(p.ID, p.Name, p.Code)
		}
	}
	return document.UnresolvedRef(strings.TrimSpace(name), strings.TrimSpace(code))
}

// MatchCustomer finds a customer by name in the business-context list:
// exact normalized match first, containment second. Returns nil when no
// candidate matches.
func MatchCustomer(name string, customers []Customer) *Customer {
	key := NormalizeName(name)
	if key == "" || len(customers) == 0 {
		return nil
	}
	for i := range customers {
		if NormalizeName(customers[i].Name) == key {
			return &customers[i]
		}
	}
	for i := range customers {
		cand := NormalizeName(customers[i].Name)
		if cand == "" {
			continue
		}
		if strings.Contains(cand, key) || strings.Contains(key, cand) {
			return &customers[i]
		}
	}
	return nil
}

// MatchVehicle finds a vehicle in the business-context list: by plate
// containment first, then by make+model containment.
func MatchVehicle(info document.VehicleInfo, vehicles []Vehicle) *Vehicle {
	if len(vehicles) == 0 {
		return nil
	}
	if plate := NormalizeDocument(info.Plate); plate != "" {
		for i := range vehicles {
			if strings.Contains(NormalizeDocument(vehicles[i].Plate), plate) {
				return &vehicles[i]
			}
		}
	}
	mk, model := NormalizeName(info.Make), NormalizeName(info.Model)
	if mk != "" && model != "" {
		for i := range vehicles {
			if strings.Contains(NormalizeName(vehicles[i].Make), mk) &&
				strings.Contains(NormalizeName(vehicles[i].Model), model) {
				return &vehicles[i]
			}
		}
	}
	return nil
}

// preferName keeps the hint's display name when it is non-empty so the
// operator sees the spelling the document used; blank hints never blank out
// the catalog name.
func preferName(hintName, catalogName string) string {
	if n := strings.TrimSpace(hintName); n != "" {
		return n
	}
	return catalogName
}

type named interface{ displayName() string }

func (c Category) displayName() string { return c.Name }
func (s Supplier) displayName() string { return s.Name }
func (p Product) displayName() string  { return p.Name }

// bestByName scans a normalized-name index for the best permissive match
// (containment or edit distance). Ties break on the smaller key so results
// are deterministic across map iteration orders.
func bestByName[T named](index map[string]T, hintName string) (T, bool) {
	var best T
	bestScore := -1.0
	bestKey := ""
	hint := NormalizeName(hintName)
	for key, cand := range index {
		score, ok := ResolutionSimilarity(hint, key)
		if !ok {
			continue
		}
		if score > bestScore || (score == bestScore && key < bestKey) {
			best, bestScore, bestKey = cand, score, key
		}
	}
	return best, bestScore >= 0
}
