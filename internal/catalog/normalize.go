package catalog

import (
	"strings"

	"github.com/agext/levenshtein"
)

// Two distinct matching strategies live here on purpose. ConsolidationKey is
// the conservative one: exact normalized-name equality, used to merge
// duplicate invoice lines, where a wrong merge silently loses information.
// ResolutionSimilarity is the permissive one: containment or edit-distance,
// used to map hints onto catalog entries, where the worst outcome is a
// flagged creation candidate.

// similarityThreshold is the minimum normalized edit-distance similarity
// for a resolution match.
const similarityThreshold = 0.80

var accentReplacer = strings.NewReplacer(
	"á", "a", "à", "a", "ä", "a", "â", "a",
	"é", "e", "è", "e", "ë", "e", "ê", "e",
	"í", "i", "ì", "i", "ï", "i", "î", "i",
	"ó", "o", "ò", "o", "ö", "o", "ô", "o",
	"ú", "u", "ù", "u", "ü", "u", "û", "u",
	"ñ", "n",
	"Á", "a", "À", "a", "Ä", "a", "Â", "a",
	"É", "e", "È", "e", "Ë", "e", "Ê", "e",
	"Í", "i", "Ì", "i", "Ï", "i", "Î", "i",
	"Ó", "o", "Ò", "o", "Ö", "o", "Ô", "o",
	"Ú", "u", "Ù", "u", "Ü", "u", "Û", "u",
	"Ñ", "n",
)

// NormalizeName lower-cases, collapses repeated whitespace, and
// transliterates accented vowels and "ñ" to their Latin equivalents.
func NormalizeName(s string) string {
	s = accentReplacer.Replace(s)
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.Join(strings.Fields(s), " ")
}

// ConsolidationKey is the grouping key for duplicate line merging: exact
// normalized-name equality only, no fuzzy matching.
func ConsolidationKey(name string) string {
	return NormalizeName(name)
}

// NormalizeDocument strips everything but letters and digits from an
// identification/document number.
func NormalizeDocument(s string) string {
	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			b.WriteRune(r)
		}
	}
	return strings.ToUpper(b.String())
}

// ResolutionSimilarity scores how well a hint name matches a catalog name,
// both already normalized. Containment in either direction counts as a
// match; otherwise a normalized edit-distance similarity is computed.
// Returns a score in [0,1]; scores below similarityThreshold are reported
// as no match.
func ResolutionSimilarity(hint, candidate string) (float64, bool) {
	if hint == "" || candidate == "" {
		return 0, false
	}
	if hint == candidate {
		return 1, true
	}
	if strings.Contains(candidate, hint) || strings.Contains(hint, candidate) {
		return 0.99, true
	}
	score := levenshtein.Similarity(hint, candidate, levenshtein.NewParams())
	if score < similarityThreshold {
		return score, false
	}
	return score, true
}
