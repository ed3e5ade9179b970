package resolver

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// hintAliases rewrites source database hints onto the names the mapping
// database is keyed by.
var hintAliases = map[string]string{
	"UNIPROT":   "UNIPROT_GN",
	"UNIPROTKB": "UNIPROT_GN",
}

// NormalizeKey trims and upper-cases an identifier.
func NormalizeKey(key string) string {
	return cases.Upper(language.Und).String(strings.TrimSpace(key))
}

// NormalizeHint upper-cases a hint and applies the database aliases.
func NormalizeHint(hint string) string {
	h := NormalizeKey(hint)
	if alias, ok := hintAliases[h]; ok {
		return alias
	}
	return h
}

// NormalizeTaxon trims the taxon. Taxa are numeric and need no case folding.
func NormalizeTaxon(taxon string) string {
	return strings.TrimSpace(taxon)
}
