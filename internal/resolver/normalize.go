package resolver

import (
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// legalSuffixes canonicalizes corporate designators so "Acme Corporation"
// and "ACME Corp." produce the same key.
var legalSuffixes = map[string]string{
	"corporation":  "corp",
	"incorporated": "inc",
	"limited":      "ltd",
	"company":      "co",
	"companies":    "cos",
	"llc":          "llc",
	"plc":          "plc",
	"gmbh":         "gmbh",
	"and":          "&",
}

// addressAbbreviations canonicalizes common street designators.
var addressAbbreviations = map[string]string{
	"street":    "st",
	"avenue":    "ave",
	"road":      "rd",
	"boulevard": "blvd",
	"drive":     "dr",
	"lane":      "ln",
	"suite":     "ste",
	"floor":     "fl",
	"north":     "n",
	"south":     "s",
	"east":      "e",
	"west":      "w",
}

// Normalize folds s to a comparison form: compatibility decomposition,
// combining marks removed, Unicode case folding, periods and apostrophes
// dropped, other punctuation replaced by spaces, and whitespace collapsed.
func Normalize(s string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	decomposed, _, err := transform.String(t, s)
	if err != nil {
		decomposed = s
	}

	folded := cases.Fold().String(decomposed)

	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		switch {
		case r == '.' || r == '\'' || r == '’':
			continue
		case r == '&':
			b.WriteString(" & ")
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}

	return strings.Join(strings.Fields(b.String()), " ")
}

// NameKey is the canonical matching key for a party name.
func NameKey(name string) string {
	return canonicalize(Normalize(name), legalSuffixes)
}

// AddressKey is the canonical matching key for a postal address.
func AddressKey(address string) string {
	return canonicalize(Normalize(address), addressAbbreviations)
}

// TaxIDKey keeps only the letters and digits of a tax identifier, so
// "12-3456789" and "123456789" compare equal.
func TaxIDKey(taxID string) string {
	var b strings.Builder
	for _, r := range Normalize(taxID) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func canonicalize(normalized string, table map[string]string) string {
	tokens := strings.Fields(normalized)
	for i, tok := range tokens {
		if c, ok := table[tok]; ok {
			tokens[i] = c
		}
	}
	return strings.Join(tokens, " ")
}

func sortTokens(s string) string {
	tokens := strings.Fields(s)
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}
