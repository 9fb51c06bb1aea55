package resolver

import (
	"strings"
	"unicode"

	"github.com/JaimeStill/intake/internal/parties"
)

var orgKeywords = map[string]struct{}{
	"corp": {}, "inc": {}, "ltd": {}, "co": {}, "cos": {}, "llc": {}, "llp": {},
	"lp": {}, "plc": {}, "gmbh": {}, "sa": {}, "ag": {}, "bv": {}, "pty": {},
	"group": {}, "holdings": {}, "services": {}, "solutions": {}, "systems": {},
	"technologies": {}, "partners": {}, "associates": {}, "health": {},
	"healthcare": {}, "hospital": {}, "clinic": {}, "bank": {}, "university": {},
	"school": {}, "insurance": {}, "agency": {}, "foundation": {}, "trust": {},
	"energy": {}, "electric": {}, "utilities": {}, "labs": {}, "studio": {},
	"consulting": {}, "logistics": {}, "supply": {}, "store": {}, "market": {},
}

// InferKind guesses whether a name denotes an organization or a person.
// Names carrying a legal suffix, an organization keyword, digits, or an
// ampersand are organizations; two or three purely alphabetic tokens are a
// person; anything else defaults to organization.
func InferKind(name string) parties.Kind {
	tokens := strings.Fields(NameKey(name))
	if len(tokens) == 0 {
		return parties.KindOrg
	}

	for _, tok := range tokens {
		if _, ok := orgKeywords[tok]; ok {
			return parties.KindOrg
		}
		if tok == "&" {
			return parties.KindOrg
		}
		for _, r := range tok {
			if unicode.IsDigit(r) {
				return parties.KindOrg
			}
		}
	}

	if len(tokens) < 2 || len(tokens) > 3 {
		return parties.KindOrg
	}
	for _, tok := range tokens {
		for _, r := range tok {
			if !unicode.IsLetter(r) {
				return parties.KindOrg
			}
		}
	}
	return parties.KindPerson
}
