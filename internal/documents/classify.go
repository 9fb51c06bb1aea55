package documents

import (
	"path/filepath"
	"strings"
)

// DocType is the coarse document category used to decide whether a
// commitment should be derived.
type DocType string

const (
	TypeInvoice   DocType = "invoice"
	TypeBill      DocType = "bill"
	TypeReceipt   DocType = "receipt"
	TypeContract  DocType = "contract"
	TypeStatement DocType = "statement"
	TypeOther     DocType = "other"
)

// ObligationBearing reports whether a document of this type carries a
// payment obligation. Contracts only do when they state an amount.
func (t DocType) ObligationBearing(hasAmount bool) bool {
	switch t {
	case TypeInvoice, TypeBill:
		return true
	case TypeContract:
		return hasAmount
	}
	return false
}

var typeAliases = map[string]DocType{
	"invoice":      TypeInvoice,
	"tax invoice":  TypeInvoice,
	"bill":         TypeBill,
	"utility bill": TypeBill,
	"receipt":      TypeReceipt,
	"contract":     TypeContract,
	"agreement":    TypeContract,
	"statement":    TypeStatement,
	"other":        TypeOther,
}

var filenameKeywords = []struct {
	keyword string
	docType DocType
}{
	{"invoice", TypeInvoice},
	{"inv", TypeInvoice},
	{"bill", TypeBill},
	{"receipt", TypeReceipt},
	{"contract", TypeContract},
	{"agreement", TypeContract},
	{"statement", TypeStatement},
}

// Classify picks a document type. The extracted document_type wins when it
// names a known type; otherwise filename keywords decide. Images with no
// other signal are treated as receipts, everything else as invoices when
// the extractor found a total, or other.
func Classify(extracted, filename, contentType string, hasAmount bool) DocType {
	if t, ok := typeAliases[strings.ToLower(strings.TrimSpace(extracted))]; ok {
		return t
	}

	base := strings.ToLower(strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename)))
	tokens := strings.FieldsFunc(base, func(r rune) bool {
		return !(r >= 'a' && r <= 'z')
	})
	for _, kw := range filenameKeywords {
		for _, tok := range tokens {
			if tok == kw.keyword {
				return kw.docType
			}
		}
	}

	if !hasAmount {
		return TypeOther
	}
	if strings.HasPrefix(contentType, "image/") {
		return TypeReceipt
	}
	return TypeInvoice
}
