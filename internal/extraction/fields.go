package extraction

import (
	"regexp"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/shopspring/decimal"
)

// DateLayout is the layout the model is instructed to use for dates.
const DateLayout = "2006-01-02"

var (
	amountPattern   = regexp.MustCompile(`^[^\d\-]{0,4}-?\d[\d,]*(\.\d+)?$`)
	currencyPattern = regexp.MustCompile(`^[A-Z]{3}$`)
	amountStrip     = regexp.MustCompile(`[^\d.\-]`)
)

// Fields are the structured values read from a document. All values are
// strings as returned by the model; typed accessors parse them on demand.
type Fields struct {
	DocumentType  string  `json:"document_type"`
	VendorName    string  `json:"vendor_name"`
	VendorAddress string  `json:"vendor_address"`
	VendorTaxID   string  `json:"vendor_tax_id"`
	InvoiceNumber string  `json:"invoice_number"`
	TotalAmount   string  `json:"total_amount"`
	Currency      string  `json:"currency"`
	IssueDate     string  `json:"issue_date"`
	DueDate       string  `json:"due_date"`
	Description   string  `json:"description"`
	Domain        string  `json:"domain"`
	Confidence    float64 `json:"confidence"`
}

// Validate checks field shape. A failing field does not invalidate the
// document; the returned validation.Errors is keyed by json field name so
// callers can skip only the dependent steps.
func (f Fields) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.VendorName, validation.Required, validation.Length(1, 256)),
		validation.Field(&f.TotalAmount, validation.Match(amountPattern)),
		validation.Field(&f.Currency, validation.Match(currencyPattern)),
		validation.Field(&f.IssueDate, validation.Date(DateLayout)),
		validation.Field(&f.DueDate, validation.Date(DateLayout)),
		validation.Field(&f.Confidence, validation.Min(0.0), validation.Max(1.0)),
	)
}

// Amount parses TotalAmount, ignoring currency symbols and thousands
// separators.
func (f Fields) Amount() (decimal.Decimal, bool) {
	s := strings.TrimSpace(f.TotalAmount)
	if s == "" || !amountPattern.MatchString(s) {
		return decimal.Decimal{}, false
	}
	d, err := decimal.NewFromString(amountStrip.ReplaceAllString(s, ""))
	if err != nil {
		return decimal.Decimal{}, false
	}
	return d, true
}

// Due parses DueDate as a calendar date in UTC.
func (f Fields) Due() (time.Time, bool) {
	s := strings.TrimSpace(f.DueDate)
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// CurrencyCode returns the ISO currency, defaulting to USD.
func (f Fields) CurrencyCode() string {
	c := strings.ToUpper(strings.TrimSpace(f.Currency))
	if currencyPattern.MatchString(c) {
		return c
	}
	return "USD"
}
