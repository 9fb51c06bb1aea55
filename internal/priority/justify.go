package priority

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var currencySymbols = map[string]string{
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
	"JPY": "¥",
	"CAD": "CA$",
	"AUD": "A$",
}

// justify names the two largest contributions, then the amount when it was
// not already named. The mid-value time factor of an undated item is never
// named.
func justify(in Input, domain string, factors []Factor) string {
	ranked := make([]Factor, len(factors))
	copy(ranked, factors)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Contribution > ranked[j].Contribution
	})

	parts := make([]string, 0, 3)
	namedAmount := false
	for _, f := range ranked {
		if len(parts) == 2 {
			break
		}
		if f.Contribution <= 0 {
			continue
		}
		if f.Name == FactorTime && in.DueDate == nil {
			continue
		}
		parts = append(parts, describe(in, domain, f))
		if f.Name == FactorAmount {
			namedAmount = true
		}
	}

	if in.Amount != nil && !namedAmount {
		parts = append(parts, FormatAmount(*in.Amount, in.Currency))
	}

	if len(parts) == 0 {
		return strings.ToUpper(domain[:1]) + domain[1:] + " item"
	}

	s := strings.Join(parts, ", ")
	return strings.ToUpper(s[:1]) + s[1:]
}

func describe(in Input, domain string, f Factor) string {
	switch f.Name {
	case FactorTime:
		return describeDue(DaysUntil(in.AsOf, *in.DueDate))
	case FactorSeverity:
		if in.SeverityHint != nil && *in.SeverityHint > domainRisk[domain] {
			return fmt.Sprintf("%s risk (severity %g/10)", domain, *in.SeverityHint)
		}
		return domain + " risk"
	case FactorAmount:
		return FormatAmount(*in.Amount, in.Currency)
	case FactorEffort:
		return fmt.Sprintf("~%g hours of effort", *in.EffortHours)
	case FactorDependency:
		return "blocking other work"
	case FactorPreference:
		return "flagged as priority"
	}
	return f.Name
}

func describeDue(days int) string {
	switch {
	case days < -1:
		return fmt.Sprintf("overdue by %d days", -days)
	case days == -1:
		return "overdue by 1 day"
	case days == 0:
		return "due today"
	case days == 1:
		return "due in 1 day"
	default:
		return fmt.Sprintf("due in %d days", days)
	}
}

// FormatAmount renders amount with grouping separators and a currency
// symbol, e.g. "$12,419.83". Unknown currencies use the ISO code.
func FormatAmount(amount decimal.Decimal, currency string) string {
	p := message.NewPrinter(language.English)
	n := p.Sprintf("%.2f", amount.Round(2).InexactFloat64())

	code := strings.ToUpper(strings.TrimSpace(currency))
	if code == "" {
		code = "USD"
	}
	if sym, ok := currencySymbols[code]; ok {
		return sym + n
	}
	return code + " " + n
}
