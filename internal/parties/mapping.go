package parties

import (
	"net/url"

	"github.com/JaimeStill/intake/pkg/query"
	"github.com/JaimeStill/intake/pkg/repository"
)

const columns = `p.id, p.kind, p.display_name, p.legal_name, p.tax_id, p.address,
	p.email, p.phone, p.name_key, p.tax_id_key, p.created_at, p.updated_at`

var projection = query.
	NewProjectionMap("public", "parties", "p").
	Project("id", "ID").
	Project("kind", "Kind").
	Project("display_name", "DisplayName").
	Project("legal_name", "LegalName").
	Project("tax_id", "TaxID").
	Project("address", "Address").
	Project("email", "Email").
	Project("phone", "Phone").
	Project("name_key", "NameKey").
	Project("tax_id_key", "TaxIDKey").
	Project("created_at", "CreatedAt").
	Project("updated_at", "UpdatedAt")

var defaultSort = query.SortField{
	Field:      "CreatedAt",
	Descending: true,
}

// Filters contains optional filtering criteria for party queries.
type Filters struct {
	Kind        *string `json:"kind,omitempty"`
	DisplayName *string `json:"display_name,omitempty"`
	TaxID       *string `json:"tax_id,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("Kind", f.Kind).
		WhereContains("DisplayName", f.DisplayName).
		WhereEquals("TaxID", f.TaxID)
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if k := values.Get("kind"); k != "" {
		f.Kind = &k
	}

	if n := values.Get("display_name"); n != "" {
		f.DisplayName = &n
	}

	if t := values.Get("tax_id"); t != "" {
		f.TaxID = &t
	}

	return f
}

func scanParty(s repository.Scanner) (Party, error) {
	var p Party
	err := s.Scan(
		&p.ID,
		&p.Kind,
		&p.DisplayName,
		&p.LegalName,
		&p.TaxID,
		&p.Address,
		&p.Email,
		&p.Phone,
		&p.NameKey,
		&p.TaxIDKey,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	return p, err
}

func scanRole(s repository.Scanner) (Role, error) {
	var r Role
	err := s.Scan(&r.ID, &r.PartyID, &r.RoleType, &r.CreatedAt)
	return r, err
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
