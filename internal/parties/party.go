// Package parties persists counterparties and the roles they act in.
package parties

import (
	"time"

	"github.com/google/uuid"
)

// Kind distinguishes organizations from natural persons.
type Kind string

const (
	KindOrg    Kind = "org"
	KindPerson Kind = "person"
)

// RoleVendor is the role assigned to parties resolved from uploaded documents.
const RoleVendor = "vendor"

// Party is a counterparty. NameKey and TaxIDKey are the normalized matching
// keys; they are not unique.
type Party struct {
	ID          uuid.UUID `json:"id"`
	Kind        Kind      `json:"kind"`
	DisplayName string    `json:"display_name"`
	LegalName   *string   `json:"legal_name,omitempty"`
	TaxID       *string   `json:"tax_id,omitempty"`
	Address     *string   `json:"address,omitempty"`
	Email       *string   `json:"email,omitempty"`
	Phone       *string   `json:"phone,omitempty"`
	NameKey     string    `json:"-"`
	TaxIDKey    *string   `json:"-"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Roles       []Role    `json:"roles,omitempty"`
}

// Role records a party acting in a context such as vendor.
type Role struct {
	ID        uuid.UUID `json:"id"`
	PartyID   uuid.UUID `json:"party_id"`
	RoleType  string    `json:"role_type"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateCommand carries a new party. Empty optional strings are stored as NULL.
type CreateCommand struct {
	Kind        Kind
	DisplayName string
	LegalName   string
	TaxID       string
	Address     string
	Email       string
	Phone       string
	NameKey     string
	TaxIDKey    string
}
