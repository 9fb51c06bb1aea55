// Package links records typed associations from a document to the entities
// a pipeline run produced. The set of linkable entity kinds is closed.
package links

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Kind tags the entity a link points at.
type Kind string

const (
	KindSignal        Kind = "signal"
	KindParty         Kind = "party"
	KindCommitment    Kind = "commitment"
	KindContentObject Kind = "content_object"
)

// Kinds lists every linkable entity kind.
var Kinds = []Kind{KindSignal, KindParty, KindCommitment, KindContentObject}

// Valid reports whether k is one of Kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindSignal, KindParty, KindCommitment, KindContentObject:
		return true
	}
	return false
}

// ParseKind validates s as a Kind.
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if !k.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidKind, s)
	}
	return k, nil
}

// Type describes the role of the target relative to the document.
type Type string

const (
	TypeSource     Type = "source"
	TypeVendor     Type = "vendor"
	TypeObligation Type = "obligation"
	TypeContent    Type = "content"
)

// Target identifies a linkable entity. Content objects are keyed by their
// sha256 digest; every other kind by UUID.
type Target struct {
	Kind Kind   `json:"kind"`
	ID   string `json:"id"`
}

func Signal(id uuid.UUID) Target     { return Target{Kind: KindSignal, ID: id.String()} }
func Party(id uuid.UUID) Target      { return Target{Kind: KindParty, ID: id.String()} }
func Commitment(id uuid.UUID) Target { return Target{Kind: KindCommitment, ID: id.String()} }

// ContentObject targets stored content by digest.
func ContentObject(sha256 string) Target {
	return Target{Kind: KindContentObject, ID: sha256}
}

// Validate checks the kind and the id shape for that kind.
func (t Target) Validate() error {
	switch t.Kind {
	case KindSignal, KindParty, KindCommitment:
		if _, err := uuid.Parse(t.ID); err != nil {
			return fmt.Errorf("%w: %s id %q", ErrInvalidTarget, t.Kind, t.ID)
		}
	case KindContentObject:
		if len(t.ID) != 64 {
			return fmt.Errorf("%w: content digest %q", ErrInvalidTarget, t.ID)
		}
	default:
		return fmt.Errorf("%w: %q", ErrInvalidKind, t.Kind)
	}
	return nil
}

// Link is one append-only document association.
type Link struct {
	ID         uuid.UUID `json:"id"`
	DocumentID uuid.UUID `json:"document_id"`
	Target     Target    `json:"target"`
	Type       Type      `json:"link_type"`
	CreatedAt  time.Time `json:"created_at"`
}
