package parties

import (
	"context"

	"github.com/google/uuid"

	"github.com/JaimeStill/intake/pkg/pagination"
	"github.com/JaimeStill/intake/pkg/repository"
)

// System defines the public contract for party operations. Writes accept a
// repository.Handle so they join the caller's transaction.
type System interface {
	Handler() *Handler

	List(ctx context.Context, page pagination.PageRequest, filters Filters) (*pagination.PageResult[Party], error)
	Find(ctx context.Context, id uuid.UUID) (*Party, error)

	// Candidates loads every party whose tax-id key matches or whose name
	// key matches exactly, by leading token, or by trigram similarity, plus
	// the most recently created parties up to limit.
	Candidates(ctx context.Context, q repository.Querier, nameKey, taxIDKey string, limit int) ([]Party, error)
	Create(ctx context.Context, h repository.Handle, cmd CreateCommand) (*Party, error)
	AssignRole(ctx context.Context, h repository.Handle, partyID uuid.UUID, roleType string) (*Role, error)
}
