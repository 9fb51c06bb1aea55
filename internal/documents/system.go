package documents

import (
	"context"

	"github.com/google/uuid"

	"github.com/JaimeStill/intake/pkg/pagination"
	"github.com/JaimeStill/intake/pkg/repository"
)

// System defines the public contract for document domain operations.
type System interface {
	Handler() *Handler

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Document], error)

	Find(ctx context.Context, id uuid.UUID) (*Document, error)

	// Create inserts the document on h, typically the pipeline's transaction.
	Create(ctx context.Context, h repository.Handle, cmd CreateCommand) (*Document, error)
}
