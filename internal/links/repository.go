package links

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/JaimeStill/intake/pkg/repository"
)

const columns = `id, document_id, entity_type, entity_id, link_type, created_at`

// System creates and lists document links. Links are never updated.
type System interface {
	Create(ctx context.Context, h repository.Handle, documentID uuid.UUID, target Target, linkType Type) (*Link, error)
	ListByDocument(ctx context.Context, documentID uuid.UUID) ([]Link, error)
	ListByTarget(ctx context.Context, target Target) ([]Link, error)
}

type repo struct {
	db     *sql.DB
	logger *slog.Logger
}

func New(db *sql.DB, logger *slog.Logger) System {
	return &repo{
		db:     db,
		logger: logger.With("system", "links"),
	}
}

func (r *repo) Create(
	ctx context.Context,
	h repository.Handle,
	documentID uuid.UUID,
	target Target,
	linkType Type,
) (*Link, error) {
	if err := target.Validate(); err != nil {
		return nil, err
	}
	switch linkType {
	case TypeSource, TypeVendor, TypeObligation, TypeContent:
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidType, linkType)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("generate link id: %w", err)
	}

	q := `
		INSERT INTO document_links(id, document_id, entity_type, entity_id, link_type)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + columns

	l, err := repository.QueryOne(ctx, h, q, []any{id, documentID, target.Kind, target.ID, linkType}, scanLink)
	if err != nil {
		return nil, fmt.Errorf("insert link: %w", err)
	}
	return &l, nil
}

func (r *repo) ListByDocument(ctx context.Context, documentID uuid.UUID) ([]Link, error) {
	q := `SELECT ` + columns + ` FROM document_links WHERE document_id = $1 ORDER BY created_at, id`

	items, err := repository.QueryMany(ctx, r.db, q, []any{documentID}, scanLink)
	if err != nil {
		return nil, fmt.Errorf("query links: %w", err)
	}
	return items, nil
}

func (r *repo) ListByTarget(ctx context.Context, target Target) ([]Link, error) {
	if err := target.Validate(); err != nil {
		return nil, err
	}

	q := `SELECT ` + columns + ` FROM document_links WHERE entity_type = $1 AND entity_id = $2 ORDER BY created_at, id`

	items, err := repository.QueryMany(ctx, r.db, q, []any{target.Kind, target.ID}, scanLink)
	if err != nil {
		return nil, fmt.Errorf("query links: %w", err)
	}
	return items, nil
}

func scanLink(s repository.Scanner) (Link, error) {
	var l Link
	err := s.Scan(
		&l.ID,
		&l.DocumentID,
		&l.Target.Kind,
		&l.Target.ID,
		&l.Type,
		&l.CreatedAt,
	)
	return l, err
}
