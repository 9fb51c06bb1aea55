package parties

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/JaimeStill/intake/pkg/pagination"
	"github.com/JaimeStill/intake/pkg/query"
	"github.com/JaimeStill/intake/pkg/repository"
)

type repo struct {
	db         *sql.DB
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a party repository implementing the System interface.
func New(db *sql.DB, logger *slog.Logger, pagination pagination.Config) System {
	return &repo{
		db:         db,
		logger:     logger.With("system", "parties"),
		pagination: pagination,
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger, r.pagination)
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Party], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "DisplayName", "LegalName")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count parties: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	items, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanParty)
	if err != nil {
		return nil, fmt.Errorf("query parties: %w", err)
	}

	result := pagination.NewPageResult(items, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Party, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	p, err := repository.QueryOne(ctx, r.db, q, args, scanParty)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	roles, err := repository.QueryMany(
		ctx, r.db,
		`SELECT id, party_id, role_type, created_at FROM roles WHERE party_id = $1 ORDER BY created_at`,
		[]any{id}, scanRole,
	)
	if err != nil {
		return nil, fmt.Errorf("query roles: %w", err)
	}
	p.Roles = roles

	return &p, nil
}

func (r *repo) Candidates(
	ctx context.Context,
	q repository.Querier,
	nameKey, taxIDKey string,
	limit int,
) ([]Party, error) {
	stmt := `
		SELECT ` + columns + `
		FROM parties p
		WHERE ($1 <> '' AND p.tax_id_key = $1)
			OR p.name_key = $2
			OR split_part(p.name_key, ' ', 1) = split_part($2, ' ', 1)
			OR ($2 <> '' AND p.name_key % $2)
		UNION
		SELECT * FROM (
			SELECT ` + columns + `
			FROM parties p
			ORDER BY p.created_at DESC, p.id DESC
			LIMIT $3
		) recent`

	items, err := repository.QueryMany(ctx, q, stmt, []any{taxIDKey, nameKey, limit}, scanParty)
	if err != nil {
		return nil, fmt.Errorf("load candidates: %w", err)
	}
	return items, nil
}

func (r *repo) Create(ctx context.Context, h repository.Handle, cmd CreateCommand) (*Party, error) {
	if cmd.Kind != KindOrg && cmd.Kind != KindPerson {
		return nil, fmt.Errorf("%w: %q", ErrInvalidKind, cmd.Kind)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("generate party id: %w", err)
	}

	q := `
		INSERT INTO parties(id, kind, display_name, legal_name, tax_id, address, email, phone, name_key, tax_id_key)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, kind, display_name, legal_name, tax_id, address,
			email, phone, name_key, tax_id_key, created_at, updated_at`

	args := []any{
		id,
		cmd.Kind,
		cmd.DisplayName,
		nullable(cmd.LegalName),
		nullable(cmd.TaxID),
		nullable(cmd.Address),
		nullable(cmd.Email),
		nullable(cmd.Phone),
		cmd.NameKey,
		nullable(cmd.TaxIDKey),
	}

	p, err := repository.QueryOne(ctx, h, q, args, scanParty)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.InfoContext(ctx, "party created", "id", p.ID, "kind", p.Kind, "display_name", p.DisplayName)
	return &p, nil
}

func (r *repo) AssignRole(ctx context.Context, h repository.Handle, partyID uuid.UUID, roleType string) (*Role, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("generate role id: %w", err)
	}

	if _, err := h.ExecContext(ctx, `
		INSERT INTO roles(id, party_id, role_type)
		VALUES ($1, $2, $3)
		ON CONFLICT (party_id, role_type) DO NOTHING`,
		id, partyID, roleType,
	); err != nil {
		return nil, fmt.Errorf("insert role: %w", err)
	}

	role, err := repository.QueryOne(
		ctx, h,
		`SELECT id, party_id, role_type, created_at FROM roles WHERE party_id = $1 AND role_type = $2`,
		[]any{partyID, roleType}, scanRole,
	)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &role, nil
}
