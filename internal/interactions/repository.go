package interactions

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/JaimeStill/intake/pkg/pagination"
	"github.com/JaimeStill/intake/pkg/query"
	"github.com/JaimeStill/intake/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "interactions", "i").
	Project("id", "ID").
	Project("entity_type", "EntityType").
	Project("entity_id", "EntityID").
	Project("action", "Action").
	Project("cost", "Cost").
	Project("currency", "Currency").
	Project("duration_ms", "DurationMS").
	Project("metadata", "Metadata").
	Project("created_at", "CreatedAt")

var defaultSort = query.SortField{
	Field:      "CreatedAt",
	Descending: true,
}

var entityTypes = map[string]struct{}{
	EntityDocument:   {},
	EntitySignal:     {},
	EntityParty:      {},
	EntityCommitment: {},
}

// System appends interactions and reads entity timelines.
type System interface {
	Handler() *Handler

	Append(ctx context.Context, h repository.Handle, cmd AppendCommand) (*Interaction, error)
	Timeline(ctx context.Context, q TimelineQuery, page pagination.PageRequest) (*pagination.PageResult[Interaction], error)
}

type repo struct {
	db         *sql.DB
	logger     *slog.Logger
	pagination pagination.Config
}

func New(db *sql.DB, logger *slog.Logger, pagination pagination.Config) System {
	return &repo{
		db:         db,
		logger:     logger.With("system", "interactions"),
		pagination: pagination,
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger, r.pagination)
}

func (r *repo) Append(ctx context.Context, h repository.Handle, cmd AppendCommand) (*Interaction, error) {
	if _, ok := entityTypes[cmd.EntityType]; !ok || cmd.EntityID == "" {
		return nil, fmt.Errorf("%w: %s %q", ErrInvalidEntity, cmd.EntityType, cmd.EntityID)
	}
	if cmd.Action == "" {
		return nil, ErrInvalidAction
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("generate interaction id: %w", err)
	}

	var metadata []byte
	if len(cmd.Metadata) > 0 {
		if metadata, err = json.Marshal(cmd.Metadata); err != nil {
			return nil, fmt.Errorf("marshal metadata: %w", err)
		}
	}

	var cost decimal.NullDecimal
	var currency *string
	if cmd.Cost != nil {
		cost = decimal.NewNullDecimal(*cmd.Cost)
		c := cmd.Currency
		if c == "" {
			c = "USD"
		}
		currency = &c
	}

	var duration *int64
	if cmd.Duration > 0 {
		ms := cmd.Duration.Milliseconds()
		duration = &ms
	}

	q := `
		INSERT INTO interactions(id, entity_type, entity_id, action, cost, currency, duration_ms, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, entity_type, entity_id, action, cost, currency, duration_ms, metadata, created_at`

	args := []any{id, cmd.EntityType, cmd.EntityID, cmd.Action, cost, currency, duration, metadata}

	i, err := repository.QueryOne(ctx, h, q, args, scanInteraction)
	if err != nil {
		return nil, fmt.Errorf("append interaction: %w", err)
	}
	return &i, nil
}

func (r *repo) Timeline(
	ctx context.Context,
	tq TimelineQuery,
	page pagination.PageRequest,
) (*pagination.PageResult[Interaction], error) {
	if _, ok := entityTypes[tq.EntityType]; !ok || tq.EntityID == "" {
		return nil, fmt.Errorf("%w: %s %q", ErrInvalidEntity, tq.EntityType, tq.EntityID)
	}
	if tq.Since != nil && tq.Until != nil && !tq.Until.After(*tq.Since) {
		return nil, fmt.Errorf("%w: until must be after since", ErrInvalidRange)
	}

	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereEquals("EntityType", tq.EntityType).
		WhereEquals("EntityID", tq.EntityID).
		WhereRange("CreatedAt", tq.Since, tq.Until).
		WhereSearch(page.Search, "Action")
	query.WhereIn(qb, "Action", tq.Actions)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count interactions: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	items, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanInteraction)
	if err != nil {
		return nil, fmt.Errorf("query interactions: %w", err)
	}

	result := pagination.NewPageResult(items, total, page.Page, page.PageSize)
	return &result, nil
}

func scanInteraction(s repository.Scanner) (Interaction, error) {
	var (
		i        Interaction
		cost     decimal.NullDecimal
		metadata []byte
	)
	err := s.Scan(
		&i.ID,
		&i.EntityType,
		&i.EntityID,
		&i.Action,
		&cost,
		&i.Currency,
		&i.DurationMS,
		&metadata,
		&i.CreatedAt,
	)
	if cost.Valid {
		i.Cost = &cost.Decimal
	}
	if len(metadata) > 0 {
		i.Metadata = json.RawMessage(metadata)
	}
	return i, err
}
