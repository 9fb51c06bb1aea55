package commitments

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/JaimeStill/intake/pkg/repository"
)

const columns = `id, document_id, role_id, counterparty_id, title, priority, justification,
	factors, due_date, amount, currency, state, created_at, updated_at`

// System persists commitments. Create joins the caller's transaction.
type System interface {
	Create(ctx context.Context, h repository.Handle, cmd CreateCommand) (*Commitment, error)
	Find(ctx context.Context, id uuid.UUID) (*Commitment, error)
	Transition(ctx context.Context, id uuid.UUID, next State) (*Commitment, error)
}

type repo struct {
	db     *sql.DB
	logger *slog.Logger
}

func New(db *sql.DB, logger *slog.Logger) System {
	return &repo{
		db:     db,
		logger: logger.With("system", "commitments"),
	}
}

func (r *repo) Create(ctx context.Context, h repository.Handle, cmd CreateCommand) (*Commitment, error) {
	if cmd.Priority < 0 || cmd.Priority > 100 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidPriority, cmd.Priority)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("generate commitment id: %w", err)
	}

	var factors []byte
	if cmd.Factors != nil {
		if factors, err = json.Marshal(cmd.Factors); err != nil {
			return nil, fmt.Errorf("marshal factors: %w", err)
		}
	}

	var currency *string
	if cmd.Currency != "" {
		currency = &cmd.Currency
	}

	var amount decimal.NullDecimal
	if cmd.Amount != nil {
		amount = decimal.NewNullDecimal(*cmd.Amount)
	}

	q := `
		INSERT INTO commitments(id, document_id, role_id, counterparty_id, title, priority,
			justification, factors, due_date, amount, currency, state)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING ` + columns

	args := []any{
		id,
		cmd.DocumentID,
		cmd.RoleID,
		cmd.CounterpartyID,
		cmd.Title,
		cmd.Priority,
		cmd.Justification,
		factors,
		cmd.DueDate,
		amount,
		currency,
		StateProposed,
	}

	c, err := repository.QueryOne(ctx, h, q, args, scanCommitment)
	if err != nil {
		return nil, fmt.Errorf("insert commitment: %w", err)
	}

	r.logger.InfoContext(ctx, "commitment created", "id", c.ID, "priority", c.Priority)
	return &c, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Commitment, error) {
	q := `SELECT ` + columns + ` FROM commitments WHERE id = $1`

	c, err := repository.QueryOne(ctx, r.db, q, []any{id}, scanCommitment)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrNotFound)
	}
	return &c, nil
}

func (r *repo) Transition(ctx context.Context, id uuid.UUID, next State) (*Commitment, error) {
	return repository.WithTx(ctx, r.db, func(tx *sql.Tx) (*Commitment, error) {
		current, err := repository.QueryOne(
			ctx, tx,
			`SELECT `+columns+` FROM commitments WHERE id = $1 FOR UPDATE`,
			[]any{id}, scanCommitment,
		)
		if err != nil {
			return nil, repository.MapError(err, ErrNotFound, ErrNotFound)
		}

		if !current.State.CanTransition(next) {
			return nil, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, current.State, next)
		}

		updated, err := repository.QueryOne(
			ctx, tx,
			`UPDATE commitments SET state = $2, updated_at = NOW() WHERE id = $1 RETURNING `+columns,
			[]any{id, next}, scanCommitment,
		)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, ErrNotFound
			}
			return nil, fmt.Errorf("update commitment: %w", err)
		}

		r.logger.InfoContext(ctx, "commitment transitioned", "id", id, "from", current.State, "to", next)
		return &updated, nil
	})
}

func scanCommitment(s repository.Scanner) (Commitment, error) {
	var (
		c       Commitment
		factors []byte
		amount  decimal.NullDecimal
	)
	err := s.Scan(
		&c.ID,
		&c.DocumentID,
		&c.RoleID,
		&c.CounterpartyID,
		&c.Title,
		&c.Priority,
		&c.Justification,
		&factors,
		&c.DueDate,
		&amount,
		&c.Currency,
		&c.State,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if len(factors) > 0 {
		c.Factors = json.RawMessage(factors)
	}
	if amount.Valid {
		c.Amount = &amount.Decimal
	}
	return c, err
}
