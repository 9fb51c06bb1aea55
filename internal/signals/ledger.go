package signals

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/intake/pkg/repository"
)

const columns = `id, source, dedupe_key, status, attempts, leased_until, leased_by,
	document_id, result, last_error, processed_at, created_at, updated_at`

// terminalWriteTimeout bounds Fail and Release, which run detached from the
// caller's (possibly expired) context so the terminal state is always recorded.
const terminalWriteTimeout = 5 * time.Second

// Ledger records ingestion attempts and their terminal outcome.
type Ledger interface {
	// Open returns the signal for (source, dedupeKey), creating it in the
	// processing state when absent. The bool reports whether the signal is
	// already attached, in which case the caller returns the stored result.
	Open(ctx context.Context, source, dedupeKey string) (*Signal, bool, error)
	// Complete transitions processing → attached within the caller's transaction.
	// Complete, Fail, and Release only apply while sig still holds the lease;
	// otherwise they return ErrLeaseLost.
	Complete(ctx context.Context, e repository.Executor, sig *Signal, documentID uuid.UUID, result any) error
	// Fail transitions to error in its own statement.
	Fail(ctx context.Context, sig *Signal, reason string) error
	// Release drops the lease after a transient failure so a retry can claim
	// the signal immediately. The status stays processing.
	Release(ctx context.Context, sig *Signal, reason string) error
	Find(ctx context.Context, id uuid.UUID) (*Signal, error)
}

type ledger struct {
	db     *sql.DB
	opts   Options
	logger *slog.Logger
}

// New creates a Ledger backed by the signals table.
func New(db *sql.DB, opts Options, logger *slog.Logger) Ledger {
	return &ledger{
		db:     db,
		opts:   opts.withDefaults(),
		logger: logger.With("system", "signals"),
	}
}

func (l *ledger) Open(ctx context.Context, source, dedupeKey string) (*Signal, bool, error) {
	sig, err := l.insert(ctx, source, dedupeKey)
	if err == nil {
		l.logger.InfoContext(ctx, "signal opened", "id", sig.ID, "source", source, "dedupe_key", dedupeKey)
		return sig, false, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, false, fmt.Errorf("open signal: %w", err)
	}

	deadline := time.Now().Add(l.opts.MaxWait)

	for {
		existing, err := l.findByKey(ctx, source, dedupeKey)
		if err != nil {
			return nil, false, err
		}

		switch existing.Status {
		case StatusAttached:
			l.logger.InfoContext(ctx, "signal already attached", "id", existing.ID, "dedupe_key", dedupeKey)
			return existing, true, nil
		case StatusError:
			reason := ""
			if existing.LastError != nil {
				reason = *existing.LastError
			}
			return existing, false, fmt.Errorf("%w: %s", ErrPreviouslyFailed, reason)
		}

		claimed, err := l.claim(ctx, existing.ID)
		if err == nil {
			l.logger.InfoContext(ctx, "signal claimed for retry",
				"id", claimed.ID,
				"attempts", claimed.Attempts,
			)
			return claimed, false, nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, false, fmt.Errorf("claim signal: %w", err)
		}

		if !time.Now().Add(l.opts.PollInterval).Before(deadline) {
			return existing, false, ErrInFlight
		}

		if err := sleep(ctx, l.opts.PollInterval); err != nil {
			return existing, false, fmt.Errorf("%w: %w", ErrInFlight, err)
		}
	}
}

func (l *ledger) Complete(ctx context.Context, e repository.Executor, sig *Signal, documentID uuid.UUID, result any) error {
	token, err := leaseToken(sig, StatusAttached)
	if err != nil {
		return err
	}

	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal signal result: %w", err)
	}

	q := `
		UPDATE signals
		SET status = 'attached', document_id = $2, result = $3,
			leased_until = NULL, leased_by = NULL, processed_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND status = 'processing' AND leased_by = $4`

	if err := repository.ExecExpectOne(ctx, e, q, sig.ID, documentID, payload, token); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("complete signal %s: %w", sig.ID, ErrLeaseLost)
		}
		return fmt.Errorf("complete signal: %w", err)
	}

	sig.Status = StatusAttached
	sig.DocumentID = &documentID
	sig.Result = payload
	sig.LeasedBy = nil
	sig.LeasedUntil = nil
	return nil
}

func (l *ledger) Fail(ctx context.Context, sig *Signal, reason string) error {
	token, err := leaseToken(sig, StatusError)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), terminalWriteTimeout)
	defer cancel()

	q := `
		UPDATE signals
		SET status = 'error', last_error = $2,
			leased_until = NULL, leased_by = NULL, processed_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND status = 'processing' AND leased_by = $3`

	if err := repository.ExecExpectOne(ctx, l.db, q, sig.ID, reason, token); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("fail signal %s: %w", sig.ID, ErrLeaseLost)
		}
		return fmt.Errorf("fail signal: %w", err)
	}

	sig.Status = StatusError
	sig.LastError = &reason
	sig.LeasedBy = nil
	sig.LeasedUntil = nil

	l.logger.WarnContext(ctx, "signal failed", "id", sig.ID, "reason", reason)
	return nil
}

func (l *ledger) Release(ctx context.Context, sig *Signal, reason string) error {
	token, err := leaseToken(sig, StatusProcessing)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), terminalWriteTimeout)
	defer cancel()

	q := `
		UPDATE signals
		SET leased_until = NULL, leased_by = NULL, last_error = $2, updated_at = NOW()
		WHERE id = $1 AND status = 'processing' AND leased_by = $3`

	if err := repository.ExecExpectOne(ctx, l.db, q, sig.ID, reason, token); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("release signal %s: %w", sig.ID, ErrLeaseLost)
		}
		return fmt.Errorf("release signal: %w", err)
	}

	sig.LeasedUntil = nil
	sig.LeasedBy = nil
	sig.LastError = &reason

	l.logger.InfoContext(ctx, "signal released for retry", "id", sig.ID, "reason", reason)
	return nil
}

func (l *ledger) Find(ctx context.Context, id uuid.UUID) (*Signal, error) {
	q := `SELECT ` + columns + ` FROM signals WHERE id = $1`

	sig, err := repository.QueryOne(ctx, l.db, q, []any{id}, scanSignal)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrNotFound)
	}
	return &sig, nil
}

func (l *ledger) insert(ctx context.Context, source, dedupeKey string) (*Signal, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("generate signal id: %w", err)
	}

	q := `
		INSERT INTO signals(id, source, dedupe_key, status, attempts, leased_until, leased_by)
		VALUES ($1, $2, $3, 'processing', 1, NOW() + make_interval(secs => $4), $5)
		ON CONFLICT (source, dedupe_key) DO NOTHING
		RETURNING ` + columns

	args := []any{id, source, dedupeKey, l.opts.Lease.Seconds(), uuid.New()}

	sig, err := repository.QueryOne(ctx, l.db, q, args, scanSignal)
	if err != nil {
		return nil, err
	}
	return &sig, nil
}

func (l *ledger) claim(ctx context.Context, id uuid.UUID) (*Signal, error) {
	q := `
		UPDATE signals
		SET status = 'processing', attempts = attempts + 1,
			leased_until = NOW() + make_interval(secs => $2), leased_by = $3, updated_at = NOW()
		WHERE id = $1
			AND status IN ('new', 'processing')
			AND (leased_until IS NULL OR leased_until < NOW())
		RETURNING ` + columns

	args := []any{id, l.opts.Lease.Seconds(), uuid.New()}

	sig, err := repository.QueryOne(ctx, l.db, q, args, scanSignal)
	if err != nil {
		return nil, err
	}
	return &sig, nil
}

func (l *ledger) findByKey(ctx context.Context, source, dedupeKey string) (*Signal, error) {
	q := `SELECT ` + columns + ` FROM signals WHERE source = $1 AND dedupe_key = $2`

	sig, err := repository.QueryOne(ctx, l.db, q, []any{source, dedupeKey}, scanSignal)
	if err != nil {
		return nil, fmt.Errorf("find signal: %w", repository.MapError(err, ErrNotFound, ErrNotFound))
	}
	return &sig, nil
}

func scanSignal(s repository.Scanner) (Signal, error) {
	var sig Signal
	var result []byte
	err := s.Scan(
		&sig.ID,
		&sig.Source,
		&sig.DedupeKey,
		&sig.Status,
		&sig.Attempts,
		&sig.LeasedUntil,
		&sig.LeasedBy,
		&sig.DocumentID,
		&result,
		&sig.LastError,
		&sig.ProcessedAt,
		&sig.CreatedAt,
		&sig.UpdatedAt,
	)
	if len(result) > 0 {
		sig.Result = json.RawMessage(result)
	}
	return sig, err
}

// leaseToken returns the lease held by sig, rejecting transitions the
// in-memory status already rules out.
func leaseToken(sig *Signal, next Status) (uuid.UUID, error) {
	if next != StatusProcessing && !sig.Status.CanTransition(next) {
		return uuid.Nil, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, sig.Status, next)
	}
	if next == StatusProcessing && sig.Status != StatusProcessing {
		return uuid.Nil, fmt.Errorf("%w: release %s signal", ErrInvalidTransition, sig.Status)
	}
	if sig.LeasedBy == nil {
		return uuid.Nil, fmt.Errorf("signal %s: %w", sig.ID, ErrLeaseLost)
	}
	return *sig.LeasedBy, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
