// Package pipeline turns an uploaded document into a linked set of business
// entities. A run stores the bytes, claims a ledger signal, calls the
// extraction gateway outside any transaction, then writes the document,
// counterparty, commitment, links and audit trail in a single transaction
// that also attaches the signal.
package pipeline

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/JaimeStill/intake/internal/commitments"
	"github.com/JaimeStill/intake/internal/content"
	"github.com/JaimeStill/intake/internal/documents"
	"github.com/JaimeStill/intake/internal/extraction"
	"github.com/JaimeStill/intake/internal/interactions"
	"github.com/JaimeStill/intake/internal/links"
	"github.com/JaimeStill/intake/internal/parties"
	"github.com/JaimeStill/intake/internal/resolver"
	"github.com/JaimeStill/intake/internal/signals"
	"github.com/JaimeStill/intake/pkg/repository"
)

// System processes uploads.
type System interface {
	Handler(maxUploadSize int64) *Handler

	ProcessUpload(ctx context.Context, up Upload) (*Result, error)
	// Reprocess runs the pipeline again over content already in the store.
	Reprocess(ctx context.Context, sha256, source, hint string) (*Result, error)
}

// Deps are the systems a pipeline run coordinates.
type Deps struct {
	DB           *sql.DB
	Content      content.System
	Ledger       signals.Ledger
	Gateway      extraction.Gateway
	Documents    documents.System
	Resolver     resolver.Resolver
	Parties      parties.System
	Commitments  commitments.System
	Links        links.System
	Interactions interactions.System
	// Clock supplies the scoring reference date and stage timings.
	// Defaults to time.Now.
	Clock func() time.Time
}

type pipeline struct {
	Deps
	cfg    Config
	logger *slog.Logger
}

// New creates a pipeline over deps.
func New(deps Deps, cfg Config, logger *slog.Logger) System {
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	return &pipeline{
		Deps:   deps,
		cfg:    cfg,
		logger: logger.With("system", "pipeline"),
	}
}

func (p *pipeline) Handler(maxUploadSize int64) *Handler {
	return NewHandler(p, p.logger, maxUploadSize)
}

func (p *pipeline) Reprocess(ctx context.Context, sha256, source, hint string) (*Result, error) {
	data, err := p.Content.Open(ctx, sha256)
	if err != nil {
		if errors.Is(err, content.ErrNotFound) || errors.Is(err, content.ErrInvalidHash) {
			return nil, fail(KindInvalidInput, false, err)
		}
		return nil, fail(KindStorage, true, err)
	}
	return p.ProcessUpload(ctx, Upload{
		Data:   data,
		Source: source,
		Hint:   hint,
	})
}

func (p *pipeline) ProcessUpload(ctx context.Context, up Upload) (*Result, error) {
	if len(up.Data) == 0 {
		return nil, fail(KindInvalidInput, false, content.ErrEmpty)
	}
	if strings.TrimSpace(up.Source) == "" {
		up.Source = p.cfg.DefaultSource
	}

	sw := newStopwatch(p.Clock)

	obj, err := p.Content.Store(ctx, up.Data, up.ContentType)
	sw.mark(StageStoring)
	if err != nil {
		return nil, fail(KindStorage, true, err)
	}

	sig, done, err := p.Ledger.Open(ctx, up.Source, obj.SHA256)
	sw.mark(StageSignaling)
	switch {
	case errors.Is(err, signals.ErrInFlight):
		return nil, fail(KindInProgress, true, err)
	case errors.Is(err, signals.ErrPreviouslyFailed):
		return nil, fail(KindFailedPreviously, false, err)
	case err != nil:
		return nil, fail(KindInternal, true, err)
	}

	if done {
		return p.cached(ctx, sig, obj, sw)
	}

	ext, err := p.extract(ctx, obj, up)
	sw.mark(StageExtracting)
	if err != nil {
		return nil, p.extractionFailed(ctx, sig, err)
	}

	r := &run{
		pipeline: p,
		upload:   up,
		object:   obj,
		signal:   sig,
		ext:      ext,
		sw:       sw,
	}

	result, err := p.commit(ctx, r)
	if err != nil {
		return nil, p.commitFailed(ctx, sig, err)
	}

	sw.mark(StageCompleting)
	result.Metrics = sw.metrics()

	p.logger.InfoContext(ctx, "document processed",
		"document_id", result.DocumentID,
		"sha256", result.SHA256,
		"doc_type", result.DocType,
		"warnings", len(result.Warnings),
	)
	return result, nil
}

// commit runs the transactional phase detached from the caller's
// cancellation, bounded by the commit timeout. A client disconnect after
// extraction does not abandon the write.
func (p *pipeline) commit(ctx context.Context, r *run) (*Result, error) {
	cctx := context.WithoutCancel(ctx)
	if d := p.cfg.CommitTimeoutDuration(); d > 0 {
		var cancel context.CancelFunc
		cctx, cancel = context.WithTimeout(cctx, d)
		defer cancel()
	}

	return repository.WithTx(cctx, p.DB, func(tx *sql.Tx) (*Result, error) {
		return r.commit(cctx, tx)
	})
}

// commitFailed settles the signal after a rolled back transaction. A lost
// lease belongs to another attempt and is left alone. An interrupted commit
// releases the signal for retry. Anything else marks it errored.
func (p *pipeline) commitFailed(ctx context.Context, sig *signals.Signal, err error) error {
	switch {
	case errors.Is(err, signals.ErrLeaseLost):
		p.logger.WarnContext(ctx, "signal lease lost before commit", "signal_id", sig.ID, "error", err)
		return fail(KindInProgress, true, err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		if rerr := p.Ledger.Release(ctx, sig, err.Error()); rerr != nil {
			p.logger.ErrorContext(ctx, "release signal", "signal_id", sig.ID, "error", rerr)
		}
		p.logger.WarnContext(ctx, "pipeline commit interrupted", "signal_id", sig.ID, "error", err)
		return fail(KindInternal, true, err)
	}

	kind := KindInternal
	if errors.Is(err, resolver.ErrResolution) {
		kind = KindResolution
	}
	if ferr := p.Ledger.Fail(ctx, sig, err.Error()); ferr != nil {
		p.logger.ErrorContext(ctx, "record signal failure", "signal_id", sig.ID, "error", ferr)
	}
	p.logger.ErrorContext(ctx, "pipeline run rolled back", "signal_id", sig.ID, "kind", kind, "error", err)
	return fail(kind, false, err)
}

func (p *pipeline) extract(ctx context.Context, obj *content.Object, up Upload) (*extraction.Extraction, error) {
	ectx, cancel := context.WithTimeout(ctx, p.cfg.ExtractionTimeoutDuration())
	defer cancel()

	return p.Gateway.Extract(ectx, extraction.Request{
		Data:        up.Data,
		ContentType: obj.ContentType,
		Filename:    up.Filename,
		Hint:        up.Hint,
	})
}

// extractionFailed releases the signal for a transient failure so a retry
// can claim it, or marks it errored for a permanent one.
func (p *pipeline) extractionFailed(ctx context.Context, sig *signals.Signal, err error) error {
	f := extraction.AsFailure(err)

	if f.Transient {
		if rerr := p.Ledger.Release(ctx, sig, f.Error()); rerr != nil {
			p.logger.ErrorContext(ctx, "release signal", "signal_id", sig.ID, "error", rerr)
		}
		p.logger.WarnContext(ctx, "transient extraction failure", "signal_id", sig.ID, "reason", f.Reason)
		return fail(KindExtractionTransient, true, f)
	}

	if ferr := p.Ledger.Fail(ctx, sig, f.Error()); ferr != nil {
		p.logger.ErrorContext(ctx, "record signal failure", "signal_id", sig.ID, "error", ferr)
	}
	p.logger.WarnContext(ctx, "permanent extraction failure", "signal_id", sig.ID, "reason", f.Reason)
	return fail(KindExtractionPermanent, false, f)
}

func (p *pipeline) cached(ctx context.Context, sig *signals.Signal, obj *content.Object, sw *stopwatch) (*Result, error) {
	var result Result
	if err := json.Unmarshal(sig.Result, &result); err != nil {
		return nil, fail(KindInternal, false, fmt.Errorf("decode stored result for signal %s: %w", sig.ID, err))
	}

	result.Deduplicated = obj.Deduplicated
	result.Cached = true
	result.Metrics = sw.metrics()

	p.logger.InfoContext(ctx, "returning stored result", "signal_id", sig.ID, "document_id", result.DocumentID)
	return &result, nil
}
