package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/JaimeStill/intake/internal/commitments"
	"github.com/JaimeStill/intake/internal/content"
	"github.com/JaimeStill/intake/internal/documents"
	"github.com/JaimeStill/intake/internal/extraction"
	"github.com/JaimeStill/intake/internal/interactions"
	"github.com/JaimeStill/intake/internal/links"
	"github.com/JaimeStill/intake/internal/parties"
	"github.com/JaimeStill/intake/internal/priority"
	"github.com/JaimeStill/intake/internal/resolver"
	"github.com/JaimeStill/intake/internal/signals"
	"github.com/JaimeStill/intake/pkg/repository"
)

// run carries the state of one transactional commit.
type run struct {
	*pipeline
	upload Upload
	object *content.Object
	signal *signals.Signal
	ext    *extraction.Extraction
	sw     *stopwatch

	invalid  validation.Errors
	warnings []string

	doc        *documents.Document
	match      *resolver.Match
	role       *parties.Role
	commitment *commitments.Commitment
	links      []LinkRef
}

func (r *run) commit(ctx context.Context, h repository.Handle) (*Result, error) {
	if err := r.classify(ctx, h); err != nil {
		return nil, err
	}
	r.sw.mark(StageClassifying)

	if err := r.resolve(ctx, h); err != nil {
		return nil, err
	}
	r.sw.mark(StageResolving)

	if err := r.score(ctx, h); err != nil {
		return nil, err
	}
	r.sw.mark(StageScoring)

	if err := r.link(ctx, h); err != nil {
		return nil, err
	}
	r.sw.mark(StageLinking)

	if err := r.audit(ctx, h); err != nil {
		return nil, err
	}
	r.sw.mark(StageLogging)

	result := r.result()
	if err := r.Ledger.Complete(ctx, h, r.signal, r.doc.ID, result); err != nil {
		return nil, fmt.Errorf("attach signal: %w", err)
	}
	return result, nil
}

func (r *run) classify(ctx context.Context, h repository.Handle) error {
	fields := r.ext.Fields

	if err := fields.Validate(); err != nil {
		if !errors.As(err, &r.invalid) {
			return fmt.Errorf("validate fields: %w", err)
		}
		keys := make([]string, 0, len(r.invalid))
		for k := range r.invalid {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			r.warn("%s: %v", k, r.invalid[k])
		}
	}

	_, hasAmount := fields.Amount()
	docType := documents.Classify(fields.DocumentType, r.upload.Filename, r.object.ContentType, hasAmount)

	doc, err := r.Documents.Create(ctx, h, documents.CreateCommand{
		SHA256:      r.object.SHA256,
		Source:      r.upload.Source,
		Filename:    r.upload.Filename,
		ContentType: r.object.ContentType,
		DocType:     docType,
		PageCount:   r.ext.Pages,
		Fields:      fields,
		SignalID:    r.signal.ID,
	})
	if err != nil {
		return fmt.Errorf("create document: %w", err)
	}
	r.doc = doc
	return nil
}

func (r *run) resolve(ctx context.Context, h repository.Handle) error {
	fields := r.ext.Fields
	if r.invalidField("vendor_name") {
		r.warn("counterparty resolution skipped: no usable vendor name")
		return nil
	}

	match, err := r.Resolver.Resolve(ctx, h, resolver.Query{
		Name:    fields.VendorName,
		Address: fields.VendorAddress,
		TaxID:   fields.VendorTaxID,
	})
	if errors.Is(err, resolver.ErrEmptyName) {
		r.warn("counterparty resolution skipped: vendor name %q normalizes to nothing", fields.VendorName)
		return nil
	}
	if err != nil {
		return err
	}

	role, err := r.Parties.AssignRole(ctx, h, match.Party.ID, parties.RoleVendor)
	if err != nil {
		return fmt.Errorf("%w: assign vendor role: %w", resolver.ErrResolution, err)
	}

	r.match = match
	r.role = role
	return nil
}

func (r *run) score(ctx context.Context, h repository.Handle) error {
	fields := r.ext.Fields
	if !r.doc.DocType.ObligationBearing(strings.TrimSpace(fields.TotalAmount) != "") {
		return nil
	}
	if r.match == nil {
		r.warn("commitment skipped: no counterparty")
		return nil
	}

	in := priority.Input{
		AsOf:     r.Clock(),
		Currency: fields.CurrencyCode(),
		Domain:   fields.Domain,
	}
	if in.Domain == "" {
		in.Domain = r.cfg.DefaultDomain
	}

	if strings.TrimSpace(fields.TotalAmount) != "" {
		amount, ok := fields.Amount()
		if !ok || r.invalidField("total_amount") {
			r.warn("commitment skipped: unparseable amount %q", fields.TotalAmount)
			return nil
		}
		if amount.IsNegative() {
			r.warn("commitment skipped: negative amount %q", fields.TotalAmount)
			return nil
		}
		in.Amount = &amount
	}
	if strings.TrimSpace(fields.DueDate) != "" {
		due, ok := fields.Due()
		if !ok {
			r.warn("commitment skipped: unparseable due date %q", fields.DueDate)
			return nil
		}
		in.DueDate = &due
	}
	if in.Amount == nil && in.DueDate == nil {
		r.warn("commitment skipped: no amount or due date")
		return nil
	}

	scored, err := priority.Score(in)
	if err != nil {
		return fmt.Errorf("score commitment: %w", err)
	}

	vendor := r.match.Party.DisplayName
	c, err := r.Commitments.Create(ctx, h, commitments.CreateCommand{
		DocumentID:     r.doc.ID,
		RoleID:         &r.role.ID,
		CounterpartyID: r.match.Party.ID,
		Title:          commitmentTitle(vendor, r.doc.DocType, fields.InvoiceNumber),
		Priority:       scored.Priority,
		Justification:  fmt.Sprintf("%s: %s", vendor, scored.Justification),
		Factors:        scored.Factors,
		DueDate:        in.DueDate,
		Amount:         in.Amount,
		Currency:       in.Currency,
	})
	if err != nil {
		return fmt.Errorf("create commitment: %w", err)
	}
	r.commitment = c
	return nil
}

type linkTarget struct {
	target links.Target
	typ    links.Type
}

func (r *run) link(ctx context.Context, h repository.Handle) error {
	targets := []linkTarget{
		{links.Signal(r.signal.ID), links.TypeSource},
		{links.ContentObject(r.object.SHA256), links.TypeContent},
	}
	if r.match != nil {
		targets = append(targets, linkTarget{links.Party(r.match.Party.ID), links.TypeVendor})
	}
	if r.commitment != nil {
		targets = append(targets, linkTarget{links.Commitment(r.commitment.ID), links.TypeObligation})
	}

	for _, t := range targets {
		l, err := r.Links.Create(ctx, h, r.doc.ID, t.target, t.typ)
		if err != nil {
			return fmt.Errorf("link %s: %w", t.typ, err)
		}
		r.links = append(r.links, LinkRef{
			ID:     l.ID,
			Kind:   l.Target.Kind,
			Target: l.Target.ID,
			Type:   l.Type,
		})
	}
	return nil
}

func (r *run) audit(ctx context.Context, h repository.Handle) error {
	docID := r.doc.ID.String()
	cost := r.ext.Cost

	cmds := []interactions.AppendCommand{
		{
			EntityType: interactions.EntityDocument,
			EntityID:   docID,
			Action:     interactions.ActionUpload,
			Duration:   r.sw.metrics().Duration(StageStoring),
			Metadata: map[string]any{
				"sha256":       r.object.SHA256,
				"source":       r.upload.Source,
				"filename":     r.upload.Filename,
				"size_bytes":   r.object.SizeBytes,
				"deduplicated": r.object.Deduplicated,
				"signal_id":    r.signal.ID,
			},
		},
		{
			EntityType: interactions.EntityDocument,
			EntityID:   docID,
			Action:     interactions.ActionExtract,
			Cost:       &cost,
			Currency:   "USD",
			Duration:   r.ext.Duration,
			Metadata: map[string]any{
				"model":    r.ext.Model,
				"pages":    r.ext.Pages,
				"doc_type": r.doc.DocType,
				"warnings": len(r.warnings),
			},
		},
	}

	if r.match != nil {
		cmds = append(cmds, interactions.AppendCommand{
			EntityType: interactions.EntityParty,
			EntityID:   r.match.Party.ID.String(),
			Action:     interactions.ActionResolveVendor,
			Metadata: map[string]any{
				"document_id": docID,
				"tier":        r.match.Tier,
				"confidence":  r.match.Confidence,
				"similarity":  r.match.Similarity,
				"matched":     r.match.Matched,
			},
		})
	}
	if r.commitment != nil {
		cmds = append(cmds, interactions.AppendCommand{
			EntityType: interactions.EntityCommitment,
			EntityID:   r.commitment.ID.String(),
			Action:     interactions.ActionPrioritize,
			Metadata: map[string]any{
				"document_id":   docID,
				"priority":      r.commitment.Priority,
				"justification": r.commitment.Justification,
			},
		})
	}

	for _, cmd := range cmds {
		if _, err := r.Interactions.Append(ctx, h, cmd); err != nil {
			return fmt.Errorf("append %s interaction: %w", cmd.Action, err)
		}
	}
	return nil
}

func (r *run) result() *Result {
	result := &Result{
		DocumentID:   r.doc.ID,
		SHA256:       r.object.SHA256,
		Deduplicated: r.object.Deduplicated,
		DocType:      string(r.doc.DocType),
		Extraction: ExtractionSummary{
			Cost:            r.ext.Cost,
			Model:           r.ext.Model,
			Pages:           r.ext.Pages,
			DurationSeconds: r.ext.Duration.Seconds(),
		},
		Links:    r.links,
		Metrics:  r.sw.metrics(),
		Warnings: r.warnings,
	}

	if r.match != nil {
		result.Vendor = &Vendor{
			ID:         r.match.Party.ID,
			Name:       r.match.Party.DisplayName,
			Matched:    r.match.Matched,
			Confidence: r.match.Confidence,
			Tier:       r.match.Tier,
		}
	}

	if r.commitment != nil {
		result.Commitment = &Commitment{
			ID:            r.commitment.ID,
			Title:         r.commitment.Title,
			Priority:      r.commitment.Priority,
			Justification: r.commitment.Justification,
			DueDate:       r.commitment.DueDate,
			State:         r.commitment.State,
		}
	}

	return result
}

func (r *run) invalidField(name string) bool {
	_, bad := r.invalid[name]
	return bad
}

func (r *run) warn(format string, args ...any) {
	r.warnings = append(r.warnings, fmt.Sprintf(format, args...))
}

func commitmentTitle(vendor string, docType documents.DocType, number string) string {
	title := fmt.Sprintf("Pay %s %s", vendor, docType)
	if n := strings.TrimSpace(number); n != "" {
		title += " " + n
	}
	return title
}
