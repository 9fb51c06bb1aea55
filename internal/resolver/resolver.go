// Package resolver maps extracted counterparty text to a canonical party
// through an ordered cascade of matching tiers, creating a new party when no
// tier matches.
package resolver

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/JaimeStill/intake/internal/parties"
	"github.com/JaimeStill/intake/pkg/repository"
)

// Resolver resolves a counterparty inside the caller's transaction.
type Resolver interface {
	Resolve(ctx context.Context, h repository.Handle, q Query) (*Match, error)
}

type resolver struct {
	parties parties.System
	cfg     Config
	logger  *slog.Logger
}

// New creates a Resolver backed by the party store.
func New(p parties.System, cfg Config, logger *slog.Logger) Resolver {
	return &resolver{
		parties: p,
		cfg:     cfg,
		logger:  logger.With("system", "resolver"),
	}
}

func (r *resolver) Resolve(ctx context.Context, h repository.Handle, q Query) (*Match, error) {
	keys := q.Keys()
	if keys.Name == "" {
		return nil, ErrEmptyName
	}

	found, err := r.parties.Candidates(ctx, h, keys.Name, keys.TaxID, r.cfg.MaxCandidates)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrResolution, err)
	}

	candidates := make([]Candidate, len(found))
	for i, p := range found {
		candidates[i] = NewCandidate(p)
	}

	th := r.cfg.Thresholds()
	for _, t := range tiers {
		if m, ok := t.fn(keys, candidates, th); ok {
			r.logger.InfoContext(ctx, "counterparty matched",
				"party_id", m.Party.ID,
				"tier", m.Tier,
				"confidence", m.Confidence,
				"candidates", len(candidates),
			)
			return &m, nil
		}
	}

	return r.create(ctx, h, q, keys)
}

func (r *resolver) create(ctx context.Context, h repository.Handle, q Query, keys Keys) (*Match, error) {
	name := strings.Join(strings.Fields(q.Name), " ")

	p, err := r.parties.Create(ctx, h, parties.CreateCommand{
		Kind:        InferKind(name),
		DisplayName: name,
		LegalName:   name,
		TaxID:       strings.TrimSpace(q.TaxID),
		Address:     strings.TrimSpace(q.Address),
		NameKey:     keys.Name,
		TaxIDKey:    keys.TaxID,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: create party: %w", ErrResolution, err)
	}

	role, err := r.parties.AssignRole(ctx, h, p.ID, parties.RoleVendor)
	if err != nil {
		return nil, fmt.Errorf("%w: assign vendor role: %w", ErrResolution, err)
	}
	p.Roles = append(p.Roles, *role)

	r.logger.InfoContext(ctx, "counterparty created", "party_id", p.ID, "kind", p.Kind)

	return &Match{
		Party:      *p,
		Tier:       TierCreated,
		Confidence: 0,
		Matched:    false,
	}, nil
}
