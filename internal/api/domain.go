package api

import (
	"github.com/JaimeStill/intake/internal/commitments"
	"github.com/JaimeStill/intake/internal/content"
	"github.com/JaimeStill/intake/internal/documents"
	"github.com/JaimeStill/intake/internal/extraction"
	"github.com/JaimeStill/intake/internal/interactions"
	"github.com/JaimeStill/intake/internal/links"
	"github.com/JaimeStill/intake/internal/parties"
	"github.com/JaimeStill/intake/internal/pipeline"
	"github.com/JaimeStill/intake/internal/resolver"
	"github.com/JaimeStill/intake/internal/signals"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Content      content.System
	Signals      signals.Ledger
	Extraction   extraction.Gateway
	Parties      parties.System
	Resolver     resolver.Resolver
	Documents    documents.System
	Commitments  commitments.System
	Links        links.System
	Interactions interactions.System
	Pipeline     pipeline.System
}

// NewDomain creates all domain systems from the API runtime.
func NewDomain(runtime *Runtime) *Domain {
	cfg := runtime.Config
	db := runtime.Database.Connection()
	logger := runtime.Logger

	d := &Domain{
		Content:      content.New(db, runtime.Storage, logger),
		Signals:      signals.New(db, cfg.Pipeline.SignalOptions(), logger),
		Extraction:   extraction.New(cfg.Agent.GoAgents(), cfg.Extraction, logger),
		Parties:      parties.New(db, logger, runtime.Pagination),
		Documents:    documents.New(db, logger, runtime.Pagination),
		Commitments:  commitments.New(db, logger),
		Links:        links.New(db, logger),
		Interactions: interactions.New(db, logger, runtime.Pagination),
	}
	d.Resolver = resolver.New(d.Parties, cfg.Resolver, logger)

	d.Pipeline = pipeline.New(
		pipeline.Deps{
			DB:           db,
			Content:      d.Content,
			Ledger:       d.Signals,
			Gateway:      d.Extraction,
			Documents:    d.Documents,
			Resolver:     d.Resolver,
			Parties:      d.Parties,
			Commitments:  d.Commitments,
			Links:        d.Links,
			Interactions: d.Interactions,
		},
		cfg.Pipeline,
		logger,
	)

	return d
}
