package resolver_test

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/intake/internal/parties"
	"github.com/JaimeStill/intake/internal/resolver"
)

var defaultThresholds = resolver.Thresholds{Fuzzy: 0.90, NameAddress: 0.80, Address: 0.85}

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func party(name, taxID, address string, age time.Duration) parties.Party {
	p := parties.Party{
		ID:          uuid.Must(uuid.NewV7()),
		Kind:        parties.KindOrg,
		DisplayName: name,
		NameKey:     resolver.NameKey(name),
		CreatedAt:   epoch.Add(-age),
	}
	if taxID != "" {
		key := resolver.TaxIDKey(taxID)
		p.TaxID = &taxID
		p.TaxIDKey = &key
	}
	if address != "" {
		p.Address = &address
	}
	return p
}

func candidates(ps ...parties.Party) []resolver.Candidate {
	out := make([]resolver.Candidate, len(ps))
	for i, p := range ps {
		out[i] = resolver.NewCandidate(p)
	}
	return out
}

func TestTiers(t *testing.T) {
	clipboard := party("Clipboard Health", "12-3456789", "500 Main Street", time.Hour)
	acme := party("Acme Corporation", "", "1 Industrial Way", 2*time.Hour)
	pool := candidates(clipboard, acme)

	tests := []struct {
		name       string
		fn         resolver.TierFunc
		query      resolver.Query
		wantOK     bool
		wantID     uuid.UUID
		confidence float64
	}{
		{
			name:       "exact id ignores name",
			fn:         resolver.ExactID,
			query:      resolver.Query{Name: "CBH Staffing", TaxID: "123456789"},
			wantOK:     true,
			wantID:     clipboard.ID,
			confidence: 1.0,
		},
		{
			name:   "exact id requires tax id",
			fn:     resolver.ExactID,
			query:  resolver.Query{Name: "Clipboard Health"},
			wantOK: false,
		},
		{
			name:       "exact name with canonical suffix",
			fn:         resolver.ExactName,
			query:      resolver.Query{Name: "ACME Corp."},
			wantOK:     true,
			wantID:     acme.ID,
			confidence: 0.95,
		},
		{
			name:       "fuzzy name above threshold",
			fn:         resolver.FuzzyName,
			query:      resolver.Query{Name: "Clipboard Helth"},
			wantOK:     true,
			wantID:     clipboard.ID,
			confidence: 0.9375,
		},
		{
			name:   "fuzzy name below threshold",
			fn:     resolver.FuzzyName,
			query:  resolver.Query{Name: "Clipbord Helth"},
			wantOK: false,
		},
		{
			name:       "name and address",
			fn:         resolver.NameAddress,
			query:      resolver.Query{Name: "Clipbord Helth", Address: "500 Main St"},
			wantOK:     true,
			wantID:     clipboard.ID,
			confidence: 0.875,
		},
		{
			name:   "name and address requires address",
			fn:     resolver.NameAddress,
			query:  resolver.Query{Name: "Clipbord Helth"},
			wantOK: false,
		},
		{
			name:   "name and address rejects distant address",
			fn:     resolver.NameAddress,
			query:  resolver.Query{Name: "Clipbord Helth", Address: "77 Harbor Boulevard"},
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, ok := tt.fn(tt.query.Keys(), pool, defaultThresholds)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if m.Party.ID != tt.wantID {
				t.Errorf("matched %s, want %s", m.Party.DisplayName, tt.wantID)
			}
			if m.Confidence != tt.confidence {
				t.Errorf("confidence = %v, want %v", m.Confidence, tt.confidence)
			}
			if !m.Matched {
				t.Error("Matched = false")
			}
		})
	}
}

func TestTieBreak(t *testing.T) {
	older := party("Clipboard Health", "", "", 48*time.Hour)
	newer := party("Clipboard Health", "", "", time.Hour)

	m, ok := resolver.ExactName(resolver.Query{Name: "Clipboard Health"}.Keys(), candidates(older, newer), defaultThresholds)
	if !ok {
		t.Fatal("expected match")
	}
	if m.Party.ID != newer.ID {
		t.Error("most recently created candidate should win")
	}

	a := party("Clipboard Health", "", "", time.Hour)
	b := party("Clipboard Health", "", "", time.Hour)
	want := a
	if b.ID.String() > a.ID.String() {
		want = b
	}

	for _, order := range [][]parties.Party{{a, b}, {b, a}} {
		m, _ := resolver.ExactName(resolver.Query{Name: "Clipboard Health"}.Keys(), candidates(order...), defaultThresholds)
		if m.Party.ID != want.ID {
			t.Errorf("greatest id should win regardless of order")
		}
	}
}

func TestTieBreakPrefersSimilarity(t *testing.T) {
	near := party("Clipboard Heath", "", "", 48*time.Hour)
	exactish := party("Clipboard Health", "", "", 72*time.Hour)

	m, ok := resolver.FuzzyName(resolver.Query{Name: "Clipboard Helth"}.Keys(), candidates(near, exactish), defaultThresholds)
	if !ok {
		t.Fatal("expected match")
	}
	if m.Party.ID != exactish.ID {
		t.Errorf("higher similarity should win over recency, got %s", m.Party.DisplayName)
	}
}

func TestFuzzyThresholdBoundary(t *testing.T) {
	clipboard := party("Clipboard Health", "", "", time.Hour)
	keys := resolver.Query{Name: "Clipboard Helth"}.Keys()

	if sim := resolver.TokenSortRatio(keys.Name, clipboard.NameKey); sim != 0.9375 {
		t.Fatalf("similarity = %v, want 0.9375", sim)
	}

	tests := []struct {
		threshold float64
		wantOK    bool
	}{
		{0.93, true},
		{0.9375, true},
		{0.94, false},
	}

	for _, tt := range tests {
		th := defaultThresholds
		th.Fuzzy = tt.threshold

		m, ok := resolver.FuzzyName(keys, candidates(clipboard), th)
		if ok != tt.wantOK {
			t.Errorf("threshold %v: ok = %v, want %v", tt.threshold, ok, tt.wantOK)
			continue
		}
		if ok && m.Confidence != 0.9375 {
			t.Errorf("threshold %v: confidence = %v, want 0.9375", tt.threshold, m.Confidence)
		}
	}
}
