package resolver

import (
	"bytes"

	"github.com/JaimeStill/intake/internal/parties"
)

// Tier names the rule that produced a match.
type Tier string

const (
	TierExactID     Tier = "exact_id"
	TierExactName   Tier = "exact_name"
	TierFuzzyName   Tier = "fuzzy_name"
	TierNameAddress Tier = "name_address"
	TierCreated     Tier = "created"
)

const (
	confidenceExactID   = 1.00
	confidenceExactName = 0.95
)

// Query is the extracted counterparty to resolve. Address and TaxID are
// optional.
type Query struct {
	Name    string `json:"name"`
	Address string `json:"address,omitempty"`
	TaxID   string `json:"tax_id,omitempty"`
}

// Keys returns the normalized matching keys for q.
func (q Query) Keys() Keys {
	return Keys{
		Name:    NameKey(q.Name),
		Address: AddressKey(q.Address),
		TaxID:   TaxIDKey(q.TaxID),
	}
}

// Keys are normalized matching keys.
type Keys struct {
	Name    string
	Address string
	TaxID   string
}

// Candidate is an existing party with its matching keys.
type Candidate struct {
	Party parties.Party
	Keys  Keys
}

// NewCandidate derives matching keys for p.
func NewCandidate(p parties.Party) Candidate {
	keys := Keys{Name: p.NameKey}
	if keys.Name == "" {
		keys.Name = NameKey(p.DisplayName)
	}
	if p.Address != nil {
		keys.Address = AddressKey(*p.Address)
	}
	if p.TaxIDKey != nil {
		keys.TaxID = *p.TaxIDKey
	} else if p.TaxID != nil {
		keys.TaxID = TaxIDKey(*p.TaxID)
	}
	return Candidate{Party: p, Keys: keys}
}

// Thresholds are the minimum similarities for the approximate tiers.
type Thresholds struct {
	Fuzzy       float64
	NameAddress float64
	Address     float64
}

// Match is the outcome of resolution. Matched is false when the party was
// created rather than found.
type Match struct {
	Party      parties.Party `json:"party"`
	Tier       Tier          `json:"tier"`
	Confidence float64       `json:"confidence"`
	Similarity float64       `json:"similarity"`
	Matched    bool          `json:"matched"`
}

// TierFunc evaluates one matching rule over the candidate set.
type TierFunc func(k Keys, candidates []Candidate, th Thresholds) (Match, bool)

type tier struct {
	name Tier
	fn   TierFunc
}

// tiers run in order; the first rule that matches wins.
var tiers = []tier{
	{TierExactID, ExactID},
	{TierExactName, ExactName},
	{TierFuzzyName, FuzzyName},
	{TierNameAddress, NameAddress},
}

// ExactID matches on equal normalized tax identifiers.
func ExactID(k Keys, candidates []Candidate, _ Thresholds) (Match, bool) {
	if k.TaxID == "" {
		return Match{}, false
	}
	return best(candidates, TierExactID, func(c Candidate) (float64, float64, bool) {
		if c.Keys.TaxID != k.TaxID {
			return 0, 0, false
		}
		return TokenSortRatio(k.Name, c.Keys.Name), confidenceExactID, true
	})
}

// ExactName matches on equal canonical names.
func ExactName(k Keys, candidates []Candidate, _ Thresholds) (Match, bool) {
	if k.Name == "" {
		return Match{}, false
	}
	return best(candidates, TierExactName, func(c Candidate) (float64, float64, bool) {
		if c.Keys.Name != k.Name {
			return 0, 0, false
		}
		return 1, confidenceExactName, true
	})
}

// FuzzyName matches on token-sorted name similarity at or above th.Fuzzy.
// Confidence is the similarity.
func FuzzyName(k Keys, candidates []Candidate, th Thresholds) (Match, bool) {
	if k.Name == "" {
		return Match{}, false
	}
	return best(candidates, TierFuzzyName, func(c Candidate) (float64, float64, bool) {
		sim := TokenSortRatio(k.Name, c.Keys.Name)
		if sim < th.Fuzzy {
			return 0, 0, false
		}
		return sim, sim, true
	})
}

// NameAddress matches when both the name and the address are similar
// enough. Confidence is the lower of the two similarities.
func NameAddress(k Keys, candidates []Candidate, th Thresholds) (Match, bool) {
	if k.Name == "" || k.Address == "" {
		return Match{}, false
	}
	return best(candidates, TierNameAddress, func(c Candidate) (float64, float64, bool) {
		if c.Keys.Address == "" {
			return 0, 0, false
		}
		nameSim := TokenSortRatio(k.Name, c.Keys.Name)
		if nameSim < th.NameAddress {
			return 0, 0, false
		}
		addrSim := TokenSortRatio(k.Address, c.Keys.Address)
		if addrSim < th.Address {
			return 0, 0, false
		}
		sim := min(nameSim, addrSim)
		return sim, sim, true
	})
}

// best selects among qualifying candidates by highest similarity, then most
// recent creation, then greatest id.
func best(candidates []Candidate, t Tier, score func(Candidate) (sim, confidence float64, ok bool)) (Match, bool) {
	var (
		winner Match
		found  bool
	)

	for _, c := range candidates {
		sim, conf, ok := score(c)
		if !ok {
			continue
		}
		m := Match{
			Party:      c.Party,
			Tier:       t,
			Confidence: conf,
			Similarity: sim,
			Matched:    true,
		}
		if !found || outranks(m, winner) {
			winner = m
			found = true
		}
	}

	return winner, found
}

func outranks(a, b Match) bool {
	if a.Similarity != b.Similarity {
		return a.Similarity > b.Similarity
	}
	if !a.Party.CreatedAt.Equal(b.Party.CreatedAt) {
		return a.Party.CreatedAt.After(b.Party.CreatedAt)
	}
	return bytes.Compare(a.Party.ID[:], b.Party.ID[:]) > 0
}
