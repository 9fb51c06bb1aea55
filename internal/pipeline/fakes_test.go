package pipeline_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/intake/internal/commitments"
	"github.com/JaimeStill/intake/internal/content"
	"github.com/JaimeStill/intake/internal/documents"
	"github.com/JaimeStill/intake/internal/extraction"
	"github.com/JaimeStill/intake/internal/interactions"
	"github.com/JaimeStill/intake/internal/links"
	"github.com/JaimeStill/intake/internal/parties"
	"github.com/JaimeStill/intake/internal/resolver"
	"github.com/JaimeStill/intake/internal/signals"
	"github.com/JaimeStill/intake/pkg/pagination"
	"github.com/JaimeStill/intake/pkg/repository"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeContent struct {
	mu       sync.Mutex
	blobs    map[string][]byte
	storeErr error
}

func newFakeContent() *fakeContent {
	return &fakeContent{blobs: make(map[string][]byte)}
}

func (f *fakeContent) Store(_ context.Context, data []byte, contentType string) (*content.Object, error) {
	if f.storeErr != nil {
		return nil, f.storeErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	hash := content.Hash(data)
	_, exists := f.blobs[hash]
	f.blobs[hash] = data
	return &content.Object{
		SHA256:       hash,
		StorageKey:   content.StorageKey(hash),
		SizeBytes:    int64(len(data)),
		ContentType:  content.DetectContentType(contentType, data),
		Deduplicated: exists,
	}, nil
}

func (f *fakeContent) Open(_ context.Context, hash string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.blobs[hash]
	if !ok {
		return nil, content.ErrNotFound
	}
	return data, nil
}

// fakeLedger keeps signals in memory with the same state rules as the
// database ledger. Each open or claim hands out a lease token, and only the
// holder may settle the signal. Open waits on a live lease held by another
// attempt until it settles or leaseWait passes. onOpen runs after the first
// lookup. inFlight forces Open to report a live lease.
type fakeLedger struct {
	mu        sync.Mutex
	signals   map[string]*signals.Signal
	inFlight  bool
	leaseWait time.Duration
	onOpen    func()
	released  int
	failed    []string
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{
		signals:   make(map[string]*signals.Signal),
		leaseWait: 2 * time.Second,
	}
}

func (f *fakeLedger) Open(_ context.Context, source, key string) (*signals.Signal, bool, error) {
	deadline := time.Now().Add(f.leaseWait)
	for first := true; ; first = false {
		sig, done, leased, err := f.tryOpen(source, key)
		if first && f.onOpen != nil {
			f.onOpen()
		}
		if !leased {
			return sig, done, err
		}
		if time.Now().After(deadline) {
			return sig, false, signals.ErrInFlight
		}
		time.Sleep(time.Millisecond)
	}
}

func (f *fakeLedger) tryOpen(source, key string) (*signals.Signal, bool, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	sig, ok := f.signals[source+"/"+key]
	if !ok {
		sig = &signals.Signal{ID: uuid.Must(uuid.NewV7()), Source: source, DedupeKey: key, Status: signals.StatusProcessing, Attempts: 1}
		lease(sig)
		f.signals[source+"/"+key] = sig
		return clone(sig), false, false, nil
	}

	switch sig.Status {
	case signals.StatusAttached:
		return clone(sig), true, false, nil
	case signals.StatusError:
		return clone(sig), false, false, signals.ErrPreviouslyFailed
	}
	if f.inFlight {
		return clone(sig), false, false, signals.ErrInFlight
	}
	if sig.LeasedBy != nil {
		return nil, false, true, nil
	}
	sig.Attempts++
	lease(sig)
	return clone(sig), false, false, nil
}

// expire hands the lease on the only signal to another attempt.
func (f *fakeLedger) expire() {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.signals {
		lease(s)
	}
}

func (f *fakeLedger) holder(sig *signals.Signal) (*signals.Signal, error) {
	stored := f.signals[sig.Source+"/"+sig.DedupeKey]
	if stored.LeasedBy == nil || sig.LeasedBy == nil || *stored.LeasedBy != *sig.LeasedBy {
		return nil, signals.ErrLeaseLost
	}
	return stored, nil
}

func (f *fakeLedger) Complete(_ context.Context, _ repository.Executor, sig *signals.Signal, documentID uuid.UUID, result any) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := json.Marshal(result)
	if err != nil {
		return err
	}
	if sig.Status != signals.StatusProcessing {
		return signals.ErrInvalidTransition
	}
	stored, err := f.holder(sig)
	if err != nil {
		return err
	}
	stored.Status = signals.StatusAttached
	stored.DocumentID = &documentID
	stored.Result = data
	stored.LeasedBy = nil
	return nil
}

func (f *fakeLedger) Fail(_ context.Context, sig *signals.Signal, reason string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, err := f.holder(sig)
	if err != nil {
		return err
	}
	stored.Status = signals.StatusError
	stored.LastError = &reason
	stored.LeasedBy = nil
	f.failed = append(f.failed, reason)
	return nil
}

func (f *fakeLedger) Release(_ context.Context, sig *signals.Signal, reason string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, err := f.holder(sig)
	if err != nil {
		return err
	}
	stored.LastError = &reason
	stored.LeasedBy = nil
	f.released++
	return nil
}

func (f *fakeLedger) Find(_ context.Context, id uuid.UUID) (*signals.Signal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.signals {
		if s.ID == id {
			return clone(s), nil
		}
	}
	return nil, signals.ErrNotFound
}

func (f *fakeLedger) only() *signals.Signal {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.signals {
		return clone(s)
	}
	return nil
}

func clone(s *signals.Signal) *signals.Signal {
	c := *s
	return &c
}

func lease(s *signals.Signal) {
	token := uuid.New()
	s.LeasedBy = &token
}

// fakeGateway returns a canned extraction. When gate is set, Extract blocks
// until it is closed. onExtract runs before the result is returned.
type fakeGateway struct {
	mu        sync.Mutex
	calls     int
	result    *extraction.Extraction
	err       error
	gate      chan struct{}
	onExtract func()
}

func (f *fakeGateway) Extract(_ context.Context, _ extraction.Request) (*extraction.Extraction, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	if f.gate != nil {
		<-f.gate
	}
	if f.onExtract != nil {
		f.onExtract()
	}
	if f.err != nil {
		return nil, f.err
	}
	e := *f.result
	return &e, nil
}

func (f *fakeGateway) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeDocuments struct {
	documents.System
	mu      sync.Mutex
	created []documents.CreateCommand
}

func (f *fakeDocuments) Create(_ context.Context, _ repository.Handle, cmd documents.CreateCommand) (*documents.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, cmd)
	return &documents.Document{
		ID:          uuid.Must(uuid.NewV7()),
		SHA256:      cmd.SHA256,
		Source:      cmd.Source,
		Filename:    cmd.Filename,
		ContentType: cmd.ContentType,
		DocType:     cmd.DocType,
		PageCount:   cmd.PageCount,
		SignalID:    cmd.SignalID,
	}, nil
}

// fakeResolver matches by exact name and creates otherwise.
type fakeResolver struct {
	mu    sync.Mutex
	known map[string]parties.Party
	err   error
	calls int
}

func newFakeResolver() *fakeResolver {
	return &fakeResolver{known: make(map[string]parties.Party)}
}

func (f *fakeResolver) Resolve(_ context.Context, _ repository.Handle, q resolver.Query) (*resolver.Match, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	key := resolver.NameKey(q.Name)
	if key == "" {
		return nil, resolver.ErrEmptyName
	}
	if p, ok := f.known[key]; ok {
		return &resolver.Match{Party: p, Tier: resolver.TierExactName, Confidence: 0.95, Similarity: 1, Matched: true}, nil
	}
	p := parties.Party{ID: uuid.Must(uuid.NewV7()), Kind: parties.KindOrg, DisplayName: q.Name, NameKey: key}
	f.known[key] = p
	return &resolver.Match{Party: p, Tier: resolver.TierCreated}, nil
}

type fakeParties struct {
	parties.System
	mu    sync.Mutex
	roles map[uuid.UUID]*parties.Role
}

func newFakeParties() *fakeParties {
	return &fakeParties{roles: make(map[uuid.UUID]*parties.Role)}
}

func (f *fakeParties) AssignRole(_ context.Context, _ repository.Handle, partyID uuid.UUID, roleType string) (*parties.Role, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if r, ok := f.roles[partyID]; ok {
		return r, nil
	}
	r := &parties.Role{ID: uuid.Must(uuid.NewV7()), PartyID: partyID, RoleType: roleType}
	f.roles[partyID] = r
	return r, nil
}

type fakeCommitments struct {
	commitments.System
	mu      sync.Mutex
	created []commitments.CreateCommand
}

func (f *fakeCommitments) Create(_ context.Context, _ repository.Handle, cmd commitments.CreateCommand) (*commitments.Commitment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, cmd)
	docID := cmd.DocumentID
	return &commitments.Commitment{
		ID:             uuid.Must(uuid.NewV7()),
		DocumentID:     &docID,
		RoleID:         cmd.RoleID,
		CounterpartyID: cmd.CounterpartyID,
		Title:          cmd.Title,
		Priority:       cmd.Priority,
		Justification:  cmd.Justification,
		DueDate:        cmd.DueDate,
		Amount:         cmd.Amount,
		State:          commitments.StateProposed,
	}, nil
}

type fakeLinks struct {
	mu      sync.Mutex
	created []links.Link
}

func (f *fakeLinks) Create(_ context.Context, _ repository.Handle, documentID uuid.UUID, target links.Target, linkType links.Type) (*links.Link, error) {
	if err := target.Validate(); err != nil {
		return nil, err
	}
	l := links.Link{ID: uuid.Must(uuid.NewV7()), DocumentID: documentID, Target: target, Type: linkType, CreatedAt: time.Now()}
	f.mu.Lock()
	f.created = append(f.created, l)
	f.mu.Unlock()
	return &l, nil
}

func (f *fakeLinks) ListByDocument(context.Context, uuid.UUID) ([]links.Link, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeLinks) ListByTarget(context.Context, links.Target) ([]links.Link, error) {
	return nil, errors.New("not implemented")
}

type fakeInteractions struct {
	mu       sync.Mutex
	appended []interactions.AppendCommand
}

func (f *fakeInteractions) Handler() *interactions.Handler { return nil }

func (f *fakeInteractions) Append(_ context.Context, _ repository.Handle, cmd interactions.AppendCommand) (*interactions.Interaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.appended = append(f.appended, cmd)
	return &interactions.Interaction{ID: uuid.Must(uuid.NewV7()), EntityType: cmd.EntityType, EntityID: cmd.EntityID, Action: cmd.Action}, nil
}

func (f *fakeInteractions) Timeline(context.Context, interactions.TimelineQuery, pagination.PageRequest) (*pagination.PageResult[interactions.Interaction], error) {
	return nil, errors.New("not implemented")
}

func (f *fakeInteractions) actions() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.appended))
	for i, a := range f.appended {
		out[i] = a.Action
	}
	return out
}
