// Package memory provides an in-process Store used by tests and single-node development runs.
package memory

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/feral-file/ff-bounty-ledger/internal/domain"
	"github.com/feral-file/ff-bounty-ledger/internal/store"
	"github.com/feral-file/ff-bounty-ledger/internal/store/schema"
)

type assetKey struct {
	bountyID string
	token    string
}

// state is one consistent snapshot of every table
type state struct {
	seq            int64
	bounties       map[string]schema.Bounty
	assets         map[assetKey]schema.BountyAsset
	records        map[schema.RecordKind]map[string]schema.LedgerRecord
	cursors        map[domain.SourceKey]domain.Cursor
	fundingIntents map[string]schema.TreasuryFundingIntent
	payoutIntents  map[string]schema.TreasuryPayoutIntent
	ledgers        map[string]schema.TreasuryBountyLedger
	// insertion order of intents, used to break created_at ties
	fundingOrder map[string]int64
	payoutOrder  map[string]int64
}

func newState() *state {
	return &state{
		bounties: make(map[string]schema.Bounty),
		assets:   make(map[assetKey]schema.BountyAsset),
		records: map[schema.RecordKind]map[string]schema.LedgerRecord{
			schema.RecordKindFunding: {},
			schema.RecordKindClaim:   {},
			schema.RecordKindPayout:  {},
			schema.RecordKindRefund:  {},
		},
		cursors:        make(map[domain.SourceKey]domain.Cursor),
		fundingIntents: make(map[string]schema.TreasuryFundingIntent),
		payoutIntents:  make(map[string]schema.TreasuryPayoutIntent),
		ledgers:        make(map[string]schema.TreasuryBountyLedger),
		fundingOrder:   make(map[string]int64),
		payoutOrder:    make(map[string]int64),
	}
}

// clone copies every table. Rows are values, so copying the maps is enough;
// byte slices inside rows are never mutated in place.
func (s *state) clone() *state {
	c := &state{
		seq:            s.seq,
		bounties:       make(map[string]schema.Bounty, len(s.bounties)),
		assets:         make(map[assetKey]schema.BountyAsset, len(s.assets)),
		records:        make(map[schema.RecordKind]map[string]schema.LedgerRecord, len(s.records)),
		cursors:        make(map[domain.SourceKey]domain.Cursor, len(s.cursors)),
		fundingIntents: make(map[string]schema.TreasuryFundingIntent, len(s.fundingIntents)),
		payoutIntents:  make(map[string]schema.TreasuryPayoutIntent, len(s.payoutIntents)),
		ledgers:        make(map[string]schema.TreasuryBountyLedger, len(s.ledgers)),
		fundingOrder:   make(map[string]int64, len(s.fundingOrder)),
		payoutOrder:    make(map[string]int64, len(s.payoutOrder)),
	}
	for k, v := range s.bounties {
		c.bounties[k] = v
	}
	for k, v := range s.assets {
		c.assets[k] = v
	}
	for kind, table := range s.records {
		ct := make(map[string]schema.LedgerRecord, len(table))
		for k, v := range table {
			ct[k] = v
		}
		c.records[kind] = ct
	}
	for k, v := range s.cursors {
		c.cursors[k] = v
	}
	for k, v := range s.fundingIntents {
		c.fundingIntents[k] = v
	}
	for k, v := range s.payoutIntents {
		c.payoutIntents[k] = v
	}
	for k, v := range s.ledgers {
		c.ledgers[k] = v
	}
	for k, v := range s.fundingOrder {
		c.fundingOrder[k] = v
	}
	for k, v := range s.payoutOrder {
		c.payoutOrder[k] = v
	}
	return c
}

// Store is an in-memory store.Store. Transactions are serialized: a transaction works on
// a private copy of the state which replaces the committed state only when fn succeeds.
type Store struct {
	mu    sync.Mutex
	state *state
	now   func() time.Time
}

// New creates an empty in-memory store
func New() *Store {
	return &Store{state: newState(), now: time.Now}
}

// Transaction runs fn against a private snapshot and swaps it in when fn returns nil.
// fn must only use tx; calling back into the Store from fn deadlocks.
func (s *Store) Transaction(ctx context.Context, fn func(tx store.Tx) error) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &memTx{state: s.state.clone(), now: s.now}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("transaction panicked: %v", r)
		}
	}()

	if err := fn(tx); err != nil {
		return err
	}

	s.state = tx.state
	return nil
}

func (s *Store) view(ctx context.Context, fn func(tx *memTx) error) error {
	return s.Transaction(ctx, func(tx store.Tx) error {
		return fn(tx.(*memTx))
	})
}

// memTx implements store.Tx over a private state copy
type memTx struct {
	state *state
	now   func() time.Time
}

func (t *memTx) GetBounty(_ context.Context, id string) (*schema.Bounty, error) {
	b, ok := t.state.bounties[id]
	if !ok {
		return nil, nil
	}
	return &b, nil
}

func (t *memTx) SaveBounty(_ context.Context, bounty *schema.Bounty) error {
	now := t.now()
	if existing, ok := t.state.bounties[bounty.ID]; ok && bounty.CreatedAt.IsZero() {
		bounty.CreatedAt = existing.CreatedAt
	}
	if bounty.CreatedAt.IsZero() {
		bounty.CreatedAt = now
	}
	if bounty.Status == "" {
		bounty.Status = schema.BountyStatusOpen
	}
	bounty.UpdatedAt = now
	t.state.bounties[bounty.ID] = *bounty
	return nil
}

func (t *memTx) GetBountyAsset(_ context.Context, bountyID, token string) (*schema.BountyAsset, error) {
	a, ok := t.state.assets[assetKey{bountyID, token}]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (t *memTx) ListBountyAssets(_ context.Context, bountyID string) ([]schema.BountyAsset, error) {
	var assets []schema.BountyAsset
	for k, a := range t.state.assets {
		if k.bountyID == bountyID {
			assets = append(assets, a)
		}
	}
	sort.Slice(assets, func(i, j int) bool { return assets[i].Token < assets[j].Token })
	return assets, nil
}

func (t *memTx) SaveBountyAsset(_ context.Context, asset *schema.BountyAsset) error {
	if _, ok := t.state.bounties[asset.BountyID]; !ok {
		return fmt.Errorf("failed to save bounty asset: bounty %s: %w", asset.BountyID, domain.ErrNotFound)
	}
	if !asset.Consistent() {
		return fmt.Errorf("failed to save bounty asset: escrow of %s/%s is inconsistent", asset.BountyID, asset.Token)
	}
	now := t.now()
	if asset.CreatedAt.IsZero() {
		asset.CreatedAt = now
	}
	asset.UpdatedAt = now
	t.state.assets[assetKey{asset.BountyID, asset.Token}] = *asset
	return nil
}

func (t *memTx) GetRecord(_ context.Context, kind schema.RecordKind, dedupKey string) (*schema.LedgerRecord, error) {
	table, ok := t.state.records[kind]
	if !ok {
		return nil, fmt.Errorf("unknown record kind %q", kind)
	}
	r, ok := table[dedupKey]
	if !ok {
		return nil, nil
	}
	return &r, nil
}

func (t *memTx) ListRecords(_ context.Context, kind schema.RecordKind, bountyID string) ([]schema.LedgerRecord, error) {
	table, ok := t.state.records[kind]
	if !ok {
		return nil, fmt.Errorf("unknown record kind %q", kind)
	}
	var records []schema.LedgerRecord
	for _, r := range table {
		if r.BountyID == bountyID {
			records = append(records, r)
		}
	}
	sort.Slice(records, func(i, j int) bool { return records[i].ID < records[j].ID })
	return records, nil
}

func (t *memTx) UpsertRecord(_ context.Context, record *schema.LedgerRecord) (bool, error) {
	table, ok := t.state.records[record.Kind]
	if !ok {
		return false, fmt.Errorf("unknown record kind %q", record.Kind)
	}
	if _, ok := t.state.bounties[record.BountyID]; !ok {
		return false, fmt.Errorf("failed to insert %s record: bounty %s: %w", record.Kind, record.BountyID, domain.ErrNotFound)
	}
	if record.Raw == nil {
		record.Raw = []byte("{}")
	}

	now := t.now()
	existing, ok := table[record.DedupKey]
	if ok {
		existing.Actor = record.Actor
		existing.URL = record.URL
		existing.SourceKey = record.SourceKey
		existing.TxID = record.TxID
		existing.Raw = record.Raw
		existing.UpdatedAt = now
		table[record.DedupKey] = existing
		return false, nil
	}

	t.state.seq++
	record.ID = t.state.seq
	record.CreatedAt = now
	record.UpdatedAt = now
	table[record.DedupKey] = *record
	return true, nil
}

func (t *memTx) GetCursor(_ context.Context, source domain.SourceKey) (domain.Cursor, error) {
	return t.state.cursors[source], nil
}

func (t *memTx) SaveCursor(_ context.Context, source domain.SourceKey, cursor domain.Cursor) error {
	t.state.cursors[source] = cursor
	return nil
}

func (t *memTx) GetFundingIntent(_ context.Context, id string) (*schema.TreasuryFundingIntent, error) {
	i, ok := t.state.fundingIntents[id]
	if !ok {
		return nil, nil
	}
	return &i, nil
}

func (t *memTx) SaveFundingIntent(_ context.Context, intent *schema.TreasuryFundingIntent) error {
	now := t.now()
	if _, ok := t.state.fundingOrder[intent.ID]; !ok {
		t.state.seq++
		t.state.fundingOrder[intent.ID] = t.state.seq
	}
	if intent.CreatedAt.IsZero() {
		intent.CreatedAt = now
	}
	intent.UpdatedAt = now
	t.state.fundingIntents[intent.ID] = *intent
	return nil
}

func (t *memTx) ListFundingIntents(_ context.Context, status schema.FundingIntentStatus, limit int) ([]schema.TreasuryFundingIntent, error) {
	var intents []schema.TreasuryFundingIntent
	for _, i := range t.state.fundingIntents {
		if i.Status == status {
			intents = append(intents, i)
		}
	}
	slices.SortFunc(intents, func(a, b schema.TreasuryFundingIntent) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return int(t.state.fundingOrder[a.ID] - t.state.fundingOrder[b.ID])
	})
	if limit > 0 && len(intents) > limit {
		intents = intents[:limit]
	}
	return intents, nil
}

func (t *memTx) GetPayoutIntent(_ context.Context, id string) (*schema.TreasuryPayoutIntent, error) {
	i, ok := t.state.payoutIntents[id]
	if !ok {
		return nil, nil
	}
	return &i, nil
}

func (t *memTx) SavePayoutIntent(_ context.Context, intent *schema.TreasuryPayoutIntent) error {
	now := t.now()
	if _, ok := t.state.payoutOrder[intent.ID]; !ok {
		t.state.seq++
		t.state.payoutOrder[intent.ID] = t.state.seq
	}
	if intent.CreatedAt.IsZero() {
		intent.CreatedAt = now
	}
	intent.UpdatedAt = now
	t.state.payoutIntents[intent.ID] = *intent
	return nil
}

func (t *memTx) ListPayoutIntents(_ context.Context, status schema.PayoutIntentStatus, limit int) ([]schema.TreasuryPayoutIntent, error) {
	var intents []schema.TreasuryPayoutIntent
	for _, i := range t.state.payoutIntents {
		if i.Status == status {
			intents = append(intents, i)
		}
	}
	slices.SortFunc(intents, func(a, b schema.TreasuryPayoutIntent) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return int(t.state.payoutOrder[a.ID] - t.state.payoutOrder[b.ID])
	})
	if limit > 0 && len(intents) > limit {
		intents = intents[:limit]
	}
	return intents, nil
}

func (t *memTx) GetTreasuryLedger(_ context.Context, bountyID string) (*schema.TreasuryBountyLedger, error) {
	l, ok := t.state.ledgers[bountyID]
	if !ok {
		return nil, nil
	}
	return &l, nil
}

func (t *memTx) SaveTreasuryLedger(_ context.Context, ledger *schema.TreasuryBountyLedger) error {
	if ledger.Available.IsNegative() {
		return fmt.Errorf("failed to save treasury ledger: available balance of %s is negative", ledger.BountyID)
	}
	now := t.now()
	if ledger.CreatedAt.IsZero() {
		ledger.CreatedAt = now
	}
	ledger.UpdatedAt = now
	t.state.ledgers[ledger.BountyID] = *ledger
	return nil
}
