package projector_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/ff-bounty-ledger/internal/domain"
	"github.com/feral-file/ff-bounty-ledger/internal/logger"
	"github.com/feral-file/ff-bounty-ledger/internal/mocks"
	"github.com/feral-file/ff-bounty-ledger/internal/projector"
	"github.com/feral-file/ff-bounty-ledger/internal/source"
	"github.com/feral-file/ff-bounty-ledger/internal/store"
	"github.com/feral-file/ff-bounty-ledger/internal/store/memory"
	"github.com/feral-file/ff-bounty-ledger/internal/store/schema"
)

const (
	sourceKey = domain.SourceKey("eip155:8453:0xescrow")
	bountyID  = "0x00000000000000000000000000000000000000000000000000000000000000b1"
	token     = "0x833589fcd6edb6e08f4c7c32d4f71b54bda02913"
)

func TestMain(m *testing.M) {
	if err := logger.Initialize(logger.Config{Debug: false}); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func event(dedupKey string, eventType domain.EventType, fields map[string]string) domain.LedgerEvent {
	all := map[string]string{domain.FieldBountyID: bountyID}
	for k, v := range fields {
		all[k] = v
	}
	return domain.LedgerEvent{
		Source:   sourceKey,
		DedupKey: dedupKey,
		Type:     eventType,
		Fields:   all,
		TxID:     "0xtx",
		Cursor:   "100",
	}
}

func funded(dedupKey string, amount string) domain.LedgerEvent {
	return event(dedupKey, domain.EventTypeBountyFunded, map[string]string{
		domain.FieldToken:  token,
		domain.FieldAmount: amount,
		domain.FieldFunder: "0xfunder",
	})
}

func paid(dedupKey string, amount string) domain.LedgerEvent {
	return event(dedupKey, domain.EventTypeBountyPaid, map[string]string{
		domain.FieldToken:     token,
		domain.FieldAmount:    amount,
		domain.FieldRecipient: "0xrecipient",
	})
}

func lifecycle() []domain.LedgerEvent {
	return []domain.LedgerEvent{
		event("0xa:0", domain.EventTypeBountyCreated, map[string]string{
			domain.FieldCreator:  "0xcreator",
			domain.FieldIssueURL: "https://github.com/feral-file/ff-bounty-ledger/issues/1",
		}),
		funded("0xa:1", "100"),
		event("0xb:0", domain.EventTypeClaimSubmitted, map[string]string{
			domain.FieldClaimant: "0xrecipient",
			domain.FieldClaimURL: "https://github.com/feral-file/ff-bounty-ledger/pull/2",
		}),
		paid("0xc:0", "40"),
		event("0xd:0", domain.EventTypeBountyRefunded, map[string]string{
			domain.FieldToken:  token,
			domain.FieldAmount: "10",
			domain.FieldFunder: "0xfunder",
		}),
		event("0xe:0", domain.EventTypeBountyClosed, nil),
	}
}

func newSource(ctrl *gomock.Controller) *mocks.MockSource {
	src := mocks.NewMockSource(ctrl)
	src.EXPECT().Key().Return(sourceKey).AnyTimes()
	return src
}

func requireAsset(t *testing.T, st store.Store, funded, escrowed, paid, refunded int64) {
	t.Helper()
	asset, err := st.GetBountyAsset(context.Background(), bountyID, token)
	require.NoError(t, err)
	require.NotNil(t, asset)
	assert.True(t, asset.Funded.Equal(decimal.NewFromInt(funded)), "funded %s", asset.Funded)
	assert.True(t, asset.Escrowed.Equal(decimal.NewFromInt(escrowed)), "escrowed %s", asset.Escrowed)
	assert.True(t, asset.Paid.Equal(decimal.NewFromInt(paid)), "paid %s", asset.Paid)
	assert.True(t, asset.Refunded.Equal(decimal.NewFromInt(refunded)), "refunded %s", asset.Refunded)
}

func TestProcessBatch_Lifecycle(t *testing.T) {
	ctrl := gomock.NewController(t)
	st := memory.New()
	notifier := mocks.NewMockNotifier(ctrl)
	p := projector.New(projector.Config{}, newSource(ctrl), st, notifier, mocks.NewMockClock(ctrl))
	ctx := context.Background()

	var changes []domain.LedgerChange
	notifier.EXPECT().Notify(ctx, gomock.Any()).DoAndReturn(func(_ context.Context, change domain.LedgerChange) error {
		changes = append(changes, change)
		return nil
	}).Times(6)

	require.NoError(t, p.ProcessBatch(ctx, lifecycle()))

	requireAsset(t, st, 100, 50, 40, 10)

	bounty, err := st.GetBounty(ctx, bountyID)
	require.NoError(t, err)
	assert.Equal(t, schema.BountyStatusClosed, bounty.Status)
	assert.Equal(t, "0xcreator", bounty.Creator)

	claims, err := st.ListRecords(ctx, schema.RecordKindClaim, bountyID)
	require.NoError(t, err)
	require.Len(t, claims, 1)
	assert.Equal(t, "https://github.com/feral-file/ff-bounty-ledger/pull/2", claims[0].URL)

	require.Len(t, changes, 6)
	assert.Equal(t, domain.EventTypeBountyPaid, changes[3].Type)
	assert.Equal(t, "40", changes[3].Amount)
	assert.Equal(t, "0xrecipient", changes[3].Actor)
}

func TestProcessBatch_ReplayIsIdempotent(t *testing.T) {
	ctrl := gomock.NewController(t)
	st := memory.New()
	notifier := mocks.NewMockNotifier(ctrl)
	p := projector.New(projector.Config{}, newSource(ctrl), st, notifier, mocks.NewMockClock(ctrl))
	ctx := context.Background()

	// only the first delivery mutates anything, so only it is announced
	notifier.EXPECT().Notify(ctx, gomock.Any()).Return(nil).Times(6)

	require.NoError(t, p.ProcessBatch(ctx, lifecycle()))
	require.NoError(t, p.ProcessBatch(ctx, lifecycle()))
	require.NoError(t, p.ProcessBatch(ctx, lifecycle()[1:4]))

	requireAsset(t, st, 100, 50, 40, 10)

	payouts, err := st.ListRecords(ctx, schema.RecordKindPayout, bountyID)
	require.NoError(t, err)
	assert.Len(t, payouts, 1)
}

func TestProcessBatch_ChildBeforeParent(t *testing.T) {
	ctrl := gomock.NewController(t)
	st := memory.New()
	p := projector.New(projector.Config{}, newSource(ctrl), st, nil, mocks.NewMockClock(ctrl))
	ctx := context.Background()

	events := lifecycle()
	require.NoError(t, p.ProcessBatch(ctx, []domain.LedgerEvent{events[1], events[0]}))

	bounty, err := st.GetBounty(ctx, bountyID)
	require.NoError(t, err)
	require.NotNil(t, bounty)
	assert.Equal(t, "0xcreator", bounty.Creator)
	assert.Equal(t, string(sourceKey), bounty.SourceKey)
	requireAsset(t, st, 100, 100, 0, 0)
}

func TestProcessBatch_SkipsBadEventsAndContinues(t *testing.T) {
	ctrl := gomock.NewController(t)
	st := memory.New()
	p := projector.New(projector.Config{}, newSource(ctrl), st, nil, mocks.NewMockClock(ctrl))
	ctx := context.Background()

	noBounty := funded("0xf:1", "5")
	delete(noBounty.Fields, domain.FieldBountyID)

	err := p.ProcessBatch(ctx, []domain.LedgerEvent{
		event("0xf:0", "bounty_exploded", nil),
		noBounty,
		funded("0xf:2", "1.5"),
		funded("0xf:3", "-1"),
		funded("0xf:4", "0x64"),
	})
	require.NoError(t, err)

	requireAsset(t, st, 100, 100, 0, 0)
	fundings, err := st.ListRecords(ctx, schema.RecordKindFunding, bountyID)
	require.NoError(t, err)
	require.Len(t, fundings, 1)
	assert.Equal(t, "0xf:4", fundings[0].DedupKey)
}

func TestProcessBatch_OverdrawnPayoutIsRejected(t *testing.T) {
	ctrl := gomock.NewController(t)
	st := memory.New()
	p := projector.New(projector.Config{}, newSource(ctrl), st, nil, mocks.NewMockClock(ctrl))
	ctx := context.Background()

	require.NoError(t, p.ProcessBatch(ctx, []domain.LedgerEvent{
		funded("0xa:1", "100"),
		paid("0xc:0", "200"),
		paid("0xc:1", "30"),
	}))

	requireAsset(t, st, 100, 70, 30, 0)
	payouts, err := st.ListRecords(ctx, schema.RecordKindPayout, bountyID)
	require.NoError(t, err)
	require.Len(t, payouts, 1)
	assert.Equal(t, "0xc:1", payouts[0].DedupKey)
}

func TestProcessBatch_NotifierFailureIsSwallowed(t *testing.T) {
	ctrl := gomock.NewController(t)
	st := memory.New()
	notifier := mocks.NewMockNotifier(ctrl)
	p := projector.New(projector.Config{}, newSource(ctrl), st, notifier, mocks.NewMockClock(ctrl))
	ctx := context.Background()

	notifier.EXPECT().Notify(ctx, gomock.Any()).Return(errors.New("nats: timeout")).Times(2)

	require.NoError(t, p.ProcessBatch(ctx, []domain.LedgerEvent{funded("0xa:1", "100"), paid("0xc:0", "40")}))
	requireAsset(t, st, 100, 60, 40, 0)
}

// orderedSource compares decimal block-height cursors
type orderedSource struct {
	*mocks.MockSource
}

func (orderedSource) CompareCursors(a, b domain.Cursor) (int, error) {
	x, err := strconv.ParseUint(string(a), 10, 64)
	if err != nil {
		return 0, err
	}
	y, err := strconv.ParseUint(string(b), 10, 64)
	if err != nil {
		return 0, err
	}
	switch {
	case x < y:
		return -1, nil
	case x > y:
		return 1, nil
	default:
		return 0, nil
	}
}

var _ source.CursorComparer = orderedSource{}

func TestProcessPage_CursorNeverMovesBackwards(t *testing.T) {
	ctrl := gomock.NewController(t)
	st := memory.New()
	p := projector.New(projector.Config{}, orderedSource{newSource(ctrl)}, st, nil, mocks.NewMockClock(ctrl))
	ctx := context.Background()

	page := source.Page{Events: []domain.LedgerEvent{funded("0xa:1", "100")}, Next: "100", HasMore: true}
	require.NoError(t, p.ProcessPage(ctx, page, "backfill"))
	requireCursor(t, st, "100")

	// duplicate page
	require.NoError(t, p.ProcessPage(ctx, page, "backfill"))
	requireCursor(t, st, "100")
	requireAsset(t, st, 100, 100, 0, 0)

	require.NoError(t, p.ProcessPage(ctx, source.Page{Next: "90"}, "tail"))
	requireCursor(t, st, "100")

	// empty pages still move the cursor forward
	require.NoError(t, p.ProcessPage(ctx, source.Page{Next: "120"}, "tail"))
	requireCursor(t, st, "120")
}

// flakyStore fails the first failures transactions
type flakyStore struct {
	store.Store
	failures int
}

func (f *flakyStore) Transaction(ctx context.Context, fn func(tx store.Tx) error) error {
	if f.failures > 0 {
		f.failures--
		return errors.New("connection refused")
	}
	return f.Store.Transaction(ctx, fn)
}

func TestProcessPage_StoreFailureHoldsCursor(t *testing.T) {
	ctrl := gomock.NewController(t)
	st := &flakyStore{Store: memory.New(), failures: 1}
	p := projector.New(projector.Config{}, newSource(ctrl), st, nil, mocks.NewMockClock(ctrl))
	ctx := context.Background()

	page := source.Page{Events: []domain.LedgerEvent{funded("0xa:1", "100")}, Next: "100"}

	require.Error(t, p.ProcessPage(ctx, page, "backfill"))
	cursor, err := st.GetCursor(ctx, sourceKey)
	require.NoError(t, err)
	assert.Empty(t, cursor)

	require.NoError(t, p.ProcessPage(ctx, page, "backfill"))
	cursor, err = st.GetCursor(ctx, sourceKey)
	require.NoError(t, err)
	assert.Equal(t, domain.Cursor("100"), cursor)
	requireAsset(t, st, 100, 100, 0, 0)
}

func requireCursor(t *testing.T, st store.Store, expected domain.Cursor) {
	t.Helper()
	cursor, err := st.GetCursor(context.Background(), sourceKey)
	require.NoError(t, err)
	assert.Equal(t, expected, cursor)
}

func TestProcessPage_MalformedTextIsSkipped(t *testing.T) {
	ctrl := gomock.NewController(t)
	st := memory.New()
	p := projector.New(projector.Config{}, newSource(ctrl), st, nil, mocks.NewMockClock(ctrl))
	ctx := context.Background()

	badClaim := event("0xb:0", domain.EventTypeClaimSubmitted, map[string]string{
		domain.FieldClaimant: "0xrecipient",
		domain.FieldClaimURL: "https://github.com/feral-file/ff-bounty-ledger/pull/\xff",
	})
	badTx := funded("0xa:2", "7")
	badTx.TxID = "0x\x00"

	page := source.Page{
		Events: []domain.LedgerEvent{
			event("0xa:0", domain.EventTypeBountyCreated, map[string]string{
				domain.FieldCreator:  "0xcreator",
				domain.FieldIssueURL: "https://x/\x00",
			}),
			funded("0xa:1", "100"),
			badClaim,
			badTx,
		},
		Next: "100",
	}

	require.NoError(t, p.ProcessPage(ctx, page, "backfill"))
	requireCursor(t, st, "100")
	requireAsset(t, st, 100, 100, 0, 0)

	bounty, err := st.GetBounty(ctx, bountyID)
	require.NoError(t, err)
	require.NotNil(t, bounty)
	assert.Empty(t, bounty.IssueURL)
	assert.Empty(t, bounty.Creator)

	claims, err := st.ListRecords(ctx, schema.RecordKindClaim, bountyID)
	require.NoError(t, err)
	assert.Empty(t, claims)
}

// rejectingStore refuses records of one actor the way postgres refuses out of range values
type rejectingStore struct {
	store.Store
	actor string
}

func (r *rejectingStore) Transaction(ctx context.Context, fn func(tx store.Tx) error) error {
	return r.Store.Transaction(ctx, func(tx store.Tx) error {
		return fn(&rejectingTx{Tx: tx, actor: r.actor})
	})
}

type rejectingTx struct {
	store.Tx
	actor string
}

func (r *rejectingTx) UpsertRecord(ctx context.Context, record *schema.LedgerRecord) (bool, error) {
	if record.Actor == r.actor {
		return false, fmt.Errorf("failed to upsert record: %w", &pgconn.PgError{Code: "22003", Message: "numeric field overflow"})
	}
	return r.Tx.UpsertRecord(ctx, record)
}

func TestProcessPage_RejectedValuesAreSkipped(t *testing.T) {
	ctrl := gomock.NewController(t)
	st := &rejectingStore{Store: memory.New(), actor: "0xwhale"}
	p := projector.New(projector.Config{}, newSource(ctrl), st, nil, mocks.NewMockClock(ctrl))
	ctx := context.Background()

	whale := funded("0xa:2", "5")
	whale.Fields[domain.FieldFunder] = "0xwhale"

	page := source.Page{Events: []domain.LedgerEvent{whale, funded("0xa:1", "100")}, Next: "100"}

	require.NoError(t, p.ProcessPage(ctx, page, "backfill"))
	requireCursor(t, st, "100")
	requireAsset(t, st, 100, 100, 0, 0)

	// replaying the page lands on the same outcome
	require.NoError(t, p.ProcessPage(ctx, page, "backfill"))
	requireAsset(t, st, 100, 100, 0, 0)
}

func firedAfter(time.Duration) <-chan time.Time {
	ch := make(chan time.Time, 1)
	ch <- time.Time{}
	return ch
}

func TestRun_PullSourceBackfillsThenPolls(t *testing.T) {
	ctrl := gomock.NewController(t)
	st := memory.New()
	src := newSource(ctrl)
	clock := mocks.NewMockClock(ctrl)
	p := projector.New(projector.Config{PageSize: 50, SafetyWindow: 10, PollInterval: time.Second}, src, st, nil, clock)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	clock.EXPECT().After(time.Second).DoAndReturn(firedAfter).AnyTimes()
	src.EXPECT().StartCursor(gomock.Any(), domain.Cursor(""), uint64(10)).Return(domain.Cursor("10"), nil)

	gomock.InOrder(
		src.EXPECT().QueryEvents(gomock.Any(), domain.Cursor("10"), 50).
			Return(source.Page{Events: []domain.LedgerEvent{funded("0xa:1", "100")}, Next: "20", HasMore: true}, nil),
		src.EXPECT().QueryEvents(gomock.Any(), domain.Cursor("20"), 50).
			Return(source.Page{Next: "30", HasMore: false}, nil),
		src.EXPECT().QueryEvents(gomock.Any(), domain.Cursor("30"), 50).
			Return(source.Page{}, errors.New("rpc unavailable")),
		src.EXPECT().QueryEvents(gomock.Any(), domain.Cursor("30"), 50).
			DoAndReturn(func(context.Context, domain.Cursor, int) (source.Page, error) {
				cancel()
				return source.Page{Next: "30"}, nil
			}),
	)

	err := p.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)

	cursor, err := st.GetCursor(context.Background(), sourceKey)
	require.NoError(t, err)
	assert.Equal(t, domain.Cursor("30"), cursor)
	requireAsset(t, st, 100, 100, 0, 0)
}

func TestRun_PushSourceBackfillsThenSubscribes(t *testing.T) {
	ctrl := gomock.NewController(t)
	st := memory.New()
	src := mocks.NewMockPushSource(ctrl)
	src.EXPECT().Key().Return(sourceKey).AnyTimes()
	notifier := mocks.NewMockNotifier(ctrl)
	p := projector.New(projector.Config{PageSize: 50}, src, st, notifier, mocks.NewMockClock(ctrl))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, st.SaveCursor(ctx, sourceKey, "c0"))

	notifier.EXPECT().Notify(gomock.Any(), gomock.Any()).Return(nil).Times(2)
	src.EXPECT().StartCursor(gomock.Any(), domain.Cursor("c0"), gomock.Any()).Return(domain.Cursor("c0"), nil)
	src.EXPECT().QueryEvents(gomock.Any(), domain.Cursor("c0"), 50).
		Return(source.Page{Events: []domain.LedgerEvent{funded("0xa:1", "100")}, Next: "c1"}, nil)
	src.EXPECT().Subscribe(gomock.Any(), domain.Cursor("c1"), gomock.Any()).
		DoAndReturn(func(ctx context.Context, _ domain.Cursor, onEvents func(context.Context, source.Page) error) error {
			require.NoError(t, onEvents(ctx, source.Page{Events: []domain.LedgerEvent{paid("0xc:0", "40")}, Next: "c2"}))
			cancel()
			return ctx.Err()
		})

	err := p.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)

	cursor, err := st.GetCursor(context.Background(), sourceKey)
	require.NoError(t, err)
	assert.Equal(t, domain.Cursor("c2"), cursor)
	requireAsset(t, st, 100, 60, 40, 0)
}

func TestRun_StartCursorErrorIsRetried(t *testing.T) {
	ctrl := gomock.NewController(t)
	st := memory.New()
	src := newSource(ctrl)
	clock := mocks.NewMockClock(ctrl)
	p := projector.New(projector.Config{PageSize: 50, PollInterval: time.Second}, src, st, nil, clock)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	clock.EXPECT().After(time.Second).DoAndReturn(firedAfter).AnyTimes()
	gomock.InOrder(
		src.EXPECT().StartCursor(gomock.Any(), domain.Cursor(""), gomock.Any()).Return(domain.Cursor(""), errors.New("head unavailable")),
		src.EXPECT().StartCursor(gomock.Any(), domain.Cursor(""), gomock.Any()).Return(domain.Cursor(""), errors.New("head unavailable")),
		src.EXPECT().StartCursor(gomock.Any(), domain.Cursor(""), gomock.Any()).Return(domain.Cursor("10"), nil),
		src.EXPECT().QueryEvents(gomock.Any(), domain.Cursor("10"), 50).
			Return(source.Page{Events: []domain.LedgerEvent{funded("0xa:1", "100")}, Next: "20"}, nil),
		src.EXPECT().QueryEvents(gomock.Any(), domain.Cursor("20"), 50).
			DoAndReturn(func(context.Context, domain.Cursor, int) (source.Page, error) {
				cancel()
				return source.Page{}, context.Canceled
			}),
	)

	err := p.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	requireCursor(t, st, "20")
	requireAsset(t, st, 100, 100, 0, 0)
}

func TestRun_StartCursorRetryStopsOnCancel(t *testing.T) {
	ctrl := gomock.NewController(t)
	src := newSource(ctrl)
	clock := mocks.NewMockClock(ctrl)
	p := projector.New(projector.Config{PollInterval: time.Second}, src, memory.New(), nil, clock)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	clock.EXPECT().After(time.Second).Return(make(chan time.Time)).AnyTimes()
	src.EXPECT().StartCursor(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, domain.Cursor, uint64) (domain.Cursor, error) {
			cancel()
			return "", errors.New("head unavailable")
		})

	assert.ErrorIs(t, p.Run(ctx), context.Canceled)
}
