package authorization_test

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"math/big"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/ff-bounty-ledger/internal/authorization"
	"github.com/feral-file/ff-bounty-ledger/internal/domain"
	"github.com/feral-file/ff-bounty-ledger/internal/logger"
	"github.com/feral-file/ff-bounty-ledger/internal/mocks"
	"github.com/feral-file/ff-bounty-ledger/internal/store/memory"
	"github.com/feral-file/ff-bounty-ledger/internal/store/schema"
	"github.com/feral-file/ff-bounty-ledger/internal/typeddata"
)

const (
	bountyID  = "0x00000000000000000000000000000000000000000000000000000000000000b1"
	token     = "0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913"
	recipient = "0x5B38Da6a701c568545dCfcB03FcB875f56beddC4"
	ttl       = 15 * time.Minute
)

func TestMain(m *testing.M) {
	if err := logger.Initialize(logger.Config{Debug: false}); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

type fixture struct {
	authorizer *authorization.Authorizer
	pending    *authorization.MemoryStore
	verifier   *mocks.MockIdentityVerifier
	store      *memory.Store
	key        *ecdsa.PrivateKey
	domain     typeddata.Domain
	now        time.Time
}

func setup(t *testing.T) *fixture {
	ctrl := gomock.NewController(t)
	key, err := crypto.GenerateKey()
	require.NoError(t, err)

	f := &fixture{
		verifier: mocks.NewMockIdentityVerifier(ctrl),
		store:    memory.New(),
		key:      key,
		domain: typeddata.Domain{
			Name:              "BountyEscrow",
			Version:           "1",
			ChainID:           8453,
			VerifyingContract: common.HexToAddress("0x0000000000000000000000000000000000e5c40e"),
		},
		now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}

	clock := mocks.NewMockClock(ctrl)
	clock.EXPECT().Now().DoAndReturn(func() time.Time { return f.now }).AnyTimes()

	f.pending = authorization.NewMemoryStore(clock)
	f.authorizer = authorization.New(authorization.Config{TTL: ttl, Domain: f.domain, SignerKey: key}, f.store, f.pending, f.verifier, clock)

	require.NoError(t, f.store.SaveBountyAsset(context.Background(), &schema.BountyAsset{
		BountyID: bountyID,
		Token:    strings.ToLower(token),
		Funded:   decimal.NewFromInt(100),
		Escrowed: decimal.NewFromInt(100),
	}))
	return f
}

func request(amount int64) authorization.Request {
	return authorization.Request{
		BountyID:  bountyID,
		Token:     token,
		Recipient: recipient,
		Amount:    decimal.NewFromInt(amount),
		Identity:  "octocat",
	}
}

func TestAuthorize(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	f.verifier.EXPECT().IsVerified(ctx, "octocat", common.HexToAddress(recipient).Hex()).Return(true, nil)

	p, err := f.authorizer.Authorize(ctx, request(60))
	require.NoError(t, err)
	assert.Equal(t, bountyID, p.BountyID)
	assert.Equal(t, strings.ToLower(token), p.Token)
	assert.Equal(t, strings.ToLower(recipient), p.Recipient)
	assert.Equal(t, "60", p.Amount)
	assert.Equal(t, f.now.Add(ttl).Unix(), p.Deadline)

	nonce, ok := new(big.Int).SetString(p.Nonce, 10)
	require.True(t, ok)
	auth := &typeddata.PayoutAuthorization{
		Domain:    f.domain,
		BountyID:  common.HexToHash(bountyID),
		Token:     common.HexToAddress(token),
		Recipient: common.HexToAddress(recipient),
		Amount:    big.NewInt(60),
		Nonce:     nonce,
		Deadline:  big.NewInt(p.Deadline),
	}
	assert.NoError(t, typeddata.Verify(auth, hexutil.MustDecode(p.Signature), crypto.PubkeyToAddress(f.key.PublicKey)))

	stored, err := f.authorizer.Get(ctx, p.Nonce)
	require.NoError(t, err)
	assert.Equal(t, p, stored)
}

func TestAuthorize_Rejections(t *testing.T) {
	tests := []struct {
		name     string
		req      func() authorization.Request
		verified bool
		calls    int
		err      error
	}{
		{name: "unverified identity", req: func() authorization.Request { return request(10) }, verified: false, calls: 1, err: domain.ErrIdentityNotVerified},
		{name: "more than escrowed", req: func() authorization.Request { return request(101) }, verified: true, calls: 1, err: domain.ErrInsufficientEscrow},
		{name: "unknown token", req: func() authorization.Request {
			r := request(1)
			r.Token = "0x036CbD53842c5426634e7929541eC2318f3dCF7e"
			return r
		}, verified: true, calls: 1, err: domain.ErrInsufficientEscrow},
		{name: "bad recipient", req: func() authorization.Request {
			r := request(1)
			r.Recipient = "octocat"
			return r
		}},
		{name: "bad bounty id", req: func() authorization.Request {
			r := request(1)
			r.BountyID = "0xb1"
			return r
		}},
		{name: "fractional amount", req: func() authorization.Request {
			r := request(1)
			r.Amount = decimal.RequireFromString("0.5")
			return r
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setup(t)
			ctx := context.Background()

			f.verifier.EXPECT().IsVerified(ctx, gomock.Any(), gomock.Any()).Return(tt.verified, nil).Times(tt.calls)

			_, err := f.authorizer.Authorize(ctx, tt.req())
			require.Error(t, err)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
			}

			taken, err := f.pending.Take(ctx, bountyID, strings.ToLower(recipient))
			require.NoError(t, err)
			assert.Nil(t, taken)
		})
	}
}

func TestAuthorize_VerifierError(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	f.verifier.EXPECT().IsVerified(ctx, gomock.Any(), gomock.Any()).Return(false, errors.New("identity service down"))

	_, err := f.authorizer.Authorize(ctx, request(10))
	assert.Error(t, err)
}

func TestAuthorize_ReplacesPreviousAuthorization(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	f.verifier.EXPECT().IsVerified(ctx, gomock.Any(), gomock.Any()).Return(true, nil).Times(2)

	first, err := f.authorizer.Authorize(ctx, request(10))
	require.NoError(t, err)
	second, err := f.authorizer.Authorize(ctx, request(20))
	require.NoError(t, err)
	assert.NotEqual(t, first.Nonce, second.Nonce)

	_, err = f.authorizer.Get(ctx, first.Nonce)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = f.authorizer.Get(ctx, second.Nonce)
	assert.NoError(t, err)
}

func TestAuthorize_Expires(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	f.verifier.EXPECT().IsVerified(ctx, gomock.Any(), gomock.Any()).Return(true, nil)

	p, err := f.authorizer.Authorize(ctx, request(10))
	require.NoError(t, err)

	f.now = f.now.Add(ttl - time.Second)
	_, err = f.authorizer.Get(ctx, p.Nonce)
	require.NoError(t, err)

	f.now = f.now.Add(time.Second)
	_, err = f.authorizer.Get(ctx, p.Nonce)
	assert.ErrorIs(t, err, domain.ErrAuthorizationExpired)

	_, err = f.authorizer.Get(ctx, p.Nonce)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestNotify_ClearsPendingOnPayout(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	f.verifier.EXPECT().IsVerified(ctx, gomock.Any(), gomock.Any()).Return(true, nil)

	p, err := f.authorizer.Authorize(ctx, request(10))
	require.NoError(t, err)

	// other event types and other recipients leave it alone
	require.NoError(t, f.authorizer.Notify(ctx, domain.LedgerChange{Type: domain.EventTypeBountyFunded, BountyID: bountyID, Actor: recipient}))
	require.NoError(t, f.authorizer.Notify(ctx, domain.LedgerChange{Type: domain.EventTypeBountyPaid, BountyID: bountyID, Actor: "0xsomeoneelse"}))
	_, err = f.authorizer.Get(ctx, p.Nonce)
	require.NoError(t, err)

	require.NoError(t, f.authorizer.Notify(ctx, domain.LedgerChange{
		Type:     domain.EventTypeBountyPaid,
		BountyID: bountyID,
		Actor:    recipient,
		Amount:   "10",
	}))
	_, err = f.authorizer.Get(ctx, p.Nonce)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, "authorization", f.authorizer.Name())
}

func TestMemoryStore_Sweep(t *testing.T) {
	ctrl := gomock.NewController(t)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := mocks.NewMockClock(ctrl)
	clock.EXPECT().Now().DoAndReturn(func() time.Time { return now }).AnyTimes()

	s := authorization.NewMemoryStore(clock)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, &authorization.Pending{Nonce: "1", BountyID: "b1", Recipient: "r1"}, time.Minute))
	require.NoError(t, s.Put(ctx, &authorization.Pending{Nonce: "2", BountyID: "b2", Recipient: "r2"}, time.Hour))
	assert.Error(t, s.Put(ctx, &authorization.Pending{BountyID: "b3"}, time.Hour))

	dropped, err := s.Sweep(ctx)
	require.NoError(t, err)
	assert.Zero(t, dropped)

	now = now.Add(2 * time.Minute)
	dropped, err = s.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, dropped)

	taken, err := s.Take(ctx, "b1", "r1")
	require.NoError(t, err)
	assert.Nil(t, taken)

	taken, err = s.Take(ctx, "b2", "r2")
	require.NoError(t, err)
	require.NotNil(t, taken)
	assert.Equal(t, "2", taken.Nonce)

	_, err = s.Get(ctx, "2")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMemoryStore_TakeExpired(t *testing.T) {
	ctrl := gomock.NewController(t)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := mocks.NewMockClock(ctrl)
	clock.EXPECT().Now().DoAndReturn(func() time.Time { return now }).AnyTimes()

	s := authorization.NewMemoryStore(clock)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, &authorization.Pending{Nonce: "1", BountyID: "b1", Recipient: "r1"}, time.Minute))
	now = now.Add(time.Minute)

	taken, err := s.Take(ctx, "b1", "r1")
	require.NoError(t, err)
	assert.Nil(t, taken)

	dropped, err := s.Sweep(ctx)
	require.NoError(t, err)
	assert.Zero(t, dropped)
}
