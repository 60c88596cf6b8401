package treasury_test

import (
	"context"
	"crypto/ecdsa"
	"os"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/ff-bounty-ledger/internal/domain"
	"github.com/feral-file/ff-bounty-ledger/internal/logger"
	"github.com/feral-file/ff-bounty-ledger/internal/mocks"
	"github.com/feral-file/ff-bounty-ledger/internal/store/memory"
	"github.com/feral-file/ff-bounty-ledger/internal/store/schema"
	"github.com/feral-file/ff-bounty-ledger/internal/treasury"
	"github.com/feral-file/ff-bounty-ledger/internal/typeddata"
)

const bountyID = "0xb01"

func TestMain(m *testing.M) {
	if err := logger.Initialize(logger.Config{Debug: false}); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func newKey(t *testing.T) (*ecdsa.PrivateKey, common.Address) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	return key, crypto.PubkeyToAddress(key.PublicKey)
}

func transferSpec(signer common.Address, value string) typeddata.TransferSpec {
	usdc := common.HexToAddress("0x036CbD53842c5426634e7929541eC2318f3dCF7e")
	return typeddata.TransferSpec{
		Version:              1,
		SourceDomain:         0,
		DestinationDomain:    6,
		SourceContract:       typeddata.AddressToBytes32(common.HexToAddress("0x0077777d7EBA4688BDeF3E311b846F25870A19B9")).Hex(),
		DestinationContract:  typeddata.AddressToBytes32(common.HexToAddress("0x0022222ABE238Cc2C7Bb1f21003F0a260052475B")).Hex(),
		SourceToken:          typeddata.AddressToBytes32(usdc).Hex(),
		DestinationToken:     typeddata.AddressToBytes32(usdc).Hex(),
		SourceDepositor:      typeddata.AddressToBytes32(signer).Hex(),
		DestinationRecipient: typeddata.AddressToBytes32(signer).Hex(),
		SourceSigner:         typeddata.AddressToBytes32(signer).Hex(),
		DestinationCaller:    common.Hash{}.Hex(),
		Value:                value,
		Salt:                 common.HexToHash("0x5a17").Hex(),
		HookData:             "0x",
	}
}

func estimated(spec typeddata.TransferSpec) *typeddata.BurnIntent {
	return &typeddata.BurnIntent{MaxBlockHeight: "99999999", MaxFee: "2010000", Spec: spec}
}

// prepared creates a funding intent of 50 for sender and prepares its transfer
func prepared(t *testing.T, service *treasury.Service, burns *mocks.MockBurnService, sender common.Address) (*schema.TreasuryFundingIntent, *typeddata.BurnIntent) {
	ctx := context.Background()

	intent, err := service.CreateFundingIntent(ctx, bountyID, sender.Hex(), domain.ChainEthereumSepolia, decimal.NewFromInt(50))
	require.NoError(t, err)

	spec := transferSpec(sender, "50")
	burns.EXPECT().EstimateBurn(ctx, spec).Return(estimated(spec), nil)

	burnIntent, err := service.PrepareFundingTransfer(ctx, intent.ID, spec)
	require.NoError(t, err)
	return intent, burnIntent
}

func TestService_CreateFundingIntent(t *testing.T) {
	ctrl := gomock.NewController(t)
	st := memory.New()
	service := treasury.NewService(st, mocks.NewMockBurnService(ctrl))
	ctx := context.Background()
	_, sender := newKey(t)

	intent, err := service.CreateFundingIntent(ctx, bountyID, sender.Hex(), domain.ChainEthereumSepolia, decimal.NewFromInt(50))
	require.NoError(t, err)
	assert.NotEmpty(t, intent.ID)
	assert.Equal(t, schema.FundingIntentStatusCreated, intent.Status)
	assert.Equal(t, strings.ToLower(sender.Hex()), intent.Sender)

	stored, err := st.GetFundingIntent(ctx, intent.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.True(t, stored.Amount.Equal(decimal.NewFromInt(50)))
}

func TestService_CreateFundingIntent_Validation(t *testing.T) {
	ctrl := gomock.NewController(t)
	service := treasury.NewService(memory.New(), mocks.NewMockBurnService(ctrl))
	ctx := context.Background()
	_, sender := newKey(t)

	tests := []struct {
		name   string
		bounty string
		sender string
		chain  domain.Chain
		amount decimal.Decimal
	}{
		{name: "missing bounty", sender: sender.Hex(), chain: domain.ChainEthereumSepolia, amount: decimal.NewFromInt(1)},
		{name: "bad sender", bounty: bountyID, sender: "alice", chain: domain.ChainEthereumSepolia, amount: decimal.NewFromInt(1)},
		{name: "bad chain", bounty: bountyID, sender: sender.Hex(), chain: "solana", amount: decimal.NewFromInt(1)},
		{name: "zero amount", bounty: bountyID, sender: sender.Hex(), chain: domain.ChainEthereumSepolia, amount: decimal.Zero},
		{name: "fractional amount", bounty: bountyID, sender: sender.Hex(), chain: domain.ChainEthereumSepolia, amount: decimal.RequireFromString("1.5")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.CreateFundingIntent(ctx, tt.bounty, tt.sender, tt.chain, tt.amount)
			assert.Error(t, err)
		})
	}
}

func TestService_PrepareFundingTransfer(t *testing.T) {
	ctrl := gomock.NewController(t)
	st := memory.New()
	burns := mocks.NewMockBurnService(ctrl)
	service := treasury.NewService(st, burns)
	_, sender := newKey(t)

	intent, burnIntent := prepared(t, service, burns, sender)

	stored, err := st.GetFundingIntent(context.Background(), intent.ID)
	require.NoError(t, err)
	canonical, err := burnIntent.Canonical()
	require.NoError(t, err)
	assert.JSONEq(t, string(canonical), string(stored.BurnIntent))
	assert.Equal(t, schema.FundingIntentStatusCreated, stored.Status)
}

func TestService_PrepareFundingTransfer_RejectsMismatchedSpec(t *testing.T) {
	ctrl := gomock.NewController(t)
	burns := mocks.NewMockBurnService(ctrl)
	service := treasury.NewService(memory.New(), burns)
	ctx := context.Background()
	_, sender := newKey(t)
	_, other := newKey(t)

	intent, err := service.CreateFundingIntent(ctx, bountyID, sender.Hex(), domain.ChainEthereumSepolia, decimal.NewFromInt(50))
	require.NoError(t, err)

	_, err = service.PrepareFundingTransfer(ctx, intent.ID, transferSpec(other, "50"))
	assert.ErrorIs(t, err, domain.ErrSignerMismatch)

	_, err = service.PrepareFundingTransfer(ctx, intent.ID, transferSpec(sender, "49"))
	assert.Error(t, err)

	_, err = service.PrepareFundingTransfer(ctx, "missing", transferSpec(sender, "50"))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestService_SubmitFundingTransfer(t *testing.T) {
	ctrl := gomock.NewController(t)
	st := memory.New()
	burns := mocks.NewMockBurnService(ctrl)
	service := treasury.NewService(st, burns)
	ctx := context.Background()
	key, sender := newKey(t)

	intent, burnIntent := prepared(t, service, burns, sender)

	sig, err := typeddata.Sign(burnIntent, key)
	require.NoError(t, err)
	signature := hexutil.Encode(sig)

	burns.EXPECT().SubmitBurn(ctx, burnIntent, signature).Return(&typeddata.Attestation{
		Attestation: "0xa77e57",
		Signature:   "0x5160",
		TransferID:  "t-1",
	}, nil)

	updated, err := service.SubmitFundingTransfer(ctx, intent.ID, signature)
	require.NoError(t, err)
	assert.Equal(t, schema.FundingIntentStatusTransferSubmitted, updated.Status)
	assert.Equal(t, signature, updated.Signature)
	assert.Equal(t, "0xa77e57", updated.Attestation)
	assert.Equal(t, "0x5160", updated.AttestationSignature)

	// a second submission is a transition from the wrong status
	_, err = service.SubmitFundingTransfer(ctx, intent.ID, signature)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestService_SubmitFundingTransfer_SignerMismatchWritesNothing(t *testing.T) {
	ctrl := gomock.NewController(t)
	st := memory.New()
	burns := mocks.NewMockBurnService(ctrl)
	service := treasury.NewService(st, burns)
	ctx := context.Background()
	_, sender := newKey(t)
	otherKey, _ := newKey(t)

	intent, burnIntent := prepared(t, service, burns, sender)
	before, err := st.GetFundingIntent(ctx, intent.ID)
	require.NoError(t, err)

	// signed by K, verified against a different sender; SubmitBurn must never be called
	sig, err := typeddata.Sign(burnIntent, otherKey)
	require.NoError(t, err)

	_, err = service.SubmitFundingTransfer(ctx, intent.ID, hexutil.Encode(sig))
	require.ErrorIs(t, err, domain.ErrSignerMismatch)
	assert.False(t, domain.IsTransient(err))

	after, err := st.GetFundingIntent(ctx, intent.ID)
	require.NoError(t, err)
	assert.Equal(t, before, after)

	ledger, err := st.GetTreasuryLedger(ctx, bountyID)
	require.NoError(t, err)
	assert.Nil(t, ledger)
}

func TestService_SubmitFundingTransfer_Invalid(t *testing.T) {
	ctrl := gomock.NewController(t)
	st := memory.New()
	burns := mocks.NewMockBurnService(ctrl)
	service := treasury.NewService(st, burns)
	ctx := context.Background()
	_, sender := newKey(t)

	unprepared, err := service.CreateFundingIntent(ctx, bountyID, sender.Hex(), domain.ChainEthereumSepolia, decimal.NewFromInt(50))
	require.NoError(t, err)
	_, err = service.SubmitFundingTransfer(ctx, unprepared.ID, "0x00")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	intent, _ := prepared(t, service, burns, sender)
	_, err = service.SubmitFundingTransfer(ctx, intent.ID, "zz")
	assert.ErrorIs(t, err, domain.ErrInvalidSignature)

	_, err = service.SubmitFundingTransfer(ctx, intent.ID, hexutil.Encode(make([]byte, 64)))
	assert.ErrorIs(t, err, domain.ErrInvalidSignature)
}

func TestService_RequestPayout(t *testing.T) {
	ctrl := gomock.NewController(t)
	st := memory.New()
	service := treasury.NewService(st, mocks.NewMockBurnService(ctrl))
	ctx := context.Background()

	require.NoError(t, st.SaveTreasuryLedger(ctx, &schema.TreasuryBountyLedger{
		BountyID:    bountyID,
		TotalFunded: decimal.NewFromInt(100),
		Available:   decimal.NewFromInt(100),
	}))

	intent, err := service.RequestPayout(ctx, bountyID, "0xbeef", domain.ChainSuiTestnet, decimal.NewFromInt(40))
	require.NoError(t, err)
	assert.Equal(t, schema.PayoutIntentStatusCreated, intent.Status)

	ledger, err := st.GetTreasuryLedger(ctx, bountyID)
	require.NoError(t, err)
	assert.True(t, ledger.Available.Equal(decimal.NewFromInt(60)), ledger.Available.String())

	// 61 is no longer covered
	_, err = service.RequestPayout(ctx, bountyID, "0xbeef", domain.ChainSuiTestnet, decimal.NewFromInt(61))
	assert.ErrorIs(t, err, domain.ErrInsufficientBalance)

	intents, err := st.ListPayoutIntents(ctx, schema.PayoutIntentStatusCreated, 0)
	require.NoError(t, err)
	assert.Len(t, intents, 1)

	ledger, err = st.GetTreasuryLedger(ctx, bountyID)
	require.NoError(t, err)
	assert.True(t, ledger.Available.Equal(decimal.NewFromInt(60)))
}

func TestService_RequestPayout_UnfundedBounty(t *testing.T) {
	ctrl := gomock.NewController(t)
	st := memory.New()
	service := treasury.NewService(st, mocks.NewMockBurnService(ctrl))
	ctx := context.Background()

	_, err := service.RequestPayout(ctx, "0xnothing", "0xbeef", domain.ChainBaseMainnet, decimal.NewFromInt(1))
	assert.ErrorIs(t, err, domain.ErrInsufficientBalance)

	_, err = service.RequestPayout(ctx, bountyID, "0xbeef", "nowhere", decimal.NewFromInt(1))
	assert.Error(t, err)
}
