package authorization_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/ff-bounty-ledger/internal/adapter"
	"github.com/feral-file/ff-bounty-ledger/internal/authorization"
	"github.com/feral-file/ff-bounty-ledger/internal/domain"
	"github.com/feral-file/ff-bounty-ledger/internal/mocks"
)

const IDENTITY_API_URL = "https://identity.example.com/"

func TestHTTPIdentityVerifier_IsVerified(t *testing.T) {
	ctrl := gomock.NewController(t)
	httpClient := mocks.NewMockHTTPClient(ctrl)
	verifier := authorization.NewHTTPIdentityVerifier(httpClient, IDENTITY_API_URL, "id-key")
	ctx := context.Background()

	httpClient.EXPECT().
		GetJSON(ctx,
			"https://identity.example.com/v1/identities/octo%2Fcat/wallets/0x5b38da6a701c568545dcfcb03fcb875f56beddc4",
			map[string]string{"Accept": "application/json", "Authorization": "Bearer id-key"},
			gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, _ map[string]string, result interface{}) error {
			return adapter.NewJSON().Unmarshal([]byte(`{"verified":true}`), result)
		})

	verified, err := verifier.IsVerified(ctx, "octo/cat", recipient)
	require.NoError(t, err)
	assert.True(t, verified)
}

func TestHTTPIdentityVerifier_UnknownIsNotVerified(t *testing.T) {
	ctrl := gomock.NewController(t)
	httpClient := mocks.NewMockHTTPClient(ctrl)
	verifier := authorization.NewHTTPIdentityVerifier(httpClient, IDENTITY_API_URL, "")
	ctx := context.Background()

	httpClient.EXPECT().GetJSON(ctx, gomock.Any(), map[string]string{"Accept": "application/json"}, gomock.Any()).
		Return(&adapter.StatusError{StatusCode: 404, Body: "no such identity"})

	verified, err := verifier.IsVerified(ctx, "octocat", recipient)
	require.NoError(t, err)
	assert.False(t, verified)

	verified, err = verifier.IsVerified(ctx, "", recipient)
	require.NoError(t, err)
	assert.False(t, verified)
}

func TestHTTPIdentityVerifier_TransientError(t *testing.T) {
	ctrl := gomock.NewController(t)
	httpClient := mocks.NewMockHTTPClient(ctrl)
	verifier := authorization.NewHTTPIdentityVerifier(httpClient, IDENTITY_API_URL, "")

	httpClient.EXPECT().GetJSON(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(fmt.Errorf("%w: %w", domain.ErrTransient, &adapter.StatusError{StatusCode: 502, Body: "bad gateway"}))

	_, err := verifier.IsVerified(context.Background(), "octocat", recipient)
	require.Error(t, err)
	assert.True(t, domain.IsTransient(err))
}
