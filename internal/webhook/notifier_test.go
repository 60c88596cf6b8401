package webhook_test

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/ff-bounty-ledger/internal/adapter"
	"github.com/feral-file/ff-bounty-ledger/internal/domain"
	"github.com/feral-file/ff-bounty-ledger/internal/logger"
	"github.com/feral-file/ff-bounty-ledger/internal/mocks"
	"github.com/feral-file/ff-bounty-ledger/internal/webhook"
)

const secret = "test-secret-key"

func TestMain(m *testing.M) {
	if err := logger.Initialize(logger.Config{Debug: false}); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

var now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func paid() domain.LedgerChange {
	return domain.LedgerChange{
		Type:      domain.EventTypeBountyPaid,
		Source:    "eip155:8453:0xescrow",
		DedupKey:  "0xtx:3",
		BountyID:  "0xb1",
		Token:     "0xusdc",
		Amount:    "40",
		Actor:     "0xrecipient",
		Timestamp: now.Add(-time.Minute),
	}
}

func setup(t *testing.T, config webhook.Config) (*webhook.Notifier, *mocks.MockHTTPClient) {
	ctrl := gomock.NewController(t)
	httpClient := mocks.NewMockHTTPClient(ctrl)
	clock := mocks.NewMockClock(ctrl)
	clock.EXPECT().Now().Return(now).AnyTimes()
	return webhook.NewNotifier(config, httpClient, adapter.NewJSON(), clock), httpClient
}

func TestSign(t *testing.T) {
	payload := []byte(`{"event_id":"01JG8XAMPLE"}`)
	signature := webhook.Sign(secret, 1705312800, "01JG8XAMPLE", payload)

	assert.Regexp(t, `^sha256=[0-9a-f]{64}$`, signature)
	assert.Equal(t, signature, webhook.Sign(secret, 1705312800, "01JG8XAMPLE", payload))
	assert.True(t, webhook.Verify(secret, 1705312800, "01JG8XAMPLE", payload, signature))

	t.Run("any change breaks the signature", func(t *testing.T) {
		assert.False(t, webhook.Verify("other-secret", 1705312800, "01JG8XAMPLE", payload, signature))
		assert.False(t, webhook.Verify(secret, 1705312801, "01JG8XAMPLE", payload, signature))
		assert.False(t, webhook.Verify(secret, 1705312800, "01JG8XAMPLF", payload, signature))
		assert.False(t, webhook.Verify(secret, 1705312800, "01JG8XAMPLE", []byte(`{}`), signature))
	})
}

func TestNotify_PostsSignedEvent(t *testing.T) {
	notifier, httpClient := setup(t, webhook.Config{
		URLs:   []string{"https://hooks.example.com/a", "https://hooks.example.com/b"},
		Secret: secret,
	})
	ctx := context.Background()
	assert.Equal(t, "webhook", notifier.Name())

	check := func(_ context.Context, _ string, headers map[string]string, body []byte, result interface{}) error {
		assert.Nil(t, result)

		var event webhook.WebhookEvent
		require.NoError(t, json.Unmarshal(body, &event))
		assert.Equal(t, "ledger.bounty_paid", event.EventType)
		assert.Equal(t, "0xtx:3", event.Data.DedupKey)
		assert.Equal(t, "40", event.Data.Amount)
		assert.Equal(t, "0xrecipient", event.Data.Actor)
		assert.True(t, now.Add(-time.Minute).Equal(event.Timestamp))

		assert.Equal(t, event.EventID, headers["X-Webhook-Event-ID"])
		assert.Equal(t, "ledger.bounty_paid", headers["X-Webhook-Event-Type"])
		assert.Equal(t, strconv.FormatInt(now.Unix(), 10), headers["X-Webhook-Timestamp"])
		assert.True(t, webhook.Verify(secret, now.Unix(), event.EventID, body, headers["X-Webhook-Signature"]))
		return nil
	}
	httpClient.EXPECT().PostJSON(ctx, "https://hooks.example.com/a", gomock.Any(), gomock.Any(), nil).DoAndReturn(check)
	httpClient.EXPECT().PostJSON(ctx, "https://hooks.example.com/b", gomock.Any(), gomock.Any(), nil).DoAndReturn(check)

	require.NoError(t, notifier.Notify(ctx, paid()))
}

func TestNotify_FiltersEventTypes(t *testing.T) {
	notifier, httpClient := setup(t, webhook.Config{
		URLs:       []string{"https://hooks.example.com/a"},
		Secret:     secret,
		EventTypes: []string{webhook.EventType(domain.EventTypeBountyFunded)},
	})
	ctx := context.Background()

	// bounty_paid is filtered out, bounty_funded goes through
	require.NoError(t, notifier.Notify(ctx, paid()))

	httpClient.EXPECT().PostJSON(ctx, "https://hooks.example.com/a", gomock.Any(), gomock.Any(), nil).Return(nil)
	funded := paid()
	funded.Type = domain.EventTypeBountyFunded
	require.NoError(t, notifier.Notify(ctx, funded))
}

func TestNotify_Wildcard(t *testing.T) {
	notifier, httpClient := setup(t, webhook.Config{
		URLs:       []string{"https://hooks.example.com/a"},
		EventTypes: []string{webhook.EventTypeWildcard},
	})

	httpClient.EXPECT().PostJSON(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), nil).Return(nil)
	require.NoError(t, notifier.Notify(context.Background(), paid()))
}

func TestNotify_FailedEndpointDoesNotStopOthers(t *testing.T) {
	notifier, httpClient := setup(t, webhook.Config{
		URLs:   []string{"https://hooks.example.com/down", "https://hooks.example.com/up"},
		Secret: secret,
	})
	ctx := context.Background()

	httpClient.EXPECT().PostJSON(ctx, "https://hooks.example.com/down", gomock.Any(), gomock.Any(), nil).
		Return(&adapter.StatusError{StatusCode: 410, Body: "gone"})
	httpClient.EXPECT().PostJSON(ctx, "https://hooks.example.com/up", gomock.Any(), gomock.Any(), nil).Return(nil)

	err := notifier.Notify(ctx, paid())
	require.Error(t, err)
	var statusErr *adapter.StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, 410, statusErr.StatusCode)
	assert.Contains(t, err.Error(), "https://hooks.example.com/down")
}

func TestNotify_NoURLs(t *testing.T) {
	notifier, _ := setup(t, webhook.Config{Secret: secret})
	assert.NoError(t, notifier.Notify(context.Background(), paid()))
}
