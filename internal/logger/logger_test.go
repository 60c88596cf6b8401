package logger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestDefaultIsUsableBeforeInitialize(t *testing.T) {
	assert.NotPanics(t, func() {
		Info("not initialized yet")
		ErrorCtx(context.Background(), errors.New("boom"))
	})
}

func TestInitializeWithoutSentry(t *testing.T) {
	require.NoError(t, Initialize(Config{Debug: true}))
	assert.NotNil(t, Default())
	assert.True(t, Default().Core().Enabled(zapcore.DebugLevel))

	require.NoError(t, Initialize(Config{Debug: false}))
	assert.False(t, Default().Core().Enabled(zapcore.DebugLevel))
}

func TestReplaceAndNamed(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	restore := Replace(zap.New(core))
	defer restore()

	Named("projector").Info("page processed", zap.Int("events", 3))
	ErrorCtx(context.Background(), errors.New("mint failed"), zap.String("intent_id", "f-1"))
	Error(nil)

	entries := logs.AllUntimed()
	require.Len(t, entries, 3)
	assert.Equal(t, "page processed", entries[0].Message)
	assert.Equal(t, "projector", entries[0].ContextMap()["component"])
	assert.Equal(t, "mint failed", entries[1].Message)
	assert.Equal(t, "f-1", entries[1].ContextMap()["intent_id"])
	assert.Equal(t, "error occurred", entries[2].Message)
}

func TestInitializeWithSentryClient(t *testing.T) {
	client, err := sentry.NewClient(sentry.ClientOptions{})
	require.NoError(t, err)
	defer Replace(Default())()

	require.NoError(t, Initialize(Config{
		Service:      "projector",
		SentryClient: client,
		Tags:         map[string]string{"chain": "eip155:8453"},
	}))
	assert.True(t, Default().Core().Enabled(zapcore.ErrorLevel))
	assert.NotPanics(t, func() {
		Error(errors.New("reported"))
		Flush(10 * time.Millisecond)
	})
}
