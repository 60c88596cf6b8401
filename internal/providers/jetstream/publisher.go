package jetstream

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"go.uber.org/zap"

	"github.com/feral-file/ff-bounty-ledger/internal/adapter"
	"github.com/feral-file/ff-bounty-ledger/internal/domain"
	"github.com/feral-file/ff-bounty-ledger/internal/logger"
	"github.com/feral-file/ff-bounty-ledger/internal/messaging"
)

// Config holds the configuration for NATS JetStream connection
type Config struct {
	URL             string
	StreamName      string
	SubjectPrefix   string
	DuplicateWindow time.Duration
	MaxReconnects   int
	ReconnectWait   time.Duration
	ConnectionName  string
}

const (
	defaultStreamName      = "LEDGER"
	defaultSubjectPrefix   = "ledger"
	defaultDuplicateWindow = 2 * time.Hour
	ensureStreamTimeout    = 10 * time.Second
)

// Publisher publishes committed ledger changes to JetStream
type Publisher struct {
	nc            adapter.NatsConn
	js            adapter.JetStream
	subjectPrefix string
	json          adapter.JSON
}

var _ messaging.Notifier = (*Publisher)(nil)

// NewPublisher connects to NATS and makes sure the ledger stream exists before any change
// is published. The stream's duplicate window bounds how long a re-published dedup key
// is discarded.
func NewPublisher(cfg Config, dialer adapter.NatsDialer, jsonAdapter adapter.JSON) (*Publisher, error) {
	if cfg.StreamName == "" {
		cfg.StreamName = defaultStreamName
	}
	if cfg.SubjectPrefix == "" {
		cfg.SubjectPrefix = defaultSubjectPrefix
	}
	if cfg.DuplicateWindow <= 0 {
		cfg.DuplicateWindow = defaultDuplicateWindow
	}

	opts := []nats.Option{
		nats.Name(cfg.ConnectionName),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			if err != nil {
				logger.Error(err, zap.String("message", "Disconnected from NATS"))
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("Reconnected to NATS", zap.String("url", nc.ConnectedUrl()))
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			logger.Info("NATS connection closed")
		}),
	}

	nc, js, err := dialer.Dial(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS and create JetStream: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), ensureStreamTimeout)
	defer cancel()

	info, err := js.EnsureStream(ctx, cfg.StreamName, []string{cfg.SubjectPrefix + ".>"}, cfg.DuplicateWindow)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to ensure stream %s: %w", cfg.StreamName, err)
	}
	logger.Info("Ledger stream ready",
		zap.String("stream", cfg.StreamName),
		zap.Uint64("messages", info.State.Msgs),
		zap.Duration("duplicateWindow", cfg.DuplicateWindow))

	return &Publisher{
		nc:            nc,
		js:            js,
		subjectPrefix: cfg.SubjectPrefix,
		json:          jsonAdapter,
	}, nil
}

func (p *Publisher) Name() string {
	return "jetstream"
}

// Notify publishes a ledger change. The dedup key is used as the JetStream message id,
// so a change re-published within the stream's duplicate window is stored once.
func (p *Publisher) Notify(ctx context.Context, change domain.LedgerChange) error {
	logger.DebugCtx(ctx, "Publishing ledger change", zap.String("dedupKey", change.DedupKey), zap.String("type", string(change.Type)))

	data, err := p.json.Marshal(change)
	if err != nil {
		return fmt.Errorf("failed to marshal ledger change: %w", err)
	}

	_, err = p.js.Publish(ctx, p.buildSubject(change), data, jetstream.WithMsgID(string(change.Type)+":"+change.DedupKey))
	if err != nil {
		return fmt.Errorf("failed to publish ledger change: %w", err)
	}

	return nil
}

// buildSubject constructs the NATS subject of a change.
// Format: {prefix}.{chain family}.{event_type}, e.g. ledger.eip155.bounty_funded
func (p *Publisher) buildSubject(change domain.LedgerChange) string {
	family, _, _ := strings.Cut(string(change.Source), ":")
	if family == "" {
		family = "unknown"
	}
	return fmt.Sprintf("%s.%s.%s", p.subjectPrefix, family, change.Type)
}

// Close drains in-flight publishes, falling back to a hard close if the drain fails
func (p *Publisher) Close() {
	if p.nc == nil {
		return
	}

	if err := p.nc.Drain(); err != nil {
		logger.Warn("Failed to drain NATS connection", zap.Error(err))
		p.nc.Close()
	}
}
