// Package webhook delivers committed ledger changes to HTTP endpoints, signed with a shared secret.
package webhook

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/feral-file/ff-bounty-ledger/internal/adapter"
	"github.com/feral-file/ff-bounty-ledger/internal/domain"
	"github.com/feral-file/ff-bounty-ledger/internal/logger"
	"github.com/feral-file/ff-bounty-ledger/internal/messaging"
)

const userAgent = "FF-Bounty-Ledger-Webhook/1.0"

// Config holds the webhook endpoints
type Config struct {
	URLs       []string
	Secret     string
	EventTypes []string // webhook event types to deliver, empty or "*" for all
}

// Notifier posts every matching ledger change to each configured URL
type Notifier struct {
	config     Config
	httpClient adapter.HTTPClient
	json       adapter.JSON
	clock      adapter.Clock
}

var _ messaging.Notifier = (*Notifier)(nil)

// NewNotifier creates a webhook notifier
func NewNotifier(config Config, httpClient adapter.HTTPClient, json adapter.JSON, clock adapter.Clock) *Notifier {
	return &Notifier{
		config:     config,
		httpClient: httpClient,
		json:       json,
		clock:      clock,
	}
}

func (n *Notifier) Name() string {
	return "webhook"
}

// Notify delivers the change to every URL once. Retrying is left to the receiver's
// reconciliation: the change stays in the read model and dedup_key identifies it.
func (n *Notifier) Notify(ctx context.Context, change domain.LedgerChange) error {
	eventType := EventType(change.Type)
	if !n.matches(eventType) || len(n.config.URLs) == 0 {
		return nil
	}

	now := n.clock.Now()
	event := WebhookEvent{
		EventID:   ulid.MustNewDefault(now).String(),
		EventType: eventType,
		Timestamp: change.Timestamp,
		Data: EventData{
			Source:   string(change.Source),
			DedupKey: change.DedupKey,
			BountyID: change.BountyID,
			Token:    change.Token,
			Amount:   change.Amount,
			Actor:    change.Actor,
			Fields:   change.Fields,
		},
	}

	payload, err := n.json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal webhook event: %w", err)
	}

	timestamp := now.Unix()
	headers := map[string]string{
		"Content-Type":         "application/json",
		"X-Webhook-Signature":  Sign(n.config.Secret, timestamp, event.EventID, payload),
		"X-Webhook-Event-ID":   event.EventID,
		"X-Webhook-Event-Type": event.EventType,
		"X-Webhook-Timestamp":  fmt.Sprintf("%d", timestamp),
		"User-Agent":           userAgent,
	}

	var errs []error
	for _, url := range n.config.URLs {
		if err := n.httpClient.PostJSON(ctx, url, headers, payload, nil); err != nil {
			errs = append(errs, fmt.Errorf("failed to post webhook to %s: %w", url, err))
			continue
		}
		logger.DebugCtx(ctx, "Webhook delivered",
			zap.String("url", url),
			zap.String("eventID", event.EventID),
			zap.String("eventType", event.EventType))
	}

	return errors.Join(errs...)
}

func (n *Notifier) matches(eventType string) bool {
	if len(n.config.EventTypes) == 0 {
		return true
	}
	return slices.Contains(n.config.EventTypes, EventTypeWildcard) ||
		slices.Contains(n.config.EventTypes, eventType)
}
