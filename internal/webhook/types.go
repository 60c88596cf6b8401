package webhook

import (
	"time"

	"github.com/feral-file/ff-bounty-ledger/internal/domain"
)

// EventTypePrefix is prepended to the ledger event type, e.g. "ledger.bounty_paid"
const EventTypePrefix = "ledger."

// EventTypeWildcard is a special filter that matches all event types
const EventTypeWildcard = "*"

// WebhookEvent represents a ledger change delivered to a webhook endpoint
type WebhookEvent struct {
	// EventID is a unique identifier for this delivery (ULID for time-sortable uniqueness)
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
	Data      EventData `json:"data"`
}

// EventData is the committed change. DedupKey identifies the on-chain event across deliveries.
type EventData struct {
	Source   string            `json:"source"`
	DedupKey string            `json:"dedup_key"`
	BountyID string            `json:"bounty_id"`
	Token    string            `json:"token,omitempty"`
	Amount   string            `json:"amount,omitempty"`
	Actor    string            `json:"actor,omitempty"`
	Fields   map[string]string `json:"fields,omitempty"`
}

// EventType returns the webhook event type of a ledger event type
func EventType(t domain.EventType) string {
	return EventTypePrefix + string(t)
}
