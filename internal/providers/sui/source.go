package sui

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/feral-file/ff-bounty-ledger/internal/adapter"
	"github.com/feral-file/ff-bounty-ledger/internal/domain"
	"github.com/feral-file/ff-bounty-ledger/internal/logger"
	"github.com/feral-file/ff-bounty-ledger/internal/metrics"
	"github.com/feral-file/ff-bounty-ledger/internal/source"
)

// Move event struct names of the escrow module
var eventTypes = map[string]domain.EventType{
	"BountyCreated":  domain.EventTypeBountyCreated,
	"BountyFunded":   domain.EventTypeBountyFunded,
	"ClaimSubmitted": domain.EventTypeClaimSubmitted,
	"BountyPaid":     domain.EventTypeBountyPaid,
	"BountyRefunded": domain.EventTypeBountyRefunded,
	"BountyClosed":   domain.EventTypeBountyClosed,
}

// camelCase spellings accepted next to the snake_case Move field names
var fieldAliases = map[string]string{
	"bountyId": domain.FieldBountyID,
	"issueUrl": domain.FieldIssueURL,
	"claimUrl": domain.FieldClaimURL,
}

const (
	subscriptionBuffer = 64
	defaultIdleTimeout = 5 * time.Minute
)

// Config holds the settings of a Move escrow package source
type Config struct {
	Chain     domain.Chain
	PackageID string
	Module    string
	// IdleTimeout ends a subscription that delivered nothing for this long, so the caller
	// catches up with QueryEvents and subscribes again
	IdleTimeout time.Duration
}

// Source reads escrow events emitted by a Move package. It backfills with suix_queryEvents
// and tails through a websocket subscription.
// Cursors are JSON encoded event ids ({txDigest, eventSeq}); they carry no order the projector can compare.
type Source struct {
	key        domain.SourceKey
	config     Config
	client     adapter.SuiClient
	clock      adapter.Clock
	eventTypes []string
}

var _ source.PushSource = (*Source)(nil)

// NewSource creates a Sui escrow source
func NewSource(config Config, client adapter.SuiClient, clock adapter.Clock) (*Source, error) {
	if config.PackageID == "" || config.Module == "" {
		return nil, fmt.Errorf("sui source needs a package id and module")
	}
	if config.Chain.Family() != domain.ChainFamilySui {
		return nil, fmt.Errorf("chain %s is not a sui chain", config.Chain)
	}
	if config.IdleTimeout <= 0 {
		config.IdleTimeout = defaultIdleTimeout
	}

	moveTypes := make([]string, 0, len(eventTypes))
	for name := range eventTypes {
		moveTypes = append(moveTypes, fmt.Sprintf("%s::%s::%s", config.PackageID, config.Module, name))
	}
	sort.Strings(moveTypes)

	return &Source{
		key:        domain.NewSourceKey(config.Chain, config.PackageID),
		config:     config,
		client:     client,
		clock:      clock,
		eventTypes: moveTypes,
	}, nil
}

// Key returns the source key of the escrow package
func (s *Source) Key() domain.SourceKey {
	return s.key
}

// StartCursor returns the persisted cursor. Event ids have no height, so the safety window
// cannot be applied; without a persisted cursor the source starts at the package origin.
func (s *Source) StartCursor(ctx context.Context, persisted domain.Cursor, safetyWindow uint64) (domain.Cursor, error) {
	if _, err := decodeCursor(persisted); err != nil {
		return "", err
	}
	if persisted == "" {
		logger.InfoCtx(ctx, "No persisted cursor, backfilling from package origin",
			zap.String("source", string(s.key)),
			zap.Uint64("safetyWindow", safetyWindow))
	}
	return persisted, nil
}

// QueryEvents returns up to pageSize escrow events after cursor
func (s *Source) QueryEvents(ctx context.Context, cursor domain.Cursor, pageSize int) (source.Page, error) {
	id, err := decodeCursor(cursor)
	if err != nil {
		return source.Page{}, err
	}
	if pageSize <= 0 {
		pageSize = domain.DEFAULT_PAGE_SIZE
	}

	result, err := s.client.QueryEvents(ctx, s.config.PackageID, s.config.Module, id, pageSize)
	if err != nil {
		return source.Page{}, fmt.Errorf("failed to query events: %w", err)
	}

	page := source.Page{
		Events:  s.toLedgerEvents(ctx, result.Data),
		Next:    cursor,
		HasMore: result.HasNextPage,
	}

	switch {
	case result.NextCursor != nil:
		page.Next, err = encodeCursor(*result.NextCursor)
	case len(result.Data) > 0:
		page.Next, err = encodeCursor(result.Data[len(result.Data)-1].ID)
	}
	if err != nil {
		return source.Page{}, err
	}

	return page, nil
}

// Subscribe catches up from `from` with QueryEvents, then streams events delivered by the websocket
// subscription. The subscription is opened before catching up, and streamed events already delivered
// by the catch-up are dropped so the cursor never moves back to them.
// The subscription is closed when Subscribe returns, including after IdleTimeout without events.
func (s *Source) Subscribe(ctx context.Context, from domain.Cursor, onEvents func(ctx context.Context, page source.Page) error) error {
	subCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	ch := make(chan adapter.SuiEvent, subscriptionBuffer)
	if err := s.client.SubscribeEvents(subCtx, s.eventTypes, ch); err != nil {
		return fmt.Errorf("failed to subscribe: %w", err)
	}

	seen := make(map[string]struct{})
	cursor := from
	for {
		page, err := s.QueryEvents(ctx, cursor, domain.DEFAULT_PAGE_SIZE)
		if err != nil {
			return fmt.Errorf("failed to catch up from %s: %w", cursor, err)
		}
		for _, event := range page.Events {
			seen[event.DedupKey] = struct{}{}
		}
		if err := onEvents(ctx, page); err != nil {
			return err
		}
		cursor = page.Next
		if !page.HasMore {
			break
		}
	}

	logger.InfoCtx(ctx, "Tailing sui events", zap.String("source", string(s.key)), zap.String("cursor", string(cursor)))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.clock.After(s.config.IdleTimeout):
			return fmt.Errorf("no sui events for %s after %s", s.config.IdleTimeout, cursor)
		case raw := <-ch:
			next, err := encodeCursor(raw.ID)
			if err != nil {
				return err
			}

			// undecodable events still move the cursor past them
			events := s.toLedgerEvents(ctx, []adapter.SuiEvent{raw})
			if len(events) == 1 {
				if _, ok := seen[events[0].DedupKey]; ok {
					delete(seen, events[0].DedupKey)
					continue
				}
			}

			if err := onEvents(ctx, source.Page{Events: events, Next: next}); err != nil {
				return err
			}
			cursor = next
		}
	}
}

func (s *Source) toLedgerEvents(ctx context.Context, raw []adapter.SuiEvent) []domain.LedgerEvent {
	events := make([]domain.LedgerEvent, 0, len(raw))
	for _, evt := range raw {
		event, err := s.toLedgerEvent(evt)
		if err != nil {
			logger.WarnCtx(ctx, "Skipping undecodable sui event",
				zap.String("source", string(s.key)),
				zap.String("txDigest", evt.ID.TxDigest),
				zap.String("eventSeq", evt.ID.EventSeq),
				zap.String("type", evt.Type),
				zap.Error(err))
			metrics.EventsSkipped.WithLabelValues(string(s.key), "undecodable").Inc()
			continue
		}
		events = append(events, event)
	}
	return events
}

func (s *Source) toLedgerEvent(evt adapter.SuiEvent) (domain.LedgerEvent, error) {
	eventType, err := s.eventType(evt.Type)
	if err != nil {
		return domain.LedgerEvent{}, err
	}

	fields := make(map[string]string, len(evt.ParsedJSON))
	for name, value := range evt.ParsedJSON {
		key := name
		if alias, ok := fieldAliases[name]; ok {
			key = alias
		}
		normalized, err := normalize(value)
		if err != nil {
			return domain.LedgerEvent{}, fmt.Errorf("field %s: %v: %w", name, err, domain.ErrInvalidEvent)
		}
		fields[key] = normalized
	}

	cursor, err := encodeCursor(evt.ID)
	if err != nil {
		return domain.LedgerEvent{}, err
	}

	event := domain.LedgerEvent{
		Source:   s.key,
		DedupKey: fmt.Sprintf("%s:%s", evt.ID.TxDigest, evt.ID.EventSeq),
		Type:     eventType,
		Fields:   fields,
		TxID:     evt.ID.TxDigest,
		Cursor:   cursor,
	}

	if evt.TimestampMs != "" {
		if ms, err := strconv.ParseInt(evt.TimestampMs, 10, 64); err == nil {
			event.Timestamp = time.UnixMilli(ms).UTC()
		}
	}

	return event, nil
}

// eventType maps a fully qualified Move event type of the escrow module to a ledger event type
func (s *Source) eventType(moveType string) (domain.EventType, error) {
	// drop type parameters, e.g. BountyFunded<0x2::sui::SUI>
	if i := strings.Index(moveType, "<"); i >= 0 {
		moveType = moveType[:i]
	}

	parts := strings.Split(moveType, "::")
	if len(parts) != 3 {
		return "", fmt.Errorf("malformed move type %q: %w", moveType, domain.ErrInvalidEvent)
	}
	if !sameAddress(parts[0], s.config.PackageID) || parts[1] != s.config.Module {
		return "", fmt.Errorf("event %q not emitted by %s::%s: %w", moveType, s.config.PackageID, s.config.Module, domain.ErrUnknownEventType)
	}

	eventType, ok := eventTypes[parts[2]]
	if !ok {
		return "", fmt.Errorf("event %q has no ledger mutation: %w", parts[2], domain.ErrUnknownEventType)
	}
	return eventType, nil
}

// sameAddress compares two Sui addresses ignoring case and leading zero padding
func sameAddress(a, b string) bool {
	trim := func(s string) string {
		return strings.TrimLeft(strings.TrimPrefix(strings.ToLower(s), "0x"), "0")
	}
	return trim(a) == trim(b)
}

// normalize renders a parsedJson value as a string
func normalize(value interface{}) (string, error) {
	switch v := value.(type) {
	case nil:
		return "", nil
	case string:
		if isHexAddress(v) {
			return strings.ToLower(v), nil
		}
		return v, nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case json.Number:
		return v.String(), nil
	case bool:
		return strconv.FormatBool(v), nil
	case []interface{}:
		// vector<u8>
		buf := make([]byte, 0, len(v))
		for _, b := range v {
			n, ok := b.(float64)
			if !ok || n < 0 || n > 255 {
				return "", fmt.Errorf("unsupported vector element %v", b)
			}
			buf = append(buf, byte(n))
		}
		return "0x" + hex.EncodeToString(buf), nil
	case map[string]interface{}:
		// std::type_name::TypeName and std::string::String wrappers
		if name, ok := v["name"].(string); ok && len(v) == 1 {
			return name, nil
		}
		if bytes, ok := v["bytes"].(string); ok && len(v) == 1 {
			return bytes, nil
		}
		raw, err := json.Marshal(v)
		if err != nil {
			return "", err
		}
		return string(raw), nil
	default:
		return "", fmt.Errorf("unsupported value type %T", value)
	}
}

func isHexAddress(s string) bool {
	if len(s) < 3 || (s[:2] != "0x" && s[:2] != "0X") {
		return false
	}
	_, err := hex.DecodeString(strings.Repeat("0", len(s)%2) + s[2:])
	return err == nil
}

func decodeCursor(cursor domain.Cursor) (*adapter.SuiEventID, error) {
	if cursor == "" {
		return nil, nil
	}
	var id adapter.SuiEventID
	if err := json.Unmarshal([]byte(cursor), &id); err != nil {
		return nil, fmt.Errorf("invalid sui cursor %q: %w", cursor, err)
	}
	if id.TxDigest == "" {
		return nil, fmt.Errorf("invalid sui cursor %q: missing txDigest", cursor)
	}
	return &id, nil
}

func encodeCursor(id adapter.SuiEventID) (domain.Cursor, error) {
	raw, err := json.Marshal(id)
	if err != nil {
		return "", fmt.Errorf("failed to encode sui cursor: %w", err)
	}
	return domain.Cursor(raw), nil
}
