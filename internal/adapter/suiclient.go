package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"

	"github.com/pattonkan/sui-go/sui"
	"github.com/pattonkan/sui-go/suiclient"
	"go.uber.org/zap"

	"github.com/feral-file/ff-bounty-ledger/internal/logger"
)

// SuiEventID is the position of an event inside the Sui event stream
type SuiEventID struct {
	TxDigest string `json:"txDigest"`
	EventSeq string `json:"eventSeq"`
}

// SuiEvent is a Move event in Sui JSON-RPC wire format
type SuiEvent struct {
	ID                SuiEventID             `json:"id"`
	PackageID         string                 `json:"packageId"`
	TransactionModule string                 `json:"transactionModule"`
	Sender            string                 `json:"sender"`
	Type              string                 `json:"type"`
	ParsedJSON        map[string]interface{} `json:"parsedJson"`
	TimestampMs       string                 `json:"timestampMs,omitempty"`
}

// SuiEventPage is a page returned by suix_queryEvents
type SuiEventPage struct {
	Data        []SuiEvent  `json:"data"`
	NextCursor  *SuiEventID `json:"nextCursor"`
	HasNextPage bool        `json:"hasNextPage"`
}

// SuiClient defines the Sui event operations used by the object-chain ledger source
//
//go:generate mockgen -source=suiclient.go -destination=../mocks/suiclient.go -package=mocks -mock_names=SuiClient=MockSuiClient
type SuiClient interface {
	// QueryEvents pages through events emitted by a Move module in ascending order
	QueryEvents(ctx context.Context, packageID, module string, cursor *SuiEventID, limit int) (*SuiEventPage, error)

	// SubscribeEvents streams events of the given Move event types into ch until ctx is done
	SubscribeEvents(ctx context.Context, eventTypes []string, ch chan<- SuiEvent) error
}

type jsonRPCRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      uint64        `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

type jsonRPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type queryEventsResponse struct {
	Result *SuiEventPage `json:"result"`
	Error  *jsonRPCError `json:"error"`
}

// RealSuiClient queries events over JSON-RPC and subscribes over the sui-go websocket client
type RealSuiClient struct {
	rpcURL string
	http   HTTPClient
	ws     *suiclient.ClientImpl
	nextID atomic.Uint64
}

// NewSuiClient creates a Sui client. The websocket connection is optional; without it
// SubscribeEvents fails and sources fall back to polling.
func NewSuiClient(ctx context.Context, rpcURL, wsURL string, httpClient HTTPClient) (SuiClient, error) {
	c := &RealSuiClient{
		rpcURL: rpcURL,
		http:   httpClient,
	}

	if wsURL != "" {
		ws := suiclient.NewClient(rpcURL)
		if err := connectSuiWebsocket(ctx, ws, wsURL); err != nil {
			return nil, err
		}
		c.ws = ws
	}

	return c, nil
}

// connectSuiWebsocket recovers from the panic sui-go raises on dial failure
func connectSuiWebsocket(ctx context.Context, client *suiclient.ClientImpl, wsURL string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("failed to connect sui websocket %s: %v", wsURL, r)
		}
	}()
	client.WithWebsocket(ctx, wsURL)
	return nil
}

// QueryEvents calls suix_queryEvents with a MoveModule filter
func (c *RealSuiClient) QueryEvents(ctx context.Context, packageID, module string, cursor *SuiEventID, limit int) (*SuiEventPage, error) {
	filter := map[string]interface{}{
		"MoveModule": map[string]string{
			"package": packageID,
			"module":  module,
		},
	}

	var cursorParam interface{}
	if cursor != nil {
		cursorParam = cursor
	}

	body, err := json.Marshal(jsonRPCRequest{
		JSONRPC: "2.0",
		ID:      c.nextID.Add(1),
		Method:  "suix_queryEvents",
		Params:  []interface{}{filter, cursorParam, limit, false},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal query: %w", err)
	}

	var resp queryEventsResponse
	if err := c.http.PostJSON(ctx, c.rpcURL, nil, body, &resp); err != nil {
		return nil, fmt.Errorf("failed to query sui events: %w", err)
	}
	if resp.Error != nil {
		return nil, fmt.Errorf("sui rpc error %d: %s", resp.Error.Code, resp.Error.Message)
	}
	if resp.Result == nil {
		return &SuiEventPage{}, nil
	}

	return resp.Result, nil
}

// SubscribeEvents subscribes to the given Move event types
func (c *RealSuiClient) SubscribeEvents(ctx context.Context, eventTypes []string, ch chan<- SuiEvent) error {
	if c.ws == nil {
		return fmt.Errorf("sui websocket not configured")
	}

	filters := make([]suiclient.EventFilter, 0, len(eventTypes))
	for _, eventType := range eventTypes {
		tag, err := sui.StructTagFromString(eventType)
		if err != nil {
			return fmt.Errorf("failed to parse event type %s: %w", eventType, err)
		}
		filters = append(filters, suiclient.EventFilter{MoveEventType: tag})
	}

	raw := make(chan suiclient.Event, 64)
	if err := c.ws.SubscribeEvent(ctx, &suiclient.EventFilter{Any: &filters}, raw); err != nil {
		return fmt.Errorf("failed to subscribe sui events: %w", err)
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case evt := <-raw:
				converted, err := toSuiEvent(evt)
				if err != nil {
					logger.WarnCtx(ctx, "Dropping undecodable sui event", zap.Error(err))
					continue
				}
				select {
				case ch <- converted:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return nil
}

// toSuiEvent converts through the JSON-RPC wire format so the result is independent of sui-go's Go types
func toSuiEvent(evt suiclient.Event) (SuiEvent, error) {
	raw, err := json.Marshal(evt)
	if err != nil {
		return SuiEvent{}, fmt.Errorf("failed to marshal sui event: %w", err)
	}

	var out SuiEvent
	if err := json.Unmarshal(raw, &out); err != nil {
		return SuiEvent{}, fmt.Errorf("failed to unmarshal sui event: %w", err)
	}

	return out, nil
}
