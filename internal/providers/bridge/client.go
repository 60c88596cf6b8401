package bridge

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/feral-file/ff-bounty-ledger/internal/adapter"
	"github.com/feral-file/ff-bounty-ledger/internal/domain"
	"github.com/feral-file/ff-bounty-ledger/internal/logger"
	"github.com/feral-file/ff-bounty-ledger/internal/orchestrator"
)

// Transfer statuses reported by the bridge API
const (
	StatusPending   = "pending"
	StatusSubmitted = "submitted"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
	StatusRefunded  = "refunded"
)

// TransferRequest is the body of POST /v1/transfers
type TransferRequest struct {
	SourceChain      string `json:"sourceChain"`
	DestinationChain string `json:"destinationChain"`
	Token            string `json:"token"`
	Amount           string `json:"amount"`
	Recipient        string `json:"recipient"`
	Reference        string `json:"reference"`
}

// Transfer is the bridge's view of a transfer
type Transfer struct {
	ID                string `json:"id"`
	Status            string `json:"status"`
	SourceTxHash      string `json:"sourceTxHash"`
	DestinationTxHash string `json:"destinationTxHash"`
	Error             string `json:"error,omitempty"`
}

// Config holds the bridge client settings
type Config struct {
	APIURL       string
	APIKey       string
	Token        string
	PollInterval time.Duration
}

// Client moves treasury funds through the bridging intermediary.
// Every request carries the payout intent id as its idempotency key, so a retried
// request returns the transfer created by the first one instead of paying twice.
type Client struct {
	config     Config
	httpClient adapter.HTTPClient
	json       adapter.JSON
	clock      adapter.Clock
}

var _ orchestrator.Bridger = (*Client)(nil)

// NewClient creates a new bridge client
func NewClient(config Config, httpClient adapter.HTTPClient, json adapter.JSON, clock adapter.Clock) *Client {
	config.APIURL = strings.TrimRight(config.APIURL, "/")
	if config.PollInterval <= 0 {
		config.PollInterval = 5 * time.Second
	}
	return &Client{
		config:     config,
		httpClient: httpClient,
		json:       json,
		clock:      clock,
	}
}

// Bridge creates the transfer and waits until the bridge reports a terminal status
func (c *Client) Bridge(ctx context.Context, req orchestrator.BridgeRequest) (*orchestrator.BridgeResult, error) {
	if req.IntentID == "" {
		return nil, fmt.Errorf("bridge request has no intent id")
	}
	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("bridge amount must be positive, got %s", req.Amount)
	}

	body, err := c.json.Marshal(TransferRequest{
		SourceChain:      string(req.SourceChain),
		DestinationChain: string(req.DestinationChain),
		Token:            c.config.Token,
		Amount:           req.Amount.String(),
		Recipient:        req.Recipient,
		Reference:        req.IntentID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal transfer request: %w", err)
	}

	headers := c.headers()
	headers["Idempotency-Key"] = req.IntentID

	var transfer Transfer
	if err := c.httpClient.PostJSON(ctx, c.config.APIURL+"/v1/transfers", headers, body, &transfer); err != nil {
		return nil, fmt.Errorf("failed to create bridge transfer: %w", err)
	}
	if transfer.ID == "" {
		return nil, fmt.Errorf("bridge returned a transfer without id")
	}

	logger.InfoCtx(ctx, "Bridge transfer created",
		zap.String("intentID", req.IntentID),
		zap.String("transferID", transfer.ID),
		zap.String("status", transfer.Status))

	return c.waitForTransfer(ctx, &transfer)
}

// waitForTransfer polls the transfer until it completes or fails.
// Transient polling failures keep the loop going; running out of time is transient too,
// since the transfer may still complete and a retry picks it up by idempotency key.
func (c *Client) waitForTransfer(ctx context.Context, transfer *Transfer) (*orchestrator.BridgeResult, error) {
	for {
		switch transfer.Status {
		case StatusCompleted:
			return &orchestrator.BridgeResult{
				BridgeTxID: transfer.SourceTxHash,
				FinalTxID:  transfer.DestinationTxHash,
			}, nil
		case StatusFailed, StatusRefunded:
			return nil, fmt.Errorf("bridge transfer %s %s: %s", transfer.ID, transfer.Status, transfer.Error)
		case StatusPending, StatusSubmitted:
		default:
			return nil, fmt.Errorf("bridge transfer %s has unknown status %q", transfer.ID, transfer.Status)
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: bridge transfer %s still %s: %w", domain.ErrTransient, transfer.ID, transfer.Status, ctx.Err())
		case <-c.clock.After(c.config.PollInterval):
		}

		var latest Transfer
		err := c.httpClient.GetJSON(ctx, c.config.APIURL+"/v1/transfers/"+url.PathEscape(transfer.ID), c.headers(), &latest)
		if err != nil {
			if domain.IsTransient(err) {
				logger.WarnCtx(ctx, "Failed to poll bridge transfer, will retry",
					zap.String("transferID", transfer.ID),
					zap.Error(err))
				continue
			}
			return nil, fmt.Errorf("failed to poll bridge transfer %s: %w", transfer.ID, err)
		}
		if latest.ID == "" {
			latest.ID = transfer.ID
		}
		*transfer = latest
	}
}

func (c *Client) headers() map[string]string {
	headers := map[string]string{"Accept": "application/json"}
	if c.config.APIKey != "" {
		headers["Authorization"] = "Bearer " + c.config.APIKey
	}
	return headers
}
