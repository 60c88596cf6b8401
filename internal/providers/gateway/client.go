package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/feral-file/ff-bounty-ledger/internal/adapter"
	"github.com/feral-file/ff-bounty-ledger/internal/logger"
	"github.com/feral-file/ff-bounty-ledger/internal/typeddata"
)

// EstimateRequest is the body of POST /v1/estimate
type EstimateRequest struct {
	Spec typeddata.TransferSpec `json:"spec"`
}

// EstimateResponse is returned by POST /v1/estimate
type EstimateResponse struct {
	BurnIntent *typeddata.BurnIntent `json:"burnIntent"`
	Fees       struct {
		Total string `json:"total"`
		Token string `json:"token"`
	} `json:"fees"`
}

// TransferRequest is one element of the POST /v1/transfer body
type TransferRequest struct {
	BurnIntent json.RawMessage `json:"burnIntent"`
	Signature  string          `json:"signature"`
}

// TransferResponse is returned by POST /v1/transfer
type TransferResponse struct {
	TransferID  string `json:"transferId"`
	Attestation string `json:"attestation"`
	Signature   string `json:"signature"`
	Success     *bool  `json:"success,omitempty"`
	Message     string `json:"message,omitempty"`
}

// Client calls the burn/attestation service of the gateway.
// It serves as the treasury's burn service.
type Client struct {
	httpClient adapter.HTTPClient
	baseURL    string
	apiKey     string
	json       adapter.JSON
}

// NewClient creates a new gateway client
func NewClient(httpClient adapter.HTTPClient, baseURL, apiKey string, json adapter.JSON) *Client {
	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		json:       json,
	}
}

// EstimateBurn asks the gateway to price a transfer and returns the burn intent to be signed
func (c *Client) EstimateBurn(ctx context.Context, spec typeddata.TransferSpec) (*typeddata.BurnIntent, error) {
	body, err := c.json.Marshal(EstimateRequest{Spec: spec})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal estimate request: %w", err)
	}

	var resp EstimateResponse
	if err := c.httpClient.PostJSON(ctx, c.baseURL+"/v1/estimate", c.headers(), body, &resp); err != nil {
		return nil, fmt.Errorf("failed to estimate burn: %w", err)
	}
	if resp.BurnIntent == nil {
		return nil, fmt.Errorf("gateway estimate returned no burn intent")
	}

	// the gateway must not alter what the depositor agreed to transfer
	if resp.BurnIntent.Spec.Value != spec.Value || resp.BurnIntent.Spec.SourceSigner != spec.SourceSigner {
		return nil, fmt.Errorf("gateway estimate changed the transfer spec")
	}
	if _, err := resp.BurnIntent.TypedData(); err != nil {
		return nil, fmt.Errorf("gateway estimate returned an invalid burn intent: %w", err)
	}

	logger.DebugCtx(ctx, "Estimated burn",
		zap.String("value", spec.Value),
		zap.String("maxFee", resp.BurnIntent.MaxFee),
		zap.String("fee", resp.Fees.Total))

	return resp.BurnIntent, nil
}

// SubmitBurn sends a signed burn intent and returns the attestation the destination minter consumes.
// The burn intent is sent in its canonical form so the gateway hashes the exact bytes that were signed.
func (c *Client) SubmitBurn(ctx context.Context, intent *typeddata.BurnIntent, signature string) (*typeddata.Attestation, error) {
	if _, err := intent.TypedData(); err != nil {
		return nil, fmt.Errorf("invalid burn intent: %w", err)
	}
	canonical, err := intent.Canonical()
	if err != nil {
		return nil, err
	}

	body, err := c.json.MarshalCanonical([]TransferRequest{{BurnIntent: canonical, Signature: signature}})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal transfer request: %w", err)
	}

	var resp TransferResponse
	if err := c.httpClient.PostJSON(ctx, c.baseURL+"/v1/transfer", c.headers(), body, &resp); err != nil {
		return nil, fmt.Errorf("failed to submit burn: %w", err)
	}
	if resp.Success != nil && !*resp.Success {
		return nil, fmt.Errorf("gateway rejected burn intent: %s", resp.Message)
	}
	if resp.Attestation == "" || resp.Signature == "" {
		return nil, fmt.Errorf("gateway returned no attestation")
	}

	return &typeddata.Attestation{
		Attestation: resp.Attestation,
		Signature:   resp.Signature,
		TransferID:  resp.TransferID,
	}, nil
}

func (c *Client) headers() map[string]string {
	headers := map[string]string{"Accept": "application/json"}
	if c.apiKey != "" {
		headers["Authorization"] = "Bearer " + c.apiKey
	}
	return headers
}
