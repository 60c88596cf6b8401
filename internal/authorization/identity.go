package authorization

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/feral-file/ff-bounty-ledger/internal/adapter"
)

// identityResponse is the body of GET /v1/identities/{identity}/wallets/{address}
type identityResponse struct {
	Verified bool `json:"verified"`
}

// HTTPIdentityVerifier asks the identity service whether a wallet is linked to a verified account
type HTTPIdentityVerifier struct {
	httpClient adapter.HTTPClient
	baseURL    string
	apiKey     string
}

var _ IdentityVerifier = (*HTTPIdentityVerifier)(nil)

// NewHTTPIdentityVerifier creates an identity verifier backed by the identity service
func NewHTTPIdentityVerifier(httpClient adapter.HTTPClient, baseURL, apiKey string) *HTTPIdentityVerifier {
	return &HTTPIdentityVerifier{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
	}
}

// IsVerified reports whether recipient belongs to the verified account identity.
// An account or wallet unknown to the service is not verified.
func (v *HTTPIdentityVerifier) IsVerified(ctx context.Context, identity, recipient string) (bool, error) {
	if identity == "" || recipient == "" {
		return false, nil
	}

	endpoint := fmt.Sprintf("%s/v1/identities/%s/wallets/%s",
		v.baseURL, url.PathEscape(identity), url.PathEscape(strings.ToLower(recipient)))
	headers := map[string]string{"Accept": "application/json"}
	if v.apiKey != "" {
		headers["Authorization"] = "Bearer " + v.apiKey
	}

	var resp identityResponse
	if err := v.httpClient.GetJSON(ctx, endpoint, headers, &resp); err != nil {
		var statusErr *adapter.StatusError
		if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound {
			return false, nil
		}
		return false, err
	}
	return resp.Verified, nil
}
