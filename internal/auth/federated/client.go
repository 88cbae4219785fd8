package federated

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/gapify/workflow-builder/internal/auth"
)

// Verification is the platform's answer for a token: the accounts it is
// attached to, and which of them the token holder is currently acting
// as. The two are deliberately separate fields; the primary account is
// never inferred from enumeration order.
type Verification struct {
	PrimaryAccountID string
	Accounts         []auth.ExternalAccount
}

// TokenValidator verifies an opaque platform token.
type TokenValidator interface {
	ValidateToken(ctx context.Context, opaqueToken string) (*Verification, error)
}

// Client talks to the support platform's token validation endpoint.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Domain returns the platform's domain, used for derived emails.
func (c *Client) Domain() string {
	u, err := url.Parse(c.baseURL)
	if err != nil || u.Hostname() == "" {
		return c.baseURL
	}
	return u.Hostname()
}

// validateResponse mirrors the platform's wire shape:
// { payload: { data: { account_id, accounts: [{id, name}] } } }
// Account ids arrive as either JSON strings or numbers.
type validateResponse struct {
	Payload struct {
		Data struct {
			AccountID json.Number   `json:"account_id"`
			Accounts  []accountData `json:"accounts"`
		} `json:"data"`
	} `json:"payload"`
}

type accountData struct {
	ID   json.Number `json:"id"`
	Name string      `json:"name"`
}

// ValidateToken asks the platform whether the opaque token is good.
// The raw outer token is passed as the bearer credential; the platform
// validates it as-is, not the access token folded inside it.
func (c *Client) ValidateToken(ctx context.Context, opaqueToken string) (*Verification, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/auth/validate_token", nil)
	if err != nil {
		return nil, fmt.Errorf("%w: building request: %v", ErrVerificationFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+opaqueToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: platform unreachable: %v", ErrVerificationFailed, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %v", ErrVerificationFailed, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: platform returned status %d", ErrVerificationFailed, resp.StatusCode)
	}

	var parsed validateResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("%w: unparseable response: %v", ErrVerificationFailed, err)
	}

	v := &Verification{
		PrimaryAccountID: parsed.Payload.Data.AccountID.String(),
	}
	for _, a := range parsed.Payload.Data.Accounts {
		v.Accounts = append(v.Accounts, auth.ExternalAccount{
			ID:   a.ID.String(),
			Name: a.Name,
		})
	}

	return v, nil
}

// compile-time interface check
var _ TokenValidator = (*Client)(nil)
