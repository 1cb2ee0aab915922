// Package qbo is a client for the QuickBooks Online v3 accounting API,
// covering the entities the estimate push needs: company info, customers,
// items, estimates and estimate PDFs.
package qbo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// TokenSource supplies a valid bearer token for each request. It is
// implemented by auth.Session.
type TokenSource interface {
	AccessToken(ctx context.Context) (string, error)
}

// APIError is a QuickBooks Fault response.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	Detail     string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("quickbooks api error (status %d): %s: %s", e.StatusCode, e.Message, e.Detail)
	}
	return fmt.Sprintf("quickbooks api error (status %d): %s", e.StatusCode, e.Message)
}

// faultEnvelope is QuickBooks' error body.
type faultEnvelope struct {
	Fault struct {
		Type  string `json:"type"`
		Error []struct {
			Message string `json:"Message"`
			Detail  string `json:"Detail"`
			Code    string `json:"code"`
		} `json:"Error"`
	} `json:"Fault"`
}

// Client issues authenticated requests against one realm (company).
type Client struct {
	baseURL string
	realmID string
	tokens  TokenSource
	httpc   *http.Client
	log     zerolog.Logger
}

func New(baseURL, realmID string, tokens TokenSource, log zerolog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		realmID: realmID,
		tokens:  tokens,
		httpc:   &http.Client{Timeout: 30 * time.Second},
		log:     log,
	}
}

func (c *Client) companyURL(endpoint string) string {
	return fmt.Sprintf("%s/v3/company/%s/%s", c.baseURL, c.realmID, endpoint)
}

// do performs one authenticated JSON request and decodes the response into
// out. The token source is consulted first, so an unrecoverable or transient
// authorization error aborts the operation before any API traffic.
func (c *Client) do(ctx context.Context, method, endpoint string, query url.Values, body, out interface{}) error {
	token, err := c.tokens.AccessToken(ctx)
	if err != nil {
		return fmt.Errorf("failed to obtain access token: %w", err)
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	u := c.companyURL(endpoint)
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.log.Debug().Str("method", method).Str("endpoint", endpoint).Msg("quickbooks request")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return c.apiError(resp)
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func (c *Client) apiError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	apiErr := &APIError{
		StatusCode: resp.StatusCode,
		Message:    strings.TrimSpace(string(body)),
	}
	var fault faultEnvelope
	if json.Unmarshal(body, &fault) == nil && len(fault.Fault.Error) > 0 {
		apiErr.Message = fault.Fault.Error[0].Message
		apiErr.Detail = fault.Fault.Error[0].Detail
		apiErr.Code = fault.Fault.Error[0].Code
	}
	return apiErr
}

// query runs a QuickBooks SQL-ish query and decodes the QueryResponse
// envelope into out.
func (c *Client) query(ctx context.Context, q string, out interface{}) error {
	params := url.Values{}
	params.Set("query", q)
	return c.do(ctx, http.MethodGet, "query", params, nil, out)
}

// escapeQueryValue escapes single quotes for use inside a query literal.
func escapeQueryValue(s string) string {
	return strings.ReplaceAll(s, "'", `\'`)
}
