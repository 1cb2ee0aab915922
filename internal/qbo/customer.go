package qbo

import (
	"context"
	"fmt"
	"net/http"
)

// QueryCustomers returns customers matching the display name, or up to 100
// customers when displayName is empty.
func (c *Client) QueryCustomers(ctx context.Context, displayName string) ([]Customer, error) {
	q := "SELECT * FROM Customer MAXRESULTS 100"
	if displayName != "" {
		q = fmt.Sprintf("SELECT * FROM Customer WHERE DisplayName = '%s'", escapeQueryValue(displayName))
	}

	var resp struct {
		QueryResponse struct {
			Customer []Customer `json:"Customer"`
		} `json:"QueryResponse"`
	}
	if err := c.query(ctx, q, &resp); err != nil {
		return nil, fmt.Errorf("customer query failed: %w", err)
	}
	return resp.QueryResponse.Customer, nil
}

// GetCustomer fetches one customer by id.
func (c *Client) GetCustomer(ctx context.Context, id string) (*Customer, error) {
	var resp struct {
		Customer Customer `json:"Customer"`
	}
	if err := c.do(ctx, http.MethodGet, "customer/"+id, nil, nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to get customer %s: %w", id, err)
	}
	return &resp.Customer, nil
}

// CreateCustomer creates a customer; email and phone are optional.
func (c *Client) CreateCustomer(ctx context.Context, displayName, email, phone string) (*Customer, error) {
	payload := Customer{DisplayName: displayName}
	if email != "" {
		payload.PrimaryEmailAddr = &EmailAddress{Address: email}
	}
	if phone != "" {
		payload.PrimaryPhone = &TelephoneNumber{FreeFormNumber: phone}
	}

	var resp struct {
		Customer Customer `json:"Customer"`
	}
	if err := c.do(ctx, http.MethodPost, "customer", nil, &payload, &resp); err != nil {
		return nil, fmt.Errorf("failed to create customer %q: %w", displayName, err)
	}
	return &resp.Customer, nil
}

// GetOrCreateCustomer looks the customer up by display name and creates it
// when absent. QuickBooks enforces DisplayName uniqueness, so the first
// match wins.
func (c *Client) GetOrCreateCustomer(ctx context.Context, displayName, email, phone string) (*Customer, error) {
	existing, err := c.QueryCustomers(ctx, displayName)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		c.log.Info().
			Str("customer", existing[0].DisplayName).
			Str("id", existing[0].ID).
			Msg("found existing customer")
		return &existing[0], nil
	}

	c.log.Info().Str("customer", displayName).Msg("creating new customer")
	return c.CreateCustomer(ctx, displayName, email, phone)
}
