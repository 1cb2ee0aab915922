package qbo

import (
	"context"
	"fmt"
)

// QueryItems returns items matching the name, or up to 100 service items
// when name is empty.
func (c *Client) QueryItems(ctx context.Context, name string) ([]Item, error) {
	q := "SELECT * FROM Item WHERE Type = 'Service' MAXRESULTS 100"
	if name != "" {
		q = fmt.Sprintf("SELECT * FROM Item WHERE Name = '%s'", escapeQueryValue(name))
	}

	var resp struct {
		QueryResponse struct {
			Item []Item `json:"Item"`
		} `json:"QueryResponse"`
	}
	if err := c.query(ctx, q, &resp); err != nil {
		return nil, fmt.Errorf("item query failed: %w", err)
	}
	return resp.QueryResponse.Item, nil
}
