package qbo

import (
	"context"
	"fmt"
	"net/http"
)

// GetCompanyInfo fetches the connected company's record. Used as a
// connection check before pushing anything.
func (c *Client) GetCompanyInfo(ctx context.Context) (*CompanyInfo, error) {
	var resp struct {
		CompanyInfo CompanyInfo `json:"CompanyInfo"`
	}
	if err := c.do(ctx, http.MethodGet, "companyinfo/1", nil, nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to get company info: %w", err)
	}
	return &resp.CompanyInfo, nil
}
