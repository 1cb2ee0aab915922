package qbo

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
)

// CreateEstimate creates an estimate and returns the server's copy, which
// carries the assigned Id, DocNumber and TotalAmt.
func (c *Client) CreateEstimate(ctx context.Context, payload *Estimate) (*Estimate, error) {
	var resp struct {
		Estimate Estimate `json:"Estimate"`
	}
	if err := c.do(ctx, http.MethodPost, "estimate", nil, payload, &resp); err != nil {
		return nil, fmt.Errorf("failed to create estimate: %w", err)
	}
	return &resp.Estimate, nil
}

// GetEstimate fetches one estimate by id.
func (c *Client) GetEstimate(ctx context.Context, id string) (*Estimate, error) {
	var resp struct {
		Estimate Estimate `json:"Estimate"`
	}
	if err := c.do(ctx, http.MethodGet, "estimate/"+id, nil, nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to get estimate %s: %w", id, err)
	}
	return &resp.Estimate, nil
}

// DownloadEstimatePDF fetches the PDF rendered by QuickBooks for the
// estimate and writes it to path. The download goes through a temp file so a
// failed transfer never leaves a truncated PDF behind.
func (c *Client) DownloadEstimatePDF(ctx context.Context, id, path string) error {
	token, err := c.tokens.AccessToken(ctx)
	if err != nil {
		return fmt.Errorf("failed to obtain access token: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.companyURL("estimate/"+id+"/pdf"), nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/pdf")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("pdf request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("failed to download pdf for estimate %s: %w", id, c.apiError(resp))
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".estimate-*.pdf")
	if err != nil {
		return fmt.Errorf("failed to create temp pdf file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write pdf: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close pdf file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to move pdf into place: %w", err)
	}

	c.log.Info().Str("estimate_id", id).Str("path", path).Msg("estimate pdf downloaded")
	return nil
}
