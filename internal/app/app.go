// Package app runs the estimate push pipeline: parse and validate the
// quote, get-or-create the customer, create the estimate, download the PDF
// and append the audit row.
package app

import (
	"context"
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/greentech/qbo-push/internal/qbo"
	"github.com/greentech/qbo-push/internal/quote"
	"github.com/greentech/qbo-push/internal/quotelog"
)

// Options selects what Run processes and where results land.
type Options struct {
	JSONPath string
	Mock     bool
	OutDir   string
	LogPath  string
}

// Result is the machine-readable outcome printed by the CLI, consumed by
// the spreadsheet macro that invokes the push.
type Result struct {
	OK           bool    `json:"ok"`
	Mode         string  `json:"mode"`
	Reference    string  `json:"reference,omitempty"`
	CustomerName string  `json:"customer_name,omitempty"`
	CustomerID   string  `json:"customer_id,omitempty"`
	EstimateID   string  `json:"estimate_id,omitempty"`
	Items        int     `json:"items,omitempty"`
	Subtotal     float64 `json:"subtotal,omitempty"`
	Total        float64 `json:"total,omitempty"`
	Currency     string  `json:"currency,omitempty"`
	PDFPath      string  `json:"pdf_path,omitempty"`
	Status       string  `json:"status,omitempty"`
	Error        string  `json:"error,omitempty"`
}

// App wires the pipeline's collaborators.
type App struct {
	Client *qbo.Client
	Log    zerolog.Logger
}

func New(client *qbo.Client, log zerolog.Logger) *App {
	return &App{Client: client, Log: log}
}

// Run processes one quote file. The returned Result is always populated for
// reporting; err is non-nil exactly when Result.OK is false.
func (a *App) Run(ctx context.Context, opts Options) (*Result, error) {
	if opts.OutDir == "" {
		opts.OutDir = "Quotes"
	}
	if opts.LogPath == "" {
		opts.LogPath = filepath.Join("logs", "quotes_log.csv")
	}

	q, err := quote.Load(opts.JSONPath)
	if err != nil {
		return fail("", err), err
	}
	if err := q.Validate(); err != nil {
		err = fmt.Errorf("invalid quote data: %w", err)
		return fail("", err), err
	}

	a.Log.Info().
		Str("reference", q.Reference()).
		Str("customer", q.CustomerName()).
		Int("items", len(q.Items)).
		Float64("subtotal", q.Subtotal()).
		Str("currency", q.CurrencyCode()).
		Msg("quote loaded")

	if opts.Mock {
		return a.runMock(q, opts)
	}
	return a.runLive(ctx, q, opts)
}

func (a *App) runLive(ctx context.Context, q *quote.Quote, opts Options) (*Result, error) {
	res := &Result{
		Mode:         "quickbooks",
		Reference:    q.Reference(),
		CustomerName: q.CustomerName(),
		Items:        len(q.Items),
		Subtotal:     round2(q.Subtotal()),
		Currency:     q.CurrencyCode(),
	}

	// Connection check before creating anything.
	company, err := a.Client.GetCompanyInfo(ctx)
	if err != nil {
		return a.failLive(res, opts, err)
	}
	a.Log.Info().Str("company", company.CompanyName).Msg("connected to QuickBooks")

	customer, err := a.Client.GetOrCreateCustomer(ctx, q.CustomerName(), q.Customer.Email, q.Customer.Phone)
	if err != nil {
		return a.failLive(res, opts, err)
	}
	res.CustomerID = customer.ID

	created, err := a.Client.CreateEstimate(ctx, q.EstimatePayload(customer.ID, time.Now()))
	if err != nil {
		return a.failLive(res, opts, err)
	}
	summary := quote.Summarize(created)
	res.EstimateID = summary.ID
	res.Total = round2(summary.Total)
	if summary.DocNumber != "" {
		res.Reference = summary.DocNumber
	}

	a.Log.Info().
		Str("estimate_id", summary.ID).
		Str("doc_number", summary.DocNumber).
		Float64("total", summary.Total).
		Msg("estimate created")

	pdfPath := filepath.Join(opts.OutDir, fmt.Sprintf("Estimate_%s.pdf", res.Reference))
	if err := a.Client.DownloadEstimatePDF(ctx, summary.ID, pdfPath); err != nil {
		return a.failLive(res, opts, err)
	}
	res.PDFPath = pdfPath
	res.Status = "created"
	res.OK = true

	a.appendLog(opts.LogPath, res)
	return res, nil
}

// runMock writes a placeholder estimate file without touching the API, for
// dry runs while the calculation engine is being developed.
func (a *App) runMock(q *quote.Quote, opts Options) (*Result, error) {
	res := &Result{
		Mode:         "mock",
		Reference:    q.Reference(),
		CustomerName: q.CustomerName(),
		Items:        len(q.Items),
		Subtotal:     round2(q.Subtotal()),
		Currency:     q.CurrencyCode(),
	}

	path, err := writeMockEstimate(q, opts.OutDir)
	if err != nil {
		res.Error = err.Error()
		res.Status = "failed"
		return res, err
	}
	res.PDFPath = path
	res.Status = "mock_created"
	res.OK = true

	a.appendLog(opts.LogPath, res)
	a.Log.Info().Str("path", path).Msg("mock estimate created")
	return res, nil
}

func (a *App) failLive(res *Result, opts Options, err error) (*Result, error) {
	res.Status = "failed"
	res.Error = err.Error()

	var apiErr *qbo.APIError
	if errors.As(err, &apiErr) {
		a.Log.Error().Int("status_code", apiErr.StatusCode).Str("code", apiErr.Code).Msg(apiErr.Message)
	} else {
		a.Log.Error().Err(err).Msg("push failed")
	}

	a.appendLog(opts.LogPath, res)
	return res, err
}

func (a *App) appendLog(path string, res *Result) {
	row := quotelog.Row{
		Timestamp:    time.Now(),
		Reference:    res.Reference,
		CustomerName: res.CustomerName,
		ItemsCount:   res.Items,
		Subtotal:     res.Subtotal,
		Currency:     res.Currency,
		Status:       res.Status,
		PDFPath:      res.PDFPath,
		EstimateID:   res.EstimateID,
		Error:        res.Error,
	}
	if res.OK && res.Total > 0 {
		row.Subtotal = res.Total
	}
	if err := quotelog.Append(path, row); err != nil {
		// The push itself succeeded or failed on its own terms; a broken
		// audit log should not change the outcome.
		a.Log.Warn().Err(err).Str("path", path).Msg("failed to append audit log")
	}
}

func fail(reference string, err error) *Result {
	return &Result{
		Reference: reference,
		Status:    "failed",
		Error:     err.Error(),
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
