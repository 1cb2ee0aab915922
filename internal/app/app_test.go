package app

import (
	"context"
	"encoding/csv"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greentech/qbo-push/internal/qbo"
)

const sampleQuote = `{
	"customer": {"display_name": "Alex Smith", "email": "alex@example.com"},
	"quote": {"reference": "GT-TEST-001", "date": "2025-11-17"},
	"items": [
		{"description": "Interior painting", "qty": 2, "unit_price": 150.0},
		{"description": "Exterior trim", "qty": 1, "unit_price": 300.0}
	],
	"currency": "CAD"
}`

func writeQuote(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "quote.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func readLog(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return records
}

type noTokens struct{}

func (noTokens) AccessToken(ctx context.Context) (string, error) { return "mock-token", nil }

func TestRunMockMakesNoNetworkCalls(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
	}))
	defer srv.Close()

	dir := t.TempDir()
	a := New(qbo.New(srv.URL, "realm", noTokens{}, zerolog.Nop()), zerolog.Nop())

	res, err := a.Run(context.Background(), Options{
		JSONPath: writeQuote(t, dir, sampleQuote),
		Mock:     true,
		OutDir:   filepath.Join(dir, "Quotes"),
		LogPath:  filepath.Join(dir, "logs", "quotes_log.csv"),
	})
	require.NoError(t, err)
	require.True(t, res.OK)
	assert.Equal(t, 0, hits, "mock mode must not call the API")
	assert.Equal(t, "mock_created", res.Status)
	assert.InDelta(t, 600.0, res.Subtotal, 0.001)

	content, err := os.ReadFile(res.PDFPath)
	require.NoError(t, err)
	assert.Contains(t, string(content), "Reference: GT-TEST-001")
	assert.Contains(t, string(content), "Subtotal: CAD $600.00")

	records := readLog(t, filepath.Join(dir, "logs", "quotes_log.csv"))
	require.Len(t, records, 2)
	assert.Equal(t, "mock_created", records[1][6])
}

func TestRunLivePipeline(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/v3/company/realm/companyinfo/1":
			w.Write([]byte(`{"CompanyInfo":{"Id":"1","CompanyName":"GreenTech Sandbox"}}`))
		case r.URL.Path == "/v3/company/realm/query":
			w.Write([]byte(`{"QueryResponse":{}}`))
		case r.URL.Path == "/v3/company/realm/customer":
			w.Write([]byte(`{"Customer":{"Id":"7","DisplayName":"Alex Smith"}}`))
		case r.URL.Path == "/v3/company/realm/estimate":
			w.Write([]byte(`{"Estimate":{"Id":"55","DocNumber":"GT-1001","TotalAmt":600,"CustomerRef":{"value":"7"}}}`))
		case r.URL.Path == "/v3/company/realm/estimate/55/pdf":
			w.Write([]byte("%PDF-1.4 test"))
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
	}))
	defer srv.Close()

	dir := t.TempDir()
	a := New(qbo.New(srv.URL, "realm", noTokens{}, zerolog.Nop()), zerolog.Nop())

	res, err := a.Run(context.Background(), Options{
		JSONPath: writeQuote(t, dir, sampleQuote),
		OutDir:   filepath.Join(dir, "Quotes"),
		LogPath:  filepath.Join(dir, "logs", "quotes_log.csv"),
	})
	require.NoError(t, err)
	require.True(t, res.OK)
	assert.Equal(t, "7", res.CustomerID)
	assert.Equal(t, "55", res.EstimateID)
	// The server-assigned DocNumber replaces the quote reference.
	assert.Equal(t, "GT-1001", res.Reference)
	assert.Equal(t, filepath.Join(dir, "Quotes", "Estimate_GT-1001.pdf"), res.PDFPath)

	_, err = os.Stat(res.PDFPath)
	require.NoError(t, err)

	records := readLog(t, filepath.Join(dir, "logs", "quotes_log.csv"))
	require.Len(t, records, 2)
	assert.Equal(t, "GT-1001", records[1][1])
	assert.Equal(t, "created", records[1][6])
	assert.Equal(t, "55", records[1][8])
}

func TestRunLiveFailureLogsFailedRow(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"Fault":{"Error":[{"Message":"ApplicationAuthorizationFailed","code":"3200"}]}}`))
	}))
	defer srv.Close()

	dir := t.TempDir()
	a := New(qbo.New(srv.URL, "realm", noTokens{}, zerolog.Nop()), zerolog.Nop())

	res, err := a.Run(context.Background(), Options{
		JSONPath: writeQuote(t, dir, sampleQuote),
		LogPath:  filepath.Join(dir, "quotes_log.csv"),
		OutDir:   dir,
	})
	require.Error(t, err)
	assert.False(t, res.OK)
	assert.Equal(t, "failed", res.Status)
	assert.Contains(t, res.Error, "ApplicationAuthorizationFailed")

	records := readLog(t, filepath.Join(dir, "quotes_log.csv"))
	require.Len(t, records, 2)
	assert.Equal(t, "failed", records[1][6])
	assert.Contains(t, records[1][9], "ApplicationAuthorizationFailed")
}

func TestRunRejectsInvalidQuote(t *testing.T) {
	dir := t.TempDir()
	a := New(nil, zerolog.Nop())

	res, err := a.Run(context.Background(), Options{
		JSONPath: writeQuote(t, dir, `{"customer":{"display_name":"A"},"items":[]}`),
		Mock:     true,
		OutDir:   dir,
		LogPath:  filepath.Join(dir, "log.csv"),
	})
	require.Error(t, err)
	assert.False(t, res.OK)
	assert.Contains(t, res.Error, "no items")

	// Nothing reached the log: validation failures are caller errors, not
	// push attempts.
	_, statErr := os.Stat(filepath.Join(dir, "log.csv"))
	assert.True(t, os.IsNotExist(statErr))
}
