package quote

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleJSON = `{
	"customer": {
		"display_name": "Alex Smith",
		"email": "alex@example.com",
		"phone": "416-555-0100"
	},
	"quote": {
		"reference": "GT-TEST-001",
		"date": "2025-11-17"
	},
	"items": [
		{"description": "Interior painting - Living room", "qty": 2, "unit_price": 150.0},
		{"description": "Exterior trim - Front facade", "qty": 1, "unit_price": 300.0}
	],
	"sustainability": {"trees": 1, "co2_tons": 0.15, "water_liters": 25},
	"currency": "CAD"
}`

func TestParseAndValidateSample(t *testing.T) {
	q, err := Parse([]byte(sampleJSON))
	require.NoError(t, err)
	require.NoError(t, q.Validate())

	assert.Equal(t, "GT-TEST-001", q.Reference())
	assert.Equal(t, "Alex Smith", q.CustomerName())
	assert.Equal(t, "CAD", q.CurrencyCode())
	assert.InDelta(t, 600.0, q.Subtotal(), 0.001)
}

func TestValidateErrors(t *testing.T) {
	tests := []struct {
		name    string
		json    string
		wantErr string
	}{
		{
			name:    "missing customer",
			json:    `{"items":[{"description":"x","qty":1,"unit_price":1}]}`,
			wantErr: "missing 'customer' section",
		},
		{
			name:    "missing display name",
			json:    `{"customer":{"email":"a@b.c"},"items":[{"description":"x","qty":1,"unit_price":1}]}`,
			wantErr: "display_name is required",
		},
		{
			name:    "no items",
			json:    `{"customer":{"display_name":"A"},"items":[]}`,
			wantErr: "no items",
		},
		{
			name:    "item missing qty",
			json:    `{"customer":{"display_name":"A"},"items":[{"description":"x","unit_price":1}]}`,
			wantErr: "item 0: missing qty",
		},
		{
			name:    "item missing unit price",
			json:    `{"customer":{"display_name":"A"},"items":[{"description":"x","qty":1}]}`,
			wantErr: "item 0: missing unit_price",
		},
		{
			name:    "item missing description",
			json:    `{"customer":{"display_name":"A"},"items":[{"qty":1,"unit_price":1}]}`,
			wantErr: "item 0: missing description",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := Parse([]byte(tt.json))
			require.NoError(t, err)
			err = q.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestParseRejectsNonNumericAmounts(t *testing.T) {
	_, err := Parse([]byte(`{"customer":{"display_name":"A"},"items":[{"description":"x","qty":"lots","unit_price":1}]}`))
	require.Error(t, err)
}

func TestParseAcceptsQuotedNumbers(t *testing.T) {
	q, err := Parse([]byte(`{"customer":{"display_name":"A"},"items":[{"description":"x","qty":"2","unit_price":"12.50"}]}`))
	require.NoError(t, err)
	require.NoError(t, q.Validate())
	assert.InDelta(t, 25.0, q.Subtotal(), 0.001)
}

func TestDefaultsForMissingFields(t *testing.T) {
	q, err := Parse([]byte(`{"customer":{"display_name":"A"},"items":[{"description":"x","qty":1,"unit_price":1}]}`))
	require.NoError(t, err)
	assert.Equal(t, "NO-REF", q.Reference())
	assert.Equal(t, "CAD", q.CurrencyCode())
}
