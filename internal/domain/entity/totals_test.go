package entity

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeTotals(t *testing.T) {
	tests := []struct {
		name  string
		items []ReceiptLineItem
		want  Totals
	}{
		{
			name:  "empty",
			items: nil,
			want:  Totals{},
		},
		{
			name: "two items with withholding on the first",
			items: []ReceiptLineItem{
				{Amount: 2, Price: 100, WithholdingTax: 5},
				{Amount: 1, Price: 50, WithholdingTax: 0},
			},
			want: Totals{Subtotal: 250, TotalWithholding: 5, GrandTotal: 245},
		},
		{
			name: "withholding larger than subtotal stays negative",
			items: []ReceiptLineItem{
				{Amount: 1, Price: 10, WithholdingTax: 25},
			},
			want: Totals{Subtotal: 10, TotalWithholding: 25, GrandTotal: -15},
		},
		{
			name: "negative amounts are summed as-is",
			items: []ReceiptLineItem{
				{Amount: -1, Price: 40},
				{Amount: 3, Price: 20, WithholdingTax: 1.5},
			},
			want: Totals{Subtotal: 20, TotalWithholding: 1.5, GrandTotal: 18.5},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ComputeTotals(tt.items))
		})
	}
}

func TestComputeTotalsGrandTotalIdentity(t *testing.T) {
	items := []ReceiptLineItem{
		{Amount: 3, Price: 0.1, WithholdingTax: 0.03},
		{Amount: 7, Price: 19.99, WithholdingTax: 4.2},
		{Amount: 0.5, Price: 1234.56, WithholdingTax: 0},
	}
	got := ComputeTotals(items)
	assert.Equal(t, got.Subtotal-got.TotalWithholding, got.GrandTotal)
}

func TestRunningSubtotals(t *testing.T) {
	items := []ReceiptLineItem{
		{Amount: 2, Price: 100},
		{Amount: 1, Price: 50},
		{Amount: 4, Price: 2.5},
	}
	assert.Equal(t, []float64{200, 250, 260}, RunningSubtotals(items))
	assert.Empty(t, RunningSubtotals(nil))
}

func TestLookupEnvelopeOutcome(t *testing.T) {
	receipt := &Receipt{Info: ReceiptHeader{RefCodeInfoItem: "INV-1"}}

	got, err := (&LookupEnvelope{OK: true, Data: receipt}).Outcome()
	require.NoError(t, err)
	assert.Same(t, receipt, got)

	_, err = (&LookupEnvelope{OK: true}).Outcome()
	assert.ErrorIs(t, err, ErrReceiptNotFound)

	_, err = (&LookupEnvelope{OK: false, Error: "X"}).Outcome()
	require.ErrorIs(t, err, ErrRemoteFailure)
	var remote *RemoteFailure
	require.True(t, errors.As(err, &remote))
	assert.Equal(t, "X", remote.Message)

	// a failing envelope never yields its data
	_, err = (&LookupEnvelope{OK: false, Data: receipt}).Outcome()
	assert.ErrorIs(t, err, ErrRemoteFailure)
}
