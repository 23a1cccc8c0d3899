package domain

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInventoryItemValidate(t *testing.T) {
	tests := []struct {
		name  string
		item  InventoryItem
		field string
	}{
		{name: "missing sku", item: InventoryItem{OnHand: Float64(3)}, field: "sku"},
		{name: "missing on hand", item: InventoryItem{SKU: "A-1"}, field: "on_hand"},
		{name: "zero stock is valid", item: InventoryItem{SKU: "A-1", OnHand: Float64(0)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.item.Validate()
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMissingField))

			var mf *MissingFieldError
			require.True(t, errors.As(err, &mf))
			assert.Equal(t, tt.field, mf.Field)
		})
	}
}

func TestVendorHoldingCostDefault(t *testing.T) {
	v := Vendor{PricePerUnit: 10}
	assert.InDelta(t, 2.5, v.HoldingCostPerUnit(), 1e-9)

	v.HoldingCostRate = 0.1
	assert.InDelta(t, 1.0, v.HoldingCostPerUnit(), 1e-9)
}

func TestDaysJSON(t *testing.T) {
	out, err := json.Marshal(struct {
		A Days `json:"a"`
		B Days `json:"b"`
	}{A: Days(math.Inf(1)), B: Days(1.5)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":null,"b":1.5}`, string(out))

	var back struct {
		A Days `json:"a"`
		B Days `json:"b"`
	}
	require.NoError(t, json.Unmarshal(out, &back))
	assert.True(t, back.A.Infinite())
	assert.Equal(t, 1.5, back.B.Float())
}

func TestDecisionStatusTransitions(t *testing.T) {
	assert.True(t, StatusPending.CanTransitionTo(StatusApproved))
	assert.True(t, StatusApproved.CanTransitionTo(StatusOrdered))
	assert.False(t, StatusPending.CanTransitionTo(StatusOrdered))
	assert.False(t, StatusRejected.CanTransitionTo(StatusApproved))

	assert.Equal(t, "Approved", StatusApproved.Label())
	assert.Equal(t, "Unknown", DecisionStatus("shipped").Label())
}
