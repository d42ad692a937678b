package ledger

import (
	"math/rand"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/trendifymart/api/internal/enum"
)

func newTestFabricator(seed int64) *Fabricator {
	return NewFabricator(rand.New(rand.NewSource(seed)))
}

func TestFabricate_DeterministicID(t *testing.T) {
	orderID := uuid.New()
	amount := decimal.NewFromFloat(100.00)
	now := time.Now()

	a := newTestFabricator(1).Fabricate(orderID, amount, enum.OrderStatusPending, now)
	b := newTestFabricator(99).Fabricate(orderID, amount, enum.OrderStatusPending, now)

	if a.ID != b.ID {
		t.Errorf("same order produced different transaction IDs: %v vs %v", a.ID, b.ID)
	}

	other := newTestFabricator(1).Fabricate(uuid.New(), amount, enum.OrderStatusPending, now)
	if a.ID == other.ID {
		t.Error("different orders produced the same transaction ID")
	}
}

func TestFabricate_GatewayIsKnown(t *testing.T) {
	f := newTestFabricator(42)
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		tx := f.Fabricate(uuid.New(), decimal.NewFromInt(10), enum.OrderStatusPending, time.Now())
		if _, ok := gatewayFees[tx.Gateway]; !ok {
			t.Fatalf("unknown gateway %q", tx.Gateway)
		}
		seen[tx.Gateway] = true
	}
	if len(seen) < 2 {
		t.Errorf("expected gateway selection to vary, only saw %v", seen)
	}
}

func TestFabricate_FeeMath(t *testing.T) {
	f := newTestFabricator(7)
	amount := decimal.NewFromFloat(250.00)

	for i := 0; i < 20; i++ {
		tx := f.Fabricate(uuid.New(), amount, enum.OrderStatusDelivered, time.Now())

		fees := gatewayFees[tx.Gateway]
		wantFee := amount.Mul(fees.rate).Add(fees.flat).Round(2)
		if !tx.Fee.Equal(wantFee) {
			t.Errorf("gateway %s: fee got %v, want %v", tx.Gateway, tx.Fee, wantFee)
		}
		if !tx.Net.Equal(amount.Sub(tx.Fee)) {
			t.Errorf("gateway %s: net %v != amount - fee %v", tx.Gateway, tx.Net, amount.Sub(tx.Fee))
		}
	}
}

func TestFabricate_FeeNeverExceedsAmount(t *testing.T) {
	f := newTestFabricator(3)
	amount := decimal.NewFromFloat(0.10)

	for i := 0; i < 20; i++ {
		tx := f.Fabricate(uuid.New(), amount, enum.OrderStatusPending, time.Now())
		if tx.Fee.GreaterThan(amount) {
			t.Errorf("fee %v exceeds amount %v", tx.Fee, amount)
		}
		if tx.Net.IsNegative() {
			t.Errorf("net went negative: %v", tx.Net)
		}
	}
}

func TestFabricate_StatusMapping(t *testing.T) {
	cases := []struct {
		orderStatus string
		want        string
	}{
		{enum.OrderStatusPending, enum.TransactionStatusPending},
		{enum.OrderStatusProcessing, enum.TransactionStatusPending},
		{enum.OrderStatusShipped, enum.TransactionStatusCompleted},
		{enum.OrderStatusDelivered, enum.TransactionStatusCompleted},
		{enum.OrderStatusCancelled, enum.TransactionStatusRefunded},
	}

	f := newTestFabricator(11)
	for _, tc := range cases {
		tx := f.Fabricate(uuid.New(), decimal.NewFromInt(50), tc.orderStatus, time.Now())
		if tx.Status != tc.want {
			t.Errorf("order status %s: got %s, want %s", tc.orderStatus, tx.Status, tc.want)
		}
	}
}
