// Package ledger synthesizes payment transactions from orders. No real
// payment gateway is integrated; the records exist so the admin surface
// has a transaction view to render. Nothing here is ever persisted.
package ledger

import (
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/trendifymart/api/internal/enum"
)

// transactionNamespace seeds SHA1 UUID derivation so an order always
// maps to the same transaction ID across requests.
var transactionNamespace = uuid.MustParse("a7c3f8d2-41b6-4e09-9d27-5c8e1b0f6a34")

// Transaction is a synthesized payment record for one order.
type Transaction struct {
	ID          uuid.UUID       `json:"id"`
	OrderID     uuid.UUID       `json:"orderId"`
	Gateway     string          `json:"gateway"`
	Amount      decimal.Decimal `json:"amount"`
	Fee         decimal.Decimal `json:"fee"`
	Net         decimal.Decimal `json:"net"`
	Status      string          `json:"status"`
	ProcessedAt time.Time       `json:"processedAt"`
}

type feeSchedule struct {
	rate decimal.Decimal
	flat decimal.Decimal
}

var gatewayFees = map[string]feeSchedule{
	enum.GatewayStripe:   {rate: decimal.NewFromFloat(0.029), flat: decimal.NewFromFloat(0.30)},
	enum.GatewayPaypal:   {rate: decimal.NewFromFloat(0.0349), flat: decimal.NewFromFloat(0.49)},
	enum.GatewayRazorpay: {rate: decimal.NewFromFloat(0.02), flat: decimal.Zero},
}

var gateways = []string{enum.GatewayStripe, enum.GatewayPaypal, enum.GatewayRazorpay}

// Fabricator builds transactions. The random source is injected so tests
// can make gateway selection deterministic.
type Fabricator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewFabricator(rng *rand.Rand) *Fabricator {
	return &Fabricator{rng: rng}
}

// Fabricate derives a transaction for the given order. The ID is a
// SHA1-derived UUID of the order ID, so repeated calls for the same
// order agree on identity even though the gateway is re-rolled.
func (f *Fabricator) Fabricate(orderID uuid.UUID, amount decimal.Decimal, orderStatus string, processedAt time.Time) Transaction {
	f.mu.Lock()
	gateway := gateways[f.rng.Intn(len(gateways))]
	f.mu.Unlock()

	fees := gatewayFees[gateway]
	fee := amount.Mul(fees.rate).Add(fees.flat).Round(2)
	if fee.GreaterThan(amount) {
		fee = amount
	}

	return Transaction{
		ID:          uuid.NewSHA1(transactionNamespace, orderID[:]),
		OrderID:     orderID,
		Gateway:     gateway,
		Amount:      amount,
		Fee:         fee,
		Net:         amount.Sub(fee),
		Status:      statusForOrder(orderStatus),
		ProcessedAt: processedAt,
	}
}

// statusForOrder maps an order's fulfilment status onto a payment state:
// in-flight orders hold a pending charge, fulfilled orders a settled one,
// and cancelled orders a refund.
func statusForOrder(orderStatus string) string {
	switch orderStatus {
	case enum.OrderStatusShipped, enum.OrderStatusDelivered:
		return enum.TransactionStatusCompleted
	case enum.OrderStatusCancelled:
		return enum.TransactionStatusRefunded
	default:
		return enum.TransactionStatusPending
	}
}
