package gate

import (
	"sync"
	"time"

	"github.com/flexiworks/cetpredict/internal/payment/domain"
)

// Gate is the authoritative record of which orders are confirmed paid. The
// webhook and poll paths both write through MarkPaid, which can race for the
// same id; the end state after any interleaving equals a single call.
type Gate struct {
	mu     sync.Mutex
	orders map[string]domain.Order
	paid   map[string]struct{}
}

func New() *Gate {
	return &Gate{
		orders: make(map[string]domain.Order),
		paid:   make(map[string]struct{}),
	}
}

// Track registers a created order so payment-status can tell known orders
// from ids this process never issued.
func (g *Gate) Track(order domain.Order) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now().UTC()
	}
	order.Status = domain.OrderCreated
	g.orders[order.ID] = order
}

// MarkPaid idempotently transitions an order to paid. Returns true on the
// first transition, false when the id was already paid.
func (g *Gate) MarkPaid(orderID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.paid[orderID]; ok {
		return false
	}
	g.paid[orderID] = struct{}{}

	if order, ok := g.orders[orderID]; ok {
		order.Status = domain.OrderPaid
		g.orders[orderID] = order
	}
	return true
}

// IsPaid reports whether the order has been confirmed. Ids never seen read
// as false.
func (g *Gate) IsPaid(orderID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	_, ok := g.paid[orderID]
	return ok
}

// Order returns the tracked order, if this process issued it.
func (g *Gate) Order(orderID string) (domain.Order, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	order, ok := g.orders[orderID]
	return order, ok
}
