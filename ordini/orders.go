package ordini

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const msgOrderIDPositive = "Order ID must be a positive integer"

// PlaceOrder validates the request and stores a new order with status
// preparing. When a username is given the stored address wins and any
// caller-supplied address is ignored; without one an explicit address is
// required.
func (s *Service) PlaceOrder(ctx context.Context, pizza, username, address string) (Order, error) {
	_, span := tracer.Start(ctx, "Service.PlaceOrder", trace.WithAttributes(
		attribute.String("order.pizza", pizza),
		attribute.String("order.username", username),
	))
	defer span.End()

	pizza = strings.ToLower(strings.TrimSpace(pizza))
	username = strings.TrimSpace(username)
	address = strings.TrimSpace(address)

	if pizza == "" {
		return Order{}, invalidArgument("Pizza field is required and cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.menuIndex(pizza) < 0 {
		return Order{}, invalidArgumentf("Pizza '%s' is not on the menu", pizza)
	}
	if username != "" {
		stored, ok := s.users[username]
		if !ok {
			return Order{}, invalidArgumentf("Username '%s' not registered", username)
		}
		address = stored
	}
	if address == "" {
		return Order{}, invalidArgument("Address is required for unregistered users")
	}

	// Orders are never deleted, so the table size doubles as a monotonic
	// counter. Allocation and insert happen under the same lock.
	id := len(s.orders) + 1
	order := &Order{ID: id, Pizza: pizza, Status: StatusPreparing, Address: address}
	s.orders[id] = order

	span.SetAttributes(attribute.Int("order.id", id))

	return *order, nil
}

// Order returns a snapshot of the order with the given ID.
func (s *Service) Order(ctx context.Context, id int) (Order, error) {
	_, span := tracer.Start(ctx, "Service.Order", trace.WithAttributes(
		attribute.Int("order.id", id),
	))
	defer span.End()

	if id <= 0 {
		return Order{}, invalidArgument(msgOrderIDPositive)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.orders[id]
	if !ok {
		return Order{}, notFoundf("Order with ID %d not found", id)
	}
	return *o, nil
}

// Cancel is the customer cancellation path. It is rejected once the order
// is ready to be delivered. Re-cancelling an already canceled order
// deliberately succeeds as a no-op.
func (s *Service) Cancel(ctx context.Context, id int) (Order, error) {
	_, span := tracer.Start(ctx, "Service.Cancel", trace.WithAttributes(
		attribute.Int("order.id", id),
	))
	defer span.End()

	if id <= 0 {
		return Order{}, invalidArgument(msgOrderIDPositive)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[id]
	if !ok {
		return Order{}, notFoundf("Order with ID %d not found", id)
	}
	if o.Status == StatusReady {
		return Order{}, invalidOperation("Cannot cancel an order that is 'ready_to_be_delivered'")
	}

	o.Status = StatusCanceled
	return *o, nil
}

// AdminCancel cancels unconditionally, bypassing the ready guard.
func (s *Service) AdminCancel(ctx context.Context, id int, asAdmin bool) (Order, error) {
	_, span := tracer.Start(ctx, "Service.AdminCancel", trace.WithAttributes(
		attribute.Int("order.id", id),
	))
	defer span.End()

	if !asAdmin {
		return Order{}, errUnauthorized()
	}
	if id <= 0 {
		return Order{}, invalidArgument(msgOrderIDPositive)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[id]
	if !ok {
		return Order{}, notFoundf("Order with ID %d not found", id)
	}

	o.Status = StatusCanceled
	return *o, nil
}

// MarkReady applies the out-of-band kitchen transition. Only a preparing
// order moves to ready; a canceled order stays canceled and an already
// ready order is left alone.
func (s *Service) MarkReady(ctx context.Context, id int) (Order, error) {
	_, span := tracer.Start(ctx, "Service.MarkReady", trace.WithAttributes(
		attribute.Int("order.id", id),
	))
	defer span.End()

	if id <= 0 {
		return Order{}, invalidArgument(msgOrderIDPositive)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[id]
	if !ok {
		return Order{}, notFoundf("Order with ID %d not found", id)
	}

	switch o.Status {
	case StatusCanceled:
		return Order{}, invalidOperation("Cannot mark a canceled order as ready")
	case StatusReady:
		return *o, nil
	}

	o.Status = StatusReady
	return *o, nil
}
