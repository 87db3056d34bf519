// Package ordini holds the order-management core: the menu, the user
// registry and the order lifecycle. Everything lives in memory and every
// mutation goes through a single lock.
package ordini

import (
	"sync"

	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("ordini")

type Status string

const (
	StatusPreparing Status = "preparing"
	StatusReady     Status = "ready_to_be_delivered"
	StatusCanceled  Status = "canceled"
)

const (
	maxPizzaNameLen = 50
	maxUsernameLen  = 50
	maxAddressLen   = 100
)

// Order is a placed purchase request. Pizza is the lower-cased name the
// order was matched against the menu with; it is a snapshot, deleting the
// menu entry afterwards does not touch the order.
type Order struct {
	ID      int
	Pizza   string
	Status  Status
	Address string
}

// Service owns the three collections. One lock guards all of them so that
// order ID allocation and positional menu deletes stay atomic under
// concurrent requests.
type Service struct {
	mu     sync.RWMutex
	menu   []string
	users  map[string]string
	orders map[int]*Order
}

func NewService(menu []string) *Service {
	return &Service{
		menu:   append([]string(nil), menu...),
		users:  make(map[string]string),
		orders: make(map[int]*Order),
	}
}
