package ordini

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Event is published whenever an order is created or changes status. The
// kitchen consumes preparing events and answers with ready events, which
// the service applies through MarkReady.
type Event struct {
	EventID string    `json:"event_id"`
	OrderID int       `json:"order_id"`
	Pizza   string    `json:"pizza"`
	Status  Status    `json:"status"`
	Address string    `json:"address"`
	At      time.Time `json:"at"`
}

func NewEvent(o Order) Event {
	return Event{
		EventID: uuid.New().String(),
		OrderID: o.ID,
		Pizza:   o.Pizza,
		Status:  o.Status,
		Address: o.Address,
		At:      time.Now().UTC(),
	}
}

type OrderEventer interface {
	PubEvent(ctx context.Context, ev Event) error
	SubEvents(ctx context.Context) (<-chan Event, error)
	UnsubEvents(ctx context.Context, ch <-chan Event) error
}

// ChannelOrderEventer fans events out to in-process subscribers. It backs
// runs without a NATS server and the tests.
type ChannelOrderEventer struct {
	mu          sync.Mutex
	subscribers map[<-chan Event]chan Event
	channelSize int
}

var _ OrderEventer = (*ChannelOrderEventer)(nil)

func NewChannelOrderEventer(channelSize int) *ChannelOrderEventer {
	return &ChannelOrderEventer{
		subscribers: make(map[<-chan Event]chan Event),
		channelSize: channelSize,
	}
}

// PubEvent implements OrderEventer.
func (g *ChannelOrderEventer) PubEvent(ctx context.Context, ev Event) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	for _, subChan := range g.subscribers {
		select {
		case subChan <- ev:
		default:
			slog.WarnContext(ctx, "subscriber is slow, dropping event",
				slog.String("event_id", ev.EventID),
				slog.Int("order_id", ev.OrderID))
		}
	}
	return nil
}

// SubEvents implements OrderEventer.
func (g *ChannelOrderEventer) SubEvents(ctx context.Context) (<-chan Event, error) {
	ch := make(chan Event, g.channelSize)

	g.mu.Lock()
	g.subscribers[ch] = ch
	g.mu.Unlock()

	return ch, nil
}

// UnsubEvents implements OrderEventer.
func (g *ChannelOrderEventer) UnsubEvents(ctx context.Context, ch <-chan Event) error {
	g.mu.Lock()
	delete(g.subscribers, ch)
	g.mu.Unlock()
	return nil
}
