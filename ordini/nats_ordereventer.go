package ordini

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/nats-io/nats.go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
)

// NATSOrderEventer publishes lifecycle events on <prefix>.<phase> subjects
// and subscribes to the whole <prefix> tree. The trace context rides in
// the NATS message headers.
type NATSOrderEventer struct {
	nc          *nats.Conn
	prefix      string
	mu          sync.Mutex
	subs        map[<-chan Event]*nats.Subscription
	channelSize int
}

var _ OrderEventer = (*NATSOrderEventer)(nil)

func NewNATSOrderEventer(nc *nats.Conn, prefix string, channelSize int) *NATSOrderEventer {
	return &NATSOrderEventer{
		nc:          nc,
		prefix:      prefix,
		subs:        make(map[<-chan Event]*nats.Subscription),
		channelSize: channelSize,
	}
}

func (n *NATSOrderEventer) subjectFor(ev Event) string {
	switch ev.Status {
	case StatusReady:
		return fmt.Sprintf("%s.ready.%d", n.prefix, ev.OrderID)
	case StatusCanceled:
		return fmt.Sprintf("%s.canceled.%d", n.prefix, ev.OrderID)
	default:
		return n.prefix + ".placed"
	}
}

// PubEvent implements OrderEventer.
func (n *NATSOrderEventer) PubEvent(ctx context.Context, ev Event) error {
	propagator := otel.GetTextMapPropagator()
	msg := &nats.Msg{
		Subject: n.subjectFor(ev),
		Header:  nats.Header{},
	}
	propagator.Inject(ctx, propagation.HeaderCarrier(msg.Header))

	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	msg.Data = data

	return n.nc.PublishMsg(msg)
}

// SubEvents implements OrderEventer.
func (n *NATSOrderEventer) SubEvents(ctx context.Context) (<-chan Event, error) {
	ctx, span := tracer.Start(ctx, "NATSOrderEventer.SubEvents")
	defer span.End()

	propagator := otel.GetTextMapPropagator()

	eventCh := make(chan Event, n.channelSize)
	sub, err := n.nc.Subscribe(n.prefix+".>", func(msg *nats.Msg) {
		msgCtx := propagator.Extract(ctx, propagation.HeaderCarrier(msg.Header))

		var ev Event
		if err := json.Unmarshal(msg.Data, &ev); err != nil {
			slog.ErrorContext(msgCtx, "failed to unmarshal event from NATS message", slog.Any("err", err))
			return
		}

		select {
		case eventCh <- ev:
		default:
			slog.WarnContext(msgCtx, "subscriber is slow, dropping event",
				slog.String("event_id", ev.EventID),
				slog.Int("order_id", ev.OrderID))
		}
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to subscribe to NATS subject", slog.String("subject", n.prefix+".>"), slog.Any("err", err))
		span.SetStatus(codes.Error, "failed to subscribe to NATS subject")
		span.RecordError(err)
		return nil, err
	}

	n.mu.Lock()
	n.subs[eventCh] = sub
	n.mu.Unlock()

	return eventCh, nil
}

// UnsubEvents implements OrderEventer.
func (n *NATSOrderEventer) UnsubEvents(ctx context.Context, ch <-chan Event) error {
	_, span := tracer.Start(ctx, "NATSOrderEventer.UnsubEvents")
	defer span.End()

	n.mu.Lock()
	defer n.mu.Unlock()

	sub, ok := n.subs[ch]
	if !ok {
		slog.WarnContext(ctx, "no subscription found for channel")
		return nil
	}

	if err := sub.Unsubscribe(); err != nil {
		return err
	}
	delete(n.subs, ch)

	return nil
}
