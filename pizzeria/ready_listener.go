package main

import (
	"context"
	"log/slog"

	"github.com/taldoflemis/fornello/ordini"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// readyListener watches the event stream for kitchen "ready" events and
// applies the preparing to ready_to_be_delivered transition. The kitchen
// never touches the order table directly.
type readyListener struct {
	svc     *ordini.Service
	eventer ordini.OrderEventer
}

func newReadyListener(svc *ordini.Service, eventer ordini.OrderEventer) *readyListener {
	return &readyListener{svc: svc, eventer: eventer}
}

func (l *readyListener) Run(ctx context.Context) error {
	ch, err := l.eventer.SubEvents(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := l.eventer.UnsubEvents(ctx, ch); err != nil {
			slog.ErrorContext(ctx, "failed to unsubscribe ready listener", slog.Any("err", err))
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-ch:
			if ev.Status != ordini.StatusReady {
				continue
			}
			l.handleReady(ctx, ev)
		}
	}
}

func (l *readyListener) handleReady(ctx context.Context, ev ordini.Event) {
	ctx, span := tracer.Start(ctx, "readyListener.handleReady", trace.WithAttributes(
		attribute.Int("order.id", ev.OrderID),
		attribute.String("event.id", ev.EventID),
	))
	defer span.End()

	if _, err := l.svc.MarkReady(ctx, ev.OrderID); err != nil {
		// A canceled order can race with the kitchen finishing it; the
		// cancellation wins.
		slog.WarnContext(ctx, "could not mark order ready",
			slog.Int("order_id", ev.OrderID),
			slog.Any("err", err))
		return
	}

	slog.InfoContext(ctx, "order is ready to be delivered", slog.Int("order_id", ev.OrderID))
}
