package main

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/taldoflemis/fornello/dispensa"
	"github.com/taldoflemis/fornello/ordini"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

var (
	tracer = otel.Tracer("cucina")
	meter  = otel.Meter("cucina")
)

// cucina consumes placed-order events, simulates preparation and answers
// with ready events. It never talks to the order table, the pizzeria
// applies the transition when the ready event comes back.
type cucina struct {
	settings        CucinaSettings
	eventer         ordini.OrderEventer
	preparedCounter metric.Int64Counter
	prepHistogram   metric.Float64Histogram
}

func newCucina(settings CucinaSettings, eventer ordini.OrderEventer) (*cucina, error) {
	preparedCounter, err := meter.Int64Counter(
		"cucina.orders.prepared",
		metric.WithDescription("Number of orders the kitchen has prepared"),
		metric.WithUnit("{order}"),
	)
	if err != nil {
		return nil, err
	}

	prepHistogram, err := meter.Float64Histogram(
		"cucina.prep.duration",
		metric.WithDescription("Duration of order preparation"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return &cucina{
		settings:        settings,
		eventer:         eventer,
		preparedCounter: preparedCounter,
		prepHistogram:   prepHistogram,
	}, nil
}

func (k *cucina) Run(ctx context.Context) error {
	ch, err := k.eventer.SubEvents(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := k.eventer.UnsubEvents(ctx, ch); err != nil {
			slog.ErrorContext(ctx, "failed to unsubscribe kitchen", slog.Any("err", err))
		}
	}()

	slog.InfoContext(ctx, "Kitchen is open")

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-ch:
			if ev.Status != ordini.StatusPreparing {
				continue
			}
			k.prepare(ctx, ev)
		}
	}
}

func (k *cucina) prepare(ctx context.Context, ev ordini.Event) {
	ctx, span := tracer.Start(ctx, "cucina.prepare", trace.WithAttributes(
		attribute.Int("order.id", ev.OrderID),
		attribute.String("order.pizza", ev.Pizza),
	))
	defer span.End()

	prepTime := computePrepTime(
		time.Duration(k.settings.PrepTimeInSeconds)*time.Second,
		k.settings.PrepVarianceFactor,
		rand.Float64(),
	)

	if dispensa.Chance(uint64(time.Now().UnixNano()), k.settings.ProbabilityOfRefire) {
		prepTime = time.Duration(float64(prepTime) * k.settings.RefireFactor)
		slog.InfoContext(ctx, "Pizza needs a refire",
			slog.Int("order_id", ev.OrderID),
			slog.Duration("new_prep_time", prepTime))
		span.SetAttributes(
			attribute.Bool("cucina.refired", true),
			attribute.Float64("cucina.refire-factor", k.settings.RefireFactor),
		)
	}

	slog.InfoContext(ctx, "Preparing order",
		slog.Int("order_id", ev.OrderID),
		slog.String("pizza", ev.Pizza),
		slog.Duration("prep_time", prepTime))

	time.Sleep(prepTime)

	k.preparedCounter.Add(ctx, 1)
	k.prepHistogram.Record(ctx, prepTime.Seconds())

	ready := ordini.NewEvent(ordini.Order{
		ID:      ev.OrderID,
		Pizza:   ev.Pizza,
		Status:  ordini.StatusReady,
		Address: ev.Address,
	})

	if err := k.eventer.PubEvent(ctx, ready); err != nil {
		slog.ErrorContext(ctx, "failed to publish ready event",
			slog.Int("order_id", ev.OrderID),
			slog.Any("err", err))
		span.SetStatus(codes.Error, "failed to publish ready event")
		span.RecordError(err)
		return
	}

	slog.InfoContext(ctx, "Order prepared", slog.Int("order_id", ev.OrderID))
}

// computePrepTime scales base by a factor between 1/varianceFactor and
// varianceFactor, picked by r in [0, 1).
func computePrepTime(base time.Duration, varianceFactor, r float64) time.Duration {
	minFactor := 1.0 / varianceFactor
	maxFactor := varianceFactor
	factor := minFactor + r*(maxFactor-minFactor)

	return time.Duration(float64(base) * factor)
}
