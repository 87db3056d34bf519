package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/taldoflemis/fornello/dispensa/telemetry"
	"github.com/taldoflemis/fornello/ordini"
)

func main() {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer stop()
	retcode := 0
	defer func() {
		os.Exit(retcode)
	}()

	slog.InfoContext(ctx, "Launching cucina")

	slog.InfoContext(ctx, "Loading config")
	settings, err := LoadConfig()
	if err != nil {
		slog.ErrorContext(ctx, "failed to load config", slog.Any("err", err))
		retcode = 1
		return
	}

	slog.InfoContext(ctx, "Setting up opentelemetry")
	otelShutdown, err := telemetry.SetupOTelSDK(ctx, settings.App, settings.OpenTelemetry)
	if err != nil {
		slog.Error("failed to setup telemetry", slog.Any("err", err))
		retcode = 1
		return
	}

	defer func() {
		err = errors.Join(err, otelShutdown(context.Background()))
		if err != nil {
			slog.ErrorContext(
				ctx,
				"failed to shutdown opentelemetry providers",
				slog.Any("err", err),
			)
			retcode = 1
		}
	}()

	slog.InfoContext(ctx, "Connecting to NATS server")
	nc, err := settings.Nats.Connect()
	if err != nil {
		slog.ErrorContext(ctx, "failed to connect to NATS server", slog.Any("err", err))
		retcode = 1
		return
	}

	eventer := ordini.NewNATSOrderEventer(nc, settings.Cucina.SubjectPrefix, settings.Cucina.EventChannelSize)

	kitchen, err := newCucina(settings.Cucina, eventer)
	if err != nil {
		slog.ErrorContext(ctx, "failed to create kitchen", slog.Any("err", err))
		retcode = 1
		return
	}

	errChan := make(chan error)
	go func() {
		if err := kitchen.Run(ctx); err != nil {
			errChan <- err
		}
	}()

	select {
	case err = <-errChan:
		slog.ErrorContext(ctx, "kitchen stopped", slog.Any("err", err))
		retcode = 1
		return
	case <-ctx.Done():
		// Wait for first Signal arrives
	}

	slog.InfoContext(ctx, "Kitchen is closed")
}
