// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

// Package main is the event series service API that expands recurring event
// templates into occurrences and handles NATS messages for the service.
package main

import (
	"context"
	_ "expvar"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/linuxfoundation/lfx-v2-event-series-service/internal/handlers"
	"github.com/linuxfoundation/lfx-v2-event-series-service/internal/infrastructure/ical"
	"github.com/linuxfoundation/lfx-v2-event-series-service/internal/infrastructure/messaging"
	"github.com/linuxfoundation/lfx-v2-event-series-service/internal/logging"
	"github.com/linuxfoundation/lfx-v2-event-series-service/internal/service"
	"github.com/linuxfoundation/lfx-v2-event-series-service/pkg/utils"
)

func main() {
	env := parseEnv()
	flags := parseFlags(env.Port)

	logging.InitStructureLogConfig()

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	gracefulCloseWG := sync.WaitGroup{}

	// Set up the OpenTelemetry SDK; exporters are opt-in via OTEL_* variables.
	otelShutdown, err := utils.SetupOTelSDK(ctx)
	if err != nil {
		slog.With(logging.ErrKey, err).Error("error setting up OpenTelemetry SDK")
		return
	}
	defer func() {
		if err := otelShutdown(context.Background()); err != nil {
			slog.With(logging.ErrKey, err).Error("error shutting down OpenTelemetry SDK")
		}
	}()

	// Setup NATS connection
	natsConn, err := setupNATS(ctx, env, &gracefulCloseWG, done)
	if err != nil {
		slog.With(logging.ErrKey, err).Error("error setting up NATS")
		return
	}

	// Get the key-value stores for the service.
	repos, err := getKeyValueStores(ctx, natsConn)
	if err != nil {
		slog.With(logging.ErrKey, err).Error("error getting key-value stores")
		return
	}

	// Initialize services
	serviceConfig := service.ServiceConfig{
		SkipRevisionValidation: env.SkipRevisionValidation,
	}
	messageBuilder := messaging.NewMessageBuilder(natsConn)
	occurrenceService := service.NewOccurrenceService()
	templateService := service.NewTemplateService(
		repos.Template,
		occurrenceService,
		messageBuilder,
		serviceConfig,
	)
	exceptionService := service.NewExceptionService(
		repos.Template,
		repos.Exception,
		occurrenceService,
		messageBuilder,
		serviceConfig,
	)

	// Initialize handlers
	templateHandler := handlers.NewTemplateHandler(
		templateService,
		exceptionService,
		ical.NewFeedGenerator(),
	)

	httpServer := setupHTTPServer(flags, templateHandler, natsConn, &gracefulCloseWG)

	// Create NATS subscriptions for the service.
	err = createNatsSubscriptions(ctx, templateHandler, natsConn)
	if err != nil {
		slog.With(logging.ErrKey, err).Error("error creating NATS subscriptions")
		return
	}

	// This next line blocks until SIGINT or SIGTERM is received.
	<-done

	gracefulShutdown(httpServer, natsConn, &gracefulCloseWG, cancel)
}
