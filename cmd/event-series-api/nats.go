// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/linuxfoundation/lfx-v2-event-series-service/internal/domain"
	"github.com/linuxfoundation/lfx-v2-event-series-service/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-event-series-service/internal/infrastructure/messaging"
	"github.com/linuxfoundation/lfx-v2-event-series-service/internal/infrastructure/store"
	"github.com/linuxfoundation/lfx-v2-event-series-service/internal/logging"
)

// natsConnTimeout is how long to wait for the initial NATS connection.
const natsConnTimeout = 10 * time.Second

// natsDrainTimeout bounds how long a graceful shutdown waits for in-flight
// messages to finish.
const natsDrainTimeout = 25 * time.Second

// repositories holds the key-value backed repositories of the service.
type repositories struct {
	Template  *store.NatsTemplateRepository
	Exception *store.NatsExceptionRepository
}

// setupNATS connects to the NATS server used for both messaging and storage.
func setupNATS(_ context.Context, env environment, gracefulCloseWG *sync.WaitGroup, done chan os.Signal) (*nats.Conn, error) {
	natsConn, err := nats.Connect(
		env.NatsURL,
		nats.DrainTimeout(natsDrainTimeout),
		nats.ConnectHandler(func(_ *nats.Conn) {
			slog.With("nats_url", env.NatsURL).Info("NATS connection established")
		}),
		nats.ErrorHandler(func(_ *nats.Conn, s *nats.Subscription, err error) {
			if s != nil {
				slog.With(logging.ErrKey, err, "subject", s.Subject, "queue", s.Queue).Error("async NATS error")
			} else {
				slog.With(logging.ErrKey, err).Error("async NATS error outside subscription")
			}
		}),
		nats.ClosedHandler(func(_ *nats.Conn) {
			slog.Info("NATS connection closed")
			gracefulCloseWG.Done()
			// If the connection closes without a shutdown signal, trigger one so
			// that the process does not linger without its transport.
			select {
			case done <- os.Interrupt:
			default:
			}
		}),
		nats.Timeout(natsConnTimeout),
	)
	if err != nil {
		return nil, err
	}

	// Matched by the Done call in the ClosedHandler.
	gracefulCloseWG.Add(1)

	return natsConn, nil
}

// getKeyValueStores provisions the JetStream key-value buckets and wraps them
// in the service repositories.
func getKeyValueStores(ctx context.Context, natsConn *nats.Conn) (*repositories, error) {
	js, err := jetstream.New(natsConn)
	if err != nil {
		slog.With(logging.ErrKey, err).Error("error creating JetStream context")
		return nil, err
	}

	templateKV, err := js.CreateOrUpdateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:  store.KVStoreNameEventTemplates,
		History: 20,
	})
	if err != nil {
		slog.With(logging.ErrKey, err, "bucket", store.KVStoreNameEventTemplates).Error("error creating key-value bucket")
		return nil, err
	}

	exceptionKV, err := js.CreateOrUpdateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:  store.KVStoreNameOccurrenceExceptions,
		History: 20,
	})
	if err != nil {
		slog.With(logging.ErrKey, err, "bucket", store.KVStoreNameOccurrenceExceptions).Error("error creating key-value bucket")
		return nil, err
	}

	return &repositories{
		Template:  store.NewNatsTemplateRepository(templateKV),
		Exception: store.NewNatsExceptionRepository(exceptionKV),
	}, nil
}

// createNatsSubscriptions subscribes the message handler to every subject the
// service owns, all sharing the API queue group.
func createNatsSubscriptions(ctx context.Context, handler domain.MessageHandler, natsConn *nats.Conn) error {
	subjects := []string{
		models.EventSeriesGetTitleSubject,
		models.EventSeriesMaterializeSubject,
		models.EventSeriesPreviewSubject,
		models.EventSeriesExportICSSubject,
		models.TemplateDeletedSubject,
		models.TemplateUpdatedSubject,
	}

	for _, subject := range subjects {
		_, err := natsConn.QueueSubscribe(subject, models.EventSeriesAPIQueue, func(m *nats.Msg) {
			handler.HandleMessage(ctx, messaging.NewNATSMessage(m))
		})
		if err != nil {
			slog.With(logging.ErrKey, err, "subject", subject).Error("error creating NATS subscription")
			return err
		}
		slog.With("subject", subject, "queue", models.EventSeriesAPIQueue).Debug("created NATS subscription")
	}

	return nil
}

// gracefulShutdown stops the HTTP server, drains the NATS connection and
// waits for both to finish.
func gracefulShutdown(httpServer *http.Server, natsConn *nats.Conn, gracefulCloseWG *sync.WaitGroup, cancel context.CancelFunc) {
	slog.Info("shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 25*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.With(logging.ErrKey, err).Error("error shutting down http server")
	}
	gracefulCloseWG.Done()

	if natsConn != nil && !natsConn.IsClosed() {
		// Drain unsubscribes, waits for in-flight handlers and then closes the
		// connection, which fires the ClosedHandler.
		if err := natsConn.Drain(); err != nil {
			slog.With(logging.ErrKey, err).Error("error draining NATS connection")
			natsConn.Close()
		}
	}

	gracefulCloseWG.Wait()
	slog.Info("shutdown complete")
}
