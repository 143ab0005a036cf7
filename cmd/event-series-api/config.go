// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package main

import (
	"flag"
	"log/slog"
	"os"

	"github.com/linuxfoundation/lfx-v2-event-series-service/internal/logging"
	"github.com/linuxfoundation/lfx-v2-event-series-service/pkg/utils"
)

// flags are the command line flags for the event series service.
type flags struct {
	Debug bool
	Port  string
	Bind  string
}

// environment are the environment variables for the event series service.
type environment struct {
	Port                   string
	NatsURL                string
	SkipRevisionValidation bool
}

// parseFlags parses command line flags for the event series service
func parseFlags(defaultPort string) flags {
	var debug = flag.Bool("d", false, "enable debug logging")
	var port = flag.String("p", defaultPort, "listen port")
	var bind = flag.String("bind", "*", "interface to bind on")

	flag.Usage = func() {
		flag.PrintDefaults()
		os.Exit(2)
	}
	flag.Parse()

	// Based on the debug flag, set the log level environment variable used by [logging.InitStructureLogConfig]
	if *debug {
		err := os.Setenv("LOG_LEVEL", "debug")
		if err != nil {
			slog.With(logging.ErrKey, err).Error("error setting log level")
			os.Exit(1)
		}
	}

	return flags{
		Debug: *debug,
		Port:  *port,
		Bind:  *bind,
	}
}

// parseEnv parses environment variables for the event series service
func parseEnv() environment {
	port := utils.CoalesceString(os.Getenv("PORT"), "8080")

	natsURL := utils.CoalesceString(os.Getenv("NATS_URL"), "nats://lfx-platform-nats.lfx.svc.cluster.local:4222")

	skipRevisionValidation := os.Getenv("SKIP_REVISION_VALIDATION") == "true"

	return environment{
		Port:                   port,
		NatsURL:                natsURL,
		SkipRevisionValidation: skipRevisionValidation,
	}
}
