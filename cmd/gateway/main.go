package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/rs/zerolog"

	"github.com/chatbridge/go-wa-gateway/internal/config"
	"github.com/chatbridge/go-wa-gateway/pairing"
	"github.com/chatbridge/go-wa-gateway/server"
	"github.com/chatbridge/go-wa-gateway/sessions"
	"github.com/chatbridge/go-wa-gateway/supervisor"
	"github.com/chatbridge/go-wa-gateway/walink"
	"github.com/chatbridge/go-wa-gateway/webhook"
)

func main() {
	for {
		if err := run(); err != nil {
			log.Fatalf("Error running server: %s\n", err)
			time.Sleep(1 * time.Second)
		} else {
			break
		}
	}
	log.Printf("Server stopped\n")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Recovered from panic: %v\n", r)
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	c := config.New()
	displayAppname(c.GetAppName())
	logger := newLogger(c)

	dispatcher := webhook.NewDispatcher(webhook.Options{
		Timeout:       c.GetWebhookTimeout(),
		QueueSize:     c.GetWebhookQueueSize(),
		SigningSecret: c.GetWebhookSigningSecret(),
	}, logger)

	registry := sessions.NewInMemoryRegistry()
	sup := supervisor.New(
		registry,
		walink.NewStore(c.GetDataFolder()),
		walink.NewDialer(),
		dispatcher,
		pairing.NewWaiter(),
		supervisor.Options{
			PairingWait: c.GetPairingWait(),
			Backoff: supervisor.BackoffConfig{
				InitialDelay: c.GetReconnectInitialDelay(),
				MaxDelay:     c.GetReconnectMaxDelay(),
				Multiplier:   c.GetReconnectMultiplier(),
				MaxAttempts:  c.GetReconnectMaxAttempts(),
				Jitter:       true,
			},
		},
		logger,
	)

	httpServer := &http.Server{Addr: c.GetPort(), Handler: server.New(c, sup, registry, logger)}
	go listenAndServe(httpServer, logger)
	waitForStopSignal()
	returnError = shutdown(httpServer)
	dispatcher.Close()
	return returnError
}

func newLogger(c config.Config) zerolog.Logger {
	if c.GetEnv() == "DEV" {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stderr).With().Timestamp().Logger()
}

func listenAndServe(server *http.Server, logger zerolog.Logger) error {
	logger.Info().Str("addr", server.Addr).Msg("gateway listening")
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func waitForStopSignal() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
