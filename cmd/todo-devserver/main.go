// Command todo-devserver runs the in-memory to-do backend for local use.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/existflow/todoisland/internal/fakeapi"
	"github.com/existflow/todoisland/internal/logger"
)

func main() {
	addr := flag.String("addr", ":8080", "listen address")
	secret := flag.String("secret", os.Getenv("TODOISLAND_DEV_SECRET"), "token signing secret (random when empty)")
	ttl := flag.Duration("token-ttl", 24*time.Hour, "access token lifetime")
	verbose := flag.Bool("v", false, "log every request")
	flag.Parse()

	logConfig := logger.DefaultConfig()
	logConfig.FilePath = ""
	logConfig.Console = true
	if *verbose {
		logConfig.Level = logger.DEBUG
	}
	if err := logger.Init(logConfig); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = logger.Close() }()

	srv := fakeapi.New(fakeapi.Options{Secret: []byte(*secret), TokenTTL: *ttl})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("Dev server starting", logger.F("addr", *addr))
		if err := srv.Start(*addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed", logger.F("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Shutdown failed", logger.F("error", err))
	}
	logger.Info("Dev server stopped")
}
