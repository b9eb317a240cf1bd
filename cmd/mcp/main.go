package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	mcpadapter "github.com/grievease/petition-triage/internal/adapters/mcp"
	"github.com/grievease/petition-triage/internal/bootstrap"
	"github.com/grievease/petition-triage/internal/config"
	"github.com/grievease/petition-triage/internal/observability/logging"
)

// Stdout carries the protocol, so logs go to stderr.
func main() {
	cfg := config.Load()
	logger := logging.New(os.Stderr, "mcp", cfg.LogLevel, "json")
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, bootstrap.Options{Logger: logger, WithoutQueue: true})
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	server := mcpadapter.NewServer(mcpadapter.Services{
		Advisor: app.AdvisorUC,
		Catalog: app.CatalogUC,
		Reader:  app.ReadUC,
	}, logger)
	if err := server.Serve(ctx, os.Stdin, os.Stdout); err != nil {
		logger.Error("mcp_server_stopped", "error", err)
	}
}
