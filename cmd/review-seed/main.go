// Package main loads review fixtures into a local database.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	reviewseedcmd "github.com/ftcplatform/platform/internal/cmd/reviewseed"
	"github.com/ftcplatform/platform/internal/platform/config"
)

func main() {
	cfg, err := reviewseedcmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatalf("parse flags: %v", err)
	}
	log.SetPrefix("[REVIEW-SEED] ")
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := reviewseedcmd.Run(ctx, cfg, os.Stdout); err != nil {
		config.Exitf("seed: %v", err)
	}
}
