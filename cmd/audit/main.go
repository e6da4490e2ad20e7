// Package main runs a single audit session from the command line and
// prints every notification to stdout. Useful for smoke-testing the
// remote service without a Telegram bot in the loop.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"blockrover/internal/cache"
	"blockrover/internal/domain"
	"blockrover/internal/gateway"
	"blockrover/internal/storage/memory"
	"blockrover/internal/tracker"
)

func main() {
	baseURL := flag.String("base-url", os.Getenv("AUDIT_API_BASE_URL"), "Remote audit service base URL")
	refBaseURL := flag.String("reference-base-url", os.Getenv("AUDIT_REFERENCE_BASE_URL"), "Base URL for finding reference links")
	pollInterval := flag.Duration("poll-interval", 2*time.Second, "Audit status poll interval")
	maxPollFailures := flag.Int("max-poll-failures", 0, "Consecutive transport failures before giving up (0 = retry forever)")
	timeout := flag.Duration("timeout", 30*time.Second, "HTTP request timeout")
	flag.Parse()

	if *baseURL == "" {
		fmt.Fprintln(os.Stderr, "Error: --base-url is required (or AUDIT_API_BASE_URL)")
		os.Exit(1)
	}
	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: audit [flags] <contract-address>")
		os.Exit(1)
	}

	addr, err := domain.ParseAddress(flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid contract address: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		fmt.Fprintf(os.Stderr, "\nReceived signal %v, cancelling audit...\n", sig)
		cancel()
	}()

	logger := log.New(os.Stderr, "[audit] ", log.LstdFlags)

	session := tracker.NewSession(tracker.SessionOptions{
		Address:         addr,
		Gateway:         gateway.NewClient(*baseURL, gateway.WithTimeout(*timeout)),
		RefBaseURL:      *refBaseURL,
		PollInterval:    *pollInterval,
		MaxPollFailures: *maxPollFailures,
		Snapshots:       cache.NewMemoryCache(cache.DefaultTTL),
		Archive:         memory.NewSessionStore(),
		Recorder:        memory.NewStatusEventStore(),
		Logger:          logger,
	})

	errCh := make(chan error, 1)
	go func() { errCh <- session.Run(ctx) }()

	for n := range session.Events() {
		fmt.Println(n.Text)
		fmt.Println("---")
	}

	if err := <-errCh; err != nil {
		fmt.Fprintf(os.Stderr, "Audit session failed: %v\n", err)
		os.Exit(1)
	}
}
