// Package main runs the BlockRover Telegram audit bot: it listens for
// commands, runs audit sessions against the remote analysis service and
// keeps the chat updated while the audit progresses.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"blockrover/internal/cache"
	"blockrover/internal/config"
	"blockrover/internal/domain"
	"blockrover/internal/gateway"
	"blockrover/internal/notify"
	"blockrover/internal/storage"
	chstore "blockrover/internal/storage/clickhouse"
	"blockrover/internal/storage/memory"
	"blockrover/internal/storage/migrations"
	pgstore "blockrover/internal/storage/postgres"
	"blockrover/internal/tracker"
	"blockrover/internal/wsfeed"
)

const welcomeText = `🤖 Welcome to the BlockRover Telegram bot! 🤖

/audit - Full analysis of any erc20 smart contract.

/performance - Your recent audit history.

/block0 - First one in, first one out. The fastest DeFi trading bot, guaranteed.

/register - Register your wallet for air drops, early sniper access and more.`

func main() {
	loadEnvFile()

	configPath := flag.String("config", "config.yaml", "Path to YAML config file")
	flag.Parse()

	logger := log.New(os.Stdout, "[auditbot] ", log.LstdFlags)

	cfg := config.Default()
	if data, err := os.Stat(*configPath); err == nil && !data.IsDir() {
		cfg, err = config.LoadFile(*configPath)
		if err != nil {
			logger.Fatalf("Failed to load config %s: %v", *configPath, err)
		}
	}
	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		logger.Fatalf("Invalid config: %v", err)
	}
	if cfg.Telegram.BotToken == "" {
		logger.Fatal("telegram.bot_token is required (or TELEGRAM_BOT_TOKEN)")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stores, storeCleanup, err := createStores(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("Failed to create stores: %v", err)
	}
	defer storeCleanup()

	snapshots, cacheCleanup, err := createSnapshotCache(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("Failed to create snapshot cache: %v", err)
	}
	defer cacheCleanup()

	gw := gateway.NewClient(cfg.Gateway.BaseURL, gateway.WithTimeout(cfg.Gateway.Timeout))

	var hub *wsfeed.Hub
	if cfg.Feed.Enabled {
		hub = wsfeed.NewHub(nil, logger)
		defer hub.Close()
		go serveFeed(ctx, cfg.Feed.Addr, hub, logger)
	}

	bot := &auditBot{
		api:       notify.NewBot(cfg.Telegram.BotToken),
		gw:        gw,
		cfg:       cfg,
		snapshots: snapshots,
		stores:    stores,
		hub:       hub,
		logger:    logger,
	}

	done := make(chan struct{})
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, initiating graceful shutdown...", sig)
		cancel()

		select {
		case sig := <-sigCh:
			logger.Printf("Received second signal %v, forcing immediate shutdown", sig)
			os.Exit(1)
		case <-time.After(30 * time.Second):
			logger.Println("Graceful shutdown timed out after 30s, forcing exit")
			os.Exit(1)
		case <-done:
		}
	}()

	logger.Println("🤖 blockrover bot is started!")
	bot.run(ctx)
	close(done)
	logger.Println("Shutdown complete")
}

// botStores groups the persistence backends the bot uses.
type botStores struct {
	sessions storage.SessionStore
	events   storage.StatusEventStore
}

// auditBot owns the long-poll loop and per-chat session handling.
type auditBot struct {
	api       *notify.Bot
	gw        *gateway.Client
	cfg       config.Config
	snapshots cache.SnapshotCache
	stores    *botStores
	hub       *wsfeed.Hub
	logger    *log.Logger
}

// run long-polls for updates until the context is cancelled.
func (b *auditBot) run(ctx context.Context) {
	var offset int64
	for {
		if ctx.Err() != nil {
			return
		}

		updates, err := b.api.GetUpdates(ctx, offset, notify.DefaultPollTimeout)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			b.logger.Printf("get updates: %v", err)
			select {
			case <-time.After(2 * time.Second):
			case <-ctx.Done():
				return
			}
			continue
		}

		for _, u := range updates {
			if u.UpdateID >= offset {
				offset = u.UpdateID + 1
			}
			if u.Message == nil || u.Message.Text == "" {
				continue
			}
			b.dispatch(ctx, u.Message)
		}
	}
}

// dispatch routes one incoming message to its command handler.
func (b *auditBot) dispatch(ctx context.Context, msg *notify.Message) {
	fields := strings.Fields(msg.Text)
	if len(fields) == 0 {
		return
	}
	command := fields[0]
	args := fields[1:]

	switch {
	case strings.HasPrefix(command, "/start"):
		b.reply(ctx, msg.Chat.ID, welcomeText)
	case strings.HasPrefix(command, "/audit"):
		b.handleAudit(ctx, msg.Chat.ID, args)
	case strings.HasPrefix(command, "/register"):
		b.handleRegister(ctx, msg.Chat.ID, args)
	case strings.HasPrefix(command, "/performance"):
		b.handlePerformance(ctx, msg.Chat.ID)
	case strings.HasPrefix(command, "/block0"):
		b.reply(ctx, msg.Chat.ID, "Coming soon... 🔒")
	}
}

func (b *auditBot) reply(ctx context.Context, chatID int64, text string) {
	if _, err := b.api.SendMessage(ctx, chatID, text); err != nil {
		b.logger.Printf("send message: %v", err)
	}
}

// handleAudit validates the address and runs the audit session in the
// background so other chats stay responsive.
func (b *auditBot) handleAudit(ctx context.Context, chatID int64, args []string) {
	if len(args) == 0 {
		b.reply(ctx, chatID, "Please provide a contract address")
		return
	}
	addr, err := domain.ParseAddress(args[0])
	if err != nil {
		b.reply(ctx, chatID, "Please provide a valid contract address (e.g. /audit 0x1234...)")
		return
	}

	go b.runAuditSession(ctx, chatID, addr)
}

// runAuditSession drives one audit session and mirrors its notifications
// into the chat: the main message carries the report, a second message
// tracks audit progress and disappears once the final report lands.
func (b *auditBot) runAuditSession(ctx context.Context, chatID int64, addr domain.ContractAddress) {
	mainID, err := b.api.SendMessage(ctx, chatID, "Loading insights...")
	if err != nil {
		b.logger.Printf("audit %s: send placeholder: %v", addr, err)
		return
	}

	session := tracker.NewSession(tracker.SessionOptions{
		Address:         addr,
		Gateway:         b.gw,
		RefBaseURL:      b.cfg.Gateway.ReferenceBaseURL,
		PollInterval:    b.cfg.Tracker.PollInterval,
		MaxPollFailures: b.cfg.Tracker.MaxPollFailures,
		Snapshots:       b.snapshots,
		Archive:         b.stores.sessions,
		Recorder:        b.stores.events,
		Logger:          b.logger,
	})

	errCh := make(chan error, 1)
	go func() { errCh <- session.Run(ctx) }()

	progressID := 0
	for n := range session.Events() {
		b.broadcast(session.ID(), addr, n)

		switch n.Kind {
		case tracker.KindReport:
			if err := b.api.EditMessageText(ctx, chatID, mainID, n.Text); err != nil {
				b.logger.Printf("audit %s: edit report: %v", addr, err)
			}
		case tracker.KindProgress:
			if progressID == 0 {
				progressID, err = b.api.SendMessage(ctx, chatID, n.Text)
				if err != nil {
					b.logger.Printf("audit %s: send progress: %v", addr, err)
				}
			} else if err := b.api.EditMessageText(ctx, chatID, progressID, n.Text); err != nil {
				b.logger.Printf("audit %s: edit progress: %v", addr, err)
			}
		case tracker.KindFinal:
			if err := b.api.EditMessageText(ctx, chatID, mainID, n.Text); err != nil {
				b.logger.Printf("audit %s: edit final: %v", addr, err)
			}
			if progressID != 0 {
				if err := b.api.DeleteMessage(ctx, chatID, progressID); err != nil {
					b.logger.Printf("audit %s: delete progress: %v", addr, err)
				}
				progressID = 0
			}
		}
	}

	if err := <-errCh; err != nil && !errors.Is(err, context.Canceled) {
		b.logger.Printf("audit %s: session failed: %v", addr, err)
	}
}

func (b *auditBot) handleRegister(ctx context.Context, chatID int64, args []string) {
	if len(args) == 0 {
		b.reply(ctx, chatID, "Please provide a valid address (e.g. /register 0x1234...)")
		return
	}
	addr, err := domain.ParseAddress(args[0])
	if err != nil {
		b.reply(ctx, chatID, "Please provide a valid address (e.g. /register 0x1234...)")
		return
	}

	if err := b.gw.Register(ctx, addr); err != nil {
		b.logger.Printf("register %s: %v", addr, err)
		b.reply(ctx, chatID, tracker.ErrorText(""))
		return
	}
	b.reply(ctx, chatID, "Registered Successfully! ✅")
}

// handlePerformance lists the most recent archived audit sessions.
func (b *auditBot) handlePerformance(ctx context.Context, chatID int64) {
	records, err := b.stores.sessions.ListRecent(ctx, 10)
	if err != nil {
		b.logger.Printf("list recent sessions: %v", err)
		b.reply(ctx, chatID, tracker.ErrorText(""))
		return
	}
	if len(records) == 0 {
		b.reply(ctx, chatID, "No audits yet. Run /audit <address> to get started.")
		return
	}

	var sb strings.Builder
	sb.WriteString("📈 *Recent audits*\n")
	for _, rec := range records {
		mark := "✅"
		if rec.Status == domain.StatusErrored {
			mark = "❌"
		}
		fmt.Fprintf(&sb, "\n%s `%s` — %s, %d issue(s)", mark, rec.Address, rec.Status, rec.IssueCount)
	}
	b.reply(ctx, chatID, sb.String())
}

// broadcast mirrors a notification to the WebSocket feed, if enabled.
func (b *auditBot) broadcast(sessionID string, addr domain.ContractAddress, n tracker.Notification) {
	if b.hub == nil {
		return
	}
	b.hub.Broadcast(wsfeed.Event{
		SessionID: sessionID,
		Address:   addr.String(),
		Kind:      wsfeed.KindString(n.Kind),
		Text:      n.Text,
		Timestamp: time.Now().UnixMilli(),
	})
}

// serveFeed runs the WebSocket feed endpoint until the context ends.
func serveFeed(ctx context.Context, addr string, hub *wsfeed.Hub, logger *log.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/ws", hub)

	server := &http.Server{Addr: addr, Handler: mux}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	logger.Printf("WebSocket feed listening on %s", addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Printf("feed server: %v", err)
	}
}

// createStores wires the session archive and analytics stores, durable
// or in-memory per config.
func createStores(ctx context.Context, cfg config.Config, logger *log.Logger) (*botStores, func(), error) {
	if cfg.Storage.UseMemory {
		stores := &botStores{
			sessions: memory.NewSessionStore(),
			events:   memory.NewStatusEventStore(),
		}
		return stores, func() {}, nil
	}

	pool, err := pgstore.NewPool(ctx, cfg.Storage.PostgresDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("postgres migrations: %w", err)
	}

	chConn, err := migrations.RunClickhouseMigrations(ctx, cfg.Storage.ClickhouseDSN)
	if err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("clickhouse migrations: %w", err)
	}

	stores := &botStores{
		sessions: pgstore.NewSessionStore(pool),
		events:   chstore.NewStatusEventStore(chConn),
	}
	cleanup := func() {
		pool.Close()
		if err := chConn.Close(); err != nil {
			logger.Printf("close clickhouse: %v", err)
		}
	}
	return stores, cleanup, nil
}

// createSnapshotCache picks Redis when configured, process memory otherwise.
func createSnapshotCache(ctx context.Context, cfg config.Config, logger *log.Logger) (cache.SnapshotCache, func(), error) {
	if cfg.Cache.RedisAddr == "" {
		return cache.NewMemoryCache(cfg.Cache.TTL), func() {}, nil
	}

	rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{
		Address:  cfg.Cache.RedisAddr,
		Password: cfg.Cache.RedisPassword,
		DB:       cfg.Cache.RedisDB,
		TTL:      cfg.Cache.TTL,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("connect to redis: %w", err)
	}
	logger.Printf("Snapshot cache backed by redis at %s", cfg.Cache.RedisAddr)

	cleanup := func() {
		if err := rc.Close(); err != nil {
			logger.Printf("close redis: %v", err)
		}
	}
	return rc, cleanup, nil
}

// loadEnvFile loads .env into the environment without overriding
// variables that are already set.
func loadEnvFile() {
	data, err := os.ReadFile(".env")
	if err != nil {
		return
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		if os.Getenv(key) == "" {
			os.Setenv(key, value)
		}
	}
}
