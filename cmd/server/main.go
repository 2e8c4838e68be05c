package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/bestsplit/bestsplit/internal/activity"
	"github.com/bestsplit/bestsplit/internal/auth"
	"github.com/bestsplit/bestsplit/internal/ledger"
	"github.com/bestsplit/bestsplit/internal/server"
	"github.com/bestsplit/bestsplit/internal/service"
	"github.com/bestsplit/bestsplit/internal/storage/sqlite"
	"github.com/bestsplit/bestsplit/internal/syncer"
	"github.com/bestsplit/bestsplit/internal/users"
	"github.com/bestsplit/bestsplit/pkg/logging"
)

const (
	defaultPort     = "8080"
	refreshSchedule = "@every 2m"

	userCacheTTL  = 5 * time.Minute
	userCacheSize = 1024

	tokenDuration = 24 * time.Hour
)

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()
	logging.Setup()

	dbPath := getEnv("DB_PATH", "./data/bestsplit.db")
	port := getEnv("PORT", defaultPort)
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		slog.Error("JWT_SECRET is required")
		os.Exit(1)
	}

	store, err := sqlite.New(dbPath)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", dbPath)

	remote := ledger.NewMemory()
	sync := syncer.New(store, remote)
	defer sync.Close()

	balances := service.NewBalanceService(store, sync)
	groups := service.NewGroupService(store, sync)
	expenses := service.NewExpenseService(store, sync, balances)
	settlements := service.NewSettlementService(store, sync, balances)

	directory := users.NewCachedDirectory(users.NewStoreDirectory(store), userCacheTTL, userCacheSize)
	feed := activity.New(store, directory)

	authn := auth.NewPasswordAuthenticator(store)
	jwtManager := auth.NewJWTManager(jwtSecret, tokenDuration)

	srv := server.New(groups, expenses, settlements, balances, feed, sync, authn, jwtManager)

	scheduler := cron.New()
	if _, err := scheduler.AddFunc(refreshSchedule, func() { refreshAll(store, balances) }); err != nil {
		slog.Error("Failed to schedule balance refresh", "error", err)
		os.Exit(1)
	}
	scheduler.Start()
	defer scheduler.Stop()

	// h2c allows HTTP/2 clients without TLS termination in front.
	handler := h2c.NewHandler(srv.Handler(), &http2.Server{})

	addr := fmt.Sprintf(":%s", port)
	slog.Info("Server starting", "address", addr)
	if err := http.ListenAndServe(addr, handler); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

// refreshAll recomputes balances for every known group so clients that
// only read cached results still see remote changes.
func refreshAll(store *sqlite.Store, balances *service.BalanceService) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	groups, err := store.ListGroups(ctx)
	if err != nil {
		slog.Warn("Periodic refresh could not list groups", "error", err)
		return
	}
	for _, group := range groups {
		if _, err := balances.Refresh(ctx, group.ID); err != nil {
			slog.Warn("Periodic refresh failed", "group_id", group.ID, "error", err)
		}
	}
}
