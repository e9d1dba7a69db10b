package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/finwatch-app/finwatch/internal/config"
	"github.com/finwatch-app/finwatch/pkg/dispatch"
	"github.com/finwatch-app/finwatch/pkg/monitor"
	"github.com/finwatch-app/finwatch/pkg/notify"
	"github.com/finwatch-app/finwatch/pkg/storage"
)

// Version is set at build time via ldflags.
var Version = "dev"

var (
	cfgFile  string
	userFlag string
)

var rootCmd = &cobra.Command{
	Use:   "finwatch",
	Short: "FinWatch - Proactive budget, savings and spending-habit monitoring",
	Long: `FinWatch watches personal-finance data for conditions worth telling the
user about: budgets nearing their cap, savings goals crossing milestones,
and days with no recorded transactions. Notifications are delivered
through a configurable sink with per-user preference gating.`,
	SilenceUsage: true,
}

// Execute runs the CLI.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.finwatch/config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&userFlag, "user", "u", "", "user id (default from config)")
}

// loadConfig loads the configuration.
func loadConfig() (*config.Config, error) {
	return config.Load(cfgFile)
}

// userID resolves the target user from the flag or config default.
func userID(cfg *config.Config) string {
	if userFlag != "" {
		return userFlag
	}
	return cfg.Defaults.User
}

// newLogger creates a structured logger from config.
func newLogger(cfg *config.Config) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.Logging.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	var handler slog.Handler
	if cfg.Logging.Format == "text" {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	} else {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	}

	return slog.New(handler)
}

// initStorage creates a storage backend from config.
func initStorage(cfg *config.Config) (storage.Store, error) {
	return storage.NewSQLite(cfg.Storage.Path)
}

// initSink creates the notification sink from config. Without a configured
// webhook an in-memory sink is used, which delivers nowhere but lets every
// command run.
func initSink(cfg *config.Config, logger *slog.Logger) notify.Sink {
	if cfg.Sink.Webhook.Enabled && cfg.Sink.Webhook.URL != "" {
		return notify.NewWebhookSink(cfg.Sink.Webhook.URL, cfg.Sink.Webhook.Secret)
	}
	logger.Warn("no webhook sink configured, notifications stay in memory")
	return notify.NewMemorySink()
}

// initCatalog loads the message catalog override when configured.
func initCatalog(cfg *config.Config) (*dispatch.Catalog, error) {
	if cfg.Messages.Path == "" {
		return dispatch.DefaultCatalog(), nil
	}
	catalog, err := dispatch.LoadCatalog(cfg.Messages.Path)
	if err != nil {
		return nil, fmt.Errorf("load message catalog: %w", err)
	}
	return catalog, nil
}

// monitors bundles the fully wired monitor set.
type monitors struct {
	budgets  *monitor.BudgetMonitor
	goals    *monitor.GoalTracker
	reminder *monitor.TransactionReminder
	gateway  *dispatch.Gateway
	sink     notify.Sink
	store    storage.Store
}

// initMonitors wires storage, sink, gateway and the three monitors.
func initMonitors(cfg *config.Config) (*monitors, error) {
	logger := newLogger(cfg)

	store, err := initStorage(cfg)
	if err != nil {
		return nil, err
	}

	catalog, err := initCatalog(cfg)
	if err != nil {
		store.Close()
		return nil, err
	}

	sink := initSink(cfg, logger)
	gateway := dispatch.NewGateway(sink, store, catalog, logger)

	budgets := monitor.NewBudgetMonitor(store, store, gateway, logger)
	if cfg.Monitors.Budget.Cooldown > 0 {
		budgets.SetCooldown(cfg.Monitors.Budget.Cooldown)
	}

	return &monitors{
		budgets:  budgets,
		goals:    monitor.NewGoalTracker(store, store, gateway, logger),
		reminder: monitor.NewTransactionReminder(store, store, gateway, logger),
		gateway:  gateway,
		sink:     sink,
		store:    store,
	}, nil
}
