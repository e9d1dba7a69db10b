package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/finwatch-app/finwatch/internal/server"
	"github.com/finwatch-app/finwatch/pkg/monitor"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run the monitors continuously with a status API",
	Long: `Watch arms all three monitors and polls on their configured intervals:
budget thresholds, savings goal milestones and the evening transaction
reminder. A small HTTP API exposes health and current status.`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	m, err := initMonitors(cfg)
	if err != nil {
		return err
	}
	defer m.store.Close()

	user := userID(cfg)

	budgetSched := monitor.NewScheduler("budget",
		cfg.Monitors.Budget.Interval, cfg.Monitors.Budget.MinSpacing,
		func(ctx context.Context) { m.budgets.CheckThresholds(ctx, user) }, logger)
	goalSched := monitor.NewScheduler("goal",
		cfg.Monitors.Goal.Interval, cfg.Monitors.Goal.MinSpacing,
		func(ctx context.Context) { m.goals.TrackAll(ctx, user) }, logger)
	reminderSched := monitor.NewScheduler("reminder",
		cfg.Monitors.Reminder.Interval, cfg.Monitors.Reminder.MinSpacing,
		func(ctx context.Context) {
			if m.reminder.ShouldSendEveningReminder() {
				m.reminder.SendSmartReminder(ctx, user)
			}
		}, logger)

	schedulers := []*monitor.Scheduler{budgetSched, goalSched, reminderSched}

	ctx := cmd.Context()
	for _, s := range schedulers {
		s.Start(ctx)
	}
	defer func() {
		for _, s := range schedulers {
			s.Stop()
		}
	}()

	apiServer := server.NewServer(m.budgets, m.goals, schedulers, user, logger)

	readTimeout, _ := time.ParseDuration(cfg.Server.ReadTimeout)
	if readTimeout == 0 {
		readTimeout = 10 * time.Second
	}
	writeTimeout, _ := time.ParseDuration(cfg.Server.WriteTimeout)
	if writeTimeout == 0 {
		writeTimeout = 30 * time.Second
	}

	srv := &http.Server{
		Addr:         cfg.Server.Listen,
		Handler:      apiServer.Handler(),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("finwatch started", "listen", cfg.Server.Listen, "user", user)
		errCh <- srv.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("status server: %w", err)
	case sig := <-quit:
		logger.Info("shutting down", "signal", sig.String())
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
