package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/finwatch-app/finwatch/pkg/model"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage notification preferences",
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the user's notification preferences",
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Update notification preferences",
	RunE:  runSettingsSet,
}

func init() {
	rootCmd.AddCommand(settingsCmd)
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)

	settingsSetCmd.Flags().Bool("notifications", true, "Master notification switch")
	settingsSetCmd.Flags().Float64("threshold", model.DefaultBudgetAlertThreshold, "Budget alert threshold percentage")
	settingsSetCmd.Flags().Bool("goal-alerts", true, "Savings goal milestone alerts")
	settingsSetCmd.Flags().Bool("tx-reminders", true, "Smart transaction reminders")
	settingsSetCmd.Flags().Bool("daily-reminder", false, "Scheduled daily reminder at 20:00")
	settingsSetCmd.Flags().Bool("weekly-summary", false, "Scheduled weekly summary on Sunday 19:00")
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	m, err := initMonitors(cfg)
	if err != nil {
		return err
	}
	defer m.store.Close()

	user := userID(cfg)
	settings, err := m.store.GetUserSettings(cmd.Context(), user)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}
	if settings == nil {
		settings = model.DefaultSettings(user)
		fmt.Println("No stored settings; showing defaults.")
	}

	fmt.Printf("Settings for %s:\n", user)
	fmt.Printf("  Notifications:    %v\n", settings.NotificationEnabled)
	fmt.Printf("  Alert threshold:  %.0f%%\n", settings.BudgetAlertThreshold)
	fmt.Printf("  Goal alerts:      %v\n", settings.SavingGoalAlerts)
	fmt.Printf("  Tx reminders:     %v\n", settings.TransactionReminders)
	fmt.Printf("  Daily reminder:   %v\n", settings.DailyReminderEnabled)
	fmt.Printf("  Weekly summary:   %v\n", settings.WeeklySummaryEnabled)

	return nil
}

func runSettingsSet(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	m, err := initMonitors(cfg)
	if err != nil {
		return err
	}
	defer m.store.Close()

	user := userID(cfg)
	settings, err := m.store.GetUserSettings(cmd.Context(), user)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}
	if settings == nil {
		settings = model.DefaultSettings(user)
	}

	flags := cmd.Flags()
	if flags.Changed("notifications") {
		settings.NotificationEnabled, _ = flags.GetBool("notifications")
	}
	if flags.Changed("threshold") {
		settings.BudgetAlertThreshold, _ = flags.GetFloat64("threshold")
	}
	if flags.Changed("goal-alerts") {
		settings.SavingGoalAlerts, _ = flags.GetBool("goal-alerts")
	}
	if flags.Changed("tx-reminders") {
		settings.TransactionReminders, _ = flags.GetBool("tx-reminders")
	}
	if flags.Changed("daily-reminder") {
		settings.DailyReminderEnabled, _ = flags.GetBool("daily-reminder")
	}
	if flags.Changed("weekly-summary") {
		settings.WeeklySummaryEnabled, _ = flags.GetBool("weekly-summary")
	}

	if err := m.store.SaveUserSettings(cmd.Context(), settings); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}

	// Keep scheduled notifications in line with the new flags.
	ctx := cmd.Context()
	if settings.NotificationEnabled && settings.DailyReminderEnabled {
		m.reminder.SetupDailyReminder(ctx, user)
	} else {
		m.reminder.CancelReminder(ctx)
	}
	if settings.NotificationEnabled && settings.WeeklySummaryEnabled {
		m.reminder.SetupWeeklySummary(ctx, user)
	}

	fmt.Println("Settings updated.")
	return nil
}
