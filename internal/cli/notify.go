package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var notifyCmd = &cobra.Command{
	Use:   "notify",
	Short: "Inspect and exercise the notification sink",
}

var notifyTestCmd = &cobra.Command{
	Use:   "test",
	Short: "Send a test notification through the configured sink",
	RunE:  runNotifyTest,
}

var notifyScheduledCmd = &cobra.Command{
	Use:   "scheduled",
	Short: "List pending scheduled notifications",
	RunE:  runNotifyScheduled,
}

var notifyCancelCmd = &cobra.Command{
	Use:   "cancel",
	Short: "Cancel all pending scheduled notifications",
	RunE:  runNotifyCancel,
}

func init() {
	rootCmd.AddCommand(notifyCmd)
	notifyCmd.AddCommand(notifyTestCmd)
	notifyCmd.AddCommand(notifyScheduledCmd)
	notifyCmd.AddCommand(notifyCancelCmd)
}

func runNotifyTest(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	m, err := initMonitors(cfg)
	if err != nil {
		return err
	}
	defer m.store.Close()

	if !m.gateway.SendAccountUpdate(cmd.Context(), userID(cfg), "test") {
		return fmt.Errorf("test notification was not delivered (sink failure or notifications disabled)")
	}

	fmt.Println("Test notification delivered.")
	return nil
}

func runNotifyScheduled(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	m, err := initMonitors(cfg)
	if err != nil {
		return err
	}
	defer m.store.Close()

	pending, err := m.sink.Scheduled(cmd.Context())
	if err != nil {
		return fmt.Errorf("list scheduled: %w", err)
	}
	if len(pending) == 0 {
		fmt.Println("No scheduled notifications.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "ID\tTYPE\tTITLE\tREPEATS\n")
	for _, req := range pending {
		fmt.Fprintf(w, "%s\t%s\t%s\t%v\n", req.ID, req.Payload.Type(), req.Payload.Title, req.Schedule.Repeats)
	}
	w.Flush()

	return nil
}

func runNotifyCancel(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	m, err := initMonitors(cfg)
	if err != nil {
		return err
	}
	defer m.store.Close()

	if !m.gateway.CancelAll(cmd.Context()) {
		return fmt.Errorf("cancel scheduled notifications")
	}

	fmt.Println("All scheduled notifications cancelled.")
	return nil
}
