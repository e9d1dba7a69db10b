package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/finwatch-app/finwatch/pkg/dispatch"
	"github.com/finwatch-app/finwatch/pkg/model"
)

var goalCmd = &cobra.Command{
	Use:   "goal",
	Short: "Manage savings goals",
}

var goalSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Create a savings goal",
	RunE:  runGoalSet,
}

var goalSaveCmd = &cobra.Command{
	Use:   "save",
	Short: "Record a goal's new saved amount, notifying on milestones",
	RunE:  runGoalSave,
}

var goalStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show progress for all savings goals",
	RunE:  runGoalStatus,
}

func init() {
	rootCmd.AddCommand(goalCmd)
	goalCmd.AddCommand(goalSetCmd)
	goalCmd.AddCommand(goalSaveCmd)
	goalCmd.AddCommand(goalStatusCmd)

	goalSetCmd.Flags().StringP("name", "n", "", "Goal name")
	goalSetCmd.Flags().Float64P("target", "t", 0, "Target amount")
	_ = goalSetCmd.MarkFlagRequired("name")
	_ = goalSetCmd.MarkFlagRequired("target")

	goalSaveCmd.Flags().StringP("goal", "g", "", "Goal id")
	goalSaveCmd.Flags().Float64P("amount", "a", 0, "New total saved amount")
	_ = goalSaveCmd.MarkFlagRequired("goal")
	_ = goalSaveCmd.MarkFlagRequired("amount")
}

func runGoalSet(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	name, _ := cmd.Flags().GetString("name")
	target, _ := cmd.Flags().GetFloat64("target")

	m, err := initMonitors(cfg)
	if err != nil {
		return err
	}
	defer m.store.Close()

	goal := &model.SavingGoal{
		ID:           uuid.NewString(),
		UserID:       userID(cfg),
		Name:         name,
		TargetAmount: target,
	}

	if err := m.store.SaveSavingGoal(cmd.Context(), goal); err != nil {
		return fmt.Errorf("set goal: %w", err)
	}

	fmt.Printf("Goal created:\n")
	fmt.Printf("  ID:      %s\n", goal.ID)
	fmt.Printf("  Name:    %s\n", name)
	fmt.Printf("  Target:  %s\n", dispatch.FormatAmount(target))

	return nil
}

func runGoalSave(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	goalID, _ := cmd.Flags().GetString("goal")
	amount, _ := cmd.Flags().GetFloat64("amount")

	m, err := initMonitors(cfg)
	if err != nil {
		return err
	}
	defer m.store.Close()

	p := m.goals.UpdateProgress(cmd.Context(), userID(cfg), goalID, amount)
	if p == nil {
		return fmt.Errorf("update goal %s", goalID)
	}

	fmt.Printf("%s: %s of %s (%.1f%%)\n",
		p.Name, dispatch.FormatAmount(p.CurrentAmount),
		dispatch.FormatAmount(p.TargetAmount), p.ProgressPercentage)
	if p.ShouldNotify {
		fmt.Printf("Milestone reached: %d%%\n", p.MilestoneReached)
	}

	return nil
}

func runGoalStatus(cmd *cobra.Command, _ []string) error {
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
	goals, err := m.store.GetSavingGoals(cmd.Context(), user)
	if err != nil {
		return fmt.Errorf("list goals: %w", err)
	}
	if len(goals) == 0 {
		fmt.Println("No savings goals. Use 'finwatch goal set' to create one.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "ID\tNAME\tSAVED\tTARGET\tPROGRESS\n")
	for _, g := range goals {
		pct := model.Percentage(g.CurrentAmount, g.TargetAmount)
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.1f%%\n",
			g.ID, g.Name,
			dispatch.FormatAmount(g.CurrentAmount),
			dispatch.FormatAmount(g.TargetAmount), pct)
	}
	w.Flush()

	if summary := m.goals.ProgressSummary(cmd.Context(), user); summary != nil {
		fmt.Printf("\n%d goals, %d completed, overall %.1f%%\n",
			summary.TotalGoals, summary.CompletedGoals, summary.OverallProgressPct)
	}

	return nil
}
