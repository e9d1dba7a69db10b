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

var budgetCmd = &cobra.Command{
	Use:   "budget",
	Short: "Manage category budgets",
}

var budgetSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Create or update a category budget",
	RunE:  runBudgetSet,
}

var budgetStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show current budget status without sending alerts",
	RunE:  runBudgetStatus,
}

var budgetCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Run one budget check cycle, dispatching due alerts",
	RunE:  runBudgetCheck,
}

func init() {
	rootCmd.AddCommand(budgetCmd)
	budgetCmd.AddCommand(budgetSetCmd)
	budgetCmd.AddCommand(budgetStatusCmd)
	budgetCmd.AddCommand(budgetCheckCmd)

	budgetSetCmd.Flags().StringP("category", "c", "", "Category id")
	budgetSetCmd.Flags().StringP("name", "n", "", "Category display name")
	budgetSetCmd.Flags().Float64P("amount", "a", 0, "Monthly spending cap")
	_ = budgetSetCmd.MarkFlagRequired("category")
	_ = budgetSetCmd.MarkFlagRequired("amount")
}

func runBudgetSet(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	category, _ := cmd.Flags().GetString("category")
	name, _ := cmd.Flags().GetString("name")
	amount, _ := cmd.Flags().GetFloat64("amount")
	if name == "" {
		name = category
	}

	m, err := initMonitors(cfg)
	if err != nil {
		return err
	}
	defer m.store.Close()

	if err := m.store.SaveCategory(cmd.Context(), &model.Category{ID: category, Name: name, Kind: "expense"}); err != nil {
		return fmt.Errorf("save category: %w", err)
	}

	budget := &model.Budget{
		ID:           uuid.NewString(),
		UserID:       userID(cfg),
		CategoryID:   category,
		CategoryName: name,
		Amount:       amount,
		Period:       "monthly",
	}

	if err := m.store.SaveBudget(cmd.Context(), budget); err != nil {
		return fmt.Errorf("set budget: %w", err)
	}

	fmt.Printf("Budget set:\n")
	fmt.Printf("  Category:  %s\n", name)
	fmt.Printf("  Amount:    %s\n", dispatch.FormatAmount(amount))
	fmt.Printf("  Period:    monthly\n")

	return nil
}

func runBudgetStatus(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	m, err := initMonitors(cfg)
	if err != nil {
		return err
	}
	defer m.store.Close()

	statuses := m.budgets.Statuses(cmd.Context(), userID(cfg))
	if len(statuses) == 0 {
		fmt.Println("No budgets configured. Use 'finwatch budget set' to create one.")
		return nil
	}

	printStatuses(statuses)
	return nil
}

func runBudgetCheck(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	m, err := initMonitors(cfg)
	if err != nil {
		return err
	}
	defer m.store.Close()

	statuses := m.budgets.CheckThresholds(cmd.Context(), userID(cfg))
	if len(statuses) == 0 {
		fmt.Println("Nothing to check: no budgets, or notifications are disabled.")
		return nil
	}

	printStatuses(statuses)
	return nil
}

func printStatuses(statuses []model.BudgetStatus) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "CATEGORY\tAMOUNT\tSPENT\tREMAINING\tUSAGE\n")
	for _, s := range statuses {
		remaining := s.RemainingAmount
		if remaining < 0 {
			remaining = 0
		}

		status := ""
		switch {
		case s.Percentage >= 100:
			status = " [EXCEEDED]"
		case s.Percentage >= 90:
			status = " [CRITICAL]"
		case s.IsOverThreshold:
			status = " [WARNING]"
		}

		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.1f%%%s\n",
			s.CategoryName,
			dispatch.FormatAmount(s.Amount),
			dispatch.FormatAmount(s.Spent),
			dispatch.FormatAmount(remaining),
			s.Percentage, status,
		)
	}
	w.Flush()
}
