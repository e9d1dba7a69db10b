package cli

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/finwatch-app/finwatch/pkg/dispatch"
	"github.com/finwatch-app/finwatch/pkg/model"
	"github.com/finwatch-app/finwatch/pkg/storage"
)

var txCmd = &cobra.Command{
	Use:   "tx",
	Short: "Record and list transactions",
}

var txAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Record a transaction and run the affected budget check",
	RunE:  runTxAdd,
}

var txListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent transactions",
	RunE:  runTxList,
}

func init() {
	rootCmd.AddCommand(txCmd)
	txCmd.AddCommand(txAddCmd)
	txCmd.AddCommand(txListCmd)

	txAddCmd.Flags().StringP("category", "c", "", "Category id")
	txAddCmd.Flags().Float64P("amount", "a", 0, "Amount")
	txAddCmd.Flags().StringP("type", "t", "expense", "Transaction type (expense, income)")
	txAddCmd.Flags().String("note", "", "Optional note")
	_ = txAddCmd.MarkFlagRequired("category")
	_ = txAddCmd.MarkFlagRequired("amount")

	txListCmd.Flags().IntP("limit", "l", 20, "Maximum number of transactions")
}

func runTxAdd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	category, _ := cmd.Flags().GetString("category")
	amount, _ := cmd.Flags().GetFloat64("amount")
	txType, _ := cmd.Flags().GetString("type")
	note, _ := cmd.Flags().GetString("note")
	if txType != "expense" && txType != "income" {
		return fmt.Errorf("invalid type %q (want expense or income)", txType)
	}

	m, err := initMonitors(cfg)
	if err != nil {
		return err
	}
	defer m.store.Close()

	user := userID(cfg)
	tx := &model.Transaction{
		ID:         uuid.NewString(),
		UserID:     user,
		CategoryID: category,
		Amount:     amount,
		Type:       txType,
		Note:       note,
		Date:       time.Now(),
	}

	if err := m.store.AddTransaction(cmd.Context(), tx); err != nil {
		return fmt.Errorf("add transaction: %w", err)
	}

	fmt.Printf("Recorded %s of %s in %s\n", txType, dispatch.FormatAmount(amount), category)

	// A new expense may have pushed its budget over threshold.
	if txType == "expense" {
		for _, s := range m.budgets.CheckThresholds(cmd.Context(), user) {
			if s.IsOverThreshold {
				fmt.Printf("Warning: %s budget at %.1f%%\n", s.CategoryName, s.Percentage)
			}
		}
	}

	return nil
}

func runTxList(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	limit, _ := cmd.Flags().GetInt("limit")

	m, err := initMonitors(cfg)
	if err != nil {
		return err
	}
	defer m.store.Close()

	txs, err := m.store.GetTransactions(cmd.Context(), userID(cfg), storage.TransactionQuery{Limit: limit})
	if err != nil {
		return fmt.Errorf("list transactions: %w", err)
	}
	if len(txs) == 0 {
		fmt.Println("No transactions recorded.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "DATE\tCATEGORY\tTYPE\tAMOUNT\tNOTE\n")
	for _, tx := range txs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			tx.Date.Format("2006-01-02 15:04"), tx.CategoryID, tx.Type,
			dispatch.FormatAmount(tx.Amount), tx.Note)
	}
	w.Flush()

	return nil
}
