// Package storage provides the data and settings provider interfaces the
// monitors consume, plus the reference SQLite implementation.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/finwatch-app/finwatch/pkg/model"

	_ "modernc.org/sqlite"
)

// SQLite implements the Store interface using an SQLite database.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens or creates an SQLite database at the given path.
func NewSQLite(dbPath string) (*SQLite, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Enable WAL mode for concurrent reads
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLite{db: db}, nil
}

func (s *SQLite) SaveCategory(ctx context.Context, c *model.Category) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if c.Kind == "" {
		c.Kind = "expense"
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO categories (id, name, kind) VALUES (?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET kind = excluded.kind`,
		c.ID, c.Name, c.Kind,
	)
	if err != nil {
		return fmt.Errorf("save category: %w", err)
	}
	return nil
}

func (s *SQLite) GetCategories(ctx context.Context, kind string) ([]model.Category, error) {
	query := "SELECT id, name, kind FROM categories"
	var args []any
	if kind != "" {
		query += " WHERE kind = ?"
		args = append(args, kind)
	}
	query += " ORDER BY name"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	var categories []model.Category
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Kind); err != nil {
			return nil, fmt.Errorf("scan category row: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (s *SQLite) SaveBudget(ctx context.Context, b *model.Budget) error {
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	if b.Period == "" {
		b.Period = "monthly"
	}
	now := time.Now().UTC()
	if b.CreatedAt.IsZero() {
		b.CreatedAt = now
	}
	b.UpdatedAt = now

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO budgets (id, user_id, category_id, amount, period, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(user_id, category_id) DO UPDATE SET
		   amount = excluded.amount,
		   period = excluded.period,
		   updated_at = excluded.updated_at`,
		b.ID, b.UserID, b.CategoryID, b.Amount, b.Period, b.CreatedAt, b.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("save budget: %w", err)
	}
	return nil
}

func (s *SQLite) GetBudgets(ctx context.Context, userID string) ([]model.Budget, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT b.id, b.user_id, b.category_id, COALESCE(c.name, ''), b.amount, b.period, b.created_at, b.updated_at
		 FROM budgets b LEFT JOIN categories c ON c.id = b.category_id
		 WHERE b.user_id = ? ORDER BY c.name`, userID)
	if err != nil {
		return nil, fmt.Errorf("query budgets: %w", err)
	}
	defer rows.Close()

	var budgets []model.Budget
	for rows.Next() {
		var b model.Budget
		if err := rows.Scan(&b.ID, &b.UserID, &b.CategoryID, &b.CategoryName,
			&b.Amount, &b.Period, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan budget row: %w", err)
		}
		budgets = append(budgets, b)
	}
	return budgets, rows.Err()
}

func (s *SQLite) GetBudgetSpending(ctx context.Context, userID, categoryID string, start, end time.Time) (float64, error) {
	var total float64
	err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount), 0) FROM transactions
		 WHERE user_id = ? AND category_id = ? AND type = 'expense' AND date >= ? AND date < ?`,
		userID, categoryID, start, end,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("sum budget spending: %w", err)
	}
	return total, nil
}

func (s *SQLite) AddTransaction(ctx context.Context, t *model.Transaction) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	if t.Type == "" {
		t.Type = "expense"
	}
	if t.Date.IsZero() {
		t.Date = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO transactions (id, user_id, category_id, amount, type, note, date)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.UserID, t.CategoryID, t.Amount, t.Type, t.Note, t.Date,
	)
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

func (s *SQLite) GetTransactions(ctx context.Context, userID string, q TransactionQuery) ([]model.Transaction, error) {
	query := "SELECT id, user_id, category_id, amount, type, note, date FROM transactions WHERE user_id = ?"
	args := []any{userID}

	if !q.Start.IsZero() {
		query += " AND date >= ?"
		args = append(args, q.Start)
	}
	if !q.End.IsZero() {
		query += " AND date < ?"
		args = append(args, q.End)
	}
	query += " ORDER BY date DESC"
	if q.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, q.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var transactions []model.Transaction
	for rows.Next() {
		var t model.Transaction
		if err := rows.Scan(&t.ID, &t.UserID, &t.CategoryID, &t.Amount, &t.Type, &t.Note, &t.Date); err != nil {
			return nil, fmt.Errorf("scan transaction row: %w", err)
		}
		transactions = append(transactions, t)
	}
	return transactions, rows.Err()
}

func (s *SQLite) SaveSavingGoal(ctx context.Context, g *model.SavingGoal) error {
	if g.ID == "" {
		g.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if g.CreatedAt.IsZero() {
		g.CreatedAt = now
	}
	g.UpdatedAt = now

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO saving_goals (id, user_id, name, target_amount, current_amount, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   name = excluded.name,
		   target_amount = excluded.target_amount,
		   current_amount = excluded.current_amount,
		   updated_at = excluded.updated_at`,
		g.ID, g.UserID, g.Name, g.TargetAmount, g.CurrentAmount, g.CreatedAt, g.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("save saving goal: %w", err)
	}
	return nil
}

func (s *SQLite) GetSavingGoals(ctx context.Context, userID string) ([]model.SavingGoal, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, name, target_amount, current_amount, created_at, updated_at
		 FROM saving_goals WHERE user_id = ? ORDER BY name`, userID)
	if err != nil {
		return nil, fmt.Errorf("query saving goals: %w", err)
	}
	defer rows.Close()

	var goals []model.SavingGoal
	for rows.Next() {
		var g model.SavingGoal
		if err := rows.Scan(&g.ID, &g.UserID, &g.Name, &g.TargetAmount, &g.CurrentAmount,
			&g.CreatedAt, &g.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan saving goal row: %w", err)
		}
		goals = append(goals, g)
	}
	return goals, rows.Err()
}

func (s *SQLite) UpdateSavingGoalAmount(ctx context.Context, id string, amount float64) (*model.SavingGoal, error) {
	result, err := s.db.ExecContext(ctx,
		`UPDATE saving_goals SET current_amount = ?, updated_at = ? WHERE id = ?`,
		amount, time.Now().UTC(), id,
	)
	if err != nil {
		return nil, fmt.Errorf("update saving goal: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("check rows affected: %w", err)
	}
	if rows == 0 {
		return nil, fmt.Errorf("saving goal %q: %w", id, ErrNotFound)
	}

	var g model.SavingGoal
	err = s.db.QueryRowContext(ctx,
		`SELECT id, user_id, name, target_amount, current_amount, created_at, updated_at
		 FROM saving_goals WHERE id = ?`, id,
	).Scan(&g.ID, &g.UserID, &g.Name, &g.TargetAmount, &g.CurrentAmount, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("reload saving goal: %w", err)
	}
	return &g, nil
}

func (s *SQLite) GetUserSettings(ctx context.Context, userID string) (*model.UserSettings, error) {
	var u model.UserSettings
	err := s.db.QueryRowContext(ctx,
		`SELECT user_id, notification_enabled, budget_alert_threshold, daily_reminder_enabled,
		        weekly_summary_enabled, saving_goal_alerts, transaction_reminders
		 FROM user_settings WHERE user_id = ?`, userID,
	).Scan(&u.UserID, &u.NotificationEnabled, &u.BudgetAlertThreshold, &u.DailyReminderEnabled,
		&u.WeeklySummaryEnabled, &u.SavingGoalAlerts, &u.TransactionReminders)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user settings: %w", err)
	}
	return &u, nil
}

func (s *SQLite) SaveUserSettings(ctx context.Context, u *model.UserSettings) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO user_settings (user_id, notification_enabled, budget_alert_threshold,
		   daily_reminder_enabled, weekly_summary_enabled, saving_goal_alerts, transaction_reminders)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET
		   notification_enabled = excluded.notification_enabled,
		   budget_alert_threshold = excluded.budget_alert_threshold,
		   daily_reminder_enabled = excluded.daily_reminder_enabled,
		   weekly_summary_enabled = excluded.weekly_summary_enabled,
		   saving_goal_alerts = excluded.saving_goal_alerts,
		   transaction_reminders = excluded.transaction_reminders`,
		u.UserID, u.NotificationEnabled, u.BudgetAlertThreshold,
		u.DailyReminderEnabled, u.WeeklySummaryEnabled, u.SavingGoalAlerts, u.TransactionReminders,
	)
	if err != nil {
		return fmt.Errorf("save user settings: %w", err)
	}
	return nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}
