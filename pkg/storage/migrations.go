package storage

import (
	"database/sql"
	"fmt"
)

var migrations = []string{
	// Migration 1: Initial schema
	`CREATE TABLE IF NOT EXISTS categories (
		id   TEXT PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		kind TEXT NOT NULL DEFAULT 'expense' CHECK(kind IN ('expense', 'income'))
	);

	CREATE TABLE IF NOT EXISTS budgets (
		id          TEXT PRIMARY KEY,
		user_id     TEXT NOT NULL,
		category_id TEXT NOT NULL REFERENCES categories(id),
		amount      REAL NOT NULL,
		period      TEXT NOT NULL DEFAULT 'monthly',
		created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(user_id, category_id)
	);

	CREATE INDEX IF NOT EXISTS idx_budgets_user ON budgets(user_id);

	CREATE TABLE IF NOT EXISTS transactions (
		id          TEXT PRIMARY KEY,
		user_id     TEXT NOT NULL,
		category_id TEXT NOT NULL,
		amount      REAL NOT NULL,
		type        TEXT NOT NULL DEFAULT 'expense' CHECK(type IN ('expense', 'income')),
		note        TEXT DEFAULT '',
		date        DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_transactions_user_date ON transactions(user_id, date);
	CREATE INDEX IF NOT EXISTS idx_transactions_category ON transactions(category_id);

	CREATE TABLE IF NOT EXISTS saving_goals (
		id             TEXT PRIMARY KEY,
		user_id        TEXT NOT NULL,
		name           TEXT NOT NULL,
		target_amount  REAL NOT NULL,
		current_amount REAL NOT NULL DEFAULT 0.0,
		created_at     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_saving_goals_user ON saving_goals(user_id);

	CREATE TABLE IF NOT EXISTS user_settings (
		user_id                TEXT PRIMARY KEY,
		notification_enabled   INTEGER NOT NULL DEFAULT 1,
		budget_alert_threshold REAL NOT NULL DEFAULT 80.0,
		daily_reminder_enabled INTEGER NOT NULL DEFAULT 0,
		weekly_summary_enabled INTEGER NOT NULL DEFAULT 0,
		saving_goal_alerts     INTEGER NOT NULL DEFAULT 1,
		transaction_reminders  INTEGER NOT NULL DEFAULT 1
	);

	CREATE TABLE IF NOT EXISTS schema_migrations (
		version    INTEGER PRIMARY KEY,
		applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);`,
}

// runMigrations applies pending schema migrations.
func runMigrations(db *sql.DB) error {
	// Ensure migration tracking table exists
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (
		version    INTEGER PRIMARY KEY,
		applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`)
	if err != nil {
		return fmt.Errorf("create migration table: %w", err)
	}

	var currentVersion int
	row := db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("check migration version: %w", err)
	}

	for i := currentVersion; i < len(migrations); i++ {
		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", i+1, err)
		}

		if _, err := tx.Exec(migrations[i]); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("run migration %d: %w", i+1, err)
		}

		if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", i+1); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record migration %d: %w", i+1, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", i+1, err)
		}
	}

	return nil
}
