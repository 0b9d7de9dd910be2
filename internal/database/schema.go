package database

import (
	"context"
	"database/sql"
	"fmt"
)

// schema is applied with CREATE TABLE IF NOT EXISTS so it is safe to run on
// every start.  The submission application owns the data; these
// definitions only make a fresh database usable.  UNIQUE(expense_id) keeps
// the one-approval-per-expense rule in the store itself.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id       BIGINT AUTO_INCREMENT PRIMARY KEY,
		username VARCHAR(191) NOT NULL UNIQUE,
		password VARCHAR(255) NOT NULL,
		role     VARCHAR(32)  NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS expenses (
		id          BIGINT AUTO_INCREMENT PRIMARY KEY,
		user_id     BIGINT         NOT NULL,
		amount      DECIMAL(12, 2) NOT NULL,
		description TEXT           NOT NULL,
		date        CHAR(10)       NOT NULL,
		INDEX idx_expenses_date (date),
		INDEX idx_expenses_user (user_id),
		FOREIGN KEY (user_id) REFERENCES users (id)
	)`,
	`CREATE TABLE IF NOT EXISTS approvals (
		id          BIGINT AUTO_INCREMENT PRIMARY KEY,
		expense_id  BIGINT      NOT NULL UNIQUE,
		status      VARCHAR(16) NOT NULL DEFAULT 'pending',
		reviewer    BIGINT      NULL,
		comment     TEXT        NULL,
		review_date VARCHAR(19) NULL,
		INDEX idx_approvals_status (status),
		FOREIGN KEY (expense_id) REFERENCES expenses (id),
		FOREIGN KEY (reviewer) REFERENCES users (id)
	)`,
}

// EnsureSchema creates the users, expenses and approvals tables when they
// are missing.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
