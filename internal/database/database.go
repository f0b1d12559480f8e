package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"adpulse/internal/models"

	_ "github.com/mattn/go-sqlite3"
)

var ErrNotFound = errors.New("record not found")

type DB struct {
	db *sql.DB
}

func NewDB(path string) (*DB, error) {
	// Создаем директорию для БД, если её нет
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := createTables(db); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return &DB{db: db}, nil
}

func (db *DB) Close() error {
	return db.db.Close()
}

func createTables(db *sql.DB) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS accounts (
            id TEXT PRIMARY KEY,
            name TEXT NOT NULL,
            region TEXT,
            profile_id TEXT,
            is_active BOOLEAN NOT NULL DEFAULT 1,
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
            updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
        )`,
		`CREATE TABLE IF NOT EXISTS sync_schedules (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            account_id TEXT NOT NULL,
            sync_type TEXT NOT NULL,
            frequency TEXT NOT NULL,
            preferred_time TEXT,
            preferred_day_of_week INTEGER,
            is_enabled BOOLEAN NOT NULL DEFAULT 1,
            last_run_at DATETIME,
            next_run_at DATETIME,
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
            updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
        )`,
		`CREATE TABLE IF NOT EXISTS entity_counts (
            account_id TEXT NOT NULL,
            entity_type TEXT NOT NULL,
            count INTEGER NOT NULL DEFAULT 0,
            updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
            PRIMARY KEY (account_id, entity_type)
        )`,
		`CREATE TABLE IF NOT EXISTS keyword_snapshots (
            id TEXT NOT NULL,
            account_id TEXT NOT NULL,
            keyword_text TEXT NOT NULL,
            status TEXT NOT NULL,
            acos REAL,
            spend REAL NOT NULL DEFAULT 0,
            clicks INTEGER NOT NULL DEFAULT 0,
            impressions INTEGER NOT NULL DEFAULT 0,
            orders INTEGER NOT NULL DEFAULT 0,
            sales REAL NOT NULL DEFAULT 0,
            window_start DATETIME NOT NULL,
            window_end DATETIME NOT NULL,
            synced_at DATETIME NOT NULL,
            PRIMARY KEY (account_id, id)
        )`,
		`CREATE TABLE IF NOT EXISTS execution_configs (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            account_id TEXT NOT NULL UNIQUE,
            is_enabled BOOLEAN NOT NULL DEFAULT 0,
            execution_mode TEXT NOT NULL DEFAULT 'manual',
            acos_threshold REAL NOT NULL DEFAULT 0,
            spend_threshold REAL NOT NULL DEFAULT 0,
            clicks_threshold REAL NOT NULL DEFAULT 0,
            lookback_days INTEGER NOT NULL DEFAULT 30,
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
            updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
        )`,
		// История выполнений только добавляется, завершённые записи не изменяются
		`CREATE TABLE IF NOT EXISTS executions (
            id TEXT PRIMARY KEY,
            account_id TEXT NOT NULL,
            config_id INTEGER NOT NULL,
            execution_type TEXT NOT NULL,
            total_keywords INTEGER NOT NULL DEFAULT 0,
            paused_count INTEGER NOT NULL DEFAULT 0,
            enabled_count INTEGER NOT NULL DEFAULT 0,
            skipped_count INTEGER NOT NULL DEFAULT 0,
            status TEXT NOT NULL,
            started_at DATETIME NOT NULL,
            completed_at DATETIME
        )`,
		`CREATE TABLE IF NOT EXISTS execution_details (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            execution_id TEXT NOT NULL,
            keyword_id TEXT NOT NULL,
            keyword_text TEXT,
            action_type TEXT NOT NULL,
            status TEXT NOT NULL,
            reason TEXT,
            error TEXT,
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP
        )`,
		`CREATE TABLE IF NOT EXISTS rollbacks (
            id TEXT PRIMARY KEY,
            execution_id TEXT NOT NULL,
            reason TEXT NOT NULL,
            rolled_back_count INTEGER NOT NULL DEFAULT 0,
            errors TEXT,
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP
        )`,
		`CREATE TABLE IF NOT EXISTS validations (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            account_id TEXT NOT NULL,
            results TEXT NOT NULL,
            total_diff INTEGER NOT NULL DEFAULT 0,
            validated_at DATETIME NOT NULL
        )`,

		`CREATE INDEX IF NOT EXISTS idx_schedules_account ON sync_schedules(account_id)`,
		`CREATE INDEX IF NOT EXISTS idx_schedules_next_run ON sync_schedules(next_run_at)`,
		`CREATE INDEX IF NOT EXISTS idx_snapshots_account ON keyword_snapshots(account_id)`,
		`CREATE INDEX IF NOT EXISTS idx_executions_account ON executions(account_id)`,
		`CREATE INDEX IF NOT EXISTS idx_details_execution ON execution_details(execution_id)`,
		`CREATE INDEX IF NOT EXISTS idx_validations_account ON validations(account_id)`,
	}

	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("error executing query %s: %w", query, err)
		}
	}
	return nil
}

func (db *DB) ListActiveAccounts(ctx context.Context) ([]*models.Account, error) {
	query := `SELECT id, name, region, profile_id, is_active, created_at, updated_at
              FROM accounts WHERE is_active = 1 ORDER BY id`
	rows, err := db.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list active accounts: %w", err)
	}
	defer rows.Close()

	var accounts []*models.Account
	for rows.Next() {
		var a models.Account
		if err := rows.Scan(&a.ID, &a.Name, &a.Region, &a.ProfileID, &a.IsActive, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, &a)
	}
	return accounts, rows.Err()
}

func (db *DB) GetAccount(ctx context.Context, id string) (*models.Account, error) {
	query := `SELECT id, name, region, profile_id, is_active, created_at, updated_at
              FROM accounts WHERE id = ?`
	var a models.Account
	err := db.db.QueryRowContext(ctx, query, id).Scan(
		&a.ID, &a.Name, &a.Region, &a.ProfileID, &a.IsActive, &a.CreatedAt, &a.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("account %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return &a, nil
}

func (db *DB) UpsertAccount(ctx context.Context, account *models.Account) error {
	query := `INSERT INTO accounts (id, name, region, profile_id, is_active, created_at, updated_at)
              VALUES (?, ?, ?, ?, ?, ?, ?)
              ON CONFLICT(id) DO UPDATE SET
                  name = excluded.name,
                  region = excluded.region,
                  profile_id = excluded.profile_id,
                  is_active = excluded.is_active,
                  updated_at = excluded.updated_at`
	now := time.Now()
	_, err := db.db.ExecContext(ctx, query,
		account.ID, account.Name, account.Region, account.ProfileID, account.IsActive, now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert account: %w", err)
	}
	return nil
}
