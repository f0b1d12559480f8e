package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"adpulse/internal/models"
)

func (db *DB) EntityCount(ctx context.Context, accountID, entityType string) (int64, error) {
	// keywords считаются по снимкам, остальные классы по сохранённым счётчикам
	if entityType == "keywords" {
		var count int64
		err := db.db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM keyword_snapshots WHERE account_id = ?`, accountID,
		).Scan(&count)
		if err != nil {
			return 0, fmt.Errorf("failed to count keyword snapshots: %w", err)
		}
		return count, nil
	}

	var count int64
	err := db.db.QueryRowContext(ctx,
		`SELECT count FROM entity_counts WHERE account_id = ? AND entity_type = ?`,
		accountID, entityType,
	).Scan(&count)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get entity count: %w", err)
	}
	return count, nil
}

func (db *DB) SetEntityCount(ctx context.Context, accountID, entityType string, count int64) error {
	query := `INSERT INTO entity_counts (account_id, entity_type, count, updated_at)
              VALUES (?, ?, ?, ?)
              ON CONFLICT(account_id, entity_type) DO UPDATE SET
                  count = excluded.count,
                  updated_at = excluded.updated_at`
	_, err := db.db.ExecContext(ctx, query, accountID, entityType, count, time.Now())
	if err != nil {
		return fmt.Errorf("failed to set entity count: %w", err)
	}
	return nil
}

func (db *DB) UpsertKeywordSnapshot(ctx context.Context, snapshot *models.KeywordSnapshot) error {
	query := `INSERT INTO keyword_snapshots (id, account_id, keyword_text, status, acos, spend,
              clicks, impressions, orders, sales, window_start, window_end, synced_at)
              VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
              ON CONFLICT(account_id, id) DO UPDATE SET
                  keyword_text = excluded.keyword_text,
                  status = excluded.status,
                  acos = excluded.acos,
                  spend = excluded.spend,
                  clicks = excluded.clicks,
                  impressions = excluded.impressions,
                  orders = excluded.orders,
                  sales = excluded.sales,
                  window_start = excluded.window_start,
                  window_end = excluded.window_end,
                  synced_at = excluded.synced_at`
	_, err := db.db.ExecContext(ctx, query,
		snapshot.ID, snapshot.AccountID, snapshot.KeywordText, snapshot.Status, snapshot.ACOS,
		snapshot.Spend, snapshot.Clicks, snapshot.Impressions, snapshot.Orders, snapshot.Sales,
		snapshot.WindowStart, snapshot.WindowEnd, snapshot.SyncedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert keyword snapshot: %w", err)
	}
	return nil
}

// KeywordSnapshots returns snapshots whose window overlaps the last
// lookbackDays days.
func (db *DB) KeywordSnapshots(ctx context.Context, accountID string, lookbackDays int) ([]*models.KeywordSnapshot, error) {
	if lookbackDays <= 0 {
		lookbackDays = models.DefaultLookbackDays
	}
	cutoff := time.Now().AddDate(0, 0, -lookbackDays)

	query := `SELECT id, account_id, keyword_text, status, acos, spend, clicks, impressions,
              orders, sales, window_start, window_end, synced_at
              FROM keyword_snapshots
              WHERE account_id = ? AND window_end >= ?
              ORDER BY id`
	rows, err := db.db.QueryContext(ctx, query, accountID, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to get keyword snapshots: %w", err)
	}
	defer rows.Close()

	var snapshots []*models.KeywordSnapshot
	for rows.Next() {
		var s models.KeywordSnapshot
		err := rows.Scan(
			&s.ID, &s.AccountID, &s.KeywordText, &s.Status, &s.ACOS, &s.Spend, &s.Clicks,
			&s.Impressions, &s.Orders, &s.Sales, &s.WindowStart, &s.WindowEnd, &s.SyncedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan keyword snapshot: %w", err)
		}
		snapshots = append(snapshots, &s)
	}
	return snapshots, rows.Err()
}

func (db *DB) GetExecutionConfig(ctx context.Context, accountID string) (*models.KeywordExecutionConfig, error) {
	query := `SELECT id, account_id, is_enabled, execution_mode, acos_threshold, spend_threshold,
              clicks_threshold, lookback_days, created_at, updated_at
              FROM execution_configs WHERE account_id = ?`
	var c models.KeywordExecutionConfig
	err := db.db.QueryRowContext(ctx, query, accountID).Scan(
		&c.ID, &c.AccountID, &c.IsEnabled, &c.ExecutionMode, &c.ACOSThreshold,
		&c.SpendThreshold, &c.ClicksThreshold, &c.LookbackDays, &c.CreatedAt, &c.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("execution config for account %s: %w", accountID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get execution config: %w", err)
	}
	return &c, nil
}

func (db *DB) SaveExecutionConfig(ctx context.Context, cfg *models.KeywordExecutionConfig) error {
	query := `INSERT INTO execution_configs (account_id, is_enabled, execution_mode, acos_threshold,
              spend_threshold, clicks_threshold, lookback_days, created_at, updated_at)
              VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
              ON CONFLICT(account_id) DO UPDATE SET
                  is_enabled = excluded.is_enabled,
                  execution_mode = excluded.execution_mode,
                  acos_threshold = excluded.acos_threshold,
                  spend_threshold = excluded.spend_threshold,
                  clicks_threshold = excluded.clicks_threshold,
                  lookback_days = excluded.lookback_days,
                  updated_at = excluded.updated_at`
	now := time.Now()
	_, err := db.db.ExecContext(ctx, query,
		cfg.AccountID, cfg.IsEnabled, cfg.ExecutionMode, cfg.ACOSThreshold,
		cfg.SpendThreshold, cfg.ClicksThreshold, cfg.LookbackDays, now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to save execution config: %w", err)
	}
	return nil
}
