package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"adpulse/internal/models"
)

func (db *DB) CreateExecution(ctx context.Context, rec *models.ExecutionRecord) error {
	query := `INSERT INTO executions (id, account_id, config_id, execution_type, total_keywords,
              paused_count, enabled_count, skipped_count, status, started_at, completed_at)
              VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := db.db.ExecContext(ctx, query,
		rec.ID, rec.AccountID, rec.ConfigID, rec.ExecutionType, rec.TotalKeywords,
		rec.PausedCount, rec.EnabledCount, rec.SkippedCount, rec.Status, rec.StartedAt, rec.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create execution: %w", err)
	}
	return nil
}

// FinishExecution записывает итог выполнения; допускается только переход из running
func (db *DB) FinishExecution(ctx context.Context, rec *models.ExecutionRecord) error {
	query := `UPDATE executions SET total_keywords = ?, paused_count = ?, enabled_count = ?,
              skipped_count = ?, status = ?, completed_at = ?
              WHERE id = ? AND status = ?`
	result, err := db.db.ExecContext(ctx, query,
		rec.TotalKeywords, rec.PausedCount, rec.EnabledCount, rec.SkippedCount,
		rec.Status, rec.CompletedAt, rec.ID, models.ExecutionStatusRunning,
	)
	if err != nil {
		return fmt.Errorf("failed to finish execution: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("execution %s is not running: %w", rec.ID, ErrNotFound)
	}
	return nil
}

func (db *DB) GetExecution(ctx context.Context, id string) (*models.ExecutionRecord, error) {
	query := `SELECT id, account_id, config_id, execution_type, total_keywords, paused_count,
              enabled_count, skipped_count, status, started_at, completed_at
              FROM executions WHERE id = ?`
	var rec models.ExecutionRecord
	err := db.db.QueryRowContext(ctx, query, id).Scan(
		&rec.ID, &rec.AccountID, &rec.ConfigID, &rec.ExecutionType, &rec.TotalKeywords,
		&rec.PausedCount, &rec.EnabledCount, &rec.SkippedCount, &rec.Status,
		&rec.StartedAt, &rec.CompletedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("execution %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get execution: %w", err)
	}
	return &rec, nil
}

func (db *DB) CreateExecutionDetail(ctx context.Context, detail *models.ExecutionDetail) error {
	query := `INSERT INTO execution_details (execution_id, keyword_id, keyword_text, action_type,
              status, reason, error, created_at)
              VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	now := time.Now()
	result, err := db.db.ExecContext(ctx, query,
		detail.ExecutionID, detail.KeywordID, detail.KeywordText, detail.ActionType,
		detail.Status, detail.Reason, detail.Error, now,
	)
	if err != nil {
		return fmt.Errorf("failed to create execution detail: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	detail.ID = id
	detail.CreatedAt = now
	return nil
}

func (db *DB) GetExecutionDetails(ctx context.Context, executionID string) ([]*models.ExecutionDetail, error) {
	query := `SELECT id, execution_id, keyword_id, keyword_text, action_type, status, reason, error, created_at
              FROM execution_details WHERE execution_id = ? ORDER BY id`
	rows, err := db.db.QueryContext(ctx, query, executionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get execution details: %w", err)
	}
	defer rows.Close()

	var details []*models.ExecutionDetail
	for rows.Next() {
		var d models.ExecutionDetail
		err := rows.Scan(
			&d.ID, &d.ExecutionID, &d.KeywordID, &d.KeywordText, &d.ActionType,
			&d.Status, &d.Reason, &d.Error, &d.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan execution detail: %w", err)
		}
		details = append(details, &d)
	}
	return details, rows.Err()
}

func (db *DB) CreateRollback(ctx context.Context, rec *models.RollbackRecord) error {
	errorsJSON, err := json.Marshal(rec.Errors)
	if err != nil {
		return fmt.Errorf("failed to encode rollback errors: %w", err)
	}

	query := `INSERT INTO rollbacks (id, execution_id, reason, rolled_back_count, errors, created_at)
              VALUES (?, ?, ?, ?, ?, ?)`
	now := time.Now()
	_, err = db.db.ExecContext(ctx, query,
		rec.ID, rec.ExecutionID, rec.Reason, rec.RolledBackCount, string(errorsJSON), now,
	)
	if err != nil {
		return fmt.Errorf("failed to create rollback: %w", err)
	}
	rec.CreatedAt = now
	return nil
}

func (db *DB) SaveValidationResult(ctx context.Context, result *models.ValidationResult) error {
	resultsJSON, err := json.Marshal(result.Results)
	if err != nil {
		return fmt.Errorf("failed to encode validation results: %w", err)
	}

	query := `INSERT INTO validations (account_id, results, total_diff, validated_at)
              VALUES (?, ?, ?, ?)`
	_, err = db.db.ExecContext(ctx, query,
		result.AccountID, string(resultsJSON), result.TotalDiff, result.ValidatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save validation result: %w", err)
	}
	return nil
}
