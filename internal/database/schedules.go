package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"adpulse/internal/models"
)

const scheduleColumns = `id, account_id, sync_type, frequency, preferred_time, preferred_day_of_week,
              is_enabled, last_run_at, next_run_at, created_at, updated_at`

func (db *DB) GetSchedules(ctx context.Context, accountID string) ([]*models.AccountSyncSchedule, error) {
	query := `SELECT ` + scheduleColumns + ` FROM sync_schedules WHERE account_id = ? ORDER BY id`
	rows, err := db.db.QueryContext(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to get schedules: %w", err)
	}
	defer rows.Close()
	return scanSchedules(rows)
}

// ListDueSchedules возвращает включённые расписания, срок которых наступил.
// Никогда не запускавшиеся (next_run_at IS NULL) считаются просроченными.
func (db *DB) ListDueSchedules(ctx context.Context, now time.Time) ([]*models.AccountSyncSchedule, error) {
	query := `SELECT ` + scheduleColumns + ` FROM sync_schedules
              WHERE is_enabled = 1 AND (next_run_at IS NULL OR next_run_at <= ?)
              ORDER BY account_id, id`
	rows, err := db.db.QueryContext(ctx, query, now)
	if err != nil {
		return nil, fmt.Errorf("failed to list due schedules: %w", err)
	}
	defer rows.Close()
	return scanSchedules(rows)
}

func (db *DB) CreateSchedule(ctx context.Context, schedule *models.AccountSyncSchedule) error {
	// Неизвестная частота отклоняется здесь, до попадания в цикл планировщика
	if _, err := models.ResolveFrequency(schedule.Frequency); err != nil {
		return err
	}

	query := `INSERT INTO sync_schedules (account_id, sync_type, frequency, preferred_time,
              preferred_day_of_week, is_enabled, last_run_at, next_run_at, created_at, updated_at)
              VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	now := time.Now()
	result, err := db.db.ExecContext(ctx, query,
		schedule.AccountID,
		schedule.SyncType,
		schedule.Frequency,
		schedule.PreferredTime,
		schedule.PreferredDayOfWeek,
		schedule.IsEnabled,
		schedule.LastRunAt,
		schedule.NextRunAt,
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to create schedule: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	schedule.ID = id
	schedule.CreatedAt = now
	schedule.UpdatedAt = now
	return nil
}

func (db *DB) MarkScheduleRun(ctx context.Context, id int64, lastRun, nextRun time.Time) error {
	query := `UPDATE sync_schedules SET last_run_at = ?, next_run_at = ?, updated_at = ? WHERE id = ?`
	_, err := db.db.ExecContext(ctx, query, lastRun, nextRun, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to mark schedule run: %w", err)
	}
	return nil
}

func scanSchedules(rows *sql.Rows) ([]*models.AccountSyncSchedule, error) {
	var schedules []*models.AccountSyncSchedule
	for rows.Next() {
		var s models.AccountSyncSchedule
		err := rows.Scan(
			&s.ID, &s.AccountID, &s.SyncType, &s.Frequency, &s.PreferredTime, &s.PreferredDayOfWeek,
			&s.IsEnabled, &s.LastRunAt, &s.NextRunAt, &s.CreatedAt, &s.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan schedule: %w", err)
		}
		schedules = append(schedules, &s)
	}
	return schedules, rows.Err()
}
