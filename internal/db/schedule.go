package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/soochol/stickyparam/internal/param"
)

const scheduleColumns = `id, job_name, cron_expr, timezone, parameters, enabled, next_run_at, last_run_at, last_run_id, created_at, updated_at`

const (
	insertScheduleSQL = `INSERT INTO schedules (` + scheduleColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	selectScheduleSQL = `SELECT ` + scheduleColumns + ` FROM schedules WHERE id = $1`
	listSchedulesSQL  = `SELECT ` + scheduleColumns + ` FROM schedules ORDER BY created_at`
	updateScheduleSQL = `UPDATE schedules SET job_name = $1, cron_expr = $2, timezone = $3, parameters = $4, enabled = $5, next_run_at = $6, last_run_at = $7, last_run_id = $8, updated_at = $9 WHERE id = $10`
	deleteScheduleSQL = `DELETE FROM schedules WHERE id = $1`
)

// CreateSchedule stores a new schedule.
func (d *DB) CreateSchedule(ctx context.Context, s *param.Schedule) error {
	paramsJSON, _ := json.Marshal(s.Parameters)
	_, err := d.Pool.ExecContext(ctx, insertScheduleSQL,
		s.ID, s.JobName, s.CronExpr, s.Timezone, paramsJSON, s.Enabled,
		s.NextRunAt, s.LastRunAt, s.LastRunID, s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert schedule: %w", err)
	}
	return nil
}

// GetSchedule retrieves a schedule by ID.
func (d *DB) GetSchedule(ctx context.Context, id string) (*param.Schedule, error) {
	s, err := scanSchedule(d.Pool.QueryRowContext(ctx, selectScheduleSQL, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("schedule %s: %w", id, err)
	}
	if err != nil {
		return nil, fmt.Errorf("get schedule: %w", err)
	}
	return s, nil
}

// ListSchedules returns all schedules.
func (d *DB) ListSchedules(ctx context.Context) ([]*param.Schedule, error) {
	rows, err := d.Pool.QueryContext(ctx, listSchedulesSQL)
	if err != nil {
		return nil, fmt.Errorf("list schedules: %w", err)
	}
	defer rows.Close()

	var result []*param.Schedule
	for rows.Next() {
		s, err := scanSchedule(rows)
		if err != nil {
			return nil, fmt.Errorf("scan schedule: %w", err)
		}
		result = append(result, s)
	}
	return result, rows.Err()
}

// UpdateSchedule updates an existing schedule.
func (d *DB) UpdateSchedule(ctx context.Context, s *param.Schedule) error {
	paramsJSON, _ := json.Marshal(s.Parameters)
	_, err := d.Pool.ExecContext(ctx, updateScheduleSQL,
		s.JobName, s.CronExpr, s.Timezone, paramsJSON, s.Enabled,
		s.NextRunAt, s.LastRunAt, s.LastRunID, s.UpdatedAt, s.ID,
	)
	if err != nil {
		return fmt.Errorf("update schedule: %w", err)
	}
	return nil
}

// DeleteSchedule removes a schedule.
func (d *DB) DeleteSchedule(ctx context.Context, id string) error {
	if _, err := d.Pool.ExecContext(ctx, deleteScheduleSQL, id); err != nil {
		return fmt.Errorf("delete schedule: %w", err)
	}
	return nil
}

func scanSchedule(row rowScanner) (*param.Schedule, error) {
	s := &param.Schedule{}
	var paramsJSON []byte
	var nextRun sql.NullTime
	if err := row.Scan(&s.ID, &s.JobName, &s.CronExpr, &s.Timezone, &paramsJSON, &s.Enabled,
		&nextRun, &s.LastRunAt, &s.LastRunID, &s.CreatedAt, &s.UpdatedAt,
	); err != nil {
		return nil, err
	}
	s.NextRunAt = nextRun.Time
	if len(paramsJSON) > 0 {
		json.Unmarshal(paramsJSON, &s.Parameters)
	}
	return s, nil
}
