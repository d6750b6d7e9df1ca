package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/soochol/stickyparam/internal/param"
)

const runColumns = `id, job_name, sequence, status, parameters, trigger_type, trigger_ref, error, created_at, started_at, completed_at`

const (
	// insertRunSQL keeps an explicit sequence and otherwise takes the next
	// one for the job.
	insertRunSQL = `INSERT INTO runs (` + runColumns + `)
		 VALUES ($1, $2, COALESCE(NULLIF($3::BIGINT, 0), (SELECT COALESCE(MAX(sequence), 0) + 1 FROM runs WHERE job_name = $2)), $4, $5, $6, $7, $8, $9, $10, $11)
		 RETURNING sequence`
	selectRunSQL     = `SELECT ` + runColumns + ` FROM runs WHERE id = $1`
	updateRunSQL     = `UPDATE runs SET status = $1, parameters = $2, error = $3, started_at = $4, completed_at = $5 WHERE id = $6`
	countRunsByJob   = `SELECT COUNT(*) FROM runs WHERE job_name = $1`
	listRunsByJobSQL = `SELECT ` + runColumns + ` FROM runs WHERE job_name = $1 ORDER BY sequence DESC LIMIT $2 OFFSET $3`
	countAllRunsSQL  = `SELECT COUNT(*) FROM runs WHERE ($1 = '' OR status = $1)`
	listAllRunsSQL   = `SELECT ` + runColumns + ` FROM runs WHERE ($1 = '' OR status = $1) ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	markOrphansSQL   = `UPDATE runs SET status = 'failed', error = 'orphaned: server restarted during execution', completed_at = NOW() WHERE status = 'running'`
)

// CreateRun stores a new run record and writes the assigned sequence back
// into r.
func (d *DB) CreateRun(ctx context.Context, r *param.RunRecord) error {
	paramsJSON, err := json.Marshal(r.Parameters)
	if err != nil {
		return fmt.Errorf("encode parameters: %w", err)
	}

	var seq int64
	err = d.Pool.QueryRowContext(ctx, insertRunSQL,
		r.ID, r.JobName, r.Sequence, string(r.Status), paramsJSON,
		string(r.TriggerType), r.TriggerRef, r.Error,
		r.CreatedAt, r.StartedAt, r.CompletedAt,
	).Scan(&seq)
	if isUniqueViolation(err) {
		return fmt.Errorf("insert run %s: %w", r.ID, ErrDuplicate)
	}
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	r.Sequence = seq
	return nil
}

// GetRun retrieves a run record by ID.
func (d *DB) GetRun(ctx context.Context, id string) (*param.RunRecord, error) {
	r, err := scanRun(d.Pool.QueryRowContext(ctx, selectRunSQL, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run %s: %w", id, err)
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	return r, nil
}

// UpdateRun updates an existing run record.
func (d *DB) UpdateRun(ctx context.Context, r *param.RunRecord) error {
	paramsJSON, err := json.Marshal(r.Parameters)
	if err != nil {
		return fmt.Errorf("encode parameters: %w", err)
	}
	_, err = d.Pool.ExecContext(ctx, updateRunSQL,
		string(r.Status), paramsJSON, r.Error, r.StartedAt, r.CompletedAt, r.ID,
	)
	if err != nil {
		return fmt.Errorf("update run: %w", err)
	}
	return nil
}

// ListRunsByJob returns runs for a job, newest sequence first.
func (d *DB) ListRunsByJob(ctx context.Context, jobName string, limit, offset int) ([]*param.RunRecord, int, error) {
	var total int
	if err := d.Pool.QueryRowContext(ctx, countRunsByJob, jobName).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count runs: %w", err)
	}

	rows, err := d.Pool.QueryContext(ctx, listRunsByJobSQL, jobName, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	return scanRuns(rows, total)
}

// ListAllRuns returns all runs with pagination, optionally filtered by status.
func (d *DB) ListAllRuns(ctx context.Context, limit, offset int, status string) ([]*param.RunRecord, int, error) {
	var total int
	if err := d.Pool.QueryRowContext(ctx, countAllRunsSQL, status).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count runs: %w", err)
	}

	rows, err := d.Pool.QueryContext(ctx, listAllRunsSQL, status, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	return scanRuns(rows, total)
}

// MarkOrphanedRunsFailed fails runs left running by a previous process.
func (d *DB) MarkOrphanedRunsFailed(ctx context.Context) (int64, error) {
	res, err := d.Pool.ExecContext(ctx, markOrphansSQL)
	if err != nil {
		return 0, fmt.Errorf("mark orphaned runs: %w", err)
	}
	return res.RowsAffected()
}

func scanRun(row rowScanner) (*param.RunRecord, error) {
	r := &param.RunRecord{}
	var status, trigger string
	var paramsJSON []byte

	if err := row.Scan(&r.ID, &r.JobName, &r.Sequence, &status, &paramsJSON,
		&trigger, &r.TriggerRef, &r.Error,
		&r.CreatedAt, &r.StartedAt, &r.CompletedAt,
	); err != nil {
		return nil, err
	}

	r.Status = param.RunStatus(status)
	r.TriggerType = param.TriggerType(trigger)
	if err := json.Unmarshal(paramsJSON, &r.Parameters); err != nil {
		return nil, fmt.Errorf("decode parameters of run %s: %w", r.ID, err)
	}
	return r, nil
}

func scanRuns(rows *sql.Rows, total int) ([]*param.RunRecord, int, error) {
	var result []*param.RunRecord
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan run: %w", err)
		}
		result = append(result, r)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("scan runs: %w", err)
	}
	return result, total, nil
}
