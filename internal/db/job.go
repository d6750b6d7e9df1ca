package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/soochol/stickyparam/internal/param"
)

const (
	insertJobSQL = `INSERT INTO jobs (name, description, parameters, created_at, updated_at) VALUES ($1, $2, $3, $4, $5)`
	selectJobSQL = `SELECT name, description, parameters, created_at, updated_at FROM jobs WHERE name = $1`
	listJobsSQL  = `SELECT name, description, parameters, created_at, updated_at FROM jobs ORDER BY name`
	updateJobSQL = `UPDATE jobs SET description = $1, parameters = $2, updated_at = $3 WHERE name = $4`
	deleteJobSQL = `DELETE FROM jobs WHERE name = $1`
)

// CreateJob stores a new job definition.
func (d *DB) CreateJob(ctx context.Context, j *param.Job) error {
	paramsJSON, err := json.Marshal(j.Parameters)
	if err != nil {
		return fmt.Errorf("encode parameters: %w", err)
	}

	_, err = d.Pool.ExecContext(ctx, insertJobSQL, j.Name, j.Description, paramsJSON, j.CreatedAt, j.UpdatedAt)
	if isUniqueViolation(err) {
		return fmt.Errorf("insert job %s: %w", j.Name, ErrDuplicate)
	}
	if err != nil {
		return fmt.Errorf("insert job: %w", err)
	}
	return nil
}

// GetJob retrieves a job by name. A missing job yields an error wrapping
// sql.ErrNoRows.
func (d *DB) GetJob(ctx context.Context, name string) (*param.Job, error) {
	j, err := scanJob(d.Pool.QueryRowContext(ctx, selectJobSQL, name))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("job %s: %w", name, err)
	}
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}
	return j, nil
}

// ListJobs returns every job ordered by name.
func (d *DB) ListJobs(ctx context.Context) ([]*param.Job, error) {
	rows, err := d.Pool.QueryContext(ctx, listJobsSQL)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	var result []*param.Job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("scan job: %w", err)
		}
		result = append(result, j)
	}
	return result, rows.Err()
}

// UpdateJob replaces a job's description and parameter set.
func (d *DB) UpdateJob(ctx context.Context, j *param.Job) error {
	paramsJSON, err := json.Marshal(j.Parameters)
	if err != nil {
		return fmt.Errorf("encode parameters: %w", err)
	}
	res, err := d.Pool.ExecContext(ctx, updateJobSQL, j.Description, paramsJSON, j.UpdatedAt, j.Name)
	if err != nil {
		return fmt.Errorf("update job: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("update job %s: %w", j.Name, sql.ErrNoRows)
	}
	return nil
}

// DeleteJob removes a job. Its run history is kept.
func (d *DB) DeleteJob(ctx context.Context, name string) error {
	res, err := d.Pool.ExecContext(ctx, deleteJobSQL, name)
	if err != nil {
		return fmt.Errorf("delete job: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("delete job %s: %w", name, sql.ErrNoRows)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (*param.Job, error) {
	j := &param.Job{}
	var paramsJSON []byte
	if err := row.Scan(&j.Name, &j.Description, &paramsJSON, &j.CreatedAt, &j.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(paramsJSON, &j.Parameters); err != nil {
		return nil, fmt.Errorf("decode parameters of %s: %w", j.Name, err)
	}
	return j, nil
}
