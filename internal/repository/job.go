// Package repository defines storage interfaces for domain entities.
package repository

import (
	"context"
	"errors"

	"github.com/soochol/stickyparam/internal/param"
)

var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("not found")
	// ErrExists is returned when creating an entity whose key is taken.
	ErrExists = errors.New("already exists")
)

// JobRepository abstracts job definition persistence so callers don't
// need to know whether storage is in-memory, PostgreSQL, or a mix.
type JobRepository interface {
	Create(ctx context.Context, job *param.Job) error
	Get(ctx context.Context, name string) (*param.Job, error)
	List(ctx context.Context) ([]*param.Job, error)
	Update(ctx context.Context, job *param.Job) error
	Delete(ctx context.Context, name string) error
}

func cloneJob(j *param.Job) *param.Job {
	c := *j
	c.Parameters = append([]param.Definition(nil), j.Parameters...)
	return &c
}
