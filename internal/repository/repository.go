package repository

import (
	"alcyxob/sets-tracker/internal/domain"
	"context"
)

// Error constants for repository layer
var (
	ErrNotFound     = RepositoryError("not found")
	ErrUpdateFailed = RepositoryError("update failed")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// SetRepository defines the interface for interacting with the sets table.
// Every call is scoped to a tenant value stored in the device_id column.
// Write methods take a Row so callers can drop columns the backing store lacks.
type SetRepository interface {
	List(ctx context.Context, tenant string, limit int) ([]domain.LoggedSet, error) // limit <= 0 means all
	Insert(ctx context.Context, tenant string, row Row) (*domain.LoggedSet, error)
	Update(ctx context.Context, tenant, id string, row Row) (*domain.LoggedSet, error) // ErrNotFound if id is absent
	Upsert(ctx context.Context, tenant string, rows []Row) error
	Delete(ctx context.Context, tenant string, ids []string) (int64, error) // deleting missing ids is not an error
	Ping(ctx context.Context) error
}
