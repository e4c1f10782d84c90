package postgres

import (
	"alcyxob/sets-tracker/internal/domain"
	"alcyxob/sets-tracker/internal/repository"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
)

// postgresSetRepository implements repository.SetRepository on a sets table.
type postgresSetRepository struct {
	db *sql.DB
}

// NewPostgresSetRepository creates a new Set repository backed by PostgreSQL.
func NewPostgresSetRepository(db *sql.DB) repository.SetRepository {
	return &postgresSetRepository{db: db}
}

const listQuery = `SELECT * FROM sets WHERE device_id = $1 ORDER BY COALESCE(performed_at_iso, created_at_iso) DESC`

func (r *postgresSetRepository) List(ctx context.Context, tenant string, limit int) ([]domain.LoggedSet, error) {
	query := listQuery
	args := []any{tenant}
	if limit > 0 {
		query += " LIMIT $2"
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanSets(rows)
}

func (r *postgresSetRepository) Insert(ctx context.Context, tenant string, row repository.Row) (*domain.LoggedSet, error) {
	if !row.Has(repository.ColID) {
		return nil, errors.New("set id is required for insert")
	}
	full := withTenant(tenant, row)
	query := fmt.Sprintf("INSERT INTO sets (%s) VALUES (%s) RETURNING *",
		strings.Join(full.Names(), ", "), placeholders(1, len(full)))

	rows, err := r.db.QueryContext(ctx, query, full.Values()...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanOne(rows)
}

func (r *postgresSetRepository) Update(ctx context.Context, tenant, id string, row repository.Row) (*domain.LoggedSet, error) {
	if id == "" {
		return nil, errors.New("set ID is required for update")
	}
	cols := row.Without(repository.ColID)
	if len(cols) == 0 {
		return nil, repository.ErrUpdateFailed
	}

	assignments := make([]string, len(cols))
	for i, c := range cols {
		assignments[i] = fmt.Sprintf("%s = $%d", c.Name, i+1)
	}
	n := len(cols)
	query := fmt.Sprintf("UPDATE sets SET %s WHERE id = $%d AND device_id = $%d RETURNING *",
		strings.Join(assignments, ", "), n+1, n+2)
	args := append(cols.Values(), id, tenant)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanOne(rows)
}

// Upsert writes all rows in a single statement. Every row must carry the same
// columns as the first one.
func (r *postgresSetRepository) Upsert(ctx context.Context, tenant string, rows []repository.Row) error {
	if len(rows) == 0 {
		return nil
	}
	names := withTenant(tenant, rows[0]).Names()

	values := make([]string, 0, len(rows))
	args := make([]any, 0, len(rows)*len(names))
	for _, row := range rows {
		full := withTenant(tenant, row)
		if !sameNames(full.Names(), names) {
			return fmt.Errorf("upsert rows have mismatched columns: %v vs %v", full.Names(), names)
		}
		values = append(values, "("+placeholders(len(args)+1, len(full))+")")
		args = append(args, full.Values()...)
	}

	updates := make([]string, 0, len(names))
	for _, name := range names {
		if name == repository.ColID {
			continue
		}
		updates = append(updates, fmt.Sprintf("%s = EXCLUDED.%s", name, name))
	}

	query := fmt.Sprintf("INSERT INTO sets (%s) VALUES %s ON CONFLICT (id) DO UPDATE SET %s WHERE sets.device_id = EXCLUDED.device_id",
		strings.Join(names, ", "), strings.Join(values, ", "), strings.Join(updates, ", "))
	_, err := r.db.ExecContext(ctx, query, args...)
	return err
}

func (r *postgresSetRepository) Delete(ctx context.Context, tenant string, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM sets WHERE device_id = $1 AND id = ANY($2)", tenant, pq.Array(ids))
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (r *postgresSetRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func withTenant(tenant string, row repository.Row) repository.Row {
	full := make(repository.Row, 0, len(row)+1)
	full = append(full, repository.Column{Name: repository.ColDeviceID, Value: tenant})
	return append(full, row.Without(repository.ColDeviceID)...)
}

// placeholders renders "$start, $start+1, ..." for n parameters.
func placeholders(start, n int) string {
	ps := make([]string, n)
	for i := range ps {
		ps[i] = fmt.Sprintf("$%d", start+i)
	}
	return strings.Join(ps, ", ")
}

func sameNames(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// scanSets reads whatever columns the table has, so tables missing the
// optional columns still decode.
func scanSets(rows *sql.Rows) ([]domain.LoggedSet, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	sets := []domain.LoggedSet{}
	for rows.Next() {
		raw := make([]any, len(cols))
		dest := make([]any, len(cols))
		for i := range raw {
			dest[i] = &raw[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		values := make(map[string]any, len(cols))
		for i, name := range cols {
			values[name] = raw[i]
		}
		sets = append(sets, repository.SetFromValues(values))
	}
	return sets, rows.Err()
}

func scanOne(rows *sql.Rows) (*domain.LoggedSet, error) {
	sets, err := scanSets(rows)
	if err != nil {
		return nil, err
	}
	if len(sets) == 0 {
		return nil, repository.ErrNotFound
	}
	return &sets[0], nil
}
