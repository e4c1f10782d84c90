package postgres

import (
	"alcyxob/sets-tracker/internal/domain"
	"alcyxob/sets-tracker/internal/repository"
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var setColumns = []string{
	"id", "device_id", "workout_type", "weight_lb", "weight_is_bodyweight",
	"reps", "rest_seconds", "duration_seconds", "performed_at_iso", "created_at_iso", "updated_at_iso",
}

func newMock(t *testing.T) (repository.SetRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewPostgresSetRepository(db), mock
}

func TestPostgresSetRepository_List(t *testing.T) {
	repo, mock := newMock(t)

	rows := sqlmock.NewRows(setColumns).
		AddRow("a", "shared", "squat", 225.0, false, int64(5), int64(120), nil, "2025-01-02T18:00:00.000Z", "2025-01-02T18:00:00.000Z", "2025-01-02T18:00:00.000Z").
		AddRow("b", "shared", "plank", nil, true, nil, nil, int64(60), nil, "2025-01-01T18:00:00.000Z", "2025-01-01T18:00:00.000Z")

	mock.ExpectQuery(regexp.QuoteMeta(listQuery + " LIMIT $2")).
		WithArgs("shared", 50).
		WillReturnRows(rows)

	sets, err := repo.List(context.Background(), "shared", 50)
	require.NoError(t, err)
	require.Len(t, sets, 2)
	assert.Equal(t, "a", sets[0].ID)
	assert.Equal(t, 225.0, *sets[0].WeightLb)
	assert.Equal(t, domain.WorkoutType("plank"), *sets[1].WorkoutType)
	assert.Equal(t, 60, *sets[1].DurationSeconds)
	assert.Nil(t, sets[1].PerformedAtISO)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSetRepository_ListToleratesMissingColumns(t *testing.T) {
	repo, mock := newMock(t)

	// A table created before duration and bodyweight existed.
	rows := sqlmock.NewRows([]string{"id", "device_id", "workout_type", "weight_lb", "reps", "rest_seconds", "performed_at_iso", "created_at_iso", "updated_at_iso"}).
		AddRow("a", "shared", "squat", 315.0, int64(3), int64(180), nil, "2025-01-02T18:00:00.000Z", "2025-01-02T18:00:00.000Z")

	mock.ExpectQuery(regexp.QuoteMeta(listQuery)).
		WithArgs("shared").
		WillReturnRows(rows)

	sets, err := repo.List(context.Background(), "shared", 0)
	require.NoError(t, err)
	require.Len(t, sets, 1)
	assert.Nil(t, sets[0].DurationSeconds)
	assert.Nil(t, sets[0].WeightIsBodyweight)
}

func TestPostgresSetRepository_Insert(t *testing.T) {
	repo, mock := newMock(t)

	row := repository.Row{
		{Name: repository.ColID, Value: "n1"},
		{Name: repository.ColReps, Value: int64(10)},
		{Name: repository.ColCreatedAt, Value: "2025-01-02T18:00:00.000Z"},
		{Name: repository.ColUpdatedAt, Value: "2025-01-02T18:00:00.000Z"},
	}

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO sets (device_id, id, reps, created_at_iso, updated_at_iso) VALUES ($1, $2, $3, $4, $5) RETURNING *")).
		WithArgs("shared", "n1", int64(10), "2025-01-02T18:00:00.000Z", "2025-01-02T18:00:00.000Z").
		WillReturnRows(sqlmock.NewRows(setColumns).
			AddRow("n1", "shared", nil, nil, false, int64(10), nil, nil, nil, "2025-01-02T18:00:00.000Z", "2025-01-02T18:00:00.000Z"))

	created, err := repo.Insert(context.Background(), "shared", row)
	require.NoError(t, err)
	assert.Equal(t, "n1", created.ID)
	assert.Equal(t, 10, *created.Reps)
	assert.Equal(t, created.CreatedAtISO, created.UpdatedAtISO)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSetRepository_UpdateNotFound(t *testing.T) {
	repo, mock := newMock(t)

	row := repository.Row{
		{Name: repository.ColReps, Value: int64(8)},
		{Name: repository.ColUpdatedAt, Value: "2025-01-03T00:00:00.000Z"},
	}
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE sets SET reps = $1, updated_at_iso = $2 WHERE id = $3 AND device_id = $4 RETURNING *")).
		WithArgs(int64(8), "2025-01-03T00:00:00.000Z", "missing", "shared").
		WillReturnRows(sqlmock.NewRows(setColumns))

	_, err := repo.Update(context.Background(), "shared", "missing", row)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSetRepository_UpdateWithoutColumns(t *testing.T) {
	repo, _ := newMock(t)

	_, err := repo.Update(context.Background(), "shared", "x", repository.Row{{Name: repository.ColID, Value: "x"}})
	assert.ErrorIs(t, err, repository.ErrUpdateFailed)
}

func TestPostgresSetRepository_Upsert(t *testing.T) {
	repo, mock := newMock(t)

	rows := []repository.Row{
		{{Name: repository.ColID, Value: "a"}, {Name: repository.ColReps, Value: int64(1)}},
		{{Name: repository.ColID, Value: "b"}, {Name: repository.ColReps, Value: nil}},
	}

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO sets (device_id, id, reps) VALUES ($1, $2, $3), ($4, $5, $6) ON CONFLICT (id) DO UPDATE SET device_id = EXCLUDED.device_id, reps = EXCLUDED.reps WHERE sets.device_id = EXCLUDED.device_id")).
		WithArgs("shared", "a", int64(1), "shared", "b", nil).
		WillReturnResult(sqlmock.NewResult(0, 2))

	require.NoError(t, repo.Upsert(context.Background(), "shared", rows))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSetRepository_UpsertRejectsMixedColumns(t *testing.T) {
	repo, _ := newMock(t)

	rows := []repository.Row{
		{{Name: repository.ColID, Value: "a"}, {Name: repository.ColReps, Value: int64(1)}},
		{{Name: repository.ColID, Value: "b"}},
	}
	assert.Error(t, repo.Upsert(context.Background(), "shared", rows))
}

func TestPostgresSetRepository_Delete(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM sets WHERE device_id = $1 AND id = ANY($2)")).
		WithArgs("shared", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	n, err := repo.Delete(context.Background(), "shared", []string{"a", "gone"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = repo.Delete(context.Background(), "shared", nil)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}
