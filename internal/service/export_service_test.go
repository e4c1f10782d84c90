package service

import (
	"alcyxob/sets-tracker/internal/domain"
	"alcyxob/sets-tracker/internal/export"
	"alcyxob/sets-tracker/internal/stats"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryStorage struct {
	objects    map[string][]byte
	presignErr error
	deleted    []string
}

func (m *memoryStorage) PutObject(_ context.Context, key, _ string, body []byte) error {
	if m.objects == nil {
		m.objects = map[string][]byte{}
	}
	m.objects[key] = body
	return nil
}

func (m *memoryStorage) GeneratePresignedDownloadURL(_ context.Context, key string, expires time.Duration) (string, error) {
	if m.presignErr != nil {
		return "", m.presignErr
	}
	return "https://bucket.example/" + key + "?expires=" + expires.String(), nil
}

func (m *memoryStorage) DeleteObject(_ context.Context, key string) error {
	m.deleted = append(m.deleted, key)
	delete(m.objects, key)
	return nil
}

func seededSets(t *testing.T) SetService {
	t.Helper()
	svc := newTestService(newMemoryRepo())
	ctx := context.Background()
	// 2025-03-01 10:00 PT and 2025-03-02 09:00 PT
	_, err := svc.CreateSet(ctx, domain.SetInput{
		WorkoutType:    ptr(domain.WorkoutType("bench press")),
		WeightLb:       ptr(135.0),
		Reps:           ptr(10),
		PerformedAtISO: ptr("2025-03-01T18:00:00.000Z"),
	})
	require.NoError(t, err)
	_, err = svc.CreateSet(ctx, domain.SetInput{
		WorkoutType:    ptr(domain.WorkoutType("bench press")),
		WeightLb:       ptr(155.0),
		Reps:           ptr(5),
		PerformedAtISO: ptr("2025-03-02T17:00:00.000Z"),
	})
	require.NoError(t, err)
	return svc
}

func TestExportDocumentFiltersByDay(t *testing.T) {
	svc := NewExportService(seededSets(t), nil, "shared", 0)

	body, count, err := svc.ExportDocument(context.Background(), "2025-03-02")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	doc, err := export.Parse(body)
	require.NoError(t, err)
	require.Len(t, doc.Sets, 1)
	assert.Equal(t, "2025-03-02", doc.Sets[0].DatePT)
	assert.Equal(t, "09:00", doc.Sets[0].TimePT)

	_, _, err = svc.ExportDocument(context.Background(), "03/02/2025")
	assert.ErrorIs(t, err, ErrValidationFailed)
}

func TestUploadExportRequiresStorage(t *testing.T) {
	svc := NewExportService(seededSets(t), nil, "shared", 0)
	_, err := svc.UploadExport(context.Background(), "")
	assert.ErrorIs(t, err, ErrExportNotConfigured)
}

func TestUploadExportStoresDocument(t *testing.T) {
	store := &memoryStorage{}
	svc := NewExportService(seededSets(t), store, "shared", 5*time.Minute)

	upload, err := svc.UploadExport(context.Background(), "")
	require.NoError(t, err)

	assert.Equal(t, 2, upload.Count)
	assert.True(t, strings.HasPrefix(upload.Key, "exports/shared/"))
	assert.Contains(t, upload.DownloadURL, "expires=5m0s")
	require.Contains(t, store.objects, upload.Key)

	doc, err := export.Parse(store.objects[upload.Key])
	require.NoError(t, err)
	assert.Equal(t, 2, doc.Count)
}

func TestUploadExportRemovesObjectWhenPresignFails(t *testing.T) {
	store := &memoryStorage{presignErr: errors.New("signer unavailable")}
	svc := NewExportService(seededSets(t), store, "shared", 0)

	_, err := svc.UploadExport(context.Background(), "")
	require.Error(t, err)
	assert.ErrorContains(t, err, "presign export")
	require.Len(t, store.deleted, 1)
	assert.True(t, strings.HasPrefix(store.deleted[0], "exports/shared/"))
	assert.Empty(t, store.objects)
}

func TestTrends(t *testing.T) {
	svc := NewExportService(seededSets(t), nil, "shared", 0)

	trends, err := svc.Trends(context.Background(), stats.Range{From: "2025-03-01", To: "2025-03-03"}, "bench press")
	require.NoError(t, err)

	require.Len(t, trends.DailyCounts, 3)
	assert.Equal(t, 1, trends.DailyCounts[0].Count)
	assert.Equal(t, 1, trends.DailyCounts[1].Count)
	assert.Equal(t, 0, trends.DailyCounts[2].Count)

	require.Len(t, trends.Volume, 1)
	assert.Equal(t, 135.0*10+155.0*5, trends.Volume[0].Volume)

	require.Len(t, trends.MaxWeight, 3)
	assert.Equal(t, 155.0, *trends.MaxWeight[1].MaxWeight)
	assert.Nil(t, trends.MaxWeight[2].MaxWeight)

	_, err = svc.Trends(context.Background(), stats.Range{From: "2025-03-01"}, "juggling")
	assert.ErrorIs(t, err, ErrValidationFailed)
}
