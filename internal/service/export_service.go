package service

import (
	"alcyxob/sets-tracker/internal/domain"
	"alcyxob/sets-tracker/internal/export"
	"alcyxob/sets-tracker/internal/pacific"
	"alcyxob/sets-tracker/internal/stats"
	"alcyxob/sets-tracker/internal/storage"
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
)

const exportContentType = "application/json"

// ExportUpload describes an export document stored in the bucket.
type ExportUpload struct {
	Key         string    `json:"key"`
	DownloadURL string    `json:"downloadUrl"`
	Count       int       `json:"count"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// Trends is the data behind the trends screen.
type Trends struct {
	Range       stats.Range            `json:"range"`
	WorkoutType *domain.WorkoutType    `json:"workoutType"`
	DailyCounts []stats.DailyCount     `json:"dailyCounts"`
	Volume      []stats.WorkoutVolume  `json:"volume"`
	MaxWeight   []stats.MaxWeightPoint `json:"maxWeight"`
}

type ExportService interface {
	ExportDocument(ctx context.Context, day string) ([]byte, int, error)
	UploadExport(ctx context.Context, day string) (*ExportUpload, error)
	Trends(ctx context.Context, r stats.Range, workoutType domain.WorkoutType) (*Trends, error)
}

// exportService renders stored sets as export documents and trend series.
type exportService struct {
	sets          SetService
	fileStorage   storage.ExportStorage // nil when no bucket is configured
	presignExpiry time.Duration
	tenant        string
	now           func() time.Time
}

func NewExportService(sets SetService, fileStorage storage.ExportStorage, tenant string, presignExpiry time.Duration) ExportService {
	return &exportService{
		sets:          sets,
		fileStorage:   fileStorage,
		presignExpiry: presignExpiry,
		tenant:        tenant,
		now:           time.Now,
	}
}

// selectSets returns stored sets newest first, limited to one Pacific day when day is set.
func (s *exportService) selectSets(ctx context.Context, day string) ([]domain.LoggedSet, error) {
	all, err := s.sets.ListSets(ctx)
	if err != nil {
		return nil, err
	}
	if day != "" {
		if _, err := pacific.ParseDay(day); err != nil {
			return nil, fmt.Errorf("%w: day must be YYYY-MM-DD", ErrValidationFailed)
		}
		all = stats.FilterByRange(all, stats.Range{From: day})
	}
	return stats.SortSets(all), nil
}

// ExportDocument renders the sets_export_v1 document.
func (s *exportService) ExportDocument(ctx context.Context, day string) ([]byte, int, error) {
	sets, err := s.selectSets(ctx, day)
	if err != nil {
		return nil, 0, err
	}
	body, err := export.Format(sets)
	if err != nil {
		return nil, 0, err
	}
	return body, len(sets), nil
}

// UploadExport stores the export document in the bucket and returns a presigned download link.
func (s *exportService) UploadExport(ctx context.Context, day string) (*ExportUpload, error) {
	if s.fileStorage == nil {
		return nil, ErrExportNotConfigured
	}
	body, count, err := s.ExportDocument(ctx, day)
	if err != nil {
		return nil, err
	}

	now := s.now()
	key := fmt.Sprintf("exports/%s/%s/%s.json", s.tenant, now.In(pacific.Location()).Format("2006-01-02"), uuid.NewString())
	if err := s.fileStorage.PutObject(ctx, key, exportContentType, body); err != nil {
		return nil, fmt.Errorf("upload export: %w", err)
	}

	expiry := s.presignExpiry
	if expiry <= 0 {
		expiry = storage.DefaultPresignedURLExpiry
	}
	url, err := s.fileStorage.GeneratePresignedDownloadURL(ctx, key, expiry)
	if err != nil {
		// Unlinked objects are never read; drop it.
		if delErr := s.fileStorage.DeleteObject(ctx, key); delErr != nil {
			log.Printf("WARN: Could not remove unlinked export %s: %v", key, delErr)
		}
		return nil, fmt.Errorf("presign export: %w", err)
	}

	log.Printf("INFO: Uploaded export %s with %d sets", key, count)
	return &ExportUpload{Key: key, DownloadURL: url, Count: count, ExpiresAt: now.Add(expiry).UTC()}, nil
}

// Trends aggregates stored sets over r. An empty workoutType skips the max-weight series.
func (s *exportService) Trends(ctx context.Context, r stats.Range, workoutType domain.WorkoutType) (*Trends, error) {
	if r.From == "" {
		r = stats.LastDays(7)
	}
	if _, err := pacific.ParseDay(r.From); err != nil {
		return nil, fmt.Errorf("%w: from must be YYYY-MM-DD", ErrValidationFailed)
	}
	if r.To != "" {
		if _, err := pacific.ParseDay(r.To); err != nil {
			return nil, fmt.Errorf("%w: to must be YYYY-MM-DD", ErrValidationFailed)
		}
	}
	if workoutType != "" && !domain.IsKnownWorkoutType(workoutType) {
		return nil, fmt.Errorf("%w: workoutType %q is not in the catalog", ErrValidationFailed, workoutType)
	}

	all, err := s.sets.ListSets(ctx)
	if err != nil {
		return nil, err
	}
	inRange := stats.FilterByRange(all, r)

	trends := &Trends{
		Range:       r,
		DailyCounts: stats.DailyCounts(all, r),
		Volume:      stats.VolumeByWorkoutType(inRange),
		MaxWeight:   []stats.MaxWeightPoint{},
	}
	if workoutType != "" {
		trends.WorkoutType = &workoutType
		trends.MaxWeight = stats.MaxWeightTrend(all, r, workoutType)
	}
	return trends, nil
}
