package service

import (
	"alcyxob/sets-tracker/internal/domain"
	"alcyxob/sets-tracker/internal/observability"
	"alcyxob/sets-tracker/internal/repository"
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
)

// --- Error Definitions ---
var (
	ErrSetNotFound         = errors.New("set not found")
	ErrValidationFailed    = errors.New("set validation failed")
	ErrStoreNotConfigured  = errors.New("set store is not configured")
	ErrExportNotConfigured = errors.New("export storage is not configured")
)

// StoreCheck is the result of probing the backing store.
type StoreCheck struct {
	OK    bool               `json:"ok"`
	Error *string            `json:"error"`
	Hint  *string            `json:"hint"`
	Data  []domain.LoggedSet `json:"data"`
}

// SyncResult summarises one bulk sync.
type SyncResult struct {
	Sets     []domain.LoggedSet
	Upserted int
	Stale    int
	Deleted  int64
}

// --- Service Interface ---
type SetService interface {
	ListSets(ctx context.Context) ([]domain.LoggedSet, error)
	CreateSet(ctx context.Context, in domain.SetInput) (*domain.LoggedSet, error)
	UpdateSet(ctx context.Context, id string, patch domain.SetPatch) (*domain.LoggedSet, error)
	DeleteSet(ctx context.Context, id string) error
	SyncSets(ctx context.Context, sets []domain.LoggedSet, deletedIDs []string) (*SyncResult, error)
	CheckStore(ctx context.Context) StoreCheck
}

// --- Service Implementation ---

// setService implements SetService. All rows are written under one tenant.
type setService struct {
	setRepo repository.SetRepository
	tenant  string
	now     func() time.Time
	newID   func() string
}

// NewSetService creates a SetService. A nil repository is allowed: every call
// then fails with ErrStoreNotConfigured.
func NewSetService(setRepo repository.SetRepository, tenant string) SetService {
	return &setService{
		setRepo: setRepo,
		tenant:  tenant,
		now:     time.Now,
		newID:   uuid.NewString,
	}
}

func (s *setService) ready() error {
	if s.setRepo == nil {
		return ErrStoreNotConfigured
	}
	return nil
}

// ListSets returns all sets, newest first.
func (s *setService) ListSets(ctx context.Context) ([]domain.LoggedSet, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	return s.setRepo.List(ctx, s.tenant, 0)
}

// CreateSet inserts a new set with a fresh id and equal created/updated stamps.
func (s *setService) CreateSet(ctx context.Context, in domain.SetInput) (*domain.LoggedSet, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if err := ValidateInput(in); err != nil {
		return nil, err
	}
	performedAt, err := canonicalPtr("performedAtISO", in.PerformedAtISO)
	if err != nil {
		return nil, err
	}
	in.PerformedAtISO = performedAt

	set := domain.NewLoggedSet(s.newID(), in, s.now())
	row := repository.RowFromSet(set)

	created, err := withDriftRetry("insert", func(drop []string) (*domain.LoggedSet, error) {
		return s.setRepo.Insert(ctx, s.tenant, stripColumns(row, drop))
	})
	if err != nil {
		log.Printf("ERROR: Failed to insert set %s: %v", set.ID, err)
		return nil, err
	}
	return created, nil
}

// UpdateSet applies a partial update. Only the fields present in patch are written.
func (s *setService) UpdateSet(ctx context.Context, id string, patch domain.SetPatch) (*domain.LoggedSet, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("%w: id is required", ErrValidationFailed)
	}
	if err := ValidateInput(patch.Input()); err != nil {
		return nil, err
	}
	updatedAt, err := canonical("updatedAtISO", patch.UpdatedAtISO)
	if err != nil {
		return nil, err
	}
	if patch.PerformedAtISO.Value != nil {
		if patch.PerformedAtISO.Value, err = canonicalPtr("performedAtISO", patch.PerformedAtISO.Value); err != nil {
			return nil, err
		}
	}

	if updatedAt == "" {
		updatedAt = domain.FormatISO(s.now())
	}
	row := repository.RowFromPatch(patch, updatedAt)

	updated, err := withDriftRetry("update", func(drop []string) (*domain.LoggedSet, error) {
		return s.setRepo.Update(ctx, s.tenant, id, stripColumns(row, drop))
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSetNotFound
		}
		log.Printf("ERROR: Failed to update set %s: %v", id, err)
		return nil, err
	}
	return updated, nil
}

// DeleteSet removes a set. Deleting an unknown id succeeds.
func (s *setService) DeleteSet(ctx context.Context, id string) error {
	if err := s.ready(); err != nil {
		return err
	}
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w: id is required", ErrValidationFailed)
	}
	n, err := s.setRepo.Delete(ctx, s.tenant, []string{id})
	if err != nil {
		log.Printf("ERROR: Failed to delete set %s: %v", id, err)
		return err
	}
	observability.RecordDeleted(n)
	return nil
}

// SyncSets applies a client's full state: deletes first, then upserts every
// incoming set that is new or at least as recent as the stored copy. The two
// steps are not atomic. Returns the resulting set list.
func (s *setService) SyncSets(ctx context.Context, sets []domain.LoggedSet, deletedIDs []string) (*SyncResult, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	for i := range sets {
		if strings.TrimSpace(sets[i].ID) == "" {
			return nil, fmt.Errorf("%w: sets[%d].id is required", ErrValidationFailed, i)
		}
		if err := ValidateInput(inputOf(sets[i])); err != nil {
			return nil, fmt.Errorf("sets[%d]: %w", i, err)
		}
		if err := canonicalizeStamps(&sets[i]); err != nil {
			return nil, fmt.Errorf("sets[%d]: %w", i, err)
		}
	}

	result := &SyncResult{}

	deleted := map[string]bool{}
	for _, id := range deletedIDs {
		if id != "" {
			deleted[id] = true
		}
	}
	if len(deleted) > 0 {
		ids := make([]string, 0, len(deleted))
		for id := range deleted {
			ids = append(ids, id)
		}
		n, err := s.setRepo.Delete(ctx, s.tenant, ids)
		if err != nil {
			return nil, fmt.Errorf("delete pending ids: %w", err)
		}
		result.Deleted = n
	}

	stored, err := s.setRepo.List(ctx, s.tenant, 0)
	if err != nil {
		return nil, fmt.Errorf("load stored sets: %w", err)
	}
	current := make(map[string]domain.LoggedSet, len(stored))
	for _, set := range stored {
		current[set.ID] = set
	}

	rows := make([]repository.Row, 0, len(sets))
	seen := map[string]bool{}
	for _, set := range sets {
		if deleted[set.ID] || seen[set.ID] {
			continue
		}
		seen[set.ID] = true
		if existing, ok := current[set.ID]; ok && set.LastModified() < storedLastModified(existing) {
			result.Stale++
			continue
		}
		set.Normalize()
		if set.CreatedAtISO == "" {
			set.CreatedAtISO = domain.FormatISO(s.now())
		}
		if set.UpdatedAtISO == "" {
			set.UpdatedAtISO = set.CreatedAtISO
		}
		rows = append(rows, repository.RowFromSet(set))
	}

	if len(rows) > 0 {
		_, err := withDriftRetry("upsert", func(drop []string) (struct{}, error) {
			stripped := make([]repository.Row, len(rows))
			for i, row := range rows {
				stripped[i] = stripColumns(row, drop)
			}
			return struct{}{}, s.setRepo.Upsert(ctx, s.tenant, stripped)
		})
		if err != nil {
			return nil, fmt.Errorf("upsert sets: %w", err)
		}
	}
	result.Upserted = len(rows)

	result.Sets, err = s.setRepo.List(ctx, s.tenant, 0)
	if err != nil {
		return nil, fmt.Errorf("reload sets: %w", err)
	}

	observability.RecordSyncPush(result.Upserted, result.Stale, result.Deleted, s.now())
	log.Printf("INFO: Sync applied: %d upserted, %d stale, %d deleted, %d total", result.Upserted, result.Stale, result.Deleted, len(result.Sets))
	return result, nil
}

// CheckStore pings the store, then reads one row to verify the sets table is readable.
func (s *setService) CheckStore(ctx context.Context) StoreCheck {
	if s.setRepo == nil {
		msg := "Set store is not configured. Missing DATABASE_URI."
		return StoreCheck{Error: &msg}
	}
	if err := s.setRepo.Ping(ctx); err != nil {
		msg := err.Error()
		hint := "Could not reach the database. Check DATABASE_URI and that the server is running."
		return StoreCheck{Error: &msg, Hint: &hint}
	}
	data, err := s.setRepo.List(ctx, s.tenant, 1)
	if err != nil {
		msg := err.Error()
		hint := storeHint(msg)
		return StoreCheck{Error: &msg, Hint: &hint}
	}
	if data == nil {
		data = []domain.LoggedSet{}
	}
	return StoreCheck{OK: true, Data: data}
}

func storeHint(message string) string {
	normalized := strings.ToLower(message)
	switch {
	case strings.Contains(normalized, "relation") && strings.Contains(normalized, "does not exist"):
		return "Connected to the database, but the table 'sets' doesn't exist yet. Create it (the server does this on startup for postgres) or check the database name."
	case strings.Contains(normalized, "permission denied"),
		strings.Contains(normalized, "row level security"),
		strings.Contains(normalized, "rls"),
		strings.Contains(normalized, "not authorized"):
		return "Connected to the database, but access is blocked. Grant the service user read access to 'sets'."
	default:
		return "Connected to the database, but the query failed. See error for details."
	}
}

// canonical rewrites a client timestamp into domain.ISOLayout so stored stamps
// stay comparable as strings.
func canonical(field, value string) (string, error) {
	out, err := domain.CanonicalISO(value)
	if err != nil {
		return "", fmt.Errorf("%w: %s must be an ISO timestamp", ErrValidationFailed, field)
	}
	return out, nil
}

func canonicalPtr(field string, value *string) (*string, error) {
	if value == nil || *value == "" {
		return value, nil
	}
	out, err := canonical(field, *value)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func canonicalizeStamps(set *domain.LoggedSet) error {
	var err error
	if set.CreatedAtISO, err = canonical("createdAtISO", set.CreatedAtISO); err != nil {
		return err
	}
	if set.UpdatedAtISO, err = canonical("updatedAtISO", set.UpdatedAtISO); err != nil {
		return err
	}
	set.PerformedAtISO, err = canonicalPtr("performedAtISO", set.PerformedAtISO)
	return err
}

// storedLastModified tolerates rows written before stamps were canonical.
func storedLastModified(set domain.LoggedSet) string {
	if v, err := domain.CanonicalISO(set.LastModified()); err == nil {
		return v
	}
	return set.LastModified()
}

func inputOf(s domain.LoggedSet) domain.SetInput {
	return domain.SetInput{
		WorkoutType:        s.WorkoutType,
		WeightLb:           s.WeightLb,
		WeightIsBodyweight: s.WeightIsBodyweight,
		Reps:               s.Reps,
		RestSeconds:        s.RestSeconds,
		DurationSeconds:    s.DurationSeconds,
		PerformedAtISO:     s.PerformedAtISO,
	}
}

// ValidateInput checks ranges and catalog membership. Errors wrap ErrValidationFailed.
func ValidateInput(in domain.SetInput) error {
	var problems []string
	if in.WorkoutType != nil && *in.WorkoutType != "" && !domain.IsKnownWorkoutType(*in.WorkoutType) {
		problems = append(problems, fmt.Sprintf("workoutType %q is not in the catalog", *in.WorkoutType))
	}
	if in.WeightLb != nil && *in.WeightLb < 0 {
		problems = append(problems, "weightLb must be >= 0")
	}
	if in.Reps != nil && *in.Reps < 0 {
		problems = append(problems, "reps must be >= 0")
	}
	if in.RestSeconds != nil && *in.RestSeconds < 0 {
		problems = append(problems, "restSeconds must be >= 0")
	}
	if in.DurationSeconds != nil && *in.DurationSeconds < 0 {
		problems = append(problems, "durationSeconds must be >= 0")
	}
	if in.PerformedAtISO != nil && *in.PerformedAtISO != "" {
		if _, err := domain.ParseISO(*in.PerformedAtISO); err != nil {
			problems = append(problems, "performedAtISO must be an ISO timestamp")
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrValidationFailed, strings.Join(problems, "; "))
	}
	return nil
}
