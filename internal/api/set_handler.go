// internal/api/set_handler.go
package api

import (
	"alcyxob/sets-tracker/internal/domain"
	"alcyxob/sets-tracker/internal/pacific"
	"alcyxob/sets-tracker/internal/service"
	"alcyxob/sets-tracker/internal/stats"
	"bytes"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

// SetHandler serves /api/sets.
type SetHandler struct {
	setService service.SetService
}

// NewSetHandler creates a new SetHandler.
func NewSetHandler(setService service.SetService) *SetHandler {
	return &SetHandler{setService: setService}
}

// --- DTOs for API ---

// SetFieldsRequest is the user-editable part of a set as sent by clients.
type SetFieldsRequest struct {
	WorkoutType        *string  `json:"workoutType" binding:"omitempty,workout_type"`
	WeightLb           *float64 `json:"weightLb" binding:"omitempty,gte=0"`
	WeightIsBodyweight *bool    `json:"weightIsBodyweight"`
	Reps               *int     `json:"reps" binding:"omitempty,gte=0"`
	RestSeconds        *int     `json:"restSeconds" binding:"omitempty,gte=0"`
	DurationSeconds    *int     `json:"durationSeconds" binding:"omitempty,gte=0"`
	PerformedAtISO     *string  `json:"performedAtISO" binding:"omitempty,iso_timestamp"`
}

func (r SetFieldsRequest) toInput() domain.SetInput {
	in := domain.SetInput{
		WeightLb:           r.WeightLb,
		WeightIsBodyweight: r.WeightIsBodyweight,
		Reps:               r.Reps,
		RestSeconds:        r.RestSeconds,
		DurationSeconds:    r.DurationSeconds,
		PerformedAtISO:     r.PerformedAtISO,
	}
	if r.WorkoutType != nil && *r.WorkoutType != "" {
		t := domain.WorkoutType(*r.WorkoutType)
		in.WorkoutType = &t
	}
	return in
}

func fieldsFromInput(in domain.SetInput) SetFieldsRequest {
	r := SetFieldsRequest{
		WeightLb:           in.WeightLb,
		WeightIsBodyweight: in.WeightIsBodyweight,
		Reps:               in.Reps,
		RestSeconds:        in.RestSeconds,
		DurationSeconds:    in.DurationSeconds,
		PerformedAtISO:     in.PerformedAtISO,
	}
	if in.WorkoutType != nil {
		s := string(*in.WorkoutType)
		r.WorkoutType = &s
	}
	return r
}

// UpdateSetRequest is the PATCH body: the id plus any subset of fields.
// The older {"id", "updates": {...}} shape is also accepted.
type UpdateSetRequest struct {
	ID string `json:"id"`
	domain.SetPatch
	Updates *domain.SetPatch `json:"updates"`
}

// DeleteSetRequest is the DELETE body.
type DeleteSetRequest struct {
	ID string `json:"id"`
}

// SyncSetsRequest is the PUT body.
type SyncSetsRequest struct {
	Sets       []domain.LoggedSet `json:"sets"`
	DeletedIDs []string           `json:"deletedIds"`
}

// --- Handler Methods ---

// ListSets godoc
// @Summary List logged sets
// @Description Returns every set, newest first. With ?day=YYYY-MM-DD only sets performed that Pacific day.
// @Tags Sets
// @Produce json
// @Success 200 {array} domain.LoggedSet
// @Failure 400 {object} gin.H "Invalid day"
// @Failure 500 {object} gin.H "Store not configured or unreachable"
// @Router /api/sets [get]
func (h *SetHandler) ListSets(c *gin.Context) {
	sets, err := h.setService.ListSets(c.Request.Context())
	if err != nil {
		handleServiceError(c, err)
		return
	}

	if day := c.Query("day"); day != "" {
		if _, err := pacific.ParseDay(day); err != nil {
			abortWithDetails(c, http.StatusBadRequest, "Invalid query.", []FieldError{{Field: "day", Message: "must be YYYY-MM-DD"}})
			return
		}
		sets = stats.FilterByRange(sets, stats.Range{From: day})
	}
	c.JSON(http.StatusOK, stats.SortSets(sets))
}

// CreateSet godoc
// @Summary Log a new set
// @Description The server assigns the id and the created/updated timestamps.
// @Tags Sets
// @Accept json
// @Produce json
// @Param set body SetFieldsRequest true "Set fields"
// @Success 201 {object} domain.LoggedSet
// @Failure 400 {object} gin.H "Invalid payload"
// @Failure 500 {object} gin.H "Store error"
// @Router /api/sets [post]
func (h *SetHandler) CreateSet(c *gin.Context) {
	var req SetFieldsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithBindError(c, err)
		return
	}

	created, err := h.setService.CreateSet(c.Request.Context(), req.toInput())
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// UpdateSet godoc
// @Summary Partially update a set
// @Description Fields absent from the body are left alone; null clears a field.
// @Tags Sets
// @Accept json
// @Produce json
// @Param update body UpdateSetRequest true "Set id and changed fields"
// @Success 200 {object} domain.LoggedSet
// @Failure 400 {object} gin.H "Invalid payload"
// @Failure 404 {object} gin.H "Set not found"
// @Failure 500 {object} gin.H "Store error"
// @Router /api/sets [patch]
func (h *SetHandler) UpdateSet(c *gin.Context) {
	var req UpdateSetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithBindError(c, err)
		return
	}
	if strings.TrimSpace(req.ID) == "" {
		abortWithDetails(c, http.StatusBadRequest, "Invalid payload.", []FieldError{{Field: "id", Message: "is required"}})
		return
	}
	patch := req.SetPatch
	if req.Updates != nil {
		patch = *req.Updates
	}
	if err := binding.Validator.ValidateStruct(fieldsFromInput(patch.Input())); err != nil {
		abortWithBindError(c, err)
		return
	}

	updated, err := h.setService.UpdateSet(c.Request.Context(), req.ID, patch)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// DeleteSet godoc
// @Summary Delete a set
// @Description Deleting an id that does not exist succeeds.
// @Tags Sets
// @Accept json
// @Produce json
// @Param id query string false "Set id (or send {\"id\"} as the body)"
// @Success 200 {object} gin.H "ok"
// @Failure 400 {object} gin.H "Missing id"
// @Failure 500 {object} gin.H "Store error"
// @Router /api/sets [delete]
func (h *SetHandler) DeleteSet(c *gin.Context) {
	id := c.Query("id")
	if id == "" {
		var req DeleteSetRequest
		body, err := c.GetRawData()
		if err != nil {
			abortWithBindError(c, err)
			return
		}
		if len(bytes.TrimSpace(body)) > 0 {
			if err := json.Unmarshal(body, &req); err != nil {
				abortWithBindError(c, err)
				return
			}
		}
		id = req.ID
	}
	if strings.TrimSpace(id) == "" {
		abortWithDetails(c, http.StatusBadRequest, "Missing id.", []FieldError{{Field: "id", Message: "is required"}})
		return
	}

	if err := h.setService.DeleteSet(c.Request.Context(), id); err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// SyncSets godoc
// @Summary Bulk sync
// @Description Deletes deletedIds, then upserts every set not older than the stored copy. Returns the full list.
// @Tags Sets
// @Accept json
// @Produce json
// @Param sync body SyncSetsRequest true "Local state"
// @Success 200 {array} domain.LoggedSet
// @Failure 400 {object} gin.H "Invalid payload"
// @Failure 500 {object} gin.H "Store error"
// @Router /api/sets [put]
func (h *SetHandler) SyncSets(c *gin.Context) {
	var req SyncSetsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithBindError(c, err)
		return
	}

	result, err := h.setService.SyncSets(c.Request.Context(), req.Sets, req.DeletedIDs)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats.SortSets(result.Sets))
}

// StoreCheck godoc
// @Summary Diagnose the backing store
// @Tags Diagnostics
// @Produce json
// @Success 200 {object} service.StoreCheck
// @Failure 500 {object} service.StoreCheck
// @Router /api/store-check [get]
func (h *SetHandler) StoreCheck(c *gin.Context) {
	check := h.setService.CheckStore(c.Request.Context())
	status := http.StatusOK
	if !check.OK {
		status = http.StatusInternalServerError
	}
	c.JSON(status, check)
}

func abortWithBindError(c *gin.Context, err error) {
	if details, ok := validationDetails(err); ok {
		abortWithDetails(c, http.StatusBadRequest, "Invalid payload.", details)
		return
	}
	abortWithError(c, http.StatusBadRequest, "Invalid payload: "+err.Error())
}

// handleServiceError maps service errors onto status codes.
func handleServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrValidationFailed):
		abortWithDetails(c, http.StatusBadRequest, "Invalid payload.", []FieldError{{Message: err.Error()}})
	case errors.Is(err, service.ErrSetNotFound):
		abortWithError(c, http.StatusNotFound, "Set not found.")
	case errors.Is(err, service.ErrStoreNotConfigured):
		abortWithDetails(c, http.StatusInternalServerError, "Set store is not configured.",
			gin.H{"hint": "Set DATABASE_URI (and DATABASE_DRIVER) and restart the server."})
	case errors.Is(err, service.ErrExportNotConfigured):
		abortWithDetails(c, http.StatusInternalServerError, "Export storage is not configured.",
			gin.H{"hint": "Set S3_BUCKET_NAME and credentials to enable uploads."})
	default:
		log.Printf("ERROR: %s %s (device %q): %v", c.Request.Method, c.FullPath(), getDeviceIDFromContext(c), err)
		abortWithError(c, http.StatusInternalServerError, err.Error())
	}
}
