package api

import (
	"alcyxob/sets-tracker/internal/domain"
	"alcyxob/sets-tracker/internal/service"
	"alcyxob/sets-tracker/internal/stats"
	"net/http"

	"github.com/gin-gonic/gin"
)

// ExportHandler serves exports, trends and the workout catalog.
type ExportHandler struct {
	exportService service.ExportService
}

// NewExportHandler creates a new ExportHandler.
func NewExportHandler(exportService service.ExportService) *ExportHandler {
	return &ExportHandler{exportService: exportService}
}

// WorkoutOptionResponse is a catalog entry with the fields its form shows.
type WorkoutOptionResponse struct {
	domain.WorkoutOption
	Fields domain.FieldVisibility `json:"fields"`
}

// WorkoutGroupResponse is one catalog group.
type WorkoutGroupResponse struct {
	ID    string                  `json:"id"`
	Label string                  `json:"label"`
	Emoji string                  `json:"emoji"`
	Items []WorkoutOptionResponse `json:"items"`
}

// GetExport godoc
// @Summary Export sets as sets_export_v1 JSON
// @Tags Export
// @Produce json
// @Param day query string false "Only sets performed on this Pacific day (YYYY-MM-DD)"
// @Success 200 {object} export.Document
// @Failure 400 {object} gin.H "Invalid day"
// @Failure 500 {object} gin.H "Store error"
// @Router /api/sets/export [get]
func (h *ExportHandler) GetExport(c *gin.Context) {
	body, _, err := h.exportService.ExportDocument(c.Request.Context(), c.Query("day"))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", body)
}

// UploadExport godoc
// @Summary Upload an export to object storage
// @Description Stores the sets_export_v1 document in the bucket and returns a presigned download URL.
// @Tags Export
// @Produce json
// @Param day query string false "Only sets performed on this Pacific day (YYYY-MM-DD)"
// @Success 201 {object} service.ExportUpload
// @Failure 500 {object} gin.H "Storage not configured or upload failed"
// @Router /api/sets/export [post]
func (h *ExportHandler) UploadExport(c *gin.Context) {
	upload, err := h.exportService.UploadExport(c.Request.Context(), c.Query("day"))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, upload)
}

// GetStats godoc
// @Summary Trend series
// @Description Daily counts and volume over [from, to]; max weight per day when workoutType is given. Defaults to the last 7 days.
// @Tags Stats
// @Produce json
// @Param from query string false "YYYY-MM-DD"
// @Param to query string false "YYYY-MM-DD"
// @Param workoutType query string false "Workout type for the max-weight series"
// @Success 200 {object} service.Trends
// @Failure 400 {object} gin.H "Invalid query"
// @Router /api/sets/stats [get]
func (h *ExportHandler) GetStats(c *gin.Context) {
	r := stats.Range{From: c.Query("from"), To: c.Query("to")}
	trends, err := h.exportService.Trends(c.Request.Context(), r, domain.WorkoutType(c.Query("workoutType")))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, trends)
}

// GetWorkouts returns the workout catalog grouped for pickers.
func GetWorkouts(c *gin.Context) {
	groups := make([]WorkoutGroupResponse, 0, len(domain.WorkoutGroups))
	for _, g := range domain.WorkoutGroups {
		items := make([]WorkoutOptionResponse, 0, len(g.Items))
		for _, item := range g.Items {
			items = append(items, WorkoutOptionResponse{WorkoutOption: item, Fields: domain.VisibilityFor(item.WorkoutType)})
		}
		groups = append(groups, WorkoutGroupResponse{ID: g.ID, Label: g.Label, Emoji: g.Emoji, Items: items})
	}
	c.JSON(http.StatusOK, groups)
}
