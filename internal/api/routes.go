package api

import (
	"alcyxob/sets-tracker/internal/observability"
	"alcyxob/sets-tracker/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func SetupRoutes(
	router *gin.Engine,
	setService service.SetService,
	exportService service.ExportService,
) {
	RegisterValidators()

	setHandler := NewSetHandler(setService)
	exportHandler := NewExportHandler(exportService)

	router.Use(observability.GinMiddleware())

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	apiGroup := router.Group("/api")
	apiGroup.Use(DeviceMiddleware())
	{
		setsGroup := apiGroup.Group("/sets")
		{
			setsGroup.GET("", setHandler.ListSets)
			setsGroup.POST("", setHandler.CreateSet)
			setsGroup.PATCH("", setHandler.UpdateSet)
			setsGroup.DELETE("", setHandler.DeleteSet)
			// PUT /api/sets - bulk sync of a device's full local state
			setsGroup.PUT("", setHandler.SyncSets)

			setsGroup.GET("/export", exportHandler.GetExport)
			setsGroup.POST("/export", exportHandler.UploadExport)
			setsGroup.GET("/stats", exportHandler.GetStats)
		}

		apiGroup.GET("/workouts", GetWorkouts)
		apiGroup.GET("/store-check", setHandler.StoreCheck)
	}
}
