package api

import (
	"log"
	"strings"

	"github.com/gin-gonic/gin"
)

// Constants for context keys and headers
const (
	ContextDeviceIDKey = "deviceID"
	DeviceIDHeader     = "X-Device-ID"
	deviceIDQueryParam = "deviceId"
)

// DeviceMiddleware picks up the caller's device id from the X-Device-ID header
// or the deviceId query parameter. The id identifies the caller in logs only;
// it does not scope data, every device shares one tenant.
func DeviceMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		deviceID := strings.TrimSpace(c.GetHeader(DeviceIDHeader))
		if deviceID == "" {
			deviceID = strings.TrimSpace(c.Query(deviceIDQueryParam))
		}
		if deviceID != "" {
			c.Set(ContextDeviceIDKey, deviceID)
			if c.Request.Method != "GET" {
				log.Printf("INFO: %s %s from device %s", c.Request.Method, c.Request.URL.Path, deviceID)
			}
		}
		c.Next()
	}
}

// Helper function to get the device id from context. Empty when the caller sent none.
func getDeviceIDFromContext(c *gin.Context) string {
	raw, exists := c.Get(ContextDeviceIDKey)
	if !exists {
		return ""
	}
	id, _ := raw.(string)
	return id
}

// Helper to return JSON error response and abort request
func abortWithError(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, gin.H{"error": message})
}

// abortWithDetails is abortWithError plus a "details" payload.
func abortWithDetails(c *gin.Context, code int, message string, details any) {
	c.AbortWithStatusJSON(code, gin.H{"error": message, "details": details})
}
