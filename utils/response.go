package utils

import (
	"github.com/gin-gonic/gin"
)

// JSONResponse sends a structured JSON response. Keys in meta, such as count or
// total, are added next to data.
func JSONResponse(c *gin.Context, status int, data any, message string, meta ...gin.H) {
	body := gin.H{
		"success": true,
		"status":  status,
		"data":    data,
	}
	if message != "" {
		body["message"] = message
	}
	for _, m := range meta {
		for k, v := range m {
			body[k] = v
		}
	}
	c.JSON(status, body)
}

// JSONError sends a structured error response
func JSONError(c *gin.Context, status int, err error, message string) {
	c.JSON(status, gin.H{
		"success": false,
		"status":  status,
		"message": message,
		"error":   err.Error(),
	})
}
