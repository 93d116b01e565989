package common

import (
	"github.com/gin-gonic/gin"
)

// Render writes the given object and status code to the response
func Render(obj interface{}, status int, c *gin.Context) {
	c.Header("content-type", "application/json; charset=UTF-8")
	if obj != nil {
		c.JSON(status, obj)
	} else {
		c.Status(status)
	}
}

// RenderError writes an error message and status code to the response
func RenderError(message string, status int, c *gin.Context) {
	Render(map[string]interface{}{
		"message": message,
	}, status, c)
}
