package middleware

import "github.com/gin-gonic/gin"

// Abort stops the chain with a JSON error body that carries the trace ID.
func Abort(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"error": msg, "trace_id": GetTraceID(c)})
}
