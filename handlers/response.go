package handlers

import (
	"github.com/gin-gonic/gin"
)

// Error codes of the error envelope
const (
	CodeInvalidRequest     = "INVALID_REQUEST"
	CodeInvalidClaim       = "INVALID_CLAIM"
	CodeInvalidURL         = "INVALID_URL"
	CodeInvalidImage       = "INVALID_IMAGE"
	CodeFileTooLarge       = "FILE_TOO_LARGE"
	CodeNotFound           = "NOT_FOUND"
	CodeProcessingFailed   = "PROCESSING_FAILED"
	CodeServiceUnavailable = "SERVICE_UNAVAILABLE"
)

// respondError writes {"error":{"code","message","details"}}
func respondError(c *gin.Context, status int, code, message string, details any) {
	if details == nil {
		details = gin.H{}
	}
	c.AbortWithStatusJSON(status, gin.H{
		"error": gin.H{
			"code":    code,
			"message": message,
			"details": details,
		},
	})
}
