package response

import (
	"time"

	"github.com/gin-gonic/gin"
)

// Envelope is the uniform response shape every endpoint returns.
type Envelope struct {
	Success    bool        `json:"success"`
	Message    string      `json:"message"`
	StatusCode int         `json:"statusCode"`
	Data       interface{} `json:"data,omitempty"`
	Error      string      `json:"error,omitempty"`
	Timestamp  string      `json:"timestamp"`
}

func Success(c *gin.Context, statusCode int, message string, data interface{}) {
	c.JSON(statusCode, Envelope{
		Success:    true,
		Message:    message,
		StatusCode: statusCode,
		Data:       data,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
	})
}

func Error(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, Envelope{
		Success:    false,
		Message:    message,
		StatusCode: statusCode,
		Error:      message,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
	})
}
