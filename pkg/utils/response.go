package utils

import "github.com/gin-gonic/gin"

// Response is the envelope every handler returns. Data is omitted on errors
// and on writes with nothing useful to echo back.
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// SuccessResponse writes the success envelope with the given payload.
func SuccessResponse(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, Response{Success: true, Message: message, Data: data})
}

// ErrorResponse writes the failure envelope. The message is the user-facing
// text; diagnostic detail stays in the logs.
func ErrorResponse(c *gin.Context, status int, message string) {
	c.JSON(status, Response{Success: false, Message: message})
}
