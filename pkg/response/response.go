package response

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	appErrors "github.com/noah-isme/assa-portal-api/pkg/errors"
)

// Envelope represents the common response contract.
type Envelope struct {
	Success bool                   `json:"success"`
	Message string                 `json:"message,omitempty"`
	Data    interface{}            `json:"data,omitempty"`
	Error   *appErrors.Error       `json:"error,omitempty"`
	Meta    map[string]interface{} `json:"meta,omitempty"`
}

func noStore(c *gin.Context) {
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
}

// JSON sends a success response with optional metadata.
func JSON(c *gin.Context, status int, data interface{}, meta ...map[string]interface{}) {
	noStore(c)
	envelope := Envelope{Success: true, Data: data}
	if len(meta) > 0 && meta[0] != nil {
		envelope.Meta = meta[0]
	}
	c.JSON(status, envelope)
}

// Message sends a success response carrying only a human-readable message.
func Message(c *gin.Context, status int, message string) {
	noStore(c)
	c.JSON(status, Envelope{Success: true, Message: message})
}

// List sends a collection with its size in meta.
func List(c *gin.Context, items interface{}, count int) {
	JSON(c, http.StatusOK, items, map[string]interface{}{"count": count})
}

// Created responds with HTTP 201 Created.
func Created(c *gin.Context, data interface{}) {
	JSON(c, http.StatusCreated, data)
}

// Error sends an error response converting the error to the common structure.
func Error(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	noStore(c)
	c.JSON(appErr.Status, Envelope{Success: false, Message: appErr.Message, Error: appErr})
}

// Abort writes the error and stops the handler chain.
func Abort(c *gin.Context, err error) {
	Error(c, err)
	c.Abort()
}

// File streams an in-memory attachment.
func File(c *gin.Context, filename, contentType string, data []byte) {
	noStore(c)
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Header("Content-Length", strconv.Itoa(len(data)))
	c.Data(http.StatusOK, contentType, data)
}
