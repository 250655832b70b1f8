// Package response writes the API's JSON bodies: entities and item
// collections on success, a single "detail" field on failure.
package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Body is the failure envelope. Detail is either a message string or a
// field-to-message map from request validation.
type Body struct {
	Detail interface{} `json:"detail"`
}

// ItemList wraps collection responses.
type ItemList struct {
	Items interface{} `json:"items"`
}

func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

func List(c *gin.Context, items interface{}) {
	c.JSON(http.StatusOK, ItemList{Items: items})
}

func Detail(c *gin.Context, statusCode int, detail interface{}) {
	c.JSON(statusCode, Body{Detail: detail})
}

func NotFound(c *gin.Context, message string) {
	Detail(c, http.StatusNotFound, message)
}

func Conflict(c *gin.Context, message string) {
	Detail(c, http.StatusConflict, message)
}

func Unprocessable(c *gin.Context, detail interface{}) {
	Detail(c, http.StatusUnprocessableEntity, detail)
}

func InternalServerError(c *gin.Context) {
	Detail(c, http.StatusInternalServerError, "internal server error")
}
