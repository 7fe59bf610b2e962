package respond

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ListBody is the envelope for filtered lists. Total counts the records
// before filtering so clients can show "3 of 12".
type ListBody[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
}

// JSON writes a JSON response with the given status.
func JSON(c *gin.Context, status int, payload any) {
	c.JSON(status, payload)
}

// OK writes a 200 OK JSON response.
func OK(c *gin.Context, payload any) {
	JSON(c, http.StatusOK, payload)
}

// Created writes a 201 JSON response.
func Created(c *gin.Context, payload any) {
	JSON(c, http.StatusCreated, payload)
}

// NoContent writes an empty 204.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// List writes items with the unfiltered total. A nil slice is sent as [].
func List[T any](c *gin.Context, items []T, total int) {
	if items == nil {
		items = []T{}
	}
	OK(c, ListBody[T]{Items: items, Total: total})
}
