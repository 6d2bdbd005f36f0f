package utils

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Response defines the standard API response envelope.
type Response struct {
	Success bool       `json:"success"`
	Code    int        `json:"code"`
	Message string     `json:"message"`
	Data    any        `json:"data,omitempty"`
	Error   *ErrorInfo `json:"error,omitempty"`
	Meta    Meta       `json:"meta"`
}

type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type Meta struct {
	RequestID  string      `json:"requestId"`
	Timestamp  string      `json:"timestamp"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalItems int `json:"totalItems"`
	TotalPages int `json:"totalPages"`
}

// NewPagination fills in defaults for non-positive page or limit and
// derives the page count.
func NewPagination(page, limit, totalItems int) *Pagination {
	page = max(page, 1)
	if limit <= 0 {
		limit = 20
	}
	return &Pagination{
		Page:       page,
		Limit:      limit,
		TotalItems: totalItems,
		TotalPages: (totalItems + limit - 1) / limit,
	}
}

func Success(c *gin.Context, code int, message string, data any) {
	respond(c, Response{Success: true, Code: code, Message: message, Data: data}, nil)
}

func SuccessWithPagination(c *gin.Context, code int, message string, data any, page, limit, totalItems int) {
	respond(c, Response{Success: true, Code: code, Message: message, Data: data}, NewPagination(page, limit, totalItems))
}

// Error writes a failure envelope with the given API error code.
func Error(c *gin.Context, code int, errCode, message string) {
	respond(c, Response{
		Code:    code,
		Message: message,
		Error:   &ErrorInfo{Code: errCode, Message: message},
	}, nil)
}

// ErrorFrom writes the envelope for a service error. Known sentinels keep
// their status and code, and 4xx errors wrapped with a detail
// ("INVALID_DEAL: title is required") report that detail. Anything else is
// logged and reported as a bare 500.
func ErrorFrom(c *gin.Context, err error, message string) {
	status, code := StatusFor(err)
	switch {
	case status == http.StatusInternalServerError:
		log.Error().Err(err).
			Str("request_id", RequestID(c)).
			Str("path", c.FullPath()).
			Msg(message)
		message = "Internal server error"
	case status < http.StatusInternalServerError:
		if detail, ok := strings.CutPrefix(err.Error(), code+": "); ok && detail != "" {
			message = detail
		}
	}
	Error(c, status, code, message)
}

// RequestID returns the id set by the logging middleware, or a fresh one.
func RequestID(c *gin.Context) string {
	if id := c.GetString("request_id"); id != "" {
		return id
	}
	return uuid.New().String()[:8]
}

func respond(c *gin.Context, r Response, p *Pagination) {
	r.Meta = Meta{
		RequestID:  RequestID(c),
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		Pagination: p,
	}
	c.JSON(r.Code, r)
}
