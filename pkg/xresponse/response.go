package xresponse

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Response represents standard API response format
type Response struct {
	Code      int         `json:"code"`
	Status    string      `json:"status"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

// ErrorResponse represents error response format
type ErrorResponse struct {
	Code      int         `json:"code"`
	Status    string      `json:"status"`
	ErrorCode string      `json:"error_code"`
	Message   string      `json:"message"`
	Details   interface{} `json:"details,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

// Common error codes
const (
	ErrCodeValidationFailed    = "VALIDATION_FAILED"
	ErrCodeNotFound            = "NOT_FOUND"
	ErrCodeUnauthorized        = "UNAUTHORIZED"
	ErrCodeForbidden           = "FORBIDDEN"
	ErrCodeInternalError       = "INTERNAL_ERROR"
	ErrCodeNotAuthenticated    = "NOT_AUTHENTICATED"
	ErrCodeOutOfStock          = "OUT_OF_STOCK"
	ErrCodeStockUnavailable    = "STOCK_UNAVAILABLE"
	ErrCodeInsufficientBalance = "INSUFFICIENT_BALANCE"
	ErrCodePurchaseFailed      = "PURCHASE_FAILED"
	ErrCodeVariantNotFound     = "VARIANT_NOT_FOUND"
)

// Success sends success response
func Success(c *gin.Context, message string, data interface{}) {
	response := Response{
		Code:      http.StatusOK,
		Status:    "success",
		Message:   message,
		Data:      data,
		Timestamp: time.Now().Unix(),
	}
	c.JSON(http.StatusOK, response)
}

// Error sends error response
func Error(c *gin.Context, statusCode int, errorCode, message string) {
	response := ErrorResponse{
		Code:      statusCode,
		Status:    "error",
		ErrorCode: errorCode,
		Message:   message,
		Timestamp: time.Now().Unix(),
	}
	c.JSON(statusCode, response)
}

// ErrorWithDetails sends error response with details
func ErrorWithDetails(c *gin.Context, statusCode int, errorCode, message string, details interface{}) {
	response := ErrorResponse{
		Code:      statusCode,
		Status:    "error",
		ErrorCode: errorCode,
		Message:   message,
		Details:   details,
		Timestamp: time.Now().Unix(),
	}
	c.JSON(statusCode, response)
}

// BadRequest sends 400 Bad Request response
func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, ErrCodeValidationFailed, message)
}

// Unauthorized sends 401 Unauthorized response
func Unauthorized(c *gin.Context, message string) {
	Error(c, http.StatusUnauthorized, ErrCodeUnauthorized, message)
}

// Forbidden sends 403 Forbidden response
func Forbidden(c *gin.Context, message string) {
	Error(c, http.StatusForbidden, ErrCodeForbidden, message)
}

// NotFound sends 404 Not Found response
func NotFound(c *gin.Context, message string) {
	Error(c, http.StatusNotFound, ErrCodeNotFound, message)
}

// InternalServerError sends 500 Internal Server Error response
func InternalServerError(c *gin.Context, message string) {
	Error(c, http.StatusInternalServerError, ErrCodeInternalError, message)
}

// NotAuthenticated sends 401 for the local auth gate
func NotAuthenticated(c *gin.Context, message string) {
	Error(c, http.StatusUnauthorized, ErrCodeNotAuthenticated, message)
}

// OutOfStock sends 400 Out Of Stock error response
func OutOfStock(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, ErrCodeOutOfStock, message)
}

// StockUnavailable sends 400 for a variant with no tracked key pool
func StockUnavailable(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, ErrCodeStockUnavailable, message)
}

// InsufficientBalance sends 400 with the suggested top-up amount
func InsufficientBalance(c *gin.Context, message string, topUpAmount int64) {
	ErrorWithDetails(c, http.StatusBadRequest, ErrCodeInsufficientBalance, message, gin.H{
		"top_up_amount": topUpAmount,
	})
}

// PurchaseFailed sends 502 for remote transaction failures
func PurchaseFailed(c *gin.Context, message string) {
	Error(c, http.StatusBadGateway, ErrCodePurchaseFailed, message)
}

// VariantNotFound sends 404 Variant Not Found error response
func VariantNotFound(c *gin.Context, message string) {
	Error(c, http.StatusNotFound, ErrCodeVariantNotFound, message)
}

// ValidationError sends validation error response with field details
func ValidationError(c *gin.Context, details interface{}) {
	ErrorWithDetails(c, http.StatusBadRequest, ErrCodeValidationFailed, "Validation failed", details)
}
