// internal/utils/response.go
package utils

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/hirehub/hirehub-backend/internal/apperror"
	"github.com/hirehub/hirehub-backend/internal/i18n"
	"github.com/hirehub/hirehub-backend/internal/models"
)

const actorContextKey = "actor"

type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
	Meta    interface{} `json:"meta,omitempty"`
}

type APIError struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

func SuccessResponse(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, APIResponse{
		Success: true,
		Data:    data,
	})
}

func SuccessResponseWithMeta(c *gin.Context, data interface{}, meta interface{}) {
	c.JSON(http.StatusOK, APIResponse{
		Success: true,
		Data:    data,
		Meta:    meta,
	})
}

func CreatedResponse(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, APIResponse{
		Success: true,
		Data:    data,
	})
}

func ErrorResponse(c *gin.Context, statusCode int, code, message string, details interface{}) {
	c.JSON(statusCode, APIResponse{
		Success: false,
		Error: &APIError{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

func BadRequestResponse(c *gin.Context, message string, details interface{}) {
	lang := GetLangFromContext(c)
	if message == "" {
		message = i18n.T(lang, i18n.KeyValidationInvalid, "request")
	}
	ErrorResponse(c, http.StatusBadRequest, string(apperror.KindInvalidInput), message, details)
}

func UnauthorizedResponse(c *gin.Context, message string) {
	lang := GetLangFromContext(c)
	if message == "" {
		message = i18n.T(lang, i18n.KeyAuthRequired)
	}
	ErrorResponse(c, http.StatusUnauthorized, string(apperror.KindUnauthorized), message, nil)
}

func ForbiddenResponse(c *gin.Context, message string) {
	lang := GetLangFromContext(c)
	if message == "" {
		message = i18n.T(lang, i18n.KeyAccessDenied)
	}
	ErrorResponse(c, http.StatusForbidden, string(apperror.KindForbidden), message, nil)
}

func ValidationErrorResponse(c *gin.Context, errors []ValidationError) {
	lang := GetLangFromContext(c)
	message := i18n.T(lang, i18n.KeyValidationInvalid, "input")
	ErrorResponse(c, http.StatusBadRequest, string(apperror.KindInvalidInput), message, errors)
}

// StatusForKind maps an error kind onto its HTTP status.
func StatusForKind(kind apperror.Kind) int {
	switch kind {
	case apperror.KindUnauthorized:
		return http.StatusUnauthorized
	case apperror.KindForbidden:
		return http.StatusForbidden
	case apperror.KindNotFound, apperror.KindJobNotFound:
		return http.StatusNotFound
	case apperror.KindDuplicate, apperror.KindIllegalTransition, apperror.KindStaleState:
		return http.StatusConflict
	case apperror.KindProfileRequired, apperror.KindInvalidInput:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// HandleError writes err using the error envelope. Internal failures are
// logged and answered with a generic message.
func HandleError(c *gin.Context, err error) {
	lang := GetLangFromContext(c)
	kind := apperror.KindOf(err)
	status := StatusForKind(kind)

	if status == http.StatusInternalServerError {
		logrus.WithError(err).WithFields(logrus.Fields{
			"method":     c.Request.Method,
			"path":       c.FullPath(),
			"request_id": c.GetString(RequestIDKey),
		}).Error("Request failed")
		ErrorResponse(c, status, string(apperror.KindInternal), i18n.T(lang, i18n.ErrorKey(apperror.KindInternal)), nil)
		return
	}

	var details interface{}
	var appErr *apperror.Error
	if errors.As(err, &appErr) && appErr.Message != "" {
		details = gin.H{"reason": appErr.Message}
	}
	ErrorResponse(c, status, string(kind), i18n.T(lang, i18n.ErrorKey(kind)), details)
}

func PaginatedResponse(c *gin.Context, result PaginationResult) {
	SetPaginationHeaders(c, result)
	SuccessResponseWithMeta(c, result.Data, gin.H{
		"pagination": gin.H{
			"page":        result.Page,
			"limit":       result.Limit,
			"total":       result.Total,
			"total_pages": result.TotalPages,
		},
	})
}

// RequestIDKey is the gin context key holding the request correlation id.
const RequestIDKey = "request_id"

func GetLangFromContext(c *gin.Context) string {
	if lang, exists := c.Get("lang"); exists {
		if langStr, ok := lang.(string); ok {
			return langStr
		}
	}
	return i18n.DefaultLanguage
}

func SetActor(c *gin.Context, actor models.Actor) {
	c.Set(actorContextKey, actor)
}

// GetActorFromContext returns the authenticated caller placed by the auth
// middleware.
func GetActorFromContext(c *gin.Context) (models.Actor, bool) {
	if v, exists := c.Get(actorContextKey); exists {
		if actor, ok := v.(models.Actor); ok {
			return actor, true
		}
	}
	return models.Actor{}, false
}
