// internal/i18n/keys.go
package i18n

import "github.com/hirehub/hirehub-backend/internal/apperror"

// Translation keys constants
const (
	// Authentication
	KeyAuthRequired        = "auth.required"
	KeyAuthInvalidToken    = "auth.invalid_token"
	KeyAuthTokenExpired    = "auth.token_expired"
	KeyAuthLoginSuccess    = "auth.login_success"
	KeyAuthRegisterSuccess = "auth.register_success"
	KeyAccessDenied        = "auth.access_denied"

	// Profile
	KeyProfileUpdated = "profile.updated"
	KeyResumeUploaded = "profile.resume_uploaded"

	// Jobs
	KeyJobCreated = "job.created"
	KeyJobUpdated = "job.updated"
	KeyJobDeleted = "job.deleted"

	// Applications
	KeyApplicationSubmitted = "application.submitted"
	KeyApplicationMoved     = "application.status_changed"

	// Validation
	KeyValidationRequired = "validation.required"
	KeyValidationInvalid  = "validation.invalid"

	// File Upload
	KeyFileUploadFailed = "file.upload_failed"
	KeyFileTooLarge     = "file.too_large"

	// Rate limiting
	KeyRateLimited = "rate_limit.exceeded"

	// Notifications
	KeyNotificationStatusSubject = "notification.status_subject"
)

// ErrorKey returns the translation key of an error kind.
func ErrorKey(kind apperror.Kind) string {
	return "error." + string(kind)
}
