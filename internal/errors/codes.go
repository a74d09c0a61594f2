package errors

// Error code constants, format CATEGORY_SPECIFIC_DETAIL. The frontend maps
// these codes to display messages.

const (
	// ==================== Auth (AUTH_) ====================
	AuthUnauthorized       = "AUTH_UNAUTHORIZED"
	AuthInvalidCredentials = "AUTH_INVALID_CREDENTIALS"
	AuthTokenExpired       = "AUTH_TOKEN_EXPIRED"
	AuthTokenInvalid       = "AUTH_TOKEN_INVALID"
	AuthTokenRevoked       = "AUTH_TOKEN_REVOKED"
	AuthEmailAlreadyExists = "AUTH_EMAIL_EXISTS"

	// ==================== Authorization (AUTHZ_) ====================
	AuthzForbidden = "AUTHZ_FORBIDDEN"
	AuthzAdminOnly = "AUTHZ_ADMIN_ONLY"
	AuthzOwnerOnly = "AUTHZ_OWNER_ONLY"

	// ==================== Validation (VALIDATION_) ====================
	ValidationInvalidInput  = "VALIDATION_INVALID_INPUT"
	ValidationInvalidID     = "VALIDATION_INVALID_ID"
	ValidationInvalidRange  = "VALIDATION_INVALID_RANGE"
	ValidationInvalidCoords = "VALIDATION_INVALID_COORDS"
	ValidationRequired      = "VALIDATION_REQUIRED"

	// ==================== Resource (RESOURCE_) ====================
	ResourceNotFound      = "RESOURCE_NOT_FOUND"
	ResourceAlreadyExists = "RESOURCE_ALREADY_EXISTS"
	ResourceConflict      = "RESOURCE_CONFLICT"

	// ==================== Business (BUSINESS_) ====================
	BusinessNotFound          = "BUSINESS_NOT_FOUND"
	BusinessInvalidTransition = "BUSINESS_INVALID_TRANSITION"
	BusinessNotActive         = "BUSINESS_NOT_ACTIVE"
	BusinessArchived          = "BUSINESS_ARCHIVED"

	// ==================== Verification (VERIFICATION_) ====================
	VerificationNotFound        = "VERIFICATION_NOT_FOUND"
	VerificationAlreadyPending  = "VERIFICATION_ALREADY_PENDING"
	VerificationAlreadyReviewed = "VERIFICATION_ALREADY_REVIEWED"
	VerificationAlreadyApproved = "VERIFICATION_ALREADY_APPROVED"
	VerificationDocumentLocked  = "VERIFICATION_DOCUMENT_LOCKED"

	// ==================== Rating (RATING_) ====================
	RatingNotFound     = "RATING_NOT_FOUND"
	RatingInvalidScore = "RATING_INVALID_SCORE"

	// ==================== Upload / media (UPLOAD_) ====================
	UploadInvalidFileType = "UPLOAD_INVALID_FILE_TYPE"
	UploadFileTooLarge    = "UPLOAD_FILE_TOO_LARGE"
	UploadLogoExists      = "UPLOAD_LOGO_EXISTS"
	UploadPhotoLimit      = "UPLOAD_PHOTO_LIMIT"
	UploadFailed          = "UPLOAD_FAILED"

	// ==================== Internal (INTERNAL_) ====================
	InternalServerError   = "INTERNAL_SERVER_ERROR"
	InternalDatabaseError = "INTERNAL_DATABASE_ERROR"
	InternalStorageError  = "INTERNAL_STORAGE_ERROR"
)
