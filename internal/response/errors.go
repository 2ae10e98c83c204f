package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrInvalidCredentials ErrCode = "INVALID_CREDENTIALS"
	ErrSessionActive      ErrCode = "SESSION_ALREADY_ACTIVE"
	ErrSessionInvalidated ErrCode = "SESSION_INVALIDATED"
	ErrTokenRequired      ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid       ErrCode = "TOKEN_INVALID"
	ErrWrongCollege       ErrCode = "WRONG_COLLEGE"

	// ─── Authorization ─────────────────────────────────────────────────
	ErrForbidden         ErrCode = "FORBIDDEN"
	ErrStudentAccessOnly ErrCode = "STUDENT_ACCESS_ONLY"
	ErrAdminAccessOnly   ErrCode = "ADMIN_ACCESS_ONLY"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound ErrCode = "NOT_FOUND"
	ErrConflict ErrCode = "CONFLICT"

	// ─── Registration ──────────────────────────────────────────────────
	ErrRegistrationClosed    ErrCode = "REGISTRATION_CLOSED"
	ErrDuplicateRegistration ErrCode = "DUPLICATE_REGISTRATION"
	ErrInvalidOTP            ErrCode = "INVALID_OTP"
	ErrRegistrationExpired   ErrCode = "REGISTRATION_EXPIRED"
	ErrMailDelivery          ErrCode = "MAIL_DELIVERY_FAILED"

	// ─── Quiz ──────────────────────────────────────────────────────────
	ErrAlreadyAttempted ErrCode = "ALREADY_ATTEMPTED"
	ErrNoActiveSchedule ErrCode = "NO_ACTIVE_SCHEDULE"
	ErrPastQuizDate     ErrCode = "PAST_QUIZ_DATE"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Authentication ────────────────────────────────────────────────
	case ErrInvalidCredentials:
		return "Invalid credentials."
	case ErrSessionActive:
		return "You are already logged in from another device/browser."
	case ErrSessionInvalidated:
		return "Your session has ended. Please log in again."
	case ErrTokenRequired:
		return "An authentication token is required."
	case ErrTokenInvalid:
		return "The authentication token is invalid."
	case ErrWrongCollege:
		return "This account does not belong to the selected college."

	// ─── Authorization ─────────────────────────────────────────────────
	case ErrForbidden:
		return "You do not have permission to access this resource."
	case ErrStudentAccessOnly:
		return "This resource is restricted to students."
	case ErrAdminAccessOnly:
		return "This resource is restricted to administrators."

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidID:
		return "Invalid ID format."
	case ErrInvalidPayload:
		return "Invalid request payload."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "Resource not found."
	case ErrConflict:
		return "Resource already exists."

	// ─── Registration ──────────────────────────────────────────────────
	case ErrRegistrationClosed:
		return "Registrations are currently closed for this college. Please contact the administrator."
	case ErrDuplicateRegistration:
		return "You are already registered for this quiz."
	case ErrInvalidOTP:
		return "Invalid OTP. Try again."
	case ErrRegistrationExpired:
		return "Session expired or invalid. Please register again."
	case ErrMailDelivery:
		return "Failed to send the verification email. Please try again later."

	// ─── Quiz ──────────────────────────────────────────────────────────
	case ErrAlreadyAttempted:
		return "You have already attempted the test."
	case ErrNoActiveSchedule:
		return "No active quiz schedule for your college."
	case ErrPastQuizDate:
		return "You cannot select a past date for the quiz."

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Too many requests. Please try again later."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "An internal server error occurred."
	default:
		return "An unexpected error occurred."
	}
}
