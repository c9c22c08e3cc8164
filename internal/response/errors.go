package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrInvalidCredentials ErrCode = "INVALID_CREDENTIALS"
	ErrSessionRevoked     ErrCode = "SESSION_REVOKED"
	ErrTokenRequired      ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid       ErrCode = "TOKEN_INVALID"
	ErrTokenExpired       ErrCode = "TOKEN_EXPIRED"
	ErrEmailTaken         ErrCode = "EMAIL_TAKEN"

	// ─── Authorization ─────────────────────────────────────────────────
	ErrForbidden       ErrCode = "FORBIDDEN"
	ErrUserAccessOnly  ErrCode = "USER_ACCESS_ONLY"
	ErrAdminAccessOnly ErrCode = "ADMIN_ACCESS_ONLY"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound ErrCode = "NOT_FOUND"
	ErrConflict ErrCode = "CONFLICT"

	// ─── Catalog and attempts ──────────────────────────────────────────
	ErrTestNotPublished ErrCode = "TEST_NOT_PUBLISHED"
	ErrNoQuestions      ErrCode = "NO_QUESTIONS"
	ErrExamTypeMismatch ErrCode = "EXAM_TYPE_MISMATCH"
	ErrGateNotPassed    ErrCode = "GATE_NOT_PASSED"
	ErrNotPurchased     ErrCode = "PACK_NOT_PURCHASED"
	ErrNoActiveAttempt  ErrCode = "NO_ACTIVE_ATTEMPT"
	ErrAttemptFinalized ErrCode = "ATTEMPT_FINALIZED"
	ErrSubmitPending    ErrCode = "SUBMIT_PENDING"
	ErrAnswerRequired   ErrCode = "ANSWER_REQUIRED"
	ErrIndexOutOfRange  ErrCode = "INDEX_OUT_OF_RANGE"
	ErrUnknownSubject   ErrCode = "UNKNOWN_SUBJECT"
	ErrResultNotSaved   ErrCode = "RESULT_NOT_SAVED"

	// ─── Payments ──────────────────────────────────────────────────────
	ErrPackIsFree       ErrCode = "PACK_IS_FREE"
	ErrPackUnavailable  ErrCode = "PACK_UNAVAILABLE"
	ErrPurchaseMismatch ErrCode = "PURCHASE_MISMATCH"
	ErrGatewayFailure   ErrCode = "GATEWAY_FAILURE"

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
		return "Email or password is incorrect."
	case ErrSessionRevoked:
		return "Your session has ended. Please log in again."
	case ErrTokenRequired:
		return "An authentication token is required."
	case ErrTokenInvalid:
		return "The authentication token is invalid."
	case ErrTokenExpired:
		return "The authentication token has expired."
	case ErrEmailTaken:
		return "An account with this email already exists."

	// ─── Authorization ─────────────────────────────────────────────────
	case ErrForbidden:
		return "You do not have permission to access this resource."
	case ErrUserAccessOnly:
		return "This resource is restricted to candidates."
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

	// ─── Catalog and attempts ──────────────────────────────────────────
	case ErrTestNotPublished:
		return "This test is not currently available."
	case ErrNoQuestions:
		return "This test has no questions yet."
	case ErrExamTypeMismatch:
		return "The test's exam type must match its pack."
	case ErrGateNotPassed:
		return "Please complete the countdown and read the instructions before starting."
	case ErrNotPurchased:
		return "Purchase this pack to attempt its tests."
	case ErrNoActiveAttempt:
		return "No attempt is in progress for this test."
	case ErrAttemptFinalized:
		return "This attempt has already been submitted."
	case ErrSubmitPending:
		return "A submission is already in progress."
	case ErrAnswerRequired:
		return "Select an option before saving."
	case ErrIndexOutOfRange:
		return "That question does not exist on this paper."
	case ErrUnknownSubject:
		return "That subject is not part of this paper."
	case ErrResultNotSaved:
		return "Your test was graded but could not be saved. Please submit again."

	// ─── Payments ──────────────────────────────────────────────────────
	case ErrPackIsFree:
		return "This pack is free. No purchase is needed."
	case ErrPackUnavailable:
		return "This pack is not available for purchase."
	case ErrPurchaseMismatch:
		return "This purchase belongs to a different account."
	case ErrGatewayFailure:
		return "The payment gateway could not be reached. Please try again."

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Too many requests. Please slow down."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "An internal error occurred. Please try again later."
	default:
		return "An unknown error occurred."
	}
}
