package errors

// JSON body written by every error helper. Error is one of the Code* values,
// Details carries the sanitized cause and is dropped when empty.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// coarse grouping of a failure, decides which response Respond writes
type Category string

// error categories for classification
const (
	CategoryDatabase    Category = "database"
	CategoryUnavailable Category = "unavailable"
	CategoryNetwork     Category = "network"
	CategoryValidation  Category = "validation"
	CategoryAuth        Category = "auth"
	CategoryNotFound    Category = "not_found"
	CategoryConflict    Category = "conflict"
	CategoryTimeout     Category = "timeout"
	CategoryUnknown     Category = "unknown"
)

// reports whether the failure is on the backend side and worth retrying later
func (c Category) Transient() bool {
	switch c {
	case CategoryUnavailable, CategoryNetwork, CategoryTimeout:
		return true
	default:
		return false
	}
}

// result of classifyError; sanitized is safe to show outside production logs
type classification struct {
	category  Category
	sanitized string
}

func newErrorResponse(code, message string, err error) ErrorResponse {
	response := ErrorResponse{Error: code, Message: message}

	if err != nil {
		response.Details = sanitizeError(err)
	}

	return response
}
