// Package apierror provides the error envelope returned by every 4xx/5xx
// response. Internal details (DB errors, stack traces) never reach it.
package apierror

// Codes are stable machine-readable identifiers; Detail is the pt-BR text.
const (
	CodeBadRequest        = "bad_request"
	CodeValidation        = "validation_error"
	CodeUnauthorized      = "unauthorized"
	CodeForbidden         = "forbidden"
	CodeNotFound          = "not_found"
	CodeConflict          = "conflict"
	CodeInsufficientStock = "insufficient_stock"
	CodeInvalidTransition = "invalid_transition"
	CodeEmptyOrder        = "empty_order"
	CodeRateLimited       = "rate_limited"
	CodeInternal          = "internal_error"
)

// APIError is the canonical error envelope for all 4xx/5xx HTTP responses.
type APIError struct {
	Detail string `json:"detail"`
	Code   string `json:"code,omitempty"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// WithCode attaches a machine-readable code.
func WithCode(code, msg string) *APIError {
	return &APIError{Detail: msg, Code: code}
}

// ValidationError wraps multiple field errors.
type ValidationError struct {
	Detail string            `json:"detail"`
	Code   string            `json:"code"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "Erro de validação", Code: CodeValidation, Fields: fields}
}
