package errors

const (
	HttpInternalError        = "internal_error"
	HttpInvalidRequestError  = "invalid_request"
	HttpNotFoundError        = "not_found"
	HttpUpstreamError        = "upstream_error"
	HttpPersistenceError     = "persistence_error"
	HttpNothingToGenerate    = "nothing_to_generate"
	HttpDuplicateDocumentErr = "duplicate_document"
)

// ErrorResponse is the error response body for every HTTP endpoint.
type ErrorResponse struct {
	ErrorType string      `json:"error_type"`
	Message   string      `json:"message"`
	Details   interface{} `json:"details,omitempty"`
}
