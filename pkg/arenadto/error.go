package arenadto

const (
	CodeBadRequest    = "bad_request"
	CodeNotFound      = "not_found"
	CodeRejected      = "rejected"
	CodeNoMatch       = "no_match"
	CodeUnavailable   = "unavailable"
	CodeInternalError = "internal"
)

type DomainError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable"`
}

func (e DomainError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Code != "" {
		return e.Code
	}
	return "arena service error"
}
