package modules

const (
	codeInvalidParams = -32602
	codeServerError   = -32000
)

// ModuleError carries a JSON-RPC error plus the HTTP status it should be
// written with.
type ModuleError struct {
	HTTPStatus int
	Code       int
	Message    string
	Data       interface{}
}

func (e *ModuleError) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

func invalidParams(message string) *ModuleError {
	return &ModuleError{HTTPStatus: 400, Code: codeInvalidParams, Message: message}
}
