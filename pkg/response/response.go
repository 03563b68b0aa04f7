// Package response defines the envelope every HTTP handler writes, so room,
// tenant, billing and payment endpoints all answer in the same shape.
package response

// Response is the wire envelope. Status mirrors whether the call succeeded
// ("success" or "error"); exactly one of Data or Error is populated.
type Response struct {
	Status     string      `json:"status"`
	StatusCode int         `json:"status_code"`
	Data       interface{} `json:"data,omitempty"`
	Error      string      `json:"error,omitempty"`
}

// Success wraps a handler payload in a success envelope.
func Success(statusCode int, data interface{}) Response {
	return Response{
		Status:     "success",
		StatusCode: statusCode,
		Data:       data,
	}
}

// Error wraps a failure message in an error envelope. The message is what the
// client sees, so callers pass sanitized text rather than raw error chains.
func Error(statusCode int, err string) Response {
	return Response{
		Status:     "error",
		StatusCode: statusCode,
		Error:      err,
	}
}
