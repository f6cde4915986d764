package dto

import "encoding/json"

// Error codes carried in the error envelope
const (
	CodeInvalidInput = "INVALID_INPUT"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeNotFound     = "NOT_FOUND"
	CodeInternal     = "INTERNAL_ERROR"
)

// APIError is the error body returned by every endpoint
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return e.Message
}

// Envelope wraps every single-object response
type Envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   *APIError       `json:"error,omitempty"`
}

// ListEnvelope wraps GET /tasks responses
type ListEnvelope struct {
	Count   int      `json:"count"`
	Results Envelope `json:"results"`
}

// OK builds a success envelope around v
func OK(v any) (Envelope, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{Success: true, Data: data}, nil
}

// Fail builds an error envelope
func Fail(code, message string) Envelope {
	return Envelope{Error: &APIError{Code: code, Message: message}}
}
