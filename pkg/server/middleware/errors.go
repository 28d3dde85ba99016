package middleware

import "encoding/json"

// ErrorResponse is the JSON body returned for every non-2xx response from
// the decision endpoint.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail carries the message and a machine-readable type for one error
// response.
type ErrorDetail struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

func writeError(message, errType string) []byte {
	b, _ := json.Marshal(ErrorResponse{Error: ErrorDetail{Message: message, Type: errType}})
	return b
}
