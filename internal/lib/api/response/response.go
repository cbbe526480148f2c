// Package response defines the JSON envelope used by API handlers.
package response

// Response wraps every API reply: Data on success, Error otherwise.
type Response struct {
	Data  any    `json:"data,omitempty"`
	Error string `json:"error,omitempty"`
}

// Ok wraps a successful payload.
func Ok(data any) Response {
	return Response{Data: data}
}

// Error wraps a failure message.
func Error(msg string) Response {
	return Response{Error: msg}
}
