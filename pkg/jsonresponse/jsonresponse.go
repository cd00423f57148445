// Package jsonresponse enables consistent responses across all handlers.
package jsonresponse

// jsonError provides type for explicit json encoded error response.
type jsonError struct {
	Error string `json:"error"`
}

// Error wraps a given err into json friendly struct.
func Error(err error) jsonError {
	return jsonError{Error: err.Error()}
}

// Message provides type for explicit json encoded message response.
type message struct {
	Message string `json:"message"`
}

// Message wraps a human readable message into json friendly struct.
func Message(msg string) message {
	return message{Message: msg}
}
