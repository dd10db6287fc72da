package entities

import "fmt"

// RPCError is the error half of a rippled response, for both JSON-RPC and WebSocket.
type RPCError struct {
	Code    string `json:"error"`
	Number  int    `json:"error_code,omitempty"`
	Message string `json:"error_message,omitempty"`
}

func (e *RPCError) Error() string {
	if e.Message == "" {
		return e.Code
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// RPCBaseRes carries the status fields shared by every result object.
type RPCBaseRes struct {
	Status       string `json:"status,omitempty"`
	Error        string `json:"error,omitempty"`
	ErrorCode    int    `json:"error_code,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`
	Validated    bool   `json:"validated,omitempty"`
}

// RPCError returns nil for successful results.
func (r RPCBaseRes) RPCError() *RPCError {
	if r.Error == "" && r.Status != "error" {
		return nil
	}
	return &RPCError{Code: r.Error, Number: r.ErrorCode, Message: r.ErrorMessage}
}
