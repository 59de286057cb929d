package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// TransportError is a request that got no usable answer: the network failed
// or the response body could not be decoded.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *TransportError) Unwrap() error { return e.Err }

// APIError is a non-2xx answer. Fields holds the field-keyed errors of a 400.
type APIError struct {
	Status  int
	Message string
	Fields  map[string]string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("%d: %s", e.Status, http.StatusText(e.Status))
}

// Code identifies the error: the first offending field for validation errors,
// the status otherwise.
func (e *APIError) Code() string {
	if len(e.Fields) > 0 {
		keys := make([]string, 0, len(e.Fields))
		for k := range e.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		return keys[0]
	}
	switch e.Status {
	case http.StatusUnauthorized:
		return "unauthorized"
	case http.StatusForbidden:
		return "forbidden"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusBadRequest:
		return "bad_request"
	}
	if e.Status >= 500 {
		return "server_error"
	}
	return "unknown"
}

// Has reports whether field is one of the offending fields.
func (e *APIError) Has(field string) bool {
	_, ok := e.Fields[field]
	return ok
}

func newAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{Status: status}
	var payload map[string]interface{}
	if err := json.Unmarshal(body, &payload); err != nil {
		apiErr.Message = strings.TrimSpace(string(body))
		return apiErr
	}
	for k, v := range payload {
		msg, ok := v.(string)
		if !ok {
			continue
		}
		switch k {
		case "error", "message":
			apiErr.Message = msg
		default:
			if apiErr.Fields == nil {
				apiErr.Fields = make(map[string]string)
			}
			apiErr.Fields[k] = msg
		}
	}
	return apiErr
}
