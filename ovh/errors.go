package ovh

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Kind tags an *Error with the failure it represents.
type Kind int

const (
	KindAPI Kind = iota
	KindInvalidRegion
	KindInvalidKey
	KindInvalidArgument
	KindTransport
	KindTimeout
	KindCancelled
	KindInvalidResponse
	KindNotGrantedCall
	KindNotCredential
	KindInvalidCredential
	KindForbidden
	KindResourceNotFound
	KindBadParameters
	KindStaleRequest
	KindResourceConflict
)

var kindNames = map[Kind]string{
	KindAPI:               "api error",
	KindInvalidRegion:     "invalid region",
	KindInvalidKey:        "invalid key",
	KindInvalidArgument:   "invalid argument",
	KindTransport:         "transport error",
	KindTimeout:           "timeout",
	KindCancelled:         "cancelled",
	KindInvalidResponse:   "invalid response",
	KindNotGrantedCall:    "not granted call",
	KindNotCredential:     "not credential",
	KindInvalidCredential: "invalid credential",
	KindForbidden:         "forbidden",
	KindResourceNotFound:  "resource not found",
	KindBadParameters:     "bad parameters",
	KindStaleRequest:      "stale request",
	KindResourceConflict:  "resource conflict",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Error is returned by every Client operation.
type Error struct {
	Kind Kind

	// StatusCode and ErrorCode are set when the error comes from an API response.
	StatusCode int
	ErrorCode  string
	Message    string
	Err        error
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s (status=%d", msg, e.StatusCode)
		if e.ErrorCode != "" {
			msg += " code=" + e.ErrorCode
		}
		msg += ")"
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is an *Error of the same kind, so the Err* values
// below can be used with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

var (
	ErrAPI               = &Error{Kind: KindAPI}
	ErrInvalidRegion     = &Error{Kind: KindInvalidRegion}
	ErrInvalidKey        = &Error{Kind: KindInvalidKey}
	ErrInvalidArgument   = &Error{Kind: KindInvalidArgument}
	ErrTransport         = &Error{Kind: KindTransport}
	ErrTimeout           = &Error{Kind: KindTimeout}
	ErrCancelled         = &Error{Kind: KindCancelled}
	ErrInvalidResponse   = &Error{Kind: KindInvalidResponse}
	ErrNotGrantedCall    = &Error{Kind: KindNotGrantedCall}
	ErrNotCredential     = &Error{Kind: KindNotCredential}
	ErrInvalidCredential = &Error{Kind: KindInvalidCredential}
	ErrForbidden         = &Error{Kind: KindForbidden}
	ErrResourceNotFound  = &Error{Kind: KindResourceNotFound}
	ErrBadParameters     = &Error{Kind: KindBadParameters}
	ErrStaleRequest      = &Error{Kind: KindStaleRequest}
	ErrResourceConflict  = &Error{Kind: KindResourceConflict}
)

// KindOf returns the kind of the first *Error in err's chain. Errors that did not
// come from this package report KindAPI and ok=false.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return KindAPI, false
}

func newError(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Err: cause}
}

// Classify turns a non-2xx response into a typed error. The optional "message"
// and "errorCode" fields of the body are used when they are strings; anything
// else in the body is ignored.
func Classify(statusCode int, body []byte) *Error {
	message, errorCode := extractErrorFields(body)
	e := &Error{Kind: KindAPI, StatusCode: statusCode, ErrorCode: errorCode, Message: message}

	switch statusCode {
	case http.StatusForbidden:
		switch errorCode {
		case "NOT_GRANTED_CALL":
			e.Kind = KindNotGrantedCall
		case "NOT_CREDENTIAL":
			e.Kind = KindNotCredential
		case "INVALID_KEY":
			e.Kind = KindInvalidKey
		case "INVALID_CREDENTIAL":
			e.Kind = KindInvalidCredential
		case "FORBIDDEN":
			e.Kind = KindForbidden
		}
	case http.StatusNotFound:
		e.Kind = KindResourceNotFound
	case http.StatusBadRequest:
		if errorCode == "QUERY_TIME_OUT" {
			e.Kind = KindStaleRequest
		} else {
			e.Kind = KindBadParameters
		}
	case http.StatusConflict:
		e.Kind = KindResourceConflict
	}
	return e
}

func extractErrorFields(body []byte) (message, errorCode string) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return "", ""
	}
	if raw, ok := fields["message"]; ok {
		_ = json.Unmarshal(raw, &message)
	}
	if raw, ok := fields["errorCode"]; ok {
		_ = json.Unmarshal(raw, &errorCode)
	}
	return message, errorCode
}
