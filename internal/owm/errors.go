package owm

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a failed query.
type ErrorKind int

const (
	// KindUnknown covers malformed bodies, missing fields and invalid input.
	KindUnknown ErrorKind = iota
	// KindNotFound means the provider answered but could not resolve the location.
	KindNotFound
	// KindNetwork means the request never produced a response.
	KindNetwork
)

func (k ErrorKind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindNetwork:
		return "network_failure"
	default:
		return "unknown"
	}
}

// User-facing messages.
const (
	MsgCityNotFound     = "City not found. Please check the spelling and try again."
	MsgLocationNotFound = "Location not found."
	MsgNetwork          = "Unable to reach the weather service. Check your connection and try again."
	MsgUnknown          = "An error occurred"
)

// Sentinel errors for use with errors.Is.
var (
	ErrNotFound = &QueryError{Kind: KindNotFound, Message: MsgLocationNotFound}
	ErrNetwork  = &QueryError{Kind: KindNetwork, Message: MsgNetwork}
	ErrUnknown  = &QueryError{Kind: KindUnknown, Message: MsgUnknown}
)

// QueryError is the only error type FetchByCity and FetchByCoordinates return.
// Message is safe to show to the user as-is.
type QueryError struct {
	Kind    ErrorKind
	Message string
	Err     error // underlying cause, if any
}

func (e *QueryError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("owm [%s]: %s (%v)", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("owm [%s]: %s", e.Kind, e.Message)
}

func (e *QueryError) Unwrap() error { return e.Err }

// Is matches on Kind so errors.Is(err, ErrNotFound) works for any message.
func (e *QueryError) Is(target error) bool {
	t, ok := target.(*QueryError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// UserMessage extracts the displayable message from err.
// Errors that are not a *QueryError yield the generic message.
func UserMessage(err error) string {
	var qe *QueryError
	if errors.As(err, &qe) && qe.Message != "" {
		return qe.Message
	}
	return MsgUnknown
}

// IsNotFound reports whether err is a not-found query error.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// IsNetwork reports whether err is a transport failure.
func IsNetwork(err error) bool { return errors.Is(err, ErrNetwork) }

func notFound(msg string) error {
	return &QueryError{Kind: KindNotFound, Message: msg}
}

func networkFailure(err error) error {
	return &QueryError{Kind: KindNetwork, Message: MsgNetwork, Err: err}
}

func unknown(msg string, err error) error {
	if msg == "" {
		msg = MsgUnknown
	}
	return &QueryError{Kind: KindUnknown, Message: msg, Err: err}
}
