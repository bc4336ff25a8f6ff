package feed

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a failed feed fetch
type ErrorKind int

const (
	KindInvalidURL ErrorKind = iota + 1
	KindNoData
	KindDecoding
	KindHTTPStatus
)

func (k ErrorKind) String() string {
	switch k {
	case KindInvalidURL:
		return "invalid_url"
	case KindNoData:
		return "no_data"
	case KindDecoding:
		return "decoding"
	case KindHTTPStatus:
		return "http_status"
	default:
		return "unknown"
	}
}

// APIError is the only error type a Source returns
type APIError struct {
	Kind       ErrorKind
	StatusCode int // KindHTTPStatus only, 0 when no response arrived
	Err        error
}

func (e *APIError) Error() string {
	switch e.Kind {
	case KindInvalidURL:
		return "the URL was invalid"
	case KindNoData:
		return "no data was received from the server"
	case KindDecoding:
		return fmt.Sprintf("failed to decode the response: %v", e.Err)
	case KindHTTPStatus:
		if e.Err != nil && e.StatusCode == 0 {
			return fmt.Sprintf("request failed: %v", e.Err)
		}
		return fmt.Sprintf("server responded with status code %d", e.StatusCode)
	default:
		return "feed error"
	}
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of err if it is an APIError, 0 otherwise
func KindOf(err error) ErrorKind {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return 0
}
