package receiptapi

import (
	"errors"
	"fmt"
)

// Kind classifies a failed lookup.
type Kind int

const (
	// KindConnection covers transport failures and non-success HTTP statuses.
	KindConnection Kind = iota
	// KindMalformedResponse means the body did not match the expected shape.
	KindMalformedResponse
	// KindRemote means the store answered ok=false.
	KindRemote
	// KindNotFound means the store answered ok=true without a receipt.
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindConnection:
		return "connection"
	case KindMalformedResponse:
		return "malformed_response"
	case KindRemote:
		return "remote"
	case KindNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

// DefaultRemoteMessage is used when the store reports a failure without a message.
const DefaultRemoteMessage = "failed to retrieve receipt data"

// ErrEmptyRefCode is returned before any request is made for a blank reference code.
var ErrEmptyRefCode = errors.New("receiptapi: reference code is required")

// LookupError is the typed failure of a single lookup attempt.
type LookupError struct {
	Kind       Kind
	RefCode    string
	StatusCode int    // set for non-success HTTP statuses
	Message    string // remote message for KindRemote
	Err        error
}

func (e *LookupError) Error() string {
	switch e.Kind {
	case KindConnection:
		if e.StatusCode != 0 {
			return fmt.Sprintf("receiptapi: lookup %q: HTTP status %d", e.RefCode, e.StatusCode)
		}
		return fmt.Sprintf("receiptapi: lookup %q: connection failed: %v", e.RefCode, e.Err)
	case KindMalformedResponse:
		return fmt.Sprintf("receiptapi: lookup %q: malformed response: %v", e.RefCode, e.Err)
	case KindRemote:
		return fmt.Sprintf("receiptapi: lookup %q: %s", e.RefCode, e.Message)
	case KindNotFound:
		return fmt.Sprintf("receiptapi: lookup %q: receipt not found", e.RefCode)
	default:
		return fmt.Sprintf("receiptapi: lookup %q failed", e.RefCode)
	}
}

func (e *LookupError) Unwrap() error { return e.Err }

// KindOf reports the kind of a lookup error, and false for any other error.
func KindOf(err error) (Kind, bool) {
	var le *LookupError
	if errors.As(err, &le) {
		return le.Kind, true
	}
	return 0, false
}
