package toolbridge

import (
	"errors"
	"fmt"
)

// Sentinel errors for toolbridge. Use errors.Is to check.
var (
	ErrMalformedArguments  = errors.New("malformed argument payload")
	ErrEmptyName           = errors.New("capability name is empty")
	ErrEmptyField          = errors.New("capability argument field is empty")
	ErrNilEffect           = errors.New("capability effect must not be nil")
	ErrDuplicateCapability = errors.New("capability already declared")
	ErrNilSession          = errors.New("session must not be nil")
	// ErrUnknownCapability is recorded in a CallResult for names no capability declares.
	// Dispatch never returns it; the call is still acknowledged as a success.
	ErrUnknownCapability   = errors.New("unknown capability")
)

// ArgumentError reports an argument payload that failed the two-stage decode.
// It matches ErrMalformedArguments with errors.Is; Err holds the underlying parse error, if any.
// It is local-only and never sent to the session.
type ArgumentError struct {
	Capability string
	Field      string
	Reason     string
	Err        error
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("%s: malformed %q argument: %s", e.Capability, e.Field, e.Reason)
}

// Unwrap returns the underlying parse error.
func (e *ArgumentError) Unwrap() error { return e.Err }

// Is reports ErrMalformedArguments so callers need not unwrap to the parse error.
func (e *ArgumentError) Is(target error) bool { return target == ErrMalformedArguments }

// EffectError wraps a failure of a capability's local effect (returned error or recovered panic).
type EffectError struct {
	Capability string
	Err        error
}

func (e *EffectError) Error() string {
	return fmt.Sprintf("%s: effect failed: %v", e.Capability, e.Err)
}

func (e *EffectError) Unwrap() error { return e.Err }

// IsArgumentError returns true if err is or wraps an ArgumentError.
func IsArgumentError(err error) bool {
	var ae *ArgumentError
	return errors.As(err, &ae)
}

// IsEffectError returns true if err is or wraps an EffectError.
func IsEffectError(err error) bool {
	var ee *EffectError
	return errors.As(err, &ee)
}

// panicError wraps a recovered panic value for EffectError.
type panicError struct{ p any }

func (e *panicError) Error() string {
	return "panic: " + fmt.Sprint(e.p)
}
