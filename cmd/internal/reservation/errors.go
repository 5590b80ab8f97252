package reservation

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrResourceNotFound  = errors.New("problem statement not found")
	ErrCapacityExceeded  = errors.New("problem statement at capacity")
	ErrAlreadyRegistered = errors.New("holder already registered")
	ErrAlreadyLocked     = errors.New("registration already has a problem statement")
	ErrNotRegistered     = errors.New("holder not registered")
)

// OpError is a typed protocol error with a stable Op + Kind contract.
// Kind is always one of the sentinels above. Msg must not contain tokens.
type OpError struct {
	Op   string
	Kind error
	Msg  string
}

func (e OpError) Error() string {
	if e.Msg == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %s", e.Op, e.Kind, e.Msg)
}

func (e OpError) Unwrap() error { return e.Kind }

func opErr(op string, kind error, msg string) error {
	return OpError{Op: op, Kind: kind, Msg: msg}
}

// wrapStore tags store sentinel failures with the operation name and passes
// everything else through untouched.
func wrapStore(op string, err error) error {
	var oe OpError
	if errors.As(err, &oe) {
		return err
	}
	for _, kind := range []error{ErrAlreadyRegistered, ErrAlreadyLocked, ErrNotRegistered, ErrInvalidInput} {
		if errors.Is(err, kind) {
			return OpError{Op: op, Kind: kind}
		}
	}
	return err
}
