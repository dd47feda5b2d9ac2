// Package fault tags errors with the kind of failure they represent so that
// callers can decide programmatically whether an operation is worth retrying.
package fault

import (
	"errors"
	"fmt"
)

type Kind int

const (
	// Transient covers RPC, estimation, submission and confirmation failures.
	Transient Kind = iota
	// InsufficientBalance means funds are below what the operation needs.
	InsufficientBalance
	// PartialSequence is one failed step inside a multi-step sequence.
	PartialSequence
	// Configuration problems are fatal and never retried.
	Configuration
)

func (k Kind) String() string {
	switch k {
	case Transient:
		return "transient"
	case InsufficientBalance:
		return "insufficient_balance"
	case PartialSequence:
		return "partial_sequence"
	case Configuration:
		return "configuration"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Op == "" {
		return e.Err.Error()
	}
	return e.Op + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// New wraps err with kind and op. A nil err yields nil.
func New(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

func Errorf(kind Kind, format string, a ...any) error {
	return &Error{Kind: kind, Err: fmt.Errorf(format, a...)}
}

// KindOf reports the kind of the outermost tagged error in err's chain.
// Untagged errors are Transient.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return Transient
}

func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// IsRetryable is false only for configuration errors.
func IsRetryable(err error) bool {
	return err != nil && KindOf(err) != Configuration
}
