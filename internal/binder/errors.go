package binder

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidOperation = errors.New("operation not applicable to member")
	ErrNilInstance      = errors.New("nil instance")
	ErrScriptInvocation = errors.New("script invocation failed")
	ErrArgumentCount    = errors.New("wrong number of arguments")
	ErrArgumentType     = errors.New("argument type mismatch")
	ErrMissingMember    = errors.New("instance has no such member")
)

// InvocationError wraps a failure raised by host code while script code used a member.
type InvocationError struct {
	// Member is the qualified member, e.g. "geo.Point.x".
	Member string
	// Op is "get", "set", "invoke" or "construct".
	Op    string
	Cause error
}

func (e *InvocationError) Error() string {
	return fmt.Sprintf("%s: %s %s: %v", ErrScriptInvocation, e.Op, e.Member, e.Cause)
}

func (e *InvocationError) Unwrap() error {
	return e.Cause
}

// Is makes every InvocationError match ErrScriptInvocation.
func (e *InvocationError) Is(target error) bool {
	return target == ErrScriptInvocation
}
