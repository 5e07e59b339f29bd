package members

import "errors"

var (
	ErrNilOwner           = errors.New("nil owner type")
	ErrEmptyName          = errors.New("empty member name")
	ErrNoAccessor         = errors.New("field has no getter, setter or struct field")
	ErrTypeMismatch       = errors.New("accessor types disagree")
	ErrInvalidConstructor = errors.New("invalid constructor")
	ErrDuplicateName      = errors.New("duplicate member name")
)
