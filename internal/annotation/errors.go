package annotation

import (
	"errors"

	"github.com/atlanticdynamic/hostbridge/internal/members"
)

var (
	ErrNilType            = errors.New("nil type")
	ErrInvalidConstructor = members.ErrInvalidConstructor
	ErrInvalidRole        = errors.New("invalid annotation role")
)
