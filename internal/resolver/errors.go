package resolver

import "errors"

var ErrNilType = errors.New("nil host type")
