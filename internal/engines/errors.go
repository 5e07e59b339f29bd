package engines

import "errors"

var (
	ErrNotFound        = errors.New("no script engine for MIME type")
	ErrInvalidMIMEType = errors.New("invalid MIME type")
	ErrInvalidSetting  = errors.New("invalid engine setting")
	ErrDuplicateGlobal = errors.New("global already defined")
	ErrEmptyGlobalName = errors.New("global name is empty")
	ErrNilCandidate    = errors.New("nil discovery candidate")
)
