package polyscript

import "errors"

var (
	ErrNoSource          = errors.New("neither code nor location provided")
	ErrCompilationFailed = errors.New("script compilation failed")
	ErrEvalFailed        = errors.New("script evaluation failed")
	ErrEvalTimeout       = errors.New("script evaluation timed out")
	ErrNilHostObject     = errors.New("nil host object")
)
