package shutter

import "errors"

var (
	ErrUnsupportedFormat = errors.New("unsupported allow-list format")
	ErrEmptyTypeName     = errors.New("grant has no type name")
	ErrWatcherRunning    = errors.New("watcher already running")
)
