package config

import "errors"

// Top-level error categories
var (
	ErrFailedToLoadConfig     = errors.New("failed to load config")
	ErrFailedToValidateConfig = errors.New("failed to validate config")
	ErrUnsupportedConfigVer   = errors.New("unsupported config version")
)

// Validation specific errors
var (
	ErrInvalidMIMEType = errors.New("invalid engine MIME type")
	ErrInvalidSettings = errors.New("invalid engine settings")
	ErrReservedGlobal  = errors.New("global name is reserved")
	ErrEmptyName       = errors.New("empty name")
	ErrInvalidLocation = errors.New("invalid location")
)
