// Package engines defines the contracts between the script engine registry, engine factories
// and the global-context injectors.
package engines

import (
	"context"
	"fmt"
	"maps"
	"mime"
	"strings"
	"time"

	"github.com/atlanticdynamic/hostbridge/internal/annotation"
)

// DefaultEvalTimeout bounds a single Exec call when the settings carry no timeout.
const DefaultEvalTimeout = 1 * time.Minute

// Recognised settings keys.
const (
	SettingTimeout      = "timeout"
	SettingEntrypoint   = "entrypoint"
	SettingGlobalObject = "global_object"
)

// Settings is the opaque configuration handed unmodified to a Factory.
type Settings map[string]any

// String returns the string value stored under key.
func (s Settings) String(key string) (string, bool) {
	v, ok := s[key]
	if !ok {
		return "", false
	}
	str, ok := v.(string)
	return str, ok
}

// Duration returns the duration stored under key, given either as a time.Duration or as a
// duration string.
func (s Settings) Duration(key string) (time.Duration, error) {
	switch v := s[key].(type) {
	case nil:
		return 0, nil
	case time.Duration:
		return v, nil
	case string:
		d, err := time.ParseDuration(v)
		if err != nil {
			return 0, fmt.Errorf("%w: %s: %w", ErrInvalidSetting, key, err)
		}
		return d, nil
	default:
		return 0, fmt.Errorf("%w: %s has type %T", ErrInvalidSetting, key, v)
	}
}

// Timeout returns the configured evaluation timeout, or DefaultEvalTimeout.
func (s Settings) Timeout() (time.Duration, error) {
	d, err := s.Duration(SettingTimeout)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return DefaultEvalTimeout, nil
	}
	return d, nil
}

// Clone returns a shallow copy.
func (s Settings) Clone() Settings {
	if s == nil {
		return Settings{}
	}
	return maps.Clone(s)
}

// Factory creates engines for the MIME types it serves.
type Factory interface {
	// Name identifies the engine family, e.g. "risor". It is also the engine name seen by
	// engine-restricted annotations.
	Name() string
	// MIMETypes lists the MIME types served by this factory.
	MIMETypes() []string
	// NewEngine creates an engine; settings are passed through from the caller.
	NewEngine(settings Settings) (Engine, error)
}

// Engine is one configured scripting runtime.
type Engine interface {
	// ID is unique per engine instance.
	ID() string
	// Name returns the engine family name.
	Name() string
	// MIMEType returns the MIME type the engine was requested for.
	MIMEType() string
	// Markers returns the annotation fallback used when resolving host types.
	Markers() annotation.Markers
	// Inject adds a plain global value.
	Inject(name string, value any) error
	// Expose adds a host object whose script-visible members are resolved and bound.
	Expose(name string, obj any) error
	// Exec evaluates source and returns its result.
	Exec(ctx context.Context, source string) (any, error)
}

// NormalizeMIMEType lower-cases t and strips any parameters.
func NormalizeMIMEType(t string) (string, error) {
	if strings.TrimSpace(t) == "" {
		return "", fmt.Errorf("%w: empty MIME type", ErrInvalidMIMEType)
	}
	mediaType, _, err := mime.ParseMediaType(t)
	if err != nil {
		return "", fmt.Errorf("%w: %q: %w", ErrInvalidMIMEType, t, err)
	}
	return mediaType, nil
}
