package logs

import (
	"errors"
	"fmt"

	"github.com/atlanticdynamic/hostbridge/internal/logging"
)

// Validate performs validation for Config
func (lc *Config) Validate() error {
	var errs []error

	if !lc.Format.IsValid() {
		errs = append(errs, fmt.Errorf("%w: %s", ErrInvalidLogFormat, lc.Format))
	}

	if !lc.Level.IsValid() {
		errs = append(errs, fmt.Errorf("%w: %s", ErrInvalidLogLevel, lc.Level))
	}

	if err := logging.CheckOutput(lc.Output); err != nil {
		errs = append(errs, fmt.Errorf("%w: %s", ErrInvalidLogOutput, lc.Output))
	}

	return errors.Join(errs...)
}
