// Package interpolation expands ${VAR} and ${VAR:default} references in configuration strings.
package interpolation

import (
	"errors"
	"fmt"
	"os"
	"regexp"
)

// ErrUndefinedVariable is returned for a reference without a default whose variable is unset.
var ErrUndefinedVariable = errors.New("environment variable not defined")

// Pattern for ${VAR_NAME} and ${VAR_NAME:default} syntax - captures colon explicitly
var envVarWithDefaultPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(:)?([^}]*)\}`)

// LookupFunc returns the value of a variable and whether it is set.
type LookupFunc func(name string) (string, bool)

// ExpandEnvVars expands references against the process environment:
//
// ${VAR_NAME:default_value}
//
// If the variable is not set, the default is used when one is given (${VAR:} defaults to the
// empty string). Otherwise the reference is left in place and an error is returned.
func ExpandEnvVars(input string) (string, error) {
	return Expand(input, os.LookupEnv)
}

// Expand expands references using lookup.
func Expand(input string, lookup LookupFunc) (string, error) {
	if input == "" {
		return "", nil
	}

	var missingVars []error
	result := envVarWithDefaultPattern.ReplaceAllStringFunc(input, func(match string) string {
		// [full_match, varName, colon, defaultValue]
		submatches := envVarWithDefaultPattern.FindStringSubmatch(match)
		varName := submatches[1]

		if value, exists := lookup(varName); exists {
			return value
		}
		if submatches[2] == ":" {
			return submatches[3]
		}

		missingVars = append(missingVars, fmt.Errorf("%w: %s", ErrUndefinedVariable, varName))
		return match
	})

	return result, errors.Join(missingVars...)
}

// References returns the variable names referenced by input, in order of appearance.
func References(input string) []string {
	var names []string
	for _, m := range envVarWithDefaultPattern.FindAllStringSubmatch(input, -1) {
		names = append(names, m[1])
	}
	return names
}
