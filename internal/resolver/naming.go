package resolver

import (
	"unicode"
	"unicode/utf8"

	"github.com/atlanticdynamic/hostbridge/internal/members"
)

// Decapitalize applies the bean naming rule: the first letter is lowered unless the first two
// letters are both upper case, so "X" becomes "x" and "URL" stays "URL".
func Decapitalize(name string) string {
	if name == "" {
		return name
	}
	first, size := utf8.DecodeRuneInString(name)
	if size < len(name) {
		second, _ := utf8.DecodeRuneInString(name[size:])
		if unicode.IsUpper(first) && unicode.IsUpper(second) {
			return name
		}
	}
	return string(unicode.ToLower(first)) + name[size:]
}

// isObjectGetterShape reports whether m takes one key and returns one value, optionally
// followed by an error.
func isObjectGetterShape(m members.Method) bool {
	if len(m.In) != 1 || m.Variadic {
		return false
	}
	switch len(m.Out) {
	case 1:
		return !members.IsErrorType(m.Out[0])
	case 2:
		return !members.IsErrorType(m.Out[0]) && members.IsErrorType(m.Out[1])
	default:
		return false
	}
}
