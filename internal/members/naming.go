package members

import (
	"reflect"
	"strings"
	"unicode"
	"unicode/utf8"
)

var boolType = reflect.TypeFor[bool]()

// AccessorSuffix strips prefix from name and returns the remainder when it names a property:
// "GetX" and "Get_x" do, "Getaway" and "Get" do not.
func AccessorSuffix(name, prefix string) (string, bool) {
	rest, ok := strings.CutPrefix(name, prefix)
	if !ok || rest == "" {
		return "", false
	}
	first, _ := utf8.DecodeRuneInString(rest)
	if unicode.IsLower(first) {
		return "", false
	}
	return rest, true
}

// IsGetterShape reports whether m takes nothing and returns one non-error value.
func IsGetterShape(m Method) bool {
	return len(m.In) == 0 && len(m.Out) == 1 && !IsErrorType(m.Out[0])
}

// IsSetterShape reports whether m takes one value and returns nothing or an error.
func IsSetterShape(m Method) bool {
	if len(m.In) != 1 || m.Variadic {
		return false
	}
	return len(m.Out) == 0 || (len(m.Out) == 1 && IsErrorType(m.Out[0]))
}

// GetterProperty reports whether m is shaped like Get<Name>() T or Is<Name>() bool and
// returns the undecorated property name.
func GetterProperty(m Method) (string, bool) {
	if !IsGetterShape(m) {
		return "", false
	}
	if rest, ok := AccessorSuffix(m.Name, "Get"); ok {
		return rest, true
	}
	if rest, ok := AccessorSuffix(m.Name, "Is"); ok && m.Out[0] == boolType {
		return rest, true
	}
	return "", false
}

// SetterProperty reports whether m is shaped like Set<Name>(T) with no result or an error.
func SetterProperty(m Method) (string, bool) {
	if !IsSetterShape(m) {
		return "", false
	}
	return AccessorSuffix(m.Name, "Set")
}
