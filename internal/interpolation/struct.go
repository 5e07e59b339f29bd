package interpolation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// TagName marks struct fields that are interpolated.
const TagName = "env_interpolation"

// InterpolateStruct expands fields tagged `env_interpolation:"yes"` in place, against the
// process environment. It handles strings, string maps, string slices, nested structs and
// pointers to structs. Values of map[string]any fields are expanded when they are strings.
func InterpolateStruct(v any) error {
	return InterpolateStructWith(v, nil)
}

// InterpolateStructWith is InterpolateStruct with a custom lookup; nil means the process
// environment.
func InterpolateStructWith(v any, lookup LookupFunc) error {
	if v == nil {
		return nil
	}
	expand := ExpandEnvVars
	if lookup != nil {
		expand = func(s string) (string, error) { return Expand(s, lookup) }
	}

	val := reflect.ValueOf(v)
	if val.Kind() == reflect.Pointer {
		if val.IsNil() {
			return nil
		}
		val = val.Elem()
	}
	if val.Kind() != reflect.Struct {
		return fmt.Errorf("expected struct or pointer to struct, got %T", v)
	}
	if !val.CanAddr() {
		return fmt.Errorf("cannot interpolate %T in place, pass a pointer", v)
	}
	return interpolateFields(val, expand)
}

func interpolateFields(val reflect.Value, expand func(string) (string, error)) error {
	typ := val.Type()
	var errs []error

	for i := 0; i < val.NumField(); i++ {
		field := val.Field(i)
		fieldType := typ.Field(i)
		if !field.CanSet() || !strings.EqualFold(fieldType.Tag.Get(TagName), "yes") {
			continue
		}
		if err := interpolateValue(field, expand); err != nil {
			errs = append(errs, fmt.Errorf("field %s%w", fieldType.Name, err))
		}
	}
	return errors.Join(errs...)
}

// interpolateValue returns errors prefixed with the path below the field, e.g. "[key]: ...".
func interpolateValue(field reflect.Value, expand func(string) (string, error)) error {
	switch field.Kind() {
	case reflect.String:
		if field.String() == "" {
			return nil
		}
		out, err := expand(field.String())
		if err != nil {
			return fmt.Errorf(": %w", err)
		}
		field.SetString(out)

	case reflect.Map:
		if field.IsNil() || field.Type().Key().Kind() != reflect.String {
			return nil
		}
		var errs []error
		for _, key := range field.MapKeys() {
			elem := field.MapIndex(key)
			if elem.Kind() == reflect.Interface {
				elem = elem.Elem()
			}
			if elem.Kind() != reflect.String {
				continue
			}
			out, err := expand(elem.String())
			if err != nil {
				errs = append(errs, fmt.Errorf("[%s]: %w", key.String(), err))
				continue
			}
			field.SetMapIndex(key, reflect.ValueOf(out).Convert(field.Type().Elem()))
		}
		return errors.Join(errs...)

	case reflect.Slice:
		var errs []error
		for j := 0; j < field.Len(); j++ {
			elem := field.Index(j)
			if elem.Kind() == reflect.Pointer && elem.IsNil() {
				continue
			}
			if err := interpolateValue(elem, expand); err != nil {
				errs = append(errs, fmt.Errorf("[%d]%w", j, err))
			}
		}
		return errors.Join(errs...)

	case reflect.Struct:
		if err := interpolateFields(field, expand); err != nil {
			return fmt.Errorf(": %w", err)
		}

	case reflect.Pointer:
		if field.IsNil() || field.Elem().Kind() != reflect.Struct {
			return nil
		}
		if err := interpolateFields(field.Elem(), expand); err != nil {
			return fmt.Errorf(": %w", err)
		}
	}
	return nil
}
