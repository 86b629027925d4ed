package router

import (
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"
)

// Param is one parameter binding.
type Param struct {
	// Name is the parameter name declared in the template.
	Name string

	// Kind is the kind of the segment that produced the binding.
	Kind Kind

	// Value holds a dynamic segment's component.
	Value string

	// Values holds a catch-all segment's components in request order.
	Values []string
}

// Params are the bindings of a match, in the template's declared order.
type Params []Param

// Len returns the number of bindings.
func (p Params) Len() int { return len(p) }

// lookup returns the binding for name.
func (p Params) lookup(name string) (Param, bool) {
	for _, param := range p {
		if param.Name == name {
			return param, true
		}
	}
	return Param{}, false
}

// Get returns a binding as a single string. Catch-all values are joined
// with "/".
func (p Params) Get(name string) (string, bool) {
	param, ok := p.lookup(name)
	if !ok {
		return "", false
	}
	if param.Kind.IsCatchAll() {
		return strings.Join(param.Values, "/"), true
	}
	return param.Value, true
}

// Values returns a binding as a sequence. A dynamic value is returned as a
// one-element slice.
func (p Params) Values(name string) ([]string, bool) {
	param, ok := p.lookup(name)
	if !ok {
		return nil, false
	}
	if param.Kind.IsCatchAll() {
		return param.Values, true
	}
	return []string{param.Value}, true
}

// Map returns the bindings keyed by name: string for dynamic segments,
// []string for catch-all kinds.
func (p Params) Map() map[string]any {
	m := make(map[string]any, len(p))
	for _, param := range p {
		if param.Kind.IsCatchAll() {
			m[param.Name] = param.Values
		} else {
			m[param.Name] = param.Value
		}
	}
	return m
}

// Strings returns the bindings as flat strings, catch-all values joined
// with "/".
func (p Params) Strings() map[string]string {
	m := make(map[string]string, len(p))
	for _, param := range p {
		m[param.Name], _ = p.Get(param.Name)
	}
	return m
}

// bind turns the positional captures of a match into named bindings,
// following the route's declared parameter order.
func bind(route *Route, components []string, caps []span, mode EmptyCatchAll) Params {
	if len(route.params) == 0 {
		return nil
	}
	params := make(Params, 0, len(route.params))
	for i, slot := range route.params {
		c := caps[i]
		switch slot.kind {
		case KindDynamic:
			params = append(params, Param{Name: slot.name, Kind: slot.kind, Value: components[c.start]})
		default:
			if c.start == c.end && mode == EmptyCatchAllOmit {
				continue
			}
			values := make([]string, c.end-c.start)
			copy(values, components[c.start:c.end])
			params = append(params, Param{Name: slot.name, Kind: slot.kind, Values: values})
		}
	}
	return params
}

// ParamParser decodes bindings into typed struct fields.
type ParamParser struct{}

// NewParamParser creates a new parameter parser.
func NewParamParser() *ParamParser {
	return &ParamParser{}
}

// Parse populates a struct with values from params.
// The target must be a pointer to a struct with `param` tags.
func (p *ParamParser) Parse(params Params, target any) error {
	if target == nil {
		return nil
	}

	v := reflect.ValueOf(target)
	if v.Kind() != reflect.Ptr {
		return fmt.Errorf("target must be a pointer, got %s", v.Kind())
	}

	v = v.Elem()
	if v.Kind() != reflect.Struct {
		return fmt.Errorf("target must be a pointer to struct, got pointer to %s", v.Kind())
	}

	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		paramName := field.Tag.Get("param")
		if paramName == "" {
			continue
		}

		param, ok := params.lookup(paramName)
		if !ok {
			continue
		}

		fieldValue := v.Field(i)
		if !fieldValue.CanSet() {
			continue
		}

		if err := p.setField(fieldValue, param); err != nil {
			return fmt.Errorf("parsing param %q: %w", paramName, err)
		}
	}

	return nil
}

// setField sets a field value from a binding.
func (p *ParamParser) setField(field reflect.Value, param Param) error {
	value := param.Value
	if param.Kind.IsCatchAll() {
		value = strings.Join(param.Values, "/")
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(value)

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(value, 10, field.Type().Bits())
		if err != nil {
			return fmt.Errorf("invalid integer: %s", value)
		}
		field.SetInt(n)

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(value, 10, field.Type().Bits())
		if err != nil {
			return fmt.Errorf("invalid unsigned integer: %s", value)
		}
		field.SetUint(n)

	case reflect.Float32, reflect.Float64:
		n, err := strconv.ParseFloat(value, field.Type().Bits())
		if err != nil {
			return fmt.Errorf("invalid float: %s", value)
		}
		field.SetFloat(n)

	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean: %s", value)
		}
		field.SetBool(b)

	case reflect.Slice:
		if field.Type().Elem().Kind() != reflect.String {
			return fmt.Errorf("unsupported slice element type: %s", field.Type().Elem().Kind())
		}
		parts := param.Values
		if !param.Kind.IsCatchAll() {
			parts = []string{param.Value}
		}
		out := make([]string, len(parts))
		copy(out, parts)
		field.Set(reflect.ValueOf(out))

	default:
		return fmt.Errorf("unsupported type: %s", field.Kind())
	}

	return nil
}

// uuidRegex matches valid UUIDs.
var uuidRegex = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

// ValidateUUID validates that a string is a valid UUID.
func ValidateUUID(value string) error {
	if !uuidRegex.MatchString(value) {
		return fmt.Errorf("invalid UUID: %s", value)
	}
	return nil
}

// ValidateInt validates that a string is a valid integer.
func ValidateInt(value string) error {
	if _, err := strconv.ParseInt(value, 10, 64); err != nil {
		return fmt.Errorf("invalid integer: %s", value)
	}
	return nil
}

// ValidateParam validates a parameter value against its expected type.
// Unknown types accept any value.
func ValidateParam(value, paramType string) error {
	switch paramType {
	case "int", "int64", "int32", "int16", "int8":
		return ValidateInt(value)
	case "uint", "uint64", "uint32", "uint16", "uint8":
		if _, err := strconv.ParseUint(value, 10, 64); err != nil {
			return fmt.Errorf("invalid unsigned integer: %s", value)
		}
	case "uuid":
		return ValidateUUID(value)
	}
	return nil
}
