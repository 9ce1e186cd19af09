package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
)

// Parameters is the ordered parameter list of a tool. It marshals as an
// object schema whose properties keep declaration order.
type Parameters []Parameter

type property struct {
	Type        ParamType `json:"type"`
	Description string    `json:"description,omitempty"`
}

// MarshalJSON writes {"type":"object","properties":{...},"required":[...]}.
func (p Parameters) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"type":"object","properties":{`)

	required := make([]string, 0, len(p))
	for i, param := range p {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(param.Name)
		if err != nil {
			return nil, err
		}
		prop, err := json.Marshal(property{Type: param.Type, Description: param.Description})
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(prop)

		if param.Required {
			required = append(required, param.Name)
		}
	}

	buf.WriteString(`},"required":`)
	req, err := json.Marshal(required)
	if err != nil {
		return nil, err
	}
	buf.Write(req)
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Describe derives the descriptor of a tool whose arguments are the struct T.
// Exported fields become parameters in declaration order. A `default` struct
// tag makes a parameter optional; a `description` tag documents it. Only the
// first line of doc is published.
func Describe[T any](name, doc string) (ToolDescriptor, error) {
	fields, err := argFields(reflect.TypeFor[T]())
	if err != nil {
		return ToolDescriptor{}, err
	}
	return describeFields(name, doc, fields)
}

func describeFields(name, doc string, fields []argField) (ToolDescriptor, error) {
	if strings.TrimSpace(name) == "" {
		return ToolDescriptor{}, ErrEmptyName
	}

	params := make(Parameters, 0, len(fields))
	for _, f := range fields {
		params = append(params, f.param)
	}

	return ToolDescriptor{
		Name:        name,
		Description: firstLine(doc),
		Parameters:  params,
	}, nil
}

func firstLine(doc string) string {
	doc = strings.TrimSpace(doc)
	if doc == "" {
		return noDescription
	}
	line, _, _ := strings.Cut(doc, "\n")
	return strings.TrimSpace(line)
}

type argField struct {
	index int
	param Parameter
}

// argFields walks the exported fields of an argument struct
func argFields(typ reflect.Type) ([]argField, error) {
	if typ == nil || typ.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w: got %v", ErrNotStruct, typ)
	}

	fields := make([]argField, 0, typ.NumField())
	for i := 0; i < typ.NumField(); i++ {
		sf := typ.Field(i)
		if !sf.IsExported() {
			continue
		}
		name := sf.Name
		if tag := sf.Tag.Get("json"); tag != "" {
			tagName, _, _ := strings.Cut(tag, ",")
			if tagName == "-" {
				continue
			}
			if tagName != "" {
				name = tagName
			}
		}

		param := Parameter{
			Name:        name,
			Type:        paramType(sf.Type),
			Description: sf.Tag.Get("description"),
			Required:    true,
		}
		if param.Description == "" {
			param.Description = "Argument: " + name
		}
		if def, ok := sf.Tag.Lookup("default"); ok {
			v, err := parseDefault(sf.Type, def)
			if err != nil {
				return nil, fmt.Errorf("field %s: invalid default %q: %w", sf.Name, def, err)
			}
			param.Required = false
			param.Default = v
		}
		fields = append(fields, argField{index: i, param: param})
	}
	return fields, nil
}

func paramType(t reflect.Type) ParamType {
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return TypeInteger
	case reflect.Bool:
		return TypeBoolean
	default:
		return TypeString
	}
}

func parseDefault(t reflect.Type, raw string) (any, error) {
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.ParseInt(raw, 10, t.Bits())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.ParseUint(raw, 10, t.Bits())
	case reflect.Float32, reflect.Float64:
		return strconv.ParseFloat(raw, t.Bits())
	case reflect.Bool:
		return strconv.ParseBool(raw)
	case reflect.String:
		return raw, nil
	default:
		return nil, fmt.Errorf("defaults are not supported for %s", t.Kind())
	}
}

// binder decodes validated keyword arguments into T. The JSON Schema is
// generated from T itself, so float fields keep their number constraint.
// The catalog publishes floats as strings, so quoted numbers are parsed
// before validation.
type binder[T any] struct {
	resolved *jsonschema.Resolved
	floats   map[string]bool
}

func newBinder[T any](desc ToolDescriptor) (*binder[T], error) {
	schema, err := jsonschema.For[T](&jsonschema.ForOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to generate schema: %w", err)
	}

	required := make([]string, 0, len(desc.Parameters))
	for _, p := range desc.Parameters {
		if p.Required {
			required = append(required, p.Name)
		}
	}
	schema.Required = required

	resolved, err := schema.Resolve(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}

	typ := reflect.TypeFor[T]()
	fields, err := argFields(typ)
	if err != nil {
		return nil, err
	}
	floats := make(map[string]bool)
	for _, f := range fields {
		switch typ.Field(f.index).Type.Kind() {
		case reflect.Float32, reflect.Float64:
			floats[f.param.Name] = true
		}
	}
	return &binder[T]{resolved: resolved, floats: floats}, nil
}

// coerce parses quoted numbers given for float parameters
func (b *binder[T]) coerce(args map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(args))
	for k, v := range args {
		if s, ok := v.(string); ok && b.floats[k] {
			f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
			if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
				return nil, fmt.Errorf("argument %q: %q is not a number", k, s)
			}
			v = f
		}
		out[k] = v
	}
	return out, nil
}

// bind validates args against the schema of T and decodes them
func (b *binder[T]) bind(args map[string]any) (T, error) {
	var zero T

	args, err := b.coerce(args)
	if err != nil {
		return zero, err
	}
	data, err := json.Marshal(args)
	if err != nil {
		return zero, err
	}
	var instance any
	if err := json.Unmarshal(data, &instance); err != nil {
		return zero, err
	}
	if err := b.resolved.Validate(instance); err != nil {
		return zero, err
	}

	var out T
	if err := json.Unmarshal(data, &out); err != nil {
		return zero, err
	}
	return out, nil
}

// wrap adapts a typed tool function to Func
func wrap[T, R any](name string, b *binder[T], fn func(context.Context, T) (R, error)) Func {
	return func(ctx context.Context, args map[string]any) (string, error) {
		in, err := b.bind(args)
		if err != nil {
			return "", &ArgumentError{Tool: name, Reason: err.Error()}
		}
		out, err := fn(ctx, in)
		if err != nil {
			return "", err
		}
		return renderResult(out), nil
	}
}
