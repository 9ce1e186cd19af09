package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// ParamType is the coarse type tag published to the model for a parameter
type ParamType string

const (
	TypeString  ParamType = "string"
	TypeInteger ParamType = "integer"
	TypeBoolean ParamType = "boolean"
)

// noDescription is published when a tool has no documentation
const noDescription = "No description"

// Parameter describes one keyword argument of a tool
type Parameter struct {
	Name        string
	Type        ParamType
	Description string
	Required    bool
	// Default is applied when the argument is omitted. Only set when Required is false.
	Default any
}

// ToolDescriptor is the published, immutable description of a registered tool
type ToolDescriptor struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Parameters  Parameters `json:"parameters"`
}

// Param returns the parameter with the given name
func (d ToolDescriptor) Param(name string) (Parameter, bool) {
	for _, p := range d.Parameters {
		if p.Name == name {
			return p, true
		}
	}
	return Parameter{}, false
}

// Func is the type-erased body of a registered tool. args holds the keyword
// arguments of one call, already checked against the descriptor with
// defaults applied.
type Func func(ctx context.Context, args map[string]any) (string, error)

// Arg is a single key=value pair of a parsed call
type Arg struct {
	Key   string
	Value any // string, int64, float64 or bool
}

// Call is a parsed tool-call directive
type Call struct {
	Name string
	Args []Arg
}

// String renders the call back into directive syntax
func (c Call) String() string {
	parts := make([]string, 0, len(c.Args))
	for _, a := range c.Args {
		parts = append(parts, a.Key+"="+formatLiteral(a.Value))
	}
	return c.Name + "(" + strings.Join(parts, ", ") + ")"
}

func formatLiteral(v any) string {
	switch v := v.(type) {
	case string:
		return "'" + strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(v) + "'"
	case bool:
		if v {
			return "True"
		}
		return "False"
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

// renderResult converts a tool's return value into the observation text
func renderResult(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	case []byte:
		return string(v)
	}

	switch reflect.Indirect(reflect.ValueOf(v)).Kind() {
	case reflect.Struct, reflect.Map, reflect.Slice, reflect.Array:
		if b, err := json.Marshal(v); err == nil {
			return string(b)
		}
	}
	return fmt.Sprint(v)
}
