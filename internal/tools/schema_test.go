package tools

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type shapeArgs struct {
	A int    `json:"a"`
	B string `json:"b" default:"x"`
}

func TestDescribe_Shape(t *testing.T) {
	desc, err := Describe[shapeArgs]("f", "Does f.\nMore detail here.")
	require.NoError(t, err)

	assert.Equal(t, "f", desc.Name)
	assert.Equal(t, "Does f.", desc.Description)
	require.Len(t, desc.Parameters, 2)

	a := desc.Parameters[0]
	assert.Equal(t, "a", a.Name)
	assert.Equal(t, TypeInteger, a.Type)
	assert.True(t, a.Required)

	b := desc.Parameters[1]
	assert.Equal(t, "b", b.Name)
	assert.Equal(t, TypeString, b.Type)
	assert.False(t, b.Required)
	assert.Equal(t, "x", b.Default)
}

func TestDescribe_TypeInference(t *testing.T) {
	type args struct {
		Count   int64   `json:"count"`
		Small   uint8   `json:"small"`
		Enabled bool    `json:"enabled"`
		Ratio   float64 `json:"ratio"`
		Label   string  `json:"label"`
		Plain   string
		Skipped string `json:"-"`
		hidden  string
	}

	desc, err := Describe[args]("types", "")
	require.NoError(t, err)

	got := map[string]ParamType{}
	var names []string
	for _, p := range desc.Parameters {
		got[p.Name] = p.Type
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{"count", "small", "enabled", "ratio", "label", "Plain"}, names)
	assert.Equal(t, TypeInteger, got["count"])
	assert.Equal(t, TypeInteger, got["small"])
	assert.Equal(t, TypeBoolean, got["enabled"])
	assert.Equal(t, TypeString, got["ratio"], "floats are published as strings")
	assert.Equal(t, TypeString, got["label"])
}

func TestDescribe_Description(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{name: "empty", doc: "", want: "No description"},
		{name: "whitespace", doc: "  \n\t ", want: "No description"},
		{name: "single line", doc: "Get the weather", want: "Get the weather"},
		{name: "leading blank lines", doc: "\n\n  Get the time.\n  Local clock.", want: "Get the time."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			desc, err := Describe[struct{}]("t", tt.doc)
			require.NoError(t, err)
			assert.Equal(t, tt.want, desc.Description)
		})
	}
}

func TestDescribe_Errors(t *testing.T) {
	_, err := Describe[struct{}]("", "doc")
	assert.ErrorIs(t, err, ErrEmptyName)

	_, err = Describe[int]("n", "doc")
	assert.ErrorIs(t, err, ErrNotStruct)

	type badDefault struct {
		N int `json:"n" default:"many"`
	}
	_, err = Describe[badDefault]("n", "doc")
	assert.Error(t, err)
}

func TestDescribe_TypedDefaults(t *testing.T) {
	type args struct {
		N     int     `json:"n" default:"3"`
		F     float64 `json:"f" default:"1.5"`
		B     bool    `json:"b" default:"true"`
		S     string  `json:"s" default:"."`
		Descr string  `json:"descr" description:"What to say"`
	}

	desc, err := Describe[args]("d", "doc")
	require.NoError(t, err)

	n, _ := desc.Param("n")
	assert.Equal(t, int64(3), n.Default)
	f, _ := desc.Param("f")
	assert.Equal(t, 1.5, f.Default)
	b, _ := desc.Param("b")
	assert.Equal(t, true, b.Default)
	s, _ := desc.Param("s")
	assert.Equal(t, ".", s.Default)
	d, _ := desc.Param("descr")
	assert.Equal(t, "What to say", d.Description)
	assert.True(t, d.Required)
}

func TestParameters_MarshalJSON(t *testing.T) {
	desc, err := Describe[shapeArgs]("f", "Does f")
	require.NoError(t, err)

	b, err := json.Marshal(desc)
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"name": "f",
		"description": "Does f",
		"parameters": {
			"type": "object",
			"properties": {
				"a": {"type": "integer", "description": "Argument: a"},
				"b": {"type": "string", "description": "Argument: b"}
			},
			"required": ["a"]
		}
	}`, string(b))

	// properties keep declaration order
	assert.Less(t, strings.Index(string(b), `"a":`), strings.Index(string(b), `"b":`))
}

func TestParameters_MarshalJSON_NoParams(t *testing.T) {
	desc, err := Describe[struct{}]("now", "Get the time")
	require.NoError(t, err)

	b, err := json.Marshal(desc.Parameters)
	require.NoError(t, err)
	assert.Equal(t, `{"type":"object","properties":{},"required":[]}`, string(b))
}
