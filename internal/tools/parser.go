package tools

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// The call grammar is deliberately closed:
//
//	call    = Ident "(" [ kwarg { "," kwarg } ] ")"
//	kwarg   = Ident "=" literal
//	literal = String | Number | Bool
//
// There are no attribute lookups, nested calls or positional arguments, so
// nothing outside the registry can be named.
var callLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "String", Pattern: `'(?:\\.|[^'\\])*'|"(?:\\.|[^"\\])*"`},
	{Name: "Number", Pattern: `[-+]?(?:\d+\.\d*|\.\d+|\d+)(?:[eE][-+]?\d+)?`},
	{Name: "Bool", Pattern: `\b(?:True|False|true|false)\b`},
	{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_]*`},
	{Name: "Punct", Pattern: `[(),=]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

type callNode struct {
	Name string     `parser:"@Ident '('"`
	Args []*argNode `parser:"( @@ ( ',' @@ )* )? ')'"`
}

type argNode struct {
	Key   string       `parser:"@Ident '='"`
	Value *literalNode `parser:"@@"`
}

type literalNode struct {
	String *string `parser:"  @String"`
	Number *string `parser:"| @Number"`
	Bool   *string `parser:"| @Bool"`
}

var callParser = participle.MustBuild[callNode](
	participle.Lexer(callLexer),
	participle.Elide("Whitespace"),
)

// ParseCall parses a single call of the form name(key=value, ...)
func ParseCall(text string) (*Call, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: empty call", ErrInvalidCall)
	}

	node, err := callParser.ParseString("", text)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCall, err)
	}

	call := &Call{Name: node.Name, Args: make([]Arg, 0, len(node.Args))}
	for _, a := range node.Args {
		v, err := a.Value.value()
		if err != nil {
			return nil, fmt.Errorf("%w: argument %s: %v", ErrInvalidCall, a.Key, err)
		}
		call.Args = append(call.Args, Arg{Key: a.Key, Value: v})
	}
	return call, nil
}

func (l *literalNode) value() (any, error) {
	switch {
	case l.String != nil:
		return unquote(*l.String)
	case l.Number != nil:
		return parseNumber(*l.Number)
	case l.Bool != nil:
		return strings.EqualFold(*l.Bool, "true"), nil
	}
	return nil, fmt.Errorf("missing value")
}

func parseNumber(s string) (any, error) {
	if strings.ContainsAny(s, ".eE") {
		return strconv.ParseFloat(s, 64)
	}
	return strconv.ParseInt(s, 10, 64)
}

// unquote strips the surrounding quotes and resolves backslash escapes
func unquote(s string) (string, error) {
	if len(s) < 2 || s[0] != s[len(s)-1] || (s[0] != '\'' && s[0] != '"') {
		return "", fmt.Errorf("malformed string literal %s", s)
	}
	body := s[1 : len(s)-1]
	if !strings.Contains(body, `\`) {
		return body, nil
	}

	var sb strings.Builder
	for i := 0; i < len(body); i++ {
		c := body[i]
		if c != '\\' || i == len(body)-1 {
			sb.WriteByte(c)
			continue
		}
		i++
		switch body[i] {
		case 'n':
			sb.WriteByte('\n')
		case 't':
			sb.WriteByte('\t')
		case 'r':
			sb.WriteByte('\r')
		default:
			sb.WriteByte(body[i])
		}
	}
	return sb.String(), nil
}
