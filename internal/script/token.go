package script

import "fmt"

// Pos is a 1-based source position.
type Pos struct {
	Line int
	Col  int
}

func (p Pos) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Col)
}

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokNewline
	tokIndent
	tokDedent
	tokName
	tokNumber
	tokString
	tokOp
	tokKeyword
)

func (k tokenKind) String() string {
	switch k {
	case tokEOF:
		return "end of input"
	case tokNewline:
		return "newline"
	case tokIndent:
		return "indent"
	case tokDedent:
		return "dedent"
	case tokName:
		return "name"
	case tokNumber:
		return "number"
	case tokString:
		return "string"
	case tokOp:
		return "operator"
	case tokKeyword:
		return "keyword"
	default:
		return "unknown"
	}
}

type token struct {
	kind tokenKind
	text string
	pos  Pos
}

func (t token) String() string {
	switch t.kind {
	case tokName, tokNumber, tokOp, tokKeyword:
		return fmt.Sprintf("%q", t.text)
	case tokString:
		return "string literal"
	default:
		return t.kind.String()
	}
}

func (t token) is(kind tokenKind, text string) bool {
	return t.kind == kind && t.text == text
}

var keywords = map[string]bool{
	"def":    true,
	"return": true,
	"if":     true,
	"elif":   true,
	"else":   true,
	"pass":   true,
	"and":    true,
	"or":     true,
	"not":    true,
	"True":   true,
	"False":  true,
	"None":   true,

	// Reserved so that unsupported statements get a clear message.
	"for":      true,
	"while":    true,
	"class":    true,
	"import":   true,
	"from":     true,
	"lambda":   true,
	"with":     true,
	"try":      true,
	"raise":    true,
	"global":   true,
	"break":    true,
	"continue": true,
	"in":       true,
	"is":       true,
}

// operators are matched longest first.
var operators = []string{
	"**", "==", "!=", "<=", ">=", "->", "+=", "-=", "*=", "/=",
	"+", "-", "*", "/", "@", "<", ">", "=",
	"(", ")", "[", "]", ",", ":", ".",
}
