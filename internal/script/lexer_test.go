package script

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func kinds(toks []token) []tokenKind {
	out := make([]tokenKind, len(toks))
	for i, t := range toks {
		out[i] = t.kind
	}
	return out
}

func TestLex_Indentation(t *testing.T) {
	toks, err := lex("def f(a):\n\tif a:\n\t\treturn a\n\treturn a\n")
	require.NoError(t, err)

	assert.Equal(t, []tokenKind{
		tokKeyword, tokName, tokOp, tokName, tokOp, tokOp, tokNewline,
		tokIndent, tokKeyword, tokName, tokOp, tokNewline,
		tokIndent, tokKeyword, tokName, tokNewline,
		tokDedent, tokKeyword, tokName, tokNewline,
		tokDedent, tokEOF,
	}, kinds(toks))
}

func TestLex_TabsAdvanceToMultipleOfEight(t *testing.T) {
	// Eight spaces and one tab open the same block.
	_, err := lex("def f(a):\n        x = a\n\treturn x\n")
	require.NoError(t, err)

	// Four spaces then a tab is still column eight.
	_, err = lex("def f(a):\n    \tx = a\n\treturn x\n")
	require.NoError(t, err)
}

func TestLex_BlankAndCommentLines(t *testing.T) {
	toks, err := lex("# header\n\ndef f(a):\n\n    # note\n    return a  # trailing\n\t\n")
	require.NoError(t, err)

	var indents, newlines int
	for _, tok := range toks {
		switch tok.kind {
		case tokIndent:
			indents++
		case tokNewline:
			newlines++
		}
	}
	assert.Equal(t, 1, indents)
	assert.Equal(t, 2, newlines)
}

func TestLex_BracketsJoinLines(t *testing.T) {
	toks, err := lex("x = f(a,\n      b)\n")
	require.NoError(t, err)
	assert.Equal(t, []tokenKind{
		tokName, tokOp, tokName, tokOp, tokName, tokOp, tokName, tokOp, tokNewline, tokEOF,
	}, kinds(toks))
}

func TestLex_Numbers(t *testing.T) {
	toks, err := lex("1 2.5 .5 1e-3 3E2")
	require.NoError(t, err)

	var got []string
	for _, tok := range toks {
		if tok.kind == tokNumber {
			got = append(got, tok.text)
		}
	}
	assert.Equal(t, []string{"1", "2.5", ".5", "1e-3", "3E2"}, got)
}

func TestLex_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		msg  string
		line int
	}{
		{"unterminated string", "x = 'abc\n", "unterminated string literal", 1},
		{"bad dedent", "def f(a):\n        x = a\n    return x\n", "unindent does not match", 3},
		{"unexpected character", "x = a $ b\n", "unexpected character", 1},
		{"open bracket", "x = f(a\n", "inside brackets", 2},
		{"bad exponent", "x = 1e\n", "invalid number literal", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := lex(tt.src)
			require.Error(t, err)
			var e *Error
			require.ErrorAs(t, err, &e)
			assert.Contains(t, e.Msg, tt.msg)
			assert.Equal(t, tt.line, e.Pos.Line)
		})
	}
}

func TestParse_Shapes(t *testing.T) {
	stmts, err := parse("def f(a: Tensor, b: List[Tensor]) -> Tensor:\n    x, y = a, b\n    x += 1\n    return x\n")
	require.NoError(t, err)
	require.Len(t, stmts, 1)

	fd, ok := stmts[0].(*FuncDef)
	require.True(t, ok)
	assert.Equal(t, "f", fd.Name)
	assert.Equal(t, []Param{
		{Name: "a", Type: "Tensor", Pos: Pos{1, 7}},
		{Name: "b", Type: "List[Tensor]", Pos: Pos{1, 18}},
	}, fd.Params)
	assert.Equal(t, "Tensor", fd.Returns)
	require.Len(t, fd.Body, 3)

	assign := fd.Body[0].(*AssignStmt)
	assert.Len(t, assign.Targets, 2)
	assert.IsType(t, &ListLit{}, assign.Value)

	aug := fd.Body[1].(*AugAssignStmt)
	assert.Equal(t, "+", aug.Op)
}

func TestParse_Precedence(t *testing.T) {
	stmts, err := parse("def f(a, b):\n    return -a + b * 2 ** 3 == 1\n")
	require.NoError(t, err)

	ret := stmts[0].(*FuncDef).Body[0].(*ReturnStmt)
	cmp := ret.Value.(*BinaryExpr)
	assert.Equal(t, "==", cmp.Op)

	sum := cmp.X.(*BinaryExpr)
	assert.Equal(t, "+", sum.Op)
	assert.IsType(t, &UnaryExpr{}, sum.X)

	prod := sum.Y.(*BinaryExpr)
	assert.Equal(t, "*", prod.Op)
	assert.Equal(t, "**", prod.Y.(*BinaryExpr).Op)
}

func TestParse_ChainedComparison(t *testing.T) {
	stmts, err := parse("def f(a):\n    return 0 < a < 2\n")
	require.NoError(t, err)

	ret := stmts[0].(*FuncDef).Body[0].(*ReturnStmt)
	and := ret.Value.(*BinaryExpr)
	assert.Equal(t, "and", and.Op)
	assert.Equal(t, "<", and.X.(*BinaryExpr).Op)
	assert.Equal(t, "<", and.Y.(*BinaryExpr).Op)
}

func TestParse_CallKeywords(t *testing.T) {
	stmts, err := parse("def f(a, b):\n    return torch.stack([a, b], dim=1)\n")
	require.NoError(t, err)

	call := stmts[0].(*FuncDef).Body[0].(*ReturnStmt).Value.(*Call)
	name, ok := dottedName(call.Func)
	require.True(t, ok)
	assert.Equal(t, "torch.stack", name)
	require.Len(t, call.Args, 1)
	require.Len(t, call.Keywords, 1)
	assert.Equal(t, "dim", call.Keywords[0].Name)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		msg  string
	}{
		{"garbage", "some garbo", "expected end of line"},
		{"missing colon", "def f(a)\n    return a\n", `expected ":"`},
		{"missing body", "def f(a):\n", "expected an indented block"},
		{"unexpected indent", "    def f(a):\n        return a\n", "unexpected indent"},
		{"for loop", "def f(a):\n    for x in a:\n        pass\n", "'for' statements are not supported"},
		{"default value", "def f(a=1):\n    return a\n", "default parameter values"},
		{"keyword order", "def f(a):\n    return g(x=1, a)\n", "positional argument follows keyword argument"},
		{"bad target", "def f(a):\n    a + 1 = 2\n", "cannot assign to expression"},
		{"dangling operator", "def f(a):\n    return a +\n", "expected an expression"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parse(tt.src)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}
