package script

import (
	"strconv"
	"strings"
)

// parser is a recursive-descent parser over the token stream. Syntax
// errors are raised as *Error panics and recovered in parse.
type parser struct {
	toks []token
	p    int
}

func parse(src string) (stmts []Stmt, err error) {
	toks, err := lex(src)
	if err != nil {
		return nil, err
	}

	ps := &parser{toks: toks}
	defer func() {
		if r := recover(); r != nil {
			e, ok := r.(*Error)
			if !ok {
				panic(r)
			}
			stmts, err = nil, e
		}
	}()
	return ps.file(), nil
}

func (ps *parser) peek() token { return ps.toks[ps.p] }

func (ps *parser) next() token {
	t := ps.toks[ps.p]
	if t.kind != tokEOF {
		ps.p++
	}
	return t
}

func (ps *parser) at(kind tokenKind, text string) bool {
	return ps.peek().is(kind, text)
}

func (ps *parser) accept(kind tokenKind, text string) bool {
	if ps.at(kind, text) {
		ps.next()
		return true
	}
	return false
}

func (ps *parser) expectOp(op string) token {
	t := ps.peek()
	if !t.is(tokOp, op) {
		ps.unexpected(t, "expected %q", op)
	}
	return ps.next()
}

func (ps *parser) expectKind(kind tokenKind, what string) token {
	t := ps.peek()
	if t.kind != kind {
		ps.unexpected(t, "expected %s", what)
	}
	return ps.next()
}

func (ps *parser) unexpected(t token, format string, args ...any) {
	e := errorf(t.pos, format, args...)
	e.Msg += ", got " + t.String()
	panic(e)
}

func (ps *parser) file() []Stmt {
	var stmts []Stmt
	for {
		switch t := ps.peek(); {
		case t.kind == tokEOF:
			return stmts
		case t.kind == tokNewline:
			ps.next()
		case t.kind == tokIndent:
			panic(errorf(t.pos, "unexpected indent"))
		default:
			stmts = append(stmts, ps.stmt())
		}
	}
}

func (ps *parser) stmt() Stmt {
	t := ps.peek()
	if t.kind == tokKeyword {
		switch t.text {
		case "def":
			return ps.funcDef()
		case "if":
			return ps.ifStmt()
		case "for", "while", "class", "import", "from", "with", "try", "raise", "global", "break", "continue":
			panic(errorf(t.pos, "'%s' statements are not supported", t.text))
		}
	}
	s := ps.simpleStmt()
	ps.endOfLine()
	return s
}

func (ps *parser) endOfLine() {
	t := ps.peek()
	if t.kind != tokNewline && t.kind != tokEOF {
		ps.unexpected(t, "invalid syntax: expected end of line")
	}
	ps.next()
}

func (ps *parser) funcDef() Stmt {
	pos := ps.next().pos
	name := ps.expectKind(tokName, "function name")
	fn := &FuncDef{Name: name.text, Pos: pos}

	ps.expectOp("(")
	for !ps.at(tokOp, ")") {
		p := ps.expectKind(tokName, "parameter name")
		param := Param{Name: p.text, Pos: p.pos}
		if ps.accept(tokOp, ":") {
			param.Type = ps.typeExpr()
		}
		if ps.at(tokOp, "=") {
			panic(errorf(ps.peek().pos, "default parameter values are not supported"))
		}
		fn.Params = append(fn.Params, param)
		if !ps.accept(tokOp, ",") {
			break
		}
	}
	ps.expectOp(")")
	if ps.accept(tokOp, "->") {
		fn.Returns = ps.typeExpr()
	}
	ps.expectOp(":")
	fn.Body = ps.suite()
	return fn
}

// typeExpr parses an annotation such as Tensor, float, List[Tensor] or
// torch.Tensor and returns its source text.
func (ps *parser) typeExpr() string {
	if ps.accept(tokKeyword, "None") {
		return "None"
	}
	var sb strings.Builder
	sb.WriteString(ps.expectKind(tokName, "type name").text)
	for ps.accept(tokOp, ".") {
		sb.WriteString(".")
		sb.WriteString(ps.expectKind(tokName, "type name").text)
	}
	if ps.accept(tokOp, "[") {
		sb.WriteString("[")
		for i := 0; ; i++ {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(ps.typeExpr())
			if !ps.accept(tokOp, ",") {
				break
			}
		}
		ps.expectOp("]")
		sb.WriteString("]")
	}
	return sb.String()
}

func (ps *parser) suite() []Stmt {
	if !ps.at(tokNewline, "") {
		s := ps.simpleStmt()
		ps.endOfLine()
		return []Stmt{s}
	}
	ps.next()
	if t := ps.peek(); t.kind != tokIndent {
		panic(errorf(t.pos, "expected an indented block"))
	}
	ps.next()

	var body []Stmt
	for !ps.at(tokDedent, "") && !ps.at(tokEOF, "") {
		body = append(body, ps.stmt())
	}
	ps.next()
	return body
}

func (ps *parser) ifStmt() Stmt {
	pos := ps.next().pos
	s := &IfStmt{Cond: ps.expr(), Pos: pos}
	ps.expectOp(":")
	s.Then = ps.suite()

	switch t := ps.peek(); {
	case t.is(tokKeyword, "elif"):
		s.Else = []Stmt{ps.ifStmt()}
	case t.is(tokKeyword, "else"):
		ps.next()
		ps.expectOp(":")
		s.Else = ps.suite()
	}
	return s
}

func (ps *parser) simpleStmt() Stmt {
	t := ps.peek()
	switch {
	case t.is(tokKeyword, "return"):
		ps.next()
		s := &ReturnStmt{Pos: t.pos}
		if !ps.at(tokNewline, "") && !ps.at(tokEOF, "") {
			s.Value = ps.exprList()
		}
		return s
	case t.is(tokKeyword, "pass"):
		ps.next()
		return &PassStmt{Pos: t.pos}
	}

	x := ps.exprList()
	switch op := ps.peek(); {
	case op.is(tokOp, "="):
		ps.next()
		return &AssignStmt{Targets: assignTargets(x), Value: ps.exprList(), Pos: t.pos}
	case op.is(tokOp, ":"):
		name, ok := x.(*Name)
		if !ok {
			panic(errorf(op.pos, "only single names can be annotated"))
		}
		ps.next()
		typ := ps.typeExpr()
		ps.expectOp("=")
		return &AssignStmt{Targets: []*Name{name}, Type: typ, Value: ps.exprList(), Pos: t.pos}
	case op.is(tokOp, "+="), op.is(tokOp, "-="), op.is(tokOp, "*="), op.is(tokOp, "/="):
		name, ok := x.(*Name)
		if !ok {
			panic(errorf(op.pos, "illegal expression for augmented assignment"))
		}
		ps.next()
		return &AugAssignStmt{Target: name, Op: strings.TrimSuffix(op.text, "="), Value: ps.expr(), Pos: t.pos}
	}
	return &ExprStmt{X: x, Pos: t.pos}
}

func assignTargets(x Expr) []*Name {
	switch x := x.(type) {
	case *Name:
		return []*Name{x}
	case *ListLit:
		names := make([]*Name, len(x.Elems))
		for i, e := range x.Elems {
			n, ok := e.(*Name)
			if !ok {
				panic(errorf(e.Position(), "cannot assign to expression"))
			}
			names[i] = n
		}
		return names
	default:
		panic(errorf(x.Position(), "cannot assign to expression"))
	}
}

// exprList parses a comma-separated expression list; more than one
// element (or a trailing comma) yields a tuple.
func (ps *parser) exprList() Expr {
	first := ps.expr()
	if !ps.at(tokOp, ",") {
		return first
	}
	elems := []Expr{first}
	for ps.accept(tokOp, ",") {
		if t := ps.peek(); t.kind == tokNewline || t.kind == tokEOF || t.is(tokOp, "=") || t.is(tokOp, ")") {
			break
		}
		elems = append(elems, ps.expr())
	}
	return &ListLit{Elems: elems, Pos: first.Position()}
}

func (ps *parser) expr() Expr {
	return ps.orExpr()
}

func (ps *parser) orExpr() Expr {
	x := ps.andExpr()
	for ps.at(tokKeyword, "or") {
		t := ps.next()
		x = &BinaryExpr{Op: "or", X: x, Y: ps.andExpr(), Pos: t.pos}
	}
	return x
}

func (ps *parser) andExpr() Expr {
	x := ps.notExpr()
	for ps.at(tokKeyword, "and") {
		t := ps.next()
		x = &BinaryExpr{Op: "and", X: x, Y: ps.notExpr(), Pos: t.pos}
	}
	return x
}

func (ps *parser) notExpr() Expr {
	if ps.at(tokKeyword, "not") {
		t := ps.next()
		return &UnaryExpr{Op: "not", X: ps.notExpr(), Pos: t.pos}
	}
	return ps.comparison()
}

var comparisonOps = map[string]bool{"==": true, "!=": true, "<": true, "<=": true, ">": true, ">=": true}

// comparison parses chained comparisons; a < b < c becomes
// (a < b) and (b < c).
func (ps *parser) comparison() Expr {
	x := ps.arith()
	var result Expr
	for t := ps.peek(); t.kind == tokOp && comparisonOps[t.text]; t = ps.peek() {
		ps.next()
		y := ps.arith()
		cmp := &BinaryExpr{Op: t.text, X: x, Y: y, Pos: t.pos}
		if result == nil {
			result = cmp
		} else {
			result = &BinaryExpr{Op: "and", X: result, Y: cmp, Pos: t.pos}
		}
		x = y
	}
	if result == nil {
		return x
	}
	return result
}

func (ps *parser) arith() Expr {
	x := ps.term()
	for ps.at(tokOp, "+") || ps.at(tokOp, "-") {
		t := ps.next()
		x = &BinaryExpr{Op: t.text, X: x, Y: ps.term(), Pos: t.pos}
	}
	return x
}

func (ps *parser) term() Expr {
	x := ps.factor()
	for ps.at(tokOp, "*") || ps.at(tokOp, "/") || ps.at(tokOp, "@") {
		t := ps.next()
		x = &BinaryExpr{Op: t.text, X: x, Y: ps.factor(), Pos: t.pos}
	}
	return x
}

func (ps *parser) factor() Expr {
	if ps.at(tokOp, "-") || ps.at(tokOp, "+") {
		t := ps.next()
		return &UnaryExpr{Op: t.text, X: ps.factor(), Pos: t.pos}
	}
	return ps.power()
}

func (ps *parser) power() Expr {
	x := ps.postfix()
	if ps.at(tokOp, "**") {
		t := ps.next()
		return &BinaryExpr{Op: "**", X: x, Y: ps.factor(), Pos: t.pos}
	}
	return x
}

func (ps *parser) postfix() Expr {
	x := ps.atom()
	for {
		t := ps.peek()
		switch {
		case t.is(tokOp, "("):
			x = ps.call(x)
		case t.is(tokOp, "."):
			ps.next()
			name := ps.expectKind(tokName, "attribute name")
			x = &Attribute{X: x, Name: name.text, Pos: name.pos}
		case t.is(tokOp, "["):
			ps.next()
			idx := ps.expr()
			ps.expectOp("]")
			x = &Index{X: x, Index: idx, Pos: t.pos}
		default:
			return x
		}
	}
}

func (ps *parser) call(fn Expr) Expr {
	c := &Call{Func: fn, Pos: fn.Position()}
	ps.expectOp("(")
	for !ps.at(tokOp, ")") {
		t := ps.peek()
		if t.kind == tokName && ps.toks[ps.p+1].is(tokOp, "=") {
			ps.next()
			ps.next()
			c.Keywords = append(c.Keywords, Keyword{Name: t.text, Value: ps.expr(), Pos: t.pos})
		} else {
			if len(c.Keywords) > 0 {
				panic(errorf(t.pos, "positional argument follows keyword argument"))
			}
			c.Args = append(c.Args, ps.expr())
		}
		if !ps.accept(tokOp, ",") {
			break
		}
	}
	ps.expectOp(")")
	return c
}

func (ps *parser) atom() Expr {
	t := ps.peek()
	switch t.kind {
	case tokName:
		ps.next()
		return &Name{ID: t.text, Pos: t.pos}
	case tokNumber:
		ps.next()
		v, err := strconv.ParseFloat(t.text, 64)
		if err != nil {
			panic(errorf(t.pos, "invalid number literal %q", t.text))
		}
		return &NumberLit{Value: v, IsInt: !strings.ContainsAny(t.text, ".eE"), Pos: t.pos}
	case tokString:
		ps.next()
		return &StringLit{Value: t.text, Pos: t.pos}
	case tokKeyword:
		switch t.text {
		case "True", "False", "None":
			ps.next()
			return &ConstLit{Value: t.text, Pos: t.pos}
		}
	case tokOp:
		switch t.text {
		case "(":
			ps.next()
			if ps.accept(tokOp, ")") {
				return &ListLit{Pos: t.pos}
			}
			x := ps.exprList()
			ps.expectOp(")")
			return x
		case "[":
			ps.next()
			l := &ListLit{Pos: t.pos}
			for !ps.at(tokOp, "]") {
				l.Elems = append(l.Elems, ps.expr())
				if !ps.accept(tokOp, ",") {
					break
				}
			}
			ps.expectOp("]")
			return l
		}
	}
	ps.unexpected(t, "invalid syntax: expected an expression")
	return nil
}
