package script

// Node is any syntax tree node.
type Node interface {
	Position() Pos
}

// Stmt is a statement node.
type Stmt interface {
	Node
	stmt()
}

// Expr is an expression node.
type Expr interface {
	Node
	expr()
}

// Param is a function parameter with an optional type annotation.
type Param struct {
	Name string
	Type string
	Pos  Pos
}

// FuncDef is a top-level function definition.
type FuncDef struct {
	Name    string
	Params  []Param
	Returns string
	Body    []Stmt
	Pos     Pos
}

func (f *FuncDef) Position() Pos { return f.Pos }
func (*FuncDef) stmt()           {}

// ReturnStmt returns Value, or None when Value is nil.
type ReturnStmt struct {
	Value Expr
	Pos   Pos
}

// AssignStmt binds Value to one or more names; several targets unpack a list.
type AssignStmt struct {
	Targets []*Name
	Type    string
	Value   Expr
	Pos     Pos
}

// AugAssignStmt is Target op= Value.
type AugAssignStmt struct {
	Target *Name
	Op     string
	Value  Expr
	Pos    Pos
}

// IfStmt is an if/elif/else chain; elif branches nest in Else.
type IfStmt struct {
	Cond Expr
	Then []Stmt
	Else []Stmt
	Pos  Pos
}

// ExprStmt evaluates an expression for its effects.
type ExprStmt struct {
	X   Expr
	Pos Pos
}

// PassStmt does nothing.
type PassStmt struct {
	Pos Pos
}

func (s *ReturnStmt) Position() Pos    { return s.Pos }
func (s *AssignStmt) Position() Pos    { return s.Pos }
func (s *AugAssignStmt) Position() Pos { return s.Pos }
func (s *IfStmt) Position() Pos        { return s.Pos }
func (s *ExprStmt) Position() Pos      { return s.Pos }
func (s *PassStmt) Position() Pos      { return s.Pos }

func (*ReturnStmt) stmt()    {}
func (*AssignStmt) stmt()    {}
func (*AugAssignStmt) stmt() {}
func (*IfStmt) stmt()        {}
func (*ExprStmt) stmt()      {}
func (*PassStmt) stmt()      {}

// Name is an identifier reference.
type Name struct {
	ID  string
	Pos Pos
}

// NumberLit is a numeric literal. IsInt is set for literals without a
// fraction or exponent.
type NumberLit struct {
	Value float64
	IsInt bool
	Pos   Pos
}

// StringLit is a quoted string literal.
type StringLit struct {
	Value string
	Pos   Pos
}

// ConstLit is True, False or None.
type ConstLit struct {
	Value string
	Pos   Pos
}

// ListLit is a list or tuple display.
type ListLit struct {
	Elems []Expr
	Pos   Pos
}

// UnaryExpr is -X, +X or not X.
type UnaryExpr struct {
	Op  string
	X   Expr
	Pos Pos
}

// BinaryExpr covers arithmetic, comparison and boolean operators.
type BinaryExpr struct {
	Op  string
	X   Expr
	Y   Expr
	Pos Pos
}

// Attribute is X.Name outside of a call.
type Attribute struct {
	X    Expr
	Name string
	Pos  Pos
}

// Index is X[Index].
type Index struct {
	X     Expr
	Index Expr
	Pos   Pos
}

// Keyword is a name=value call argument.
type Keyword struct {
	Name  string
	Value Expr
	Pos   Pos
}

// Call is Func(Args..., Keywords...).
type Call struct {
	Func     Expr
	Args     []Expr
	Keywords []Keyword
	Pos      Pos
}

func (e *Name) Position() Pos       { return e.Pos }
func (e *NumberLit) Position() Pos  { return e.Pos }
func (e *StringLit) Position() Pos  { return e.Pos }
func (e *ConstLit) Position() Pos   { return e.Pos }
func (e *ListLit) Position() Pos    { return e.Pos }
func (e *UnaryExpr) Position() Pos  { return e.Pos }
func (e *BinaryExpr) Position() Pos { return e.Pos }
func (e *Attribute) Position() Pos  { return e.Pos }
func (e *Index) Position() Pos      { return e.Pos }
func (e *Call) Position() Pos       { return e.Pos }

func (*Name) expr()       {}
func (*NumberLit) expr()  {}
func (*StringLit) expr()  {}
func (*ConstLit) expr()   {}
func (*ListLit) expr()    {}
func (*UnaryExpr) expr()  {}
func (*BinaryExpr) expr() {}
func (*Attribute) expr()  {}
func (*Index) expr()      {}
func (*Call) expr()       {}

// dottedName flattens a chain of attributes over a name, e.g.
// torch.nn.functional.relu, reporting false for anything else.
func dottedName(e Expr) (string, bool) {
	switch e := e.(type) {
	case *Name:
		return e.ID, true
	case *Attribute:
		prefix, ok := dottedName(e.X)
		if !ok {
			return "", false
		}
		return prefix + "." + e.Name, true
	default:
		return "", false
	}
}
