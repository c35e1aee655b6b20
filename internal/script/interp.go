package script

import (
	"fmt"
	"math"
	"strings"

	"github.com/born-ml/torchbridge/internal/tensor"
)

// interp evaluates one top-level call. It is not shared between
// goroutines; a Unit creates one per call.
type interp struct {
	unit   *Unit
	engine Engine
	depth  int
	fn     string // innermost function, for error reports
	pos    Pos    // last evaluated node
}

// frame holds the locals of one function activation.
type frame map[string]Value

func (ip *interp) callFunction(fd *FuncDef, args []Value) Value {
	if ip.depth >= ip.unit.maxDepth {
		fail("maximum recursion depth exceeded")
	}
	if len(args) != len(fd.Params) {
		fail("%s() takes %d positional arguments but %d were given", fd.Name, len(fd.Params), len(args))
	}

	// State is restored on normal return only, so a failure keeps
	// pointing at the innermost function.
	caller := ip.fn
	ip.depth++
	ip.fn = fd.Name

	locals := make(frame, len(fd.Params))
	for i, p := range fd.Params {
		locals[p.Name] = args[i]
	}
	v, _ := ip.execBlock(fd.Body, locals)

	ip.depth--
	ip.fn = caller
	return v
}

func (ip *interp) execBlock(body []Stmt, locals frame) (Value, bool) {
	for _, s := range body {
		if v, returned := ip.exec(s, locals); returned {
			return v, true
		}
	}
	return None, false
}

func (ip *interp) exec(s Stmt, locals frame) (Value, bool) {
	ip.pos = s.Position()
	switch s := s.(type) {
	case *ReturnStmt:
		if s.Value == nil {
			return None, true
		}
		return ip.eval(s.Value, locals), true
	case *AssignStmt:
		v := ip.eval(s.Value, locals)
		ip.assign(s.Targets, v, locals)
	case *AugAssignStmt:
		cur := ip.eval(s.Target, locals)
		locals[s.Target.ID] = ip.arith(s.Op, cur, ip.eval(s.Value, locals))
	case *IfStmt:
		if ip.eval(s.Cond, locals).truthy() {
			return ip.execBlock(s.Then, locals)
		}
		return ip.execBlock(s.Else, locals)
	case *ExprStmt:
		ip.eval(s.X, locals)
	case *PassStmt:
	default:
		fail("unsupported statement %T", s)
	}
	return None, false
}

func (ip *interp) assign(targets []*Name, v Value, locals frame) {
	if len(targets) == 1 {
		locals[targets[0].ID] = v
		return
	}
	if v.Tag != VTList {
		fail("cannot unpack non-iterable %s object", v.Tag)
	}
	items := v.list()
	if len(items) != len(targets) {
		fail("expected %d values to unpack, got %d", len(targets), len(items))
	}
	for i, t := range targets {
		locals[t.ID] = items[i]
	}
}

func (ip *interp) eval(e Expr, locals frame) Value {
	switch e := e.(type) {
	case *Name:
		v, ok := locals[e.ID]
		if !ok {
			ip.pos = e.Pos
			fail("local variable '%s' referenced before assignment", e.ID)
		}
		return v
	case *NumberLit:
		if e.IsInt {
			return Int(int64(e.Value))
		}
		return Float(e.Value)
	case *StringLit:
		return Str(e.Value)
	case *ConstLit:
		switch e.Value {
		case "True":
			return Bool(true)
		case "False":
			return Bool(false)
		}
		return None
	case *ListLit:
		items := make([]Value, len(e.Elems))
		for i, x := range e.Elems {
			items[i] = ip.eval(x, locals)
		}
		return List(items)
	case *UnaryExpr:
		x := ip.eval(e.X, locals)
		ip.pos = e.Pos
		return ip.unary(e.Op, x)
	case *BinaryExpr:
		return ip.binary(e, locals)
	case *Attribute:
		x := ip.eval(e.X, locals)
		ip.pos = e.Pos
		return ip.attribute(x, e.Name)
	case *Index:
		x := ip.eval(e.X, locals)
		idx := ip.eval(e.Index, locals)
		ip.pos = e.Pos
		return ip.index(x, idx)
	case *Call:
		return ip.call(e, locals)
	default:
		fail("unsupported expression %T", e)
		return None
	}
}

func (ip *interp) binary(e *BinaryExpr, locals frame) Value {
	switch e.Op {
	case "and":
		x := ip.eval(e.X, locals)
		if !x.truthy() {
			return x
		}
		return ip.eval(e.Y, locals)
	case "or":
		x := ip.eval(e.X, locals)
		if x.truthy() {
			return x
		}
		return ip.eval(e.Y, locals)
	}

	x := ip.eval(e.X, locals)
	y := ip.eval(e.Y, locals)
	ip.pos = e.Pos
	if comparisonOps[e.Op] {
		return ip.compare(e.Op, x, y)
	}
	return ip.arith(e.Op, x, y)
}

func (ip *interp) call(c *Call, locals frame) Value {
	args := make([]Value, len(c.Args))
	for i, a := range c.Args {
		args[i] = ip.eval(a, locals)
	}
	kwNames := make([]string, len(c.Keywords))
	kwValues := make([]Value, len(c.Keywords))
	for i, kw := range c.Keywords {
		kwNames[i] = kw.Name
		kwValues[i] = ip.eval(kw.Value, locals)
	}

	switch fn := c.Func.(type) {
	case *Name:
		ip.pos = c.Pos
		if fd, ok := ip.unit.funcs[fn.ID]; ok {
			sig := fixedSignature(paramNames(fd)...)
			return ip.callFunction(fd, sig.assemble(fd.Name, args, kwNames, kwValues))
		}
		if b, ok := builtins.plain[fn.ID]; ok {
			return b.fn(ip, b.sig.assemble(b.name, args, kwNames, kwValues))
		}
		fail("name '%s' is not defined", fn.ID)
	case *Attribute:
		if dotted, ok := dottedName(fn); ok && isModuleRef(dotted) {
			ip.pos = c.Pos
			b, found := builtins.lookupQualified(dotted)
			if !found {
				fail("unknown builtin '%s'", dotted)
			}
			return b.fn(ip, b.sig.assemble(b.name, args, kwNames, kwValues))
		}
		recv := ip.eval(fn.X, locals)
		ip.pos = c.Pos
		b, ok := builtins.methods[fn.Name]
		if !ok || recv.Tag != VTTensor {
			fail("'%s' object has no attribute '%s'", recv.Tag, fn.Name)
		}
		return b.fn(ip, b.sig.assemble(b.name, append([]Value{recv}, args...), kwNames, kwValues))
	}
	fail("expression is not callable")
	return None
}

func paramNames(fd *FuncDef) []string {
	names := make([]string, len(fd.Params))
	for i, p := range fd.Params {
		names[i] = p.Name
	}
	return names
}

func (ip *interp) attribute(x Value, name string) Value {
	if x.Tag == VTTensor {
		switch name {
		case "shape":
			return shapeValue(x.tensor().Shape())
		case "T":
			return TensorVal(ip.transpose(x.tensor()))
		case "requires_grad":
			return Bool(x.tensor().RequiresGrad())
		}
	}
	fail("'%s' object has no attribute '%s'", x.Tag, name)
	return None
}

func (ip *interp) index(x, idx Value) Value {
	switch x.Tag {
	case VTList:
		items := x.list()
		i := idx.int()
		if i < 0 {
			i += int64(len(items))
		}
		if i < 0 || i >= int64(len(items)) {
			fail("list index out of range")
		}
		return items[i]
	case VTTensor:
		fail("tensor indexing is not supported")
	}
	fail("'%s' object is not subscriptable", x.Tag)
	return None
}

func (ip *interp) unary(op string, x Value) Value {
	switch op {
	case "not":
		return Bool(!x.truthy())
	case "+":
		if x.Tag == VTTensor || x.isNumber() {
			return x
		}
	case "-":
		switch x.Tag {
		case VTTensor:
			return TensorVal(ip.engine.Neg(x.tensor()))
		case VTInt, VTBool:
			return Int(-x.int())
		case VTFloat:
			return Float(-x.num())
		}
	}
	fail("bad operand type for unary %s: '%s'", op, x.Tag)
	return None
}

// arith applies an arithmetic operator. Tensors mix with Python numbers
// through the scalar kernels.
func (ip *interp) arith(op string, x, y Value) Value {
	switch {
	case x.Tag == VTTensor && y.Tag == VTTensor:
		return TensorVal(ip.tensorArith(op, x.tensor(), y.tensor()))
	case x.Tag == VTTensor && y.isNumber():
		return TensorVal(ip.tensorScalar(op, x.tensor(), y))
	case x.isNumber() && y.Tag == VTTensor:
		return TensorVal(ip.scalarTensor(op, x, y.tensor()))
	case x.isNumber() && y.isNumber():
		return numberArith(op, x, y)
	case op == "+" && x.Tag == VTList && y.Tag == VTList:
		return List(append(append([]Value(nil), x.list()...), y.list()...))
	case op == "+" && x.Tag == VTStr && y.Tag == VTStr:
		return Str(x.Data.(string) + y.Data.(string))
	}
	fail("unsupported operand type(s) for %s: '%s' and '%s'", op, x.Tag, y.Tag)
	return None
}

func (ip *interp) tensorArith(op string, a, b *tensor.Tensor) *tensor.Tensor {
	switch op {
	case "+":
		return ip.engine.Add(a, b)
	case "-":
		return ip.engine.Sub(a, b)
	case "*":
		return ip.engine.Mul(a, b)
	case "/":
		return ip.engine.Div(a, b)
	case "@":
		return ip.engine.MatMul(a, b)
	}
	fail("unsupported operand type(s) for %s: 'Tensor' and 'Tensor'", op)
	return nil
}

func (ip *interp) tensorScalar(op string, a *tensor.Tensor, y Value) *tensor.Tensor {
	s := float32(y.num())
	switch op {
	case "+":
		return ip.engine.AddScalar(a, s)
	case "-":
		return ip.engine.AddScalar(a, -s)
	case "*":
		return ip.engine.MulScalar(a, s)
	case "/":
		return ip.engine.MulScalar(a, 1/s)
	case "**":
		if y.Tag != VTInt || y.int() < 0 {
			fail("only non-negative integer powers of tensors are supported")
		}
		n := y.int()
		if n == 0 {
			return ip.engine.OnesLike(a)
		}
		// Square-and-multiply keeps the graph logarithmic in n.
		var out *tensor.Tensor
		for base := a; ; base = ip.engine.Mul(base, base) {
			if n&1 == 1 {
				if out == nil {
					out = base
				} else {
					out = ip.engine.Mul(out, base)
				}
			}
			if n >>= 1; n == 0 {
				return out
			}
		}
	}
	fail("unsupported operand type(s) for %s: 'Tensor' and '%s'", op, y.Tag)
	return nil
}

func (ip *interp) scalarTensor(op string, x Value, b *tensor.Tensor) *tensor.Tensor {
	s := float32(x.num())
	switch op {
	case "+":
		return ip.engine.AddScalar(b, s)
	case "-":
		return ip.engine.AddScalar(ip.engine.Neg(b), s)
	case "*":
		return ip.engine.MulScalar(b, s)
	case "/":
		return ip.engine.Div(tensor.Scalar(s, ip.engine.Backend()), b)
	}
	fail("unsupported operand type(s) for %s: '%s' and 'Tensor'", op, x.Tag)
	return nil
}

func numberArith(op string, x, y Value) Value {
	ints := x.Tag != VTFloat && y.Tag != VTFloat
	if ints {
		a, b := x.int(), y.int()
		switch op {
		case "+":
			return Int(a + b)
		case "-":
			return Int(a - b)
		case "*":
			return Int(a * b)
		case "**":
			if b >= 0 {
				return Int(ipow(a, b))
			}
		}
	}

	a, b := x.num(), y.num()
	switch op {
	case "+":
		return Float(a + b)
	case "-":
		return Float(a - b)
	case "*":
		return Float(a * b)
	case "/":
		if b == 0 {
			fail("division by zero")
		}
		return Float(a / b)
	case "**":
		return Float(math.Pow(a, b))
	}
	fail("unsupported operand type(s) for %s: '%s' and '%s'", op, x.Tag, y.Tag)
	return None
}

// ipow computes a**n for n >= 0 with wrapping int64 arithmetic.
func ipow(a, n int64) int64 {
	r := int64(1)
	for ; n > 0; n >>= 1 {
		if n&1 == 1 {
			r *= a
		}
		a *= a
	}
	return r
}

// compare evaluates a comparison. Tensor equality is element-wise and
// yields a Bool tensor; other tensor comparisons are rejected.
func (ip *interp) compare(op string, x, y Value) Value {
	if x.Tag == VTTensor || y.Tag == VTTensor {
		if op != "==" {
			fail("operator %s is not supported for tensors", op)
		}
		return TensorVal(ip.engine.Eq(ip.asTensor(x), ip.asTensor(y)))
	}

	if x.isNumber() && y.isNumber() {
		a, b := x.num(), y.num()
		switch op {
		case "==":
			return Bool(a == b)
		case "!=":
			return Bool(a != b)
		case "<":
			return Bool(a < b)
		case "<=":
			return Bool(a <= b)
		case ">":
			return Bool(a > b)
		case ">=":
			return Bool(a >= b)
		}
	}

	if x.Tag == VTStr && y.Tag == VTStr {
		c := strings.Compare(x.Data.(string), y.Data.(string))
		switch op {
		case "==":
			return Bool(c == 0)
		case "!=":
			return Bool(c != 0)
		case "<":
			return Bool(c < 0)
		case "<=":
			return Bool(c <= 0)
		case ">":
			return Bool(c > 0)
		case ">=":
			return Bool(c >= 0)
		}
	}

	switch op {
	case "==":
		return Bool(x.Tag == y.Tag && x.String() == y.String())
	case "!=":
		return Bool(x.Tag != y.Tag || x.String() != y.String())
	}
	fail("'%s' not supported between instances of '%s' and '%s'", op, x.Tag, y.Tag)
	return None
}

// asTensor promotes a number to a 0-d tensor.
func (ip *interp) asTensor(v Value) *tensor.Tensor {
	if v.Tag == VTTensor {
		return v.tensor()
	}
	if v.isNumber() {
		return tensor.Scalar(float32(v.num()), ip.engine.Backend())
	}
	fail("expected Tensor or number, got %s", v.Tag)
	return nil
}

func (ip *interp) tensorArg(fn, param string, v Value) *tensor.Tensor {
	if v.Tag != VTTensor {
		fail("%s(): argument '%s' must be Tensor, not %s", fn, param, v.Tag)
	}
	return v.tensor()
}

// shapeArg converts a list of ints into a Shape. -1 is kept for inference.
func (ip *interp) shapeArg(fn string, v Value) tensor.Shape {
	if v.Tag != VTList {
		fail("%s(): size must be a list of ints, not %s", fn, v.Tag)
	}
	items := v.list()
	shape := make(tensor.Shape, len(items))
	for i, d := range items {
		if d.Tag != VTInt {
			fail("%s(): size must contain only ints, got %s", fn, d.Tag)
		}
		shape[i] = int(d.int())
	}
	return shape
}

func (ip *interp) transpose(x *tensor.Tensor) *tensor.Tensor {
	if x.Rank() < 2 {
		return x
	}
	return ip.engine.Transpose(x)
}

// recovered converts a panic raised while evaluating into a RuntimeError.
func (ip *interp) recovered(r any) *RuntimeError {
	var msg string
	switch r := r.(type) {
	case rtErr:
		msg = r.msg
	case error:
		msg = r.Error()
	case string:
		msg = r
	default:
		msg = fmt.Sprint(r)
	}
	return &RuntimeError{Func: ip.fn, Pos: ip.pos, Msg: msg}
}
