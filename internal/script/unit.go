// Package script compiles and runs a small TorchScript-style dialect.
//
// A source module is a sequence of top-level def statements with Python
// indentation rules (tabs advance to the next multiple of eight):
//
//	def relu_script(a, b):
//	    return torch.relu(a + b)
//
// Bodies may assign locals, branch with if/elif/else, call other functions
// of the unit, and call tensor builtins as torch.<op>, F.<op>,
// torch.nn.functional.<op> or tensor methods. Operations run on the
// autodiff engine, so results of an invocation can be backpropagated.
package script

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/born-ml/torchbridge/internal/envconfig"
	"github.com/born-ml/torchbridge/internal/logutil"
	"github.com/born-ml/torchbridge/internal/tensor"
)

// Unit is a compiled module: a set of named functions bound to an engine.
// A Unit is immutable after Compile and safe for concurrent invocation.
type Unit struct {
	engine   Engine
	funcs    map[string]*FuncDef
	order    []*FuncDef
	maxDepth int
}

// Option configures Compile.
type Option func(*Unit)

// WithMaxCallDepth bounds nested script calls. Values below 1 are ignored.
func WithMaxCallDepth(n int) Option {
	return func(u *Unit) {
		if n > 0 {
			u.maxDepth = n
		}
	}
}

// Compile parses and checks src. Errors are *Error values carrying the
// offending source position.
func Compile(src string, engine Engine, opts ...Option) (*Unit, error) {
	stmts, err := parse(src)
	if err != nil {
		return nil, err
	}
	funcs, order, err := check(stmts)
	if err != nil {
		return nil, err
	}

	u := &Unit{
		engine:   engine,
		funcs:    funcs,
		order:    order,
		maxDepth: envconfig.MaxCallDepth,
	}
	for _, opt := range opts {
		opt(u)
	}
	slog.Debug("compiled script", "functions", len(order))
	return u, nil
}

// Signature describes a compiled function.
type Signature struct {
	Name    string
	Params  []Param
	Returns string
}

func (s Signature) String() string {
	out := s.Name + "("
	for i, p := range s.Params {
		if i > 0 {
			out += ", "
		}
		out += p.Name
		if p.Type != "" {
			out += ": " + p.Type
		}
	}
	out += ")"
	if s.Returns != "" {
		out += " -> " + s.Returns
	}
	return out
}

// Functions lists the unit's functions sorted by name.
func (u *Unit) Functions() []Signature {
	sigs := make([]Signature, len(u.order))
	for i, fd := range u.order {
		sigs[i] = Signature{Name: fd.Name, Params: fd.Params, Returns: fd.Returns}
	}
	slices.SortFunc(sigs, func(a, b Signature) int { return strings.Compare(a.Name, b.Name) })
	return sigs
}

// Call runs the named function with positional arguments.
func (u *Unit) Call(name string, args ...Value) (result Value, err error) {
	fd, ok := u.funcs[name]
	if !ok {
		return None, fmt.Errorf("%w: %s", ErrFunctionNotFound, name)
	}
	if len(args) != len(fd.Params) {
		return None, &RuntimeError{
			Func: name,
			Pos:  fd.Pos,
			Msg:  fmt.Sprintf("%s() takes %d positional arguments but %d were given", name, len(fd.Params), len(args)),
		}
	}

	ip := &interp{unit: u, engine: u.engine, fn: name, pos: fd.Pos}
	defer func() {
		if r := recover(); r != nil {
			result, err = None, ip.recovered(r)
		}
	}()

	logutil.Trace("invoking script function", "name", name, "args", len(args))
	return ip.callFunction(fd, args), nil
}

// Invoke runs the named function on tensor arguments and returns its tensor
// result. A non-tensor result yields ErrNotTensor.
func (u *Unit) Invoke(name string, args ...*tensor.Tensor) (*tensor.Tensor, error) {
	vals := make([]Value, len(args))
	for i, a := range args {
		vals[i] = TensorVal(a)
	}
	v, err := u.Call(name, vals...)
	if err != nil {
		return nil, err
	}
	if v.Tag != VTTensor {
		return nil, fmt.Errorf("%w: %s returned %s", ErrNotTensor, name, v.Tag)
	}
	return v.tensor(), nil
}

// IsCompileError reports whether err is a compile-time diagnostic.
func IsCompileError(err error) bool {
	var e *Error
	return errors.As(err, &e)
}
