package script

import (
	"math"
	"sort"
	"strings"

	"github.com/born-ml/torchbridge/internal/nn"
	"github.com/born-ml/torchbridge/internal/tensor"
)

// Engine is the differentiable tensor engine scripts run on.
// *autodiff.Engine satisfies it.
type Engine interface {
	nn.Engine

	Backend() tensor.Backend

	Add(a, b *tensor.Tensor) *tensor.Tensor
	Div(a, b *tensor.Tensor) *tensor.Tensor
	Eq(a, b *tensor.Tensor) *tensor.Tensor
	Dot(a, b *tensor.Tensor) *tensor.Tensor
	MatMul(a, b *tensor.Tensor) *tensor.Tensor
	Transpose(x *tensor.Tensor) *tensor.Tensor
	Reshape(x *tensor.Tensor, shape tensor.Shape) *tensor.Tensor
	Stack(xs []*tensor.Tensor, dim int) *tensor.Tensor
	Neg(x *tensor.Tensor) *tensor.Tensor
	Exp(x *tensor.Tensor) *tensor.Tensor
	Log(x *tensor.Tensor) *tensor.Tensor
	ReLU(x *tensor.Tensor) *tensor.Tensor
	Sigmoid(x *tensor.Tensor) *tensor.Tensor
	Tanh(x *tensor.Tensor) *tensor.Tensor
	AddScalar(x *tensor.Tensor, scalar float32) *tensor.Tensor
	Float(x *tensor.Tensor) *tensor.Tensor
	OnesLike(x *tensor.Tensor) *tensor.Tensor
	ZerosLike(x *tensor.Tensor) *tensor.Tensor
}

// builtinFn implements a builtin over bound arguments, one per parameter.
type builtinFn func(ip *interp, args []Value) Value

type builtin struct {
	name      string
	sig       signature
	qualified bool // callable as torch.name or F.name
	method    bool // callable as tensor.name(...)
	fn        builtinFn
}

// registry maps builtin names to their implementations.
type registry struct {
	qualified map[string]*builtin
	methods   map[string]*builtin
	plain     map[string]*builtin
}

// modules are the names through which qualified builtins are reached.
var modules = []string{"torch.nn.functional", "torch", "F"}

var builtins = newRegistry()

func newRegistry() *registry {
	r := &registry{
		qualified: make(map[string]*builtin),
		methods:   make(map[string]*builtin),
		plain:     make(map[string]*builtin),
	}

	r.registerMathOps()
	r.registerActivations()
	r.registerShapeOps()
	r.registerCreationOps()
	r.registerLossOps()
	r.registerPythonBuiltins()

	return r
}

func (r *registry) register(b *builtin) {
	if b.qualified {
		r.qualified[b.name] = b
	}
	if b.method {
		r.methods[b.name] = b
	}
}

// lookupQualified resolves a dotted name such as torch.relu or
// torch.nn.functional.relu.
func (r *registry) lookupQualified(dotted string) (*builtin, bool) {
	for _, m := range modules {
		if name, ok := strings.CutPrefix(dotted, m+"."); ok {
			b, found := r.qualified[name]
			return b, found
		}
	}
	return nil, false
}

func isModuleRef(dotted string) bool {
	for _, m := range modules {
		if dotted == m || strings.HasPrefix(dotted, m+".") {
			return true
		}
	}
	return false
}

// Builtins returns the sorted names callable as torch.<name>.
func Builtins() []string {
	names := make([]string, 0, len(builtins.qualified))
	for name := range builtins.qualified {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *registry) registerMathOps() {
	for _, op := range []struct{ name, sym string }{
		{"add", "+"}, {"sub", "-"}, {"mul", "*"}, {"div", "/"}, {"matmul", "@"},
	} {
		sym := op.sym
		r.register(&builtin{
			name: op.name, sig: fixedSignature("input", "other"), qualified: true, method: true,
			fn: func(ip *interp, args []Value) Value { return ip.arith(sym, args[0], args[1]) },
		})
	}

	r.register(&builtin{
		name: "mm", sig: fixedSignature("input", "mat2"), qualified: true, method: true,
		fn: func(ip *interp, args []Value) Value {
			a, b := ip.tensorArg("mm", "input", args[0]), ip.tensorArg("mm", "mat2", args[1])
			if a.Rank() != 2 || b.Rank() != 2 {
				fail("mm: expected 2-D tensors, got %d-D and %d-D", a.Rank(), b.Rank())
			}
			return TensorVal(ip.engine.MatMul(a, b))
		},
	})
	r.register(&builtin{
		name: "dot", sig: fixedSignature("input", "other"), qualified: true, method: true,
		fn: func(ip *interp, args []Value) Value {
			return TensorVal(ip.engine.Dot(ip.tensorArg("dot", "input", args[0]), ip.tensorArg("dot", "other", args[1])))
		},
	})
	r.register(&builtin{
		name: "eq", sig: fixedSignature("input", "other"), qualified: true, method: true,
		fn: func(ip *interp, args []Value) Value { return ip.compare("==", args[0], args[1]) },
	})

	unary := map[string]func(Engine, *tensor.Tensor) *tensor.Tensor{
		"neg":  Engine.Neg,
		"abs":  Engine.Abs,
		"exp":  Engine.Exp,
		"log":  Engine.Log,
		"sum":  Engine.Sum,
		"mean": Engine.Mean,
	}
	for name, f := range unary {
		r.register(&builtin{
			name: name, sig: fixedSignature("input"), qualified: true, method: true,
			fn: func(ip *interp, args []Value) Value {
				return TensorVal(f(ip.engine, ip.tensorArg(name, "input", args[0])))
			},
		})
	}
}

func (r *registry) registerActivations() {
	unary := map[string]func(Engine, *tensor.Tensor) *tensor.Tensor{
		"relu":    Engine.ReLU,
		"sigmoid": Engine.Sigmoid,
		"tanh":    Engine.Tanh,
	}
	for name, f := range unary {
		r.register(&builtin{
			name: name, sig: fixedSignature("input"), qualified: true, method: true,
			fn: func(ip *interp, args []Value) Value {
				return TensorVal(f(ip.engine, ip.tensorArg(name, "input", args[0])))
			},
		})
	}
}

func (r *registry) registerShapeOps() {
	reshape := func(name string) builtinFn {
		return func(ip *interp, args []Value) Value {
			x := ip.tensorArg(name, "input", args[0])
			return TensorVal(ip.engine.Reshape(x, ip.shapeArg(name, args[1])))
		}
	}
	r.register(&builtin{
		name: "reshape", sig: signature{params: []string{"input", "shape"}, required: 2, variadic: true},
		qualified: true, method: true, fn: reshape("reshape"),
	})
	r.register(&builtin{
		name: "view", sig: signature{params: []string{"input", "size"}, required: 2, variadic: true},
		method: true, fn: reshape("view"),
	})

	r.register(&builtin{
		name: "t", sig: fixedSignature("input"), qualified: true, method: true,
		fn: func(ip *interp, args []Value) Value {
			x := ip.tensorArg("t", "input", args[0])
			if x.Rank() > 2 {
				fail("t() expects a tensor with <= 2 dimensions, but self is %dD", x.Rank())
			}
			return TensorVal(ip.transpose(x))
		},
	})
	r.register(&builtin{
		name: "transpose", sig: fixedSignature("input", "dim0", "dim1"), qualified: true, method: true,
		fn: func(ip *interp, args []Value) Value {
			x := ip.tensorArg("transpose", "input", args[0])
			rank := max(x.Rank(), 1)
			d0, err0 := tensor.NormalizeDim(int(args[1].int()), rank)
			d1, err1 := tensor.NormalizeDim(int(args[2].int()), rank)
			if err0 != nil || err1 != nil {
				fail("transpose: dimension out of range for a %d-D tensor", x.Rank())
			}
			if d0 == d1 {
				return TensorVal(x)
			}
			if x.Rank() != 2 {
				fail("transpose: only 2-D tensors are supported, got %d-D", x.Rank())
			}
			return TensorVal(ip.engine.Transpose(x))
		},
	})

	r.register(&builtin{
		name: "stack", sig: signature{params: []string{"tensors", "dim"}, required: 1}, qualified: true,
		fn: func(ip *interp, args []Value) Value {
			if args[0].Tag != VTList {
				fail("stack(): argument 'tensors' must be a list of Tensors, not %s", args[0].Tag)
			}
			items := args[0].list()
			xs := make([]*tensor.Tensor, len(items))
			for i, v := range items {
				xs[i] = ip.tensorArg("stack", "tensors", v)
			}
			dim := 0
			if args[1].Tag != VTNone {
				dim = int(args[1].int())
			}
			return TensorVal(ip.engine.Stack(xs, dim))
		},
	})

	r.register(&builtin{
		name: "size", sig: signature{params: []string{"input", "dim"}, required: 1}, method: true,
		fn: func(ip *interp, args []Value) Value {
			x := ip.tensorArg("size", "input", args[0])
			if args[1].Tag == VTNone {
				return shapeValue(x.Shape())
			}
			d, err := tensor.NormalizeDim(int(args[1].int()), x.Rank())
			if err != nil {
				fail("size: %v", err)
			}
			return Int(int64(x.Shape()[d]))
		},
	})
	r.register(&builtin{
		name: "dim", sig: fixedSignature("input"), method: true,
		fn: func(ip *interp, args []Value) Value {
			return Int(int64(ip.tensorArg("dim", "input", args[0]).Rank()))
		},
	})
	r.register(&builtin{
		name: "numel", sig: fixedSignature("input"), qualified: true, method: true,
		fn: func(ip *interp, args []Value) Value {
			return Int(int64(ip.tensorArg("numel", "input", args[0]).NumElements()))
		},
	})
	r.register(&builtin{
		name: "item", sig: fixedSignature("input"), method: true,
		fn: func(ip *interp, args []Value) Value {
			return Float(float64(ip.tensorArg("item", "input", args[0]).Item()))
		},
	})
	r.register(&builtin{
		name: "float", sig: fixedSignature("input"), method: true,
		fn: func(ip *interp, args []Value) Value {
			return TensorVal(ip.engine.Float(ip.tensorArg("float", "input", args[0])))
		},
	})
}

func (r *registry) registerCreationOps() {
	for name, f := range map[string]func(Engine, *tensor.Tensor) *tensor.Tensor{
		"ones_like":  Engine.OnesLike,
		"zeros_like": Engine.ZerosLike,
	} {
		r.register(&builtin{
			name: name, sig: fixedSignature("input"), qualified: true,
			fn: func(ip *interp, args []Value) Value {
				return TensorVal(f(ip.engine, ip.tensorArg(name, "input", args[0])))
			},
		})
	}

	for name, f := range map[string]func(tensor.Shape, tensor.Backend) *tensor.Tensor{
		"zeros": tensor.Zeros,
		"ones":  tensor.Ones,
		"randn": tensor.Randn,
		"rand":  tensor.Rand,
	} {
		r.register(&builtin{
			name: name, sig: signature{params: []string{"size"}, required: 1, variadic: true}, qualified: true,
			fn: func(ip *interp, args []Value) Value {
				shape := ip.shapeArg(name, args[0])
				if err := shape.Validate(); err != nil {
					fail("%s: %v", name, err)
				}
				return TensorVal(f(shape, ip.engine.Backend()))
			},
		})
	}

	r.register(&builtin{
		name: "tensor", sig: fixedSignature("data"), qualified: true,
		fn: func(ip *interp, args []Value) Value {
			var data []float32
			shape := nestedShape(args[0])
			flatten(args[0], &data)
			if len(data) != shape.NumElements() {
				fail("tensor: expected a rectangular nested list")
			}
			t, err := tensor.FromSlice(data, shape, ip.engine.Backend())
			if err != nil {
				fail("tensor: %v", err)
			}
			return TensorVal(t)
		},
	})
}

func (r *registry) registerLossOps() {
	type loss interface {
		Forward(a, b *tensor.Tensor) *tensor.Tensor
	}
	for name, build := range map[string]func(Engine, nn.Reduction) loss{
		"mse_loss": func(e Engine, red nn.Reduction) loss { l := nn.NewMSELoss(e); l.Reduction = red; return l },
		"l1_loss":  func(e Engine, red nn.Reduction) loss { l := nn.NewL1Loss(e); l.Reduction = red; return l },
		"nll_loss": func(e Engine, red nn.Reduction) loss { l := nn.NewNLLLoss(e); l.Reduction = red; return l },
	} {
		r.register(&builtin{
			name: name, sig: signature{params: []string{"input", "target", "reduction"}, required: 2}, qualified: true,
			fn: func(ip *interp, args []Value) Value {
				red := nn.ReductionMean
				if args[2].Tag != VTNone {
					if args[2].Tag != VTStr {
						fail("%s(): argument 'reduction' must be str, not %s", name, args[2].Tag)
					}
					var err error
					if red, err = nn.ParseReduction(args[2].Data.(string)); err != nil {
						fail("%s: %v", name, err)
					}
				}
				input := ip.tensorArg(name, "input", args[0])
				target := ip.tensorArg(name, "target", args[1])
				return TensorVal(build(ip.engine, red).Forward(input, target))
			},
		})
	}
}

// registerPythonBuiltins adds the unqualified Python functions.
func (r *registry) registerPythonBuiltins() {
	plain := func(b *builtin) { r.plain[b.name] = b }

	plain(&builtin{
		name: "len", sig: fixedSignature("obj"),
		fn: func(ip *interp, args []Value) Value {
			switch v := args[0]; v.Tag {
			case VTList:
				return Int(int64(len(v.list())))
			case VTStr:
				return Int(int64(len(v.Data.(string))))
			case VTTensor:
				if v.tensor().Rank() == 0 {
					fail("len() of a 0-d tensor")
				}
				return Int(int64(v.tensor().Shape()[0]))
			default:
				fail("object of type '%s' has no len()", v.Tag)
				return None
			}
		},
	})
	plain(&builtin{
		name: "float", sig: fixedSignature("x"),
		fn: func(ip *interp, args []Value) Value {
			if args[0].Tag == VTTensor {
				return Float(float64(args[0].tensor().Item()))
			}
			return Float(args[0].num())
		},
	})
	plain(&builtin{
		name: "int", sig: fixedSignature("x"),
		fn: func(ip *interp, args []Value) Value {
			if args[0].Tag == VTTensor {
				return Int(int64(args[0].tensor().Item()))
			}
			return Int(int64(math.Trunc(args[0].num())))
		},
	})
	plain(&builtin{
		name: "abs", sig: fixedSignature("x"),
		fn: func(ip *interp, args []Value) Value {
			switch v := args[0]; v.Tag {
			case VTTensor:
				return TensorVal(ip.engine.Abs(v.tensor()))
			case VTInt:
				if n := v.int(); n < 0 {
					return Int(-n)
				}
				return v
			default:
				return Float(math.Abs(v.num()))
			}
		},
	})
	for name, pick := range map[string]func(a, b float64) bool{
		"min": func(a, b float64) bool { return b < a },
		"max": func(a, b float64) bool { return b > a },
	} {
		plain(&builtin{
			name: name, sig: fixedSignature("a", "b"),
			fn: func(ip *interp, args []Value) Value {
				if !args[0].isNumber() || !args[1].isNumber() {
					fail("%s() expects numbers, got %s and %s", name, args[0].Tag, args[1].Tag)
				}
				if pick(args[0].num(), args[1].num()) {
					return args[1]
				}
				return args[0]
			},
		})
	}
}

func shapeValue(s tensor.Shape) Value {
	dims := make([]Value, len(s))
	for i, d := range s {
		dims[i] = Int(int64(d))
	}
	return List(dims)
}

func nestedShape(v Value) tensor.Shape {
	if v.Tag != VTList {
		return tensor.Shape{}
	}
	items := v.list()
	if len(items) == 0 {
		fail("tensor: empty lists are not supported")
	}
	inner := nestedShape(items[0])
	for _, item := range items[1:] {
		if !nestedShape(item).Equal(inner) {
			fail("tensor: expected a rectangular nested list")
		}
	}
	return append(tensor.Shape{len(items)}, inner...)
}

func flatten(v Value, out *[]float32) {
	switch v.Tag {
	case VTList:
		for _, x := range v.list() {
			flatten(x, out)
		}
	default:
		*out = append(*out, float32(v.num()))
	}
}
