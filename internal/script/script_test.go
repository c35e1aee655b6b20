package script_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/torchbridge/internal/autodiff"
	"github.com/born-ml/torchbridge/internal/backend/cpu"
	"github.com/born-ml/torchbridge/internal/script"
	"github.com/born-ml/torchbridge/internal/tensor"
)

func newEngine() *autodiff.Engine[*cpu.CPUBackend] {
	return autodiff.New(cpu.New())
}

func vec(t *testing.T, e *autodiff.Engine[*cpu.CPUBackend], shape tensor.Shape, values ...float32) *tensor.Tensor {
	t.Helper()
	x, err := tensor.FromSlice(values, shape, e.Inner())
	require.NoError(t, err)
	return x
}

func compile(t *testing.T, e *autodiff.Engine[*cpu.CPUBackend], src string) *script.Unit {
	t.Helper()
	u, err := script.Compile(src, e)
	require.NoError(t, err)
	return u
}

func TestReluScript(t *testing.T) {
	e := newEngine()
	u := compile(t, e, "def relu_script(a, b):\n\t\treturn torch.relu(a + b)\n\t")

	a := vec(t, e, tensor.Shape{3}, 1, 2, -1).RequireGrad()
	b := vec(t, e, tensor.Shape{3}, 2, 3, -2)

	out, err := u.Invoke("relu_script", a, b)
	require.NoError(t, err)
	assert.Equal(t, []float32{3, 5, 0}, out.Data())

	e.Backward(e.Sum(out))
	require.NotNil(t, a.Grad())
	assert.Equal(t, []float32{1, 1, 0}, a.Grad().Data())
	assert.Nil(t, b.Grad())
}

func TestCompile_Errors(t *testing.T) {
	e := newEngine()
	tests := []struct {
		name string
		src  string
		msg  string
	}{
		{"garbage", "some garbo", "line 1:6"},
		{"unterminated body", "def f(a):\n", "expected an indented block"},
		{"top-level statement", "x = 1\n", "only function definitions are allowed at top level"},
		{"return outside function", "return 1\n", "'return' outside function"},
		{"duplicate function", "def f(a):\n    return a\ndef f(b):\n    return b\n", "function 'f' is already defined"},
		{"duplicate parameter", "def f(a, a):\n    return a\n", "duplicate argument 'a'"},
		{"unknown builtin", "def f(a):\n    return torch.frobnicate(a)\n", "unknown builtin 'torch.frobnicate'"},
		{"unknown method", "def f(a):\n    return a.frobnicate()\n", "unknown tensor method 'frobnicate'"},
		{"undefined function", "def f(a):\n    return g(a)\n", "function 'g' is not defined"},
		{"undefined name", "def f(a):\n    return b\n", "name 'b' is not defined"},
		{"unbound local", "def f(a):\n    c = b + a\n    b = a\n    return c\n", "local variable 'b' referenced before assignment"},
		{"nested def", "def f(a):\n    def g(b):\n        return b\n    return a\n", "nested function definitions"},
		{"wrong arity", "def g(a, b):\n    return a\ndef f(a):\n    return g(a)\n", "missing required argument 'b'"},
		{"builtin arity", "def f(a):\n    return torch.relu(a, a)\n", "takes 1 positional arguments but 2 were given"},
		{"module as value", "def f(a):\n    return torch\n", "module 'torch' cannot be used as a value"},
		{"bad keyword", "def f(a, b):\n    return torch.stack([a, b], axis=0)\n", "unexpected keyword argument 'axis'"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := script.Compile(tt.src, e)
			require.Error(t, err)
			assert.Nil(t, u)
			assert.True(t, script.IsCompileError(err))
			assert.NotEmpty(t, err.Error())
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestCompile_ErrorFormat(t *testing.T) {
	_, err := script.Compile("def f(a):\n    return b\n", newEngine())
	require.Error(t, err)
	assert.Equal(t, "line 2:12: name 'b' is not defined", err.Error())
}

func TestInvoke_Arithmetic(t *testing.T) {
	e := newEngine()
	u := compile(t, e, `
def scale(a, b):
    c = a * 2 - b / 2
    c += 1
    return c

def rsub(a):
    return 1 - a

def rdiv(a):
    return 2 / a

def square(a):
    return a ** 2

def matvec(m, v):
    return m @ v
`)
	a := vec(t, e, tensor.Shape{2}, 1, 2)
	b := vec(t, e, tensor.Shape{2}, 4, 8)

	out, err := u.Invoke("scale", a, b)
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 1}, out.Data())

	out, err = u.Invoke("rsub", a)
	require.NoError(t, err)
	assert.Equal(t, []float32{0, -1}, out.Data())

	out, err = u.Invoke("rdiv", a)
	require.NoError(t, err)
	assert.Equal(t, []float32{2, 1}, out.Data())

	out, err = u.Invoke("square", b)
	require.NoError(t, err)
	assert.Equal(t, []float32{16, 64}, out.Data())

	m := vec(t, e, tensor.Shape{2, 2}, 1, 0, 0, 2)
	out, err = u.Invoke("matvec", m, a)
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{2}, out.Shape())
	assert.Equal(t, []float32{1, 4}, out.Data())
}

func TestInvoke_ControlFlowAndCalls(t *testing.T) {
	e := newEngine()
	u := compile(t, e, `
def pick(a, b):
    if a.sum() == b.sum():
        return a
    elif (a.sum() > 0) == True:
        return helper(a, b)
    else:
        return b

def helper(x, y):
    return torch.add(x, y)

def total(a):
    n = a.numel()
    if n > 2 and a.dim() == 1:
        return a.sum()
    return a.mean()
`)
	a := vec(t, e, tensor.Shape{2}, 1, 2)

	out, err := u.Invoke("pick", a, a)
	require.NoError(t, err)
	assert.Same(t, a, out)

	_, err = u.Invoke("pick", a, vec(t, e, tensor.Shape{2}, 5, 5))
	require.Error(t, err)
	var rt *script.RuntimeError
	require.ErrorAs(t, err, &rt)
	assert.Contains(t, rt.Msg, "operator > is not supported for tensors")

	out, err = u.Invoke("total", vec(t, e, tensor.Shape{3}, 1, 2, 3))
	require.NoError(t, err)
	assert.InDelta(t, 6.0, out.Item(), 1e-6)

	out, err = u.Invoke("total", a)
	require.NoError(t, err)
	assert.InDelta(t, 1.5, out.Item(), 1e-6)
}

func TestInvoke_Builtins(t *testing.T) {
	e := newEngine()
	u := compile(t, e, `
def shapes(a, b):
    s = torch.stack([a, b], dim=1)
    return s.reshape(-1, 2).t().view(4)

def eq(a, b):
    return torch.eq(a, b)

def losses(p, y):
    return F.mse_loss(p, y) + torch.nn.functional.l1_loss(p, y, reduction="sum")

def nll(logp, target):
    return F.nll_loss(logp, target)

def dot(a, b):
    return a.dot(b)

def acts(a):
    return torch.sigmoid(a) + a.tanh().exp().log() - torch.ones_like(a) * 0 + torch.zeros_like(a)

def make():
    return torch.tensor([[1.0, 2.0], [3.0, 4.0]]).T

def dims(a):
    return torch.zeros(len(a), a.size(0), a.shape[0])
`)
	a := vec(t, e, tensor.Shape{2}, 1, 2)
	b := vec(t, e, tensor.Shape{2}, 3, 4)

	out, err := u.Invoke("shapes", a, b)
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{4}, out.Shape())
	assert.Equal(t, []float32{1, 2, 3, 4}, out.Data())

	out, err = u.Invoke("eq", a, vec(t, e, tensor.Shape{2}, 1, 5))
	require.NoError(t, err)
	assert.Equal(t, tensor.Bool, out.DType())
	assert.Equal(t, []float32{1, 0}, out.Raw().Float32s())

	out, err = u.Invoke("losses", a, b)
	require.NoError(t, err)
	assert.Equal(t, 0, out.Rank())
	assert.InDelta(t, 4.0+4.0, out.Item(), 1e-5)

	logp := vec(t, e, tensor.Shape{2, 2}, -1, -2, -3, -4)
	out, err = u.Invoke("nll", logp, vec(t, e, tensor.Shape{2}, 1, 0))
	require.NoError(t, err)
	assert.InDelta(t, 2.5, out.Item(), 1e-6)

	out, err = u.Invoke("dot", a, b)
	require.NoError(t, err)
	assert.Equal(t, 0, out.Rank())
	assert.InDelta(t, 11.0, out.Item(), 1e-6)

	out, err = u.Invoke("acts", vec(t, e, tensor.Shape{1}, 0))
	require.NoError(t, err)
	assert.InDelta(t, 0.5, out.Item(), 1e-5)

	out, err = u.Invoke("make")
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 3, 2, 4}, out.Data())

	out, err = u.Invoke("dims", a)
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{2, 2, 2}, out.Shape())
}

func TestInvoke_Errors(t *testing.T) {
	e := newEngine()
	u := compile(t, e, `
def id(a):
    return a

def number(a):
    return 1

def nothing(a):
    pass

def bad_shape(a, b):
    return a + b

def maybe(a):
    if a.sum() == 0:
        x = a
    return x

def forever(a):
    return forever(a)
`)
	a := vec(t, e, tensor.Shape{2}, 1, 2)

	_, err := u.Invoke("missing", a)
	require.ErrorIs(t, err, script.ErrFunctionNotFound)

	_, err = u.Invoke("id", a, a)
	var rt *script.RuntimeError
	require.ErrorAs(t, err, &rt)
	assert.Contains(t, rt.Msg, "takes 1 positional arguments but 2 were given")

	_, err = u.Invoke("number", a)
	require.ErrorIs(t, err, script.ErrNotTensor)

	_, err = u.Invoke("nothing", a)
	require.ErrorIs(t, err, script.ErrNotTensor)

	_, err = u.Invoke("bad_shape", a, vec(t, e, tensor.Shape{3}, 1, 2, 3))
	require.ErrorAs(t, err, &rt)
	assert.Equal(t, "bad_shape", rt.Func)
	assert.Contains(t, rt.Msg, "broadcast")

	_, err = u.Invoke("maybe", a)
	require.ErrorAs(t, err, &rt)
	assert.Contains(t, rt.Msg, "local variable 'x' referenced before assignment")

	_, err = u.Invoke("forever", a)
	require.ErrorAs(t, err, &rt)
	assert.Contains(t, rt.Msg, "maximum recursion depth exceeded")
}

func TestMaxCallDepthOption(t *testing.T) {
	e := newEngine()
	src := `
def down(a, n):
    if n == 0:
        return a
    return down(a, n - 1)

def start(a):
    return down(a, 4)
`
	a := vec(t, e, tensor.Shape{1}, 1)

	u, err := script.Compile(src, e, script.WithMaxCallDepth(3))
	require.NoError(t, err)
	_, err = u.Invoke("start", a)
	require.Error(t, err)

	u, err = script.Compile(src, e, script.WithMaxCallDepth(10))
	require.NoError(t, err)
	out, err := u.Invoke("start", a)
	require.NoError(t, err)
	assert.Same(t, a, out)
}

func TestFunctions(t *testing.T) {
	u := compile(t, newEngine(), `
def b(x: Tensor) -> Tensor:
    return x

def a(x, y):
    return x
`)
	sigs := u.Functions()
	require.Len(t, sigs, 2)
	assert.Equal(t, "a", sigs[0].Name)
	assert.Equal(t, "a(x, y)", sigs[0].String())
	assert.Equal(t, "b(x: Tensor) -> Tensor", sigs[1].String())
}

func TestCall_Values(t *testing.T) {
	u := compile(t, newEngine(), `
def f(n):
    return [n * 2, n / 4, n > 1 or False, not n, min(n, 3), max(1.5, n), abs(-n), int(2.9), float(n)]
`)
	v, err := u.Call("f", script.Int(2))
	require.NoError(t, err)
	assert.Equal(t, "[4, 0.5, True, False, 2, 2, 2, 2, 2]", v.String())
}

func TestBuiltins(t *testing.T) {
	names := script.Builtins()
	for _, want := range []string{"relu", "mse_loss", "stack", "reshape", "dot", "eq", "nll_loss"} {
		assert.Contains(t, names, want)
	}
	assert.NotContains(t, names, "view")
}

func TestPower(t *testing.T) {
	e := newEngine()
	u := compile(t, e, `
def cube(a):
    return a ** 3

def thirteenth(a):
    return a ** 13

def huge(a):
    return a ** 1000000000

def ipow(n, k):
    return n ** k
`)
	a := vec(t, e, tensor.Shape{2}, 1, 2)
	a.SetRequiresGrad(true)

	out, err := u.Invoke("thirteenth", a)
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 8192}, out.Data())

	out, err = u.Invoke("cube", a)
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 8}, out.Data())
	e.Backward(e.Sum(out))
	assert.Equal(t, []float32{3, 12}, a.Grad().Data())

	out, err = u.Invoke("huge", vec(t, e, tensor.Shape{2}, 1, -1))
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 1}, out.Data())

	tests := []struct {
		n, k int64
		want string
	}{
		{3, 5, "243"},
		{7, 0, "1"},
		{2, 62, "4611686018427387904"},
		{1, 1000000000, "1"},
		{-1, 1000000001, "-1"},
	}
	for _, tt := range tests {
		v, err := u.Call("ipow", script.Int(tt.n), script.Int(tt.k))
		require.NoError(t, err)
		assert.Equal(t, tt.want, v.String(), "%d ** %d", tt.n, tt.k)
	}
}

func TestTensorLiteral_Shape(t *testing.T) {
	e := newEngine()
	u := compile(t, e, `
def column(a):
    return torch.tensor([[1.0], [2.0]])

def ragged(a):
    return torch.tensor([[[1.0]], [2.0]])

def ragged_tail(a):
    return torch.tensor([[1.0, 2.0], [3.0]])
`)
	a := vec(t, e, tensor.Shape{1}, 0)

	out, err := u.Invoke("column", a)
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{2, 1}, out.Shape())

	for _, name := range []string{"ragged", "ragged_tail"} {
		_, err := u.Invoke(name, a)
		var rt *script.RuntimeError
		require.ErrorAs(t, err, &rt, name)
		assert.Contains(t, rt.Msg, "rectangular", name)
	}
}
