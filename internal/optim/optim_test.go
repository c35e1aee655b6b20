package optim_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/torchbridge/internal/autodiff"
	"github.com/born-ml/torchbridge/internal/backend/cpu"
	"github.com/born-ml/torchbridge/internal/nn"
	"github.com/born-ml/torchbridge/internal/optim"
	"github.com/born-ml/torchbridge/internal/tensor"
)

// Helper to check float equality with tolerance.
func floatEqual(a, b, eps float32) bool {
	diff := a - b
	if diff < 0 {
		diff = -diff
	}
	return diff < eps
}

// newParam creates a parameter with the given values and a gradient of grad.
func newParam(t *testing.T, backend tensor.Backend, values, grad []float32) *nn.Parameter {
	t.Helper()
	x, err := tensor.FromSlice(values, tensor.Shape{len(values)}, backend)
	require.NoError(t, err)
	param := nn.NewParameter("x", x)
	if grad != nil {
		g, err := tensor.FromSlice(grad, tensor.Shape{len(grad)}, backend)
		require.NoError(t, err)
		x.AccumulateGrad(g.Raw())
	}
	return param
}

// TestSGD_SimpleUpdate tests SGD without momentum.
func TestSGD_SimpleUpdate(t *testing.T) {
	param := newParam(t, cpu.New(), []float32{2.0}, []float32{1.0})

	optimizer, err := optim.NewSGD([]*nn.Parameter{param}, optim.SGDConfig{LR: 0.1})
	require.NoError(t, err)

	optimizer.Step()

	// Expected: x_new = x_old - lr * grad = 2.0 - 0.1 * 1.0 = 1.9
	if actual := param.Tensor().Data()[0]; !floatEqual(actual, 1.9, 1e-6) {
		t.Errorf("SGD update: got %f, want %f", actual, 1.9)
	}
}

// TestSGD_WithMomentum tests SGD with momentum.
func TestSGD_WithMomentum(t *testing.T) {
	param := newParam(t, cpu.New(), []float32{1.0}, []float32{1.0})

	optimizer, err := optim.NewSGD([]*nn.Parameter{param}, optim.SGDConfig{LR: 0.1, Momentum: 0.9})
	require.NoError(t, err)

	// v_1 = 0.9 * 0 + 1.0 = 1.0
	// x_1 = 1.0 - 0.1 * 1.0 = 0.9
	optimizer.Step()
	if actual := param.Tensor().Data()[0]; !floatEqual(actual, 0.9, 1e-6) {
		t.Errorf("SGD momentum step 1: got %f, want %f", actual, 0.9)
	}

	// v_2 = 0.9 * 1.0 + 1.0 = 1.9
	// x_2 = 0.9 - 0.1 * 1.9 = 0.71
	optimizer.Step()
	if actual := param.Tensor().Data()[0]; !floatEqual(actual, 0.71, 1e-5) {
		t.Errorf("SGD momentum step 2: got %f, want %f", actual, 0.71)
	}
}

func TestSGD_MissingGradientIsZero(t *testing.T) {
	param := newParam(t, cpu.New(), []float32{3.0}, nil)

	optimizer, err := optim.NewSGD([]*nn.Parameter{param}, optim.SGDConfig{LR: 0.5})
	require.NoError(t, err)

	optimizer.Step()
	assert.Equal(t, float32(3.0), param.Tensor().Data()[0])
}

// TestOptimizer_ZeroGrad tests that ZeroGrad fills zeros and keeps the gradient tensor.
func TestOptimizer_ZeroGrad(t *testing.T) {
	backend := cpu.New()

	for _, name := range []string{"sgd", "adam"} {
		t.Run(name, func(t *testing.T) {
			param := newParam(t, backend, []float32{1.0, 2.0}, []float32{5.0, -5.0})
			grad := param.Grad()

			var opt optim.Optimizer
			var err error
			if name == "sgd" {
				opt, err = optim.NewSGD([]*nn.Parameter{param}, optim.SGDConfig{LR: 0.1})
			} else {
				opt, err = optim.NewAdam([]*nn.Parameter{param}, optim.AdamConfig{LR: 0.1})
			}
			require.NoError(t, err)

			opt.ZeroGrad()
			assert.Same(t, grad, param.Grad())
			assert.Equal(t, []float32{0, 0}, param.Grad().Data())
			assert.Equal(t, []float32{1, 2}, param.Tensor().Data(), "values unchanged")
		})
	}
}

// TestOptimizer_GetSetLR tests learning rate getter/setter.
func TestOptimizer_GetSetLR(t *testing.T) {
	param := newParam(t, cpu.New(), []float32{1.0}, nil)

	sgd, err := optim.NewSGD([]*nn.Parameter{param}, optim.SGDConfig{})
	require.NoError(t, err)
	assert.Equal(t, float32(0.01), sgd.GetLR())
	sgd.SetLR(0.5)
	assert.Equal(t, float32(0.5), sgd.GetLR())

	adam, err := optim.NewAdam([]*nn.Parameter{param}, optim.AdamConfig{})
	require.NoError(t, err)
	assert.Equal(t, float32(0.001), adam.GetLR())
	assert.Len(t, adam.Parameters(), 1)
}

func TestOptimizer_EmptyParams(t *testing.T) {
	_, err := optim.NewSGD(nil, optim.SGDConfig{LR: 0.1})
	require.ErrorIs(t, err, optim.ErrNoParameters)

	_, err = optim.NewAdam([]*nn.Parameter{}, optim.AdamConfig{LR: 0.1})
	require.ErrorIs(t, err, optim.ErrNoParameters)
}

// TestAdam_FirstStep checks the bias-corrected first update equals lr * sign(grad).
func TestAdam_FirstStep(t *testing.T) {
	param := newParam(t, cpu.New(), []float32{1.0, 1.0}, []float32{0.5, -2.0})

	adam, err := optim.NewAdam([]*nn.Parameter{param}, optim.AdamConfig{LR: 0.1})
	require.NoError(t, err)

	adam.Step()
	assert.Equal(t, 1, adam.StepCount())
	assert.InDeltaSlice(t, []float32{0.9, 1.1}, param.Tensor().Data(), 1e-5)
}

func TestAdam_MissingGradientAdvancesState(t *testing.T) {
	param := newParam(t, cpu.New(), []float32{1.0}, nil)

	adam, err := optim.NewAdam([]*nn.Parameter{param}, optim.AdamConfig{LR: 0.1})
	require.NoError(t, err)

	adam.Step()
	assert.Equal(t, 1, adam.StepCount())
	assert.Equal(t, float32(1.0), param.Tensor().Data()[0])
}

// TestConvergence minimizes mse(w, 5) end to end through the autodiff engine.
func TestConvergence(t *testing.T) {
	tests := []struct {
		name  string
		build func(params []*nn.Parameter) (optim.Optimizer, error)
		steps int
		tol   float64
	}{
		{"SGD", func(p []*nn.Parameter) (optim.Optimizer, error) {
			return optim.NewSGD(p, optim.SGDConfig{LR: 0.1})
		}, 100, 1e-3},
		{"Adam", func(p []*nn.Parameter) (optim.Optimizer, error) {
			return optim.NewAdam(p, optim.AdamConfig{LR: 0.2})
		}, 500, 5e-2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := autodiff.New(cpu.New())
			backend := engine.Inner()

			w := nn.NewParameter("w", tensor.Zeros(tensor.Shape{1}, backend))
			target := tensor.Scalar(5, backend)
			mse := nn.NewMSELoss(engine)

			opt, err := tt.build([]*nn.Parameter{w})
			require.NoError(t, err)

			prevDist := math.Inf(1)
			for i := 0; i < tt.steps; i++ {
				loss := mse.Forward(w.Tensor(), target)
				engine.Backward(loss)
				opt.Step()
				opt.ZeroGrad()

				dist := math.Abs(float64(w.Tensor().Data()[0]) - 5)
				if tt.name == "SGD" && dist > prevDist+1e-6 {
					t.Fatalf("step %d moved away from target: %v -> %v", i, prevDist, dist)
				}
				prevDist = dist
			}

			assert.InDelta(t, 5.0, w.Tensor().Data()[0], tt.tol)
		})
	}
}
