package nn

import (
	"fmt"

	"github.com/born-ml/torchbridge/internal/tensor"
)

// Engine is the set of differentiable operations the losses are built from.
// *autodiff.Engine satisfies it.
type Engine interface {
	Sub(a, b *tensor.Tensor) *tensor.Tensor
	Mul(a, b *tensor.Tensor) *tensor.Tensor
	Abs(x *tensor.Tensor) *tensor.Tensor
	Sum(x *tensor.Tensor) *tensor.Tensor
	Mean(x *tensor.Tensor) *tensor.Tensor
	MulScalar(x *tensor.Tensor, scalar float32) *tensor.Tensor
	NLLLoss(input, target *tensor.Tensor) *tensor.Tensor
}

// Reduction selects how per-element losses are combined.
type Reduction int

// Supported reductions. Every reduction yields a 0-d tensor.
const (
	ReductionMean Reduction = iota
	ReductionSum
)

// ParseReduction maps "mean" and "sum" to a Reduction.
func ParseReduction(s string) (Reduction, error) {
	switch s {
	case "mean":
		return ReductionMean, nil
	case "sum":
		return ReductionSum, nil
	default:
		return 0, fmt.Errorf("%q is not a valid value for reduction", s)
	}
}

func reduce(engine Engine, x *tensor.Tensor, r Reduction) *tensor.Tensor {
	if r == ReductionSum {
		return engine.Sum(x)
	}
	return engine.Mean(x)
}

// MSELoss computes Mean Squared Error loss.
//
// Loss = mean((predictions - targets)²)
//
// Predictions and targets broadcast against each other. The result is a
// 0-d tensor that is differentiable with respect to both arguments.
//
// Example:
//
//	mse := nn.NewMSELoss(engine)
//	loss := mse.Forward(predictions, targets)
//	engine.Backward(loss)
type MSELoss struct {
	engine    Engine
	Reduction Reduction
}

// NewMSELoss creates a new MSE loss function with mean reduction.
func NewMSELoss(engine Engine) *MSELoss {
	return &MSELoss{engine: engine}
}

// Forward computes the MSE loss.
func (m *MSELoss) Forward(predictions, targets *tensor.Tensor) *tensor.Tensor {
	diff := m.engine.Sub(predictions, targets)
	return reduce(m.engine, m.engine.Mul(diff, diff), m.Reduction)
}

// L1Loss computes Mean Absolute Error loss.
//
// Loss = mean(|predictions - targets|)
type L1Loss struct {
	engine    Engine
	Reduction Reduction
}

// NewL1Loss creates a new L1 loss function with mean reduction.
func NewL1Loss(engine Engine) *L1Loss {
	return &L1Loss{engine: engine}
}

// Forward computes the L1 loss.
func (l *L1Loss) Forward(predictions, targets *tensor.Tensor) *tensor.Tensor {
	return reduce(l.engine, l.engine.Abs(l.engine.Sub(predictions, targets)), l.Reduction)
}

// NLLLoss computes the negative log likelihood loss.
//
// Loss = -mean(input[i, target[i]])
//
// Input holds log-probabilities with shape [N, C] (or [C] for a single
// sample); targets hold class indices stored as float32 with shape [N]
// (or 0-d). Pair it with a log-softmax to get cross-entropy.
type NLLLoss struct {
	engine    Engine
	Reduction Reduction
}

// NewNLLLoss creates a new NLL loss function with mean reduction.
func NewNLLLoss(engine Engine) *NLLLoss {
	return &NLLLoss{engine: engine}
}

// Forward computes the NLL loss.
func (n *NLLLoss) Forward(input, targets *tensor.Tensor) *tensor.Tensor {
	loss := n.engine.NLLLoss(input, targets)
	if n.Reduction == ReductionSum {
		batch := 1
		if input.Rank() == 2 {
			batch = input.Shape()[0]
		}
		return n.engine.MulScalar(loss, float32(batch))
	}
	return loss
}
