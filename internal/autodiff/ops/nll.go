package ops

import (
	"fmt"

	"github.com/born-ml/torchbridge/internal/tensor"
)

// NLLLossOp represents the negative log likelihood loss with mean reduction.
//
// Forward:
//
//	Loss = -mean(input[i, target[i]])
//
// Where input holds log-probabilities, [N, C] or [C], and target holds class
// indices stored as float32, [N] or 0-d.
//
// Backward:
//
//	∂L/∂input[i, target[i]] = -outputGrad / N, zero elsewhere
//
// The target receives no gradient.
type NLLLossOp struct {
	inputs  []*tensor.Tensor // [input, target]
	classes []int            // Resolved class index per row
}

// NewNLLLossOp creates a new NLLLossOp from the classes NLLLossForward resolved.
func NewNLLLossOp(input, target *tensor.Tensor, classes []int) *NLLLossOp {
	return &NLLLossOp{
		inputs:  []*tensor.Tensor{input, target},
		classes: classes,
	}
}

// Name returns "NllLossBackward".
func (op *NLLLossOp) Name() string { return "NllLossBackward" }

// Inputs returns [input, target].
func (op *NLLLossOp) Inputs() []*tensor.Tensor { return op.inputs }

// Backward scatters -outputGrad/N into the selected log-probabilities.
func (op *NLLLossOp) Backward(outputGrad *tensor.RawTensor, _ tensor.Backend) []*tensor.RawTensor {
	input := op.inputs[0].Raw()

	grad, err := tensor.NewRaw(input.Shape(), tensor.Float32, input.Device())
	if err != nil {
		panic(err)
	}

	numClasses := input.Shape()[len(input.Shape())-1]
	scale := -outputGrad.AsFloat32()[0] / float32(len(op.classes))
	dst := grad.AsFloat32()
	for i, c := range op.classes {
		dst[i*numClasses+c] = scale
	}
	return []*tensor.RawTensor{grad, nil}
}

// NLLLossForward computes the loss and returns the class index used per row.
// It panics when shapes disagree or a target is not a valid class index.
func NLLLossForward(input, target *tensor.RawTensor) (*tensor.RawTensor, []int) {
	inShape, tShape := input.Shape(), target.Shape()

	var batch int
	switch {
	case len(inShape) == 2 && len(tShape) == 1:
		batch = inShape[0]
		if tShape[0] != batch {
			panic(fmt.Sprintf("nll_loss: expected input batch_size (%d) to match target batch_size (%d)", batch, tShape[0]))
		}
	case len(inShape) == 1 && len(tShape) == 0:
		batch = 1
	default:
		panic(fmt.Sprintf("nll_loss: expected input [N, C] with target [N] or input [C] with 0-d target, got %v and %v",
			inShape, tShape))
	}

	numClasses := inShape[len(inShape)-1]
	logProbs := input.AsFloat32()
	targets := target.Float32s()

	classes := make([]int, batch)
	var sum float64
	for i, t := range targets {
		c := int(t)
		if float32(c) != t || c < 0 || c >= numClasses {
			panic(fmt.Sprintf("nll_loss: target %v is out of bounds for %d classes", t, numClasses))
		}
		classes[i] = c
		sum += float64(logProbs[i*numClasses+c])
	}

	loss, err := tensor.NewRaw(tensor.Shape{}, tensor.Float32, input.Device())
	if err != nil {
		panic(err)
	}
	loss.AsFloat32()[0] = float32(-sum / float64(batch))
	return loss, classes
}
