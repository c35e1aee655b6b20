package autodiff

import (
	"fmt"

	"github.com/born-ml/torchbridge/internal/tensor"
)

// Backward computes gradients of a single-element tensor with respect to
// every leaf that requires gradients, seeding the pass with 1.
//
// Gradients accumulate into each leaf's Grad(); call ZeroGrad on the leaves
// (or through an optimizer) to reset them between iterations.
//
// Panics if t does not require gradients or holds more than one element.
func (e *Engine[B]) Backward(t *tensor.Tensor) {
	if !t.RequiresGrad() {
		panic("backward: element 0 of tensors does not require grad and does not have a grad_fn")
	}
	if t.NumElements() != 1 {
		panic(fmt.Sprintf("backward: grad can be implicitly created only for scalar outputs, got shape %v", t.Shape()))
	}

	seed := tensor.Ones(t.Shape(), e.inner).Raw()
	e.BackwardWithGrad(t, seed)
}

// BackwardWithGrad runs the reverse pass from t with an explicit output gradient.
func (e *Engine[B]) BackwardWithGrad(t *tensor.Tensor, outputGrad *tensor.RawTensor) {
	if !outputGrad.Shape().Equal(t.Shape()) {
		panic(fmt.Sprintf("backward: gradient shape %v does not match output shape %v", outputGrad.Shape(), t.Shape()))
	}

	order := topoSort(t)
	grads := map[*tensor.Tensor]*tensor.RawTensor{t: outputGrad}

	// Reverse topological order: every node sees its full gradient before
	// passing it on to its inputs.
	for i := len(order) - 1; i >= 0; i-- {
		node := order[i]
		grad, ok := grads[node]
		if !ok {
			continue
		}
		delete(grads, node)

		if node.IsLeaf() {
			node.AccumulateGrad(grad)
			continue
		}

		inputs := node.GradFn().Inputs()
		inputGrads := node.GradFn().Backward(grad, e.inner)
		if len(inputGrads) != len(inputs) {
			panic(fmt.Sprintf("backward: %s returned %d gradients for %d inputs",
				node.GradFn().Name(), len(inputGrads), len(inputs)))
		}

		for j, in := range inputs {
			g := inputGrads[j]
			if g == nil || !in.RequiresGrad() {
				continue
			}
			if existing, ok := grads[in]; ok {
				grads[in] = e.inner.Add(existing, g)
			} else {
				grads[in] = g
			}
		}
	}
}

// topoSort returns every gradient-tracking tensor reachable from root,
// ordered so that inputs come before the tensors computed from them.
func topoSort(root *tensor.Tensor) []*tensor.Tensor {
	type frame struct {
		t    *tensor.Tensor
		next int
	}

	var order []*tensor.Tensor
	visited := map[*tensor.Tensor]bool{root: true}
	stack := []frame{{t: root}}

	for len(stack) > 0 {
		top := &stack[len(stack)-1]

		var inputs []*tensor.Tensor
		if fn := top.t.GradFn(); fn != nil {
			inputs = fn.Inputs()
		}

		if top.next < len(inputs) {
			in := inputs[top.next]
			top.next++
			if in.RequiresGrad() && !visited[in] {
				visited[in] = true
				stack = append(stack, frame{t: in})
			}
			continue
		}

		order = append(order, top.t)
		stack = stack[:len(stack)-1]
	}

	return order
}
