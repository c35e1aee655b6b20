package optim

import (
	"github.com/born-ml/torchbridge/internal/nn"
)

// SGD implements Stochastic Gradient Descent optimizer with optional momentum.
//
// Update rule without momentum:
//
//	param = param - lr * gradient
//
// Update rule with momentum:
//
//	velocity = momentum * velocity + gradient
//	param = param - lr * velocity
//
// Example:
//
//	optimizer, err := optim.NewSGD(params, optim.SGDConfig{
//	    LR:       0.01,
//	    Momentum: 0.9,
//	})
type SGD struct {
	params     []*nn.Parameter
	lr         float32
	momentum   float32
	velocities map[*nn.Parameter][]float32
}

// SGDConfig holds configuration for SGD optimizer.
type SGDConfig struct {
	LR       float32 // Learning rate (default: 0.01)
	Momentum float32 // Momentum factor (default: 0.0, range: [0, 1))
}

// NewSGD creates a new SGD optimizer over a fixed parameter list.
//
// Returns ErrNoParameters if params is empty.
func NewSGD(params []*nn.Parameter, config SGDConfig) (*SGD, error) {
	if err := checkParams(params); err != nil {
		return nil, err
	}
	if config.LR == 0 {
		config.LR = 0.01
	}

	return &SGD{
		params:     params,
		lr:         config.LR,
		momentum:   config.Momentum,
		velocities: make(map[*nn.Parameter][]float32),
	}, nil
}

// Step performs a single optimization step.
//
// Without momentum a parameter with no gradient is left unchanged. With
// momentum its velocity still decays and is applied.
func (s *SGD) Step() {
	for _, param := range s.params {
		grad := gradientData(param)
		values := param.Tensor().Data()

		if s.momentum == 0 {
			if grad == nil {
				continue
			}
			for i, g := range grad {
				values[i] -= s.lr * g
			}
			continue
		}

		velocity, exists := s.velocities[param]
		if !exists {
			velocity = make([]float32, len(values))
			s.velocities[param] = velocity
		}
		for i := range values {
			var g float32
			if grad != nil {
				g = grad[i]
			}
			velocity[i] = s.momentum*velocity[i] + g
			values[i] -= s.lr * velocity[i]
		}
	}
}

// ZeroGrad fills all parameter gradients with zeros.
func (s *SGD) ZeroGrad() {
	zeroGrad(s.params)
}

// GetLR returns the current learning rate.
func (s *SGD) GetLR() float32 {
	return s.lr
}

// SetLR updates the learning rate.
//
// Useful for learning rate scheduling during training.
func (s *SGD) SetLR(lr float32) {
	s.lr = lr
}

// Parameters returns the optimized parameters.
func (s *SGD) Parameters() []*nn.Parameter {
	return s.params
}
