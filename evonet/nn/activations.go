package nn

import "math"

// ActivationType is a scalar activation (or derivative) function.
type ActivationType func(x float64) float64

// leakySlope is the divisor applied to negative inputs by LeakyReLU.
const leakySlope = 20.0

// LeakyReLU passes non-negative values through and scales negative values by 1/20.
// Used by every hidden layer.
func LeakyReLU(x float64) float64 {
	if x >= 0 {
		return x
	}
	return x / leakySlope
}

// LeakyReLUDerivative returns 1 for non-negative inputs and 1/20 otherwise.
func LeakyReLUDerivative(x float64) float64 {
	if x >= 0 {
		return 1
	}
	return 1 / leakySlope
}

// Sigmoid is the logistic function 1 / (1 + e^-x). Used by the output layer.
func Sigmoid(x float64) float64 {
	return 1.0 / (1.0 + math.Exp(-x))
}

// SigmoidDerivative expresses the sigmoid derivative in terms of an already
// squashed value: x * (1 - x).
func SigmoidDerivative(x float64) float64 {
	return x * (1 - x)
}

// layerActivation picks the forward activation for layer i of a network
// with the given number of layers. Only the last layer is squashed.
func layerActivation(i, layerCount int) ActivationType {
	if i == layerCount-1 {
		return Sigmoid
	}
	return LeakyReLU
}

// layerDelta turns the per-neuron error term into the delta used for
// gradient accumulation at layer i.
func layerDelta(i, layerCount int, errTerm float64) float64 {
	if i == layerCount-1 {
		return SigmoidDerivative(errTerm)
	}
	return errTerm * LeakyReLUDerivative(errTerm)
}
