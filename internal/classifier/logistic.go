package classifier

import (
	"math"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/optimize"
)

// LogisticRegression is a fitted binary logistic model with L2
// regularization on the weights. The intercept is not regularized.
type LogisticRegression struct {
	Weights   []float64
	Intercept float64
}

// FitOptions tunes logistic regression fitting.
type FitOptions struct {
	// C is the inverse regularization strength. Default: 1.0.
	C float64
	// MaxIterations bounds the optimizer. Default: 100.
	MaxIterations int
	// GradientThreshold stops the optimizer once the gradient norm falls
	// below it. Default: 1e-6.
	GradientThreshold float64
}

func (o FitOptions) withDefaults() FitOptions {
	if o.C <= 0 {
		o.C = 1.0
	}
	if o.MaxIterations <= 0 {
		o.MaxIterations = 100
	}
	if o.GradientThreshold <= 0 {
		o.GradientThreshold = 1e-6
	}
	return o
}

// FitLogistic minimizes 0.5*||w||^2 + C * sum(logloss) with L-BFGS. Labels
// must be 0 or 1 and both classes must be present.
func FitLogistic(x [][]float64, y []int, opts FitOptions) (*LogisticRegression, error) {
	if len(x) == 0 || len(x) != len(y) {
		return nil, eris.Errorf("classifier: fit logistic: %d samples, %d labels", len(x), len(y))
	}
	dim := len(x[0])
	var positives int
	for i, row := range x {
		if len(row) != dim {
			return nil, eris.Errorf("classifier: fit logistic: sample %d has %d features, want %d", i, len(row), dim)
		}
		switch y[i] {
		case 0:
		case 1:
			positives++
		default:
			return nil, eris.Errorf("classifier: fit logistic: label %d is not binary", y[i])
		}
	}
	if positives == 0 || positives == len(y) {
		return nil, eris.New("classifier: fit logistic: both classes are required")
	}

	opts = opts.withDefaults()

	// params = [w_0 .. w_{dim-1}, b]
	problem := optimize.Problem{
		Func: func(params []float64) float64 {
			w, b := params[:dim], params[dim]
			loss := 0.5 * floats.Dot(w, w)
			for i, row := range x {
				z := floats.Dot(w, row) + b
				loss += opts.C * (softplus(z) - float64(y[i])*z)
			}
			return loss
		},
		Grad: func(grad, params []float64) {
			w, b := params[:dim], params[dim]
			copy(grad[:dim], w)
			grad[dim] = 0
			for i, row := range x {
				resid := opts.C * (sigmoid(floats.Dot(w, row)+b) - float64(y[i]))
				floats.AddScaled(grad[:dim], resid, row)
				grad[dim] += resid
			}
		},
	}

	settings := &optimize.Settings{
		GradientThreshold: opts.GradientThreshold,
		MajorIterations:   opts.MaxIterations,
	}
	result, err := optimize.Minimize(problem, make([]float64, dim+1), settings, &optimize.LBFGS{})
	if result == nil || !allFinite(result.X) {
		if err == nil {
			err = eris.New("non-finite solution")
		}
		return nil, eris.Wrap(err, "classifier: fit logistic")
	}
	if err != nil {
		// The objective is strictly convex, so the last iterate is still
		// usable when the line search gives up close to the optimum.
		zap.L().Debug("classifier: optimizer stopped early",
			zap.String("status", result.Status.String()),
			zap.Error(err),
		)
	}

	weights := make([]float64, dim)
	copy(weights, result.X[:dim])
	return &LogisticRegression{Weights: weights, Intercept: result.X[dim]}, nil
}

// Decision returns the linear score w·x + b.
func (m *LogisticRegression) Decision(x []float64) float64 {
	return floats.Dot(m.Weights, x) + m.Intercept
}

// Probability returns P(y=1 | x).
func (m *LogisticRegression) Probability(x []float64) float64 {
	return sigmoid(m.Decision(x))
}

func sigmoid(z float64) float64 {
	if z >= 0 {
		return 1 / (1 + math.Exp(-z))
	}
	e := math.Exp(z)
	return e / (1 + e)
}

// softplus computes ln(1+e^z) without overflow.
func softplus(z float64) float64 {
	if z > 0 {
		return z + math.Log1p(math.Exp(-z))
	}
	return math.Log1p(math.Exp(z))
}

func allFinite(xs []float64) bool {
	for _, v := range xs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
