package ml

import (
	"log/slog"
	"math"
)

const (
	maxInnerIterations = 100
	initialInnerEps    = 1e-2
	minInnerEps        = 1e-8
)

// LinearWeights is a fitted linear decision function w·x + b.
type LinearWeights struct {
	Weights []float64
	Bias    float64
}

func (lw LinearWeights) Score(x SparseVector) float64 {
	return x.Dot(lw.Weights) + lw.Bias
}

// TrainLogisticSDCA fits an L2-regularized logistic regression with dual
// coordinate ascent. Each epoch visits the examples in a permutation drawn from
// the context seed; the bias is modelled as a constant feature with value 1.
//
// Every dual variable alpha_i lives in (0, C) with C = 1/(L2*n), and the
// primal solution is w = sum_i y_i alpha_i x_i. The one-dimensional subproblem
// for a coordinate is solved with a safeguarded Newton iteration.
func TrainLogisticSDCA(ctx Context, xs []SparseVector, labels []bool, dim int) LinearWeights {
	opts := ctx.trainerOptions()
	n := len(xs)
	weights := LinearWeights{Weights: make([]float64, dim)}
	if n == 0 {
		return weights
	}

	c := 1 / (opts.L2 * float64(n))
	alpha := make([]float64, 2*n)
	xsq := make([]float64, n)
	y := make([]float64, n)

	initial := math.Min(0.001*c, 1e-8)
	for i := range xs {
		y[i] = -1
		if labels[i] {
			y[i] = 1
		}
		xsq[i] = xs[i].SquaredNorm() + 1
		alpha[2*i] = initial
		alpha[2*i+1] = c - initial
		weights.add(xs[i], y[i]*initial)
	}

	rng := ctx.rng()
	innerEps := initialInnerEps
	iter := 0
	for ; iter < opts.MaxIterations; iter++ {
		gmax := 0.0
		newtonIterations := 0

		for _, i := range rng.Perm(n) {
			a := xsq[i]
			b := y[i] * weights.Score(xs[i])

			ind1, ind2, sign := 2*i, 2*i+1, 1.0
			if 0.5*a*(alpha[ind2]-alpha[ind1])+b < 0 {
				ind1, ind2, sign = 2*i+1, 2*i, -1.0
			}

			alphaOld := alpha[ind1]
			z := alphaOld
			if c-z < 0.5*c {
				z = 0.1 * z
			}
			gp := a*(z-alphaOld) + sign*b + math.Log(z/(c-z))
			gmax = math.Max(gmax, math.Abs(gp))

			inner := 0
			for inner <= maxInnerIterations {
				if math.Abs(gp) < innerEps {
					break
				}
				gpp := a + c/(c-z)/z
				next := z - gp/gpp
				switch {
				case next <= 0:
					z *= 0.1
				case next >= c:
					z = 0.5 * (z + c)
				default:
					z = next
				}
				gp = a*(z-alphaOld) + sign*b + math.Log(z/(c-z))
				inner++
			}

			if inner > 0 {
				alpha[ind1] = z
				alpha[ind2] = c - z
				weights.add(xs[i], sign*(z-alphaOld)*y[i])
			}
			newtonIterations += inner
		}

		if gmax < opts.Tolerance {
			break
		}
		if newtonIterations <= n/10 {
			innerEps = math.Max(minInnerEps, 0.1*innerEps)
		}
	}

	ctx.logger().Debug("[SDCA] Training finished",
		slog.Int("epochs", iter),
		slog.Int("examples", n),
		slog.Float64("c", c))

	return weights
}

func (lw *LinearWeights) add(x SparseVector, scale float64) {
	for i, idx := range x.Indices {
		lw.Weights[idx] += scale * x.Values[i]
	}
	lw.Bias += scale
}

// Sigmoid is the numerically stable logistic function.
func Sigmoid(z float64) float64 {
	if z >= 0 {
		return 1 / (1 + math.Exp(-z))
	}
	e := math.Exp(z)
	return e / (1 + e)
}
