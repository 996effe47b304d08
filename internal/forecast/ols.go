package forecast

// Regression holds the closed-form ordinary least-squares fit of a
// single-variable linear model y = Slope*x + Intercept.
type Regression struct {
	Slope     float64
	Intercept float64
	RSquared  float64
}

// FitOLS fits slope and intercept minimising squared residuals over the
// paired samples. The caller guarantees len(xs) == len(ys) >= 2.
// RSquared is clamped into [0, 1]; a series with zero variance in y is
// reproduced exactly by the zero-slope line, so its RSquared is 1.
func FitOLS(xs, ys []float64) Regression {
	n := float64(len(xs))

	var sumX, sumY float64
	for i := range xs {
		sumX += xs[i]
		sumY += ys[i]
	}
	meanX := sumX / n
	meanY := sumY / n

	var covXY, varX float64
	for i := range xs {
		dx := xs[i] - meanX
		covXY += dx * (ys[i] - meanY)
		varX += dx * dx
	}

	var reg Regression
	if varX == 0 {
		// Degenerate time axis; a flat line through the mean is the
		// least-squares answer.
		reg.Intercept = meanY
		reg.RSquared = 1
		return reg
	}

	reg.Slope = covXY / varX
	reg.Intercept = meanY - reg.Slope*meanX

	var ssRes, ssTot float64
	for i := range xs {
		fitted := reg.Slope*xs[i] + reg.Intercept
		ssRes += (ys[i] - fitted) * (ys[i] - fitted)
		dy := ys[i] - meanY
		ssTot += dy * dy
	}

	if ssTot == 0 {
		reg.RSquared = 1
		return reg
	}

	r2 := 1 - ssRes/ssTot
	if r2 < 0 {
		r2 = 0
	}
	if r2 > 1 {
		r2 = 1
	}
	reg.RSquared = r2
	return reg
}
