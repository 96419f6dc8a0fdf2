// Package vecmath provides small vector primitives used by the hot path of
// the CFR and MCCFR kernels, sized for the short, fixed-width regret/strategy
// vectors the kernels operate on (length <= MaxPlayerActions). All of them
// work in place except Uniform, which allocates its result.
package vecmath

// AddConst adds alpha to every element of x in place.
func AddConst(alpha float64, x []float64) {
	for i := range x {
		x[i] += alpha
	}
}

// ScalUnitary scales every element of x by alpha in place.
func ScalUnitary(alpha float64, x []float64) {
	for i := range x {
		x[i] *= alpha
	}
}

// ScalUnitaryTo writes alpha*x[i] into dst.
func ScalUnitaryTo(dst []float64, alpha float64, x []float64) {
	for i, v := range x {
		dst[i] = alpha * v
	}
}

// Add adds s element-wise into dst.
func Add(dst, s []float64) {
	for i, v := range s {
		dst[i] += v
	}
}

// Sum returns the sum of x's elements.
func Sum(x []float64) float64 {
	var total float64
	for _, v := range x {
		total += v
	}
	return total
}

// DotUnitary returns the dot product of x and y.
func DotUnitary(x, y []float64) float64 {
	var total float64
	for i, v := range x {
		total += v * y[i]
	}
	return total
}

// MakePositive clamps every negative element of v to zero, in place.
func MakePositive(v []float64) {
	for i := range v {
		if v[i] < 0 {
			v[i] = 0
		}
	}
}

// Uniform returns the uniform distribution over n outcomes.
func Uniform(n int) []float64 {
	result := make([]float64, n)
	p := 1.0 / float64(n)
	for i := range result {
		result[i] = p
	}
	return result
}
