package linsolve

// Permutation records where each variable went during column pivoting:
// p[k] is the original index of the variable now in position k.
type Permutation []int

// Identity returns the permutation that leaves n variables in place.
func Identity(n int) Permutation {
	p := make(Permutation, n)
	for i := range p {
		p[i] = i
	}
	return p
}

// Swap exchanges positions i and j.
func (p Permutation) Swap(i, j int) {
	p[i], p[j] = p[j], p[i]
}

// Apply gathers v into permuted order: out[k] = v[p[k]].
func (p Permutation) Apply(v []float64) []float64 {
	out := make([]float64, len(p))
	for k, orig := range p {
		out[k] = v[orig]
	}
	return out
}

// Scatter is the inverse of Apply: out[p[k]] = v[k].
func (p Permutation) Scatter(v []float64) []float64 {
	out := make([]float64, len(p))
	for k, orig := range p {
		out[orig] = v[k]
	}
	return out
}

// Inverse returns q such that q[p[k]] = k.
func (p Permutation) Inverse() Permutation {
	q := make(Permutation, len(p))
	for k, orig := range p {
		q[orig] = k
	}
	return q
}
