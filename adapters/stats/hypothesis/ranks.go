package hypothesis

import "sort"

// midRanks ranks values 1..n, giving tied values the mean of their positions.
// It also returns sum(t^3 - t) over tie groups of size t.
func midRanks(values []float64) ([]float64, float64) {
	order := make([]int, len(values))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return values[order[a]] < values[order[b]] })

	ranks := make([]float64, len(values))
	tieTerm := 0.0
	for start := 0; start < len(order); {
		end := start + 1
		for end < len(order) && values[order[end]] == values[order[start]] {
			end++
		}
		// positions start+1..end share the rank (start+1+end)/2
		rank := float64(start+1+end) / 2
		for k := start; k < end; k++ {
			ranks[order[k]] = rank
		}
		t := float64(end - start)
		tieTerm += t*t*t - t
		start = end
	}
	return ranks, tieTerm
}

// rankSumW returns W = sum(ranks of x in c(x, y)) - nx(nx+1)/2 and the tie term
func rankSumW(x, y []float64) (float64, float64) {
	combined := make([]float64, 0, len(x)+len(y))
	combined = append(combined, x...)
	combined = append(combined, y...)

	ranks, tieTerm := midRanks(combined)
	sum := 0.0
	for i := range x {
		sum += ranks[i]
	}
	nx := float64(len(x))
	return sum - nx*(nx+1)/2, tieTerm
}
