package hypothesis

// wilcoxonDistribution is the exact null distribution of the rank-sum statistic
// W = sum(ranks(x)) - m(m+1)/2 for samples of size m and n without ties.
type wilcoxonDistribution struct {
	m, n   int
	counts []float64 // counts[w] = number of rank assignments giving W = w
	total  float64   // choose(m+n, m)
}

// newWilcoxonDistribution enumerates the counts by adding ranks 1..m+n one at a
// time. Choosing rank i+1 as the (j+1)-th member of x raises W by i-j, and W never
// decreases, so partial sums above m*n are dropped.
func newWilcoxonDistribution(m, n int) *wilcoxonDistribution {
	maxW := m * n
	dp := make([][]float64, m+1)
	for j := range dp {
		dp[j] = make([]float64, maxW+1)
	}
	dp[0][0] = 1

	for i := 0; i < m+n; i++ {
		for j := min(i, m-1); j >= 0; j-- {
			shift := i - j
			for w := maxW - shift; w >= 0; w-- {
				if dp[j][w] != 0 {
					dp[j+1][w+shift] += dp[j][w]
				}
			}
		}
	}

	d := &wilcoxonDistribution{m: m, n: n, counts: dp[m]}
	for _, c := range d.counts {
		d.total += c
	}
	return d
}

// CDF returns P(W <= q)
func (d *wilcoxonDistribution) CDF(q int) float64 {
	if q < 0 {
		return 0
	}
	if q >= len(d.counts)-1 {
		return 1
	}
	sum := 0.0
	for w := 0; w <= q; w++ {
		sum += d.counts[w]
	}
	return sum / d.total
}

// Survival returns P(W >= q), summed from the upper tail
func (d *wilcoxonDistribution) Survival(q int) float64 {
	if q <= 0 {
		return 1
	}
	if q >= len(d.counts) {
		return 0
	}
	sum := 0.0
	for w := len(d.counts) - 1; w >= q; w-- {
		sum += d.counts[w]
	}
	return sum / d.total
}

// Quantile returns the smallest q with P(W <= q) >= p, using the same
// 10*eps fuzz as R's qwilcox.
func (d *wilcoxonDistribution) Quantile(p float64) int {
	const fuzz = 10 * 2.220446049250313e-16
	cum := 0.0
	if p <= 0.5 {
		p -= fuzz
		for q := 0; q < len(d.counts); q++ {
			cum += d.counts[q] / d.total
			if cum >= p {
				return q
			}
		}
		return len(d.counts) - 1
	}
	p = 1 - p + fuzz
	for q := 0; q < len(d.counts); q++ {
		cum += d.counts[q] / d.total
		if cum > p {
			return d.m*d.n - q
		}
	}
	return 0
}
