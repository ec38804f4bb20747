package ordinal

import (
	"fmt"
	"math"

	domainStats "likertlab/domain/stats"
)

// anova is the Type III likelihood-ratio table. With one term, dropping it leaves
// the thresholds-only model.
func (f *Fitter) anova(full *fit) (*domainStats.AnovaTable, error) {
	cells := full.cells
	j := cells.thresholds()

	start := cells.startValues()
	start[j] = 0
	null, err := cells.maximize(start, j, f.control)
	if err != nil {
		return nil, fmt.Errorf("fit thresholds-only model: %w", err)
	}

	lr := math.Max(0, 2*(full.optimum.logLik-null.logLik))
	wald := (full.beta / full.betaSE) * (full.beta / full.betaSE)

	f.logger.Debug("null logLik=%.6f full logLik=%.6f LR=%.6f", null.logLik, full.optimum.logLik, lr)

	return &domainStats.AnovaTable{
		Type:       "III",
		NullLogLik: null.logLik,
		Rows: []domainStats.AnovaRow{{
			Term:       ConditionTerm,
			DF:         1,
			LRChisq:    lr,
			PValue:     f.dist.ChiSquarePValue(lr, 1),
			WaldChisq:  wald,
			WaldPValue: f.dist.ChiSquarePValue(wald, 1),
		}},
	}, nil
}
