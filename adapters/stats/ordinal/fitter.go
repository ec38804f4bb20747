package ordinal

import (
	"context"
	"fmt"
	"math"
	"time"

	"likertlab/domain/core"
	"likertlab/domain/dataset"
	domainStats "likertlab/domain/stats"
	"likertlab/internal"
	"likertlab/internal/analysis"

	"gonum.org/v1/gonum/mat"
)

const (
	// ConditionTerm is the model term for the condition factor
	ConditionTerm = "condition"

	linkLogit = "logit"

	ciMethodProfile = "profile"
	ciMethodWald    = "wald"
)

// Fitter fits the proportional-odds model effectiveness ~ condition and
// derives the ANOVA table, marginal means and class predictions.
type Fitter struct {
	control   Control
	confLevel float64
	dist      *analysis.Distributions
	logger    *internal.Logger
}

// Option configures a Fitter
type Option func(*Fitter)

// WithControl overrides the Newton-Raphson settings
func WithControl(ctl Control) Option {
	return func(f *Fitter) {
		f.control = ctl
	}
}

// WithConfidenceLevel sets the level of every reported interval
func WithConfidenceLevel(level float64) Option {
	return func(f *Fitter) {
		f.confLevel = level
	}
}

// NewFitter creates a new ordinal regression fitter
func NewFitter(logger *internal.Logger, opts ...Option) *Fitter {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	f := &Fitter{
		control:   DefaultControl(),
		confLevel: domainStats.DefaultConfidenceLevel,
		dist:      analysis.NewDistributions(),
		logger:    logger.With("ordinal"),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// fit is the converged full model with its covariance
type fit struct {
	cells    *cellCounts
	optimum  *optimum
	cov      *mat.SymDense
	beta     float64
	betaSE   float64
	termName string
}

// Fit runs the full ordinal analysis on a two-level dataset
func (f *Fitter) Fit(ctx context.Context, ds *dataset.Dataset) (*domainStats.OrdinalAnalysis, error) {
	start := time.Now()

	cells, err := newCellCounts(ds)
	if err != nil {
		return nil, err
	}
	if err := cells.checkSeparation(); err != nil {
		return nil, err
	}

	full, err := f.fitFull(cells)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	model, err := f.buildModel(full)
	if err != nil {
		return nil, err
	}

	anova, err := f.anova(full)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	coefCI, err := f.coefficientCI(full)
	if err != nil {
		return nil, err
	}
	model.Coefficients[0].CI = coefCI
	model.Coefficients[0].CIMethod = ciMethodProfile

	analysisResult := &domainStats.OrdinalAnalysis{
		Model:         *model,
		Anova:         *anova,
		MarginalMeans: f.marginalMeans(full),
		Predictions:   predictions(full),
	}

	f.logger.Info("clm %s: beta=%.4f (SE %.4f) logLik=%.4f LR p=%.4g iterations=%d (%dms)",
		full.termName, full.beta, full.betaSE, full.optimum.logLik, anova.Rows[0].PValue,
		full.optimum.iterations, core.Since(start))
	return analysisResult, nil
}

func (f *Fitter) fitFull(cells *cellCounts) (*fit, error) {
	j := cells.thresholds()
	opt, err := cells.maximize(cells.startValues(), j+1, f.control)
	if err != nil {
		return nil, fmt.Errorf("fit cumulative link model: %w", err)
	}
	cov, err := covariance(opt.info)
	if err != nil {
		return nil, fmt.Errorf("fit cumulative link model: %w", err)
	}
	return &fit{
		cells:    cells,
		optimum:  opt,
		cov:      cov,
		beta:     opt.params[j],
		betaSE:   math.Sqrt(cov.At(j, j)),
		termName: ConditionTerm + string(cells.comparison),
	}, nil
}

func (f *Fitter) buildModel(full *fit) (*domainStats.OrdinalModel, error) {
	cells := full.cells
	j := cells.thresholds()
	opt := full.optimum

	cond := conditionNumber(opt.info)
	if math.IsInf(cond, 0) || math.IsNaN(cond) {
		return nil, fmt.Errorf("%w: information matrix eigenvalues are not positive", core.ErrSingularHessian)
	}
	if cond > 1e8 {
		f.logger.Warn("model is nearly unidentifiable: hessian condition number %.3g", cond)
	}

	z := f.dist.ZCritical(f.confLevel)
	model := &domainStats.OrdinalModel{
		Link:            linkLogit,
		Baseline:        cells.reference,
		NObs:            cells.n,
		LogLik:          opt.logLik,
		AIC:             -2*opt.logLik + 2*float64(j+1),
		Iterations:      opt.iterations,
		MaxGradient:     opt.maxGrad,
		ConditionNumber: cond,
	}

	for k := 0; k < j; k++ {
		est := opt.params[k]
		se := math.Sqrt(full.cov.At(k, k))
		model.Thresholds = append(model.Thresholds, domainStats.Threshold{
			Label:    cells.thresholdLabel(k),
			Below:    cells.categories[k],
			Above:    cells.categories[k+1],
			Estimate: est,
			StdError: se,
			CI:       domainStats.ConfidenceInterval{Lower: est - z*se, Upper: est + z*se, Level: f.confLevel},
		})
	}

	zValue := full.beta / full.betaSE
	model.Coefficients = []domainStats.Coefficient{{
		Term:     full.termName,
		Level:    cells.comparison,
		Estimate: full.beta,
		StdError: full.betaSE,
		ZValue:   zValue,
		PValue:   f.dist.TwoSidedNormalPValue(zValue),
		CI: domainStats.ConfidenceInterval{
			Lower: full.beta - z*full.betaSE,
			Upper: full.beta + z*full.betaSE,
			Level: f.confLevel,
		},
		CIMethod: ciMethodWald,
	}}

	dim := j + 1
	model.Vcov = make([][]float64, dim)
	for a := 0; a < dim; a++ {
		model.Vcov[a] = make([]float64, dim)
		for b := 0; b < dim; b++ {
			model.Vcov[a][b] = full.cov.At(a, b)
		}
	}
	return model, nil
}

// coefficientCI returns the profile-likelihood interval for beta. A bound that
// cannot be bracketed means the likelihood is flat in that direction.
func (f *Fitter) coefficientCI(full *fit) (domainStats.ConfidenceInterval, error) {
	lower, upper, err := f.profileCI(full)
	if err != nil {
		return domainStats.ConfidenceInterval{}, fmt.Errorf("%w: profile likelihood interval for %s: %v",
			core.ErrConvergence, full.termName, err)
	}
	return domainStats.ConfidenceInterval{Lower: lower, Upper: upper, Level: f.confLevel}, nil
}
