package app

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"likertlab/domain/core"
	"likertlab/domain/dataset"
	"likertlab/domain/stage"
	"likertlab/internal"
	"likertlab/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var (
	graphRatings   = []int{7, 8, 6, 9, 7, 8, 5, 9, 8, 7, 6, 8, 9, 7}
	noGraphRatings = []int{6, 7, 5, 8, 6, 4, 7, 6, 5, 8, 7, 6, 5, 9}
)

func writeSurvey(t *testing.T) string {
	t.Helper()
	var b strings.Builder
	b.WriteString("Experiment,Condition,Effectiveness,comment\n")
	for i := range graphRatings {
		fmt.Fprintf(&b, "1,graph,%d,\n", graphRatings[i])
		fmt.Fprintf(&b, "1,no_graph,%d,\n", noGraphRatings[i])
		fmt.Fprintf(&b, "2,graph,%d,other experiment\n", 1+i%9)
	}
	path := filepath.Join(t.TempDir(), "survey.csv")
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o644))
	return path
}

func fullRequest(path string) AnalysisRequest {
	return AnalysisRequest{
		DataFile:        path,
		Experiment:      1,
		ConfidenceLevel: 0.95,
		Plan:            stage.FullPlan(),
	}
}

func TestAnalysisService_FullRun(t *testing.T) {
	service := NewAnalysisService(internal.DiscardLogger())

	report, err := service.Run(context.Background(), fullRequest(writeSurvey(t)))
	require.NoError(t, err)

	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, 28, report.NObs)
	assert.Equal(t, []dataset.Condition{"graph", "no_graph"}, report.Levels)
	require.NotNil(t, report.Summary)
	assert.Equal(t, 28, report.Summary.CountTotal())
	require.NotNil(t, report.Contingency)

	require.NotNil(t, report.RankSum)
	assert.Equal(t, 55.0, report.RankSum.Statistic)
	assert.Equal(t, "no_graph - graph", report.RankSum.Orientation())
	assert.InDelta(t, 0.046262, report.RankSum.PValue, 1e-6)
	assert.InDelta(t, -1.0, report.RankSum.Estimate, 1e-3)
	assert.InDelta(t, -2.0001, report.RankSum.CI.Lower, 1e-3)
	assert.InDelta(t, 0.0, report.RankSum.CI.Upper, 1e-3)

	require.NotNil(t, report.TTest)
	assert.Equal(t, "Welch Two Sample t-test", report.TTest.Method)
	assert.InDelta(t, -2.16333, report.TTest.Statistic, 1e-5)
	assert.InDelta(t, 25.5705, report.TTest.DF, 1e-4)
	assert.InDelta(t, 0.040052, report.TTest.PValue, 1e-6)
	assert.InDelta(t, -1.071429, report.TTest.Estimate, 1e-6)
	assert.InDelta(t, -2.09030, report.TTest.CI.Lower, 1e-4)
	assert.InDelta(t, -0.05256, report.TTest.CI.Upper, 1e-4)

	require.NotNil(t, report.Ordinal)
	assert.InDelta(t, -1.46948, report.Ordinal.Model.Coefficients[0].Estimate, 1e-5)

	assert.Zero(t, report.Stages.Overall.Failed)
	assert.Equal(t, 5, report.Stages.Overall.TotalStages)
	assert.Equal(t, stage.StageLoad, report.Stages.Results[0].StageName)
	assert.Equal(t, stage.StageKindInput, report.Stages.Results[0].Kind)
	assert.Equal(t, stage.StageKindStats, report.Stages.Results[4].Kind)
	assert.Contains(t, report.Stages.Results[2].Warnings, "cannot compute exact p-value with ties")
	assert.Len(t, report.Fingerprint.String(), 64)
}

// On clearly shifted data the ordinal LR test and the rank-sum test
// should agree to within an order of magnitude.
func TestAnalysisService_ShiftedDataTestsAgree(t *testing.T) {
	ds, err := dataset.FromGroups(1, "inline", map[dataset.Condition][]int{
		"graph":    repeatRatings([]int{2, 3, 3, 4, 4, 5, 5, 6}, 3),
		"no_graph": repeatRatings([]int{4, 5, 5, 6, 6, 7, 7, 8}, 3),
	})
	require.NoError(t, err)

	loader := new(MockDatasetLoader)
	loader.On("Load", mock.Anything, 1).Return(ds, nil)
	service := NewAnalysisService(internal.DiscardLogger(),
		WithLoaderFactory(func(string, string, *internal.Logger) DatasetLoader { return loader }))

	req := fullRequest("inline.csv")
	req.Plan = stage.NewStagePlan(stage.StageRankSum, stage.StageOrdinal)
	report, err := service.Run(context.Background(), req)
	require.NoError(t, err)

	pRankSum := report.RankSum.PValue
	pLR := report.Ordinal.Anova.Rows[0].PValue
	assert.InDelta(t, 1.494e-5, pRankSum, 1e-7)
	assert.InDelta(t, 2.947e-6, pLR, 1e-8)
	assert.LessOrEqual(t, math.Abs(math.Log10(pLR)-math.Log10(pRankSum)), 1.0)
	assert.Greater(t, report.RankSum.Estimate, 0.0)
	assert.Greater(t, report.Ordinal.Model.Coefficients[0].Estimate, 0.0)
}

func TestAnalysisService_SeparatedDataFailsOrdinalStage(t *testing.T) {
	ds, err := dataset.FromGroups(1, "inline", map[dataset.Condition][]int{
		"graph":    repeatRatings([]int{1, 2, 3}, 5),
		"no_graph": repeatRatings([]int{7, 8, 9}, 5),
	})
	require.NoError(t, err)

	loader := new(MockDatasetLoader)
	loader.On("Load", mock.Anything, 1).Return(ds, nil)
	var logs bytes.Buffer
	service := NewAnalysisService(internal.NewLogger(internal.LogLevelWarn, &logs),
		WithLoaderFactory(func(string, string, *internal.Logger) DatasetLoader { return loader }))

	report, err := service.Run(context.Background(), fullRequest("inline.csv"))
	require.Error(t, err)
	assert.Nil(t, report)
	assert.Equal(t, errors.CodeConvergence, errors.GetCode(err))
	assert.Equal(t, stage.StageOrdinal, errors.GetStage(err))
	assert.ErrorIs(t, err, core.ErrSeparation)
	assert.Contains(t, logs.String(), "stopped at stage ordinal with CONVERGENCE_ERROR")
}

func repeatRatings(values []int, times int) []int {
	var out []int
	for i := 0; i < times; i++ {
		out = append(out, values...)
	}
	return out
}

func TestAnalysisService_Idempotent(t *testing.T) {
	service := NewAnalysisService(internal.DiscardLogger())
	req := fullRequest(writeSurvey(t))

	first, err := service.Run(context.Background(), req)
	require.NoError(t, err)
	second, err := service.Run(context.Background(), req)
	require.NoError(t, err)

	assert.NotEqual(t, first.RunID, second.RunID)
	assert.Equal(t, first.Fingerprint, second.Fingerprint)

	req.EqualVariance = true
	pooled, err := service.Run(context.Background(), req)
	require.NoError(t, err)
	assert.NotEqual(t, first.Fingerprint, pooled.Fingerprint)
}

func TestAnalysisService_PartialPlan(t *testing.T) {
	service := NewAnalysisService(internal.DiscardLogger())
	req := fullRequest(writeSurvey(t))
	req.Plan = stage.NewStagePlan(stage.StageTTest)

	report, err := service.Run(context.Background(), req)
	require.NoError(t, err)

	assert.Nil(t, report.Summary)
	assert.Nil(t, report.RankSum)
	assert.Nil(t, report.Ordinal)
	require.NotNil(t, report.TTest)
	assert.Equal(t, 2, report.Stages.Overall.TotalStages)
}

func TestAnalysisService_StageErrors(t *testing.T) {
	service := NewAnalysisService(internal.DiscardLogger())
	path := writeSurvey(t)

	req := fullRequest(path)
	req.Experiment = 7
	_, err := service.Run(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, errors.CodeFilterError, errors.GetCode(err))
	assert.Equal(t, stage.StageLoad, errors.GetStage(err))
	assert.True(t, core.IsFilterError(err))

	// experiment 2 has a single condition level
	req.Experiment = 2
	_, err = service.Run(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, errors.CodeDegenerateSample, errors.GetCode(err))
	assert.Equal(t, stage.StageRankSum, errors.GetStage(err))

	_, err = service.Run(context.Background(), fullRequest(filepath.Join(t.TempDir(), "missing.csv")))
	require.Error(t, err)
	assert.Equal(t, errors.CodeParseError, errors.GetCode(err))
}

func TestAnalysisService_InvalidRequest(t *testing.T) {
	service := NewAnalysisService(internal.DiscardLogger())

	req := fullRequest("survey.csv")
	req.ConfidenceLevel = 1
	_, err := service.Run(context.Background(), req)
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))

	req = fullRequest("survey.csv")
	req.Plan = stage.StagePlan{Stages: []stage.StageName{stage.StageOrdinal}}
	_, err = service.Run(context.Background(), req)
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))

	_, err = service.Run(context.Background(), fullRequest(""))
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
}

// MockDatasetLoader is a mock implementation of DatasetLoader
type MockDatasetLoader struct {
	mock.Mock
}

func (m *MockDatasetLoader) Load(ctx context.Context, experiment int) (*dataset.Dataset, error) {
	args := m.Called(ctx, experiment)
	ds, _ := args.Get(0).(*dataset.Dataset)
	return ds, args.Error(1)
}

func TestAnalysisService_CustomLoader(t *testing.T) {
	ds, err := dataset.FromGroups(3, "memory", map[dataset.Condition][]int{
		"graph":    {4, 5, 6},
		"no_graph": {1, 2, 3},
	})
	require.NoError(t, err)

	loader := new(MockDatasetLoader)
	loader.On("Load", mock.Anything, 3).Return(ds, nil).Once()

	service := NewAnalysisService(internal.DiscardLogger(), WithLoaderFactory(
		func(path, sheet string, _ *internal.Logger) DatasetLoader {
			assert.Equal(t, "memory", path)
			assert.Equal(t, "Responses", sheet)
			return loader
		}))

	req := fullRequest("memory")
	req.Sheet = "Responses"
	req.Experiment = 3
	req.Plan = stage.NewStagePlan(stage.StageRankSum)
	report, err := service.Run(context.Background(), req)
	require.NoError(t, err)

	assert.True(t, report.RankSum.Exact)
	assert.Equal(t, -3.0, report.RankSum.Estimate)
	assert.Equal(t, "Responses", report.Sheet)
	loader.AssertExpectations(t)
}

func TestAnalysisService_CancelledContext(t *testing.T) {
	service := NewAnalysisService(internal.DiscardLogger())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := service.Run(ctx, fullRequest(writeSurvey(t)))
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, stage.StageLoad, errors.GetStage(err))
}
