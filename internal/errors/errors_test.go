package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"likertlab/domain/core"
	"likertlab/domain/stage"

	"github.com/stretchr/testify/assert"
)

func TestInStage_ClassifiesDomainErrors(t *testing.T) {
	tests := []struct {
		name  string
		stage stage.StageName
		cause error
		code  string
	}{
		{"parse", stage.StageLoad, core.NewMissingColumnError("experiment"), CodeParseError},
		{"filter", stage.StageLoad, core.NewNoMatchingRowError(9), CodeFilterError},
		{"degenerate", stage.StageTTest, core.ErrConstantData, CodeDegenerateSample},
		{"convergence", stage.StageOrdinal, core.ErrSingularHessian, CodeConvergence},
		{"other", stage.StageSummarize, fmt.Errorf("disk on fire"), CodeInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := InStage(tt.stage, tt.cause)

			assert.Equal(t, tt.code, GetCode(err))
			assert.Equal(t, tt.stage, GetStage(err))
			assert.True(t, stderrors.Is(err, tt.cause), "cause must stay in the chain")
			assert.Contains(t, err.Error(), "["+string(tt.stage)+"]")
		})
	}
}

func TestInStage_NilAndIdempotent(t *testing.T) {
	assert.NoError(t, InStage(stage.StageLoad, nil))

	first := InStage(stage.StageOrdinal, core.ErrConvergence)
	second := InStage(stage.StageOrdinal, first)
	assert.Same(t, first, second)
}

func TestWrap_PreservesCodeAndStage(t *testing.T) {
	inner := InStage(stage.StageRankSum, core.ErrEmptyGroup)
	outer := Wrap(inner, "analysis failed")

	assert.Equal(t, CodeDegenerateSample, GetCode(outer))
	assert.Equal(t, stage.StageRankSum, GetStage(outer))
	assert.True(t, core.IsDegenerateSampleError(outer))
	assert.Nil(t, Wrap(nil, "nothing"))
	assert.Nil(t, Wrapf(nil, "nothing %d", 1))
}

func TestWithCodeAndConstructors(t *testing.T) {
	err := WithCode(CodeInvalidInput, fmt.Errorf("bad flag"))
	assert.Equal(t, CodeInvalidInput, GetCode(err))
	assert.True(t, IsAppError(err))

	assert.Equal(t, CodeConfigInvalid, ConfigInvalid("x").Code)
	assert.Equal(t, "UNKNOWN", GetCode(fmt.Errorf("plain")))
	assert.Equal(t, stage.StageName(""), GetStage(fmt.Errorf("plain")))
}
