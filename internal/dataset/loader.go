package dataset

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"likertlab/adapters/excel"
	"likertlab/domain/core"
	domainDataset "likertlab/domain/dataset"
	"likertlab/internal"
	"likertlab/ports"
)

// Required input columns
const (
	ColumnExperiment    = "experiment"
	ColumnCondition     = "condition"
	ColumnEffectiveness = "effectiveness"
)

var requiredColumns = []string{ColumnExperiment, ColumnCondition, ColumnEffectiveness}

// Loader turns a raw table into a typed, filtered Dataset
type Loader struct {
	reader ports.TableReader
	logger *internal.Logger
}

// NewLoader creates a loader over any table reader
func NewLoader(reader ports.TableReader, logger *internal.Logger) *Loader {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Loader{reader: reader, logger: logger.With("loader")}
}

// NewFileLoader creates a loader for a CSV, TSV or XLSX file
func NewFileLoader(path string, logger *internal.Logger, opts ...excel.ReaderOption) *Loader {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	opts = append([]excel.ReaderOption{excel.WithLogger(logger)}, opts...)
	return NewLoader(excel.NewDataReader(path, opts...), logger)
}

// typedRow is a row that passed type coercion
type typedRow struct {
	line          int
	experiment    int
	condition     string
	effectiveness int
}

// Load reads the source, enforces column types, keeps rows of one experiment and
// assigns sequential participant ids in file order.
func (l *Loader) Load(ctx context.Context, experiment int) (*domainDataset.Dataset, error) {
	start := time.Now()

	table, err := l.reader.ReadTable(ctx)
	if err != nil {
		return nil, err
	}

	columns, err := resolveColumns(table.Headers)
	if err != nil {
		return nil, err
	}

	rows := make([]typedRow, 0, len(table.Rows))
	for _, raw := range table.Rows {
		row, err := coerceRow(raw, columns)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}

	kept := make([]typedRow, 0, len(rows))
	for _, row := range rows {
		if row.experiment == experiment {
			kept = append(kept, row)
		}
	}
	if len(kept) == 0 {
		return nil, core.NewNoMatchingRowError(experiment)
	}

	width := core.ParticipantWidth(len(kept))
	observations := make([]domainDataset.Observation, len(kept))
	for i, row := range kept {
		if row.effectiveness < domainDataset.MinRating || row.effectiveness > domainDataset.MaxRating {
			return nil, core.NewBadValueError(row.line, ColumnEffectiveness, strconv.Itoa(row.effectiveness),
				fmt.Sprintf("must lie in [%d,%d]", domainDataset.MinRating, domainDataset.MaxRating))
		}
		observations[i] = domainDataset.Observation{
			ParticipantID: core.NewParticipantID(i+1, width),
			Condition:     domainDataset.Condition(row.condition),
			Effectiveness: row.effectiveness,
		}
	}

	ds, err := domainDataset.New(experiment, table.Source, observations)
	if err != nil {
		return nil, err
	}

	l.logger.Info("experiment %d: kept %d of %d rows, levels %v (%dms)",
		experiment, ds.Len(), len(rows), ds.Levels(), core.Since(start))
	return ds, nil
}

// resolveColumns maps required column names onto header names, case-insensitively.
// A required column matched by two headers is ambiguous.
func resolveColumns(headers []string) (map[string]string, error) {
	byLower := make(map[string][]int, len(headers))
	for i, h := range headers {
		key := strings.ToLower(strings.TrimSpace(h))
		byLower[key] = append(byLower[key], i)
	}

	columns := make(map[string]string, len(requiredColumns))
	for _, name := range requiredColumns {
		matches := byLower[name]
		switch len(matches) {
		case 0:
			return nil, core.NewMissingColumnError(name)
		case 1:
			columns[name] = headers[matches[0]]
		default:
			return nil, core.NewDuplicateColumnError(name, matches[0]+1, matches[1]+1)
		}
	}
	return columns, nil
}

func coerceRow(raw ports.RawRow, columns map[string]string) (typedRow, error) {
	expText := raw.Cells[columns[ColumnExperiment]]
	experiment, err := strconv.Atoi(expText)
	if err != nil {
		return typedRow{}, core.NewBadValueError(raw.Line, ColumnExperiment, expText, "not an integer")
	}

	condition := raw.Cells[columns[ColumnCondition]]
	if condition == "" {
		return typedRow{}, core.NewBadValueError(raw.Line, ColumnCondition, condition, "missing value")
	}

	effText := raw.Cells[columns[ColumnEffectiveness]]
	effectiveness, err := strconv.Atoi(effText)
	if err != nil {
		return typedRow{}, core.NewBadValueError(raw.Line, ColumnEffectiveness, effText, "not an integer")
	}

	return typedRow{
		line:          raw.Line,
		experiment:    experiment,
		condition:     condition,
		effectiveness: effectiveness,
	}, nil
}
