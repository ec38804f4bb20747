package excel

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"likertlab/domain/core"
	"likertlab/internal"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func quietReader(path string, opts ...ReaderOption) *DataReader {
	return NewDataReader(path, append([]ReaderOption{WithLogger(internal.DiscardLogger())}, opts...)...)
}

func TestReadTable_CSV(t *testing.T) {
	path := writeFile(t, "survey.csv", "\ufeffexperiment, condition ,effectiveness\n1,graph,7\n\n1, no_graph ,5\n")

	table, err := quietReader(path).ReadTable(context.Background())
	require.NoError(t, err)

	assert.Equal(t, FileTypeCSV, table.Format)
	assert.Equal(t, []string{"experiment", "condition", "effectiveness"}, table.Headers)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, 2, table.Rows[0].Line)
	assert.Equal(t, 4, table.Rows[1].Line, "blank line must be skipped but counted")
	assert.Equal(t, "no_graph", table.Rows[1].Cells["condition"])
}

func TestReadTable_SniffsSemicolon(t *testing.T) {
	path := writeFile(t, "survey.csv", "experiment;condition;effectiveness\n2;graph;3\n")

	table, err := quietReader(path).ReadTable(context.Background())
	require.NoError(t, err)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, "3", table.Rows[0].Cells["effectiveness"])
}

func TestReadTable_TSVAndShortRows(t *testing.T) {
	path := writeFile(t, "survey.tsv", "experiment\tcondition\teffectiveness\n1\tgraph\n")

	table, err := quietReader(path).ReadTable(context.Background())
	require.NoError(t, err)
	assert.Equal(t, FileTypeTSV, table.Format)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, "", table.Rows[0].Cells["effectiveness"])
}

func TestReadTable_XLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "survey.xlsx")

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	rows := [][]interface{}{
		{"experiment", "condition", "effectiveness"},
		{1, "graph", 8},
		{1, "no_graph", 6},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	table, err := quietReader(path).ReadTable(context.Background())
	require.NoError(t, err)

	assert.Equal(t, FileTypeXLSX, table.Format)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "8", table.Rows[0].Cells["effectiveness"])
	assert.Equal(t, "no_graph", table.Rows[1].Cells["condition"])
	assert.Equal(t, 3, table.Rows[1].Line)
}

func TestReadTable_Errors(t *testing.T) {
	_, err := quietReader(filepath.Join(t.TempDir(), "missing.csv")).ReadTable(context.Background())
	assert.True(t, core.IsParseError(err), "missing file should be a parse error, got %v", err)

	empty := writeFile(t, "empty.csv", "")
	_, err = quietReader(empty).ReadTable(context.Background())
	assert.True(t, core.IsParseError(err), "empty file should be a parse error, got %v", err)

	notExcel := writeFile(t, "broken.xlsx", "not a zip archive")
	_, err = quietReader(notExcel).ReadTable(context.Background())
	assert.True(t, core.IsParseError(err), "corrupt workbook should be a parse error, got %v", err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = quietReader(empty).ReadTable(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestReadTable_DuplicateHeaders(t *testing.T) {
	path := writeFile(t, "survey.csv", "experiment,effectiveness,condition,effectiveness\n1,7,graph,3\n")

	table, err := quietReader(path).ReadTable(context.Background())
	require.Error(t, err)
	assert.Nil(t, table)
	assert.True(t, core.IsParseError(err), "duplicate header should be a parse error, got %v", err)
	assert.Contains(t, err.Error(), `"effectiveness" (columns 2 and 4)`)

	// unnamed trailing columns are not duplicates
	blanks := writeFile(t, "blanks.csv", "experiment,condition,effectiveness,,\n1,graph,7,,\n")
	table, err = quietReader(blanks).ReadTable(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "7", table.Rows[0].Cells["effectiveness"])
}

func TestDetectDelimiter(t *testing.T) {
	assert.Equal(t, ',', detectDelimiter("a,b,c\n1;2"))
	assert.Equal(t, ';', detectDelimiter("a;b;c"))
	assert.Equal(t, '\t', detectDelimiter("a\tb\tc\r\n"))
	assert.Equal(t, ',', detectDelimiter("single"))
}
