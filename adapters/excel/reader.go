package excel

import (
	"bufio"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"likertlab/domain/core"
	"likertlab/internal"
	"likertlab/ports"

	"github.com/xuri/excelize/v2"
)

// DataReader handles reading Excel and delimited text files
type DataReader struct {
	filePath string
	fileType string // "csv", "tsv" or "xlsx"
	sheet    string
	logger   *internal.Logger
}

var _ ports.TableReader = (*DataReader)(nil)

// ReaderOption customizes a DataReader
type ReaderOption func(*DataReader)

// WithSheet selects a worksheet by name; the first sheet is used otherwise
func WithSheet(name string) ReaderOption {
	return func(r *DataReader) { r.sheet = name }
}

// WithLogger sets the logger used for read diagnostics
func WithLogger(logger *internal.Logger) ReaderOption {
	return func(r *DataReader) { r.logger = logger }
}

// NewDataReader creates a new data reader that handles both Excel and delimited files
func NewDataReader(filePath string, opts ...ReaderOption) *DataReader {
	ext := strings.ToLower(filepath.Ext(filePath))
	fileType := FileTypeCSV
	switch ext {
	case ".xlsx", ".xlsm":
		fileType = FileTypeXLSX
	case ".tsv", ".tab":
		fileType = FileTypeTSV
	}

	r := &DataReader{filePath: filePath, fileType: fileType}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = internal.DefaultLogger
	}
	r.logger = r.logger.With("reader")
	return r
}

// ReadTable reads the file into an untyped table
func (r *DataReader) ReadTable(ctx context.Context) (*ports.RawTable, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.logger.Debug("starting to read %s file: %s", r.fileType, r.filePath)

	if _, err := os.Stat(r.filePath); err != nil {
		return nil, fmt.Errorf("%w: %s file not readable: %v", core.ErrParse, strings.ToUpper(r.fileType), err)
	}

	var rows [][]string
	var lines []int
	var err error
	readStart := time.Now()
	switch r.fileType {
	case FileTypeXLSX:
		rows, lines, err = r.readExcelRows()
	default:
		rows, lines, err = r.readDelimitedRows()
	}
	if err != nil {
		return nil, err
	}
	r.logger.Debug("%s file read in %dms (%d rows)", r.fileType, core.Since(readStart), len(rows))

	if len(rows) < 1 {
		return nil, fmt.Errorf("%w: %s file has no header row", core.ErrParse, strings.ToUpper(r.fileType))
	}

	return r.processRows(rows, lines)
}

// readExcelRows reads every row of the selected worksheet
func (r *DataReader) readExcelRows() ([][]string, []int, error) {
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: failed to open Excel file: %v", core.ErrParse, err)
	}
	defer f.Close()

	sheet := r.sheet
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	if sheet == "" {
		return nil, nil, fmt.Errorf("%w: workbook has no sheets", core.ErrParse)
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: failed to read sheet %q: %v", core.ErrParse, sheet, err)
	}
	lines := make([]int, len(rows))
	for i := range rows {
		lines[i] = i + 1
	}
	return rows, lines, nil
}

// readDelimitedRows reads a CSV/TSV file, sniffing the delimiter from the header line.
// encoding/csv skips empty lines, so source line numbers are tracked per record.
func (r *DataReader) readDelimitedRows() ([][]string, []int, error) {
	file, err := os.Open(r.filePath)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: failed to open file: %v", core.ErrParse, err)
	}
	defer file.Close()

	buffered := bufio.NewReader(file)
	delimiter := '\t'
	if r.fileType != FileTypeTSV {
		header, peekErr := buffered.Peek(4096)
		if peekErr != nil && peekErr != io.EOF && peekErr != bufio.ErrBufferFull {
			return nil, nil, fmt.Errorf("%w: failed to read header: %v", core.ErrParse, peekErr)
		}
		delimiter = detectDelimiter(string(header))
	}

	reader := csv.NewReader(buffered)
	reader.Comma = delimiter
	reader.FieldsPerRecord = -1

	var rows [][]string
	var lines []int
	for {
		record, readErr := reader.Read()
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return nil, nil, fmt.Errorf("%w: failed to parse delimited file: %v", core.ErrParse, readErr)
		}
		line, _ := reader.FieldPos(0)
		rows = append(rows, record)
		lines = append(lines, line)
	}
	if len(rows) > 0 && len(rows[0]) > 0 {
		rows[0][0] = strings.TrimPrefix(rows[0][0], utf8BOM)
	}
	return rows, lines, nil
}

// detectDelimiter picks the candidate delimiter that occurs most often on the first line
func detectDelimiter(text string) rune {
	firstLine := text
	if idx := strings.IndexAny(text, "\r\n"); idx >= 0 {
		firstLine = text[:idx]
	}

	best, bestCount := ',', 0
	for _, candidate := range candidateDelimiters {
		if count := strings.Count(firstLine, string(candidate)); count > bestCount {
			best, bestCount = candidate, count
		}
	}
	return best
}

// processRows converts raw string rows into a RawTable, skipping blank lines.
// Non-empty header names must be unique since rows are keyed by header.
func (r *DataReader) processRows(rows [][]string, lines []int) (*ports.RawTable, error) {
	headerRow := rows[0]
	headers := make([]string, len(headerRow))
	seen := make(map[string]int, len(headerRow))
	for i, header := range headerRow {
		headers[i] = strings.TrimSpace(header)
		if headers[i] == "" {
			continue
		}
		if first, dup := seen[headers[i]]; dup {
			return nil, core.NewDuplicateColumnError(headers[i], first+1, i+1)
		}
		seen[headers[i]] = i
	}

	table := &ports.RawTable{
		Source:  r.filePath,
		Format:  r.fileType,
		Headers: headers,
	}

	for i := 1; i < len(rows); i++ {
		row := rows[i]
		if isBlank(row) {
			continue
		}

		cells := make(map[string]string, len(headers))
		for j, header := range headers {
			if j < len(row) {
				cells[header] = strings.TrimSpace(row[j])
			} else {
				cells[header] = ""
			}
		}
		table.Rows = append(table.Rows, ports.RawRow{Line: lines[i], Cells: cells})
	}

	r.logger.Info("%s file processed (%d columns, %d rows)", strings.ToUpper(r.fileType), len(headers), len(table.Rows))
	return table, nil
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
