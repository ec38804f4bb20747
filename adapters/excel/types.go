package excel

// File types understood by DataReader
const (
	FileTypeCSV  = "csv"
	FileTypeTSV  = "tsv"
	FileTypeXLSX = "xlsx"
)

// utf8BOM is stripped from the first CSV header cell
const utf8BOM = "\ufeff"

// candidateDelimiters are tried, in order, when sniffing a delimited header line
var candidateDelimiters = []rune{',', ';', '\t', '|'}
