package table

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Sentinel errors for table loading.
var (
	ErrUnsupportedFormat = errors.New("unsupported input format")
	ErrSheetNotFound     = errors.New("sheet not found")
	ErrNoHeader          = errors.New("input has no header row")
)

// Options controls loading.
type Options struct {
	// Sheet selects an xlsx sheet; empty selects the first one.
	Sheet string
	// Delimiter for csv; 0 sniffs among ',', ';', '\t' and '|'.
	Delimiter rune
}

// Load reads a spreadsheet, dispatching on the file extension.
func Load(path string, opts Options) (*Table, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm", ".xltx", ".xltm":
		return LoadXLSX(path, opts.Sheet)
	case ".csv", ".tsv", ".txt":
		return LoadCSV(path, opts.Delimiter)
	default:
		return nil, fmt.Errorf("%w: %s (use .xlsx or .csv)", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// LoadXLSX reads one sheet of a workbook. Values are the formatted cell text as
// the spreadsheet displays it.
func LoadXLSX(path, sheet string) (*Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: workbook has no sheets", ErrSheetNotFound)
	}
	if sheet == "" {
		sheet = sheets[0]
	} else if !slices.Contains(sheets, sheet) {
		return nil, fmt.Errorf("%w: %q (available: %s)", ErrSheetNotFound, sheet, strings.Join(sheets, ", "))
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	header, data, err := splitHeader(rows)
	if err != nil {
		return nil, err
	}
	return New(filepath.Base(path)+":"+sheet, header, data), nil
}

// LoadCSV reads a delimited text file. A UTF-8 byte order mark is dropped.
func LoadCSV(path string, delim rune) (*Table, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer fh.Close()

	br := bufio.NewReader(fh)
	if bom, err := br.Peek(3); err == nil && string(bom) == "\xef\xbb\xbf" {
		_, _ = br.Discard(3)
	}
	if delim == 0 {
		delim = sniffDelimiter(br, path)
	}

	r := csv.NewReader(br)
	r.Comma = delim
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	var rows [][]string
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", len(rows)+1, err)
		}
		rows = append(rows, rec)
	}
	header, data, err := splitHeader(rows)
	if err != nil {
		return nil, err
	}
	return New(filepath.Base(path), header, data), nil
}

func splitHeader(rows [][]string) ([]string, [][]string, error) {
	for i, r := range rows {
		if !blankRow(r) {
			return r, rows[i+1:], nil
		}
	}
	return nil, nil, ErrNoHeader
}

func blankRow(r []string) bool {
	for _, v := range r {
		if trimSpace(v) != "" {
			return false
		}
	}
	return true
}

// sniffDelimiter picks the candidate that occurs most often in the first line
// outside quotes. .tsv files are always tab separated.
func sniffDelimiter(br *bufio.Reader, path string) rune {
	if strings.EqualFold(filepath.Ext(path), ".tsv") {
		return '\t'
	}
	line, _ := br.Peek(4096)
	if i := strings.IndexByte(string(line), '\n'); i >= 0 {
		line = line[:i]
	}

	counts := map[rune]int{}
	inQuotes := false
	for _, r := range string(line) {
		switch {
		case r == '"':
			inQuotes = !inQuotes
		case !inQuotes && strings.ContainsRune(",;\t|", r):
			counts[r]++
		}
	}

	best, bestN := ',', 0
	for _, c := range []rune{',', ';', '\t', '|'} {
		if counts[c] > bestN {
			best, bestN = c, counts[c]
		}
	}
	return best
}
