package main

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"golang.org/x/text/encoding/htmlindex"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/credibility-cli/internal/model"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// readText returns the announcement text given inline or read from path.
// A path of "-" reads stdin. A non-empty encoding names the file's charset
// (any WHATWG label, e.g. "windows-1252").
func readText(text, path, encoding string, stdin io.Reader) (string, error) {
	if text != "" && path != "" {
		return "", eris.New("use either --text or --file, not both")
	}
	if path == "" {
		if text == "" {
			return "", eris.New("announcement text is required (--text or --file)")
		}
		return text, nil
	}

	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", eris.Wrapf(err, "read announcement %s", path)
	}

	return decodeText(data, encoding)
}

// decodeText converts data from encoding to UTF-8.
func decodeText(data []byte, encoding string) (string, error) {
	if encoding == "" {
		return string(data), nil
	}
	enc, err := htmlindex.Get(encoding)
	if err != nil {
		return "", eris.Wrapf(err, "unsupported encoding %q", encoding)
	}
	out, err := io.ReadAll(enc.NewDecoder().Reader(bytes.NewReader(data)))
	if err != nil {
		return "", eris.Wrapf(err, "decode %s text", encoding)
	}
	return string(out), nil
}

// loadBatch reads a list of announcements from a batch file. The format
// follows the extension: .json, .csv and .xlsx are read as such, anything
// else as YAML. Tabular files need a header row naming the company_name,
// symbol and text columns. The encoding does not apply to .xlsx files.
func loadBatch(path, encoding string) ([]model.Announcement, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".xlsx" {
		rows, err := readXLSXRows(path)
		if err != nil {
			return nil, err
		}
		return rowsToAnnouncements(path, rows)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "read batch file %s", path)
	}
	text, err := decodeText(data, encoding)
	if err != nil {
		return nil, err
	}

	var items []model.Announcement
	switch ext {
	case ".csv":
		reader := csv.NewReader(strings.NewReader(text))
		reader.LazyQuotes = true
		reader.FieldsPerRecord = -1
		rows, err := reader.ReadAll()
		if err != nil {
			return nil, eris.Wrapf(err, "parse batch file %s", path)
		}
		return rowsToAnnouncements(path, rows)
	case ".json":
		err = json.Unmarshal([]byte(text), &items)
	default:
		err = yaml.Unmarshal([]byte(text), &items)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "parse batch file %s", path)
	}
	return items, nil
}

// readXLSXRows returns the cell values of the first sheet of an XLSX file.
func readXLSXRows(path string) ([][]string, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "open batch file %s", path)
	}
	if len(f.Sheets) == 0 {
		return nil, eris.Errorf("batch file %s has no sheets", path)
	}

	sheet := f.Sheets[0]
	rows := make([][]string, 0, len(sheet.Rows))
	for _, row := range sheet.Rows {
		cells := make([]string, len(row.Cells))
		for j, cell := range row.Cells {
			cells[j] = cell.String()
		}
		rows = append(rows, cells)
	}
	return rows, nil
}

var batchColumns = []string{"company_name", "symbol", "text"}

// rowsToAnnouncements maps tabular rows to announcements by header name.
// Blank rows are skipped; incomplete rows are kept so normalize can report
// them.
func rowsToAnnouncements(path string, rows [][]string) ([]model.Announcement, error) {
	if len(rows) == 0 {
		return nil, eris.Errorf("batch file %s has no header row", path)
	}

	colIdx := make(map[string]int, len(rows[0]))
	for i, col := range rows[0] {
		colIdx[strings.ToLower(strings.TrimSpace(col))] = i
	}
	for _, col := range batchColumns {
		if _, ok := colIdx[col]; !ok {
			return nil, eris.Errorf("batch file %s: missing required column %q", path, col)
		}
	}

	get := func(row []string, col string) string {
		i := colIdx[col]
		if i >= len(row) {
			return ""
		}
		return row[i]
	}

	var items []model.Announcement
	for _, row := range rows[1:] {
		a := model.Announcement{
			CompanyName: get(row, "company_name"),
			Symbol:      get(row, "symbol"),
			Text:        get(row, "text"),
		}
		if strings.TrimSpace(a.CompanyName+a.Symbol+a.Text) == "" {
			continue
		}
		items = append(items, a)
	}
	return items, nil
}

// normalize trims identifying fields and checks that all fields are set.
func normalize(a model.Announcement) (model.Announcement, error) {
	a.CompanyName = strings.TrimSpace(a.CompanyName)
	a.Symbol = strings.TrimSpace(a.Symbol)
	if strings.TrimSpace(a.Text) == "" {
		a.Text = ""
	}
	if err := validate.Struct(a); err != nil {
		return a, eris.Wrap(err, "invalid announcement")
	}
	return a, nil
}
