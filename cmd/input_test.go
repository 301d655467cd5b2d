package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/credibility-cli/internal/model"
)

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func TestReadText(t *testing.T) {
	path := writeFile(t, "release.txt", []byte("Quarterly revenue rose 4%."))

	got, err := readText("inline", "", "", nil)
	require.NoError(t, err)
	assert.Equal(t, "inline", got)

	got, err = readText("", path, "", nil)
	require.NoError(t, err)
	assert.Equal(t, "Quarterly revenue rose 4%.", got)

	got, err = readText("", "-", "", strings.NewReader("from stdin"))
	require.NoError(t, err)
	assert.Equal(t, "from stdin", got)
}

func TestReadText_Errors(t *testing.T) {
	_, err := readText("", "", "", nil)
	assert.Error(t, err)

	_, err = readText("a", "b.txt", "", nil)
	assert.Error(t, err)

	_, err = readText("", filepath.Join(t.TempDir(), "missing.txt"), "", nil)
	assert.Error(t, err)
}

func TestReadText_Encoding(t *testing.T) {
	// "Société" in windows-1252.
	path := writeFile(t, "latin.txt", []byte{'S', 'o', 'c', 'i', 0xe9, 't', 0xe9})

	got, err := readText("", path, "windows-1252", nil)
	require.NoError(t, err)
	assert.Equal(t, "Société", got)

	_, err = readText("", path, "no-such-charset", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported encoding")
}

func TestLoadBatch(t *testing.T) {
	yamlPath := writeFile(t, "batch.yaml", []byte(`
- company_name: Acme Corp
  symbol: ACME
  text: Guaranteed returns!
- company_name: Globex
  symbol: GBX
  text: Quarterly results were in line.
`))
	jsonPath := writeFile(t, "batch.json", []byte(`[{"company_name":"Acme Corp","symbol":"ACME","text":"Guaranteed returns!"}]`))

	items, err := loadBatch(yamlPath, "")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, model.Announcement{Text: "Guaranteed returns!", CompanyName: "Acme Corp", Symbol: "ACME"}, items[0])
	assert.Equal(t, "GBX", items[1].Symbol)

	items, err = loadBatch(jsonPath, "")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Acme Corp", items[0].CompanyName)
}

func writeXLSX(t *testing.T, rows [][]string) string {
	t.Helper()
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Announcements")
	require.NoError(t, err)
	for _, rowData := range rows {
		row := sheet.AddRow()
		for _, cellData := range rowData {
			row.AddCell().SetString(cellData)
		}
	}
	path := filepath.Join(t.TempDir(), "batch.xlsx")
	require.NoError(t, f.Save(path))
	return path
}

func TestLoadBatch_CSV(t *testing.T) {
	path := writeFile(t, "batch.csv", []byte("Symbol,Company_Name,Text\n"+
		"ACME,Acme Corp,\"Guaranteed returns, act now!\"\n"+
		",,\n"+
		"GBX,Globex\n"))

	items, err := loadBatch(path, "")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, model.Announcement{Text: "Guaranteed returns, act now!", CompanyName: "Acme Corp", Symbol: "ACME"}, items[0])
	assert.Equal(t, model.Announcement{CompanyName: "Globex", Symbol: "GBX"}, items[1])

	_, err = normalize(items[1])
	assert.Error(t, err, "row without text is reported")
}

func TestLoadBatch_CSVEncoding(t *testing.T) {
	// "Café" in windows-1252.
	data := []byte("company_name,symbol,text\nCaf\xe9 Co,CAFE,Record quarter\n")
	path := writeFile(t, "batch.csv", data)

	items, err := loadBatch(path, "windows-1252")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Café Co", items[0].CompanyName)
}

func TestLoadBatch_XLSX(t *testing.T) {
	path := writeXLSX(t, [][]string{
		{"company_name", "symbol", "text"},
		{"Acme Corp", "ACME", "Revolutionary breakthrough!"},
		{"", "", ""},
		{"Globex", "GBX", "Revenue rose 4% to $12.3 million."},
	})

	items, err := loadBatch(path, "")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, model.Announcement{Text: "Revolutionary breakthrough!", CompanyName: "Acme Corp", Symbol: "ACME"}, items[0])
	assert.Equal(t, "GBX", items[1].Symbol)
}

func TestLoadBatch_TabularMissingColumn(t *testing.T) {
	csvPath := writeFile(t, "batch.csv", []byte("company_name,text\nAcme,hello\n"))
	_, err := loadBatch(csvPath, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `missing required column "symbol"`)

	xlsxPath := writeXLSX(t, [][]string{{"symbol", "text"}, {"ACME", "hello"}})
	_, err = loadBatch(xlsxPath, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `missing required column "company_name"`)

	empty := writeFile(t, "empty.csv", nil)
	_, err = loadBatch(empty, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no header row")
}

func TestLoadBatch_Errors(t *testing.T) {
	_, err := loadBatch(filepath.Join(t.TempDir(), "missing.yaml"), "")
	assert.Error(t, err)

	bad := writeFile(t, "bad.json", []byte(`{not json`))
	_, err = loadBatch(bad, "")
	assert.Error(t, err)

	notXLSX := writeFile(t, "bad.xlsx", []byte("plain text"))
	_, err = loadBatch(notXLSX, "")
	assert.Error(t, err)
}

func TestNormalize(t *testing.T) {
	a, err := normalize(model.Announcement{Text: "text", CompanyName: "  Acme ", Symbol: " ACME"})
	require.NoError(t, err)
	assert.Equal(t, "Acme", a.CompanyName)
	assert.Equal(t, "ACME", a.Symbol)

	tests := []model.Announcement{
		{CompanyName: "Acme", Symbol: "ACME"},
		{Text: "   ", CompanyName: "Acme", Symbol: "ACME"},
		{Text: "text", Symbol: "ACME"},
		{Text: "text", CompanyName: "Acme", Symbol: "  "},
	}
	for _, tt := range tests {
		_, err := normalize(tt)
		assert.Error(t, err, "%+v", tt)
	}
}
