package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"estimatex/internal/excelreturn"
)

const sixDocument = `<six>
  <preventivo preventivoId="P1" breve="Opere edili">
    <voce progressivo="1" codice="A.01">
      <descrizione>Scavo di fondazione</descrizione>
      <quantita>2</quantita>
      <prezzoUnitario>10</prezzoUnitario>
    </voce>
  </preventivo>
</six>`

func excelDocument(t *testing.T) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	rows := [][]interface{}{
		{"Codice", "Descrizione", "Quantita", "Prezzo"},
		{"A.01", "Scavo", "2", "10"},
		{"A.01", "Scavo", "3", "10"},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

var excelHints = excelreturn.ColumnHints{
	CodeColumns:        []string{"Codice"},
	DescriptionColumns: []string{"Descrizione"},
	PriceColumn:        "Prezzo",
	QuantityColumn:     "Quantita",
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"six", FormatSIX, false},
		{"LX", FormatLX, false},
		{"excel-mx", FormatMX, false},
		{" mx ", FormatMX, false},
		{"csv", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if tt.wantErr {
			assert.Error(t, err, "input %q", tt.in)
			continue
		}
		require.NoError(t, err, "input %q", tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestInferFormat(t *testing.T) {
	f, ok := InferFormat("preventivo.XML")
	require.True(t, ok)
	assert.Equal(t, FormatSIX, f)

	f, ok = InferFormat("ritorno.xlsx")
	require.True(t, ok)
	assert.Equal(t, FormatLX, f)

	_, ok = InferFormat("note.txt")
	assert.False(t, ok)
}

func TestProcessFileSIX(t *testing.T) {
	res, err := ProcessFile([]byte(sixDocument), FormatSIX, "doc.xml", Options{})
	require.NoError(t, err)
	require.Len(t, res.Estimate.Items, 1)
	assert.Equal(t, "A.01", res.Estimate.Items[0].Code)
}

func TestProcessFileLXAndMX(t *testing.T) {
	data := excelDocument(t)

	lx, err := ProcessFile(data, FormatLX, "ritorno.xlsx", Options{Hints: excelHints})
	require.NoError(t, err)
	assert.Len(t, lx.Estimate.Items, 2)

	mx, err := ProcessFile(data, FormatMX, "ritorno.xlsx", Options{Hints: excelHints})
	require.NoError(t, err)
	assert.Len(t, mx.Estimate.Items, 1)
}

func TestProcessFileUnknownFormat(t *testing.T) {
	_, err := ProcessFile([]byte(sixDocument), Format("pdf"), "x", Options{})
	assert.Error(t, err)
}

func TestProcessPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "preventivo.xml")
	require.NoError(t, os.WriteFile(path, []byte(sixDocument), 0o644))

	// Explicit format.
	res, err := ProcessPath(path, FormatSIX, Options{}, 0)
	require.NoError(t, err)
	assert.Len(t, res.Estimate.Items, 1)

	// Inferred from extension.
	res, err = ProcessPath(path, "", Options{}, 0)
	require.NoError(t, err)
	assert.Len(t, res.Estimate.Items, 1)

	// Size cap enforced before parsing.
	_, err = ProcessPath(path, FormatSIX, Options{}, 10)
	assert.Error(t, err)
}

func TestServiceProcessBatch(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.xml")
	bad := filepath.Join(dir, "bad.xml")
	require.NoError(t, os.WriteFile(good, []byte(sixDocument), 0o644))
	require.NoError(t, os.WriteFile(bad, []byte("<six><preventivo"), 0o644))

	svc := NewService(0, 0, 0)
	items := svc.ProcessBatch(context.Background(), []string{good, bad}, FormatSIX, Options{})
	require.Len(t, items, 2)

	assert.NoError(t, items[0].Err)
	require.NotNil(t, items[0].Result)
	assert.Len(t, items[0].Result.Estimate.Items, 1)

	assert.Error(t, items[1].Err)
	assert.Nil(t, items[1].Result)
}

func TestServiceSizeCap(t *testing.T) {
	svc := NewService(0, 0, 4)
	_, err := svc.Process(context.Background(), []byte(sixDocument), FormatSIX, "doc.xml", Options{})
	assert.Error(t, err)
}
