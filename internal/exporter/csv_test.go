package exporter

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "estimatex/internal/errors"
	"estimatex/pkg/contracts/domain"
)

func sampleEstimate() *domain.NormalizedEstimate {
	price := decimal.RequireFromString("10.00")
	amount := decimal.RequireFromString("50.00")
	related := 2
	parent := "01"
	return &domain.NormalizedEstimate{
		ProjectName: "Scuola media",
		Preventivi:  []domain.Preventivo{{ID: "P1", Name: "Opere edili"}},
		Items: []domain.Item{
			{
				ProgressiveID: 1,
				Code:          "A.01",
				Description:   "Scavo di fondazione",
				Quantity:      decimal.RequireFromString("5"),
				UnitPrice:     &price,
				Amount:        &amount,
				WbsIDs:        []string{"01", "02"},
				RelatedItemID: &related,
			},
			{
				ProgressiveID: 2,
				Code:          "A.02",
				Description:   "Ponteggio",
				Quantity:      decimal.Zero,
				WbsIDs:        []string{},
			},
		},
		WbsLevels: []domain.WbsLevel{
			{LevelCode: "01", Description: "Lotto A"},
			{LevelCode: "02", Description: "Piano interrato", ParentCode: &parent},
		},
	}
}

func TestWriteItemsCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "items.csv")
	require.NoError(t, WriteItemsCSV(path, sampleEstimate()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	content := string(data)
	assert.True(t, strings.HasPrefix(content, "\xEF\xBB\xBF"), "expected UTF-8 BOM")
	lines := strings.Split(strings.TrimSpace(strings.TrimPrefix(content, "\xEF\xBB\xBF")), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "progressive_id,code,description,quantity,unit_price,amount,wbs_ids,related_item_id", lines[0])
	assert.Equal(t, "1,A.01,Scavo di fondazione,5,10.00,50.00,01|02,2", lines[1])
	assert.Equal(t, "2,A.02,Ponteggio,0,,,,", lines[2])
}

func TestWriteWbsCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wbs.csv")
	require.NoError(t, WriteWbsCSV(path, sampleEstimate()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(strings.TrimPrefix(string(data), "\xEF\xBB\xBF")), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "01,Lotto A,", lines[1])
	assert.Equal(t, "02,Piano interrato,01", lines[2])
}

func TestWriteJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "estimate.json")
	diags := apperrors.Diagnostics{}
	diags.Add(apperrors.KindUnresolvedReference, "preventivo[P1]/voce[0]", "reference %q matches no item", "[99]")

	require.NoError(t, WriteJSON(path, "doc.xml", sampleEstimate(), diags))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var env Envelope
	require.NoError(t, json.Unmarshal(data, &env))
	assert.NotEmpty(t, env.ExportID)
	assert.Equal(t, "doc.xml", env.SourceFile)
	require.NotNil(t, env.Estimate)
	assert.Len(t, env.Estimate.Items, 2)
	require.Len(t, env.Diagnostics, 1)
	assert.Equal(t, apperrors.KindUnresolvedReference, env.Diagnostics[0].Kind)
}
