package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validEstimate() *NormalizedEstimate {
	price := decimal.RequireFromString("10.005")
	amount := decimal.RequireFromString("30.02")
	related := 2
	return &NormalizedEstimate{
		Preventivi: []Preventivo{{ID: "P1", Name: "Opere edili"}},
		Items: []Item{
			{
				ProgressiveID: 1,
				Code:          "A.01",
				Quantity:      decimal.RequireFromString("3"),
				UnitPrice:     &price,
				Amount:        &amount,
				WbsIDs:        []string{"01"},
				RelatedItemID: &related,
			},
			{ProgressiveID: 2, Code: "A.02", Quantity: decimal.Zero, WbsIDs: []string{}},
		},
		WbsLevels: []WbsLevel{{LevelCode: "01", Description: "Lotto A"}},
	}
}

func TestValidateAcceptsConsistentEstimate(t *testing.T) {
	require.NoError(t, validEstimate().Validate())
}

func TestValidateRejectsDuplicateLevelCodes(t *testing.T) {
	e := validEstimate()
	e.WbsLevels = append(e.WbsLevels, WbsLevel{LevelCode: "01", Description: "doppione"})
	err := e.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate wbs level")
}

func TestValidateRejectsUndeclaredWbsID(t *testing.T) {
	e := validEstimate()
	e.Items[0].WbsIDs = []string{"05"}
	require.Error(t, e.Validate())
}

func TestValidateRejectsAmountMismatch(t *testing.T) {
	e := validEstimate()
	wrong := decimal.RequireFromString("30.01")
	e.Items[0].Amount = &wrong
	err := e.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not match")
}

func TestValidateRejectsDanglingRelatedItem(t *testing.T) {
	e := validEstimate()
	dangling := 99
	e.Items[0].RelatedItemID = &dangling
	require.Error(t, e.Validate())
}

func TestValidateRejectsTooManyLevels(t *testing.T) {
	e := validEstimate()
	codes := []string{"01", "02", "03", "04", "05", "06", "07", "08"}
	e.Items[0].WbsIDs = codes
	require.Error(t, e.Validate())
}

func TestItemByProgressive(t *testing.T) {
	e := validEstimate()
	it := e.ItemByProgressive(2)
	require.NotNil(t, it)
	assert.Equal(t, "A.02", it.Code)
	assert.Nil(t, e.ItemByProgressive(404))
}
