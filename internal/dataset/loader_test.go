package dataset

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeSheet(t *testing.T, rows [][]any) string {
	t.Helper()
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	path := filepath.Join(t.TempDir(), "eval.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestLoad_DetectsColumnsByHeader(t *testing.T) {
	path := writeSheet(t, [][]any{
		{"Dialogue ID", "Turn ID", "Domain", "Slot Name", "Value Text", "Turn Belief", "Dialogue History"},
		{"D1", "0", "hotel", "hotel-area", "east", "hotel-area-east; hotel-stars-4", "user: a hotel in the east"},
		{"D1", "0", "hotel", "hotel-stars", "4", "hotel-area-east; hotel-stars-4", "user: a hotel in the east"},
	})

	examples, err := Load(path, nil)
	require.NoError(t, err)
	require.Len(t, examples, 2)
	assert.Equal(t, "D1", examples[0].DialogueID)
	assert.Equal(t, 0, examples[0].TurnID)
	assert.Equal(t, "hotel", examples[0].Domain)
	assert.Equal(t, "hotel-area", examples[0].Slot)
	assert.Equal(t, "east", examples[0].ValueText)
	assert.Equal(t, []string{"hotel-area-east", "hotel-stars-4"}, examples[0].TurnBelief)
	assert.Equal(t, "user: a hotel in the east", examples[0].ModelInput)
}

func TestLoad_BuildsInputFromSchema(t *testing.T) {
	path := writeSheet(t, [][]any{
		{"dialogue id", "turn id", "domain", "slot", "value", "turn belief", "history"},
		{"D1", "0", "hotel", "hotel-area", "east", "hotel-area-east", "user: a hotel in the east"},
	})

	schema := NewSchema([]string{"hotel-area"})
	examples, err := Load(path, schema)
	require.NoError(t, err)
	require.Len(t, examples, 1)
	assert.Equal(t, "user: a hotel in the east [sep] hotel area", examples[0].ModelInput)
}

func TestLoad_SkipsMalformedRows(t *testing.T) {
	path := writeSheet(t, [][]any{
		{"dialogue id", "turn id", "domain", "slot", "value", "turn belief"},
		{"D1", "0", "hotel", "hotel-area", "east", ""},
		{"", "0", "hotel", "hotel-area", "east", ""},      // no dialogue id
		{"D1", "zero", "hotel", "hotel-area", "east", ""}, // unparsable turn
		{"D1", "1", "hotel", "", "east", ""},              // no slot
	})

	examples, err := Load(path, nil)
	require.NoError(t, err)
	assert.Len(t, examples, 1)
}

func TestLoad_MissingRequiredColumns(t *testing.T) {
	path := writeSheet(t, [][]any{
		{"a", "b"},
		{"1", "2"},
	})
	_, err := Load(path, nil)
	assert.Error(t, err)
}

func TestSlots_DistinctInOrder(t *testing.T) {
	path := writeSheet(t, [][]any{
		{"dialogue id", "turn id", "domain", "slot", "value", "turn belief"},
		{"D1", "0", "hotel", "hotel-area", "east", ""},
		{"D1", "0", "hotel", "hotel-stars", "4", ""},
		{"D1", "1", "hotel", "hotel-area", "east", ""},
	})
	examples, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"hotel-area", "hotel-stars"}, Slots(examples))
}
