package excel

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"reqsync/core/errs"
	"reqsync/core/reconcile"
)

func fetchResultFixture() *reconcile.FetchResult {
	path := func(names ...string) []string {
		p := make([]string, reconcile.MaxDepth)
		copy(p, names)
		return p
	}
	return &reconcile.FetchResult{
		Rows: []reconcile.Row{
			{
				JamaID:   "101",
				Sequence: "1",
				Path:     path("Driver requirements"),
				ItemType: "Requirement",
				Fields:   map[string]string{reconcile.FieldStatus: "Approved"},
			},
			{
				JamaID:             "102",
				Sequence:           "1.1",
				Path:               path("Driver requirements", "SYSP Lane departure"),
				ItemType:           "Requirement",
				Fields:             map[string]string{reconcile.FieldAssignee: "yamada"},
				CurrentDescription: "old | preview",
				DescriptionRef:     "#1",
			},
		},
		Blocks: []reconcile.DescBlock{
			{RowIndex: 1, JamaID: "102", Table: reconcile.NewTemplateTable(), Current: "old | preview"},
		},
	}
}

func TestWriteRead_RoundTrip(t *testing.T) {
	file := filepath.Join(t.TempDir(), "requirements.xlsx")
	require.NoError(t, Write(file, fetchResultFixture()))

	rows, err := Read(file)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "101", rows[0].JamaID)
	assert.Equal(t, "Approved", rows[0].Fields[reconcile.FieldStatus])
	assert.False(t, rows[0].UpdateFlag)
	assert.Equal(t, "Driver requirements", rows[0].Path[0])
	assert.Len(t, rows[0].Path, reconcile.MaxDepth)

	assert.Equal(t, "#1", rows[1].DescriptionRef)
	assert.Equal(t, "yamada", rows[1].Fields[reconcile.FieldAssignee])
	// Nothing was flagged, so no description is carried.
	_, ok := rows[1].Fields[reconcile.FieldDescription]
	assert.False(t, ok)
}

func TestRead_FlaggedRowCarriesDescriptionHTML(t *testing.T) {
	file := filepath.Join(t.TempDir(), "requirements.xlsx")
	require.NoError(t, Write(file, fetchResultFixture()))

	// Simulate the operator: set the update flag and fill one entry of
	// the description grid (trigger slot is grid column 1, sheet
	// column B of the data rows).
	f, err := excelize.OpenFile(file)
	require.NoError(t, err)
	require.NoError(t, f.SetCellValue(SheetRequirements, "W3", reconcile.UpdateToken))
	start := blockStartRow(0)
	require.NoError(t, f.SetCellValue(SheetDescriptions, cellName(2, start+2), "driver_input"))
	require.NoError(t, f.SetCellValue(SheetDescriptions, cellName(2, start+3), "操作"))
	require.NoError(t, f.SetCellValue(SheetDescriptions, cellName(2, start+4), "steering"))
	require.NoError(t, f.Save())
	require.NoError(t, f.Close())

	rows, err := Read(file)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	html := rows[1].Fields[reconcile.FieldDescription]
	require.NotEmpty(t, html)
	assert.True(t, strings.Contains(html, "steering"))
	assert.True(t, strings.HasPrefix(html, "<table"))
}

func TestRead_UntouchedGridDoesNotClearDescription(t *testing.T) {
	file := filepath.Join(t.TempDir(), "requirements.xlsx")
	require.NoError(t, Write(file, fetchResultFixture()))

	// Flag the update but leave the grid empty.
	f, err := excelize.OpenFile(file)
	require.NoError(t, err)
	require.NoError(t, f.SetCellValue(SheetRequirements, "W3", reconcile.UpdateToken))
	require.NoError(t, f.Save())
	require.NoError(t, f.Close())

	rows, err := Read(file)
	require.NoError(t, err)

	assert.True(t, rows[1].UpdateFlag)
	_, ok := rows[1].Fields[reconcile.FieldDescription]
	assert.False(t, ok)
}

func TestRead_SkipsBlankRows(t *testing.T) {
	file := filepath.Join(t.TempDir(), "requirements.xlsx")
	require.NoError(t, Write(file, fetchResultFixture()))

	f, err := excelize.OpenFile(file)
	require.NoError(t, err)
	// A stray flag cell or a whitespace-only note on an otherwise empty
	// row must not produce a row.
	require.NoError(t, f.SetCellValue(SheetRequirements, "W9", "しない"))
	require.NoError(t, f.SetCellValue(SheetRequirements, "B10", " "))
	require.NoError(t, f.SetCellValue(SheetRequirements, "A12", "103"))
	require.NoError(t, f.Save())
	require.NoError(t, f.Close())

	rows, err := Read(file)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "103", rows[2].JamaID)
	// The sheet row survives the skipping for diagnostics.
	assert.Equal(t, 12, rows[2].SheetRow)
	assert.Equal(t, 2, rows[0].SheetRow)
}

func TestRead_NoteCellTravelsVerbatim(t *testing.T) {
	file := filepath.Join(t.TempDir(), "requirements.xlsx")
	require.NoError(t, Write(file, fetchResultFixture()))

	// The delete sentinel matches by exact equality, so the reader must
	// not normalize the note cell: padded variants stay comments.
	f, err := excelize.OpenFile(file)
	require.NoError(t, err)
	require.NoError(t, f.SetCellValue(SheetRequirements, "B2", " 削除 "))
	require.NoError(t, f.SetCellValue(SheetRequirements, "B3", "削除"))
	require.NoError(t, f.Save())
	require.NoError(t, f.Close())

	rows, err := Read(file)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, " 削除 ", rows[0].Note)
	assert.Equal(t, reconcile.ActionSkip, reconcile.Classify(rows[0]).Type)
	assert.Equal(t, reconcile.ActionDelete, reconcile.Classify(rows[1]).Type)
}

func TestRead_MissingSheet(t *testing.T) {
	file := filepath.Join(t.TempDir(), "other.xlsx")
	f := excelize.NewFile()
	require.NoError(t, f.SaveAs(file))
	require.NoError(t, f.Close())

	_, err := Read(file)

	var fe *errs.FormatError
	require.ErrorAs(t, err, &fe)
}

func TestRead_WrongHeaders(t *testing.T) {
	file := filepath.Join(t.TempDir(), "bad.xlsx")
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetName("Sheet1", SheetRequirements))
	require.NoError(t, f.SetCellValue(SheetRequirements, "A1", "ID"))
	require.NoError(t, f.SaveAs(file))
	require.NoError(t, f.Close())

	_, err := Read(file)

	var fe *errs.FormatError
	require.ErrorAs(t, err, &fe)
}

func TestWriteTemplate(t *testing.T) {
	file := filepath.Join(t.TempDir(), "template.xlsx")
	require.NoError(t, WriteTemplate(file))

	rows, err := Read(file)
	require.NoError(t, err)
	require.Len(t, rows, 5)

	// One of each: create, update, skip, delete, SYSP.
	recs := make([]reconcile.ActionType, 0, len(rows))
	for _, row := range rows {
		recs = append(recs, reconcile.Classify(row).Type)
	}
	assert.Contains(t, recs, reconcile.ActionCreate)
	assert.Contains(t, recs, reconcile.ActionUpdate)
	assert.Contains(t, recs, reconcile.ActionSkip)
	assert.Contains(t, recs, reconcile.ActionDelete)
	assert.Equal(t, "#1", rows[4].DescriptionRef)
}
