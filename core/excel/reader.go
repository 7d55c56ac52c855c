package excel

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"reqsync/core/errs"
	"reqsync/core/reconcile"
)

// Read loads the requirement sheet of the workbook at path and returns
// one row per populated sheet row. Rows flagged for description update
// get their table block rendered to HTML in Fields.
func Read(path string) ([]reconcile.Row, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	grid, err := f.GetRows(SheetRequirements)
	if err != nil {
		return nil, errs.NewFormatError("sheet %q not found in %s", SheetRequirements, path)
	}
	if len(grid) == 0 {
		return nil, errs.NewFormatError("sheet %q is empty", SheetRequirements)
	}
	if err := checkHeaders(grid[0]); err != nil {
		return nil, err
	}

	banners := findBanners(f)

	var rows []reconcile.Row
	for i, raw := range grid[1:] {
		row := decodeSheetRow(raw, i+2)
		if row.IsEmpty() {
			continue
		}
		if row.UpdateFlag {
			html, ok, err := readDescription(f, banners, row)
			if err != nil {
				return nil, fmt.Errorf("sheet row %d: %w", i+2, err)
			}
			if ok {
				if row.Fields == nil {
					row.Fields = map[string]string{}
				}
				row.Fields[reconcile.FieldDescription] = html
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// checkHeaders validates the columns the reader depends on. Extra or
// renamed cosmetic headers elsewhere are tolerated.
func checkHeaders(header []string) error {
	required := map[int]string{
		colJamaID:     headers[colJamaID-1],
		colSequence:   headers[colSequence-1],
		colUpdateFlag: headers[colUpdateFlag-1],
		colDescRef:    headers[colDescRef-1],
	}
	for col, want := range required {
		if cellAt(header, col) != want {
			letter, _ := excelize.ColumnNumberToName(col)
			return errs.NewFormatError("column %s must be %q, got %q", letter, want, cellAt(header, col))
		}
	}
	return nil
}

func decodeSheetRow(raw []string, sheetRow int) reconcile.Row {
	row := reconcile.Row{
		SheetRow: sheetRow,
		JamaID:   strings.TrimSpace(cellAt(raw, colJamaID)),
		// The note travels verbatim: the delete sentinel matches by
		// exact equality, so " 削除 " must stay distinct from 削除.
		Note:           cellAt(raw, colNote),
		Sequence:       strings.TrimSpace(cellAt(raw, colSequence)),
		ItemType:       strings.TrimSpace(cellAt(raw, colItemType)),
		UpdateFlag:     strings.TrimSpace(cellAt(raw, colUpdateFlag)) == reconcile.UpdateToken,
		DescriptionRef: strings.TrimSpace(cellAt(raw, colDescRef)),
		Fields:         map[string]string{},
	}
	row.Path = make([]string, reconcile.MaxDepth)
	for d := 0; d < reconcile.MaxDepth; d++ {
		row.Path[d] = strings.TrimSpace(cellAt(raw, colHierarchyFirst+d))
	}
	for col, key := range editableColumns {
		if v := strings.TrimSpace(cellAt(raw, col)); v != "" {
			row.Fields[key] = v
		}
	}
	row.CurrentDescription = cellAt(raw, colCurrentDesc)
	return row
}

// readDescription locates the row's table block on the edit sheet and
// renders it to HTML. It reports ok=false when the row has no block or
// the block holds no data values, so a flagged row with plain field
// edits, or an untouched template grid, never clears a remote
// description.
func readDescription(f *excelize.File, banners []banner, row reconcile.Row) (string, bool, error) {
	start, found, err := locateBlock(banners, row)
	if err != nil {
		return "", false, err
	}
	if !found {
		return "", false, nil
	}

	var t reconcile.Table
	for r := 0; r < reconcile.TableRows; r++ {
		for c := 0; c < reconcile.TableCols; c++ {
			v, err := f.GetCellValue(SheetDescriptions, cellName(c+1, start+r))
			if err != nil {
				return "", false, fmt.Errorf("read description block: %w", err)
			}
			t.Cells[r][c] = v
		}
	}
	if len(reconcile.DecodeTable(t)) == 0 {
		return "", false, nil
	}
	return reconcile.RenderHTML(t), true, nil
}

// banner is one "JAMA_ID: ..." marker row on the description sheet.
type banner struct {
	row int
	id  string
}

// locateBlock prefers the "#N" reference; without one a banner search
// by id covers hand-edited sheets. A row with no reference and no
// matching banner simply has no block.
func locateBlock(banners []banner, row reconcile.Row) (start int, found bool, err error) {
	if row.DescriptionRef != "" {
		n, ok := parseBlockRef(row.DescriptionRef)
		if !ok {
			return 0, false, errs.NewFormatError("malformed description reference %q", row.DescriptionRef)
		}
		if n >= len(banners) {
			return 0, false, errs.NewFormatError("description reference %q points past the last block", row.DescriptionRef)
		}
		return banners[n].row + 1, true, nil
	}
	for _, b := range banners {
		if b.id == row.JamaID && row.JamaID != "" {
			return b.row + 1, true, nil
		}
	}
	return 0, false, nil
}

// findBanners scans the description sheet for banner rows in order.
func findBanners(f *excelize.File) []banner {
	grid, err := f.GetRows(SheetDescriptions)
	if err != nil {
		return nil
	}
	var banners []banner
	for i, raw := range grid {
		cell := cellAt(raw, 1)
		idx := strings.Index(cell, "JAMA_ID:")
		if idx < 0 {
			continue
		}
		id := strings.Trim(strings.TrimSpace(cell[idx+len("JAMA_ID:"):]), "= ")
		banners = append(banners, banner{row: i + 1, id: strings.TrimSpace(id)})
	}
	return banners
}

// cellAt reads a 1-based column from a GetRows slice, which excelize
// truncates at the last populated cell.
func cellAt(raw []string, col int) string {
	if col-1 >= len(raw) {
		return ""
	}
	return raw[col-1]
}
