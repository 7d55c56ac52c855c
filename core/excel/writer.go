package excel

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"reqsync/core/errs"
	"reqsync/core/reconcile"
)

// styles groups the style IDs registered once per workbook.
type styles struct {
	header   int
	banner   int
	editable int
	link     int
}

// Write saves a fetch result as a new workbook at path.
func Write(path string, res *reconcile.FetchResult) error {
	f, err := buildWorkbook(res)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

func buildWorkbook(res *reconcile.FetchResult) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName("Sheet1", SheetRequirements); err != nil {
		f.Close()
		return nil, errs.NewFormatError("rename sheet: %v", err)
	}
	if _, err := f.NewSheet(SheetDescriptions); err != nil {
		f.Close()
		return nil, errs.NewFormatError("create sheet %s: %v", SheetDescriptions, err)
	}

	st, err := newStyles(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	if err := writeRequirementSheet(f, st, res.Rows); err != nil {
		f.Close()
		return nil, err
	}
	if err := writeDescriptionSheet(f, st, res.Blocks); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

func newStyles(f *excelize.File) (styles, error) {
	var st styles
	var err error

	st.header, err = f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"366092"}, Pattern: 1},
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
	})
	if err != nil {
		return st, fmt.Errorf("register header style: %w", err)
	}
	st.banner, err = f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"D9E1F2"}, Pattern: 1},
		Font: &excelize.Font{Bold: true},
	})
	if err != nil {
		return st, fmt.Errorf("register banner style: %w", err)
	}
	st.editable, err = f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"FFF2CC"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "left", Style: 1, Color: "999999"},
			{Type: "right", Style: 1, Color: "999999"},
			{Type: "top", Style: 1, Color: "999999"},
			{Type: "bottom", Style: 1, Color: "999999"},
		},
	})
	if err != nil {
		return st, fmt.Errorf("register editable style: %w", err)
	}
	st.link, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Color: "0563C1", Underline: "single"},
	})
	if err != nil {
		return st, fmt.Errorf("register link style: %w", err)
	}
	return st, nil
}

func writeRequirementSheet(f *excelize.File, st styles, rows []reconcile.Row) error {
	for i, h := range headers {
		if err := f.SetCellValue(SheetRequirements, cellName(i+1, 1), h); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}
	if err := f.SetCellStyle(SheetRequirements, cellName(1, 1), cellName(lastColumn, 1), st.header); err != nil {
		return fmt.Errorf("style header: %w", err)
	}

	for i, row := range rows {
		if err := writeRequirementRow(f, st, i+2, row); err != nil {
			return err
		}
	}

	// Widths tuned for the Japanese headers and description preview.
	f.SetColWidth(SheetRequirements, "A", "C", 12)
	f.SetColWidth(SheetRequirements, "D", "N", 18)
	f.SetColWidth(SheetRequirements, "O", "U", 14)
	f.SetColWidth(SheetRequirements, "V", "V", 48)
	f.SetColWidth(SheetRequirements, "W", "X", 16)
	return nil
}

func writeRequirementRow(f *excelize.File, st styles, rowNum int, row reconcile.Row) error {
	set := func(col int, v string) error {
		if v == "" {
			return nil
		}
		return f.SetCellValue(SheetRequirements, cellName(col, rowNum), v)
	}

	if err := set(colJamaID, row.JamaID); err != nil {
		return fmt.Errorf("write row %d: %w", rowNum, err)
	}
	set(colNote, row.Note)
	set(colSequence, row.Sequence)
	for d, name := range row.Path {
		if d >= reconcile.MaxDepth {
			break
		}
		set(colHierarchyFirst+d, name)
	}
	set(colItemType, row.ItemType)
	for col, key := range editableColumns {
		set(col, row.Fields[key])
	}
	set(colCurrentDesc, row.CurrentDescription)
	if err := f.SetCellValue(SheetRequirements, cellName(colUpdateFlag, rowNum), noUpdateToken); err != nil {
		return fmt.Errorf("write row %d: %w", rowNum, err)
	}
	if row.DescriptionRef != "" {
		set(colDescRef, row.DescriptionRef)
		block, ok := parseBlockRef(row.DescriptionRef)
		if ok {
			target := fmt.Sprintf("%s!%s", SheetDescriptions, cellName(1, blockStartRow(block)-1))
			f.SetCellHyperLink(SheetRequirements, cellName(colDescRef, rowNum), target, "Location")
			f.SetCellStyle(SheetRequirements, cellName(colDescRef, rowNum), cellName(colDescRef, rowNum), st.link)
		}
	}
	return nil
}

func writeDescriptionSheet(f *excelize.File, st styles, blocks []reconcile.DescBlock) error {
	if err := f.SetCellValue(SheetDescriptions, "A1",
		"各ブロックの5行テーブルを編集し、一覧シートのDescription更新列を「する」にしてください。"); err != nil {
		return fmt.Errorf("write description sheet: %w", err)
	}

	for i, block := range blocks {
		start := blockStartRow(i)
		banner := start - 1

		display := block.JamaID
		if display == "" {
			display = "新規"
		}
		if err := f.SetCellValue(SheetDescriptions, cellName(1, banner),
			fmt.Sprintf("========== JAMA_ID: %s ==========", display)); err != nil {
			return fmt.Errorf("write banner %d: %w", i, err)
		}
		f.MergeCell(SheetDescriptions, cellName(1, banner), cellName(10, banner))
		f.SetCellStyle(SheetDescriptions, cellName(1, banner), cellName(10, banner), st.banner)

		// Back link to the source row on the requirement sheet.
		back := fmt.Sprintf("%s!%s", SheetRequirements, cellName(colJamaID, block.RowIndex+2))
		f.SetCellValue(SheetDescriptions, cellName(11, banner), "一覧へ戻る")
		f.SetCellHyperLink(SheetDescriptions, cellName(11, banner), back, "Location")
		f.SetCellStyle(SheetDescriptions, cellName(11, banner), cellName(11, banner), st.link)

		if err := writeTable(f, st, start, block.Table); err != nil {
			return fmt.Errorf("write block %d: %w", i, err)
		}

		if block.Current != "" {
			f.SetCellValue(SheetDescriptions, cellName(1, start+reconcile.TableRows+1), "現在のDescription:")
			f.SetCellValue(SheetDescriptions, cellName(1, start+reconcile.TableRows+2), block.Current)
		}
	}

	f.SetColWidth(SheetDescriptions, "A", "A", 24)
	return nil
}

// writeTable lays a description table down starting at sheet row start.
func writeTable(f *excelize.File, st styles, start int, t reconcile.Table) error {
	for r := 0; r < reconcile.TableRows; r++ {
		for c := 0; c < reconcile.TableCols; c++ {
			v := t.Cells[r][c]
			if v == "" {
				continue
			}
			if err := f.SetCellValue(SheetDescriptions, cellName(c+1, start+r), v); err != nil {
				return err
			}
		}
	}
	// Data rows are the editable area.
	f.SetCellStyle(SheetDescriptions,
		cellName(2, start+2), cellName(reconcile.TableCols, start+reconcile.TableRows-1), st.editable)
	return nil
}

func cellName(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}

// parseBlockRef resolves a "#N" description reference to a 0-based
// block ordinal.
func parseBlockRef(ref string) (int, bool) {
	if len(ref) < 2 || ref[0] != '#' {
		return 0, false
	}
	n := 0
	for _, r := range ref[1:] {
		if r < '0' || r > '9' {
			return 0, false
		}
		n = n*10 + int(r-'0')
	}
	if n < 1 {
		return 0, false
	}
	return n - 1, true
}
