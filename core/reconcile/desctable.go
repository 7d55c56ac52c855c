package reconcile

import (
	"fmt"
	"html"
	"strings"

	xhtml "golang.org/x/net/html"
)

// The description of a SYSP item is a fixed-shape 5-row table: an I/O
// type row, a category label row, and data name / data label / data
// value rows. Column 0 holds the row labels; the 80 data columns are
// statically partitioned into four categories.

// Category names one of the four column partitions.
type Category string

const (
	CategoryTrigger Category = "trigger"
	CategoryEgo     Category = "ego"
	CategoryHMI     Category = "hmi"
	CategoryOther   Category = "other"
)

// categorySlot describes one category's fixed column range. The
// assignment never varies across items.
type categorySlot struct {
	Category Category
	Label    string
	Start    int // first grid column
	Count    int // slot budget
}

// categorySlots is the static category layout, in left-to-right column
// order: trigger action 1 slot, ego-vehicle behavior 64, HMI 10,
// other 5.
var categorySlots = []categorySlot{
	{CategoryTrigger, "(a)Trigger action", 1, 1},
	{CategoryEgo, "(b)Behavior of ego-vehicle", 2, 64},
	{CategoryHMI, "(c)HMI", 66, 10},
	{CategoryOther, "(d)Other", 76, 5},
}

const (
	// TableRows is the number of logical rows in the description table.
	TableRows = 5
	// TableCols is the label column plus the 80 data columns.
	TableCols = 81

	rowIOType    = 0
	rowCategory  = 1
	rowDataName  = 2
	rowDataLabel = 3
	rowDataValue = 4
)

// Table is the fixed 5x81 cell grid of one structured description.
type Table struct {
	Cells [TableRows][TableCols]string
}

// Entry is one I/O entry of a structured description.
type Entry struct {
	IOType    string
	Category  Category
	DataName  string
	DataLabel string
	DataValue string
}

// slotFor returns the layout of a category.
func slotFor(category Category) (categorySlot, bool) {
	for _, slot := range categorySlots {
		if slot.Category == category {
			return slot, true
		}
	}
	return categorySlot{}, false
}

// NewTemplateTable returns the empty editable grid: row labels, the IN
// and OUT markers, and the category labels at their fixed columns.
func NewTemplateTable() Table {
	var t Table
	t.Cells[rowIOType][0] = "I/O Type"
	t.Cells[rowIOType][1] = "IN"
	t.Cells[rowIOType][2] = "OUT"
	for _, slot := range categorySlots {
		t.Cells[rowCategory][slot.Start] = slot.Label
	}
	t.Cells[rowDataName][0] = "Data Name"
	t.Cells[rowDataLabel][0] = "Data Label"
	t.Cells[rowDataValue][0] = "Data"
	return t
}

// EncodeTable places entries into the fixed grid by category-ordinal
// position. Entries beyond a category's slot budget are dropped; the
// returned warnings name each dropped entry. This is a firm format
// violation but must not abort a fetch for one item.
func EncodeTable(entries []Entry) (Table, []string) {
	t := NewTemplateTable()
	var warnings []string

	used := make(map[Category]int)
	for _, entry := range entries {
		slot, ok := slotFor(entry.Category)
		if !ok {
			warnings = append(warnings, fmt.Sprintf("unknown category %q for entry %q", entry.Category, entry.DataName))
			continue
		}
		ordinal := used[entry.Category]
		if ordinal >= slot.Count {
			warnings = append(warnings, fmt.Sprintf("category %s over its %d-slot budget, entry %q dropped", slot.Category, slot.Count, entry.DataName))
			continue
		}
		used[entry.Category] = ordinal + 1

		col := slot.Start + ordinal
		if entry.IOType != "" {
			t.Cells[rowIOType][col] = entry.IOType
		}
		t.Cells[rowDataName][col] = entry.DataName
		t.Cells[rowDataLabel][col] = entry.DataLabel
		t.Cells[rowDataValue][col] = entry.DataValue
	}
	return t, warnings
}

// DecodeTable is the inverse of EncodeTable. A column with an empty
// data-value cell is absent, not an empty-valued entry. Entry order
// follows column order left to right, category by category.
func DecodeTable(t Table) []Entry {
	var entries []Entry
	for _, slot := range categorySlots {
		for col := slot.Start; col < slot.Start+slot.Count; col++ {
			value := t.Cells[rowDataValue][col]
			if value == "" {
				continue
			}
			entries = append(entries, Entry{
				IOType:    t.Cells[rowIOType][col],
				Category:  slot.Category,
				DataName:  t.Cells[rowDataName][col],
				DataLabel: t.Cells[rowDataLabel][col],
				DataValue: value,
			})
		}
	}
	return entries
}

// RenderHTML serializes the grid to the HTML table stored in the remote
// description field. The merge structure (the OUT span on the first
// row, one span per category on the second) matches what the remote
// store's editor produces.
func RenderHTML(t Table) string {
	var b strings.Builder
	b.WriteString("<table border='1' cellpadding='5' cellspacing='0'>\n")

	// I/O type row: label, IN, then one merged OUT cell.
	b.WriteString("<tr>\n")
	fmt.Fprintf(&b, "<td>%s</td>\n", html.EscapeString(t.Cells[rowIOType][0]))
	fmt.Fprintf(&b, "<td>%s</td>\n", html.EscapeString(t.Cells[rowIOType][1]))
	fmt.Fprintf(&b, "<td colspan='%d'>%s</td>\n", TableCols-2, html.EscapeString(t.Cells[rowIOType][2]))
	b.WriteString("</tr>\n")

	// Category label row: label, then one merged cell per category.
	b.WriteString("<tr>\n")
	fmt.Fprintf(&b, "<td>%s</td>\n", html.EscapeString(t.Cells[rowCategory][0]))
	for _, slot := range categorySlots {
		if slot.Count == 1 {
			fmt.Fprintf(&b, "<td>%s</td>\n", html.EscapeString(t.Cells[rowCategory][slot.Start]))
			continue
		}
		fmt.Fprintf(&b, "<td colspan='%d'>%s</td>\n", slot.Count, html.EscapeString(t.Cells[rowCategory][slot.Start]))
	}
	b.WriteString("</tr>\n")

	// Data name, data label and data value rows: one cell per column.
	for _, row := range []int{rowDataName, rowDataLabel, rowDataValue} {
		b.WriteString("<tr>\n")
		for col := 0; col < TableCols; col++ {
			fmt.Fprintf(&b, "<td>%s</td>\n", html.EscapeString(t.Cells[row][col]))
		}
		b.WriteString("</tr>\n")
	}

	b.WriteString("</table>")
	return b.String()
}

// ParseHTMLTable extracts the first <table> of an HTML fragment as rows
// of cell texts. ok is false when the fragment has no table.
func ParseHTMLTable(fragment string) (rows [][]string, ok bool) {
	tokenizer := xhtml.NewTokenizer(strings.NewReader(fragment))

	var (
		inTable, inCell bool
		current         []string
		cell            strings.Builder
		depth           int
	)
	for {
		switch tokenizer.Next() {
		case xhtml.ErrorToken:
			return rows, len(rows) > 0
		case xhtml.StartTagToken:
			name, _ := tokenizer.TagName()
			switch string(name) {
			case "table":
				depth++
				inTable = depth == 1
			case "tr":
				if inTable {
					current = nil
				}
			case "td", "th":
				if inTable {
					inCell = true
					cell.Reset()
				}
			}
		case xhtml.EndTagToken:
			name, _ := tokenizer.TagName()
			switch string(name) {
			case "table":
				depth--
				if depth == 0 {
					return rows, len(rows) > 0
				}
				inTable = depth == 1
			case "tr":
				if inTable && current != nil {
					rows = append(rows, current)
					current = nil
				}
			case "td", "th":
				if inTable && inCell {
					inCell = false
					current = append(current, strings.TrimSpace(cell.String()))
				}
			}
		case xhtml.TextToken:
			if inCell {
				cell.Write(tokenizer.Text())
			}
		}
	}
}

// PreviewHTML renders a short read-only preview of a description for
// the current-description column: the first 3 table rows, 4 cells each.
// Descriptions without a table fall back to their text content,
// truncated to 100 runes.
func PreviewHTML(fragment string) string {
	if fragment == "" {
		return ""
	}
	if rows, ok := ParseHTMLTable(fragment); ok {
		var lines []string
		for i, row := range rows {
			if i >= 3 {
				break
			}
			if len(row) > 4 {
				row = row[:4]
			}
			lines = append(lines, strings.Join(row, " | "))
		}
		return strings.Join(lines, "\n")
	}

	text := stripTags(fragment)
	runes := []rune(text)
	if len(runes) > 100 {
		return string(runes[:100]) + "..."
	}
	return text
}

func stripTags(fragment string) string {
	tokenizer := xhtml.NewTokenizer(strings.NewReader(fragment))
	var b strings.Builder
	for {
		switch tokenizer.Next() {
		case xhtml.ErrorToken:
			return strings.TrimSpace(b.String())
		case xhtml.TextToken:
			b.Write(tokenizer.Text())
		}
	}
}
