package excel

import "reqsync/core/reconcile"

// Sheet names of the workbook surface.
const (
	// SheetRequirements is the primary requirement list sheet.
	SheetRequirements = "Requirement_of_Driver"
	// SheetDescriptions holds one editable 5-row table per SYSP item.
	SheetDescriptions = "Description_edit"
)

// Column indexes (1-based) of the requirement sheet. The layout is
// fixed: tools and users both rely on the letters.
const (
	colJamaID         = 1  // A
	colNote           = 2  // B
	colSequence       = 3  // C
	colHierarchyFirst = 4  // D, first of MaxDepth hierarchy columns
	colItemType       = 15 // O
	colAssignee       = 16 // P
	colStatus         = 17 // Q
	colTags           = 18 // R
	colReason         = 19 // S
	colPreconditions  = 20 // T
	colTargetSystem   = 21 // U
	colCurrentDesc    = 22 // V
	colUpdateFlag     = 23 // W
	colDescRef        = 24 // X

	lastColumn = colDescRef
)

// headers lists the requirement sheet header row in column order.
var headers = []string{
	"JAMA_ID",
	"メモ/コメント",
	"Sequence",
	"階層1", "階層2", "階層3", "階層4", "階層5", "階層6",
	"階層7", "階層8", "階層9", "階層10", "階層11",
	"アイテムタイプ",
	"Assignee",
	"Status",
	"Tags",
	"Reason",
	"Preconditions",
	"Target_system",
	"現在のDescription",
	"Description更新",
	"新Description参照",
}

// editableColumns maps sheet columns to canonical field keys.
var editableColumns = map[int]string{
	colAssignee:      reconcile.FieldAssignee,
	colStatus:        reconcile.FieldStatus,
	colTags:          reconcile.FieldTags,
	colReason:        reconcile.FieldReason,
	colPreconditions: reconcile.FieldPreconditions,
	colTargetSystem:  reconcile.FieldTargetSystem,
}

// Description edit sheet geometry: blocks start at this row and repeat
// at this spacing; the banner sits one row above each block.
const (
	descFirstBlockRow = 10
	descBlockSpacing  = 15
)

// noUpdateToken is the default update-flag cell value written on fetch.
const noUpdateToken = "しない"

// blockStartRow returns the grid's first sheet row for block n (0-based).
func blockStartRow(n int) int {
	return descFirstBlockRow + n*descBlockSpacing
}
