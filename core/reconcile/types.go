package reconcile

import "strings"

// MaxDepth is the number of hierarchy-level name columns in the row
// layout. Items deeper than this cannot be represented and the remote
// project is not expected to exceed it.
const MaxDepth = 11

const (
	// DeleteSentinel is the one note value that marks a row for
	// deletion. Matching is exact string equality; values such as
	// "削除予定" are ordinary comments.
	DeleteSentinel = "削除"

	// UpdateToken is the only update-flag cell value that means "do
	// update". Anything else, including an empty cell, means skip.
	UpdateToken = "する"

	// SyspMarker identifies items whose description is the structured
	// fixed-layout table. Item names are matched by substring.
	SyspMarker = "SYSP"
)

// Item is a node in the remote requirement hierarchy.
type Item struct {
	// ID is the stable remote identifier. Zero means not yet created.
	ID int

	// ItemTypeID is the remote item-type identifier, kept for create calls.
	ItemTypeID int

	// Name is the item's display name.
	Name string

	// Sequence is the dotted-path position, e.g. "6.1.5.3". It is also
	// the sort key of the remote tree order.
	Sequence string

	// ParentID is the remote id of the parent item, when known.
	ParentID int

	// Fields maps canonical field keys to values. Keys are produced by
	// CanonicalField at ingestion; unrecognized remote fields are not
	// carried.
	Fields map[string]string
}

// Depth returns the hierarchy depth encoded in the sequence.
func (it Item) Depth() int {
	if it.Sequence == "" {
		return 0
	}
	n := 1
	for _, r := range it.Sequence {
		if r == '.' {
			n++
		}
	}
	return n
}

// IsSysp reports whether the item carries a structured description table.
func (it Item) IsSysp() bool {
	return containsSysp(it.Name)
}

// Row is the tabular representation of one item plus the user-editable
// overlay cells.
type Row struct {
	// JamaID is the identifier cell. Empty means not yet created.
	JamaID string

	// Note is the free-text comment cell. Only the exact DeleteSentinel
	// value has a special meaning.
	Note string

	// Sequence is the dotted-path cell.
	Sequence string

	// Path holds the ancestor names, right-padded with empty strings to
	// MaxDepth.
	Path []string

	// ItemType is the item-type cell.
	ItemType string

	// Fields holds the editable field cells by canonical key. A key is
	// present only when the cell is populated; a blank cell means
	// "retain the remote value", never "clear".
	Fields map[string]string

	// CurrentDescription is the read-only snapshot of the remote
	// description, shown as a preview.
	CurrentDescription string

	// UpdateFlag is true only when the update-flag cell held UpdateToken.
	UpdateFlag bool

	// DescriptionRef links the row to its block on the description
	// edit sheet, when the item is a SYSP item.
	DescriptionRef string

	// SheetRow is the 1-based workbook row this row was read from, so
	// diagnostics can point at the sheet even after blank rows were
	// skipped. Zero for rows not read from a workbook.
	SheetRow int
}

// Name returns the deepest populated hierarchy cell, which is the
// item's own name in the row layout.
func (r Row) Name() string {
	for i := len(r.Path) - 1; i >= 0; i-- {
		if r.Path[i] != "" {
			return r.Path[i]
		}
	}
	return ""
}

// IsEmpty reports whether the row carries no data at all. Fully blank
// rows are laid down by spreadsheet editors and must not classify as
// creates.
func (r Row) IsEmpty() bool {
	// The note travels verbatim for sentinel matching, so blankness is
	// judged on its trimmed form here.
	if r.JamaID != "" || strings.TrimSpace(r.Note) != "" || r.Sequence != "" || len(r.Fields) > 0 {
		return false
	}
	return r.Name() == ""
}

// ActionType is the flat action vocabulary of the update flow.
type ActionType string

const (
	// ActionCreate creates a new remote item.
	ActionCreate ActionType = "create"
	// ActionUpdate sends the row's populated fields to an existing item.
	ActionUpdate ActionType = "update"
	// ActionDelete removes the remote item.
	ActionDelete ActionType = "delete"
	// ActionSkip leaves the row untouched.
	ActionSkip ActionType = "skip"
)

// ActionRecord is the classifier output for one row. It lives only for
// the duration of one update run.
type ActionRecord struct {
	// Row is the classified row.
	Row Row

	// Type is the decided action.
	Type ActionType

	// Changed maps the canonical keys of the fields to send to their
	// values. Populated for create and update only.
	Changed map[string]string
}

// Failure describes one per-item apply failure for the final report.
type Failure struct {
	// JamaID identifies the item, or the row name for creates.
	JamaID string
	// Name is the row's item name.
	Name string
	// Action is the action that was attempted.
	Action ActionType
	// Reason is the error message.
	Reason string
}

// Summary aggregates the outcome of one update run.
type Summary struct {
	// Total is the number of classified rows.
	Total int
	// Creates, Updates, Deletes and Skips count the classified actions.
	Creates int
	Updates int
	Deletes int
	Skips   int
	// Succeeded and Failed count applied actions. Skips are counted in
	// neither.
	Succeeded int
	Failed    int
}

// Config holds tunables for the engine.
type Config struct {
	// ProgressEvery is the reporting granularity: one progress event
	// per this many processed items.
	ProgressEvery int `mapstructure:"progress_every" default:"50"`
	// MaxAttempts bounds the writer's retries for transient failures.
	MaxAttempts int `mapstructure:"max_attempts" default:"4"`
	// RetryBackoffMS is the base backoff between attempts, in milliseconds.
	RetryBackoffMS int `mapstructure:"retry_backoff_ms" default:"1000"`
}
