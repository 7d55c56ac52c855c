package reconcile

import (
	"strconv"
	"strings"
)

// EncodeRow maps one remote item and its ancestor path onto a row. It
// is a pure function: the same item and path always yield the same row.
// The path is right-padded with empty strings to MaxDepth; segments
// beyond MaxDepth are not representable and are cut off.
func EncodeRow(item Item, ancestorPath []string) Row {
	path := make([]string, MaxDepth)
	for i, segment := range ancestorPath {
		if i >= MaxDepth {
			break
		}
		path[i] = segment
	}

	fields := make(map[string]string)
	for _, key := range EditableFields {
		if value := item.Fields[key]; value != "" {
			fields[key] = value
		}
	}

	return Row{
		JamaID:             formatID(item.ID),
		Sequence:           item.Sequence,
		Path:               path,
		ItemType:           "Requirement",
		Fields:             fields,
		CurrentDescription: PreviewHTML(item.Fields[FieldDescription]),
	}
}

// DecodeRow is the inverse of EncodeRow: it reconstructs the partial
// item carried by a row. Unpopulated editable columns stay absent from
// the field map so that blank cells never overwrite remote values. The
// note and update-flag cells travel on the row itself and are read by
// the classifier, not here.
func DecodeRow(row Row) Item {
	fields := make(map[string]string)
	for _, key := range EditableFields {
		if value, ok := row.Fields[key]; ok && value != "" {
			fields[key] = value
		}
	}
	if desc, ok := row.Fields[FieldDescription]; ok && desc != "" {
		fields[FieldDescription] = desc
	}

	return Item{
		ID:       parseID(row.JamaID),
		Name:     row.Name(),
		Sequence: row.Sequence,
		Fields:   fields,
	}
}

// BuildPath resolves the ancestor names of an item from a
// sequence-to-name index covering the fetched set. Each prefix of the
// dotted sequence names one level; unresolvable prefixes (ancestors
// outside the fetched subtree) map to empty segments.
func BuildPath(item Item, namesBySequence map[string]string) []string {
	if item.Sequence == "" {
		return []string{item.Name}
	}
	parts := strings.Split(item.Sequence, ".")
	path := make([]string, 0, len(parts))
	for i := range parts {
		prefix := strings.Join(parts[:i+1], ".")
		path = append(path, namesBySequence[prefix])
	}
	// The deepest level is the item itself even when the index misses it.
	if path[len(path)-1] == "" {
		path[len(path)-1] = item.Name
	}
	return path
}

func formatID(id int) string {
	if id == 0 {
		return ""
	}
	return strconv.Itoa(id)
}

func parseID(s string) int {
	id, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || id < 0 {
		return 0
	}
	return id
}
