package reconcile

import (
	"sort"
	"strings"
)

// Canonical field keys for the editable columns plus the description.
const (
	FieldAssignee      = "assignee"
	FieldStatus        = "status"
	FieldTags          = "tags"
	FieldReason        = "reason"
	FieldPreconditions = "preconditions"
	FieldTargetSystem  = "target_system"
	FieldDescription   = "description"
	FieldName          = "name"
)

// EditableFields lists the editable columns in row order. The
// description is handled through the description edit sheet, not as a
// plain cell, so it is not part of this list.
var EditableFields = []string{
	FieldAssignee,
	FieldStatus,
	FieldTags,
	FieldReason,
	FieldPreconditions,
	FieldTargetSystem,
}

// fieldAliases maps normalized spellings to canonical keys. Remote
// projects name custom fields inconsistently (assignee vs assigned,
// target_system vs TargetSystem); normalization happens once at
// ingestion instead of scattering string comparisons.
var fieldAliases = map[string]string{
	"name":          FieldName,
	"assignee":      FieldAssignee,
	"assigned":      FieldAssignee,
	"status":        FieldStatus,
	"tags":          FieldTags,
	"tag":           FieldTags,
	"reason":        FieldReason,
	"preconditions": FieldPreconditions,
	"precondition":  FieldPreconditions,
	"targetsystem":  FieldTargetSystem,
	"description":   FieldDescription,
}

// CanonicalField maps any recognized spelling, casing, or separator
// variant of a field name to its canonical key. The second return is
// false for unrecognized names.
func CanonicalField(name string) (string, bool) {
	normalized := strings.ToLower(name)
	normalized = strings.ReplaceAll(normalized, "_", "")
	normalized = strings.ReplaceAll(normalized, "-", "")
	normalized = strings.ReplaceAll(normalized, " ", "")
	canonical, ok := fieldAliases[normalized]
	return canonical, ok
}

// CanonicalizeFields converts a raw field map, as returned by the
// remote store, into a canonical-key map. Raw keys are visited in
// sorted order so the winner among variants of the same field is
// deterministic. Unrecognized keys are returned separately so callers
// can warn.
func CanonicalizeFields(raw map[string]string) (fields map[string]string, unrecognized []string) {
	keys := make([]string, 0, len(raw))
	for key := range raw {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	fields = make(map[string]string, len(raw))
	for _, key := range keys {
		canonical, ok := CanonicalField(key)
		if !ok {
			unrecognized = append(unrecognized, key)
			continue
		}
		if _, exists := fields[canonical]; exists {
			continue
		}
		fields[canonical] = raw[key]
	}
	return fields, unrecognized
}

func containsSysp(name string) bool {
	return strings.Contains(name, SyspMarker)
}
