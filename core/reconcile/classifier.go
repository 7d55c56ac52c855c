package reconcile

// Classify decides the action for one row. It is a pure function of the
// row's identifier, note and update-flag cells plus the populated
// editable fields.
//
// The decision table, first match wins:
//
//	id empty                          -> create
//	id present, note == DeleteSentinel -> delete
//	id present, update flag set        -> update
//	otherwise                          -> skip
//
// The sentinel comparison is exact equality. "削除予定" is a comment,
// not a delete request.
func Classify(row Row) ActionRecord {
	if row.JamaID == "" {
		return ActionRecord{Row: row, Type: ActionCreate, Changed: createFields(row)}
	}
	if row.Note == DeleteSentinel {
		return ActionRecord{Row: row, Type: ActionDelete}
	}
	if row.UpdateFlag {
		return ActionRecord{Row: row, Type: ActionUpdate, Changed: populatedFields(row)}
	}
	return ActionRecord{Row: row, Type: ActionSkip}
}

// populatedFields collects the non-empty editable cells. Blank cells
// signal "retain the remote value"; there is no way to clear a field to
// empty through this surface.
func populatedFields(row Row) map[string]string {
	changed := make(map[string]string)
	for _, key := range EditableFields {
		if value, ok := row.Fields[key]; ok && value != "" {
			changed[key] = value
		}
	}
	if desc, ok := row.Fields[FieldDescription]; ok && desc != "" {
		changed[FieldDescription] = desc
	}
	return changed
}

// createFields is populatedFields plus the item name; unpopulated
// columns stay out of the create payload so remote defaults apply.
func createFields(row Row) map[string]string {
	changed := populatedFields(row)
	if name := row.Name(); name != "" {
		changed[FieldName] = name
	}
	return changed
}
