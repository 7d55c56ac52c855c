package excel

import (
	"fmt"

	"reqsync/core/reconcile"
)

// WriteTemplate saves a sample workbook at path demonstrating each row
// pattern: create, update, skip, delete and a SYSP item with an
// editable description block. No remote access is needed.
func WriteTemplate(path string) error {
	res := templateResult()

	f, err := buildWorkbook(res)
	if err != nil {
		return err
	}
	defer f.Close()

	// The update samples ship with the flag already set so the sheet
	// shows a ready-to-apply row.
	f.SetCellValue(SheetRequirements, cellName(colUpdateFlag, 3), reconcile.UpdateToken)
	f.SetCellValue(SheetRequirements, cellName(colUpdateFlag, 6), reconcile.UpdateToken)

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save template: %w", err)
	}
	return nil
}

func templateResult() *reconcile.FetchResult {
	path := func(names ...string) []string {
		p := make([]string, reconcile.MaxDepth)
		copy(p, names)
		return p
	}

	rows := []reconcile.Row{
		{
			Note:     "新規作成の例: JAMA_IDを空にする",
			Path:     path("運転者要求", "車線維持支援", "新規要求の名称"),
			ItemType: "Requirement",
			Fields: map[string]string{
				reconcile.FieldAssignee: "山田太郎",
				reconcile.FieldStatus:   "Draft",
				reconcile.FieldReason:   "新しい運転シナリオへの対応",
			},
		},
		{
			JamaID:   "12345",
			Note:     "更新の例: Description更新を「する」にする",
			Sequence: "1.2.1",
			Path:     path("運転者要求", "車線維持支援", "操舵量の上限"),
			ItemType: "Requirement",
			Fields: map[string]string{
				reconcile.FieldStatus:       "In Review",
				reconcile.FieldTargetSystem: "LKA",
			},
			CurrentDescription: "操舵量は閾値以内とする",
		},
		{
			JamaID:             "12346",
			Note:               "変更なしの例: この行はスキップされる",
			Sequence:           "1.2.2",
			Path:               path("運転者要求", "車線維持支援", "警報音の仕様"),
			ItemType:           "Requirement",
			Fields:             map[string]string{},
			CurrentDescription: "警報音は2秒以内に停止する",
		},
		{
			JamaID:   "12347",
			Note:     reconcile.DeleteSentinel,
			Sequence: "1.2.3",
			Path:     path("運転者要求", "車線維持支援", "廃止予定の要求"),
			ItemType: "Requirement",
			Fields:   map[string]string{},
		},
		{
			JamaID:         "12348",
			Note:           "SYSPの例: Description_editシートの表を編集する",
			Sequence:       "1.3.1",
			Path:           path("運転者要求", "システム挙動", "SYSP 車線逸脱時の挙動"),
			ItemType:       "Requirement",
			Fields:         map[string]string{},
			DescriptionRef: "#1",
		},
	}

	blocks := []reconcile.DescBlock{
		{
			RowIndex: 4,
			JamaID:   "12348",
			Table:    reconcile.NewTemplateTable(),
		},
	}

	return &reconcile.FetchResult{Rows: rows, Blocks: blocks}
}
