// Package excel reads and writes the requirement workbook.
//
// The workbook has two sheets: a requirement list with one row per
// item, and a description-edit sheet with one 5-row table block per
// SYSP item linked from the list. The reader turns the list back into
// reconcile rows, rendering each flagged description table to HTML.
package excel
