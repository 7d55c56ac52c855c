package reconcile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"reqsync/core/errs"
)

// Engine drives the two flows: fetch (remote tree to rows) and update
// (rows to remote mutations). Processing is strictly sequential; the
// only suspension points are the transport calls.
type Engine struct {
	Source    ItemSource
	Transport Transport
	Reporter  Reporter
	Log       *zap.Logger
	Cfg       Config
}

// DescBlock is one description-edit block produced for a SYSP item
// during fetch: an empty editable grid plus the current description as
// read-only reference.
type DescBlock struct {
	// RowIndex is the index of the owning row in FetchResult.Rows.
	RowIndex int
	// JamaID is the owning item's id cell value, empty for new items.
	JamaID string
	// Table is the editable template grid.
	Table Table
	// Current is the preview of the item's present description.
	Current string
}

// FetchResult is the materialized output of the fetch flow.
type FetchResult struct {
	Items  []Item
	Rows   []Row
	Blocks []DescBlock
}

// UpdateOptions controls the update flow.
type UpdateOptions struct {
	// DryRun performs classification and reporting only; no remote
	// calls are made and no writer is touched.
	DryRun bool
}

// UpdateResult is the outcome of one update run.
type UpdateResult struct {
	// Actions holds every classified row in input order, including skips.
	Actions []ActionRecord
	// Failures lists each per-item apply failure.
	Failures []Failure
	// CreatedIDs lists the remote ids of successful creates, in apply
	// order. They are not written back to the workbook; re-running a
	// partially applied workbook can therefore double-create rows whose
	// creation succeeded here. Operators must patch ids in before a
	// re-run.
	CreatedIDs []int
	Summary    Summary
}

// Fetch walks the remote tree and flattens it into rows, producing one
// description block per SYSP item. Item traversal and row
// materialization report progress separately: the first is network
// bound, the second local.
func (e *Engine) Fetch(ctx context.Context, opts FetchOptions) (*FetchResult, error) {
	fetcher := &Fetcher{
		Source:        e.Source,
		Reporter:      e.reporter(),
		ProgressEvery: e.progressEvery(),
	}
	items, err := fetcher.Fetch(ctx, opts)
	if err != nil {
		return nil, err
	}

	namesBySequence := make(map[string]string, len(items))
	for _, item := range items {
		namesBySequence[item.Sequence] = item.Name
	}

	result := &FetchResult{Items: items}
	for i, item := range items {
		row := EncodeRow(item, BuildPath(item, namesBySequence))
		if item.IsSysp() {
			row.DescriptionRef = fmt.Sprintf("#%d", len(result.Blocks)+1)
			result.Blocks = append(result.Blocks, DescBlock{
				RowIndex: i,
				JamaID:   row.JamaID,
				Table:    NewTemplateTable(),
				Current:  row.CurrentDescription,
			})
		}
		result.Rows = append(result.Rows, row)
		if (i+1)%e.progressEvery() == 0 || i+1 == len(items) {
			e.reporter().Report(Event{Phase: PhaseEncode, Done: i + 1, Total: len(items)})
		}
	}
	return result, nil
}

// Update classifies every row and, unless dry-running, applies the
// non-skip actions grouped as creates, then updates, then deletes,
// preserving input order within each group. One item's failure is
// isolated: it is logged, counted, and the run proceeds.
func (e *Engine) Update(ctx context.Context, rows []Row, opts UpdateOptions) (*UpdateResult, error) {
	result := &UpdateResult{}

	for i, row := range rows {
		rec := Classify(row)
		result.Actions = append(result.Actions, rec)
		switch rec.Type {
		case ActionCreate:
			result.Summary.Creates++
		case ActionUpdate:
			result.Summary.Updates++
		case ActionDelete:
			result.Summary.Deletes++
		case ActionSkip:
			result.Summary.Skips++
		}
		if (i+1)%e.progressEvery() == 0 || i+1 == len(rows) {
			e.reporter().Report(Event{Phase: PhaseClassify, Done: i + 1, Total: len(rows)})
		}
	}
	result.Summary.Total = len(rows)

	if err := validateCreates(result.Actions); err != nil {
		return nil, err
	}

	if opts.DryRun {
		return result, nil
	}

	writer := &Writer{
		Transport:   e.Transport,
		Log:         e.log(),
		MaxAttempts: e.Cfg.MaxAttempts,
		Backoff:     time.Duration(e.Cfg.RetryBackoffMS) * time.Millisecond,
	}

	var queue []ActionRecord
	for _, actionType := range []ActionType{ActionCreate, ActionUpdate, ActionDelete} {
		for _, rec := range result.Actions {
			if rec.Type == actionType {
				queue = append(queue, rec)
			}
		}
	}

	for i, rec := range queue {
		createdID, err := writer.Apply(ctx, rec)
		if err != nil {
			// A transport failure before anything was applied means the
			// store was never reachable; abort instead of failing every
			// row one by one.
			var te *errs.TransportError
			if errors.As(err, &te) && result.Summary.Succeeded == 0 && result.Summary.Failed == 0 {
				return nil, err
			}
			result.Summary.Failed++
			result.Failures = append(result.Failures, Failure{
				JamaID: rec.Row.JamaID,
				Name:   rec.Row.Name(),
				Action: rec.Type,
				Reason: err.Error(),
			})
			e.log().Error("apply failed",
				zap.String("action", string(rec.Type)),
				zap.String("jama_id", rec.Row.JamaID),
				zap.String("name", rec.Row.Name()),
				zap.Error(err))
		} else {
			result.Summary.Succeeded++
			if rec.Type == ActionCreate {
				result.CreatedIDs = append(result.CreatedIDs, createdID)
			}
			e.log().Info("applied",
				zap.String("action", string(rec.Type)),
				zap.String("jama_id", rec.Row.JamaID),
				zap.String("name", rec.Row.Name()))
		}
		if (i+1)%e.progressEvery() == 0 || i+1 == len(queue) {
			e.reporter().Report(Event{Phase: PhaseApply, Done: i + 1, Total: len(queue)})
		}
	}

	return result, nil
}

// validateCreates rejects create rows with no name before any remote
// call is made. Rows read from a workbook are named by their sheet row
// so the operator lands on the right line even when blank rows were
// skipped; rows built in memory fall back to their input position.
func validateCreates(actions []ActionRecord) error {
	var bad []int
	for i, rec := range actions {
		if rec.Type == ActionCreate && rec.Changed[FieldName] == "" {
			row := rec.Row.SheetRow
			if row == 0 {
				row = i + 1
			}
			bad = append(bad, row)
		}
	}
	if len(bad) > 0 {
		return errs.NewFormatError("create rows without a name: rows %v", bad)
	}
	return nil
}

func (e *Engine) reporter() Reporter {
	if e.Reporter != nil {
		return e.Reporter
	}
	return NopReporter{}
}

func (e *Engine) progressEvery() int {
	if e.Cfg.ProgressEvery > 0 {
		return e.Cfg.ProgressEvery
	}
	return 50
}

func (e *Engine) log() *zap.Logger {
	if e.Log != nil {
		return e.Log
	}
	return zap.NewNop()
}
