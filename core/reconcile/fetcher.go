package reconcile

import (
	"context"
	"strings"
)

// ItemSource produces one page of the remote item tree per call, in the
// store's native order. It is the pagination seam between the engine
// and the transport client: a fresh traversal always starts over at
// startAt zero, mid-stream restarts are not supported.
type ItemSource interface {
	// ListItems returns the page of items beginning at startAt plus the
	// total item count as reported by the store.
	ListItems(ctx context.Context, startAt, maxResults int) ([]Item, int, error)
}

// FetchOptions filters a traversal.
type FetchOptions struct {
	// RootName selects a starting node by exact name match.
	RootName string
	// RootSequence selects a starting node by exact sequence match.
	RootSequence string
	// MaxDepth truncates the traversal; zero means unlimited. With a
	// root filter the depth is relative to the matched root.
	MaxDepth int
	// MaxCount is a hard stop on emitted items; zero means unlimited.
	MaxCount int
}

func (o FetchOptions) hasRoot() bool {
	return o.RootName != "" || o.RootSequence != ""
}

// Fetcher walks the remote item tree page by page, applying the root
// filter and the depth/count caps, and reports traversal progress.
type Fetcher struct {
	Source   ItemSource
	Reporter Reporter
	// PageSize is the pagination window; defaults to 50.
	PageSize int
	// ProgressEvery is the reporting granularity; defaults to 50.
	ProgressEvery int
}

const defaultPageSize = 50

// Fetch materializes the filtered traversal. A root filter that
// matches nothing yields an empty result, the same as a matched root
// with no descendants; callers needing to tell these apart must
// pre-check the root. Transport failures surface unchanged.
func (f *Fetcher) Fetch(ctx context.Context, opts FetchOptions) ([]Item, error) {
	pageSize := f.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	every := f.ProgressEvery
	if every <= 0 {
		every = defaultPageSize
	}
	reporter := f.Reporter
	if reporter == nil {
		reporter = NopReporter{}
	}

	var (
		items     []Item
		startAt   int
		total     = TotalUnknown
		seen      int
		rootFound bool
		rootSeq   string
		rootDepth int
	)

	for {
		page, reportedTotal, err := f.Source.ListItems(ctx, startAt, pageSize)
		if err != nil {
			return nil, err
		}
		if reportedTotal > 0 {
			total = reportedTotal
		}
		if len(page) == 0 {
			break
		}

		for _, item := range page {
			seen++
			if seen%every == 0 {
				reporter.Report(Event{Phase: PhaseFetch, Done: seen, Total: total})
			}

			if opts.hasRoot() {
				if !rootFound {
					if (opts.RootSequence == "" || item.Sequence != opts.RootSequence) &&
						(opts.RootName == "" || item.Name != opts.RootName) {
						continue
					}
					// The root itself counts against MaxCount like any
					// other emitted item.
					rootFound = true
					rootSeq = item.Sequence
					rootDepth = item.Depth()
				} else {
					if !strings.HasPrefix(item.Sequence, rootSeq+".") {
						continue
					}
					if opts.MaxDepth > 0 && item.Depth()-rootDepth > opts.MaxDepth {
						continue
					}
				}
			} else if opts.MaxDepth > 0 && item.Depth() > opts.MaxDepth {
				continue
			}

			items = append(items, item)
			if opts.MaxCount > 0 && len(items) >= opts.MaxCount {
				reporter.Report(Event{Phase: PhaseFetch, Done: seen, Total: total})
				return items, nil
			}
		}

		startAt += pageSize
		if total != TotalUnknown && startAt >= total {
			break
		}
	}

	reporter.Report(Event{Phase: PhaseFetch, Done: seen, Total: total})
	return items, nil
}
