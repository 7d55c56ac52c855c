package reconcile_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"reqsync/core/reconcile"
	"reqsync/core/reconcile/mocks"
)

// sourceOf builds a mocked paginated source over a fixed item list.
func sourceOf(items []reconcile.Item, pageSize int) *mocks.ItemSource {
	source := new(mocks.ItemSource)
	for start := 0; ; start += pageSize {
		end := start + pageSize
		if end > len(items) {
			end = len(items)
		}
		page := items[start:end]
		source.On("ListItems", mock.Anything, start, pageSize).Return(page, len(items), nil).Once()
		if end == len(items) {
			break
		}
	}
	return source
}

func TestFetcher_Pagination(t *testing.T) {
	var all []reconcile.Item
	for i := 0; i < 7; i++ {
		all = append(all, reconcile.Item{
			ID:       i + 1,
			Name:     fmt.Sprintf("item %d", i+1),
			Sequence: fmt.Sprintf("1.%d", i+1),
		})
	}

	fetcher := &reconcile.Fetcher{Source: sourceOf(all, 3), PageSize: 3}

	items, err := fetcher.Fetch(context.Background(), reconcile.FetchOptions{})
	require.NoError(t, err)
	assert.Len(t, items, 7)
	assert.Equal(t, all, items)
}

func TestFetcher_MaxDepth(t *testing.T) {
	all := []reconcile.Item{
		{ID: 1, Sequence: "1"},
		{ID: 2, Sequence: "1.1"},
		{ID: 3, Sequence: "1.1.1"},
		{ID: 4, Sequence: "1.2"},
	}

	fetcher := &reconcile.Fetcher{Source: sourceOf(all, 10), PageSize: 10}

	items, err := fetcher.Fetch(context.Background(), reconcile.FetchOptions{MaxDepth: 2})
	require.NoError(t, err)
	require.Len(t, items, 3)
	for _, item := range items {
		assert.LessOrEqual(t, item.Depth(), 2)
	}
}

func TestFetcher_MaxCountStopsEarly(t *testing.T) {
	var all []reconcile.Item
	for i := 0; i < 120; i++ {
		all = append(all, reconcile.Item{ID: i + 1, Sequence: fmt.Sprintf("1.%d", i+1)})
	}

	source := new(mocks.ItemSource)
	source.On("ListItems", mock.Anything, 0, 50).Return(all[:50], len(all), nil).Once()

	fetcher := &reconcile.Fetcher{Source: source}

	items, err := fetcher.Fetch(context.Background(), reconcile.FetchOptions{MaxCount: 50})
	require.NoError(t, err)
	assert.Len(t, items, 50)
	// The second page must never be requested.
	source.AssertNumberOfCalls(t, "ListItems", 1)
}

func TestFetcher_RootSubtree(t *testing.T) {
	all := []reconcile.Item{
		{ID: 1, Name: "Root", Sequence: "1"},
		{ID: 2, Name: "Target", Sequence: "1.2"},
		{ID: 3, Name: "Child", Sequence: "1.2.1"},
		{ID: 4, Name: "Grandchild", Sequence: "1.2.1.1"},
		{ID: 5, Name: "Sibling", Sequence: "1.3"},
		{ID: 6, Name: "Lookalike", Sequence: "1.20"},
	}

	fetcher := &reconcile.Fetcher{Source: sourceOf(all, 10), PageSize: 10}

	items, err := fetcher.Fetch(context.Background(), reconcile.FetchOptions{RootSequence: "1.2"})
	require.NoError(t, err)

	var ids []int
	for _, item := range items {
		ids = append(ids, item.ID)
	}
	// "1.20" shares a string prefix with "1.2" but is not a descendant.
	assert.Equal(t, []int{2, 3, 4}, ids)
}

func TestFetcher_RootDepthIsRelative(t *testing.T) {
	all := []reconcile.Item{
		{ID: 1, Name: "Target", Sequence: "1.2"},
		{ID: 2, Name: "Child", Sequence: "1.2.1"},
		{ID: 3, Name: "Grandchild", Sequence: "1.2.1.1"},
	}

	fetcher := &reconcile.Fetcher{Source: sourceOf(all, 10), PageSize: 10}

	items, err := fetcher.Fetch(context.Background(), reconcile.FetchOptions{RootName: "Target", MaxDepth: 1})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Child", items[1].Name)
}

func TestFetcher_MaxCountWithRootFilter(t *testing.T) {
	all := []reconcile.Item{
		{ID: 1, Name: "Before", Sequence: "1.1"},
		{ID: 2, Name: "Target", Sequence: "1.2"},
		{ID: 3, Name: "Child", Sequence: "1.2.1"},
		{ID: 4, Name: "Grandchild", Sequence: "1.2.1.1"},
	}

	// The matched root counts against the cap like any other item.
	fetcher := &reconcile.Fetcher{Source: sourceOf(all, 10), PageSize: 10}
	items, err := fetcher.Fetch(context.Background(), reconcile.FetchOptions{
		RootName: "Target",
		MaxCount: 1,
	})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Target", items[0].Name)

	fetcher = &reconcile.Fetcher{Source: sourceOf(all, 10), PageSize: 10}
	items, err = fetcher.Fetch(context.Background(), reconcile.FetchOptions{
		RootName: "Target",
		MaxCount: 2,
	})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Child", items[1].Name)
}

func TestFetcher_RootNotFoundYieldsEmpty(t *testing.T) {
	all := []reconcile.Item{{ID: 1, Name: "Only", Sequence: "1"}}

	fetcher := &reconcile.Fetcher{Source: sourceOf(all, 10), PageSize: 10}

	items, err := fetcher.Fetch(context.Background(), reconcile.FetchOptions{RootName: "Missing"})
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestFetcher_ReportsProgress(t *testing.T) {
	var all []reconcile.Item
	for i := 0; i < 5; i++ {
		all = append(all, reconcile.Item{ID: i + 1, Sequence: fmt.Sprintf("1.%d", i+1)})
	}

	var events []reconcile.Event
	fetcher := &reconcile.Fetcher{
		Source:        sourceOf(all, 10),
		PageSize:      10,
		ProgressEvery: 2,
		Reporter: reconcile.ReporterFunc(func(ev reconcile.Event) {
			events = append(events, ev)
		}),
	}

	_, err := fetcher.Fetch(context.Background(), reconcile.FetchOptions{})
	require.NoError(t, err)
	require.NotEmpty(t, events)
	last := events[len(events)-1]
	assert.Equal(t, reconcile.PhaseFetch, last.Phase)
	assert.Equal(t, 5, last.Done)
	assert.Equal(t, 5, last.Total)
}
