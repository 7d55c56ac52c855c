package reconcile_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"reqsync/core/errs"
	"reqsync/core/reconcile"
	"reqsync/core/reconcile/mocks"
)

func testConfig() reconcile.Config {
	return reconcile.Config{ProgressEvery: 50, MaxAttempts: 1, RetryBackoffMS: 1}
}

func TestEngine_Fetch_BuildsRowsAndBlocks(t *testing.T) {
	items := []reconcile.Item{
		{ID: 1, Name: "Driver requirements", Sequence: "1"},
		{ID: 2, Name: "SYSP Lane departure", Sequence: "1.1",
			Fields: map[string]string{reconcile.FieldDescription: "<p>old behavior</p>"}},
		{ID: 3, Name: "Alert timing", Sequence: "1.2"},
	}
	source := new(mocks.ItemSource)
	source.On("ListItems", mock.Anything, 0, 50).Return(items, len(items), nil).Once()

	engine := &reconcile.Engine{Source: source, Cfg: testConfig()}

	res, err := engine.Fetch(context.Background(), reconcile.FetchOptions{})
	require.NoError(t, err)
	require.Len(t, res.Rows, 3)

	// Only the SYSP item gets a description block, numbered from #1.
	require.Len(t, res.Blocks, 1)
	assert.Equal(t, 1, res.Blocks[0].RowIndex)
	assert.Equal(t, "2", res.Blocks[0].JamaID)
	assert.Equal(t, "#1", res.Rows[1].DescriptionRef)
	assert.Empty(t, res.Rows[0].DescriptionRef)

	// Hierarchy columns resolve from the fetched set.
	assert.Equal(t, "Driver requirements", res.Rows[1].Path[0])
	assert.Equal(t, "SYSP Lane departure", res.Rows[1].Path[1])
}

func TestEngine_Update_DryRunTouchesNothing(t *testing.T) {
	transport := new(mocks.Transport)
	engine := &reconcile.Engine{Transport: transport, Cfg: testConfig()}

	rows := []reconcile.Row{
		{Path: []string{"New item"}},
		{JamaID: "2", Note: "削除"},
		{JamaID: "3", UpdateFlag: true, Fields: map[string]string{reconcile.FieldStatus: "Approved"}},
		{JamaID: "4"},
	}

	res, err := engine.Update(context.Background(), rows, reconcile.UpdateOptions{DryRun: true})
	require.NoError(t, err)

	assert.Equal(t, 4, res.Summary.Total)
	assert.Equal(t, 1, res.Summary.Creates)
	assert.Equal(t, 1, res.Summary.Updates)
	assert.Equal(t, 1, res.Summary.Deletes)
	assert.Equal(t, 1, res.Summary.Skips)
	assert.Zero(t, res.Summary.Succeeded)
	transport.AssertNotCalled(t, "CreateItem", mock.Anything, mock.Anything)
	transport.AssertNotCalled(t, "UpdateItem", mock.Anything, mock.Anything, mock.Anything)
	transport.AssertNotCalled(t, "DeleteItem", mock.Anything, mock.Anything)
}

func TestEngine_Update_AppliesCreatesThenUpdatesThenDeletes(t *testing.T) {
	var order []string
	transport := new(mocks.Transport)
	transport.On("DeleteItem", mock.Anything, 1).Run(func(mock.Arguments) {
		order = append(order, "delete")
	}).Return(nil).Once()
	transport.On("UpdateItem", mock.Anything, 2, mock.Anything).Run(func(mock.Arguments) {
		order = append(order, "update")
	}).Return(nil).Once()
	transport.On("CreateItem", mock.Anything, mock.Anything).Run(func(mock.Arguments) {
		order = append(order, "create")
	}).Return(100, nil).Once()

	engine := &reconcile.Engine{Transport: transport, Cfg: testConfig()}

	// Sheet order is delete, update, create; apply order must regroup.
	rows := []reconcile.Row{
		{JamaID: "1", Note: "削除"},
		{JamaID: "2", UpdateFlag: true, Fields: map[string]string{reconcile.FieldStatus: "Approved"}},
		{Path: []string{"New item"}},
	}

	res, err := engine.Update(context.Background(), rows, reconcile.UpdateOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"create", "update", "delete"}, order)
	assert.Equal(t, []int{100}, res.CreatedIDs)
	assert.Equal(t, 3, res.Summary.Succeeded)
}

func TestEngine_Update_OneFailureDoesNotStopTheRun(t *testing.T) {
	transport := new(mocks.Transport)
	for i := 1; i <= 10; i++ {
		call := transport.On("UpdateItem", mock.Anything, i, mock.Anything).Once()
		if i == 4 {
			call.Return(errs.NewRemoteError(400, "field validation failed"))
		} else {
			call.Return(nil)
		}
	}

	engine := &reconcile.Engine{Transport: transport, Cfg: testConfig()}

	var rows []reconcile.Row
	for i := 1; i <= 10; i++ {
		rows = append(rows, reconcile.Row{
			JamaID:     fmt.Sprintf("%d", i),
			UpdateFlag: true,
			Fields:     map[string]string{reconcile.FieldStatus: "Approved"},
		})
	}

	res, err := engine.Update(context.Background(), rows, reconcile.UpdateOptions{})
	require.NoError(t, err)

	assert.Equal(t, 9, res.Summary.Succeeded)
	assert.Equal(t, 1, res.Summary.Failed)
	require.Len(t, res.Failures, 1)
	assert.Equal(t, "4", res.Failures[0].JamaID)
	assert.Equal(t, reconcile.ActionUpdate, res.Failures[0].Action)
	transport.AssertNumberOfCalls(t, "UpdateItem", 10)
}

func TestEngine_Update_AbortsWhenStoreNeverReachable(t *testing.T) {
	transport := new(mocks.Transport)
	transport.On("UpdateItem", mock.Anything, 1, mock.Anything).
		Return(errs.NewTransportError("update item", errors.New("connection refused")))

	engine := &reconcile.Engine{Transport: transport, Cfg: testConfig()}

	rows := []reconcile.Row{
		{JamaID: "1", UpdateFlag: true, Fields: map[string]string{reconcile.FieldStatus: "x"}},
		{JamaID: "2", UpdateFlag: true, Fields: map[string]string{reconcile.FieldStatus: "x"}},
	}

	_, err := engine.Update(context.Background(), rows, reconcile.UpdateOptions{})

	var te *errs.TransportError
	require.ErrorAs(t, err, &te)
	// The second row must not be attempted after the abort.
	transport.AssertNotCalled(t, "UpdateItem", mock.Anything, 2, mock.Anything)
}

func TestEngine_Update_RejectsNamelessCreates(t *testing.T) {
	engine := &reconcile.Engine{Cfg: testConfig()}

	rows := []reconcile.Row{
		{Fields: map[string]string{reconcile.FieldStatus: "Draft"}},
	}

	_, err := engine.Update(context.Background(), rows, reconcile.UpdateOptions{})

	var fe *errs.FormatError
	require.ErrorAs(t, err, &fe)
}

func TestEngine_Update_NamelessCreateNamesSheetRow(t *testing.T) {
	engine := &reconcile.Engine{Cfg: testConfig()}

	// Blank workbook rows shift slice positions; the error must carry
	// the workbook row, not the position after skipping.
	rows := []reconcile.Row{
		{JamaID: "1", SheetRow: 2},
		{SheetRow: 9, Fields: map[string]string{reconcile.FieldStatus: "Draft"}},
	}

	_, err := engine.Update(context.Background(), rows, reconcile.UpdateOptions{})

	var fe *errs.FormatError
	require.ErrorAs(t, err, &fe)
	assert.Contains(t, fe.Message, "9")
	assert.NotContains(t, fe.Message, "2")
}
