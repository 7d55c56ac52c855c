// Package mocks provides testify mocks for the reconcile package's
// transport-facing interfaces.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"reqsync/core/reconcile"
)

// Transport is a mock implementation of reconcile.Transport.
type Transport struct {
	mock.Mock
}

// CreateItem mocks the create call.
func (m *Transport) CreateItem(ctx context.Context, item reconcile.Item) (int, error) {
	args := m.Called(ctx, item)
	return args.Int(0), args.Error(1)
}

// UpdateItem mocks the update call.
func (m *Transport) UpdateItem(ctx context.Context, id int, fields map[string]string) error {
	args := m.Called(ctx, id, fields)
	return args.Error(0)
}

// DeleteItem mocks the delete call.
func (m *Transport) DeleteItem(ctx context.Context, id int) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// ItemSource is a mock implementation of reconcile.ItemSource.
type ItemSource struct {
	mock.Mock
}

// ListItems mocks one pagination call.
func (m *ItemSource) ListItems(ctx context.Context, startAt, maxResults int) ([]reconcile.Item, int, error) {
	args := m.Called(ctx, startAt, maxResults)
	var items []reconcile.Item
	if v := args.Get(0); v != nil {
		items = v.([]reconcile.Item)
	}
	return items, args.Int(1), args.Error(2)
}
