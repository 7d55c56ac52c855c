// Package reconcile implements the synchronization engine between the
// remote requirement hierarchy and its tabular editing surface.
//
// The fetch flow walks the remote tree page by page, flattens each item
// into a fixed-layout row, and emits an editable description block for
// every SYSP item. The update flow classifies each row into one of
// create, update, delete or skip via a fixed decision table, then
// applies the non-skip actions one at a time with per-item failure
// isolation. A dry run stops after classification.
//
// The package is transport-agnostic: the ItemSource and Transport
// interfaces are implemented by core/jama and mocked in tests.
package reconcile
