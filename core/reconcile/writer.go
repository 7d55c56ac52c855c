package reconcile

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"reqsync/core/errs"
)

// Transport is the mutation surface of the remote store. The engine
// issues one blocking call at a time; implementations must not batch.
type Transport interface {
	// CreateItem creates the item and returns its new remote id.
	CreateItem(ctx context.Context, item Item) (int, error)
	// UpdateItem sends the changed fields of an existing item.
	UpdateItem(ctx context.Context, id int, fields map[string]string) error
	// DeleteItem removes an item. Implementations return an error
	// matching errs.ErrNotFound when the id is already gone.
	DeleteItem(ctx context.Context, id int) error
}

const maxBackoff = 30 * time.Second

// Writer applies action records against the transport, one item at a
// time, retrying transient failures with bounded exponential backoff.
type Writer struct {
	Transport Transport
	Log       *zap.Logger
	// MaxAttempts bounds retries; defaults to 4.
	MaxAttempts int
	// Backoff is the base delay before the first retry; defaults to 1s.
	Backoff time.Duration
}

// Apply executes one non-skip action. For creates the new remote id is
// returned. A delete of an already-absent item is success: the desired
// state holds, so it is logged and not counted as a failure.
func (w *Writer) Apply(ctx context.Context, rec ActionRecord) (createdID int, err error) {
	switch rec.Type {
	case ActionCreate:
		item := DecodeRow(rec.Row)
		item.Fields = rec.Changed
		err = w.retry(ctx, func() error {
			id, cerr := w.Transport.CreateItem(ctx, item)
			createdID = id
			return cerr
		})
		return createdID, err

	case ActionUpdate:
		id := parseID(rec.Row.JamaID)
		if id == 0 {
			return 0, errs.NewRemoteError(0, "row has no valid id for update")
		}
		return 0, w.retry(ctx, func() error {
			return w.Transport.UpdateItem(ctx, id, rec.Changed)
		})

	case ActionDelete:
		id := parseID(rec.Row.JamaID)
		if id == 0 {
			return 0, errs.NewRemoteError(0, "row has no valid id for delete")
		}
		err = w.retry(ctx, func() error {
			return w.Transport.DeleteItem(ctx, id)
		})
		if errors.Is(err, errs.ErrNotFound) {
			w.log().Info("item already deleted", zap.Int("id", id))
			return 0, nil
		}
		return 0, err
	}
	return 0, nil
}

// retry runs fn up to MaxAttempts times, backing off exponentially
// between attempts. Only transient failures (timeouts, 5xx, rate
// limits) are retried; validation rejections surface immediately.
func (w *Writer) retry(ctx context.Context, fn func() error) error {
	attempts := w.MaxAttempts
	if attempts <= 0 {
		attempts = 4
	}
	backoff := w.Backoff
	if backoff <= 0 {
		backoff = time.Second
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		err = fn()
		if err == nil || !errs.IsTransient(err) {
			return err
		}
		if attempt == attempts {
			break
		}
		w.log().Warn("transient failure, retrying",
			zap.Int("attempt", attempt),
			zap.Duration("backoff", backoff),
			zap.Error(err))
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return ctx.Err()
		}
		backoff *= 2
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
	}
	return err
}

func (w *Writer) log() *zap.Logger {
	if w.Log != nil {
		return w.Log
	}
	return zap.NewNop()
}
