package errs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRemoteError_SentinelMatching(t *testing.T) {
	assert.ErrorIs(t, NewRemoteError(404, "gone"), ErrNotFound)
	assert.ErrorIs(t, NewRemoteError(429, "slow down"), ErrRateLimited)
	assert.NotErrorIs(t, NewRemoteError(400, "bad"), ErrNotFound)
}

func TestRemoteError_MatchesThroughWrapping(t *testing.T) {
	err := fmt.Errorf("delete item: %w", NewRemoteError(404, "gone"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestIsTransient(t *testing.T) {
	assert.True(t, IsTransient(NewRemoteError(500, "boom")))
	assert.True(t, IsTransient(NewRemoteError(429, "limit")))
	assert.False(t, IsTransient(NewRemoteError(400, "validation")))
	assert.False(t, IsTransient(NewRemoteError(404, "missing")))

	assert.True(t, IsTransient(NewTransportError("dial", errors.New("refused"))))
	assert.False(t, IsTransient(&TransportError{Op: "auth", Err: errors.New("rejected"), Permanent: true}))

	assert.False(t, IsTransient(errors.New("plain")))
	assert.False(t, IsTransient(NewFormatError("bad sheet")))
}

func TestConfigError_ListsMissingKeys(t *testing.T) {
	err := NewConfigError("jama.api_id", "jama.api_secret")
	assert.Contains(t, err.Error(), "jama.api_id")
	assert.Contains(t, err.Error(), "jama.api_secret")
}
