package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	l, err := New(&Config{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(-1)) // debug disabled

	l, err = New(&Config{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.True(t, l.Core().Enabled(-1))
}

func TestWithRunID(t *testing.T) {
	l, err := New(&Config{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, WithRunID(l))
}
