package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_Verbosity(t *testing.T) {
	log, err := NewLogger(DEBUG, false)
	require.NoError(t, err)
	assert.True(t, log.V(DEBUG).Enabled())
	assert.False(t, log.V(TRACE).Enabled())

	quiet, err := NewLogger(0, true)
	require.NoError(t, err)
	assert.True(t, quiet.Enabled())
	assert.False(t, quiet.V(DEBUG).Enabled())

	_, err = NewLogger(-1, false)
	assert.Error(t, err)
}
