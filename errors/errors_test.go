package errors

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCarriesLocation(t *testing.T) {
	err := New("bad value %d", 7)
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "[errors_test.go:"), err.Error())
	assert.Contains(t, err.Error(), "bad value 7")
}

func TestWrapf(t *testing.T) {
	assert.Nil(t, Wrapf(nil, "ignored"))

	err := Wrapf(io.EOF, "reading %s", "config")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading config: EOF")
	assert.True(t, Is(err, io.EOF))
}

func TestSentinelComparable(t *testing.T) {
	errBusy := Sentinel("busy")
	wrapped := Wrapf(errBusy, "submit")
	assert.True(t, Is(wrapped, errBusy))
	assert.Equal(t, "busy", errBusy.Error())
}
