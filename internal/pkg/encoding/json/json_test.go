package json

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeString(t *testing.T) {
	t.Parallel()
	value := map[string]any{"b": 2, "a": 1}
	assert.Equal(t, `{"a":1,"b":2}`, MustEncodeString(value, false))
	assert.Equal(t, "{\n  \"a\": 1,\n  \"b\": 2\n}", MustEncodeString(value, true))
}

func TestDecodeString(t *testing.T) {
	t.Parallel()
	var target map[string]int
	require.NoError(t, DecodeString(`{"a":1}`, &target))
	assert.Equal(t, map[string]int{"a": 1}, target)
}

func TestDecodeString_Invalid(t *testing.T) {
	t.Parallel()
	var target map[string]int
	err := DecodeString(`{`, &target)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot decode JSON")
}
