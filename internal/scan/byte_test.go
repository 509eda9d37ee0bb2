package scan

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestByteSource_OneUnitPerByte(t *testing.T) {
	input := "a\x00\xc3\xa9" // the UTF-8 bytes of é stay two separate units
	units := drain(t, NewByteSource(strings.NewReader(input)))

	require.Len(t, units, 4)
	for i, u := range units {
		assert.True(t, u.Valid)
		assert.Equal(t, 1, u.Width)
		assert.Equal(t, rune(input[i]), u.Scalar)
	}
	assert.Equal(t, []byte(input), rawBytes(units))
}

func TestByteSource_Unget(t *testing.T) {
	src := NewByteSource(strings.NewReader("ab"))

	a, err := src.Next()
	require.NoError(t, err)
	src.Unget(a)

	again, err := src.Next()
	require.NoError(t, err)
	assert.Equal(t, a, again)

	b, err := src.Next()
	require.NoError(t, err)
	assert.Equal(t, rune('b'), b.Scalar)

	_, err = src.Next()
	assert.Equal(t, io.EOF, err)
}

func TestByteSource_Empty(t *testing.T) {
	_, err := NewByteSource(strings.NewReader("")).Next()
	assert.Equal(t, io.EOF, err)
}
