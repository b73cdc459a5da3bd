package video

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tvd/internal/structures"
)

func TestZstdCompressor_Roundtrip(t *testing.T) {
	c, err := NewCompressor(&structures.Config{
		Persistence: structures.Persistence{Compress: true},
	})
	require.NoError(t, err)

	input := []byte(`{"100/7":{"nickName":"movie","createdAt":1000}}`)
	compressed, err := c.Compress(input)
	require.NoError(t, err)
	assert.NotEqual(t, input, compressed)

	output, err := c.Decompress(compressed)
	require.NoError(t, err)
	assert.Equal(t, input, output)
}

func TestNoopCompressor_Passthrough(t *testing.T) {
	c, err := NewCompressor(&structures.Config{})
	require.NoError(t, err)

	input := []byte("plain json stays plain")
	compressed, err := c.Compress(input)
	require.NoError(t, err)
	assert.Equal(t, input, compressed)

	output, err := c.Decompress(compressed)
	require.NoError(t, err)
	assert.Equal(t, input, output)
}

func TestZstdCompressor_DecompressGarbage(t *testing.T) {
	c, err := NewCompressor(&structures.Config{
		Persistence: structures.Persistence{Compress: true},
	})
	require.NoError(t, err)

	_, err = c.Decompress([]byte("definitely not zstd"))
	assert.Error(t, err)
}
