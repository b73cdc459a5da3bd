package video

import (
	"fmt"

	"github.com/klauspost/compress/zstd"

	"tvd/internal/structures"
	"tvd/internal/video/interfaces"
)

type ZstdCompression struct {
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

func (z *ZstdCompression) Compress(val []byte) ([]byte, error) {
	return z.encoder.EncodeAll(val, make([]byte, 0, len(val)/2)), nil
}

func (z *ZstdCompression) Decompress(val []byte) ([]byte, error) {
	return z.decoder.DecodeAll(val, nil)
}

// NewCompressor returns a zstd compressor when persistence compression is
// enabled, otherwise a passthrough that keeps the store file plain JSON.
func NewCompressor(conf *structures.Config) (interfaces.CompressorInterface, error) {
	if !conf.Persistence.Compress {
		return &noopCompression{}, nil
	}
	encoder, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(0))
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}
	return &ZstdCompression{encoder: encoder, decoder: decoder}, nil
}

type noopCompression struct{}

func (n *noopCompression) Compress(val []byte) ([]byte, error)   { return val, nil }
func (n *noopCompression) Decompress(val []byte) ([]byte, error) { return val, nil }
