package persistence

import (
	"fmt"

	"github.com/klauspost/compress/zstd"
)

// zstd.Encoder and zstd.Decoder are safe for concurrent use via EncodeAll
// and DecodeAll.
var (
	blobEncoder *zstd.Encoder
	blobDecoder *zstd.Decoder
)

func init() {
	var err error
	blobEncoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		panic("persistence: zstd encoder initialization failed: " + err.Error())
	}
	blobDecoder, err = zstd.NewReader(nil)
	if err != nil {
		panic("persistence: zstd decoder initialization failed: " + err.Error())
	}
}

func compressBlob(raw []byte) []byte {
	return blobEncoder.EncodeAll(raw, make([]byte, 0, len(raw)/2))
}

func decompressBlob(blob []byte) ([]byte, error) {
	raw, err := blobDecoder.DecodeAll(blob, nil)
	if err != nil {
		return nil, fmt.Errorf("decompress blob: %w", err)
	}

	return raw, nil
}
