package compress

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/gobwire/format"
)

// sampleStream mimics an encoded stream: a type definition followed by many
// small value messages with repeating structure.
func sampleStream() []byte {
	var buf bytes.Buffer
	buf.Write([]byte{31, 255, 129, 3, 1, 1, 5, 'P', 'o', 'i', 'n', 't', 1, 255, 130, 0,
		1, 2, 1, 1, 'X', 1, 4, 0, 1, 1, 'Y', 1, 4, 0, 0, 0})
	for i := 0; i < 256; i++ {
		buf.Write([]byte{7, 255, 130, 1, byte(i), 1, byte(i), 0})
	}

	return buf.Bytes()
}

func TestCodec_RoundTrip(t *testing.T) {
	types := []format.CompressionType{
		format.CompressionNone,
		format.CompressionZstd,
		format.CompressionS2,
		format.CompressionLZ4,
	}

	data := sampleStream()
	for _, ct := range types {
		t.Run(ct.String(), func(t *testing.T) {
			codec, err := GetCodec(ct)
			require.NoError(t, err)

			compressed, err := codec.Compress(data)
			require.NoError(t, err)

			restored, err := codec.Decompress(compressed)
			require.NoError(t, err)
			require.Equal(t, data, restored)
		})
	}
}

func TestCodec_EmptyInput(t *testing.T) {
	for _, codec := range []Codec{NewS2Compressor(), NewLZ4Compressor(), NewZstdCompressor()} {
		compressed, err := codec.Compress(nil)
		require.NoError(t, err)

		restored, err := codec.Decompress(compressed)
		require.NoError(t, err)
		require.Empty(t, restored)
	}
}

func TestCodec_CompressesRepetitiveStream(t *testing.T) {
	data := sampleStream()
	for _, codec := range []Codec{NewZstdCompressor(), NewS2Compressor(), NewLZ4Compressor()} {
		compressed, err := codec.Compress(data)
		require.NoError(t, err)
		require.Less(t, len(compressed), len(data))
	}
}

func TestCodec_DecompressCorruptedData(t *testing.T) {
	garbage := []byte{0xde, 0xad, 0xbe, 0xef, 0x01, 0x02, 0x03}

	zstd := NewZstdCompressor()
	_, err := zstd.Decompress(garbage)
	require.Error(t, err)

	s2c := NewS2Compressor()
	_, err = s2c.Decompress(garbage)
	require.Error(t, err)
}

func TestCreateCodec(t *testing.T) {
	for _, ct := range []format.CompressionType{
		format.CompressionNone,
		format.CompressionZstd,
		format.CompressionS2,
		format.CompressionLZ4,
	} {
		codec, err := CreateCodec(ct, "payload")
		require.NoError(t, err)
		require.NotNil(t, codec)
	}

	_, err := CreateCodec(format.CompressionType(0x7f), "payload")
	require.Error(t, err)

	_, err = GetCodec(format.CompressionType(0x7f))
	require.Error(t, err)
}

func TestNoOpCompressor_SharesInput(t *testing.T) {
	codec := NewNoOpCompressor()
	data := []byte{1, 2, 3}

	out, err := codec.Compress(data)
	require.NoError(t, err)
	require.Equal(t, &data[0], &out[0])
}
