package pipeline

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeDecode_SingleStreamBytesLayer(t *testing.T) {
	require := require.New(t)

	spec, err := ParseSpec([]byte(`{"spec":"gcc-ocf.pipeline.v1","layer":"bytes","codec":"zstd"}`))
	require.NoError(err)

	input := []byte("the quick brown fox jumps over the lazy dog")
	out, err := Encode(spec, input)
	require.NoError(err)

	decoded, err := Decode(out)
	require.NoError(err)
	require.Equal(input, decoded)
}

func TestEncodeDecode_MultiStreamVC0AutoMBN(t *testing.T) {
	require := require.New(t)

	spec, err := ParseSpec([]byte(`{"spec":"gcc-ocf.pipeline.v1","layer":"vc0","codec":"raw"}`))
	require.NoError(err)

	input := []byte("Hello, World! 123")
	out, err := Encode(spec, input)
	require.NoError(err)

	decoded, err := Decode(out)
	require.NoError(err)
	require.Equal(input, decoded)
}

func TestEncodeDecode_SplitTextNumsWithStreamCodecs(t *testing.T) {
	require := require.New(t)

	spec, err := ParseSpec([]byte(`{"spec":"gcc-ocf.pipeline.v1","layer":"split_text_nums","codec":"zlib","stream_codecs":{"NUMS":"num_v1"}}`))
	require.NoError(err)

	input := []byte("order 42 shipped, order 7 pending")
	out, err := Encode(spec, input)
	require.NoError(err)

	decoded, err := Decode(out)
	require.NoError(err)
	require.Equal(input, decoded)
}

func TestEncodeDecode_ForcedMBNOnSingleStreamLayer(t *testing.T) {
	require := require.New(t)

	forceTrue := `{"spec":"gcc-ocf.pipeline.v1","layer":"lines_dict","codec":"huffman","mbn":true}`
	spec, err := ParseSpec([]byte(forceTrue))
	require.NoError(err)

	input := []byte("a\nb\na\nb\n")
	out, err := Encode(spec, input)
	require.NoError(err)

	decoded, err := Decode(out)
	require.NoError(err)
	require.Equal(input, decoded)
}

func TestEncode_EmptyInput(t *testing.T) {
	require := require.New(t)

	spec, err := ParseSpec([]byte(`{"spec":"gcc-ocf.pipeline.v1","layer":"bytes"}`))
	require.NoError(err)

	out, err := Encode(spec, nil)
	require.NoError(err)

	decoded, err := Decode(out)
	require.NoError(err)
	require.Empty(decoded)
}
