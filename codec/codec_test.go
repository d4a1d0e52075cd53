package codec

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func allCodecs() []Code {
	return []Code{CodeHuffman, CodeZstd, CodeZstdTight, CodeRaw, CodeNumV0, CodeZlib, CodeNumV1}
}

func TestCodec_RoundTrip(t *testing.T) {
	require := require.New(t)

	inputs := [][]byte{
		{},
		[]byte("a"),
		[]byte("abcabcabcabcabcabcabc"),
		[]byte("the quick brown fox jumps over the lazy dog, the quick brown fox"),
		make([]byte, 4096),
	}

	for _, c := range allCodecs() {
		codec, err := Get(c)
		require.NoError(err)

		for _, in := range inputs {
			enc, err := codec.Encode(in)
			require.NoErrorf(err, "codec=%s", c)

			dec, err := codec.Decode(enc, len(in))
			require.NoErrorf(err, "codec=%s", c)
			require.Equalf(in, dec, "codec=%s", c)
		}
	}
}

func TestCodec_Get_UnknownCode(t *testing.T) {
	_, err := Get(Code(99))
	require.Error(t, err)
}

func TestCode_NameRoundTrip(t *testing.T) {
	require := require.New(t)
	for _, c := range []Code{CodeHuffman, CodeZstd, CodeZstdTight, CodeRaw, CodeMBN, CodeNumV0, CodeZlib, CodeNumV1} {
		got, ok := CodeByName(c.Name())
		require.True(ok)
		require.Equal(c, got)
	}
}

func TestNumV0_RoundTrip(t *testing.T) {
	require := require.New(t)
	vals := []uint64{0, 1, 127, 128, 300, 16384, 1 << 35}

	enc := EncodeUintsV0(vals)
	dec, err := DecodeUintsV0(enc)
	require.NoError(err)
	require.Equal(vals, dec)
}

func TestNumV1_Plain(t *testing.T) {
	require := require.New(t)
	vals := []uint64{5, 10, 7, 0, 999999}

	enc := EncodeUintsV1Plain(vals)
	dec, err := DecodeUintsV1(enc)
	require.NoError(err)
	require.Equal(vals, dec)
}

func TestNumV1_Delta(t *testing.T) {
	require := require.New(t)
	vals := []uint64{100, 105, 103, 200, 50}

	enc := EncodeUintsV1Delta(vals)
	dec, err := DecodeUintsV1(enc)
	require.NoError(err)
	require.Equal(vals, dec)
}

func TestNumV1_RLE(t *testing.T) {
	require := require.New(t)
	vals := []uint64{7, 7, 7, 7, 2, 2, 9}

	enc := EncodeUintsV1RLE(vals)
	dec, err := DecodeUintsV1(enc)
	require.NoError(err)
	require.Equal(vals, dec)
}

func TestHuffman_SingleSymbol(t *testing.T) {
	require := require.New(t)
	in := []byte{5, 5, 5, 5, 5}

	enc, err := huffmanCodec{}.Encode(in)
	require.NoError(err)

	dec, err := huffmanCodec{}.Decode(enc, len(in))
	require.NoError(err)
	require.Equal(in, dec)
}

func TestHuffman_EmptyInput(t *testing.T) {
	require := require.New(t)
	enc, err := huffmanCodec{}.Encode(nil)
	require.NoError(err)

	dec, err := huffmanCodec{}.Decode(enc, 0)
	require.NoError(err)
	require.Empty(dec)
}
