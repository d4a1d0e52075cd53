package decode

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gcomneno/gcc-ocf/codec"
	"github.com/gcomneno/gcc-ocf/container"
	"github.com/gcomneno/gcc-ocf/layer"
	"github.com/gcomneno/gcc-ocf/mbn"
)

// buildSinglePayload mirrors the pipeline engine's single-stream, non-MBN
// encode path, so decode.V6 can be exercised against it
// directly without depending on package pipeline.
func buildSinglePayload(t *testing.T, layerCode container.LayerCode, codecCode codec.Code, input []byte) []byte {
	t.Helper()

	l, err := layer.Get(layerCode)
	require.NoError(t, err)

	enc, err := l.Encode(input)
	require.NoError(t, err)
	require.Len(t, enc.Streams, 1)

	c, err := codec.Get(codecCode)
	require.NoError(t, err)
	comp, err := c.Encode(enc.Streams[0].Data)
	require.NoError(t, err)

	meta := EncodeSinglePayloadMeta(len(enc.Streams[0].Data), enc.Meta)

	out, err := container.Encode(layerCode, codecCode, meta, comp, container.EncodeOptions{})
	require.NoError(t, err)

	return out
}

func buildMBNPayload(t *testing.T, layerCode container.LayerCode, streamCodec codec.Code, input []byte) []byte {
	t.Helper()

	l, err := layer.Get(layerCode)
	require.NoError(t, err)

	enc, err := l.Encode(input)
	require.NoError(t, err)
	require.Greater(t, len(enc.Streams), 1)

	streams := make([]mbn.Stream, len(enc.Streams))
	for i, s := range enc.Streams {
		streams[i] = mbn.Stream{Stype: s.Stype, Codec: streamCodec, Data: s.Data}
	}

	payload, err := mbn.Encode(streams)
	require.NoError(t, err)

	out, err := container.Encode(layerCode, codec.CodeMBN, enc.Meta, payload, container.EncodeOptions{})
	require.NoError(t, err)

	return out
}

func TestV6_SingleStreamBytesLayer(t *testing.T) {
	require := require.New(t)

	input := []byte("hello, single-stream world")
	data := buildSinglePayload(t, container.LayerBytes, codec.CodeZlib, input)

	out, err := V6(data)
	require.NoError(err)
	require.Equal(input, out)
}

func TestV6_SingleStreamVocabLayer(t *testing.T) {
	require := require.New(t)

	input := []byte("ciao mondo, ciao di nuovo")
	data := buildSinglePayload(t, container.LayerWordsIT, codec.CodeHuffman, input)

	out, err := V6(data)
	require.NoError(err)
	require.Equal(input, out)
}

func TestV6_MBNFramedVC0Layer(t *testing.T) {
	require := require.New(t)

	input := []byte("Hello, World! 42")
	data := buildMBNPayload(t, container.LayerVC0, codec.CodeRaw, input)

	out, err := V6(data)
	require.NoError(err)
	require.Equal(input, out)
}

func TestAny_RejectsBadMagic(t *testing.T) {
	require := require.New(t)

	_, err := Any([]byte("not a gcc file at all"))
	require.Error(err)
}
