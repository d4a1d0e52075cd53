package pipeline

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseSpec_RejectsUnknownSchema(t *testing.T) {
	require := require.New(t)

	_, err := ParseSpec([]byte(`{"spec":"not.a.real.schema","layer":"bytes"}`))
	require.Error(err)
}

func TestParseSpec_RejectsUnknownKeys(t *testing.T) {
	require := require.New(t)

	_, err := ParseSpec([]byte(`{"spec":"gcc-ocf.pipeline.v1","layer":"bytes","bogus_field":true}`))
	require.Error(err)
}

func TestResolve_DefaultsCodecToZlib(t *testing.T) {
	require := require.New(t)

	s, err := ParseSpec([]byte(`{"spec":"gcc-ocf.pipeline.v1","layer":"bytes"}`))
	require.NoError(err)

	resolved, err := s.Resolve()
	require.NoError(err)
	require.Equal("zlib", resolved.DefaultCodec.Name())
}

func TestResolve_RejectsUnknownLayer(t *testing.T) {
	require := require.New(t)

	s, err := ParseSpec([]byte(`{"spec":"gcc-ocf.pipeline.v1","layer":"not_a_layer"}`))
	require.NoError(err)

	_, err = s.Resolve()
	require.Error(err)
}

func TestResolve_RejectsMBNFalseOnMultiStreamLayer(t *testing.T) {
	require := require.New(t)

	s, err := ParseSpec([]byte(`{"spec":"gcc-ocf.pipeline.v1","layer":"vc0","mbn":false}`))
	require.NoError(err)

	_, err = s.Resolve()
	require.Error(err)
}

func TestResolve_StreamCodecsResolved(t *testing.T) {
	require := require.New(t)

	s, err := ParseSpec([]byte(`{"spec":"gcc-ocf.pipeline.v1","layer":"split_text_nums","stream_codecs":{"NUMS":"num_v1","TEXT":"zlib"}}`))
	require.NoError(err)

	resolved, err := s.Resolve()
	require.NoError(err)
	require.Len(resolved.StreamCodecs, 2)
}
