package layer

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gcomneno/gcc-ocf/mbn"
)

func TestBytesLayer_RoundTrip(t *testing.T) {
	require := require.New(t)

	l := bytesLayer{}
	input := []byte("arbitrary binary \x00\x01\xff payload")
	enc, err := l.Encode(input)
	require.NoError(err)
	require.Len(enc.Streams, 1)
	require.Equal(mbn.StypeMain, enc.Streams[0].Stype)

	out, err := l.Decode(streamsFromEncoded(enc), enc.Meta)
	require.NoError(err)
	require.Equal(input, out)
}

func TestBytesLayer_DecodeFallback(t *testing.T) {
	require := require.New(t)

	l := bytesLayer{}
	streams := []mbn.Stream{
		{Stype: mbn.StypeMeta, Data: []byte("ignored")},
		{Stype: mbn.StypeText, Data: []byte("fallback")},
	}

	out, err := l.Decode(streams, nil)
	require.NoError(err)
	require.Equal([]byte("fallback"), out)
}

func TestBytesLayer_EmptyInput(t *testing.T) {
	require := require.New(t)

	l := bytesLayer{}
	enc, err := l.Encode(nil)
	require.NoError(err)

	out, err := l.Decode(streamsFromEncoded(enc), enc.Meta)
	require.NoError(err)
	require.Empty(out)
}
