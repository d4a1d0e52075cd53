package layer

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gcomneno/gcc-ocf/codec"
	"github.com/gcomneno/gcc-ocf/mbn"
)

func TestLinesDict_RoundTrip(t *testing.T) {
	require := require.New(t)

	l := linesDictLayer{}
	input := []byte("GET /a 200\nGET /b 404\nGET /a 200\n")
	enc, err := l.Encode(input)
	require.NoError(err)

	out, err := l.Decode(streamsFromEncoded(enc), enc.Meta)
	require.NoError(err)
	require.Equal(input, out)
}

func TestLinesDict_DedupesDistinctLines(t *testing.T) {
	require := require.New(t)

	l := linesDictLayer{}
	input := []byte("same\nsame\nsame\n")
	enc, err := l.Encode(input)
	require.NoError(err)

	ids, err := codec.DecodeUintsV1(findStream(streamsFromEncoded(enc), mbn.StypeIDs))
	require.NoError(err)
	require.Equal([]uint64{0, 0, 0}, ids)

	out, err := l.Decode(streamsFromEncoded(enc), enc.Meta)
	require.NoError(err)
	require.Equal(input, out)
}

func TestLinesDict_UnterminatedFinalLineDistinctFromTerminated(t *testing.T) {
	require := require.New(t)

	l := linesDictLayer{}
	input := []byte("x\nx")
	enc, err := l.Encode(input)
	require.NoError(err)

	out, err := l.Decode(streamsFromEncoded(enc), enc.Meta)
	require.NoError(err)
	require.Equal(input, out)
}

func TestLinesDict_EmptyInput(t *testing.T) {
	require := require.New(t)

	l := linesDictLayer{}
	enc, err := l.Encode(nil)
	require.NoError(err)

	out, err := l.Decode(streamsFromEncoded(enc), enc.Meta)
	require.NoError(err)
	require.Empty(out)
}
