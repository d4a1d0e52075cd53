package layer

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gcomneno/gcc-ocf/mbn"
)

func streamsFromEncoded(e Encoded) []mbn.Stream {
	out := make([]mbn.Stream, len(e.Streams))
	for i, s := range e.Streams {
		out[i] = mbn.Stream{Stype: s.Stype, Data: s.Data}
	}

	return out
}

// spec §4.2 example E.
func TestSplitTextNums_SpecExampleE(t *testing.T) {
	require := require.New(t)

	l := splitTextNumsLayer{}
	enc, err := l.Encode([]byte("abc123def0xyz"))
	require.NoError(err)

	text := findStream(streamsFromEncoded(enc), mbn.StypeText)
	require.Equal([]byte("abc\x00def\x00xyz"), text)

	out, err := l.Decode(streamsFromEncoded(enc), enc.Meta)
	require.NoError(err)
	require.Equal([]byte("abc123def0xyz"), out)
}

func TestSplitTextNums_LeadingZeros(t *testing.T) {
	require := require.New(t)

	l := splitTextNumsLayer{}
	input := []byte("id=007, qty=00, code=10")
	enc, err := l.Encode(input)
	require.NoError(err)

	out, err := l.Decode(streamsFromEncoded(enc), enc.Meta)
	require.NoError(err)
	require.Equal(input, out)
}

func TestSplitTextNums_EmptyInput(t *testing.T) {
	require := require.New(t)

	l := splitTextNumsLayer{}
	enc, err := l.Encode(nil)
	require.NoError(err)

	out, err := l.Decode(streamsFromEncoded(enc), enc.Meta)
	require.NoError(err)
	require.Empty(out)
}

func TestSplitTextNums_NoDigits(t *testing.T) {
	require := require.New(t)

	l := splitTextNumsLayer{}
	enc, err := l.Encode([]byte("no digits here"))
	require.NoError(err)
	require.Empty(findStream(streamsFromEncoded(enc), mbn.StypeNums))

	out, err := l.Decode(streamsFromEncoded(enc), enc.Meta)
	require.NoError(err)
	require.Equal([]byte("no digits here"), out)
}
