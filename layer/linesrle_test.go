package layer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLinesRLE_RoundTrip(t *testing.T) {
	require := require.New(t)

	l := linesRLELayer{}
	input := []byte("a\na\na\nb\nc\nc\n")
	enc, err := l.Encode(input)
	require.NoError(err)

	out, err := l.Decode(streamsFromEncoded(enc), enc.Meta)
	require.NoError(err)
	require.Equal(input, out)
}

func TestLinesRLE_NoRepeats(t *testing.T) {
	require := require.New(t)

	l := linesRLELayer{}
	input := []byte("one\ntwo\nthree\n")
	enc, err := l.Encode(input)
	require.NoError(err)

	out, err := l.Decode(streamsFromEncoded(enc), enc.Meta)
	require.NoError(err)
	require.Equal(input, out)
}

func TestLinesRLE_UnterminatedFinalLine(t *testing.T) {
	require := require.New(t)

	l := linesRLELayer{}
	input := []byte("x\nx\ny")
	enc, err := l.Encode(input)
	require.NoError(err)

	out, err := l.Decode(streamsFromEncoded(enc), enc.Meta)
	require.NoError(err)
	require.Equal(input, out)
}

func TestLinesRLE_EmptyInput(t *testing.T) {
	require := require.New(t)

	l := linesRLELayer{}
	enc, err := l.Encode(nil)
	require.NoError(err)

	out, err := l.Decode(streamsFromEncoded(enc), enc.Meta)
	require.NoError(err)
	require.Empty(out)
}
