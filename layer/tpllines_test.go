package layer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTplLinesV0_RoundTrip(t *testing.T) {
	require := require.New(t)

	l := tplLinesLayer{shared: false}
	input := []byte("user 123 logged in\nuser 456 logged in\nuser 789 logged out\n")
	enc, err := l.Encode(input)
	require.NoError(err)

	out, err := l.Decode(streamsFromEncoded(enc), enc.Meta)
	require.NoError(err)
	require.Equal(input, out)
}

func TestTplLinesV0_DedupesTemplates(t *testing.T) {
	require := require.New(t)

	l := tplLinesLayer{shared: false}
	input := []byte("req 1 ok\nreq 2 ok\nreq 3 ok\n")
	enc, err := l.Encode(input)
	require.NoError(err)

	tpl := findStream(streamsFromEncoded(enc), 20) // mbn.StypeTPL
	templates, err := parseTemplateDict(tpl)
	require.NoError(err)
	require.Len(templates, 1)

	out, err := l.Decode(streamsFromEncoded(enc), enc.Meta)
	require.NoError(err)
	require.Equal(input, out)
}

func TestTplLinesV0_LeadingZeros(t *testing.T) {
	require := require.New(t)

	l := tplLinesLayer{shared: false}
	input := []byte("code=007\ncode=042\n")
	enc, err := l.Encode(input)
	require.NoError(err)

	out, err := l.Decode(streamsFromEncoded(enc), enc.Meta)
	require.NoError(err)
	require.Equal(input, out)
}

func TestTplLinesSharedV0_RoundTrip(t *testing.T) {
	require := require.New(t)

	l := tplLinesLayer{shared: true}
	input := []byte("event 1 started\nevent 2 started\n")
	enc, err := l.Encode(input)
	require.NoError(err)
	require.Equal(l.Code().String(), "tpl_lines_shared_v0")

	out, err := l.Decode(streamsFromEncoded(enc), enc.Meta)
	require.NoError(err)
	require.Equal(input, out)
}

func TestTplLinesV0_EmptyInput(t *testing.T) {
	require := require.New(t)

	l := tplLinesLayer{shared: false}
	enc, err := l.Encode(nil)
	require.NoError(err)

	out, err := l.Decode(streamsFromEncoded(enc), enc.Meta)
	require.NoError(err)
	require.Empty(out)
}
