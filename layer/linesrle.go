package layer

import (
	"bytes"

	"github.com/gcomneno/gcc-ocf/codec"
	"github.com/gcomneno/gcc-ocf/container"
	"github.com/gcomneno/gcc-ocf/errs"
	"github.com/gcomneno/gcc-ocf/mbn"
)

// linesRLELayer run-length encodes consecutive repeated lines: TEXT holds
// each run's line concatenated once (length-prefixed in META, so the run
// boundaries are recoverable), NUMS holds each run's repeat count. This
// favors logs and other line-oriented data with long vertical repeats
// over linesDictLayer's favor for files with few distinct lines spread
// non-contiguously. See SPEC_FULL.md §D.
type linesRLELayer struct{}

var _ Layer = linesRLELayer{}

func (linesRLELayer) Code() container.LayerCode { return container.LayerLinesRLE }

func (linesRLELayer) Encode(input []byte) (Encoded, error) {
	lines := splitLines(input)

	var text bytes.Buffer
	var lens []uint64
	var counts []uint64

	i := 0
	for i < len(lines) {
		j := i + 1
		for j < len(lines) && bytes.Equal(lines[j], lines[i]) {
			j++
		}
		text.Write(lines[i])
		lens = append(lens, uint64(len(lines[i])))
		counts = append(counts, uint64(j-i))
		i = j
	}

	var meta bytes.Buffer
	meta.Write(codec.EncodeUintsV0(lens))

	return Encoded{
		Streams: []StreamData{
			{Stype: mbn.StypeText, Data: text.Bytes()},
			{Stype: mbn.StypeNums, Data: codec.EncodeUintsV1Plain(counts)},
		},
		Meta: meta.Bytes(),
	}, nil
}

func (linesRLELayer) Decode(streams []mbn.Stream, meta []byte) ([]byte, error) {
	text := findStream(streams, mbn.StypeText)
	countsRaw := findStream(streams, mbn.StypeNums)

	var counts []uint64
	if len(countsRaw) > 0 {
		var err error
		counts, err = codec.DecodeUintsV1(countsRaw)
		if err != nil {
			return nil, err
		}
	}

	var lens []uint64
	if len(meta) > 0 {
		var err error
		lens, err = codec.DecodeUintsV0(meta)
		if err != nil {
			return nil, err
		}
	}
	if len(lens) != len(counts) {
		return nil, errs.ErrCorruptPayload
	}

	var out bytes.Buffer
	pos := 0
	for i, l := range lens {
		if uint64(pos)+l > uint64(len(text)) {
			return nil, errs.ErrOutOfBounds
		}
		ln := text[pos : pos+int(l)]
		pos += int(l)
		for n := uint64(0); n < counts[i]; n++ {
			out.Write(ln)
		}
	}
	if pos != len(text) {
		return nil, errs.ErrCorruptPayload
	}

	return out.Bytes(), nil
}
