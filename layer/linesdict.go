package layer

import (
	"bytes"

	"github.com/gcomneno/gcc-ocf/codec"
	"github.com/gcomneno/gcc-ocf/container"
	"github.com/gcomneno/gcc-ocf/errs"
	"github.com/gcomneno/gcc-ocf/mbn"
)

// linesDictLayer splits input into lines, terminator-preserving (each
// line's bytes include its trailing '\n' if present; the final line may
// lack one), builds a dictionary of distinct line contents keyed by
// their exact bytes, and emits IDS (a varint dictionary index per line).
// Because dictionary keys are exact byte sequences, a final unterminated
// line is never confused with an otherwise-identical terminated one —
// they are different keys. The dictionary travels in META as a
// count-prefixed sequence of length+bytes records. See SPEC_FULL.md §D.
type linesDictLayer struct{}

var _ Layer = linesDictLayer{}

func (linesDictLayer) Code() container.LayerCode { return container.LayerLinesDict }

// splitLines splits data into lines, each retaining its trailing '\n'.
func splitLines(data []byte) [][]byte {
	if len(data) == 0 {
		return nil
	}

	var lines [][]byte
	start := 0
	for i := 0; i < len(data); i++ {
		if data[i] == '\n' {
			lines = append(lines, data[start:i+1])
			start = i + 1
		}
	}
	if start < len(data) {
		lines = append(lines, data[start:])
	}

	return lines
}

func (linesDictLayer) Encode(input []byte) (Encoded, error) {
	lines := splitLines(input)

	dict := make([][]byte, 0)
	index := make(map[string]uint64)
	ids := make([]uint64, 0, len(lines))

	for _, ln := range lines {
		key := string(ln)
		id, ok := index[key]
		if !ok {
			id = uint64(len(dict))
			dict = append(dict, ln)
			index[key] = id
		}
		ids = append(ids, id)
	}

	var meta bytes.Buffer
	meta.Write(codec.EncodeUintsV0([]uint64{uint64(len(dict))}))
	for _, ln := range dict {
		meta.Write(codec.EncodeUintsV0([]uint64{uint64(len(ln))}))
		meta.Write(ln)
	}

	return Encoded{
		Streams: []StreamData{
			{Stype: mbn.StypeIDs, Data: codec.EncodeUintsV1Plain(ids)},
		},
		Meta: meta.Bytes(),
	}, nil
}

func (linesDictLayer) Decode(streams []mbn.Stream, meta []byte) ([]byte, error) {
	idsRaw := findStream(streams, mbn.StypeIDs)
	if len(idsRaw) == 0 {
		return []byte{}, nil
	}
	ids, err := codec.DecodeUintsV1(idsRaw)
	if err != nil {
		return nil, err
	}

	nDict, n, err := singleUvarint(meta)
	if err != nil {
		return nil, err
	}
	pos := n

	dict := make([][]byte, 0, nDict)
	for i := uint64(0); i < nDict; i++ {
		ln, used, err := parseLenPrefixed(meta[pos:])
		if err != nil {
			return nil, err
		}
		dict = append(dict, ln)
		pos += used
	}

	var out bytes.Buffer
	for _, id := range ids {
		if id >= uint64(len(dict)) {
			return nil, errs.ErrCorruptPayload
		}
		out.Write(dict[id])
	}

	return out.Bytes(), nil
}

// singleUvarint reads one LEB128 varint from the start of data.
func singleUvarint(data []byte) (uint64, int, error) {
	var v uint64
	var shift uint
	for i, b := range data {
		v |= uint64(b&0x7f) << shift
		if b < 0x80 {
			return v, i + 1, nil
		}
		shift += 7
		if shift >= 64 {
			return 0, 0, errs.ErrVarintTooLarge
		}
	}

	return 0, 0, errs.ErrTruncatedVarint
}

// parseLenPrefixed reads a varint length followed by that many bytes.
func parseLenPrefixed(data []byte) ([]byte, int, error) {
	l, n, err := singleUvarint(data)
	if err != nil {
		return nil, 0, err
	}
	if l > uint64(len(data)-n) {
		return nil, 0, errs.ErrOutOfBounds
	}

	return data[n : n+int(l)], n + int(l), nil
}
