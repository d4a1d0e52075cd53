// Package decode implements the universal reader of spec §4.4: given any
// file this implementation or its legacy predecessors could have
// written, recover the original bytes regardless of container version,
// payload framing (single-stream or MBN), or layer.
//
// Single-payload framing convention (spec §4.5's "write codec(stream) as
// the raw payload", and §9's design note that the header meta slot may
// carry "very small, non-compressible framing"): when codec_code is not
// mbn, the v6 header's meta field is varint(ulen) followed by the
// layer's own meta bytes, if any. ulen is needed because the bare
// payload carries no length of its own; the layer meta rides alongside
// it in the same slot since a single-stream layer never needs the META
// stream. This is this implementation's own choice (the core spec
// leaves the exact framing of the single-payload case unstated beyond
// "write codec(stream)"); package pipeline is the only writer and must
// stay in lockstep with the convention decoded here.
package decode

import (
	"github.com/gcomneno/gcc-ocf/codec"
	"github.com/gcomneno/gcc-ocf/container"
	"github.com/gcomneno/gcc-ocf/errs"
	"github.com/gcomneno/gcc-ocf/layer"
	"github.com/gcomneno/gcc-ocf/mbn"
)

func putUvarint(buf []byte, v uint64) []byte {
	for v >= 0x80 {
		buf = append(buf, byte(v)|0x80)
		v >>= 7
	}
	return append(buf, byte(v))
}

const maxVarintMagnitude = 1 << 40

func getUvarint(data []byte) (uint64, int, error) {
	var v uint64
	var shift uint
	for i, b := range data {
		if shift >= 64 {
			return 0, 0, errs.ErrVarintTooLarge
		}
		v |= uint64(b&0x7f) << shift
		if b < 0x80 {
			if v > maxVarintMagnitude {
				return 0, 0, errs.ErrVarintTooLarge
			}
			return v, i + 1, nil
		}
		shift += 7
	}

	return 0, 0, errs.ErrTruncatedVarint
}

// EncodeSinglePayloadMeta builds the v6 header meta field for the
// non-MBN single-stream path: varint(ulen) followed by layerMeta.
func EncodeSinglePayloadMeta(ulen int, layerMeta []byte) []byte {
	return append(putUvarint(nil, uint64(ulen)), layerMeta...)
}

// Any reads a v6 container (single-payload or MBN-framed) or a legacy
// v1-v5 container and returns the original bytes. Legacy "kind" payload
// shapes (KindBytes, KindIDsMetaVocab, KindIDsInlineVocab) are out of
// core scope per spec §1; for those the raw post-header body is
// returned as-is rather than reinterpreted.
func Any(data []byte) ([]byte, error) {
	if len(data) < 4 || data[0] != container.Magic[0] || data[1] != container.Magic[1] || data[2] != container.Magic[2] {
		return nil, errs.ErrCorruptPayload
	}

	if data[3] != container.CurrentVersion {
		legacy, err := container.DecodeLegacy(data)
		if err != nil {
			return nil, err
		}

		return legacy.Body, nil
	}

	return V6(data)
}

// V6 reads a v6 container only (no legacy fallback), dispatching its
// payload through the layer it was encoded with.
func V6(data []byte) ([]byte, error) {
	file, err := container.Decode(data)
	if err != nil {
		return nil, err
	}

	l, err := layer.Get(file.Header.LayerCode)
	if err != nil {
		return nil, err
	}

	if file.Header.CodecCode == codec.CodeMBN {
		streams, err := mbn.Parse(file.Payload)
		if err != nil {
			return nil, err
		}

		return l.Decode(streams, file.Meta)
	}

	stype, ok := layer.PrimaryStype(file.Header.LayerCode)
	if !ok {
		return nil, errs.ErrCorruptPayload
	}

	ulen, n, err := getUvarint(file.Meta)
	if err != nil {
		return nil, err
	}
	layerMeta := file.Meta[n:]

	c, err := codec.Get(file.Header.CodecCode)
	if err != nil {
		return nil, err
	}
	if ulen > uint64(codec.MaxULen) {
		return nil, errs.ErrOutOfBounds
	}
	raw, err := c.Decode(file.Payload, int(ulen))
	if err != nil {
		return nil, err
	}

	return l.Decode([]mbn.Stream{{Stype: stype, Data: raw}}, layerMeta)
}
