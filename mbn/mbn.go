// Package mbn implements the MBN ("Multi Bundle") self-describing
// multi-stream payload format of spec §3/§4.3: a magic, a stream count,
// then per-stream stype/codec/lengths/meta/compressed-bytes records.
//
// Parsing is strict: every varint must terminate within the buffer, every
// declared length must fit inside the remaining buffer, stype values must
// be unique, and an unknown codec code fails the stream-level decode
// (distinct from an unknown stype, which is tolerated — the stream is
// parsed but skipped by the layer that assembles streams back into
// bytes).
package mbn

import (
	"github.com/gcomneno/gcc-ocf/codec"
	"github.com/gcomneno/gcc-ocf/errs"
	"github.com/gcomneno/gcc-ocf/internal/pool"
)

// Magic is the 3-byte MBN bundle magic.
var Magic = [3]byte{'M', 'B', 'N'}

// StreamType is the stable numeric stype tag from spec §3.
type StreamType uint8

const (
	StypeMain   StreamType = 0
	StypeMask   StreamType = 1
	StypeVowels StreamType = 2
	StypeCons   StreamType = 3
	StypeText   StreamType = 10
	StypeNums   StreamType = 11
	StypeTPL    StreamType = 20
	StypeIDs    StreamType = 21
	StypeMeta   StreamType = 250
)

func (s StreamType) String() string {
	switch s {
	case StypeMain:
		return "MAIN"
	case StypeMask:
		return "MASK"
	case StypeVowels:
		return "VOWELS"
	case StypeCons:
		return "CONS"
	case StypeText:
		return "TEXT"
	case StypeNums:
		return "NUMS"
	case StypeTPL:
		return "TPL"
	case StypeIDs:
		return "IDS"
	case StypeMeta:
		return "META"
	default:
		return "UNKNOWN"
	}
}

// StreamTypeByName resolves a stream name as used in pipeline specs
// (§6's stream_codecs key set) back to a StreamType.
func StreamTypeByName(name string) (StreamType, bool) {
	for _, s := range []StreamType{StypeMain, StypeMask, StypeVowels, StypeCons, StypeText, StypeNums, StypeTPL, StypeIDs, StypeMeta} {
		if s.String() == name {
			return s, true
		}
	}

	return 0, false
}

// Stream is one named, coded payload inside a bundle, already
// decompressed to its original bytes (post Parse) or ready to be
// compressed (pre Encode).
type Stream struct {
	Stype StreamType
	Codec codec.Code
	// Data is the raw (uncompressed) bytes for encode, or the
	// decompressed bytes after a successful Parse.
	Data []byte
	// Meta is small inline per-stream metadata, stored uncompressed.
	Meta []byte
}

func putUvarint(buf []byte, v uint64) []byte {
	for v >= 0x80 {
		buf = append(buf, byte(v)|0x80)
		v >>= 7
	}
	return append(buf, byte(v))
}

// maxVarintMagnitude caps accepted lengths at 2^40, per spec §9.
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

// Encode serializes streams into an MBN bundle, compressing each
// stream's Data with its declared Codec. At least one stream is
// required (spec invariant: nstreams >= 1).
func Encode(streams []Stream) ([]byte, error) {
	if len(streams) == 0 {
		return nil, errs.ErrEmptyBundle
	}

	buf := pool.GetStreamBuffer()
	defer pool.PutStreamBuffer(buf)

	buf.MustWrite(Magic[:])
	buf.B = putUvarint(buf.B, uint64(len(streams)))

	seen := make(map[StreamType]bool, len(streams))
	for _, s := range streams {
		if seen[s.Stype] {
			return nil, errs.ErrDuplicateStype
		}
		seen[s.Stype] = true

		var comp []byte
		var err error
		if s.Codec == codec.CodeNumV0 || s.Codec == codec.CodeNumV1 {
			// Numeric codecs are pre-serialized by the caller (the
			// layer already produced the varint wire bytes); the
			// bundle treats them as opaque, matching every other
			// codec's Encode(bytes)->bytes contract.
			comp = s.Data
		} else {
			c, gerr := codec.Get(s.Codec)
			if gerr != nil {
				return nil, gerr
			}
			comp, err = c.Encode(s.Data)
			if err != nil {
				return nil, err
			}
		}

		buf.MustWriteByte(byte(s.Stype))
		buf.MustWriteByte(byte(s.Codec))
		buf.B = putUvarint(buf.B, uint64(len(s.Data)))
		buf.B = putUvarint(buf.B, uint64(len(comp)))
		buf.B = putUvarint(buf.B, uint64(len(s.Meta)))
		buf.MustWrite(s.Meta)
		buf.MustWrite(comp)
	}

	out := make([]byte, buf.Len())
	copy(out, buf.Bytes())

	return out, nil
}

// Parse reads an MBN bundle, decompressing every stream and validating
// bounds, stype uniqueness, and the ulen post-condition of every codec.
//
// Streams whose codec code is not one of the 8 registered codecs fail
// the parse with errs.ErrUnknownCodec (distinct from an unrecognized
// stype, which Parse accepts — callers that don't know what to do with
// an unrecognized stype simply ignore that Stream).
func Parse(data []byte) ([]Stream, error) {
	if len(data) < 3 || data[0] != Magic[0] || data[1] != Magic[1] || data[2] != Magic[2] {
		return nil, errs.ErrBadMagic
	}
	pos := 3

	nstreams, n, err := getUvarint(data[pos:])
	if err != nil {
		return nil, err
	}
	pos += n
	if nstreams == 0 {
		return nil, errs.ErrEmptyBundle
	}

	streams := make([]Stream, 0, nstreams)
	seen := make(map[StreamType]bool, nstreams)

	for i := uint64(0); i < nstreams; i++ {
		if pos+2 > len(data) {
			return nil, errs.ErrOutOfBounds
		}
		stype := StreamType(data[pos])
		ccode := codec.Code(data[pos+1])
		pos += 2

		ulen, n, err := getUvarint(data[pos:])
		if err != nil {
			return nil, err
		}
		pos += n

		clen, n, err := getUvarint(data[pos:])
		if err != nil {
			return nil, err
		}
		pos += n

		mlen, n, err := getUvarint(data[pos:])
		if err != nil {
			return nil, err
		}
		pos += n

		if mlen > uint64(len(data)-pos) {
			return nil, errs.ErrOutOfBounds
		}
		meta := data[pos : pos+int(mlen)]
		pos += int(mlen)

		if clen > uint64(len(data)-pos) {
			return nil, errs.ErrOutOfBounds
		}
		comp := data[pos : pos+int(clen)]
		pos += int(clen)

		if seen[stype] {
			return nil, errs.ErrDuplicateStype
		}
		seen[stype] = true

		if !ccode.Valid() {
			return nil, errs.ErrUnknownCodec
		}

		var raw []byte
		if ccode == codec.CodeNumV0 || ccode == codec.CodeNumV1 {
			if uint64(len(comp)) != ulen {
				return nil, errs.ErrLengthMismatch
			}
			raw = comp
		} else {
			c, gerr := codec.Get(ccode)
			if gerr != nil {
				return nil, gerr
			}
			if ulen > codec.MaxULen {
				return nil, errs.ErrOutOfBounds
			}
			raw, err = c.Decode(comp, int(ulen))
			if err != nil {
				return nil, err
			}
		}

		streams = append(streams, Stream{
			Stype: stype,
			Codec: ccode,
			Data:  raw,
			Meta:  meta,
		})
	}

	return streams, nil
}

// ByType returns the stream with the given stype, if present.
func ByType(streams []Stream, t StreamType) (Stream, bool) {
	for _, s := range streams {
		if s.Stype == t {
			return s, true
		}
	}

	return Stream{}, false
}
