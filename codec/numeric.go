package codec

import (
	"github.com/gcomneno/gcc-ocf/errs"
	"github.com/gcomneno/gcc-ocf/internal/pool"
)

// NumV0 and NumV1 are not general-purpose byte codecs: they operate on
// sequences of non-negative integers rather than arbitrary bytes, so they
// expose a dedicated API (EncodeUintsV0/DecodeUintsV0, EncodeUintsV1*/
// DecodeUintsV1) in addition to the
// uniform Codec interface, which treats the wire bytes as opaque (used
// when a stream's codec happens to be num_v0/num_v1 but the caller only
// has the already-serialized varint bytes, e.g. during MBN bundling).
//
// The varint and zigzag primitives follow the teacher's own hand-rolled
// VarStringEncoder.WriteVarint: unsigned LEB128, zigzag for signed deltas.

// maxVarintMagnitude caps accepted varint values at 2^40, per spec §9's
// denial-of-service guidance for crafted files.
const maxVarintMagnitude = 1 << 40

func putUvarint(buf []byte, v uint64) []byte {
	for v >= 0x80 {
		buf = append(buf, byte(v)|0x80)
		v >>= 7
	}
	return append(buf, byte(v))
}

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

func zigzagEncode(v int64) uint64 {
	return uint64(v<<1) ^ uint64(v>>63) //nolint:gosec
}

func zigzagDecode(u uint64) int64 {
	return int64(u>>1) ^ -int64(u&1)
}

// numV0Codec: sequence of unsigned LEB128 varints, one per integer, no
// framing (spec §4.1).
type numV0Codec struct{}

var _ Codec = numV0Codec{}

// EncodeUintsV0 serializes vals as plain LEB128 varints (num_v0 wire format).
func EncodeUintsV0(vals []uint64) []byte {
	out := make([]byte, 0, len(vals)*2)
	for _, v := range vals {
		out = putUvarint(out, v)
	}

	return out
}

// DecodeUintsV0 parses a num_v0 stream back into integers. The decoded
// count is never known up front (each varint can be 1..10 bytes), but it
// can never exceed len(data), so the accumulator is borrowed from
// internal/pool sized to that worst case instead of growing by repeated
// reallocation.
func DecodeUintsV0(data []byte) ([]uint64, error) {
	buf, done := pool.GetUint64Slice(len(data))
	defer done()
	out := buf[:0]

	pos := 0
	for pos < len(data) {
		v, n, err := getUvarint(data[pos:])
		if err != nil {
			return nil, err
		}
		out = append(out, v)
		pos += n
	}

	result := make([]uint64, len(out))
	copy(result, out)

	return result, nil
}

// Encode/Decode satisfy Codec by treating num_v0 bytes as opaque; ulen
// here is the byte length of the varint stream, not an integer count.
func (numV0Codec) Encode(data []byte) ([]byte, error) { return data, nil }
func (numV0Codec) Decode(data []byte, ulen int) ([]byte, error) {
	if err := checkULen(ulen); err != nil {
		return nil, err
	}
	if len(data) != ulen {
		return nil, errs.ErrLengthMismatch
	}

	return data, nil
}

// num_v1 mode byte values.
const (
	NumV1ModePlain Code = iota
	NumV1ModeDelta
	NumV1ModeZigZag
	NumV1ModeRLE
)

// numV1Codec extends num_v0 with a one-byte mode header. Distinct
// codec_code (7) keeps old num_v0 files readable unchanged (spec §4.1).
type numV1Codec struct{}

var _ Codec = numV1Codec{}

func (numV1Codec) Encode(data []byte) ([]byte, error) { return data, nil }
func (numV1Codec) Decode(data []byte, ulen int) ([]byte, error) {
	if err := checkULen(ulen); err != nil {
		return nil, err
	}
	if len(data) != ulen {
		return nil, errs.ErrLengthMismatch
	}

	return data, nil
}

// EncodeUintsV1Plain serializes vals as a num_v1 plain-mode stream: one
// mode byte (NumV1ModePlain) followed by LEB128 varints.
func EncodeUintsV1Plain(vals []uint64) []byte {
	out := make([]byte, 0, 1+len(vals)*2)
	out = append(out, byte(NumV1ModePlain))
	for _, v := range vals {
		out = putUvarint(out, v)
	}

	return out
}

// EncodeUintsV1Delta serializes a monotonic (or near-monotonic) sequence
// as zigzag-delta varints: first value absolute, subsequent values are
// zigzag(cur-prev).
func EncodeUintsV1Delta(vals []uint64) []byte {
	out := make([]byte, 0, 1+len(vals)*2)
	out = append(out, byte(NumV1ModeDelta))
	var prev int64
	for i, v := range vals {
		sv := int64(v) //nolint:gosec
		if i == 0 {
			out = putUvarint(out, zigzagEncode(sv))
		} else {
			out = putUvarint(out, zigzagEncode(sv-prev))
		}
		prev = sv
	}

	return out
}

// EncodeUintsV1ZigZag serializes vals (interpreted as signed via the
// caller's own int64 values cast to uint64) using zigzag varints without
// delta, useful when values oscillate in sign but aren't monotonic.
func EncodeUintsV1ZigZag(vals []int64) []byte {
	out := make([]byte, 0, 1+len(vals)*2)
	out = append(out, byte(NumV1ModeZigZag))
	for _, v := range vals {
		out = putUvarint(out, zigzagEncode(v))
	}

	return out
}

// EncodeUintsV1RLE serializes vals as (value, run-length) pairs when
// runs of identical values are frequent.
func EncodeUintsV1RLE(vals []uint64) []byte {
	out := []byte{byte(NumV1ModeRLE)}
	i := 0
	for i < len(vals) {
		j := i + 1
		for j < len(vals) && vals[j] == vals[i] {
			j++
		}
		out = putUvarint(out, vals[i])
		out = putUvarint(out, uint64(j-i))
		i = j
	}

	return out
}

// DecodeUintsV1 parses any num_v1-mode stream back into integers.
func DecodeUintsV1(data []byte) ([]uint64, error) {
	if len(data) == 0 {
		return nil, errs.ErrTruncatedVarint
	}

	mode := Code(data[0])
	body := data[1:]
	pos := 0

	switch mode {
	case NumV1ModePlain:
		buf, done := pool.GetUint64Slice(len(body))
		defer done()
		out := buf[:0]
		for pos < len(body) {
			v, n, err := getUvarint(body[pos:])
			if err != nil {
				return nil, err
			}
			out = append(out, v)
			pos += n
		}

		result := make([]uint64, len(out))
		copy(result, out)

		return result, nil

	case NumV1ModeDelta:
		buf, done := pool.GetUint64Slice(len(body))
		defer done()
		out := buf[:0]
		var prev int64
		first := true
		for pos < len(body) {
			u, n, err := getUvarint(body[pos:])
			if err != nil {
				return nil, err
			}
			pos += n
			d := zigzagDecode(u)
			var cur int64
			if first {
				cur = d
				first = false
			} else {
				cur = prev + d
			}
			out = append(out, uint64(cur)) //nolint:gosec
			prev = cur
		}

		result := make([]uint64, len(out))
		copy(result, out)

		return result, nil

	case NumV1ModeZigZag:
		buf, done := pool.GetUint64Slice(len(body))
		defer done()
		out := buf[:0]
		for pos < len(body) {
			u, n, err := getUvarint(body[pos:])
			if err != nil {
				return nil, err
			}
			out = append(out, uint64(zigzagDecode(u))) //nolint:gosec
			pos += n
		}

		result := make([]uint64, len(out))
		copy(result, out)

		return result, nil

	case NumV1ModeRLE:
		// RLE can expand well beyond len(body) (a single (value, count)
		// pair can decode to an arbitrarily long run), so the pooled
		// buffer is only a starting capacity hint here, not a hard
		// bound; append still grows past it like any other slice.
		buf, done := pool.GetUint64Slice(len(body))
		defer done()
		out := buf[:0]
		for pos < len(body) {
			v, n, err := getUvarint(body[pos:])
			if err != nil {
				return nil, err
			}
			pos += n
			count, n2, err := getUvarint(body[pos:])
			if err != nil {
				return nil, err
			}
			pos += n2
			if count > maxVarintMagnitude {
				return nil, errs.ErrVarintTooLarge
			}
			for k := uint64(0); k < count; k++ {
				out = append(out, v)
			}
		}

		result := make([]uint64, len(out))
		copy(result, out)

		return result, nil

	default:
		return nil, errs.ErrCorruptPayload
	}
}
