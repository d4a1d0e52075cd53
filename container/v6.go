// Package container implements the v6 on-disk file framing of spec §3/§4.4:
// a 7-byte header (magic, version, flags, layer_code, codec_code),
// optional meta, optional explicit payload length, and the payload. It
// also provides read-only compatibility with legacy v1-v5 containers
// (DecodeLegacy); the universal decoder that dispatches on the version
// byte is decode.Any in package decode.
package container

import (
	"github.com/gcomneno/gcc-ocf/codec"
	"github.com/gcomneno/gcc-ocf/errs"
)

// Magic is the 3-byte v6 (and legacy) container magic.
var Magic = [3]byte{'G', 'C', 'C'}

// CurrentVersion is the only version the write path emits.
const CurrentVersion = 6

// Flag bits, per spec §3.
const (
	FlagHasMeta       = 0x01
	FlagHasPayloadLen = 0x02
	FlagKindExtract   = 0x80
)

// knownFlagBits is the set of flag bits this implementation understands;
// any other bit set is a reserved-bit violation (UnsupportedVersion per
// spec §7).
const knownFlagBits = FlagHasMeta | FlagHasPayloadLen | FlagKindExtract

// Header is the fixed 7-byte v6 header.
type Header struct {
	Version   uint8
	Flags     uint8
	LayerCode LayerCode
	CodecCode codec.Code
}

// File is a fully decoded v6 container.
type File struct {
	Header  Header
	Meta    []byte
	Payload []byte
}

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

// EncodeOptions control optional v6 writer behavior (spec §4.4: "writer
// choice; default off" for explicit payload length).
type EncodeOptions struct {
	// WritePayloadLen sets F_HAS_PAYLOAD_LEN, prefixing the payload with
	// its own varint length instead of letting it span to EOF.
	WritePayloadLen bool
	// KindExtract sets F_KIND_EXTRACT, marking the payload as an
	// out-of-scope lossy artifact (spec §1 non-goals).
	KindExtract bool
}

// Encode serializes a v6 container.
func Encode(layerCode LayerCode, codecCode codec.Code, meta, payload []byte, opts EncodeOptions) ([]byte, error) {
	if !layerCode.Valid() {
		return nil, errs.ErrUnknownLayerCode
	}
	if !codecCode.Valid() {
		return nil, errs.ErrUnknownCodecCode
	}

	var flags uint8
	if len(meta) > 0 {
		flags |= FlagHasMeta
	}
	if opts.WritePayloadLen {
		flags |= FlagHasPayloadLen
	}
	if opts.KindExtract {
		flags |= FlagKindExtract
	}

	out := make([]byte, 0, 7+len(meta)+len(payload)+10)
	out = append(out, Magic[0], Magic[1], Magic[2], CurrentVersion, flags, byte(layerCode), byte(codecCode))

	if flags&FlagHasMeta != 0 {
		out = putUvarint(out, uint64(len(meta)))
		out = append(out, meta...)
	}
	if flags&FlagHasPayloadLen != 0 {
		out = putUvarint(out, uint64(len(payload)))
	}
	out = append(out, payload...)

	return out, nil
}

// Decode parses a v6 container. Wrong (non-"GCC") magic, or data too
// short to hold magic, version and flags, is errs.ErrCorruptPayload;
// right magic with any version byte other than 6 (legacy v1-v5 included),
// or a v6 reserved flag bit, is errs.ErrUnsupportedVersion.
func Decode(data []byte) (*File, error) {
	if len(data) < 5 || data[0] != Magic[0] || data[1] != Magic[1] || data[2] != Magic[2] {
		return nil, errs.ErrCorruptPayload
	}

	version := data[3]
	if version != CurrentVersion {
		// Legacy v1-v5 read path; v6 is the only version this function
		// natively decodes. Callers wanting transparent legacy support
		// should use the universal decoder (decode.Any in package decode).
		return nil, errs.ErrUnsupportedVersion
	}

	flags := data[4]
	if flags & ^uint8(knownFlagBits) != 0 {
		return nil, errs.ErrUnsupportedVersion
	}

	if len(data) < 7 {
		return nil, errs.ErrCorruptPayload
	}
	layerCode := LayerCode(data[5])
	codecCode := codec.Code(data[6])
	if !layerCode.Valid() {
		return nil, errs.ErrCorruptPayload
	}
	if !codecCode.Valid() {
		return nil, errs.ErrCorruptPayload
	}

	pos := 7
	var meta []byte
	if flags&FlagHasMeta != 0 {
		mlen, n, err := getUvarint(data[pos:])
		if err != nil {
			return nil, err
		}
		pos += n
		if mlen > uint64(len(data)-pos) {
			return nil, errs.ErrOutOfBounds
		}
		meta = data[pos : pos+int(mlen)]
		pos += int(mlen)
	}

	var payload []byte
	if flags&FlagHasPayloadLen != 0 {
		plen, n, err := getUvarint(data[pos:])
		if err != nil {
			return nil, err
		}
		pos += n
		if plen > uint64(len(data)-pos) {
			return nil, errs.ErrOutOfBounds
		}
		payload = data[pos : pos+int(plen)]
	} else {
		payload = data[pos:]
	}

	return &File{
		Header: Header{
			Version:   version,
			Flags:     flags,
			LayerCode: layerCode,
			CodecCode: codecCode,
		},
		Meta:    meta,
		Payload: payload,
	}, nil
}
