package codec

import (
	"bytes"
	"sync"

	"github.com/klauspost/compress/zstd"

	"github.com/gcomneno/gcc-ocf/errs"
)

// zstdEncoderPool pools the klauspost/compress/zstd encoder used for the
// standard "zstd" codec; the decoder pool is shared by both variants. The
// library documents both as designed for reuse: "The decoder has been
// designed to operate without allocations after a warmup."
var (
	zstdEncoderPool = sync.Pool{
		New: func() any {
			enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
			if err != nil {
				panic(err) // only fails on invalid options, which never happens here
			}

			return enc
		},
	}
	zstdDecoderPool = sync.Pool{
		New: func() any {
			dec, err := zstd.NewReader(nil,
				zstd.WithDecoderConcurrency(1),
				zstd.WithDecoderLowmem(false),
			)
			if err != nil {
				panic(err)
			}

			return dec
		},
	}
)

// zstdCodec emits standard zstd frames: content-size field present,
// trailing checksum present.
type zstdCodec struct{}

var _ Codec = zstdCodec{}

func (zstdCodec) Encode(data []byte) ([]byte, error) {
	enc, _ := zstdEncoderPool.Get().(*zstd.Encoder)
	defer zstdEncoderPool.Put(enc)

	return enc.EncodeAll(data, nil), nil
}

func (zstdCodec) Decode(data []byte, ulen int) ([]byte, error) {
	return zstdDecode(data, ulen)
}

// zstdTightCodec emits zstd frames without a content-size field and
// without a checksum, to save frame overhead on tiny payloads (spec
// §4.1). EncodeAll always stamps the frame with the known source size,
// so the tight variant goes through the streaming Writer instead, which
// omits Frame_Content_Size when it isn't told the size up front. The
// decoder accepts both variants, per spec.
type zstdTightCodec struct{}

var _ Codec = zstdTightCodec{}

func (zstdTightCodec) Encode(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := zstd.NewWriter(&buf, zstd.WithEncoderCRC(false))
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func (zstdTightCodec) Decode(data []byte, ulen int) ([]byte, error) {
	return zstdDecode(data, ulen)
}

func zstdDecode(data []byte, ulen int) ([]byte, error) {
	if err := checkULen(ulen); err != nil {
		return nil, err
	}

	dec, _ := zstdDecoderPool.Get().(*zstd.Decoder)
	defer zstdDecoderPool.Put(dec)

	out, err := dec.DecodeAll(data, make([]byte, 0, ulen))
	if err != nil {
		return nil, errs.ErrCorruptPayload
	}
	if len(out) != ulen {
		return nil, errs.ErrLengthMismatch
	}

	return out, nil
}
