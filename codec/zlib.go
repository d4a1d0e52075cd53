package codec

import (
	"bytes"
	"compress/zlib"
	"io"

	"github.com/gcomneno/gcc-ocf/errs"
)

// zlibCodec wraps deflate in a zlib container at compression level 6, the
// implementation's chosen default per spec §4.1.
type zlibCodec struct{}

var _ Codec = zlibCodec{}

func (zlibCodec) Encode(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := zlib.NewWriterLevel(&buf, zlib.DefaultCompression)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func (zlibCodec) Decode(data []byte, ulen int) ([]byte, error) {
	if err := checkULen(ulen); err != nil {
		return nil, err
	}

	r, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, errs.ErrCorruptPayload
	}
	defer r.Close()

	buf := bytes.NewBuffer(make([]byte, 0, ulen))
	if _, err := io.Copy(buf, r); err != nil {
		return nil, errs.ErrCorruptPayload
	}
	if buf.Len() != ulen {
		return nil, errs.ErrLengthMismatch
	}

	return buf.Bytes(), nil
}

// DecompressZlib inflates a zlib-wrapped buffer of unknown output size,
// used by the GCA1 archive to decompress its JSONL index.
func DecompressZlib(data []byte) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, errs.ErrCorruptPayload
	}
	defer r.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return nil, errs.ErrCorruptPayload
	}

	return buf.Bytes(), nil
}

// CompressZlib deflates data into a zlib container at level 6, used by
// the GCA1 archive writer to compress its JSONL index.
func CompressZlib(data []byte) ([]byte, error) {
	return zlibCodec{}.Encode(data)
}
