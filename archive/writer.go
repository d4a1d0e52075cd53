package archive

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"hash/crc32"

	"github.com/gcomneno/gcc-ocf/codec"
	"github.com/gcomneno/gcc-ocf/internal/pool"
)

// BlobOptions controls which optional integrity fields Writer.AddBlob
// records alongside a blob entry.
type BlobOptions struct {
	WithSHA256 bool
	WithCRC32  bool
}

// Writer builds a GCA1 archive incrementally: blobs and resources are
// appended in insertion order, then Finish assembles the index and
// trailer and returns the complete archive bytes.
//
// Writer protocol follows spec §4.6 steps 1-5 exactly: blob/resource
// append, JSONL index build (entry lines then trailer line), zlib
// compression of the index, and the 16-byte trailer appended last.
type Writer struct {
	data    *pool.ByteBuffer
	entries []Entry
}

// NewWriter creates an empty Writer.
func NewWriter() *Writer {
	return &Writer{
		data: pool.GetIndexBuffer(),
	}
}

// AddBlob appends a blob (typically a v6 container) under rel, recording
// its offset/length and any requested integrity fields.
func (w *Writer) AddBlob(rel string, data []byte, opts BlobOptions) {
	offset := int64(w.data.Len())
	w.data.MustWrite(data)

	e := Entry{
		Rel:    rel,
		Offset: offset,
		Length: int64(len(data)),
	}
	if opts.WithSHA256 {
		sum := sha256.Sum256(data)
		e.BlobSHA256 = hex.EncodeToString(sum[:])
	}
	if opts.WithCRC32 {
		e.BlobCRC32 = crc32.ChecksumIEEE(data)
	}

	w.entries = append(w.entries, e)
}

// AddResource appends a bucket-level resource under "__res__/name",
// tagged Kind="resource" and carrying ResName, per spec §3.
func (w *Writer) AddResource(name string, data []byte) {
	offset := int64(w.data.Len())
	w.data.MustWrite(data)

	w.entries = append(w.entries, Entry{
		Rel:     ResourcePrefix + name,
		Offset:  offset,
		Length:  int64(len(data)),
		Kind:    "resource",
		ResName: name,
	})
}

// Finish assembles the JSONL index (entry lines, then the trailer
// record), zlib-compresses it, and returns the complete archive: blobs,
// then compressed index, then the 16-byte binary Trailer.
//
// index_body_sha256 is computed over the concatenation of every entry
// line (not the trailer line itself), each including its terminating
// newline, per spec §3.
func (w *Writer) Finish() ([]byte, error) {
	defer pool.PutIndexBuffer(w.data)

	var body []byte
	for _, e := range w.entries {
		line, err := json.Marshal(e)
		if err != nil {
			return nil, err
		}
		body = append(body, line...)
		body = append(body, '\n')
	}

	bodySum := sha256.Sum256(body)
	trailerLine, err := json.Marshal(trailerRecord{
		Kind:            "trailer",
		Schema:          IndexTrailerSchema,
		Entries:         len(w.entries),
		IndexBodySHA256: hex.EncodeToString(bodySum[:]),
	})
	if err != nil {
		return nil, err
	}

	indexJSONL := append(body, trailerLine...)
	indexJSONL = append(indexJSONL, '\n')

	indexZlib, err := codec.CompressZlib(indexJSONL)
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, w.data.Len()+len(indexZlib)+TrailerSize)
	out = append(out, w.data.Bytes()...)
	out = append(out, indexZlib...)

	trailer := Trailer{
		IndexLen: uint64(len(indexZlib)),
		IndexCRC: crc32.ChecksumIEEE(indexZlib),
	}
	out = append(out, trailer.Encode()...)

	return out, nil
}
