// Package codec implements the byte-to-byte compressors of the core
// specification: raw, zlib, zstd, zstd_tight, huffman, num_v0, num_v1,
// plus the mbn tag reserved for the multi-stream bundle meta-codec.
//
// Every codec shares the uniform contract from spec §4.1:
//
//	encode(bytes) -> bytes
//	decode(bytes, ulen) -> bytes
//
// ulen is both a decoder hint and a post-condition: Decode must return
// exactly ulen bytes or fail with errs.ErrLengthMismatch.
package codec

import (
	"github.com/gcomneno/gcc-ocf/errs"
)

// Code is the stable numeric codec_code from spec §3.
type Code uint8

const (
	CodeHuffman   Code = 0
	CodeZstd      Code = 1
	CodeZstdTight Code = 2
	CodeRaw       Code = 3
	CodeMBN       Code = 4
	CodeNumV0     Code = 5
	CodeZlib      Code = 6
	CodeNumV1     Code = 7
)

// Name returns the spec identifier string for c.
func (c Code) Name() string {
	switch c {
	case CodeHuffman:
		return "huffman"
	case CodeZstd:
		return "zstd"
	case CodeZstdTight:
		return "zstd_tight"
	case CodeRaw:
		return "raw"
	case CodeMBN:
		return "mbn"
	case CodeNumV0:
		return "num_v0"
	case CodeZlib:
		return "zlib"
	case CodeNumV1:
		return "num_v1"
	default:
		return "unknown"
	}
}

func (c Code) String() string { return c.Name() }

// CodeByName resolves a spec identifier (e.g. "zlib") to its Code.
func CodeByName(name string) (Code, bool) {
	for _, c := range []Code{CodeHuffman, CodeZstd, CodeZstdTight, CodeRaw, CodeMBN, CodeNumV0, CodeZlib, CodeNumV1} {
		if c.Name() == name {
			return c, true
		}
	}

	return 0, false
}

// Valid reports whether c is one of the 8 registered codec codes.
func (c Code) Valid() bool {
	return c <= CodeNumV1
}

// Codec is a byte-to-byte compressor/decompressor.
type Codec interface {
	// Encode compresses data.
	Encode(data []byte) ([]byte, error)
	// Decode decompresses data, which must have been produced by Encode,
	// and returns exactly ulen bytes. A length mismatch after
	// decompression is reported as errs.ErrLengthMismatch.
	Decode(data []byte, ulen int) ([]byte, error)
}

// Get returns the registered Codec for c.
//
// mbn is not a byte codec (it is the bundle format itself, implemented
// in package mbn) and has no entry here; callers that see codec_code ==
// CodeMBN must dispatch to the mbn package instead of calling Get.
func Get(c Code) (Codec, error) {
	switch c {
	case CodeHuffman:
		return huffmanCodec{}, nil
	case CodeZstd:
		return zstdCodec{}, nil
	case CodeZstdTight:
		return zstdTightCodec{}, nil
	case CodeRaw:
		return rawCodec{}, nil
	case CodeNumV0:
		return numV0Codec{}, nil
	case CodeZlib:
		return zlibCodec{}, nil
	case CodeNumV1:
		return numV1Codec{}, nil
	default:
		return nil, errs.ErrUnknownCodec
	}
}

// MaxULen bounds the declared decompressed length accepted by any codec's
// Decode, per spec §5's denial-of-service guidance. 64MiB is ample for
// the per-stream payloads this format targets.
const MaxULen = 64 * 1024 * 1024

func checkULen(ulen int) error {
	if ulen < 0 || ulen > MaxULen {
		return errs.ErrOutOfBounds
	}

	return nil
}
