// Package errs defines the error taxonomy shared by every layer of the
// onion: codec, layer, MBN bundle, container, pipeline, archive, and
// directory packer all return sentinels from this package so that a
// caller can classify any failure into exactly one of the five kinds
// described by the core specification, and map it to a stable process
// exit code, without re-deriving the taxonomy at each call site.
package errs

import "errors"

// Kind classifies an error into one of the five taxonomy members, ordered
// from least to most severe. Verify aggregates findings and reports the
// highest Kind observed.
type Kind int

const (
	// KindUsage is an invalid spec, bad argument, or a mode precondition
	// violation (e.g. text-only directory pack on binary input).
	KindUsage Kind = iota
	// KindCorruptPayload is a structural violation: bad magic, truncated
	// varint, out-of-bounds length, unknown codec code, JSONL parse
	// failure, decompressed-length mismatch.
	KindCorruptPayload
	// KindUnsupportedVersion is a container version outside 1..6, or a
	// reserved v6 flag bit set.
	KindUnsupportedVersion
	// KindMissingResource is a referenced bucket-level resource absent
	// from the archive.
	KindMissingResource
	// KindHashMismatch is an integrity failure at any level: index CRC,
	// index body SHA, blob SHA/CRC, or a decode exception raised during
	// full-mode verify before any hash was compared.
	KindHashMismatch
)

// ExitCode returns the stable process exit code for k, per spec §6/§7.
func (k Kind) ExitCode() int {
	switch k {
	case KindUsage:
		return 2
	case KindCorruptPayload:
		return 10
	case KindUnsupportedVersion:
		return 11
	case KindMissingResource:
		return 12
	case KindHashMismatch:
		return 13
	default:
		return 10
	}
}

func (k Kind) String() string {
	switch k {
	case KindUsage:
		return "UsageError"
	case KindCorruptPayload:
		return "CorruptPayload"
	case KindUnsupportedVersion:
		return "UnsupportedVersion"
	case KindMissingResource:
		return "MissingResource"
	case KindHashMismatch:
		return "HashMismatch"
	default:
		return "Unknown"
	}
}

// KindError pairs a sentinel with its taxonomy Kind so that ExitCode and
// severity ordering survive past errors.Is/errors.Wrap.
type KindError struct {
	kind Kind
	msg  string
}

func (e *KindError) Error() string { return e.msg }

// Kind returns the taxonomy member of e.
func (e *KindError) Kind() Kind { return e.kind }

// ExitCode returns the stable process exit code for e.
func (e *KindError) ExitCode() int { return e.kind.ExitCode() }

func newKind(kind Kind, msg string) *KindError {
	return &KindError{kind: kind, msg: msg}
}

// Sentinel errors. Use errors.Is against these for branching; use
// KindOf(err) to recover the taxonomy Kind of a wrapped error.
var (
	ErrUsage             = newKind(KindUsage, "usage error")
	ErrBadPipelineSpec   = newKind(KindUsage, "invalid pipeline spec")
	ErrBinaryInTextMode  = newKind(KindUsage, "binary file in text-only mode")
	ErrBadBucketCount    = newKind(KindUsage, "bucket count must be positive")
	ErrBadSampleSize     = newKind(KindUsage, "autopick sample_n out of range [1,8]")

	ErrCorruptPayload   = newKind(KindCorruptPayload, "corrupt payload")
	ErrBadMagic         = newKind(KindCorruptPayload, "bad magic")
	ErrTruncatedVarint  = newKind(KindCorruptPayload, "truncated varint")
	ErrVarintTooLarge   = newKind(KindCorruptPayload, "varint exceeds allowed magnitude")
	ErrOutOfBounds      = newKind(KindCorruptPayload, "declared length out of bounds")
	ErrLengthMismatch   = newKind(KindCorruptPayload, "decompressed length mismatch")
	ErrDuplicateStype   = newKind(KindCorruptPayload, "duplicate stream type in bundle")
	ErrUnknownCodec     = newKind(KindCorruptPayload, "unknown codec code")
	ErrEmptyBundle      = newKind(KindCorruptPayload, "bundle has zero streams")
	ErrReservedFlagBits = newKind(KindCorruptPayload, "reserved flag bits set")
	ErrInvalidHeaderSize    = newKind(KindCorruptPayload, "invalid header size")
	ErrInvalidIndexEntry    = newKind(KindCorruptPayload, "invalid index entry")
	ErrJSONLParse           = newKind(KindCorruptPayload, "JSONL parse failure")
	ErrLayerInapplicable    = newKind(KindCorruptPayload, "layer inapplicable to input")
	ErrNotUTF8              = newKind(KindCorruptPayload, "input is not valid UTF-8")

	ErrUnsupportedVersion = newKind(KindUnsupportedVersion, "unsupported container version")
	ErrUnknownLayerCode   = newKind(KindUnsupportedVersion, "unknown layer code")
	ErrUnknownCodecCode   = newKind(KindUnsupportedVersion, "unknown codec code in container header")

	ErrMissingResource = newKind(KindMissingResource, "missing required resource")

	ErrHashMismatch     = newKind(KindHashMismatch, "hash mismatch")
	ErrTrailerCRC       = newKind(KindHashMismatch, "trailer CRC32 mismatch")
	ErrIndexBodyHash    = newKind(KindHashMismatch, "index body sha256 mismatch")
	ErrBlobHash         = newKind(KindHashMismatch, "blob hash mismatch")
	ErrManifestMismatch = newKind(KindHashMismatch, "manifest/index cross-check mismatch")
)

// KindOf recovers the taxonomy Kind of err, if it (or something it wraps)
// is a *KindError. ok is false for errors outside the taxonomy.
func KindOf(err error) (Kind, bool) {
	var ke *KindError
	if errors.As(err, &ke) {
		return ke.kind, true
	}

	return 0, false
}

// ExitCodeOf returns the stable exit code for err, defaulting to the
// generic code 10 (CorruptPayload-equivalent "GENERIC" per spec §6) when
// err carries no taxonomy Kind.
func ExitCodeOf(err error) int {
	if err == nil {
		return 0
	}
	if k, ok := KindOf(err); ok {
		return k.ExitCode()
	}

	return 10
}

// Worst returns the most severe Kind among errs, per the descending
// severity order KindHashMismatch > KindMissingResource >
// KindUnsupportedVersion > KindCorruptPayload > KindUsage. Verify uses
// this to pick the single reported outcome for an artifact with several
// findings.
func Worst(errs ...error) (Kind, bool) {
	found := false
	var worst Kind
	for _, e := range errs {
		k, ok := KindOf(e)
		if !ok {
			continue
		}
		if !found || k > worst {
			worst = k
			found = true
		}
	}

	return worst, found
}
