package archive

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"hash/crc32"

	"github.com/gcomneno/gcc-ocf/codec"
	"github.com/gcomneno/gcc-ocf/errs"
)

// Archive is a parsed GCA1 file: the full on-disk bytes (blobs live
// in-place inside it, addressed by Entry.Offset/Length) plus the parsed
// index.
type Archive struct {
	raw     []byte
	Entries []Entry
	// IndexBodySHA256 is the hex digest recorded in the trailer record,
	// already verified against a fresh recomputation by Read.
	IndexBodySHA256 string
	// IndexZlib is the exact compressed-index bytes, retained so a
	// caller (verify) can recompute its CRC32 without re-slicing raw.
	IndexZlib []byte
}

// Read parses a complete GCA1 archive, performing every structural check
// of the reader protocol (spec §4.6): trailer magic, index bounds,
// trailer CRC32, JSONL parse, trailer-record schema/count, and the
// index_body_sha256 cross-check. A caller that only needs these checks
// (not the manifest cross-check or blob hash recomputation) has already
// gotten "verify light" for the index itself by calling Read.
func Read(data []byte) (*Archive, error) {
	if len(data) < TrailerSize {
		return nil, errs.ErrInvalidHeaderSize
	}

	trailer, err := DecodeTrailer(data[len(data)-TrailerSize:])
	if err != nil {
		return nil, err
	}

	body := data[:len(data)-TrailerSize]
	if trailer.IndexLen > uint64(len(body)) {
		return nil, errs.ErrOutOfBounds
	}

	indexStart := uint64(len(body)) - trailer.IndexLen
	indexZlib := body[indexStart:]

	if crc32.ChecksumIEEE(indexZlib) != trailer.IndexCRC {
		return nil, errs.ErrTrailerCRC
	}

	indexJSONL, err := codec.DecompressZlib(indexZlib)
	if err != nil {
		return nil, err
	}

	entries, bodyBytes, tr, err := parseIndex(indexJSONL)
	if err != nil {
		return nil, err
	}

	if tr.Entries != len(entries) {
		return nil, errs.ErrJSONLParse
	}

	sum := sha256.Sum256(bodyBytes)
	if hex.EncodeToString(sum[:]) != tr.IndexBodySHA256 {
		return nil, errs.ErrIndexBodyHash
	}

	return &Archive{
		raw:             body[:indexStart],
		Entries:         entries,
		IndexBodySHA256: tr.IndexBodySHA256,
		IndexZlib:       indexZlib,
	}, nil
}

// parseIndex splits JSONL into entry lines and the trailing trailer
// line, decoding each. bodyBytes is the exact concatenation of every
// entry line including its newline, as required to recompute
// index_body_sha256.
func parseIndex(jsonl []byte) ([]Entry, []byte, trailerRecord, error) {
	lines := splitLines(jsonl)
	if len(lines) == 0 {
		return nil, nil, trailerRecord{}, errs.ErrJSONLParse
	}

	var entries []Entry
	var bodyBytes []byte
	var tr trailerRecord
	var trailerSeen bool

	for i, line := range lines {
		trimmed := bytes.TrimRight(line, "\n")
		if len(trimmed) == 0 {
			continue
		}

		var peek kindPeek
		if err := json.Unmarshal(trimmed, &peek); err != nil {
			return nil, nil, trailerRecord{}, errs.ErrJSONLParse
		}

		if peek.Kind == "trailer" {
			if err := json.Unmarshal(trimmed, &tr); err != nil {
				return nil, nil, trailerRecord{}, errs.ErrJSONLParse
			}
			if tr.Schema != IndexTrailerSchema {
				return nil, nil, trailerRecord{}, errs.ErrJSONLParse
			}
			trailerSeen = true
			if i != len(lines)-1 {
				return nil, nil, trailerRecord{}, errs.ErrJSONLParse
			}
			continue
		}

		var e Entry
		if err := json.Unmarshal(trimmed, &e); err != nil {
			return nil, nil, trailerRecord{}, errs.ErrJSONLParse
		}
		entries = append(entries, e)
		bodyBytes = append(bodyBytes, line...)
	}

	if !trailerSeen {
		return nil, nil, trailerRecord{}, errs.ErrJSONLParse
	}

	return entries, bodyBytes, tr, nil
}

// splitLines splits data on '\n', keeping each line's trailing newline
// (dropping a final empty trailing element if data ends in '\n').
func splitLines(data []byte) [][]byte {
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

// GetBlob returns the raw bytes of the entry with the given rel.
func (a *Archive) GetBlob(rel string) ([]byte, error) {
	for _, e := range a.Entries {
		if e.Rel == rel {
			if e.Offset < 0 || e.Length < 0 || uint64(e.Offset+e.Length) > uint64(len(a.raw)) {
				return nil, errs.ErrOutOfBounds
			}

			return a.raw[e.Offset : e.Offset+e.Length], nil
		}
	}

	return nil, errs.ErrMissingResource
}

// IterEntries returns every index entry (blobs and resources alike), in
// insertion order.
func (a *Archive) IterEntries() []Entry {
	return a.Entries
}

// LoadResources returns every resource entry's bytes keyed by ResName.
func (a *Archive) LoadResources() (map[string][]byte, error) {
	out := make(map[string][]byte)
	for _, e := range a.Entries {
		if !e.IsResource() {
			continue
		}
		data, err := a.GetBlob(e.Rel)
		if err != nil {
			return nil, err
		}
		out[e.ResName] = data
	}

	return out, nil
}

// BlobData returns the raw archive bytes spanned by e, without a rel
// lookup, used by verify's hash recomputation where the entry is already
// in hand.
func (a *Archive) BlobData(e Entry) ([]byte, error) {
	if e.Offset < 0 || e.Length < 0 || uint64(e.Offset+e.Length) > uint64(len(a.raw)) {
		return nil, errs.ErrOutOfBounds
	}

	return a.raw[e.Offset : e.Offset+e.Length], nil
}
