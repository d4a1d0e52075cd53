package dirpack

import (
	"bytes"
	"encoding/json"

	"github.com/gcomneno/gcc-ocf/errs"
)

// ManifestEntry is one line of classic mode's manifest.jsonl, mapping an
// input file to its (bucket_id, rel, archive_offset, archive_length) plus
// the input's own content hash, per spec §3.
type ManifestEntry struct {
	BucketID      int    `json:"bucket_id"`
	Rel           string `json:"rel"`
	ArchiveOffset int64  `json:"archive_offset"`
	ArchiveLength int64  `json:"archive_length"`
	InputSHA256   string `json:"input_sha256"`
}

// BucketSummary records, per bucket, the resources a correct unpack of
// that bucket requires to be present (spec §3: "A companion
// bucket_summary records required resources per bucket").
type BucketSummary struct {
	BucketID          int      `json:"bucket_id"`
	RequiredResources []string `json:"required_resources,omitempty"`
}

// EncodeManifest renders entries as JSONL, one entry per line.
func EncodeManifest(entries []ManifestEntry) ([]byte, error) {
	var buf bytes.Buffer
	for _, e := range entries {
		line, err := json.Marshal(e)
		if err != nil {
			return nil, err
		}
		buf.Write(line)
		buf.WriteByte('\n')
	}

	return buf.Bytes(), nil
}

// ParseManifest parses a JSONL manifest document.
func ParseManifest(data []byte) ([]ManifestEntry, error) {
	var out []ManifestEntry
	for _, line := range splitJSONLLines(data) {
		if len(line) == 0 {
			continue
		}
		var e ManifestEntry
		if err := json.Unmarshal(line, &e); err != nil {
			return nil, errs.ErrJSONLParse
		}
		out = append(out, e)
	}

	return out, nil
}

// EncodeBucketSummaries renders summaries as JSONL.
func EncodeBucketSummaries(summaries []BucketSummary) ([]byte, error) {
	var buf bytes.Buffer
	for _, s := range summaries {
		line, err := json.Marshal(s)
		if err != nil {
			return nil, err
		}
		buf.Write(line)
		buf.WriteByte('\n')
	}

	return buf.Bytes(), nil
}

// ParseBucketSummaries parses a JSONL bucket_summary document.
func ParseBucketSummaries(data []byte) ([]BucketSummary, error) {
	var out []BucketSummary
	for _, line := range splitJSONLLines(data) {
		if len(line) == 0 {
			continue
		}
		var s BucketSummary
		if err := json.Unmarshal(line, &s); err != nil {
			return nil, errs.ErrJSONLParse
		}
		out = append(out, s)
	}

	return out, nil
}

func splitJSONLLines(data []byte) [][]byte {
	return bytes.Split(bytes.TrimRight(data, "\n"), []byte{'\n'})
}

// BundleIndexSchemaV1 is the schema string for the single-container
// index (spec §3).
const BundleIndexSchemaV1 = "gcc-ocf.dir_bundle_index.v1"

// BundleIndexEntry is one file's slice coordinates into a single
// container's decompressed concat stream.
type BundleIndexEntry struct {
	Rel    string `json:"rel"`
	Offset int64  `json:"offset"`
	Length int64  `json:"length"`
	SHA256 string `json:"sha256"`
}

// BundleIndex is the single-container index document (schema
// gcc-ocf.dir_bundle_index.v1).
type BundleIndex struct {
	Schema  string              `json:"schema"`
	Entries []BundleIndexEntry  `json:"entries"`
}

// NewBundleIndex wraps entries with the stable schema tag.
func NewBundleIndex(entries []BundleIndexEntry) BundleIndex {
	return BundleIndex{Schema: BundleIndexSchemaV1, Entries: entries}
}

// EncodeBundleIndex renders idx as a single JSON document (spec §4.7:
// "bundle_index.json").
func EncodeBundleIndex(idx BundleIndex) ([]byte, error) {
	return json.MarshalIndent(idx, "", "  ")
}

// ParseBundleIndex parses a bundle_index.json document.
func ParseBundleIndex(data []byte) (BundleIndex, error) {
	var idx BundleIndex
	if err := json.Unmarshal(data, &idx); err != nil {
		return BundleIndex{}, errs.ErrJSONLParse
	}
	if idx.Schema != BundleIndexSchemaV1 {
		return BundleIndex{}, errs.ErrBadPipelineSpec
	}

	return idx, nil
}
