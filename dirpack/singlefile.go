package dirpack

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"unicode/utf8"

	"github.com/gcomneno/gcc-ocf/errs"
	"github.com/gcomneno/gcc-ocf/pipeline"
)

// textOnlySpec is the fixed winning pipeline for single-container
// text-only mode (spec §4.7 step 3): split_text_nums + MBN{TEXT:zlib,
// NUMS:num_v1}.
func textOnlySpec() pipeline.Spec {
	forceMBN := true

	return pipeline.Spec{
		Spec:         pipeline.SchemaV1,
		Layer:        "split_text_nums",
		Codec:        "zlib",
		StreamCodecs: map[string]string{"TEXT": "zlib", "NUMS": "num_v1"},
		MBN:          &forceMBN,
	}
}

// binaryBundleSpec is single-container mixed mode's binary-set pipeline:
// bytes + zstd. Spec §4.7 allows "zstd if available else zlib"; this
// implementation's zstd codec (github.com/klauspost/compress/zstd) is
// always available, so zstd is used unconditionally.
func binaryBundleSpec() pipeline.Spec {
	return pipeline.Spec{
		Spec:  pipeline.SchemaV1,
		Layer: "bytes",
		Codec: "zstd",
	}
}

// TextOnlyResult is single-container text-only mode's output: one v6
// container plus the index of the files concatenated into it.
type TextOnlyResult struct {
	Bundle []byte
	Index  BundleIndex
}

// PackTextOnly runs single-container text-only mode (spec §4.7): every
// input must be valid UTF-8 (else errs.ErrBinaryInTextMode, exit 2 per
// spec §8 scenario F), concatenated in deterministic order, and
// compressed as one split_text_nums+MBN bundle.
func PackTextOnly(root string) (*TextOnlyResult, error) {
	files, err := WalkFiles(root)
	if err != nil {
		return nil, err
	}

	for _, f := range files {
		if !utf8.Valid(f.Data) {
			return nil, errs.ErrBinaryInTextMode
		}
	}

	bundle, idx, err := concatAndEncode(files, textOnlySpec())
	if err != nil {
		return nil, err
	}

	return &TextOnlyResult{Bundle: bundle, Index: idx}, nil
}

// MixedResult is single-container mixed mode's output: independent
// bundles for the UTF-8 and non-UTF-8 partitions.
type MixedResult struct {
	TextBundle []byte
	TextIndex  BundleIndex
	BinBundle  []byte
	BinIndex   BundleIndex
}

// PackMixed runs single-container mixed mode (spec §4.7): partitions
// inputs into TEXT/BIN sets by UTF-8 validity and emits two independent
// bundles, split_text_nums+MBN for TEXT and bytes+zstd for BIN.
func PackMixed(root string) (*MixedResult, error) {
	files, err := WalkFiles(root)
	if err != nil {
		return nil, err
	}

	var textFiles, binFiles []FileEntry
	for _, f := range files {
		if utf8.Valid(f.Data) {
			textFiles = append(textFiles, f)
		} else {
			binFiles = append(binFiles, f)
		}
	}

	textBundle, textIdx, err := concatAndEncode(textFiles, textOnlySpec())
	if err != nil {
		return nil, err
	}
	binBundle, binIdx, err := concatAndEncode(binFiles, binaryBundleSpec())
	if err != nil {
		return nil, err
	}

	return &MixedResult{
		TextBundle: textBundle, TextIndex: textIdx,
		BinBundle: binBundle, BinIndex: binIdx,
	}, nil
}

// concatAndEncode concatenates files in their given order, recording
// each one's (rel, offset, length, sha256) slice coordinates into the
// decompressed concat stream (spec §3), then runs spec against the
// concatenation.
func concatAndEncode(files []FileEntry, spec pipeline.Spec) ([]byte, BundleIndex, error) {
	var concat bytes.Buffer
	entries := make([]BundleIndexEntry, 0, len(files))
	for _, f := range files {
		offset := int64(concat.Len())
		concat.Write(f.Data)
		sum := sha256.Sum256(f.Data)
		entries = append(entries, BundleIndexEntry{
			Rel: f.Rel, Offset: offset, Length: int64(len(f.Data)), SHA256: hex.EncodeToString(sum[:]),
		})
	}

	bundle, err := pipeline.Encode(spec, concat.Bytes())
	if err != nil {
		return nil, BundleIndex{}, err
	}

	return bundle, NewBundleIndex(entries), nil
}
