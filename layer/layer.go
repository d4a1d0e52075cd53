// Package layer implements the semantic layers of spec §3/§4.2: reversible
// transforms from raw bytes to one or more named symbol streams plus
// optional metadata. Every layer satisfies the Layer interface and is
// registered under its stable LayerCode (container.LayerCode).
//
// The stream-splitting abstraction here generalizes the teacher's
// columnar encoder (encoding/columnar.go: one encoder per logical
// column, assembled into a single blob) from "timestamps vs values" to
// an arbitrary named-stream set per layer.
package layer

import (
	"github.com/gcomneno/gcc-ocf/container"
	"github.com/gcomneno/gcc-ocf/mbn"
)

// Encoded is the output of a layer's Encode: one or more named streams
// plus optional metadata bytes. Streams preserves a stable order
// (declaration order from the layer), which matters for deterministic
// MBN encoding.
type Encoded struct {
	Streams []StreamData
	Meta    []byte
}

// StreamData is one stream's raw (uncompressed) bytes, paired with its
// stype tag.
type StreamData struct {
	Stype mbn.StreamType
	Data  []byte
}

// Layer is a reversible byte <-> streams transform.
type Layer interface {
	// Code returns the stable numeric layer_code.
	Code() container.LayerCode
	// Encode splits input into named streams plus optional meta.
	// Returns an error if input cannot be represented by this layer
	// (errs.ErrNotUTF8 for non-UTF-8 input to a text-centric layer).
	Encode(input []byte) (Encoded, error)
	// Decode reverses Encode: given the same streams (by stype) and
	// meta, reconstructs the original bytes exactly.
	Decode(streams []mbn.Stream, meta []byte) ([]byte, error)
}

// Get returns the registered Layer for code.
func Get(code container.LayerCode) (Layer, error) {
	switch code {
	case container.LayerBytes:
		return bytesLayer{}, nil
	case container.LayerVC0:
		return vc0Layer{}, nil
	case container.LayerSyllablesIT:
		return newVocabLayer(container.LayerSyllablesIT, tokenizeSyllablesIT), nil
	case container.LayerWordsIT:
		return newVocabLayer(container.LayerWordsIT, tokenizeWords), nil
	case container.LayerLinesDict:
		return linesDictLayer{}, nil
	case container.LayerLinesRLE:
		return linesRLELayer{}, nil
	case container.LayerSplitTextNums:
		return splitTextNumsLayer{}, nil
	case container.LayerTplLinesV0:
		return tplLinesLayer{shared: false}, nil
	case container.LayerTplLinesSharedV0:
		return tplLinesLayer{shared: true}, nil
	default:
		return nil, errUnknownLayer
	}
}

// PrimaryStype returns the stype of the single stream a layer emits,
// for layers that always emit exactly one stream. ok is false for
// multi-stream layers. The pipeline engine's single-payload (non-MBN)
// path (spec §4.5: "the layer has one stream") only applies to these;
// every other layer always gets MBN framing since it always has more
// than one stream.
func PrimaryStype(code container.LayerCode) (mbn.StreamType, bool) {
	switch code {
	case container.LayerBytes:
		return mbn.StypeMain, true
	case container.LayerSyllablesIT, container.LayerWordsIT, container.LayerLinesDict:
		return mbn.StypeIDs, true
	default:
		return 0, false
	}
}

// findStream returns the byte data of stype within streams, or nil if
// absent.
func findStream(streams []mbn.Stream, t mbn.StreamType) []byte {
	if s, ok := mbn.ByType(streams, t); ok {
		return s.Data
	}

	return nil
}
