// Package pipeline implements the file-mode encode/decode engine of spec
// §4.5: given a pipeline spec (§6), encode input through the named layer
// and codec(s), choosing between a bare single-payload container and an
// MBN-framed one by the same rule the spec states.
package pipeline

import (
	"bytes"
	"encoding/json"

	"github.com/gcomneno/gcc-ocf/codec"
	"github.com/gcomneno/gcc-ocf/container"
	"github.com/gcomneno/gcc-ocf/errs"
	"github.com/gcomneno/gcc-ocf/layer"
	"github.com/gcomneno/gcc-ocf/mbn"
)

// SchemaV1 is the only recognized value of Spec.Spec.
const SchemaV1 = "gcc-ocf.pipeline.v1"

// Spec is the JSON pipeline spec of spec §6. Unknown keys are rejected
// at parse time (ParseSpec uses json.Decoder.DisallowUnknownFields).
type Spec struct {
	Spec         string            `json:"spec"`
	Name         string            `json:"name,omitempty"`
	Layer        string            `json:"layer"`
	Codec        string            `json:"codec,omitempty"`
	StreamCodecs map[string]string `json:"stream_codecs,omitempty"`
	MBN          *bool             `json:"mbn,omitempty"`
}

// ParseSpec decodes a pipeline spec document, rejecting unknown keys and
// any schema other than SchemaV1.
func ParseSpec(data []byte) (Spec, error) {
	var s Spec
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&s); err != nil {
		return Spec{}, errs.ErrBadPipelineSpec
	}
	if s.Spec != SchemaV1 {
		return Spec{}, errs.ErrBadPipelineSpec
	}

	return s, nil
}

// Resolved is a Spec after its string identifiers have been validated
// and resolved to their numeric codes.
type Resolved struct {
	LayerCode    container.LayerCode
	DefaultCodec codec.Code
	StreamCodecs map[mbn.StreamType]codec.Code
	ForceMBN     *bool
}

// Resolve validates spec and resolves its identifiers. codec defaults to
// zlib per spec §6. An explicit mbn:false on a layer that always emits
// more than one stream is rejected: there is no single-payload framing
// that can carry more than one named stream.
func (s Spec) Resolve() (Resolved, error) {
	if s.Spec != SchemaV1 {
		return Resolved{}, errs.ErrBadPipelineSpec
	}

	layerCode, ok := container.LayerCodeByName(s.Layer)
	if !ok {
		return Resolved{}, errs.ErrBadPipelineSpec
	}

	codecName := s.Codec
	if codecName == "" {
		codecName = "zlib"
	}
	defaultCodec, ok := codec.CodeByName(codecName)
	if !ok || defaultCodec == codec.CodeMBN {
		return Resolved{}, errs.ErrBadPipelineSpec
	}

	streamCodecs := make(map[mbn.StreamType]codec.Code, len(s.StreamCodecs))
	for name, cname := range s.StreamCodecs {
		stype, ok := mbn.StreamTypeByName(name)
		if !ok {
			return Resolved{}, errs.ErrBadPipelineSpec
		}
		ccode, ok := codec.CodeByName(cname)
		if !ok || ccode == codec.CodeMBN {
			return Resolved{}, errs.ErrBadPipelineSpec
		}
		streamCodecs[stype] = ccode
	}

	if s.MBN != nil && !*s.MBN {
		if _, singleStream := layer.PrimaryStype(layerCode); !singleStream {
			return Resolved{}, errs.ErrBadPipelineSpec
		}
	}

	return Resolved{
		LayerCode:    layerCode,
		DefaultCodec: defaultCodec,
		StreamCodecs: streamCodecs,
		ForceMBN:     s.MBN,
	}, nil
}
