package dirpack

import (
	"bytes"
	"encoding/json"

	"github.com/gcomneno/gcc-ocf/errs"
	"github.com/gcomneno/gcc-ocf/pipeline"
)

// DirPipelineSchemaV1 is the only recognized schema value for a directory
// pipeline spec document (spec §6).
const DirPipelineSchemaV1 = "gcc-ocf.dir_pipeline.v1"

// CandidatePlan is one entry in a bucket type's candidate pool: a
// pipeline spec plus a deterministic tie-break Note (spec §4.7 step 4 /
// SPEC_FULL.md §D).
type CandidatePlan struct {
	Layer        string            `json:"layer"`
	Codec        string            `json:"codec,omitempty"`
	StreamCodecs map[string]string `json:"stream_codecs,omitempty"`
	Note         string            `json:"note,omitempty"`
}

// toPipelineSpec resolves p into the pipeline package's Spec shape so it
// can be run through pipeline.Encode directly.
func (p CandidatePlan) toPipelineSpec() pipeline.Spec {
	return pipeline.Spec{
		Spec:         pipeline.SchemaV1,
		Layer:        p.Layer,
		Codec:        p.Codec,
		StreamCodecs: p.StreamCodecs,
	}
}

// AutopickConfig controls per-bucket plan selection, spec §4.7 step 4 /
// §6.
type AutopickConfig struct {
	Enabled    bool `json:"enabled"`
	SampleN    int  `json:"sample_n,omitempty"`
	TopK       int  `json:"top_k,omitempty"`
	TopDBMax   int  `json:"top_db_max,omitempty"`
	RefreshTop bool `json:"refresh_top,omitempty"`
}

// ResourceConfig controls whether a named bucket-level resource (e.g.
// "num_dict_v1") is built.
type ResourceConfig struct {
	Enabled bool `json:"enabled"`
	K       int  `json:"k,omitempty"`
}

// DirSpec is the JSON directory pipeline spec of spec §6.
type DirSpec struct {
	Spec           string                      `json:"spec"`
	Buckets        int                         `json:"buckets"`
	Archive        bool                        `json:"archive"`
	Autopick       AutopickConfig              `json:"autopick"`
	CandidatePools map[string][]CandidatePlan  `json:"candidate_pools"`
	Resources      map[string]ResourceConfig   `json:"resources,omitempty"`
}

// ParseDirSpec decodes a directory pipeline spec document, rejecting
// unknown keys (same convention as pipeline.ParseSpec).
func ParseDirSpec(data []byte) (DirSpec, error) {
	var s DirSpec
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&s); err != nil {
		return DirSpec{}, errs.ErrBadPipelineSpec
	}
	if s.Spec != DirPipelineSchemaV1 {
		return DirSpec{}, errs.ErrBadPipelineSpec
	}
	if s.Buckets <= 0 {
		return DirSpec{}, errs.ErrBadBucketCount
	}
	if s.Autopick.Enabled {
		n := s.Autopick.SampleN
		if n == 0 {
			n = 3
		}
		if n < 1 || n > 8 {
			return DirSpec{}, errs.ErrBadSampleSize
		}
	}

	return s, nil
}

// normalizedTopK clamps top_k to exactly 2, per spec §4.7 step 4 ("spec
// constraint") regardless of what the document requested.
func normalizedTopK(int) int { return 2 }

// normalizedSampleN defaults sample_n to 3 when unset.
func normalizedSampleN(n int) int {
	if n == 0 {
		return 3
	}

	return n
}

// normalizedTopDBMax defaults top_db_max to 12 when unset.
func normalizedTopDBMax(n int) int {
	if n <= 0 {
		return 12
	}

	return n
}
