package dirpack

import (
	"math"
	"sort"

	"github.com/gcomneno/gcc-ocf/errs"
	"github.com/gcomneno/gcc-ocf/pipeline"
)

// Scored pairs a candidate plan with its total compressed size across an
// autopick sample, and whether at least one sample file actually
// round-tripped through it (a layer inapplicable to every sample file,
// e.g. a text layer given binary input, is ranked last rather than
// falsely winning with a zero-byte total).
type Scored struct {
	Plan        CandidatePlan
	Size        int64
	Applicable  bool
}

// Autopick compresses every file in sample with every plan in pool and
// returns the winner plus the ranked list clamped to the top 2 entries
// (spec §4.7 step 4: "Clamp top_k to exactly 2"), sorted by total size
// ascending with a lexicographic note tie-break (spec §8 property 6).
func Autopick(sample [][]byte, pool []CandidatePlan) (CandidatePlan, []Scored, error) {
	if len(pool) == 0 {
		return CandidatePlan{}, nil, errs.ErrBadPipelineSpec
	}

	scored := make([]Scored, 0, len(pool))
	for _, p := range pool {
		spec := p.toPipelineSpec()

		var total int64
		applicable := false
		for _, f := range sample {
			out, err := pipeline.Encode(spec, f)
			if err != nil {
				continue
			}
			applicable = true
			total += int64(len(out))
		}

		size := total
		if !applicable {
			size = math.MaxInt64
		}

		scored = append(scored, Scored{Plan: p, Size: size, Applicable: applicable})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Size != scored[j].Size {
			return scored[i].Size < scored[j].Size
		}

		return scored[i].Plan.Note < scored[j].Plan.Note
	})

	if !scored[0].Applicable {
		return CandidatePlan{}, nil, errs.ErrBadPipelineSpec
	}

	top := normalizedTopK(0)
	if top > len(scored) {
		top = len(scored)
	}

	return scored[0].Plan, scored[:top], nil
}

// sampleBytes returns up to n file payloads from files, in their given
// order (the caller's deterministic walk order), per spec §4.7 step 4 /
// §5's determinism guarantee ("autopick sampling is deterministic given
// the same input").
func sampleBytes(files [][]byte, n int) [][]byte {
	if n > len(files) {
		n = len(files)
	}

	return files[:n]
}
