package dirpack

import (
	"bytes"
	"sort"

	"github.com/gcomneno/gcc-ocf/codec"
)

// buildTemplateDictResource aggregates the k most frequent line
// skeletons (digit runs replaced by the sentinel byte, mirroring
// layer.tplLinesLayer's own per-file extraction) across every file in
// the bucket into a single num_dict_v1 resource, per spec §4.7 step 5.
// Frequency ties break by skeleton bytes for determinism.
//
// Per-file containers remain fully self-contained (each still carries
// its own TPL dictionary, per layer/tpllines.go); this resource is the
// bucket-level artifact spec §3/§4.7 names but the per-file rewrite to
// reference it is left as a documented DESIGN.md simplification.
func buildTemplateDictResource(files []classifiedFile, k int) ([]byte, error) {
	if k <= 0 {
		k = 64
	}

	counts := make(map[string]int)
	for _, f := range files {
		for _, ln := range splitLinesLocal(f.Data) {
			counts[extractSkeleton(ln)]++
		}
	}

	type kv struct {
		skeleton string
		count    int
	}
	entries := make([]kv, 0, len(counts))
	for s, c := range counts {
		entries = append(entries, kv{s, c})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].count != entries[j].count {
			return entries[i].count > entries[j].count
		}

		return entries[i].skeleton < entries[j].skeleton
	})
	if len(entries) > k {
		entries = entries[:k]
	}

	var buf bytes.Buffer
	buf.Write(codec.EncodeUintsV0([]uint64{uint64(len(entries))}))
	for _, e := range entries {
		b := []byte(e.skeleton)
		buf.Write(codec.EncodeUintsV0([]uint64{uint64(len(b))}))
		buf.Write(b)
	}

	return buf.Bytes(), nil
}

const digitSentinelLocal = 0x00

func isDigitLocal(b byte) bool { return b >= '0' && b <= '9' }

// extractSkeleton replaces every maximal digit run in ln with the same
// sentinel byte layer.tplLinesLayer uses, so bucket-level template
// frequency counts line up with what each file's own TPL stream records.
func extractSkeleton(ln []byte) string {
	buf := make([]byte, 0, len(ln))
	i := 0
	for i < len(ln) {
		if isDigitLocal(ln[i]) {
			for i < len(ln) && isDigitLocal(ln[i]) {
				i++
			}
			buf = append(buf, digitSentinelLocal)
		} else {
			buf = append(buf, ln[i])
			i++
		}
	}

	return string(buf)
}

// splitLinesLocal splits data into lines, each retaining its trailing
// '\n' (mirroring layer.splitLines).
func splitLinesLocal(data []byte) [][]byte {
	if len(data) == 0 {
		return nil
	}

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
