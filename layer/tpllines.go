package layer

import (
	"bytes"

	"github.com/gcomneno/gcc-ocf/codec"
	"github.com/gcomneno/gcc-ocf/container"
	"github.com/gcomneno/gcc-ocf/errs"
	"github.com/gcomneno/gcc-ocf/mbn"
)

// tplLinesLayer templates each line: a skeleton with numeric fields
// replaced by a sentinel (TPL, deduplicated across lines), the numeric
// values in order (NUMS), and a per-line template index (IDS).
//
// shared selects tpl_lines_shared_v0 over tpl_lines_v0. At this layer
// both variants are fully self-contained and round-trip standalone.
// When tpl_lines_shared_v0 wins a bucket's autopick, dirpack's
// buildBucketArchive additionally stores a bucket-level num_dict_v1
// resource; no file's TPL stream is rewritten to reference it. See
// DESIGN.md's decision on tpl_lines_shared_v0.
type tplLinesLayer struct {
	shared bool
}

var _ Layer = tplLinesLayer{}

func (l tplLinesLayer) Code() container.LayerCode {
	if l.shared {
		return container.LayerTplLinesSharedV0
	}

	return container.LayerTplLinesV0
}

// extractTemplate replaces each digit run in ln with digitSentinel,
// returning the skeleton plus the parsed values and their original
// decimal widths (for leading-zero round-trip, as in splitTextNumsLayer).
func extractTemplate(ln []byte) (skeleton string, nums []uint64, widths []uint64) {
	buf := make([]byte, 0, len(ln))

	i := 0
	for i < len(ln) {
		if isDigit(ln[i]) {
			j := i
			var v uint64
			for j < len(ln) && isDigit(ln[j]) {
				v = v*10 + uint64(ln[j]-'0')
				j++
			}
			buf = append(buf, digitSentinel)
			nums = append(nums, v)
			widths = append(widths, uint64(j-i))
			i = j
		} else {
			buf = append(buf, ln[i])
			i++
		}
	}

	return string(buf), nums, widths
}

func (l tplLinesLayer) Encode(input []byte) (Encoded, error) {
	lines := splitLines(input)

	templates := make([]string, 0)
	templateIndex := make(map[string]uint64)
	tplIDs := make([]uint64, 0, len(lines))
	var nums []uint64
	var widths []uint64

	for _, ln := range lines {
		skeleton, lineNums, lineWidths := extractTemplate(ln)
		id, ok := templateIndex[skeleton]
		if !ok {
			id = uint64(len(templates))
			templates = append(templates, skeleton)
			templateIndex[skeleton] = id
		}
		tplIDs = append(tplIDs, id)
		nums = append(nums, lineNums...)
		widths = append(widths, lineWidths...)
	}

	return Encoded{
		Streams: []StreamData{
			{Stype: mbn.StypeTPL, Data: encodeTemplateDict(templates)},
			{Stype: mbn.StypeIDs, Data: codec.EncodeUintsV1Plain(tplIDs)},
			{Stype: mbn.StypeNums, Data: codec.EncodeUintsV1Plain(nums)},
		},
		Meta: codec.EncodeUintsV0(widths),
	}, nil
}

func (l tplLinesLayer) Decode(streams []mbn.Stream, meta []byte) ([]byte, error) {
	templates, err := parseTemplateDict(findStream(streams, mbn.StypeTPL))
	if err != nil {
		return nil, err
	}

	var tplIDs []uint64
	if idsRaw := findStream(streams, mbn.StypeIDs); len(idsRaw) > 0 {
		if tplIDs, err = codec.DecodeUintsV1(idsRaw); err != nil {
			return nil, err
		}
	}

	var nums []uint64
	if numsRaw := findStream(streams, mbn.StypeNums); len(numsRaw) > 0 {
		if nums, err = codec.DecodeUintsV1(numsRaw); err != nil {
			return nil, err
		}
	}

	var widths []uint64
	if len(meta) > 0 {
		if widths, err = codec.DecodeUintsV0(meta); err != nil {
			return nil, err
		}
	}

	var out bytes.Buffer
	ni := 0
	for _, id := range tplIDs {
		if id >= uint64(len(templates)) {
			return nil, errs.ErrCorruptPayload
		}
		skeleton := templates[id]
		for k := 0; k < len(skeleton); k++ {
			if skeleton[k] != digitSentinel {
				out.WriteByte(skeleton[k])
				continue
			}
			if ni >= len(nums) {
				return nil, errs.ErrCorruptPayload
			}
			digits := itoa(nums[ni])
			if ni < len(widths) {
				for uint64(len(digits)) < widths[ni] {
					digits = "0" + digits
				}
			}
			out.WriteString(digits)
			ni++
		}
	}
	if ni != len(nums) {
		return nil, errs.ErrCorruptPayload
	}

	return out.Bytes(), nil
}

func encodeTemplateDict(templates []string) []byte {
	var buf bytes.Buffer
	buf.Write(codec.EncodeUintsV0([]uint64{uint64(len(templates))}))
	for _, t := range templates {
		b := []byte(t)
		buf.Write(codec.EncodeUintsV0([]uint64{uint64(len(b))}))
		buf.Write(b)
	}

	return buf.Bytes()
}

func parseTemplateDict(data []byte) ([]string, error) {
	if len(data) == 0 {
		return nil, nil
	}

	n, used, err := singleUvarint(data)
	if err != nil {
		return nil, err
	}
	pos := used

	out := make([]string, 0, n)
	for i := uint64(0); i < n; i++ {
		b, consumed, err := parseLenPrefixed(data[pos:])
		if err != nil {
			return nil, err
		}
		out = append(out, string(b))
		pos += consumed
	}

	return out, nil
}
