package layer

import (
	"github.com/gcomneno/gcc-ocf/codec"
	"github.com/gcomneno/gcc-ocf/container"
	"github.com/gcomneno/gcc-ocf/errs"
	"github.com/gcomneno/gcc-ocf/mbn"
)

// digitSentinel replaces each maximal run of ASCII digits in the TEXT
// stream. 0x00 never occurs in ordinary text, so it's an unambiguous
// placeholder (spec §4.2 example E uses the same sentinel byte).
const digitSentinel = 0x00

// splitTextNumsLayer scans the input for maximal runs of ASCII digits,
// replacing each with a single sentinel byte in TEXT and recording the
// parsed integer in NUMS (num_v1-encoded, matching spec example E and
// the dir-packer's fixed single-container pipeline of §4.7).
type splitTextNumsLayer struct{}

var _ Layer = splitTextNumsLayer{}

func (splitTextNumsLayer) Code() container.LayerCode { return container.LayerSplitTextNums }

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

func (splitTextNumsLayer) Encode(input []byte) (Encoded, error) {
	text := make([]byte, 0, len(input))
	nums := make([]uint64, 0)
	widths := make([]uint64, 0)

	i := 0
	for i < len(input) {
		if isDigit(input[i]) {
			j := i
			var v uint64
			for j < len(input) && isDigit(input[j]) {
				v = v*10 + uint64(input[j]-'0')
				j++
			}
			text = append(text, digitSentinel)
			nums = append(nums, v)
			widths = append(widths, uint64(j-i))
			i = j
		} else {
			text = append(text, input[i])
			i++
		}
	}

	// No digit runs: NUMS stays empty (Decode accepts an empty NUMS).
	var numsData []byte
	if len(nums) > 0 {
		numsData = codec.EncodeUintsV1Plain(nums)
	}

	return Encoded{
		Streams: []StreamData{
			{Stype: mbn.StypeText, Data: text},
			{Stype: mbn.StypeNums, Data: numsData},
		},
		// widths carries each digit run's original decimal width so
		// leading zeros round-trip exactly (e.g. "007" -> v=7, width=3).
		Meta: codec.EncodeUintsV0(widths),
	}, nil
}

func (splitTextNumsLayer) Decode(streams []mbn.Stream, meta []byte) ([]byte, error) {
	text := findStream(streams, mbn.StypeText)
	numsRaw := findStream(streams, mbn.StypeNums)

	var nums []uint64
	if len(numsRaw) > 0 {
		var err error
		nums, err = codec.DecodeUintsV1(numsRaw)
		if err != nil {
			return nil, err
		}
	}

	var widths []uint64
	if len(meta) > 0 {
		var err error
		widths, err = codec.DecodeUintsV0(meta)
		if err != nil {
			return nil, err
		}
	}

	out := make([]byte, 0, len(text))
	ni := 0
	for _, b := range text {
		if b == digitSentinel {
			if ni >= len(nums) {
				return nil, errs.ErrCorruptPayload
			}
			digits := itoa(nums[ni])
			if ni < len(widths) {
				for uint64(len(digits)) < widths[ni] {
					digits = "0" + digits
				}
			}
			out = append(out, []byte(digits)...)
			ni++
		} else {
			out = append(out, b)
		}
	}
	if ni != len(nums) {
		return nil, errs.ErrCorruptPayload
	}

	return out, nil
}

// itoa renders v as decimal digits without leading zeros, except that a
// lone zero renders as "0". Decode re-pads using the recorded run width
// to restore any leading zeros the source had.
func itoa(v uint64) string {
	if v == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
	}

	return string(buf[i:])
}
