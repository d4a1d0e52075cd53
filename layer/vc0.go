package layer

import (
	"github.com/gcomneno/gcc-ocf/container"
	"github.com/gcomneno/gcc-ocf/errs"
	"github.com/gcomneno/gcc-ocf/mbn"
)

// vc0Layer classifies each input byte as vowel / consonant / other and
// separates the payload into three streams: MASK, VOWELS (vowel bytes in
// order), CONS (consonant bytes in order). MASK is not 1:1 with the
// input: each entry is a class byte (0=other, 1=vowel, 2=consonant),
// and class-0 entries are followed by the literal byte itself, since
// "other" bytes aren't present in VOWELS or CONS. Reconstruction is a
// single linear pass over MASK.
type vc0Layer struct{}

var _ Layer = vc0Layer{}

func (vc0Layer) Code() container.LayerCode { return container.LayerVC0 }

func isVowel(b byte) bool {
	switch b {
	case 'a', 'e', 'i', 'o', 'u', 'A', 'E', 'I', 'O', 'U':
		return true
	default:
		return false
	}
}

func isConsonant(b byte) bool {
	return (b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z') && !isVowel(b)
}

const (
	classOther = 0
	classVowel = 1
	classCons  = 2
)

func (vc0Layer) Encode(input []byte) (Encoded, error) {
	mask := make([]byte, 0, len(input)*2)
	vowels := make([]byte, 0)
	cons := make([]byte, 0)

	for _, b := range input {
		switch {
		case isVowel(b):
			mask = append(mask, classVowel)
			vowels = append(vowels, b)
		case isConsonant(b):
			mask = append(mask, classCons)
			cons = append(cons, b)
		default:
			mask = append(mask, classOther, b)
		}
	}

	return Encoded{
		Streams: []StreamData{
			{Stype: mbn.StypeMask, Data: mask},
			{Stype: mbn.StypeVowels, Data: vowels},
			{Stype: mbn.StypeCons, Data: cons},
		},
	}, nil
}

func (vc0Layer) Decode(streams []mbn.Stream, _ []byte) ([]byte, error) {
	mask := findStream(streams, mbn.StypeMask)
	vowels := findStream(streams, mbn.StypeVowels)
	cons := findStream(streams, mbn.StypeCons)

	out := make([]byte, 0, len(mask))
	vi, ci := 0, 0
	for i := 0; i < len(mask); i++ {
		switch mask[i] {
		case classVowel:
			if vi >= len(vowels) {
				return nil, errs.ErrCorruptPayload
			}
			out = append(out, vowels[vi])
			vi++
		case classCons:
			if ci >= len(cons) {
				return nil, errs.ErrCorruptPayload
			}
			out = append(out, cons[ci])
			ci++
		case classOther:
			i++
			if i >= len(mask) {
				return nil, errs.ErrCorruptPayload
			}
			out = append(out, mask[i])
		default:
			return nil, errs.ErrCorruptPayload
		}
	}

	return out, nil
}
