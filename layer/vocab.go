package layer

import (
	"bytes"
	"unicode"
	"unicode/utf8"

	"github.com/gcomneno/gcc-ocf/codec"
	"github.com/gcomneno/gcc-ocf/container"
	"github.com/gcomneno/gcc-ocf/errs"
	"github.com/gcomneno/gcc-ocf/internal/pool"
	"github.com/gcomneno/gcc-ocf/mbn"
)

// vocabLayer tokenizes input into a sequence of strings whose
// concatenation reproduces the input exactly — whitespace and other
// delimiters are themselves tokens, never dropped — deduplicates the
// tokens into a vocabulary, and emits an IDS stream of vocabulary
// indices. The vocabulary travels in META as a count-prefixed sequence
// of length+bytes records, same shape as linesDictLayer's dictionary.
type vocabLayer struct {
	code     container.LayerCode
	tokenize func([]byte) []string
}

func newVocabLayer(code container.LayerCode, tokenize func([]byte) []string) vocabLayer {
	return vocabLayer{code: code, tokenize: tokenize}
}

var _ Layer = vocabLayer{}

func (l vocabLayer) Code() container.LayerCode { return l.code }

func (l vocabLayer) Encode(input []byte) (Encoded, error) {
	if !utf8.Valid(input) {
		return Encoded{}, errs.ErrNotUTF8
	}

	tokens := l.tokenize(input)

	// vocab (unique tokens) and ids (one per token) are both bounded by
	// len(tokens): ids exactly, vocab at most. Both are borrowed from
	// internal/pool instead of grown by repeated append-triggered
	// reallocation, and released once they've been folded into meta/ids'
	// caller-visible encodings below.
	vocabBuf, doneVocab := pool.GetStringSlice(len(tokens))
	defer doneVocab()
	vocab := vocabBuf[:0]

	idsBuf, doneIDs := pool.GetUint64Slice(len(tokens))
	defer doneIDs()
	ids := idsBuf[:0]

	index := make(map[string]uint64)

	for _, tok := range tokens {
		id, ok := index[tok]
		if !ok {
			id = uint64(len(vocab))
			vocab = append(vocab, tok)
			index[tok] = id
		}
		ids = append(ids, id)
	}

	var meta bytes.Buffer
	meta.Write(codec.EncodeUintsV0([]uint64{uint64(len(vocab))}))
	for _, tok := range vocab {
		b := []byte(tok)
		meta.Write(codec.EncodeUintsV0([]uint64{uint64(len(b))}))
		meta.Write(b)
	}

	return Encoded{
		Streams: []StreamData{
			{Stype: mbn.StypeIDs, Data: codec.EncodeUintsV1Plain(ids)},
		},
		Meta: meta.Bytes(),
	}, nil
}

func (l vocabLayer) Decode(streams []mbn.Stream, meta []byte) ([]byte, error) {
	idsRaw := findStream(streams, mbn.StypeIDs)
	if len(idsRaw) == 0 {
		return []byte{}, nil
	}
	ids, err := codec.DecodeUintsV1(idsRaw)
	if err != nil {
		return nil, err
	}

	nVocab, n, err := singleUvarint(meta)
	if err != nil {
		return nil, err
	}
	pos := n

	vocab := make([]string, 0, nVocab)
	for i := uint64(0); i < nVocab; i++ {
		tok, used, err := parseLenPrefixed(meta[pos:])
		if err != nil {
			return nil, err
		}
		vocab = append(vocab, string(tok))
		pos += used
	}

	var out bytes.Buffer
	for _, id := range ids {
		if id >= uint64(len(vocab)) {
			return nil, errs.ErrCorruptPayload
		}
		out.WriteString(vocab[id])
	}

	return out.Bytes(), nil
}

// tokenizeWords splits input into maximal runs of whitespace and
// maximal runs of non-whitespace, alternating; every rune is accounted
// for in exactly one token.
func tokenizeWords(input []byte) []string {
	runes := []rune(string(input))
	if len(runes) == 0 {
		return nil
	}

	var tokens []string
	i := 0
	for i < len(runes) {
		isSpace := unicode.IsSpace(runes[i])
		j := i + 1
		for j < len(runes) && unicode.IsSpace(runes[j]) == isSpace {
			j++
		}
		tokens = append(tokens, string(runes[i:j]))
		i = j
	}

	return tokens
}

// isItalianVowel covers the plain and accented vowels used in syllable
// segmentation; it's a heuristic boundary, not a full phonology.
func isItalianVowel(r rune) bool {
	switch unicode.ToLower(r) {
	case 'a', 'e', 'i', 'o', 'u',
		'à', 'è', 'é', 'ì', 'í', 'ò', 'ó', 'ù', 'ú':
		return true
	default:
		return false
	}
}

// syllabifyWord splits a run of letters into syllable-shaped chunks: a
// single consonant between two vowel groups starts the next syllable,
// a cluster of two or more splits after the first consonant. Boundary
// positions are always monotonically increasing indices into word, so
// concatenating the result always reproduces word exactly regardless
// of how linguistically accurate the split is.
func syllabifyWord(word []rune) []string {
	n := len(word)
	if n == 0 {
		return nil
	}

	var vowelGroupEnd []int
	i := 0
	for i < n {
		if isItalianVowel(word[i]) {
			for i < n && isItalianVowel(word[i]) {
				i++
			}
			vowelGroupEnd = append(vowelGroupEnd, i)
		} else {
			i++
		}
	}
	if len(vowelGroupEnd) < 2 {
		return []string{string(word)}
	}

	var boundaries []int
	for _, vEnd := range vowelGroupEnd[:len(vowelGroupEnd)-1] {
		j := vEnd
		for j < n && !isItalianVowel(word[j]) {
			j++
		}
		clusterLen := j - vEnd
		if clusterLen <= 1 {
			boundaries = append(boundaries, vEnd)
		} else {
			boundaries = append(boundaries, vEnd+1)
		}
	}

	var syllables []string
	prev := 0
	for _, b := range boundaries {
		if b > prev {
			syllables = append(syllables, string(word[prev:b]))
			prev = b
		}
	}
	syllables = append(syllables, string(word[prev:]))

	return syllables
}

// tokenizeSyllablesIT splits letter runs into syllables and keeps
// non-letter runs (whitespace, punctuation) intact as single tokens.
func tokenizeSyllablesIT(input []byte) []string {
	runes := []rune(string(input))
	if len(runes) == 0 {
		return nil
	}

	var tokens []string
	i := 0
	for i < len(runes) {
		isLet := unicode.IsLetter(runes[i])
		j := i + 1
		for j < len(runes) && unicode.IsLetter(runes[j]) == isLet {
			j++
		}
		if isLet {
			tokens = append(tokens, syllabifyWord(runes[i:j])...)
		} else {
			tokens = append(tokens, string(runes[i:j]))
		}
		i = j
	}

	return tokens
}
