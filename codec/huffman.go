package codec

import (
	"container/heap"

	"github.com/gcomneno/gcc-ocf/errs"
)

// huffmanCodec is a canonical static Huffman coder over byte symbols. The
// exact bit layout is implementation-defined per spec §4.1/§9 — the
// writer and reader below are a self-consistent pair:
//
//	[256]byte code-length table (0 = symbol unused)
//	bit-packed stream, MSB-first, codes assigned by a standard
//	canonical-Huffman length-to-code construction.
type huffmanCodec struct{}

var _ Codec = huffmanCodec{}

const huffmanMaxSymbols = 256

type huffNode struct {
	freq        int
	sym         int // -1 for internal nodes
	left, right *huffNode
}

type huffHeap []*huffNode

func (h huffHeap) Len() int { return len(h) }
func (h huffHeap) Less(i, j int) bool {
	if h[i].freq != h[j].freq {
		return h[i].freq < h[j].freq
	}
	return h[i].sym < h[j].sym // deterministic tie-break
}
func (h huffHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *huffHeap) Push(x any)        { *h = append(*h, x.(*huffNode)) }
func (h *huffHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// codeLengths derives a code length per symbol (0..255) from the input's
// byte frequency histogram via a standard Huffman tree build.
func codeLengths(data []byte) (lengths [huffmanMaxSymbols]uint8, distinct int) {
	var freq [huffmanMaxSymbols]int
	for _, b := range data {
		freq[b]++
	}

	h := &huffHeap{}
	for sym, f := range freq {
		if f == 0 {
			continue
		}
		heap.Push(h, &huffNode{freq: f, sym: sym})
		distinct++
	}

	if distinct == 0 {
		return lengths, 0
	}
	if distinct == 1 {
		only := (*h)[0].sym
		lengths[only] = 1
		return lengths, 1
	}

	for h.Len() > 1 {
		a := heap.Pop(h).(*huffNode)
		b := heap.Pop(h).(*huffNode)
		heap.Push(h, &huffNode{freq: a.freq + b.freq, sym: -1, left: a, right: b})
	}

	root := heap.Pop(h).(*huffNode)
	var walk func(n *huffNode, depth uint8)
	walk = func(n *huffNode, depth uint8) {
		if n.left == nil && n.right == nil {
			lengths[n.sym] = depth
			return
		}
		walk(n.left, depth+1)
		walk(n.right, depth+1)
	}
	walk(root, 0)

	return lengths, distinct
}

// canonicalCodes assigns canonical Huffman codes from code lengths:
// symbols sorted by (length, symbol), codes assigned in order, each new
// length left-shifting the running code.
func canonicalCodes(lengths [huffmanMaxSymbols]uint8) (codes [huffmanMaxSymbols]uint32) {
	type sl struct {
		sym int
		l   uint8
	}
	var syms []sl
	for s, l := range lengths {
		if l > 0 {
			syms = append(syms, sl{s, l})
		}
	}
	// stable sort by (length, symbol)
	for i := 1; i < len(syms); i++ {
		for j := i; j > 0 && (syms[j].l < syms[j-1].l || (syms[j].l == syms[j-1].l && syms[j].sym < syms[j-1].sym)); j-- {
			syms[j], syms[j-1] = syms[j-1], syms[j]
		}
	}

	code := uint32(0)
	prevLen := uint8(0)
	for _, s := range syms {
		code <<= (s.l - prevLen)
		codes[s.sym] = code
		code++
		prevLen = s.l
	}

	return codes
}

type bitWriter struct {
	out  []byte
	cur  byte
	nbit uint8
}

func (w *bitWriter) writeBits(code uint32, length uint8) {
	for i := int(length) - 1; i >= 0; i-- {
		bit := byte((code >> uint(i)) & 1)
		w.cur = w.cur<<1 | bit
		w.nbit++
		if w.nbit == 8 {
			w.out = append(w.out, w.cur)
			w.cur = 0
			w.nbit = 0
		}
	}
}

func (w *bitWriter) flush() {
	if w.nbit > 0 {
		w.cur <<= (8 - w.nbit)
		w.out = append(w.out, w.cur)
		w.cur = 0
		w.nbit = 0
	}
}

type bitReader struct {
	in   []byte
	pos  int
	cur  byte
	nbit uint8
}

func (r *bitReader) readBit() (byte, bool) {
	if r.nbit == 0 {
		if r.pos >= len(r.in) {
			return 0, false
		}
		r.cur = r.in[r.pos]
		r.pos++
		r.nbit = 8
	}
	r.nbit--
	return (r.cur >> r.nbit) & 1, true
}

func (huffmanCodec) Encode(data []byte) ([]byte, error) {
	lengths, distinct := codeLengths(data)

	out := make([]byte, huffmanMaxSymbols)
	copy(out, lengths[:])

	if distinct == 0 {
		return out, nil
	}

	codes := canonicalCodes(lengths)
	bw := &bitWriter{out: make([]byte, 0, len(data)/2+1)}
	for _, b := range data {
		bw.writeBits(codes[b], lengths[b])
	}
	bw.flush()

	return append(out, bw.out...), nil
}

func (huffmanCodec) Decode(data []byte, ulen int) ([]byte, error) {
	if err := checkULen(ulen); err != nil {
		return nil, err
	}
	if len(data) < huffmanMaxSymbols {
		return nil, errs.ErrCorruptPayload
	}

	var lengths [huffmanMaxSymbols]uint8
	copy(lengths[:], data[:huffmanMaxSymbols])

	if ulen == 0 {
		return []byte{}, nil
	}

	distinct := 0
	var onlySym = -1
	for s, l := range lengths {
		if l > 0 {
			distinct++
			onlySym = s
		}
	}
	if distinct == 0 {
		return nil, errs.ErrCorruptPayload
	}
	if distinct == 1 {
		out := make([]byte, ulen)
		for i := range out {
			out[i] = byte(onlySym)
		}
		return out, nil
	}

	codes := canonicalCodes(lengths)
	// build decode table: code+length -> symbol, via a simple trie walk
	type trieNode struct {
		sym      int
		children [2]*trieNode
	}
	root := &trieNode{sym: -1}
	for sym, l := range lengths {
		if l == 0 {
			continue
		}
		n := root
		code := codes[sym]
		for i := int(l) - 1; i >= 0; i-- {
			bit := (code >> uint(i)) & 1
			if n.children[bit] == nil {
				n.children[bit] = &trieNode{sym: -1}
			}
			n = n.children[bit]
		}
		n.sym = sym
	}

	br := &bitReader{in: data[huffmanMaxSymbols:]}
	out := make([]byte, 0, ulen)
	n := root
	for len(out) < ulen {
		bit, ok := br.readBit()
		if !ok {
			return nil, errs.ErrCorruptPayload
		}
		n = n.children[bit]
		if n == nil {
			return nil, errs.ErrCorruptPayload
		}
		if n.sym >= 0 {
			out = append(out, byte(n.sym))
			n = root
		}
	}

	return out, nil
}
