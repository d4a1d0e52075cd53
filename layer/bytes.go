package layer

import (
	"github.com/gcomneno/gcc-ocf/container"
	"github.com/gcomneno/gcc-ocf/mbn"
)

// bytesLayer is the identity transform: a single MAIN stream.
type bytesLayer struct{}

var _ Layer = bytesLayer{}

func (bytesLayer) Code() container.LayerCode { return container.LayerBytes }

func (bytesLayer) Encode(input []byte) (Encoded, error) {
	return Encoded{
		Streams: []StreamData{{Stype: mbn.StypeMain, Data: input}},
	}, nil
}

func (bytesLayer) Decode(streams []mbn.Stream, _ []byte) ([]byte, error) {
	if s, ok := mbn.ByType(streams, mbn.StypeMain); ok {
		return s.Data, nil
	}
	// Fallback per spec §4.3: "everything else -> MAIN, or the first
	// non-META stream as fallback."
	for _, s := range streams {
		if s.Stype != mbn.StypeMeta {
			return s.Data, nil
		}
	}

	return []byte{}, nil
}
