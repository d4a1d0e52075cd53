package pipeline

import (
	"github.com/gcomneno/gcc-ocf/codec"
	"github.com/gcomneno/gcc-ocf/container"
	"github.com/gcomneno/gcc-ocf/decode"
	"github.com/gcomneno/gcc-ocf/internal/options"
	"github.com/gcomneno/gcc-ocf/layer"
	"github.com/gcomneno/gcc-ocf/mbn"
)

// encodeConfig collects the v6 writer choices a caller may override via
// Option; the zero value matches the spec's stated defaults (no explicit
// payload length, not an extract-kind payload).
type encodeConfig struct {
	opts container.EncodeOptions
}

// Option configures Encode beyond the pipeline spec itself.
type Option = options.Option[*encodeConfig]

// WithPayloadLen sets F_HAS_PAYLOAD_LEN on the emitted v6 header.
func WithPayloadLen(enabled bool) Option {
	return options.NoError(func(c *encodeConfig) { c.opts.WritePayloadLen = enabled })
}

// Encode runs spec against input and returns a complete v6 container.
//
// Per spec §4.5: if the layer emits exactly one stream, stream_codecs is
// empty, and mbn is not forced true, the result is a single-payload
// container (codec_code = the spec's default codec). Otherwise every
// stream is assembled into an MBN bundle and codec_code = mbn; the
// layer's own Meta, if non-empty, travels in the v6 header meta field,
// and the MBN bundle carries no META stream for it.
func Encode(spec Spec, input []byte, opts ...Option) ([]byte, error) {
	resolved, err := spec.Resolve()
	if err != nil {
		return nil, err
	}

	cfg := &encodeConfig{}
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	l, err := layer.Get(resolved.LayerCode)
	if err != nil {
		return nil, err
	}

	enc, err := l.Encode(input)
	if err != nil {
		return nil, err
	}

	useMBN := len(enc.Streams) > 1 || len(resolved.StreamCodecs) > 0
	if resolved.ForceMBN != nil {
		useMBN = *resolved.ForceMBN
	}

	if useMBN {
		return encodeMBN(resolved, enc, cfg.opts)
	}

	return encodeSingle(resolved, enc, cfg.opts)
}

// encodeMBN bundles every stream the layer produced and carries the
// layer's own Meta in the v6 header meta field (mirrored by decode.V6's
// MBN branch, which hands file.Meta straight to Layer.Decode); the MBN
// payload itself only ever carries the named streams.
func encodeMBN(resolved Resolved, enc layer.Encoded, opts container.EncodeOptions) ([]byte, error) {
	streams := make([]mbn.Stream, len(enc.Streams))
	for i, s := range enc.Streams {
		streams[i] = mbn.Stream{
			Stype: s.Stype,
			Codec: codecFor(resolved, s.Stype),
			Data:  s.Data,
		}
	}

	payload, err := mbn.Encode(streams)
	if err != nil {
		return nil, err
	}

	return container.Encode(resolved.LayerCode, codec.CodeMBN, enc.Meta, payload, opts)
}

// encodeSingle is only reached when the layer statically emits exactly
// one stream (Encode's useMBN check), so layer.PrimaryStype always
// succeeds here; Resolve separately rejects an explicit mbn:false paired
// with a layer that doesn't.
func encodeSingle(resolved Resolved, enc layer.Encoded, opts container.EncodeOptions) ([]byte, error) {
	c, err := codec.Get(resolved.DefaultCodec)
	if err != nil {
		return nil, err
	}

	stream := enc.Streams[0]
	comp, err := c.Encode(stream.Data)
	if err != nil {
		return nil, err
	}

	meta := decode.EncodeSinglePayloadMeta(len(stream.Data), enc.Meta)

	return container.Encode(resolved.LayerCode, resolved.DefaultCodec, meta, comp, opts)
}

func codecFor(resolved Resolved, stype mbn.StreamType) codec.Code {
	if c, ok := resolved.StreamCodecs[stype]; ok {
		return c
	}

	return resolved.DefaultCodec
}

// Decode reverses Encode (or reads any file produced by a compatible v6
// or legacy writer).
func Decode(data []byte) ([]byte, error) {
	return decode.Any(data)
}
