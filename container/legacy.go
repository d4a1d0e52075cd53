package container

import "github.com/gcomneno/gcc-ocf/errs"

// Legacy payload kinds for v1-v5 containers (read-only compatibility,
// spec §4.4). These containers predate the v6 header shape; what follows
// the version byte is a legacy "kind" byte instead of flags/layer/codec.
const (
	KindBytes          = 0x01
	KindIDsMetaVocab   = 0x02
	KindIDsInlineVocab = 0x03
)

// LegacyFile is a decoded legacy (v1-v5) container. The core spec treats
// these as read-only; there is no legacy encoder.
type LegacyFile struct {
	Version uint8
	Kind    uint8
	Body    []byte
}

// DecodeLegacy parses a v1-v5 container: magic, version byte (1..5), a
// legacy kind byte, and the remaining body bytes (kind-specific layout
// is outside core scope per spec §1 — "legacy v1-v4 containers kept
// compatible for read only" — callers needing the legacy payload shapes
// decode Body themselves; this function only peels the common envelope).
func DecodeLegacy(data []byte) (*LegacyFile, error) {
	if len(data) < 5 || data[0] != Magic[0] || data[1] != Magic[1] || data[2] != Magic[2] {
		return nil, errs.ErrCorruptPayload
	}

	version := data[3]
	if version < 1 || version > 5 {
		return nil, errs.ErrUnsupportedVersion
	}

	kind := data[4]

	return &LegacyFile{
		Version: version,
		Kind:    kind,
		Body:    data[5:],
	}, nil
}
