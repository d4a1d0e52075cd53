package codec

import "github.com/gcomneno/gcc-ocf/errs"

// rawCodec is the identity codec: decode must length-check but otherwise
// performs no transformation.
type rawCodec struct{}

var _ Codec = rawCodec{}

func (rawCodec) Encode(data []byte) ([]byte, error) {
	return data, nil
}

func (rawCodec) Decode(data []byte, ulen int) ([]byte, error) {
	if err := checkULen(ulen); err != nil {
		return nil, err
	}
	if len(data) != ulen {
		return nil, errs.ErrLengthMismatch
	}

	return data, nil
}
