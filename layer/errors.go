package layer

import "github.com/gcomneno/gcc-ocf/errs"

var errUnknownLayer = errs.ErrUnknownLayerCode
