package archive

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gcomneno/gcc-ocf/errs"
)

func TestLightVerify_CleanArchive(t *testing.T) {
	require := require.New(t)

	a, err := Read(buildSample(t))
	require.NoError(err)

	report := LightVerify(a)
	require.True(report.OK())
	require.Equal(0, report.ExitCode())
}

func TestFullVerify_CleanArchive(t *testing.T) {
	require := require.New(t)

	a, err := Read(buildSample(t))
	require.NoError(err)

	report := FullVerify(a)
	require.True(report.OK())
}

// spec §8 property 4: light verify misses a tampered blob, full verify
// catches it via BlobHash recomputation.
func TestFullVerify_TamperedBlob_Caught(t *testing.T) {
	require := require.New(t)

	data := buildSample(t)
	data[0] ^= 0xFF

	a, err := Read(data)
	require.NoError(err)

	light := LightVerify(a)
	require.True(light.OK())

	full := FullVerify(a)
	require.False(full.OK())
	require.Equal(errs.ExitCodeOf(errs.ErrBlobHash), full.ExitCode())
}

func TestReport_Errors_MostSevereFirst(t *testing.T) {
	require := require.New(t)

	report := &Report{}
	report.add("z.gcc", errs.ErrUsage)
	report.add("a.gcc", errs.ErrBlobHash)
	report.add("m.gcc", errs.ErrMissingResource)

	ordered := report.Errors()
	require.Len(ordered, 3)
	require.ErrorIs(ordered[0], errs.ErrBlobHash)
	require.ErrorIs(ordered[1], errs.ErrMissingResource)
	require.ErrorIs(ordered[2], errs.ErrUsage)
}
