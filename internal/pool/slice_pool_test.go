package pool

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetUint64Slice_ExactLength(t *testing.T) {
	require := require.New(t)

	slice, done := GetUint64Slice(5)
	require.Len(slice, 5)
	for i := range slice {
		slice[i] = uint64(i)
	}
	done()

	slice2, done2 := GetUint64Slice(3)
	require.Len(slice2, 3)
	done2()
}

func TestGetStringSlice_ExactLength(t *testing.T) {
	require := require.New(t)

	slice, done := GetStringSlice(4)
	require.Len(slice, 4)
	slice[0] = "a"
	done()

	slice2, done2 := GetStringSlice(1)
	require.Len(slice2, 1)
	done2()
}

func TestGetUint64Slice_ZeroSize(t *testing.T) {
	require := require.New(t)

	slice, done := GetUint64Slice(0)
	require.Empty(slice)
	done()
}
