package pool

import "sync"

// Slice pools for efficient reuse of typed slices.
// These reduce allocations when the numeric codecs decode long runs of
// integers, and when layers build token/vocabulary slices.
var (
	uint64SlicePool = sync.Pool{
		New: func() any { return &[]uint64{} },
	}
	stringSlicePool = sync.Pool{
		New: func() any { return &[]string{} },
	}
)

// GetUint64Slice retrieves and resizes a uint64 slice from the pool.
//
// The returned slice will have the exact length specified by size. If the
// pooled slice has insufficient capacity, a new slice is allocated. The
// caller must call the returned cleanup function (typically via defer) to
// return the slice to the pool.
func GetUint64Slice(size int) ([]uint64, func()) {
	ptr, _ := uint64SlicePool.Get().(*[]uint64)
	slice := (*ptr)[:0]

	if cap(slice) < size {
		slice = make([]uint64, size)
	} else {
		slice = slice[:size]
	}
	*ptr = slice

	return slice, func() { uint64SlicePool.Put(ptr) }
}

// GetStringSlice retrieves and resizes a string slice from the pool.
//
// The returned slice will have the exact length specified by size. If the
// pooled slice has insufficient capacity, a new slice is allocated. The
// caller must call the returned cleanup function (typically via defer) to
// return the slice to the pool.
func GetStringSlice(size int) ([]string, func()) {
	ptr, _ := stringSlicePool.Get().(*[]string)
	slice := (*ptr)[:0]

	if cap(slice) < size {
		slice = make([]string, size)
	} else {
		slice = slice[:size]
	}
	*ptr = slice

	return slice, func() { stringSlicePool.Put(ptr) }
}
