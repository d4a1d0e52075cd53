// Package hash provides the xxHash64-based hashing used by the directory
// packer to fingerprint input files and route them to buckets.
package hash

import "github.com/cespare/xxhash/v2"

// Sum64 computes the xxHash64 of data.
func Sum64(data []byte) uint64 {
	return xxhash.Sum64(data)
}

// Sum64String computes the xxHash64 of s without an allocation for the
// byte conversion.
func Sum64String(s string) uint64 {
	return xxhash.Sum64String(s)
}

// BucketOf maps a fingerprint to one of n buckets.
//
// n must be positive; callers are expected to validate bucket counts
// before routing files.
func BucketOf(fingerprint uint64, n int) int {
	if n <= 0 {
		return 0
	}

	return int(fingerprint % uint64(n)) //nolint:gosec
}
