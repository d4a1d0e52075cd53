package dirpack

import "github.com/gcomneno/gcc-ocf/internal/hash"

// Bucketizer assigns a fingerprint to one of n buckets. Spec §4.7 step 3
// names this a "pluggable bucketizer may override" point; the default
// implementation is the plain hash(fingerprint) mod N.
type Bucketizer interface {
	Bucket(fingerprint uint64, n int) int
}

type hashModBucketizer struct{}

func (hashModBucketizer) Bucket(fingerprint uint64, n int) int {
	return hash.BucketOf(fingerprint, n)
}

// DefaultBucketizer is hash(fingerprint) mod N via internal/hash.BucketOf.
var DefaultBucketizer Bucketizer = hashModBucketizer{}
