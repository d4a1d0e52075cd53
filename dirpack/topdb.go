package dirpack

import (
	"encoding/json"
	"os"
)

// topDBVersion is the schema version stamped into every TOP db file.
const topDBVersion = 1

// topDBEntry is one cached winning plan, keyed by (bucket_type,
// profile_key). Spec §9 leaves the TOP db file schema to the
// implementation; this one is a flat JSON document at the root of the
// pack output directory, per DESIGN.md's Open Question decision.
type topDBEntry struct {
	BucketType string         `json:"bucket_type"`
	ProfileKey string         `json:"profile_key"`
	Plan       CandidatePlan  `json:"plan"`
	Size       int64          `json:"size"`
}

// TopDB is a small, bounded, deterministic cache of per-(bucket_type,
// profile) winning plans, reused across pack invocations (spec §5: "the
// only process-wide state").
type TopDB struct {
	Version int           `json:"version"`
	Entries []topDBEntry  `json:"entries"`

	maxEntries int
}

// NewTopDB creates an empty TopDB bounded to maxEntries (default 12 when
// <= 0, per spec §4.7 step 4's stated default).
func NewTopDB(maxEntries int) *TopDB {
	return &TopDB{
		Version:    topDBVersion,
		maxEntries: normalizedTopDBMax(maxEntries),
	}
}

// LoadTopDB reads path, returning an empty TopDB if it doesn't exist yet
// (the first pack invocation against a directory).
func LoadTopDB(path string, maxEntries int) (*TopDB, error) {
	db := NewTopDB(maxEntries)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return db, nil
		}

		return nil, err
	}

	if err := json.Unmarshal(data, db); err != nil {
		return nil, err
	}
	db.maxEntries = normalizedTopDBMax(maxEntries)

	return db, nil
}

// Lookup returns the cached winning plan for (bucketType, profileKey), if
// any.
func (db *TopDB) Lookup(bucketType, profileKey string) (CandidatePlan, bool) {
	for _, e := range db.Entries {
		if e.BucketType == bucketType && e.ProfileKey == profileKey {
			return e.Plan, true
		}
	}

	return CandidatePlan{}, false
}

// Record caches plan as the winner for (bucketType, profileKey),
// replacing any existing entry for that key. When the cache exceeds
// maxEntries, the oldest entries are evicted (LRU-by-insertion, per
// DESIGN.md's Open Question decision).
func (db *TopDB) Record(bucketType, profileKey string, plan CandidatePlan, size int64) {
	for i, e := range db.Entries {
		if e.BucketType == bucketType && e.ProfileKey == profileKey {
			db.Entries[i] = topDBEntry{BucketType: bucketType, ProfileKey: profileKey, Plan: plan, Size: size}

			return
		}
	}

	db.Entries = append(db.Entries, topDBEntry{BucketType: bucketType, ProfileKey: profileKey, Plan: plan, Size: size})
	if db.maxEntries > 0 && len(db.Entries) > db.maxEntries {
		db.Entries = db.Entries[len(db.Entries)-db.maxEntries:]
	}
}

// Save writes db to path atomically: a temp file in the same directory,
// then os.Rename, per spec §5 ("written atomically (temp+rename) at pack
// end").
func (db *TopDB) Save(path string) error {
	data, err := json.MarshalIndent(db, "", "  ")
	if err != nil {
		return err
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}

	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)

		return err
	}

	return nil
}
