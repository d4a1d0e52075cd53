package dirpack

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/gcomneno/gcc-ocf/archive"
	"github.com/gcomneno/gcc-ocf/errs"
	"github.com/gcomneno/gcc-ocf/pipeline"
)

// FileEntry is one walked input file.
type FileEntry struct {
	Rel  string
	Data []byte
}

// WalkFiles walks root deterministically: files are visited and returned
// in lexicographic order by relative (slash-separated) path, per spec
// §4.7 step 1 / §5's ordering guarantee.
func WalkFiles(root string) ([]FileEntry, error) {
	var rels []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rels = append(rels, filepath.ToSlash(rel))

		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(rels)

	out := make([]FileEntry, 0, len(rels))
	for _, rel := range rels {
		data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
		if err != nil {
			return nil, err
		}
		out = append(out, FileEntry{Rel: rel, Data: data})
	}

	return out, nil
}

// classifiedFile is a walked file paired with its bucket assignment.
type classifiedFile struct {
	FileEntry
	Type BucketType
}

// ClassicResult holds a classic-mode pack run's output artifacts, keyed
// the way a caller would write them to disk: one GCA1 archive per
// bucket, a manifest, and a bucket_summary.
type ClassicResult struct {
	BucketArchives  map[int][]byte
	Manifest        []byte
	BucketSummaries []byte
}

// PackClassic runs the classic directory-pack mode of spec §4.7: walk,
// fingerprint+bucketize, per-bucket autopick (backed by topDB), compress
// every file into a v6 container, and assemble one GCA1 archive per
// bucket plus a manifest and bucket_summary.
func PackClassic(root string, spec DirSpec, topDB *TopDB) (*ClassicResult, error) {
	if spec.Buckets <= 0 {
		return nil, errs.ErrBadBucketCount
	}

	files, err := WalkFiles(root)
	if err != nil {
		return nil, err
	}

	buckets := make(map[int][]classifiedFile)
	for _, f := range files {
		fp := Fingerprint(f.Data)
		bid := DefaultBucketizer.Bucket(fp, spec.Buckets)
		buckets[bid] = append(buckets[bid], classifiedFile{FileEntry: f, Type: Classify(f.Data)})
	}

	bucketIDs := make([]int, 0, len(buckets))
	for id := range buckets {
		bucketIDs = append(bucketIDs, id)
	}
	sort.Ints(bucketIDs)

	result := &ClassicResult{BucketArchives: make(map[int][]byte)}
	var manifestEntries []ManifestEntry
	var summaries []BucketSummary

	for _, bid := range bucketIDs {
		bucketFiles := buckets[bid]
		bt := majorityType(bucketFiles)

		winner, err := choosePlan(spec, bt, bucketFiles, topDB)
		if err != nil {
			return nil, err
		}

		archiveBytes, required, err := buildBucketArchive(spec, winner, bt, bucketFiles)
		if err != nil {
			return nil, err
		}
		result.BucketArchives[bid] = archiveBytes
		summaries = append(summaries, BucketSummary{BucketID: bid, RequiredResources: required})

		a, err := archive.Read(archiveBytes)
		if err != nil {
			return nil, err
		}
		blobEntries := 0
		for _, e := range a.Entries {
			if e.IsResource() {
				continue
			}
			bf := bucketFiles[blobEntries]
			sum := sha256.Sum256(bf.Data)
			manifestEntries = append(manifestEntries, ManifestEntry{
				BucketID:      bid,
				Rel:           bf.Rel,
				ArchiveOffset: e.Offset,
				ArchiveLength: e.Length,
				InputSHA256:   hex.EncodeToString(sum[:]),
			})
			blobEntries++
		}
	}

	result.Manifest, err = EncodeManifest(manifestEntries)
	if err != nil {
		return nil, err
	}
	result.BucketSummaries, err = EncodeBucketSummaries(summaries)
	if err != nil {
		return nil, err
	}

	return result, nil
}

// majorityType picks the most common BucketType among a bucket's files,
// breaking ties by BucketType name for determinism.
func majorityType(files []classifiedFile) BucketType {
	counts := make(map[BucketType]int)
	for _, f := range files {
		counts[f.Type]++
	}

	best := Textish
	bestCount := -1
	for _, t := range []BucketType{Textish, MixedTextNums, Binaryish} {
		if c := counts[t]; c > bestCount {
			best, bestCount = t, c
		}
	}

	return best
}

// choosePlan resolves the winning CandidatePlan for a bucket: a TOP db
// hit when autopick is enabled and refresh isn't forced, otherwise a
// fresh autopick run over a deterministic sample, recorded back into
// topDB.
func choosePlan(spec DirSpec, bt BucketType, files []classifiedFile, topDB *TopDB) (CandidatePlan, error) {
	pool := spec.CandidatePools[string(bt)]
	if len(pool) == 0 {
		return CandidatePlan{}, errs.ErrBadPipelineSpec
	}

	if !spec.Autopick.Enabled {
		return pool[0], nil
	}

	profileKey := fmt.Sprintf("n%d", len(files))

	if !spec.Autopick.RefreshTop {
		if p, ok := topDB.Lookup(string(bt), profileKey); ok {
			return p, nil
		}
	}

	sampleN := normalizedSampleN(spec.Autopick.SampleN)
	sample := make([][]byte, 0, sampleN)
	for _, f := range sampleBytes(rawData(files), sampleN) {
		sample = append(sample, f)
	}

	winner, ranked, err := Autopick(sample, pool)
	if err != nil {
		return CandidatePlan{}, err
	}

	topDB.Record(string(bt), profileKey, winner, ranked[0].Size)

	return winner, nil
}

func rawData(files []classifiedFile) [][]byte {
	out := make([][]byte, len(files))
	for i, f := range files {
		out[i] = f.Data
	}

	return out
}

// buildBucketArchive compresses every file in the bucket with winner and
// assembles a GCA1 archive, building and registering any resource the
// winning layer requires (spec §4.7 step 5: e.g. tpl_lines_shared_v0's
// num_dict_v1, built once per bucket rather than once per file).
func buildBucketArchive(spec DirSpec, winner CandidatePlan, bt BucketType, files []classifiedFile) ([]byte, []string, error) {
	w := archive.NewWriter()
	pspec := winner.toPipelineSpec()

	for _, f := range files {
		out, err := pipeline.Encode(pspec, f.Data)
		if err != nil {
			return nil, nil, err
		}
		w.AddBlob(f.Rel, out, archive.BlobOptions{WithSHA256: true, WithCRC32: true})
	}

	var required []string
	if winner.Layer == "tpl_lines_shared_v0" {
		if rc, ok := spec.Resources["num_dict_v1"]; ok && rc.Enabled {
			dict, err := buildTemplateDictResource(files, rc.K)
			if err != nil {
				return nil, nil, err
			}
			w.AddResource("num_dict_v1", dict)
			required = append(required, "num_dict_v1")
		}
	}

	out, err := w.Finish()

	return out, required, err
}
