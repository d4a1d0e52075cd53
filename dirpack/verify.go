package dirpack

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/gcomneno/gcc-ocf/archive"
	"github.com/gcomneno/gcc-ocf/errs"
	"github.com/gcomneno/gcc-ocf/pipeline"
)

// VerifyClassicBucket runs classic mode's verify for one bucket (spec
// §7): archive.LightVerify/FullVerify against the bucket's own GCA1
// file, plus a manifest cross-check by (archive_offset, archive_length)
// as the primary key, with rel checked as a secondary signal: a
// coordinate match whose rel differs is also reported as
// errs.ErrManifestMismatch. Every required resource
// named in summary must also be present in the archive.
func VerifyClassicBucket(archiveBytes []byte, bucketID int, manifest []ManifestEntry, summary BucketSummary, full bool) (*archive.Report, error) {
	a, err := archive.Read(archiveBytes)
	if err != nil {
		return nil, err
	}

	var report *archive.Report
	if full {
		report = archive.FullVerify(a)
	} else {
		report = archive.LightVerify(a)
	}

	byCoords := make(map[[2]int64]archive.Entry)
	for _, e := range a.Entries {
		if e.IsResource() {
			continue
		}
		byCoords[[2]int64{e.Offset, e.Length}] = e
	}

	for _, me := range manifest {
		if me.BucketID != bucketID {
			continue
		}

		e, ok := byCoords[[2]int64{me.ArchiveOffset, me.ArchiveLength}]
		if !ok {
			report.Findings = append(report.Findings, archive.Finding{
				Artifact: me.Rel, Err: errs.ErrManifestMismatch,
			})

			continue
		}
		if e.Rel != me.Rel {
			report.Findings = append(report.Findings, archive.Finding{
				Artifact: me.Rel, Err: errs.ErrManifestMismatch,
			})
		}
	}

	resources, err := a.LoadResources()
	if err != nil {
		return nil, err
	}
	for _, name := range summary.RequiredResources {
		if _, ok := resources[name]; !ok {
			report.Findings = append(report.Findings, archive.Finding{
				Artifact: fmt.Sprintf("__res__/%s", name), Err: errs.ErrMissingResource,
			})
		}
	}

	return report, nil
}

// VerifyBundle runs single-container mode's verify (spec §7): decode the
// bundle, slice the decompressed stream by each BundleIndexEntry's
// offset/length, and recompute sha256 against the recorded digest. There
// is no "light" variant for single-container mode: decoding the bundle
// is unavoidable just to reach the per-file slices, so every verify here
// is effectively full.
func VerifyBundle(bundle []byte, idx BundleIndex) (*archive.Report, error) {
	report := &archive.Report{}

	decoded, err := pipeline.Decode(bundle)
	if err != nil {
		return nil, err
	}

	for _, e := range idx.Entries {
		if e.Offset < 0 || e.Length < 0 || e.Offset+e.Length > int64(len(decoded)) {
			report.Findings = append(report.Findings, archive.Finding{Artifact: e.Rel, Err: errs.ErrOutOfBounds})

			continue
		}

		slice := decoded[e.Offset : e.Offset+e.Length]
		sum := sha256.Sum256(slice)
		if hex.EncodeToString(sum[:]) != e.SHA256 {
			report.Findings = append(report.Findings, archive.Finding{Artifact: e.Rel, Err: errs.ErrBlobHash})
		}
	}

	return report, nil
}
