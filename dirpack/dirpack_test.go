package dirpack

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gcomneno/gcc-ocf/archive"
	"github.com/gcomneno/gcc-ocf/errs"
)

func TestFingerprint_NearDuplicatesCloserThanUnrelated(t *testing.T) {
	require := require.New(t)

	a := []byte("the quick brown fox jumps over the lazy dog repeatedly")
	b := []byte("the quick brown fox jumped over the lazy dog repeatedly")
	c := []byte("\x00\x01\x02\xff\xfe\xfd binary nonsense 12839 !!@@##")

	fpA := Fingerprint(a)
	fpB := Fingerprint(b)
	fpC := Fingerprint(c)

	require.Equal(popcount(fpA^fpA), 0)
	require.True(popcount(fpA^fpB) < popcount(fpA^fpC))
}

func popcount(v uint64) int {
	n := 0
	for v != 0 {
		n++
		v &= v - 1
	}

	return n
}

func TestClassify(t *testing.T) {
	require := require.New(t)

	require.Equal(Textish, Classify([]byte("hello world, this is plain text.\n")))
	require.Equal(MixedTextNums, Classify([]byte("error 404 at line 123, retry 42 times, code 500 seen 17 times")))
	require.Equal(Binaryish, Classify([]byte{0x00, 0x01, 0xFF, 0xFE, 0x80, 0x81, 0x02, 0x03}))
}

func TestAutopick_PicksSmallest(t *testing.T) {
	require := require.New(t)

	sample := [][]byte{
		[]byte("aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"),
	}
	pool := []CandidatePlan{
		{Layer: "bytes", Codec: "raw", Note: "raw"},
		{Layer: "bytes", Codec: "zlib", Note: "zlib"},
	}

	winner, ranked, err := Autopick(sample, pool)
	require.NoError(err)
	require.Equal("zlib", winner.Note)
	require.Len(ranked, 2)
	require.True(ranked[0].Size <= ranked[1].Size)
}

func TestAutopick_ExpandingLayerLosesToPlainBytes(t *testing.T) {
	require := require.New(t)

	// vc0 expands every "other" byte into a 2-byte mask entry; for
	// binary data with few vowels/consonants that inflates the stream
	// zlib has to compress, so plain bytes wins on total size.
	sample := [][]byte{bytes.Repeat([]byte{0xff, 0xfe, 0x00, 0x01, 0x02}, 40)}
	pool := []CandidatePlan{
		{Layer: "vc0", Codec: "zlib", Note: "vc0"},
		{Layer: "bytes", Codec: "zlib", Note: "bytes"},
	}

	winner, _, err := Autopick(sample, pool)
	require.NoError(err)
	require.Equal("bytes", winner.Note)
}

func TestTopDB_RecordLookupAndBound(t *testing.T) {
	require := require.New(t)

	db := NewTopDB(2)
	db.Record("textish", "n1", CandidatePlan{Layer: "bytes", Note: "a"}, 10)
	db.Record("textish", "n2", CandidatePlan{Layer: "bytes", Note: "b"}, 20)
	db.Record("textish", "n3", CandidatePlan{Layer: "bytes", Note: "c"}, 30)

	require.Len(db.Entries, 2)
	_, ok := db.Lookup("textish", "n1")
	require.False(ok) // evicted

	p, ok := db.Lookup("textish", "n3")
	require.True(ok)
	require.Equal("c", p.Note)
}

func TestTopDB_SaveLoadRoundTrip(t *testing.T) {
	require := require.New(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "topdb.json")

	db := NewTopDB(12)
	db.Record("textish", "n3", CandidatePlan{Layer: "bytes", Codec: "zlib", Note: "winner"}, 42)
	require.NoError(db.Save(path))

	loaded, err := LoadTopDB(path, 12)
	require.NoError(err)
	p, ok := loaded.Lookup("textish", "n3")
	require.True(ok)
	require.Equal("winner", p.Note)
}

func TestLoadTopDB_MissingFileIsEmpty(t *testing.T) {
	require := require.New(t)

	db, err := LoadTopDB(filepath.Join(t.TempDir(), "nope.json"), 12)
	require.NoError(err)
	require.Empty(db.Entries)
}

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		full := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	}

	return root
}

func sampleSpec() DirSpec {
	return DirSpec{
		Spec:    DirPipelineSchemaV1,
		Buckets: 2,
		Archive: true,
		Autopick: AutopickConfig{
			Enabled: true,
			SampleN: 2,
			TopK:    2,
		},
		CandidatePools: map[string][]CandidatePlan{
			"textish": {
				{Layer: "bytes", Codec: "raw", Note: "raw"},
				{Layer: "bytes", Codec: "zlib", Note: "zlib"},
			},
			"mixed_text_nums": {
				{Layer: "split_text_nums", Codec: "zlib", Note: "stn-zlib"},
			},
			"binaryish": {
				{Layer: "bytes", Codec: "zstd", Note: "bytes-zstd"},
			},
		},
	}
}

func TestPackClassic_RoundTrip(t *testing.T) {
	require := require.New(t)

	root := writeTree(t, map[string]string{
		"a.txt": "hello hello hello world world world\n",
		"b.txt": "another plain text file with repeated repeated words\n",
		"c.log": "error 1 at line 2, retried 3 times, saw code 404 and 500\n",
	})

	topDB := NewTopDB(12)
	result, err := PackClassic(root, sampleSpec(), topDB)
	require.NoError(err)
	require.NotEmpty(result.BucketArchives)

	manifest, err := ParseManifest(result.Manifest)
	require.NoError(err)
	require.Len(manifest, 3)

	for _, me := range manifest {
		archiveBytes, ok := result.BucketArchives[me.BucketID]
		require.True(ok)

		a, err := archive.Read(archiveBytes)
		require.NoError(err)
		blob, err := a.BlobData(findEntry(t, a, me))
		require.NoError(err)
		require.Equal(int64(len(blob)), me.ArchiveLength)
	}
}

func findEntry(t *testing.T, a *archive.Archive, me ManifestEntry) archive.Entry {
	t.Helper()
	for _, e := range a.Entries {
		if e.Offset == me.ArchiveOffset && e.Length == me.ArchiveLength {
			return e
		}
	}
	t.Fatalf("no matching archive entry for manifest entry %+v", me)

	return archive.Entry{}
}

func TestPackTextOnly_RoundTrip(t *testing.T) {
	require := require.New(t)

	root := writeTree(t, map[string]string{
		"a.txt": "file one contents\n",
		"b.txt": "file two has 42 and 7 numbers\n",
	})

	result, err := PackTextOnly(root)
	require.NoError(err)
	require.Len(result.Index.Entries, 2)
	require.Equal(BundleIndexSchemaV1, result.Index.Schema)
}

func TestPackTextOnly_RejectsBinary(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "bin.dat"), []byte{0xff, 0xfe, 0x00, 0x80}, 0o644))

	_, err := PackTextOnly(root)
	require.ErrorIs(t, err, errs.ErrBinaryInTextMode)
}

func TestPackMixed_PartitionsByUTF8(t *testing.T) {
	require := require.New(t)

	root := writeTree(t, map[string]string{
		"a.txt": "plain text content here\n",
	})
	require.NoError(os.WriteFile(filepath.Join(root, "b.bin"), []byte{0xff, 0xfe, 0x00, 0x80}, 0o644))

	result, err := PackMixed(root)
	require.NoError(err)
	require.Len(result.TextIndex.Entries, 1)
	require.Len(result.BinIndex.Entries, 1)
}
