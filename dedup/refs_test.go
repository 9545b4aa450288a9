package dedup_test

import (
	"context"
	"io/ioutil"
	"path/filepath"
	"testing"

	"github.com/grailbio/bindnseq/dedup"
	"github.com/grailbio/bindnseq/match"
	"github.com/grailbio/testutil"
	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/testutil/expect"
)

func TestLoadReferences(t *testing.T) {
	tempDir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()
	ctx := context.Background()
	want := match.References{
		{ID: "L4", Seq: "NNNNNNGCAGATATAGCCTGGTGGTTCAGGCGGCGCATGCTTAAGATCGGA"},
		{ID: "L3", Seq: "NNNNNNTGGCTGGTGAACTTCCGATAGTGCGGGTGTTGAATCCAGATCGGA"},
	}
	for name, data := range map[string]string{
		"refs.fa": "\n>L4 guide library 4\nNNNNNNGCAGATATAGCCTGGTGG\nTTCAGGCGGCGCATGCTTAAGATCGGA\n" +
			">L3\nNNNNNNTGGCTGGTGAACTTCCGATAGTGCGGGTGTTGAATCCAGATCGGA\n",
		"refs.tsv": "# id\tsequence\n" +
			"L4\tNNNNNNGCAGATATAGCCTGGTGGTTCAGGCGGCGCATGCTTAAGATCGGA\n" +
			"L3\tNNNNNNTGGCTGGTGAACTTCCGATAGTGCGGGTGTTGAATCCAGATCGGA\n",
	} {
		path := filepath.Join(tempDir, name)
		assert.NoError(t, ioutil.WriteFile(path, []byte(data), 0600))
		refs, err := dedup.LoadReferences(ctx, path)
		assert.NoError(t, err)
		expect.EQ(t, refs, want)
	}
}

func TestLoadReferencesErrors(t *testing.T) {
	tempDir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()
	ctx := context.Background()
	for name, data := range map[string]string{
		"empty.tsv":   "",
		"comment.tsv": "# nothing\n",
		"dup.fa":      ">a\nAC\n>a\nGT\n",
		"cols.tsv":    "L1\tACGT\textra\n",
		"seqonly.txt": dedup.SingleTargetSeq + "\n",
		"onecol.tsv":  "L1\tACGT\nL2\n",
		"noid.tsv":    "\tACGT\n",
	} {
		path := filepath.Join(tempDir, name)
		assert.NoError(t, ioutil.WriteFile(path, []byte(data), 0600))
		_, err := dedup.LoadReferences(ctx, path)
		assert.NotNil(t, err)
		expect.True(t, dedup.IsConfigurationError(err), name)
	}
	_, err := dedup.LoadReferences(ctx, filepath.Join(tempDir, "missing.fa"))
	expect.True(t, err != nil)
}
