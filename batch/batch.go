// Package batch runs the deduplication pipeline over a directory of paired
// FASTQ files. Files belong to the same sample when their names share the
// text before the first '_', e.g. "S1_R1.fastq.gz" and "S1_R2.fastq.gz".
package batch

import (
	"context"
	"path/filepath"
	"sort"
	"strings"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
	"github.com/grailbio/bindnseq/dedup"
)

// Suffix is the file name suffix of batch inputs.
const Suffix = ".fastq.gz"

// Sample is a pair of input files with a common prefix.
type Sample struct {
	Prefix string
	// Names are file names relative to the batch directory.
	Names [2]string
}

// Dir returns the output directory of the sample under outDir.
func (s Sample) Dir(outDir string) string {
	return file.Join(outDir, "sample_"+s.Prefix)
}

// Prefix returns the part of name before the first '_'.
func Prefix(name string) string {
	if i := strings.IndexByte(name, '_'); i >= 0 {
		return name[:i]
	}
	return name
}

// Pair returns every unordered pair of names that end in Suffix and share a
// prefix. Pairs follow the order of names: (names[i], names[j]) with i < j,
// ordered by i, then j. A prefix shared by three files yields three samples.
func Pair(names []string) []Sample {
	var inputs []string
	for _, name := range names {
		if strings.HasSuffix(name, Suffix) {
			inputs = append(inputs, name)
		}
	}
	var samples []Sample
	for i, n1 := range inputs {
		for _, n2 := range inputs[i+1:] {
			if p := Prefix(n1); p == Prefix(n2) {
				samples = append(samples, Sample{Prefix: p, Names: [2]string{n1, n2}})
			}
		}
	}
	return samples
}

// List returns the samples found in dir. File names are sorted before
// pairing.
func List(ctx context.Context, dir string) ([]Sample, error) {
	var names []string
	lister := file.List(ctx, dir, false)
	for lister.Scan() {
		if lister.IsDir() {
			continue
		}
		names = append(names, filepath.Base(lister.Path()))
	}
	if err := lister.Err(); err != nil {
		return nil, errors.E(err, "batch: list", dir)
	}
	sort.Strings(names)
	return Pair(names), nil
}

// Run deduplicates every sample in dir. Each sample is run with a copy of
// opts whose Inputs and OutputDir are replaced; the sample's results go to
// outDir/sample_<prefix>. Samples run in order, and the first failure stops
// the batch.
func Run(ctx context.Context, dir, outDir string, opts dedup.Opts) ([]*dedup.Result, error) {
	samples, err := List(ctx, dir)
	if err != nil {
		return nil, err
	}
	if len(samples) == 0 {
		log.Printf("batch: no %s pairs in %s", Suffix, dir)
	}
	var results []*dedup.Result
	for _, s := range samples {
		o := opts
		o.Inputs = []string{file.Join(dir, s.Names[0]), file.Join(dir, s.Names[1])}
		o.OutputDir = s.Dir(outDir)
		log.Printf("batch: sample %s: %v -> %s", s.Prefix, o.Inputs, o.OutputDir)
		res, err := dedup.Run(ctx, &o)
		if err != nil {
			return results, errors.E(err, "batch: sample", s.Prefix)
		}
		results = append(results, res)
	}
	return results, nil
}
