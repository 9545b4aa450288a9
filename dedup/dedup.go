// Package dedup runs the Bind-n-Seq deduplication pipeline: it streams reads
// from gzipped FASTQ files, drops reads whose UMI was already seen, tallies
// the target sequences of the remaining reads, scores each distinct sequence
// against the reference set, and writes the UMI tally and the match report.
//
// A run either writes both output files completely or leaves neither.
package dedup

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
	"github.com/grailbio/bindnseq/encoding/fastq"
	"github.com/grailbio/bindnseq/match"
	"github.com/grailbio/bindnseq/report"
	"github.com/grailbio/bindnseq/source"
	"github.com/grailbio/bindnseq/umi"
)

// Result summarizes a completed run.
type Result struct {
	// UMIs is the tally of UMI keys over all reads.
	UMIs *umi.Tally
	// Sequences is the tally of target sequences of non-duplicate reads.
	Sequences *umi.Tally
	// Matches holds one entry per distinct target sequence, in the order of
	// Sequences.Keys().
	Matches []match.Result

	// Records is the number of reads, Duplicates the number dropped.
	Records, Duplicates int

	// Output paths and the checksums of their uncompressed content.
	UMICountsPath, ReadCountsPath         string
	UMICountsChecksum, ReadCountsChecksum uint64
}

// Count streams the inputs and returns the UMI and sequence tallies, without
// scoring or writing anything.
func Count(ctx context.Context, opts *Opts) (*umi.Counter, error) {
	dec, err := source.New(opts.Decoder)
	if err != nil {
		return nil, err
	}
	return count(ctx, dec, opts)
}

func count(ctx context.Context, dec source.Decoder, opts *Opts) (c *umi.Counter, err error) {
	in, err := dec.Open(ctx, opts.Inputs)
	if err != nil {
		return nil, err
	}
	defer func() {
		if e := in.Close(); e != nil && err == nil {
			err = e
		}
		if err != nil {
			c = nil
		}
	}()
	c = umi.NewCounter(opts.Extractor())
	scanner := fastq.NewScanner(in, fastq.ID|fastq.Seq)
	if opts.Policy == umi.Strict {
		scanner = fastq.NewStrictScanner(in, fastq.ID|fastq.Seq)
	}
	if err = c.Count(ctx, scanner); err != nil {
		if err == fastq.ErrInvalid || err == fastq.ErrShort {
			err = errors.E(errors.Integrity, err, fmt.Sprintf("after read %d", c.Records()))
		}
		return nil, errors.E(err, "dedup: reading", strings.Join(opts.Inputs, ","))
	}
	return c, nil
}

// Run executes the pipeline described by opts. Options are validated before
// any input is read. On failure no output file is left behind.
func Run(ctx context.Context, opts *Opts) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	matcher, err := match.NewMatcher(opts.References, opts.ReadStart, opts.ReadEnd)
	if err != nil {
		return nil, err
	}
	dec, err := source.New(opts.Decoder)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	log.Printf("dedup: deduplicating reads and counting sequences in %v", opts.Inputs)
	log.Printf("dedup: matching window [%d, %d) against references %v",
		opts.ReadStart, opts.ReadEnd, opts.References.IDs())
	c, err := count(ctx, dec, opts)
	if err != nil {
		return nil, err
	}
	log.Printf("dedup: %s reads, %s distinct UMIs, %s duplicates, %s distinct sequences (%v)",
		humanize.Comma(int64(c.Records())), humanize.Comma(int64(c.UMIs().Len())),
		humanize.Comma(int64(c.Duplicates())), humanize.Comma(int64(c.Sequences().Len())), time.Since(start))

	matches, err := matcher.MatchAll(ctx, c.Sequences(), opts.Parallelism)
	if err != nil {
		return nil, errors.E(err, "dedup: matching references")
	}

	res := &Result{
		UMIs:       c.UMIs(),
		Sequences:  c.Sequences(),
		Matches:    matches,
		Records:    c.Records(),
		Duplicates: c.Duplicates(),
	}
	if err := mkdirAll(opts.OutputDir); err != nil {
		return nil, err
	}
	res.UMICountsPath, res.ReadCountsPath = opts.OutputPaths()
	log.Printf("dedup: writing UMI counts to %s", res.UMICountsPath)
	if res.UMICountsChecksum, err = report.WriteTally(ctx, res.UMICountsPath, res.UMIs); err != nil {
		return nil, err
	}
	log.Printf("dedup: writing read counts and mismatches to %s", res.ReadCountsPath)
	if res.ReadCountsChecksum, err = report.WriteMatches(ctx, res.ReadCountsPath, matches, opts.ReportLayout()); err != nil {
		if e := file.Remove(ctx, res.UMICountsPath); e != nil {
			log.Error.Printf("dedup: remove %s: %v", res.UMICountsPath, e)
		}
		return nil, err
	}
	log.Debug.Printf("dedup: checksums %s=%x %s=%x",
		res.UMICountsPath, res.UMICountsChecksum, res.ReadCountsPath, res.ReadCountsChecksum)
	return res, nil
}

// mkdirAll creates dir if it is a local path. Object stores have no
// directories.
func mkdirAll(dir string) error {
	scheme, _, err := file.ParsePath(dir)
	if err != nil {
		return errors.E(errors.Invalid, err, "dedup: output directory", dir)
	}
	if scheme != "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0777); err != nil {
		return errors.E(err, "dedup: create output directory", dir)
	}
	return nil
}
