// Package report writes and reads the tab-separated outputs of a
// deduplication run: the UMI tally and the matched sequence tally.
//
// A UMI tally file looks like
//
//	kmer	count
//	ACGTACGTACGTA	3
//
// and a match report, in the multi-reference layout, like
//
//	kmer	count	ref_id	num_mismatches	mismatches
//	GCAGATATAGCCTGGTGGTTCAGGCG	12	L4	2	3,17
//
// The single-reference layout omits the ref_id column. Files whose path ends
// in ".gz" are gzip-compressed.
package report

import (
	"context"
	"hash"
	"io"
	"strings"

	"blainsmith.com/go/seahash"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
	"github.com/klauspost/compress/gzip"
)

// Layout selects the columns of a match report.
type Layout int

const (
	// Multi includes the ref_id column.
	Multi Layout = iota
	// Single omits the ref_id column. It is meant for runs with exactly one
	// reference.
	Single
)

const (
	tallyHeader       = "kmer\tcount"
	singleMatchHeader = "kmer\tcount\tnum_mismatches\tmismatches"
	multiMatchHeader  = "kmer\tcount\tref_id\tnum_mismatches\tmismatches"
)

// ParseLayout parses "single" or "multi".
func ParseLayout(s string) (Layout, error) {
	switch s {
	case "single":
		return Single, nil
	case "multi":
		return Multi, nil
	}
	return Multi, errors.E(errors.Invalid, "report: unknown layout", s)
}

// String implements fmt.Stringer.
func (l Layout) String() string {
	if l == Single {
		return "single"
	}
	return "multi"
}

func compressed(path string) bool { return strings.HasSuffix(path, ".gz") }

// create opens path for writing and calls fn with a writer for the
// uncompressed content. It returns the seahash checksum of the uncompressed
// content. If anything fails, path is removed.
func create(ctx context.Context, path string, fn func(w io.Writer) error) (sum uint64, err error) {
	out, err := file.Create(ctx, path)
	if err != nil {
		return 0, errors.E(err, "create", path)
	}
	defer func() {
		if e := out.Close(ctx); e != nil && err == nil {
			err = errors.E(e, "close", path)
		}
		if err != nil {
			if e := file.Remove(ctx, path); e != nil {
				log.Debug.Printf("report: remove %s: %v", path, e)
			}
		}
	}()
	var (
		w  = out.Writer(ctx)
		gz *gzip.Writer
		h  hash.Hash64 = seahash.New()
	)
	if compressed(path) {
		gz = gzip.NewWriter(w)
		w = gz
	}
	if err = fn(io.MultiWriter(w, h)); err != nil {
		return 0, errors.E(err, "write", path)
	}
	if gz != nil {
		if err = gz.Close(); err != nil {
			return 0, errors.E(err, "gzip", path)
		}
	}
	return h.Sum64(), nil
}

// open opens path for reading and calls fn with a reader for the
// uncompressed content.
func open(ctx context.Context, path string, fn func(r io.Reader) error) (err error) {
	in, err := file.Open(ctx, path)
	if err != nil {
		return errors.E(err, "open", path)
	}
	defer file.CloseAndReport(ctx, in, &err)
	var r io.Reader = in.Reader(ctx)
	if compressed(path) {
		gz, err := gzip.NewReader(r)
		if err != nil {
			return errors.E(err, "gunzip", path)
		}
		defer gz.Close() // nolint: errcheck
		r = gz
	}
	if err := fn(r); err != nil {
		return errors.E(err, "read", path)
	}
	return nil
}
