package source

import (
	"context"
	"io"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/pgzip"
)

// Gzip is a Decoder that decompresses gzip files in-process. Multi-member
// gzip files (e.g. bgzf, or concatenated .gz files) are read in full.
type Gzip struct {
	// Parallel decompresses with github.com/klauspost/pgzip, which reads
	// ahead and inflates on a separate goroutine.
	Parallel bool
}

// Open implements Decoder. Files are opened lazily, one at a time, so at most
// one input file is open at any point.
func (d Gzip) Open(ctx context.Context, paths []string) (io.ReadCloser, error) {
	if len(paths) == 0 {
		return nil, errors.E(errors.Invalid, "source: no input paths")
	}
	return &gzipReader{ctx: ctx, paths: paths, parallel: d.Parallel}, nil
}

type gzipReader struct {
	ctx      context.Context
	paths    []string
	parallel bool

	// Current input. in is nil between files.
	path string
	in   file.File
	gz   io.ReadCloser

	err error
}

func (r *gzipReader) next() error {
	r.path, r.paths = r.paths[0], r.paths[1:]
	in, err := file.Open(r.ctx, r.path)
	if err != nil {
		return errors.E(err, "open", r.path)
	}
	var gz io.ReadCloser
	if r.parallel {
		gz, err = pgzip.NewReader(in.Reader(r.ctx))
	} else {
		gz, err = gzip.NewReader(in.Reader(r.ctx))
	}
	if err != nil {
		in.Close(r.ctx) // nolint: errcheck
		return errors.E(err, "gunzip", r.path)
	}
	log.Debug.Printf("source: reading %s", r.path)
	r.in, r.gz = in, gz
	return nil
}

func (r *gzipReader) closeCurrent() error {
	if r.in == nil {
		return nil
	}
	err := r.gz.Close()
	if e := r.in.Close(r.ctx); e != nil && err == nil {
		err = e
	}
	if err != nil {
		err = errors.E(err, "close", r.path)
	}
	r.in, r.gz = nil, nil
	return err
}

// Read implements io.Reader.
func (r *gzipReader) Read(p []byte) (int, error) {
	for r.err == nil {
		if r.in == nil {
			if len(r.paths) == 0 {
				r.err = io.EOF
				break
			}
			if err := r.ctx.Err(); err != nil {
				r.err = errors.E(err, "source")
				break
			}
			if err := r.next(); err != nil {
				r.err = err
				break
			}
		}
		n, err := r.gz.Read(p)
		if err == io.EOF {
			if err = r.closeCurrent(); err != nil {
				r.err = err
			}
			if n > 0 || r.err != nil {
				return n, r.err
			}
			continue
		}
		if err != nil {
			r.err = errors.E(err, "gunzip", r.path)
		}
		return n, r.err
	}
	return 0, r.err
}

// Close implements io.Closer.
func (r *gzipReader) Close() error {
	err := r.closeCurrent()
	r.paths = nil
	if r.err == nil {
		r.err = errors.E("source: read after close")
	}
	return err
}
