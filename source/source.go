package source

import (
	"context"
	"io"

	"github.com/grailbio/base/errors"
)

// Decoder opens the concatenated, decompressed contents of a list of paths.
type Decoder interface {
	// Open starts decoding paths. The caller must Close the returned reader.
	// Errors reading the stream surface from Read or Close and name the
	// failing path.
	Open(ctx context.Context, paths []string) (io.ReadCloser, error)
}

const (
	// GzipName selects the in-process gzip decoder.
	GzipName = "gzip"
	// ParallelGzipName selects the in-process gzip decoder with read-ahead.
	ParallelGzipName = "pgzip"
	// CommandName selects the external zcat decoder.
	CommandName = "zcat"
)

// New returns the decoder registered under the given name. The empty name
// selects the in-process gzip decoder.
func New(name string) (Decoder, error) {
	switch name {
	case "", GzipName:
		return Gzip{}, nil
	case ParallelGzipName:
		return Gzip{Parallel: true}, nil
	case CommandName:
		return &Command{}, nil
	}
	return nil, errors.E(errors.Invalid, "source: unknown decoder", name)
}
