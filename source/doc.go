// Package source turns one or more compressed FASTQ files into a single
// decompressed byte stream.
//
// A Decoder opens a list of paths and returns an io.ReadCloser that yields
// the decompressed contents of every path, concatenated in the order given.
// The stream is finite and cannot be restarted. Close must be called on
// every exit path, including when the consumer stops reading early; it
// releases open files and, for Command, terminates and reaps the
// decompression process.
//
// Two decoders are provided:
//
// Gzip decompresses in-process. Paths are opened with
// github.com/grailbio/base/file, so any registered file scheme works.
//
// Command runs an external decompressor (zcat by default) over all the
// paths and reads its standard output. A decompressor that fails to start,
// or that exits with a non-zero status after its output has been drained,
// makes Close return an error.
package source
