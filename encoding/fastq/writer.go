package fastq

import (
	"bufio"
	"io"
)

// Writer is a buffered FASTQ file writer.
type Writer struct {
	w   *bufio.Writer
	err error
}

// NewWriter constructs a new FASTQ writer
// that writes reads to the underlying writer w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

// Write writes the read r in FASTQ format.
// An error is returned if the write failed.
func (w *Writer) Write(r *Read) error {
	for _, line := range [LinesPerRead]string{r.ID, r.Seq, r.Unk, r.Qual} {
		if w.err != nil {
			break
		}
		if _, w.err = w.w.WriteString(line); w.err == nil {
			w.err = w.w.WriteByte('\n')
		}
	}
	return w.err
}

// Flush writes any buffered data to the underlying writer. It must be called
// once all reads have been written.
func (w *Writer) Flush() error {
	if w.err != nil {
		return w.err
	}
	w.err = w.w.Flush()
	return w.err
}
