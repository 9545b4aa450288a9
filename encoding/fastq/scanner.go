package fastq

import (
	"bufio"
	"bytes"
	"io"

	"github.com/pkg/errors"
)

var (
	// ErrShort is returned by a strict Scanner when a truncated FASTQ file is
	// encountered.
	ErrShort = errors.New("short FASTQ file")
	// ErrInvalid is returned by a strict Scanner when an invalid FASTQ file is
	// encountered.
	ErrInvalid = errors.New("invalid FASTQ file")
)

// LinesPerRead is the number of text lines that make up one FASTQ record.
const LinesPerRead = 4

// maxLineLen bounds the length of a single FASTQ line.
const maxLineLen = 16 << 20

// A Read is a FASTQ read, comprising an ID, sequence, line 3
// ("unknown"), and a quality string.
type Read struct {
	ID, Seq, Unk, Qual string
}

// Field enumerates FASTQ fields. It is used to specify fields to read in
// NewScanner.
type Field uint

const (
	// ID causes the Read.ID field to be filled
	ID Field = 1 << iota
	// Seq causes the Read.Seq field to be filled
	Seq
	// Unk causes the Read.Unk field to be filled
	Unk
	// Qual causes the Read.Qual field to be filled
	Qual
	// All equals ID|Seq|Unk|Qual.
	All = ID | Seq | Unk | Qual
)

var errEOF = errors.New("eof")

// Scanner groups the lines of a FASTQ stream into reads, strictly four lines
// at a time. Surrounding whitespace is trimmed from every line. The Scan
// method returns the next read, returning a boolean indicating whether the
// read succeeded. Scanners are not threadsafe and cannot be restarted.
//
// By default a Scanner performs no validation. If the number of lines in the
// stream is not a multiple of four, the final read is still returned, with
// its missing trailing fields set to "". A strict Scanner (NewStrictScanner)
// instead requires ID lines to begin with "@" and line 3 to begin with "+",
// and reports a truncated final read as ErrShort.
type Scanner struct {
	b      *bufio.Scanner
	err    error
	fields Field
	strict bool
	lines  [LinesPerRead][]byte
}

// NewScanner constructs a new lenient Scanner that reads raw FASTQ data from
// the provided reader. Fields is a bitset of the fields to read. A typical
// value would be All or ID|Seq.
func NewScanner(r io.Reader, fields Field) *Scanner {
	b := bufio.NewScanner(r)
	b.Buffer(nil, maxLineLen)
	return &Scanner{b: b, fields: fields}
}

// NewStrictScanner constructs a Scanner that validates the FASTQ record
// structure.
func NewStrictScanner(r io.Reader, fields Field) *Scanner {
	s := NewScanner(r, fields)
	s.strict = true
	return s
}

// Scan the next read into the provided read. Scan returns a boolean
// indicating whether the scan succeeded. Once Scan returns false, it
// never returns true again. Upon completion, the user should check
// the Err method to determine whether scanning stopped because of an
// error or because the end of the stream was reached.
func (f *Scanner) Scan(read *Read) bool {
	if f.err != nil {
		return false
	}
	n := 0
	for ; n < LinesPerRead; n++ {
		if !f.b.Scan() {
			break
		}
		f.lines[n] = bytes.TrimSpace(f.b.Bytes())
		if n < LinesPerRead-1 {
			// bufio.Scanner reuses its buffer, so keep a private copy until
			// the group is complete.
			f.lines[n] = append([]byte(nil), f.lines[n]...)
		}
	}
	if n < LinesPerRead {
		if f.err = f.b.Err(); f.err != nil {
			return false
		}
		f.err = errEOF
		if n == 0 {
			return false
		}
		if f.strict {
			f.err = ErrShort
			return false
		}
		for i := n; i < LinesPerRead; i++ {
			f.lines[i] = nil
		}
	}
	if f.strict {
		if id := f.lines[0]; len(id) == 0 || id[0] != '@' {
			f.err = ErrInvalid
			return false
		}
		if unk := f.lines[2]; len(unk) == 0 || unk[0] != '+' {
			f.err = ErrInvalid
			return false
		}
	}
	if f.fields&ID != 0 {
		read.ID = string(f.lines[0])
	}
	if f.fields&Seq != 0 {
		read.Seq = string(f.lines[1])
	}
	if f.fields&Unk != 0 {
		read.Unk = string(f.lines[2])
	}
	if f.fields&Qual != 0 {
		read.Qual = string(f.lines[3])
	}
	return true
}

// Err returns the scanning error, if any.
func (f *Scanner) Err() error {
	if f.err == errEOF {
		return nil
	}
	return f.err
}
