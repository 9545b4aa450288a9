// Package fasta parses small FASTA files, such as reference target
// sequences, into memory. FASTA files consist of a number of named sequences
// that may be interrupted by newlines.  For example:
//
// >L4
// NNNNNNGCAGATATAGCCTGGTGG
// TTCAGGCGGCGCATGCTTAAGATCGGA
// >L3
// NNNNNNTGGCTGGTGAACTTCCGATAGTGCGGGTGTTGAATCCAGATCGGA
//
// Note: Sequence names are defined to be the stretch of characters excluding
// spaces immediately after '>'.  Any text appear after a space are ignored.
// For example, '>L4 guide library 4' becomes 'L4'.
package fasta

import (
	"bufio"
	"bytes"
	"io"
	"strings"

	"github.com/pkg/errors"
)

const maxLineLen = 64 << 20

// Sequence is one named FASTA sequence.
type Sequence struct {
	Name string
	Seq  string
}

// Read parses all sequences from r, in order of appearance. Blank lines are
// skipped. It is an error for r to contain no sequence, for sequence data to
// appear before the first '>' line, for a name to be empty, or for a name to
// appear twice.
func Read(r io.Reader) ([]Sequence, error) {
	var (
		seqs    []Sequence
		names   = map[string]bool{}
		seq     strings.Builder
		inEntry bool
	)
	flush := func() {
		if inEntry {
			seqs[len(seqs)-1].Seq = seq.String()
			seq.Reset()
		}
	}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(nil, maxLineLen)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		if line[0] != '>' {
			if !inEntry {
				return nil, errors.Errorf("malformed FASTA file: sequence data before the first name line")
			}
			seq.Write(line)
			continue
		}
		flush()
		name := strings.Split(string(line[1:]), " ")[0]
		if name == "" {
			return nil, errors.Errorf("malformed FASTA file: empty sequence name")
		}
		if names[name] {
			return nil, errors.Errorf("malformed FASTA file: duplicate sequence name %s", name)
		}
		names[name] = true
		seqs = append(seqs, Sequence{Name: name})
		inEntry = true
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "couldn't read FASTA data")
	}
	flush()
	if len(seqs) == 0 {
		return nil, errors.Errorf("empty FASTA file")
	}
	return seqs, nil
}
