package umi

import (
	"fmt"
	"strings"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/bindnseq/encoding/fastq"
	"github.com/grailbio/bindnseq/util"
)

// Policy controls how records that lack the expected structure are handled.
type Policy int

const (
	// Lenient extracts best-effort keys from malformed records. A header
	// without ':' is windowed as a whole, and a UMI field or sequence line
	// shorter than its window gives a short key.
	Lenient Policy = iota
	// Strict rejects, with an errors.Integrity error, a record whose header
	// has no ':' in its first token, whose UMI field is shorter than UMIEnd,
	// or whose sequence line is shorter than ReadEnd.
	Strict
)

// ParsePolicy parses "lenient" or "strict".
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "", "lenient":
		return Lenient, nil
	case "strict":
		return Strict, nil
	}
	return Lenient, errors.E(errors.Invalid, "umi: unknown record policy", s)
}

// String implements fmt.Stringer.
func (p Policy) String() string {
	if p == Strict {
		return "strict"
	}
	return "lenient"
}

// Extractor derives the UMI key and target-sequence key of a read. Windows
// are 0-based half-open intervals. Windows that run past the end of a line
// are clamped, so a short line gives a short key rather than a failure.
type Extractor struct {
	UMIStart, UMIEnd   int
	ReadStart, ReadEnd int
	Policy             Policy
}

// UMI returns the UMI key of the given header line.
func (e *Extractor) UMI(header string) (string, error) {
	token := header
	if i := strings.IndexByte(token, ' '); i >= 0 {
		token = token[:i]
	}
	colon := strings.LastIndexByte(token, ':')
	field := token[colon+1:]
	if e.Policy == Strict && (colon < 0 || len(field) < e.UMIEnd) {
		return "", errors.E(errors.Integrity, "umi: malformed header", header)
	}
	return util.Window(field, e.UMIStart, e.UMIEnd), nil
}

// Seq returns the target-sequence key of the given sequence line.
func (e *Extractor) Seq(seq string) (string, error) {
	if e.Policy == Strict && len(seq) < e.ReadEnd {
		return "", errors.E(errors.Integrity, fmt.Sprintf(
			"umi: sequence of length %d is shorter than the read window end %d", len(seq), e.ReadEnd), seq)
	}
	return util.Window(seq, e.ReadStart, e.ReadEnd), nil
}

// Extract returns the UMI key and the target-sequence key of the read.
func (e *Extractor) Extract(r *fastq.Read) (umi, seq string, err error) {
	if umi, err = e.UMI(r.ID); err != nil {
		return "", "", err
	}
	if seq, err = e.Seq(r.Seq); err != nil {
		return "", "", errors.E(err, r.ID)
	}
	return umi, seq, nil
}
