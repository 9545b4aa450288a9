package dedup

import (
	"fmt"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/bindnseq/match"
	"github.com/grailbio/bindnseq/report"
	"github.com/grailbio/bindnseq/source"
	"github.com/grailbio/bindnseq/umi"
)

// Output file names, relative to Opts.OutputDir. Compressed outputs get a
// ".gz" suffix.
const (
	UMICountsName  = "umi_counts.txt"
	ReadCountsName = "read_counts.txt"
)

// SingleTargetSeq is the target of the single-reference Bind-n-Seq assay.
const SingleTargetSeq = "NNNNNNGAGTGGCAGATATAGCCTGGTGGTTCAGGCAGATCGGAAGAGCAC"

// Opts configures a deduplication run. Windows are 0-based half-open
// intervals.
type Opts struct {
	// Inputs are gzipped FASTQ paths, read as one stream in order.
	Inputs []string
	// OutputDir receives the UMI tally and the match report. It is created
	// if needed.
	OutputDir string

	// ReadStart and ReadEnd select the target window of the sequence line,
	// and of every reference.
	ReadStart, ReadEnd int
	// UMIStart and UMIEnd select the UMI window of the header's UMI field.
	UMIStart, UMIEnd int

	// References are scored in order; the first of equally close references
	// wins.
	References match.References
	// Layout selects the match report columns. If nil, the single layout is
	// used for exactly one reference and the multi layout otherwise.
	Layout *report.Layout
	// Policy handles records without the expected header or sequence
	// structure.
	Policy umi.Policy

	// Decoder names the input decoder: "gzip" (in-process, default), "pgzip"
	// (in-process with read-ahead) or "zcat" (external process).
	Decoder string
	// Compress writes gzip-compressed outputs.
	Compress bool
	// Parallelism bounds concurrent reference matching. 0 means
	// runtime.NumCPU().
	Parallelism int
}

// SingleTargetOpts are the defaults for runs against one target sequence.
var SingleTargetOpts = Opts{
	ReadStart:  12,
	ReadEnd:    36,
	UMIStart:   0,
	UMIEnd:     13,
	References: match.References{{ID: "target", Seq: SingleTargetSeq}},
}

// MultiTargetOpts are the defaults for runs against the L4 and L3 guide
// libraries. The window keeps the 20bp guide plus 3bp on each side.
var MultiTargetOpts = Opts{
	ReadStart: 9,
	ReadEnd:   35,
	UMIStart:  0,
	UMIEnd:    13,
	References: match.References{
		{ID: "L4", Seq: "NNNNNNGCAGATATAGCCTGGTGGTTCAGGCGGCGCATGCTTAAGATCGGA"},
		{ID: "L3", Seq: "NNNNNNTGGCTGGTGAACTTCCGATAGTGCGGGTGTTGAATCCAGATCGGA"},
	},
	Compress: true,
}

// Extractor returns the key extractor configured by the options.
func (o *Opts) Extractor() umi.Extractor {
	return umi.Extractor{
		UMIStart:  o.UMIStart,
		UMIEnd:    o.UMIEnd,
		ReadStart: o.ReadStart,
		ReadEnd:   o.ReadEnd,
		Policy:    o.Policy,
	}
}

// ReportLayout returns the layout of the match report.
func (o *Opts) ReportLayout() report.Layout {
	if o.Layout != nil {
		return *o.Layout
	}
	if len(o.References) == 1 {
		return report.Single
	}
	return report.Multi
}

// OutputPaths returns the paths of the UMI tally and the match report.
func (o *Opts) OutputPaths() (umiCounts, readCounts string) {
	umiCounts, readCounts = UMICountsName, ReadCountsName
	if o.Compress {
		umiCounts, readCounts = umiCounts+".gz", readCounts+".gz"
	}
	return file.Join(o.OutputDir, umiCounts), file.Join(o.OutputDir, readCounts)
}

// Validate checks the options without touching any input. All failures are
// errors.Invalid errors.
func (o *Opts) Validate() error {
	if len(o.Inputs) == 0 {
		return errors.E(errors.Invalid, "dedup: no input paths")
	}
	for _, in := range o.Inputs {
		if in == "" {
			return errors.E(errors.Invalid, "dedup: empty input path")
		}
	}
	if o.OutputDir == "" {
		return errors.E(errors.Invalid, "dedup: no output directory")
	}
	if o.UMIStart < 0 || o.UMIEnd <= o.UMIStart {
		return errors.E(errors.Invalid, fmt.Sprintf("dedup: invalid UMI window [%d, %d)", o.UMIStart, o.UMIEnd))
	}
	if o.ReadStart < 0 || o.ReadEnd <= o.ReadStart {
		return errors.E(errors.Invalid, fmt.Sprintf("dedup: invalid read window [%d, %d)", o.ReadStart, o.ReadEnd))
	}
	if o.Layout != nil && *o.Layout == report.Single && len(o.References) > 1 {
		return errors.E(errors.Invalid, fmt.Sprintf(
			"dedup: single report layout needs exactly one reference, got %d", len(o.References)))
	}
	if _, err := source.New(o.Decoder); err != nil {
		return err
	}
	_, err := match.NewMatcher(o.References, o.ReadStart, o.ReadEnd)
	return err
}

// IsConfigurationError reports whether err was caused by invalid options,
// such as a reference window that does not match the read window.
func IsConfigurationError(err error) bool {
	return errors.Is(errors.Invalid, err)
}

// IsMalformedRecord reports whether err was caused by a record rejected
// under the strict record policy.
func IsMalformedRecord(err error) bool {
	return errors.Is(errors.Integrity, err)
}
